// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package model defines the rule data model shared by the dialect
// parsers, the requirements analyzer, the code emitter, and the
// runtime table builder: match values and their formats, rules, and
// filters.
package model

// ValueFormat identifies the bit-width and interpretation class of a
// Match's value and mask. Every MatchType maps to exactly one
// ValueFormat (see typeFormat in matchtype.go).
type ValueFormat int

const (
	FormatBit ValueFormat = iota
	FormatUint3
	FormatUint6
	FormatUint8
	FormatUint12
	FormatUint16
	FormatUint20
	FormatUint32
	FormatMAC
	FormatIPv4
	FormatIPv6

	formatCount
)

// formatBits holds the significant bit width of each ValueFormat.
var formatBits = [formatCount]int{
	FormatBit:   1,
	FormatUint3: 3,
	FormatUint6: 6,
	FormatUint8: 8,
	FormatUint12: 12,
	FormatUint16: 16,
	FormatUint20: 20,
	FormatUint32: 32,
	FormatMAC:    48,
	FormatIPv4:   32,
	FormatIPv6:   128,
}

func (f ValueFormat) String() string {
	switch f {
	case FormatBit:
		return "bit"
	case FormatUint3:
		return "uint3"
	case FormatUint6:
		return "uint6"
	case FormatUint8:
		return "uint8"
	case FormatUint12:
		return "uint12"
	case FormatUint16:
		return "uint16"
	case FormatUint20:
		return "uint20"
	case FormatUint32:
		return "uint32"
	case FormatMAC:
		return "mac"
	case FormatIPv4:
		return "ipv4"
	case FormatIPv6:
		return "ipv6"
	default:
		return "unknown"
	}
}

// Bits returns the significant bit width of the format.
func (f ValueFormat) Bits() int {
	return formatBits[f]
}

// Bytes returns the byte-ceiling storage width of the format.
func (f ValueFormat) Bytes() int {
	return (formatBits[f] + 7) / 8
}
