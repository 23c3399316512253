// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package model

// MatchType is a closed enumeration identifying a packet field. Each
// MatchType maps statically to a single ValueFormat via typeFormat.
type MatchType int

const (
	MatchEtherSrc MatchType = iota
	MatchEtherDst
	MatchEtherAny
	MatchEtherProto

	MatchIP4Src
	MatchIP4Dst
	MatchIP4Any
	MatchIP4Tos
	MatchIP4Ttl
	MatchIP4L4Proto
	MatchIP4L4Data
	MatchIP4L4PortSrc
	MatchIP4L4PortDst
	MatchIP4L4PortAny

	MatchIP6Src
	MatchIP6Dst
	MatchIP6Any
	MatchIP6Tos
	MatchIP6Ttl
	MatchIP6L4Proto
	MatchIP6L4Data
	MatchIP6L4PortSrc
	MatchIP6L4PortDst
	MatchIP6L4PortAny

	MatchIPAnyTos
	MatchIPAnyTtl
	MatchIPAnyL4Proto
	MatchIPAnyL4Data
	MatchIPAnyL4PortSrc
	MatchIPAnyL4PortDst
	MatchIPAnyL4PortAny

	MatchVlanID
	MatchVlanPrio
	MatchVlanEthertype
	MatchCVlanID
	MatchCVlanPrio
	MatchCVlanEthertype
	MatchSVlanID
	MatchSVlanPrio
	MatchSVlanEthertype

	matchTypeCount
)

// typeFormat is the total function MatchType -> ValueFormat. Every
// entry must be set; init() panics if a MatchType was added without a
// corresponding entry here, enforcing spec.md's "exhaustive-match
// obligation ensuring new kinds cannot be added without updating the
// mapping".
var typeFormat = [matchTypeCount]ValueFormat{
	MatchEtherSrc:   FormatMAC,
	MatchEtherDst:   FormatMAC,
	MatchEtherAny:   FormatMAC,
	MatchEtherProto: FormatUint16,

	MatchIP4Src:       FormatIPv4,
	MatchIP4Dst:       FormatIPv4,
	MatchIP4Any:       FormatIPv4,
	MatchIP4Tos:       FormatUint6,
	MatchIP4Ttl:       FormatUint8,
	MatchIP4L4Proto:   FormatUint8,
	MatchIP4L4Data:    FormatUint32,
	MatchIP4L4PortSrc: FormatUint16,
	MatchIP4L4PortDst: FormatUint16,
	MatchIP4L4PortAny: FormatUint16,

	MatchIP6Src:       FormatIPv6,
	MatchIP6Dst:       FormatIPv6,
	MatchIP6Any:       FormatIPv6,
	MatchIP6Tos:       FormatUint8,
	MatchIP6Ttl:       FormatUint8,
	MatchIP6L4Proto:   FormatUint8,
	MatchIP6L4Data:    FormatUint32,
	MatchIP6L4PortSrc: FormatUint16,
	MatchIP6L4PortDst: FormatUint16,
	MatchIP6L4PortAny: FormatUint16,

	MatchIPAnyTos:       FormatUint8,
	MatchIPAnyTtl:       FormatUint8,
	MatchIPAnyL4Proto:   FormatUint8,
	MatchIPAnyL4Data:    FormatUint32,
	MatchIPAnyL4PortSrc: FormatUint16,
	MatchIPAnyL4PortDst: FormatUint16,
	MatchIPAnyL4PortAny: FormatUint16,

	MatchVlanID:         FormatUint12,
	MatchVlanPrio:       FormatUint3,
	MatchVlanEthertype:  FormatUint16,
	MatchCVlanID:        FormatUint12,
	MatchCVlanPrio:      FormatUint3,
	MatchCVlanEthertype: FormatUint16,
	MatchSVlanID:        FormatUint12,
	MatchSVlanPrio:      FormatUint3,
	MatchSVlanEthertype: FormatUint16,
}

var matchTypeNames = [matchTypeCount]string{
	MatchEtherSrc:   "ether-src",
	MatchEtherDst:   "ether-dst",
	MatchEtherAny:   "ether-any",
	MatchEtherProto: "ether-proto",

	MatchIP4Src:       "ip4-src",
	MatchIP4Dst:       "ip4-dst",
	MatchIP4Any:       "ip4-any",
	MatchIP4Tos:       "ip4-tos",
	MatchIP4Ttl:       "ip4-ttl",
	MatchIP4L4Proto:   "ip4-l4proto",
	MatchIP4L4Data:    "ip4-l4data",
	MatchIP4L4PortSrc: "ip4-l4port-src",
	MatchIP4L4PortDst: "ip4-l4port-dst",
	MatchIP4L4PortAny: "ip4-l4port-any",

	MatchIP6Src:       "ip6-src",
	MatchIP6Dst:       "ip6-dst",
	MatchIP6Any:       "ip6-any",
	MatchIP6Tos:       "ip6-tos",
	MatchIP6Ttl:       "ip6-ttl",
	MatchIP6L4Proto:   "ip6-l4proto",
	MatchIP6L4Data:    "ip6-l4data",
	MatchIP6L4PortSrc: "ip6-l4port-src",
	MatchIP6L4PortDst: "ip6-l4port-dst",
	MatchIP6L4PortAny: "ip6-l4port-any",

	MatchIPAnyTos:       "ip-any-tos",
	MatchIPAnyTtl:       "ip-any-ttl",
	MatchIPAnyL4Proto:   "ip-any-l4proto",
	MatchIPAnyL4Data:    "ip-any-l4data",
	MatchIPAnyL4PortSrc: "ip-any-l4port-src",
	MatchIPAnyL4PortDst: "ip-any-l4port-dst",
	MatchIPAnyL4PortAny: "ip-any-l4port-any",

	MatchVlanID:         "vlan-id",
	MatchVlanPrio:       "vlan-prio",
	MatchVlanEthertype:  "vlan-ethertype",
	MatchCVlanID:        "cvlan-id",
	MatchCVlanPrio:      "cvlan-prio",
	MatchCVlanEthertype: "cvlan-ethertype",
	MatchSVlanID:        "svlan-id",
	MatchSVlanPrio:      "svlan-prio",
	MatchSVlanEthertype: "svlan-ethertype",
}

// init enforces the exhaustive-match obligation from spec.md §9: a new
// MatchType with no corresponding name, or no typeFormat entry (which
// would read as the zero value FormatBit, a format no MatchType uses),
// fails fast instead of silently mapping to FormatBit.
func init() {
	for t := MatchType(0); t < matchTypeCount; t++ {
		if matchTypeNames[t] == "" || typeFormat[t] == FormatBit {
			panic("model: MatchType added without a typeFormat/name entry")
		}
	}
}

// Format returns the ValueFormat bound to this MatchType.
func (t MatchType) Format() ValueFormat {
	return typeFormat[t]
}

// Valid reports whether t is a recognized MatchType.
func (t MatchType) Valid() bool {
	return t >= 0 && t < matchTypeCount
}

func (t MatchType) String() string {
	if !t.Valid() {
		return "unknown"
	}
	return matchTypeNames[t]
}

// IsEthernet reports whether the match type requires Ethernet header
// decoding.
func (t MatchType) IsEthernet() bool {
	switch t {
	case MatchEtherSrc, MatchEtherDst, MatchEtherAny, MatchEtherProto,
		MatchVlanID, MatchVlanPrio, MatchVlanEthertype,
		MatchCVlanID, MatchCVlanPrio, MatchCVlanEthertype,
		MatchSVlanID, MatchSVlanPrio, MatchSVlanEthertype:
		return true
	default:
		return false
	}
}

// IsIPv4 reports whether the match type requires IPv4 header decoding.
func (t MatchType) IsIPv4() bool {
	switch t {
	case MatchIP4Src, MatchIP4Dst, MatchIP4Any, MatchIP4Tos, MatchIP4Ttl,
		MatchIP4L4Proto, MatchIP4L4Data,
		MatchIP4L4PortSrc, MatchIP4L4PortDst, MatchIP4L4PortAny:
		return true
	default:
		return false
	}
}

// IsIPv6 reports whether the match type requires IPv6 header decoding.
func (t MatchType) IsIPv6() bool {
	switch t {
	case MatchIP6Src, MatchIP6Dst, MatchIP6Any, MatchIP6Tos, MatchIP6Ttl,
		MatchIP6L4Proto, MatchIP6L4Data,
		MatchIP6L4PortSrc, MatchIP6L4PortDst, MatchIP6L4PortAny:
		return true
	default:
		return false
	}
}

// IsL3Agnostic reports whether the match type is an L3-agnostic L4
// variant (applies regardless of IPv4/IPv6).
func (t MatchType) IsL3Agnostic() bool {
	switch t {
	case MatchIPAnyTos, MatchIPAnyTtl, MatchIPAnyL4Proto, MatchIPAnyL4Data,
		MatchIPAnyL4PortSrc, MatchIPAnyL4PortDst, MatchIPAnyL4PortAny:
		return true
	default:
		return false
	}
}

// IsL4 reports whether the match type requires the 4-byte L4 payload
// window to be decoded (ports or raw L4 data).
func (t MatchType) IsL4() bool {
	switch t {
	case MatchIP4L4Data, MatchIP4L4PortSrc, MatchIP4L4PortDst, MatchIP4L4PortAny,
		MatchIP6L4Data, MatchIP6L4PortSrc, MatchIP6L4PortDst, MatchIP6L4PortAny,
		MatchIPAnyL4Data, MatchIPAnyL4PortSrc, MatchIPAnyL4PortDst, MatchIPAnyL4PortAny:
		return true
	default:
		return false
	}
}

// IsCVlan reports whether the match type is a CVLAN field.
func (t MatchType) IsCVlan() bool {
	switch t {
	case MatchCVlanID, MatchCVlanPrio, MatchCVlanEthertype:
		return true
	default:
		return false
	}
}

// IsSVlan reports whether the match type is an SVLAN field.
func (t MatchType) IsSVlan() bool {
	switch t {
	case MatchSVlanID, MatchSVlanPrio, MatchSVlanEthertype:
		return true
	default:
		return false
	}
}

// IsGenericVlan reports whether the match type is the generic VLAN
// variant, which sets both CVLAN and SVLAN needs.
func (t MatchType) IsGenericVlan() bool {
	switch t {
	case MatchVlanID, MatchVlanPrio, MatchVlanEthertype:
		return true
	default:
		return false
	}
}

// AllMatchTypes returns every valid MatchType in declaration order.
// This order is also the canonical key-layout order (see KeyLayout).
func AllMatchTypes() []MatchType {
	out := make([]MatchType, 0, matchTypeCount)
	for t := MatchType(0); t < matchTypeCount; t++ {
		out = append(out, t)
	}
	return out
}
