// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package model

import (
	"fmt"

	kerrors "github.com/kefir-project/kefir/internal/errors"
)

// MaxValueBytes is the maximum width of a Match's value/mask payload.
const MaxValueBytes = 16

// CompareOp is a comparison operator applied between a packet field
// and a Match's value.
type CompareOp int

const (
	OpEqual CompareOp = iota
	OpNotEqual
	OpLess
	OpLessOrEqual
	OpGreater
	OpGreaterOrEqual
)

func (o CompareOp) String() string {
	switch o {
	case OpEqual:
		return "=="
	case OpNotEqual:
		return "!="
	case OpLess:
		return "<"
	case OpLessOrEqual:
		return "<="
	case OpGreater:
		return ">"
	case OpGreaterOrEqual:
		return ">="
	default:
		return "?"
	}
}

// MatchFlags is a tagged bitset abstraction over per-Match flags, per
// spec.md §9's "static bit-flag words ... -> a tagged bitset
// abstraction with named members".
type MatchFlags uint8

const (
	FlagUseMask MatchFlags = 1 << iota
)

func (f MatchFlags) UseMask() bool { return f&FlagUseMask != 0 }

// Match is a single field predicate: a packet field identity, a
// comparison operator, a bit-packed value, an optional mask, and
// flags. The value's significant bit-width must equal Kind's
// ValueFormat width; unused high bytes must be zero.
type Match struct {
	Kind  MatchType
	Op    CompareOp
	Value [MaxValueBytes]byte
	Mask  [MaxValueBytes]byte
	Flags MatchFlags
}

// NewMatch builds and validates a Match from up to 16 bytes of
// big-endian-packed value (and, if useMask, mask). value/mask must not
// exceed Kind.Format().Bytes() in their significant (non-zero-padded)
// length; callers pass already byte-ceiling-width-aligned slices,
// right-justified within the 16-byte payload exactly as spec.md §3
// requires ("unused high bits MUST be zero").
func NewMatch(kind MatchType, op CompareOp, value []byte, mask []byte) (Match, error) {
	if !kind.Valid() {
		return Match{}, kerrors.Errorf(kerrors.InvalidArgument, "invalid match type %d", int(kind))
	}
	width := kind.Format().Bytes()
	if len(value) > width {
		return Match{}, kerrors.ParseErrorf(kerrors.SubValueOutOfRange,
			"value for %s exceeds %d bytes", kind, width)
	}

	var m Match
	m.Kind = kind
	m.Op = op
	copy(m.Value[MaxValueBytes-len(value):], value)

	if mask != nil {
		if len(mask) > width {
			return Match{}, kerrors.ParseErrorf(kerrors.SubValueOutOfRange,
				"mask for %s exceeds %d bytes", kind, width)
		}
		copy(m.Mask[MaxValueBytes-len(mask):], mask)
		m.Flags |= FlagUseMask
	}

	return m, nil
}

// String renders a canonical, re-parseable-per-dialect textual form
// used by Filter.Dump.
func (m Match) String() string {
	width := m.Kind.Format().Bytes()
	val := m.Value[MaxValueBytes-width:]
	if m.Flags.UseMask() {
		msk := m.Mask[MaxValueBytes-width:]
		return fmt.Sprintf("%s %s %x mask %x", m.Kind, m.Op, val, msk)
	}
	return fmt.Sprintf("%s %s %x", m.Kind, m.Op, val)
}
