// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package model

import (
	"strings"

	kerrors "github.com/kefir-project/kefir/internal/errors"
)

// DefaultMaxMatches is N_MAX, the default maximum number of matches a
// Rule may hold.
const DefaultMaxMatches = 6

// Action is a Rule's terminal verdict. Dialect-specific actions
// (ACCEPT, output, etc.) map onto one of these two; anything else
// fails parsing.
type Action int

const (
	ActionPass Action = iota
	ActionDrop
)

func (a Action) String() string {
	if a == ActionDrop {
		return "drop"
	}
	return "pass"
}

// Rule is an ordered conjunction of Matches plus a terminal Action.
// Evaluation semantics: all matches must hold (logical AND).
type Rule struct {
	Matches []Match
	Action  Action
}

// NewRule validates and constructs a Rule. maxMatches <= 0 defaults to
// DefaultMaxMatches.
func NewRule(matches []Match, action Action, maxMatches int) (*Rule, error) {
	if maxMatches <= 0 {
		maxMatches = DefaultMaxMatches
	}
	if len(matches) == 0 {
		return nil, kerrors.New(kerrors.InvalidArgument, "rule must have at least one match")
	}
	if len(matches) > maxMatches {
		return nil, kerrors.Errorf(kerrors.TooManyMatches,
			"rule has %d matches, exceeding the limit of %d", len(matches), maxMatches)
	}

	seen := make(map[MatchType]bool, len(matches))
	for _, m := range matches {
		if !m.Kind.Valid() {
			return nil, kerrors.Errorf(kerrors.InvalidArgument, "invalid match kind %d", int(m.Kind))
		}
		if seen[m.Kind] {
			return nil, kerrors.ParseErrorf(kerrors.SubDuplicateMatch,
				"duplicate match for %s", m.Kind)
		}
		seen[m.Kind] = true
	}

	out := make([]Match, len(matches))
	copy(out, matches)
	return &Rule{Matches: out, Action: action}, nil
}

// Clone returns a deep copy of r.
func (r *Rule) Clone() *Rule {
	if r == nil {
		return nil
	}
	out := &Rule{Action: r.Action, Matches: make([]Match, len(r.Matches))}
	copy(out.Matches, r.Matches)
	return out
}

// String renders a rule as a single human-readable line.
func (r *Rule) String() string {
	parts := make([]string, 0, len(r.Matches)+1)
	for _, m := range r.Matches {
		parts = append(parts, m.String())
	}
	parts = append(parts, "action "+r.Action.String())
	return strings.Join(parts, ", ")
}

// Equal reports whether r and other have identical matches (in order)
// and the same action.
func (r *Rule) Equal(other *Rule) bool {
	if r == nil || other == nil {
		return r == other
	}
	if r.Action != other.Action || len(r.Matches) != len(other.Matches) {
		return false
	}
	for i := range r.Matches {
		a, b := r.Matches[i], other.Matches[i]
		if a.Kind != b.Kind || a.Op != b.Op || a.Flags != b.Flags {
			return false
		}
		if a.Value != b.Value || a.Mask != b.Mask {
			return false
		}
	}
	return true
}

// Validate re-checks a Rule's invariants, used after mutation-free
// deserialization (persist.Load) to confirm the wire record still
// satisfies spec.md §3's constraints.
func (r *Rule) Validate(maxMatches int) error {
	if maxMatches <= 0 {
		maxMatches = DefaultMaxMatches
	}
	if len(r.Matches) == 0 {
		return kerrors.New(kerrors.InvalidArgument, "rule must have at least one match")
	}
	if len(r.Matches) > maxMatches {
		return kerrors.Errorf(kerrors.TooManyMatches, "rule has %d matches", len(r.Matches))
	}
	seen := make(map[MatchType]bool, len(r.Matches))
	for _, m := range r.Matches {
		if !m.Kind.Valid() {
			return kerrors.Errorf(kerrors.InvalidArgument, "invalid match kind %d", int(m.Kind))
		}
		if seen[m.Kind] {
			return kerrors.ParseErrorf(kerrors.SubDuplicateMatch, "duplicate match for %s", m.Kind)
		}
		seen[m.Kind] = true
	}
	return nil
}
