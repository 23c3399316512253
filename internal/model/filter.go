// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package model

import (
	"fmt"
	"io"

	kerrors "github.com/kefir-project/kefir/internal/errors"
)

// Filter is an ordered, index-addressable list of Rules. It is the
// sole owner of its Rules; cloning produces an independently owned
// copy. A Filter is not internally synchronized — callers sharing one
// across goroutines must serialize externally (spec.md §5).
type Filter struct {
	rules []*Rule
}

// NewFilter returns an empty Filter.
func NewFilter() *Filter {
	return &Filter{}
}

// Len returns the number of rules currently in the filter.
func (f *Filter) Len() int {
	return len(f.rules)
}

// Rules returns the observable rule list in index order. The returned
// slice is a copy of the pointer slice; mutating it does not affect
// the Filter, but mutating a *Rule through it does — callers that need
// isolation should use Clone.
func (f *Filter) Rules() []*Rule {
	out := make([]*Rule, len(f.rules))
	copy(out, f.rules)
	return out
}

// At returns the rule at index, or an InvalidIndex error.
func (f *Filter) At(index int) (*Rule, error) {
	if index < 0 || index >= len(f.rules) {
		return nil, kerrors.Errorf(kerrors.InvalidIndex, "index %d out of range [0,%d)", index, len(f.rules))
	}
	return f.rules[index], nil
}

// Clone returns a deep, independent copy of f.
func (f *Filter) Clone() *Filter {
	out := &Filter{rules: make([]*Rule, len(f.rules))}
	for i, r := range f.rules {
		out.rules[i] = r.Clone()
	}
	return out
}

// Insert inserts or replaces rule at index, per spec.md §4.1:
//   - index == len(f): append.
//   - 0 <= index < len(f): replace in place.
//   - index < 0: canonicalized to append.
//   - index > len(f): InvalidIndex.
func (f *Filter) Insert(index int, rule *Rule) error {
	if rule == nil {
		return kerrors.New(kerrors.InvalidArgument, "rule must not be nil")
	}
	if index < 0 {
		index = len(f.rules)
	}
	switch {
	case index == len(f.rules):
		f.rules = append(f.rules, rule)
	case index < len(f.rules):
		f.rules[index] = rule
	default:
		return kerrors.Errorf(kerrors.InvalidIndex, "index %d exceeds filter length %d", index, len(f.rules))
	}
	return nil
}

// Delete removes the rule at index; subsequent entries shift down.
func (f *Filter) Delete(index int) error {
	if index < 0 || index >= len(f.rules) {
		return kerrors.Errorf(kerrors.InvalidIndex, "index %d out of range [0,%d)", index, len(f.rules))
	}
	f.rules = append(f.rules[:index], f.rules[index+1:]...)
	return nil
}

// Dump writes a human-readable listing, one rule per line, in index
// order, to sink. Dump never fails silently: a write error is
// returned immediately.
func (f *Filter) Dump(sink io.Writer) error {
	for i, r := range f.rules {
		if _, err := fmt.Fprintf(sink, "%d: %s\n", i, r.String()); err != nil {
			return kerrors.Wrap(err, kerrors.IoError, "failed to write filter dump")
		}
	}
	return nil
}

// Equal reports whether f and other contain the same rules, in the
// same order. Used by round-trip tests (spec.md §8).
func (f *Filter) Equal(other *Filter) bool {
	if f == nil || other == nil {
		return f == other
	}
	if len(f.rules) != len(other.rules) {
		return false
	}
	for i := range f.rules {
		if !f.rules[i].Equal(other.rules[i]) {
			return false
		}
	}
	return true
}

// Close is a no-op kept for ABI-shape parity with kefir_destroy_filter;
// Go's garbage collector frees the Filter's storage transitively once
// it is unreachable.
func (f *Filter) Close() {}
