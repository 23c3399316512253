// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package table builds the runtime lookup table the emitted program
// reads: one packed entry per rule, in the same field order the
// emitter's key type declares.
package table

import (
	"github.com/kefir-project/kefir/internal/model"
)

// Entry is one packed table row: a rule's matches rendered into the
// shared key layout, plus its action. Value/Mask are KeySize() bytes
// wide — one slot per model.KeyLayout() field, in that same order —
// so Entry and the emitter's struct kefir_key can never drift apart
// (spec.md §4.5's layout-agreement invariant). Ops holds one
// model.CompareOp byte per KeyLayout() field (indexed by KeyField.Index,
// not by byte offset — an operator applies per field, not per byte),
// so a rule built with a non-equality op (OpLess, OpGreater, ...)
// still compares correctly once loaded into the table, matching the
// emitter's own inline-match handling of Match.Op.
type Entry struct {
	Value  []byte
	Mask   []byte
	Ops    []byte
	Action model.Action
}

// Build renders f into an ordered table, one Entry per rule, index
// for index. Matches absent from a rule leave their field's Value and
// Mask bytes zero and Op at OpEqual, which — since the mask is also
// zero — can never itself cause a false match: a zero mask disables
// that field's contribution to kefir_entry_matches regardless of the
// operator stored alongside it.
func Build(f *model.Filter) []Entry {
	layout := model.KeyLayout()
	size := model.KeySize()

	rules := f.Rules()
	out := make([]Entry, len(rules))
	for i, r := range rules {
		entry := Entry{
			Value:  make([]byte, size),
			Mask:   make([]byte, size),
			Ops:    make([]byte, len(layout)),
			Action: r.Action,
		}
		for _, m := range r.Matches {
			field, ok := model.FieldFor(m.Kind)
			if !ok {
				continue
			}
			packField(entry.Value, field, m.Value[:])
			packMask(entry.Mask, field, m)
			entry.Ops[field.Index] = byte(m.Op)
		}
		out[i] = entry
	}
	return out
}

// packField copies a Match's right-justified 16-byte value into its
// field's byte-ceiling-width slot within the packed entry.
func packField(dst []byte, field model.KeyField, value []byte) {
	copy(dst[field.Offset:field.Offset+field.Width], value[model.MaxValueBytes-field.Width:])
}

// packMask copies the match's mask if present; otherwise, for an
// equality comparison, an all-ones mask makes "no mask supplied" and
// "mask covering every bit" produce identical lookup behavior, so
// unmasked Matches still compare their full field width.
func packMask(dst []byte, field model.KeyField, m model.Match) {
	if m.Flags.UseMask() {
		copy(dst[field.Offset:field.Offset+field.Width], m.Mask[model.MaxValueBytes-field.Width:])
		return
	}
	for i := field.Offset; i < field.Offset+field.Width; i++ {
		dst[i] = 0xff
	}
}
