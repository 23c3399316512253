// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package model

// KeyField describes one field's placement within the packed lookup
// key record that both the emitted C classifier and the runtime table
// builder must agree on byte-for-byte. Its Offset/Width are derived
// solely from MatchType.Format(), so a single ordered list is the only
// fact either side needs (spec.md §4.5, §8).
// Index is the field's position within KeyLayout(), independent of
// byte offset — the index table.Entry.Ops is keyed by, since an
// operator applies per field rather than per byte.
type KeyField struct {
	Kind   MatchType
	Offset int
	Width  int
	Index  int
}

var keyLayout []KeyField

// init builds the packed key layout in MatchType declaration order —
// the same order AllMatchTypes returns, per its doc comment. Walking
// declaration order keeps the layout stable across rebuilds without a
// second hand-maintained list to fall out of sync with matchtype.go.
func init() {
	all := AllMatchTypes()
	offset := 0
	keyLayout = make([]KeyField, 0, len(all))
	for i, kind := range all {
		width := kind.Format().Bytes()
		keyLayout = append(keyLayout, KeyField{Kind: kind, Offset: offset, Width: width, Index: i})
		offset += width
	}
}

// KeyLayout returns the single source of truth for per-MatchType byte
// offset/width within the generated key record. Both emitter.Emit
// (struct field emission) and table.Build (packed-entry construction)
// range over this same slice so the two representations can never
// drift apart.
func KeyLayout() []KeyField {
	out := make([]KeyField, len(keyLayout))
	copy(out, keyLayout)
	return out
}

// KeySize returns the total byte width of the packed key record.
func KeySize() int {
	if len(keyLayout) == 0 {
		return 0
	}
	last := keyLayout[len(keyLayout)-1]
	return last.Offset + last.Width
}

// FieldFor returns the KeyField for kind, and whether kind participates
// in the key layout at all.
func FieldFor(kind MatchType) (KeyField, bool) {
	for _, f := range keyLayout {
		if f.Kind == kind {
			return f, true
		}
	}
	return KeyField{}, false
}
