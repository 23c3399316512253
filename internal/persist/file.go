// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package persist saves and loads a Filter to/from the backup file
// format of spec.md §6: a versioned magic header followed by a
// length-prefixed sequence of rule records, all integers little-endian
// and every value/mask field a fixed 16 bytes wide regardless of its
// MatchType's actual width.
package persist

import (
	"bytes"
	"encoding/binary"
	"io"
	"os"

	kerrors "github.com/kefir-project/kefir/internal/errors"
	"github.com/kefir-project/kefir/internal/model"
)

// magic identifies a kefir filter backup file; version allows the
// record layout to evolve without breaking older readers silently.
const (
	magic   uint32 = 0x4b454649 // "KEFI"
	version uint16 = 1
)

// nativeDialectTag is recorded in every rule's dialect-tag byte.
// Matches are dialect-agnostic once parsed (model.Match carries no
// provenance of which dialect produced it), so there is no per-rule
// dialect identity to round-trip; this fixed sentinel fills the wire
// slot spec.md §6 reserves for it without inventing one.
const nativeDialectTag uint8 = 0xff

// Save writes f's backup-file encoding to path.
func Save(f *model.Filter, path string) error {
	var buf bytes.Buffer
	if err := Encode(f, &buf); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return kerrors.Wrap(err, kerrors.IoError, "failed to write filter backup file")
	}
	return nil
}

// Load reads and decodes the Filter stored at path.
func Load(path string) (*model.Filter, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, kerrors.Wrap(err, kerrors.IoError, "failed to read filter backup file")
	}
	return Decode(bytes.NewReader(data))
}

// Encode writes f's wire encoding to w.
func Encode(f *model.Filter, w io.Writer) error {
	if err := binary.Write(w, binary.LittleEndian, magic); err != nil {
		return kerrors.Wrap(err, kerrors.IoError, "failed to write magic")
	}
	if err := binary.Write(w, binary.LittleEndian, version); err != nil {
		return kerrors.Wrap(err, kerrors.IoError, "failed to write version")
	}
	rules := f.Rules()
	if err := binary.Write(w, binary.LittleEndian, uint32(len(rules))); err != nil {
		return kerrors.Wrap(err, kerrors.IoError, "failed to write rule count")
	}
	for _, r := range rules {
		if err := encodeRule(w, r); err != nil {
			return err
		}
	}
	return nil
}

func encodeRule(w io.Writer, r *model.Rule) error {
	if err := binary.Write(w, binary.LittleEndian, nativeDialectTag); err != nil {
		return kerrors.Wrap(err, kerrors.IoError, "failed to write dialect tag")
	}
	if err := binary.Write(w, binary.LittleEndian, uint8(r.Action)); err != nil {
		return kerrors.Wrap(err, kerrors.IoError, "failed to write action")
	}
	if err := binary.Write(w, binary.LittleEndian, uint8(len(r.Matches))); err != nil {
		return kerrors.Wrap(err, kerrors.IoError, "failed to write match count")
	}
	for _, m := range r.Matches {
		if err := encodeMatch(w, m); err != nil {
			return err
		}
	}
	return nil
}

func encodeMatch(w io.Writer, m model.Match) error {
	if err := binary.Write(w, binary.LittleEndian, uint16(m.Kind)); err != nil {
		return kerrors.Wrap(err, kerrors.IoError, "failed to write match kind")
	}
	if err := binary.Write(w, binary.LittleEndian, uint8(m.Op)); err != nil {
		return kerrors.Wrap(err, kerrors.IoError, "failed to write match op")
	}
	if err := binary.Write(w, binary.LittleEndian, uint8(m.Flags)); err != nil {
		return kerrors.Wrap(err, kerrors.IoError, "failed to write match flags")
	}
	if _, err := w.Write(m.Value[:]); err != nil {
		return kerrors.Wrap(err, kerrors.IoError, "failed to write match value")
	}
	if _, err := w.Write(m.Mask[:]); err != nil {
		return kerrors.Wrap(err, kerrors.IoError, "failed to write match mask")
	}
	return nil
}

// Decode reads a Filter's wire encoding from r.
func Decode(r io.Reader) (*model.Filter, error) {
	var gotMagic uint32
	if err := binary.Read(r, binary.LittleEndian, &gotMagic); err != nil {
		return nil, kerrors.Wrap(err, kerrors.IoError, "failed to read magic")
	}
	if gotMagic != magic {
		return nil, kerrors.New(kerrors.IoError, "not a kefir filter backup file")
	}
	var gotVersion uint16
	if err := binary.Read(r, binary.LittleEndian, &gotVersion); err != nil {
		return nil, kerrors.Wrap(err, kerrors.IoError, "failed to read version")
	}
	if gotVersion != version {
		return nil, kerrors.Errorf(kerrors.IoError, "unsupported backup file version %d", gotVersion)
	}

	var ruleCount uint32
	if err := binary.Read(r, binary.LittleEndian, &ruleCount); err != nil {
		return nil, kerrors.Wrap(err, kerrors.IoError, "failed to read rule count")
	}

	f := model.NewFilter()
	for i := uint32(0); i < ruleCount; i++ {
		rule, err := decodeRule(r)
		if err != nil {
			return nil, err
		}
		if err := f.Insert(-1, rule); err != nil {
			return nil, err
		}
	}
	return f, nil
}

func decodeRule(r io.Reader) (*model.Rule, error) {
	var dialectTag, action, matchCount uint8
	if err := binary.Read(r, binary.LittleEndian, &dialectTag); err != nil {
		return nil, kerrors.Wrap(err, kerrors.IoError, "failed to read dialect tag")
	}
	if err := binary.Read(r, binary.LittleEndian, &action); err != nil {
		return nil, kerrors.Wrap(err, kerrors.IoError, "failed to read action")
	}
	if err := binary.Read(r, binary.LittleEndian, &matchCount); err != nil {
		return nil, kerrors.Wrap(err, kerrors.IoError, "failed to read match count")
	}

	matches := make([]model.Match, 0, matchCount)
	for i := uint8(0); i < matchCount; i++ {
		m, err := decodeMatch(r)
		if err != nil {
			return nil, err
		}
		matches = append(matches, m)
	}

	rule, err := model.NewRule(matches, model.Action(action), int(matchCount))
	if err != nil {
		return nil, err
	}
	return rule, nil
}

func decodeMatch(r io.Reader) (model.Match, error) {
	var kind uint16
	var op, flags uint8
	if err := binary.Read(r, binary.LittleEndian, &kind); err != nil {
		return model.Match{}, kerrors.Wrap(err, kerrors.IoError, "failed to read match kind")
	}
	if err := binary.Read(r, binary.LittleEndian, &op); err != nil {
		return model.Match{}, kerrors.Wrap(err, kerrors.IoError, "failed to read match op")
	}
	if err := binary.Read(r, binary.LittleEndian, &flags); err != nil {
		return model.Match{}, kerrors.Wrap(err, kerrors.IoError, "failed to read match flags")
	}

	var value, mask [model.MaxValueBytes]byte
	if _, err := io.ReadFull(r, value[:]); err != nil {
		return model.Match{}, kerrors.Wrap(err, kerrors.IoError, "failed to read match value")
	}
	if _, err := io.ReadFull(r, mask[:]); err != nil {
		return model.Match{}, kerrors.Wrap(err, kerrors.IoError, "failed to read match mask")
	}

	mt := model.MatchType(kind)
	if !mt.Valid() {
		return model.Match{}, kerrors.Errorf(kerrors.InvalidArgument, "invalid match kind %d in backup file", kind)
	}
	width := mt.Format().Bytes()
	var maskArg []byte
	if model.MatchFlags(flags).UseMask() {
		maskArg = mask[model.MaxValueBytes-width:]
	}
	return model.NewMatch(mt, model.CompareOp(op), value[model.MaxValueBytes-width:], maskArg)
}
