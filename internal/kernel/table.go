// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package kernel

import (
	"github.com/cilium/ebpf"

	kerrors "github.com/kefir-project/kefir/internal/errors"
	"github.com/kefir-project/kefir/internal/model"
	"github.com/kefir-project/kefir/internal/table"
)

// FillTable writes one entry per rule into h's lookup-table map, at
// index 0..len(entries)-1 — spec.md §6's fill_table. entries is
// typically the output of table.Build run against the same Filter the
// loaded program was emitted from.
func FillTable(h *Handle, entries []table.Entry) error {
	m := h.Table()
	if m == nil {
		return kerrors.New(kerrors.KernelLoadError, "handle has no lookup-table map")
	}

	for i, e := range entries {
		key := uint32(i)
		if err := m.Update(&key, packEntry(e), ebpf.UpdateAny); err != nil {
			return kerrors.Wrapf(err, kerrors.KernelLoadError, "failed to write table entry %d", i)
		}
	}
	return nil
}

// packEntry renders a table.Entry into the flat byte layout the
// emitted struct kefir_entry expects: value bytes, then mask bytes,
// then one operator byte per key field, then a single action byte,
// with no struct padding inserted (the emitter declares struct
// kefir_key packed, and struct kefir_ops and the action hold only
// single bytes, so struct kefir_entry has no padding either).
func packEntry(e table.Entry) []byte {
	size := model.KeySize()
	nops := len(model.KeyLayout())
	buf := make([]byte, 2*size+nops+1)
	copy(buf[:size], e.Value)
	copy(buf[size:2*size], e.Mask)
	copy(buf[2*size:2*size+nops], e.Ops)
	buf[2*size+nops] = byte(e.Action)
	return buf
}
