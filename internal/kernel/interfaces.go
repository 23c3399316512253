// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package kernel bridges a compiled classifier object file to a running
// kernel program: loading it into the kernel, attaching it to a network
// interface, and populating its lookup table.
package kernel

import (
	"sync"

	"github.com/cilium/ebpf"
	"github.com/cilium/ebpf/link"

	"github.com/kefir-project/kefir/internal/model"
)

// programName is the entry-point function name the emitter always uses,
// regardless of target (internal/emitter/stages.go's entryPointSignature).
const programName = "kefir_classify"

// tableMapName is the lookup-table map name the emitter declares
// (internal/emitter/stages.go's emitTableMap).
const tableMapName = "kefir_table"

// Attr carries the load/attach parameters spec.md §6 groups together:
// the interface to attach to, verifier log verbosity, and program flags.
// Load uses only LogLevel/Flags; Attach additionally uses
// InterfaceIndex — one struct serves both operations, matching §6's
// literal load/attach signatures.
type Attr struct {
	InterfaceIndex int
	LogLevel       ebpf.LogLevel
	Flags          uint32
}

// Handle is the opaque loaded-program handle spec.md §6 describes:
// a loaded collection plus whatever link the program was attached
// through. A Handle not yet attached has a nil link.
type Handle struct {
	mu         sync.Mutex
	collection *ebpf.Collection
	target     model.Target
	link       link.Link
}

// Program returns the loaded classifier program.
func (h *Handle) Program() *ebpf.Program {
	return h.collection.Programs[programName]
}

// Table returns the loaded lookup-table map.
func (h *Handle) Table() *ebpf.Map {
	return h.collection.Maps[tableMapName]
}

// Attached reports whether the program is currently attached to an
// interface.
func (h *Handle) Attached() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.link != nil
}

// Close detaches the program, if attached, and releases the collection.
// Close is safe to call more than once.
func (h *Handle) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	var err error
	if h.link != nil {
		err = h.link.Close()
		h.link = nil
	}
	if h.collection != nil {
		h.collection.Close()
		h.collection = nil
	}
	return err
}
