// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package kernel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/goleak"

	kerrors "github.com/kefir-project/kefir/internal/errors"
	"github.com/kefir-project/kefir/internal/model"
	"github.com/kefir-project/kefir/internal/table"
)

// TestMain verifies no goroutine started by Load/Attach/Close outlives
// the test that started it — relevant here because a real Handle's
// link.Link can own a background epoll/ring-buffer reader that only a
// clean Close stops.
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestPackEntry_LayoutIsValueMaskOpsAction(t *testing.T) {
	size := model.KeySize()
	nops := len(model.KeyLayout())
	entry := table.Entry{
		Value:  make([]byte, size),
		Mask:   make([]byte, size),
		Ops:    make([]byte, nops),
		Action: model.ActionDrop,
	}
	entry.Value[0] = 0xaa
	entry.Mask[0] = 0xff
	entry.Ops[0] = byte(model.OpGreater)

	buf := packEntry(entry)
	assert.Len(t, buf, 2*size+nops+1)
	assert.Equal(t, byte(0xaa), buf[0])
	assert.Equal(t, byte(0xff), buf[size])
	assert.Equal(t, byte(model.OpGreater), buf[2*size])
	assert.Equal(t, byte(model.ActionDrop), buf[2*size+nops])
}

func TestLoad_RejectsUnsupportedTarget(t *testing.T) {
	_, err := Load("/nonexistent.o", model.Target(99), Attr{})
	assert.Equal(t, kerrors.UnsupportedTarget, kerrors.GetKind(err))
}

func TestLoad_MissingObjectFileIsKernelLoadError(t *testing.T) {
	_, err := Load("/nonexistent/path/prog.o", model.TargetIngressExpress, Attr{})
	assert.Equal(t, kerrors.KernelLoadError, kerrors.GetKind(err))
}

func TestHandle_CloseWithoutLoadIsSafe(t *testing.T) {
	h := &Handle{}
	assert.NoError(t, h.Close())
	assert.NoError(t, h.Close())
}

func TestHandle_AttachedReflectsLinkState(t *testing.T) {
	h := &Handle{}
	assert.False(t, h.Attached())
}

func TestAttach_RejectsUnknownInterfaceIndex(t *testing.T) {
	h := &Handle{target: model.TargetIngressExpress}
	err := Attach(h, Attr{InterfaceIndex: -1})
	assert.Equal(t, kerrors.KernelLoadError, kerrors.GetKind(err))
}

func TestDetach_WithoutAttachmentIsNoop(t *testing.T) {
	h := &Handle{}
	assert.NoError(t, Detach(h))
}
