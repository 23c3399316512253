// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package kernel

import (
	"github.com/cilium/ebpf"
	"github.com/cilium/ebpf/link"
	"github.com/vishvananda/netlink"

	kerrors "github.com/kefir-project/kefir/internal/errors"
	"github.com/kefir-project/kefir/internal/model"
)

// Attach attaches h's loaded program to the interface named by
// attr.InterfaceIndex, using the hook h was loaded for:
// ingress-express attaches as XDP, ingress-classifier attaches as a TCX
// ingress program. Attaching an already-attached Handle returns an
// error; Detach first if re-attaching elsewhere.
func Attach(h *Handle, attr Attr) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.link != nil {
		return kerrors.New(kerrors.InvalidArgument, "program is already attached")
	}

	nlLink, err := netlink.LinkByIndex(attr.InterfaceIndex)
	if err != nil {
		return kerrors.Wrapf(err, kerrors.KernelLoadError, "failed to find interface index %d", attr.InterfaceIndex)
	}

	prog := h.collection.Programs[programName]

	var lnk link.Link
	switch h.target {
	case model.TargetIngressExpress:
		lnk, err = link.AttachXDP(link.XDPOptions{
			Program:   prog,
			Interface: attr.InterfaceIndex,
			Flags:     link.XDPAttachFlags(attr.Flags),
		})
	case model.TargetIngressClassifier:
		lnk, err = link.AttachTCX(link.TCXOptions{
			Program:   prog,
			Interface: attr.InterfaceIndex,
			Attach:    ebpf.AttachTCXIngress,
		})
	default:
		return kerrors.Errorf(kerrors.UnsupportedTarget, "unsupported kernel target %d", int(h.target))
	}
	if err != nil {
		return kerrors.Wrapf(err, kerrors.KernelLoadError, "failed to attach to interface %s", nlLink.Attrs().Name)
	}

	h.link = lnk
	return nil
}

// Detach removes h's program from whatever interface it is attached
// to. Detaching a Handle that isn't attached is a no-op.
func Detach(h *Handle) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.link == nil {
		return nil
	}
	err := h.link.Close()
	h.link = nil
	if err != nil {
		return kerrors.Wrap(err, kerrors.KernelLoadError, "failed to detach program")
	}
	return nil
}
