// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package kernel

import (
	"github.com/cilium/ebpf"

	kerrors "github.com/kefir-project/kefir/internal/errors"
	"github.com/kefir-project/kefir/internal/model"
)

// Load reads the compiled object at objPath and loads it into the
// kernel, verifying it in the process. The returned Handle is not yet
// attached to any interface — call Attach for that.
func Load(objPath string, target model.Target, attr Attr) (*Handle, error) {
	if !target.Valid() {
		return nil, kerrors.Errorf(kerrors.UnsupportedTarget, "unsupported kernel target %d", int(target))
	}

	spec, err := ebpf.LoadCollectionSpec(objPath)
	if err != nil {
		return nil, kerrors.Wrapf(err, kerrors.KernelLoadError, "failed to read object file %s", objPath)
	}

	opts := ebpf.CollectionOptions{
		Programs: ebpf.ProgramOptions{
			LogLevel: attr.LogLevel,
		},
	}

	collection, err := ebpf.NewCollectionWithOptions(spec, opts)
	if err != nil {
		return nil, kerrors.Wrap(err, kerrors.KernelLoadError, "failed to load collection into kernel")
	}

	if collection.Programs[programName] == nil {
		collection.Close()
		return nil, kerrors.Errorf(kerrors.KernelLoadError, "object file does not contain program %q", programName)
	}
	if collection.Maps[tableMapName] == nil {
		collection.Close()
		return nil, kerrors.Errorf(kerrors.KernelLoadError, "object file does not contain map %q", tableMapName)
	}

	return &Handle{collection: collection, target: target}, nil
}
