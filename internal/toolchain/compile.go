// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package toolchain bridges the emitted C source to loadable eBPF
// bytecode by invoking an external clang/llc pair, per spec.md §6's
// compile_c_to_bytecode.
package toolchain

import (
	"context"
	"os/exec"
	"strings"

	kerrors "github.com/kefir-project/kefir/internal/errors"
)

// Default compiler/assembler paths, per spec.md §6.
const (
	DefaultCompilerPath  = "/usr/bin/clang"
	DefaultAssemblerPath = "/usr/bin/llc"
)

// CompileOptions configures CompileToBytecode. Empty fields fall back
// to spec.md §6's defaults and derived paths.
type CompileOptions struct {
	ObjPath        string
	IRPath         string
	CompilerPath   string
	AssemblerPath  string
	Target         string // e.g. "bpf", passed to clang -target
}

// CompileToBytecode compiles cPath to eBPF object code via clang (C ->
// LLVM IR) then llc (IR -> object). obj_path, when empty, is derived
// by substituting the trailing ".c" with ".o"; ditto for ir_path with
// ".ll" — spec.md §6 verbatim.
func CompileToBytecode(ctx context.Context, cPath string, opts CompileOptions) (objPath string, err error) {
	compiler := opts.CompilerPath
	if compiler == "" {
		compiler = DefaultCompilerPath
	}
	assembler := opts.AssemblerPath
	if assembler == "" {
		assembler = DefaultAssemblerPath
	}
	irPath := opts.IRPath
	if irPath == "" {
		irPath = derivePath(cPath, ".c", ".ll")
	}
	objPath = opts.ObjPath
	if objPath == "" {
		objPath = derivePath(cPath, ".c", ".o")
	}
	target := opts.Target
	if target == "" {
		target = "bpf"
	}

	if err := run(ctx, compiler, "-target", target, "-O2", "-emit-llvm", "-c", "-g",
		"-o", irPath, cPath); err != nil {
		return "", err
	}
	if err := run(ctx, assembler, "-march="+target, "-filetype=obj", "-o", objPath, irPath); err != nil {
		return "", err
	}
	return objPath, nil
}

// derivePath replaces a trailing suffix in path with replacement, or
// appends replacement if path does not end in suffix.
func derivePath(path, suffix, replacement string) string {
	if strings.HasSuffix(path, suffix) {
		return strings.TrimSuffix(path, suffix) + replacement
	}
	return path + replacement
}

// run executes name with args, wrapping any failure as a
// ToolchainError that carries the combined output for diagnosis.
func run(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return kerrors.Wrapf(err, kerrors.ToolchainError, "%s failed: %s", name, strings.TrimSpace(string(output)))
	}
	return nil
}
