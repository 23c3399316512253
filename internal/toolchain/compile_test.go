// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package toolchain

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	kerrors "github.com/kefir-project/kefir/internal/errors"
)

// fakeTool writes an executable shell script at path that touches its
// last argument as a stand-in for clang/llc producing an output file,
// so path-derivation and wiring can be exercised without a real
// toolchain installed.
func fakeTool(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	script := "#!/bin/sh\nfor last; do :; done\ntouch \"$last\"\n"
	require.NoError(t, os.WriteFile(path, []byte(script), 0o755))
	return path
}

// failingTool writes an executable script at path that always exits
// nonzero, printing a diagnosable message to stderr.
func failingTool(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	script := "#!/bin/sh\necho 'boom' >&2\nexit 1\n"
	require.NoError(t, os.WriteFile(path, []byte(script), 0o755))
	return path
}

func TestDerivePath_ReplacesTrailingSuffix(t *testing.T) {
	assert.Equal(t, "out.o", derivePath("out.c", ".c", ".o"))
	assert.Equal(t, "out.ll", derivePath("out.c", ".c", ".ll"))
	assert.Equal(t, "out.o", derivePath("out", ".c", ".o"))
}

func TestCompileToBytecode_DerivesObjAndIRPaths(t *testing.T) {
	dir := t.TempDir()
	clang := fakeTool(t, dir, "clang")
	llc := fakeTool(t, dir, "llc")
	cPath := filepath.Join(dir, "prog.c")
	require.NoError(t, os.WriteFile(cPath, []byte("/* generated */\n"), 0o644))

	objPath, err := CompileToBytecode(context.Background(), cPath, CompileOptions{
		CompilerPath:  clang,
		AssemblerPath: llc,
	})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "prog.o"), objPath)
	assert.FileExists(t, filepath.Join(dir, "prog.ll"))
	assert.FileExists(t, objPath)
}

func TestCompileToBytecode_ExplicitPathsHonored(t *testing.T) {
	dir := t.TempDir()
	clang := fakeTool(t, dir, "clang")
	llc := fakeTool(t, dir, "llc")
	cPath := filepath.Join(dir, "prog.c")
	require.NoError(t, os.WriteFile(cPath, []byte("/* generated */\n"), 0o644))

	customObj := filepath.Join(dir, "custom.o")
	customIR := filepath.Join(dir, "custom.ll")
	objPath, err := CompileToBytecode(context.Background(), cPath, CompileOptions{
		CompilerPath:  clang,
		AssemblerPath: llc,
		ObjPath:       customObj,
		IRPath:        customIR,
	})
	require.NoError(t, err)
	assert.Equal(t, customObj, objPath)
	assert.FileExists(t, customIR)
}

func TestCompileToBytecode_CompilerFailureWrapsOutput(t *testing.T) {
	dir := t.TempDir()
	clang := failingTool(t, dir, "clang")
	cPath := filepath.Join(dir, "prog.c")
	require.NoError(t, os.WriteFile(cPath, []byte("/* generated */\n"), 0o644))

	_, err := CompileToBytecode(context.Background(), cPath, CompileOptions{
		CompilerPath: clang,
	})
	require.Error(t, err)
	assert.Equal(t, kerrors.ToolchainError, kerrors.GetKind(err))
	assert.Contains(t, err.Error(), "boom")
}

func TestCompileToBytecode_AssemblerFailurePropagates(t *testing.T) {
	dir := t.TempDir()
	clang := fakeTool(t, dir, "clang")
	llc := failingTool(t, dir, "llc")
	cPath := filepath.Join(dir, "prog.c")
	require.NoError(t, os.WriteFile(cPath, []byte("/* generated */\n"), 0o644))

	_, err := CompileToBytecode(context.Background(), cPath, CompileOptions{
		CompilerPath:  clang,
		AssemblerPath: llc,
	})
	require.Error(t, err)
	assert.Equal(t, kerrors.ToolchainError, kerrors.GetKind(err))
}
