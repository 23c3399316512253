// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kefir-project/kefir/internal/analyzer"
	"github.com/kefir-project/kefir/internal/emitter"
	"github.com/kefir-project/kefir/internal/model"
	"github.com/kefir-project/kefir/internal/persist"
	"github.com/kefir-project/kefir/internal/toolchain"
)

var (
	buildTarget      string
	buildInlineMatch bool
	buildNoLoops     bool
	buildNoVlan      bool
	buildDebugPrint  bool
	buildCSourcePath string
	buildObjPath     string
	buildCompiler    string
	buildAssembler   string
	buildSkipCompile bool
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Analyze the saved filter, emit a classifier program, and compile it",
	Long: "Read the filter at --filter, derive the CprogOptions a program for --target\n" +
		"requires, emit a C classifier program, and (unless --skip-compile) compile\n" +
		"it to an eBPF object file via clang/llc.",
	RunE: runBuild,
}

func init() {
	buildCmd.Flags().StringVar(&buildTarget, "target", "ingress-express",
		"attachment target: ingress-express (XDP) or ingress-classifier (TC)")
	buildCmd.Flags().BoolVar(&buildInlineMatch, "inline-match", false, "emit inline comparisons instead of a table loop")
	buildCmd.Flags().BoolVar(&buildNoLoops, "no-loops", false, "unroll the table-match loop")
	buildCmd.Flags().BoolVar(&buildNoVlan, "no-vlan", false, "suppress VLAN decode even if a rule matches on it")
	buildCmd.Flags().BoolVar(&buildDebugPrint, "debug-print", false, "emit bpf_trace_printk diagnostics")
	buildCmd.Flags().StringVar(&buildCSourcePath, "out-c", "kefir.c", "path to write the emitted C source")
	buildCmd.Flags().StringVar(&buildObjPath, "out-obj", "", "path to write the compiled object (default: derived from --out-c)")
	buildCmd.Flags().StringVar(&buildCompiler, "clang", "", "path to clang (default: "+toolchain.DefaultCompilerPath+")")
	buildCmd.Flags().StringVar(&buildAssembler, "llc", "", "path to llc (default: "+toolchain.DefaultAssemblerPath+")")
	buildCmd.Flags().BoolVar(&buildSkipCompile, "skip-compile", false, "emit C source only, do not invoke clang/llc")

	rootCmd.AddCommand(buildCmd)
}

func runBuild(cmd *cobra.Command, args []string) error {
	target, err := model.ParseTarget(buildTarget)
	if err != nil {
		return fmt.Errorf("kefirctl build: %w", err)
	}

	f, err := persist.Load(filterPath)
	if err != nil {
		return fmt.Errorf("kefirctl build: %w", err)
	}

	opts := analyzer.Analyze(f, target, analyzer.Overrides{
		InlineMatch: buildInlineMatch,
		NoLoops:     buildNoLoops,
		NoVlan:      buildNoVlan,
		DebugPrint:  buildDebugPrint,
	})

	cprog := emitter.New(f, opts)
	emitErr := cprog.ToFile(buildCSourcePath)
	reg.ObserveEmit(target.String(), emitErr)
	if emitErr != nil {
		return fmt.Errorf("kefirctl build: %w", emitErr)
	}
	log.Info("emitted classifier program", "target", target.String(), "out", buildCSourcePath, "rules", f.Len())

	if buildSkipCompile {
		return nil
	}

	objPath, compileErr := toolchain.CompileToBytecode(context.Background(), buildCSourcePath, toolchain.CompileOptions{
		ObjPath:       buildObjPath,
		CompilerPath:  buildCompiler,
		AssemblerPath: buildAssembler,
	})
	reg.ObserveCompile(compileErr)
	if compileErr != nil {
		return fmt.Errorf("kefirctl build: %w", compileErr)
	}

	log.Info("compiled classifier program", "obj", objPath)
	return nil
}
