// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/cilium/ebpf"
	"github.com/spf13/cobra"
	"github.com/vishvananda/netlink"

	"github.com/kefir-project/kefir/internal/hostcap"
	"github.com/kefir-project/kefir/internal/kernel"
	"github.com/kefir-project/kefir/internal/model"
	"github.com/kefir-project/kefir/internal/persist"
	"github.com/kefir-project/kefir/internal/table"
	"github.com/kefir-project/kefir/internal/validation"
)

var (
	runIface    string
	runTarget   string
	runLogLevel int
)

var runCmd = &cobra.Command{
	Use:   "run --obj <path> --iface <name>",
	Short: "Load a compiled classifier program, attach it, populate its table, and wait",
	Long: "Load obj into the kernel, attach it to --iface per --target, write the\n" +
		"saved filter's entries into its lookup table, and block until interrupted,\n" +
		"detaching cleanly on SIGINT/SIGTERM.",
	RunE: runRun,
}

var runObjPath string

func init() {
	runCmd.Flags().StringVar(&runObjPath, "obj", "", "path to the compiled eBPF object file (required)")
	runCmd.Flags().StringVar(&runIface, "iface", "", "network interface to attach to (required)")
	runCmd.Flags().StringVar(&runTarget, "target", "ingress-express", "attachment target: ingress-express or ingress-classifier")
	runCmd.Flags().IntVar(&runLogLevel, "verifier-log-level", 0, "eBPF verifier log level")
	_ = runCmd.MarkFlagRequired("obj")
	_ = runCmd.MarkFlagRequired("iface")

	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	if err := validation.ValidateInterfaceName(runIface); err != nil {
		return fmt.Errorf("kefirctl run: %w", err)
	}
	target, err := model.ParseTarget(runTarget)
	if err != nil {
		return fmt.Errorf("kefirctl run: %w", err)
	}

	if caps, err := hostcap.ProbeDriver(runIface); err != nil {
		log.Warn("could not probe driver capabilities", "iface", runIface, "error", err)
	} else {
		log.Info("driver capabilities", "iface", runIface, "driver", caps.Driver,
			"combined_channels", caps.Combined, "max_combined_channels", caps.MaxCombined)
	}

	link, err := netlink.LinkByName(runIface)
	if err != nil {
		return fmt.Errorf("kefirctl run: failed to resolve interface %s: %w", runIface, err)
	}

	h, err := kernel.Load(runObjPath, target, kernel.Attr{LogLevel: ebpf.LogLevel(runLogLevel)})
	if err != nil {
		reg.ObserveLoadError()
		return fmt.Errorf("kefirctl run: %w", err)
	}
	defer h.Close()

	if err := kernel.Attach(h, kernel.Attr{InterfaceIndex: link.Attrs().Index}); err != nil {
		reg.ObserveAttachError()
		return fmt.Errorf("kefirctl run: %w", err)
	}
	reg.SetHookAttached(target.String(), runIface, true)
	defer reg.SetHookAttached(target.String(), runIface, false)
	defer kernel.Detach(h)

	f, err := persist.Load(filterPath)
	if err != nil {
		return fmt.Errorf("kefirctl run: %w", err)
	}
	entries := table.Build(f)
	if err := kernel.FillTable(h, entries); err != nil {
		return fmt.Errorf("kefirctl run: %w", err)
	}
	reg.SetTableEntries(runIface, len(entries))

	log.Info("attached", "target", target.String(), "iface", runIface, "rules", f.Len())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	log.Info("detaching", "iface", runIface)
	return nil
}
