// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package cmd implements the kefirctl CLI commands: turning dialect
// rule text into a saved filter, compiling a filter into a loadable
// classifier program, and loading/attaching/detaching it against a
// live interface.
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kefir-project/kefir/internal/logging"
	"github.com/kefir-project/kefir/internal/metrics"
)

var (
	filterPath string
	logLevel   string
)

// Build info set from main.
var (
	buildVersion = "dev"
	buildCommit  = "none"
	buildDate    = "unknown"
)

// reg is the process-wide metrics registry every subcommand records
// against; kefirctl is a one-shot CLI rather than a long-lived server,
// so nothing scrapes it and no subcommand prints its values.
var reg = metrics.New()

// log is the package-level structured logger every subcommand uses.
var log *logging.Logger

// SetVersionInfo sets the version info from build-time ldflags.
func SetVersionInfo(version, commit, date string) {
	buildVersion = version
	buildCommit = commit
	buildDate = date
	rootCmd.Version = buildVersion
	rootCmd.SetVersionTemplate(fmt.Sprintf("kefirctl version {{.Version}}\ncommit: %s\nbuilt: %s\n", buildCommit, buildDate))
}

var rootCmd = &cobra.Command{
	Use:   "kefirctl",
	Short: "kefirctl compiles packet-filter rules into eBPF classifier programs",
	Long: "kefirctl translates human-authored packet-filtering rules, written in any\n" +
		"of several dialects (ethtool n-tuple, libpcap, TC flower, iptables, OVS flow),\n" +
		"into an eBPF classifier program and lookup table, and can load, attach, and\n" +
		"populate that program against a live network interface.",
	// No Run function — prints help by default.
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		cfg := logging.DefaultConfig()
		switch logLevel {
		case "debug":
			cfg.Level = logging.LevelDebug
		case "warn":
			cfg.Level = logging.LevelWarn
		case "error":
			cfg.Level = logging.LevelError
		}
		logging.SetDefault(logging.New(cfg))
		log = logging.Default().WithComponent("kefirctl")
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&filterPath, "filter", "filter.kefir", "path to the saved filter file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	rootCmd.Version = buildVersion
	rootCmd.SetVersionTemplate(fmt.Sprintf("kefirctl version {{.Version}}\ncommit: %s\nbuilt: %s\n", buildCommit, buildDate))
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
