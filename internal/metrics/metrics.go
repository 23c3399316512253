// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package metrics exposes Prometheus counters and gauges for the
// pipeline stages kefirctl drives: dialect parsing, analysis/emission,
// toolchain compilation, and kernel load/attach/table-fill. Pure
// internal packages (analyzer, emitter, table) stay side-effect free;
// instrumentation happens at the CLI layer that calls them.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds every counter/gauge kefirctl reports.
type Metrics struct {
	RulesParsed   *prometheus.CounterVec
	ParseErrors   *prometheus.CounterVec
	EmitTotal     *prometheus.CounterVec
	EmitErrors    *prometheus.CounterVec
	CompileTotal  prometheus.Counter
	CompileErrors prometheus.Counter

	TableEntries *prometheus.GaugeVec
	HookAttached *prometheus.GaugeVec
	LoadErrors   prometheus.Counter
	AttachErrors prometheus.Counter
}

// New constructs a Metrics with all collectors registered under the
// kefir_ namespace but not yet handed to a Prometheus registry — call
// RegisterMetrics for that.
func New() *Metrics {
	return &Metrics{
		RulesParsed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kefir_rules_parsed_total",
			Help: "Total number of rules successfully parsed, by dialect",
		}, []string{"dialect"}),

		ParseErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kefir_parse_errors_total",
			Help: "Total number of rule parse failures, by dialect",
		}, []string{"dialect"}),

		EmitTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kefir_cprog_emits_total",
			Help: "Total number of classifier program emissions, by target",
		}, []string{"target"}),

		EmitErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kefir_cprog_emit_errors_total",
			Help: "Total number of classifier program emission failures, by target",
		}, []string{"target"}),

		CompileTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "kefir_toolchain_compiles_total",
			Help: "Total number of clang/llc compile attempts",
		}),

		CompileErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "kefir_toolchain_compile_errors_total",
			Help: "Total number of clang/llc compile failures",
		}),

		TableEntries: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "kefir_table_entries",
			Help: "Number of entries currently written to a loaded lookup table",
		}, []string{"interface"}),

		HookAttached: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "kefir_hook_attached",
			Help: "Whether a classifier program is attached (1) or not (0)",
		}, []string{"target", "interface"}),

		LoadErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "kefir_kernel_load_errors_total",
			Help: "Total number of kernel load failures",
		}),

		AttachErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "kefir_kernel_attach_errors_total",
			Help: "Total number of kernel attach failures",
		}),
	}
}

// Describe implements prometheus.Collector.
func (m *Metrics) Describe(ch chan<- *prometheus.Desc) {
	m.RulesParsed.Describe(ch)
	m.ParseErrors.Describe(ch)
	m.EmitTotal.Describe(ch)
	m.EmitErrors.Describe(ch)
	m.CompileTotal.Describe(ch)
	m.CompileErrors.Describe(ch)
	m.TableEntries.Describe(ch)
	m.HookAttached.Describe(ch)
	m.LoadErrors.Describe(ch)
	m.AttachErrors.Describe(ch)
}

// Collect implements prometheus.Collector.
func (m *Metrics) Collect(ch chan<- prometheus.Metric) {
	m.RulesParsed.Collect(ch)
	m.ParseErrors.Collect(ch)
	m.EmitTotal.Collect(ch)
	m.EmitErrors.Collect(ch)
	m.CompileTotal.Collect(ch)
	m.CompileErrors.Collect(ch)
	m.TableEntries.Collect(ch)
	m.HookAttached.Collect(ch)
	m.LoadErrors.Collect(ch)
	m.AttachErrors.Collect(ch)
}

// RegisterMetrics registers m with the default Prometheus registry.
func (m *Metrics) RegisterMetrics() {
	prometheus.MustRegister(m)
}

// ObserveParse records the outcome of parsing one rule in dialect.
func (m *Metrics) ObserveParse(dialect string, err error) {
	if err != nil {
		m.ParseErrors.WithLabelValues(dialect).Inc()
		return
	}
	m.RulesParsed.WithLabelValues(dialect).Inc()
}

// ObserveEmit records the outcome of emitting a classifier program
// for target.
func (m *Metrics) ObserveEmit(target string, err error) {
	if err != nil {
		m.EmitErrors.WithLabelValues(target).Inc()
		return
	}
	m.EmitTotal.WithLabelValues(target).Inc()
}

// ObserveCompile records the outcome of a toolchain compile attempt.
func (m *Metrics) ObserveCompile(err error) {
	m.CompileTotal.Inc()
	if err != nil {
		m.CompileErrors.Inc()
	}
}

// SetTableEntries records how many entries are currently loaded for
// the program attached to iface.
func (m *Metrics) SetTableEntries(iface string, n int) {
	m.TableEntries.WithLabelValues(iface).Set(float64(n))
}

// SetHookAttached records whether target is attached to iface.
func (m *Metrics) SetHookAttached(target, iface string, attached bool) {
	v := 0.0
	if attached {
		v = 1.0
	}
	m.HookAttached.WithLabelValues(target, iface).Set(v)
}

// ObserveLoadError increments the kernel load error counter.
func (m *Metrics) ObserveLoadError() {
	m.LoadErrors.Inc()
}

// ObserveAttachError increments the kernel attach error counter.
func (m *Metrics) ObserveAttachError() {
	m.AttachErrors.Inc()
}
