// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveParse_IncrementsCorrectCounter(t *testing.T) {
	m := New()
	m.ObserveParse("iptables", nil)
	m.ObserveParse("iptables", nil)
	m.ObserveParse("iptables", errors.New("boom"))

	assert.Equal(t, float64(2), testutil.ToFloat64(m.RulesParsed.WithLabelValues("iptables")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.ParseErrors.WithLabelValues("iptables")))
}

func TestObserveEmit_IncrementsCorrectCounter(t *testing.T) {
	m := New()
	m.ObserveEmit("ingress-express", nil)
	m.ObserveEmit("ingress-express", errors.New("too many matches"))

	assert.Equal(t, float64(1), testutil.ToFloat64(m.EmitTotal.WithLabelValues("ingress-express")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.EmitErrors.WithLabelValues("ingress-express")))
}

func TestObserveCompile_CountsAttemptsAndFailures(t *testing.T) {
	m := New()
	m.ObserveCompile(nil)
	m.ObserveCompile(errors.New("clang failed"))

	assert.Equal(t, float64(2), testutil.ToFloat64(m.CompileTotal))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.CompileErrors))
}

func TestSetTableEntries_RecordsGaugeValue(t *testing.T) {
	m := New()
	m.SetTableEntries("eth0", 42)
	assert.Equal(t, float64(42), testutil.ToFloat64(m.TableEntries.WithLabelValues("eth0")))
}

func TestSetHookAttached_RecordsOneOrZero(t *testing.T) {
	m := New()
	m.SetHookAttached("ingress-classifier", "eth0", true)
	assert.Equal(t, float64(1), testutil.ToFloat64(m.HookAttached.WithLabelValues("ingress-classifier", "eth0")))

	m.SetHookAttached("ingress-classifier", "eth0", false)
	assert.Equal(t, float64(0), testutil.ToFloat64(m.HookAttached.WithLabelValues("ingress-classifier", "eth0")))
}

func TestObserveLoadAndAttachErrors_IncrementCounters(t *testing.T) {
	m := New()
	m.ObserveLoadError()
	m.ObserveAttachError()

	assert.Equal(t, float64(1), testutil.ToFloat64(m.LoadErrors))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.AttachErrors))
}

func TestDescribeAndCollect_SatisfyCollectorInterface(t *testing.T) {
	m := New()
	m.ObserveParse("ovs", nil)

	count := testutil.CollectAndCount(m)
	assert.Greater(t, count, 0)
}
