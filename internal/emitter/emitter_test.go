// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package emitter

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kefir-project/kefir/internal/analyzer"
	"github.com/kefir-project/kefir/internal/model"
)

func mustMatch(t *testing.T, kind model.MatchType, op model.CompareOp, value, mask []byte) model.Match {
	t.Helper()
	m, err := model.NewMatch(kind, op, value, mask)
	require.NoError(t, err)
	return m
}

func sampleFilter(t *testing.T) *model.Filter {
	t.Helper()
	f := model.NewFilter()
	r1, err := model.NewRule([]model.Match{
		mustMatch(t, model.MatchIP4L4Proto, model.OpEqual, []byte{6}, nil),
		mustMatch(t, model.MatchIP4L4PortDst, model.OpEqual, []byte{0, 22}, nil),
	}, model.ActionDrop, 0)
	require.NoError(t, err)
	require.NoError(t, f.Insert(-1, r1))

	r2, err := model.NewRule([]model.Match{
		mustMatch(t, model.MatchIP4Src, model.OpEqual, []byte{10, 0, 0, 0}, []byte{255, 0, 0, 0}),
	}, model.ActionPass, 0)
	require.NoError(t, err)
	require.NoError(t, f.Insert(-1, r2))
	return f
}

func TestEmit_Deterministic(t *testing.T) {
	f := sampleFilter(t)
	opts := analyzer.Analyze(f, model.TargetIngressExpress, analyzer.Overrides{})

	a := New(f, opts)
	b := New(f, opts)

	srcA, err := a.Emit()
	require.NoError(t, err)
	srcB, err := b.Emit()
	require.NoError(t, err)
	assert.Equal(t, srcA, srcB)
}

func TestEmit_TableModeContainsKeyTypeAndLookup(t *testing.T) {
	f := sampleFilter(t)
	opts := analyzer.Analyze(f, model.TargetIngressExpress, analyzer.Overrides{})

	src, err := New(f, opts).Emit()
	require.NoError(t, err)
	assert.Contains(t, src, "struct kefir_key {")
	assert.Contains(t, src, "ip4_l4proto")
	assert.Contains(t, src, "ip4_l4port_dst")
	assert.Contains(t, src, "bpf_map_lookup_elem(&kefir_table")
	assert.Contains(t, src, `SEC("xdp")`)
	assert.Contains(t, src, "XDP_DROP")
}

func TestEmit_InlineModeSkipsLookupTable(t *testing.T) {
	f := sampleFilter(t)
	opts := analyzer.Analyze(f, model.TargetIngressClassifier, analyzer.Overrides{InlineMatch: true})

	src, err := New(f, opts).Emit()
	require.NoError(t, err)
	assert.NotContains(t, src, "bpf_map_lookup_elem(&kefir_table")
	assert.Contains(t, src, "rule 0")
	assert.Contains(t, src, "rule 1")
	assert.Contains(t, src, `SEC("tc")`)
	assert.Contains(t, src, "TC_ACT_SHOT")
}

func TestEmit_UseMasksAppliesFieldMaskComparison(t *testing.T) {
	f := sampleFilter(t)
	opts := analyzer.Analyze(f, model.TargetIngressExpress, analyzer.Overrides{})
	require.True(t, opts.Needs.Has(model.NeedUseMasks))

	src, err := New(f, opts).Emit()
	require.NoError(t, err)
	assert.Contains(t, src, "e->mask.ip4_src")
}

func TestEmit_UnsupportedTargetFails(t *testing.T) {
	f := sampleFilter(t)
	opts := analyzer.Analyze(f, model.Target(99), analyzer.Overrides{})

	_, err := New(f, opts).Emit()
	require.Error(t, err)
}

func TestEmit_TooManyMatchesFails(t *testing.T) {
	f := sampleFilter(t)
	opts := analyzer.Analyze(f, model.TargetIngressExpress, analyzer.Overrides{})
	opts.MatchCount = MaxEmittableMatches + 1

	_, err := New(f, opts).Emit()
	require.Error(t, err)
}

func TestCprogToBuf_GrowsAndAppendsNulTerminator(t *testing.T) {
	f := sampleFilter(t)
	opts := analyzer.Analyze(f, model.TargetIngressExpress, analyzer.Overrides{})
	c := New(f, opts)

	var buf []byte
	require.NoError(t, CprogToBuf(c, &buf))
	assert.Equal(t, byte(0), buf[len(buf)-1])

	src, err := c.Emit()
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(buf), src))
}

func TestCprogToBuf_LeavesBufferUnchangedOnFailure(t *testing.T) {
	f := sampleFilter(t)
	opts := analyzer.Analyze(f, model.Target(99), analyzer.Overrides{})
	c := New(f, opts)

	buf := []byte("unchanged")
	err := CprogToBuf(c, &buf)
	require.Error(t, err)
	assert.Equal(t, "unchanged", string(buf))
}

func TestEmit_DebugPrintAddsTraceHelper(t *testing.T) {
	f := sampleFilter(t)
	opts := analyzer.Analyze(f, model.TargetIngressExpress, analyzer.Overrides{DebugPrint: true})

	src, err := New(f, opts).Emit()
	require.NoError(t, err)
	assert.Contains(t, src, "bpf_printk(fmt, ##__VA_ARGS__)")
}

func TestEmit_TableModeHonorsNonEqualityOp(t *testing.T) {
	f := model.NewFilter()
	r, err := model.NewRule([]model.Match{
		mustMatch(t, model.MatchIP4Ttl, model.OpGreater, []byte{128}, nil),
	}, model.ActionDrop, 0)
	require.NoError(t, err)
	require.NoError(t, f.Insert(-1, r))

	opts := analyzer.Analyze(f, model.TargetIngressExpress, analyzer.Overrides{})
	require.False(t, opts.Needs.Has(model.NeedInlineMatch))

	src, err := New(f, opts).Emit()
	require.NoError(t, err)
	assert.Contains(t, src, "struct kefir_ops {")
	assert.Contains(t, src, "ip4_ttl_op")
	assert.Contains(t, src, "kefir_cmp_u64")
	assert.Contains(t, src, "e->ops.ip4_ttl_op")
}

func TestEmit_NoLoopsAddsUnrollPragma(t *testing.T) {
	f := sampleFilter(t)
	opts := analyzer.Analyze(f, model.TargetIngressExpress, analyzer.Overrides{NoLoops: true})
	require.True(t, opts.Needs.Has(model.NeedNoLoops))

	src, err := New(f, opts).Emit()
	require.NoError(t, err)
	assert.Contains(t, src, "#pragma unroll")
}

func TestEmit_DefaultTableLoopOmitsUnrollPragma(t *testing.T) {
	f := sampleFilter(t)
	opts := analyzer.Analyze(f, model.TargetIngressExpress, analyzer.Overrides{})
	require.False(t, opts.Needs.Has(model.NeedNoLoops))

	src, err := New(f, opts).Emit()
	require.NoError(t, err)
	assert.NotContains(t, src, "#pragma unroll")
}

func TestEmit_KeyLayoutOrderMatchesModel(t *testing.T) {
	f := sampleFilter(t)
	opts := analyzer.Analyze(f, model.TargetIngressExpress, analyzer.Overrides{})

	src, err := New(f, opts).Emit()
	require.NoError(t, err)

	layout := model.KeyLayout()
	firstFieldIdx := strings.Index(src, "struct kefir_key {")
	require.GreaterOrEqual(t, firstFieldIdx, 0)
	lastPos := -1
	for _, f := range layout {
		pos := strings.Index(src[firstFieldIdx:], cFieldName(f.Kind))
		require.GreaterOrEqual(t, pos, 0, "field %s missing from key type", f.Kind)
		assert.Greater(t, pos, lastPos)
		lastPos = pos
	}
}
