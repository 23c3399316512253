// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kefir-project/kefir/internal/model"
)

func mustMatch(t *testing.T, kind model.MatchType, value []byte) model.Match {
	t.Helper()
	m, err := model.NewMatch(kind, model.OpEqual, value, nil)
	require.NoError(t, err)
	return m
}

func mustRule(t *testing.T, action model.Action, matches ...model.Match) *model.Rule {
	t.Helper()
	r, err := model.NewRule(matches, action, 0)
	require.NoError(t, err)
	return r
}

func TestAnalyze_TCPPortSetsEthernetIPv4L4TCP(t *testing.T) {
	f := model.NewFilter()
	require.NoError(t, f.Insert(-1, mustRule(t, model.ActionDrop,
		mustMatch(t, model.MatchIP4L4Proto, []byte{6}),
		mustMatch(t, model.MatchIP4L4PortDst, []byte{0, 22}),
	)))

	opts := Analyze(f, model.TargetIngressExpress, Overrides{})
	assert.True(t, opts.Needs.Has(model.NeedEthernet))
	assert.True(t, opts.Needs.Has(model.NeedIPv4))
	assert.True(t, opts.Needs.Has(model.NeedL4Window))
	assert.True(t, opts.Needs.Has(model.NeedTCP))
	assert.False(t, opts.Needs.Has(model.NeedIPv6))
	assert.Equal(t, 2, opts.MatchCount)
}

func TestAnalyze_MaskUseSetsUseMasks(t *testing.T) {
	f := model.NewFilter()
	m, err := model.NewMatch(model.MatchIP4Src, model.OpEqual, []byte{10, 0, 0, 0}, []byte{255, 0, 0, 0})
	require.NoError(t, err)
	require.NoError(t, f.Insert(-1, mustRule(t, model.ActionDrop, m)))

	opts := Analyze(f, model.TargetIngressClassifier, Overrides{})
	assert.True(t, opts.Needs.Has(model.NeedUseMasks))
}

func TestAnalyze_CVlanAndSVlan(t *testing.T) {
	f := model.NewFilter()
	require.NoError(t, f.Insert(-1, mustRule(t, model.ActionPass, mustMatch(t, model.MatchCVlanID, []byte{0, 100}))))
	require.NoError(t, f.Insert(-1, mustRule(t, model.ActionPass, mustMatch(t, model.MatchSVlanID, []byte{0, 200}))))

	opts := Analyze(f, model.TargetIngressExpress, Overrides{})
	assert.True(t, opts.Needs.Has(model.NeedCVlan))
	assert.True(t, opts.Needs.Has(model.NeedSVlan))
	assert.True(t, opts.Needs.Has(model.NeedEthernet))
}

func TestAnalyze_GenericVlanSetsBoth(t *testing.T) {
	f := model.NewFilter()
	require.NoError(t, f.Insert(-1, mustRule(t, model.ActionPass, mustMatch(t, model.MatchVlanID, []byte{0, 50}))))

	opts := Analyze(f, model.TargetIngressExpress, Overrides{})
	assert.True(t, opts.Needs.Has(model.NeedCVlan))
	assert.True(t, opts.Needs.Has(model.NeedSVlan))
}

func TestAnalyze_NoVlanOverrideClearsVlanNeeds(t *testing.T) {
	f := model.NewFilter()
	require.NoError(t, f.Insert(-1, mustRule(t, model.ActionPass, mustMatch(t, model.MatchCVlanID, []byte{0, 100}))))

	opts := Analyze(f, model.TargetIngressExpress, Overrides{NoVlan: true})
	assert.False(t, opts.Needs.Has(model.NeedCVlan))
	assert.True(t, opts.Needs.Has(model.NeedNoVlan))
}

func TestAnalyze_DebugPrintAddsTracePrintkHelper(t *testing.T) {
	f := model.NewFilter()
	require.NoError(t, f.Insert(-1, mustRule(t, model.ActionPass, mustMatch(t, model.MatchIP4Ttl, []byte{64}))))

	opts := Analyze(f, model.TargetIngressExpress, Overrides{DebugPrint: true})
	assert.True(t, opts.HelperReqs.Has(model.HelperMapLookup))
	assert.True(t, opts.HelperReqs.Has(model.HelperTracePrintk))
}

func TestAnalyze_MapLookupAlwaysRequired(t *testing.T) {
	f := model.NewFilter()
	require.NoError(t, f.Insert(-1, mustRule(t, model.ActionPass, mustMatch(t, model.MatchIP4Ttl, []byte{64}))))

	opts := Analyze(f, model.TargetIngressExpress, Overrides{})
	assert.True(t, opts.HelperReqs.Has(model.HelperMapLookup))
	assert.False(t, opts.HelperReqs.Has(model.HelperTracePrintk))
}

func TestAnalyze_MatchCountIsMaxAcrossRules(t *testing.T) {
	f := model.NewFilter()
	require.NoError(t, f.Insert(-1, mustRule(t, model.ActionPass, mustMatch(t, model.MatchIP4Ttl, []byte{64}))))
	require.NoError(t, f.Insert(-1, mustRule(t, model.ActionDrop,
		mustMatch(t, model.MatchIP4L4Proto, []byte{17}),
		mustMatch(t, model.MatchIP4L4PortDst, []byte{0, 53}),
		mustMatch(t, model.MatchIP4Src, []byte{10, 0, 0, 1}),
	)))

	opts := Analyze(f, model.TargetIngressExpress, Overrides{})
	assert.Equal(t, 3, opts.MatchCount)
}

func TestAnalyze_IPAnyMatchSetsBothFamilies(t *testing.T) {
	f := model.NewFilter()
	require.NoError(t, f.Insert(-1, mustRule(t, model.ActionPass, mustMatch(t, model.MatchIPAnyTtl, []byte{32}))))

	opts := Analyze(f, model.TargetIngressExpress, Overrides{})
	assert.True(t, opts.Needs.Has(model.NeedIPv4))
	assert.True(t, opts.Needs.Has(model.NeedIPv6))
}

func TestAnalyze_EmptyFilterHasNoNeeds(t *testing.T) {
	f := model.NewFilter()
	opts := Analyze(f, model.TargetIngressExpress, Overrides{})
	assert.Equal(t, model.Needs(0), opts.Needs)
	assert.Equal(t, 0, opts.MatchCount)
}

// Minimality invariant (spec.md §8): removing any flag from needs(F)
// leaves at least one referenced MatchType undecodable.
func TestMinimal_TCPRuleNeedsAreMinimal(t *testing.T) {
	f := model.NewFilter()
	require.NoError(t, f.Insert(-1, mustRule(t, model.ActionDrop,
		mustMatch(t, model.MatchIP4L4Proto, []byte{6}),
		mustMatch(t, model.MatchIP4L4PortDst, []byte{0, 22}),
	)))

	opts := Analyze(f, model.TargetIngressExpress, Overrides{})
	assert.True(t, Minimal(f, opts.Needs))
}

func TestMinimal_RejectsArtificiallyPaddedNeeds(t *testing.T) {
	f := model.NewFilter()
	require.NoError(t, f.Insert(-1, mustRule(t, model.ActionDrop, mustMatch(t, model.MatchIP4Ttl, []byte{64}))))

	opts := Analyze(f, model.TargetIngressExpress, Overrides{})
	padded := opts.Needs.Set(model.NeedIPv6 | model.NeedSCTP)
	assert.False(t, Minimal(f, padded))
}

func TestAnalyze_Deterministic(t *testing.T) {
	f := model.NewFilter()
	require.NoError(t, f.Insert(-1, mustRule(t, model.ActionDrop,
		mustMatch(t, model.MatchIP6L4Proto, []byte{17}),
		mustMatch(t, model.MatchIP6L4PortSrc, []byte{0, 53}),
	)))

	a := Analyze(f, model.TargetIngressClassifier, Overrides{InlineMatch: true})
	b := Analyze(f, model.TargetIngressClassifier, Overrides{InlineMatch: true})
	assert.Equal(t, a, b)
}
