// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNeeds_SetHasClear(t *testing.T) {
	var n Needs
	n = n.Set(NeedIPv4 | NeedTCP)
	assert.True(t, n.Has(NeedIPv4))
	assert.True(t, n.Has(NeedTCP))
	assert.False(t, n.Has(NeedIPv6))

	n = n.Clear(NeedTCP)
	assert.False(t, n.Has(NeedTCP))
	assert.True(t, n.Has(NeedIPv4))
}

func TestNeeds_String(t *testing.T) {
	var n Needs
	assert.Equal(t, "none", n.String())

	n = n.Set(NeedEthernet | NeedIPv4)
	assert.Contains(t, n.String(), "ethernet")
	assert.Contains(t, n.String(), "ipv4")
}

func TestTarget_Valid(t *testing.T) {
	assert.True(t, TargetIngressExpress.Valid())
	assert.True(t, TargetIngressClassifier.Valid())
	assert.False(t, Target(99).Valid())
}

func TestParseTarget_RoundTripsTargetString(t *testing.T) {
	for _, target := range []Target{TargetIngressExpress, TargetIngressClassifier} {
		got, err := ParseTarget(target.String())
		assert.NoError(t, err)
		assert.Equal(t, target, got)
	}
}

func TestParseTarget_UnknownNameFails(t *testing.T) {
	_, err := ParseTarget("ingress-whatever")
	assert.Error(t, err)
}

func TestHelperSet_HasWith(t *testing.T) {
	var h HelperSet
	assert.False(t, h.Has(HelperMapLookup))
	h = h.With(HelperMapLookup)
	assert.True(t, h.Has(HelperMapLookup))
	assert.False(t, h.Has(HelperTracePrintk))
}
