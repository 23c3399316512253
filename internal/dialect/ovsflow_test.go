// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package dialect

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kefir-project/kefir/internal/model"
)

func TestParseOVSFlow_Basic(t *testing.T) {
	tokens := []string{"src_ip=10.0.0.0/8", "ip_proto=tcp", "actions=drop"}
	r, err := ParseOVSFlow(tokens)
	require.NoError(t, err)
	assert.Equal(t, model.ActionDrop, r.Action)
	assert.Len(t, r.Matches, 2)
}

func TestParseOVSFlow_Output(t *testing.T) {
	tokens := []string{"dst_port=80", "actions=output"}
	r, err := ParseOVSFlow(tokens)
	require.NoError(t, err)
	assert.Equal(t, model.ActionPass, r.Action)
}

func TestParseOVSFlow_MalformedPair(t *testing.T) {
	_, err := ParseOVSFlow([]string{"dst_port", "actions=drop"})
	require.Error(t, err)
}

func TestParseOVSFlow_DuplicateKey(t *testing.T) {
	_, err := ParseOVSFlow([]string{"dst_port=80", "dst_port=443", "actions=drop"})
	require.Error(t, err)
}

func TestParseOVSFlow_MissingActions(t *testing.T) {
	_, err := ParseOVSFlow([]string{"dst_port=80"})
	require.Error(t, err)
}

func TestLoadRuleString_OVSCommaSplit(t *testing.T) {
	f := model.NewFilter()
	err := LoadRuleString(f, TagOVSFlow, "src_ip=10.0.0.0/8, ip_proto=tcp, actions=drop", -1)
	require.NoError(t, err)
	assert.Equal(t, 1, f.Len())
}

func TestLoadRuleString_EthtoolWhitespaceSplit(t *testing.T) {
	f := model.NewFilter()
	err := LoadRuleString(f, TagEthtool, "flow-type tcp4 dst-port 22 action drop", -1)
	require.NoError(t, err)
	assert.Equal(t, 1, f.Len())
}
