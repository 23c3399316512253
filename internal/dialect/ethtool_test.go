// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package dialect

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kefir-project/kefir/internal/model"
)

func TestParseEthtool_TCPPortDrop(t *testing.T) {
	tokens := []string{"flow-type", "tcp4", "dst-port", "22", "action", "drop"}
	r, err := ParseEthtool(tokens)
	require.NoError(t, err)
	assert.Equal(t, model.ActionDrop, r.Action)

	var sawProto, sawPort bool
	for _, m := range r.Matches {
		switch m.Kind {
		case model.MatchIP4L4Proto:
			sawProto = true
			assert.Equal(t, byte(6), m.Value[model.MaxValueBytes-1])
		case model.MatchIP4L4PortDst:
			sawPort = true
			assert.Equal(t, byte(22), m.Value[model.MaxValueBytes-1])
		}
	}
	assert.True(t, sawProto, "expected implicit ip_proto match from flow-type tcp4")
	assert.True(t, sawPort)
}

func TestParseEthtool_EtherFlowType(t *testing.T) {
	tokens := []string{"flow-type", "ether", "src-mac", "aa:bb:cc:dd:ee:ff", "action", "pass"}
	r, err := ParseEthtool(tokens)
	require.NoError(t, err)
	assert.Equal(t, model.ActionPass, r.Action)
	require.Len(t, r.Matches, 1)
	assert.Equal(t, model.MatchEtherSrc, r.Matches[0].Kind)
}

func TestParseEthtool_IPKeyWithoutFamilyFails(t *testing.T) {
	tokens := []string{"flow-type", "ether", "src-ip", "10.0.0.1", "action", "drop"}
	_, err := ParseEthtool(tokens)
	require.Error(t, err)
}

func TestParseEthtool_MaskToken(t *testing.T) {
	tokens := []string{"flow-type", "ip4", "src-ip", "10.0.0.0", "m", "255.0.0.0", "action", "drop"}
	r, err := ParseEthtool(tokens)
	require.NoError(t, err)
	var found bool
	for _, m := range r.Matches {
		if m.Kind == model.MatchIP4Src {
			found = true
			assert.True(t, m.Flags.UseMask())
		}
	}
	assert.True(t, found)
}

func TestParseEthtool_MissingAction(t *testing.T) {
	tokens := []string{"flow-type", "tcp4", "dst-port", "22"}
	_, err := ParseEthtool(tokens)
	require.Error(t, err)
}

func TestParseEthtool_MissingFlowType(t *testing.T) {
	tokens := []string{"dst-port", "22", "action", "drop"}
	_, err := ParseEthtool(tokens)
	require.Error(t, err)
}

func TestParseEthtool_UnrecognizedKey(t *testing.T) {
	tokens := []string{"flow-type", "tcp4", "bogus-key", "22", "action", "drop"}
	_, err := ParseEthtool(tokens)
	require.Error(t, err)
}

func TestParseEthtool_MalformedIP(t *testing.T) {
	tokens := []string{"flow-type", "ip4", "src-ip", "999.0.0.0", "action", "drop"}
	_, err := ParseEthtool(tokens)
	require.Error(t, err)
}
