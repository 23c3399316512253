// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package dialect

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kefir-project/kefir/internal/model"
)

func TestParseTCFlower_CIDRMask(t *testing.T) {
	tokens := []string{"src_ip", "10.0.0.0/8", "action", "drop"}
	r, err := ParseTCFlower(tokens)
	require.NoError(t, err)
	assert.Equal(t, model.ActionDrop, r.Action)
	require.Len(t, r.Matches, 1)
	m := r.Matches[0]
	assert.Equal(t, model.MatchIP4Src, m.Kind)
	assert.True(t, m.Flags.UseMask())
	assert.Equal(t, byte(0xff), m.Mask[model.MaxValueBytes-4])
	assert.Equal(t, byte(0x00), m.Mask[model.MaxValueBytes-1])
}

func TestParseTCFlower_IPv6ViaEthType(t *testing.T) {
	tokens := []string{"eth_type", "ip6", "dst_ip", "::1", "action", "pass"}
	r, err := ParseTCFlower(tokens)
	require.NoError(t, err)
	require.Len(t, r.Matches, 1)
	assert.Equal(t, model.MatchIP6Dst, r.Matches[0].Kind)
}

func TestParseTCFlower_CVlan(t *testing.T) {
	tokens := []string{"cvlan_id", "100", "action", "pass"}
	r, err := ParseTCFlower(tokens)
	require.NoError(t, err)
	require.Len(t, r.Matches, 1)
	assert.Equal(t, model.MatchCVlanID, r.Matches[0].Kind)
}

func TestParseTCFlower_MissingAction(t *testing.T) {
	_, err := ParseTCFlower([]string{"src_ip", "10.0.0.1"})
	require.Error(t, err)
}

func TestParseTCFlower_UnrecognizedKey(t *testing.T) {
	_, err := ParseTCFlower([]string{"bogus", "1", "action", "drop"})
	require.Error(t, err)
}
