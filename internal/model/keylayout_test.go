// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyLayout_NoOverlaps(t *testing.T) {
	layout := KeyLayout()
	require.NotEmpty(t, layout)
	for i := 1; i < len(layout); i++ {
		prev := layout[i-1]
		cur := layout[i]
		assert.Equal(t, prev.Offset+prev.Width, cur.Offset, "field %s should start where %s ends", cur.Kind, prev.Kind)
	}
}

func TestKeyLayout_SizeMatchesLastField(t *testing.T) {
	layout := KeyLayout()
	last := layout[len(layout)-1]
	assert.Equal(t, last.Offset+last.Width, KeySize())
}

func TestKeyLayout_IsACopy(t *testing.T) {
	a := KeyLayout()
	a[0].Width = 999
	b := KeyLayout()
	assert.NotEqual(t, 999, b[0].Width)
}

func TestFieldFor(t *testing.T) {
	f, ok := FieldFor(MatchIP4Src)
	require.True(t, ok)
	assert.Equal(t, FormatIPv4.Bytes(), f.Width)

	_, ok = FieldFor(MatchType(999))
	assert.False(t, ok)
}

func TestFieldFor_WidthMatchesFormat(t *testing.T) {
	for _, kind := range AllMatchTypes() {
		f, ok := FieldFor(kind)
		require.True(t, ok)
		assert.Equal(t, kind.Format().Bytes(), f.Width)
	}
}
