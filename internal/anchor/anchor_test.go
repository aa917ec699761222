package anchor_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leftmike/rowset/internal/anchor"
)

func TestAnchorIfMinimumTracksLowest(t *testing.T) {
	reg := anchor.NewRegistry()
	a := anchor.New("MemRowSet-1", reg)

	a.AnchorIfMinimum(10)
	a.AnchorIfMinimum(3)
	a.AnchorIfMinimum(7)

	min, ok := a.Min()
	require.True(t, ok)
	assert.Equal(t, anchor.OpID(3), min)

	regMin, ok := reg.MinAnchor("MemRowSet-1")
	require.True(t, ok)
	assert.Equal(t, anchor.OpID(3), regMin)
}

func TestRegistryGlobalMinimumAcrossNames(t *testing.T) {
	reg := anchor.NewRegistry()
	a1 := anchor.New("MemRowSet-1", reg)
	a2 := anchor.New("MemRowSet-2", reg)

	a1.AnchorIfMinimum(50)
	a2.AnchorIfMinimum(20)

	min, ok := reg.GlobalMinimum()
	require.True(t, ok)
	assert.Equal(t, anchor.OpID(20), min)
}

func TestRegistryGlobalMinimumEmpty(t *testing.T) {
	reg := anchor.NewRegistry()
	_, ok := reg.GlobalMinimum()
	assert.False(t, ok)
}

func TestAnchorWithoutRegistryStillTracksLocally(t *testing.T) {
	a := anchor.New("MemRowSet-standalone", nil)
	a.AnchorIfMinimum(5)
	a.AnchorIfMinimum(2)

	min, ok := a.Min()
	require.True(t, ok)
	assert.Equal(t, anchor.OpID(2), min)
}
