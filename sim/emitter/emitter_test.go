package emitter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlaceAndSnapshot(t *testing.T) {
	table := NewTable()
	id := table.Place(Spec{X: 5, Y: 9, Radius: 3, Lifetime: PermanentLifetime, Kind: KindMaterialSource, Material: 40, Rate: 0.5})

	require.Equal(t, 1, table.Len())
	snap := table.Snapshot()
	require.Len(t, snap, 1)
	assert.Equal(t, id, snap[0].ID)
	assert.Equal(t, 5, snap[0].X)
	assert.Equal(t, 9, snap[0].Y)
	assert.Equal(t, uint8(40), snap[0].Material)
}

func TestUpdateExpiresFiniteLifetime(t *testing.T) {
	table := NewTable()
	table.Place(Spec{X: 0, Y: 0, Radius: 1, Lifetime: 2, Kind: KindHeatSource})

	table.Update()
	assert.Equal(t, 1, table.Len())
	table.Update()
	assert.Equal(t, 0, table.Len())
}

func TestUpdateNeverExpiresPermanentLifetime(t *testing.T) {
	table := NewTable()
	table.Place(Spec{X: 0, Y: 0, Radius: 1, Lifetime: PermanentLifetime, Kind: KindColdSource})
	for i := 0; i < 100; i++ {
		table.Update()
	}
	assert.Equal(t, 1, table.Len())
}

func TestUpdateRemovesCollapsedShrinkingEmitter(t *testing.T) {
	table := NewTable()
	table.Place(Spec{X: 0, Y: 0, Radius: 2, Lifetime: PermanentLifetime, Kind: KindMaterialSink, Flags: FlagShrinking})

	table.Update() // radius 2 -> 1
	assert.Equal(t, 1, table.Len())
	table.Update() // radius 1 -> 0, removed
	assert.Equal(t, 0, table.Len())
}

func TestRemoveRetractsByID(t *testing.T) {
	table := NewTable()
	id := table.Place(Spec{X: 1, Y: 1, Radius: 1, Lifetime: PermanentLifetime, Kind: KindForceSource})
	table.Remove(id)
	assert.Equal(t, 0, table.Len())
}

func TestSnapshotEmptyTableStillReturnsEmptySlice(t *testing.T) {
	table := NewTable()
	snap := table.Snapshot()
	assert.NotNil(t, snap)
	assert.Len(t, snap, 0)
}

func TestPlaceNormalizesForceSourceDirection(t *testing.T) {
	table := NewTable()
	table.Place(Spec{X: 0, Y: 0, Radius: 1, Lifetime: PermanentLifetime, Kind: KindForceSource, DirX: 3, DirY: 4, Magnitude: 10})

	snap := table.Snapshot()
	require.Len(t, snap, 1)
	assert.InDelta(t, 0.6, snap[0].DirX, 1e-6)
	assert.InDelta(t, 0.8, snap[0].DirY, 1e-6)
	assert.Equal(t, 10.0, snap[0].Magnitude)
}

func TestPlaceLeavesZeroForceSourceDirectionAtZero(t *testing.T) {
	table := NewTable()
	table.Place(Spec{X: 0, Y: 0, Radius: 1, Lifetime: PermanentLifetime, Kind: KindForceSource, Magnitude: 10})

	snap := table.Snapshot()
	require.Len(t, snap, 1)
	assert.Equal(t, 0.0, snap[0].DirX)
	assert.Equal(t, 0.0, snap[0].DirY)
}
