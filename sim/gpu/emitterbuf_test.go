package gpu

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gurbano/sandymarton/sim/emitter"
)

func TestPackEmitterSnapshotEncodesPositionAndKind(t *testing.T) {
	records := []emitter.Record{
		{X: 12, Y: -4, Radius: 3, Kind: emitter.KindHeatSource, Material: 0, Rate: 0.25, Intensity: 10},
	}
	packed := PackEmitterSnapshot(records)
	require.Len(t, packed, emitterRecordStride)

	assert.Equal(t, int32(12), int32(binary.LittleEndian.Uint32(packed[0:])))
	assert.Equal(t, int32(-4), int32(binary.LittleEndian.Uint32(packed[4:])))
	assert.Equal(t, int32(3), int32(binary.LittleEndian.Uint32(packed[8:])))
	assert.Equal(t, uint32(emitter.KindHeatSource), binary.LittleEndian.Uint32(packed[12:]))
	assert.InDelta(t, 0.25, float64(math.Float32frombits(binary.LittleEndian.Uint32(packed[20:]))), 1e-6)
}

func TestPackEmitterSnapshotFoldsForceVectorByMagnitude(t *testing.T) {
	records := []emitter.Record{
		{Kind: emitter.KindForceSource, DirX: 1, DirY: 0, Magnitude: 5},
	}
	packed := PackEmitterSnapshot(records)
	assert.InDelta(t, 5.0, float64(math.Float32frombits(binary.LittleEndian.Uint32(packed[28:]))), 1e-6)
	assert.InDelta(t, 0.0, float64(math.Float32frombits(binary.LittleEndian.Uint32(packed[32:]))), 1e-6)
}

func TestPackEmitterSnapshotEmptyIsEmpty(t *testing.T) {
	packed := PackEmitterSnapshot(nil)
	assert.Len(t, packed, 0)
}
