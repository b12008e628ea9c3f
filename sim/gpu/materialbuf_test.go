package gpu

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gurbano/sandymarton/sim/material"
)

const testCSVHeader = "id,name,default_temperature_k,density,friction,conductivity,melting_point_k,boiling_point_k,condensation_point_k,melt_target,freeze_target,boil_target,condense_target,color_r,color_g,color_b,color_a\n"

func TestPackMaterialTableEncodesEveryField(t *testing.T) {
	csv := testCSVHeader + "40,sand,293,1600,0.6,0.2,1973,0,0,-1,-1,-1,-1,194,178,128,255\n"
	table, err := material.Load([]byte(csv))
	require.NoError(t, err)

	packed := PackMaterialTable(table)
	require.Len(t, packed, 256*materialEntryStride)

	off := 40 * materialEntryStride
	assert.InDelta(t, 0.6, float64(math.Float32frombits(binary.LittleEndian.Uint32(packed[off+0:]))), 1e-6)
	assert.InDelta(t, 0.2, float64(math.Float32frombits(binary.LittleEndian.Uint32(packed[off+4:]))), 1e-6)
	assert.InDelta(t, 1600, float64(math.Float32frombits(binary.LittleEndian.Uint32(packed[off+8:]))), 1e-6)
	assert.InDelta(t, 293, float64(math.Float32frombits(binary.LittleEndian.Uint32(packed[off+12:]))), 1e-6)
	assert.InDelta(t, 1973, float64(math.Float32frombits(binary.LittleEndian.Uint32(packed[off+16:]))), 1e-6)
	assert.InDelta(t, 0, float64(math.Float32frombits(binary.LittleEndian.Uint32(packed[off+20:]))), 1e-6)
	assert.InDelta(t, 0, float64(math.Float32frombits(binary.LittleEndian.Uint32(packed[off+24:]))), 1e-6)
	assert.Equal(t, int32(-1), int32(binary.LittleEndian.Uint32(packed[off+28:])))
	assert.Equal(t, int32(-1), int32(binary.LittleEndian.Uint32(packed[off+32:])))
	assert.Equal(t, int32(-1), int32(binary.LittleEndian.Uint32(packed[off+36:])))
	assert.Equal(t, int32(-1), int32(binary.LittleEndian.Uint32(packed[off+40:])))
}

func TestPackMaterialTableUnloadedIDsAreZero(t *testing.T) {
	table, err := material.Load([]byte(testCSVHeader))
	require.NoError(t, err)
	packed := PackMaterialTable(table)
	off := 200 * materialEntryStride
	for _, b := range packed[off : off+materialEntryStride] {
		assert.Equal(t, byte(0), b)
	}
}
