package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTemperatureRoundTrip(t *testing.T) {
	for kelvin := 0; kelvin <= 65535; kelvin += 37 {
		lo, hi := EncodeTemperature(uint16(kelvin))
		got := DecodeTemperature(lo, hi)
		assert.Equal(t, uint16(kelvin), got)
	}
	// Exhaustively check the boundaries.
	for _, kelvin := range []uint16{0, 1, 65534, 65535} {
		lo, hi := EncodeTemperature(kelvin)
		assert.Equal(t, kelvin, DecodeTemperature(lo, hi))
	}
}

func TestSignedByteRoundTrip(t *testing.T) {
	for b := 0; b <= 255; b++ {
		got := EncodeSigned(DecodeSigned(uint8(b)))
		assert.Equal(t, uint8(b), got)
	}
}

func TestSignedMidpointIsNeutral(t *testing.T) {
	assert.InDelta(t, 0.0, DecodeSigned(VelocityMidpoint), 1e-9)
	assert.Equal(t, uint8(VelocityMidpoint), EncodeSigned(0))
}

func TestClassificationRanges(t *testing.T) {
	assert.True(t, IsEmpty(0))
	assert.True(t, IsEmpty(15))
	assert.True(t, IsStatic(16))
	assert.True(t, IsStatic(32))
	assert.True(t, IsSolid(33))
	assert.True(t, IsSolid(63))
	assert.True(t, IsLiquid(64))
	assert.True(t, IsLiquid(111))
	assert.True(t, IsGas(112))
	assert.True(t, IsGas(159))

	assert.False(t, IsMovable(0))  // empty
	assert.False(t, IsMovable(20)) // static
	assert.True(t, IsMovable(35))  // solid
	assert.True(t, IsMovable(70))  // liquid
	assert.True(t, IsMovable(120)) // gas
}

func TestNeutralHeatCell(t *testing.T) {
	h := NeutralHeatCell(293)
	assert.Equal(t, uint16(293), h.Temperature())
	assert.Equal(t, uint8(VelocityMidpoint), h.ForceX)
	assert.Equal(t, uint8(VelocityMidpoint), h.ForceY)
}
