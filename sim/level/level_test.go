package level

import (
	"bytes"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gurbano/sandymarton/sim"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	const w, h = 4, 4
	cells := make([]sim.Cell, w*h)
	for i := range cells {
		cells[i] = sim.Cell{Material: sim.MaterialID(i % 64), VelX: 10, VelY: 20, Aux: 255}
	}

	var buf bytes.Buffer
	require.NoError(t, Save(&buf, cells, w, h))

	got, err := Load(&buf, w, h)
	require.NoError(t, err)
	require.Len(t, got, w*h)
	assert.Equal(t, cells, got)
}

func TestLoadResamplesMismatchedDimensions(t *testing.T) {
	const srcW, srcH = 2, 2
	cells := []sim.Cell{
		{Material: 40, VelX: 128, VelY: 128, Aux: 255},
		{Material: 41, VelX: 128, VelY: 128, Aux: 255},
		{Material: 42, VelX: 128, VelY: 128, Aux: 255},
		{Material: 43, VelX: 128, VelY: 128, Aux: 255},
	}
	var buf bytes.Buffer
	require.NoError(t, Save(&buf, cells, srcW, srcH))

	got, err := Load(&buf, 8, 8)
	require.NoError(t, err)
	assert.Len(t, got, 64)
}

func TestSaveHeatRoundTrip(t *testing.T) {
	const w, h = 2, 2
	cells := make([]sim.HeatCell, w*h)
	for i := range cells {
		cells[i] = sim.NeutralHeatCell(300)
	}
	var buf bytes.Buffer
	require.NoError(t, SaveHeat(&buf, cells, w, h))
	assert.NotZero(t, buf.Len())

	img, err := png.Decode(&buf)
	require.NoError(t, err)
	got := color.NRGBAModel.Convert(img.At(0, 0)).(color.NRGBA)
	assert.Equal(t, color.NRGBA{R: cells[0].TempLo, G: cells[0].TempHi, B: cells[0].ForceX, A: cells[0].ForceY}, got)
}
