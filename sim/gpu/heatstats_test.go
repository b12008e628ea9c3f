package gpu

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gurbano/sandymarton/sim"
)

func TestTemperatureRange(t *testing.T) {
	cells := []sim.HeatCell{
		sim.NeutralHeatCell(280),
		sim.NeutralHeatCell(310),
		sim.NeutralHeatCell(295),
	}
	assert.Equal(t, 30.0, TemperatureRange(cells))
}

func TestTemperatureRangeEmpty(t *testing.T) {
	assert.Equal(t, 0.0, TemperatureRange(nil))
}
