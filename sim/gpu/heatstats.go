package gpu

import (
	"gonum.org/v1/gonum/floats"

	"github.com/gurbano/sandymarton/sim"
)

// TemperatureRange returns max(T) - min(T) across a heat/force snapshot,
// the spread cmd/simpreview reports after a run as a convergence diagnostic.
func TemperatureRange(cells []sim.HeatCell) float64 {
	if len(cells) == 0 {
		return 0
	}
	temps := make([]float64, len(cells))
	for i, c := range cells {
		temps[i] = float64(c.Temperature())
	}
	return floats.Max(temps) - floats.Min(temps)
}
