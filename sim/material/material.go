// Package material holds the static material table ("Material table")
// and the lookups the shader-helper and pass layers need: friction,
// thermal conductivity, density, and phase-transition targets per
// material id.
package material

import (
	_ "embed"
	"fmt"

	"github.com/gocarina/gocsv"

	"github.com/gurbano/sandymarton/sim"
)

//go:embed table.csv
var defaultTableCSV []byte

// None is the sentinel transition-target value meaning "no transition".
const None int = -1

// Entry describes one material_id's static properties: default spawn
// temperature, density, friction, thermal conductivity, and the phase
// transitions it can undergo.
type Entry struct {
	ID                 uint8   `csv:"id"`
	Name               string  `csv:"name"`
	DefaultTemperature uint16  `csv:"default_temperature_k"`
	Density            float64 `csv:"density"`
	Friction           float64 `csv:"friction"`
	Conductivity       float64 `csv:"conductivity"`
	MeltingPoint       uint16  `csv:"melting_point_k"`
	BoilingPoint       uint16  `csv:"boiling_point_k"`
	CondensationPoint  uint16  `csv:"condensation_point_k"`
	MeltTarget         int     `csv:"melt_target"`
	FreezeTarget       int     `csv:"freeze_target"`
	BoilTarget         int     `csv:"boil_target"`
	CondenseTarget     int     `csv:"condense_target"`
	ColorR             uint8   `csv:"color_r"`
	ColorG             uint8   `csv:"color_g"`
	ColorB             uint8   `csv:"color_b"`
	ColorA             uint8   `csv:"color_a"`
}

// Table is a lookup from material_id to its static Entry, indexed 0-255.
type Table struct {
	entries [256]Entry
	present [256]bool
}

// Load parses CSV data in the Entry schema above and validates: melting
// point <= boiling point, condensation point <= boiling point, and every
// transition target is either None or itself a present id.
func Load(csvData []byte) (*Table, error) {
	var rows []Entry
	if err := gocsv.UnmarshalBytes(csvData, &rows); err != nil {
		return nil, fmt.Errorf("material: parsing table: %w", err)
	}

	t := &Table{}
	for _, row := range rows {
		t.entries[row.ID] = row
		t.present[row.ID] = true
	}

	for _, row := range rows {
		if row.BoilingPoint != 0 && row.MeltingPoint > row.BoilingPoint {
			return nil, fmt.Errorf("material: id %d (%s): melting point %d exceeds boiling point %d", row.ID, row.Name, row.MeltingPoint, row.BoilingPoint)
		}
		if row.BoilingPoint != 0 && row.CondensationPoint > row.BoilingPoint {
			return nil, fmt.Errorf("material: id %d (%s): condensation point %d exceeds boiling point %d", row.ID, row.Name, row.CondensationPoint, row.BoilingPoint)
		}
		for _, target := range []int{row.MeltTarget, row.FreezeTarget, row.BoilTarget, row.CondenseTarget} {
			if target == None {
				continue
			}
			if target < 0 || target > 255 || !t.present[target] {
				return nil, fmt.Errorf("material: id %d (%s): transition target %d is not a valid material id", row.ID, row.Name, target)
			}
		}
	}
	return t, nil
}

// LoadDefault parses the material table embedded into the binary.
func LoadDefault() (*Table, error) {
	return Load(defaultTableCSV)
}

// MustLoadDefault is LoadDefault's panic-on-error counterpart, convenient at
// program start where a malformed embedded table is a build defect, not a
// runtime condition to recover from.
func MustLoadDefault() *Table {
	t, err := LoadDefault()
	if err != nil {
		panic(err)
	}
	return t
}

// Entry returns the static entry for id, or the zero Entry if none was
// loaded for it (treated as EMPTY by callers on an unknown material_id).
func (t *Table) Entry(id sim.MaterialID) Entry {
	return t.entries[id]
}

// Friction returns the tabulated friction (0-1) for id.
func (t *Table) Friction(id sim.MaterialID) float64 { return t.entries[id].Friction }

// Conductivity returns the tabulated thermal conductivity (0-1) for id.
func (t *Table) Conductivity(id sim.MaterialID) float64 { return t.entries[id].Conductivity }

// Density returns the tabulated density for id, used by the Archimedes
// buoyancy pass to decide which of two materials sinks.
func (t *Table) Density(id sim.MaterialID) float64 { return t.entries[id].Density }

// DefaultTemperature returns the Kelvin value a freshly spawned cell of id
// should carry in H.
func (t *Table) DefaultTemperature(id sim.MaterialID) uint16 {
	return t.entries[id].DefaultTemperature
}

// Transition applies the phase-transition precedence to a
// cell of material id at temperature kelvin. It returns the resulting
// material id and whether a transition fired. EMPTY cells never transition.
func (t *Table) Transition(id sim.MaterialID, kelvin uint16) (sim.MaterialID, bool) {
	if sim.IsEmpty(id) {
		return id, false
	}
	e := t.entries[id]
	switch {
	case e.BoilTarget != None && kelvin >= e.BoilingPoint:
		return sim.MaterialID(e.BoilTarget), true
	case e.CondenseTarget != None && e.CondensationPoint > 0 && kelvin < e.CondensationPoint:
		return sim.MaterialID(e.CondenseTarget), true
	case e.MeltTarget != None && kelvin >= e.MeltingPoint:
		return sim.MaterialID(e.MeltTarget), true
	case e.FreezeTarget != None && kelvin < e.MeltingPoint:
		return sim.MaterialID(e.FreezeTarget), true
	default:
		return id, false
	}
}

// AverageFriction returns the mean tabulated friction of two materials, the
// value the topple rule's probability is derived from.
func (t *Table) AverageFriction(a, b sim.MaterialID) float64 {
	return (t.Friction(a) + t.Friction(b)) / 2
}
