// Package emitter implements the emitter table: the external collaborator's list of
// material/heat/cold/force sources and sinks, uploaded to the GPU each
// frame. Emitters are modeled as entities in an ark ECS world rather than a
// bare slice, so the owner (the build tool, out of core scope) gets a real
// registry with place()/update() lifecycle instead of hand-rolled indices.
package emitter

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
	"github.com/mlange-42/ark/ecs"
)

// Kind distinguishes the five emitter variants.
type Kind uint8

const (
	KindMaterialSource Kind = iota
	KindMaterialSink
	KindHeatSource
	KindColdSource
	KindForceSource
)

// PermanentLifetime is the sentinel remaining-lifetime value meaning the
// emitter never expires on its own.
const PermanentLifetime int32 = -1

// Flags captures whether an emitter is active, growing, or shrinking.
type Flags uint8

const (
	FlagActive Flags = 1 << iota
	FlagGrowing
	FlagShrinking
)

// position is the ark component holding an emitter's cell coordinates.
type position struct {
	X, Y int32
}

// extent is the ark component holding an emitter's radius in cells; it
// collapses to zero when FlagShrinking has fully consumed it, at which
// point Update removes the entity.
type extent struct {
	Radius int32
}

// lifetime is the ark component holding remaining ticks, decremented once
// per frame by Update.
type lifetime struct {
	Ticks int32
}

// params is the ark component holding the variant payload and rate/flags
// common to every kind.
type params struct {
	Kind      Kind
	Material  uint8   // valid when Kind == KindMaterialSource
	Intensity float64 // valid when Kind == KindHeatSource/KindColdSource
	DirX      float64 // valid when Kind == KindForceSource
	DirY      float64
	Magnitude float64
	Rate      float64 // per-tick scalar, 0-1
	Flags     Flags
}

// Spec is the caller-facing description of a new emitter, passed to Place.
type Spec struct {
	X, Y      int
	Radius    int
	Lifetime  int32 // PermanentLifetime for an emitter that never expires
	Kind      Kind
	Material  uint8
	Intensity float64
	DirX, DirY, Magnitude float64
	Rate      float64
	Flags     Flags
}

// Record is a read-only snapshot of one live emitter, the shape the GPU
// upload path (position + parameter textures) consumes.
type Record struct {
	ID        uuid.UUID
	X, Y      int
	Radius    int
	Lifetime  int32
	Kind      Kind
	Material  uint8
	Intensity float64
	DirX, DirY, Magnitude float64
	Rate      float64
	Flags     Flags
}

// Table owns the live set of emitters for one simulation world. The
// pipeline driver only ever reads the Snapshot it produces each frame.
type Table struct {
	world *ecs.World

	fullMap *ecs.Map4[position, extent, lifetime, params]
	filter  *ecs.Filter4[position, extent, lifetime, params]

	ids map[ecs.Entity]uuid.UUID
}

// NewTable creates an empty emitter table.
func NewTable() *Table {
	world := ecs.NewWorld()
	return &Table{
		world:   world,
		fullMap: ecs.NewMap4[position, extent, lifetime, params](world),
		filter:  ecs.NewFilter4[position, extent, lifetime, params](world),
		ids:     make(map[ecs.Entity]uuid.UUID),
	}
}

// Place creates a new emitter, owned by an external caller (e.g. a level
// build tool) rather than by anything inside the simulation core itself.
// It returns the emitter's stable identifier.
func (t *Table) Place(s Spec) uuid.UUID {
	pos := position{X: int32(s.X), Y: int32(s.Y)}
	ext := extent{Radius: int32(s.Radius)}
	lt := lifetime{Ticks: s.Lifetime}
	dirX, dirY := s.DirX, s.DirY
	if s.Kind == KindForceSource {
		dirX, dirY = normalizedDir(s.DirX, s.DirY)
	}
	pr := params{
		Kind:      s.Kind,
		Material:  s.Material,
		Intensity: s.Intensity,
		DirX:      dirX,
		DirY:      dirY,
		Magnitude: s.Magnitude,
		Rate:      s.Rate,
		Flags:     s.Flags | FlagActive,
	}
	e := t.fullMap.NewEntity(&pos, &ext, &lt, &pr)
	id := uuid.New()
	t.ids[e] = id
	return id
}

// normalizedDir returns (x, y) scaled to unit length, or (0, 0) if the
// caller-supplied direction is the zero vector, so a ForceSource's Magnitude
// always scales a true unit vector regardless of what the caller passed in.
func normalizedDir(x, y float64) (float64, float64) {
	v := mgl32.Vec2{float32(x), float32(y)}
	if v.Len() == 0 {
		return 0, 0
	}
	n := v.Normalize()
	return float64(n[0]), float64(n[1])
}

// Update decrements every emitter's remaining lifetime and removes entries
// whose lifetime has reached zero or whose radius has collapsed to zero.
// Called once per frame, before pass 1, by the pipeline driver - never by
// a shader.
func (t *Table) Update() {
	var dead []ecs.Entity

	query := t.filter.Query()
	for query.Next() {
		e := query.Entity()
		_, ext, lt, pr := query.Get()

		if pr.Flags&FlagShrinking != 0 && ext.Radius > 0 {
			ext.Radius--
		}
		if pr.Flags&FlagGrowing != 0 {
			ext.Radius++
		}
		if lt.Ticks != PermanentLifetime && lt.Ticks > 0 {
			lt.Ticks--
		}
		if (lt.Ticks == 0 && lt.Ticks != PermanentLifetime) || ext.Radius <= 0 {
			dead = append(dead, e)
		}
	}
	for _, e := range dead {
		delete(t.ids, e)
		t.world.RemoveEntity(e)
	}
}

// Remove deletes the emitter with the given id immediately, regardless of
// remaining lifetime. Used by the build tool to retract a placed emitter
// (e.g. the user released the mouse).
func (t *Table) Remove(id uuid.UUID) {
	for e, candidate := range t.ids {
		if candidate == id {
			delete(t.ids, e)
			t.world.RemoveEntity(e)
			return
		}
	}
}

// Len returns the number of live emitters.
func (t *Table) Len() int {
	return len(t.ids)
}

// Snapshot returns the current emitter set as a read-only slice, the shape
// the GPU upload path packs into the position/parameter textures. Safe to
// call even with zero emitters - the emitter-to-heat/force pass must still
// run in that case to let force decay toward neutral.
func (t *Table) Snapshot() []Record {
	out := make([]Record, 0, len(t.ids))
	query := t.filter.Query()
	for query.Next() {
		e := query.Entity()
		pos, ext, lt, pr := query.Get()
		out = append(out, Record{
			ID:        t.ids[e],
			X:         int(pos.X),
			Y:         int(pos.Y),
			Radius:    int(ext.Radius),
			Lifetime:  lt.Ticks,
			Kind:      pr.Kind,
			Material:  pr.Material,
			Intensity: pr.Intensity,
			DirX:      pr.DirX,
			DirY:      pr.DirY,
			Magnitude: pr.Magnitude,
			Rate:      pr.Rate,
			Flags:     pr.Flags,
		})
	}
	return out
}
