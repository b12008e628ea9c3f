package gpu

import (
	"github.com/cogentcore/webgpu/wgpu"

	"github.com/gurbano/sandymarton/sim"
	"github.com/gurbano/sandymarton/sim/config"
	"github.com/gurbano/sandymarton/sim/emitter"
	"github.com/gurbano/sandymarton/sim/material"
)

// Driver is the pipeline driver: it holds explicit handles to every
// collaborator (the manager's GPU resources, the material table, the
// emitter table, the simulation config, a clock, and a logger) and runs the
// fixed pass order once per Tick. No pass or driver state lives behind a
// package-level singleton.
type Driver struct {
	Manager   *Manager
	Materials *material.Table
	Emitters  *emitter.Table
	Config    *config.Config
	Clock     *sim.Clock
	Logger    sim.Logger
	Mirror    *Mirror

	// Profiler, when set, times every pass dispatch and the live emitter
	// count for the frame. Nil by default; Tick and dispatch skip profiling
	// entirely when it is nil.
	Profiler *Profiler

	baseSeed    uint32
	blockIter   uint32
	liquidIter  uint32
	ambientIter uint32

	// OnFrameComplete, when set, is notified once per Tick with the frame
	// number just completed (the driver's only collaborator notification).
	OnFrameComplete func(frame uint64)
}

// NewDriver assembles a pipeline driver from already-constructed
// collaborators. baseSeed seeds every pass-kind's pseudo-random hash.
func NewDriver(manager *Manager, materials *material.Table, emitters *emitter.Table, cfg *config.Config, mirror *Mirror, baseSeed uint32, logger sim.Logger) *Driver {
	if logger == nil {
		logger = sim.NewNopLogger()
	}
	return &Driver{
		Manager:   manager,
		Materials: materials,
		Emitters:  emitters,
		Config:    cfg,
		Clock:     sim.NewClock(),
		Logger:    logger,
		Mirror:    mirror,
		baseSeed:  baseSeed,
	}
}

// Tick runs exactly one frame of the fixed pipeline order:
// emitter-to-world, emitter-to-heat/force, Margolus CA, liquid-spread,
// Archimedes, particle heat diffusion, phase transitions, ambient heat
// transfer — then a single CPU read-back of W into the mirror. Every pass
// is best-effort: a resource failure is logged and the pass is skipped,
// never aborting the frame.
func (d *Driver) Tick() {
	frame := d.Clock.Tick()

	d.Emitters.Update()
	records := d.Emitters.Snapshot()
	if err := d.Manager.UploadEmitters(records); err != nil {
		d.Logger.Warnf("uploading emitter table: %v", err)
	}
	if d.Profiler != nil {
		d.Profiler.SetCount("emitters", len(records))
	}

	if d.Mirror != nil {
		if err := d.Mirror.Flush(d.Manager.Device, d.Manager.World); err != nil {
			d.Logger.Warnf("flushing world mirror: %v", err)
		}
	}

	d.runEmitterWorld(uint32(len(records)), uint32(frame))
	d.runEmitterHeat(uint32(len(records)), uint32(frame))

	d.runWorldPasses(d.Manager.Margolus, &d.blockIter, d.Config.Steps.Margolus, 0)
	d.runLiquidSpread()
	d.runWorldPasses(d.Manager.Archimedes, &d.blockIter, d.Config.Steps.Archimedes, 1)
	d.runParticleHeat()
	d.runPhaseTransition()
	d.runAmbientHeat()

	if d.Mirror != nil {
		if err := d.Mirror.ReadBack(d.Manager.Device, d.Manager.World); err != nil {
			d.Logger.Warnf("reading back world mirror: %v", err)
		}
	}

	if d.OnFrameComplete != nil {
		d.OnFrameComplete(frame)
	}
}

// HeatSnapshot performs an on-demand CPU readback of H's current front and
// decodes it into HeatCells, for an inspector or diagnostic that needs
// pixels this frame. It is not cached and not called as part of Tick.
func (d *Driver) HeatSnapshot() ([]sim.HeatCell, error) {
	raw, err := d.Manager.Heat.ReadBackBytes(d.Manager.Device)
	if err != nil {
		return nil, err
	}
	cells := make([]sim.HeatCell, len(raw)/4)
	for i := range cells {
		off := i * 4
		cells[i] = sim.HeatCell{TempLo: raw[off+0], TempHi: raw[off+1], ForceX: raw[off+2], ForceY: raw[off+3]}
	}
	return cells, nil
}

func (d *Driver) runEmitterWorld(count, frame uint32) {
	pass := d.Manager.EmitterWorld
	u := EmitterWorldUniforms{WorldSize: d.Manager.World.width, EmitterCount: count, FrameCounter: frame}
	pass.UpdateUniforms(d.Manager.Device, u.Pack())

	target := d.Manager.World.NextTarget()
	entries := []wgpu.BindGroupEntry{
		{Binding: 0, Buffer: pass.UniformBuffer(), Size: wgpu.WholeSize},
		{Binding: 1, TextureView: d.Manager.World.SourceView()},
		{Binding: 2, Buffer: d.Manager.emitterBuf, Size: wgpu.WholeSize},
		{Binding: 3, TextureView: d.Manager.World.TargetView(target)},
	}
	if d.dispatch(pass, entries, d.Manager.World.width, d.Manager.World.height) {
		d.Manager.World.Advance(target)
	}
}

func (d *Driver) runEmitterHeat(count, frame uint32) {
	pass := d.Manager.EmitterHeat
	u := EmitterHeatUniforms{WorldSize: d.Manager.Heat.width, EmitterCount: count, FrameCounter: frame, ForceBleed: float32(d.Config.ForceBleed)}
	pass.UpdateUniforms(d.Manager.Device, u.Pack())

	target := d.Manager.Heat.NextTarget()
	entries := []wgpu.BindGroupEntry{
		{Binding: 0, Buffer: pass.UniformBuffer(), Size: wgpu.WholeSize},
		{Binding: 1, TextureView: d.Manager.Heat.SourceView()},
		{Binding: 2, Buffer: d.Manager.emitterBuf, Size: wgpu.WholeSize},
		{Binding: 3, TextureView: d.Manager.Heat.TargetView(target)},
	}
	if d.dispatch(pass, entries, d.Manager.Heat.width, d.Manager.Heat.height) {
		d.Manager.Heat.Advance(target)
	}
}

// runWorldPasses drives either the Margolus or Archimedes pass (ruleSet
// distinguishes the specialization, a strategy value rather than a
// subclass) for its configured iteration count, each iteration cycling the
// Margolus block-origin offset via the shared iteration counter.
func (d *Driver) runWorldPasses(pass *Pass, iter *uint32, step config.StepConfig, ruleSet uint32) {
	if !step.Enabled {
		return
	}
	for i := 0; i < step.PassCount; i++ {
		u := MargolusUniforms{
			WorldSize:         d.Manager.World.width,
			Iteration:         *iter,
			Seed:              d.baseSeed,
			FrictionAmplifier: float32(d.Config.FrictionAmplifier),
			RuleSet:           ruleSet,
			HasRigidBodyMask:  boolToU32(d.Manager.HasRigidMask()),
		}
		pass.UpdateUniforms(d.Manager.Device, u.Pack())

		target := d.Manager.World.NextTarget()
		entries := []wgpu.BindGroupEntry{
			{Binding: 0, Buffer: pass.UniformBuffer(), Size: wgpu.WholeSize},
			{Binding: 1, TextureView: d.Manager.World.SourceView()},
			{Binding: 2, TextureView: d.Manager.Heat.SourceView()},
			{Binding: 3, Buffer: d.Manager.materialBuf, Size: wgpu.WholeSize},
			{Binding: 4, TextureView: d.Manager.rigidMaskView},
			{Binding: 5, TextureView: d.Manager.World.TargetView(target)},
		}
		if d.dispatch(pass, entries, d.Manager.World.width, d.Manager.World.height) {
			d.Manager.World.Advance(target)
		}
		*iter++
	}
}

func (d *Driver) runLiquidSpread() {
	step := d.Config.Steps.LiquidSpread
	if !step.Enabled {
		return
	}
	pass := d.Manager.LiquidSpread
	for i := 0; i < step.PassCount; i++ {
		u := LiquidSpreadUniforms{WorldSize: d.Manager.World.width, Iteration: d.liquidIter, Seed: d.baseSeed}
		pass.UpdateUniforms(d.Manager.Device, u.Pack())

		target := d.Manager.World.NextTarget()
		entries := []wgpu.BindGroupEntry{
			{Binding: 0, Buffer: pass.UniformBuffer(), Size: wgpu.WholeSize},
			{Binding: 1, TextureView: d.Manager.World.SourceView()},
			{Binding: 2, Buffer: d.Manager.materialBuf, Size: wgpu.WholeSize},
			{Binding: 3, TextureView: d.Manager.World.TargetView(target)},
		}
		if d.dispatch(pass, entries, d.Manager.World.width, d.Manager.World.height) {
			d.Manager.World.Advance(target)
		}
		d.liquidIter++
	}
}

func (d *Driver) runParticleHeat() {
	step := d.Config.Steps.ParticleHeat
	if !step.Enabled {
		return
	}
	pass := d.Manager.ParticleHeat
	for i := 0; i < step.PassCount; i++ {
		u := HeatDiffusionUniforms{WorldSize: d.Manager.Heat.width, EmissionMultiplier: float32(d.Config.AmbientHeat.EmissionMultiplier)}
		pass.UpdateUniforms(d.Manager.Device, u.Pack())

		target := d.Manager.Heat.NextTarget()
		entries := []wgpu.BindGroupEntry{
			{Binding: 0, Buffer: pass.UniformBuffer(), Size: wgpu.WholeSize},
			{Binding: 1, TextureView: d.Manager.World.SourceView()},
			{Binding: 2, TextureView: d.Manager.Heat.SourceView()},
			{Binding: 3, Buffer: d.Manager.materialBuf, Size: wgpu.WholeSize},
			{Binding: 4, TextureView: d.Manager.Heat.TargetView(target)},
		}
		if d.dispatch(pass, entries, d.Manager.Heat.width, d.Manager.Heat.height) {
			d.Manager.Heat.Advance(target)
		}
	}
}

func (d *Driver) runPhaseTransition() {
	step := d.Config.Steps.PhaseTransition
	if !step.Enabled {
		return
	}
	pass := d.Manager.PhaseTransition
	for i := 0; i < step.PassCount; i++ {
		u := PhaseTransitionUniforms{WorldSize: d.Manager.World.width}
		pass.UpdateUniforms(d.Manager.Device, u.Pack())

		target := d.Manager.World.NextTarget()
		entries := []wgpu.BindGroupEntry{
			{Binding: 0, Buffer: pass.UniformBuffer(), Size: wgpu.WholeSize},
			{Binding: 1, TextureView: d.Manager.World.SourceView()},
			{Binding: 2, TextureView: d.Manager.Heat.SourceView()},
			{Binding: 3, Buffer: d.Manager.materialBuf, Size: wgpu.WholeSize},
			{Binding: 4, TextureView: d.Manager.World.TargetView(target)},
		}
		if d.dispatch(pass, entries, d.Manager.World.width, d.Manager.World.height) {
			d.Manager.World.Advance(target)
		}
	}
}

func (d *Driver) runAmbientHeat() {
	step := d.Config.Steps.AmbientHeat
	if !step.Enabled {
		return
	}
	pass := d.Manager.AmbientHeat
	ah := d.Config.AmbientHeat
	for i := 0; i < step.PassCount; i++ {
		u := AmbientHeatUniforms{
			WorldSize:              d.Manager.Heat.width,
			Iteration:              d.ambientIter,
			EmissionMultiplier:     float32(ah.EmissionMultiplier),
			DiffusionMultiplier:    float32(ah.DiffusionMultiplier),
			EquilibriumEnabled:     boolToU32(ah.EquilibriumEnabled),
			EquilibriumStrength:    float32(ah.EquilibriumStrength),
			EquilibriumTemperature: float32(ah.EquilibriumTemperature),
			EquilibriumMaxDelta:    float32(ah.EquilibriumMaxDelta),
			EquilibriumInterval:    uint32(ah.EquilibriumInterval),
		}
		pass.UpdateUniforms(d.Manager.Device, u.Pack())

		target := d.Manager.Heat.NextTarget()
		entries := []wgpu.BindGroupEntry{
			{Binding: 0, Buffer: pass.UniformBuffer(), Size: wgpu.WholeSize},
			{Binding: 1, TextureView: d.Manager.World.SourceView()},
			{Binding: 2, TextureView: d.Manager.Heat.SourceView()},
			{Binding: 3, Buffer: d.Manager.materialBuf, Size: wgpu.WholeSize},
			{Binding: 4, TextureView: d.Manager.Heat.TargetView(target)},
		}
		if d.dispatch(pass, entries, d.Manager.Heat.width, d.Manager.Heat.height) {
			d.Manager.Heat.Advance(target)
		}
		d.ambientIter++
	}
}

// dispatch builds a bind group and dispatches pass, logging and skipping it
// on any resource failure rather than aborting the frame.
func (d *Driver) dispatch(pass *Pass, entries []wgpu.BindGroupEntry, width, height uint32) bool {
	if d.Profiler != nil {
		d.Profiler.BeginScope(pass.Name)
		defer d.Profiler.EndScope(pass.Name)
	}

	bg, err := pass.MakeBindGroup(d.Manager.Device, entries)
	if err != nil {
		d.Logger.Warnf("skipping pass %s: %v", pass.Name, err)
		return false
	}
	defer bg.Release()

	if err := pass.Dispatch(d.Manager.Device, bg, width, height); err != nil {
		d.Logger.Warnf("skipping pass %s: %v", pass.Name, err)
		return false
	}
	return true
}

func boolToU32(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}
