package gpu

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/gurbano/sandymarton/sim/emitter"
	"github.com/gurbano/sandymarton/sim/material"
	"github.com/gurbano/sandymarton/sim/shaders"
)

// worldFormat is W and H's GPU representation: four 8-bit channels, read and
// written by shaders as texture_2d<u32>/texture_storage_2d<rgba8uint>.
const worldFormat = wgpu.TextureFormatRGBA8Uint

// Manager owns every GPU-resident resource the pipeline driver dispatches
// against: the World and Heat ping-pong pools, the material and emitter
// storage buffers, the optional rigid-body mask, and the eight compute
// passes.
type Manager struct {
	Device *Device

	World *Pool
	Heat  *Pool

	materialBuf *wgpu.Buffer

	emitterBuf    *wgpu.Buffer
	emitterBufCap int // capacity in records, not bytes

	rigidMask      *wgpu.Texture
	rigidMaskView  *wgpu.TextureView
	hasRigidMask   bool

	Margolus        *Pass
	LiquidSpread    *Pass
	Archimedes      *Pass
	ParticleHeat    *Pass
	PhaseTransition *Pass
	AmbientHeat     *Pass
	EmitterWorld    *Pass
	EmitterHeat     *Pass
}

// NewManager allocates the World and Heat pools, uploads the material table,
// and compiles all eight passes. worldSize must already be validated (a
// positive power of two) by the config package.
func NewManager(device *Device, worldSize uint32, materials *material.Table) (*Manager, error) {
	m := &Manager{Device: device}

	var err error
	if m.World, err = NewPool(device, worldSize, worldSize, worldFormat, 4, "World"); err != nil {
		return nil, err
	}
	if m.Heat, err = NewPool(device, worldSize, worldSize, worldFormat, 2, "Heat"); err != nil {
		m.Release()
		return nil, err
	}

	packed := PackMaterialTable(materials)
	m.materialBuf, err = device.Device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "MaterialTable",
		Size:  uint64(len(packed)),
		Usage: wgpu.BufferUsageStorage | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		m.Release()
		return nil, fmt.Errorf("gpu: creating material table buffer: %w", err)
	}
	device.Queue.WriteBuffer(m.materialBuf, 0, packed)

	m.rigidMask, err = device.Device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         "RigidBodyMask",
		Size:          wgpu.Extent3D{Width: worldSize, Height: worldSize, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        worldFormat,
		Usage:         wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst,
	})
	if err != nil {
		m.Release()
		return nil, fmt.Errorf("gpu: creating rigid-body mask: %w", err)
	}
	m.rigidMaskView, err = m.rigidMask.CreateView(nil)
	if err != nil {
		m.Release()
		return nil, fmt.Errorf("gpu: creating rigid-body mask view: %w", err)
	}

	type passDef struct {
		dst         **Pass
		name        string
		source      string
		uniformSize uint64
	}
	defs := []passDef{
		{&m.Margolus, "Margolus", shaders.MargolusWGSL, uint64(len(MargolusUniforms{}.Pack()))},
		{&m.LiquidSpread, "LiquidSpread", shaders.LiquidSpreadWGSL, uint64(len(LiquidSpreadUniforms{}.Pack()))},
		{&m.Archimedes, "Archimedes", shaders.MargolusWGSL, uint64(len(MargolusUniforms{}.Pack()))},
		{&m.ParticleHeat, "ParticleHeat", shaders.ParticleHeatWGSL, uint64(len(HeatDiffusionUniforms{}.Pack()))},
		{&m.PhaseTransition, "PhaseTransition", shaders.PhaseTransitionWGSL, uint64(len(PhaseTransitionUniforms{}.Pack()))},
		{&m.AmbientHeat, "AmbientHeat", shaders.AmbientHeatWGSL, uint64(len(AmbientHeatUniforms{}.Pack()))},
		{&m.EmitterWorld, "EmitterWorld", shaders.EmitterWorldWGSL, uint64(len(EmitterWorldUniforms{}.Pack()))},
		{&m.EmitterHeat, "EmitterHeat", shaders.EmitterHeatWGSL, uint64(len(EmitterHeatUniforms{}.Pack()))},
	}
	for _, d := range defs {
		p, err := NewPass(device, d.name, "main", d.source, d.uniformSize)
		if err != nil {
			m.Release()
			return nil, err
		}
		*d.dst = p
	}
	// Archimedes reuses the Margolus shader with rule_set=1 (a strategy
	// value baked into its uniforms, not a distinct shader), built as its
	// own Pass so it owns its own pipeline and uniform buffer.

	return m, nil
}

// UpdateRigidMask uploads an occupancy mask the size of W, four bytes per
// cell (RGBA8) of which only the first (R) is read. A 2x2 block containing
// a non-zero texel is left unchanged by the Margolus and Archimedes passes;
// the liquid-spread pass does not read the mask. Pass nil to clear it.
func (m *Manager) UpdateRigidMask(data []byte) {
	if len(data) == 0 {
		m.hasRigidMask = false
		return
	}
	w := m.World.width
	m.Device.Queue.WriteTexture(
		&wgpu.ImageCopyTexture{Texture: m.rigidMask, Aspect: wgpu.TextureAspectAll},
		data,
		&wgpu.TextureDataLayout{BytesPerRow: w * 4, RowsPerImage: m.World.height},
		&wgpu.Extent3D{Width: w, Height: m.World.height, DepthOrArrayLayers: 1},
	)
	m.hasRigidMask = true
}

// HasRigidMask reports whether a non-empty mask was last uploaded.
func (m *Manager) HasRigidMask() bool { return m.hasRigidMask }

// UploadEmitters packs and uploads the current emitter snapshot, growing the
// backing storage buffer geometrically (1.5x) in place when it runs out of
// room rather than reallocating to the exact size every time.
func (m *Manager) UploadEmitters(records []emitter.Record) error {
	packed := PackEmitterSnapshot(records)
	needed := len(records)
	if needed == 0 {
		needed = 1 // a zero-length storage buffer is invalid; keep room for one dummy slot
	}
	if m.emitterBuf == nil || m.emitterBufCap < needed {
		newCap := needed
		if m.emitterBufCap > 0 {
			grown := m.emitterBufCap * 3 / 2
			if grown > newCap {
				newCap = grown
			}
		}
		if m.emitterBuf != nil {
			m.emitterBuf.Release()
		}
		var err error
		m.emitterBuf, err = m.Device.Device.CreateBuffer(&wgpu.BufferDescriptor{
			Label: "EmitterTable",
			Size:  uint64(newCap * emitterRecordStride),
			Usage: wgpu.BufferUsageStorage | wgpu.BufferUsageCopyDst,
		})
		if err != nil {
			return fmt.Errorf("gpu: growing emitter buffer to %d records: %w", newCap, err)
		}
		m.emitterBufCap = newCap
	}
	if len(packed) > 0 {
		m.Device.Queue.WriteBuffer(m.emitterBuf, 0, packed)
	}
	return nil
}

// Release frees every GPU resource the manager owns.
func (m *Manager) Release() {
	for _, p := range []*Pass{m.Margolus, m.LiquidSpread, m.Archimedes, m.ParticleHeat, m.PhaseTransition, m.AmbientHeat, m.EmitterWorld, m.EmitterHeat} {
		if p != nil {
			p.Release()
		}
	}
	if m.materialBuf != nil {
		m.materialBuf.Release()
	}
	if m.emitterBuf != nil {
		m.emitterBuf.Release()
	}
	if m.rigidMaskView != nil {
		m.rigidMaskView.Release()
	}
	if m.rigidMask != nil {
		m.rigidMask.Release()
	}
	if m.World != nil {
		m.World.Release()
	}
	if m.Heat != nil {
		m.Heat.Release()
	}
}
