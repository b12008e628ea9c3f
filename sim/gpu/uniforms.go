package gpu

import (
	"encoding/binary"
	"math"
)

// Per-pass uniform structs, one per compute pass. Each Pack method hand-packs
// its fields into a little-endian byte buffer, padded to a 16-byte stride as
// WGSL uniform blocks require.

func padTo16(b []byte) []byte {
	if rem := len(b) % 16; rem != 0 {
		b = append(b, make([]byte, 16-rem)...)
	}
	return b
}

func putU32(b []byte, off int, v uint32) { binary.LittleEndian.PutUint32(b[off:], v) }
func putF32(b []byte, off int, v float32) {
	binary.LittleEndian.PutUint32(b[off:], math.Float32bits(v))
}

// MargolusUniforms parameterizes one iteration of the Margolus CA pass,
// including its base-transport-vs-Archimedes specialization (a strategy
// value, not a subclass, per the design notes).
type MargolusUniforms struct {
	WorldSize          uint32
	Iteration          uint32
	Seed               uint32
	FrictionAmplifier  float32
	RuleSet            uint32 // 0 = base transport, 1 = Archimedes
	HasRigidBodyMask   uint32 // 0/1
}

func (u MargolusUniforms) Pack() []byte {
	b := make([]byte, 24)
	putU32(b, 0, u.WorldSize)
	putU32(b, 4, u.Iteration)
	putU32(b, 8, u.Seed)
	putF32(b, 12, u.FrictionAmplifier)
	putU32(b, 16, u.RuleSet)
	putU32(b, 20, u.HasRigidBodyMask)
	return padTo16(b)
}

// LiquidSpreadUniforms parameterizes one iteration of the liquid-spread pass.
type LiquidSpreadUniforms struct {
	WorldSize uint32
	Iteration uint32
	Seed      uint32
}

func (u LiquidSpreadUniforms) Pack() []byte {
	b := make([]byte, 12)
	putU32(b, 0, u.WorldSize)
	putU32(b, 4, u.Iteration)
	putU32(b, 8, u.Seed)
	return padTo16(b)
}

// HeatDiffusionUniforms parameterizes the particle-to-particle heat pass.
type HeatDiffusionUniforms struct {
	WorldSize          uint32
	EmissionMultiplier float32
}

func (u HeatDiffusionUniforms) Pack() []byte {
	b := make([]byte, 8)
	putU32(b, 0, u.WorldSize)
	putF32(b, 4, u.EmissionMultiplier)
	return padTo16(b)
}

// AmbientHeatUniforms parameterizes the ambient heat-transfer pass,
// including the optional equilibrium decay.
type AmbientHeatUniforms struct {
	WorldSize              uint32
	Iteration              uint32
	EmissionMultiplier     float32
	DiffusionMultiplier    float32
	EquilibriumEnabled     uint32
	EquilibriumStrength    float32
	EquilibriumTemperature float32
	EquilibriumMaxDelta    float32
	EquilibriumInterval    uint32
}

func (u AmbientHeatUniforms) Pack() []byte {
	b := make([]byte, 36)
	putU32(b, 0, u.WorldSize)
	putU32(b, 4, u.Iteration)
	putF32(b, 8, u.EmissionMultiplier)
	putF32(b, 12, u.DiffusionMultiplier)
	putU32(b, 16, u.EquilibriumEnabled)
	putF32(b, 20, u.EquilibriumStrength)
	putF32(b, 24, u.EquilibriumTemperature)
	putF32(b, 28, u.EquilibriumMaxDelta)
	putU32(b, 32, u.EquilibriumInterval)
	return padTo16(b)
}

// PhaseTransitionUniforms parameterizes the phase-transition pass.
type PhaseTransitionUniforms struct {
	WorldSize uint32
}

func (u PhaseTransitionUniforms) Pack() []byte {
	b := make([]byte, 4)
	putU32(b, 0, u.WorldSize)
	return padTo16(b)
}

// EmitterWorldUniforms parameterizes the emitter-to-world pass.
type EmitterWorldUniforms struct {
	WorldSize    uint32
	EmitterCount uint32
	FrameCounter uint32
}

func (u EmitterWorldUniforms) Pack() []byte {
	b := make([]byte, 12)
	putU32(b, 0, u.WorldSize)
	putU32(b, 4, u.EmitterCount)
	putU32(b, 8, u.FrameCounter)
	return padTo16(b)
}

// EmitterHeatUniforms parameterizes the emitter-to-heat/force pass.
type EmitterHeatUniforms struct {
	WorldSize    uint32
	EmitterCount uint32
	FrameCounter uint32
	ForceBleed   float32
}

func (u EmitterHeatUniforms) Pack() []byte {
	b := make([]byte, 16)
	putU32(b, 0, u.WorldSize)
	putU32(b, 4, u.EmitterCount)
	putU32(b, 8, u.FrameCounter)
	putF32(b, 12, u.ForceBleed)
	return padTo16(b)
}
