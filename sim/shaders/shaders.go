package shaders

import (
	_ "embed"
)

//go:embed margolus.wgsl
var MargolusWGSL string

//go:embed liquid_spread.wgsl
var LiquidSpreadWGSL string

//go:embed particle_heat.wgsl
var ParticleHeatWGSL string

//go:embed ambient_heat.wgsl
var AmbientHeatWGSL string

//go:embed phase_transition.wgsl
var PhaseTransitionWGSL string

//go:embed emitter_world.wgsl
var EmitterWorldWGSL string

//go:embed emitter_heat.wgsl
var EmitterHeatWGSL string
