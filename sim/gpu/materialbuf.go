package gpu

import (
	"encoding/binary"

	"github.com/gurbano/sandymarton/sim"
	"github.com/gurbano/sandymarton/sim/material"
)

// materialEntryStride is the byte size of one MaterialEntry element as laid
// out in every shader that binds the material table (margolus.wgsl,
// liquid_spread.wgsl, particle_heat.wgsl, ambient_heat.wgsl,
// phase_transition.wgsl all declare the identical struct so the array
// stride agrees across passes sharing the one buffer).
const materialEntryStride = 44

// PackMaterialTable serializes all 256 material_id slots of t into the
// storage-buffer byte layout shared by every pass binding the table.
func PackMaterialTable(t *material.Table) []byte {
	buf := make([]byte, 256*materialEntryStride)
	for id := 0; id < 256; id++ {
		e := t.Entry(sim.MaterialID(id))
		off := id * materialEntryStride
		putF32(buf, off+0, float32(e.Friction))
		putF32(buf, off+4, float32(e.Conductivity))
		putF32(buf, off+8, float32(e.Density))
		putF32(buf, off+12, float32(e.DefaultTemperature))
		putF32(buf, off+16, float32(e.MeltingPoint))
		putF32(buf, off+20, float32(e.BoilingPoint))
		putF32(buf, off+24, float32(e.CondensationPoint))
		putI32(buf, off+28, int32(e.MeltTarget))
		putI32(buf, off+32, int32(e.FreezeTarget))
		putI32(buf, off+36, int32(e.BoilTarget))
		putI32(buf, off+40, int32(e.CondenseTarget))
	}
	return buf
}

func putI32(b []byte, off int, v int32) {
	binary.LittleEndian.PutUint32(b[off:], uint32(v))
}
