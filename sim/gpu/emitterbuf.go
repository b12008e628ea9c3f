package gpu

import "github.com/gurbano/sandymarton/sim/emitter"

// emitterRecordStride is the byte size of one EmitterRecord element as laid
// out in emitter_world.wgsl and emitter_heat.wgsl.
const emitterRecordStride = 36

// PackEmitterSnapshot serializes a Table.Snapshot() into the storage-buffer
// byte layout the emitter-to-world and emitter-to-heat passes both bind.
// ForceSource's direction and magnitude are folded into a single
// magnitude-scaled vector at pack time so the WGSL struct needs no separate
// magnitude field.
func PackEmitterSnapshot(records []emitter.Record) []byte {
	buf := make([]byte, len(records)*emitterRecordStride)
	for i, r := range records {
		off := i * emitterRecordStride
		putI32(buf, off+0, int32(r.X))
		putI32(buf, off+4, int32(r.Y))
		putI32(buf, off+8, int32(r.Radius))
		putU32(buf, off+12, uint32(r.Kind))
		putU32(buf, off+16, uint32(r.Material))
		putF32(buf, off+20, float32(r.Rate))
		putF32(buf, off+24, float32(r.Intensity))
		putF32(buf, off+28, float32(r.DirX*r.Magnitude))
		putF32(buf, off+32, float32(r.DirY*r.Magnitude))
	}
	return buf
}
