package gpu

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gurbano/sandymarton/sim"
)

func align256(n uint32) uint32 { return (n + 255) &^ 255 }

// Mirror is the CPU-side copy of W that external drawing/loading tools
// mutate between frames. It tracks one dirty rectangle so the driver's
// single re-upload per frame only needs to touch the bytes that actually
// changed, via a WriteTexture call scoped to that sub-rectangle.
type Mirror struct {
	width, height int
	raw           []byte // RGBA8, row-major, 4 bytes per cell

	dirty                  bool
	dirtyX0, dirtyY0       int
	dirtyX1, dirtyY1       int

	readback *wgpu.Buffer
}

// NewMirror allocates a width x height mirror filled with EMPTY, neutral-velocity cells.
func NewMirror(width, height int) *Mirror {
	m := &Mirror{width: width, height: height, raw: make([]byte, width*height*4)}
	neutral := sim.NeutralCell(0)
	for i := 0; i < width*height; i++ {
		m.writeCell(i*4, neutral)
	}
	return m
}

func (m *Mirror) writeCell(offset int, c sim.Cell) {
	m.raw[offset+0] = byte(c.Material)
	m.raw[offset+1] = c.VelX
	m.raw[offset+2] = c.VelY
	m.raw[offset+3] = c.Aux
}

func (m *Mirror) readCell(offset int) sim.Cell {
	return sim.Cell{
		Material: sim.MaterialID(m.raw[offset+0]),
		VelX:     m.raw[offset+1],
		VelY:     m.raw[offset+2],
		Aux:      m.raw[offset+3],
	}
}

// Width and Height report the mirror's extent.
func (m *Mirror) Width() int  { return m.width }
func (m *Mirror) Height() int { return m.height }

// At returns the cell currently held at (x, y).
func (m *Mirror) At(x, y int) sim.Cell {
	return m.readCell((y*m.width + x) * 4)
}

// Set writes a cell at (x, y) and extends the dirty rectangle to cover it.
// Per the drawing contract, velocity is reset to neutral on any external
// write.
func (m *Mirror) Set(x, y int, material sim.MaterialID) {
	m.writeCell((y*m.width+x)*4, sim.NeutralCell(material))
	m.markDirty(x, y, x, y)
}

// LoadFull replaces the whole mirror (level load) and marks everything dirty.
func (m *Mirror) LoadFull(cells []sim.Cell) {
	for i, c := range cells {
		if i >= m.width*m.height {
			break
		}
		m.writeCell(i*4, c)
	}
	m.markDirty(0, 0, m.width-1, m.height-1)
}

func (m *Mirror) markDirty(x0, y0, x1, y1 int) {
	if !m.dirty {
		m.dirtyX0, m.dirtyY0, m.dirtyX1, m.dirtyY1 = x0, y0, x1, y1
		m.dirty = true
		return
	}
	if x0 < m.dirtyX0 {
		m.dirtyX0 = x0
	}
	if y0 < m.dirtyY0 {
		m.dirtyY0 = y0
	}
	if x1 > m.dirtyX1 {
		m.dirtyX1 = x1
	}
	if y1 > m.dirtyY1 {
		m.dirtyY1 = y1
	}
}

// Dirty reports whether any cell has changed since the last Flush.
func (m *Mirror) Dirty() bool { return m.dirty }

// Flush re-uploads the dirty rectangle into the pool's current front
// texture and clears the dirty flag. A no-op when nothing changed.
func (m *Mirror) Flush(device *Device, pool *Pool) error {
	if !m.dirty {
		return nil
	}
	rectW := m.dirtyX1 - m.dirtyX0 + 1
	rectH := m.dirtyY1 - m.dirtyY0 + 1

	buf := make([]byte, rectW*rectH*4)
	for row := 0; row < rectH; row++ {
		srcOff := ((m.dirtyY0+row)*m.width + m.dirtyX0) * 4
		dstOff := row * rectW * 4
		copy(buf[dstOff:dstOff+rectW*4], m.raw[srcOff:srcOff+rectW*4])
	}

	device.Queue.WriteTexture(
		&wgpu.ImageCopyTexture{
			Texture: pool.SourceTexture(),
			MipLevel: 0,
			Origin:   wgpu.Origin3D{X: uint32(m.dirtyX0), Y: uint32(m.dirtyY0), Z: 0},
			Aspect:   wgpu.TextureAspectAll,
		},
		buf,
		&wgpu.TextureDataLayout{
			Offset:       0,
			BytesPerRow:  uint32(rectW * 4),
			RowsPerImage: uint32(rectH),
		},
		&wgpu.Extent3D{Width: uint32(rectW), Height: uint32(rectH), DepthOrArrayLayers: 1},
	)
	m.dirty = false
	return nil
}

// ReadBack copies the pool's current front texture back into the mirror.
// This is the single mandated CPU read-back per frame; it blocks the host
// until the map completes, the one host-visible synchronization point the
// driver's contract allows.
func (m *Mirror) ReadBack(device *Device, pool *Pool) error {
	bytesPerRow := align256(uint32(m.width * 4))
	size := uint64(bytesPerRow) * uint64(m.height)

	if m.readback == nil || m.readback.GetSize() < size {
		if m.readback != nil {
			m.readback.Release()
		}
		var err error
		m.readback, err = device.Device.CreateBuffer(&wgpu.BufferDescriptor{
			Label: "WorldMirrorReadback",
			Size:  size,
			Usage: wgpu.BufferUsageCopyDst | wgpu.BufferUsageMapRead,
		})
		if err != nil {
			return fmt.Errorf("gpu: allocating readback buffer: %w", err)
		}
	}

	encoder, err := device.Device.CreateCommandEncoder(nil)
	if err != nil {
		return fmt.Errorf("gpu: creating readback encoder: %w", err)
	}
	encoder.CopyTextureToBuffer(
		&wgpu.ImageCopyTexture{Texture: pool.SourceTexture(), MipLevel: 0, Origin: wgpu.Origin3D{}},
		&wgpu.ImageCopyBuffer{
			Buffer: m.readback,
			Layout: wgpu.TextureDataLayout{Offset: 0, BytesPerRow: bytesPerRow, RowsPerImage: uint32(m.height)},
		},
		&wgpu.Extent3D{Width: uint32(m.width), Height: uint32(m.height), DepthOrArrayLayers: 1},
	)
	cmdBuf, err := encoder.Finish(nil)
	if err != nil {
		return fmt.Errorf("gpu: finishing readback encoder: %w", err)
	}
	device.Queue.Submit(cmdBuf)

	var mapErr error
	mapped := false
	m.readback.MapAsync(wgpu.MapModeRead, 0, size, func(status wgpu.BufferMapAsyncStatus) {
		if status == wgpu.BufferMapAsyncStatusSuccess {
			mapped = true
		} else {
			mapErr = fmt.Errorf("gpu: mapping readback buffer failed: status %d", status)
		}
	})
	for !mapped && mapErr == nil {
		device.Device.Poll(true, nil)
	}
	if mapErr != nil {
		return mapErr
	}

	data := m.readback.GetMappedRange(0, uint(size))
	for y := 0; y < m.height; y++ {
		srcOff := y * int(bytesPerRow)
		dstOff := y * m.width * 4
		copy(m.raw[dstOff:dstOff+m.width*4], data[srcOff:srcOff+m.width*4])
	}
	m.readback.Unmap()
	return nil
}
