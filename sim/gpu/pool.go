package gpu

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
)

// Pool is an arena of same-sized, same-format render targets used round-robin
// as ping-pong source/target pairs, addressed through a single indexed arena
// and an explicit "current front" slot rather than a handful of named
// texture fields swapped by hand.
type Pool struct {
	width, height uint32
	format        wgpu.TextureFormat
	textures      []*wgpu.Texture
	views         []*wgpu.TextureView
	front         int
}

// NewPool allocates count same-sized textures of format, every one usable as
// either a sampled source or a storage-bound target so any slot can serve
// either role across a frame.
func NewPool(device *Device, width, height uint32, format wgpu.TextureFormat, count int, label string) (*Pool, error) {
	if count < 1 {
		return nil, fmt.Errorf("gpu: pool %q needs at least one render target, got %d", label, count)
	}

	p := &Pool{width: width, height: height, format: format}
	usage := wgpu.TextureUsageTextureBinding | wgpu.TextureUsageStorageBinding |
		wgpu.TextureUsageCopySrc | wgpu.TextureUsageCopyDst

	for i := 0; i < count; i++ {
		tex, err := device.Device.CreateTexture(&wgpu.TextureDescriptor{
			Label:         fmt.Sprintf("%s[%d]", label, i),
			Size:          wgpu.Extent3D{Width: width, Height: height, DepthOrArrayLayers: 1},
			MipLevelCount: 1,
			SampleCount:   1,
			Dimension:     wgpu.TextureDimension2D,
			Format:        format,
			Usage:         usage,
		})
		if err != nil {
			p.Release()
			return nil, fmt.Errorf("gpu: creating texture for pool %q: %w", label, err)
		}
		view, err := tex.CreateView(nil)
		if err != nil {
			p.Release()
			return nil, fmt.Errorf("gpu: creating view for pool %q: %w", label, err)
		}
		p.textures = append(p.textures, tex)
		p.views = append(p.views, view)
	}
	return p, nil
}

// Len returns the number of render targets in the arena.
func (p *Pool) Len() int { return len(p.textures) }

// FrontIndex returns the slot index currently holding the latest state.
func (p *Pool) FrontIndex() int { return p.front }

// SourceView returns the view of the current front, the texture every pass
// reads from until it advances.
func (p *Pool) SourceView() *wgpu.TextureView { return p.views[p.front] }

// SourceTexture returns the current front's texture, needed for CopyTextureToBuffer.
func (p *Pool) SourceTexture() *wgpu.Texture { return p.textures[p.front] }

// NextTarget returns a free slot distinct from the current front, the next
// slot modulo the pool size per the pool's round-robin discipline.
func (p *Pool) NextTarget() int {
	return (p.front + 1) % len(p.textures)
}

// TargetView returns the view for the given slot, the destination a pass
// writes to.
func (p *Pool) TargetView(slot int) *wgpu.TextureView { return p.views[slot] }

// Advance makes slot the new front, the write just performed becomes the
// next pass's source.
func (p *Pool) Advance(slot int) { p.front = slot }

// ReadBackBytes performs a one-off blocking CPU readback of the current
// front texture, row-major RGBA8 bytes with no padding between rows. Unlike
// Mirror it keeps no persistent buffer or dirty tracking: callers that need
// this every frame should use Mirror instead, this is for on-demand
// inspection of a pool that has none (H).
func (p *Pool) ReadBackBytes(device *Device) ([]byte, error) {
	bytesPerRow := align256(p.width * 4)
	size := uint64(bytesPerRow) * uint64(p.height)

	readback, err := device.Device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "PoolReadback",
		Size:  size,
		Usage: wgpu.BufferUsageCopyDst | wgpu.BufferUsageMapRead,
	})
	if err != nil {
		return nil, fmt.Errorf("gpu: allocating pool readback buffer: %w", err)
	}
	defer readback.Release()

	encoder, err := device.Device.CreateCommandEncoder(nil)
	if err != nil {
		return nil, fmt.Errorf("gpu: creating pool readback encoder: %w", err)
	}
	encoder.CopyTextureToBuffer(
		&wgpu.ImageCopyTexture{Texture: p.SourceTexture(), MipLevel: 0, Origin: wgpu.Origin3D{}},
		&wgpu.ImageCopyBuffer{
			Buffer: readback,
			Layout: wgpu.TextureDataLayout{Offset: 0, BytesPerRow: bytesPerRow, RowsPerImage: p.height},
		},
		&wgpu.Extent3D{Width: p.width, Height: p.height, DepthOrArrayLayers: 1},
	)
	cmdBuf, err := encoder.Finish(nil)
	if err != nil {
		return nil, fmt.Errorf("gpu: finishing pool readback encoder: %w", err)
	}
	device.Queue.Submit(cmdBuf)

	var mapErr error
	mapped := false
	readback.MapAsync(wgpu.MapModeRead, 0, size, func(status wgpu.BufferMapAsyncStatus) {
		if status == wgpu.BufferMapAsyncStatusSuccess {
			mapped = true
		} else {
			mapErr = fmt.Errorf("gpu: mapping pool readback buffer failed: status %d", status)
		}
	})
	for !mapped && mapErr == nil {
		device.Device.Poll(true, nil)
	}
	if mapErr != nil {
		return nil, mapErr
	}

	data := readback.GetMappedRange(0, uint(size))
	out := make([]byte, p.width*p.height*4)
	for y := uint32(0); y < p.height; y++ {
		srcOff := y * bytesPerRow
		dstOff := y * p.width * 4
		copy(out[dstOff:dstOff+p.width*4], data[srcOff:srcOff+p.width*4])
	}
	readback.Unmap()
	return out, nil
}

// Release frees every texture and view in the arena.
func (p *Pool) Release() {
	for _, v := range p.views {
		if v != nil {
			v.Release()
		}
	}
	for _, t := range p.textures {
		if t != nil {
			t.Release()
		}
	}
	p.views = nil
	p.textures = nil
}
