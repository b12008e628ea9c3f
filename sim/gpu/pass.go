package gpu

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
)

// workgroupSize is the fixed @workgroup_size(8, 8, 1) every pass shader
// declares; dispatch tiles the world as ((w+7)/8, (h+7)/8, 1) groups.
const workgroupSize = 8

func dispatchCount(n uint32) uint32 { return (n + workgroupSize - 1) / workgroupSize }

// Pass owns one compute pipeline and its uniform buffer. Bind groups are
// rebuilt per dispatch rather than cached, because the bound source/target
// texture views change as the ping-pong pools advance.
type Pass struct {
	Name       string
	pipeline   *wgpu.ComputePipeline
	uniformBuf *wgpu.Buffer
}

// NewPass compiles wgslSource and builds a compute pipeline with an
// auto-derived bind group layout (group 0), the same pattern
// CreateEditPipeline uses for the voxel-edit compute shader.
func NewPass(device *Device, name, entryPoint, wgslSource string, uniformSize uint64) (*Pass, error) {
	module, err := device.Device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label: name,
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: wgslSource,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("gpu: compiling shader for pass %q: %w", name, err)
	}
	defer module.Release()

	pipeline, err := device.Device.CreateComputePipeline(&wgpu.ComputePipelineDescriptor{
		Label: name,
		Compute: wgpu.ProgrammableStageDescriptor{
			Module:     module,
			EntryPoint: entryPoint,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("gpu: creating compute pipeline for pass %q: %w", name, err)
	}

	var uniformBuf *wgpu.Buffer
	if uniformSize > 0 {
		uniformBuf, err = device.Device.CreateBuffer(&wgpu.BufferDescriptor{
			Label: name + "Uniforms",
			Size:  uniformSize,
			Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
		})
		if err != nil {
			return nil, fmt.Errorf("gpu: creating uniform buffer for pass %q: %w", name, err)
		}
	}

	return &Pass{Name: name, pipeline: pipeline, uniformBuf: uniformBuf}, nil
}

// UniformBuffer returns the pass's uniform buffer, the binding callers
// include in their bind group entries.
func (p *Pass) UniformBuffer() *wgpu.Buffer { return p.uniformBuf }

// UpdateUniforms uploads packed uniform bytes ahead of the next dispatch.
func (p *Pass) UpdateUniforms(device *Device, data []byte) {
	if p.uniformBuf == nil {
		return
	}
	device.Queue.WriteBuffer(p.uniformBuf, 0, data)
}

// BindGroupLayout exposes the pipeline's auto-derived group-0 layout so
// callers can build a matching bind group.
func (p *Pass) BindGroupLayout() *wgpu.BindGroupLayout { return p.pipeline.GetBindGroupLayout(0) }

// MakeBindGroup builds a fresh bind group against this pass's layout.
func (p *Pass) MakeBindGroup(device *Device, entries []wgpu.BindGroupEntry) (*wgpu.BindGroup, error) {
	bg, err := device.Device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Layout:  p.BindGroupLayout(),
		Entries: entries,
	})
	if err != nil {
		return nil, fmt.Errorf("gpu: building bind group for pass %q: %w", p.Name, err)
	}
	return bg, nil
}

// Dispatch runs one invocation of the pass over a width x height grid,
// submitting its own command buffer immediately (the driver chains passes
// by submitting one buffer per pass rather than batching, matching
// FlushEdits's per-call encoder/submit pattern).
func (p *Pass) Dispatch(device *Device, bindGroup *wgpu.BindGroup, width, height uint32) error {
	encoder, err := device.Device.CreateCommandEncoder(nil)
	if err != nil {
		return fmt.Errorf("gpu: creating encoder for pass %q: %w", p.Name, err)
	}

	computePass := encoder.BeginComputePass(nil)
	computePass.SetPipeline(p.pipeline)
	computePass.SetBindGroup(0, bindGroup, nil)
	computePass.DispatchWorkgroups(dispatchCount(width), dispatchCount(height), 1)
	computePass.End()

	cmdBuf, err := encoder.Finish(nil)
	if err != nil {
		return fmt.Errorf("gpu: finishing encoder for pass %q: %w", p.Name, err)
	}
	device.Queue.Submit(cmdBuf)
	return nil
}

// Release frees the pipeline and uniform buffer.
func (p *Pass) Release() {
	if p.pipeline != nil {
		p.pipeline.Release()
	}
	if p.uniformBuf != nil {
		p.uniformBuf.Release()
	}
}
