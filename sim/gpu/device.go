// Package gpu owns the wgpu device, the W/H ping-pong texture pools, the CPU
// mirror of W, and the compute-pass dispatch machinery the pipeline driver
// drives each frame. Nothing in this package reads a process-wide variable;
// every piece of state lives on a struct the caller constructs and threads
// through explicitly.
package gpu

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
)

// Device wraps the headless wgpu handles the simulation core needs. There is
// no surface: the core never presents to a window, keeping device/queue
// acquisition independent of any windowed swapchain setup a consumer adds.
type Device struct {
	Instance *wgpu.Instance
	Adapter  *wgpu.Adapter
	Device   *wgpu.Device
	Queue    *wgpu.Queue
}

// NewDevice requests a high-performance adapter with no compatible surface
// and opens a device on it.
func NewDevice() (*Device, error) {
	instance := wgpu.CreateInstance(nil)

	adapter, err := instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		PowerPreference: wgpu.PowerPreferenceHighPerformance,
	})
	if err != nil {
		return nil, fmt.Errorf("gpu: requesting adapter: %w", err)
	}

	device, err := adapter.RequestDevice(nil)
	if err != nil {
		return nil, fmt.Errorf("gpu: requesting device: %w", err)
	}

	return &Device{
		Instance: instance,
		Adapter:  adapter,
		Device:   device,
		Queue:    device.GetQueue(),
	}, nil
}

// Release tears down the device and its adapter/instance handles.
func (d *Device) Release() {
	if d.Device != nil {
		d.Device.Release()
	}
	if d.Adapter != nil {
		d.Adapter.Release()
	}
	if d.Instance != nil {
		d.Instance.Release()
	}
}
