//go:build opencl

package compute

import (
	"errors"
	"fmt"
	"os"

	"github.com/jgillich/go-opencl/cl"
)

// kernelSource computes the force on one particle per work item over the
// full inner loop. Single precision throughout; conversion to and from
// float64 happens exactly once per direction at the Go boundary.
const kernelSource = `__kernel void lj_forces(
    __global const float* x,
    __global const float* y,
    __global const float* z,
    __global float* fx,
    __global float* fy,
    __global float* fz,
    const float prefactor,
    const float cutoff,
    const float min_dist,
    const float max_force,
    const uint n)
{
    uint i = get_global_id(0);
    if (i >= n) {
        return;
    }
    float xi = x[i];
    float yi = y[i];
    float zi = z[i];
    float cutoff2 = cutoff * cutoff;
    float floor2 = min_dist * min_dist;
    float sx = 0.0f;
    float sy = 0.0f;
    float sz = 0.0f;
    for (uint j = 0; j < n; j++) {
        if (j == i) {
            continue;
        }
        float dx = x[j] - xi;
        float dy = y[j] - yi;
        float dz = z[j] - zi;
        float r2 = dx*dx + dy*dy + dz*dz;
        if (r2 < floor2 || r2 >= cutoff2) {
            continue;
        }
        float r4 = r2 * r2;
        float r8 = r4 * r4;
        float r14 = r8 * r4 * r2;
        float mag = prefactor * (2.0f/r14 - 1.0f/r8);
        mag = clamp(mag, -max_force, max_force);
        sx += mag * dx;
        sy += mag * dy;
        sz += mag * dz;
    }
    fx[i] = sx;
    fy[i] = sy;
    fz[i] = sz;
}`

// OpenCLBackend evaluates forces on an OpenCL device, one logical lane per
// particle. Device buffers are reused across steps and reallocated only when
// the particle count grows past the allocated capacity.
type OpenCLBackend struct {
	context    *cl.Context
	queue      *cl.CommandQueue
	program    *cl.Program
	kernel     *cl.Kernel
	bufX       *cl.MemObject
	bufY       *cl.MemObject
	bufZ       *cl.MemObject
	bufFX      *cl.MemObject
	bufFY      *cl.MemObject
	bufFZ      *cl.MemObject
	capacity   int
	deviceName string
	initErr    error

	hx, hy, hz    []float32
	hfx, hfy, hfz []float32
}

func NewOpenCLBackend() *OpenCLBackend {
	b := &OpenCLBackend{}
	b.initErr = b.init()
	return b
}

func (b *OpenCLBackend) init() error {
	platforms, err := cl.GetPlatforms()
	if err != nil {
		return fmt.Errorf("querying OpenCL platforms: %w", err)
	}
	if len(platforms) == 0 {
		return errors.New("no OpenCL platforms available")
	}

	var device *cl.Device
	for _, p := range platforms {
		devices, derr := p.GetDevices(cl.DeviceTypeGPU)
		if derr != nil && derr != cl.ErrDeviceNotFound {
			continue
		}
		if len(devices) > 0 {
			device = devices[0]
			break
		}
	}
	if device == nil {
		for _, p := range platforms {
			devices, derr := p.GetDevices(cl.DeviceTypeCPU)
			if derr != nil && derr != cl.ErrDeviceNotFound {
				continue
			}
			if len(devices) > 0 {
				device = devices[0]
				break
			}
		}
	}
	if device == nil {
		return errors.New("no suitable OpenCL devices found")
	}
	b.deviceName = device.Name()

	context, err := cl.CreateContext([]*cl.Device{device})
	if err != nil {
		return fmt.Errorf("creating OpenCL context: %w", err)
	}
	b.context = context

	queue, err := context.CreateCommandQueue(device, 0)
	if err != nil {
		return fmt.Errorf("creating OpenCL command queue: %w", err)
	}
	b.queue = queue

	program, err := context.CreateProgramWithSource([]string{kernelSource})
	if err != nil {
		return fmt.Errorf("creating OpenCL program: %w", err)
	}
	b.program = program

	if err := program.BuildProgram([]*cl.Device{device}, ""); err != nil {
		if buildErr, ok := err.(cl.BuildError); ok {
			return fmt.Errorf("building OpenCL program: %s", string(buildErr))
		}
		return fmt.Errorf("building OpenCL program: %w", err)
	}

	kernel, err := program.CreateKernel("lj_forces")
	if err != nil {
		return fmt.Errorf("creating OpenCL kernel: %w", err)
	}
	b.kernel = kernel

	return nil
}

func (b *OpenCLBackend) Name() string {
	if b.initErr == nil {
		return "opencl (" + b.deviceName + ")"
	}
	return "opencl (not available)"
}

func (b *OpenCLBackend) Available() bool  { return b.initErr == nil }
func (b *OpenCLBackend) InitError() error { return b.initErr }

// ensureBuffers grows the device buffers and host staging slices to hold n
// particles. Existing buffers are kept when already large enough.
func (b *OpenCLBackend) ensureBuffers(n int) error {
	if n <= b.capacity {
		return nil
	}
	b.releaseBuffers()

	byteSize := n * 4
	bufs := []**cl.MemObject{&b.bufX, &b.bufY, &b.bufZ, &b.bufFX, &b.bufFY, &b.bufFZ}
	for _, buf := range bufs {
		mem, err := b.context.CreateEmptyBuffer(cl.MemReadWrite, byteSize)
		if err != nil {
			b.releaseBuffers()
			return fmt.Errorf("allocating device buffer for %d particles: %w", n, err)
		}
		*buf = mem
	}

	b.hx = make([]float32, n)
	b.hy = make([]float32, n)
	b.hz = make([]float32, n)
	b.hfx = make([]float32, n)
	b.hfy = make([]float32, n)
	b.hfz = make([]float32, n)
	b.capacity = n
	return nil
}

func (b *OpenCLBackend) Forces(x, y, z, fx, fy, fz []float64, p ForceParams) {
	if b.initErr != nil {
		NewCPUBackend(0).Forces(x, y, z, fx, fy, fz, p)
		return
	}
	if err := b.forcesDevice(x, y, z, fx, fy, fz, p); err != nil {
		// A failed dispatch is recovered on the host; the result is the
		// same up to single-precision rounding.
		fmt.Fprintln(os.Stderr, "opencl dispatch failed, computing on cpu:", err)
		NewCPUBackend(0).Forces(x, y, z, fx, fy, fz, p)
	}
}

func (b *OpenCLBackend) forcesDevice(x, y, z, fx, fy, fz []float64, p ForceParams) error {
	n := len(x)
	if err := b.ensureBuffers(n); err != nil {
		return err
	}

	for i := 0; i < n; i++ {
		b.hx[i] = float32(x[i])
		b.hy[i] = float32(y[i])
		b.hz[i] = float32(z[i])
	}

	if _, err := b.queue.EnqueueWriteBufferFloat32(b.bufX, false, 0, b.hx[:n], nil); err != nil {
		return fmt.Errorf("uploading x positions: %w", err)
	}
	if _, err := b.queue.EnqueueWriteBufferFloat32(b.bufY, false, 0, b.hy[:n], nil); err != nil {
		return fmt.Errorf("uploading y positions: %w", err)
	}
	if _, err := b.queue.EnqueueWriteBufferFloat32(b.bufZ, false, 0, b.hz[:n], nil); err != nil {
		return fmt.Errorf("uploading z positions: %w", err)
	}

	if err := b.kernel.SetArgs(
		b.bufX, b.bufY, b.bufZ,
		b.bufFX, b.bufFY, b.bufFZ,
		float32(p.Prefactor),
		float32(p.Cutoff),
		float32(p.MinDist),
		float32(p.MaxForce),
		uint32(n),
	); err != nil {
		return fmt.Errorf("setting kernel arguments: %w", err)
	}

	if _, err := b.queue.EnqueueNDRangeKernel(b.kernel, nil, []int{n}, nil, nil); err != nil {
		return fmt.Errorf("enqueueing kernel: %w", err)
	}

	if _, err := b.queue.EnqueueReadBufferFloat32(b.bufFX, true, 0, b.hfx[:n], nil); err != nil {
		return fmt.Errorf("reading x forces: %w", err)
	}
	if _, err := b.queue.EnqueueReadBufferFloat32(b.bufFY, true, 0, b.hfy[:n], nil); err != nil {
		return fmt.Errorf("reading y forces: %w", err)
	}
	if _, err := b.queue.EnqueueReadBufferFloat32(b.bufFZ, true, 0, b.hfz[:n], nil); err != nil {
		return fmt.Errorf("reading z forces: %w", err)
	}

	for i := 0; i < n; i++ {
		fx[i] = float64(b.hfx[i])
		fy[i] = float64(b.hfy[i])
		fz[i] = float64(b.hfz[i])
	}
	return nil
}

func (b *OpenCLBackend) releaseBuffers() {
	bufs := []**cl.MemObject{&b.bufX, &b.bufY, &b.bufZ, &b.bufFX, &b.bufFY, &b.bufFZ}
	for _, buf := range bufs {
		if *buf != nil {
			(*buf).Release()
			*buf = nil
		}
	}
	b.capacity = 0
}

func (b *OpenCLBackend) Cleanup() {
	b.releaseBuffers()
	if b.kernel != nil {
		b.kernel.Release()
		b.kernel = nil
	}
	if b.program != nil {
		b.program.Release()
		b.program = nil
	}
	if b.queue != nil {
		b.queue.Release()
		b.queue = nil
	}
	if b.context != nil {
		b.context.Release()
		b.context = nil
	}
}
