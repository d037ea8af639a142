//go:build !opencl

package compute

import "errors"

// OpenCLBackend is a placeholder when the binary is built without the
// opencl tag. Selection always falls through to the CPU backend.
type OpenCLBackend struct{}

func NewOpenCLBackend() *OpenCLBackend { return &OpenCLBackend{} }

func (b *OpenCLBackend) Name() string    { return "opencl (not built)" }
func (b *OpenCLBackend) Available() bool { return false }
func (b *OpenCLBackend) InitError() error {
	return errors.New("binary built without opencl support")
}
func (b *OpenCLBackend) Cleanup() {}

func (b *OpenCLBackend) Forces(x, y, z, fx, fy, fz []float64, p ForceParams) {
	NewCPUBackend(0).Forces(x, y, z, fx, fy, fz, p)
}
