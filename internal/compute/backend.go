package compute

import (
	"fmt"
	"os"
)

// ForceParams bundles the scalar inputs of a force evaluation. All fields
// are fixed for a run.
type ForceParams struct {
	// Prefactor scales the interaction term; 48*epsilon for the
	// Lennard-Jones split used here.
	Prefactor float64
	// Cutoff is the interaction radius; pairs farther apart contribute
	// nothing.
	Cutoff float64
	// MinDist is the numerical floor; pairs closer than this are skipped
	// entirely to avoid singular blow-up.
	MinDist float64
	// MaxForce clamps the per-pair force magnitude so near-coincident
	// particles cannot propagate overflow or NaN into positions.
	MaxForce float64
}

// Backend computes pairwise repulsive forces for all particles. The output
// slices are scratch space: every call clears and fully overwrites them,
// nothing accumulates across calls. Implementations never fail a compute
// call; only construction can fail.
type Backend interface {
	Name() string
	Available() bool
	Forces(x, y, z, fx, fy, fz []float64, p ForceParams)
	Cleanup()
}

// Select picks the backend for a run. Below threshold the dispatch and
// transfer overhead of the accelerator dominates, so the CPU path always
// wins there. At or above it, OpenCL is preferred when it initializes;
// an initialization failure downgrades to CPU and is logged, not fatal.
// Selection happens once per run since the particle count is fixed.
func Select(n, threshold, workers int) Backend {
	if threshold > 0 && n >= threshold {
		acc := NewOpenCLBackend()
		if acc.Available() {
			return acc
		}
		if err := acc.InitError(); err != nil {
			fmt.Fprintf(os.Stderr, "opencl unavailable (%v), falling back to cpu\n", err)
		}
		acc.Cleanup()
	}
	return NewCPUBackend(workers)
}
