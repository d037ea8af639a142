package compute

import (
	"runtime"
	"sync"
)

// CPUBackend evaluates forces in double precision, partitioning the particle
// index space across worker goroutines. Each worker writes only its own
// particles' slots, so no synchronization beyond the join is needed.
type CPUBackend struct {
	workers int
}

func NewCPUBackend(workers int) *CPUBackend {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &CPUBackend{workers: workers}
}

func (c *CPUBackend) Name() string    { return "cpu" }
func (c *CPUBackend) Available() bool { return true }
func (c *CPUBackend) Cleanup()        {}

func (c *CPUBackend) Forces(x, y, z, fx, fy, fz []float64, p ForceParams) {
	n := len(x)
	if n < 16 || c.workers == 1 {
		forcesRange(0, n, x, y, z, fx, fy, fz, p)
		return
	}

	var wg sync.WaitGroup
	chunk := (n + c.workers - 1) / c.workers
	for w := 0; w < c.workers; w++ {
		start := w * chunk
		if start >= n {
			break
		}
		end := start + chunk
		if end > n {
			end = n
		}
		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			forcesRange(start, end, x, y, z, fx, fy, fz, p)
		}(start, end)
	}
	wg.Wait()
}

// forcesRange accumulates the force on particles [start, end) from all other
// particles. The inner loop always runs j = 0..n in order, so results are
// bit-identical regardless of how the outer index space is partitioned.
func forcesRange(start, end int, x, y, z, fx, fy, fz []float64, p ForceParams) {
	n := len(x)
	cutoff2 := p.Cutoff * p.Cutoff
	floor2 := p.MinDist * p.MinDist

	for i := start; i < end; i++ {
		xi, yi, zi := x[i], y[i], z[i]
		var sx, sy, sz float64

		for j := 0; j < n; j++ {
			if j == i {
				continue
			}
			dx := x[j] - xi
			dy := y[j] - yi
			dz := z[j] - zi
			r2 := dx*dx + dy*dy + dz*dz
			if r2 < floor2 || r2 >= cutoff2 {
				continue
			}

			r4 := r2 * r2
			r8 := r4 * r4
			r14 := r8 * r4 * r2
			mag := p.Prefactor * (2.0/r14 - 1.0/r8)
			if mag > p.MaxForce {
				mag = p.MaxForce
			} else if mag < -p.MaxForce {
				mag = -p.MaxForce
			}

			sx += mag * dx
			sy += mag * dy
			sz += mag * dz
		}

		fx[i] = sx
		fy[i] = sy
		fz[i] = sz
	}
}
