// Package integrate advances particle state with the Euler-Maruyama scheme:
// an orientation stage driven by rotational diffusion, then a position stage
// combining active propulsion, pairwise forces and translational diffusion.
package integrate

import (
	"math"
	"math/rand"
	"runtime"
	"sync"

	"github.com/particlekit/abp3d/internal/particle"
)

// Integrator holds the precomputed step prefactors and one RNG stream per
// worker. A single generator shared across concurrently executing partitions
// would corrupt its state and break reproducibility, so each worker draws
// only from its own stream and the particle index space is split into fixed
// chunks. Runs are reproducible for a fixed seed and worker count.
type Integrator struct {
	delta     float64
	vs        float64
	prefE     float64 // sqrt(2*delta*De)
	prefNoise float64 // sqrt(2*delta*Dt)
	workers   int
	streams   []*rand.Rand
}

func New(delta, de, dt, vs float64, workers int, seed int64) *Integrator {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	streams := make([]*rand.Rand, workers)
	for w := range streams {
		streams[w] = rand.New(rand.NewSource(seed + int64(w)))
	}
	return &Integrator{
		delta:     delta,
		vs:        vs,
		prefE:     math.Sqrt(2 * delta * de),
		prefNoise: math.Sqrt(2 * delta * dt),
		workers:   workers,
		streams:   streams,
	}
}

// StepOrientations applies rotational diffusion to every particle:
// e += prefactor_e * (e x xi) with xi drawn componentwise from uniform [0,1),
// then renormalizes to unit length.
func (in *Integrator) StepOrientations(s *particle.State) {
	in.parallel(s.N, func(w, start, end int) {
		rng := in.streams[w]
		for k := start; k < end; k++ {
			xe := rng.Float64()
			ye := rng.Float64()
			ze := rng.Float64()

			ex := in.prefE*(s.EY[k]*ze-s.EZ[k]*ye) + s.EX[k]
			ey := in.prefE*(s.EZ[k]*xe-s.EX[k]*ze) + s.EY[k]
			ez := in.prefE*(s.EX[k]*ye-s.EY[k]*xe) + s.EZ[k]

			inv := 1.0 / math.Sqrt(ex*ex+ey*ey+ez*ez)
			s.EX[k] = ex * inv
			s.EY[k] = ey * inv
			s.EZ[k] = ez * inv
		}
	})
}

// StepPositions advances positions one step using the forces computed for
// the current configuration:
// r += vs*e*delta + F*delta + xi*sqrt(2*delta*Dt), xi standard Gaussian.
func (in *Integrator) StepPositions(s *particle.State, fx, fy, fz []float64) {
	in.parallel(s.N, func(w, start, end int) {
		rng := in.streams[w]
		for k := start; k < end; k++ {
			xp := rng.NormFloat64()
			yp := rng.NormFloat64()
			zp := rng.NormFloat64()

			s.X[k] += in.vs*s.EX[k]*in.delta + fx[k]*in.delta + xp*in.prefNoise
			s.Y[k] += in.vs*s.EY[k]*in.delta + fy[k]*in.delta + yp*in.prefNoise
			s.Z[k] += in.vs*s.EZ[k]*in.delta + fz[k]*in.delta + zp*in.prefNoise
		}
	})
}

// parallel splits [0, n) into one fixed chunk per worker. The chunk layout
// depends only on n and the worker count, never on scheduling, so the
// particle-to-stream mapping is stable across runs.
func (in *Integrator) parallel(n int, fn func(w, start, end int)) {
	if in.workers == 1 || n < 16 {
		fn(0, 0, n)
		return
	}

	chunk := (n + in.workers - 1) / in.workers
	var wg sync.WaitGroup
	for w := 0; w < in.workers; w++ {
		start := w * chunk
		if start >= n {
			break
		}
		end := start + chunk
		if end > n {
			end = n
		}
		wg.Add(1)
		go func(w, start, end int) {
			defer wg.Done()
			fn(w, start, end)
		}(w, start, end)
	}
	wg.Wait()
}
