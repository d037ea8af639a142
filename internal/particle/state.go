package particle

import (
	"fmt"
	"math"
	"math/rand"
)

// State holds per-particle positions and orientations in struct-of-arrays
// layout. Arrays are allocated once and mutated in place for the lifetime of
// a run; no particle is created or destroyed after initialization.
type State struct {
	N          int
	X, Y, Z    []float64
	EX, EY, EZ []float64
}

func NewState(n int) *State {
	return &State{
		N:  n,
		X:  make([]float64, n),
		Y:  make([]float64, n),
		Z:  make([]float64, n),
		EX: make([]float64, n),
		EY: make([]float64, n),
		EZ: make([]float64, n),
	}
}

// Initialize draws random positions and orientations for n particles.
// Position components are uniform in [-wall, wall]. Orientation components
// are uniform in [0,1) and normalized to unit length; a degenerate zero draw
// is redrawn rather than treated as fatal.
func Initialize(n int, wall float64, rng *rand.Rand) (*State, error) {
	if n <= 0 {
		return nil, fmt.Errorf("particle count must be positive, got %d", n)
	}
	s := NewState(n)

	for k := 0; k < n; k++ {
		ex, ey, ez := rng.Float64(), rng.Float64(), rng.Float64()
		norm := math.Sqrt(ex*ex + ey*ey + ez*ez)
		for norm == 0 {
			ex, ey, ez = rng.Float64(), rng.Float64(), rng.Float64()
			norm = math.Sqrt(ex*ex + ey*ey + ez*ez)
		}
		inv := 1.0 / norm
		s.EX[k] = ex * inv
		s.EY[k] = ey * inv
		s.EZ[k] = ez * inv
	}

	for k := 0; k < n; k++ {
		s.X[k] = uniformRange(rng, wall)
		s.Y[k] = uniformRange(rng, wall)
		s.Z[k] = uniformRange(rng, wall)
	}

	return s, nil
}

func uniformRange(rng *rand.Rand, wall float64) float64 {
	return (2*rng.Float64() - 1) * wall
}

// Separation returns the Euclidean distance between particles i and j.
func (s *State) Separation(i, j int) float64 {
	dx := s.X[j] - s.X[i]
	dy := s.Y[j] - s.Y[i]
	dz := s.Z[j] - s.Z[i]
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}
