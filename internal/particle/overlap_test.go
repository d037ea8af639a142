package particle

import (
	"errors"
	"math/rand"
	"testing"
)

func TestResolveOverlapsSpreadsCluster(t *testing.T) {
	diameter := 1.0
	wall := 100.0
	rng := rand.New(rand.NewSource(7))

	// Start with everything piled near the axis so redraws actually happen.
	s := NewState(5)
	for k := 0; k < s.N; k++ {
		s.X[k] = 0.1 * float64(k)
		s.Y[k] = 0.0
		s.Z[k] = float64(k)
	}

	if err := ResolveOverlaps(s, diameter, wall, rng); err != nil {
		t.Fatal(err)
	}

	minSep := 1.5 * diameter
	for k := 0; k < s.N; k++ {
		for j := k + 1; j < s.N; j++ {
			if sep := s.Separation(k, j); sep < minSep {
				t.Errorf("particles %d and %d only %.4f apart, need %.4f", k, j, sep, minSep)
			}
		}
	}
}

func TestResolveOverlapsLeavesZUntouched(t *testing.T) {
	wall := 15.0
	rng := rand.New(rand.NewSource(9))

	s, err := Initialize(60, wall, rng)
	if err != nil {
		t.Fatal(err)
	}
	z0 := make([]float64, s.N)
	copy(z0, s.Z)

	if err := ResolveOverlaps(s, 1.0, wall, rng); err != nil {
		t.Fatal(err)
	}
	for k := 0; k < s.N; k++ {
		if s.Z[k] != z0[k] {
			t.Errorf("particle %d: z changed from %.6f to %.6f", k, z0[k], s.Z[k])
		}
	}
}

func TestResolveOverlapsTooDense(t *testing.T) {
	wall := 2.0
	rng := rand.New(rand.NewSource(3))

	s, err := Initialize(10000, wall, rng)
	if err != nil {
		t.Fatal(err)
	}

	err = ResolveOverlaps(s, 1.0, wall, rng)
	if err == nil {
		t.Fatal("expected failure for 10000 particles in a radius-2 cylinder")
	}
	if !errors.Is(err, ErrDensity) {
		t.Errorf("expected ErrDensity, got %v", err)
	}
}
