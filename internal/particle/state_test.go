package particle

import (
	"math"
	"math/rand"
	"testing"
)

func TestInitializeOrientationsUnitLength(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	s, err := Initialize(200, 10.0, rng)
	if err != nil {
		t.Fatal(err)
	}

	for k := 0; k < s.N; k++ {
		norm := math.Sqrt(s.EX[k]*s.EX[k] + s.EY[k]*s.EY[k] + s.EZ[k]*s.EZ[k])
		if math.Abs(norm-1.0) > 1e-9 {
			t.Errorf("particle %d: orientation norm %.12f, expected 1", k, norm)
		}
	}
}

func TestInitializePositionsInRange(t *testing.T) {
	wall := 7.5
	rng := rand.New(rand.NewSource(2))
	s, err := Initialize(500, wall, rng)
	if err != nil {
		t.Fatal(err)
	}

	for k := 0; k < s.N; k++ {
		for _, v := range []float64{s.X[k], s.Y[k], s.Z[k]} {
			if v < -wall || v > wall {
				t.Fatalf("particle %d: coordinate %.4f outside [-%.1f, %.1f]", k, v, wall, wall)
			}
		}
	}
}

func TestInitializeDeterministic(t *testing.T) {
	a, err := Initialize(100, 10.0, rand.New(rand.NewSource(42)))
	if err != nil {
		t.Fatal(err)
	}
	b, err := Initialize(100, 10.0, rand.New(rand.NewSource(42)))
	if err != nil {
		t.Fatal(err)
	}

	for k := 0; k < a.N; k++ {
		if a.X[k] != b.X[k] || a.Y[k] != b.Y[k] || a.Z[k] != b.Z[k] {
			t.Fatalf("particle %d: positions differ for identical seeds", k)
		}
		if a.EX[k] != b.EX[k] || a.EY[k] != b.EY[k] || a.EZ[k] != b.EZ[k] {
			t.Fatalf("particle %d: orientations differ for identical seeds", k)
		}
	}
}

func TestInitializeRejectsBadCount(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	if _, err := Initialize(0, 10.0, rng); err == nil {
		t.Error("expected error for zero particles")
	}
	if _, err := Initialize(-5, 10.0, rng); err == nil {
		t.Error("expected error for negative particles")
	}
}

func TestSeparation(t *testing.T) {
	s := NewState(2)
	s.X[0], s.Y[0], s.Z[0] = 0, 0, 0
	s.X[1], s.Y[1], s.Z[1] = 3, 4, 0

	if got := s.Separation(0, 1); math.Abs(got-5.0) > 1e-12 {
		t.Errorf("expected separation 5, got %.12f", got)
	}
	if got := s.Separation(1, 0); math.Abs(got-5.0) > 1e-12 {
		t.Errorf("separation should be symmetric, got %.12f", got)
	}
}
