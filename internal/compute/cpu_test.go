package compute

import (
	"math"
	"math/rand"
	"testing"
)

func testParams() ForceParams {
	return ForceParams{
		Prefactor: 48.0,
		Cutoff:    5.0,
		MinDist:   0.5,
		MaxForce:  1e10,
	}
}

func TestForcesRepulsionAtContact(t *testing.T) {
	// Two particles one diameter apart along x. At r=1 the interaction term
	// 2/r^14 - 1/r^8 = 1 is positive, so the contribution on particle 0
	// points toward particle 1 and the pair forces are antisymmetric.
	x := []float64{0, 1}
	y := []float64{0, 0}
	z := []float64{0, 0}
	fx := make([]float64, 2)
	fy := make([]float64, 2)
	fz := make([]float64, 2)

	NewCPUBackend(1).Forces(x, y, z, fx, fy, fz, testParams())

	if math.Abs(fx[0]-48.0) > 1e-9 {
		t.Errorf("expected fx[0] = 48, got %.6f", fx[0])
	}
	if math.Abs(fx[1]+48.0) > 1e-9 {
		t.Errorf("expected fx[1] = -48, got %.6f", fx[1])
	}
	if fy[0] != 0 || fz[0] != 0 {
		t.Errorf("expected zero transverse force, got fy=%.6f fz=%.6f", fy[0], fz[0])
	}
}

func TestForcesZeroBeyondCutoff(t *testing.T) {
	x := []float64{0, 10}
	y := []float64{0, 0}
	z := []float64{0, 0}
	fx := make([]float64, 2)
	fy := make([]float64, 2)
	fz := make([]float64, 2)

	NewCPUBackend(1).Forces(x, y, z, fx, fy, fz, testParams())

	for i := 0; i < 2; i++ {
		if fx[i] != 0 || fy[i] != 0 || fz[i] != 0 {
			t.Errorf("particle %d: expected zero force beyond cutoff, got (%g, %g, %g)",
				i, fx[i], fy[i], fz[i])
		}
	}
}

func TestForcesSkipsPairsBelowFloor(t *testing.T) {
	// Pairs closer than MinDist contribute nothing at all.
	x := []float64{0, 0.1}
	y := []float64{0, 0}
	z := []float64{0, 0}
	fx := make([]float64, 2)
	fy := make([]float64, 2)
	fz := make([]float64, 2)

	NewCPUBackend(1).Forces(x, y, z, fx, fy, fz, testParams())

	if fx[0] != 0 || fx[1] != 0 {
		t.Errorf("expected skipped pair below floor, got fx = (%g, %g)", fx[0], fx[1])
	}
}

func TestForcesClampedNearFloor(t *testing.T) {
	// Just above the floor the raw magnitude exceeds a small clamp; the
	// contribution is capped at MaxForce times the separation vector.
	x := []float64{0, 0.51}
	y := []float64{0, 0}
	z := []float64{0, 0}
	fx := make([]float64, 2)
	fy := make([]float64, 2)
	fz := make([]float64, 2)

	p := testParams()
	p.MaxForce = 1000.0
	NewCPUBackend(1).Forces(x, y, z, fx, fy, fz, p)

	want := p.MaxForce * 0.51
	if math.Abs(fx[0]-want) > 1e-9 {
		t.Errorf("expected clamped force %.4f, got %.6f", want, fx[0])
	}
	for i := 0; i < 2; i++ {
		if math.IsNaN(fx[i]) || math.IsInf(fx[i], 0) {
			t.Fatalf("particle %d: non-finite force %g", i, fx[i])
		}
	}
}

func TestForcesOverwritesOutput(t *testing.T) {
	x := []float64{0, 10}
	y := []float64{0, 0}
	z := []float64{0, 0}
	fx := []float64{99, 99}
	fy := []float64{99, 99}
	fz := []float64{99, 99}

	NewCPUBackend(1).Forces(x, y, z, fx, fy, fz, testParams())

	if fx[0] != 0 || fy[0] != 0 || fz[0] != 0 {
		t.Error("output slices must be fully overwritten, not accumulated")
	}
}

func TestForcesParallelMatchesSerial(t *testing.T) {
	n := 300
	rng := rand.New(rand.NewSource(11))
	x := make([]float64, n)
	y := make([]float64, n)
	z := make([]float64, n)
	for i := 0; i < n; i++ {
		x[i] = (2*rng.Float64() - 1) * 10
		y[i] = (2*rng.Float64() - 1) * 10
		z[i] = (2*rng.Float64() - 1) * 10
	}

	p := testParams()
	serial := [3][]float64{make([]float64, n), make([]float64, n), make([]float64, n)}
	NewCPUBackend(1).Forces(x, y, z, serial[0], serial[1], serial[2], p)

	for _, workers := range []int{2, 4, 7} {
		par := [3][]float64{make([]float64, n), make([]float64, n), make([]float64, n)}
		NewCPUBackend(workers).Forces(x, y, z, par[0], par[1], par[2], p)

		for i := 0; i < n; i++ {
			if serial[0][i] != par[0][i] || serial[1][i] != par[1][i] || serial[2][i] != par[2][i] {
				t.Fatalf("workers=%d particle %d: parallel result differs from serial", workers, i)
			}
		}
	}
}
