package metrics

import (
	"math"
	"testing"

	"github.com/particlekit/abp3d/internal/output"
	"github.com/particlekit/abp3d/internal/particle"
)

func TestMSDKnownDisplacement(t *testing.T) {
	s := particle.NewState(2)
	m := NewMSD(s)

	s.X[0] = 3.0 // squared displacement 9
	s.Y[1] = 4.0 // squared displacement 16
	m.Observe(s, 1)

	if got := m.Value(); math.Abs(got-12.5) > 1e-12 {
		t.Errorf("expected msd 12.5, got %g", got)
	}
}

func TestMSDReferenceIsSnapshot(t *testing.T) {
	s := particle.NewState(1)
	s.X[0] = 2.0
	m := NewMSD(s)

	// Moving the live state must not move the reference.
	s.X[0] = 5.0
	m.Observe(s, 1)
	if got := m.Value(); math.Abs(got-9.0) > 1e-12 {
		t.Errorf("expected msd 9 from snapshot reference, got %g", got)
	}
}

func TestPolarOrderAligned(t *testing.T) {
	s := particle.NewState(10)
	for k := 0; k < s.N; k++ {
		s.EZ[k] = 1.0
	}

	p := NewPolarOrder()
	p.Observe(s, 0)
	if math.Abs(p.Value()-1.0) > 1e-12 {
		t.Errorf("expected polar order 1 for aligned population, got %g", p.Value())
	}
}

func TestPolarOrderOpposed(t *testing.T) {
	s := particle.NewState(2)
	s.EX[0] = 1.0
	s.EX[1] = -1.0

	p := NewPolarOrder()
	p.Observe(s, 0)
	if p.Value() > 1e-12 {
		t.Errorf("expected zero polar order for opposed pair, got %g", p.Value())
	}
}

func TestSeriesFromTrajectory(t *testing.T) {
	traj := &output.Trajectory{
		Particles: 2,
		Frames: []output.Frame{
			{Step: 0, X: []float64{0, 0}, Y: []float64{0, 0}, Z: []float64{1, 3},
				EX: []float64{1, 1}, EY: []float64{0, 0}, EZ: []float64{0, 0}},
			{Step: 10, X: []float64{2, 0}, Y: []float64{0, 0}, Z: []float64{1, 3},
				EX: []float64{1, -1}, EY: []float64{0, 0}, EZ: []float64{0, 0}},
		},
	}

	msd := MSDSeries(traj)
	if len(msd) != 2 || msd[0] != 0 {
		t.Fatalf("unexpected msd series %v", msd)
	}
	if math.Abs(msd[1]-2.0) > 1e-12 {
		t.Errorf("expected msd 2 at frame 1, got %g", msd[1])
	}

	mz := MeanZSeries(traj)
	if math.Abs(mz[0]-2.0) > 1e-12 || math.Abs(mz[1]-2.0) > 1e-12 {
		t.Errorf("unexpected mean z series %v", mz)
	}

	polar := PolarSeries(traj)
	if math.Abs(polar[0]-1.0) > 1e-12 {
		t.Errorf("expected polar 1 at frame 0, got %g", polar[0])
	}
	if polar[1] > 1e-12 {
		t.Errorf("expected polar 0 at frame 1, got %g", polar[1])
	}
}
