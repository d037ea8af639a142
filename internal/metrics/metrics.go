// Package metrics provides observables computed on emitted frames.
package metrics

import (
	"math"

	"github.com/particlekit/abp3d/internal/output"
	"github.com/particlekit/abp3d/internal/particle"
)

// Metric observes the particle state at every emitted frame.
type Metric interface {
	Name() string
	Observe(s *particle.State, step int)
	Value() float64
	Reset()
}

// MSD tracks the mean squared displacement from the initial configuration.
type MSD struct {
	x0, y0, z0 []float64
	value      float64
}

// NewMSD captures the reference positions; call it after overlap resolution
// and before the first step.
func NewMSD(s *particle.State) *MSD {
	m := &MSD{
		x0: make([]float64, s.N),
		y0: make([]float64, s.N),
		z0: make([]float64, s.N),
	}
	copy(m.x0, s.X)
	copy(m.y0, s.Y)
	copy(m.z0, s.Z)
	return m
}

func (m *MSD) Name() string { return "msd" }

func (m *MSD) Observe(s *particle.State, step int) {
	sum := 0.0
	for k := 0; k < s.N; k++ {
		dx := s.X[k] - m.x0[k]
		dy := s.Y[k] - m.y0[k]
		dz := s.Z[k] - m.z0[k]
		sum += dx*dx + dy*dy + dz*dz
	}
	m.value = sum / float64(s.N)
}

func (m *MSD) Value() float64 { return m.value }
func (m *MSD) Reset()         { m.value = 0 }

// PolarOrder is the magnitude of the mean orientation vector: 1 for a fully
// aligned population, near 0 for an isotropic one.
type PolarOrder struct {
	value float64
}

func NewPolarOrder() *PolarOrder { return &PolarOrder{} }

func (p *PolarOrder) Name() string { return "polar_order" }

func (p *PolarOrder) Observe(s *particle.State, step int) {
	var sx, sy, sz float64
	for k := 0; k < s.N; k++ {
		sx += s.EX[k]
		sy += s.EY[k]
		sz += s.EZ[k]
	}
	n := float64(s.N)
	p.value = math.Sqrt(sx*sx+sy*sy+sz*sz) / n
}

func (p *PolarOrder) Value() float64 { return p.value }
func (p *PolarOrder) Reset()         { p.value = 0 }

// MSDSeries computes the per-frame mean squared displacement of a loaded
// trajectory, relative to its first frame.
func MSDSeries(t *output.Trajectory) []float64 {
	if len(t.Frames) == 0 {
		return nil
	}
	ref := t.Frames[0]
	out := make([]float64, len(t.Frames))
	for i, fr := range t.Frames {
		sum := 0.0
		for k := range fr.X {
			dx := fr.X[k] - ref.X[k]
			dy := fr.Y[k] - ref.Y[k]
			dz := fr.Z[k] - ref.Z[k]
			sum += dx*dx + dy*dy + dz*dz
		}
		out[i] = sum / float64(len(fr.X))
	}
	return out
}

// MeanZSeries computes the per-frame mean axial position.
func MeanZSeries(t *output.Trajectory) []float64 {
	out := make([]float64, len(t.Frames))
	for i, fr := range t.Frames {
		sum := 0.0
		for _, z := range fr.Z {
			sum += z
		}
		out[i] = sum / float64(len(fr.Z))
	}
	return out
}

// PolarSeries computes the per-frame polar order parameter.
func PolarSeries(t *output.Trajectory) []float64 {
	out := make([]float64, len(t.Frames))
	for i, fr := range t.Frames {
		var sx, sy, sz float64
		for k := range fr.EX {
			sx += fr.EX[k]
			sy += fr.EY[k]
			sz += fr.EZ[k]
		}
		n := float64(len(fr.EX))
		out[i] = math.Sqrt(sx*sx+sy*sy+sz*sz) / n
	}
	return out
}
