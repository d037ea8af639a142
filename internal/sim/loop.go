// Package sim orchestrates one run: initialization, overlap resolution, and
// the step loop of orientation update, force computation, position update
// and boundary enforcement.
package sim

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/particlekit/abp3d/internal/boundary"
	"github.com/particlekit/abp3d/internal/compute"
	"github.com/particlekit/abp3d/internal/config"
	"github.com/particlekit/abp3d/internal/integrate"
	"github.com/particlekit/abp3d/internal/metrics"
	"github.com/particlekit/abp3d/internal/output"
	"github.com/particlekit/abp3d/internal/particle"
)

type Simulation struct {
	cfg     *config.Config
	state   *particle.State
	backend compute.Backend
	integ   *integrate.Integrator
	bounds  boundary.Cylinder
	writer  output.FrameWriter
	metrics []metrics.Metric
	params  compute.ForceParams

	fx, fy, fz []float64
}

// New validates the configuration, draws the initial configuration and
// resolves overlaps. Initialization and overlap resolution consume their own
// stream (the run seed); the integrator gets per-worker streams derived from
// seed+1 onward.
func New(cfg *config.Config, backend compute.Backend) (*Simulation, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	initRNG := rand.New(rand.NewSource(cfg.Seed))
	state, err := particle.Initialize(cfg.Particles, cfg.Wall, initRNG)
	if err != nil {
		return nil, err
	}
	if err := particle.ResolveOverlaps(state, cfg.Diameter, cfg.Wall, initRNG); err != nil {
		return nil, err
	}

	return &Simulation{
		cfg:     cfg,
		state:   state,
		backend: backend,
		integ: integrate.New(cfg.Delta, cfg.RotDiffusion, cfg.TransDiffusion,
			cfg.SelfPropulsion, cfg.Threads, cfg.Seed+1),
		bounds: boundary.Cylinder{
			Radius:   cfg.Wall,
			Height:   cfg.Height,
			Diameter: cfg.Diameter,
		},
		params: compute.ForceParams{
			Prefactor: cfg.Prefactor(),
			Cutoff:    cfg.Cutoff(),
			MinDist:   0.5 * cfg.Diameter,
			MaxForce:  1e10,
		},
		fx: make([]float64, cfg.Particles),
		fy: make([]float64, cfg.Particles),
		fz: make([]float64, cfg.Particles),
	}, nil
}

func (s *Simulation) State() *particle.State         { return s.state }
func (s *Simulation) Config() *config.Config         { return s.cfg }
func (s *Simulation) BackendName() string            { return s.backend.Name() }
func (s *Simulation) SetWriter(w output.FrameWriter) { s.writer = w }
func (s *Simulation) AddMetric(m metrics.Metric)     { s.metrics = append(s.metrics, m) }

// Step advances the population by one timestep. Stages run strictly in
// sequence; each reads the previous stage's output.
func (s *Simulation) Step() {
	s.integ.StepOrientations(s.state)
	s.backend.Forces(s.state.X, s.state.Y, s.state.Z, s.fx, s.fy, s.fz, s.params)
	s.integ.StepPositions(s.state, s.fx, s.fy, s.fz)
	s.bounds.Apply(s.state)
}

// Run executes the full step loop, emitting a frame and updating metrics
// every output interval.
func (s *Simulation) Run(ctx context.Context) error {
	for _, m := range s.metrics {
		m.Reset()
	}

	for step := 0; step < s.cfg.Steps; step++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		s.Step()

		if step%s.cfg.OutputInterval == 0 {
			s.Observe(step)
			if s.writer != nil {
				if err := s.writer.WriteFrame(s.state, step); err != nil {
					return fmt.Errorf("writing frame at step %d: %w", step, err)
				}
			}
		}
	}
	return nil
}

// Observe updates all registered metrics for the given step.
func (s *Simulation) Observe(step int) {
	for _, m := range s.metrics {
		m.Observe(s.state, step)
	}
}

// MetricValues snapshots the current metric values by name.
func (s *Simulation) MetricValues() map[string]float64 {
	out := make(map[string]float64, len(s.metrics))
	for _, m := range s.metrics {
		out[m.Name()] = m.Value()
	}
	return out
}
