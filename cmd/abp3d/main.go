package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"
	"github.com/particlekit/abp3d/internal/compute"
	"github.com/particlekit/abp3d/internal/config"
	"github.com/particlekit/abp3d/internal/metrics"
	"github.com/particlekit/abp3d/internal/output"
	"github.com/particlekit/abp3d/internal/sim"
	"github.com/particlekit/abp3d/internal/tui"
	"github.com/spf13/cobra"
)

var (
	configFile string
	preset     string
	outPath    string

	epsilon   float64
	delta     float64
	particles int
	transDiff float64
	rotDiff   float64
	vs        float64
	wall      float64
	height    float64
	steps     int
	interval  int
	threads   int
	format    string
	seed      int64
	diameter  float64
	cutoff    float64
	gpuThresh int

	plotMetric string
	benchSteps int
)

// main registers the abp3d commands and executes the root. Exits with status
// 1 on command error.
func main() {
	rootCmd := &cobra.Command{
		Use:   "abp3d",
		Short: "active brownian particle simulation in cylindrical confinement",
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a simulation",
		RunE:  runSimulation,
	}
	addSimFlags(runCmd)
	runCmd.Flags().StringVarP(&outPath, "output", "o", "", "output file (default simulation.csv or simulation.bin)")

	plotCmd := &cobra.Command{
		Use:   "plot [trajectory]",
		Short: "plot metrics from a trajectory file",
		Args:  cobra.ExactArgs(1),
		RunE:  plotTrajectory,
	}
	plotCmd.Flags().StringVar(&plotMetric, "metric", "all", "metric to plot: msd, polar, meanz or all")

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "benchmark the compute backends",
		RunE:  benchBackends,
	}
	benchCmd.Flags().IntVar(&benchSteps, "steps", 200, "steps per measurement")
	benchCmd.Flags().IntVar(&threads, "threads", 0, "worker count (0 = all cpus)")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "run with a live terminal view",
		RunE:  runLive,
	}
	addSimFlags(liveCmd)

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tPARTICLES\tVS\tWALL\tHEIGHT\tSTEPS")
			for _, name := range config.ListPresets() {
				p := config.GetPreset(name)
				fmt.Fprintf(w, "%s\t%d\t%.1f\t%.1f\t%.1f\t%d\n",
					name, p.Particles, p.SelfPropulsion, p.Wall, p.Height, p.Steps)
			}
			return w.Flush()
		},
	}

	infoCmd := &cobra.Command{
		Use:   "info [trajectory.bin]",
		Short: "print the header of a binary trajectory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			particles, frames, err := output.ReadBinaryHeader(args[0])
			if err != nil {
				return err
			}
			fmt.Printf("file: %s\n", args[0])
			fmt.Printf("particles: %d\n", particles)
			fmt.Printf("frames: %d\n", frames)
			return nil
		},
	}

	rootCmd.AddCommand(runCmd, plotCmd, benchCmd, liveCmd, presetsCmd, infoCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addSimFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	cmd.Flags().Float64Var(&epsilon, "epsilon", config.DefaultEpsilon, "interaction strength")
	cmd.Flags().Float64Var(&delta, "delta", config.DefaultDelta, "timestep")
	cmd.Flags().IntVarP(&particles, "particles", "n", config.DefaultParticles, "particle count")
	cmd.Flags().Float64Var(&transDiff, "dt", config.DefaultTransDiff, "translational diffusion coefficient")
	cmd.Flags().Float64Var(&rotDiff, "de", config.DefaultRotDiff, "rotational diffusion coefficient")
	cmd.Flags().Float64Var(&vs, "vs", config.DefaultPropulsion, "self-propulsion speed")
	cmd.Flags().Float64Var(&wall, "wall", config.DefaultWall, "cylinder radius")
	cmd.Flags().Float64Var(&height, "height", config.DefaultHeight, "cylinder half-height")
	cmd.Flags().IntVar(&steps, "steps", config.DefaultSteps, "total steps")
	cmd.Flags().IntVar(&interval, "interval", config.DefaultInterval, "output interval")
	cmd.Flags().IntVar(&threads, "threads", 0, "worker count (0 = all cpus)")
	cmd.Flags().StringVar(&format, "format", "csv", "output format: csv or binary")
	cmd.Flags().Int64Var(&seed, "seed", 42, "random seed")
	cmd.Flags().Float64Var(&diameter, "diameter", config.DefaultDiameter, "particle diameter")
	cmd.Flags().Float64Var(&cutoff, "cutoff", 0, "interaction cutoff (0 = 5*diameter)")
	cmd.Flags().IntVar(&gpuThresh, "gpu-threshold", config.DefaultGPUThreshold, "minimum particle count for the accelerator")
}

// buildConfig resolves the run configuration: defaults, then preset, then
// config file, then any flag the user actually set.
func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		p := config.GetPreset(preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
		cfg = p
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	if cmd.Flags().Changed("epsilon") {
		cfg.Epsilon = epsilon
	}
	if cmd.Flags().Changed("delta") {
		cfg.Delta = delta
	}
	if cmd.Flags().Changed("particles") {
		cfg.Particles = particles
	}
	if cmd.Flags().Changed("dt") {
		cfg.TransDiffusion = transDiff
	}
	if cmd.Flags().Changed("de") {
		cfg.RotDiffusion = rotDiff
	}
	if cmd.Flags().Changed("vs") {
		cfg.SelfPropulsion = vs
	}
	if cmd.Flags().Changed("wall") {
		cfg.Wall = wall
	}
	if cmd.Flags().Changed("height") {
		cfg.Height = height
	}
	if cmd.Flags().Changed("steps") {
		cfg.Steps = steps
	}
	if cmd.Flags().Changed("interval") {
		cfg.OutputInterval = interval
	}
	if cmd.Flags().Changed("threads") {
		cfg.Threads = threads
	}
	if cmd.Flags().Changed("format") {
		cfg.OutputFormat = format
	}
	if cmd.Flags().Changed("seed") {
		cfg.Seed = seed
	}
	if cmd.Flags().Changed("diameter") {
		cfg.Diameter = diameter
	}
	if cmd.Flags().Changed("cutoff") {
		cfg.CutoffRadius = cutoff
	}
	if cmd.Flags().Changed("gpu-threshold") {
		cfg.GPUThreshold = gpuThresh
	}

	return cfg, nil
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	fmt.Printf("particles: %d  steps: %d  delta: %g\n", cfg.Particles, cfg.Steps, cfg.Delta)
	fmt.Printf("cylinder: radius %.2f, half-height %.2f\n", cfg.Wall, cfg.Height)
	fmt.Printf("vs: %g  dt: %g  de: %g  epsilon: %g\n",
		cfg.SelfPropulsion, cfg.TransDiffusion, cfg.RotDiffusion, cfg.Epsilon)
	for _, w := range cfg.Warnings() {
		fmt.Fprintf(os.Stderr, "warning: %s\n", w)
	}

	backend := compute.Select(cfg.Particles, cfg.GPUThreshold, cfg.Threads)
	defer backend.Cleanup()
	fmt.Printf("backend: %s\n", backend.Name())

	s, err := sim.New(cfg, backend)
	if err != nil {
		return err
	}

	path := outPath
	if path == "" {
		if cfg.OutputFormat == "binary" {
			path = "simulation.bin"
		} else {
			path = "simulation.csv"
		}
	}
	writer, err := output.NewWriter(cfg.OutputFormat, path, cfg.Particles, cfg.FrameCount())
	if err != nil {
		return err
	}
	s.SetWriter(writer)

	s.AddMetric(metrics.NewMSD(s.State()))
	s.AddMetric(metrics.NewPolarOrder())

	fmt.Println("running...")
	start := time.Now()
	if err := s.Run(context.Background()); err != nil {
		writer.Close()
		return err
	}
	elapsed := time.Since(start)
	if err := writer.Close(); err != nil {
		return err
	}

	fmt.Printf("completed in %v (%.0f steps/sec)\n", elapsed.Truncate(time.Millisecond),
		float64(cfg.Steps)/elapsed.Seconds())
	fmt.Printf("trajectory: %s (%d frames)\n", path, cfg.FrameCount())
	fmt.Println("\nmetrics:")
	for name, val := range s.MetricValues() {
		fmt.Printf("  %s: %.6f\n", name, val)
	}
	return nil
}

func plotTrajectory(cmd *cobra.Command, args []string) error {
	t, err := output.ReadFile(args[0])
	if err != nil {
		return err
	}
	if len(t.Frames) < 2 {
		return fmt.Errorf("not enough frames to plot (%d)", len(t.Frames))
	}

	fmt.Printf("file: %s\n", args[0])
	fmt.Printf("particles: %d  frames: %d\n\n", t.Particles, len(t.Frames))

	show := func(name string, data []float64, caption string) {
		if plotMetric != "all" && plotMetric != name {
			return
		}
		graph := asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(caption),
		)
		fmt.Println(graph)
		fmt.Println()
	}

	show("msd", metrics.MSDSeries(t), "mean squared displacement")
	show("polar", metrics.PolarSeries(t), "polar order parameter")
	show("meanz", metrics.MeanZSeries(t), "mean axial position")
	return nil
}

func benchBackends(cmd *cobra.Command, args []string) error {
	counts := []int{64, 256, 512, 1024}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PARTICLES\tBACKEND\tSTEPS\tTIME\tSTEPS/SEC")

	for _, n := range counts {
		backends := []compute.Backend{compute.NewCPUBackend(threads)}
		if acc := compute.NewOpenCLBackend(); acc.Available() {
			backends = append(backends, acc)
		} else {
			acc.Cleanup()
		}

		for _, backend := range backends {
			cfg := config.DefaultConfig()
			cfg.Particles = n
			cfg.Steps = benchSteps
			cfg.OutputInterval = benchSteps
			cfg.Threads = threads
			cfg.Wall = 5.0 * float64(n) / 100.0
			if cfg.Wall < 10 {
				cfg.Wall = 10
			}
			cfg.Height = cfg.Wall

			s, err := sim.New(cfg, backend)
			if err != nil {
				return err
			}

			start := time.Now()
			if err := s.Run(context.Background()); err != nil {
				return err
			}
			elapsed := time.Since(start)

			fmt.Fprintf(w, "%d\t%s\t%d\t%v\t%.0f\n",
				n, backend.Name(), benchSteps, elapsed.Truncate(time.Microsecond),
				float64(benchSteps)/elapsed.Seconds())
		}

		for _, backend := range backends {
			backend.Cleanup()
		}
	}

	return w.Flush()
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	backend := compute.Select(cfg.Particles, cfg.GPUThreshold, cfg.Threads)
	defer backend.Cleanup()

	s, err := sim.New(cfg, backend)
	if err != nil {
		return err
	}

	p := tea.NewProgram(tui.NewModel(s))
	if _, err := p.Run(); err != nil {
		return err
	}
	return nil
}
