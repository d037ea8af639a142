// Package tui renders a running simulation in the terminal: step progress,
// backend and confinement info, and live metric graphs.
package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/particlekit/abp3d/internal/metrics"
	"github.com/particlekit/abp3d/internal/sim"
)

const historyCapacity = 120

var (
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true).MarginBottom(1)
	statsStyle  = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(lipgloss.Color("240")).Padding(0, 2).Width(40)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(14)
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	graphStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(1)
)

type TickMsg time.Time

// Model drives the simulation a batch of steps per frame so the terminal
// stays responsive regardless of particle count.
type Model struct {
	sim          *sim.Simulation
	msd          *metrics.MSD
	polar        *metrics.PolarOrder
	step         int
	stepsPerTick int
	running      bool
	done         bool
	start        time.Time
	msdHistory   []float64
	polarHistory []float64
}

func NewModel(s *sim.Simulation) Model {
	msd := metrics.NewMSD(s.State())
	polar := metrics.NewPolarOrder()
	s.AddMetric(msd)
	s.AddMetric(polar)

	stepsPerTick := s.Config().OutputInterval
	if stepsPerTick > 500 {
		stepsPerTick = 500
	}
	if stepsPerTick < 1 {
		stepsPerTick = 1
	}

	return Model{
		sim:          s,
		msd:          msd,
		polar:        polar,
		stepsPerTick: stepsPerTick,
		running:      true,
		start:        time.Now(),
		msdHistory:   make([]float64, 0, historyCapacity),
		polarHistory: make([]float64, 0, historyCapacity),
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Tick(time.Second/30, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		}
	case TickMsg:
		if m.running && !m.done {
			m.advance()
		}
		return m, tea.Tick(time.Second/30, func(t time.Time) tea.Msg { return TickMsg(t) })
	}
	return m, nil
}

func (m *Model) advance() {
	total := m.sim.Config().Steps
	for i := 0; i < m.stepsPerTick && m.step < total; i++ {
		m.sim.Step()
		m.step++
	}
	m.sim.Observe(m.step)
	m.msdHistory = appendCapped(m.msdHistory, m.msd.Value())
	m.polarHistory = appendCapped(m.polarHistory, m.polar.Value())
	if m.step >= total {
		m.done = true
	}
}

func appendCapped(h []float64, v float64) []float64 {
	h = append(h, v)
	if len(h) > historyCapacity {
		h = h[1:]
	}
	return h
}

func (m Model) View() string {
	cfg := m.sim.Config()

	var stats strings.Builder
	line := func(label string, value string) {
		stats.WriteString(labelStyle.Render(label) + valueStyle.Render(value) + "\n")
	}
	line("step", fmt.Sprintf("%d / %d", m.step, cfg.Steps))
	line("particles", fmt.Sprintf("%d", cfg.Particles))
	line("backend", m.sim.BackendName())
	line("cylinder", fmt.Sprintf("r=%.1f h=%.1f", cfg.Wall, cfg.Height))
	line("msd", fmt.Sprintf("%.4f", m.msd.Value()))
	line("polar order", fmt.Sprintf("%.4f", m.polar.Value()))
	line("elapsed", time.Since(m.start).Truncate(time.Millisecond).String())
	if m.done {
		line("status", "finished")
	} else if !m.running {
		line("status", "paused")
	} else {
		line("status", "running")
	}

	var graphs string
	if len(m.msdHistory) > 1 {
		graphs = graphStyle.Render(asciigraph.Plot(m.msdHistory,
			asciigraph.Height(8),
			asciigraph.Width(60),
			asciigraph.Caption("mean squared displacement"),
		))
		if len(m.polarHistory) > 1 {
			graphs += "\n" + graphStyle.Render(asciigraph.Plot(m.polarHistory,
				asciigraph.Height(6),
				asciigraph.Width(60),
				asciigraph.Caption("polar order"),
			))
		}
	}

	body := lipgloss.JoinHorizontal(lipgloss.Top, statsStyle.Render(stats.String()), graphs)
	help := helpStyle.Render("space pause/resume  q quit")
	return headerStyle.Render("abp3d live") + "\n" + body + "\n" + help + "\n"
}
