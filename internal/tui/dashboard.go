package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/san-kum/dcmotor/internal/config"
	"github.com/san-kum/dcmotor/internal/control"
	"github.com/san-kum/dcmotor/internal/experiment"
	"github.com/san-kum/dcmotor/internal/export"
	"github.com/san-kum/dcmotor/internal/sim"
	"go.uber.org/zap"
)

const coarseSteps = 10

// Model is the slider dashboard. Every input change re-runs the whole
// simulation synchronously and redraws the panels.
type Model struct {
	simulator *sim.Simulator
	ranges    []config.Range
	values    []float64
	cursor    int

	result *sim.Result
	err    error

	width  int
	height int
}

func New(cfg *config.Config, reg *experiment.Registry, log *zap.Logger) (Model, error) {
	exp := experiment.New(cfg)
	if err := exp.Setup(reg, log); err != nil {
		return Model{}, err
	}
	cfg = exp.Config()

	m := Model{
		simulator: exp.Simulator(),
		ranges:    config.Ranges,
		values:    []float64{cfg.Gains.Kp, cfg.Gains.Ki, cfg.Gains.Kd, cfg.Target},
		width:     100,
		height:    40,
	}
	m.rerun()
	return m, nil
}

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Gains() control.Gains {
	return control.Gains{Kp: m.values[0], Ki: m.values[1], Kd: m.values[2]}
}

func (m Model) Target() float64 { return m.values[3] }

func (m Model) Result() *sim.Result { return m.result }

func (m *Model) rerun() {
	m.result, m.err = m.simulator.Run(context.Background(), m.Gains(), m.Target())
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	steps := 0
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil
	case "down", "j":
		if m.cursor < len(m.ranges)-1 {
			m.cursor++
		}
		return m, nil
	case "left", "h":
		steps = -1
	case "right", "l":
		steps = 1
	case "H":
		steps = -coarseSteps
	case "L":
		steps = coarseSteps
	case "r":
		values := make([]float64, len(m.ranges))
		for i, r := range m.ranges {
			values[i] = r.Default
		}
		m.values = values
		m.rerun()
		return m, nil
	default:
		return m, nil
	}

	values := append([]float64(nil), m.values...)
	values[m.cursor] = m.ranges[m.cursor].Nudge(values[m.cursor], steps)
	m.values = values
	m.rerun()
	return m, nil
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("DC MOTOR PID"))
	b.WriteString(dim.Render("  closed-loop speed control"))
	b.WriteString("\n\n")

	var sliders strings.Builder
	for i, r := range m.ranges {
		label := white.Render(fmt.Sprintf("%-6s", r.Name))
		cursor := "  "
		if i == m.cursor {
			label = selectedStyle.Render(fmt.Sprintf("%-6s", r.Name))
			cursor = magenta.Render("▸ ")
		}
		sliders.WriteString(fmt.Sprintf("%s%s %s %s\n",
			cursor, label, sliderBar(m.values[i], r.Min, r.Max, 30), cyan.Render(fmt.Sprintf("%8.3f", m.values[i]))))
	}
	b.WriteString(panelStyle.Render(strings.TrimRight(sliders.String(), "\n")))
	b.WriteString("\n")

	if m.err != nil {
		b.WriteString(red.Render("error: " + m.err.Error()))
		b.WriteString("\n")
	} else if m.result != nil {
		b.WriteString(m.metricsLine())
		b.WriteString("\n\n")
		b.WriteString(m.charts())
	}

	b.WriteString("\n")
	b.WriteString(keyHint.Render("j/k select  h/l adjust  H/L coarse  r reset  q quit"))
	return b.String()
}

func (m Model) metricsLine() string {
	r := m.result
	parts := []string{
		fmt.Sprintf("rise %s", yellow.Render(fmt.Sprintf("%.2fs", r.Metrics["rise_time"]))),
		fmt.Sprintf("settle %s", yellow.Render(fmt.Sprintf("%.2fs", r.Metrics["settling_time"]))),
		fmt.Sprintf("overshoot %s", yellow.Render(fmt.Sprintf("%.1f%%", r.Metrics["overshoot"]))),
		fmt.Sprintf("iae %s", yellow.Render(fmt.Sprintf("%.3f", r.Metrics["iae"]))),
	}
	if r.NonFinite > 0 {
		parts = append(parts, red.Render(fmt.Sprintf("non-finite %d", r.NonFinite)))
	}
	return strings.Join(parts, dim.Render("  │  "))
}

func (m Model) charts() string {
	s := m.result.Series
	w := m.width/2 - 12
	if w < 20 {
		w = 20
	}
	h := m.height/4 - 3
	if h < 4 {
		h = 4
	}

	speed := export.ChartMany([][]float64{s.Speed, s.Target}, "speed / target", w, h)
	output := export.Chart(s.Output, "pid output", w, h)
	current := export.Chart(s.Current, "armature current", w, h)
	voltage := export.Chart(s.Voltage, "armature voltage", w, h)

	top := lipgloss.JoinHorizontal(lipgloss.Top, speed, "   ", output)
	bottom := lipgloss.JoinHorizontal(lipgloss.Top, current, "   ", voltage)
	return lipgloss.JoinVertical(lipgloss.Left, top, "", bottom)
}

// Run starts the dashboard on the alternate screen.
func Run(cfg *config.Config, reg *experiment.Registry, log *zap.Logger) error {
	m, err := New(cfg, reg, log)
	if err != nil {
		return err
	}
	_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
