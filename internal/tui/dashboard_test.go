package tui

import (
	"math"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/san-kum/dcmotor/internal/config"
)

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(t *testing.T, m Model, keys ...string) Model {
	t.Helper()
	for _, k := range keys {
		next, _ := m.Update(key(k))
		m = next.(Model)
	}
	return m
}

func newModel(t *testing.T) Model {
	t.Helper()
	m, err := New(config.DefaultConfig(), nil, nil)
	if err != nil {
		t.Fatalf("new failed: %v", err)
	}
	return m
}

func TestNewRunsDefaults(t *testing.T) {
	m := newModel(t)

	if m.Result() == nil {
		t.Fatal("expected an initial result")
	}
	if m.Result().Series.Len() != 250 {
		t.Errorf("expected 250 samples, got %d", m.Result().Series.Len())
	}
	if g := m.Gains(); g.Kp != 15 || g.Ki != 5 || g.Kd != 0.04 {
		t.Errorf("unexpected gains %+v", g)
	}
}

func TestAdjustReruns(t *testing.T) {
	m := newModel(t)
	before := m.Result()

	m = press(t, m, "l")
	if math.Abs(m.Gains().Kp-15.1) > 1e-9 {
		t.Errorf("expected kp 15.1, got %f", m.Gains().Kp)
	}
	if m.Result() == before {
		t.Error("expected a new result after adjusting")
	}
	if m.Result().Gains.Kp != m.Gains().Kp {
		t.Error("result does not reflect the slider")
	}

	m = press(t, m, "j", "j", "j", "H")
	if math.Abs(m.Target()-4.9) > 1e-9 {
		t.Errorf("expected target 4.9, got %f", m.Target())
	}
	if m.Result().Target != m.Target() {
		t.Error("result does not reflect the target slider")
	}
}

func TestSliderLimits(t *testing.T) {
	m := newModel(t)

	for i := 0; i < 60; i++ {
		m = press(t, m, "L")
	}
	if math.Abs(m.Gains().Kp-50) > 1e-9 {
		t.Errorf("expected kp capped at 50, got %f", m.Gains().Kp)
	}

	m = press(t, m, "k", "k")
	if m.cursor != 0 {
		t.Errorf("cursor should stay on the first slider, got %d", m.cursor)
	}
}

func TestReset(t *testing.T) {
	m := newModel(t)
	m = press(t, m, "L", "j", "h", "r")

	if g := m.Gains(); g.Kp != 15 || g.Ki != 5 || g.Kd != 0.04 {
		t.Errorf("reset should restore defaults, got %+v", g)
	}
	if m.Target() != 5 {
		t.Errorf("reset should restore target, got %f", m.Target())
	}
}

func TestQuit(t *testing.T) {
	m := newModel(t)
	_, cmd := m.Update(key("q"))
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}
}

func TestView(t *testing.T) {
	m := newModel(t)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 48})
	view := next.(Model).View()

	for _, want := range []string{"Kp", "Ki", "Kd", "Target", "speed / target", "pid output", "armature voltage", "q quit"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}
