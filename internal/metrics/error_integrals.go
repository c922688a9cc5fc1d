package metrics

import (
	"math"

	"github.com/san-kum/dcmotor/internal/sim"
)

// IAE is the integral of the absolute tracking error.
type IAE struct {
	sum float64
}

func NewIAE() *IAE { return &IAE{} }

func (m *IAE) Name() string { return "iae" }

func (m *IAE) Observe(s sim.Sample) {
	m.sum += math.Abs(s.Target-s.Speed) * s.Dt
}

func (m *IAE) Value() float64 { return m.sum }
func (m *IAE) Reset()         { m.sum = 0 }

// ISE is the integral of the squared tracking error.
type ISE struct {
	sum float64
}

func NewISE() *ISE { return &ISE{} }

func (m *ISE) Name() string { return "ise" }

func (m *ISE) Observe(s sim.Sample) {
	e := s.Target - s.Speed
	m.sum += e * e * s.Dt
}

func (m *ISE) Value() float64 { return m.sum }
func (m *ISE) Reset()         { m.sum = 0 }
