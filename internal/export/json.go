package export

import (
	"encoding/json"
	"io"

	"github.com/san-kum/dcmotor/internal/control"
	"github.com/san-kum/dcmotor/internal/models"
	"github.com/san-kum/dcmotor/internal/sim"
)

// Meta describes how a result was produced.
type Meta struct {
	Integrator  string             `json:"integrator"`
	Dt          float64            `json:"dt"`
	Duration    float64            `json:"duration"`
	OutputLimit float64            `json:"output_limit"`
	MaxSpeed    float64            `json:"max_speed"`
	Motor       models.MotorParams `json:"motor"`
}

type Document struct {
	Meta
	Gains     control.Gains      `json:"gains"`
	Target    float64            `json:"target_speed"`
	Steps     int                `json:"steps"`
	NonFinite int                `json:"non_finite"`
	Metrics   map[string]float64 `json:"metrics"`
	Series    sim.Series         `json:"series"`
}

func NewDocument(meta Meta, result *sim.Result) Document {
	return Document{
		Meta:      meta,
		Gains:     result.Gains,
		Target:    result.Target,
		Steps:     result.Series.Len(),
		NonFinite: result.NonFinite,
		Metrics:   result.Metrics,
		Series:    result.Series,
	}
}

func JSON(w io.Writer, meta Meta, result *sim.Result) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(NewDocument(meta, result))
}
