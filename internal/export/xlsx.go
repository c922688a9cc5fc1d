package export

import (
	"fmt"
	"sort"

	"github.com/san-kum/dcmotor/internal/sim"
	"github.com/xuri/excelize/v2"
)

const (
	SeriesSheet  = "TimeHistory"
	SummarySheet = "Summary"
)

// XLSX writes a workbook with the sampled series on one sheet and the run
// settings and metrics on another.
func XLSX(path string, meta Meta, result *sim.Result) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SeriesSheet); err != nil {
		return err
	}

	sw, err := f.NewStreamWriter(SeriesSheet)
	if err != nil {
		return err
	}

	header := make([]interface{}, len(sim.Columns))
	for i, c := range sim.Columns {
		header[i] = c
	}
	if err := sw.SetRow("A1", header); err != nil {
		return err
	}

	s := result.Series
	for i := 0; i < s.Len(); i++ {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := make([]interface{}, 0, len(sim.Columns))
		for _, v := range s.Row(i) {
			row = append(row, v)
		}
		if err := sw.SetRow(cell, row); err != nil {
			return fmt.Errorf("row %d: %w", i, err)
		}
	}
	if err := sw.Flush(); err != nil {
		return err
	}

	if _, err := f.NewSheet(SummarySheet); err != nil {
		return err
	}

	rows := [][]interface{}{
		{"integrator", meta.Integrator},
		{"dt", meta.Dt},
		{"duration", meta.Duration},
		{"kp", result.Gains.Kp},
		{"ki", result.Gains.Ki},
		{"kd", result.Gains.Kd},
		{"target_speed", result.Target},
		{"non_finite", result.NonFinite},
	}
	names := make([]string, 0, len(result.Metrics))
	for name := range result.Metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		rows = append(rows, []interface{}{name, result.Metrics[name]})
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(SummarySheet, cell, &row); err != nil {
			return err
		}
	}

	return f.SaveAs(path)
}
