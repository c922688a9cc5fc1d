package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/san-kum/dcmotor/internal/sim"
)

// CSV writes the series as a header row followed by one row per sample.
// Floats use the shortest representation that round-trips.
func CSV(w io.Writer, s sim.Series) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(sim.Columns); err != nil {
		return err
	}

	record := make([]string, len(sim.Columns))
	for i := 0; i < s.Len(); i++ {
		for j, v := range s.Row(i) {
			record[j] = strconv.FormatFloat(v, 'g', -1, 64)
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("row %d: %w", i, err)
		}
	}

	writer.Flush()
	return writer.Error()
}
