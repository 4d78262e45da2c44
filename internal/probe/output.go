package probe

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"
)

// WriteCationCSV writes recalculated rows as CSV: a sample column, one
// column per cation label, the cation total, and (when a mask is supplied)
// an accepted column from the anomaly filter. Row order matches the input
// dataset. NaN cells are left empty.
func WriteCationCSV(w io.Writer, ds *Dataset, rows []CationRow, mask []bool) error {
	cw := csv.NewWriter(w)

	header := append([]string{"sample"}, ds.CationLabels()...)
	header = append(header, "cat_tot")
	if mask != nil {
		header = append(header, "accepted")
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	rec := make([]string, 0, len(header))
	for i, r := range rows {
		rec = rec[:0]
		rec = append(rec, r.Label)
		for _, v := range r.Cations {
			rec = append(rec, formatCell(v))
		}
		rec = append(rec, formatCell(r.TotalCations))
		if mask != nil {
			accepted := i < len(mask) && mask[i]
			rec = append(rec, strconv.FormatBool(accepted))
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatCell(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', 6, 64)
}
