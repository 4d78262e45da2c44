package ferric

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

// WriteCSV writes partition results, one row per input analysis in input
// order. Failed rows keep their label with empty value cells and the error
// text in the last column.
func WriteCSV(w io.Writer, results []Result) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"sample", "Fe2_cpfu", "Fe3_cpfu", "FeO_wt_pct", "Fe2O3_wt_pct", "method", "error"}); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, r := range results {
		rec := []string{r.Label, "", "", "", "", r.Method.String(), ""}
		if r.Valid() {
			rec[1] = strconv.FormatFloat(r.Fe2, 'f', 6, 64)
			rec[2] = strconv.FormatFloat(r.Fe3, 'f', 6, 64)
			rec[3] = strconv.FormatFloat(r.FeOWtPct, 'f', 4, 64)
			rec[4] = strconv.FormatFloat(r.Fe2O3WtPct, 'f', 4, 64)
		} else {
			rec[6] = r.Err.Error()
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
