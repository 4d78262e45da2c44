package probe

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/petrobytes/probecalc-cli/internal/oxide"
)

// Dataset joins a raw weight-percent table with the oxide reference
// properties for the oxides chosen for analysis. It is a read-only view:
// nothing downstream mutates it.
type Dataset struct {
	Oxides []string         // column order for all positional arithmetic
	Props  []oxide.Property // aligned to Oxides
	Rows   [][]float64      // wt% values aligned to Oxides; NaN = missing
	Labels []string         // optional per-row sample labels, may be nil
}

// Options controls how a Frame is turned into a Dataset.
type Options struct {
	// LabelColumn names a non-oxide column carried through as the row label.
	LabelColumn string
	// NAValues are cell contents treated as missing, besides the empty cell.
	NAValues []string
}

// DefaultNAValues are the sentinels microprobe exports commonly use for
// below-detection and not-measured cells.
var DefaultNAValues = []string{"<", "-"}

// NewDataset builds a Dataset from a parsed Frame and the oxide symbols to
// use. Every symbol must resolve in the reference table and must exist as a
// column of the frame; either failure aborts construction before any row is
// parsed.
func NewDataset(f *Frame, oxides []string, table *oxide.Table, opt Options) (*Dataset, error) {
	if len(oxides) == 0 {
		return nil, fmt.Errorf("no oxide columns selected")
	}
	props := make([]oxide.Property, len(oxides))
	cols := make([]int, len(oxides))
	for i, sym := range oxides {
		p, err := table.Lookup(sym)
		if err != nil {
			return nil, err
		}
		props[i] = p
		idx := f.Column(sym)
		if idx < 0 {
			return nil, fmt.Errorf("input %s has no column %q", f.Name, sym)
		}
		cols[i] = idx
	}

	na := opt.NAValues
	if na == nil {
		na = DefaultNAValues
	}
	labelCol := -1
	if opt.LabelColumn != "" {
		labelCol = f.Column(opt.LabelColumn)
		if labelCol < 0 {
			return nil, fmt.Errorf("input %s has no label column %q", f.Name, opt.LabelColumn)
		}
	}

	ds := &Dataset{Oxides: oxides, Props: props}
	ds.Rows = make([][]float64, len(f.Records))
	if labelCol >= 0 {
		ds.Labels = make([]string, len(f.Records))
	}
	for r, rec := range f.Records {
		row := make([]float64, len(oxides))
		for i, c := range cols {
			var cell string
			if c < len(rec) {
				cell = strings.TrimSpace(rec[c])
			}
			v, err := parseWtPct(cell, na)
			if err != nil {
				return nil, fmt.Errorf("%s row %d, column %s: %w", f.Name, r+1, oxides[i], err)
			}
			row[i] = v
		}
		ds.Rows[r] = row
		if labelCol >= 0 && labelCol < len(rec) {
			ds.Labels[r] = strings.TrimSpace(rec[labelCol])
		}
	}
	return ds, nil
}

// parseWtPct parses one weight-percent cell. Empty cells and NA sentinels
// become NaN. A lone comma decimal separator is accepted for exports from
// comma-locale instruments.
func parseWtPct(s string, na []string) (float64, error) {
	if s == "" {
		return math.NaN(), nil
	}
	for _, sentinel := range na {
		if s == sentinel {
			return math.NaN(), nil
		}
	}
	if strings.Contains(s, ",") && !strings.Contains(s, ".") {
		s = strings.ReplaceAll(s, ",", ".")
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("cannot parse %q as weight percent", s)
	}
	return v, nil
}

// HasOxide reports whether the dataset carries the given oxide column.
func (ds *Dataset) HasOxide(symbol string) bool {
	return ds.indexOf(symbol) >= 0
}

func (ds *Dataset) indexOf(symbol string) int {
	for i, s := range ds.Oxides {
		if s == symbol {
			return i
		}
	}
	return -1
}

// CationLabels returns the output header labels for the dataset oxides,
// e.g. SiO2 -> Si, FeO -> Fe2.
func (ds *Dataset) CationLabels() []string {
	out := make([]string, len(ds.Props))
	for i, p := range ds.Props {
		out[i] = p.Cation
	}
	return out
}

// Label returns the sample label for a row, falling back to its 1-based
// position when no label column was configured.
func (ds *Dataset) Label(row int) string {
	if ds.Labels != nil && row < len(ds.Labels) && ds.Labels[row] != "" {
		return ds.Labels[row]
	}
	return strconv.Itoa(row + 1)
}
