package probe

import (
	"fmt"
	"math"
)

// DegenerateRowError marks an analysis whose oxide columns contribute no
// oxygen at all: the normalization factor is undefined for it.
type DegenerateRowError struct {
	Row int // 0-based row index in the dataset
}

func (e *DegenerateRowError) Error() string {
	return fmt.Sprintf("row %d: zero total oxygen contribution, cannot normalize", e.Row+1)
}

// InvalidStoichiometryError reports an ideal target that cannot drive a
// normalization or filter step.
type InvalidStoichiometryError struct {
	Param string
	Value float64
	Want  string
}

func (e *InvalidStoichiometryError) Error() string {
	return fmt.Sprintf("invalid stoichiometry: %s = %g, want %s", e.Param, e.Value, e.Want)
}

// CationRow is the recalculated form of one analysis: cations per formula
// unit aligned to the dataset oxide order, plus aggregate totals. Rows that
// could not be normalized carry their error and NaN values.
type CationRow struct {
	Label        string
	Cations      []float64 // cpfu, aligned to Dataset.Oxides
	TotalCations float64
	TotalCharge  float64
	Err          error
}

// Valid reports whether the row was recalculated successfully.
func (r CationRow) Valid() bool { return r.Err == nil }

// Recalculate converts every analysis row to cations per formula unit,
// normalized to afu anions. The computation is pure and per-row independent;
// output order matches input order. Degenerate rows do not abort the batch:
// they come back with Err set and NaN values so the caller can see which
// analyses failed.
func Recalculate(ds *Dataset, afu float64) ([]CationRow, error) {
	if afu <= 0 {
		return nil, &InvalidStoichiometryError{Param: "afu", Value: afu, Want: "positive anions per formula unit"}
	}
	out := make([]CationRow, len(ds.Rows))
	for r, wt := range ds.Rows {
		out[r] = recalcRow(ds, wt, r, afu)
	}
	return out, nil
}

func recalcRow(ds *Dataset, wt []float64, row int, afu float64) CationRow {
	res := CationRow{Label: ds.Label(row), Cations: make([]float64, len(ds.Oxides))}

	// Molar proportions and their oxygen contribution. Missing values
	// contribute nothing, matching spreadsheet skip-NA behaviour.
	mol := make([]float64, len(ds.Oxides))
	oxSum := 0.0
	for i, p := range ds.Props {
		w := wt[i]
		if math.IsNaN(w) {
			mol[i] = math.NaN()
			continue
		}
		mol[i] = w / p.MolarMass
		oxSum += mol[i] * float64(p.Oxygens)
	}
	if oxSum == 0 {
		res.Err = &DegenerateRowError{Row: row}
		for i := range res.Cations {
			res.Cations[i] = math.NaN()
		}
		res.TotalCations = math.NaN()
		res.TotalCharge = math.NaN()
		return res
	}

	// Oxygen renormalization factor ties the row to the ideal structure.
	orf := afu / oxSum
	for i, p := range ds.Props {
		if math.IsNaN(mol[i]) {
			res.Cations[i] = math.NaN()
			continue
		}
		cpfu := mol[i] * float64(p.Cations) * orf
		res.Cations[i] = cpfu
		res.TotalCations += cpfu
		res.TotalCharge += cpfu * p.ChargePerCation()
	}
	return res
}

// MolarFractions returns per-row molar fractions over the dataset oxides.
// Rows with a zero molar sum come back as all-NaN.
func MolarFractions(ds *Dataset) [][]float64 {
	return fractions(ds, func(p int) float64 { return 1 })
}

// CationFractions returns per-row cation fractions over the dataset oxides.
// Rows with a zero cation sum come back as all-NaN.
func CationFractions(ds *Dataset) [][]float64 {
	return fractions(ds, func(p int) float64 { return float64(ds.Props[p].Cations) })
}

func fractions(ds *Dataset, weight func(prop int) float64) [][]float64 {
	out := make([][]float64, len(ds.Rows))
	for r, wt := range ds.Rows {
		row := make([]float64, len(ds.Oxides))
		sum := 0.0
		for i, p := range ds.Props {
			if math.IsNaN(wt[i]) {
				row[i] = math.NaN()
				continue
			}
			row[i] = wt[i] / p.MolarMass * weight(i)
			sum += row[i]
		}
		if sum == 0 {
			for i := range row {
				row[i] = math.NaN()
			}
		} else {
			for i := range row {
				row[i] /= sum
			}
		}
		out[r] = row
	}
	return out
}
