package probe

import (
	"errors"
	"math"
	"testing"

	"github.com/petrobytes/probecalc-cli/internal/oxide"
)

// olivineTable carries the reference values used throughout these tests.
func olivineTable(t *testing.T) *oxide.Table {
	t.Helper()
	tbl, err := oxide.New(
		oxide.Property{Symbol: "SiO2", MolarMass: 60.08, Cations: 1, Oxygens: 2, Cation: "Si"},
		oxide.Property{Symbol: "FeO", MolarMass: 71.85, Cations: 1, Oxygens: 1, Cation: "Fe2"},
		oxide.Property{Symbol: "MgO", MolarMass: 40.30, Cations: 1, Oxygens: 1, Cation: "Mg"},
	)
	if err != nil {
		t.Fatalf("build table: %v", err)
	}
	return tbl
}

func olivineDataset(t *testing.T, records [][]string) *Dataset {
	t.Helper()
	f := &Frame{
		Name:    "test.csv",
		Header:  []string{"sample", "SiO2", "FeO", "MgO"},
		Records: records,
	}
	ds, err := NewDataset(f, []string{"SiO2", "FeO", "MgO"}, olivineTable(t), Options{LabelColumn: "sample"})
	if err != nil {
		t.Fatalf("build dataset: %v", err)
	}
	return ds
}

func approx(t *testing.T, got, want, tol float64, what string) {
	t.Helper()
	if math.IsNaN(got) || math.Abs(got-want) > tol {
		t.Fatalf("%s = %.6f, want %.6f ± %g", what, got, want, tol)
	}
}

func TestRecalculateOlivine(t *testing.T) {
	ds := olivineDataset(t, [][]string{{"ol-1", "40.0", "10.0", "48.0"}})
	rows, err := Recalculate(ds, 4.0)
	if err != nil {
		t.Fatalf("recalculate: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(rows))
	}
	r := rows[0]
	if !r.Valid() {
		t.Fatalf("row error: %v", r.Err)
	}
	// mol = {0.66578, 0.13918, 1.19107}; oxygen sum = 2.66180;
	// ORF = 4/2.66180 = 1.50274
	approx(t, r.Cations[0], 1.00049, 1e-4, "Si cpfu")
	approx(t, r.Cations[1], 0.20915, 1e-4, "Fe cpfu")
	approx(t, r.Cations[2], 1.78986, 1e-4, "Mg cpfu")
	approx(t, r.TotalCations, 2.99950, 1e-4, "total cations")
	// Oxygen-normalized rows always balance to 2*afu charge.
	approx(t, r.TotalCharge, 8.0, 1e-9, "total charge")
	if r.Label != "ol-1" {
		t.Fatalf("label = %q, want ol-1", r.Label)
	}
}

func TestRecalculateReconstructsAFU(t *testing.T) {
	ds := olivineDataset(t, [][]string{
		{"a", "40.0", "10.0", "48.0"},
		{"b", "39.2", "14.5", "44.8"},
		{"c", "41.1", "7.3", "50.2"},
	})
	const afu = 4.0
	rows, err := Recalculate(ds, afu)
	if err != nil {
		t.Fatalf("recalculate: %v", err)
	}
	for i, r := range rows {
		var oxSum float64
		for j, p := range ds.Props {
			oxSum += r.Cations[j] * float64(p.Oxygens) / float64(p.Cations)
		}
		if math.Abs(oxSum-afu) > 1e-9 {
			t.Errorf("row %d: oxygen sum %.12f, want %.1f", i, oxSum, afu)
		}
	}
}

func TestRecalculateIdempotent(t *testing.T) {
	ds := olivineDataset(t, [][]string{{"a", "40.0", "10.0", "48.0"}})
	first, err := Recalculate(ds, 4.0)
	if err != nil {
		t.Fatalf("first: %v", err)
	}
	second, err := Recalculate(ds, 4.0)
	if err != nil {
		t.Fatalf("second: %v", err)
	}
	for i := range first {
		if first[i].TotalCations != second[i].TotalCations {
			t.Fatalf("row %d totals differ: %v vs %v", i, first[i].TotalCations, second[i].TotalCations)
		}
		for j := range first[i].Cations {
			if first[i].Cations[j] != second[i].Cations[j] {
				t.Fatalf("row %d cation %d differs", i, j)
			}
		}
	}
}

func TestRecalculateDegenerateRow(t *testing.T) {
	ds := olivineDataset(t, [][]string{
		{"ok", "40.0", "10.0", "48.0"},
		{"zeros", "0", "0", "0"},
		{"missing", "", "<", "-"},
	})
	rows, err := Recalculate(ds, 4.0)
	if err != nil {
		t.Fatalf("recalculate: %v", err)
	}
	if !rows[0].Valid() {
		t.Fatalf("valid row flagged: %v", rows[0].Err)
	}
	for _, i := range []int{1, 2} {
		var de *DegenerateRowError
		if !errors.As(rows[i].Err, &de) {
			t.Fatalf("row %d: expected *DegenerateRowError, got %v", i, rows[i].Err)
		}
		if !math.IsNaN(rows[i].TotalCations) {
			t.Fatalf("row %d: degenerate total must be NaN, got %v", i, rows[i].TotalCations)
		}
	}
}

func TestRecalculateMissingValuesSkipped(t *testing.T) {
	// Missing FeO must contribute nothing, not poison the row.
	ds := olivineDataset(t, [][]string{{"a", "40.0", "", "48.0"}})
	rows, err := Recalculate(ds, 4.0)
	if err != nil {
		t.Fatalf("recalculate: %v", err)
	}
	r := rows[0]
	if !r.Valid() {
		t.Fatalf("row error: %v", r.Err)
	}
	if !math.IsNaN(r.Cations[1]) {
		t.Fatalf("missing oxide cpfu = %v, want NaN", r.Cations[1])
	}
	if math.IsNaN(r.TotalCations) {
		t.Fatal("total must skip missing values, got NaN")
	}
}

func TestRecalculateInvalidAFU(t *testing.T) {
	ds := olivineDataset(t, [][]string{{"a", "40.0", "10.0", "48.0"}})
	for _, afu := range []float64{0, -4} {
		_, err := Recalculate(ds, afu)
		var ise *InvalidStoichiometryError
		if !errors.As(err, &ise) {
			t.Fatalf("afu=%g: expected *InvalidStoichiometryError, got %v", afu, err)
		}
	}
}

func TestFractions(t *testing.T) {
	ds := olivineDataset(t, [][]string{{"a", "40.0", "10.0", "48.0"}})
	for name, frac := range map[string][][]float64{
		"molar":  MolarFractions(ds),
		"cation": CationFractions(ds),
	} {
		sum := 0.0
		for _, v := range frac[0] {
			sum += v
		}
		approx(t, sum, 1.0, 1e-12, name+" fraction sum")
	}
}

func TestFractionsDegenerateRowIsNaN(t *testing.T) {
	ds := olivineDataset(t, [][]string{{"z", "0", "0", "0"}})
	for _, v := range MolarFractions(ds)[0] {
		if !math.IsNaN(v) {
			t.Fatalf("zero row fraction = %v, want NaN", v)
		}
	}
}
