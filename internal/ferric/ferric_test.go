package ferric

import (
	"errors"
	"math"
	"testing"

	"github.com/petrobytes/probecalc-cli/internal/oxide"
	"github.com/petrobytes/probecalc-cli/internal/probe"
)

func buildDataset(t *testing.T, header []string, records [][]string) *probe.Dataset {
	t.Helper()
	f := &probe.Frame{Name: "test.csv", Header: header, Records: records}
	ds, err := probe.NewDataset(f, header, oxide.Default(), probe.Options{})
	if err != nil {
		t.Fatalf("build dataset: %v", err)
	}
	return ds
}

func checkRoundTrip(t *testing.T, r Result, feoTotal float64) {
	t.Helper()
	if !r.Valid() {
		t.Fatalf("row error: %v", r.Err)
	}
	got := r.FeOWtPct + r.Fe2O3WtPct/FeOToFe2O3
	if math.Abs(got-feoTotal) > 1e-9 {
		t.Fatalf("round trip: FeO %.6f + Fe2O3 %.6f/%.4f = %.9f, want %.6f",
			r.FeOWtPct, r.Fe2O3WtPct, FeOToFe2O3, got, feoTotal)
	}
	if r.FeOWtPct < 0 || r.Fe2O3WtPct < 0 {
		t.Fatalf("negative oxide fraction: FeO %.6f, Fe2O3 %.6f", r.FeOWtPct, r.Fe2O3WtPct)
	}
}

func TestDroopStoichiometricOlivineHasNoFerric(t *testing.T) {
	ds := buildDataset(t,
		[]string{"SiO2", "FeO", "MgO"},
		[][]string{{"40.0", "10.0", "48.0"}},
	)
	results, err := Partition(ds, Droop, Options{CFU: 3, AFU: 4})
	if err != nil {
		t.Fatalf("partition: %v", err)
	}
	r := results[0]
	if r.Fe3 != 0 {
		t.Fatalf("stoichiometric row Fe3 = %g, want 0", r.Fe3)
	}
	checkRoundTrip(t, r, 10.0)
	if math.Abs(r.FeOWtPct-10.0) > 1e-9 || r.Fe2O3WtPct != 0 {
		t.Fatalf("all-ferrous split = (%g, %g), want (10, 0)", r.FeOWtPct, r.Fe2O3WtPct)
	}
}

func TestDroopCationExcessYieldsFerric(t *testing.T) {
	// Cation-rich relative to 3 cations / 4 oxygens: part of the iron
	// must be ferric to balance.
	ds := buildDataset(t,
		[]string{"SiO2", "FeO", "MgO"},
		[][]string{{"35.0", "20.0", "45.0"}},
	)
	results, err := Partition(ds, Droop, Options{CFU: 3, AFU: 4})
	if err != nil {
		t.Fatalf("partition: %v", err)
	}
	r := results[0]
	if !r.Valid() {
		t.Fatalf("row error: %v", r.Err)
	}
	if r.Fe3 <= 0 {
		t.Fatalf("Fe3 = %g, want > 0", r.Fe3)
	}
	if r.Fe2 < 0 {
		t.Fatalf("Fe2 = %g, want >= 0", r.Fe2)
	}
	checkRoundTrip(t, r, 20.0)
}

func TestPapikeClinopyroxene(t *testing.T) {
	ds := buildDataset(t,
		[]string{"SiO2", "TiO2", "Al2O3", "Cr2O3", "FeO", "MgO", "CaO", "Na2O"},
		[][]string{{"50.0", "0.6", "4.0", "0.1", "8.0", "15.0", "20.0", "0.4"}},
	)
	results, err := Partition(ds, Papike, Options{AFU: 6, TetSites: 2})
	if err != nil {
		t.Fatalf("partition: %v", err)
	}
	r := results[0]
	if !r.Valid() {
		t.Fatalf("row error: %v", r.Err)
	}
	// Si deficit on the tetrahedral site pushes Al into AlIV and leaves
	// a ferric balance here.
	if r.Fe3 <= 0 {
		t.Fatalf("Fe3 = %g, want > 0", r.Fe3)
	}
	checkRoundTrip(t, r, 8.0)
}

func TestPapikeRequiresSiAndAl(t *testing.T) {
	ds := buildDataset(t,
		[]string{"SiO2", "FeO", "MgO"},
		[][]string{{"40.0", "10.0", "48.0"}},
	)
	if _, err := Partition(ds, Papike, Options{AFU: 6, TetSites: 2}); err == nil {
		t.Fatal("expected error without Al2O3 column")
	}
}

func TestStormerMagnetite(t *testing.T) {
	// Pure magnetite reported as total FeO: Fe3O4 has Fe2:Fe3 = 1:2.
	ds := buildDataset(t,
		[]string{"FeO"},
		[][]string{{"100.0"}},
	)
	results, err := Partition(ds, Stormer, Options{CFU: 3, IdealCharge: 8})
	if err != nil {
		t.Fatalf("partition: %v", err)
	}
	r := results[0]
	if !r.Valid() {
		t.Fatalf("row error: %v", r.Err)
	}
	if math.Abs(r.Fe2-1) > 1e-9 || math.Abs(r.Fe3-2) > 1e-9 {
		t.Fatalf("Fe2 = %g, Fe3 = %g, want 1 and 2", r.Fe2, r.Fe3)
	}
	checkRoundTrip(t, r, 100.0)
}

func TestPartitionRequiresFeOColumn(t *testing.T) {
	ds := buildDataset(t,
		[]string{"SiO2", "MgO"},
		[][]string{{"40.0", "48.0"}},
	)
	if _, err := Partition(ds, Droop, Options{CFU: 3, AFU: 4}); err == nil {
		t.Fatal("expected error without FeO column")
	}
}

func TestPartitionRejectsExistingFe2O3(t *testing.T) {
	ds := buildDataset(t,
		[]string{"SiO2", "FeO", "Fe2O3", "MgO"},
		[][]string{{"40.0", "8.0", "2.0", "48.0"}},
	)
	if _, err := Partition(ds, Droop, Options{CFU: 3, AFU: 4}); err == nil {
		t.Fatal("expected error when Fe2O3 already present")
	}
}

func TestPartitionInvalidTargets(t *testing.T) {
	ds := buildDataset(t,
		[]string{"SiO2", "FeO", "MgO"},
		[][]string{{"40.0", "10.0", "48.0"}},
	)
	cases := []struct {
		method Method
		opt    Options
	}{
		{Droop, Options{CFU: 0, AFU: 4}},
		{Droop, Options{CFU: 3, AFU: -6}},
		{Papike, Options{AFU: 0, TetSites: 2}},
		{Papike, Options{AFU: 6, TetSites: 0}},
		{Stormer, Options{CFU: 0, IdealCharge: 8}},
		{Stormer, Options{CFU: 3, IdealCharge: 0}},
	}
	for _, tc := range cases {
		_, err := Partition(ds, tc.method, tc.opt)
		var ise *probe.InvalidStoichiometryError
		if !errors.As(err, &ise) {
			t.Errorf("%v %+v: expected *InvalidStoichiometryError, got %v", tc.method, tc.opt, err)
		}
	}
}

func TestPartitionIsolatesDegenerateRows(t *testing.T) {
	ds := buildDataset(t,
		[]string{"SiO2", "FeO", "MgO"},
		[][]string{
			{"40.0", "10.0", "48.0"},
			{"0", "0", "0"},
		},
	)
	results, err := Partition(ds, Droop, Options{CFU: 3, AFU: 4})
	if err != nil {
		t.Fatalf("partition: %v", err)
	}
	if !results[0].Valid() {
		t.Fatalf("valid row flagged: %v", results[0].Err)
	}
	var de *probe.DegenerateRowError
	if !errors.As(results[1].Err, &de) {
		t.Fatalf("expected *DegenerateRowError, got %v", results[1].Err)
	}
}

func TestParseMethod(t *testing.T) {
	for s, want := range map[string]Method{
		"droop":   Droop,
		"Papike":  Papike,
		"STORMER": Stormer,
	} {
		got, err := ParseMethod(s)
		if err != nil || got != want {
			t.Errorf("ParseMethod(%q) = %v, %v", s, got, err)
		}
	}
	if _, err := ParseMethod("lindsley"); err == nil {
		t.Error("expected error for unsupported method")
	}
}
