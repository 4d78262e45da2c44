package oxide

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultLookup(t *testing.T) {
	tbl := Default()
	p, err := tbl.Lookup("SiO2")
	if err != nil {
		t.Fatalf("lookup SiO2: %v", err)
	}
	if p.Cations != 1 || p.Oxygens != 2 || p.Cation != "Si" {
		t.Fatalf("unexpected SiO2 properties: %+v", p)
	}
	if got := p.ChargePerCation(); got != 4 {
		t.Fatalf("SiO2 charge per cation = %g, want 4", got)
	}
	al, err := tbl.Lookup("Al2O3")
	if err != nil {
		t.Fatalf("lookup Al2O3: %v", err)
	}
	if got := al.ChargePerCation(); got != 3 {
		t.Fatalf("Al2O3 charge per cation = %g, want 3", got)
	}
}

func TestLookupUnknownOxide(t *testing.T) {
	_, err := Default().Lookup("XyO2")
	if err == nil {
		t.Fatal("expected error for unknown oxide")
	}
	var ue *UnknownOxideError
	if !errors.As(err, &ue) {
		t.Fatalf("expected *UnknownOxideError, got %T: %v", err, err)
	}
	if ue.Symbol != "XyO2" {
		t.Fatalf("error carries symbol %q, want XyO2", ue.Symbol)
	}
}

func TestNewValidation(t *testing.T) {
	cases := []Property{
		{Symbol: "", MolarMass: 10, Cations: 1, Oxygens: 1},
		{Symbol: "BadO", MolarMass: 0, Cations: 1, Oxygens: 1},
		{Symbol: "BadO", MolarMass: 10, Cations: 0, Oxygens: 1},
		{Symbol: "BadO", MolarMass: 10, Cations: 1, Oxygens: 0},
	}
	for _, p := range cases {
		if _, err := New(p); err == nil {
			t.Errorf("New(%+v): expected validation error", p)
		}
	}
}

func TestLoadFileCSV(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "oxides.csv")
	content := "symbol,molar_mass,cations,oxygens,cation\n" +
		"ZrO2,123.218,1,2,Zr\n" +
		"SiO2,60.08,1,2,\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	tbl, err := LoadFile(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	zr, err := tbl.Lookup("ZrO2")
	if err != nil {
		t.Fatalf("lookup ZrO2: %v", err)
	}
	if zr.MolarMass != 123.218 || zr.Cation != "Zr" {
		t.Fatalf("unexpected ZrO2: %+v", zr)
	}
	// File entry overrides the builtin, label derived from the formula
	si, err := tbl.Lookup("SiO2")
	if err != nil {
		t.Fatalf("lookup SiO2: %v", err)
	}
	if si.MolarMass != 60.08 || si.Cation != "Si" {
		t.Fatalf("unexpected SiO2 override: %+v", si)
	}
	// Builtin entries survive the merge
	if _, err := tbl.Lookup("MgO"); err != nil {
		t.Fatalf("builtin MgO lost in merge: %v", err)
	}
}

func TestLoadFileCSVMissingColumn(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "oxides.csv")
	if err := os.WriteFile(path, []byte("symbol,molar_mass\nSiO2,60.08\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := LoadFile(path); err == nil {
		t.Fatal("expected error for missing columns")
	}
}

func TestLoadFileYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "oxides.yaml")
	content := "- symbol: SO3\n  molar_mass: 80.057\n  cations: 1\n  oxygens: 3\n  cation: S\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	tbl, err := LoadFile(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	s, err := tbl.Lookup("SO3")
	if err != nil {
		t.Fatalf("lookup SO3: %v", err)
	}
	if s.Oxygens != 3 || s.Cation != "S" {
		t.Fatalf("unexpected SO3: %+v", s)
	}
}

func TestCationFromSymbol(t *testing.T) {
	cases := map[string]string{
		"SiO2":  "Si",
		"Al2O3": "Al",
		"Na2O":  "Na",
		"FeO":   "Fe",
		"OsO4":  "Os", // leading O is part of the element
	}
	for sym, want := range cases {
		if got := cationFromSymbol(sym); got != want {
			t.Errorf("cationFromSymbol(%q) = %q, want %q", sym, got, want)
		}
	}
}
