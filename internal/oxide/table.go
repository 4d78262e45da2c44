package oxide

import (
	"encoding/csv"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Property holds the reference chemistry for one oxide compound.
// Values are fixed at load time and never mutated.
type Property struct {
	Symbol    string  `yaml:"symbol"`
	MolarMass float64 `yaml:"molar_mass"` // g/mol
	Cations   int     `yaml:"cations"`    // cations per formula unit of the oxide
	Oxygens   int     `yaml:"oxygens"`    // oxygens per formula unit of the oxide
	Cation    string  `yaml:"cation"`     // cation label used for output headers, e.g. SiO2 -> Si
}

// ChargePerCation returns the formal charge carried by each cation,
// assuming all oxygen is O2-.
func (p Property) ChargePerCation() float64 {
	return 2 * float64(p.Oxygens) / float64(p.Cations)
}

// Table maps oxide symbols to their properties.
type Table struct {
	props map[string]Property
}

// UnknownOxideError reports a symbol absent from the reference table.
type UnknownOxideError struct {
	Symbol string
}

func (e *UnknownOxideError) Error() string {
	return fmt.Sprintf("unknown oxide %q: not in reference table", e.Symbol)
}

// Default returns the builtin reference table covering the oxides commonly
// reported by electron microprobe. External tables extend or replace it.
func Default() *Table {
	return tableOf(
		Property{"SiO2", 60.084, 1, 2, "Si"},
		Property{"TiO2", 79.866, 1, 2, "Ti"},
		Property{"Al2O3", 101.961, 2, 3, "Al"},
		Property{"Cr2O3", 151.990, 2, 3, "Cr"},
		Property{"Fe2O3", 159.688, 2, 3, "Fe3"},
		Property{"FeO", 71.844, 1, 1, "Fe2"},
		Property{"MnO", 70.937, 1, 1, "Mn"},
		Property{"MgO", 40.304, 1, 1, "Mg"},
		Property{"NiO", 74.692, 1, 1, "Ni"},
		Property{"CaO", 56.077, 1, 1, "Ca"},
		Property{"Na2O", 61.979, 2, 1, "Na"},
		Property{"K2O", 94.196, 2, 1, "K"},
		Property{"P2O5", 141.943, 2, 5, "P"},
		Property{"H2O", 18.015, 2, 1, "H"},
	)
}

func tableOf(props ...Property) *Table {
	t := &Table{props: make(map[string]Property, len(props))}
	for _, p := range props {
		t.props[p.Symbol] = p
	}
	return t
}

// New builds a table from explicit properties, validating each entry.
func New(props ...Property) (*Table, error) {
	t := &Table{props: make(map[string]Property, len(props))}
	for _, p := range props {
		if err := validate(p); err != nil {
			return nil, err
		}
		t.props[p.Symbol] = p
	}
	return t, nil
}

func validate(p Property) error {
	if p.Symbol == "" {
		return fmt.Errorf("oxide entry missing symbol")
	}
	if p.MolarMass <= 0 {
		return fmt.Errorf("oxide %s: molar mass must be positive, got %g", p.Symbol, p.MolarMass)
	}
	if p.Cations <= 0 || p.Oxygens <= 0 {
		return fmt.Errorf("oxide %s: cation and oxygen counts must be positive", p.Symbol)
	}
	return nil
}

// Lookup resolves one oxide symbol.
func (t *Table) Lookup(symbol string) (Property, error) {
	p, ok := t.props[symbol]
	if !ok {
		return Property{}, &UnknownOxideError{Symbol: symbol}
	}
	return p, nil
}

// Symbols returns all known oxide symbols in sorted order.
func (t *Table) Symbols() []string {
	out := make([]string, 0, len(t.props))
	for s := range t.props {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// LoadFile reads a reference table from a CSV or YAML file, merging the
// entries over the builtin defaults. File entries win on conflict.
func LoadFile(path string) (*Table, error) {
	var (
		props []Property
		err   error
	)
	lower := strings.ToLower(path)
	switch {
	case strings.HasSuffix(lower, ".yaml") || strings.HasSuffix(lower, ".yml"):
		props, err = readYAML(path)
	default:
		props, err = readCSV(path)
	}
	if err != nil {
		return nil, err
	}
	t := Default()
	for _, p := range props {
		if err := validate(p); err != nil {
			return nil, fmt.Errorf("oxide table %s: %w", path, err)
		}
		t.props[p.Symbol] = p
	}
	return t, nil
}

func readYAML(path string) ([]Property, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read oxide table: %w", err)
	}
	var props []Property
	if err := yaml.Unmarshal(b, &props); err != nil {
		return nil, fmt.Errorf("parse oxide table: %w", err)
	}
	return props, nil
}

func readCSV(path string) ([]Property, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open oxide table: %w", err)
	}
	defer f.Close()
	r := csv.NewReader(f)
	r.TrimLeadingSpace = true
	recs, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read oxide table: %w", err)
	}
	if len(recs) == 0 {
		return nil, nil
	}
	// Header row: symbol,molar_mass,cations,oxygens,cation
	col := map[string]int{}
	for i, h := range recs[0] {
		col[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, want := range []string{"symbol", "molar_mass", "cations", "oxygens"} {
		if _, ok := col[want]; !ok {
			return nil, fmt.Errorf("oxide table %s: missing column %q", path, want)
		}
	}
	props := make([]Property, 0, len(recs)-1)
	for n, rec := range recs[1:] {
		get := func(name string) string {
			i, ok := col[name]
			if !ok || i >= len(rec) {
				return ""
			}
			return strings.TrimSpace(rec[i])
		}
		mm, err := strconv.ParseFloat(get("molar_mass"), 64)
		if err != nil {
			return nil, fmt.Errorf("oxide table %s row %d: bad molar_mass: %w", path, n+2, err)
		}
		cat, err := strconv.Atoi(get("cations"))
		if err != nil {
			return nil, fmt.Errorf("oxide table %s row %d: bad cations: %w", path, n+2, err)
		}
		oxy, err := strconv.Atoi(get("oxygens"))
		if err != nil {
			return nil, fmt.Errorf("oxide table %s row %d: bad oxygens: %w", path, n+2, err)
		}
		sym := get("symbol")
		label := get("cation")
		if label == "" {
			label = cationFromSymbol(sym)
		}
		props = append(props, Property{Symbol: sym, MolarMass: mm, Cations: cat, Oxygens: oxy, Cation: label})
	}
	return props, nil
}

// cationFromSymbol strips the trailing oxygen term of an oxide formula,
// e.g. "Al2O3" -> "Al". Falls back to the full symbol when the formula does
// not match the ElnOm shape.
func cationFromSymbol(symbol string) string {
	base := strings.TrimRight(symbol, "0123456789")
	if !strings.HasSuffix(base, "O") || len(base) == 1 {
		return symbol
	}
	base = strings.TrimSuffix(base, "O")
	base = strings.TrimRight(base, "0123456789")
	if base == "" {
		return symbol
	}
	return base
}
