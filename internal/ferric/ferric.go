// Package ferric splits total iron reported as FeO into ferrous and ferric
// fractions using stoichiometric estimators. Each method is a pure function
// over recalculated cation rows; selection is always explicit.
package ferric

import (
	"fmt"
	"math"
	"strings"

	"github.com/petrobytes/probecalc-cli/internal/oxide"
	"github.com/petrobytes/probecalc-cli/internal/probe"
)

// FeOToFe2O3 converts an FeO weight fraction to its Fe2O3 equivalent:
// M(Fe2O3) / (2 * M(FeO)).
const FeOToFe2O3 = 1.1113

// Method selects the ferric estimation procedure.
type Method int

const (
	// Droop estimates Fe3+ from the charge deficit between the
	// cation-normalized and oxygen-normalized formula (Droop, 1987).
	Droop Method = iota + 1
	// Papike assigns Fe3+ from the pyroxene site balance
	// Na + AlIV - AlVI - Ti - Cr (Papike et al.).
	Papike
	// Stormer estimates spinel Fe3+ from the total charge deficit
	// (Stormer, 1983).
	Stormer
)

func (m Method) String() string {
	switch m {
	case Droop:
		return "droop"
	case Papike:
		return "papike"
	case Stormer:
		return "stormer"
	}
	return fmt.Sprintf("method(%d)", int(m))
}

// ParseMethod resolves a method name from CLI or config input.
func ParseMethod(s string) (Method, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "droop":
		return Droop, nil
	case "papike":
		return Papike, nil
	case "stormer":
		return Stormer, nil
	}
	return 0, fmt.Errorf("unknown ferric method %q (use droop|papike|stormer)", s)
}

// Options carries the ideal stoichiometry targets for the estimators.
// Droop needs CFU and AFU; Papike needs AFU and TetSites; Stormer needs CFU
// and IdealCharge.
type Options struct {
	CFU         float64 // ideal cations per formula unit (4 for cpx, 3 for spinel)
	AFU         float64 // ideal anions per formula unit (e.g. 6 for cpx)
	TetSites    float64 // tetrahedral site total for Papike (2 for pyroxene)
	IdealCharge float64 // total cation charge for Stormer (8 for spinel)
}

// Result is the per-row iron partition. FeOWtPct and Fe2O3WtPct reconstruct
// the original total-iron-as-FeO value: FeO + Fe2O3/FeOToFe2O3 == input FeO.
type Result struct {
	Label      string
	Fe2        float64 // ferrous iron, cpfu
	Fe3        float64 // ferric iron, cpfu
	FeOWtPct   float64
	Fe2O3WtPct float64
	Method     Method
	Err        error
}

// Valid reports whether the row was partitioned successfully.
func (r Result) Valid() bool { return r.Err == nil }

// Partition estimates the FeO/Fe2O3 split for every dataset row. The dataset
// must carry total iron as an FeO column and must not already carry Fe2O3.
// Row order matches input order; per-row failures are isolated in Result.Err.
func Partition(ds *probe.Dataset, m Method, opt Options) ([]Result, error) {
	feIdx := indexOfOxide(ds, "FeO")
	if feIdx < 0 {
		return nil, fmt.Errorf("dataset must include an FeO column with total iron")
	}
	if indexOfOxide(ds, "Fe2O3") >= 0 {
		return nil, fmt.Errorf("dataset already contains Fe2O3; iron is already partitioned")
	}
	switch m {
	case Droop:
		if opt.CFU <= 0 {
			return nil, &probe.InvalidStoichiometryError{Param: "cfu", Value: opt.CFU, Want: "positive ideal cation total"}
		}
		if opt.AFU <= 0 {
			return nil, &probe.InvalidStoichiometryError{Param: "afu", Value: opt.AFU, Want: "positive anions per formula unit"}
		}
		return droop(ds, feIdx, opt)
	case Papike:
		if opt.AFU <= 0 {
			return nil, &probe.InvalidStoichiometryError{Param: "afu", Value: opt.AFU, Want: "positive anions per formula unit"}
		}
		if opt.TetSites <= 0 {
			return nil, &probe.InvalidStoichiometryError{Param: "tet_sites", Value: opt.TetSites, Want: "positive tetrahedral site total"}
		}
		return papike(ds, feIdx, opt)
	case Stormer:
		if opt.CFU <= 0 {
			return nil, &probe.InvalidStoichiometryError{Param: "cfu", Value: opt.CFU, Want: "positive ideal cation total"}
		}
		if opt.IdealCharge <= 0 {
			return nil, &probe.InvalidStoichiometryError{Param: "ideal_charge", Value: opt.IdealCharge, Want: "positive total cation charge"}
		}
		return stormer(ds, feIdx, opt)
	}
	return nil, fmt.Errorf("unknown ferric method %v", m)
}

// droop computes the ferric fraction from the mismatch between the
// cation-normalized (to cfu) and oxygen-normalized (to afu) formulas.
func droop(ds *probe.Dataset, feIdx int, opt Options) ([]Result, error) {
	out := make([]Result, len(ds.Rows))
	for r, wt := range ds.Rows {
		res := Result{Label: ds.Label(r), Method: Droop}

		// Cation proportions and their relative oxygen load.
		var sumP, sumOx float64
		p := make([]float64, len(ds.Oxides))
		for i, prop := range ds.Props {
			if math.IsNaN(wt[i]) {
				continue
			}
			p[i] = float64(prop.Cations) * wt[i] / prop.MolarMass
			sumP += p[i]
			sumOx += p[i] * relOx(prop)
		}
		if sumP == 0 || sumOx == 0 {
			res.Err = &probe.DegenerateRowError{Row: r}
			out[r] = res
			continue
		}
		molFact := opt.CFU / sumP
		oxFact := opt.AFU / sumOx

		// Droop components: S and X from the oxygen-normalized formula,
		// T and N from the cation-normalized one.
		var s, t, x, n float64
		for i, prop := range ds.Props {
			f1 := p[i] * molFact
			f2 := p[i] * oxFact
			t += f1
			s += f2
			x += f2 * relOx(prop)
			n += f1 * relOx(prop)
		}
		if math.Abs(s/t-x/n) > 1e-5 {
			res.Err = fmt.Errorf("row %d: droop consistency check failed (S/T=%g, X/N=%g)", r+1, s/t, x/n)
			out[r] = res
			continue
		}

		feTot := p[feIdx] * molFact
		fe3 := 2 * x * (1 - t/s)
		fe3 = clamp(fe3, 0, feTot)
		res.Fe3 = fe3
		res.Fe2 = feTot - fe3
		res.FeOWtPct, res.Fe2O3WtPct = splitWt(wt[feIdx], res.Fe2, res.Fe3)
		out[r] = res
	}
	return out, nil
}

// papike applies the pyroxene site-assignment convention to afu-normalized
// cations. Si and Al columns are required; Na, Ti and Cr count as zero when
// not analysed.
func papike(ds *probe.Dataset, feIdx int, opt Options) ([]Result, error) {
	si := indexOfCation(ds, "Si")
	al := indexOfCation(ds, "Al")
	if si < 0 || al < 0 {
		return nil, fmt.Errorf("papike method needs SiO2 and Al2O3 columns")
	}
	na := indexOfCation(ds, "Na")
	ti := indexOfCation(ds, "Ti")
	cr := indexOfCation(ds, "Cr")

	rows, err := probe.Recalculate(ds, opt.AFU)
	if err != nil {
		return nil, err
	}
	out := make([]Result, len(rows))
	for r, row := range rows {
		res := Result{Label: row.Label, Method: Papike}
		if !row.Valid() {
			res.Err = row.Err
			out[r] = res
			continue
		}
		alIV := opt.TetSites - cat(row, si)
		alVI := math.Max(0, cat(row, al)-alIV)
		fe3 := cat(row, na) + alIV - alVI - cat(row, ti) - cat(row, cr)
		feTot := cat(row, feIdx)
		res.Fe3 = clamp(fe3, 0, feTot)
		res.Fe2 = feTot - res.Fe3
		res.FeOWtPct, res.Fe2O3WtPct = splitWt(ds.Rows[r][feIdx], res.Fe2, res.Fe3)
		out[r] = res
	}
	return out, nil
}

// stormer assigns spinel Fe3+ from the deficit between the ideal total
// cation charge and the charge carried by everything except iron. Cations
// are normalized on a cation basis (cfu, 3 for spinel): an oxygen-basis
// normalization would pin the all-ferrous charge at 2*afu and the deficit
// would vanish identically.
func stormer(ds *probe.Dataset, feIdx int, opt Options) ([]Result, error) {
	out := make([]Result, len(ds.Rows))
	for r, wt := range ds.Rows {
		res := Result{Label: ds.Label(r), Method: Stormer}

		var sumP float64
		p := make([]float64, len(ds.Oxides))
		for i, prop := range ds.Props {
			if math.IsNaN(wt[i]) {
				continue
			}
			p[i] = float64(prop.Cations) * wt[i] / prop.MolarMass
			sumP += p[i]
		}
		if sumP == 0 {
			res.Err = &probe.DegenerateRowError{Row: r}
			out[r] = res
			continue
		}
		molFact := opt.CFU / sumP

		var chargeTot float64
		for i, prop := range ds.Props {
			chargeTot += p[i] * molFact * prop.ChargePerCation()
		}
		feTot := p[feIdx] * molFact
		chargeFe := feTot * ds.Props[feIdx].ChargePerCation()
		chargeDiff := opt.IdealCharge - (chargeTot - chargeFe)
		fe2 := clamp(3*feTot-chargeDiff, 0, feTot)
		res.Fe2 = fe2
		res.Fe3 = feTot - fe2
		res.FeOWtPct, res.Fe2O3WtPct = splitWt(wt[feIdx], res.Fe2, res.Fe3)
		out[r] = res
	}
	return out, nil
}

// splitWt converts a cpfu ferrous/ferric split back to oxide weight
// percentages of the original total-iron-as-FeO value.
func splitWt(feoTotal, fe2, fe3 float64) (feo, fe2o3 float64) {
	if math.IsNaN(feoTotal) {
		feoTotal = 0
	}
	ratio := 1.0 // all ferrous when no iron at all
	if fe2+fe3 > 0 {
		ratio = fe2 / (fe2 + fe3)
	}
	return feoTotal * ratio, feoTotal * (1 - ratio) * FeOToFe2O3
}

func relOx(p oxide.Property) float64 {
	return float64(p.Oxygens) / float64(p.Cations)
}

func cat(row probe.CationRow, idx int) float64 {
	if idx < 0 {
		return 0
	}
	v := row.Cations[idx]
	if math.IsNaN(v) {
		return 0
	}
	return v
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func indexOfOxide(ds *probe.Dataset, symbol string) int {
	for i, s := range ds.Oxides {
		if s == symbol {
			return i
		}
	}
	return -1
}

func indexOfCation(ds *probe.Dataset, label string) int {
	for i, p := range ds.Props {
		if p.Cation == label {
			return i
		}
	}
	return -1
}
