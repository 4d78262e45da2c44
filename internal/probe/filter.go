package probe

// CheckTotals classifies recalculated rows against an ideal total cation
// count. A row is accepted when its total lies inside
// idealCFU ± idealCFU*wiggle, bounds inclusive. A wiggle of zero therefore
// demands an exact match, which is generally too strict for measured data;
// that is deliberate, not relaxed here. Rows carrying a per-row error are
// always rejected. The returned mask is aligned to the input order.
func CheckTotals(rows []CationRow, idealCFU, wiggle float64) ([]bool, error) {
	if idealCFU <= 0 {
		return nil, &InvalidStoichiometryError{Param: "cfu", Value: idealCFU, Want: "positive ideal cation total"}
	}
	if wiggle < 0 {
		return nil, &InvalidStoichiometryError{Param: "wiggle", Value: wiggle, Want: "non-negative tolerance fraction"}
	}
	lower := idealCFU - idealCFU*wiggle
	upper := idealCFU + idealCFU*wiggle
	mask := make([]bool, len(rows))
	for i, r := range rows {
		mask[i] = r.Valid() && r.TotalCations >= lower && r.TotalCations <= upper
	}
	return mask, nil
}

// Partition splits rows into accepted and rejected slices per the mask,
// preserving input order in both. No row is copied or mutated beyond the
// slice split.
func Partition(rows []CationRow, mask []bool) (accepted, rejected []CationRow) {
	for i, r := range rows {
		if i < len(mask) && mask[i] {
			accepted = append(accepted, r)
		} else {
			rejected = append(rejected, r)
		}
	}
	return accepted, rejected
}
