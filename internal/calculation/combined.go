package calculation

import (
	"sort"

	"github.com/aapotheosis/rrspgo/internal/domain"
	"github.com/shopspring/decimal"
)

// CombinedTaxModel merges a federal and a provincial schedule for the same
// tax year into one piecewise-linear tax function. The two schedules stay
// independent: total tax at any income is federal tax plus provincial tax,
// and the combined marginal rate is the sum of the two marginal rates. Only
// the boundary points are merged, so deductions that cross a boundary in
// either schedule are costed correctly.
//
// Immutable after construction; safe for concurrent use.
type CombinedTaxModel struct {
	Province   domain.Province
	Year       int
	Federal    *BracketSchedule
	Provincial *BracketSchedule

	// boundaries holds every bracket lower bound from either schedule,
	// deduplicated and sorted ascending. boundaries[0] is always 0.
	boundaries []decimal.Decimal
}

// NewCombinedTaxModel builds a model from two validated schedules. Both
// schedules must cover the same tax year.
func NewCombinedTaxModel(province domain.Province, federal, provincial *BracketSchedule) (*CombinedTaxModel, error) {
	if federal.Year != provincial.Year {
		return nil, &domain.MalformedScheduleError{
			Jurisdiction: string(province),
			Year:         provincial.Year,
			Index:        -1,
			Message:      "federal and provincial schedules cover different years",
		}
	}

	seen := map[string]bool{}
	var boundaries []decimal.Decimal
	for _, bs := range []*BracketSchedule{federal, provincial} {
		for _, b := range bs.Brackets {
			key := b.Min.String()
			if !seen[key] {
				seen[key] = true
				boundaries = append(boundaries, b.Min)
			}
		}
	}
	sort.Slice(boundaries, func(i, j int) bool { return boundaries[i].LessThan(boundaries[j]) })

	return &CombinedTaxModel{
		Province:   province,
		Year:       federal.Year,
		Federal:    federal,
		Provincial: provincial,
		boundaries: boundaries,
	}, nil
}

// TaxAt returns combined federal plus provincial tax at the given income.
func (m *CombinedTaxModel) TaxAt(income decimal.Decimal) (decimal.Decimal, error) {
	fed, err := m.Federal.TaxAt(income)
	if err != nil {
		return decimal.Zero, err
	}
	prov, err := m.Provincial.TaxAt(income)
	if err != nil {
		return decimal.Zero, err
	}
	return fed.Add(prov), nil
}

// MarginalRateAt returns the combined rate on the next dollar of income:
// the sum of the two jurisdictions' independently determined marginal rates.
func (m *CombinedTaxModel) MarginalRateAt(income decimal.Decimal) (decimal.Decimal, error) {
	fed, err := m.Federal.MarginalRateAt(income)
	if err != nil {
		return decimal.Zero, err
	}
	prov, err := m.Provincial.MarginalRateAt(income)
	if err != nil {
		return decimal.Zero, err
	}
	return fed.Add(prov), nil
}

// MarginalRateBelow returns the combined rate charged on the last dollar of
// income below the given level. Away from a boundary this equals
// MarginalRateAt; exactly on a boundary it is the lower segment's rate, which
// is the rate a deduction down to that level actually recovers.
func (m *CombinedTaxModel) MarginalRateBelow(income decimal.Decimal) (decimal.Decimal, error) {
	if income.IsNegative() {
		return decimal.Zero, &domain.InvalidInputError{
			Field: "income", Value: income.String(), Reason: "income cannot be negative",
		}
	}
	if income.IsZero() {
		return m.MarginalRateAt(decimal.Zero)
	}
	return m.MarginalRateAt(m.NextLowerBoundary(income))
}

// AverageRateAt returns total combined tax divided by income, zero at zero.
func (m *CombinedTaxModel) AverageRateAt(income decimal.Decimal) (decimal.Decimal, error) {
	if income.IsNegative() {
		return decimal.Zero, &domain.InvalidInputError{
			Field: "income", Value: income.String(), Reason: "income cannot be negative",
		}
	}
	if income.IsZero() {
		return decimal.Zero, nil
	}
	tax, err := m.TaxAt(income)
	if err != nil {
		return decimal.Zero, err
	}
	return tax.Div(income), nil
}

// TaxSavingsForDeduction computes the incremental tax recovered by deducting
// the given amount from income: TaxAt(income) - TaxAt(income - deduction).
// The deduction is applied top-down against the highest marginal slices
// first, so savings across a boundary crossing are costed per slice, not at
// a single flat rate. A deduction larger than income is capped at income;
// the clamped return signals the cap so callers can warn the user.
func (m *CombinedTaxModel) TaxSavingsForDeduction(income, deduction decimal.Decimal) (savings decimal.Decimal, clamped bool, err error) {
	if income.IsNegative() {
		return decimal.Zero, false, &domain.InvalidInputError{
			Field: "income", Value: income.String(), Reason: "income cannot be negative",
		}
	}
	if deduction.IsNegative() {
		return decimal.Zero, false, &domain.InvalidInputError{
			Field: "deduction", Value: deduction.String(), Reason: "deduction cannot be negative",
		}
	}

	reduced := income.Sub(deduction)
	if reduced.IsNegative() {
		reduced = decimal.Zero
		clamped = true
	}

	before, err := m.TaxAt(income)
	if err != nil {
		return decimal.Zero, false, err
	}
	after, err := m.TaxAt(reduced)
	if err != nil {
		return decimal.Zero, false, err
	}
	return before.Sub(after), clamped, nil
}

// NextLowerBoundary returns the largest combined-schedule boundary strictly
// below the given income, or zero when income is already at or below the
// lowest boundary. The distance income - NextLowerBoundary(income) is the
// deduction needed to drop into the next lower bracket.
func (m *CombinedTaxModel) NextLowerBoundary(income decimal.Decimal) decimal.Decimal {
	// Linear scan; the merged list is at most a few dozen entries per year.
	next := decimal.Zero
	for _, b := range m.boundaries {
		if b.GreaterThanOrEqual(income) {
			break
		}
		next = b
	}
	return next
}

// Boundaries returns a copy of the merged, sorted boundary list.
func (m *CombinedTaxModel) Boundaries() []decimal.Decimal {
	out := make([]decimal.Decimal, len(m.boundaries))
	copy(out, m.boundaries)
	return out
}
