package calculation

import (
	"github.com/aapotheosis/rrspgo/internal/domain"
	"github.com/shopspring/decimal"
)

// Bracket is one contiguous income range taxed at a single marginal rate.
// A nil Max marks the unbounded top bracket.
type Bracket struct {
	Min  decimal.Decimal
	Max  *decimal.Decimal
	Rate decimal.Decimal
}

// BracketSchedule is the progressive rate table for one jurisdiction
// (federal or a province) for one tax year. Immutable after construction;
// all invariants are checked once in NewBracketSchedule, never per query.
type BracketSchedule struct {
	Jurisdiction string
	Year         int
	Brackets     []Bracket
}

// NewBracketSchedule validates and constructs a schedule. Brackets must be
// ordered ascending, start at zero, be contiguous with no gaps or overlaps,
// carry rates in [0,1] that never decrease, and end with an unbounded
// bracket.
func NewBracketSchedule(jurisdiction string, year int, brackets []Bracket) (*BracketSchedule, error) {
	malformed := func(index int, message string) error {
		return &domain.MalformedScheduleError{
			Jurisdiction: jurisdiction,
			Year:         year,
			Index:        index,
			Message:      message,
		}
	}

	if len(brackets) == 0 {
		return nil, malformed(0, "schedule has no brackets")
	}
	if !brackets[0].Min.IsZero() {
		return nil, malformed(0, "first bracket must start at 0, starts at "+brackets[0].Min.String())
	}
	for i, b := range brackets {
		if b.Rate.IsNegative() || b.Rate.GreaterThan(decimal.NewFromInt(1)) {
			return nil, malformed(i, "rate "+b.Rate.String()+" outside [0,1]")
		}
		if i > 0 && b.Rate.LessThan(brackets[i-1].Rate) {
			return nil, malformed(i, "rate "+b.Rate.String()+" decreases from "+brackets[i-1].Rate.String())
		}
		last := i == len(brackets)-1
		if last {
			if b.Max != nil {
				return nil, malformed(i, "last bracket must have no upper limit")
			}
			continue
		}
		if b.Max == nil {
			return nil, malformed(i, "only the last bracket may be unbounded")
		}
		if b.Max.LessThanOrEqual(b.Min) {
			return nil, malformed(i, "upper bound "+b.Max.String()+" not above lower bound "+b.Min.String())
		}
		if !b.Max.Equal(brackets[i+1].Min) {
			return nil, malformed(i+1, "brackets not contiguous: expected lower bound "+b.Max.String()+", got "+brackets[i+1].Min.String())
		}
	}

	return &BracketSchedule{Jurisdiction: jurisdiction, Year: year, Brackets: brackets}, nil
}

// TaxAt returns the tax owed at the given income for this jurisdiction:
// each bracket below income contributes its slice of income at its rate.
func (bs *BracketSchedule) TaxAt(income decimal.Decimal) (decimal.Decimal, error) {
	if income.IsNegative() {
		return decimal.Zero, &domain.InvalidInputError{
			Field: "income", Value: income.String(), Reason: "income cannot be negative",
		}
	}

	var totalTax decimal.Decimal
	for _, bracket := range bs.Brackets {
		if income.LessThanOrEqual(bracket.Min) {
			break
		}
		top := income
		if bracket.Max != nil && bracket.Max.LessThan(top) {
			top = *bracket.Max
		}
		totalTax = totalTax.Add(top.Sub(bracket.Min).Mul(bracket.Rate))
	}
	return totalTax, nil
}

// MarginalRateAt returns the rate of the bracket containing income, i.e. the
// rate on the next dollar earned. Brackets contain their lower bound.
func (bs *BracketSchedule) MarginalRateAt(income decimal.Decimal) (decimal.Decimal, error) {
	if income.IsNegative() {
		return decimal.Zero, &domain.InvalidInputError{
			Field: "income", Value: income.String(), Reason: "income cannot be negative",
		}
	}

	for _, bracket := range bs.Brackets {
		if bracket.Max == nil || income.LessThan(*bracket.Max) {
			if income.GreaterThanOrEqual(bracket.Min) {
				return bracket.Rate, nil
			}
		}
	}
	// Unreachable for a validated schedule; the last bracket is unbounded.
	return bs.Brackets[len(bs.Brackets)-1].Rate, nil
}
