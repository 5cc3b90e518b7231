package optimizer

import (
	"fmt"

	"github.com/aapotheosis/rrspgo/internal/calculation"
	"github.com/aapotheosis/rrspgo/internal/domain"
	"github.com/shopspring/decimal"
)

// Options configures the recommendation search.
type Options struct {
	// MinMarginalRate is the lowest deduction rate the max_refund_rate goal
	// will keep borrowing at. Once the rate on the next deducted dollar would
	// fall below this, the search stops at that boundary.
	MinMarginalRate decimal.Decimal
}

// DefaultOptions returns the default search configuration.
func DefaultOptions() Options {
	return Options{
		MinMarginalRate: decimal.NewFromFloat(0.25),
	}
}

// Optimizer recommends an RRSP loan amount against a combined tax model.
// Every evaluation is a pure function of the request and the immutable
// model, so one Optimizer may serve concurrent requests.
type Optimizer struct {
	Model   *calculation.CombinedTaxModel
	Options Options
}

// New creates an optimizer with default options.
func New(model *calculation.CombinedTaxModel) *Optimizer {
	return NewWithOptions(model, DefaultOptions())
}

// NewWithOptions creates an optimizer with explicit options.
func NewWithOptions(model *calculation.CombinedTaxModel, options Options) *Optimizer {
	return &Optimizer{Model: model, Options: options}
}

// Evaluate computes the recommended loan amount for the request's goal, or
// reports the tax impact of the candidate amount when one is supplied.
// Zero income is a valid degenerate case yielding an all-zero result;
// negative amounts are rejected before anything is computed.
func (o *Optimizer) Evaluate(req domain.OptimizationRequest) (*domain.OptimizationResult, error) {
	if req.Income.IsNegative() {
		return nil, &domain.InvalidInputError{
			Field: "income", Value: req.Income.String(), Reason: "income cannot be negative",
		}
	}
	if req.CandidateLoanAmount != nil && req.CandidateLoanAmount.IsNegative() {
		return nil, &domain.InvalidInputError{
			Field: "candidate_loan_amount", Value: req.CandidateLoanAmount.String(), Reason: "loan amount cannot be negative",
		}
	}
	if req.Ceiling != nil && req.Ceiling.IsNegative() {
		return nil, &domain.InvalidInputError{
			Field: "ceiling", Value: req.Ceiling.String(), Reason: "ceiling cannot be negative",
		}
	}

	if req.Income.IsZero() {
		return &domain.OptimizationResult{Request: req}, nil
	}

	// Direct what-if bypasses the goal search.
	if req.CandidateLoanAmount != nil {
		return o.buildResult(req, *req.CandidateLoanAmount)
	}

	var loan decimal.Decimal
	switch req.Goal {
	case domain.GoalFillCurrentBracket:
		loan = o.fillCurrentBracket(req.Income)
	case domain.GoalMaximizeRefundPerDollar:
		var err error
		loan, err = o.maximizeRefundPerDollar(req.Income)
		if err != nil {
			return nil, err
		}
	case domain.GoalRespectCeiling:
		if req.Ceiling == nil {
			return nil, &domain.InvalidInputError{
				Field: "ceiling", Reason: "ceiling goal requires a ceiling amount",
			}
		}
		loan = decimal.Min(*req.Ceiling, o.fillCurrentBracket(req.Income))
	default:
		return nil, &domain.InvalidInputError{
			Field: "goal", Value: string(req.Goal), Reason: "unsupported goal",
		}
	}

	return o.buildResult(req, loan)
}

// fillCurrentBracket returns the deduction that reduces taxable income
// exactly to the next lower bracket boundary. Every dollar of that loan is
// deducted at the taxpayer's current marginal rate.
func (o *Optimizer) fillCurrentBracket(income decimal.Decimal) decimal.Decimal {
	return income.Sub(o.Model.NextLowerBoundary(income))
}

// maximizeRefundPerDollar walks the merged boundary list downward from
// income, extending the deduction segment by segment while the rate on the
// next deducted dollar stays at or above MinMarginalRate. The objective is
// piecewise-constant between boundaries and non-increasing past each
// crossing, so the walk stops at the first boundary below the threshold.
// Linear in the number of merged brackets.
func (o *Optimizer) maximizeRefundPerDollar(income decimal.Decimal) (decimal.Decimal, error) {
	floor := income
	for floor.GreaterThan(decimal.Zero) {
		below := o.Model.NextLowerBoundary(floor)
		rate, err := o.Model.MarginalRateAt(below)
		if err != nil {
			return decimal.Zero, err
		}
		if rate.LessThan(o.Options.MinMarginalRate) {
			break
		}
		floor = below
	}
	return income.Sub(floor), nil
}

// buildResult computes before/after tax, marginal rates, and the blended
// rate on the loan for the chosen amount.
func (o *Optimizer) buildResult(req domain.OptimizationRequest, loan decimal.Decimal) (*domain.OptimizationResult, error) {
	savings, clamped, err := o.Model.TaxSavingsForDeduction(req.Income, loan)
	if err != nil {
		return nil, err
	}
	if clamped {
		loan = req.Income
	}

	taxBefore, err := o.Model.TaxAt(req.Income)
	if err != nil {
		return nil, err
	}
	marginalBefore, err := o.Model.MarginalRateAt(req.Income)
	if err != nil {
		return nil, err
	}

	reduced := req.Income.Sub(loan)
	marginalAfter := marginalBefore
	if loan.GreaterThan(decimal.Zero) {
		// Report the rate a further dollar of deduction would recover. On an
		// exact boundary that is the lower segment's rate, which keeps the
		// after rate from exceeding the before rate.
		marginalAfter, err = o.Model.MarginalRateBelow(reduced)
		if err != nil {
			return nil, err
		}
	}

	effectiveRate := decimal.Zero
	if loan.GreaterThan(decimal.Zero) {
		effectiveRate = savings.Div(loan)
	}

	result := &domain.OptimizationResult{
		Request:               req,
		RecommendedLoanAmount: loan,
		TaxBeforeDeduction:    taxBefore,
		TaxAfterDeduction:     taxBefore.Sub(savings),
		TaxSavings:            savings,
		MarginalRateBefore:    marginalBefore,
		MarginalRateAfter:     marginalAfter,
		EffectiveRateOnLoan:   effectiveRate,
		Clamped:               clamped,
	}
	if clamped {
		result.Notes = append(result.Notes,
			fmt.Sprintf("requested deduction exceeds income; capped at %s", req.Income.StringFixed(2)))
	}
	return result, nil
}
