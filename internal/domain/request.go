package domain

import "github.com/shopspring/decimal"

// Goal defines what the loan recommendation should achieve
type Goal string

const (
	// GoalFillCurrentBracket recommends the amount that reduces taxable income
	// exactly to the next lower bracket boundary, so every borrowed dollar is
	// deducted at the taxpayer's current marginal rate.
	GoalFillCurrentBracket Goal = "fill_bracket"

	// GoalMaximizeRefundPerDollar keeps borrowing through bracket crossings
	// while the marginal deduction rate stays at or above a configured
	// minimum, stopping at the first boundary where it drops below.
	GoalMaximizeRefundPerDollar Goal = "max_refund_rate"

	// GoalRespectCeiling applies a hard cap (contribution room) on top of the
	// fill-bracket recommendation.
	GoalRespectCeiling Goal = "ceiling"
)

// OptimizationRequest describes one loan recommendation query.
type OptimizationRequest struct {
	Income   decimal.Decimal `json:"income"`
	Province Province        `json:"province"`
	Year     int             `json:"year"`
	Goal     Goal            `json:"goal"`

	// Ceiling is the contribution-room cap for GoalRespectCeiling.
	Ceiling *decimal.Decimal `json:"ceiling,omitempty"`

	// CandidateLoanAmount, when set, bypasses the search entirely and reports
	// the tax impact of that specific loan amount.
	CandidateLoanAmount *decimal.Decimal `json:"candidate_loan_amount,omitempty"`
}

// OptimizationResult is the outcome of one recommendation query. Produced
// fresh per request; never persisted.
type OptimizationResult struct {
	Request OptimizationRequest `json:"request"`

	RecommendedLoanAmount decimal.Decimal `json:"recommended_loan_amount"`
	TaxBeforeDeduction    decimal.Decimal `json:"tax_before_deduction"`
	TaxAfterDeduction     decimal.Decimal `json:"tax_after_deduction"`
	TaxSavings            decimal.Decimal `json:"tax_savings"`
	MarginalRateBefore    decimal.Decimal `json:"marginal_rate_before"`
	MarginalRateAfter     decimal.Decimal `json:"marginal_rate_after"`

	// EffectiveRateOnLoan is TaxSavings / RecommendedLoanAmount, zero when
	// nothing is recommended.
	EffectiveRateOnLoan decimal.Decimal `json:"effective_rate_on_loan"`

	// Clamped is set when a requested deduction exceeded income and was
	// capped. A warning condition, not an error.
	Clamped bool     `json:"clamped,omitempty"`
	Notes   []string `json:"notes,omitempty"`
}
