package output

import (
	"encoding/csv"
	"strconv"
	"strings"

	"github.com/aapotheosis/rrspgo/internal/domain"
)

// CSVFormatter renders an optimization result as CSV
type CSVFormatter struct{}

// Format generates CSV output for a recommendation
func (cf *CSVFormatter) Format(result *domain.OptimizationResult) (string, error) {
	var sb strings.Builder
	writer := csv.NewWriter(&sb)

	header := []string{
		"Province",
		"Year",
		"Income",
		"Goal",
		"Recommended Loan",
		"Tax Before",
		"Tax After",
		"Tax Savings",
		"Marginal Rate Before",
		"Marginal Rate After",
		"Effective Rate On Loan",
		"Clamped",
	}
	if err := writer.Write(header); err != nil {
		return "", err
	}

	req := result.Request
	goal := string(req.Goal)
	if req.CandidateLoanAmount != nil {
		goal = "what_if"
	}
	row := []string{
		string(req.Province),
		strconv.Itoa(req.Year),
		req.Income.StringFixed(2),
		goal,
		result.RecommendedLoanAmount.StringFixed(2),
		result.TaxBeforeDeduction.StringFixed(2),
		result.TaxAfterDeduction.StringFixed(2),
		result.TaxSavings.StringFixed(2),
		result.MarginalRateBefore.StringFixed(4),
		result.MarginalRateAfter.StringFixed(4),
		result.EffectiveRateOnLoan.StringFixed(4),
		strconv.FormatBool(result.Clamped),
	}
	if err := writer.Write(row); err != nil {
		return "", err
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return "", err
	}

	return sb.String(), nil
}
