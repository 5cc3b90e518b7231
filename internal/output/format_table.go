package output

import (
	"fmt"
	"strings"

	"github.com/aapotheosis/rrspgo/internal/calculation"
	"github.com/aapotheosis/rrspgo/internal/domain"
	"github.com/shopspring/decimal"
)

// TableFormatter renders an optimization result as a console report.
type TableFormatter struct{}

// Format generates the console report for a single recommendation.
func (tf *TableFormatter) Format(result *domain.OptimizationResult) string {
	var sb strings.Builder

	req := result.Request
	sb.WriteString(titleStyle.Render("RRSP LOAN RECOMMENDATION") + "\n")
	sb.WriteString(strings.Repeat("=", 60) + "\n")
	sb.WriteString(fmt.Sprintf("Province:  %s (%s)\n", req.Province.Name(), req.Province))
	sb.WriteString(fmt.Sprintf("Tax year:  %d\n", req.Year))
	sb.WriteString(fmt.Sprintf("Income:    %s\n", FormatCurrency(req.Income)))
	if req.CandidateLoanAmount != nil {
		sb.WriteString(fmt.Sprintf("What-if:   %s loan\n", FormatCurrency(*req.CandidateLoanAmount)))
	} else {
		sb.WriteString(fmt.Sprintf("Goal:      %s\n", req.Goal))
	}
	sb.WriteString(strings.Repeat("-", 60) + "\n")

	tf.writeRow(&sb, "Recommended loan", FormatCurrency(result.RecommendedLoanAmount))
	tf.writeRow(&sb, "Tax before deduction", FormatCurrency(result.TaxBeforeDeduction))
	tf.writeRow(&sb, "Tax after deduction", FormatCurrency(result.TaxAfterDeduction))
	tf.writeRow(&sb, "Tax savings", FormatCurrency(result.TaxSavings))
	tf.writeRow(&sb, "Marginal rate before", FormatPercentage(result.MarginalRateBefore))
	tf.writeRow(&sb, "Marginal rate after", FormatPercentage(result.MarginalRateAfter))
	tf.writeRow(&sb, "Effective rate on loan", FormatPercentage(result.EffectiveRateOnLoan))
	sb.WriteString(strings.Repeat("=", 60) + "\n")

	for _, note := range result.Notes {
		sb.WriteString(warnStyle.Render("note: "+note) + "\n")
	}

	return sb.String()
}

func (tf *TableFormatter) writeRow(sb *strings.Builder, label, value string) {
	sb.WriteString(fmt.Sprintf("%s %s\n",
		labelStyle.Render(fmt.Sprintf("%-24s", label)),
		valueStyle.Render(fmt.Sprintf("%14s", value))))
}

// FormatBracketTable renders the combined schedule's brackets for a model,
// one row per merged rate segment.
func FormatBracketTable(model *calculation.CombinedTaxModel) (string, error) {
	var sb strings.Builder

	sb.WriteString(titleStyle.Render(fmt.Sprintf("COMBINED TAX BRACKETS — %s, %d", model.Province.Name(), model.Year)) + "\n")
	sb.WriteString(strings.Repeat("=", 72) + "\n")
	sb.WriteString(fmt.Sprintf("%-16s %-16s %10s %12s %12s\n",
		"From", "To", "Federal", "Provincial", "Combined"))
	sb.WriteString(strings.Repeat("-", 72) + "\n")

	boundaries := model.Boundaries()
	for i, lower := range boundaries {
		upper := "no limit"
		if i+1 < len(boundaries) {
			upper = FormatCurrency(boundaries[i+1])
		}
		fed, err := model.Federal.MarginalRateAt(lower)
		if err != nil {
			return "", err
		}
		prov, err := model.Provincial.MarginalRateAt(lower)
		if err != nil {
			return "", err
		}
		sb.WriteString(fmt.Sprintf("%-16s %-16s %10s %12s %12s\n",
			FormatCurrency(lower), upper,
			FormatPercentage(fed), FormatPercentage(prov), FormatPercentage(fed.Add(prov))))
	}
	sb.WriteString(strings.Repeat("=", 72) + "\n")

	return sb.String(), nil
}

// FormatCurrency formats a decimal as a dollar amount.
func FormatCurrency(amount decimal.Decimal) string {
	return "$" + amount.StringFixed(2)
}

// FormatPercentage formats a rate fraction as a percentage.
func FormatPercentage(rate decimal.Decimal) string {
	return rate.Mul(decimal.NewFromInt(100)).StringFixed(2) + "%"
}
