package calculation

import (
	"testing"

	"github.com/aapotheosis/rrspgo/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestModel builds the reference scenario used throughout these tests:
// federal 15% to 50000 then 20%, provincial 5% to 40000 then 10%. Merged
// boundaries are 0, 40000, 50000.
func newTestModel(t *testing.T) *CombinedTaxModel {
	t.Helper()
	federal := twoRateSchedule(t, "federal", 50000, 0.15, 0.20)
	provincial := twoRateSchedule(t, "ON", 40000, 0.05, 0.10)

	model, err := NewCombinedTaxModel(domain.Ontario, federal, provincial)
	require.NoError(t, err)
	return model
}

func TestNewCombinedTaxModel_YearMismatch(t *testing.T) {
	federal := twoRateSchedule(t, "federal", 50000, 0.15, 0.20)
	provincial, err := NewBracketSchedule("ON", 2024, []Bracket{
		{Min: decimal.Zero, Max: nil, Rate: decimal.NewFromFloat(0.05)},
	})
	require.NoError(t, err)

	_, err = NewCombinedTaxModel(domain.Ontario, federal, provincial)
	require.Error(t, err)

	var malformed *domain.MalformedScheduleError
	assert.ErrorAs(t, err, &malformed)
}

func TestCombinedTaxModel_TaxAt(t *testing.T) {
	model := newTestModel(t)

	// federal 9500 + provincial 4000
	tax, err := model.TaxAt(decimal.NewFromInt(60000))
	require.NoError(t, err)
	assert.True(t, tax.Equal(decimal.NewFromInt(13500)), "got %s", tax)

	tax, err = model.TaxAt(decimal.Zero)
	require.NoError(t, err)
	assert.True(t, tax.IsZero())

	_, err = model.TaxAt(decimal.NewFromInt(-1))
	assert.Error(t, err)
}

func TestCombinedTaxModel_MarginalRateAt(t *testing.T) {
	model := newTestModel(t)

	tests := []struct {
		income   int64
		expected float64
	}{
		{0, 0.20},     // 0.15 + 0.05
		{30000, 0.20},
		{45000, 0.25}, // 0.15 + 0.10
		{60000, 0.30}, // 0.20 + 0.10
	}

	for _, tt := range tests {
		mr, err := model.MarginalRateAt(decimal.NewFromInt(tt.income))
		require.NoError(t, err)
		assert.True(t, mr.Equal(decimal.NewFromFloat(tt.expected)),
			"at %d expected %v, got %s", tt.income, tt.expected, mr)
	}
}

func TestCombinedTaxModel_MarginalRateBelow(t *testing.T) {
	model := newTestModel(t)

	tests := []struct {
		name     string
		income   int64
		expected float64
	}{
		{"interior of top segment", 60000, 0.30},
		{"exactly on a boundary", 50000, 0.25},
		{"on the lower boundary", 40000, 0.20},
		{"zero income", 0, 0.20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mr, err := model.MarginalRateBelow(decimal.NewFromInt(tt.income))
			require.NoError(t, err)
			assert.True(t, mr.Equal(decimal.NewFromFloat(tt.expected)),
				"expected %v, got %s", tt.expected, mr)
		})
	}
}

func TestCombinedTaxModel_AverageRateAt(t *testing.T) {
	model := newTestModel(t)

	avg, err := model.AverageRateAt(decimal.NewFromInt(60000))
	require.NoError(t, err)
	assert.True(t, avg.Equal(decimal.NewFromFloat(0.225)), "got %s", avg) // 13500 / 60000

	avg, err = model.AverageRateAt(decimal.Zero)
	require.NoError(t, err)
	assert.True(t, avg.IsZero())

	// Average never exceeds marginal for a progressive schedule.
	for income := int64(1000); income <= 150000; income += 7000 {
		d := decimal.NewFromInt(income)
		avg, err := model.AverageRateAt(d)
		require.NoError(t, err)
		mr, err := model.MarginalRateAt(d)
		require.NoError(t, err)
		assert.True(t, avg.LessThanOrEqual(mr), "average %s above marginal %s at %d", avg, mr, income)
	}
}

func TestCombinedTaxModel_TaxSavingsForDeduction(t *testing.T) {
	model := newTestModel(t)

	// Deducting 10000 from 60000 recovers 2000 federal + 1000 provincial.
	savings, clamped, err := model.TaxSavingsForDeduction(decimal.NewFromInt(60000), decimal.NewFromInt(10000))
	require.NoError(t, err)
	assert.False(t, clamped)
	assert.True(t, savings.Equal(decimal.NewFromInt(3000)), "got %s", savings)

	// A deduction crossing the 40000 boundary is costed per slice, not at a
	// flat 30%: 10000 at 30% + 10000 at 25% + 5000 at 20%.
	savings, clamped, err = model.TaxSavingsForDeduction(decimal.NewFromInt(60000), decimal.NewFromInt(25000))
	require.NoError(t, err)
	assert.False(t, clamped)
	assert.True(t, savings.Equal(decimal.NewFromInt(6500)), "got %s", savings)
}

func TestCombinedTaxModel_TaxSavingsForDeduction_ZeroDeduction(t *testing.T) {
	model := newTestModel(t)

	for income := int64(0); income <= 120000; income += 10000 {
		savings, clamped, err := model.TaxSavingsForDeduction(decimal.NewFromInt(income), decimal.Zero)
		require.NoError(t, err)
		assert.False(t, clamped)
		assert.True(t, savings.IsZero(), "savings for zero deduction at %d: %s", income, savings)
	}
}

func TestCombinedTaxModel_TaxSavingsForDeduction_Clamped(t *testing.T) {
	model := newTestModel(t)

	// Deduction beyond income is capped at income; savings equal the whole
	// tax bill.
	savings, clamped, err := model.TaxSavingsForDeduction(decimal.NewFromInt(30000), decimal.NewFromInt(40000))
	require.NoError(t, err)
	assert.True(t, clamped)
	assert.True(t, savings.Equal(decimal.NewFromInt(6000)), "got %s", savings) // 4500 fed + 1500 prov

	_, _, err = model.TaxSavingsForDeduction(decimal.NewFromInt(30000), decimal.NewFromInt(-1))
	require.Error(t, err)
	var invalid *domain.InvalidInputError
	assert.ErrorAs(t, err, &invalid)
}

func TestCombinedTaxModel_NextLowerBoundary(t *testing.T) {
	model := newTestModel(t)

	tests := []struct {
		income   int64
		expected int64
	}{
		{60000, 50000},
		{50001, 50000},
		{50000, 40000},
		{40000, 0},
		{39999, 0},
		{0, 0},
	}

	for _, tt := range tests {
		got := model.NextLowerBoundary(decimal.NewFromInt(tt.income))
		assert.True(t, got.Equal(decimal.NewFromInt(tt.expected)),
			"at %d expected %d, got %s", tt.income, tt.expected, got)
	}
}

func TestCombinedTaxModel_Boundaries(t *testing.T) {
	model := newTestModel(t)

	boundaries := model.Boundaries()
	require.Len(t, boundaries, 3)
	assert.True(t, boundaries[0].IsZero())
	assert.True(t, boundaries[1].Equal(decimal.NewFromInt(40000)))
	assert.True(t, boundaries[2].Equal(decimal.NewFromInt(50000)))
}
