package advisor

import (
	"testing"
	"time"

	"fjacquet/expense-insights/internal/analytics"
	"fjacquet/expense-insights/internal/analyticserror"
	"fjacquet/expense-insights/internal/logging"
	"fjacquet/expense-insights/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func tableOf(amounts map[string]string) models.Table {
	date := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	var rows []models.Transaction
	for _, category := range []string{"Rent", "Food", "Travel", "Fun", "Books"} {
		amount, ok := amounts[category]
		if !ok {
			continue
		}
		rows = append(rows, models.Transaction{Date: date, Amount: dec(amount), Category: category, Description: "x"})
	}
	return models.NewTable(rows)
}

func newTestAdvisor(policy Policy) (*Advisor, *logging.MockLogger) {
	logger := logging.NewMockLogger()
	engine := analytics.NewEngine(analytics.DefaultPolicy(), logger)
	return NewAdvisor(engine, policy, logger), logger
}

func TestCheck_GoalMissed(t *testing.T) {
	a, logger := newTestAdvisor(DefaultPolicy())
	table := tableOf(map[string]string{"Rent": "25000", "Food": "10000", "Travel": "6000", "Fun": "4000"})

	result, err := a.Check(table, dec("50000"), dec("10000"))
	require.NoError(t, err)

	assert.False(t, result.OnTrack)
	assert.True(t, result.Gap.Equal(dec("5000")))
	assert.Equal(t, "You need to reduce ₹5000.00 to meet your goal.", result.Message)

	require.Len(t, result.SuggestedCuts, 3)
	assert.Equal(t, "Rent", result.SuggestedCuts[0].Category)
	assert.True(t, result.SuggestedCuts[0].Amount.Equal(dec("5000")))
	assert.Equal(t, "Food", result.SuggestedCuts[1].Category)
	assert.True(t, result.SuggestedCuts[1].Amount.Equal(dec("2000")))
	assert.Equal(t, "Travel", result.SuggestedCuts[2].Category)
	assert.True(t, result.SuggestedCuts[2].Amount.Equal(dec("1200")))

	assert.True(t, logger.HasEntry("INFO", "Savings goal missed"))
}

func TestCheck_OnTrack(t *testing.T) {
	a, _ := newTestAdvisor(DefaultPolicy())

	tests := []struct {
		name   string
		income string
		goal   string
	}{
		{name: "under allowance", income: "60000", goal: "10000"},
		{name: "exactly at allowance", income: "55000", goal: "10000"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := a.Check(tableOf(map[string]string{"Rent": "45000"}), dec(tt.income), dec(tt.goal))
			require.NoError(t, err)
			assert.True(t, result.OnTrack)
			assert.Equal(t, OnTrackMessage, result.Message)
			assert.Empty(t, result.SuggestedCuts)
			assert.True(t, result.Gap.IsZero())
		})
	}
}

func TestCheck_NegativeAllowance(t *testing.T) {
	a, _ := newTestAdvisor(DefaultPolicy())
	result, err := a.Check(tableOf(map[string]string{"Food": "100"}), dec("1000"), dec("1500"))
	require.NoError(t, err)
	assert.False(t, result.OnTrack)
	assert.True(t, result.Gap.Equal(dec("600")))
}

func TestCheck_FewerCategoriesThanCutCount(t *testing.T) {
	a, _ := newTestAdvisor(Policy{CutRate: dec("0.5"), CutCount: 3, CurrencySymbol: "CHF "})
	result, err := a.Check(tableOf(map[string]string{"Food": "300"}), dec("100"), dec("0"))
	require.NoError(t, err)

	assert.Equal(t, "You need to reduce CHF 200.00 to meet your goal.", result.Message)
	require.Len(t, result.SuggestedCuts, 1)
	assert.True(t, result.SuggestedCuts[0].Amount.Equal(dec("150")))
}

func TestCheck_RejectsNegativeInput(t *testing.T) {
	a, _ := newTestAdvisor(DefaultPolicy())
	table := tableOf(map[string]string{"Food": "1"})

	_, err := a.Check(table, dec("-1"), dec("0"))
	assert.ErrorIs(t, err, analyticserror.ErrInvalidArgument)

	_, err = a.Check(table, dec("10"), dec("-0.01"))
	assert.ErrorIs(t, err, analyticserror.ErrInvalidArgument)
}

func TestNewAdvisorDefaults(t *testing.T) {
	a, _ := newTestAdvisor(Policy{})
	assert.True(t, a.policy.CutRate.Equal(dec("0.2")))
	assert.Equal(t, DefaultCutCount, a.policy.CutCount)
	assert.Equal(t, DefaultCurrencySymbol, a.policy.CurrencySymbol)
}
