// Package advisor checks monthly spending against an income and savings goal
// and suggests where to cut when the goal is out of reach.
package advisor

import (
	"fmt"

	"fjacquet/expense-insights/internal/analytics"
	"fjacquet/expense-insights/internal/analyticserror"
	"fjacquet/expense-insights/internal/currencyutils"
	"fjacquet/expense-insights/internal/logging"
	"fjacquet/expense-insights/internal/models"

	"github.com/shopspring/decimal"
)

const (
	OnTrackMessage        = "You're on track with your saving goal!"
	DefaultCurrencySymbol = "₹"
	DefaultCutCount       = 3
)

// DefaultCutRate is the share of a category's spend proposed as a cut.
var DefaultCutRate = decimal.NewFromFloat(0.2)

// Policy controls how suggestions are built.
type Policy struct {
	CutRate        decimal.Decimal
	CutCount       int
	CurrencySymbol string
}

// DefaultPolicy returns the built-in suggestion policy.
func DefaultPolicy() Policy {
	return Policy{CutRate: DefaultCutRate, CutCount: DefaultCutCount, CurrencySymbol: DefaultCurrencySymbol}
}

// Cut is a suggested reduction for one category.
type Cut struct {
	Category string          `json:"category" yaml:"category" csv:"Category"`
	Amount   decimal.Decimal `json:"amount" yaml:"amount" csv:"Suggested_Cut"`
}

// Result is the outcome of a savings check.
type Result struct {
	OnTrack       bool            `json:"on_track" yaml:"on_track"`
	Income        decimal.Decimal `json:"income" yaml:"income"`
	Goal          decimal.Decimal `json:"goal" yaml:"goal"`
	Allowed       decimal.Decimal `json:"allowed" yaml:"allowed"`
	Total         decimal.Decimal `json:"total" yaml:"total"`
	Gap           decimal.Decimal `json:"gap" yaml:"gap"`
	Message       string          `json:"message" yaml:"message"`
	SuggestedCuts []Cut           `json:"suggested_cuts,omitempty" yaml:"suggested_cuts,omitempty"`
}

// Advisor runs savings checks.
type Advisor struct {
	engine *analytics.Engine
	policy Policy
	logger logging.Logger
}

// NewAdvisor creates an Advisor. Zero policy values fall back to the defaults.
func NewAdvisor(engine *analytics.Engine, policy Policy, logger logging.Logger) *Advisor {
	if !policy.CutRate.IsPositive() {
		policy.CutRate = DefaultCutRate
	}
	if policy.CutCount <= 0 {
		policy.CutCount = DefaultCutCount
	}
	if policy.CurrencySymbol == "" {
		policy.CurrencySymbol = DefaultCurrencySymbol
	}
	return &Advisor{engine: engine, policy: policy, logger: logger}
}

// Check compares total spend with income minus goal. When spend exceeds the
// allowance the result carries the gap and cuts for the largest categories.
// The cuts are illustrative and do not necessarily close the gap.
func (a *Advisor) Check(t models.Table, income, goal decimal.Decimal) (Result, error) {
	if income.IsNegative() {
		return Result{}, &analyticserror.InvalidArgumentError{Argument: "income", Value: income, Reason: "must not be negative"}
	}
	if goal.IsNegative() {
		return Result{}, &analyticserror.InvalidArgumentError{Argument: "goal", Value: goal, Reason: "must not be negative"}
	}

	allowed := income.Sub(goal)
	total := a.engine.TotalSpending(t)
	result := Result{
		Income:  income,
		Goal:    goal,
		Allowed: allowed,
		Total:   total,
		Gap:     decimal.Zero,
	}

	if total.LessThanOrEqual(allowed) {
		result.OnTrack = true
		result.Message = OnTrackMessage
		a.logger.Info("Savings goal on track", logging.F("total", total.String()), logging.F("allowed", allowed.String()))
		return result, nil
	}

	result.Gap = total.Sub(allowed)
	result.Message = fmt.Sprintf("You need to reduce %s to meet your goal.", currencyutils.FormatAmount(result.Gap, a.policy.CurrencySymbol))
	result.SuggestedCuts = a.suggestCuts(t)

	a.logger.Info("Savings goal missed",
		logging.F("gap", result.Gap.String()),
		logging.F(logging.FieldCount, len(result.SuggestedCuts)))
	return result, nil
}

func (a *Advisor) suggestCuts(t models.Table) []Cut {
	byCategory := a.engine.SpendingByCategory(t)
	if len(byCategory) > a.policy.CutCount {
		byCategory = byCategory[:a.policy.CutCount]
	}
	cuts := make([]Cut, len(byCategory))
	for i, c := range byCategory {
		cuts[i] = Cut{Category: c.Category, Amount: c.Total.Mul(a.policy.CutRate)}
	}
	return cuts
}
