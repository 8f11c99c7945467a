// Package analytics computes spending aggregates over a cleaned transaction
// table. Every function is deterministic and leaves its input untouched.
package analytics

import (
	"math"
	"sort"

	"fjacquet/expense-insights/internal/analyticserror"
	"fjacquet/expense-insights/internal/dateutils"
	"fjacquet/expense-insights/internal/logging"
	"fjacquet/expense-insights/internal/models"

	"github.com/shopspring/decimal"
	"gonum.org/v1/gonum/stat"
)

const (
	DefaultTopN         = 5
	DefaultAnomalySigma = 2.0
)

// Policy holds the tunable analysis parameters.
type Policy struct {
	// AnomalySigma is the number of standard deviations above the mean a
	// transaction must exceed to be flagged.
	AnomalySigma float64
	// TopN is the default number of rows shown by the summary view.
	TopN int
}

// DefaultPolicy returns the built-in analysis parameters.
func DefaultPolicy() Policy {
	return Policy{AnomalySigma: DefaultAnomalySigma, TopN: DefaultTopN}
}

// Engine runs aggregations over a models.Table.
type Engine struct {
	policy Policy
	logger logging.Logger
}

// NewEngine creates an Engine. Non-positive policy values fall back to the
// defaults.
func NewEngine(policy Policy, logger logging.Logger) *Engine {
	if policy.AnomalySigma <= 0 {
		policy.AnomalySigma = DefaultAnomalySigma
	}
	if policy.TopN <= 0 {
		policy.TopN = DefaultTopN
	}
	return &Engine{policy: policy, logger: logger}
}

// Policy returns the effective policy.
func (e *Engine) Policy() Policy {
	return e.policy
}

// TotalSpending sums every amount in the table.
func (e *Engine) TotalSpending(t models.Table) decimal.Decimal {
	total := decimal.Zero
	for _, row := range t.Rows() {
		total = total.Add(row.Amount)
	}
	return total
}

// SpendingByCategory sums amounts per category, largest first.
func (e *Engine) SpendingByCategory(t models.Table) []models.CategoryTotal {
	summary := e.CategorySummary(t)
	out := make([]models.CategoryTotal, len(summary))
	for i, agg := range summary {
		out[i] = models.CategoryTotal{Category: agg.Category, Total: agg.Total}
	}
	return out
}

// CategorySummary returns total, mean and count per category, ordered by
// total descending then category name.
func (e *Engine) CategorySummary(t models.Table) []models.CategoryAggregate {
	index := make(map[string]int)
	var out []models.CategoryAggregate

	for _, row := range t.Rows() {
		i, ok := index[row.Category]
		if !ok {
			i = len(out)
			index[row.Category] = i
			out = append(out, models.CategoryAggregate{Category: row.Category, Total: decimal.Zero})
		}
		out[i].Total = out[i].Total.Add(row.Amount)
		out[i].Count++
	}

	for i := range out {
		out[i].Mean = out[i].Total.Div(decimal.NewFromInt(int64(out[i].Count)))
	}

	sort.SliceStable(out, func(i, j int) bool {
		if c := out[i].Total.Cmp(out[j].Total); c != 0 {
			return c > 0
		}
		return out[i].Category < out[j].Category
	})
	return out
}

// MonthlyTrend sums amounts per calendar month in chronological order.
func (e *Engine) MonthlyTrend(t models.Table) []models.MonthlyTotal {
	totals := make(map[string]decimal.Decimal)
	for _, row := range t.Rows() {
		month := row.Month()
		if current, ok := totals[month]; ok {
			totals[month] = current.Add(row.Amount)
		} else {
			totals[month] = row.Amount
		}
	}

	out := make([]models.MonthlyTotal, 0, len(totals))
	for month, total := range totals {
		out = append(out, models.MonthlyTotal{Month: month, Total: total})
	}
	// YYYY-MM sorts chronologically as a string.
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	return out
}

// WeeklyPattern returns the mean amount per weekday, lowest mean first. Ties
// keep Monday..Sunday order; weekdays without transactions are left out.
func (e *Engine) WeeklyPattern(t models.Table) []models.WeekdayMean {
	var sums [7]decimal.Decimal
	var counts [7]int
	for _, row := range t.Rows() {
		i := dateutils.WeekdayIndex(row.Date.Weekday())
		sums[i] = sums[i].Add(row.Amount)
		counts[i]++
	}

	out := make([]models.WeekdayMean, 0, 7)
	for i, day := range dateutils.Weekdays {
		if counts[i] == 0 {
			continue
		}
		out = append(out, models.WeekdayMean{
			Weekday: day,
			Day:     day.String(),
			Mean:    sums[i].Div(decimal.NewFromInt(int64(counts[i]))),
		})
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Mean.LessThan(out[j].Mean) })
	return out
}

// TopExpenses returns the n largest transactions, ties in table order. The
// result has min(n, t.Len()) rows.
func (e *Engine) TopExpenses(t models.Table, n int) ([]models.RankedTransaction, error) {
	if n <= 0 {
		return nil, &analyticserror.InvalidArgumentError{
			Argument: "n",
			Value:    n,
			Reason:   "must be a positive integer",
		}
	}

	ranked := rank(t)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Amount.GreaterThan(ranked[j].Amount)
	})

	if n < len(ranked) {
		ranked = ranked[:n]
	}
	return ranked, nil
}

// DetectAnomalies returns, in table order, the transactions whose amount
// exceeds mean + sigma*stddev of all amounts, using the sample (n-1)
// standard deviation.
func (e *Engine) DetectAnomalies(t models.Table) []models.RankedTransaction {
	if t.Len() < 2 {
		return nil
	}

	rows := t.Rows()
	amounts := make([]float64, len(rows))
	for i, row := range rows {
		amounts[i] = row.Amount.InexactFloat64()
	}

	mu, sd := stat.MeanStdDev(amounts, nil)
	if sd == 0 || math.IsNaN(sd) {
		return nil
	}
	threshold := mu + e.policy.AnomalySigma*sd

	var out []models.RankedTransaction
	for i, row := range rows {
		if amounts[i] > threshold {
			out = append(out, models.RankedTransaction{Index: i, Transaction: row})
		}
	}

	e.logger.Debug("Anomaly scan complete",
		logging.F(logging.FieldCount, len(out)),
		logging.F("threshold", threshold))
	return out
}

// Summary bundles the figures of the summary view.
func (e *Engine) Summary(t models.Table, n int) (models.SpendingSummary, error) {
	top, err := e.TopExpenses(t, n)
	if err != nil {
		return models.SpendingSummary{}, err
	}
	from, to := t.DateRange()
	return models.SpendingSummary{
		Total:            e.TotalSpending(t),
		TransactionCount: t.Len(),
		TopExpenses:      top,
		ByCategory:       e.SpendingByCategory(t),
		From:             from,
		To:               to,
	}, nil
}

func rank(t models.Table) []models.RankedTransaction {
	rows := t.Rows()
	out := make([]models.RankedTransaction, len(rows))
	for i, row := range rows {
		out[i] = models.RankedTransaction{Index: i, Transaction: row}
	}
	return out
}
