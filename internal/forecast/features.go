package forecast

import (
	"sort"

	"fjacquet/expense-insights/internal/models"

	"github.com/shopspring/decimal"
)

// BuildFeatures groups the table by (month, category) and returns one row per
// group with its total spend, transaction count and average spend. Rows are
// ordered by month, then category.
func BuildFeatures(t models.Table) []models.MonthlyFeatureRow {
	type key struct{ month, category string }
	index := make(map[key]int)
	var rows []models.MonthlyFeatureRow

	for _, tx := range t.Rows() {
		k := key{month: tx.Month(), category: tx.Category}
		i, ok := index[k]
		if !ok {
			i = len(rows)
			index[k] = i
			rows = append(rows, models.MonthlyFeatureRow{Month: k.month, Category: k.category, TotalSpend: decimal.Zero})
		}
		rows[i].TotalSpend = rows[i].TotalSpend.Add(tx.Amount)
		rows[i].TransactionCount++
	}

	for i := range rows {
		rows[i].AvgSpend = rows[i].TotalSpend.Div(decimal.NewFromInt(int64(rows[i].TransactionCount)))
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Month != rows[j].Month {
			return rows[i].Month < rows[j].Month
		}
		return rows[i].Category < rows[j].Category
	})
	return rows
}

// CategoryRows returns the rows of one category in chronological order.
func CategoryRows(rows []models.MonthlyFeatureRow, category string) []models.MonthlyFeatureRow {
	var out []models.MonthlyFeatureRow
	for _, row := range rows {
		if row.Category == category {
			out = append(out, row)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	return out
}
