package report

import (
	"fmt"
	"strconv"

	"fjacquet/expense-insights/internal/advisor"
	"fjacquet/expense-insights/internal/currencyutils"
	"fjacquet/expense-insights/internal/forecast"
	"fjacquet/expense-insights/internal/history"
	"fjacquet/expense-insights/internal/models"

	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

// Table is a titled grid of pre-formatted cells.
type Table struct {
	Title   string
	Columns []string
	Rows    [][]string
}

// View is a renderable analysis result. Data is what structured formats
// (json, yaml) marshal; Records is a slice of csv-tagged structs for the csv
// format and is nil when the result has no natural tabular form.
type View struct {
	Name    string
	Title   string
	Notes   []string
	Tables  []Table
	Data    interface{}
	Records interface{}
}

type transactionRecord struct {
	Index       int    `csv:"Index"`
	Date        string `csv:"Date"`
	Amount      string `csv:"Amount"`
	Category    string `csv:"Category"`
	Description string `csv:"Description"`
}

type categoryRecord struct {
	Category string `csv:"Category"`
	Total    string `csv:"Total"`
	Mean     string `csv:"Mean"`
	Count    int    `csv:"Count"`
}

type monthRecord struct {
	Month string `csv:"Month"`
	Total string `csv:"Total"`
}

type weekdayRecord struct {
	Day  string `csv:"Day"`
	Mean string `csv:"Mean"`
}

type cutRecord struct {
	Category     string `csv:"Category"`
	SuggestedCut string `csv:"Suggested_Cut"`
}

type featureRecord struct {
	Month            string `csv:"Month"`
	Category         string `csv:"Category"`
	TotalSpend       string `csv:"Total_Spend"`
	TransactionCount int    `csv:"Transaction_Count"`
	AvgSpend         string `csv:"Avg_Spend"`
}

type forecastRecord struct {
	Category         string `csv:"Category"`
	Month            string `csv:"Month"`
	TransactionCount int    `csv:"Transaction_Count"`
	AvgSpend         string `csv:"Avg_Spend"`
	Prediction       string `csv:"Prediction"`
	MSE              string `csv:"MSE"`
}

func money(d decimal.Decimal) string {
	return currencyutils.FormatPlain(d)
}

func transactionRecords(rows []models.RankedTransaction) ([]transactionRecord, Table) {
	records := make([]transactionRecord, len(rows))
	table := Table{Columns: []string{"#", "Date", "Amount", "Category", "Description"}}
	for i, r := range rows {
		records[i] = transactionRecord{
			Index:       r.Index,
			Date:        r.Date.Format(dateLayout),
			Amount:      money(r.Amount),
			Category:    r.Category,
			Description: r.Description,
		}
		table.Rows = append(table.Rows, []string{
			strconv.Itoa(r.Index), records[i].Date, records[i].Amount, r.Category, r.Description,
		})
	}
	return records, table
}

// SummaryView renders the headline figures, top expenses and category totals.
func SummaryView(s models.SpendingSummary) View {
	records, top := transactionRecords(s.TopExpenses)
	top.Title = fmt.Sprintf("Top %d expenses", len(s.TopExpenses))

	byCategory := Table{Title: "Spending by category", Columns: []string{"Category", "Total"}}
	for _, c := range s.ByCategory {
		byCategory.Rows = append(byCategory.Rows, []string{c.Category, money(c.Total)})
	}

	notes := []string{
		"Total spending: " + money(s.Total),
		"Transactions: " + strconv.Itoa(s.TransactionCount),
	}
	if !s.From.IsZero() {
		notes = append(notes, fmt.Sprintf("Period: %s to %s", s.From.Format(dateLayout), s.To.Format(dateLayout)))
	}

	return View{
		Name:    "summary",
		Title:   "Spending summary",
		Notes:   notes,
		Tables:  []Table{top, byCategory},
		Data:    s,
		Records: records,
	}
}

// CategoryView renders total, mean and count per category.
func CategoryView(summary []models.CategoryAggregate) View {
	records := make([]categoryRecord, len(summary))
	table := Table{Columns: []string{"Category", "Total", "Mean", "Count"}}
	for i, c := range summary {
		records[i] = categoryRecord{Category: c.Category, Total: money(c.Total), Mean: money(c.Mean), Count: c.Count}
		table.Rows = append(table.Rows, []string{c.Category, records[i].Total, records[i].Mean, strconv.Itoa(c.Count)})
	}
	return View{Name: "category", Title: "Category summary", Tables: []Table{table}, Data: summary, Records: records}
}

// MonthlyView renders the monthly trend.
func MonthlyView(trend []models.MonthlyTotal) View {
	records := make([]monthRecord, len(trend))
	table := Table{Columns: []string{"Month", "Total"}}
	for i, m := range trend {
		records[i] = monthRecord{Month: m.Month, Total: money(m.Total)}
		table.Rows = append(table.Rows, []string{m.Month, records[i].Total})
	}
	return View{Name: "monthly", Title: "Monthly spending trend", Tables: []Table{table}, Data: trend, Records: records}
}

// WeeklyView renders the mean spend per weekday.
func WeeklyView(pattern []models.WeekdayMean) View {
	records := make([]weekdayRecord, len(pattern))
	table := Table{Columns: []string{"Day", "Mean"}}
	for i, d := range pattern {
		records[i] = weekdayRecord{Day: d.Day, Mean: money(d.Mean)}
		table.Rows = append(table.Rows, []string{d.Day, records[i].Mean})
	}
	return View{Name: "weekly", Title: "Weekly spending pattern", Tables: []Table{table}, Data: pattern, Records: records}
}

// AnomaliesView renders the flagged transactions.
func AnomaliesView(anomalies []models.RankedTransaction) View {
	records, table := transactionRecords(anomalies)
	notes := []string{fmt.Sprintf("%d unusual transactions", len(anomalies))}
	if len(anomalies) == 0 {
		notes = []string{"No unusual transactions found"}
	}
	return View{Name: "anomalies", Title: "Unusual transactions", Notes: notes, Tables: []Table{table}, Data: anomalies, Records: records}
}

// SavingsView renders a savings check.
func SavingsView(result advisor.Result) View {
	records := make([]cutRecord, len(result.SuggestedCuts))
	table := Table{Title: "Suggested cuts", Columns: []string{"Category", "Suggested cut"}}
	for i, c := range result.SuggestedCuts {
		records[i] = cutRecord{Category: c.Category, SuggestedCut: money(c.Amount)}
		table.Rows = append(table.Rows, []string{c.Category, records[i].SuggestedCut})
	}

	view := View{
		Name:  "savings",
		Title: "Savings goal",
		Notes: []string{
			"Income: " + money(result.Income),
			"Goal: " + money(result.Goal),
			"Total spending: " + money(result.Total),
			result.Message,
		},
		Data:    result,
		Records: records,
	}
	if len(records) > 0 {
		view.Tables = []Table{table}
	}
	return view
}

// FeaturesView renders the monthly feature rows used for training.
func FeaturesView(rows []models.MonthlyFeatureRow) View {
	records := make([]featureRecord, len(rows))
	table := Table{Columns: []string{"Month", "Category", "Total spend", "Transactions", "Avg spend"}}
	for i, r := range rows {
		records[i] = featureRecord{
			Month:            r.Month,
			Category:         r.Category,
			TotalSpend:       money(r.TotalSpend),
			TransactionCount: r.TransactionCount,
			AvgSpend:         money(r.AvgSpend),
		}
		table.Rows = append(table.Rows, []string{
			r.Month, r.Category, records[i].TotalSpend, strconv.Itoa(r.TransactionCount), records[i].AvgSpend,
		})
	}
	return View{Name: "features", Title: "Monthly features", Tables: []Table{table}, Data: rows, Records: records}
}

// ForecastView renders a category forecast.
func ForecastView(f forecast.Forecast) View {
	coefficients := Table{Title: "Model", Columns: []string{"Term", "Value"}}
	coefficients.Rows = append(coefficients.Rows, []string{"intercept", strconv.FormatFloat(f.Model.Intercept, 'f', 4, 64)})
	for i, name := range forecast.FeatureNames {
		if i < len(f.Model.Coefficients) {
			coefficients.Rows = append(coefficients.Rows, []string{name, strconv.FormatFloat(f.Model.Coefficients[i], 'f', 4, 64)})
		}
	}

	mse := strconv.FormatFloat(f.Model.MSE, 'f', 2, 64)
	return View{
		Name:  "forecast",
		Title: "Forecast for " + f.Model.Category,
		Notes: []string{
			fmt.Sprintf("Trained on %d months, tested on %d (MSE %s)", f.Model.TrainSize, f.Model.TestSize, mse),
			fmt.Sprintf("Inputs: month %d, %d transactions, average %s", f.MonthNumber, f.TransactionCount, money(f.AvgSpend)),
			fmt.Sprintf("Predicted spend for %s: %s", f.Month, money(f.Prediction)),
		},
		Tables: []Table{coefficients},
		Data:   f,
		Records: []forecastRecord{{
			Category:         f.Model.Category,
			Month:            f.Month,
			TransactionCount: f.TransactionCount,
			AvgSpend:         money(f.AvgSpend),
			Prediction:       money(f.Prediction),
			MSE:              mse,
		}},
	}
}

type historyData struct {
	Forecasts     []history.ForecastRun  `json:"forecasts" yaml:"forecasts"`
	SavingsChecks []history.SavingsCheck `json:"savings_checks" yaml:"savings_checks"`
}

// HistoryView renders logged forecasts and savings checks. The CSV form
// lists forecasts only.
func HistoryView(forecasts []history.ForecastRun, checks []history.SavingsCheck) View {
	runs := Table{Title: "Forecasts", Columns: []string{"When", "Category", "Month", "Prediction", "MSE"}}
	records := make([]forecastRecord, len(forecasts))
	for i, f := range forecasts {
		mse := strconv.FormatFloat(f.MSE, 'f', 2, 64)
		records[i] = forecastRecord{Category: f.Category, Month: f.Month, Prediction: money(f.Prediction), MSE: mse}
		runs.Rows = append(runs.Rows, []string{f.CreatedAt.Format("2006-01-02 15:04"), f.Category, f.Month, money(f.Prediction), mse})
	}

	savings := Table{Title: "Savings checks", Columns: []string{"When", "Income", "Goal", "Total", "On track"}}
	for _, c := range checks {
		savings.Rows = append(savings.Rows, []string{
			c.CreatedAt.Format("2006-01-02 15:04"), money(c.Income), money(c.Goal), money(c.Total), strconv.FormatBool(c.OnTrack),
		})
	}

	return View{
		Name:    "history",
		Title:   "History",
		Tables:  []Table{runs, savings},
		Data:    historyData{Forecasts: forecasts, SavingsChecks: checks},
		Records: records,
	}
}

// PreviewView shows the header and the first limit data rows of a raw CSV
// document; a negative limit shows every row. records[0] is the header.
func PreviewView(source string, records [][]string, limit int) View {
	var header []string
	var rows [][]string
	if len(records) > 0 {
		header, rows = records[0], records[1:]
	}
	total := len(rows)
	if limit >= 0 && limit < len(rows) {
		rows = rows[:limit]
	}

	data := make([]map[string]string, len(rows))
	for i, row := range rows {
		data[i] = make(map[string]string, len(header))
		for j, col := range header {
			if j < len(row) {
				data[i][col] = row[j]
			}
		}
	}

	return View{
		Name:   "preview",
		Title:  "Preview of " + source,
		Notes:  []string{fmt.Sprintf("Showing %d of %d rows", len(rows), total)},
		Tables: []Table{{Columns: header, Rows: rows}},
		Data:   data,
	}
}
