package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CategoryTotal is the summed spend of one category.
type CategoryTotal struct {
	Category string          `json:"category" yaml:"category" csv:"Category"`
	Total    decimal.Decimal `json:"total" yaml:"total" csv:"Total"`
}

// CategoryAggregate is the {total, mean, count} summary of one category.
type CategoryAggregate struct {
	Category string          `json:"category" yaml:"category" csv:"Category"`
	Total    decimal.Decimal `json:"total" yaml:"total" csv:"Total"`
	Mean     decimal.Decimal `json:"mean" yaml:"mean" csv:"Mean"`
	Count    int             `json:"count" yaml:"count" csv:"Count"`
}

// MonthlyTotal is the summed spend of one calendar month.
type MonthlyTotal struct {
	Month string          `json:"month" yaml:"month" csv:"Month"`
	Total decimal.Decimal `json:"total" yaml:"total" csv:"Total"`
}

// WeekdayMean is the mean transaction amount on one day of the week.
type WeekdayMean struct {
	Weekday time.Weekday    `json:"-" yaml:"-" csv:"-"`
	Day     string          `json:"day" yaml:"day" csv:"Day"`
	Mean    decimal.Decimal `json:"mean" yaml:"mean" csv:"Mean"`
}

// RankedTransaction is a transaction together with its position in the table
// it was selected from.
type RankedTransaction struct {
	Index       int       `json:"index" yaml:"index"`
	Transaction `yaml:",inline"`
}

// MonthlyFeatureRow is the per (month, category) feature record used to
// train spend forecasts.
type MonthlyFeatureRow struct {
	Month            string          `json:"month" yaml:"month" csv:"Month"`
	Category         string          `json:"category" yaml:"category" csv:"Category"`
	TotalSpend       decimal.Decimal `json:"total_spend" yaml:"total_spend" csv:"Total_Spend"`
	TransactionCount int             `json:"transaction_count" yaml:"transaction_count" csv:"Transaction_Count"`
	AvgSpend         decimal.Decimal `json:"avg_spend" yaml:"avg_spend" csv:"Avg_Spend"`
}

// SpendingSummary backs the dashboard summary view.
type SpendingSummary struct {
	Total            decimal.Decimal     `json:"total" yaml:"total"`
	TransactionCount int                 `json:"transaction_count" yaml:"transaction_count"`
	TopExpenses      []RankedTransaction `json:"top_expenses" yaml:"top_expenses"`
	ByCategory       []CategoryTotal     `json:"by_category" yaml:"by_category"`
	From             time.Time           `json:"from" yaml:"from"`
	To               time.Time           `json:"to" yaml:"to"`
}
