// Package models holds the transaction table and the derived aggregate types
// shared by the ingestion, analytics, advisor and forecast packages.
package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is a single cleaned spend record. Amount is always positive and
// Date carries no time-of-day.
type Transaction struct {
	Date        time.Time       `json:"date" yaml:"date"`
	Amount      decimal.Decimal `json:"amount" yaml:"amount"`
	Category    string          `json:"category" yaml:"category"`
	Description string          `json:"description" yaml:"description"`
}

// Month returns the calendar month key, "YYYY-MM".
func (t Transaction) Month() string {
	return t.Date.Format(MonthLayout)
}

// Table is an ordered, read-only collection of cleaned transactions. It is
// built once by ingestion and shared by every analysis; accessors hand out
// copies so no caller can mutate another's view.
type Table struct {
	rows []Transaction
}

// NewTable copies rows into a new Table.
func NewTable(rows []Transaction) Table {
	copied := make([]Transaction, len(rows))
	copy(copied, rows)
	return Table{rows: copied}
}

// Len returns the number of transactions.
func (t Table) Len() int {
	return len(t.rows)
}

// IsEmpty reports whether the table has no rows.
func (t Table) IsEmpty() bool {
	return len(t.rows) == 0
}

// At returns the i-th transaction by value.
func (t Table) At(i int) Transaction {
	return t.rows[i]
}

// Rows returns a copy of the underlying rows in table order.
func (t Table) Rows() []Transaction {
	out := make([]Transaction, len(t.rows))
	copy(out, t.rows)
	return out
}

// DateRange returns the earliest and latest transaction dates. Both are zero
// for an empty table.
func (t Table) DateRange() (time.Time, time.Time) {
	var first, last time.Time
	for i, row := range t.rows {
		if i == 0 || row.Date.Before(first) {
			first = row.Date
		}
		if i == 0 || row.Date.After(last) {
			last = row.Date
		}
	}
	return first, last
}
