package models

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestNewTable_CopiesInput(t *testing.T) {
	rows := []Transaction{
		{Date: day("2024-01-05"), Amount: decimal.NewFromInt(10), Category: "Food", Description: "Lunch"},
		{Date: day("2024-02-01"), Amount: decimal.NewFromInt(900), Category: "Rent", Description: "Flat"},
	}

	table := NewTable(rows)
	rows[0].Category = "Mutated"

	require.Equal(t, 2, table.Len())
	assert.Equal(t, "Food", table.At(0).Category)

	out := table.Rows()
	out[1].Amount = decimal.Zero
	assert.True(t, table.At(1).Amount.Equal(decimal.NewFromInt(900)))
}

func TestTable_DateRange(t *testing.T) {
	table := NewTable([]Transaction{
		{Date: day("2024-03-10"), Amount: decimal.NewFromInt(1), Category: "Travel"},
		{Date: day("2024-01-02"), Amount: decimal.NewFromInt(2), Category: "Food"},
		{Date: day("2024-02-20"), Amount: decimal.NewFromInt(3), Category: "Travel"},
	})

	first, last := table.DateRange()
	assert.Equal(t, day("2024-01-02"), first)
	assert.Equal(t, day("2024-03-10"), last)
	assert.Equal(t, "2024-03", table.At(0).Month())
}

func TestTable_Empty(t *testing.T) {
	var table Table
	assert.True(t, table.IsEmpty())
	assert.Empty(t, table.Rows())

	first, last := table.DateRange()
	assert.True(t, first.IsZero())
	assert.True(t, last.IsZero())
}
