package models

// CSV column names of the input contract.
const (
	ColumnDate        = "Date"
	ColumnAmount      = "Amount"
	ColumnCategory    = "Category"
	ColumnDescription = "Description"
)

// DefaultDescription replaces a missing or blank description.
const DefaultDescription = "No description"

// MonthLayout formats the calendar month key of a transaction.
const MonthLayout = "2006-01"

// File permissions
const (
	PermissionFile      = 0600
	PermissionDirectory = 0750
)
