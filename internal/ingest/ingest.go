// Package ingest reads expense CSV exports and cleans them into a
// models.Table: rows with missing or unparseable fields are dropped, amounts
// must be positive, categories are canonicalised and blank descriptions get a
// placeholder.
package ingest

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"unicode"
	"unicode/utf8"

	"fjacquet/expense-insights/internal/analyticserror"
	"fjacquet/expense-insights/internal/dateutils"
	"fjacquet/expense-insights/internal/fileutils"
	"fjacquet/expense-insights/internal/logging"
	"fjacquet/expense-insights/internal/models"

	"github.com/gocarina/gocsv"
	"github.com/shopspring/decimal"
)

var utf8BOM = []byte("\ufeff")

// RawRecord is one CSV row as read, before any coercion.
type RawRecord struct {
	Date        string `csv:"Date"`
	Amount      string `csv:"Amount"`
	Category    string `csv:"Category"`
	Description string `csv:"Description"`
}

// DropReason explains why a row did not survive cleaning.
type DropReason string

const (
	ReasonMissingField      DropReason = "missing_field"
	ReasonInvalidAmount     DropReason = "invalid_amount"
	ReasonNonPositiveAmount DropReason = "non_positive_amount"
	ReasonInvalidDate       DropReason = "invalid_date"
)

// DroppedRow records a rejected row. Line is the 1-based data row number
// (the header is not counted).
type DroppedRow struct {
	Line   int
	Reason DropReason
	Detail string
}

// Report summarises a cleaning pass.
type Report struct {
	Source  string
	Read    int
	Kept    int
	Dropped []DroppedRow
}

// Options tune parsing. Zero values select the defaults.
type Options struct {
	Delimiter   rune
	DateLayouts []string
}

// Loader turns CSV input into a cleaned table.
type Loader struct {
	opts   Options
	logger logging.Logger
}

// NewLoader creates a Loader.
func NewLoader(opts Options, logger logging.Logger) *Loader {
	if opts.Delimiter == 0 {
		opts.Delimiter = ','
	}
	return &Loader{opts: opts, logger: logger}
}

// LoadFile reads and cleans the CSV file at path.
func (l *Loader) LoadFile(path string) (models.Table, Report, error) {
	data, err := fileutils.ReadFile(path)
	if err != nil {
		return models.Table{}, Report{Source: path}, fmt.Errorf("error opening CSV file: %w", err)
	}
	return l.LoadBytes(path, data)
}

// Load reads and cleans CSV data from r.
func (l *Loader) Load(r io.Reader) (models.Table, Report, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return models.Table{}, Report{}, fmt.Errorf("error reading CSV input: %w", err)
	}
	return l.LoadBytes("", data)
}

// LoadBytes cleans an in-memory CSV document; source names it in logs and
// errors. LoadFile and Load both end up here.
func (l *Loader) LoadBytes(source string, data []byte) (models.Table, Report, error) {
	log := l.logger.WithField(logging.FieldInputFile, source)

	if err := l.checkHeader(data); err != nil {
		log.WithError(err).Error("Rejected CSV input")
		return models.Table{}, Report{Source: source}, err
	}

	records, err := l.readRecords(data)
	if err != nil {
		log.WithError(err).Error("Failed to parse CSV input")
		return models.Table{}, Report{Source: source}, err
	}

	table, report := l.Clean(records)
	report.Source = source

	for _, dropped := range report.Dropped {
		log.Debug("Dropped row",
			logging.F(logging.FieldRow, dropped.Line),
			logging.F(logging.FieldReason, string(dropped.Reason)),
			logging.F("detail", dropped.Detail))
	}
	log.Info("Cleaned transactions",
		logging.F(logging.FieldCount, report.Kept),
		logging.F(logging.FieldDropped, len(report.Dropped)))

	if table.IsEmpty() {
		return models.Table{}, report, &analyticserror.EmptyDatasetError{
			Source:  source,
			Dropped: len(report.Dropped),
		}
	}
	return table, report, nil
}

func (l *Loader) newReader(data []byte) *csv.Reader {
	reader := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(data, utf8BOM)))
	reader.Comma = l.opts.Delimiter
	reader.FieldsPerRecord = -1
	return reader
}

// checkHeader verifies the required columns are present. Description is
// optional.
func (l *Loader) checkHeader(data []byte) error {
	header, err := l.newReader(data).Read()
	if err == io.EOF {
		return &analyticserror.MissingColumnsError{
			Missing: []string{models.ColumnDate, models.ColumnAmount, models.ColumnCategory},
		}
	}
	if err != nil {
		return fmt.Errorf("error reading CSV header: %w", err)
	}

	present := make(map[string]bool, len(header))
	for _, column := range header {
		present[column] = true
	}

	var missing []string
	for _, required := range []string{models.ColumnDate, models.ColumnAmount, models.ColumnCategory} {
		if !present[required] {
			missing = append(missing, required)
		}
	}
	if len(missing) > 0 {
		return &analyticserror.MissingColumnsError{Missing: missing}
	}
	return nil
}

func (l *Loader) readRecords(data []byte) ([]RawRecord, error) {
	var records []RawRecord
	if err := gocsv.UnmarshalCSV(l.newReader(data), &records); err != nil {
		if err == gocsv.ErrEmptyCSVFile {
			return nil, nil
		}
		return nil, fmt.Errorf("error parsing CSV data: %w", err)
	}
	return records, nil
}

// Clean applies the cleaning rules to raw records, preserving their order.
// It never fails: rejected rows are listed in the report.
func (l *Loader) Clean(records []RawRecord) (models.Table, Report) {
	report := Report{Read: len(records)}
	rows := make([]models.Transaction, 0, len(records))

	for i, record := range records {
		tx, reason, detail := l.cleanRecord(record)
		if reason != "" {
			report.Dropped = append(report.Dropped, DroppedRow{Line: i + 1, Reason: reason, Detail: detail})
			continue
		}
		rows = append(rows, tx)
	}

	report.Kept = len(rows)
	return models.NewTable(rows), report
}

func (l *Loader) cleanRecord(record RawRecord) (models.Transaction, DropReason, string) {
	rawDate := strings.TrimSpace(record.Date)
	rawAmount := strings.TrimSpace(record.Amount)
	category := NormalizeCategory(record.Category)

	switch {
	case rawDate == "":
		return models.Transaction{}, ReasonMissingField, models.ColumnDate
	case rawAmount == "":
		return models.Transaction{}, ReasonMissingField, models.ColumnAmount
	case category == "":
		return models.Transaction{}, ReasonMissingField, models.ColumnCategory
	}

	amount, err := ParseAmount(rawAmount)
	if err != nil {
		return models.Transaction{}, ReasonInvalidAmount, rawAmount
	}
	if !amount.IsPositive() {
		return models.Transaction{}, ReasonNonPositiveAmount, rawAmount
	}

	date, _, err := dateutils.ParseDate(rawDate, l.opts.DateLayouts)
	if err != nil {
		return models.Transaction{}, ReasonInvalidDate, rawDate
	}

	description := strings.TrimSpace(record.Description)
	if description == "" {
		description = models.DefaultDescription
	}

	return models.Transaction{
		Date:        date,
		Amount:      amount,
		Category:    category,
		Description: description,
	}, "", ""
}

// ParseAmount parses a decimal number. Thousands separators and currency
// symbols are rejected.
func ParseAmount(raw string) (decimal.Decimal, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return decimal.Zero, fmt.Errorf("empty amount")
	}
	amount, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q: %w", raw, err)
	}
	return amount, nil
}

// NormalizeCategory trims the category and rewrites it with an upper-case
// first letter and lower-case remainder, so "  fOOD " groups with "Food".
func NormalizeCategory(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}
	first, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(first)) + strings.ToLower(s[size:])
}
