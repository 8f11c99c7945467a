// Package dateutils parses the loosely formatted dates found in expense
// exports and derives the calendar keys the analytics group by.
package dateutils

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Common date layouts.
const (
	DateLayoutISO      = "2006-01-02"
	DateLayoutFull     = "2006-01-02 15:04:05"
	DateLayoutRFC3339  = time.RFC3339
	DateLayoutUS       = "01/02/2006"
	DateLayoutEuropean = "02.01.2006"
	DateLayoutSlashISO = "2006/01/02"
	DateLayoutDashEU   = "02-01-2006"
	DateLayoutShort    = "Jan 2, 2006"
	DateLayoutLong     = "January 2, 2006"
	DateLayoutDayFirst = "2 Jan 2006"
	MonthLayout        = "2006-01"
)

// DefaultLayouts is the order in which layouts are tried. Slash dates are
// read month-first, like most spreadsheet exports.
var DefaultLayouts = []string{
	DateLayoutISO,
	DateLayoutFull,
	DateLayoutRFC3339,
	DateLayoutUS,
	DateLayoutEuropean,
	DateLayoutSlashISO,
	DateLayoutDashEU,
	DateLayoutShort,
	DateLayoutLong,
	DateLayoutDayFirst,
}

var whitespace = regexp.MustCompile(`\s+`)

// CleanDateString trims and collapses internal whitespace.
func CleanDateString(dateStr string) string {
	return whitespace.ReplaceAllString(strings.TrimSpace(dateStr), " ")
}

// ParseDate parses dateStr with the first matching layout and returns the
// calendar date at midnight UTC together with the layout used. A nil or
// empty layouts slice means DefaultLayouts.
func ParseDate(dateStr string, layouts []string) (time.Time, string, error) {
	clean := CleanDateString(dateStr)
	if clean == "" {
		return time.Time{}, "", fmt.Errorf("empty date")
	}
	if len(layouts) == 0 {
		layouts = DefaultLayouts
	}

	for _, layout := range layouts {
		if t, err := time.Parse(layout, clean); err == nil {
			return TruncateToDay(t), layout, nil
		}
	}
	return time.Time{}, "", fmt.Errorf("unable to parse date: %s", dateStr)
}

// TruncateToDay drops the time-of-day and zone, keeping the calendar date as
// written.
func TruncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// MonthKey formats the "YYYY-MM" key of t.
func MonthKey(t time.Time) string {
	return t.Format(MonthLayout)
}

// ParseMonthKey parses a "YYYY-MM" key back into the first day of the month.
func ParseMonthKey(key string) (time.Time, error) {
	t, err := time.Parse(MonthLayout, key)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid month key %q: %w", key, err)
	}
	return t, nil
}

// NextMonth returns the first day of the month after t.
func NextMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month()+1, 1, 0, 0, 0, 0, time.UTC)
}

// Weekdays lists the days of the week starting on Monday.
var Weekdays = []time.Weekday{
	time.Monday, time.Tuesday, time.Wednesday, time.Thursday,
	time.Friday, time.Saturday, time.Sunday,
}

// WeekdayIndex returns the Monday-based position of d (Monday = 0).
func WeekdayIndex(d time.Weekday) int {
	return (int(d) + 6) % 7
}
