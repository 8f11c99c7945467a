package dateutils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		wantOK     bool
		wantDate   string
		wantLayout string
	}{
		{"ISO", "2023-01-15", true, "2023-01-15", DateLayoutISO},
		{"ISO with time", "2023-01-15 10:30:45", true, "2023-01-15", DateLayoutFull},
		{"RFC3339 keeps calendar date", "2023-01-15T23:30:00+05:00", true, "2023-01-15", DateLayoutRFC3339},
		{"US slashes are month first", "01/02/2023", true, "2023-01-02", DateLayoutUS},
		{"European dots", "15.01.2023", true, "2023-01-15", DateLayoutEuropean},
		{"month name", "Mar 5, 2024", true, "2024-03-05", DateLayoutShort},
		{"padded whitespace", "  2024-02-29  ", true, "2024-02-29", DateLayoutISO},
		{"invalid calendar date", "2023-02-30", false, "", ""},
		{"garbage", "yesterday", false, "", ""},
		{"empty", "   ", false, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, layout, err := ParseDate(tt.input, nil)
			if !tt.wantOK {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantDate, got.Format(DateLayoutISO))
			assert.Equal(t, tt.wantLayout, layout)
			assert.Equal(t, time.UTC, got.Location())
			assert.Zero(t, got.Hour())
		})
	}
}

func TestParseDate_CustomLayouts(t *testing.T) {
	got, _, err := ParseDate("02/01/2023", []string{"02/01/2006"})
	require.NoError(t, err)
	assert.Equal(t, time.January, got.Month())
	assert.Equal(t, 2, got.Day())

	_, _, err = ParseDate("2023-01-02", []string{"02/01/2006"})
	assert.Error(t, err)
}

func TestMonthHelpers(t *testing.T) {
	d := time.Date(2023, time.December, 31, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "2023-12", MonthKey(d))
	assert.Equal(t, time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC), NextMonth(d))

	parsed, err := ParseMonthKey("2024-07")
	require.NoError(t, err)
	assert.Equal(t, time.July, parsed.Month())

	_, err = ParseMonthKey("July")
	assert.Error(t, err)
}

func TestWeekdayIndex(t *testing.T) {
	for i, d := range Weekdays {
		assert.Equal(t, i, WeekdayIndex(d))
	}
	assert.Equal(t, 6, WeekdayIndex(time.Sunday))
}
