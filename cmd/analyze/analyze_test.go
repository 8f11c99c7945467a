package analyze

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"fjacquet/expense-insights/cmd/root"
	"fjacquet/expense-insights/internal/analyticserror"
	"fjacquet/expense-insights/internal/config"
	"fjacquet/expense-insights/internal/container"
	"fjacquet/expense-insights/internal/logging"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCSV = `Date,Amount,Category,Description
2024-01-05,25000,Rent,January rent
2024-01-08,10000,food,Groceries
2024-01-12,6000,Travel,Train
2024-01-20,4000,Fun,Concert
`

func setup(t *testing.T) *bytes.Buffer {
	t.Helper()
	c, err := container.NewContainerWithLogger(config.Default(), logging.NewMockLogger())
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "expenses.csv")
	require.NoError(t, os.WriteFile(path, []byte(sampleCSV), 0600))

	root.AppContainer = c
	root.SharedFlags = root.CommonFlags{Input: path, Format: "text"}
	view, income, goal, top = "summary", "", "", 0
	t.Cleanup(func() {
		_ = c.Close()
		root.AppContainer = nil
		root.SharedFlags = root.CommonFlags{}
		_ = Cmd.Flags().Set("top", "0")
		Cmd.Flags().Lookup("top").Changed = false
	})

	var out bytes.Buffer
	Cmd.SetOut(&out)
	Cmd.SetContext(context.Background())
	return &out
}

func TestAnalyze_Summary(t *testing.T) {
	out := setup(t)
	require.NoError(t, Cmd.RunE(Cmd, nil))

	text := out.String()
	assert.Contains(t, text, "Total spending: 45000.00")
	assert.Contains(t, text, "Top 4 expenses")
	assert.Contains(t, text, "Food")
}

func TestAnalyze_SavingsJSON(t *testing.T) {
	out := setup(t)
	view, income, goal = "savings", "50000", "10000"
	root.SharedFlags.Format = "json"

	require.NoError(t, Cmd.RunE(Cmd, nil))

	var decoded struct {
		OnTrack       bool   `json:"on_track"`
		Message       string `json:"message"`
		SuggestedCuts []struct {
			Category string `json:"category"`
		} `json:"suggested_cuts"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &decoded))
	assert.False(t, decoded.OnTrack)
	assert.Equal(t, "You need to reduce ₹5000.00 to meet your goal.", decoded.Message)
	require.Len(t, decoded.SuggestedCuts, 3)
	assert.Equal(t, "Rent", decoded.SuggestedCuts[0].Category)
}

func TestAnalyze_MonthlyCSV(t *testing.T) {
	out := setup(t)
	view = "monthly"
	root.SharedFlags.Format = "csv"

	require.NoError(t, Cmd.RunE(Cmd, nil))
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	assert.Equal(t, []string{"Month,Total", "2024-01,45000.00"}, lines)
}

func TestAnalyze_Errors(t *testing.T) {
	tests := []struct {
		name    string
		prepare func()
		target  error
	}{
		{name: "unknown view", prepare: func() { view = "forecast" }, target: analyticserror.ErrInvalidArgument},
		{name: "bad income", prepare: func() { view, income = "savings", "lots" }, target: analyticserror.ErrInvalidArgument},
		{name: "negative goal", prepare: func() { view, goal = "savings", "-5" }, target: analyticserror.ErrInvalidArgument},
		{name: "bad format", prepare: func() { root.SharedFlags.Format = "pdf" }, target: analyticserror.ErrInvalidArgument},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setup(t)
			tt.prepare()
			err := Cmd.RunE(Cmd, nil)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.target)
		})
	}
}

func TestAnalyze_NonPositiveTop(t *testing.T) {
	setup(t)
	require.NoError(t, Cmd.Flags().Set("top", "0"))

	err := Cmd.RunE(Cmd, nil)
	assert.ErrorIs(t, err, analyticserror.ErrInvalidArgument)
}

func TestAnalyze_MissingInput(t *testing.T) {
	setup(t)
	root.SharedFlags.Input = ""
	assert.Error(t, Cmd.RunE(Cmd, nil))
}
