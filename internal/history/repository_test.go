package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"fjacquet/expense-insights/internal/advisor"
	"fjacquet/expense-insights/internal/analyticserror"
	"fjacquet/expense-insights/internal/forecast"
	"fjacquet/expense-insights/internal/logging"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepository(t *testing.T) *Repository {
	t.Helper()
	repo, err := NewRepository(filepath.Join(t.TempDir(), "data", "history.db"), logging.NewMockLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })

	clock := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	repo.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	return repo
}

func sampleForecast(category string) forecast.Forecast {
	return forecast.Forecast{
		Model: forecast.Model{
			Category:     category,
			Intercept:    10,
			Coefficients: []float64{1, 2, 3},
			TrainSize:    8,
			TestSize:     2,
			MSE:          12.5,
		},
		Month:      "2024-07",
		Prediction: decimal.RequireFromString("321.45"),
	}
}

func TestRecordAndListForecasts(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	first, err := repo.RecordForecast(ctx, sampleForecast("Food"))
	require.NoError(t, err)
	assert.NotEmpty(t, first.ID)
	_, err = repo.RecordForecast(ctx, sampleForecast("Rent"))
	require.NoError(t, err)

	runs, err := repo.RecentForecasts(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "Rent", runs[0].Category)
	assert.Equal(t, "Food", runs[1].Category)
	assert.Equal(t, first.ID, runs[1].ID)
	assert.True(t, runs[1].Prediction.Equal(decimal.RequireFromString("321.45")))
	assert.Equal(t, 12.5, runs[1].MSE)
	assert.Equal(t, 8, runs[1].TrainSize)
	assert.True(t, first.CreatedAt.Equal(runs[1].CreatedAt))

	limited, err := repo.RecentForecasts(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestRecordAndListSavingsChecks(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	result := advisor.Result{
		Income:  decimal.NewFromInt(50000),
		Goal:    decimal.NewFromInt(10000),
		Allowed: decimal.NewFromInt(40000),
		Total:   decimal.NewFromInt(45000),
		Gap:     decimal.NewFromInt(5000),
		Message: "You need to reduce ₹5000.00 to meet your goal.",
	}
	_, err := repo.RecordSavingsCheck(ctx, result)
	require.NoError(t, err)

	checks, err := repo.RecentSavingsChecks(ctx, 5)
	require.NoError(t, err)
	require.Len(t, checks, 1)
	assert.False(t, checks[0].OnTrack)
	assert.True(t, checks[0].Gap.Equal(decimal.NewFromInt(5000)))
	assert.True(t, checks[0].Income.Equal(decimal.NewFromInt(50000)))
	assert.Equal(t, result.Message, checks[0].Message)
}

func TestRecentRejectsBadLimit(t *testing.T) {
	repo := newTestRepository(t)
	_, err := repo.RecentForecasts(context.Background(), 0)
	assert.ErrorIs(t, err, analyticserror.ErrInvalidArgument)
	_, err = repo.RecentSavingsChecks(context.Background(), -1)
	assert.ErrorIs(t, err, analyticserror.ErrInvalidArgument)
}

func TestMigrationsAreIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	repo, err := NewRepository(path, logging.NewMockLogger())
	require.NoError(t, err)
	require.NoError(t, repo.Close())

	require.NoError(t, RunMigrations(path))

	reopened, err := NewRepository(path, logging.NewMockLogger())
	require.NoError(t, err)
	require.NoError(t, reopened.Close())
}
