package forecast

import (
	"fmt"
	"testing"
	"time"

	"fjacquet/expense-insights/internal/analyticserror"
	"fjacquet/expense-insights/internal/logging"
	"fjacquet/expense-insights/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// linearRows builds n monthly rows starting 2023-01 whose total spend is an
// exact linear function of the features.
func linearRows(category string, n int) []models.MonthlyFeatureRow {
	start := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	rows := make([]models.MonthlyFeatureRow, n)
	for i := 0; i < n; i++ {
		month := start.AddDate(0, i, 0)
		count := 1 + (i*7)%5
		avg := 10 + (i*3)%7
		total := 50 + 5*int(month.Month()) + 3*count + 2*avg
		rows[i] = models.MonthlyFeatureRow{
			Month:            month.Format("2006-01"),
			Category:         category,
			TotalSpend:       decimal.NewFromInt(int64(total)),
			TransactionCount: count,
			AvgSpend:         decimal.NewFromInt(int64(avg)),
		}
	}
	return rows
}

func newTestForecaster() (*Forecaster, *logging.MockLogger) {
	logger := logging.NewMockLogger()
	return NewForecaster(DefaultOptions(), logger), logger
}

func TestTrain_RecoversLinearRelation(t *testing.T) {
	f, logger := newTestForecaster()
	rows := append(linearRows("Food", 20), linearRows("Rent", 3)...)

	model, err := f.Train(rows, "Food")
	require.NoError(t, err)

	assert.Equal(t, 16, model.TrainSize)
	assert.Equal(t, 4, model.TestSize)
	assert.InDelta(t, 50, model.Intercept, 1e-6)
	assert.InDeltaSlice(t, []float64{5, 3, 2}, model.Coefficients, 1e-6)
	assert.InDelta(t, 0, model.MSE, 1e-9)
	assert.InDelta(t, 50+5*7+3*4+2*12, PredictNextMonth(model, 7, 4, 12), 1e-6)

	assert.True(t, logger.HasEntry("INFO", "Trained forecast model"))
}

func TestTrain_MatchesCanonicalCategory(t *testing.T) {
	f, _ := newTestForecaster()
	rows := linearRows("Food", 10)

	want, err := f.Train(rows, "Food")
	require.NoError(t, err)

	for _, requested := range []string{"food", " Food ", "FOOD"} {
		t.Run(requested, func(t *testing.T) {
			model, err := f.Train(rows, requested)
			require.NoError(t, err)
			assert.Equal(t, "Food", model.Category)
			assert.Equal(t, want.Coefficients, model.Coefficients)
		})
	}
}

func TestTrain_IsReproducible(t *testing.T) {
	f, _ := newTestForecaster()
	rows := linearRows("Food", 20)
	// Perturb the target so the test error is non-zero.
	for i := range rows {
		rows[i].TotalSpend = rows[i].TotalSpend.Add(decimal.NewFromInt(int64((i * 13) % 9)))
	}

	first, err := f.Train(rows, "Food")
	require.NoError(t, err)
	second, err := f.Train(rows, "Food")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Greater(t, first.MSE, 0.0)
}

func TestTrain_InsufficientData(t *testing.T) {
	f, _ := newTestForecaster()
	rows := linearRows("Food", 1)

	for _, category := range []string{"Food", "Unknown"} {
		_, err := f.Train(rows, category)
		require.Error(t, err)
		assert.ErrorIs(t, err, analyticserror.ErrInsufficientData)

		var insufficient *analyticserror.InsufficientDataError
		require.ErrorAs(t, err, &insufficient)
		assert.Equal(t, MinRows, insufficient.Required)
	}
}

func TestTrain_RankDeficientFeatures(t *testing.T) {
	f, _ := newTestForecaster()

	t.Run("constant feature gets zero coefficient", func(t *testing.T) {
		rows := linearRows("Food", 12)
		for i := range rows {
			rows[i].TransactionCount = 2
			avg := rows[i].AvgSpend.IntPart()
			month := int64(i + 1)
			rows[i].TotalSpend = decimal.NewFromInt(7 + 4*month + 3*avg)
		}

		model, err := f.Train(rows, "Food")
		require.NoError(t, err)
		assert.Equal(t, 0.0, model.Coefficients[1])
		assert.InDelta(t, 4, model.Coefficients[0], 1e-6)
		assert.InDelta(t, 3, model.Coefficients[2], 1e-6)
		assert.InDelta(t, 0, model.MSE, 1e-9)
	})

	t.Run("collinear feature gets zero coefficient", func(t *testing.T) {
		rows := linearRows("Food", 12)
		for i := range rows {
			month := int64(i + 1)
			rows[i].AvgSpend = decimal.NewFromInt(10 * month)
			count := int64(rows[i].TransactionCount)
			rows[i].TotalSpend = decimal.NewFromInt(7 + 4*month + 3*count)
		}

		model, err := f.Train(rows, "Food")
		require.NoError(t, err)
		assert.InDelta(t, 4, model.Coefficients[0], 1e-6)
		assert.InDelta(t, 3, model.Coefficients[1], 1e-6)
		assert.Equal(t, 0.0, model.Coefficients[2])
		assert.InDelta(t, 7, model.Intercept, 1e-6)
	})

	t.Run("single training row predicts its own spend", func(t *testing.T) {
		rows := linearRows("Food", 2)
		model, err := f.Train(rows, "Food")
		require.NoError(t, err)
		assert.Equal(t, 1, model.TrainSize)
		assert.Equal(t, 1, model.TestSize)
		assert.Equal(t, []float64{0, 0, 0}, model.Coefficients)

		trainTotal := rows[0].TotalSpend.InexactFloat64()
		if model.Intercept != trainTotal {
			trainTotal = rows[1].TotalSpend.InexactFloat64()
		}
		assert.Equal(t, trainTotal, model.Intercept)
	})
}

func TestFitOLS(t *testing.T) {
	tests := []struct {
		name          string
		x             [][]float64
		y             []float64
		wantIntercept float64
		wantCoef      []float64
	}{
		{
			name:          "exact line",
			x:             [][]float64{{1}, {2}, {3}, {4}},
			y:             []float64{3, 5, 7, 9},
			wantIntercept: 1,
			wantCoef:      []float64{2},
		},
		{
			name:          "noisy line",
			x:             [][]float64{{0}, {1}, {2}},
			y:             []float64{1, 2, 2},
			wantIntercept: 7.0 / 6.0,
			wantCoef:      []float64{0.5},
		},
		{
			name:          "duplicated column",
			x:             [][]float64{{1, 1}, {2, 2}, {3, 3}},
			y:             []float64{2, 4, 6},
			wantIntercept: 0,
			wantCoef:      []float64{2, 0},
		},
		{
			name:          "all features constant",
			x:             [][]float64{{0.1, 5}, {0.1, 5}, {0.1, 5}},
			y:             []float64{1, 2, 3},
			wantIntercept: 2,
			wantCoef:      []float64{0, 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			intercept, coef := fitOLS(tt.x, tt.y)
			assert.InDelta(t, tt.wantIntercept, intercept, 1e-9)
			assert.InDeltaSlice(t, tt.wantCoef, coef, 1e-9)
		})
	}
}

func TestSplit(t *testing.T) {
	tests := []struct {
		n         int
		testSize  float64
		wantTrain int
		wantTest  int
	}{
		{n: 20, testSize: 0.2, wantTrain: 16, wantTest: 4},
		{n: 21, testSize: 0.2, wantTrain: 16, wantTest: 5},
		{n: 3, testSize: 0.2, wantTrain: 2, wantTest: 1},
		{n: 2, testSize: 0.2, wantTrain: 1, wantTest: 1},
		{n: 2, testSize: 0.9, wantTrain: 1, wantTest: 1},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("n=%d size=%.1f", tt.n, tt.testSize), func(t *testing.T) {
			train, test := Split(tt.n, tt.testSize, DefaultSeed)
			assert.Len(t, train, tt.wantTrain)
			assert.Len(t, test, tt.wantTest)

			seen := make(map[int]bool)
			for _, i := range append(append([]int{}, train...), test...) {
				assert.False(t, seen[i], "index %d used twice", i)
				seen[i] = true
			}
			assert.Len(t, seen, tt.n)

			train2, test2 := Split(tt.n, tt.testSize, DefaultSeed)
			assert.Equal(t, train, train2)
			assert.Equal(t, test, test2)
		})
	}
}

func TestBuildFeatures(t *testing.T) {
	d := func(s string) time.Time {
		v, _ := time.Parse("2006-01-02", s)
		return v
	}
	table := models.NewTable([]models.Transaction{
		{Date: d("2024-02-03"), Amount: decimal.NewFromInt(30), Category: "Food"},
		{Date: d("2024-01-10"), Amount: decimal.NewFromInt(10), Category: "Food"},
		{Date: d("2024-01-20"), Amount: decimal.NewFromInt(20), Category: "Food"},
		{Date: d("2024-01-05"), Amount: decimal.NewFromInt(900), Category: "Rent"},
	})

	rows := BuildFeatures(table)
	require.Len(t, rows, 3)

	assert.Equal(t, "2024-01", rows[0].Month)
	assert.Equal(t, "Food", rows[0].Category)
	assert.Equal(t, 2, rows[0].TransactionCount)
	assert.True(t, rows[0].TotalSpend.Equal(decimal.NewFromInt(30)))
	assert.True(t, rows[0].AvgSpend.Equal(decimal.NewFromInt(15)))

	assert.Equal(t, "Rent", rows[1].Category)
	assert.Equal(t, "2024-02", rows[2].Month)
}

func TestForecastCategory(t *testing.T) {
	f, _ := newTestForecaster()

	var txs []models.Transaction
	for m := 1; m <= 12; m++ {
		for k := 0; k <= m%3; k++ {
			txs = append(txs, models.Transaction{
				Date:     time.Date(2024, time.Month(m), 5+k, 0, 0, 0, 0, time.UTC),
				Amount:   decimal.NewFromInt(int64(10*m + k)),
				Category: "Food",
			})
		}
	}

	result, err := f.ForecastCategory(models.NewTable(txs), "Food")
	require.NoError(t, err)

	assert.Equal(t, "2025-01", result.Month)
	assert.Equal(t, 1, result.MonthNumber)
	// December has 12%3+1 = 1 transaction of 120.
	assert.Equal(t, 1, result.TransactionCount)
	assert.True(t, result.AvgSpend.Equal(decimal.NewFromInt(120)))

	want := PredictNextMonth(result.Model, 1, 1, 120)
	assert.InDelta(t, want, result.Prediction.InexactFloat64(), 0.005)

	lower, err := f.ForecastCategory(models.NewTable(txs), "  food")
	require.NoError(t, err)
	assert.Equal(t, result, lower)

	_, err = f.ForecastCategory(models.NewTable(txs), "Travel")
	assert.ErrorIs(t, err, analyticserror.ErrInsufficientData)
}

func TestNewForecasterDefaults(t *testing.T) {
	f := NewForecaster(Options{TestSize: 1.5, Seed: 7}, logging.NewMockLogger())
	assert.Equal(t, DefaultTestSize, f.opts.TestSize)
	assert.Equal(t, int64(7), f.opts.Seed)
}
