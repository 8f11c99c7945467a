// Package forecast predicts next month's spend for a category with an
// ordinary least squares model over monthly features (calendar month number,
// transaction count, average spend).
package forecast

import (
	"math"
	"math/rand"

	"fjacquet/expense-insights/internal/analyticserror"
	"fjacquet/expense-insights/internal/dateutils"
	"fjacquet/expense-insights/internal/ingest"
	"fjacquet/expense-insights/internal/logging"
	"fjacquet/expense-insights/internal/models"

	"github.com/shopspring/decimal"
)

const (
	DefaultTestSize = 0.2
	DefaultSeed     = 42
	// MinRows is the smallest history that can be split into a training and
	// a test set.
	MinRows = 2
)

// FeatureNames lists the model inputs in coefficient order.
var FeatureNames = []string{"month", "transaction_count", "avg_spend"}

// Options control the train/test split.
type Options struct {
	TestSize float64
	Seed     int64
}

// DefaultOptions returns an 80/20 split seeded with 42.
func DefaultOptions() Options {
	return Options{TestSize: DefaultTestSize, Seed: DefaultSeed}
}

// Model is a fitted per-category regression.
type Model struct {
	Category     string    `json:"category" yaml:"category"`
	Intercept    float64   `json:"intercept" yaml:"intercept"`
	Coefficients []float64 `json:"coefficients" yaml:"coefficients"`
	TrainSize    int       `json:"train_size" yaml:"train_size"`
	TestSize     int       `json:"test_size" yaml:"test_size"`
	MSE          float64   `json:"mse" yaml:"mse"`
}

// Forecast is a trained model plus a prediction for the month after the
// category's last observed month.
type Forecast struct {
	Model            Model           `json:"model" yaml:"model"`
	Month            string          `json:"month" yaml:"month"`
	MonthNumber      int             `json:"month_number" yaml:"month_number"`
	TransactionCount int             `json:"transaction_count" yaml:"transaction_count"`
	AvgSpend         decimal.Decimal `json:"avg_spend" yaml:"avg_spend"`
	Prediction       decimal.Decimal `json:"prediction" yaml:"prediction"`
}

// Forecaster trains category models.
type Forecaster struct {
	opts   Options
	logger logging.Logger
}

// NewForecaster creates a Forecaster. A test size outside (0, 1) falls back
// to the default.
func NewForecaster(opts Options, logger logging.Logger) *Forecaster {
	if opts.TestSize <= 0 || opts.TestSize >= 1 {
		opts.TestSize = DefaultTestSize
	}
	return &Forecaster{opts: opts, logger: logger}
}

// Split returns the train and test row indexes for n rows. The test set is
// the first ceil(testSize*n) entries of a seeded permutation, kept to at
// least one row on each side.
func Split(n int, testSize float64, seed int64) ([]int, []int) {
	nTest := int(math.Ceil(testSize * float64(n)))
	if nTest < 1 {
		nTest = 1
	}
	if nTest > n-1 {
		nTest = n - 1
	}
	perm := rand.New(rand.NewSource(seed)).Perm(n) // #nosec G404 -- reproducible split, not security sensitive
	return perm[nTest:], perm[:nTest]
}

// Train fits a model for category on its monthly feature rows and scores it
// on the held-out split. category is matched in its canonical form, so
// "food" and " Food " select the "Food" rows.
func (f *Forecaster) Train(rows []models.MonthlyFeatureRow, category string) (Model, error) {
	category = ingest.NormalizeCategory(category)
	selected := CategoryRows(rows, category)
	if len(selected) < MinRows {
		return Model{}, &analyticserror.InsufficientDataError{
			Category: category,
			Rows:     len(selected),
			Required: MinRows,
		}
	}

	x := make([][]float64, len(selected))
	y := make([]float64, len(selected))
	for i, row := range selected {
		features, err := featureVector(row)
		if err != nil {
			return Model{}, err
		}
		x[i] = features
		y[i] = row.TotalSpend.InexactFloat64()
	}

	trainIdx, testIdx := Split(len(selected), f.opts.TestSize, f.opts.Seed)

	xTrain := make([][]float64, len(trainIdx))
	yTrain := make([]float64, len(trainIdx))
	for i, idx := range trainIdx {
		xTrain[i] = x[idx]
		yTrain[i] = y[idx]
	}

	intercept, coef := fitOLS(xTrain, yTrain)
	model := Model{
		Category:     category,
		Intercept:    intercept,
		Coefficients: coef,
		TrainSize:    len(trainIdx),
		TestSize:     len(testIdx),
	}

	sumSq := 0.0
	for _, idx := range testIdx {
		d := y[idx] - model.predict(x[idx])
		sumSq += d * d
	}
	model.MSE = sumSq / float64(len(testIdx))

	f.logger.Info("Trained forecast model",
		logging.F(logging.FieldCategory, category),
		logging.F(logging.FieldCount, len(selected)),
		logging.F(logging.FieldMSE, model.MSE))
	return model, nil
}

// PredictNextMonth evaluates the model on one feature row. Inputs are not
// validated.
func PredictNextMonth(m Model, month int, transactionCount int, avgSpend float64) float64 {
	return m.predict([]float64{float64(month), float64(transactionCount), avgSpend})
}

func (m Model) predict(features []float64) float64 {
	out := m.Intercept
	for i, c := range m.Coefficients {
		out += c * features[i]
	}
	return out
}

// ForecastCategory builds features from the table, trains the category model
// and predicts the month after the last observed one, reusing that month's
// transaction count and average spend as inputs.
func (f *Forecaster) ForecastCategory(t models.Table, category string) (Forecast, error) {
	category = ingest.NormalizeCategory(category)
	rows := BuildFeatures(t)
	model, err := f.Train(rows, category)
	if err != nil {
		return Forecast{}, err
	}

	selected := CategoryRows(rows, category)
	last := selected[len(selected)-1]
	lastMonth, err := dateutils.ParseMonthKey(last.Month)
	if err != nil {
		return Forecast{}, err
	}
	next := dateutils.NextMonth(lastMonth)

	prediction := PredictNextMonth(model, int(next.Month()), last.TransactionCount, last.AvgSpend.InexactFloat64())
	return Forecast{
		Model:            model,
		Month:            dateutils.MonthKey(next),
		MonthNumber:      int(next.Month()),
		TransactionCount: last.TransactionCount,
		AvgSpend:         last.AvgSpend,
		Prediction:       decimal.NewFromFloat(prediction).Round(2),
	}, nil
}

func featureVector(row models.MonthlyFeatureRow) ([]float64, error) {
	month, err := dateutils.ParseMonthKey(row.Month)
	if err != nil {
		return nil, err
	}
	return []float64{
		float64(month.Month()),
		float64(row.TransactionCount),
		row.AvgSpend.InexactFloat64(),
	}, nil
}
