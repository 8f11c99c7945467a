// Package history keeps a local SQLite log of forecast runs and savings
// checks so past results can be reviewed from the command line.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"fjacquet/expense-insights/internal/advisor"
	"fjacquet/expense-insights/internal/analyticserror"
	"fjacquet/expense-insights/internal/fileutils"
	"fjacquet/expense-insights/internal/forecast"
	"fjacquet/expense-insights/internal/logging"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"
)

// Fixed-width so stored timestamps sort lexically.
const timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

// ForecastRun is one logged forecast.
type ForecastRun struct {
	ID         string          `json:"id" yaml:"id"`
	Category   string          `json:"category" yaml:"category"`
	Month      string          `json:"month" yaml:"month"`
	Prediction decimal.Decimal `json:"prediction" yaml:"prediction"`
	MSE        float64         `json:"mse" yaml:"mse"`
	TrainSize  int             `json:"train_size" yaml:"train_size"`
	TestSize   int             `json:"test_size" yaml:"test_size"`
	CreatedAt  time.Time       `json:"created_at" yaml:"created_at"`
}

// SavingsCheck is one logged savings check.
type SavingsCheck struct {
	ID        string          `json:"id" yaml:"id"`
	Income    decimal.Decimal `json:"income" yaml:"income"`
	Goal      decimal.Decimal `json:"goal" yaml:"goal"`
	Total     decimal.Decimal `json:"total" yaml:"total"`
	Gap       decimal.Decimal `json:"gap" yaml:"gap"`
	OnTrack   bool            `json:"on_track" yaml:"on_track"`
	Message   string          `json:"message" yaml:"message"`
	CreatedAt time.Time       `json:"created_at" yaml:"created_at"`
}

// Repository stores history in SQLite.
type Repository struct {
	db     *sql.DB
	logger logging.Logger
	now    func() time.Time
}

// NewRepository opens (creating if needed) the database at dbPath and
// applies pending migrations.
func NewRepository(dbPath string, logger logging.Logger) (*Repository, error) {
	if err := fileutils.EnsureParentDirectory(dbPath); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		_ = db.Close()
		return nil, err
	}

	logger.Debug("Opened history database", logging.F("path", dbPath))
	return &Repository{
		db:     db,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}, nil
}

// Close releases the database handle.
func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// RecordForecast logs a forecast result.
func (r *Repository) RecordForecast(ctx context.Context, f forecast.Forecast) (ForecastRun, error) {
	run := ForecastRun{
		ID:         uuid.NewString(),
		Category:   f.Model.Category,
		Month:      f.Month,
		Prediction: f.Prediction,
		MSE:        f.Model.MSE,
		TrainSize:  f.Model.TrainSize,
		TestSize:   f.Model.TestSize,
		CreatedAt:  r.now(),
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO forecast_runs (id, category, month, prediction, mse, train_size, test_size, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Category, run.Month, run.Prediction.String(), run.MSE,
		run.TrainSize, run.TestSize, run.CreatedAt.Format(timestampLayout))
	if err != nil {
		return ForecastRun{}, fmt.Errorf("insert forecast run: %w", err)
	}

	r.logger.Info("Forecast saved to history",
		logging.F("id", run.ID),
		logging.F(logging.FieldCategory, run.Category))
	return run, nil
}

// RecordSavingsCheck logs a savings check result.
func (r *Repository) RecordSavingsCheck(ctx context.Context, result advisor.Result) (SavingsCheck, error) {
	check := SavingsCheck{
		ID:        uuid.NewString(),
		Income:    result.Income,
		Goal:      result.Goal,
		Total:     result.Total,
		Gap:       result.Gap,
		OnTrack:   result.OnTrack,
		Message:   result.Message,
		CreatedAt: r.now(),
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO savings_checks (id, income, goal, total, gap, on_track, message, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		check.ID, check.Income.String(), check.Goal.String(), check.Total.String(), check.Gap.String(),
		check.OnTrack, check.Message, check.CreatedAt.Format(timestampLayout))
	if err != nil {
		return SavingsCheck{}, fmt.Errorf("insert savings check: %w", err)
	}

	r.logger.Info("Savings check saved to history", logging.F("id", check.ID))
	return check, nil
}

// RecentForecasts returns up to limit forecast runs, newest first.
func (r *Repository) RecentForecasts(ctx context.Context, limit int) ([]ForecastRun, error) {
	if err := checkLimit(limit); err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, category, month, prediction, mse, train_size, test_size, created_at
		 FROM forecast_runs ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query forecast runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []ForecastRun
	for rows.Next() {
		var (
			run                   ForecastRun
			prediction, createdAt string
		)
		if err := rows.Scan(&run.ID, &run.Category, &run.Month, &prediction, &run.MSE,
			&run.TrainSize, &run.TestSize, &createdAt); err != nil {
			return nil, fmt.Errorf("scan forecast run: %w", err)
		}
		if run.Prediction, err = decimal.NewFromString(prediction); err != nil {
			return nil, fmt.Errorf("decode prediction of %s: %w", run.ID, err)
		}
		if run.CreatedAt, err = time.Parse(timestampLayout, createdAt); err != nil {
			return nil, fmt.Errorf("decode timestamp of %s: %w", run.ID, err)
		}
		out = append(out, run)
	}
	return out, rows.Err()
}

// RecentSavingsChecks returns up to limit savings checks, newest first.
func (r *Repository) RecentSavingsChecks(ctx context.Context, limit int) ([]SavingsCheck, error) {
	if err := checkLimit(limit); err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, income, goal, total, gap, on_track, message, created_at
		 FROM savings_checks ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query savings checks: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []SavingsCheck
	for rows.Next() {
		var (
			check                             SavingsCheck
			income, goal, total, gap, created string
		)
		if err := rows.Scan(&check.ID, &income, &goal, &total, &gap, &check.OnTrack, &check.Message, &created); err != nil {
			return nil, fmt.Errorf("scan savings check: %w", err)
		}
		amounts := []struct {
			raw string
			dst *decimal.Decimal
		}{{income, &check.Income}, {goal, &check.Goal}, {total, &check.Total}, {gap, &check.Gap}}
		for _, a := range amounts {
			if *a.dst, err = decimal.NewFromString(a.raw); err != nil {
				return nil, fmt.Errorf("decode amount of %s: %w", check.ID, err)
			}
		}
		if check.CreatedAt, err = time.Parse(timestampLayout, created); err != nil {
			return nil, fmt.Errorf("decode timestamp of %s: %w", check.ID, err)
		}
		out = append(out, check)
	}
	return out, rows.Err()
}

func checkLimit(limit int) error {
	if limit <= 0 {
		return &analyticserror.InvalidArgumentError{Argument: "limit", Value: limit, Reason: "must be a positive integer"}
	}
	return nil
}
