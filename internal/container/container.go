// Package container wires the expense-insights components from a
// configuration and exposes the operations the command line runs.
package container

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"fjacquet/expense-insights/internal/advisor"
	"fjacquet/expense-insights/internal/analytics"
	"fjacquet/expense-insights/internal/analyticserror"
	"fjacquet/expense-insights/internal/config"
	"fjacquet/expense-insights/internal/dateutils"
	"fjacquet/expense-insights/internal/fileutils"
	"fjacquet/expense-insights/internal/forecast"
	"fjacquet/expense-insights/internal/history"
	"fjacquet/expense-insights/internal/ingest"
	"fjacquet/expense-insights/internal/logging"
	"fjacquet/expense-insights/internal/models"
	"fjacquet/expense-insights/internal/report"
	"fjacquet/expense-insights/internal/session"
	"fjacquet/expense-insights/internal/visualizer"

	"github.com/gocarina/gocsv"
	"github.com/shopspring/decimal"
)

// Container holds every application dependency. Fields are private and set
// once in NewContainer.
type Container struct {
	logger     logging.Logger
	config     *config.Config
	loader     *ingest.Loader
	engine     *analytics.Engine
	advisor    *advisor.Advisor
	forecaster *forecast.Forecaster
	sessions   *session.Store
	reports    *report.Generator

	// Optional; nil when disabled in the configuration.
	history    *history.Repository
	model      *visualizer.GeminiModel
	visualizer *visualizer.Visualizer
}

// NewContainer creates the logger from cfg and wires all dependencies.
func NewContainer(cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}
	return NewContainerWithLogger(cfg, logging.NewLogrusAdapter(cfg.Log.Level, cfg.Log.Format))
}

// NewContainerWithLogger wires all dependencies around an existing logger.
func NewContainerWithLogger(cfg *config.Config, logger logging.Logger) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}

	engine := analytics.NewEngine(analytics.Policy{
		AnomalySigma: cfg.Analytics.AnomalySigma,
		TopN:         cfg.Analytics.TopN,
	}, logger)

	c := &Container{
		logger: logger,
		config: cfg,
		loader: ingest.NewLoader(ingest.Options{
			Delimiter:   cfg.DelimiterRune(),
			DateLayouts: cfg.CSV.DateLayouts,
		}, logger),
		engine: engine,
		advisor: advisor.NewAdvisor(engine, advisor.Policy{
			CutRate:        decimal.NewFromFloat(cfg.Savings.CutRate),
			CutCount:       cfg.Savings.CutCount,
			CurrencySymbol: cfg.Budget.CurrencySymbol,
		}, logger),
		forecaster: forecast.NewForecaster(forecast.Options{
			TestSize: cfg.Forecast.TestSize,
			Seed:     cfg.Forecast.Seed,
		}, logger),
		sessions: session.NewStore(cfg.SessionTTL(), cfg.SessionCleanupInterval(), logger),
		reports:  report.NewGenerator(logger),
	}

	if cfg.History.Enabled {
		repo, err := history.NewRepository(cfg.History.Path, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to open history: %w", err)
		}
		c.history = repo
	}

	if cfg.AI.Enabled {
		model, err := visualizer.NewGeminiModel(context.Background(), cfg.AI.APIKey, cfg.AI.Model, logger)
		if err != nil {
			_ = c.Close()
			return nil, err
		}
		c.model = model
		c.visualizer = visualizer.New(model,
			visualizer.NewHTTPSandbox(cfg.Sandbox.Endpoint, cfg.Sandbox.APIKey, cfg.SandboxTimeout()),
			visualizer.Options{
				RequestsPerMinute: cfg.AI.RequestsPerMinute,
				ModelTimeout:      cfg.AITimeout(),
				SandboxTimeout:    cfg.SandboxTimeout(),
			}, logger)
	}

	logger.Info("Container initialized successfully",
		logging.F("history_enabled", cfg.History.Enabled),
		logging.F("ai_enabled", cfg.AI.Enabled))
	return c, nil
}

// GetLogger returns the container's logger.
func (c *Container) GetLogger() logging.Logger { return c.logger }

// GetConfig returns the configuration the container was built from.
func (c *Container) GetConfig() *config.Config { return c.config }

// GetLoader returns the CSV loader.
func (c *Container) GetLoader() *ingest.Loader { return c.loader }

// GetEngine returns the aggregation engine.
func (c *Container) GetEngine() *analytics.Engine { return c.engine }

// GetAdvisor returns the savings advisor.
func (c *Container) GetAdvisor() *advisor.Advisor { return c.advisor }

// GetForecaster returns the forecaster.
func (c *Container) GetForecaster() *forecast.Forecaster { return c.forecaster }

// GetSessions returns the session store.
func (c *Container) GetSessions() *session.Store { return c.sessions }

// GetReportGenerator returns the report renderer.
func (c *Container) GetReportGenerator() *report.Generator { return c.reports }

// GetHistory returns the history repository, or nil when history is off.
func (c *Container) GetHistory() *history.Repository { return c.history }

// GetVisualizer returns the visualizer, or nil when AI is off.
func (c *Container) GetVisualizer() *visualizer.Visualizer { return c.visualizer }

// RunView computes the view selected in sess.
func (c *Container) RunView(ctx context.Context, sess session.Session) (report.View, error) {
	if sess.Table.IsEmpty() {
		return report.View{}, &analyticserror.EmptyDatasetError{Source: "session " + sess.ID}
	}

	t := sess.Table
	switch sess.SelectedView {
	case session.ViewSummary:
		n := c.engine.Policy().TopN
		if sess.TopN != 0 {
			n = sess.TopN
		}
		summary, err := c.engine.Summary(t, n)
		if err != nil {
			return report.View{}, err
		}
		return report.SummaryView(summary), nil
	case session.ViewCategory:
		return report.CategoryView(c.engine.CategorySummary(t)), nil
	case session.ViewMonthly:
		return report.MonthlyView(c.engine.MonthlyTrend(t)), nil
	case session.ViewWeekly:
		return report.WeeklyView(c.engine.WeeklyPattern(t)), nil
	case session.ViewAnomalies:
		return report.AnomaliesView(c.engine.DetectAnomalies(t)), nil
	case session.ViewSavings:
		result, err := c.advisor.Check(t, sess.Income, sess.Goal)
		if err != nil {
			return report.View{}, err
		}
		if c.history != nil {
			if _, err := c.history.RecordSavingsCheck(ctx, result); err != nil {
				c.logger.WithError(err).Warn("Failed to record savings check")
			}
		}
		return report.SavingsView(result), nil
	case session.ViewNone:
		return report.View{}, &analyticserror.InvalidArgumentError{Argument: "view", Value: "", Reason: "no view selected"}
	default:
		_, err := session.ParseView(string(sess.SelectedView))
		return report.View{}, err
	}
}

// ForecastRequest selects a category and optionally overrides the
// next-month inputs proposed from the last observed month.
type ForecastRequest struct {
	Category         string
	Month            *int
	TransactionCount *int
	AvgSpend         *float64
}

// RunForecast trains the category model and predicts next month's spend.
func (c *Container) RunForecast(ctx context.Context, t models.Table, req ForecastRequest) (forecast.Forecast, error) {
	if req.Month != nil && (*req.Month < 1 || *req.Month > 12) {
		return forecast.Forecast{}, &analyticserror.InvalidArgumentError{Argument: "month", Value: *req.Month, Reason: "must be between 1 and 12"}
	}

	result, err := c.forecaster.ForecastCategory(t, req.Category)
	if err != nil {
		return forecast.Forecast{}, err
	}

	if req.Month != nil || req.TransactionCount != nil || req.AvgSpend != nil {
		if req.Month != nil {
			next, err := dateutils.ParseMonthKey(result.Month)
			if err != nil {
				return forecast.Forecast{}, err
			}
			result.MonthNumber = *req.Month
			result.Month = fmt.Sprintf("%04d-%02d", next.Year(), *req.Month)
		}
		if req.TransactionCount != nil {
			result.TransactionCount = *req.TransactionCount
		}
		if req.AvgSpend != nil {
			result.AvgSpend = decimal.NewFromFloat(*req.AvgSpend)
		}
		estimate := forecast.PredictNextMonth(result.Model, result.MonthNumber, result.TransactionCount, result.AvgSpend.InexactFloat64())
		result.Prediction = decimal.NewFromFloat(estimate).Round(2)
	}

	if c.history != nil {
		if _, err := c.history.RecordForecast(ctx, result); err != nil {
			c.logger.WithError(err).Warn("Failed to record forecast")
		}
	}
	return result, nil
}

// Ask sends a question about the CSV file at path to the visualizer.
func (c *Container) Ask(ctx context.Context, path, query string) (visualizer.Answer, error) {
	if c.visualizer == nil {
		return visualizer.Answer{}, errors.New("AI is disabled: set ai.enabled, GEMINI_API_KEY and sandbox.endpoint")
	}
	content, err := fileutils.ReadFile(path)
	if err != nil {
		return visualizer.Answer{}, fmt.Errorf("error reading dataset: %w", err)
	}
	return c.visualizer.Ask(ctx, visualizer.Dataset{Name: filepath.Base(path), Content: content}, query)
}

// Preview parses the CSV file at path as-is and returns its header and
// first limit rows (all rows when limit is negative).
func (c *Container) Preview(path string, limit int) (report.View, error) {
	data, err := fileutils.ReadFile(path)
	if err != nil {
		return report.View{}, fmt.Errorf("error reading dataset: %w", err)
	}
	records, err := gocsv.DefaultCSVReader(bytes.NewReader(bytes.TrimPrefix(data, []byte("\ufeff")))).ReadAll()
	if err != nil {
		return report.View{}, fmt.Errorf("error parsing dataset: %w", err)
	}
	if len(records) == 0 {
		return report.View{}, &analyticserror.EmptyDatasetError{Source: path}
	}
	return report.PreviewView(filepath.Base(path), records, limit), nil
}

// History returns the most recent logged forecasts and savings checks.
func (c *Container) History(ctx context.Context, limit int) (report.View, error) {
	if c.history == nil {
		return report.View{}, errors.New("history is disabled: set history.enabled")
	}
	forecasts, err := c.history.RecentForecasts(ctx, limit)
	if err != nil {
		return report.View{}, err
	}
	checks, err := c.history.RecentSavingsChecks(ctx, limit)
	if err != nil {
		return report.View{}, err
	}
	return report.HistoryView(forecasts, checks), nil
}

// Close releases the history database and the model client.
func (c *Container) Close() error {
	var errs []error
	if c.history != nil {
		errs = append(errs, c.history.Close())
	}
	if c.model != nil {
		errs = append(errs, c.model.Close())
	}
	c.logger.Info("Container closed")
	return errors.Join(errs...)
}
