// Package config provides Viper-based hierarchical configuration management
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. EXPENSE_LOG_LEVEL.
const EnvPrefix = "EXPENSE"

// Config represents the complete application configuration
type Config struct {
	Log struct {
		Level  string `mapstructure:"level" yaml:"level"`
		Format string `mapstructure:"format" yaml:"format"`
	} `mapstructure:"log" yaml:"log"`

	CSV struct {
		Delimiter   string   `mapstructure:"delimiter" yaml:"delimiter"`
		DateLayouts []string `mapstructure:"date_layouts" yaml:"date_layouts"`
	} `mapstructure:"csv" yaml:"csv"`

	Analytics struct {
		TopN         int     `mapstructure:"top_n" yaml:"top_n"`
		AnomalySigma float64 `mapstructure:"anomaly_sigma" yaml:"anomaly_sigma"`
	} `mapstructure:"analytics" yaml:"analytics"`

	Budget struct {
		Income         string `mapstructure:"income" yaml:"income"`
		Goal           string `mapstructure:"goal" yaml:"goal"`
		CurrencySymbol string `mapstructure:"currency_symbol" yaml:"currency_symbol"`
	} `mapstructure:"budget" yaml:"budget"`

	Savings struct {
		CutRate  float64 `mapstructure:"cut_rate" yaml:"cut_rate"`
		CutCount int     `mapstructure:"cut_count" yaml:"cut_count"`
	} `mapstructure:"savings" yaml:"savings"`

	Forecast struct {
		TestSize float64 `mapstructure:"test_size" yaml:"test_size"`
		Seed     int64   `mapstructure:"seed" yaml:"seed"`
	} `mapstructure:"forecast" yaml:"forecast"`

	Session struct {
		TTLMinutes     int `mapstructure:"ttl_minutes" yaml:"ttl_minutes"`
		CleanupMinutes int `mapstructure:"cleanup_minutes" yaml:"cleanup_minutes"`
	} `mapstructure:"session" yaml:"session"`

	History struct {
		Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
		Path    string `mapstructure:"path" yaml:"path"`
	} `mapstructure:"history" yaml:"history"`

	AI struct {
		Enabled           bool   `mapstructure:"enabled" yaml:"enabled"`
		Model             string `mapstructure:"model" yaml:"model"`
		RequestsPerMinute int    `mapstructure:"requests_per_minute" yaml:"requests_per_minute"`
		TimeoutSeconds    int    `mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
		APIKey            string `mapstructure:"api_key" yaml:"-"` // Never serialize API key
	} `mapstructure:"ai" yaml:"ai"`

	Sandbox struct {
		Endpoint       string `mapstructure:"endpoint" yaml:"endpoint"`
		TimeoutSeconds int    `mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
		APIKey         string `mapstructure:"api_key" yaml:"-"`
	} `mapstructure:"sandbox" yaml:"sandbox"`
}

// InitializeConfig loads configuration from defaults, an optional config
// file, and the environment, in increasing order of precedence. When
// configFile is empty the standard locations are searched.
func InitializeConfig(configFile string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("$HOME/.expense-insights")
		v.AddConfigPath(".expense-insights")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// API keys come from their conventional, unprefixed variables.
	if err := v.BindEnv("ai.api_key", "GEMINI_API_KEY"); err != nil {
		return nil, fmt.Errorf("failed to bind GEMINI_API_KEY: %w", err)
	}
	if err := v.BindEnv("sandbox.api_key", "SANDBOX_API_KEY"); err != nil {
		return nil, fmt.Errorf("failed to bind SANDBOX_API_KEY: %w", err)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// Default returns the configuration built from defaults only.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var config Config
	// Defaults are static and always decode.
	_ = v.Unmarshal(&config)
	return &config
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("csv.delimiter", ",")
	v.SetDefault("csv.date_layouts", []string{})

	v.SetDefault("analytics.top_n", 5)
	v.SetDefault("analytics.anomaly_sigma", 2.0)

	v.SetDefault("budget.income", "0")
	v.SetDefault("budget.goal", "0")
	v.SetDefault("budget.currency_symbol", "₹")

	v.SetDefault("savings.cut_rate", 0.2)
	v.SetDefault("savings.cut_count", 3)

	v.SetDefault("forecast.test_size", 0.2)
	v.SetDefault("forecast.seed", 42)

	v.SetDefault("session.ttl_minutes", 30)
	v.SetDefault("session.cleanup_minutes", 60)

	v.SetDefault("history.enabled", false)
	v.SetDefault("history.path", "expense-insights.db")

	v.SetDefault("ai.enabled", false)
	v.SetDefault("ai.model", "gemini-2.0-flash")
	v.SetDefault("ai.requests_per_minute", 10)
	v.SetDefault("ai.timeout_seconds", 60)

	v.SetDefault("sandbox.endpoint", "")
	v.SetDefault("sandbox.timeout_seconds", 120)
}

func validateConfig(config *Config) error {
	if _, err := logrus.ParseLevel(config.Log.Level); err != nil {
		return fmt.Errorf("invalid log level: %s", config.Log.Level)
	}

	if config.Log.Format != "text" && config.Log.Format != "json" {
		return fmt.Errorf("invalid log format: %s (must be 'text' or 'json')", config.Log.Format)
	}

	if len([]rune(config.CSV.Delimiter)) != 1 {
		return fmt.Errorf("CSV delimiter must be a single character, got: %q", config.CSV.Delimiter)
	}

	if config.Analytics.TopN < 1 {
		return fmt.Errorf("analytics.top_n must be positive, got: %d", config.Analytics.TopN)
	}
	if config.Analytics.AnomalySigma <= 0 {
		return fmt.Errorf("analytics.anomaly_sigma must be positive, got: %f", config.Analytics.AnomalySigma)
	}

	for key, raw := range map[string]string{"budget.income": config.Budget.Income, "budget.goal": config.Budget.Goal} {
		amount, err := decimal.NewFromString(strings.TrimSpace(raw))
		if err != nil {
			return fmt.Errorf("%s is not a number: %q", key, raw)
		}
		if amount.IsNegative() {
			return fmt.Errorf("%s must not be negative, got: %s", key, raw)
		}
	}

	if config.Savings.CutRate <= 0 || config.Savings.CutRate > 1 {
		return fmt.Errorf("savings.cut_rate must be greater than 0.0 and at most 1.0, got: %f", config.Savings.CutRate)
	}
	if config.Savings.CutCount < 1 {
		return fmt.Errorf("savings.cut_count must be positive, got: %d", config.Savings.CutCount)
	}

	if config.Forecast.TestSize <= 0 || config.Forecast.TestSize >= 1 {
		return fmt.Errorf("forecast.test_size must be between 0.0 and 1.0 (exclusive), got: %f", config.Forecast.TestSize)
	}

	if config.Session.TTLMinutes < 1 {
		return fmt.Errorf("session.ttl_minutes must be positive, got: %d", config.Session.TTLMinutes)
	}

	if config.History.Enabled && strings.TrimSpace(config.History.Path) == "" {
		return fmt.Errorf("history.path required when history is enabled")
	}

	if config.AI.Enabled {
		if config.AI.APIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY required when AI is enabled")
		}
		if config.AI.RequestsPerMinute < 1 || config.AI.RequestsPerMinute > 1000 {
			return fmt.Errorf("ai.requests_per_minute must be between 1 and 1000, got: %d", config.AI.RequestsPerMinute)
		}
		if config.AI.TimeoutSeconds < 1 || config.AI.TimeoutSeconds > 300 {
			return fmt.Errorf("ai.timeout_seconds must be between 1 and 300, got: %d", config.AI.TimeoutSeconds)
		}
		if config.Sandbox.Endpoint == "" {
			return fmt.Errorf("sandbox.endpoint required when AI is enabled")
		}
	}

	return nil
}

// IncomeAmount returns the configured monthly income.
func (c *Config) IncomeAmount() decimal.Decimal {
	return mustDecimal(c.Budget.Income)
}

// GoalAmount returns the configured savings goal.
func (c *Config) GoalAmount() decimal.Decimal {
	return mustDecimal(c.Budget.Goal)
}

// DelimiterRune returns the CSV delimiter as a rune.
func (c *Config) DelimiterRune() rune {
	runes := []rune(c.CSV.Delimiter)
	if len(runes) == 0 {
		return ','
	}
	return runes[0]
}

// SessionTTL returns the session expiry.
func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.Session.TTLMinutes) * time.Minute
}

// SessionCleanupInterval returns how often expired sessions are purged.
func (c *Config) SessionCleanupInterval() time.Duration {
	return time.Duration(c.Session.CleanupMinutes) * time.Minute
}

// AITimeout returns the per-request LLM timeout.
func (c *Config) AITimeout() time.Duration {
	return time.Duration(c.AI.TimeoutSeconds) * time.Second
}

// SandboxTimeout returns the per-request sandbox timeout.
func (c *Config) SandboxTimeout() time.Duration {
	return time.Duration(c.Sandbox.TimeoutSeconds) * time.Second
}

func mustDecimal(raw string) decimal.Decimal {
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Zero
	}
	return d
}
