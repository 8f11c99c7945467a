// Package root contains the root command for the application
package root

import (
	"fmt"

	"fjacquet/expense-insights/internal/config"
	"fjacquet/expense-insights/internal/container"
	"fjacquet/expense-insights/internal/logging"

	"github.com/spf13/cobra"
)

// CommonFlags represents the flags shared by every command
type CommonFlags struct {
	Input    string
	Format   string
	Config   string
	LogLevel string
}

var (
	// Log is the shared logger instance for commands
	Log = logging.NewLogrusAdapter("info", "text")

	// AppContainer is built before any subcommand runs
	AppContainer *container.Container

	// Cmd is the root command
	Cmd = &cobra.Command{
		Use:   "expense-insights",
		Short: "Spending analytics, savings checks and forecasts from a transaction CSV.",
		Long: `expense-insights reads a CSV of transactions (Date, Amount, Category, Description)
and reports totals, category and period breakdowns, unusual transactions, a
savings-goal check and a per-category forecast of next month's spend.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Run: func(cmd *cobra.Command, args []string) {
			Log.Info("Welcome to expense-insights!")
			Log.Info("Use --help to see available commands")
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if AppContainer != nil {
				return nil
			}
			config.LoadEnv()

			cfg, err := config.InitializeConfig(SharedFlags.Config)
			if err != nil {
				return err
			}
			if SharedFlags.LogLevel != "" {
				cfg.Log.Level = SharedFlags.LogLevel
			}

			Log = logging.NewLogrusAdapter(cfg.Log.Level, cfg.Log.Format)
			if adapter, ok := Log.(*logging.LogrusAdapter); ok {
				adapter.SetOutput(cmd.ErrOrStderr())
			}
			c, err := container.NewContainerWithLogger(cfg, Log)
			if err != nil {
				return fmt.Errorf("failed to initialize: %w", err)
			}
			AppContainer = c
			return nil
		},
	}

	// SharedFlags holds the persistent flag values
	SharedFlags = CommonFlags{}
)

// Close releases the container built for the last command. It runs whether
// or not the command failed, since cobra skips post-run hooks on error.
func Close() {
	if AppContainer == nil {
		return
	}
	if err := AppContainer.Close(); err != nil {
		Log.WithError(err).Warn("Failed to release resources")
	}
	AppContainer = nil
}

// Init initializes the root command and all flags
func Init() {
	Cmd.PersistentFlags().StringVarP(&SharedFlags.Input, "input", "i", "", "Input CSV file")
	Cmd.PersistentFlags().StringVarP(&SharedFlags.Format, "format", "f", "text", "Output format: text, json, yaml or csv")
	Cmd.PersistentFlags().StringVar(&SharedFlags.Config, "config", "", "Config file (default: search $HOME/.expense-insights, .expense-insights, .)")
	Cmd.PersistentFlags().StringVar(&SharedFlags.LogLevel, "log-level", "", "Override the configured log level")
}
