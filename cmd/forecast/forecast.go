// Package forecast predicts next month's spend for a category
package forecast

import (
	"fjacquet/expense-insights/cmd/common"
	"fjacquet/expense-insights/cmd/root"
	"fjacquet/expense-insights/internal/container"
	forecastmodel "fjacquet/expense-insights/internal/forecast"
	"fjacquet/expense-insights/internal/logging"
	"fjacquet/expense-insights/internal/report"

	"github.com/spf13/cobra"
)

var (
	category string
	month    int
	count    int
	avgSpend float64
)

// Cmd represents the forecast command
var Cmd = &cobra.Command{
	Use:   "forecast",
	Short: "Forecast next month's spend for a category",
	Long: `Train a linear regression on the category's monthly history (month number,
transaction count and average spend), report its test error and predict the
month after the last observed one. Prediction inputs default to that last
month's figures and can be overridden.`,
	RunE: runForecast,
}

// FeaturesCmd prints the monthly feature table the forecasts are trained on
var FeaturesCmd = &cobra.Command{
	Use:   "features",
	Short: "Print monthly per-category features (total, count, average)",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := root.AppContainer
		table, err := common.LoadTable(c, root.SharedFlags.Input)
		if err != nil {
			return err
		}
		return common.Render(c, cmd.OutOrStdout(), report.FeaturesView(forecastmodel.BuildFeatures(table)), root.SharedFlags.Format)
	},
}

func init() {
	Cmd.Flags().StringVarP(&category, "category", "c", "", "Category to forecast")
	Cmd.Flags().IntVar(&month, "month", 0, "Month number (1-12) to predict for")
	Cmd.Flags().IntVar(&count, "count", 0, "Expected number of transactions")
	Cmd.Flags().Float64Var(&avgSpend, "avg", 0, "Expected average spend per transaction")
	_ = Cmd.MarkFlagRequired("category")
}

func runForecast(cmd *cobra.Command, args []string) error {
	c := root.AppContainer
	table, err := common.LoadTable(c, root.SharedFlags.Input)
	if err != nil {
		return err
	}

	req := container.ForecastRequest{Category: category}
	if cmd.Flags().Changed("month") {
		req.Month = &month
	}
	if cmd.Flags().Changed("count") {
		req.TransactionCount = &count
	}
	if cmd.Flags().Changed("avg") {
		req.AvgSpend = &avgSpend
	}

	result, err := c.RunForecast(cmd.Context(), table, req)
	if err != nil {
		root.Log.WithError(err).Error("Forecast failed", logging.F(logging.FieldCategory, category))
		return err
	}
	return common.Render(c, cmd.OutOrStdout(), report.ForecastView(result), root.SharedFlags.Format)
}
