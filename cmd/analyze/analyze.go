// Package analyze runs one dashboard view over a transaction CSV
package analyze

import (
	"fmt"
	"strings"

	"fjacquet/expense-insights/cmd/common"
	"fjacquet/expense-insights/cmd/root"
	"fjacquet/expense-insights/internal/analyticserror"
	"fjacquet/expense-insights/internal/logging"
	"fjacquet/expense-insights/internal/session"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var (
	view   string
	income string
	goal   string
	top    int
)

// Cmd represents the analyze command
var Cmd = &cobra.Command{
	Use:   "analyze",
	Short: "Show a spending view: summary, category, monthly, weekly, savings or anomalies",
	Long: `Load the input CSV, clean it and print one analysis view.

The savings view compares total spend with income minus the savings goal and
suggests cuts in the largest categories when the goal is missed.`,
	RunE: runAnalyze,
}

func init() {
	Cmd.Flags().StringVar(&view, "view", string(session.ViewSummary), "View to show: summary, category, monthly, weekly, savings, anomalies")
	Cmd.Flags().StringVar(&income, "income", "", "Monthly income (default: budget.income)")
	Cmd.Flags().StringVar(&goal, "goal", "", "Savings goal (default: budget.goal)")
	Cmd.Flags().IntVar(&top, "top", 0, "Number of top expenses in the summary view (default: analytics.top_n)")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	c := root.AppContainer
	selected, err := session.ParseView(view)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("top") && top <= 0 {
		return &analyticserror.InvalidArgumentError{Argument: "top", Value: top, Reason: "must be a positive integer"}
	}

	incomeAmount, err := amountOrDefault("income", income, c.GetConfig().IncomeAmount())
	if err != nil {
		return err
	}
	goalAmount, err := amountOrDefault("goal", goal, c.GetConfig().GoalAmount())
	if err != nil {
		return err
	}

	table, err := common.LoadTable(c, root.SharedFlags.Input)
	if err != nil {
		return err
	}

	store := c.GetSessions()
	sess := store.Create(table, incomeAmount, goalAmount)
	defer store.Delete(sess.ID)

	current, err := store.Select(sess.ID, selected)
	if err != nil {
		return err
	}
	current.TopN = top

	out, err := c.RunView(cmd.Context(), current)
	if err != nil {
		root.Log.WithError(err).Error("Analysis failed", logging.F(logging.FieldView, string(selected)))
		return err
	}
	return common.Render(c, cmd.OutOrStdout(), out, root.SharedFlags.Format)
}

func amountOrDefault(name, raw string, fallback decimal.Decimal) (decimal.Decimal, error) {
	if strings.TrimSpace(raw) == "" {
		return fallback, nil
	}
	amount, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Zero, &analyticserror.InvalidArgumentError{Argument: name, Value: raw, Reason: fmt.Sprintf("not a number: %v", err)}
	}
	return amount, nil
}
