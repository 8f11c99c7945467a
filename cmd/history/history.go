// Package history lists recent forecasts and savings checks
package history

import (
	"fjacquet/expense-insights/cmd/common"
	"fjacquet/expense-insights/cmd/root"

	"github.com/spf13/cobra"
)

var limit int

// Cmd represents the history command
var Cmd = &cobra.Command{
	Use:   "history",
	Short: "List recent forecasts and savings checks (requires history.enabled)",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := root.AppContainer
		view, err := c.History(cmd.Context(), limit)
		if err != nil {
			return err
		}
		return common.Render(c, cmd.OutOrStdout(), view, root.SharedFlags.Format)
	},
}

func init() {
	Cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Number of entries per list")
}
