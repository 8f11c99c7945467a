// Package ask sends a question about a dataset to the language model and
// collects what the sandbox produced
package ask

import (
	"fmt"
	"io"

	"fjacquet/expense-insights/cmd/common"
	"fjacquet/expense-insights/cmd/root"
	"fjacquet/expense-insights/internal/validation"
	"fjacquet/expense-insights/internal/visualizer"

	"github.com/spf13/cobra"
)

var (
	query       string
	outputDir   string
	previewRows int
)

// Cmd represents the ask command
var Cmd = &cobra.Command{
	Use:   "ask",
	Short: "Ask a question about any CSV dataset and collect the generated charts",
	Long: `Upload the input CSV to the remote sandbox, ask the language model the
question and run the Python code it returns in the sandbox. Images and other
results are written to the output directory.`,
	RunE: runAsk,
}

func init() {
	Cmd.Flags().StringVarP(&query, "query", "q", "", "Question about the dataset")
	Cmd.Flags().StringVarP(&outputDir, "output-dir", "o", "insights", "Directory for generated artifacts")
	Cmd.Flags().IntVar(&previewRows, "preview", 0, "Print the first N rows of the dataset before asking (-1 for all rows)")
	_ = Cmd.MarkFlagRequired("query")
}

func runAsk(cmd *cobra.Command, args []string) error {
	if root.SharedFlags.Input == "" {
		return common.ErrNoInput
	}
	if err := validation.IsValidInputFile(root.SharedFlags.Input); err != nil {
		return err
	}
	if err := validation.IsValidOutputDirectory(outputDir); err != nil {
		return err
	}

	if previewRows != 0 {
		preview, err := root.AppContainer.Preview(root.SharedFlags.Input, previewRows)
		if err != nil {
			return err
		}
		if err := common.Render(root.AppContainer, cmd.OutOrStdout(), preview, "text"); err != nil {
			return err
		}
	}

	answer, err := root.AppContainer.Ask(cmd.Context(), root.SharedFlags.Input, query)
	if err != nil {
		return err
	}

	paths, err := visualizer.SaveArtifacts(outputDir, answer.Artifacts)
	if err != nil {
		return err
	}
	return printAnswer(cmd.OutOrStdout(), answer, paths)
}

func printAnswer(w io.Writer, answer visualizer.Answer, paths []string) error {
	if _, err := fmt.Fprintf(w, "Response\n========\n%s\n", answer.Response); err != nil {
		return err
	}
	switch {
	case !answer.HasCode:
		_, err := fmt.Fprintln(w, "\nNo Python code found in the response.")
		return err
	case answer.ExecutionError != "":
		_, err := fmt.Fprintf(w, "\nThe generated code failed: %s\n", answer.ExecutionError)
		return err
	case len(paths) == 0:
		_, err := fmt.Fprintln(w, "\nNo visualization or other output was returned.")
		return err
	}

	if _, err := fmt.Fprintln(w, "\nArtifacts"); err != nil {
		return err
	}
	for _, p := range paths {
		if _, err := fmt.Fprintf(w, "  %s\n", p); err != nil {
			return err
		}
	}
	return nil
}
