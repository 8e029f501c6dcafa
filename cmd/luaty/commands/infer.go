package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var inferCmd = &cobra.Command{
	Use:   "infer <file>",
	Short: "Prints the inferred type of each infer entry of a file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, report, err := loadAndAnalyze(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for _, q := range report.Inferences {
			fmt.Fprintf(out, "%s: %s\n", q.Query.Loc, inferenceLine(q))
		}
		return nil
	},
}

func init() {
	AddCommand(inferCmd)
}
