package commands

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/panyam/luaty/loader"
	"github.com/panyam/luaty/types"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var checkCmd = &cobra.Command{
	Use:   "check <file...>",
	Short: "Runs the variance checks and inference queries of declaration files",
	Long: `The check command loads each file with its imports, compiles its chunk and
runs every check and infer entry.  Entries with an expectation that does
not hold are reported as failures.  Files are analyzed concurrently.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reports := make([]*loader.Report, len(args))
		g, ctx := errgroup.WithContext(cmd.Context())
		g.SetLimit(cfg.Workers)
		for i, path := range args {
			i, path := i, path
			g.Go(func() error {
				_, report, err := loadAndAnalyze(ctx, path)
				if err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}
				reports[i] = report
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}

		failed := 0
		out := cmd.OutOrStdout()
		for _, report := range reports {
			failed += printReport(out, report)
		}
		if failed > 0 {
			return fmt.Errorf("%d expectation(s) failed", failed)
		}
		return nil
	},
}

func init() {
	AddCommand(checkCmd)
}

var (
	passLabel = color.New(color.FgGreen).SprintFunc()
	failLabel = color.New(color.FgRed, color.Bold).SprintFunc()
)

func varianceLabel(v types.Variance) string {
	switch v {
	case types.Yes:
		return color.GreenString(v.String())
	case types.No:
		return color.RedString(v.String())
	}
	return color.YellowString(v.String())
}

func status(failed bool) string {
	if failed {
		return failLabel("FAIL")
	}
	return passLabel("PASS")
}

// printReport writes one line per check and query and returns the number of failures.
func printReport(out io.Writer, report *loader.Report) int {
	failed := 0
	fmt.Fprintln(out, report.File)
	for _, c := range report.Checks {
		line := fmt.Sprintf("  %s %s: %s <- %s = %s", status(c.Failed()), c.Check.Name, c.Check.Required, c.Check.Candidate, varianceLabel(c.Result))
		if c.Check.Mode != 0 {
			line += fmt.Sprintf(" [%s]", c.Check.Mode)
		}
		if c.Err != nil {
			line += fmt.Sprintf(" (%v)", c.Err)
		} else if c.Failed() {
			line += fmt.Sprintf(" (expected %s)", c.Check.Expect)
		}
		fmt.Fprintln(out, line)
		if c.Failed() {
			failed++
		}
	}
	for _, q := range report.Inferences {
		fmt.Fprintln(out, "  "+inferenceLine(q))
		if q.Failed() {
			failed++
		}
	}
	return failed
}

func inferenceLine(q *loader.InferOutcome) string {
	line := fmt.Sprintf("%s %s : %s", status(q.Failed()), q.Query.Expr, q.Rendered())
	if q.Err != nil {
		line += fmt.Sprintf(" (%v)", q.Err)
	} else if q.Failed() {
		line += fmt.Sprintf(" (expected %s)", q.Query.Expect)
	}
	return line
}
