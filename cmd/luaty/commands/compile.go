package commands

import (
	"fmt"

	"github.com/panyam/luaty/decl"
	"github.com/panyam/luaty/flow"
	"github.com/spf13/cobra"
)

var compileCmd = &cobra.Command{
	Use:   "compile <file>",
	Short: "Prints the pseudo-code of a file's chunk and its functions",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, report, err := loadAndAnalyze(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if report.Code == nil {
			return fmt.Errorf("%s has no chunk", args[0])
		}
		cp := decl.NewCodePrinter()
		cp.Println("chunk " + report.File)
		decl.WithIndent(1, cp, func(cp decl.CodePrinter) { flow.Dump(report.Code, cp) })
		for i, fn := range report.Functions {
			cp.Println(fmt.Sprintf("function #%d", i+1))
			decl.WithIndent(1, cp, func(cp decl.CodePrinter) { flow.Dump(fn, cp) })
		}
		fmt.Fprint(cmd.OutOrStdout(), cp.String())
		return nil
	},
}

func init() {
	AddCommand(compileCmd)
}
