package commands

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/panyam/luaty/config"
	"github.com/panyam/luaty/loader"
	"github.com/panyam/luaty/logging"
	"github.com/spf13/cobra"
)

var (
	envFiles      []string
	logLevel      string
	maxDepth      int
	strictUnknown bool
	strictNil     bool
	noColor       bool
	workers       int
)

// cfg is the effective configuration once flags have been applied.
var cfg = config.Defaults()

var rootCmd = &cobra.Command{
	Use:   "luaty",
	Short: "luaty checks and infers types over declaration files",
	Long: `luaty loads YAML declaration files (classes, aliases, globals and a
syntax chunk), then runs their variance checks, inference queries and
pseudo-code compilation.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringSliceVar(&envFiles, "env", []string{".env"}, "Env files read before LUATY_* variables (missing files are skipped)")
	flags.StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error or off (default: LUATY_LOG_LEVEL or warn)")
	flags.IntVar(&maxDepth, "max-depth", 0, "Maximum import depth, 0 for no limit (default: LUATY_MAX_IMPORT_DEPTH or 10)")
	flags.BoolVar(&strictUnknown, "strict-unknown", false, "Treat unknown types and unresolved generics as indeterminate")
	flags.BoolVar(&strictNil, "strict-nil", false, "Do not accept nil for every type")
	flags.BoolVar(&noColor, "no-color", false, "Disable colored output")
	flags.IntVarP(&workers, "workers", "j", 0, "Files analyzed concurrently (default: LUATY_WORKERS or GOMAXPROCS)")
}

// AddCommand allows adding subcommands from other files.
func AddCommand(cmd *cobra.Command) {
	rootCmd.AddCommand(cmd)
}

// setup loads the configuration and applies the flags that were given.
func setup(cmd *cobra.Command, args []string) error {
	c, err := config.Load(envFiles...)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("log-level") {
		if c.LogLevel, err = logging.ParseLogLevel(logLevel); err != nil {
			return err
		}
	}
	if flags.Changed("max-depth") {
		c.MaxImportDepth = maxDepth
	}
	if flags.Changed("strict-unknown") {
		c.StrictUnknown = strictUnknown
	}
	if flags.Changed("strict-nil") {
		c.StrictNil = strictNil
	}
	if flags.Changed("no-color") {
		c.NoColor = noColor
	}
	if flags.Changed("workers") && workers > 0 {
		c.Workers = workers
	}
	logging.SetLogLevel(c.LogLevel)
	color.NoColor = color.NoColor || c.NoColor
	cfg = c
	return nil
}

func newLoader() *loader.Loader {
	l := loader.NewLoader(nil, loader.NewDefaultFileResolver(), cfg.MaxImportDepth)
	l.SetLogger(logging.Default())
	return l
}

// loadAndAnalyze loads path with its imports and analyzes the root file.
func loadAndAnalyze(ctx context.Context, path string) (*loader.LoadResult, *loader.Report, error) {
	result, err := newLoader().LoadRootFile(path)
	if err != nil {
		return result, nil, errors.Join(result.Errors...)
	}
	report, err := loader.Analyze(ctx, result.Root, result.Index, loader.AnalyzeOptions{Mode: cfg.Mode()})
	return result, report, err
}
