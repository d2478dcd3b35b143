package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"
	"gitlab.com/tozd/go/errors"

	"github.com/jsvensson/tokentest"
	"github.com/jsvensson/tokentest/internal/config"
	"github.com/jsvensson/tokentest/internal/driver"
	"github.com/jsvensson/tokentest/internal/report"
)

var (
	flagConfig      string
	flagOut         string
	flagCheck       bool
	flagMetricsFile string
	flagKey         string
	flagFmtCheck    bool
	flagVerbose     int
	flagLog         string
	version         = "dev" // Injected at build time via ldflags
)

var rootCmd = &cobra.Command{
	Use:     "tokentest",
	Short:   "Generate Jest tests that verify design tokens are rendered as Tailwind classes",
	Version: version,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		var path *string
		if flagLog != "" {
			path = &flagLog
		}
		commonlog.Configure(flagVerbose, path)
	},
	SilenceUsage: true,
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate test files for every token document in the project",
	Args:  cobra.NoArgs,
	RunE:  runGenerate,
}

var inspectCmd = &cobra.Command{
	Use:   "inspect FILE",
	Short: "Show the directives each node of a token document maps to",
	Args:  cobra.ExactArgs(1),
	RunE:  runInspect,
}

var fmtCmd = &cobra.Command{
	Use:   "fmt [files...]",
	Short: "Format tokentest.hcl project files",
	Long:  "Format one or more project files in-place. Prints the name of each file that was modified.",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runFmt,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), version)
	},
}

func init() {
	rootCmd.PersistentFlags().CountVarP(&flagVerbose, "verbose", "v", "increase log verbosity (can be repeated)")
	rootCmd.PersistentFlags().StringVar(&flagLog, "log", "", "write logs to this file instead of stderr")

	generateCmd.Flags().StringVar(&flagConfig, "config", config.DefaultFile, "path to project HCL file")
	generateCmd.Flags().StringVar(&flagOut, "out", "", "output directory (overrides the project file)")
	generateCmd.Flags().BoolVar(&flagCheck, "check", false, "report outdated test files without writing")
	generateCmd.Flags().StringVar(&flagMetricsFile, "metrics-file", "", "write Prometheus metrics to this file")
	inspectCmd.Flags().StringVar(&flagKey, "key", "", "only show this node key")
	fmtCmd.Flags().BoolVarP(&flagFmtCheck, "check", "c", false, "check if files are formatted (do not write changes)")

	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(fmtCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig reads the project file. A missing default file falls back to
// the built-in defaults; an explicitly named one must exist.
func loadConfig(fsys afero.Fs, cmd *cobra.Command) (*config.Config, error) {
	exists, err := afero.Exists(fsys, flagConfig)
	if err != nil {
		return nil, errors.Errorf("checking config file: %w", err)
	}

	var cfg *config.Config
	if !exists && !cmd.Flags().Changed("config") {
		cfg = config.Default()
	} else {
		cfg, err = config.LoadFS(fsys, flagConfig)
		if err != nil {
			return nil, err
		}
	}

	// --out is relative to the working directory, not the project file.
	if flagOut != "" {
		out, err := filepath.Abs(flagOut)
		if err != nil {
			return nil, errors.Errorf("resolving output directory: %w", err)
		}
		cfg.OutDir = out
	}
	return cfg, cfg.Validate()
}

func runGenerate(cmd *cobra.Command, args []string) error {
	fsys := afero.NewOsFs()
	cfg, err := loadConfig(fsys, cmd)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	d := &driver.Driver{
		FS:      fsys,
		Config:  cfg,
		Log:     commonlog.GetLogger("tokentest"),
		Metrics: driver.NewMetrics(),
		Check:   flagCheck,
	}
	rep, runErr := d.Run(ctx)

	if rep != nil {
		if err := report.Write(cmd.OutOrStdout(), report.Run(rep).Markdown()); err != nil {
			return err
		}
	}
	if flagMetricsFile != "" {
		if err := d.Metrics.WriteTextfile(flagMetricsFile); err != nil {
			return err
		}
	}

	if runErr != nil {
		if errors.Is(runErr, driver.ErrStale) {
			return runErr
		}
		return fmt.Errorf("generating: %w", runErr)
	}
	return nil
}

func runInspect(cmd *cobra.Command, args []string) error {
	doc, err := tokentest.Load(args[0])
	if err != nil {
		return err
	}
	t, err := report.Inspect(doc, flagKey)
	if err != nil {
		return err
	}
	return report.Write(cmd.OutOrStdout(), t.Markdown())
}

func runFmt(cmd *cobra.Command, args []string) error {
	hasErrors := false
	needsFormatting := false

	for _, path := range args {
		data, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Error reading %s: %v\n", path, err)
			hasErrors = true
			continue
		}

		content := string(data)
		if config.IsFormatted(content) {
			continue
		}
		formatted, err := config.Format(content)
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Error formatting %s: %v\n", path, err)
			hasErrors = true
			continue
		}

		fmt.Fprintln(cmd.OutOrStdout(), path)
		needsFormatting = true

		if !flagFmtCheck {
			if err := os.WriteFile(path, []byte(formatted), 0o644); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "Error writing %s: %v\n", path, err)
				hasErrors = true
			}
		}
	}

	if hasErrors || (flagFmtCheck && needsFormatting) {
		os.Exit(1)
	}

	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
