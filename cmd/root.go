package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"unicode"

	"github.com/spf13/cobra"

	"github.com/kilianp07/popcast/app"
	"github.com/kilianp07/popcast/config"
	coremon "github.com/kilianp07/popcast/core/monitoring"
	"github.com/kilianp07/popcast/infra/report"
)

var (
	cfgPath  string
	dataPath string
	outDir   string
	noColor  bool
)

var rootCmd = &cobra.Command{
	Use:           "popcast",
	Short:         "UN population forecasting and scenario analysis",
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "configuration file (yaml or json)")
	rootCmd.PersistentFlags().StringVarP(&dataPath, "data", "d", "", "input CSV, overrides data.path")
	rootCmd.PersistentFlags().StringVarP(&outDir, "out", "o", "", "output directory, overrides output.dir")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored tables")
}

// Execute runs the CLI.
func Execute() error { return rootCmd.Execute() }

// loadConfig reads the config file and applies the global flags.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if dataPath != "" {
		cfg.Data.Path = dataPath
	}
	if outDir != "" {
		cfg.Output.Dir = outDir
	}
	if noColor {
		cfg.Output.NoColor = true
	}
	return cfg, nil
}

// runner is the body of a command once the service is set up.
type runner func(ctx context.Context, cmd *cobra.Command, svc *app.Service, p *report.Printer) error

// withService builds the service for one command, reports a failure to
// monitoring and closes the service afterwards.
func withService(tune func(cmd *cobra.Command, cfg *config.Config) error, run runner) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) (err error) {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if tune != nil {
			if err := tune(cmd, cfg); err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
		}
		svc, err := app.New(cfg)
		if err != nil {
			return err
		}
		defer func() {
			if cerr := svc.Close(); cerr != nil && err == nil {
				err = fmt.Errorf("close: %w", cerr)
			}
		}()
		if err := svc.Begin(ctx, cmd.Name()); err != nil {
			return fmt.Errorf("begin run: %w", err)
		}
		p := report.NewPrinter(cmd.OutOrStdout(), !cfg.Output.NoColor)
		if err := run(ctx, cmd, svc, p); err != nil {
			coremon.CaptureCommandError(cmd.Name(), err)
			return err
		}
		return nil
	}
}

func printPaths(cmd *cobra.Command, paths []string) {
	for _, p := range paths {
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", p)
	}
}

// slug turns a country name into a file name fragment.
func slug(s string) string {
	var b strings.Builder
	lastSep := false
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			lastSep = false
			continue
		}
		if !lastSep && b.Len() > 0 {
			b.WriteByte('_')
			lastSep = true
		}
	}
	return strings.TrimSuffix(b.String(), "_")
}
