package cmd

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kilianp07/popcast/app"
	"github.com/kilianp07/popcast/config"
	"github.com/kilianp07/popcast/infra/report"
)

var (
	analyzeCountries []string
	analyzeMethods   []string
	analyzeYears     int
	analyzeVerbose   bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Forecast every country with every compared method",
	RunE:  withService(tuneAnalyze, runAnalyze),
}

func init() {
	analyzeCmd.Flags().StringSliceVar(&analyzeCountries, "countries", nil, "restrict to these countries")
	analyzeCmd.Flags().StringSliceVar(&analyzeMethods, "methods", nil, "methods to compare, overrides forecast.compare")
	analyzeCmd.Flags().IntVarP(&analyzeYears, "years", "y", 0, "years ahead, overrides forecast.years_ahead")
	analyzeCmd.Flags().BoolVarP(&analyzeVerbose, "verbose", "v", false, "print every warning")
	rootCmd.AddCommand(analyzeCmd)
}

func tuneAnalyze(cmd *cobra.Command, cfg *config.Config) error {
	if len(analyzeCountries) > 0 {
		cfg.Forecast.Countries = analyzeCountries
	}
	if len(analyzeMethods) > 0 {
		cfg.Forecast.Compare = analyzeMethods
	}
	if analyzeYears != 0 {
		cfg.Forecast.YearsAhead = analyzeYears
	}
	return nil
}

func runAnalyze(ctx context.Context, cmd *cobra.Command, svc *app.Service, p *report.Printer) error {
	ds, err := svc.Load()
	if err != nil {
		return err
	}
	if err := p.Dataset(ds); err != nil {
		return err
	}
	a, err := svc.Analyze(ctx, ds)
	if err != nil {
		return err
	}
	if err := p.Forecasts(a.Results, a.Failures); err != nil {
		return err
	}
	if analyzeVerbose {
		if err := p.Warnings(a.Results); err != nil {
			return err
		}
	}
	paths, err := svc.WriteForecasts("analysis_"+strings.ToLower(string(a.Indicator)), ds, a.Results)
	if err != nil {
		return err
	}
	printPaths(cmd, paths)
	return nil
}
