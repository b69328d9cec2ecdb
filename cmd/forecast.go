package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kilianp07/popcast/app"
	"github.com/kilianp07/popcast/config"
	"github.com/kilianp07/popcast/core/forecast"
	"github.com/kilianp07/popcast/core/model"
	"github.com/kilianp07/popcast/infra/report"
)

var (
	fcCountry   string
	fcMethod    string
	fcIndicator string
	fcYears     int
	fcDegree    int
	fcGrowth    float64
)

var forecastCmd = &cobra.Command{
	Use:   "forecast",
	Short: "Forecast one country with one method",
	RunE:  withService(tuneForecast, runForecast),
}

func init() {
	forecastCmd.Flags().StringVar(&fcCountry, "country", "", "country or area name")
	forecastCmd.Flags().StringVarP(&fcMethod, "method", "m", "", "forecast method, overrides forecast.method")
	forecastCmd.Flags().StringVar(&fcIndicator, "indicator", "", "population or density")
	forecastCmd.Flags().IntVarP(&fcYears, "years", "y", 0, "years ahead, overrides forecast.years_ahead")
	forecastCmd.Flags().IntVar(&fcDegree, "degree", 0, "polynomial degree")
	forecastCmd.Flags().Float64Var(&fcGrowth, "growth", 0, "fixed annual growth rate replacing the fit (0.01 is 1%)")
	_ = forecastCmd.MarkFlagRequired("country")
	rootCmd.AddCommand(forecastCmd)
}

func tuneForecast(_ *cobra.Command, cfg *config.Config) error {
	if fcMethod != "" {
		cfg.Forecast.Method = fcMethod
	}
	if fcIndicator != "" {
		cfg.Forecast.Indicator = fcIndicator
	}
	if fcYears != 0 {
		cfg.Forecast.YearsAhead = fcYears
	}
	if fcDegree != 0 {
		cfg.Forecast.Degree = fcDegree
	}
	return nil
}

func runForecast(ctx context.Context, cmd *cobra.Command, svc *app.Service, p *report.Printer) error {
	fc := svc.Config().Forecast
	m, err := forecast.ParseMethod(fc.Method)
	if err != nil {
		return err
	}
	ind, err := model.ParseIndicator(fc.Indicator)
	if err != nil {
		return err
	}
	req := forecast.Request{Country: fcCountry, Indicator: ind, Method: m, YearsAhead: fc.YearsAhead, Degree: fc.Degree}
	if cmd.Flags().Changed("growth") {
		g := fcGrowth
		req.GrowthOverride = &g
	}

	ds, err := svc.Load()
	if err != nil {
		return err
	}
	res, err := svc.Forecast(ctx, ds, req)
	if err != nil {
		return fmt.Errorf("forecast %s: %w", fcCountry, err)
	}
	results := []forecast.Result{res}
	if err := p.Forecasts(results, nil); err != nil {
		return err
	}
	if err := p.Warnings(results); err != nil {
		return err
	}
	paths, err := svc.WriteForecasts("forecast_"+slug(fcCountry), ds, results)
	if err != nil {
		return err
	}
	printPaths(cmd, paths)
	return nil
}
