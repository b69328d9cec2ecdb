package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kilianp07/popcast/app"
	"github.com/kilianp07/popcast/config"
	"github.com/kilianp07/popcast/infra/report"
)

var (
	scCountry string
	scFile    string
	scYears   int
	scBase    float64
)

var scenarioCmd = &cobra.Command{
	Use:   "scenario",
	Short: "Project growth scenarios for one country",
	RunE:  withService(tuneScenario, runScenario),
}

func init() {
	scenarioCmd.Flags().StringVar(&scCountry, "country", "", "country or area name")
	scenarioCmd.Flags().StringVarP(&scFile, "file", "f", "", "ordered name: delta YAML file, overrides scenarios")
	scenarioCmd.Flags().IntVarP(&scYears, "years", "y", 0, "years to project")
	scenarioCmd.Flags().Float64Var(&scBase, "base", 0, "base annual growth rate instead of the trailing rate")
	_ = scenarioCmd.MarkFlagRequired("country")
	rootCmd.AddCommand(scenarioCmd)
}

func tuneScenario(_ *cobra.Command, cfg *config.Config) error {
	if scFile != "" {
		cfg.Scenarios.File = scFile
		cfg.Scenarios.List = nil
	}
	if scYears != 0 {
		cfg.Scenarios.Years = scYears
	}
	return nil
}

func runScenario(_ context.Context, cmd *cobra.Command, svc *app.Service, p *report.Printer) error {
	ds, err := svc.Load()
	if err != nil {
		return err
	}
	var base *float64
	if cmd.Flags().Changed("base") {
		b := scBase
		base = &b
	}
	sr, err := svc.Scenario(ds, scCountry, base)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: %.3f in %d, base growth %+.3f%%\n", sr.Country, sr.Start, sr.StartYear, sr.BaseGrowth*100)
	if err := p.Scenarios(sr.StartYear, sr.Projections); err != nil {
		return err
	}
	paths, err := svc.WriteScenario("scenario_"+slug(scCountry), sr)
	if err != nil {
		return err
	}
	printPaths(cmd, paths)
	return nil
}
