package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/kilianp07/popcast/app"
	"github.com/kilianp07/popcast/config"
	"github.com/kilianp07/popcast/infra/report"
)

var (
	trainMethod string
	trainYears  []int
	trainSeed   uint64
)

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Train a cross-country population density model",
	RunE:  withService(tuneTrain, runTrain),
}

func init() {
	trainCmd.Flags().StringVarP(&trainMethod, "method", "m", "", "random_forest, gradient_boosting or xgboost_ensemble")
	trainCmd.Flags().IntSliceVar(&trainYears, "years", nil, "restrict training rows to these years")
	trainCmd.Flags().Uint64Var(&trainSeed, "seed", 0, "split and ensemble seed")
	rootCmd.AddCommand(trainCmd)
}

func tuneTrain(_ *cobra.Command, cfg *config.Config) error {
	if trainMethod != "" {
		cfg.Model.Method = trainMethod
	}
	if len(trainYears) > 0 {
		cfg.Model.Years = trainYears
	}
	if trainSeed != 0 {
		cfg.Model.Params.Seed = trainSeed
	}
	return nil
}

func runTrain(ctx context.Context, cmd *cobra.Command, svc *app.Service, p *report.Printer) error {
	ds, err := svc.Load()
	if err != nil {
		return err
	}
	res, err := svc.Train(ctx, ds)
	if err != nil {
		return err
	}
	if err := p.Model(res); err != nil {
		return err
	}
	paths, err := svc.WriteModel("density_model", res)
	if err != nil {
		return err
	}
	printPaths(cmd, paths)
	return nil
}
