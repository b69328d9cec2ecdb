package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/kilianp07/popcast/app"
	"github.com/kilianp07/popcast/infra/report"
)

var capabilitiesCmd = &cobra.Command{
	Use:   "capabilities",
	Short: "Show which optional capabilities are enabled",
	RunE:  withService(nil, runCapabilities),
}

func init() {
	rootCmd.AddCommand(capabilitiesCmd)
}

func runCapabilities(_ context.Context, _ *cobra.Command, svc *app.Service, p *report.Printer) error {
	caps, reasons := svc.Capabilities()
	return p.Capabilities(caps, reasons)
}
