package main

import (
	"io"

	"github.com/spf13/cobra"

	"tracker/internal/export"
)

var (
	chartKind string
	chartOut  string
)

var chartCmd = &cobra.Command{
	Use:   "chart",
	Short: "Render a PNG chart of the analytics",
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, err := export.ParseChartKind(chartKind)
		if err != nil {
			return err
		}
		a, err := current.analytics.Analytics(cmd.Context())
		if err != nil {
			return err
		}
		return withOutput(cmd, chartOut, func(w io.Writer) error {
			return export.RenderChart(w, kind, a)
		})
	},
}

func init() {
	rootCmd.AddCommand(chartCmd)
	chartCmd.Flags().StringVar(&chartKind, "kind", "monthly", "Chart kind (monthly|savings|categories)")
	chartCmd.Flags().StringVar(&chartOut, "out", "", "PNG file to write")
	_ = chartCmd.MarkFlagRequired("out")
}
