package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"tracker/internal/export"
)

var reportFormat string

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print monthly totals, category totals and insights",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := current.analytics.Analytics(cmd.Context())
		if err != nil {
			return err
		}
		switch reportFormat {
		case "table":
			export.AnalyticsTables(cmd.OutOrStdout(), a)
			return nil
		case "json":
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(a)
		default:
			return fmt.Errorf("unknown report format %q (table|json)", reportFormat)
		}
	},
}

func init() {
	rootCmd.AddCommand(reportCmd)
	reportCmd.Flags().StringVar(&reportFormat, "format", "table", "Output format (table|json)")
}
