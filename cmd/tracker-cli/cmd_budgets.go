package main

import (
	"time"

	"github.com/spf13/cobra"

	"tracker/internal/core"
	"tracker/internal/export"
)

var budgetsMonth string

var budgetsCmd = &cobra.Command{
	Use:   "budgets",
	Short: "Show spending against each budget of a month",
	RunE: func(cmd *cobra.Command, args []string) error {
		month := budgetsMonth
		if month == "" {
			month = core.Date{Time: time.Now()}.MonthKey()
		}
		progress, err := current.budgets.Progress(cmd.Context(), month)
		if err != nil {
			return err
		}
		export.BudgetTable(cmd.OutOrStdout(), progress)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(budgetsCmd)
	budgetsCmd.Flags().StringVar(&budgetsMonth, "month", "", "Month as YYYY-MM (default: current month)")
}
