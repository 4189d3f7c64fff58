package main

import (
	"github.com/spf13/cobra"

	"tracker/internal/core"
	"tracker/internal/export"
)

// addFilterFlags binds the search predicates shared by search and export.
func addFilterFlags(cmd *cobra.Command, in *core.FilterInput) {
	cmd.Flags().StringVar(&in.DateFrom, "from", "", "Earliest date, YYYY-MM-DD")
	cmd.Flags().StringVar(&in.DateTo, "to", "", "Latest date, YYYY-MM-DD")
	cmd.Flags().StringVar(&in.Category, "category", "", "Category substring, case-insensitive")
	cmd.Flags().StringVar(&in.AmountMin, "min", "", "Minimum amount")
	cmd.Flags().StringVar(&in.AmountMax, "max", "", "Maximum amount")
}

var searchFilter core.FilterInput

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "List transactions matching a filter, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		txns, err := current.analytics.Search(cmd.Context(), searchFilter)
		if err != nil {
			return err
		}
		export.TransactionsTable(cmd.OutOrStdout(), txns)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(searchCmd)
	addFilterFlags(searchCmd, &searchFilter)
}
