package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"tracker/internal/core"
	"tracker/internal/export"
	"tracker/internal/log"
)

var (
	exportFilter core.FilterInput
	exportFormat string
	exportOut    string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write matching transactions as CSV or XML",
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := export.ParseFormat(exportFormat)
		if err != nil {
			return err
		}
		txns, err := current.analytics.Search(cmd.Context(), exportFilter)
		if err != nil {
			return err
		}

		return withOutput(cmd, exportOut, func(w io.Writer) error {
			if err := export.Write(w, format, txns); err != nil {
				return err
			}
			current.logger.Info("Transactions exported",
				log.FieldOperation, log.OpExport, "format", string(format), "rows", len(txns), "out", exportOut)
			return nil
		})
	},
}

// withOutput runs write against the named file, or stdout when name is
// empty or "-".
func withOutput(cmd *cobra.Command, name string, write func(io.Writer) error) error {
	if name == "" || name == "-" {
		return write(cmd.OutOrStdout())
	}
	f, err := os.Create(name)
	if err != nil {
		return fmt.Errorf("create %s: %w", name, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func init() {
	rootCmd.AddCommand(exportCmd)
	addFilterFlags(exportCmd, &exportFilter)
	exportCmd.Flags().StringVar(&exportFormat, "format", "csv", "Export format (csv|xml)")
	exportCmd.Flags().StringVar(&exportOut, "out", "", "Output file (default: stdout)")
}
