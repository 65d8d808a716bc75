package main

import (
	"bytes"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/portfolio-admin/internal/store"
)

var exportOutput string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the current document",
	Long:  "Writes the current document (the saved override, or the default when there is none) to a JSON file.",
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "out", "o", store.ExportFilename, `Output path ("-" for stdout)`)
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, _ []string) error {
	ctx := contextOrBackground(cmd)
	st, closeStore, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	if exportOutput == "-" {
		_, err := st.Save(ctx, store.ToWriter(cmd.OutOrStdout()))
		return err
	}

	var buf bytes.Buffer
	if _, err := st.Save(ctx, store.ToWriter(&buf)); err != nil {
		return err
	}
	if err := writeFile(exportOutput, buf.Bytes()); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Exported to %s\n", exportOutput)
	return nil
}
