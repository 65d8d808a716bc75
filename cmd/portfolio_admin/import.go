package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/portfolio-admin/internal/content"
	"github.com/jonathan/portfolio-admin/internal/store"
)

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import a document and save it as the local override",
	Args:  cobra.ExactArgs(1),
	RunE:  runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx := contextOrBackground(cmd)
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", args[0], err)
	}

	st, closeStore, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	if _, err := st.Load(ctx, store.FromImport(data)); err != nil {
		var invalid *content.InvalidDocumentError
		if errors.As(err, &invalid) {
			return fmt.Errorf("%s: %w", invalid.UserMessage(), err)
		}
		return err
	}
	res, err := st.Save(ctx, store.ToCache())
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Imported %s (%d bytes saved)\n", args[0], res.Bytes)
	return nil
}
