package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete the local override and return to the default document",
	RunE:  runReset,
}

func init() {
	rootCmd.AddCommand(resetCmd)
}

func runReset(cmd *cobra.Command, _ []string) error {
	ctx := contextOrBackground(cmd)
	kv, err := openKV(ctx)
	if err != nil {
		return err
	}
	defer kv.Close()

	if _, err := newStore(kv).Reset(ctx); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Reset to %s\n", cfg.ContentPath)
	return nil
}
