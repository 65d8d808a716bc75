package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/portfolio-admin/internal/content"
)

var (
	normalizeInput  string
	normalizeOutput string
)

var normalizeCmd = &cobra.Command{
	Use:   "normalize",
	Short: "Rewrite a content document in canonical form",
	Long:  "Parses a content document, fills missing fields with their defaults and writes it back with 2-space indentation.",
	RunE:  runNormalize,
}

func init() {
	normalizeCmd.Flags().StringVarP(&normalizeInput, "in", "i", "", "Path to the content JSON file (required)")
	normalizeCmd.Flags().StringVarP(&normalizeOutput, "out", "o", "", "Output path (default: stdout)")

	if err := normalizeCmd.MarkFlagRequired("in"); err != nil {
		panic(fmt.Sprintf("failed to mark in flag as required: %v", err))
	}
	rootCmd.AddCommand(normalizeCmd)
}

func runNormalize(cmd *cobra.Command, _ []string) error {
	data, err := os.ReadFile(normalizeInput)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", normalizeInput, err)
	}
	doc, err := content.Parse(data, content.SourceImport)
	if err != nil {
		return err
	}
	raw, err := content.Serialize(doc)
	if err != nil {
		return err
	}

	if normalizeOutput == "" {
		_, err = fmt.Fprintln(cmd.OutOrStdout(), string(raw))
		return err
	}
	if err := writeFile(normalizeOutput, raw); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Normalized document written to %s\n", normalizeOutput)
	return nil
}
