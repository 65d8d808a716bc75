package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/portfolio-admin/internal/content"
	"github.com/jonathan/portfolio-admin/internal/observability"
)

var validateCmd = &cobra.Command{
	Use:   "validate [file]",
	Short: "Validate a content document",
	Long:  "Checks that a JSON file is a valid content document. Without a file, the configured default document is checked.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	path := cfg.ContentPath
	if len(args) == 1 {
		path = args[0]
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	out := cmd.OutOrStdout()
	doc, err := content.Parse(data, content.SourceImport)
	if err != nil {
		fmt.Fprintf(out, "Validation failed: %s\n", path)
		var invalid *content.InvalidDocumentError
		if errors.As(err, &invalid) {
			issues := make([]string, 0, len(invalid.Fields))
			for _, f := range invalid.Fields {
				fmt.Fprintf(out, "  - %s: %s\n", f.Field, f.Message)
				issues = append(issues, f.Field+": "+f.Message)
			}
			if verbose {
				observability.NewPrinter(out).PrintIssues("INVALID DOCUMENT", issues)
			}
		}
		return err
	}
	fmt.Fprintf(out, "Validation passed: %s\n", path)
	if verbose {
		observability.NewPrinter(out).PrintDocument(doc)
	}
	return nil
}
