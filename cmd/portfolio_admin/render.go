package main

import (
	"bytes"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/portfolio-admin/internal/site"
)

var renderOutput string

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render the public page for the current document",
	RunE:  runRender,
}

func init() {
	renderCmd.Flags().StringVarP(&renderOutput, "out", "o", "", "Output HTML path (default: stdout)")
	rootCmd.AddCommand(renderCmd)
}

func runRender(cmd *cobra.Command, _ []string) error {
	ctx := contextOrBackground(cmd)
	renderer, err := site.New(cfg.TemplatePath)
	if err != nil {
		return err
	}
	st, closeStore, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	if renderOutput == "" {
		return renderer.Render(cmd.OutOrStdout(), st.Document())
	}
	var buf bytes.Buffer
	if err := renderer.Render(&buf, st.Document()); err != nil {
		return err
	}
	if err := writeFile(renderOutput, buf.Bytes()); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Rendered to %s\n", renderOutput)
	return nil
}
