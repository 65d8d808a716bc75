package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/portfolio-admin/internal/observability"
	"github.com/jonathan/portfolio-admin/internal/publish"
	"github.com/jonathan/portfolio-admin/internal/store"
)

var publishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Send the current document to the publish endpoint",
	Long: "Posts the current document to publish_url. On success the publisher's copy " +
		"becomes the saved override; on failure nothing changes.",
	RunE: runPublish,
}

func init() {
	rootCmd.AddCommand(publishCmd)
}

func runPublish(cmd *cobra.Command, _ []string) error {
	ctx := contextOrBackground(cmd)
	st, closeStore, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	res, err := st.Save(ctx, store.ToPublisher())
	if err != nil {
		var pubErr *publish.Error
		if errors.As(err, &pubErr) {
			return errors.New(pubErr.UserMessage())
		}
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Published.")
	if verbose {
		observability.NewPrinter(out).PrintPublish(res.Publish)
	} else if res.Publish != nil {
		if res.Publish.ContentPath != "" {
			fmt.Fprintf(out, "  content: %s\n", res.Publish.ContentPath)
		}
		if res.Publish.PhotoPath != "" {
			fmt.Fprintf(out, "  photo:   %s\n", res.Publish.PhotoPath)
		}
	}
	return nil
}
