package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/portfolio-admin/internal/watch"
)

var watchCmd = &cobra.Command{
	Use:   "watch <file>",
	Short: "Sync a JSON file into the local override as it is edited",
	Long: "Watches a JSON file and, after each save, loads it like an edit of the raw JSON view. " +
		"Valid documents are saved as the local override; invalid ones are reported and ignored. " +
		"A missing file is created from the current document first.",
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(contextOrBackground(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, closeStore, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	path := args[0]
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		snap, err := st.Raw()
		if err != nil {
			return err
		}
		if err := writeFile(path, []byte(snap.Raw)); err != nil {
			return err
		}
		logger.Info("created watched file from current document", zap.String("path", path))
	}

	out := cmd.OutOrStdout()
	w, err := watch.New(path, st, cfg.RawDebounce(),
		watch.WithLogger(logger),
		watch.OnSync(func(r watch.Result) {
			switch {
			case r.Err != nil:
				fmt.Fprintf(out, "Error: %v\n", r.Err)
			case !r.Status.Valid:
				fmt.Fprintf(out, "%s\n", r.Status.Error)
				for _, d := range r.Status.Details {
					fmt.Fprintf(out, "  - %s\n", d)
				}
			default:
				fmt.Fprintln(out, "Saved.")
			}
		}),
	)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Watching %s (Ctrl-C to stop)\n", w.Path())
	return w.Run(ctx)
}
