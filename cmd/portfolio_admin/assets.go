package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/portfolio-admin/internal/assets"
	"github.com/jonathan/portfolio-admin/internal/form"
	"github.com/jonathan/portfolio-admin/internal/store"
)

var (
	setPhotoClear  bool
	setResumeClear bool
)

var setPhotoCmd = &cobra.Command{
	Use:   "set-photo [image]",
	Short: "Set the profile photo from an image file",
	Long:  "Crops the image to a 512px square JPEG, embeds it in the document as a data URL and saves the local override.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setAsset(cmd, args, "profile.photo", setPhotoClear, assets.PhotoMaxBytes, assets.ProcessPhoto)
	},
}

var setResumeCmd = &cobra.Command{
	Use:   "set-resume [pdf]",
	Short: "Set the resume from a PDF file",
	Long:  "Embeds the PDF in the document as a data URL and saves the local override.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setAsset(cmd, args, "profile.resume", setResumeClear, assets.ResumeMaxBytes, assets.ProcessResume)
	},
}

func init() {
	setPhotoCmd.Flags().BoolVar(&setPhotoClear, "clear", false, "Remove the photo instead")
	setResumeCmd.Flags().BoolVar(&setResumeClear, "clear", false, "Remove the resume instead")
	rootCmd.AddCommand(setPhotoCmd, setResumeCmd)
}

func setAsset(cmd *cobra.Command, args []string, path string, remove bool, limit int64, process func(assets.Upload) (string, error)) error {
	if remove == (len(args) == 1) {
		return fmt.Errorf("give either a file or --clear")
	}

	value := ""
	if !remove {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("failed to open %s: %w", args[0], err)
		}
		up, err := assets.ReadUpload(f, "", limit)
		f.Close()
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", args[0], err)
		}
		if value, err = process(up); err != nil {
			return err
		}
	}

	ctx := contextOrBackground(cmd)
	st, closeStore, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	if _, err := st.Apply(form.Set(path, value)); err != nil {
		return err
	}
	if _, err := st.Save(ctx, store.ToCache()); err != nil {
		return err
	}
	if remove {
		fmt.Fprintf(cmd.OutOrStdout(), "Cleared %s\n", path)
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), "Updated %s (%d bytes)\n", path, len(value))
	}
	return nil
}
