package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/portfolio-admin/internal/config"
)

var initConfigForce bool

var initConfigCmd = &cobra.Command{
	Use:               "init-config",
	Short:             "Write a config file with the default settings",
	PersistentPreRunE: noSetup,
	RunE:              runInitConfig,
}

func init() {
	initConfigCmd.Flags().BoolVar(&initConfigForce, "force", false, "Overwrite an existing file")
	rootCmd.AddCommand(initConfigCmd)
}

func runInitConfig(cmd *cobra.Command, _ []string) error {
	if err := config.WriteDefault(configPath, initConfigForce); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", configPath)
	return nil
}
