package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"watchtower-hq/janus/pkg/config"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration file",
	Long: `Load the configuration file, apply defaults and environment overrides,
and report whether the result is valid, without starting the server.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadWithEnvOverrides(cfgFile)
		if err != nil {
			return err
		}

		fmt.Printf("✓ Configuration valid\n")
		fmt.Printf("  listen address: %s\n", cfg.Server.ListenAddress)
		fmt.Printf("  write prefix:   %s\n", cfg.Server.WritePrefix)
		fmt.Printf("  store:          %s (%s)\n", cfg.Store.Path, cfg.Store.Driver)
		fmt.Printf("  lag threshold:  %s\n", cfg.Admission.LagThreshold)
		fmt.Printf("  drain timeout:  %s\n", cfg.Server.DrainTimeout)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
