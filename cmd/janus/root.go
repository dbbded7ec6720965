package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "janus",
	Short: "Janus - write-path front door for IdP uptime tracking",
	Long: `Janus is the write-path front door for a service that tracks which
identity providers (IdPs) have recently been observed operating correctly.

It accepts a restricted set of write-only calls, guards them behind
liveness and load checks, records observed "IdP seen" events into a
persistent store asynchronously, and terminates without dropping
in-flight work.`,
	Version: Version,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "config.yaml", "config file path")
}
