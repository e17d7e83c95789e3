package main

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "footprint",
	Short: "Ground footprint of a drone gimbal camera",
	Long: `Footprint projects the field of view of a gimbal camera onto the ground.

It reads vehicle and gimbal telemetry over MAVLink, shrinks the field of view
until every corner ray points safely below the horizon, and publishes the
WGS84 corners of the visible ground patch to live clients.

Settings come from a YAML file, environment variables (FOOTPRINT_*) and
command-line flags. Flags take precedence over environment variables, which
take precedence over the file.`,
	SilenceUsage: true,
}

// Execute runs the root command. Called once by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringP("config", "c", filepath.Join("configs", "default.yaml"), "path to config file")
	rootCmd.PersistentFlags().IntP("debug", "d", 0, "debug level 0-4 (overrides config)")
}
