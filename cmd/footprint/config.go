package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cjeanneret/FootprintGo/internal/config"
	"github.com/cjeanneret/FootprintGo/internal/logic/projection"
)

const envPrefix = "FOOTPRINT_"

// loadConfig reads the YAML file named by --config / FOOTPRINT_CONFIG and
// applies the flag and environment overrides registered on cmd.
// A missing default file falls back to built-in defaults; an explicit path must exist.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path := getConfigString(cmd, "config", envPrefix+"CONFIG", "")
	explicit := path != ""
	if !explicit {
		path, _ = cmd.Flags().GetString("config")
	}

	var cfg *config.Config
	if err := config.ValidateConfigPath(path); err != nil {
		return nil, fmt.Errorf("invalid config path: %w", err)
	}
	loaded, err := config.Load(path)
	switch {
	case err == nil:
		cfg = loaded
	case !explicit && errors.Is(err, fs.ErrNotExist):
		cfg = config.Default()
	default:
		return nil, fmt.Errorf("load config: %w", err)
	}

	cfg.Defaults.DebugLevel = getConfigInt(cmd, "debug", envPrefix+"DEBUG", cfg.Defaults.DebugLevel)
	applyServeOverrides(cmd, cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// applyServeOverrides applies the serve flags; other commands do not define them.
func applyServeOverrides(cmd *cobra.Command, cfg *config.Config) {
	t := &cfg.Telemetry
	t.Endpoint = getConfigString(cmd, "endpoint", envPrefix+"ENDPOINT", t.Endpoint)
	t.Address = getConfigString(cmd, "address", envPrefix+"ADDRESS", t.Address)
	t.SerialDevice = getConfigString(cmd, "serial", envPrefix+"SERIAL", t.SerialDevice)
	t.BaudRate = getConfigInt(cmd, "baud", envPrefix+"BAUD", t.BaudRate)
	if replay := getConfigString(cmd, "replay", envPrefix+"REPLAY", ""); replay != "" {
		t.Endpoint = config.EndpointReplay
		t.ReplayFile = replay
	}
	t.Messages = getConfigStrings(cmd, "messages", envPrefix+"MESSAGES", t.Messages)
	cfg.Web.Port = getConfigInt(cmd, "port", envPrefix+"PORT", cfg.Web.Port)
	cfg.Defaults.MockGPIO = getConfigBool(cmd, "mock-gpio", envPrefix+"MOCK_GPIO", cfg.Defaults.MockGPIO)
}

// paramsFromConfig converts the projection section to engine parameters.
func paramsFromConfig(cfg *config.Config) projection.Params {
	return projection.Params{
		Ceiling:       cfg.CeilingRad(),
		MinSpread:     cfg.MinSpreadRad(),
		Step:          cfg.StepRad(),
		MaxIterations: cfg.Projection.MaxIterations,
	}
}

// getConfigString gets a string value from flag, then env, then fallback
func getConfigString(cmd *cobra.Command, flagName, envName, fallback string) string {
	if f := cmd.Flags().Lookup(flagName); f != nil && f.Changed {
		val, _ := cmd.Flags().GetString(flagName)
		return val
	}
	if v := os.Getenv(envName); v != "" {
		return v
	}
	return fallback
}

// getConfigStrings gets a list from flag, then comma-separated env, then fallback
func getConfigStrings(cmd *cobra.Command, flagName, envName string, fallback []string) []string {
	if f := cmd.Flags().Lookup(flagName); f != nil && f.Changed {
		val, _ := cmd.Flags().GetStringSlice(flagName)
		return val
	}
	if v := os.Getenv(envName); v != "" {
		return strings.Split(v, ",")
	}
	return fallback
}

// getConfigInt gets an int value from flag, then env, then fallback
func getConfigInt(cmd *cobra.Command, flagName, envName string, fallback int) int {
	if f := cmd.Flags().Lookup(flagName); f != nil && f.Changed {
		val, _ := cmd.Flags().GetInt(flagName)
		return val
	}
	if v := os.Getenv(envName); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

// getConfigFloat gets a float64 value from flag, then env, then fallback
func getConfigFloat(cmd *cobra.Command, flagName, envName string, fallback float64) float64 {
	if f := cmd.Flags().Lookup(flagName); f != nil && f.Changed {
		val, _ := cmd.Flags().GetFloat64(flagName)
		return val
	}
	if v := os.Getenv(envName); v != "" {
		if n, err := strconv.ParseFloat(v, 64); err == nil {
			return n
		}
	}
	return fallback
}

// getConfigBool gets a bool value from flag, then env, then fallback
func getConfigBool(cmd *cobra.Command, flagName, envName string, fallback bool) bool {
	if f := cmd.Flags().Lookup(flagName); f != nil && f.Changed {
		val, _ := cmd.Flags().GetBool(flagName)
		return val
	}
	if v := os.Getenv(envName); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
