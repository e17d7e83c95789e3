package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"

	"github.com/cjeanneret/FootprintGo/internal/config"
	"github.com/cjeanneret/FootprintGo/internal/logic/projection"
)

// newTestCmd mirrors the flags of serve and project on a fresh command so
// tests do not share parsed state through the package-level commands.
func newTestCmd(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	c := &cobra.Command{Use: "test"}
	f := c.Flags()
	f.StringP("config", "c", filepath.Join("configs", "default.yaml"), "")
	f.IntP("debug", "d", 0, "")
	f.String("endpoint", "", "")
	f.String("address", "", "")
	f.String("serial", "", "")
	f.Int("baud", 0, "")
	f.Int("port", 0, "")
	f.Bool("mock-gpio", false, "")
	f.StringP("replay", "f", "", "")
	f.StringSliceP("messages", "m", nil, "")
	f.Float64("hfov", 0, "")
	if err := c.ParseFlags(args); err != nil {
		t.Fatalf("ParseFlags: %v", err)
	}
	return c
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "configs")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, "test.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// ---------- flag > env > default ----------

func TestGetConfigInt_Precedence(t *testing.T) {
	t.Setenv("FOOTPRINT_PORT", "9000")

	if got := getConfigInt(newTestCmd(t), "port", "FOOTPRINT_PORT", 8777); got != 9000 {
		t.Errorf("env: got %d, want 9000", got)
	}
	if got := getConfigInt(newTestCmd(t, "--port", "9100"), "port", "FOOTPRINT_PORT", 8777); got != 9100 {
		t.Errorf("flag: got %d, want 9100", got)
	}

	t.Setenv("FOOTPRINT_PORT", "not-a-number")
	if got := getConfigInt(newTestCmd(t), "port", "FOOTPRINT_PORT", 8777); got != 8777 {
		t.Errorf("bad env: got %d, want fallback 8777", got)
	}
}

func TestGetConfigString_UnknownFlagUsesEnv(t *testing.T) {
	t.Setenv("FOOTPRINT_NOPE", "from-env")
	if got := getConfigString(newTestCmd(t), "nope", "FOOTPRINT_NOPE", "fallback"); got != "from-env" {
		t.Errorf("got %q, want from-env", got)
	}
}

func TestGetConfigBoolAndFloat(t *testing.T) {
	t.Setenv("FOOTPRINT_MOCK_GPIO", "true")
	if !getConfigBool(newTestCmd(t), "mock-gpio", "FOOTPRINT_MOCK_GPIO", false) {
		t.Error("env true should win over fallback")
	}
	if got := getConfigFloat(newTestCmd(t, "--hfov", "72.5"), "hfov", "FOOTPRINT_HFOV", 60); got != 72.5 {
		t.Errorf("hfov = %v, want 72.5", got)
	}
}

func TestGetConfigStrings_Precedence(t *testing.T) {
	t.Setenv("FOOTPRINT_MESSAGES", "ATTITUDE,CAMERA_FOV_STATUS")

	got := getConfigStrings(newTestCmd(t), "messages", "FOOTPRINT_MESSAGES", nil)
	if len(got) != 2 || got[0] != "ATTITUDE" || got[1] != "CAMERA_FOV_STATUS" {
		t.Errorf("env: got %v", got)
	}
	got = getConfigStrings(newTestCmd(t, "-m", "GLOBAL_POSITION_INT"), "messages", "FOOTPRINT_MESSAGES", nil)
	if len(got) != 1 || got[0] != "GLOBAL_POSITION_INT" {
		t.Errorf("flag: got %v", got)
	}
}

// ---------- loadConfig ----------

func TestLoadConfig_ReplayFlag(t *testing.T) {
	path := writeConfig(t, "")
	cfg, err := loadConfig(newTestCmd(t, "--config", path, "--replay", "flight.tlog", "--messages", "ATTITUDE"))
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Telemetry.Endpoint != config.EndpointReplay || cfg.Telemetry.ReplayFile != "flight.tlog" {
		t.Errorf("telemetry = %+v", cfg.Telemetry)
	}
	if len(cfg.Telemetry.Messages) != 1 || cfg.Telemetry.Messages[0] != "ATTITUDE" {
		t.Errorf("messages = %v", cfg.Telemetry.Messages)
	}

	if _, err := loadConfig(newTestCmd(t, "--config", path, "--messages", "HEARTBEAT")); err == nil {
		t.Error("expected error for unknown message name")
	}
}

func TestLoadConfig_MissingDefaultFallsBack(t *testing.T) {
	cfg, err := loadConfig(newTestCmd(t))
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Web.Port != 8777 {
		t.Errorf("Web.Port = %d, want default 8777", cfg.Web.Port)
	}
}

func TestLoadConfig_ExplicitMissingFileFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "configs", "absent.yaml")
	if _, err := loadConfig(newTestCmd(t, "--config", path)); err == nil {
		t.Error("expected error for explicit missing config")
	}
}

func TestLoadConfig_RejectsPathOutsideConfigs(t *testing.T) {
	if _, err := loadConfig(newTestCmd(t, "--config", "/etc/passwd.yaml")); err == nil {
		t.Error("expected error for path outside configs/")
	}
}

func TestLoadConfig_Overrides(t *testing.T) {
	path := writeConfig(t, "web:\n  port: 8100\ndefaults:\n  debug_level: 1\n")
	t.Setenv("FOOTPRINT_ADDRESS", "10.0.0.2:5760")

	cfg, err := loadConfig(newTestCmd(t, "--config", path, "--port", "8200", "--debug", "3"))
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Web.Port != 8200 {
		t.Errorf("Web.Port = %d, want 8200 (flag)", cfg.Web.Port)
	}
	if cfg.Defaults.DebugLevel != 3 {
		t.Errorf("DebugLevel = %d, want 3 (flag)", cfg.Defaults.DebugLevel)
	}
	if cfg.Telemetry.Address != "10.0.0.2:5760" {
		t.Errorf("Address = %q, want env value", cfg.Telemetry.Address)
	}
}

func TestLoadConfig_InvalidOverrideRejected(t *testing.T) {
	path := writeConfig(t, "")
	if _, err := loadConfig(newTestCmd(t, "--config", path, "--endpoint", "carrier-pigeon")); err == nil {
		t.Error("expected error for unknown endpoint")
	}
	if _, err := loadConfig(newTestCmd(t, "--config", path, "--debug", "9")); err == nil {
		t.Error("expected error for debug level 9")
	}
}

// ---------- paramsFromConfig ----------

func TestParamsFromConfig(t *testing.T) {
	const epsilon = 1e-12
	p := paramsFromConfig(config.Default())
	want := projection.DefaultParams()
	if math.Abs(p.Ceiling-want.Ceiling) > epsilon || math.Abs(p.MinSpread-want.MinSpread) > epsilon ||
		math.Abs(p.Step-want.Step) > epsilon || p.MaxIterations != want.MaxIterations {
		t.Errorf("params = %+v, want %+v", p, want)
	}
	if err := p.Validate(); err != nil {
		t.Errorf("default params invalid: %v", err)
	}
}

// ---------- runAll ----------

func TestRunAll_FirstErrorStopsOthers(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	boom := errors.New("boom")

	err := runAll(ctx, cancel,
		func(context.Context) error { return boom },
		func(ctx context.Context) error { <-ctx.Done(); return nil },
		func(ctx context.Context) error { <-ctx.Done(); return ctx.Err() },
	)
	if !errors.Is(err, boom) {
		t.Errorf("err = %v, want boom", err)
	}
}

func TestRunAll_CancelIsClean(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()
	err := runAll(ctx, cancel,
		func(ctx context.Context) error { <-ctx.Done(); return ctx.Err() },
		func(ctx context.Context) error { <-ctx.Done(); return nil },
	)
	if err != nil {
		t.Errorf("err = %v, want nil on cancel", err)
	}
}

// ---------- project command ----------

func TestProjectCommand_Nadir(t *testing.T) {
	path := writeConfig(t, "")
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{
		"project", "--config", path,
		"--lat", "59", "--lon", "18", "--alt", "100",
		"--cam-pitch=-90", "--hfov", "60", "--vfov", "40",
	})
	defer rootCmd.SetArgs(nil)

	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	var msg projection.Message
	if err := json.Unmarshal(out.Bytes(), &msg); err != nil {
		t.Fatalf("decode output %q: %v", out.String(), err)
	}
	if !msg.HasProjection {
		t.Fatalf("expected a footprint, reason %q", msg.Reason)
	}
	if msg.Lat != 59 || msg.Lon != 18 {
		t.Errorf("vehicle = (%v, %v), want (59, 18)", msg.Lat, msg.Lon)
	}
	// corner 2 (-h, -v) lies south-west of the vehicle
	if msg.Corner2.Lat >= 59 || msg.Corner2.Lon >= 18 {
		t.Errorf("corner2 = %+v, want south-west", msg.Corner2)
	}
}
