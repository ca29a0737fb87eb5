package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/signalsfoundry/wmn-simulator/core"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got, want := cfg.Parameters(), core.DefaultParameters(); got != want {
		t.Fatalf("Parameters() = %+v, want %+v", got, want)
	}
	if cfg.Simulation.Runs != 1 || cfg.Server.Addr != ":8080" || cfg.Metrics.Addr != ":9090" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.Log.Level != "info" || cfg.Log.Format != "text" {
		t.Fatalf("log defaults = %+v", cfg.Log)
	}
	if tc := cfg.TracingConfig(); tc.Enabled || tc.Exporter != "stdout" || tc.SampleRatio != 1 {
		t.Fatalf("tracing defaults = %+v", tc)
	}
}

func TestLoadFileAndEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wmn.yml")
	body := []byte(`
simulation:
  num_nodes: 35
  tx_range: 90
  seed: 7
  runs: 4
log:
  level: debug
  format: json
`)
	if err := os.WriteFile(path, body, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("WMN_TX_RANGE", "120")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Simulation.NumNodes != 35 || cfg.Simulation.Seed != 7 || cfg.Simulation.Runs != 4 {
		t.Fatalf("file values not applied: %+v", cfg.Simulation)
	}
	if cfg.Simulation.TxRange != 120 {
		t.Fatalf("tx_range = %d, want env override 120", cfg.Simulation.TxRange)
	}
	if cfg.Simulation.SelfishRatio != 20 {
		t.Fatalf("selfish_ratio = %d, want default 20", cfg.Simulation.SelfishRatio)
	}
	if lc := cfg.LoggingConfig(); lc.Level != "debug" || lc.Format != "json" {
		t.Fatalf("logging config = %+v", lc)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	t.Setenv("WMN_SELFISH_RATIO", "150")
	if _, err := Load(""); !errors.Is(err, core.ErrInvalidParameters) {
		t.Fatalf("Load() = %v, want ErrInvalidParameters", err)
	}
}

func TestLoadRejectsZeroRuns(t *testing.T) {
	t.Setenv("WMN_RUNS", "0")
	if _, err := Load(""); err == nil {
		t.Fatalf("expected error for zero runs")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestLoadKeepsExplicitZeroValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wmn.yaml")
	body := []byte("simulation:\n  selfish_ratio: 0\n  multi_radio: false\n  mobility: false\n")
	if err := os.WriteFile(path, body, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	p := cfg.Parameters()
	if p.SelfishRatio != 0 || p.MultiRadio || p.Mobility {
		t.Fatalf("explicit zero values overwritten: %+v", p)
	}
	if !p.MultiChannel || p.NumNodes != 20 {
		t.Fatalf("unset keys lost their defaults: %+v", p)
	}
}

func TestUsageListsEnvironment(t *testing.T) {
	var buf strings.Builder
	Usage(&buf)
	for _, name := range []string{"WMN_NUM_NODES", "WMN_TRACING_EXPORTER", "WMN_SERVER_ADDR"} {
		if !strings.Contains(buf.String(), name) {
			t.Fatalf("usage missing %s:\n%s", name, buf.String())
		}
	}
}

func TestLoadBundledConfig(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "..", "configs", "wmnsim.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Parameters() != core.DefaultParameters() {
		t.Fatalf("bundled config drifted from defaults: %+v", cfg.Parameters())
	}
}
