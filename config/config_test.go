package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load defaults: %v", err)
	}

	if cfg.Simulation.Population != 5000 {
		t.Errorf("population = %d, want 5000", cfg.Simulation.Population)
	}
	if cfg.Simulation.Strategy != StrategyCoherent {
		t.Errorf("strategy = %q, want %q", cfg.Simulation.Strategy, StrategyCoherent)
	}
	if cfg.Derived.MaxRadius != 5.0 {
		t.Errorf("max radius = %g, want 5", cfg.Derived.MaxRadius)
	}
	if cfg.Derived.Workers < 1 {
		t.Errorf("workers = %d, want >= 1", cfg.Derived.Workers)
	}
}

func TestLoadOverlay(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	overlay := "simulation:\n  population: 12\n  neighborhood: cells27\nrules:\n  rule2_distance: 7.5\n"
	if err := os.WriteFile(path, []byte(overlay), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load overlay: %v", err)
	}

	if cfg.Simulation.Population != 12 {
		t.Errorf("population = %d, want 12", cfg.Simulation.Population)
	}
	// Fields absent from the overlay keep their defaults
	if cfg.Simulation.DT != 0.2 {
		t.Errorf("dt = %g, want default 0.2", cfg.Simulation.DT)
	}
	if cfg.Derived.MaxRadius != 7.5 {
		t.Errorf("max radius = %g, want 7.5", cfg.Derived.MaxRadius)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name    string
		overlay string
		wantErr string
	}{
		{"zero population", "simulation:\n  population: 0\n", "population"},
		{"negative dt", "simulation:\n  dt: -1\n", "dt"},
		{"unknown strategy", "simulation:\n  strategy: octree\n", "strategy"},
		{"unknown neighborhood", "simulation:\n  neighborhood: cells64\n", "neighborhood"},
		{"zero radius", "rules:\n  rule3_distance: 0\n", "distances"},
		{"zero max speed", "rules:\n  max_speed: 0\n", "max_speed"},
		{"negative budget", "memory:\n  max_buffer_bytes: -4\n", "max_buffer_bytes"},
		{"bad yaml", "simulation: [\n", "parsing config file"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(path, []byte(tc.overlay), 0644); err != nil {
				t.Fatal(err)
			}
			_, err := Load(path)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("error %q does not mention %q", err, tc.wantErr)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil || !strings.Contains(err.Error(), "reading config file") {
		t.Errorf("expected reading error, got %v", err)
	}
}

func TestWriteYAMLRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Simulation.Population = 77
	cfg.Rules.MaxSpeed = 2.5

	path := filepath.Join(t.TempDir(), "snapshot.yaml")
	if err := cfg.WriteYAML(path); err != nil {
		t.Fatalf("WriteYAML: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load snapshot: %v", err)
	}
	if loaded.Simulation.Population != 77 || loaded.Rules.MaxSpeed != 2.5 {
		t.Errorf("snapshot did not round-trip: population=%d max_speed=%g",
			loaded.Simulation.Population, loaded.Rules.MaxSpeed)
	}
}

func TestCfgBeforeInitPanics(t *testing.T) {
	saved := global
	global = nil
	defer func() {
		global = saved
		if recover() == nil {
			t.Error("expected panic from Cfg() before Init()")
		}
	}()
	Cfg()
}
