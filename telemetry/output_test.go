package telemetry

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pthm-cable/boids/config"
)

func TestNewOutputManagerDisabled(t *testing.T) {
	om, err := NewOutputManager("")
	if err != nil || om != nil {
		t.Fatalf("empty dir should disable output, got %v, %v", om, err)
	}
	// Nil manager methods are no-ops
	if err := om.WriteFlock(FlockStats{}); err != nil {
		t.Error(err)
	}
	if err := om.Close(); err != nil {
		t.Error(err)
	}
}

func TestOutputManagerWritesCSV(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "run")
	om, err := NewOutputManager(dir)
	if err != nil {
		t.Fatalf("NewOutputManager: %v", err)
	}

	for _, end := range []int64{100, 200} {
		if err := om.WriteFlock(FlockStats{WindowEndTick: end, Strategy: "coherent", Population: 64}); err != nil {
			t.Fatalf("WriteFlock: %v", err)
		}
		perf := PerfStats{AvgTickDuration: time.Millisecond, PhasePct: map[string]float64{PhaseSort: 10}}
		if err := om.WritePerf(perf, end, "coherent"); err != nil {
			t.Fatalf("WritePerf: %v", err)
		}
	}
	if err := om.WriteConfig(config.Default()); err != nil {
		t.Fatalf("WriteConfig: %v", err)
	}
	if err := om.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	flock := readLines(t, filepath.Join(dir, "flock.csv"))
	if len(flock) != 3 {
		t.Fatalf("flock.csv has %d lines, want header + 2 rows", len(flock))
	}
	if !strings.HasPrefix(flock[0], "window_end,sim_time,strategy,population") {
		t.Errorf("unexpected flock header %q", flock[0])
	}
	if !strings.HasPrefix(flock[2], "200,") {
		t.Errorf("second row %q should start with window end 200", flock[2])
	}

	perf := readLines(t, filepath.Join(dir, "perf.csv"))
	if len(perf) != 3 {
		t.Fatalf("perf.csv has %d lines, want header + 2 rows", len(perf))
	}
	if !strings.Contains(perf[0], "sort_pct") {
		t.Errorf("perf header %q missing sort_pct", perf[0])
	}

	if _, err := config.Load(filepath.Join(dir, "config.yaml")); err != nil {
		t.Errorf("config snapshot does not load: %v", err)
	}
}

func readLines(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return strings.Split(strings.TrimRight(string(data), "\n"), "\n")
}
