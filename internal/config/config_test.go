package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Simplify.Ratio != 0.5 {
		t.Errorf("Ratio = %g, want 0.5", cfg.Simplify.Ratio)
	}
	if cfg.Simplify.BoundaryWeight != 10000.0 {
		t.Errorf("BoundaryWeight = %g, want 10000", cfg.Simplify.BoundaryWeight)
	}
	if cfg.Simplify.WeldScale != 10000.0 {
		t.Errorf("WeldScale = %g, want 10000", cfg.Simplify.WeldScale)
	}
	if !cfg.Simplify.AttributeQuadrics {
		t.Error("AttributeQuadrics disabled by default")
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("Level = %q, want info", cfg.Logging.Level)
	}
}

func TestLoadMergesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	data := []byte("simplify:\n  ratio: 0.8\n  boundary_weight: 500\nlogging:\n  level: debug\n")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Simplify.Ratio != 0.8 {
		t.Errorf("Ratio = %g, want 0.8 from file", cfg.Simplify.Ratio)
	}
	if cfg.Simplify.BoundaryWeight != 500 {
		t.Errorf("BoundaryWeight = %g, want 500 from file", cfg.Simplify.BoundaryWeight)
	}
	// Values absent from the file keep their defaults.
	if cfg.Simplify.GeoWeight != 1.0 {
		t.Errorf("GeoWeight = %g, want default 1.0", cfg.Simplify.GeoWeight)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Level = %q, want debug", cfg.Logging.Level)
	}
}

func TestLoadMissingFileFails(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for explicit missing config path")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Simplify.Ratio = 0.33

	path := filepath.Join(t.TempDir(), "out.yaml")
	if err := Save(cfg, path); err != nil {
		t.Fatalf("Save: %v", err)
	}
	back, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if back.Simplify.Ratio != 0.33 {
		t.Errorf("Ratio = %g, want 0.33", back.Simplify.Ratio)
	}
}
