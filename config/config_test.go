package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Detect.SafeRows != 500 || cfg.Detect.SafeCols != 50 {
		t.Errorf("safe extent = (%d,%d), want (500,50)", cfg.Detect.SafeRows, cfg.Detect.SafeCols)
	}
	if cfg.Sanitize.AnomalyCellCeiling != 500000 {
		t.Errorf("anomaly ceiling = %d, want 500000", cfg.Sanitize.AnomalyCellCeiling)
	}
	if cfg.Batch.Size != 50 || cfg.Batch.MemoryWatermarkPct != 85 {
		t.Errorf("batch policy = %+v", cfg.Batch)
	}
}

func TestLoadConfig_PartialFileKeepsDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "crusher.yaml")
	body := []byte(`
input:
  dir: "/data/sites"
batch:
  size: 10
sanitize:
  deny_sheets: ["draft"]
`)
	if err := os.WriteFile(path, body, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Input.Dir != "/data/sites" {
		t.Errorf("Input.Dir = %q", cfg.Input.Dir)
	}
	if cfg.Batch.Size != 10 {
		t.Errorf("Batch.Size = %d, want 10", cfg.Batch.Size)
	}
	if !reflect.DeepEqual(cfg.Sanitize.DenySheets, []string{"draft"}) {
		t.Errorf("DenySheets = %v", cfg.Sanitize.DenySheets)
	}
	// Le reste garde les valeurs de référence.
	if cfg.Detect.RowScanCap != 2000 || cfg.Output.Prefix != "processed_" {
		t.Errorf("defaults lost: %+v", cfg)
	}
}

func TestLoadConfig_Floors(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "crusher.yaml")
	body := []byte(`
batch:
  size: -3
detect:
  safe_rows: 800
  row_scan_cap: 100
`)
	if err := os.WriteFile(path, body, 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Batch.Size != 1 {
		t.Errorf("Batch.Size = %d, want floor 1", cfg.Batch.Size)
	}
	// Le plafond de scan ne peut pas être sous le plafond de confiance.
	if cfg.Detect.RowScanCap != 800 {
		t.Errorf("RowScanCap = %d, want raised to 800", cfg.Detect.RowScanCap)
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("expected error for missing config file")
	}
}
