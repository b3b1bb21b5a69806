package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"xlsx-crusher/utils"
)

type Config struct {
	Input struct {
		Dir      string   `yaml:"dir"`
		Patterns []string `yaml:"patterns"` // globs sur les noms, ex: "*2024*.xlsx"
	} `yaml:"input"`
	Output struct {
		Prefix    string `yaml:"prefix"`     // préfixe des fichiers produits
		ReportDir string `yaml:"report_dir"` // rapports JSON
		LogDir    string `yaml:"log_dir"`
	} `yaml:"output"`
	Batch struct {
		Workers            int     `yaml:"workers"`     // 0 = coeurs physiques - cpu_reserve
		CPUReserve         int     `yaml:"cpu_reserve"` // coeurs laissés à l'OS
		Size               int     `yaml:"size"`
		CooldownSeconds    int     `yaml:"cooldown_seconds"` // pause entre deux lots
		SampleEvery        int     `yaml:"sample_every"`     // échantillonnage CPU/mémoire tous les N fichiers
		MemoryWatermarkPct float64 `yaml:"memory_watermark_pct"`
	} `yaml:"batch"`
	Detect struct {
		SafeRows       int `yaml:"safe_rows"` // étendue rapportée de confiance
		SafeCols       int `yaml:"safe_cols"`
		RowScanCap     int `yaml:"row_scan_cap"` // plafond dur du scan inverse
		ColScanCap     int `yaml:"col_scan_cap"`
		RowBuffer      int `yaml:"row_buffer"` // marge ajoutée au bord détecté
		ColBuffer      int `yaml:"col_buffer"`
		EmptyColStreak int `yaml:"empty_col_streak"` // colonnes vides consécutives avant arrêt
		ProbeCols      int `yaml:"probe_cols"`       // colonnes testées par ligne lors du scan
	} `yaml:"detect"`
	Sanitize struct {
		DenySheets         []string `yaml:"deny_sheets"` // sous-chaînes, insensible à la casse
		AnomalyCellCeiling int64    `yaml:"anomaly_cell_ceiling"`
	} `yaml:"sanitize"`
	History struct {
		Backend string `yaml:"backend"` // "", "sqlite", "mysql", "postgres"
		DSN     string `yaml:"dsn"`
	} `yaml:"history"`
}

// Valeurs de référence, calées sur le corpus d'origine. Elles ne sont pas
// censées se généraliser sans re-calibrage.
func Default() *Config {
	var cfg Config
	cfg.Input.Dir = "."
	cfg.Input.Patterns = []string{"*2025*.xlsx", "*2024*.xlsx", "*2023*.xlsx"}
	cfg.Output.Prefix = "processed_"
	cfg.Output.ReportDir = "reports"
	cfg.Batch.CPUReserve = 2
	cfg.Batch.Size = 50
	cfg.Batch.CooldownSeconds = 2
	cfg.Batch.SampleEvery = 10
	cfg.Batch.MemoryWatermarkPct = 85
	cfg.Detect.SafeRows = 500
	cfg.Detect.SafeCols = 50
	cfg.Detect.RowScanCap = 2000
	cfg.Detect.ColScanCap = 100
	cfg.Detect.RowBuffer = 10
	cfg.Detect.ColBuffer = 5
	cfg.Detect.EmptyColStreak = 20
	cfg.Detect.ProbeCols = 50
	cfg.Sanitize.DenySheets = []string{"checklist items", "application checklist"}
	cfg.Sanitize.AnomalyCellCeiling = 500000
	return &cfg
}

// LoadConfig lit le yaml (chemin absolu, ou relatif à la racine projet) et
// complète les champs absents avec les valeurs de référence.
func LoadConfig(file string) (*Config, error) {
	cfgPath := file
	if !filepath.IsAbs(cfgPath) {
		if _, err := os.Stat(cfgPath); err != nil {
			cfgPath = filepath.Join(utils.GetProjectRoot(), file)
		}
	}
	data, err := os.ReadFile(cfgPath)
	if err != nil {
		return nil, err
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	cfg.applyFloors()
	return cfg, nil
}

func (c *Config) applyFloors() {
	if c.Output.Prefix == "" {
		c.Output.Prefix = "processed_"
	}
	if c.Batch.Size < 1 {
		c.Batch.Size = 1
	}
	if c.Detect.SafeRows < 1 {
		c.Detect.SafeRows = 1
	}
	if c.Detect.SafeCols < 1 {
		c.Detect.SafeCols = 1
	}
	if c.Detect.RowScanCap < c.Detect.SafeRows {
		c.Detect.RowScanCap = c.Detect.SafeRows
	}
	if c.Detect.ColScanCap < c.Detect.SafeCols {
		c.Detect.ColScanCap = c.Detect.SafeCols
	}
}
