package worker

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/tealeg/xlsx/v3"

	"xlsx-crusher/config"
	"xlsx-crusher/detect"
	"xlsx-crusher/sanitize"
)

// Jetons d'année reconnus dans les noms de fichiers, le premier trouvé gagne.
var yearTokens = []string{"2025", "2024", "2023"}

// YearFromName extrait le jeton d'année du nom de fichier. Purement
// indicatif pour le rapport: 0 si aucun jeton.
func YearFromName(name string) int {
	for _, tok := range yearTokens {
		if strings.Contains(name, tok) {
			y, _ := strconv.Atoi(tok)
			return y
		}
	}
	return 0
}

// OutputPath dérive le chemin de sortie d'un fichier d'entrée.
func OutputPath(path, prefix string) string {
	dir, name := filepath.Split(path)
	return filepath.Join(dir, prefix+name)
}

func policyFromConfig(cfg *config.Config) sanitize.Policy {
	return sanitize.Policy{
		DenySheets: cfg.Sanitize.DenySheets,
		Limits: detect.Limits{
			SafeRows:       cfg.Detect.SafeRows,
			SafeCols:       cfg.Detect.SafeCols,
			RowScanCap:     cfg.Detect.RowScanCap,
			ColScanCap:     cfg.Detect.ColScanCap,
			RowBuffer:      cfg.Detect.RowBuffer,
			ColBuffer:      cfg.Detect.ColBuffer,
			EmptyColStreak: cfg.Detect.EmptyColStreak,
			ProbeCols:      cfg.Detect.ProbeCols,
		},
	}
}

// ProcessFile traite un fichier de bout en bout et ne laisse rien remonter:
// toute défaillance (ouverture, panic de parsing, écriture) devient un
// FileResult avec statut et message. Un volume de cellules au-delà du
// plafond met le fichier en quarantaine sans rien écrire.
func ProcessFile(path string, cfg *config.Config, workerID int) (res FileResult) {
	start := time.Now()
	name := filepath.Base(path)
	res = FileResult{File: name, WorkerID: workerID, Year: YearFromName(name)}
	defer func() {
		if p := recover(); p != nil {
			res.Status = StatusError
			res.Detail = fmt.Sprintf("panic: %v", p)
		}
		res.Elapsed = time.Since(start)
	}()

	f, err := xlsx.OpenFile(path)
	if err != nil {
		res.Status = StatusError
		res.Detail = fmt.Sprintf("open: %v", err)
		return res
	}

	out, sres, err := sanitize.Sanitize(f, policyFromConfig(cfg))
	res.SheetsProcessed = sres.SheetsProcessed
	res.CellsProcessed = sres.CellsProcessed
	res.SheetsRemoved = sres.Removed
	if err != nil {
		res.Status = StatusError
		res.Detail = fmt.Sprintf("sanitize: %v", err)
		return res
	}

	if sres.CellsProcessed > cfg.Sanitize.AnomalyCellCeiling {
		res.Status = StatusAnomaly
		res.Detail = fmt.Sprintf("%d cells processed, ceiling is %d", sres.CellsProcessed, cfg.Sanitize.AnomalyCellCeiling)
		return res
	}

	outPath := OutputPath(path, cfg.Output.Prefix)
	if err := out.Save(outPath); err != nil {
		res.Status = StatusError
		res.Detail = fmt.Sprintf("write: %v", err)
		return res
	}

	res.Status = StatusSuccess
	res.Output = outPath
	return res
}
