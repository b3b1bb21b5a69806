package detect

import (
	"strings"

	"github.com/tealeg/xlsx/v3"
)

// Limits borne le détecteur. Les étendues rapportées au-delà de
// SafeRows/SafeCols sont considérées comme polluées et re-mesurées.
type Limits struct {
	SafeRows       int // plafond de confiance (et plafond du résultat)
	SafeCols       int
	RowScanCap     int // plafond dur du scan inverse de lignes
	ColScanCap     int // plafond dur du scan de colonnes
	RowBuffer      int // marge ajoutée sous la dernière ligne détectée
	ColBuffer      int
	EmptyColStreak int // colonnes vides consécutives avant arrêt
	ProbeCols      int // colonnes testées par ligne lors du scan inverse
}

func DefaultLimits() Limits {
	return Limits{
		SafeRows:       500,
		SafeCols:       50,
		RowScanCap:     2000,
		ColScanCap:     100,
		RowBuffer:      10,
		ColBuffer:      5,
		EmptyColStreak: 20,
		ProbeCols:      50,
	}
}

// Boundary est l'étendue rectangulaire retenue pour une feuille,
// en nombre de lignes/colonnes.
type Boundary struct {
	Rows int
	Cols int
}

// DetectBoundary retourne l'étendue de données réelle d'une feuille.
// Étendue rapportée dans les clous: on la retourne telle quelle.
// Étendue polluée: scan inverse des lignes depuis min(rapporté, plafond),
// puis scan avant des colonnes, le tout borné. Ne retourne jamais d'erreur:
// au pire le résultat dégrade vers le plafond.
func DetectBoundary(sheet *xlsx.Sheet, lim Limits) Boundary {
	reportedRows, reportedCols := sheet.MaxRow, sheet.MaxCol
	if reportedRows <= lim.SafeRows && reportedCols <= lim.SafeCols {
		return Boundary{Rows: reportedRows, Cols: reportedCols}
	}

	lastRow := lastDataRow(sheet, lim)
	lastCol := lastDataCol(sheet, lastRow, lim)

	b := Boundary{Rows: lastRow + lim.RowBuffer, Cols: lastCol + lim.ColBuffer}
	if b.Rows > lim.SafeRows {
		b.Rows = lim.SafeRows
	}
	if b.Cols > lim.SafeCols {
		b.Cols = lim.SafeCols
	}
	return b
}

// lastDataRow remonte depuis min(MaxRow, RowScanCap) jusqu'à la première
// ligne portant une valeur non vide dans les ProbeCols premières colonnes.
// Retourne un compte de lignes (1-based), 0 si rien n'est trouvé.
func lastDataRow(sheet *xlsx.Sheet, lim Limits) int {
	start := sheet.MaxRow
	if start > lim.RowScanCap {
		start = lim.RowScanCap
	}
	probe := lim.ProbeCols
	if probe > sheet.MaxCol {
		probe = sheet.MaxCol
	}
	for r := start - 1; r >= 0; r-- {
		for c := 0; c < probe; c++ {
			if hasValue(sheet, r, c) {
				return r + 1
			}
		}
	}
	return 0
}

// lastDataCol balaie les colonnes de gauche à droite contre les lignes déjà
// bornées, et s'arrête après EmptyColStreak colonnes vides d'affilée.
func lastDataCol(sheet *xlsx.Sheet, lastRow int, lim Limits) int {
	maxCol := sheet.MaxCol
	if maxCol > lim.ColScanCap {
		maxCol = lim.ColScanCap
	}
	last, streak := 0, 0
	for c := 0; c < maxCol; c++ {
		found := false
		for r := 0; r < lastRow; r++ {
			if hasValue(sheet, r, c) {
				found = true
				break
			}
		}
		if found {
			last = c + 1
			streak = 0
		} else {
			streak++
			if streak >= lim.EmptyColStreak {
				break
			}
		}
	}
	return last
}

func hasValue(sheet *xlsx.Sheet, r, c int) bool {
	cell, err := sheet.Cell(r, c)
	if err != nil {
		return false
	}
	return strings.TrimSpace(cell.Value) != ""
}
