package detect

import (
	"fmt"
	"testing"

	"github.com/tealeg/xlsx/v3"
)

// buildSheet remplit rows lignes x cols colonnes de valeurs, puis ajoute du
// bruit de pollution: padRows lignes portant une cellule blanche, et une
// ligne de padCols cellules blanches pour gonfler l'étendue rapportée.
func buildSheet(t *testing.T, rows, cols, padRows, padCols int) *xlsx.Sheet {
	t.Helper()
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Data")
	if err != nil {
		t.Fatalf("AddSheet failed: %v", err)
	}
	for r := 0; r < rows; r++ {
		row := sheet.AddRow()
		for c := 0; c < cols; c++ {
			row.AddCell().SetString(fmt.Sprintf("v%d-%d", r, c))
		}
	}
	if padCols > cols {
		row := sheet.AddRow()
		for c := 0; c < padCols; c++ {
			row.AddCell().SetString(" ")
		}
	}
	for sheet.MaxRow < padRows {
		sheet.AddRow().AddCell().SetString(" ")
	}
	return sheet
}

func TestDetectBoundary_FastPath(t *testing.T) {
	tests := []struct {
		rows, cols int
	}{
		{100, 10},
		{500, 50},
		{1, 1},
	}
	for _, test := range tests {
		sheet := buildSheet(t, test.rows, test.cols, 0, 0)
		b := DetectBoundary(sheet, DefaultLimits())
		if b.Rows != test.rows || b.Cols != test.cols {
			t.Errorf("DetectBoundary(%dx%d) = (%d,%d), want reported extent unchanged",
				test.rows, test.cols, b.Rows, b.Cols)
		}
	}
}

func TestDetectBoundary_PollutionCorrected(t *testing.T) {
	// Étendue rapportée ~(5000, 800), données réelles 40x10.
	sheet := buildSheet(t, 40, 10, 5000, 800)
	if sheet.MaxRow < 5000 || sheet.MaxCol < 800 {
		t.Fatalf("test sheet not polluted enough: reported (%d,%d)", sheet.MaxRow, sheet.MaxCol)
	}
	b := DetectBoundary(sheet, DefaultLimits())
	if b.Rows != 50 || b.Cols != 15 {
		t.Errorf("DetectBoundary = (%d,%d), want (50,15)", b.Rows, b.Cols)
	}
}

func TestDetectBoundary_AlwaysWithinCeiling(t *testing.T) {
	lim := DefaultLimits()
	tests := []struct {
		name                         string
		rows, cols, padRows, padCols int
	}{
		{"deep data", 1800, 10, 3000, 0},
		{"wide data", 10, 60, 0, 200},
		{"deep and wide", 1500, 80, 4000, 300},
	}
	for _, test := range tests {
		sheet := buildSheet(t, test.rows, test.cols, test.padRows, test.padCols)
		b := DetectBoundary(sheet, lim)
		if b.Rows > lim.SafeRows || b.Cols > lim.SafeCols {
			t.Errorf("%s: DetectBoundary = (%d,%d), exceeds ceiling (%d,%d)",
				test.name, b.Rows, b.Cols, lim.SafeRows, lim.SafeCols)
		}
	}
}

func TestDetectBoundary_EmptyPollutedSheet(t *testing.T) {
	// Aucune vraie donnée: uniquement du blanc. Le résultat dégrade vers
	// la seule marge, pas vers l'étendue rapportée.
	sheet := buildSheet(t, 0, 0, 3000, 100)
	lim := DefaultLimits()
	b := DetectBoundary(sheet, lim)
	if b.Rows != lim.RowBuffer || b.Cols != lim.ColBuffer {
		t.Errorf("DetectBoundary on blank sheet = (%d,%d), want (%d,%d)",
			b.Rows, b.Cols, lim.RowBuffer, lim.ColBuffer)
	}
}

func TestDetectBoundary_DataBelowScanWindow(t *testing.T) {
	// Données au-delà du plafond de scan: le détecteur retombe sur le
	// plafond de confiance, jamais au-delà.
	lim := DefaultLimits()
	sheet := buildSheet(t, 2500, 10, 6000, 0)
	b := DetectBoundary(sheet, lim)
	if b.Rows != lim.SafeRows {
		t.Errorf("DetectBoundary rows = %d, want ceiling %d", b.Rows, lim.SafeRows)
	}
}
