package sanitize

import (
	"strings"
	"testing"
	"time"

	"github.com/tealeg/xlsx/v3"

	"xlsx-crusher/detect"
)

func testPolicy() Policy {
	return Policy{
		DenySheets: []string{"checklist items", "application checklist"},
		Limits:     detect.DefaultLimits(),
	}
}

func TestDenied(t *testing.T) {
	deny := []string{"checklist items", "application checklist"}
	tests := []struct {
		name string
		want bool
	}{
		{"Checklist Items 2024", true},
		{"APPLICATION CHECKLIST", true},
		{"Site Scores", false},
		{"Checklist", false}, // "checklist" seul n'est pas dans la liste
		{"", false},
	}
	for _, test := range tests {
		if got := Denied(test.name, deny); got != test.want {
			t.Errorf("Denied(%q) = %v, want %v", test.name, got, test.want)
		}
	}
}

func TestSanitize_RemovesDenylistedSheets(t *testing.T) {
	f := xlsx.NewFile()
	data, err := f.AddSheet("Site Scores")
	if err != nil {
		t.Fatalf("AddSheet failed: %v", err)
	}
	for r := 0; r < 3; r++ {
		row := data.AddRow()
		row.AddCell().SetString("a")
		row.AddCell().SetString("b")
	}
	junk, err := f.AddSheet("Application Checklist Items")
	if err != nil {
		t.Fatalf("AddSheet failed: %v", err)
	}
	junk.AddRow().AddCell().SetString("x")

	out, res, err := Sanitize(f, testPolicy())
	if err != nil {
		t.Fatalf("Sanitize failed: %v", err)
	}
	if len(out.Sheets) != 1 || out.Sheets[0].Name != "Site Scores" {
		t.Errorf("unexpected surviving sheets: %v", sheetNames(out))
	}
	if len(res.Removed) != 1 || res.Removed[0] != "Application Checklist Items" {
		t.Errorf("Removed = %v, want the checklist sheet", res.Removed)
	}
	if res.SheetsProcessed != 1 {
		t.Errorf("SheetsProcessed = %d, want 1", res.SheetsProcessed)
	}
	if res.CellsProcessed != 6 {
		t.Errorf("CellsProcessed = %d, want 6 (3x2)", res.CellsProcessed)
	}
}

func TestSanitize_TemporalToISO(t *testing.T) {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Data")
	if err != nil {
		t.Fatalf("AddSheet failed: %v", err)
	}
	row := sheet.AddRow()
	when := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	row.AddCell().SetDateTime(when)
	row.AddCell().SetString("label")
	row.AddCell().SetFloat(42.5)

	out, _, err := Sanitize(f, testPolicy())
	if err != nil {
		t.Fatalf("Sanitize failed: %v", err)
	}
	dst := out.Sheets[0]

	dateCell, err := dst.Cell(0, 0)
	if err != nil {
		t.Fatalf("Cell(0,0): %v", err)
	}
	if !strings.HasPrefix(dateCell.Value, "2024-03-15T") {
		t.Errorf("temporal cell = %q, want ISO-8601 string starting 2024-03-15T", dateCell.Value)
	}
	if _, err := time.Parse(time.RFC3339, dateCell.Value); err != nil {
		t.Errorf("temporal cell %q is not RFC3339: %v", dateCell.Value, err)
	}

	textCell, err := dst.Cell(0, 1)
	if err != nil {
		t.Fatalf("Cell(0,1): %v", err)
	}
	if textCell.Value != "label" {
		t.Errorf("text cell = %q, want passthrough", textCell.Value)
	}

	numCell, err := dst.Cell(0, 2)
	if err != nil {
		t.Fatalf("Cell(0,2): %v", err)
	}
	if got, err := numCell.Float(); err != nil || got != 42.5 {
		t.Errorf("numeric cell = (%v, %v), want 42.5 passthrough", got, err)
	}
}

func TestSanitize_BoundsPollutedSheet(t *testing.T) {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Bloated")
	if err != nil {
		t.Fatalf("AddSheet failed: %v", err)
	}
	for r := 0; r < 20; r++ {
		row := sheet.AddRow()
		for c := 0; c < 5; c++ {
			row.AddCell().SetString("v")
		}
	}
	for sheet.MaxRow < 2000 {
		sheet.AddRow().AddCell().SetString(" ")
	}

	_, res, err := Sanitize(f, testPolicy())
	if err != nil {
		t.Fatalf("Sanitize failed: %v", err)
	}
	// (20+10) x (5+5) : le rectangle matérialisé suit le détecteur,
	// pas l'étendue rapportée.
	if res.CellsProcessed != 300 {
		t.Errorf("CellsProcessed = %d, want 300", res.CellsProcessed)
	}
}

func sheetNames(f *xlsx.File) []string {
	var names []string
	for _, s := range f.Sheets {
		names = append(names, s.Name)
	}
	return names
}
