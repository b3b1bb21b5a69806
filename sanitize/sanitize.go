package sanitize

import (
	"strings"
	"time"

	"github.com/tealeg/xlsx/v3"

	"xlsx-crusher/detect"
)

// Policy regroupe la deny-list de feuilles et les bornes du détecteur.
type Policy struct {
	DenySheets []string // sous-chaînes de noms de feuilles, insensible à la casse
	Limits     detect.Limits
}

// Result décrit le nettoyage d'un classeur entier.
type Result struct {
	Removed         []string
	SheetsProcessed int
	CellsProcessed  int64 // somme des rows*cols retenus, signal de volume
}

// Denied teste le nom d'une feuille contre la deny-list.
func Denied(name string, deny []string) bool {
	low := strings.ToLower(name)
	for _, term := range deny {
		if term == "" {
			continue
		}
		if strings.Contains(low, strings.ToLower(term)) {
			return true
		}
	}
	return false
}

// Sanitize construit un nouveau classeur: feuilles deny-listées écartées,
// chaque feuille restante matérialisée sur exactement le rectangle détecté,
// valeurs temporelles converties en chaînes ISO-8601. Le classeur source
// n'est jamais modifié.
func Sanitize(src *xlsx.File, pol Policy) (*xlsx.File, Result, error) {
	out := xlsx.NewFile()
	var res Result
	for _, sheet := range src.Sheets {
		if Denied(sheet.Name, pol.DenySheets) {
			res.Removed = append(res.Removed, sheet.Name)
			continue
		}
		b := detect.DetectBoundary(sheet, pol.Limits)
		dst, err := out.AddSheet(sheet.Name)
		if err != nil {
			return nil, res, err
		}
		copyRect(sheet, dst, b)
		res.SheetsProcessed++
		res.CellsProcessed += int64(b.Rows) * int64(b.Cols)
	}
	return out, res, nil
}

func copyRect(src, dst *xlsx.Sheet, b detect.Boundary) {
	for r := 0; r < b.Rows; r++ {
		row := dst.AddRow()
		for c := 0; c < b.Cols; c++ {
			cell := row.AddCell()
			sc, err := src.Cell(r, c)
			if err != nil {
				continue
			}
			writeCell(cell, sc)
		}
	}
}

// writeCell normalise une cellule: temporel -> ISO-8601, le reste passe
// inchangé (les formules ne sont pas évaluées, on copie la valeur brute).
func writeCell(dst, src *xlsx.Cell) {
	if src.IsTime() {
		if t, err := src.GetTime(false); err == nil {
			dst.SetString(t.UTC().Format(time.RFC3339))
			return
		}
	}
	switch src.Type() {
	case xlsx.CellTypeNumeric:
		if f, err := src.Float(); err == nil {
			dst.SetFloat(f)
			return
		}
		dst.SetString(src.Value)
	case xlsx.CellTypeBool:
		dst.SetBool(src.Bool())
	default:
		dst.SetString(src.Value)
	}
}
