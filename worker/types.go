package worker

import (
	"time"
)

// Statuts possibles d'un fichier traité
type FileStatus string

const (
	StatusSuccess FileStatus = "success"
	StatusError   FileStatus = "error"
	StatusAnomaly FileStatus = "anomaly"
)

// FileResult est le compte rendu immuable d'un fichier. C'est la seule
// donnée qui remonte des workers vers le contrôleur.
type FileResult struct {
	File            string
	Status          FileStatus
	SheetsProcessed int
	CellsProcessed  int64
	SheetsRemoved   []string
	Year            int // jeton d'année du nom de fichier, 0 = inconnu
	WorkerID        int
	Elapsed         time.Duration
	Detail          string // raison de l'erreur ou de l'anomalie
	Output          string // chemin écrit, vide si rien n'a été produit
}

// BatchStats agrège le run. Muté uniquement par le contrôleur, jamais par
// les workers.
type BatchStats struct {
	FilesProcessed    int
	FilesSucceeded    int
	FilesFailed       int
	AnomaliesDetected int
	CellsProcessed    int64
	SheetsRemoved     int
	TotalTime         time.Duration
}

// Add comptabilise un résultat. Les anomalies ont leur propre compteur,
// sans double comptage dans failed.
func (s *BatchStats) Add(r FileResult) {
	s.FilesProcessed++
	switch r.Status {
	case StatusSuccess:
		s.FilesSucceeded++
	case StatusAnomaly:
		s.AnomaliesDetected++
	default:
		s.FilesFailed++
	}
	s.CellsProcessed += r.CellsProcessed
	s.SheetsRemoved += len(r.SheetsRemoved)
	s.TotalTime += r.Elapsed
}
