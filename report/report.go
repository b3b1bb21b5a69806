package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"xlsx-crusher/worker"
)

type SystemInfo struct {
	RunID         string `json:"run_id"`
	WorkersUsed   int    `json:"workers_used"`
	TotalMemoryMB uint64 `json:"total_memory_mb"`
	RunTimestamp  string `json:"run_timestamp"`
}

type ProcessingStats struct {
	FilesProcessed    int   `json:"files_processed"`
	FilesSucceeded    int   `json:"files_succeeded"`
	FilesFailed       int   `json:"files_failed"`
	AnomaliesDetected int   `json:"anomalies_detected"`
	CellsProcessed    int64 `json:"cells_processed"`
	SheetsRemoved     int   `json:"sheets_removed"`
}

type PerformanceMetrics struct {
	ElapsedSeconds float64 `json:"elapsed_seconds"`
	FilesPerSecond float64 `json:"files_per_second"`
	CellsPerSecond float64 `json:"cells_per_second"`
	AvgFileSeconds float64 `json:"avg_file_seconds"`
}

type FileDetail struct {
	File            string   `json:"file"`
	Status          string   `json:"status"`
	SheetsProcessed int      `json:"sheets_processed"`
	CellsProcessed  int64    `json:"cells_processed"`
	SheetsRemoved   []string `json:"sheets_removed,omitempty"`
	Year            int      `json:"year"`
	WorkerID        int      `json:"worker_id"`
	ElapsedSeconds  float64  `json:"elapsed_seconds"`
	Reason          string   `json:"reason,omitempty"`
}

// Report est l'artefact JSON final d'un run, seul compte rendu faisant foi.
type Report struct {
	SystemInfo         SystemInfo         `json:"system_info"`
	ProcessingStats    ProcessingStats    `json:"processing_stats"`
	PerformanceMetrics PerformanceMetrics `json:"performance_metrics"`
	DetailedResults    []FileDetail       `json:"detailed_results"`
}

// Metrics dérive les chiffres de performance des agrégats.
func Metrics(elapsed time.Duration, stats *worker.BatchStats) PerformanceMetrics {
	m := PerformanceMetrics{ElapsedSeconds: elapsed.Seconds()}
	if m.ElapsedSeconds > 0 {
		m.FilesPerSecond = float64(stats.FilesProcessed) / m.ElapsedSeconds
		m.CellsPerSecond = float64(stats.CellsProcessed) / m.ElapsedSeconds
	}
	if stats.FilesProcessed > 0 {
		m.AvgFileSeconds = stats.TotalTime.Seconds() / float64(stats.FilesProcessed)
	}
	return m
}

func Build(runID string, workers int, totalMemMB uint64, started time.Time, elapsed time.Duration, stats *worker.BatchStats, results []worker.FileResult) *Report {
	rep := &Report{
		SystemInfo: SystemInfo{
			RunID:         runID,
			WorkersUsed:   workers,
			TotalMemoryMB: totalMemMB,
			RunTimestamp:  started.Format(time.RFC3339),
		},
		ProcessingStats: ProcessingStats{
			FilesProcessed:    stats.FilesProcessed,
			FilesSucceeded:    stats.FilesSucceeded,
			FilesFailed:       stats.FilesFailed,
			AnomaliesDetected: stats.AnomaliesDetected,
			CellsProcessed:    stats.CellsProcessed,
			SheetsRemoved:     stats.SheetsRemoved,
		},
		PerformanceMetrics: Metrics(elapsed, stats),
	}
	for _, r := range results {
		rep.DetailedResults = append(rep.DetailedResults, FileDetail{
			File:            r.File,
			Status:          string(r.Status),
			SheetsProcessed: r.SheetsProcessed,
			CellsProcessed:  r.CellsProcessed,
			SheetsRemoved:   r.SheetsRemoved,
			Year:            r.Year,
			WorkerID:        r.WorkerID,
			ElapsedSeconds:  r.Elapsed.Seconds(),
			Reason:          r.Detail,
		})
	}
	return rep
}

// Write dépose le rapport horodaté dans dir et retourne son chemin.
func (rep *Report) Write(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	name := fmt.Sprintf("crusher_report_%s.json", time.Now().Format("20060102-150405"))
	path := filepath.Join(dir, name)
	data, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", err
	}
	return path, nil
}
