package history

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"xlsx-crusher/report"
)

// Store conserve l'historique des runs dans la base configurée
// ("sqlite", "mysql" ou "postgres"). Le rapport JSON reste l'artefact de
// référence: l'historique est un confort, jamais bloquant.
type Store struct {
	db      *sql.DB
	backend string
}

func driverName(backend string) string {
	if backend == "sqlite" {
		return "sqlite3"
	}
	return backend
}

func Open(backend, dsn string) (*Store, error) {
	db, err := sql.Open(driverName(backend), dsn)
	if err != nil {
		return nil, err
	}
	s := &Store{db: db, backend: backend}
	if err := s.init(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() {
	s.db.Close()
}

func (s *Store) init() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			run_id VARCHAR(64) PRIMARY KEY,
			started_at VARCHAR(32),
			workers INTEGER,
			files_processed INTEGER,
			files_succeeded INTEGER,
			files_failed INTEGER,
			anomalies INTEGER,
			cells_processed BIGINT,
			sheets_removed INTEGER,
			elapsed_seconds DOUBLE PRECISION
		)`,
		`CREATE TABLE IF NOT EXISTS run_files (
			run_id VARCHAR(64),
			file VARCHAR(255),
			status VARCHAR(16),
			sheets INTEGER,
			cells BIGINT,
			year INTEGER,
			worker_id INTEGER,
			elapsed_seconds DOUBLE PRECISION,
			reason TEXT
		)`,
	}
	for _, q := range stmts {
		if _, err := s.db.Exec(q); err != nil {
			return err
		}
	}
	return nil
}

// rebind adapte les placeholders "?" au backend (postgres veut $1, $2, ...).
func (s *Store) rebind(query string) string {
	if s.backend != "postgres" {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			fmt.Fprintf(&b, "$%d", n)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// RecordRun insère le run et ses résultats par fichier dans une transaction.
func (s *Store) RecordRun(rep *report.Report) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	_, err = tx.Exec(s.rebind(`INSERT INTO runs
		(run_id, started_at, workers, files_processed, files_succeeded, files_failed, anomalies, cells_processed, sheets_removed, elapsed_seconds)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		rep.SystemInfo.RunID,
		rep.SystemInfo.RunTimestamp,
		rep.SystemInfo.WorkersUsed,
		rep.ProcessingStats.FilesProcessed,
		rep.ProcessingStats.FilesSucceeded,
		rep.ProcessingStats.FilesFailed,
		rep.ProcessingStats.AnomaliesDetected,
		rep.ProcessingStats.CellsProcessed,
		rep.ProcessingStats.SheetsRemoved,
		rep.PerformanceMetrics.ElapsedSeconds,
	)
	if err != nil {
		tx.Rollback()
		return err
	}
	for _, fd := range rep.DetailedResults {
		_, err = tx.Exec(s.rebind(`INSERT INTO run_files
			(run_id, file, status, sheets, cells, year, worker_id, elapsed_seconds, reason)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`),
			rep.SystemInfo.RunID, fd.File, fd.Status, fd.SheetsProcessed,
			fd.CellsProcessed, fd.Year, fd.WorkerID, fd.ElapsedSeconds, fd.Reason,
		)
		if err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

type RunSummary struct {
	RunID          string
	StartedAt      string
	Workers        int
	FilesProcessed int
	FilesSucceeded int
	FilesFailed    int
	Anomalies      int
	CellsProcessed int64
	ElapsedSeconds float64
}

// Runs retourne les derniers runs, le plus récent d'abord.
func (s *Store) Runs(limit int) ([]RunSummary, error) {
	rows, err := s.db.Query(s.rebind(`SELECT run_id, started_at, workers, files_processed, files_succeeded, files_failed, anomalies, cells_processed, elapsed_seconds
		FROM runs ORDER BY started_at DESC LIMIT ?`), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []RunSummary
	for rows.Next() {
		var r RunSummary
		if err := rows.Scan(&r.RunID, &r.StartedAt, &r.Workers, &r.FilesProcessed, &r.FilesSucceeded, &r.FilesFailed, &r.Anomalies, &r.CellsProcessed, &r.ElapsedSeconds); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// RunFiles retourne le détail par fichier d'un run.
func (s *Store) RunFiles(runID string) ([]report.FileDetail, error) {
	rows, err := s.db.Query(s.rebind(`SELECT file, status, sheets, cells, year, worker_id, elapsed_seconds, reason
		FROM run_files WHERE run_id = ? ORDER BY file`), runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []report.FileDetail
	for rows.Next() {
		var fd report.FileDetail
		if err := rows.Scan(&fd.File, &fd.Status, &fd.SheetsProcessed, &fd.CellsProcessed, &fd.Year, &fd.WorkerID, &fd.ElapsedSeconds, &fd.Reason); err != nil {
			return nil, err
		}
		out = append(out, fd)
	}
	return out, rows.Err()
}

// Purge supprime les runs plus vieux que days. Les started_at sont en
// RFC3339, la comparaison lexicographique suffit.
func (s *Store) Purge(days int) (int64, error) {
	cutoff := time.Now().AddDate(0, 0, -days).Format(time.RFC3339)
	if _, err := s.db.Exec(s.rebind(`DELETE FROM run_files WHERE run_id IN (SELECT run_id FROM runs WHERE started_at < ?)`), cutoff); err != nil {
		return 0, err
	}
	res, err := s.db.Exec(s.rebind(`DELETE FROM runs WHERE started_at < ?`), cutoff)
	if err != nil {
		return 0, err
	}
	n, _ := res.RowsAffected()
	return n, nil
}
