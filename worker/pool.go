package worker

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"xlsx-crusher/config"
	"xlsx-crusher/logging"
	"xlsx-crusher/monitor"
)

// ScanFiles liste les fichiers candidats selon les motifs configurés,
// écarte les sorties déjà produites (reprise idempotente) et trie par
// (année, nom) pour un ordre de traitement reproductible.
func ScanFiles(cfg *config.Config) ([]string, error) {
	seen := map[string]bool{}
	var files []string
	for _, pat := range cfg.Input.Patterns {
		matches, err := filepath.Glob(filepath.Join(cfg.Input.Dir, pat))
		if err != nil {
			return nil, err
		}
		for _, m := range matches {
			name := filepath.Base(m)
			if strings.HasPrefix(name, cfg.Output.Prefix) {
				continue // c'est une sortie, pas une entrée
			}
			if seen[m] {
				continue
			}
			seen[m] = true
			if _, err := os.Stat(OutputPath(m, cfg.Output.Prefix)); err == nil {
				continue // déjà traité lors d'un run précédent
			}
			files = append(files, m)
		}
	}
	sort.Slice(files, func(i, j int) bool {
		yi := YearFromName(filepath.Base(files[i]))
		yj := YearFromName(filepath.Base(files[j]))
		if yi != yj {
			return yi < yj
		}
		return files[i] < files[j]
	})
	return files, nil
}

// SplitBatches découpe la liste en lots de taille fixe (le dernier peut
// être plus court).
func SplitBatches(files []string, size int) [][]string {
	if size < 1 {
		size = 1
	}
	var batches [][]string
	for len(files) > size {
		batches = append(batches, files[:size])
		files = files[size:]
	}
	if len(files) > 0 {
		batches = append(batches, files)
	}
	return batches
}

// Controller pilote le run: scan, lots séquentiels, pool borné par lot,
// agrégation des résultats (seul écrivain de BatchStats).
type Controller struct {
	cfg     *config.Config
	logger  *logging.Logger
	echo    func(string) // progression terminal, nil = silencieux
	stats   BatchStats
	results []FileResult
}

func NewController(cfg *config.Config, logger *logging.Logger, echo func(string)) *Controller {
	return &Controller{cfg: cfg, logger: logger, echo: echo}
}

// Run exécute tous les lots. L'annulation du contexte arrête la soumission
// (fichiers en cours terminés, le reste attendra un prochain run) et
// retourne les agrégats de ce qui a été fait.
func (c *Controller) Run(ctx context.Context, workers int) (*BatchStats, []FileResult, error) {
	files, err := ScanFiles(c.cfg)
	if err != nil {
		return nil, nil, err
	}
	batches := SplitBatches(files, c.cfg.Batch.Size)
	c.logf("[SCAN] files=%d batches=%d workers=%d", len(files), len(batches), workers)

	for i, batch := range batches {
		if ctx.Err() != nil {
			c.logf("[STOP] interrupted before batch %d/%d", i+1, len(batches))
			break
		}
		c.logf("[BATCH] %d/%d files=%d", i+1, len(batches), len(batch))
		c.runBatch(ctx, batch, workers)

		// Pause entre deux lots pour laisser l'OS récupérer la mémoire.
		if i < len(batches)-1 && c.cfg.Batch.CooldownSeconds > 0 {
			select {
			case <-ctx.Done():
			case <-time.After(time.Duration(c.cfg.Batch.CooldownSeconds) * time.Second):
			}
		}
	}
	return &c.stats, c.results, nil
}

func (c *Controller) runBatch(ctx context.Context, batch []string, workers int) {
	jobs := make(chan string, len(batch))
	results := make(chan FileResult, len(batch))

	var wg sync.WaitGroup
	for w := 1; w <= workers; w++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for path := range jobs {
				if ctx.Err() != nil {
					continue // abandonné, repris au prochain run
				}
				results <- ProcessFile(path, c.cfg, id)
			}
		}(w)
	}
	for _, f := range batch {
		jobs <- f
	}
	close(jobs)
	go func() {
		wg.Wait()
		close(results)
	}()

	// Seul point de mutation des agrégats: les résultats arrivent dans un
	// ordre quelconque, les sommes et compteurs sont commutatifs.
	for r := range results {
		c.stats.Add(r)
		c.results = append(c.results, r)
		c.logResult(r)
		if c.cfg.Batch.SampleEvery > 0 && c.stats.FilesProcessed%c.cfg.Batch.SampleEvery == 0 {
			c.sampleResources()
		}
	}
}

func (c *Controller) logResult(r FileResult) {
	tag := "OK"
	switch r.Status {
	case StatusError:
		tag = "FAIL"
	case StatusAnomaly:
		tag = "ANOMALY"
	}
	line := ""
	if r.Detail != "" {
		line = " detail=" + r.Detail
	}
	c.logf("[%s] file=%s sheets=%d cells=%d removed=%d year=%d worker=%d elapsed=%.2fs%s",
		tag, r.File, r.SheetsProcessed, r.CellsProcessed, len(r.SheetsRemoved),
		r.Year, r.WorkerID, r.Elapsed.Seconds(), line)
}

func (c *Controller) sampleResources() {
	snap, err := monitor.Sample()
	if err != nil {
		c.logf("[MONITOR] sample failed: %v", err)
		return
	}
	c.logf("[MONITOR] cpu=%.1f%% mem=%.1f%% used=%dMB", snap.CPUPercent, snap.MemPercent, snap.MemUsedMB)
	if snap.MemPercent > c.cfg.Batch.MemoryWatermarkPct {
		// Dégradation au fil de l'eau: on avertit, on n'arrête pas le lot.
		c.logf("[WARN] memory %.1f%% above watermark %.1f%%", snap.MemPercent, c.cfg.Batch.MemoryWatermarkPct)
	}
}

func (c *Controller) logf(format string, args ...interface{}) {
	if c.logger != nil {
		c.logger.Writef(format, args...)
	}
	if c.echo != nil {
		c.echo(fmt.Sprintf(format, args...))
	}
}
