package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"xlsx-crusher/config"
	"xlsx-crusher/history"
	"xlsx-crusher/logging"
	"xlsx-crusher/monitor"
	"xlsx-crusher/report"
	"xlsx-crusher/utils"
	"xlsx-crusher/worker"
)

var (
	cfgFile  string
	inputDir string
	workers  int
	dryRun   bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "crusher",
		Short: "Batch-process xlsx documents under a bounded worker pool",
		Long: `crusher scans a directory of xlsx documents, trims polluted used
ranges, drops deny-listed worksheets, normalizes temporal cells and writes
one sanitized copy per input, plus a JSON report for the whole run.
Already-processed files are skipped, so re-running resumes where it left off.`,
		Args: cobra.NoArgs,
		RunE: run,
	}

	rootCmd.Flags().StringVarP(&cfgFile, "config", "c", "crusher.yaml", "Config file (absolute, or relative to project root)")
	rootCmd.Flags().StringVarP(&inputDir, "dir", "d", "", "Override input directory")
	rootCmd.Flags().IntVarP(&workers, "workers", "w", 0, "Override worker count (0 = physical cores minus reserve)")
	rootCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Scan only: print the would-be work list and exit")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig(cfgFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if inputDir != "" {
		cfg.Input.Dir = inputDir
	}
	if workers > 0 {
		cfg.Batch.Workers = workers
	}

	if dryRun {
		return scanOnly(cfg)
	}

	logFile := utils.LogToFile(cfg.Output.LogDir, "crusher.log")
	defer logFile.Close()
	runLogger := logging.NewLoggerOrDie(cfg.Output.LogDir, "results.log")
	defer runLogger.Close()

	// Les lignes de progression ne vont sur stdout que face à un humain.
	var echo func(string)
	if term.IsTerminal(int(os.Stdout.Fd())) {
		echo = func(line string) { fmt.Println(line) }
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigs
		log.Println("Interrupt: finishing in-flight files, report will cover completed work")
		cancel()
	}()

	runID := utils.GenerateRunID()
	workersUsed := monitor.WorkerCount(cfg.Batch.Workers, cfg.Batch.CPUReserve)
	started := time.Now()
	log.Printf("Run %s starting: dir=%s workers=%d batch=%d", runID, cfg.Input.Dir, workersUsed, cfg.Batch.Size)

	ctrl := worker.NewController(cfg, runLogger, echo)
	stats, results, err := ctrl.Run(ctx, workersUsed)
	if err != nil {
		return fmt.Errorf("batch run: %w", err)
	}
	elapsed := time.Since(started)

	rep := report.Build(runID, workersUsed, monitor.TotalMemoryMB(), started, elapsed, stats, results)
	repPath, err := rep.Write(cfg.Output.ReportDir)
	if err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	log.Printf("Run %s done: processed=%d ok=%d failed=%d anomalies=%d cells=%d elapsed=%.1fs report=%s",
		runID, stats.FilesProcessed, stats.FilesSucceeded, stats.FilesFailed,
		stats.AnomaliesDetected, stats.CellsProcessed, elapsed.Seconds(), repPath)

	if cfg.History.Backend != "" {
		st, err := history.Open(cfg.History.Backend, cfg.History.DSN)
		if err != nil {
			log.Printf("History disabled (%s): %v", cfg.History.Backend, err)
		} else {
			if err := st.RecordRun(rep); err != nil {
				log.Printf("History record failed: %v", err)
			}
			st.Close()
		}
	}

	if ctx.Err() != nil {
		os.Exit(130)
	}
	return nil
}

// scanOnly exécute la phase Scanning seule et affiche la liste de travail.
func scanOnly(cfg *config.Config) error {
	files, err := worker.ScanFiles(cfg)
	if err != nil {
		return err
	}
	perYear := map[int]int{}
	for _, f := range files {
		perYear[worker.YearFromName(filepath.Base(f))]++
		fmt.Println(f)
	}
	fmt.Printf("%d file(s) pending", len(files))
	for y, n := range perYear {
		if y == 0 {
			fmt.Printf(" | no-year: %d", n)
		} else {
			fmt.Printf(" | %d: %d", y, n)
		}
	}
	fmt.Println()
	return nil
}
