package main

import (
	"fmt"
	"os"
	"strconv"

	"xlsx-crusher/config"
	"xlsx-crusher/history"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		return
	}
	st := openStore()
	defer st.Close()

	switch os.Args[1] {
	case "list":
		limit := 20
		if len(os.Args) > 2 {
			if n, err := strconv.Atoi(os.Args[2]); err == nil {
				limit = n
			}
		}
		listRuns(st, limit)
	case "show":
		if len(os.Args) < 3 {
			fmt.Println("Usage: crusher-history show <run_id>")
			os.Exit(1)
		}
		showRun(st, os.Args[2])
	case "purge":
		if len(os.Args) < 3 {
			fmt.Println("Usage: crusher-history purge <days>")
			os.Exit(1)
		}
		days, err := strconv.Atoi(os.Args[2])
		if err != nil {
			fmt.Println("Invalid day count:", os.Args[2])
			os.Exit(1)
		}
		purgeRuns(st, days)
	default:
		usage()
	}
}

func usage() {
	fmt.Println(`Usage: crusher-history [list|show|purge]

list [n]        : Liste les n derniers runs (défaut 20)
show <run_id>   : Détail par fichier d'un run
purge <days>    : Supprime les runs plus vieux que <days> jours`)
}

func openStore() *history.Store {
	cfg, err := config.LoadConfig("crusher.yaml")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed loading crusher.yaml: %v\n", err)
		os.Exit(2)
	}
	if cfg.History.Backend == "" {
		fmt.Fprintln(os.Stderr, "No history backend configured (history.backend in crusher.yaml)")
		os.Exit(2)
	}
	st, err := history.Open(cfg.History.Backend, cfg.History.DSN)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed opening history (%s): %v\n", cfg.History.Backend, err)
		os.Exit(2)
	}
	return st
}

func listRuns(st *history.Store, limit int) {
	runs, err := st.Runs(limit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed listing runs: %v\n", err)
		os.Exit(2)
	}
	if len(runs) == 0 {
		fmt.Println("No recorded run.")
		return
	}
	for _, r := range runs {
		fmt.Printf("%s  %s  workers=%d processed=%d ok=%d failed=%d anomalies=%d cells=%d elapsed=%.1fs\n",
			r.RunID, r.StartedAt, r.Workers, r.FilesProcessed, r.FilesSucceeded,
			r.FilesFailed, r.Anomalies, r.CellsProcessed, r.ElapsedSeconds)
	}
}

func showRun(st *history.Store, runID string) {
	files, err := st.RunFiles(runID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed reading run %s: %v\n", runID, err)
		os.Exit(2)
	}
	if len(files) == 0 {
		fmt.Println("Unknown run:", runID)
		return
	}
	for _, fd := range files {
		line := fmt.Sprintf("%-10s %s sheets=%d cells=%d year=%d worker=%d elapsed=%.2fs",
			fd.Status, fd.File, fd.SheetsProcessed, fd.CellsProcessed, fd.Year, fd.WorkerID, fd.ElapsedSeconds)
		if fd.Reason != "" {
			line += " reason=" + fd.Reason
		}
		fmt.Println(line)
	}
}

func purgeRuns(st *history.Store, days int) {
	n, err := st.Purge(days)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Purge failed: %v\n", err)
		os.Exit(2)
	}
	fmt.Printf("%d run(s) purged.\n", n)
}
