package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"xlsx-crusher/utils"
)

// Wrapper pidfile pour lancer un run long sans surveillance: le batch peut
// durer des heures, on veut pouvoir le stopper proprement (SIGTERM est géré
// par crusher comme une interruption: fichiers en cours terminés, rapport
// écrit sur le travail fait).
var (
	pidPath = filepath.Join(utils.GetProjectRoot(), "pid")
	pidFile = filepath.Join(pidPath, "crusher.pid")
	binFile = filepath.Join(utils.GetProjectRoot(), "bin", "crusher")
)

func main() {
	_ = utils.EnsureDirExists(pidPath)
	if len(os.Args) < 2 {
		fmt.Println("Usage: service start|stop|status|restart")
		os.Exit(1)
	}
	switch os.Args[1] {
	case "start":
		start(os.Args[2:])
	case "stop":
		stop()
	case "status":
		status()
	case "restart":
		stop()
		time.Sleep(1 * time.Second)
		start(os.Args[2:])
	default:
		fmt.Println("Usage: service start|stop|status|restart")
		os.Exit(1)
	}
}

func start(extra []string) {
	if pid, err := readPID(); err == nil && alive(pid) {
		fmt.Println("crusher already running!")
		return
	}
	os.Remove(pidFile)
	cmd := exec.Command(binFile, extra...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Start(); err != nil {
		fmt.Println("Failed to start:", err)
		os.Exit(1)
	}
	os.WriteFile(pidFile, []byte(strconv.Itoa(cmd.Process.Pid)), 0644)
	fmt.Printf("crusher started, pid=%d\n", cmd.Process.Pid)
	cmd.Process.Release()
}

func stop() {
	pid, err := readPID()
	if err != nil {
		fmt.Println("Not running")
		return
	}
	if err := syscall.Kill(pid, syscall.SIGTERM); err != nil {
		fmt.Println("Failed to stop:", err)
	}
	os.Remove(pidFile)
	fmt.Println("crusher stopped (in-flight files allowed to finish).")
}

func status() {
	pid, err := readPID()
	if err != nil {
		fmt.Println("Not running")
		return
	}
	if alive(pid) {
		fmt.Printf("crusher running, pid=%d\n", pid)
	} else {
		fmt.Println("Stale pidfile, not running")
	}
}

func alive(pid int) bool {
	return syscall.Kill(pid, 0) == nil
}

func readPID() (int, error) {
	data, err := os.ReadFile(pidFile)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(string(data))
}
