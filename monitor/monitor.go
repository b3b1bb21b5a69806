package monitor

import (
	"runtime"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/mem"
)

// Snapshot est une mesure instantanée des ressources machine.
type Snapshot struct {
	CPUPercent float64
	MemPercent float64
	MemUsedMB  uint64
}

// Sample relève CPU et mémoire au niveau système. L'échec CPU n'est pas
// bloquant (certaines plateformes ne l'exposent pas), la mémoire si.
func Sample() (Snapshot, error) {
	var snap Snapshot
	vm, err := mem.VirtualMemory()
	if err != nil {
		return snap, err
	}
	snap.MemPercent = vm.UsedPercent
	snap.MemUsedMB = vm.Used / 1024 / 1024
	if pct, err := cpu.Percent(0, false); err == nil && len(pct) > 0 {
		snap.CPUPercent = pct[0]
	}
	return snap, nil
}

// TotalMemoryMB retourne la mémoire totale de la machine, 0 si inconnue.
func TotalMemoryMB() uint64 {
	vm, err := mem.VirtualMemory()
	if err != nil {
		return 0
	}
	return vm.Total / 1024 / 1024
}

// WorkerCount dimensionne le pool: valeur configurée si > 0, sinon
// coeurs physiques moins la réserve, avec un plancher de 1.
func WorkerCount(configured, reserve int) int {
	if configured > 0 {
		return configured
	}
	n, err := cpu.Counts(false)
	if err != nil || n <= 0 {
		n = runtime.NumCPU()
	}
	w := n - reserve
	if w < 1 {
		w = 1
	}
	return w
}
