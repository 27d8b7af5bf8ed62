package system

import (
	"fmt"
	"runtime"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// HostStats is a snapshot of the machine a render runs on.
type HostStats struct {
	LogicalCPUs int
	TotalMemMB  uint64
	AvailMemMB  uint64
	UsedPercent float64
}

// ReadHostStats samples CPU count and memory usage. Missing counters are
// filled from the Go runtime where possible.
func ReadHostStats() (HostStats, error) {
	var s HostStats

	n, err := cpu.Counts(true)
	if err != nil || n <= 0 {
		n = runtime.NumCPU()
	}
	s.LogicalCPUs = n

	vm, err := mem.VirtualMemory()
	if err != nil {
		return s, fmt.Errorf("memory stats: %w", err)
	}
	s.TotalMemMB = vm.Total / (1 << 20)
	s.AvailMemMB = vm.Available / (1 << 20)
	s.UsedPercent = vm.UsedPercent
	return s, nil
}

func (s HostStats) String() string {
	return fmt.Sprintf("CPU: %d | RAM: %d/%d MB free (%.0f%% used)", s.LogicalCPUs, s.AvailMemMB, s.TotalMemMB, s.UsedPercent)
}

// RenderWorkers caps the requested worker count so that every worker's
// frame buffers fit into half of the available memory. frameBytes is the
// size of one canvas; each worker holds the canvas plus a decoded source
// of roughly the same size.
func RenderWorkers(requested int, frameBytes int, s HostStats) int {
	if requested <= 0 {
		requested = s.LogicalCPUs
	}
	if requested <= 0 {
		requested = 1
	}
	if s.AvailMemMB == 0 || frameBytes <= 0 {
		return requested
	}

	perWorker := uint64(frameBytes) * 4
	budget := s.AvailMemMB * (1 << 20) / 2
	maxWorkers := int(budget / perWorker)
	if maxWorkers < 1 {
		maxWorkers = 1
	}
	if requested > maxWorkers {
		return maxWorkers
	}
	return requested
}
