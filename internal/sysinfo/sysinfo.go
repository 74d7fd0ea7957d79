// Package sysinfo samples host CPU and memory usage for the status
// endpoint and the terminal dashboard.
package sysinfo

import (
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// Stats is a point-in-time host resource sample.
type Stats struct {
	CPUPercent float64
	MemPercent float64
	MemUsedGB  float64
	MemTotalGB float64
}

// Sampler reads host stats. The zero value is ready to use.
type Sampler struct{}

// Sample returns current CPU and memory usage. The CPU figure is the
// instantaneous aggregate across cores.
func (Sampler) Sample() (Stats, error) {
	var s Stats
	cpuPercent, err := cpu.Percent(0, false)
	if err != nil {
		return s, err
	}
	if len(cpuPercent) > 0 {
		s.CPUPercent = cpuPercent[0]
	}
	vm, err := mem.VirtualMemory()
	if err != nil {
		return s, err
	}
	s.MemPercent = vm.UsedPercent
	s.MemUsedGB = float64(vm.Used) / (1024 * 1024 * 1024)
	s.MemTotalGB = float64(vm.Total) / (1024 * 1024 * 1024)
	return s, nil
}
