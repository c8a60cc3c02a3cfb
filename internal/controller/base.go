package controller

import (
	"fmt"
	"time"

	"github.com/Samarth827/cgroup-governor/internal/cgroupfs"
	"github.com/Samarth827/cgroup-governor/internal/model"
)

// ensureBase is idempotent per-container initialization (spec.md §4.2): it
// ensures the cgroup directory exists, validates soft<=hard, on the first
// tick writes the configured soft-limit trio, and on every call attaches any
// configured PIDs.
func (c *Controller) ensureBase(now time.Time, spec model.ContainerSpec, state *model.ResourceState) error {
	if err := spec.Validate(); err != nil {
		return fmt.Errorf("config-invariant violation: %w", err)
	}

	if c.dryRun {
		if !state.BaseInitialized {
			state.CPUSoftUs = spec.CPU.SoftQuotaUs
			state.MemSoftBytes = spec.Memory.SoftBytes
			state.IOSoftRbps = spec.IO.SoftRbps
			state.IOSoftWbps = spec.IO.SoftWbps
			state.BaseInitialized = true
		}
		return nil
	}

	if err := cgroupfs.EnsureDir(spec.CgroupPath); err != nil {
		return fmt.Errorf("ensure cgroup dir: %w", err)
	}

	if !state.BaseInitialized {
		if err := cgroupfs.WriteCPUMax(spec.CgroupPath, spec.CPU.SoftQuotaUs, spec.CPU.PeriodUs); err != nil {
			return fmt.Errorf("write cpu.max: %w", err)
		}
		state.CPUSoftUs = spec.CPU.SoftQuotaUs

		if err := cgroupfs.WriteMemoryLimits(spec.CgroupPath, spec.Memory.SoftBytes, spec.Memory.HardBytes); err != nil {
			return fmt.Errorf("write memory limits: %w", err)
		}
		state.MemSoftBytes = spec.Memory.SoftBytes

		if err := cgroupfs.WriteIOMax(spec.CgroupPath, spec.IO.Device, spec.IO.SoftRbps, spec.IO.SoftWbps); err != nil {
			return fmt.Errorf("write io.max: %w", err)
		}
		state.IOSoftRbps = spec.IO.SoftRbps
		state.IOSoftWbps = spec.IO.SoftWbps

		for _, pid := range spec.CPU.PIDs {
			c.emit(now, model.EventInfo, fmt.Sprintf("attaching pid %d to %s", pid, spec.CgroupPath),
				model.InfoData{Container: spec.Name, Detail: fmt.Sprintf("pid=%d", pid)})
		}

		state.BaseInitialized = true
	}

	for _, pid := range spec.CPU.PIDs {
		if err := cgroupfs.AttachPID(spec.CgroupPath, pid); err != nil {
			return fmt.Errorf("attach pid %d: %w", pid, err)
		}
	}

	return nil
}
