package controller

import (
	"time"

	"github.com/Samarth827/cgroup-governor/internal/cgroupfs"
	"github.com/Samarth827/cgroup-governor/internal/model"
)

// adjustMemory implements spec.md §4.2's memory adjustment: once current
// usage crosses 95% of the soft limit, the soft limit is bumped toward the
// hard cap; at the hard cap a hard_limit_hit is emitted instead.
func (c *Controller) adjustMemory(now time.Time, spec model.ContainerSpec, state *model.ResourceState) {
	curPath := cgroupfs.Join(spec.CgroupPath, "memory.current")
	if !cgroupfs.Exists(curPath) {
		return
	}
	current, err := cgroupfs.ReadInt(curPath)
	if err != nil {
		return
	}
	state.LastMemoryCurrent = current

	threshold := int64(float64(state.MemSoftBytes) * 0.95)
	if current < threshold {
		return
	}

	if state.MemSoftBytes >= spec.Memory.HardBytes {
		c.emit(now, model.EventHardLimitHit,
			spec.Name+" memory usage at hard limit",
			model.LimitHitData{Resource: "memory", Container: spec.Name, Value: current})
		return
	}

	newSoft := state.MemSoftBytes + spec.Memory.AdjustStepBytes
	if newSoft > spec.Memory.HardBytes {
		newSoft = spec.Memory.HardBytes
	}

	if !c.dryRun {
		if err := cgroupfs.WriteMemoryLimits(spec.CgroupPath, newSoft, spec.Memory.HardBytes); err != nil {
			c.emit(now, model.EventError, "failed to write memory.high",
				model.ErrorData{Container: spec.Name, Path: cgroupfs.Join(spec.CgroupPath, "memory.high"), Detail: err.Error()})
			return
		}
	}
	state.MemSoftBytes = newSoft

	c.emit(now, model.EventSoftLimitHit,
		spec.Name+" memory usage near soft limit; raising soft limit",
		model.LimitHitData{Resource: "memory", Container: spec.Name, NewSoftBytes: newSoft})
}
