package controller

import (
	"time"

	"github.com/Samarth827/cgroup-governor/internal/cgroupfs"
	"github.com/Samarth827/cgroup-governor/internal/model"
)

// adjustIO implements spec.md §4.2's I/O adjustment: the read and write
// soft limits are bumped independently, but since cgroup v2 only exposes a
// single io.max write per device, a single write carries whichever side
// changed (or both).
func (c *Controller) adjustIO(now time.Time, spec model.ContainerSpec, state *model.ResourceState) {
	statPath := cgroupfs.Join(spec.CgroupPath, "io.stat")
	if !cgroupfs.Exists(statPath) {
		return
	}
	dev, err := cgroupfs.ParseIODevice(statPath, spec.IO.Device)
	if err != nil || dev == nil {
		return
	}

	rbps := dev["rbps"]
	wbps := dev["wbps"]
	state.LastIORbps = rbps
	state.LastIOWbps = wbps

	newRbps := state.IOSoftRbps
	newWbps := state.IOSoftWbps
	changed := false
	atHardR, atHardW := false, false

	if rbps >= state.IOSoftRbps {
		if state.IOSoftRbps >= spec.IO.HardRbps {
			atHardR = true
		} else {
			newRbps = state.IOSoftRbps + spec.IO.AdjustStepBps
			if newRbps > spec.IO.HardRbps {
				newRbps = spec.IO.HardRbps
			}
			changed = true
		}
	}
	if wbps >= state.IOSoftWbps {
		if state.IOSoftWbps >= spec.IO.HardWbps {
			atHardW = true
		} else {
			newWbps = state.IOSoftWbps + spec.IO.AdjustStepBps
			if newWbps > spec.IO.HardWbps {
				newWbps = spec.IO.HardWbps
			}
			changed = true
		}
	}

	if changed {
		if !c.dryRun {
			if err := cgroupfs.WriteIOMax(spec.CgroupPath, spec.IO.Device, newRbps, newWbps); err != nil {
				c.emit(now, model.EventError, "failed to write io.max",
					model.ErrorData{Container: spec.Name, Path: cgroupfs.Join(spec.CgroupPath, "io.max"), Detail: err.Error()})
				return
			}
		}
		state.IOSoftRbps = newRbps
		state.IOSoftWbps = newWbps
		c.emit(now, model.EventSoftLimitHit,
			spec.Name+" I/O near soft limit; raising soft limit",
			model.LimitHitData{Resource: "io", Container: spec.Name, NewSoftRbps: newRbps, NewSoftWbps: newWbps})
	} else if atHardR || atHardW {
		c.emit(now, model.EventHardLimitHit,
			spec.Name+" I/O at hard limit",
			model.LimitHitData{Resource: "io", Container: spec.Name, Rbps: rbps, Wbps: wbps})
	}
}
