package controller

import (
	"time"

	"github.com/Samarth827/cgroup-governor/internal/cgroupfs"
	"github.com/Samarth827/cgroup-governor/internal/model"
	"github.com/Samarth827/cgroup-governor/internal/policy"
)

// adjustCPU implements spec.md §4.2's CPU adjustment: delta accounting,
// effectiveness resolution of any pending policy evaluation, and the
// soft-limit decision.
func (c *Controller) adjustCPU(now time.Time, spec model.ContainerSpec, state *model.ResourceState) {
	statPath := cgroupfs.Join(spec.CgroupPath, "cpu.stat")
	if !cgroupfs.Exists(statPath) {
		return // no data this tick (spec.md §4.2/§7)
	}
	stat, err := cgroupfs.ParseKeyValue(statPath)
	if err != nil {
		return // malformed: treat as absent this tick
	}

	usage := stat["usage_usec"]
	throttled := stat["throttled_usec"]

	if !state.HaveCPUBaseline {
		state.LastUsageUs = usage
		state.LastThrottledUs = throttled
		state.HaveCPUBaseline = true
		return
	}

	usageDelta := model.ClampDelta(usage, state.LastUsageUs)
	throttledDelta := model.ClampDelta(throttled, state.LastThrottledUs)

	if state.Pending != nil {
		pending := state.Pending
		if throttledDelta < pending.PrevDelta {
			c.emit(now, model.EventMLEffective,
				spec.Name+" soft-limit adjustment relieved throttling",
				model.MLOutcomeData{
					Container:     spec.Name,
					PreviousDelta: pending.PrevDelta,
					CurrentDelta:  throttledDelta,
					Improvement:   pending.PrevDelta - throttledDelta,
				})
		} else {
			c.emit(now, model.EventMLNoImprovement,
				spec.Name+" soft-limit adjustment had no effect",
				model.MLOutcomeData{
					Container:     spec.Name,
					PreviousDelta: pending.PrevDelta,
					CurrentDelta:  throttledDelta,
				})
		}
		state.Pending = nil
	}

	switch {
	case throttledDelta > 0 && state.CPUSoftUs < spec.CPU.HardQuotaUs:
		memRatio := 0.0
		if spec.Memory.SoftBytes > 0 {
			memRatio = float64(state.LastMemoryCurrent) / float64(spec.Memory.SoftBytes)
		}
		features := policy.Features{
			UsageRatio:    float64(usageDelta) / float64(spec.CPU.PeriodUs),
			ThrottleRatio: float64(throttledDelta) / float64(spec.CPU.PeriodUs),
			MemoryRatio:   memRatio,
			Rbps:          float64(state.LastIORbps),
			Wbps:          float64(state.LastIOWbps),
		}

		newSoft := state.CPUSoftUs + spec.CPU.AdjustStepUs
		if newSoft > spec.CPU.HardQuotaUs {
			newSoft = spec.CPU.HardQuotaUs
		}
		usedPolicy := false
		if suggested, ok := c.policy.Suggest(features, spec.CPU.HardQuotaUs, state.CPUSoftUs); ok {
			if suggested > state.CPUSoftUs && suggested <= spec.CPU.HardQuotaUs {
				newSoft = suggested
				usedPolicy = true
			}
		}

		if !c.dryRun {
			if err := cgroupfs.WriteCPUMax(spec.CgroupPath, newSoft, spec.CPU.PeriodUs); err != nil {
				c.emit(now, model.EventError, "failed to write cpu.max",
					model.ErrorData{Container: spec.Name, Path: cgroupfs.Join(spec.CgroupPath, "cpu.max"), Detail: err.Error()})
				state.LastUsageUs = usage
				state.LastThrottledUs = throttled
				return
			}
		}
		state.CPUSoftUs = newSoft

		c.emit(now, model.EventSoftLimitHit,
			spec.Name+" CPU throttled; raising soft quota",
			model.LimitHitData{Resource: "cpu", Container: spec.Name, NewSoftQuotaUs: newSoft})

		if usedPolicy {
			c.emit(now, model.EventMLAdjustment,
				spec.Name+" policy suggested a new CPU soft quota",
				model.MLAdjustmentData{Container: spec.Name, NewSoftQuota: newSoft})
			state.Pending = &model.PendingEval{
				PrevDelta: throttledDelta,
				NewSoft:   newSoft,
				AppliedAt: now,
			}
		}

	case throttledDelta > 0 && state.CPUSoftUs >= spec.CPU.HardQuotaUs:
		c.emit(now, model.EventHardLimitHit,
			spec.Name+" CPU throttled at hard limit",
			model.LimitHitData{Resource: "cpu", Container: spec.Name, HardQuotaUs: spec.CPU.HardQuotaUs})
	}

	state.LastUsageUs = usage
	state.LastThrottledUs = throttled
	state.LastUsageDelta = usageDelta
	state.LastThrottledDelta = throttledDelta
}
