package controller

import (
	"log"
	"time"

	"github.com/Samarth827/cgroup-governor/internal/model"
)

// recordSample writes one controller-side sample per container per tick,
// independent of whether any event fired this tick (spec.md §3/§6).
func (c *Controller) recordSample(now time.Time, spec model.ContainerSpec, state *model.ResourceState) {
	ioMetrics := map[string]int64{
		"rbps": state.LastIORbps,
		"wbps": state.LastIOWbps,
	}

	rec := model.SampleRecord{
		Time:      float64(now.UnixNano()) / 1e9,
		Source:    "controller",
		Container: spec.Name,
		CPU: &model.CPUSample{
			SoftQuotaUs:        state.CPUSoftUs,
			HardQuotaUs:        spec.CPU.HardQuotaUs,
			PeriodUs:           spec.CPU.PeriodUs,
			UsageUsec:          state.LastUsageUs,
			UsageDeltaUsec:     state.LastUsageDelta,
			ThrottledUsec:      state.LastThrottledUs,
			ThrottledDeltaUsec: state.LastThrottledDelta,
		},
		Memory: &model.MemorySample{
			CurrentBytes: state.LastMemoryCurrent,
			SoftBytes:    state.MemSoftBytes,
			HardBytes:    spec.Memory.HardBytes,
		},
		IO: &model.IOSample{
			Metrics:  ioMetrics,
			SoftRbps: state.IOSoftRbps,
			SoftWbps: state.IOSoftWbps,
			HardRbps: spec.IO.HardRbps,
			HardWbps: spec.IO.HardWbps,
		},
	}

	if err := c.journal.WriteSample(rec); err != nil {
		log.Printf("controller: write sample: %v", err)
	}
}
