// Package observer implements the Observer loop from spec.md §4.1: it
// samples system-wide PSI and per-container cgroup statistics and emits a
// descriptive event/sample stream. It never writes to cgroupfs.
package observer

import (
	"context"
	"log"
	"time"

	"github.com/Samarth827/cgroup-governor/internal/cgroupfs"
	"github.com/Samarth827/cgroup-governor/internal/journal"
	"github.com/Samarth827/cgroup-governor/internal/model"
	"github.com/Samarth827/cgroup-governor/internal/psi"
)

// Observer runs the agent-side sampling loop.
type Observer struct {
	containers []model.ContainerSpec
	journal    *journal.Journal
	interval   time.Duration

	lastMemEvents map[string]map[string]int64
	lastThrottled map[string]int64
	lastIOStat    map[string]map[string]int64
	seenBaseline  map[string]bool
}

// New constructs an Observer for the given containers.
func New(containers []model.ContainerSpec, j *journal.Journal, interval time.Duration) *Observer {
	return &Observer{
		containers:    containers,
		journal:       j,
		interval:      interval,
		lastMemEvents: make(map[string]map[string]int64),
		lastThrottled: make(map[string]int64),
		lastIOStat:    make(map[string]map[string]int64),
		seenBaseline:  make(map[string]bool),
	}
}

// Run blocks until ctx is cancelled, executing one tick then sleeping for
// interval (spec.md §5: "work(); sleep(interval)").
func (o *Observer) Run(ctx context.Context) error {
	log.Printf("observer: started (interval=%s, containers=%d)", o.interval, len(o.containers))
	for {
		o.tick(time.Now())

		select {
		case <-ctx.Done():
			log.Printf("observer: shutting down")
			return nil
		case <-time.After(o.interval):
		}
	}
}

func (o *Observer) tick(now time.Time) {
	sample := model.SampleRecord{
		Time:    float64(now.UnixNano()) / 1e9,
		Source:  "agent",
		PSI:     make(map[string]model.PSIResource),
		CGroups: make(map[string]model.CgroupSample),
	}

	for _, resource := range psi.Resources {
		res, err := psi.Read(resource)
		if err != nil {
			continue // absent or unreadable: skip silently (spec.md §4.1)
		}
		sample.PSI[resource] = res
		o.checkPressure(now, resource, res)
	}

	for _, c := range o.containers {
		cs := o.checkContainer(now, c)
		sample.CGroups[c.Name] = cs
	}

	if err := o.journal.WriteSample(sample); err != nil {
		log.Printf("observer: write sample: %v", err)
	}
}

func (o *Observer) checkPressure(now time.Time, resource string, res model.PSIResource) {
	if res.Some.Avg10 >= model.PSIWarningAvg10 {
		o.emit(now, model.EventPSIWarning,
			"system "+resource+" pressure elevated",
			model.PressureAlertData{Resource: resource, PSI: res.Some})
	}
	if res.Full.Avg10 >= model.PSIStallAvg10 {
		o.emit(now, model.EventPSIStall,
			"system "+resource+" full-pressure stall",
			model.PressureAlertData{Resource: resource, PSI: res.Full})
	}
}

// checkContainer samples one container's memory.events, cpu.stat, io.stat
// and emits anomaly events for positive deltas. It returns the raw
// CgroupSample for the sample journal regardless of whether any event
// fired.
func (o *Observer) checkContainer(now time.Time, c model.ContainerSpec) model.CgroupSample {
	var out model.CgroupSample

	first := !o.seenBaseline[c.Name]

	memPath := cgroupfs.Join(c.CgroupPath, "memory.events")
	if cgroupfs.Exists(memPath) {
		if stats, err := cgroupfs.ParseKeyValue(memPath); err == nil {
			out.MemoryEvents = stats
			o.detectMemoryEvents(now, c.Name, stats, first)
		} else {
			o.emit(now, model.EventMalformedRead, "malformed memory.events", model.ErrorData{Container: c.Name, Path: memPath, Detail: err.Error()})
		}
	}

	cpuPath := cgroupfs.Join(c.CgroupPath, "cpu.stat")
	if cgroupfs.Exists(cpuPath) {
		if stats, err := cgroupfs.ParseKeyValue(cpuPath); err == nil {
			out.UsageUsec = stats["usage_usec"]
			out.ThrottledUsec = stats["throttled_usec"]
			o.detectCPUThrottle(now, c.Name, stats["nr_throttled"], first)
		} else {
			o.emit(now, model.EventMalformedRead, "malformed cpu.stat", model.ErrorData{Container: c.Name, Path: cpuPath, Detail: err.Error()})
		}
	}

	memCurPath := cgroupfs.Join(c.CgroupPath, "memory.current")
	if cgroupfs.Exists(memCurPath) {
		if v, err := cgroupfs.ReadInt(memCurPath); err == nil {
			out.MemoryCurrent = v
		}
	}

	ioPath := cgroupfs.Join(c.CgroupPath, "io.stat")
	if cgroupfs.Exists(ioPath) {
		if stats, err := cgroupfs.SumIODevices(ioPath); err == nil {
			out.IO = stats
			o.detectIOPressure(now, c.Name, stats, first)
		} else {
			o.emit(now, model.EventMalformedRead, "malformed io.stat", model.ErrorData{Container: c.Name, Path: ioPath, Detail: err.Error()})
		}
	}

	o.seenBaseline[c.Name] = true
	return out
}

func (o *Observer) detectMemoryEvents(now time.Time, name string, stats map[string]int64, first bool) {
	prev := o.lastMemEvents[name]
	if prev == nil {
		prev = make(map[string]int64)
	}
	if !first {
		for _, key := range []string{"low", "high", "max", "oom", "oom_kill"} {
			delta := model.ClampDelta(stats[key], prev[key])
			if delta <= 0 {
				continue
			}
			eventType := model.EventMemoryEvent
			if key == "oom" || key == "oom_kill" {
				eventType = model.EventMemoryCritical
			}
			o.emit(now, eventType,
				name+" memory event "+key,
				model.MemoryEventData{Container: name, Event: key, Count: delta})
		}
	}
	o.lastMemEvents[name] = stats
}

func (o *Observer) detectCPUThrottle(now time.Time, name string, throttled int64, first bool) {
	prev := o.lastThrottled[name]
	if !first {
		delta := model.ClampDelta(throttled, prev)
		if delta > 0 {
			o.emit(now, model.EventCPUThrottle,
				name+" experienced throttled periods",
				model.CPUThrottleData{Container: name, Delta: delta, Total: throttled})
		}
	}
	o.lastThrottled[name] = throttled
}

func (o *Observer) detectIOPressure(now time.Time, name string, stats map[string]int64, first bool) {
	prev := o.lastIOStat[name]
	if prev == nil {
		prev = make(map[string]int64)
	}
	if !first {
		deltas := make(map[string]int64, len(stats))
		anyWait := false
		for k, v := range stats {
			d := model.ClampDelta(v, prev[k])
			deltas[k] = d
			if d > 0 && len(k) >= 4 && k[len(k)-4:] == "wait" {
				anyWait = true
			}
		}
		if anyWait {
			o.emit(now, model.EventIOPressure,
				name+" IO wait increasing",
				model.IOPressureData{Container: name, Deltas: deltas})
		}
	}
	o.lastIOStat[name] = stats
}

func (o *Observer) emit(now time.Time, eventType, message string, data any) {
	rec := model.EventRecord{
		Time:    float64(now.UnixNano()) / 1e9,
		Source:  "agent",
		Type:    eventType,
		Message: message,
		Data:    data,
	}
	if err := o.journal.WriteEvent(rec); err != nil {
		log.Printf("observer: write event: %v", err)
	}
}
