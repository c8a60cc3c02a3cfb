package controller

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Samarth827/cgroup-governor/internal/model"
)

// sawEvent reports whether the events journal at path holds an event of
// the given type.
func sawEvent(t *testing.T, path, eventType string) bool {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read events: %v", err)
	}
	for _, line := range strings.Split(strings.TrimSpace(string(data)), "\n") {
		var rec model.EventRecord
		if err := json.Unmarshal([]byte(line), &rec); err == nil && rec.Type == eventType {
			return true
		}
	}
	return false
}

func TestAdjustCPUFirstTickOnlySetsBaseline(t *testing.T) {
	c, cgroupPath := newTestController(t, false)
	spec := c.containers[0]
	state := model.NewResourceState()
	state.CPUSoftUs = spec.CPU.SoftQuotaUs

	writeCgroupFile(t, cgroupPath, "cpu.stat", "usage_usec 1000\nthrottled_usec 0\n")

	c.adjustCPU(time.Now(), spec, state)
	if !state.HaveCPUBaseline {
		t.Fatal("expected HaveCPUBaseline after first tick")
	}
	if state.CPUSoftUs != spec.CPU.SoftQuotaUs {
		t.Error("first tick must not adjust the soft limit")
	}
}

func TestAdjustCPURaisesSoftLimitOnThrottle(t *testing.T) {
	c, cgroupPath := newTestController(t, false)
	spec := c.containers[0]
	state := model.NewResourceState()
	state.CPUSoftUs = spec.CPU.SoftQuotaUs

	writeCgroupFile(t, cgroupPath, "cpu.stat", "usage_usec 1000\nthrottled_usec 0\n")
	c.adjustCPU(time.Now(), spec, state)

	writeCgroupFile(t, cgroupPath, "cpu.stat", "usage_usec 2000\nthrottled_usec 500\n")
	c.adjustCPU(time.Now(), spec, state)

	want := spec.CPU.SoftQuotaUs + spec.CPU.AdjustStepUs
	if state.CPUSoftUs != want {
		t.Errorf("CPUSoftUs = %d, want %d", state.CPUSoftUs, want)
	}

	data, err := os.ReadFile(filepath.Join(cgroupPath, "cpu.max"))
	if err != nil {
		t.Fatalf("read cpu.max: %v", err)
	}
	if string(data) != fmt.Sprintf("%d %d", want, spec.CPU.PeriodUs) {
		t.Errorf("cpu.max = %q", data)
	}
}

func TestAdjustCPUEmitsHardLimitHitAtCap(t *testing.T) {
	root := t.TempDir()
	c, cgroupPath := newTestControllerWithRoot(t, root, false)
	spec := c.containers[0]
	state := model.NewResourceState()
	state.CPUSoftUs = spec.CPU.HardQuotaUs // already at cap

	writeCgroupFile(t, cgroupPath, "cpu.stat", "usage_usec 1000\nthrottled_usec 0\n")
	c.adjustCPU(time.Now(), spec, state)

	writeCgroupFile(t, cgroupPath, "cpu.stat", "usage_usec 2000\nthrottled_usec 500\n")
	c.adjustCPU(time.Now(), spec, state)

	if state.CPUSoftUs != spec.CPU.HardQuotaUs {
		t.Errorf("soft limit must stay at hard cap, got %d", state.CPUSoftUs)
	}
	if !sawEvent(t, filepath.Join(root, "events.jsonl"), model.EventHardLimitHit) {
		t.Error("expected a hard_limit_hit event when throttled at the hard cap")
	}
}

func TestAdjustCPUPendingEvalResolvesToEffective(t *testing.T) {
	root := t.TempDir()
	c, cgroupPath := newTestControllerWithRoot(t, root, false)
	spec := c.containers[0]
	state := model.NewResourceState()
	state.CPUSoftUs = spec.CPU.SoftQuotaUs
	state.HaveCPUBaseline = true
	state.LastUsageUs = 1000
	state.LastThrottledUs = 1000
	state.Pending = &model.PendingEval{PrevDelta: 500, NewSoft: spec.CPU.SoftQuotaUs, AppliedAt: time.Now()}

	// throttled delta this tick (200) is less than the pending delta (500): effective.
	writeCgroupFile(t, cgroupPath, "cpu.stat", "usage_usec 2000\nthrottled_usec 1200\n")
	c.adjustCPU(time.Now(), spec, state)

	if state.Pending != nil {
		t.Error("pending evaluation must be cleared after resolution")
	}
	if !sawEvent(t, filepath.Join(root, "events.jsonl"), model.EventMLEffective) {
		t.Error("expected an ml_effective event when the throttled delta dropped")
	}
}
