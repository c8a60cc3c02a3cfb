package controller

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Samarth827/cgroup-governor/internal/journal"
	"github.com/Samarth827/cgroup-governor/internal/model"
	"github.com/Samarth827/cgroup-governor/internal/policy"
)

func newTestController(t *testing.T, dryRun bool) (*Controller, string) {
	t.Helper()
	return newTestControllerWithRoot(t, t.TempDir(), dryRun)
}

func newTestControllerWithRoot(t *testing.T, root string, dryRun bool) (*Controller, string) {
	t.Helper()
	cgroupPath := filepath.Join(root, "cgroup", "web")

	j, err := journal.Open(journal.Config{
		EventsSink:  filepath.Join(root, "events.jsonl"),
		SamplesSink: filepath.Join(root, "samples.jsonl"),
		DryRun:      dryRun,
	})
	if err != nil {
		t.Fatalf("journal.Open: %v", err)
	}
	t.Cleanup(func() { j.Close() })

	spec := model.ContainerSpec{
		Name:       "web",
		CgroupPath: cgroupPath,
		CPU:        model.CPUSpec{SoftQuotaUs: 50000, HardQuotaUs: 100000, PeriodUs: 100000, AdjustStepUs: 10000},
		Memory:     model.MemorySpec{SoftBytes: 1 << 20, HardBytes: 4 << 20, AdjustStepBytes: 1 << 19},
		IO:         model.IOSpec{Device: "8:0", SoftRbps: 1000, HardRbps: 4000, SoftWbps: 1000, HardWbps: 4000, AdjustStepBps: 500},
	}

	c := New([]model.ContainerSpec{spec}, j, policy.HeuristicPolicy{}, time.Second, dryRun)
	return c, cgroupPath
}

func writeCgroupFile(t *testing.T, cgroupPath, name, content string) {
	t.Helper()
	if err := os.MkdirAll(cgroupPath, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(cgroupPath, name), []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func TestEnsureBaseWritesLimitsOnlyOnce(t *testing.T) {
	c, cgroupPath := newTestController(t, false)
	spec := c.containers[0]
	state := model.NewResourceState()
	now := time.Now()

	if err := c.ensureBase(now, spec, state); err != nil {
		t.Fatalf("ensureBase (first): %v", err)
	}
	if !state.BaseInitialized {
		t.Fatal("expected BaseInitialized after first call")
	}
	data, err := os.ReadFile(filepath.Join(cgroupPath, "cpu.max"))
	if err != nil || string(data) != "50000 100000" {
		t.Fatalf("cpu.max = %q, err=%v", data, err)
	}

	// Mutate the file to prove a second ensureBase call does not rewrite it.
	if err := os.WriteFile(filepath.Join(cgroupPath, "cpu.max"), []byte("99999 100000"), 0o644); err != nil {
		t.Fatalf("mutate cpu.max: %v", err)
	}
	if err := c.ensureBase(now, spec, state); err != nil {
		t.Fatalf("ensureBase (second): %v", err)
	}
	data, _ = os.ReadFile(filepath.Join(cgroupPath, "cpu.max"))
	if string(data) != "99999 100000" {
		t.Errorf("ensureBase should not rewrite limits after first init, got %q", data)
	}
}

func TestEnsureBaseDryRunWritesNothing(t *testing.T) {
	c, cgroupPath := newTestController(t, true)
	spec := c.containers[0]
	state := model.NewResourceState()

	if err := c.ensureBase(time.Now(), spec, state); err != nil {
		t.Fatalf("ensureBase: %v", err)
	}
	if !state.BaseInitialized {
		t.Fatal("dry-run should still mark BaseInitialized")
	}
	if state.CPUSoftUs != spec.CPU.SoftQuotaUs {
		t.Errorf("dry-run should still initialize in-memory state")
	}
	if _, err := os.Stat(cgroupPath); !os.IsNotExist(err) {
		t.Error("dry-run must not touch cgroupfs")
	}
}

func TestEnsureBaseRejectsInvalidSpec(t *testing.T) {
	c, _ := newTestController(t, false)
	spec := c.containers[0]
	spec.CPU.SoftQuotaUs = spec.CPU.HardQuotaUs + 1
	state := model.NewResourceState()

	if err := c.ensureBase(time.Now(), spec, state); err == nil {
		t.Fatal("expected an error for an invalid soft>hard spec")
	}
}
