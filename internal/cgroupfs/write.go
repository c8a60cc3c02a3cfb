package cgroupfs

import (
	"fmt"
	"os"
	"strconv"
)

// EnsureDir makes sure the cgroup directory exists (spec.md §4.2: "Ensure
// the cgroup directory exists").
func EnsureDir(path string) error {
	return os.MkdirAll(path, 0o755)
}

// WriteCPUMax writes "<quota> <period>" to cpu.max.
func WriteCPUMax(cgroupPath string, quotaUs, periodUs int64) error {
	line := fmt.Sprintf("%d %d", quotaUs, periodUs)
	return os.WriteFile(Join(cgroupPath, "cpu.max"), []byte(line), 0o644)
}

// WriteMemoryLimits writes soft to memory.high and hard to memory.max.
func WriteMemoryLimits(cgroupPath string, softBytes, hardBytes int64) error {
	if err := os.WriteFile(Join(cgroupPath, "memory.high"), []byte(strconv.FormatInt(softBytes, 10)), 0o644); err != nil {
		return err
	}
	return os.WriteFile(Join(cgroupPath, "memory.max"), []byte(strconv.FormatInt(hardBytes, 10)), 0o644)
}

// WriteIOMax writes "<device> rbps=R wbps=W" to io.max.
func WriteIOMax(cgroupPath, device string, rbps, wbps int64) error {
	line := fmt.Sprintf("%s rbps=%d wbps=%d", device, rbps, wbps)
	return os.WriteFile(Join(cgroupPath, "io.max"), []byte(line), 0o644)
}

// AttachPID writes one PID to cgroup.procs, moving the process into the
// cgroup (spec.md §4.2).
func AttachPID(cgroupPath string, pid int) error {
	return os.WriteFile(Join(cgroupPath, "cgroup.procs"), []byte(strconv.Itoa(pid)), 0o644)
}
