// Package model holds the plain data types shared by the observer and
// controller: container configuration, per-container runtime state, and the
// event/sample records appended to the journal.
package model

import "fmt"

// CPUSpec is the CPU portion of a ContainerSpec.
type CPUSpec struct {
	SoftQuotaUs  int64 `yaml:"soft_quota_us"`
	HardQuotaUs  int64 `yaml:"hard_quota_us"`
	PeriodUs     int64 `yaml:"period_us"`
	AdjustStepUs int64 `yaml:"adjust_step_us"`
	PIDs         []int `yaml:"pids,omitempty"`
}

// MemorySpec is the memory portion of a ContainerSpec.
type MemorySpec struct {
	SoftBytes       int64 `yaml:"soft_bytes"`
	HardBytes       int64 `yaml:"hard_bytes"`
	AdjustStepBytes int64 `yaml:"adjust_step_bytes"`
}

// IOSpec is the block I/O portion of a ContainerSpec.
type IOSpec struct {
	Device        string `yaml:"device"`
	SoftRbps      int64  `yaml:"soft_rbps"`
	SoftWbps      int64  `yaml:"soft_wbps"`
	HardRbps      int64  `yaml:"hard_rbps"`
	HardWbps      int64  `yaml:"hard_wbps"`
	AdjustStepBps int64  `yaml:"adjust_step_bps"`
}

// ContainerSpec is the immutable, config-loaded description of one managed
// container. It never mutates at runtime.
type ContainerSpec struct {
	Name       string `yaml:"-"`
	CgroupPath string `yaml:"cgroup_path"`
	CPU        CPUSpec    `yaml:"cpu"`
	Memory     MemorySpec `yaml:"memory"`
	IO         IOSpec     `yaml:"io"`
}

// Validate checks the soft <= hard invariant for every resource. It is
// called when the container specs are built from the config and again by
// the controller at the start of every tick.
func (c *ContainerSpec) Validate() error {
	if c.CPU.SoftQuotaUs > c.CPU.HardQuotaUs {
		return fmt.Errorf("container %s: cpu soft_quota_us (%d) exceeds hard_quota_us (%d)", c.Name, c.CPU.SoftQuotaUs, c.CPU.HardQuotaUs)
	}
	if c.Memory.SoftBytes > c.Memory.HardBytes {
		return fmt.Errorf("container %s: memory soft_bytes (%d) exceeds hard_bytes (%d)", c.Name, c.Memory.SoftBytes, c.Memory.HardBytes)
	}
	if c.IO.SoftRbps > c.IO.HardRbps {
		return fmt.Errorf("container %s: io soft_rbps (%d) exceeds hard_rbps (%d)", c.Name, c.IO.SoftRbps, c.IO.HardRbps)
	}
	if c.IO.SoftWbps > c.IO.HardWbps {
		return fmt.Errorf("container %s: io soft_wbps (%d) exceeds hard_wbps (%d)", c.Name, c.IO.SoftWbps, c.IO.HardWbps)
	}
	return nil
}
