package model

// SampleRecord is one line of the append-only sample journal (§3, §6). An
// agent sample fills PSI and CGroups; a controller sample fills Container,
// CPU, Memory and IO.
type SampleRecord struct {
	Time       float64           `json:"time"`
	Source     string            `json:"source"`
	PSI        map[string]PSIResource `json:"psi,omitempty"`
	CGroups    map[string]CgroupSample `json:"cgroups,omitempty"`
	Container  string            `json:"container,omitempty"`
	CPU        *CPUSample        `json:"cpu,omitempty"`
	Memory     *MemorySample     `json:"memory,omitempty"`
	IO         *IOSample         `json:"io,omitempty"`
}

// CgroupSample is the raw per-container reading an agent sample carries for
// each managed container (observer side — no derived deltas, just the
// current counters, since the agent's purpose is description not decision).
type CgroupSample struct {
	UsageUsec     int64            `json:"usage_usec"`
	ThrottledUsec int64            `json:"throttled_usec"`
	MemoryCurrent int64            `json:"memory_current"`
	MemoryEvents  map[string]int64 `json:"memory_events,omitempty"`
	IO            map[string]int64 `json:"io,omitempty"`
}

// CPUSample is the controller-side CPU quantities recorded every tick.
type CPUSample struct {
	SoftQuotaUs      int64 `json:"soft_quota_us"`
	HardQuotaUs      int64 `json:"hard_quota_us"`
	PeriodUs         int64 `json:"period_us"`
	UsageUsec        int64 `json:"usage_usec"`
	UsageDeltaUsec   int64 `json:"usage_delta_usec"`
	ThrottledUsec    int64 `json:"throttled_usec"`
	ThrottledDeltaUsec int64 `json:"throttled_delta_usec"`
}

// MemorySample is the controller-side memory quantities recorded every tick.
type MemorySample struct {
	CurrentBytes int64 `json:"current_bytes"`
	SoftBytes    int64 `json:"soft_bytes"`
	HardBytes    int64 `json:"hard_bytes"`
}

// IOSample is the controller-side I/O quantities recorded every tick.
type IOSample struct {
	Metrics  map[string]int64 `json:"metrics"`
	SoftRbps int64            `json:"soft_rbps"`
	SoftWbps int64            `json:"soft_wbps"`
	HardRbps int64            `json:"hard_rbps"`
	HardWbps int64            `json:"hard_wbps"`
}
