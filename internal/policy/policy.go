// Package policy implements the pluggable soft-limit suggestion contract
// from spec.md §4.3: a stateless function from a feature vector plus
// current limits to an optional suggested new soft CPU quota.
package policy

// Features is the fixed-order feature vector used by ModelPolicy, and the
// named fields HeuristicPolicy ignores.
type Features struct {
	UsageRatio    float64
	ThrottleRatio float64
	MemoryRatio   float64
	Rbps          float64
	Wbps          float64
}

// Vector returns the feature vector in the fixed order spec.md §4.3
// requires: [usage_ratio, throttle_ratio, memory_ratio, rbps, wbps,
// current_soft, hard_cap].
func (f Features) Vector(currentSoft, hardCap int64) []float64 {
	return []float64{
		f.UsageRatio,
		f.ThrottleRatio,
		f.MemoryRatio,
		f.Rbps,
		f.Wbps,
		float64(currentSoft),
		float64(hardCap),
	}
}

// Policy suggests a new CPU soft quota, or reports that it has no
// suggestion (ok == false), in which case the controller falls through to
// its additive-step heuristic.
type Policy interface {
	Suggest(features Features, hardCap, currentSoft int64) (newSoft int64, ok bool)
}
