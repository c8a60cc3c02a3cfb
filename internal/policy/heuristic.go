package policy

// HeuristicPolicy always defers to the controller's additive step; it never
// proposes a value of its own (spec.md §4.3).
type HeuristicPolicy struct{}

// Suggest always returns ok=false.
func (HeuristicPolicy) Suggest(Features, int64, int64) (int64, bool) {
	return 0, false
}
