package trend

import "sort"

// GroupState tracks one group's stage-1 lifecycle:
// Pending -> Fitting -> {Converged, Excluded}. Excluded is terminal
// for the orchestration run.
type GroupState int

const (
	StatePending GroupState = iota
	StateFitting
	StateConverged
	StateExcluded
)

var groupStateNames = map[GroupState]string{
	StatePending:   "pending",
	StateFitting:   "fitting",
	StateConverged: "converged",
	StateExcluded:  "excluded",
}

func (s GroupState) String() string {
	if name, ok := groupStateNames[s]; ok {
		return name
	}
	return "unknown"
}

func sortedKeys(groups map[float64]Group) []float64 {
	keys := make([]float64, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Float64s(keys)
	return keys
}
