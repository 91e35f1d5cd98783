package pipeline

// State tracks pipeline progress. Transitions are strictly sequential:
// NotStarted -> Loading -> Indexing -> Aggregating -> Done, with Failed
// absorbing from any non-terminal state.
type State int

const (
	StateNotStarted State = iota
	StateLoading
	StateIndexing
	StateAggregating
	StateDone
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateNotStarted:
		return "NOT_STARTED"
	case StateLoading:
		return "LOADING"
	case StateIndexing:
		return "INDEXING"
	case StateAggregating:
		return "AGGREGATING"
	case StateDone:
		return "DONE"
	case StateFailed:
		return "FAILED"
	default:
		return "UNKNOWN"
	}
}

func (s State) terminal() bool {
	return s == StateDone || s == StateFailed
}
