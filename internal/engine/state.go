package engine

// State is the walk engine's position in its state machine.
type State int

const (
	AtRoot State = iota
	Descending
	AttemptingCopy
	Backtracked
	Exhausted
	TimedOut
	Stopped
	Completed
)

var stateNames = [...]string{
	AtRoot:         "AtRoot",
	Descending:     "Descending",
	AttemptingCopy: "AttemptingCopy",
	Backtracked:    "Backtracked",
	Exhausted:      "Exhausted",
	TimedOut:       "TimedOut",
	Stopped:        "Stopped",
	Completed:      "Completed",
}

func (s State) String() string {
	if s >= 0 && int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "Unknown"
}

// Terminal reports whether the walk has ended.
func (s State) Terminal() bool {
	return s >= Exhausted
}
