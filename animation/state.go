package animation

// The orchestrator states.
type State uint8

const (
	Idle State = iota
	LoopEntry
	FrameStart
	SceneAdvance
	AccumulationReset
	Sampling
	Resolve
	BudgetCheck
	Encode
	LoopExit
	Terminated
)

var stateNames = [...]string{
	Idle:              "idle",
	LoopEntry:         "loop-entry",
	FrameStart:        "frame-start",
	SceneAdvance:      "scene-advance",
	AccumulationReset: "accumulation-reset",
	Sampling:          "sampling",
	Resolve:           "resolve",
	BudgetCheck:       "budget-check",
	Encode:            "encode",
	LoopExit:          "loop-exit",
	Terminated:        "terminated",
}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "unknown"
}

// A StateObserver is notified about every state transition. The frame
// argument is the index of the frame being processed.
type StateObserver func(frame uint32, from, to State)
