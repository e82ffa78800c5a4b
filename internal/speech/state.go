package speech

// State is the controller's playback state.
type State int

const (
	StateIdle State = iota
	StateSpeaking
	StatePaused
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSpeaking:
		return "speaking"
	case StatePaused:
		return "paused"
	default:
		return "unknown"
	}
}

// Status is a snapshot of the observable controller state.
type Status struct {
	State    string `json:"state"`
	Speaking bool   `json:"speaking"`
	Paused   bool   `json:"paused"`
}
