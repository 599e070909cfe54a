package neje

// State tracks where a session is in the engraving workflow.
type State int

const (
	Disconnected State = iota
	Idle
	Erasing
	Uploading
	Ready
	Engraving
	Paused
)

func (s State) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Idle:
		return "idle"
	case Erasing:
		return "erasing"
	case Uploading:
		return "uploading"
	case Ready:
		return "ready"
	case Engraving:
		return "engraving"
	case Paused:
		return "paused"
	}
	return "unknown"
}
