package scan

// State is a Session lifecycle stage.
type State int

const (
	StateIdle State = iota
	StateAcquiring
	StateStreaming
	StateLooping
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAcquiring:
		return "acquiring"
	case StateStreaming:
		return "streaming"
	case StateLooping:
		return "looping"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}
