package pipeline

// State is where a field pipeline sits between edits.
type State int

const (
	StateIdle State = iota
	StateDebouncing
	StateSyntaxFailed
	StateRemoteChecking
	StateResolved
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateDebouncing:
		return "debouncing"
	case StateSyntaxFailed:
		return "syntax-failed"
	case StateRemoteChecking:
		return "remote-checking"
	case StateResolved:
		return "resolved"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}
