package job

import "fmt"

// State is a job's position in Idle → Staged → Transcribing → {Succeeded, Failed} → Cleaned.
type State int

const (
	StateIdle State = iota
	StateStaged
	StateTranscribing
	StateSucceeded
	StateFailed
	StateCleaned
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateStaged:
		return "staged"
	case StateTranscribing:
		return "transcribing"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	case StateCleaned:
		return "cleaned"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}
