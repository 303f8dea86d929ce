package player

// State is the interaction scheduler state
type State string

// Scheduler states
const (
	StateIdle       State = "idle"        // Playback is free to advance
	StateQuizActive State = "quiz_active" // Playback is gated behind an unanswered checkpoint
)

// String returns the string representation of the state
func (s State) String() string {
	return string(s)
}

// IsValid checks if the state is a known value
func (s State) IsValid() bool {
	switch s {
	case StateIdle, StateQuizActive:
		return true
	default:
		return false
	}
}

// CanTransitionTo checks if a transition from s to next is allowed.
// There is no way out of QuizActive other than a correct answer, which the
// caller enforces; this only guards the shape of the graph.
func (s State) CanTransitionTo(next State) bool {
	switch s {
	case StateIdle:
		return next == StateQuizActive
	case StateQuizActive:
		return next == StateIdle
	default:
		return false
	}
}
