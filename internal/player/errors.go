package player

import (
	"errors"
	"fmt"
)

var (
	// ErrNotMounted is returned when an operation needs module content and none is mounted
	ErrNotMounted = errors.New("no module is mounted")

	// ErrQuizActive is returned when playback or seeking is requested while a checkpoint awaits an answer
	ErrQuizActive = errors.New("interaction checkpoint is awaiting an answer")

	// ErrNoActiveQuiz is returned when a quiz operation arrives while no checkpoint is active
	ErrNoActiveQuiz = errors.New("no interaction checkpoint is active")

	// ErrUnknownOption is returned when the selected option is not offered by the active checkpoint
	ErrUnknownOption = errors.New("option is not offered by the active checkpoint")

	// ErrEngineStopped is returned for calls made after Stop
	ErrEngineStopped = errors.New("player engine has been stopped")

	// ErrEngineNotStarted is returned for calls made before Start
	ErrEngineNotStarted = errors.New("player engine has not been started")
)

// ValidationFailureMessage is shown when the answer could not be validated at all.
const ValidationFailureMessage = "Failed to validate answer. Please try again."

// ContentReason classifies why module content could not be mounted
type ContentReason int

const (
	// ReasonMissingModule indicates the content carries no module id
	ReasonMissingModule ContentReason = iota
	// ReasonMissingVideo indicates the module has no playable video
	ReasonMissingVideo
	// ReasonInvalidCheckpoint indicates malformed interaction checkpoints
	ReasonInvalidCheckpoint
	// ReasonLoadFailed indicates the content loader itself failed
	ReasonLoadFailed
)

// String returns the string representation of ContentReason
func (r ContentReason) String() string {
	switch r {
	case ReasonMissingModule:
		return "missing_module"
	case ReasonMissingVideo:
		return "missing_video"
	case ReasonInvalidCheckpoint:
		return "invalid_checkpoint"
	case ReasonLoadFailed:
		return "load_failed"
	default:
		return "unknown"
	}
}

// ContentError reports a content-load failure. The engine is left untouched
// when Mount returns one.
type ContentError struct {
	Reason  ContentReason
	Message string
	Cause   error
}

// NewContentError creates a ContentError
func NewContentError(reason ContentReason, message string, cause error) *ContentError {
	return &ContentError{Reason: reason, Message: message, Cause: cause}
}

// Error implements the error interface
func (e *ContentError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Reason, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Reason, e.Message)
}

// Unwrap implements error unwrapping for errors.Is and errors.As
func (e *ContentError) Unwrap() error {
	return e.Cause
}

// IsContentError checks if err is (or wraps) a ContentError
func IsContentError(err error) bool {
	var contentErr *ContentError
	return errors.As(err, &contentErr)
}
