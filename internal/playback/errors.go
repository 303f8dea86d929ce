package playback

import "errors"

// Session manager errors
var (
	// ErrSessionNotFound indicates the session does not exist or belongs to another user
	ErrSessionNotFound = errors.New("playback session not found")

	// ErrManagerStopped indicates the manager has been shut down
	ErrManagerStopped = errors.New("playback manager has been stopped")

	// ErrUnknownEvent indicates an event type the engine does not handle
	ErrUnknownEvent = errors.New("unknown playback event")

	// ErrMissingUser indicates the caller did not identify the viewer
	ErrMissingUser = errors.New("user id is required")
)

// IsSessionNotFound checks if the error is a session not found error
func IsSessionNotFound(err error) bool {
	return errors.Is(err, ErrSessionNotFound)
}

// IsUnknownEvent checks if the error is an unknown event error
func IsUnknownEvent(err error) bool {
	return errors.Is(err, ErrUnknownEvent)
}
