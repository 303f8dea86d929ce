package learn

import "errors"

// Custom learn service errors
var (
	// ErrCourseNotFound indicates the course does not exist
	ErrCourseNotFound = errors.New("course not found")

	// ErrModuleNotFound indicates the module does not exist in the requested course
	ErrModuleNotFound = errors.New("module not found")

	// ErrInteractionNotFound indicates the interaction point does not exist in the module
	ErrInteractionNotFound = errors.New("interaction point not found")

	// ErrMissingVideo indicates the module has no video attached yet
	ErrMissingVideo = errors.New("module has no video")

	// ErrInvalidTimestamp indicates a negative or non-finite playback position
	ErrInvalidTimestamp = errors.New("timestamp must be a non-negative number of seconds")

	// ErrDuplicateID indicates an authored course, module or interaction ID is already taken
	ErrDuplicateID = errors.New("id already in use")

	// ErrInvalidDraft indicates authored content failed validation
	ErrInvalidDraft = errors.New("invalid content")
)

// IsModuleNotFound checks if the error is a module not found error
func IsModuleNotFound(err error) bool {
	return errors.Is(err, ErrModuleNotFound)
}

// IsInteractionNotFound checks if the error is an interaction not found error
func IsInteractionNotFound(err error) bool {
	return errors.Is(err, ErrInteractionNotFound)
}

// IsMissingVideo checks if the error is a missing video error
func IsMissingVideo(err error) bool {
	return errors.Is(err, ErrMissingVideo)
}

// IsInvalidTimestamp checks if the error is an invalid timestamp error
func IsInvalidTimestamp(err error) bool {
	return errors.Is(err, ErrInvalidTimestamp)
}

// IsCourseNotFound checks if the error is a course not found error
func IsCourseNotFound(err error) bool {
	return errors.Is(err, ErrCourseNotFound)
}

// IsDuplicateID checks if the error is a duplicate ID error
func IsDuplicateID(err error) bool {
	return errors.Is(err, ErrDuplicateID)
}

// IsInvalidDraft checks if the error is a content validation error
func IsInvalidDraft(err error) bool {
	return errors.Is(err, ErrInvalidDraft)
}
