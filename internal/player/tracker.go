package player

import "math"

// Tracker follows the playback position and the furthest point watched so far.
// maxWatched never decreases and current never exceeds it once an update resolves.
type Tracker struct {
	current    float64
	maxWatched float64
	duration   float64

	reportEvery  int
	lastReported int
}

// NewTracker creates a tracker that asks for a progress report every
// reportEvery whole seconds of position
func NewTracker(reportEvery int) *Tracker {
	if reportEvery <= 0 {
		reportEvery = defaultReportEvery
	}
	return &Tracker{
		reportEvery:  reportEvery,
		lastReported: -1,
	}
}

// sanitizePosition maps non-finite and negative positions to zero
func sanitizePosition(pos float64) float64 {
	if math.IsNaN(pos) || math.IsInf(pos, 0) || pos < 0 {
		return 0
	}
	return pos
}

// wholeSecond floors a position to its integer second
func wholeSecond(pos float64) int {
	return int(math.Floor(pos))
}

// clampToDuration keeps pos inside the media once the duration is known
func (t *Tracker) clampToDuration(pos float64) float64 {
	if t.duration > 0 && pos > t.duration {
		return t.duration
	}
	return pos
}

// Seed places both the current and the max-watched position at pos
func (t *Tracker) Seed(pos float64) {
	pos = t.clampToDuration(sanitizePosition(pos))
	t.current = pos
	if pos > t.maxWatched {
		t.maxWatched = pos
	}
}

// SetDuration records the media duration from loaded metadata
func (t *Tracker) SetDuration(d float64) {
	t.duration = sanitizePosition(d)
}

// Advance records a playback time-advance and returns true when a coarse
// progress report is due for the new position.
func (t *Tracker) Advance(pos float64) bool {
	pos = t.clampToDuration(sanitizePosition(pos))
	t.current = pos
	if pos > t.maxWatched {
		t.maxWatched = pos
	}

	second := wholeSecond(pos)
	if second%t.reportEvery != 0 || second == t.lastReported {
		return false
	}
	t.lastReported = second
	return true
}

// MoveTo sets the current position without touching maxWatched.
// Callers guarantee pos <= maxWatched.
func (t *Tracker) MoveTo(pos float64) {
	if pos > t.maxWatched {
		pos = t.maxWatched
	}
	t.current = pos
}

// Finish moves playback to the end of the media
func (t *Tracker) Finish() float64 {
	end := t.duration
	if end < t.maxWatched {
		end = t.maxWatched
	}
	t.current = end
	t.maxWatched = end
	return end
}

// Current returns the current position in seconds
func (t *Tracker) Current() float64 {
	return t.current
}

// MaxWatched returns the furthest position reached in seconds
func (t *Tracker) MaxWatched() float64 {
	return t.maxWatched
}

// Duration returns the media duration, zero until metadata loads
func (t *Tracker) Duration() float64 {
	return t.duration
}
