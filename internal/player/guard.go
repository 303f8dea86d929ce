package player

// SeekGuard decides which seeks may commit and owns the transient
// "seek forward disabled" warning.
type SeekGuard struct {
	tolerance  float64
	warning    bool
	warningSeq uint64
}

// NewSeekGuard creates a guard that tolerates native position jitter of up to
// tolerance seconds past the furthest watched point
func NewSeekGuard(tolerance float64) *SeekGuard {
	if tolerance < 0 {
		tolerance = 0
	}
	return &SeekGuard{tolerance: tolerance}
}

// Allows reports whether a user-requested seek to target may commit
func (g *SeekGuard) Allows(target, maxWatched float64) bool {
	return target <= maxWatched
}

// Overshoots reports whether a native position report jumped past what the
// viewer has actually watched
func (g *SeekGuard) Overshoots(pos, maxWatched float64) bool {
	return pos > maxWatched+g.tolerance
}

// Raise turns the warning on and returns the sequence number that must be
// presented to Clear. A later Raise supersedes earlier sequence numbers.
func (g *SeekGuard) Raise() uint64 {
	g.warning = true
	g.warningSeq++
	return g.warningSeq
}

// Clear turns the warning off if seq is still the latest raise
func (g *SeekGuard) Clear(seq uint64) bool {
	if seq != g.warningSeq || !g.warning {
		return false
	}
	g.warning = false
	return true
}

// Warning reports whether the warning is currently displayed
func (g *SeekGuard) Warning() bool {
	return g.warning
}
