package player

// Reporter decides when position updates and the completion signal go out to
// the progress sink, and applies the resume point exactly once per mount.
type Reporter struct {
	seeded    bool
	completed bool
}

// InitialPosition returns the resume position to seek to. The second return
// is false once the resume point has been applied for this mount.
func (r *Reporter) InitialPosition(resume float64) (float64, bool) {
	if r.seeded {
		return 0, false
	}
	r.seeded = true
	resume = sanitizePosition(resume)
	return resume, resume > 0
}

// MarkComplete records the completion signal and reports whether it is the
// first one for this mount
func (r *Reporter) MarkComplete() bool {
	if r.completed {
		return false
	}
	r.completed = true
	return true
}

// Completed reports whether completion was signalled for this mount
func (r *Reporter) Completed() bool {
	return r.completed
}
