package player

import "sort"

// Scheduler watches the playback position against the module's checkpoints
// and tracks which of them were answered in this session.
type Scheduler struct {
	checkpoints []Checkpoint
	consumed    map[string]struct{}
}

// NewScheduler creates a scheduler for the given checkpoints. IDs in answered
// start out consumed.
func NewScheduler(checkpoints []Checkpoint, answered []string) *Scheduler {
	s := &Scheduler{
		checkpoints: sortedCopy(checkpoints),
		consumed:    make(map[string]struct{}, len(answered)),
	}
	known := make(map[string]bool, len(checkpoints))
	for _, cp := range checkpoints {
		known[cp.ID] = true
	}
	for _, id := range answered {
		if known[id] {
			s.consumed[id] = struct{}{}
		}
	}
	return s
}

// Due returns the first unconsumed checkpoint reached by moving from the
// whole second from to the whole second to. A checkpoint is reached when its
// trigger equals to, or when forward movement stepped over it.
func (s *Scheduler) Due(from, to int) (Checkpoint, bool) {
	lo := to
	if from < to {
		lo = from + 1
	}
	for _, cp := range s.checkpoints {
		if cp.TriggerTimestamp > to {
			break
		}
		if cp.TriggerTimestamp < lo {
			continue
		}
		if _, done := s.consumed[cp.ID]; done {
			continue
		}
		return cp, true
	}
	return Checkpoint{}, false
}

// Consume marks a checkpoint as answered
func (s *Scheduler) Consume(id string) {
	s.consumed[id] = struct{}{}
}

// IsConsumed reports whether a checkpoint was answered
func (s *Scheduler) IsConsumed(id string) bool {
	_, ok := s.consumed[id]
	return ok
}

// Consumed returns the answered checkpoint IDs, sorted
func (s *Scheduler) Consumed() []string {
	ids := make([]string, 0, len(s.consumed))
	for id := range s.consumed {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
