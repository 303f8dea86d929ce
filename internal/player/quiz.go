package player

// ValidationToken tags an in-flight answer validation so its result can be
// matched against the quiz that asked for it. Results whose token no longer
// matches are discarded.
type ValidationToken struct {
	Generation   uint64
	ModuleID     string
	CheckpointID string
	Attempt      int
}

// Quiz is the active quiz state for one checkpoint. At most one exists at a time.
type Quiz struct {
	checkpoint Checkpoint
	selected   string
	result     *Verdict
	failure    string
	submitting bool
	releasing  bool
	attempts   int
	pending    ValidationToken
}

func newQuiz(cp Checkpoint) *Quiz {
	return &Quiz{checkpoint: cp}
}

// locked reports whether the selection may not change right now
func (q *Quiz) locked() bool {
	return q.submitting || q.releasing
}

// canSubmit reports whether a submission would be accepted
func (q *Quiz) canSubmit() bool {
	return q.selected != "" && !q.locked()
}

// begin starts a submission attempt and returns its token
func (q *Quiz) begin(generation uint64, moduleID string) ValidationToken {
	q.attempts++
	q.submitting = true
	q.failure = ""
	q.pending = ValidationToken{
		Generation:   generation,
		ModuleID:     moduleID,
		CheckpointID: q.checkpoint.ID,
		Attempt:      q.attempts,
	}
	return q.pending
}

// settle records the outcome of the pending attempt
func (q *Quiz) settle(verdict Verdict, err error) {
	q.submitting = false
	if err != nil {
		q.result = nil
		q.failure = ValidationFailureMessage
		return
	}
	v := verdict
	q.result = &v
	q.failure = ""
	if v.IsCorrect {
		q.releasing = true
	}
}

func (q *Quiz) view() *QuizView {
	options := make([]string, len(q.checkpoint.Options))
	copy(options, q.checkpoint.Options)
	view := &QuizView{
		CheckpointID:   q.checkpoint.ID,
		Question:       q.checkpoint.Question,
		Options:        options,
		SelectedOption: q.selected,
		Failure:        q.failure,
		Submitting:     q.submitting,
		Attempts:       q.attempts,
	}
	if q.result != nil {
		r := *q.result
		view.Result = &r
	}
	return view
}
