package player

import "math"

// effectKind enumerates the side effects a Machine transition can request
type effectKind int

const (
	effectMedia effectKind = iota
	effectTimeUpdate
	effectReport
	effectComplete
	effectValidate
	effectSeekRejected
	effectRelease
	effectQuizActivated
	effectQuizCleared
)

// effect is a side effect requested by the Machine and carried out by the Engine
type effect struct {
	kind         effectKind
	command      Command
	position     float64
	courseID     string
	moduleID     string
	checkpointID string
	option       string
	source       string
	seq          uint64
	token        ValidationToken
}

// Seek sources for rejected seeks
const (
	seekSourceDrag   = "drag"
	seekSourceNative = "native"
)

// Machine is the synchronous core of the engine. Every input either returns
// an error without changing state or returns the effects of its transition.
// A Machine is not safe for concurrent use; the Engine serialises access.
type Machine struct {
	cfg        Config
	generation uint64
	content    *Content
	state      State
	tracker    *Tracker
	guard      *SeekGuard
	scheduler  *Scheduler
	quiz       *Quiz
	reporter   *Reporter
	playing    bool
}

// NewMachine creates an unmounted machine
func NewMachine(cfg Config) *Machine {
	cfg = cfg.withDefaults()
	return &Machine{
		cfg:       cfg,
		state:     StateIdle,
		tracker:   NewTracker(cfg.ReportEvery),
		guard:     NewSeekGuard(cfg.SeekTolerance),
		scheduler: NewScheduler(nil, nil),
		reporter:  &Reporter{},
	}
}

// Mount loads module content. Mounting the module that is already mounted is
// a no-op; mounting a different module discards the previous session state,
// including any active quiz, and invalidates in-flight validations.
func (m *Machine) Mount(c Content) ([]effect, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if m.content != nil && m.content.CourseID == c.CourseID && m.content.ModuleID == c.ModuleID {
		return nil, nil
	}

	content := c
	content.Checkpoints = sortedCopy(c.Checkpoints)
	content.Answered = append([]string(nil), c.Answered...)

	m.generation++
	m.content = &content
	m.state = StateIdle
	m.tracker = NewTracker(m.cfg.ReportEvery)
	m.guard = NewSeekGuard(m.cfg.SeekTolerance)
	m.scheduler = NewScheduler(content.Checkpoints, content.Answered)
	m.quiz = nil
	m.reporter = &Reporter{}
	m.playing = false

	var effects []effect
	if pos, ok := m.reporter.InitialPosition(content.WatchedHistory); ok {
		m.tracker.Seed(pos)
		effects = append(effects, m.media(CommandSeek, m.tracker.Current()))
	}
	return effects, nil
}

// LoadedMetadata records the media duration
func (m *Machine) LoadedMetadata(duration float64) error {
	if m.content == nil {
		return ErrNotMounted
	}
	m.tracker.SetDuration(duration)
	return nil
}

// TimeUpdate handles a native playback time-advance
func (m *Machine) TimeUpdate(pos float64) ([]effect, error) {
	if m.content == nil {
		return nil, ErrNotMounted
	}
	pos = sanitizePosition(pos)

	if m.state == StateQuizActive {
		// Media is paused; anything that moved it goes back.
		if math.Abs(pos-m.tracker.Current()) > m.cfg.SeekTolerance {
			return []effect{m.media(CommandSeek, m.tracker.Current())}, nil
		}
		return nil, nil
	}

	if m.guard.Overshoots(pos, m.tracker.MaxWatched()) {
		return m.rejectSeek(seekSourceNative), nil
	}

	prev := wholeSecond(m.tracker.Current())
	var effects []effect
	if m.tracker.Advance(pos) {
		effects = append(effects, m.report(m.tracker.Current()))
	}
	effects = append(effects, effect{kind: effectTimeUpdate, position: m.tracker.Current()})

	if cp, ok := m.scheduler.Due(prev, wholeSecond(m.tracker.Current())); ok {
		effects = append(effects, m.activate(cp)...)
	}
	return effects, nil
}

// Seek handles a user-requested seek. Forward seeks past the furthest watched
// point are clamped and raise the warning; they are not errors.
func (m *Machine) Seek(target float64) ([]effect, error) {
	if m.content == nil {
		return nil, ErrNotMounted
	}
	if m.state == StateQuizActive {
		return nil, ErrQuizActive
	}

	target = m.tracker.clampToDuration(sanitizePosition(target))
	if !m.guard.Allows(target, m.tracker.MaxWatched()) {
		return m.rejectSeek(seekSourceDrag), nil
	}
	m.tracker.MoveTo(target)
	return []effect{m.media(CommandSeek, target)}, nil
}

// Play resumes playback
func (m *Machine) Play() ([]effect, error) {
	if m.content == nil {
		return nil, ErrNotMounted
	}
	if m.state == StateQuizActive {
		return nil, ErrQuizActive
	}
	if m.playing {
		return nil, nil
	}
	m.playing = true
	return []effect{m.media(CommandPlay, 0)}, nil
}

// Pause pauses playback
func (m *Machine) Pause() ([]effect, error) {
	if m.content == nil {
		return nil, ErrNotMounted
	}
	if !m.playing {
		return nil, nil
	}
	m.playing = false
	return []effect{m.media(CommandPause, 0)}, nil
}

// SelectOption picks a choice on the active quiz. Selection is ignored while
// a submission is in flight or a correct verdict is on display.
func (m *Machine) SelectOption(option string) error {
	if m.quiz == nil {
		return ErrNoActiveQuiz
	}
	if m.quiz.locked() {
		return nil
	}
	if !m.quiz.checkpoint.HasOption(option) {
		return ErrUnknownOption
	}
	m.quiz.selected = option
	return nil
}

// SubmitAnswer submits the selected option for validation. It is a no-op
// when nothing is selected or a submission is already in flight.
func (m *Machine) SubmitAnswer() ([]effect, error) {
	if m.quiz == nil {
		return nil, ErrNoActiveQuiz
	}
	if !m.quiz.canSubmit() {
		return nil, nil
	}
	token := m.quiz.begin(m.generation, m.content.ModuleID)
	return []effect{{
		kind:         effectValidate,
		token:        token,
		option:       m.quiz.selected,
		courseID:     m.content.CourseID,
		moduleID:     m.content.ModuleID,
		checkpointID: token.CheckpointID,
	}}, nil
}

// ApplyVerdict settles the validation identified by token. The second return
// is false when the result is stale and was discarded.
func (m *Machine) ApplyVerdict(token ValidationToken, verdict Verdict, err error) ([]effect, bool) {
	if !m.awaiting(token) {
		return nil, false
	}
	m.quiz.settle(verdict, err)
	if m.quiz.releasing {
		return []effect{{kind: effectRelease, token: token}}, true
	}
	return nil, true
}

// ReleaseQuiz ends a correctly answered quiz and resumes playback
func (m *Machine) ReleaseQuiz(token ValidationToken) []effect {
	if m.quiz == nil || !m.quiz.releasing || !m.matches(token) {
		return nil
	}
	if !m.state.CanTransitionTo(StateIdle) {
		return nil
	}
	id := m.quiz.checkpoint.ID
	m.scheduler.Consume(id)
	m.quiz = nil
	m.state = StateIdle
	m.playing = true
	return []effect{
		{kind: effectQuizCleared, checkpointID: id, moduleID: m.content.ModuleID},
		m.media(CommandPlay, 0),
	}
}

// ClearWarning drops the seek warning raised with seq
func (m *Machine) ClearWarning(seq uint64) bool {
	return m.guard.Clear(seq)
}

// Ended handles natural end of media. An end that the viewer could not have
// reached is treated like a native forward seek.
func (m *Machine) Ended() ([]effect, error) {
	if m.content == nil {
		return nil, ErrNotMounted
	}
	if m.state == StateQuizActive {
		return nil, nil
	}
	if d := m.tracker.Duration(); d > 0 && m.guard.Overshoots(d, m.tracker.MaxWatched()) {
		return m.rejectSeek(seekSourceNative), nil
	}

	end := m.tracker.Duration()
	if end < m.tracker.MaxWatched() {
		end = m.tracker.MaxWatched()
	}
	if cp, ok := m.scheduler.Due(wholeSecond(m.tracker.Current()), wholeSecond(end)); ok {
		// Only the span up to the checkpoint counts as watched. The media
		// element sits at its end and is brought back to the trigger.
		trigger := float64(cp.TriggerTimestamp)
		if m.tracker.Current() < trigger {
			m.tracker.Advance(trigger)
		}
		effects := m.activate(cp)
		if len(effects) > 0 {
			effects = append(effects, m.media(CommandSeek, m.tracker.Current()))
		}
		return effects, nil
	}

	end = m.tracker.Finish()
	m.playing = false
	effects := []effect{m.report(end)}
	if m.reporter.MarkComplete() {
		effects = append(effects, m.complete())
	}
	return effects, nil
}

// CompleteModule handles an explicit "module complete" signal
func (m *Machine) CompleteModule() ([]effect, error) {
	if m.content == nil {
		return nil, ErrNotMounted
	}
	if m.state == StateQuizActive {
		return nil, ErrQuizActive
	}
	effects := []effect{m.report(m.tracker.Current())}
	if m.reporter.MarkComplete() {
		effects = append(effects, m.complete())
	}
	return effects, nil
}

// Snapshot returns a copy of the current state
func (m *Machine) Snapshot() Snapshot {
	snap := Snapshot{
		State:              m.state,
		CurrentPosition:    m.tracker.Current(),
		MaxWatchedPosition: m.tracker.MaxWatched(),
		Duration:           m.tracker.Duration(),
		Playing:            m.playing,
		SeekWarning:        m.guard.Warning(),
		Consumed:           m.scheduler.Consumed(),
		Completed:          m.reporter.Completed(),
	}
	if m.content != nil {
		snap.CourseID = m.content.CourseID
		snap.ModuleID = m.content.ModuleID
		snap.VideoURL = m.content.VideoURL
	}
	if m.quiz != nil {
		snap.Quiz = m.quiz.view()
	}
	return snap
}

// activate moves the scheduler into QuizActive for cp
func (m *Machine) activate(cp Checkpoint) []effect {
	if m.quiz != nil || !m.state.CanTransitionTo(StateQuizActive) {
		return nil
	}

	var effects []effect
	m.playing = false
	effects = append(effects, m.media(CommandPause, 0))

	// A jump that stepped over the trigger second is pulled back to it.
	if wholeSecond(m.tracker.Current()) > cp.TriggerTimestamp {
		pos := float64(cp.TriggerTimestamp)
		m.tracker.MoveTo(pos)
		effects = append(effects, m.media(CommandSeek, pos))
	}

	m.state = StateQuizActive
	m.quiz = newQuiz(cp)
	effects = append(effects, effect{
		kind:         effectQuizActivated,
		checkpointID: cp.ID,
		moduleID:     m.content.ModuleID,
		position:     m.tracker.Current(),
	})
	return effects
}

// rejectSeek clamps the position to the furthest watched point and raises the warning
func (m *Machine) rejectSeek(source string) []effect {
	maxWatched := m.tracker.MaxWatched()
	m.tracker.MoveTo(maxWatched)
	seq := m.guard.Raise()
	return []effect{
		m.media(CommandSeek, maxWatched),
		{kind: effectSeekRejected, source: source, seq: seq, position: maxWatched, moduleID: m.content.ModuleID},
	}
}

func (m *Machine) media(kind CommandKind, pos float64) effect {
	cmd := Command{Kind: kind}
	if kind == CommandSeek {
		cmd.Position = pos
	}
	return effect{kind: effectMedia, command: cmd}
}

func (m *Machine) report(pos float64) effect {
	return effect{
		kind:     effectReport,
		position: pos,
		courseID: m.content.CourseID,
		moduleID: m.content.ModuleID,
	}
}

func (m *Machine) complete() effect {
	return effect{
		kind:     effectComplete,
		courseID: m.content.CourseID,
		moduleID: m.content.ModuleID,
	}
}

// matches reports whether token belongs to the current quiz's latest attempt
func (m *Machine) matches(token ValidationToken) bool {
	if m.quiz == nil || m.content == nil {
		return false
	}
	return token.Generation == m.generation &&
		token.ModuleID == m.content.ModuleID &&
		token.CheckpointID == m.quiz.checkpoint.ID &&
		token.Attempt == m.quiz.pending.Attempt
}

// awaiting reports whether token is the submission currently in flight
func (m *Machine) awaiting(token ValidationToken) bool {
	return m.matches(token) && m.quiz.submitting
}
