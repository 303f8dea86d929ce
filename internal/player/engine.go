package player

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/stwalsh4118/classroom/internal/logger"
	"github.com/stwalsh4118/classroom/internal/metrics"
)

// ErrMissingValidator is returned by NewEngine when no answer validator is supplied
var ErrMissingValidator = errors.New("player engine requires an answer validator")

// Media is the native playback handle. The engine is its only writer: nothing
// else may play, pause or seek it.
type Media interface {
	Play()
	Pause()
	Seek(position float64)
}

// Validator judges a submitted answer. It may fail with a transport error.
type Validator interface {
	Validate(ctx context.Context, moduleID, checkpointID, option string) (Verdict, error)
}

// ProgressSink persists playback progress
type ProgressSink interface {
	Report(ctx context.Context, courseID, moduleID string, position float64) error
	Complete(ctx context.Context, courseID, moduleID string) error
}

// Options configures an Engine
type Options struct {
	Config    Config
	SessionID string
	Media     Media
	Validator Validator
	Sink      ProgressSink
	Clock     Clock

	// OnTimeUpdate and OnComplete run on the engine goroutine and must not call back into the engine.
	OnTimeUpdate func(position float64)
	OnComplete   func()
}

// Engine owns a Machine on a single goroutine. Public methods send a message
// to that goroutine and wait for the resulting snapshot; asynchronous results
// (validations, timers) come back as tagged messages on the same inbox.
type Engine struct {
	sessionID    string
	cfg          Config
	media        Media
	validator    Validator
	sink         ProgressSink
	clock        Clock
	onTimeUpdate func(float64)
	onComplete   func()

	machine *Machine
	inbox   chan func()

	// loop-owned
	mountCtx    context.Context
	mountCancel context.CancelFunc
	timers      map[uint64]Timer
	timerSeq    uint64

	ctx      context.Context
	cancel   context.CancelFunc
	stopChan chan struct{}
	done     chan struct{}
	tasks    sync.WaitGroup
	mu       sync.Mutex
	started  bool
	stopped  bool
}

// NewEngine creates an engine. Call Start before using it.
func NewEngine(opts Options) (*Engine, error) {
	if opts.Validator == nil {
		return nil, ErrMissingValidator
	}
	cfg := opts.Config.withDefaults()

	e := &Engine{
		sessionID:    opts.SessionID,
		cfg:          cfg,
		media:        opts.Media,
		validator:    opts.Validator,
		sink:         opts.Sink,
		clock:        opts.Clock,
		onTimeUpdate: opts.OnTimeUpdate,
		onComplete:   opts.OnComplete,
		machine:      NewMachine(cfg),
		inbox:        make(chan func()),
		timers:       make(map[uint64]Timer),
		stopChan:     make(chan struct{}),
		done:         make(chan struct{}),
	}
	if e.media == nil {
		e.media = discardMedia{}
	}
	if e.sink == nil {
		e.sink = discardSink{}
	}
	if e.clock == nil {
		e.clock = SystemClock()
	}
	e.ctx, e.cancel = context.WithCancel(context.Background())
	e.mountCtx, e.mountCancel = context.WithCancel(e.ctx)
	return e, nil
}

// Start launches the engine goroutine
func (e *Engine) Start() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.stopped {
		return ErrEngineStopped
	}
	if e.started {
		return nil
	}
	e.started = true
	go e.run()
	return nil
}

// Stop shuts the engine down, cancels in-flight validations, stops pending
// timers and waits for background work to finish. It is safe to call more than once.
func (e *Engine) Stop() {
	e.mu.Lock()
	if e.stopped {
		e.mu.Unlock()
		return
	}
	e.stopped = true
	started := e.started
	e.mu.Unlock()

	close(e.stopChan)
	e.cancel()
	if started {
		<-e.done
	}
	e.stopTimers()
	e.tasks.Wait()

	logger.Log.Debug().
		Str("session_id", e.sessionID).
		Msg("Player engine stopped")
}

func (e *Engine) run() {
	defer close(e.done)
	for {
		select {
		case msg := <-e.inbox:
			msg()
		case <-e.stopChan:
			return
		}
	}
}

// Mount loads module content. A different module resets the session; the
// same module again is a no-op so the resume point is never re-applied.
func (e *Engine) Mount(content Content) (Snapshot, error) {
	return e.call(func(m *Machine) ([]effect, error) {
		prev := m.generation
		effects, err := m.Mount(content)
		if err != nil {
			logger.Log.Warn().
				Err(err).
				Str("session_id", e.sessionID).
				Str("module_id", content.ModuleID).
				Msg("Module content rejected")
			return nil, err
		}
		if m.generation != prev {
			e.remount()
			e.logMount(content, m.tracker.Current())
		}
		return effects, nil
	})
}

// LoadedMetadata records the media duration once metadata is available
func (e *Engine) LoadedMetadata(duration float64) (Snapshot, error) {
	return e.call(func(m *Machine) ([]effect, error) {
		return nil, m.LoadedMetadata(duration)
	})
}

// TimeUpdate feeds a native playback time-advance
func (e *Engine) TimeUpdate(position float64) (Snapshot, error) {
	return e.call(func(m *Machine) ([]effect, error) {
		return m.TimeUpdate(position)
	})
}

// Seek requests a user seek through the seek guard
func (e *Engine) Seek(position float64) (Snapshot, error) {
	return e.call(func(m *Machine) ([]effect, error) {
		return m.Seek(position)
	})
}

// Play resumes playback
func (e *Engine) Play() (Snapshot, error) {
	return e.call(func(m *Machine) ([]effect, error) {
		return m.Play()
	})
}

// Pause pauses playback
func (e *Engine) Pause() (Snapshot, error) {
	return e.call(func(m *Machine) ([]effect, error) {
		return m.Pause()
	})
}

// SelectOption picks an option on the active quiz
func (e *Engine) SelectOption(option string) (Snapshot, error) {
	return e.call(func(m *Machine) ([]effect, error) {
		return nil, m.SelectOption(option)
	})
}

// SubmitAnswer submits the selected option. The returned snapshot shows the
// quiz as submitting; the verdict arrives asynchronously.
func (e *Engine) SubmitAnswer() (Snapshot, error) {
	return e.call(func(m *Machine) ([]effect, error) {
		return m.SubmitAnswer()
	})
}

// Ended signals natural end of media
func (e *Engine) Ended() (Snapshot, error) {
	return e.call(func(m *Machine) ([]effect, error) {
		return m.Ended()
	})
}

// CompleteModule signals an explicit module completion
func (e *Engine) CompleteModule() (Snapshot, error) {
	return e.call(func(m *Machine) ([]effect, error) {
		return m.CompleteModule()
	})
}

// Snapshot returns the current engine state
func (e *Engine) Snapshot() (Snapshot, error) {
	return e.call(func(*Machine) ([]effect, error) {
		return nil, nil
	})
}

// call runs fn on the engine goroutine, applies its effects and returns the resulting snapshot
func (e *Engine) call(fn func(m *Machine) ([]effect, error)) (Snapshot, error) {
	if err := e.ready(); err != nil {
		return Snapshot{}, err
	}

	type result struct {
		snap Snapshot
		err  error
	}
	reply := make(chan result, 1)
	msg := func() {
		effects, err := fn(e.machine)
		e.apply(effects)
		reply <- result{snap: e.machine.Snapshot(), err: err}
	}

	select {
	case e.inbox <- msg:
	case <-e.stopChan:
		return Snapshot{}, ErrEngineStopped
	}
	r := <-reply
	return r.snap, r.err
}

// post queues fn on the engine goroutine without waiting. Dropped after Stop.
func (e *Engine) post(fn func()) {
	select {
	case e.inbox <- fn:
	case <-e.stopChan:
	}
}

func (e *Engine) ready() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.stopped {
		return ErrEngineStopped
	}
	if !e.started {
		return ErrEngineNotStarted
	}
	return nil
}

// apply carries out effects. Runs on the engine goroutine.
func (e *Engine) apply(effects []effect) {
	for _, ef := range effects {
		switch ef.kind {
		case effectMedia:
			e.issue(ef.command)
		case effectTimeUpdate:
			if e.onTimeUpdate != nil {
				e.onTimeUpdate(ef.position)
			}
		case effectReport:
			e.report(ef)
		case effectComplete:
			e.complete(ef)
		case effectValidate:
			e.validate(ef)
		case effectSeekRejected:
			e.seekRejected(ef)
		case effectRelease:
			token := ef.token
			e.after(e.cfg.FeedbackDelay, func(m *Machine) []effect {
				return m.ReleaseQuiz(token)
			})
		case effectQuizActivated:
			metrics.QuizActivationsTotal.Inc()
			logger.Log.Info().
				Str("session_id", e.sessionID).
				Str("module_id", ef.moduleID).
				Str("checkpoint_id", ef.checkpointID).
				Float64("position", ef.position).
				Msg("Interaction checkpoint reached, playback paused")
		case effectQuizCleared:
			logger.Log.Info().
				Str("session_id", e.sessionID).
				Str("module_id", ef.moduleID).
				Str("checkpoint_id", ef.checkpointID).
				Msg("Interaction checkpoint answered, playback resumed")
		}
	}
}

func (e *Engine) issue(cmd Command) {
	switch cmd.Kind {
	case CommandPlay:
		e.media.Play()
	case CommandPause:
		e.media.Pause()
	case CommandSeek:
		e.media.Seek(cmd.Position)
	}
}

func (e *Engine) seekRejected(ef effect) {
	metrics.IncSeekRejected(ef.source)
	logger.Log.Warn().
		Str("session_id", e.sessionID).
		Str("module_id", ef.moduleID).
		Str("source", ef.source).
		Float64("clamped_to", ef.position).
		Msg("Forward seek rejected")

	seq := ef.seq
	e.after(e.cfg.SeekWarningWindow, func(m *Machine) []effect {
		m.ClearWarning(seq)
		return nil
	})
}

// validate calls the validator off the engine goroutine and posts the tagged result back
func (e *Engine) validate(ef effect) {
	ctx := e.mountCtx
	token, option := ef.token, ef.option

	logger.Log.Debug().
		Str("session_id", e.sessionID).
		Str("module_id", token.ModuleID).
		Str("checkpoint_id", token.CheckpointID).
		Int("attempt", token.Attempt).
		Msg("Submitting answer for validation")

	e.spawn(func() {
		verdict, err := e.validator.Validate(ctx, token.ModuleID, token.CheckpointID, option)
		e.post(func() {
			effects, ok := e.machine.ApplyVerdict(token, verdict, err)
			if !ok {
				metrics.StaleResultsTotal.Inc()
				logger.Log.Warn().
					Str("session_id", e.sessionID).
					Str("module_id", token.ModuleID).
					Str("checkpoint_id", token.CheckpointID).
					Int("attempt", token.Attempt).
					Msg("Discarding stale validation result")
				return
			}
			switch {
			case err != nil:
				metrics.IncSubmission(metrics.OutcomeError)
				logger.Log.Warn().
					Err(err).
					Str("session_id", e.sessionID).
					Str("checkpoint_id", token.CheckpointID).
					Msg("Answer validation failed, retry allowed")
			case verdict.IsCorrect:
				metrics.IncSubmission(metrics.OutcomeCorrect)
			default:
				metrics.IncSubmission(metrics.OutcomeIncorrect)
			}
			e.apply(effects)
		})
	})
}

func (e *Engine) report(ef effect) {
	e.spawn(func() {
		ctx, cancel := context.WithTimeout(context.Background(), e.cfg.ReportTimeout)
		defer cancel()

		err := e.sink.Report(ctx, ef.courseID, ef.moduleID, ef.position)
		metrics.IncProgressReport("heartbeat", err == nil)
		if err != nil {
			logger.Log.Warn().
				Err(err).
				Str("session_id", e.sessionID).
				Str("module_id", ef.moduleID).
				Float64("position", ef.position).
				Msg("Failed to persist playback progress")
			return
		}
		logger.Log.Debug().
			Str("session_id", e.sessionID).
			Str("module_id", ef.moduleID).
			Float64("position", ef.position).
			Msg("Playback progress reported")
	})
}

func (e *Engine) complete(ef effect) {
	e.spawn(func() {
		ctx, cancel := context.WithTimeout(context.Background(), e.cfg.ReportTimeout)
		defer cancel()

		err := e.sink.Complete(ctx, ef.courseID, ef.moduleID)
		metrics.IncProgressReport("complete", err == nil)
		if err != nil {
			logger.Log.Warn().
				Err(err).
				Str("session_id", e.sessionID).
				Str("module_id", ef.moduleID).
				Msg("Failed to persist module completion")
		}
	})

	logger.Log.Info().
		Str("session_id", e.sessionID).
		Str("course_id", ef.courseID).
		Str("module_id", ef.moduleID).
		Msg("Module completed")

	if e.onComplete != nil {
		e.onComplete()
	}
}

// after runs fn on the engine goroutine once d has elapsed
func (e *Engine) after(d time.Duration, fn func(m *Machine) []effect) {
	e.timerSeq++
	id := e.timerSeq
	e.timers[id] = e.clock.AfterFunc(d, func() {
		e.post(func() {
			if _, ok := e.timers[id]; !ok {
				return
			}
			delete(e.timers, id)
			e.apply(fn(e.machine))
		})
	})
}

// remount invalidates everything that belonged to the previous module
func (e *Engine) remount() {
	e.mountCancel()
	e.mountCtx, e.mountCancel = context.WithCancel(e.ctx)
	e.stopTimers()
}

func (e *Engine) stopTimers() {
	for id, t := range e.timers {
		t.Stop()
		delete(e.timers, id)
	}
}

func (e *Engine) spawn(fn func()) {
	e.tasks.Add(1)
	go func() {
		defer e.tasks.Done()
		fn()
	}()
}

func (e *Engine) logMount(content Content, position float64) {
	logger.Log.Info().
		Str("session_id", e.sessionID).
		Str("course_id", content.CourseID).
		Str("module_id", content.ModuleID).
		Int("checkpoints", len(content.Checkpoints)).
		Float64("resume_position", position).
		Msg("Module mounted")

	for ts, ids := range content.DuplicateTriggers() {
		logger.Log.Warn().
			Str("session_id", e.sessionID).
			Str("module_id", content.ModuleID).
			Int("trigger_timestamp", ts).
			Strs("checkpoint_ids", ids).
			Msg("Checkpoints share a trigger timestamp, only the first will fire")
	}
}

type discardMedia struct{}

func (discardMedia) Play()        {}
func (discardMedia) Pause()       {}
func (discardMedia) Seek(float64) {}

type discardSink struct{}

func (discardSink) Report(context.Context, string, string, float64) error { return nil }
func (discardSink) Complete(context.Context, string, string) error        { return nil }
