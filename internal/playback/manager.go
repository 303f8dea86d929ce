package playback

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stwalsh4118/classroom/internal/logger"
	"github.com/stwalsh4118/classroom/internal/metrics"
	"github.com/stwalsh4118/classroom/internal/player"
)

const (
	defaultIdleTimeout      = 30 * time.Minute
	defaultCleanupInterval  = time.Minute
	defaultBreakerThreshold = 5
	defaultBreakerReset     = 30 * time.Second
)

// Config holds session manager settings
type Config struct {
	Player           player.Config
	IdleTimeout      time.Duration
	CleanupInterval  time.Duration
	BreakerThreshold int
	BreakerReset     time.Duration

	// Clock drives engine display timers; nil uses the system clock.
	Clock player.Clock
}

func (c Config) withDefaults() Config {
	if c.IdleTimeout <= 0 {
		c.IdleTimeout = defaultIdleTimeout
	}
	if c.CleanupInterval <= 0 {
		c.CleanupInterval = defaultCleanupInterval
	}
	if c.BreakerThreshold <= 0 {
		c.BreakerThreshold = defaultBreakerThreshold
	}
	if c.BreakerReset <= 0 {
		c.BreakerReset = defaultBreakerReset
	}
	return c
}

// Manager owns all playback sessions
type Manager struct {
	backend Backend
	cfg     Config
	breaker *CircuitBreaker
	now     func() time.Time
	log     zerolog.Logger

	sessions      map[uuid.UUID]*Session
	cleanupTicker *time.Ticker
	stopChan      chan struct{}
	cleanupDone   chan struct{}
	mu            sync.RWMutex
	stopped       bool
}

// NewManager creates a new session manager
func NewManager(backend Backend, cfg Config) *Manager {
	cfg = cfg.withDefaults()
	return &Manager{
		backend:     backend,
		cfg:         cfg,
		breaker:     NewCircuitBreaker("progress", cfg.BreakerThreshold, cfg.BreakerReset),
		now:         time.Now,
		log:         logger.For("playback"),
		sessions:    make(map[uuid.UUID]*Session),
		stopChan:    make(chan struct{}),
		cleanupDone: make(chan struct{}),
	}
}

// Start launches the idle session cleanup loop
func (m *Manager) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.stopped {
		return ErrManagerStopped
	}
	if m.cleanupTicker != nil {
		return nil
	}

	m.cleanupTicker = time.NewTicker(m.cfg.CleanupInterval)
	go m.runCleanupLoop()

	m.log.Info().
		Dur("idle_timeout", m.cfg.IdleTimeout).
		Dur("cleanup_interval", m.cfg.CleanupInterval).
		Msg("Playback manager started")

	return nil
}

// Stop shuts down the cleanup loop and every open session
func (m *Manager) Stop() {
	m.mu.Lock()
	if m.stopped {
		m.mu.Unlock()
		return
	}
	m.stopped = true
	ticker := m.cleanupTicker
	sessions := make([]*Session, 0, len(m.sessions))
	for id, s := range m.sessions {
		sessions = append(sessions, s)
		delete(m.sessions, id)
	}
	m.mu.Unlock()

	m.log.Info().Msg("Stopping playback manager...")

	close(m.stopChan)
	if ticker != nil {
		<-m.cleanupDone
		ticker.Stop()
	}

	for _, s := range sessions {
		s.engine.Stop()
		metrics.ActiveSessions.Dec()
	}

	m.log.Info().
		Int("stopped_sessions", len(sessions)).
		Msg("Playback manager stopped")
}

// Open creates a session for userID playing moduleID of courseID
func (m *Manager) Open(ctx context.Context, userID, courseID, moduleID string) (*Result, error) {
	if userID == "" {
		return nil, ErrMissingUser
	}
	if m.isStopped() {
		return nil, ErrManagerStopped
	}

	content, err := loadContent(ctx, m.backend, userID, courseID, moduleID)
	if err != nil {
		m.log.Warn().
			Err(err).
			Str("user_id", userID).
			Str("course_id", courseID).
			Str("module_id", moduleID).
			Msg("Failed to load content for playback session")
		return nil, err
	}

	now := m.now()
	session := &Session{
		ID:         uuid.New(),
		UserID:     userID,
		CourseID:   courseID,
		CreatedAt:  now,
		outbox:     &Outbox{},
		lastAccess: now,
	}

	engine, err := player.NewEngine(player.Options{
		Config:    m.cfg.Player,
		SessionID: session.ID.String(),
		Media:     session.outbox,
		Validator: &answerValidator{backend: m.backend, userID: userID},
		Sink:      &progressSink{backend: m.backend, userID: userID, breaker: m.breaker},
		Clock:     m.cfg.Clock,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create player engine: %w", err)
	}
	if err := engine.Start(); err != nil {
		return nil, fmt.Errorf("failed to start player engine: %w", err)
	}
	session.engine = engine

	snap, err := engine.Mount(content)
	if err != nil {
		engine.Stop()
		return nil, err
	}

	m.mu.Lock()
	if m.stopped {
		m.mu.Unlock()
		engine.Stop()
		return nil, ErrManagerStopped
	}
	m.sessions[session.ID] = session
	m.mu.Unlock()
	metrics.ActiveSessions.Inc()

	m.log.Info().
		Str("session_id", session.ID.String()).
		Str("user_id", userID).
		Str("course_id", courseID).
		Str("module_id", moduleID).
		Msg("Playback session opened")

	return session.result(snap), nil
}

// Get returns a session's state along with any commands issued since the last request
func (m *Manager) Get(sessionID uuid.UUID, userID string) (*Result, error) {
	session, err := m.lookup(sessionID, userID)
	if err != nil {
		return nil, err
	}
	snap, err := session.engine.Snapshot()
	if err != nil {
		return nil, m.engineErr(err)
	}
	return session.result(snap), nil
}

// Dispatch applies a client event to a session
func (m *Manager) Dispatch(sessionID uuid.UUID, userID string, ev Event) (*Result, error) {
	session, err := m.lookup(sessionID, userID)
	if err != nil {
		return nil, err
	}
	snap, err := session.apply(ev)
	if err != nil {
		return nil, m.engineErr(err)
	}
	return session.result(snap), nil
}

// SwitchModule mounts another module of the session's course. Anything still
// pending for the previous module is discarded.
func (m *Manager) SwitchModule(ctx context.Context, sessionID uuid.UUID, userID, moduleID string) (*Result, error) {
	session, err := m.lookup(sessionID, userID)
	if err != nil {
		return nil, err
	}

	content, err := loadContent(ctx, m.backend, userID, session.CourseID, moduleID)
	if err != nil {
		m.log.Warn().
			Err(err).
			Str("session_id", sessionID.String()).
			Str("module_id", moduleID).
			Msg("Failed to load content for module switch")
		return nil, err
	}

	snap, err := session.engine.Mount(content)
	if err != nil {
		return nil, m.engineErr(err)
	}
	return session.result(snap), nil
}

// Close stops a session and forgets it
func (m *Manager) Close(sessionID uuid.UUID, userID string) error {
	session, err := m.lookup(sessionID, userID)
	if err != nil {
		return err
	}

	m.mu.Lock()
	_, ok := m.sessions[sessionID]
	delete(m.sessions, sessionID)
	m.mu.Unlock()
	if !ok {
		return ErrSessionNotFound
	}

	session.engine.Stop()
	metrics.ActiveSessions.Dec()

	m.log.Info().
		Str("session_id", sessionID.String()).
		Str("user_id", userID).
		Msg("Playback session closed")
	return nil
}

// Count returns the number of open sessions
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

func (m *Manager) isStopped() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.stopped
}

// lookup finds a session owned by userID and marks it as accessed
func (m *Manager) lookup(sessionID uuid.UUID, userID string) (*Session, error) {
	m.mu.RLock()
	session, ok := m.sessions[sessionID]
	stopped := m.stopped
	m.mu.RUnlock()

	if stopped {
		return nil, ErrManagerStopped
	}
	if !ok || session.UserID != userID {
		return nil, ErrSessionNotFound
	}
	session.touch(m.now())
	return session, nil
}

// engineErr maps a stopped engine to a missing session; the session was closed concurrently
func (m *Manager) engineErr(err error) error {
	if errors.Is(err, player.ErrEngineStopped) {
		return ErrSessionNotFound
	}
	return err
}

// runCleanupLoop periodically closes idle sessions
func (m *Manager) runCleanupLoop() {
	defer close(m.cleanupDone)

	for {
		select {
		case <-m.cleanupTicker.C:
			m.performCleanup()
		case <-m.stopChan:
			return
		}
	}
}

// performCleanup closes sessions idle for longer than the idle timeout
func (m *Manager) performCleanup() {
	now := m.now()

	m.mu.Lock()
	var idle []*Session
	for id, s := range m.sessions {
		if s.IdleFor(now) > m.cfg.IdleTimeout {
			idle = append(idle, s)
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()

	for _, s := range idle {
		s.engine.Stop()
		metrics.ActiveSessions.Dec()
		metrics.SessionsEvictedTotal.Inc()
		m.log.Info().
			Str("session_id", s.ID.String()).
			Str("user_id", s.UserID).
			Dur("idle_for", s.IdleFor(now)).
			Msg("Closed idle playback session")
	}
}
