// Package playback hosts guarded playback sessions: one player engine per
// viewer, driven by client events and wired to the learning backend.
package playback

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/stwalsh4118/classroom/internal/player"
)

// EventType names a client-side player event
type EventType string

// Client events
const (
	EventLoadedMetadata EventType = "loaded_metadata"
	EventTimeUpdate     EventType = "time_update"
	EventSeek           EventType = "seek"
	EventPlay           EventType = "play"
	EventPause          EventType = "pause"
	EventSelect         EventType = "select"
	EventSubmit         EventType = "submit"
	EventEnded          EventType = "ended"
	EventComplete       EventType = "complete"
)

// Event is a single client-side player event
type Event struct {
	Type EventType `json:"type"`

	// Position is the playback position for time_update and the target for seek.
	Position float64 `json:"position,omitempty"`

	// Duration is the media length for loaded_metadata.
	Duration float64 `json:"duration,omitempty"`

	// Option is the chosen answer for select.
	Option string `json:"option,omitempty"`
}

// SessionView is the externally visible state of a session
type SessionView struct {
	ID     string `json:"id"`
	UserID string `json:"user_id"`
	player.Snapshot
}

// Result is returned by every session operation: the state after the
// operation and the media commands the client must apply, in order.
type Result struct {
	Session  SessionView      `json:"session"`
	Commands []player.Command `json:"commands"`
}

// Session is one viewer's playback session
type Session struct {
	ID        uuid.UUID
	UserID    string
	CourseID  string
	CreatedAt time.Time

	engine *player.Engine
	outbox *Outbox

	mu         sync.Mutex
	lastAccess time.Time
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastAccess = now
}

// IdleFor returns how long the session has gone without a client request
func (s *Session) IdleFor(now time.Time) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return now.Sub(s.lastAccess)
}

func (s *Session) result(snap player.Snapshot) *Result {
	return &Result{
		Session: SessionView{
			ID:       s.ID.String(),
			UserID:   s.UserID,
			Snapshot: snap,
		},
		Commands: s.outbox.Drain(),
	}
}

// apply routes ev to the engine
func (s *Session) apply(ev Event) (player.Snapshot, error) {
	e := s.engine
	switch ev.Type {
	case EventLoadedMetadata:
		return e.LoadedMetadata(ev.Duration)
	case EventTimeUpdate:
		return e.TimeUpdate(ev.Position)
	case EventSeek:
		return e.Seek(ev.Position)
	case EventPlay:
		return e.Play()
	case EventPause:
		return e.Pause()
	case EventSelect:
		return e.SelectOption(ev.Option)
	case EventSubmit:
		return e.SubmitAnswer()
	case EventEnded:
		return e.Ended()
	case EventComplete:
		return e.CompleteModule()
	default:
		return player.Snapshot{}, ErrUnknownEvent
	}
}
