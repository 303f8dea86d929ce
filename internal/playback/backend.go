package playback

import (
	"context"
	"errors"
	"fmt"

	"github.com/stwalsh4118/classroom/internal/learn"
	"github.com/stwalsh4118/classroom/internal/logger"
	"github.com/stwalsh4118/classroom/internal/player"
)

// Backend is the learning backend a playback session talks to
type Backend interface {
	GetPlayerContent(ctx context.Context, userID, courseID, moduleID string) (*learn.PlayerContent, error)
	ValidateAnswer(ctx context.Context, userID, moduleID, interactionID, option string) (*learn.AnswerResult, error)
	RecordHeartbeat(ctx context.Context, userID, courseID, moduleID string, timestamp float64) error
	CompleteModule(ctx context.Context, userID, courseID, moduleID string) (bool, error)
}

// loadContent fetches module content and converts it into engine input.
// Every failure comes back as a *player.ContentError.
func loadContent(ctx context.Context, backend Backend, userID, courseID, moduleID string) (player.Content, error) {
	pc, err := backend.GetPlayerContent(ctx, userID, courseID, moduleID)
	if err != nil {
		switch {
		case learn.IsModuleNotFound(err):
			return player.Content{}, player.NewContentError(player.ReasonMissingModule,
				fmt.Sprintf("module %s not found in course %s", moduleID, courseID), err)
		case learn.IsMissingVideo(err):
			return player.Content{}, player.NewContentError(player.ReasonMissingVideo,
				fmt.Sprintf("module %s has no video", moduleID), err)
		default:
			return player.Content{}, player.NewContentError(player.ReasonLoadFailed, "failed to load module content", err)
		}
	}

	checkpoints := make([]player.Checkpoint, 0, len(pc.InteractionPoints))
	for _, p := range pc.InteractionPoints {
		checkpoints = append(checkpoints, player.Checkpoint{
			ID:               p.ID,
			TriggerTimestamp: p.Timestamp,
			Question:         p.Question,
			Options:          p.Options,
		})
	}
	return player.Content{
		CourseID:       pc.CourseID,
		ModuleID:       pc.ModuleID,
		VideoURL:       pc.VideoURL,
		Checkpoints:    checkpoints,
		WatchedHistory: pc.WatchedHistory,
		Answered:       pc.CompletedInteractions,
	}, nil
}

// answerValidator binds the backend's answer check to one viewer
type answerValidator struct {
	backend Backend
	userID  string
}

func (v *answerValidator) Validate(ctx context.Context, moduleID, checkpointID, option string) (player.Verdict, error) {
	result, err := v.backend.ValidateAnswer(ctx, v.userID, moduleID, checkpointID, option)
	if err != nil {
		return player.Verdict{}, err
	}
	return player.Verdict{IsCorrect: result.IsCorrect, Message: result.Feedback}, nil
}

// progressSink binds progress persistence to one viewer. Heartbeats go through
// the shared breaker and are dropped while it is open; completions are always
// attempted and feed their outcome back into the breaker.
type progressSink struct {
	backend Backend
	userID  string
	breaker *CircuitBreaker
}

func (s *progressSink) Report(ctx context.Context, courseID, moduleID string, position float64) error {
	err := s.breaker.Call(func() error {
		return s.backend.RecordHeartbeat(ctx, s.userID, courseID, moduleID, position)
	})
	if errors.Is(err, ErrCircuitOpen) {
		logger.Log.Debug().
			Str("user_id", s.userID).
			Str("module_id", moduleID).
			Float64("position", position).
			Msg("Progress backend unavailable, heartbeat dropped")
		return nil
	}
	return err
}

func (s *progressSink) Complete(ctx context.Context, courseID, moduleID string) error {
	_, err := s.backend.CompleteModule(ctx, s.userID, courseID, moduleID)
	if err != nil {
		s.breaker.RecordFailure()
		return err
	}
	s.breaker.RecordSuccess()
	return nil
}
