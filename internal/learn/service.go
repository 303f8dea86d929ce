// Package learn implements the learning backend the player talks to: module
// content for playback, answer validation, and progress persistence.
package learn

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/stwalsh4118/classroom/internal/db"
	"github.com/stwalsh4118/classroom/internal/logger"
	"github.com/stwalsh4118/classroom/internal/models"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// Answer actions returned to the player
const (
	ActionContinueVideo = "continue_video"
	ActionRetry         = "retry"
)

const (
	correctFeedback      = "Correct!"
	defaultWrongFeedback = "That's not quite right. Try again."
	defaultXPPerCorrect  = 10
)

// Config holds learn service settings
type Config struct {
	XPPerCorrectAnswer int
}

// PublicInteraction is an interaction point with the answer stripped
type PublicInteraction struct {
	ID        string   `json:"id"`
	Timestamp int      `json:"timestamp"`
	Question  string   `json:"question"`
	Options   []string `json:"options"`
}

// PlayerContent is everything the player needs to mount a module
type PlayerContent struct {
	CourseID              string              `json:"course_id"`
	ModuleID              string              `json:"module_id"`
	ModuleTitle           string              `json:"module_title"`
	VideoURL              string              `json:"video_url"`
	InteractionPoints     []PublicInteraction `json:"interaction_points"`
	WatchedHistory        float64             `json:"watched_history"`
	CompletedInteractions []string            `json:"completed_interactions"`
}

// AnswerResult is the verdict on a submitted answer
type AnswerResult struct {
	IsCorrect bool   `json:"is_correct"`
	Feedback  string `json:"feedback"`
	Action    string `json:"action"`
	UpdatedXP int    `json:"updated_xp"`
}

// Service handles learning progress and answer validation
type Service struct {
	db    *db.DB
	repos *db.Repositories
	cfg   Config
}

// NewService creates a new learn service instance
func NewService(database *db.DB, repos *db.Repositories, cfg Config) *Service {
	if cfg.XPPerCorrectAnswer <= 0 {
		cfg.XPPerCorrectAnswer = defaultXPPerCorrect
	}
	return &Service{
		db:    database,
		repos: repos,
		cfg:   cfg,
	}
}

// GetPlayerContent loads a module for playback. The module must belong to the
// course and have a video. Correct answers are never included.
func (s *Service) GetPlayerContent(ctx context.Context, userID, courseID, moduleID string) (*PlayerContent, error) {
	var (
		module    *models.Module
		points    []*models.InteractionPoint
		watched   float64
		completed []string
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		module, err = s.repos.Modules.GetInCourse(gctx, courseID, moduleID)
		if err != nil {
			if db.IsNotFound(err) {
				return ErrModuleNotFound
			}
			return err
		}
		return nil
	})
	g.Go(func() error {
		var err error
		points, err = s.repos.Interactions.ListByModule(gctx, moduleID)
		return err
	})
	g.Go(func() error {
		var err error
		watched, err = s.GetResumePoint(gctx, userID, courseID, moduleID)
		return err
	})
	g.Go(func() error {
		var err error
		completed, err = s.ListCompletedInteractions(gctx, userID, moduleID)
		return err
	})

	if err := g.Wait(); err != nil {
		if !errors.Is(err, ErrModuleNotFound) {
			logger.Log.Error().
				Err(err).
				Str("course_id", courseID).
				Str("module_id", moduleID).
				Msg("Failed to load player content")
		}
		return nil, fmt.Errorf("failed to load module %s: %w", moduleID, err)
	}

	if !module.HasVideo() {
		logger.Log.Warn().
			Str("course_id", courseID).
			Str("module_id", moduleID).
			Msg("Module requested for playback has no video")
		return nil, fmt.Errorf("failed to load module %s: %w", moduleID, ErrMissingVideo)
	}

	content := &PlayerContent{
		CourseID:              courseID,
		ModuleID:              module.ID,
		ModuleTitle:           module.Title,
		VideoURL:              module.VideoURL,
		InteractionPoints:     make([]PublicInteraction, 0, len(points)),
		WatchedHistory:        watched,
		CompletedInteractions: completed,
	}
	if content.CompletedInteractions == nil {
		content.CompletedInteractions = []string{}
	}
	for _, p := range points {
		content.InteractionPoints = append(content.InteractionPoints, PublicInteraction{
			ID:        p.ID,
			Timestamp: p.TimestampSeconds,
			Question:  p.Question,
			Options:   p.Options,
		})
	}
	return content, nil
}

// ValidateAnswer judges a submitted option. A learner's first correct answer
// to an interaction awards XP and records the interaction as completed.
func (s *Service) ValidateAnswer(ctx context.Context, userID, moduleID, interactionID, option string) (*AnswerResult, error) {
	point, err := s.repos.Interactions.GetInModule(ctx, moduleID, interactionID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, fmt.Errorf("failed to validate answer: %w", ErrInteractionNotFound)
		}
		return nil, fmt.Errorf("failed to validate answer: %w", err)
	}

	if !point.IsCorrect(option) {
		stats, err := s.repos.Stats.Get(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("failed to validate answer: %w", err)
		}
		feedback := point.Feedback
		if feedback == "" {
			feedback = defaultWrongFeedback
		}
		logger.Log.Debug().
			Str("user_id", userID).
			Str("interaction_id", interactionID).
			Msg("Incorrect answer submitted")
		return &AnswerResult{
			IsCorrect: false,
			Feedback:  feedback,
			Action:    ActionRetry,
			UpdatedXP: stats.TotalXP,
		}, nil
	}

	var (
		firstTime bool
		stats     *models.LearnerStats
	)
	err = s.db.WithTransaction(ctx, func(tx *gorm.DB) error {
		created, err := s.repos.Completions.CreateIfAbsentTx(tx, models.NewInteractionCompletion(userID, moduleID, interactionID))
		if err != nil {
			return err
		}
		firstTime = created
		if created {
			delta := db.StatsDelta{XP: s.cfg.XPPerCorrectAnswer, QuizzesCompleted: 1}
			if err := s.repos.Stats.IncrementTx(tx, userID, delta); err != nil {
				return err
			}
		}
		stats, err = s.repos.Stats.GetTx(tx, userID)
		return err
	})
	if err != nil {
		logger.Log.Error().
			Err(err).
			Str("user_id", userID).
			Str("interaction_id", interactionID).
			Msg("Failed to record correct answer")
		return nil, fmt.Errorf("failed to validate answer: %w", err)
	}

	logger.Log.Info().
		Str("user_id", userID).
		Str("module_id", moduleID).
		Str("interaction_id", interactionID).
		Bool("first_time", firstTime).
		Int("total_xp", stats.TotalXP).
		Msg("Interaction answered correctly")

	return &AnswerResult{
		IsCorrect: true,
		Feedback:  correctFeedback,
		Action:    ActionContinueVideo,
		UpdatedXP: stats.TotalXP,
	}, nil
}

// RecordHeartbeat stores the learner's current playback position
func (s *Service) RecordHeartbeat(ctx context.Context, userID, courseID, moduleID string, timestamp float64) error {
	if math.IsNaN(timestamp) || math.IsInf(timestamp, 0) || timestamp < 0 {
		return ErrInvalidTimestamp
	}
	if err := s.ensureModule(ctx, courseID, moduleID); err != nil {
		return fmt.Errorf("failed to record heartbeat: %w", err)
	}
	if err := s.repos.Progress.UpsertTimestamp(ctx, userID, courseID, moduleID, timestamp); err != nil {
		return fmt.Errorf("failed to record heartbeat: %w", err)
	}
	return nil
}

// CompleteModule marks a module completed. It returns true the first time;
// repeated completions leave the learner's stats unchanged.
func (s *Service) CompleteModule(ctx context.Context, userID, courseID, moduleID string) (bool, error) {
	if err := s.ensureModule(ctx, courseID, moduleID); err != nil {
		return false, fmt.Errorf("failed to complete module: %w", err)
	}

	var firstTime bool
	err := s.db.WithTransaction(ctx, func(tx *gorm.DB) error {
		var err error
		firstTime, err = s.repos.Progress.MarkCompletedTx(tx, userID, courseID, moduleID)
		if err != nil || !firstTime {
			return err
		}
		return s.repos.Stats.IncrementTx(tx, userID, db.StatsDelta{ModulesCompleted: 1})
	})
	if err != nil {
		logger.Log.Error().
			Err(err).
			Str("user_id", userID).
			Str("module_id", moduleID).
			Msg("Failed to mark module completed")
		return false, fmt.Errorf("failed to complete module: %w", err)
	}

	if firstTime {
		logger.Log.Info().
			Str("user_id", userID).
			Str("course_id", courseID).
			Str("module_id", moduleID).
			Msg("Module completed")
	}
	return firstTime, nil
}

// GetResumePoint returns the learner's last reported position in a module
func (s *Service) GetResumePoint(ctx context.Context, userID, courseID, moduleID string) (float64, error) {
	ts, err := s.repos.Progress.GetTimestamp(ctx, userID, courseID, moduleID)
	if err != nil {
		return 0, fmt.Errorf("failed to get resume point: %w", err)
	}
	return ts, nil
}

// ListCompletedInteractions returns the interaction IDs the learner has answered in a module
func (s *Service) ListCompletedInteractions(ctx context.Context, userID, moduleID string) ([]string, error) {
	ids, err := s.repos.Completions.ListInteractionIDs(ctx, userID, moduleID)
	if err != nil {
		return nil, fmt.Errorf("failed to list completed interactions: %w", err)
	}
	return ids, nil
}

// GetStats returns the learner's aggregate counters
func (s *Service) GetStats(ctx context.Context, userID string) (*models.LearnerStats, error) {
	stats, err := s.repos.Stats.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get learner stats: %w", err)
	}
	return stats, nil
}

func (s *Service) ensureModule(ctx context.Context, courseID, moduleID string) error {
	if _, err := s.repos.Modules.GetInCourse(ctx, courseID, moduleID); err != nil {
		if db.IsNotFound(err) {
			return ErrModuleNotFound
		}
		return err
	}
	return nil
}
