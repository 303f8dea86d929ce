package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/stwalsh4118/classroom/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// StatsRepository handles database operations for learner stats
// There is one row per learner, created on first increment
type StatsRepository struct {
	db *DB
}

// NewStatsRepository creates a new learner stats repository
func NewStatsRepository(db *DB) *StatsRepository {
	return &StatsRepository{db: db}
}

// StatsDelta is an increment applied to a learner's counters
type StatsDelta struct {
	XP               int
	QuizzesCompleted int
	ModulesCompleted int
}

// Get retrieves a learner's stats (zero values if the learner has none yet)
func (r *StatsRepository) Get(ctx context.Context, userID string) (*models.LearnerStats, error) {
	return r.get(r.db.WithContext(ctx), userID)
}

// GetTx retrieves a learner's stats inside tx
func (r *StatsRepository) GetTx(tx *gorm.DB, userID string) (*models.LearnerStats, error) {
	return r.get(tx, userID)
}

func (r *StatsRepository) get(conn *gorm.DB, userID string) (*models.LearnerStats, error) {
	var stats models.LearnerStats
	result := conn.Where("user_id = ?", userID).First(&stats)
	if result.Error != nil {
		if errors.Is(MapGormError(result.Error), ErrNotFound) {
			return &models.LearnerStats{UserID: userID}, nil
		}
		return nil, MapGormError(result.Error)
	}
	return &stats, nil
}

// IncrementTx adds delta to the learner's counters inside tx
func (r *StatsRepository) IncrementTx(tx *gorm.DB, userID string, delta StatsDelta) error {
	stats := &models.LearnerStats{
		UserID:           userID,
		TotalXP:          delta.XP,
		QuizzesCompleted: delta.QuizzesCompleted,
		ModulesCompleted: delta.ModulesCompleted,
		UpdatedAt:        time.Now().UTC(),
	}
	result := tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"total_xp":          gorm.Expr("total_xp + ?", delta.XP),
			"quizzes_completed": gorm.Expr("quizzes_completed + ?", delta.QuizzesCompleted),
			"modules_completed": gorm.Expr("modules_completed + ?", delta.ModulesCompleted),
			"updated_at":        stats.UpdatedAt,
		}),
	}).Create(stats)
	if result.Error != nil {
		return fmt.Errorf("failed to update learner stats: %w", MapGormError(result.Error))
	}
	return nil
}
