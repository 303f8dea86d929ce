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

// ProgressRepository handles database operations for module progress
type ProgressRepository struct {
	db *DB
}

// NewProgressRepository creates a new module progress repository
func NewProgressRepository(db *DB) *ProgressRepository {
	return &ProgressRepository{db: db}
}

var progressKey = []clause.Column{{Name: "user_id"}, {Name: "course_id"}, {Name: "module_id"}}

// Get retrieves the progress row for a learner's module
func (r *ProgressRepository) Get(ctx context.Context, userID, courseID, moduleID string) (*models.ModuleProgress, error) {
	var progress models.ModuleProgress
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND course_id = ? AND module_id = ?", userID, courseID, moduleID).
		First(&progress)
	if result.Error != nil {
		return nil, MapGormError(result.Error)
	}
	return &progress, nil
}

// GetTimestamp returns the learner's last reported position, zero when there is no progress yet
func (r *ProgressRepository) GetTimestamp(ctx context.Context, userID, courseID, moduleID string) (float64, error) {
	progress, err := r.Get(ctx, userID, courseID, moduleID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return progress.LastTimestampSeconds, nil
}

// UpsertTimestamp stores the learner's last position, creating the row on first report
func (r *ProgressRepository) UpsertTimestamp(ctx context.Context, userID, courseID, moduleID string, timestamp float64) error {
	progress := models.NewModuleProgress(userID, courseID, moduleID, timestamp)
	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   progressKey,
		DoUpdates: clause.AssignmentColumns([]string{"last_timestamp_seconds", "updated_at"}),
	}).Create(progress)
	if result.Error != nil {
		return fmt.Errorf("failed to save module progress: %w", MapGormError(result.Error))
	}
	return nil
}

// MarkCompletedTx flags the module completed inside tx. It returns true only
// the first time the module is completed.
func (r *ProgressRepository) MarkCompletedTx(tx *gorm.DB, userID, courseID, moduleID string) (bool, error) {
	progress := models.NewModuleProgress(userID, courseID, moduleID, 0)
	result := tx.Clauses(clause.OnConflict{Columns: progressKey, DoNothing: true}).Create(progress)
	if result.Error != nil {
		return false, fmt.Errorf("failed to create module progress: %w", MapGormError(result.Error))
	}

	now := time.Now().UTC()
	result = tx.Model(&models.ModuleProgress{}).
		Where("user_id = ? AND course_id = ? AND module_id = ? AND completed = ?", userID, courseID, moduleID, false).
		Updates(map[string]interface{}{
			"completed":    true,
			"completed_at": now,
			"updated_at":   now,
		})
	if result.Error != nil {
		return false, fmt.Errorf("failed to mark module completed: %w", MapGormError(result.Error))
	}
	return result.RowsAffected == 1, nil
}

// ListCompletedModules returns the IDs of modules the learner completed in a course
func (r *ProgressRepository) ListCompletedModules(ctx context.Context, userID, courseID string) ([]string, error) {
	var ids []string
	result := r.db.WithContext(ctx).
		Model(&models.ModuleProgress{}).
		Where("user_id = ? AND course_id = ? AND completed = ?", userID, courseID, true).
		Order("completed_at ASC").
		Pluck("module_id", &ids)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list completed modules: %w", MapGormError(result.Error))
	}
	return ids, nil
}

// ListByCourse returns the learner's progress rows in a course, most recently
// touched first
func (r *ProgressRepository) ListByCourse(ctx context.Context, userID, courseID string) ([]*models.ModuleProgress, error) {
	var rows []*models.ModuleProgress
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		Order("updated_at DESC").
		Order("module_id ASC").
		Find(&rows)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list module progress: %w", MapGormError(result.Error))
	}
	return rows, nil
}
