package db

import (
	"context"
	"fmt"

	"github.com/stwalsh4118/classroom/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// InteractionRepository handles database operations for interaction points
type InteractionRepository struct {
	db *DB
}

// NewInteractionRepository creates a new interaction point repository
func NewInteractionRepository(db *DB) *InteractionRepository {
	return &InteractionRepository{db: db}
}

// Create inserts a new interaction point into the database
func (r *InteractionRepository) Create(ctx context.Context, point *models.InteractionPoint) error {
	result := r.db.WithContext(ctx).Create(point)
	if result.Error != nil {
		return fmt.Errorf("failed to create interaction point: %w", MapGormError(result.Error))
	}
	return nil
}

// GetInModule retrieves an interaction point that belongs to the given module
func (r *InteractionRepository) GetInModule(ctx context.Context, moduleID, interactionID string) (*models.InteractionPoint, error) {
	var point models.InteractionPoint
	result := r.db.WithContext(ctx).
		Where("id = ? AND module_id = ?", interactionID, moduleID).
		First(&point)
	if result.Error != nil {
		return nil, MapGormError(result.Error)
	}
	return &point, nil
}

// ListByModule retrieves a module's interaction points in authored order
func (r *InteractionRepository) ListByModule(ctx context.Context, moduleID string) ([]*models.InteractionPoint, error) {
	var points []*models.InteractionPoint
	result := r.db.WithContext(ctx).
		Where("module_id = ?", moduleID).
		Order("rowid ASC").
		Find(&points)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list interaction points: %w", MapGormError(result.Error))
	}
	return points, nil
}

// CompletionRepository handles database operations for answered interactions
type CompletionRepository struct {
	db *DB
}

// NewCompletionRepository creates a new interaction completion repository
func NewCompletionRepository(db *DB) *CompletionRepository {
	return &CompletionRepository{db: db}
}

// CreateIfAbsentTx records a completion inside tx. It returns false when the
// learner had already answered the interaction.
func (r *CompletionRepository) CreateIfAbsentTx(tx *gorm.DB, completion *models.InteractionCompletion) (bool, error) {
	result := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "interaction_id"}},
		DoNothing: true,
	}).Create(completion)
	if result.Error != nil {
		return false, fmt.Errorf("failed to record interaction completion: %w", MapGormError(result.Error))
	}
	return result.RowsAffected == 1, nil
}

// ListInteractionIDs returns the interaction IDs a learner has answered in a module
func (r *CompletionRepository) ListInteractionIDs(ctx context.Context, userID, moduleID string) ([]string, error) {
	var ids []string
	result := r.db.WithContext(ctx).
		Model(&models.InteractionCompletion{}).
		Where("user_id = ? AND module_id = ?", userID, moduleID).
		Order("completed_at ASC").
		Pluck("interaction_id", &ids)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list interaction completions: %w", MapGormError(result.Error))
	}
	return ids, nil
}
