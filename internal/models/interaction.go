package models

import (
	"time"

	"github.com/google/uuid"
)

// InteractionPoint is a quiz question placed on a module's timeline.
// CorrectOption and Feedback never leave the backend.
type InteractionPoint struct {
	ID               string    `json:"id" gorm:"type:text;primaryKey;column:id"`
	ModuleID         string    `json:"module_id" gorm:"type:text;not null;column:module_id;index"`
	TimestampSeconds int       `json:"timestamp_seconds" gorm:"type:integer;not null;column:timestamp_seconds" validate:"gte=0"`
	Question         string    `json:"question" gorm:"type:text;not null;column:question" validate:"required"`
	Options          []string  `json:"options" gorm:"type:text;not null;serializer:json;column:options" validate:"required,min=1"`
	CorrectOption    string    `json:"-" gorm:"type:text;not null;column:correct_option"`
	Feedback         string    `json:"-" gorm:"type:text;column:feedback"`
	CreatedAt        time.Time `json:"created_at" gorm:"type:datetime;default:CURRENT_TIMESTAMP;column:created_at"`
}

// IsCorrect reports whether option is the authored correct answer
func (p *InteractionPoint) IsCorrect(option string) bool {
	return option == p.CorrectOption
}

// InteractionCompletion records that a learner answered an interaction point correctly
type InteractionCompletion struct {
	ID            uuid.UUID `json:"id" gorm:"type:text;primaryKey;column:id"`
	UserID        string    `json:"user_id" gorm:"type:text;not null;column:user_id;uniqueIndex:idx_completions_user_interaction,priority:1"`
	ModuleID      string    `json:"module_id" gorm:"type:text;not null;column:module_id;index"`
	InteractionID string    `json:"interaction_id" gorm:"type:text;not null;column:interaction_id;uniqueIndex:idx_completions_user_interaction,priority:2"`
	CompletedAt   time.Time `json:"completed_at" gorm:"type:datetime;not null;column:completed_at"`
}

// NewInteractionCompletion creates a completion record with a generated UUID
func NewInteractionCompletion(userID, moduleID, interactionID string) *InteractionCompletion {
	return &InteractionCompletion{
		ID:            uuid.New(),
		UserID:        userID,
		ModuleID:      moduleID,
		InteractionID: interactionID,
		CompletedAt:   time.Now().UTC(),
	}
}
