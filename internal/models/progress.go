package models

import (
	"time"

	"github.com/google/uuid"
)

// ModuleProgress tracks how far a learner has watched a module.
// There is at most one row per (user, course, module).
type ModuleProgress struct {
	ID                   uuid.UUID  `json:"id" gorm:"type:text;primaryKey;column:id"`
	UserID               string     `json:"user_id" gorm:"type:text;not null;column:user_id;uniqueIndex:idx_progress_user_module,priority:1"`
	CourseID             string     `json:"course_id" gorm:"type:text;not null;column:course_id;uniqueIndex:idx_progress_user_module,priority:2"`
	ModuleID             string     `json:"module_id" gorm:"type:text;not null;column:module_id;uniqueIndex:idx_progress_user_module,priority:3"`
	LastTimestampSeconds float64    `json:"last_timestamp_seconds" gorm:"type:real;not null;default:0;column:last_timestamp_seconds"`
	Completed            bool       `json:"completed" gorm:"type:integer;not null;default:0;column:completed"`
	CompletedAt          *time.Time `json:"completed_at,omitempty" gorm:"type:datetime;column:completed_at"`
	UpdatedAt            time.Time  `json:"updated_at" gorm:"type:datetime;default:CURRENT_TIMESTAMP;column:updated_at"`
}

// NewModuleProgress creates a progress row positioned at timestamp
func NewModuleProgress(userID, courseID, moduleID string, timestamp float64) *ModuleProgress {
	return &ModuleProgress{
		ID:                   uuid.New(),
		UserID:               userID,
		CourseID:             courseID,
		ModuleID:             moduleID,
		LastTimestampSeconds: timestamp,
		UpdatedAt:            time.Now().UTC(),
	}
}

// TableName overrides the default pluralised table name
func (ModuleProgress) TableName() string {
	return "module_progress"
}

// LearnerStats holds a learner's aggregate counters
type LearnerStats struct {
	UserID           string    `json:"user_id" gorm:"type:text;primaryKey;column:user_id"`
	TotalXP          int       `json:"total_xp" gorm:"type:integer;not null;default:0;column:total_xp"`
	ModulesCompleted int       `json:"modules_completed" gorm:"type:integer;not null;default:0;column:modules_completed"`
	QuizzesCompleted int       `json:"quizzes_completed" gorm:"type:integer;not null;default:0;column:quizzes_completed"`
	UpdatedAt        time.Time `json:"updated_at" gorm:"type:datetime;default:CURRENT_TIMESTAMP;column:updated_at"`
}

// TableName overrides the default pluralised table name
func (LearnerStats) TableName() string {
	return "learner_stats"
}
