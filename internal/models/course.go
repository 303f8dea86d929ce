package models

import (
	"time"
)

// Course represents a published course that groups video modules
type Course struct {
	ID           string    `json:"id" gorm:"type:text;primaryKey;column:id"`
	Title        string    `json:"title" gorm:"type:text;not null;column:title" validate:"required,min=1,max=255"`
	Description  string    `json:"description" gorm:"type:text;column:description"`
	InstructorID string    `json:"instructor_id" gorm:"type:text;column:instructor_id"`
	Published    bool      `json:"published" gorm:"type:integer;not null;default:0;column:published"`
	CreatedAt    time.Time `json:"created_at" gorm:"type:datetime;default:CURRENT_TIMESTAMP;column:created_at"`
	UpdatedAt    time.Time `json:"updated_at" gorm:"type:datetime;default:CURRENT_TIMESTAMP;column:updated_at"`
}

// NewCourse creates a new Course with timestamps
func NewCourse(id, title, instructorID string) *Course {
	now := time.Now().UTC()
	return &Course{
		ID:           id,
		Title:        title,
		InstructorID: instructorID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// Module represents a single video lesson within a course
type Module struct {
	ID        string    `json:"id" gorm:"type:text;primaryKey;column:id"`
	CourseID  string    `json:"course_id" gorm:"type:text;not null;column:course_id;index:idx_modules_course_position,priority:1"`
	Title     string    `json:"title" gorm:"type:text;not null;column:title" validate:"required,min=1,max=255"`
	Position  int       `json:"position" gorm:"type:integer;not null;default:0;column:position;index:idx_modules_course_position,priority:2"`
	VideoURL  string    `json:"video_url" gorm:"type:text;column:video_url"`
	CreatedAt time.Time `json:"created_at" gorm:"type:datetime;default:CURRENT_TIMESTAMP;column:created_at"`
	UpdatedAt time.Time `json:"updated_at" gorm:"type:datetime;default:CURRENT_TIMESTAMP;column:updated_at"`
}

// NewModule creates a new Module with timestamps
func NewModule(id, courseID, title string, position int, videoURL string) *Module {
	now := time.Now().UTC()
	return &Module{
		ID:        id,
		CourseID:  courseID,
		Title:     title,
		Position:  position,
		VideoURL:  videoURL,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// HasVideo reports whether the module has a playable video attached
func (m *Module) HasVideo() bool {
	return m.VideoURL != ""
}
