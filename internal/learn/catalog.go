package learn

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/stwalsh4118/classroom/internal/db"
	"github.com/stwalsh4118/classroom/internal/logger"
	"github.com/stwalsh4118/classroom/internal/models"
)

const minQuizOptions = 2

// CourseDraft is an instructor's new course. An empty ID is generated.
type CourseDraft struct {
	ID          string
	Title       string
	Description string
}

// ModuleDraft is a new module within a course
type ModuleDraft struct {
	ID       string
	Title    string
	Position int
	VideoURL string
}

// InteractionDraft is a new quiz checkpoint on a module's timeline
type InteractionDraft struct {
	ID            string
	Timestamp     int
	Question      string
	Options       []string
	CorrectOption string
	Feedback      string
}

func (d InteractionDraft) validate() error {
	if d.Timestamp < 0 {
		return fmt.Errorf("%w: timestamp must not be negative", ErrInvalidDraft)
	}
	if strings.TrimSpace(d.Question) == "" {
		return fmt.Errorf("%w: question is required", ErrInvalidDraft)
	}
	if len(d.Options) < minQuizOptions {
		return fmt.Errorf("%w: at least %d options are required", ErrInvalidDraft, minQuizOptions)
	}
	seen := make(map[string]struct{}, len(d.Options))
	for _, opt := range d.Options {
		if _, dup := seen[opt]; dup {
			return fmt.Errorf("%w: option %q is repeated", ErrInvalidDraft, opt)
		}
		seen[opt] = struct{}{}
	}
	if _, ok := seen[d.CorrectOption]; !ok {
		return fmt.Errorf("%w: correct option must be one of the options", ErrInvalidDraft)
	}
	return nil
}

func idOrNew(id string) string {
	if id = strings.TrimSpace(id); id != "" {
		return id
	}
	return uuid.NewString()
}

// CreateCourse creates a course owned by instructorID
func (s *Service) CreateCourse(ctx context.Context, instructorID string, draft CourseDraft) (*models.Course, error) {
	if strings.TrimSpace(draft.Title) == "" {
		return nil, fmt.Errorf("failed to create course: %w: title is required", ErrInvalidDraft)
	}

	course := models.NewCourse(idOrNew(draft.ID), draft.Title, instructorID)
	course.Description = draft.Description
	if err := s.repos.Courses.Create(ctx, course); err != nil {
		if db.IsDuplicate(err) {
			return nil, fmt.Errorf("failed to create course %s: %w", course.ID, ErrDuplicateID)
		}
		return nil, fmt.Errorf("failed to create course: %w", err)
	}

	logger.Log.Info().
		Str("course_id", course.ID).
		Str("instructor_id", instructorID).
		Msg("Course created")
	return course, nil
}

// ListInstructorCourses returns the courses an instructor created, newest first
func (s *Service) ListInstructorCourses(ctx context.Context, instructorID string) ([]*models.Course, error) {
	courses, err := s.repos.Courses.ListByInstructor(ctx, instructorID)
	if err != nil {
		return nil, fmt.Errorf("failed to list courses: %w", err)
	}
	return courses, nil
}

// CreateModule adds a module to a course. An unknown course surfaces from the
// foreign key on modules.course_id.
func (s *Service) CreateModule(ctx context.Context, courseID string, draft ModuleDraft) (*models.Module, error) {
	if strings.TrimSpace(draft.Title) == "" {
		return nil, fmt.Errorf("failed to create module: %w: title is required", ErrInvalidDraft)
	}
	if draft.Position < 0 {
		return nil, fmt.Errorf("failed to create module: %w: position must not be negative", ErrInvalidDraft)
	}

	module := models.NewModule(idOrNew(draft.ID), courseID, draft.Title, draft.Position, draft.VideoURL)
	if err := s.repos.Modules.Create(ctx, module); err != nil {
		switch {
		case db.IsForeignKey(err):
			return nil, fmt.Errorf("failed to create module: %w", ErrCourseNotFound)
		case db.IsDuplicate(err):
			return nil, fmt.Errorf("failed to create module %s: %w", module.ID, ErrDuplicateID)
		}
		return nil, fmt.Errorf("failed to create module: %w", err)
	}

	logger.Log.Info().
		Str("course_id", courseID).
		Str("module_id", module.ID).
		Int("position", module.Position).
		Msg("Module created")
	return module, nil
}

// CreateInteraction places a quiz checkpoint on a module. The returned view
// omits the correct option.
func (s *Service) CreateInteraction(ctx context.Context, courseID, moduleID string, draft InteractionDraft) (*PublicInteraction, error) {
	if err := draft.validate(); err != nil {
		return nil, fmt.Errorf("failed to create interaction point: %w", err)
	}
	if err := s.ensureModule(ctx, courseID, moduleID); err != nil {
		return nil, fmt.Errorf("failed to create interaction point: %w", err)
	}

	point := &models.InteractionPoint{
		ID:               idOrNew(draft.ID),
		ModuleID:         moduleID,
		TimestampSeconds: draft.Timestamp,
		Question:         draft.Question,
		Options:          draft.Options,
		CorrectOption:    draft.CorrectOption,
		Feedback:         draft.Feedback,
	}
	if err := s.repos.Interactions.Create(ctx, point); err != nil {
		switch {
		case db.IsForeignKey(err):
			// Module removed between the membership check and the insert
			return nil, fmt.Errorf("failed to create interaction point: %w", ErrModuleNotFound)
		case db.IsDuplicate(err):
			return nil, fmt.Errorf("failed to create interaction point %s: %w", point.ID, ErrDuplicateID)
		}
		return nil, fmt.Errorf("failed to create interaction point: %w", err)
	}

	logger.Log.Info().
		Str("module_id", moduleID).
		Str("interaction_id", point.ID).
		Int("timestamp", point.TimestampSeconds).
		Msg("Interaction point created")

	return &PublicInteraction{
		ID:        point.ID,
		Timestamp: point.TimestampSeconds,
		Question:  point.Question,
		Options:   point.Options,
	}, nil
}
