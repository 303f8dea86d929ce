package learn

import (
	"context"
	"fmt"

	"github.com/stwalsh4118/classroom/internal/db"
	"github.com/stwalsh4118/classroom/internal/models"
	"golang.org/x/sync/errgroup"
)

// ModuleStatus is one module's row in a course progress view
type ModuleStatus struct {
	ModuleID      string  `json:"module_id"`
	Title         string  `json:"title"`
	Position      int     `json:"position"`
	Completed     bool    `json:"completed"`
	LastTimestamp float64 `json:"last_timestamp_seconds"`
}

// CourseProgress is the learner's standing across a course
type CourseProgress struct {
	CourseID             string         `json:"course_id"`
	LastAccessedModuleID string         `json:"last_accessed_module_id"`
	LastTimestamp        float64        `json:"last_timestamp_seconds"`
	NextModuleID         string         `json:"next_module_id,omitempty"`
	CompletedModules     []string       `json:"completed_modules"`
	Modules              []ModuleStatus `json:"modules"`
}

// GetCourseProgress reports which modules the learner completed and where
// they left off. A learner with no progress starts at the first module.
func (s *Service) GetCourseProgress(ctx context.Context, userID, courseID string) (*CourseProgress, error) {
	var (
		modules   []*models.Module
		rows      []*models.ModuleProgress
		completed []string
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if _, err := s.repos.Courses.GetByID(gctx, courseID); err != nil {
			if db.IsNotFound(err) {
				return ErrCourseNotFound
			}
			return err
		}
		return nil
	})
	g.Go(func() error {
		var err error
		modules, err = s.repos.Modules.ListByCourse(gctx, courseID)
		return err
	})
	g.Go(func() error {
		var err error
		rows, err = s.repos.Progress.ListByCourse(gctx, userID, courseID)
		return err
	})
	g.Go(func() error {
		var err error
		completed, err = s.repos.Progress.ListCompletedModules(gctx, userID, courseID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to get progress for course %s: %w", courseID, err)
	}

	byModule := make(map[string]*models.ModuleProgress, len(rows))
	for _, row := range rows {
		byModule[row.ModuleID] = row
	}

	progress := &CourseProgress{
		CourseID:         courseID,
		CompletedModules: completed,
		Modules:          make([]ModuleStatus, 0, len(modules)),
	}
	if progress.CompletedModules == nil {
		progress.CompletedModules = []string{}
	}
	for _, m := range modules {
		status := ModuleStatus{ModuleID: m.ID, Title: m.Title, Position: m.Position}
		if row, ok := byModule[m.ID]; ok {
			status.Completed = row.Completed
			status.LastTimestamp = row.LastTimestampSeconds
		}
		progress.Modules = append(progress.Modules, status)
	}

	switch {
	case len(rows) > 0:
		progress.LastAccessedModuleID = rows[0].ModuleID
		progress.LastTimestamp = rows[0].LastTimestampSeconds
	case len(modules) > 0:
		progress.LastAccessedModuleID = modules[0].ID
	}
	progress.NextModuleID = nextModuleID(modules, progress.LastAccessedModuleID)

	return progress, nil
}

// NextModule returns the module after moduleID in lesson order, or "" when
// moduleID is the last one
func (s *Service) NextModule(ctx context.Context, courseID, moduleID string) (string, error) {
	modules, err := s.repos.Modules.ListByCourse(ctx, courseID)
	if err != nil {
		return "", fmt.Errorf("failed to find next module: %w", err)
	}
	return nextModuleID(modules, moduleID), nil
}

func nextModuleID(modules []*models.Module, moduleID string) string {
	for i, m := range modules {
		if m.ID == moduleID && i+1 < len(modules) {
			return modules[i+1].ID
		}
	}
	return ""
}
