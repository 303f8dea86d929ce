// Package db provides database connection management and repository interfaces.
package db

import (
	"context"
	"fmt"

	"github.com/stwalsh4118/classroom/internal/models"
)

// CourseRepository handles database operations for courses
type CourseRepository struct {
	db *DB
}

// NewCourseRepository creates a new course repository
func NewCourseRepository(db *DB) *CourseRepository {
	return &CourseRepository{db: db}
}

// Create inserts a new course into the database
func (r *CourseRepository) Create(ctx context.Context, course *models.Course) error {
	result := r.db.WithContext(ctx).Create(course)
	if result.Error != nil {
		return fmt.Errorf("failed to create course: %w", MapGormError(result.Error))
	}
	return nil
}

// GetByID retrieves a course by its ID
func (r *CourseRepository) GetByID(ctx context.Context, id string) (*models.Course, error) {
	var course models.Course
	result := r.db.WithContext(ctx).Where("id = ?", id).First(&course)
	if result.Error != nil {
		return nil, MapGormError(result.Error)
	}
	return &course, nil
}

// ListByInstructor retrieves an instructor's courses, newest first
func (r *CourseRepository) ListByInstructor(ctx context.Context, instructorID string) ([]*models.Course, error) {
	var courses []*models.Course
	result := r.db.WithContext(ctx).
		Where("instructor_id = ?", instructorID).
		Order("created_at DESC").
		Find(&courses)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list courses: %w", MapGormError(result.Error))
	}
	return courses, nil
}

// ModuleRepository handles database operations for course modules
type ModuleRepository struct {
	db *DB
}

// NewModuleRepository creates a new module repository
func NewModuleRepository(db *DB) *ModuleRepository {
	return &ModuleRepository{db: db}
}

// Create inserts a new module into the database
func (r *ModuleRepository) Create(ctx context.Context, module *models.Module) error {
	result := r.db.WithContext(ctx).Create(module)
	if result.Error != nil {
		return fmt.Errorf("failed to create module: %w", MapGormError(result.Error))
	}
	return nil
}

// GetInCourse retrieves a module that belongs to the given course.
// A module that exists under a different course is reported as not found.
func (r *ModuleRepository) GetInCourse(ctx context.Context, courseID, moduleID string) (*models.Module, error) {
	var module models.Module
	result := r.db.WithContext(ctx).
		Where("id = ? AND course_id = ?", moduleID, courseID).
		First(&module)
	if result.Error != nil {
		return nil, MapGormError(result.Error)
	}
	return &module, nil
}

// ListByCourse retrieves a course's modules in lesson order
func (r *ModuleRepository) ListByCourse(ctx context.Context, courseID string) ([]*models.Module, error) {
	var modules []*models.Module
	result := r.db.WithContext(ctx).
		Where("course_id = ?", courseID).
		Order("position ASC").
		Find(&modules)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list modules: %w", MapGormError(result.Error))
	}
	return modules, nil
}
