package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stwalsh4118/classroom/internal/learn"
	"github.com/stwalsh4118/classroom/internal/models"
)

// mockCatalogService is a test helper that implements the catalogService interface
type mockCatalogService struct {
	createCourseFunc      func(ctx context.Context, instructorID string, draft learn.CourseDraft) (*models.Course, error)
	listCoursesFunc       func(ctx context.Context, instructorID string) ([]*models.Course, error)
	createModuleFunc      func(ctx context.Context, courseID string, draft learn.ModuleDraft) (*models.Module, error)
	createInteractionFunc func(ctx context.Context, courseID, moduleID string, draft learn.InteractionDraft) (*learn.PublicInteraction, error)
}

func (m *mockCatalogService) CreateCourse(ctx context.Context, instructorID string, draft learn.CourseDraft) (*models.Course, error) {
	if m.createCourseFunc != nil {
		return m.createCourseFunc(ctx, instructorID, draft)
	}
	return models.NewCourse(draft.ID, draft.Title, instructorID), nil
}

func (m *mockCatalogService) ListInstructorCourses(ctx context.Context, instructorID string) ([]*models.Course, error) {
	if m.listCoursesFunc != nil {
		return m.listCoursesFunc(ctx, instructorID)
	}
	return nil, nil
}

func (m *mockCatalogService) CreateModule(ctx context.Context, courseID string, draft learn.ModuleDraft) (*models.Module, error) {
	if m.createModuleFunc != nil {
		return m.createModuleFunc(ctx, courseID, draft)
	}
	return models.NewModule(draft.ID, courseID, draft.Title, draft.Position, draft.VideoURL), nil
}

func (m *mockCatalogService) CreateInteraction(ctx context.Context, courseID, moduleID string, draft learn.InteractionDraft) (*learn.PublicInteraction, error) {
	if m.createInteractionFunc != nil {
		return m.createInteractionFunc(ctx, courseID, moduleID, draft)
	}
	return &learn.PublicInteraction{ID: draft.ID, Timestamp: draft.Timestamp, Question: draft.Question, Options: draft.Options}, nil
}

func setupInstructorTestRouter(service *mockCatalogService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	SetupInstructorRoutes(router.Group("/api"), service)
	return router
}

func TestInstructorHandler_CreateCourse(t *testing.T) {
	var gotInstructor string
	service := &mockCatalogService{
		createCourseFunc: func(_ context.Context, instructorID string, draft learn.CourseDraft) (*models.Course, error) {
			gotInstructor = instructorID
			if draft.ID == "py-adv-01" {
				return nil, fmt.Errorf("failed to create course: %w", learn.ErrDuplicateID)
			}
			return models.NewCourse(draft.ID, draft.Title, instructorID), nil
		},
	}
	router := setupInstructorTestRouter(service)

	t.Run("Creates course owned by caller", func(t *testing.T) {
		w := doJSON(router, http.MethodPost, "/api/instructor/courses", "inst-1", gin.H{"id": "go-101", "title": "Go Basics"})

		require.Equal(t, http.StatusCreated, w.Code)
		var course models.Course
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &course))
		assert.Equal(t, "go-101", course.ID)
		assert.Equal(t, "inst-1", gotInstructor)
	})

	t.Run("Duplicate ID is 409", func(t *testing.T) {
		w := doJSON(router, http.MethodPost, "/api/instructor/courses", "inst-1", gin.H{"id": "py-adv-01", "title": "Copy"})

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Contains(t, w.Body.String(), "duplicate_id")
	})

	t.Run("Missing title is 400", func(t *testing.T) {
		w := doJSON(router, http.MethodPost, "/api/instructor/courses", "inst-1", gin.H{"id": "x"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Missing user is 401", func(t *testing.T) {
		w := doJSON(router, http.MethodPost, "/api/instructor/courses", "", gin.H{"title": "Go Basics"})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestInstructorHandler_ListCourses(t *testing.T) {
	router := setupInstructorTestRouter(&mockCatalogService{})

	w := doJSON(router, http.MethodGet, "/api/instructor/courses", "inst-1", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestInstructorHandler_CreateModule(t *testing.T) {
	service := &mockCatalogService{
		createModuleFunc: func(_ context.Context, courseID string, draft learn.ModuleDraft) (*models.Module, error) {
			if courseID != "py-adv-01" {
				return nil, fmt.Errorf("failed to create module: %w", learn.ErrCourseNotFound)
			}
			return models.NewModule(draft.ID, courseID, draft.Title, draft.Position, draft.VideoURL), nil
		},
	}
	router := setupInstructorTestRouter(service)

	w := doJSON(router, http.MethodPost, "/api/instructor/courses/py-adv-01/modules", "inst-1",
		gin.H{"id": "mod_03", "title": "Decorators", "position": 3, "video_url": "https://cdn.example.com/mod_03.mp4"})
	require.Equal(t, http.StatusCreated, w.Code)
	var module models.Module
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &module))
	assert.Equal(t, 3, module.Position)

	w = doJSON(router, http.MethodPost, "/api/instructor/courses/missing/modules", "inst-1", gin.H{"title": "Orphan"})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "course_not_found")
}

func TestInstructorHandler_CreateInteraction(t *testing.T) {
	var got learn.InteractionDraft
	service := &mockCatalogService{
		createInteractionFunc: func(_ context.Context, _, _ string, draft learn.InteractionDraft) (*learn.PublicInteraction, error) {
			got = draft
			if draft.CorrectOption == "A tuple" {
				return nil, fmt.Errorf("failed to create interaction point: %w", learn.ErrInvalidDraft)
			}
			return &learn.PublicInteraction{ID: "q3", Timestamp: draft.Timestamp, Question: draft.Question, Options: draft.Options}, nil
		},
	}
	router := setupInstructorTestRouter(service)
	path := "/api/instructor/courses/py-adv-01/modules/mod_01/interactions"

	t.Run("Timestamp zero is accepted and answer is hidden", func(t *testing.T) {
		w := doJSON(router, http.MethodPost, path, "inst-1", gin.H{
			"timestamp": 0, "question": "What does zip() return?",
			"options": []string{"An iterator", "A list"}, "correct_option": "An iterator",
		})

		require.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, 0, got.Timestamp)
		assert.Equal(t, "An iterator", got.CorrectOption)
		assert.NotContains(t, w.Body.String(), "correct_option")
	})

	t.Run("Invalid draft is 400", func(t *testing.T) {
		w := doJSON(router, http.MethodPost, path, "inst-1", gin.H{
			"timestamp": 5, "question": "?", "options": []string{"a", "b"}, "correct_option": "A tuple",
		})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "invalid_content")
	})

	t.Run("Missing timestamp is 400", func(t *testing.T) {
		w := doJSON(router, http.MethodPost, path, "inst-1", gin.H{
			"question": "?", "options": []string{"a", "b"}, "correct_option": "a",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
