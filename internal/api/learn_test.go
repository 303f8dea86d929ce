package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stwalsh4118/classroom/internal/learn"
	"github.com/stwalsh4118/classroom/internal/models"
	"github.com/stwalsh4118/classroom/internal/playback"
)

// mockLearnService is a test helper that implements the learnService interface
type mockLearnService struct {
	getPlayerContentFunc func(ctx context.Context, userID, courseID, moduleID string) (*learn.PlayerContent, error)
	validateAnswerFunc   func(ctx context.Context, userID, moduleID, interactionID, option string) (*learn.AnswerResult, error)
	recordHeartbeatFunc  func(ctx context.Context, userID, courseID, moduleID string, timestamp float64) error
	completeModuleFunc   func(ctx context.Context, userID, courseID, moduleID string) (bool, error)
	nextModuleFunc       func(ctx context.Context, courseID, moduleID string) (string, error)
	courseProgressFunc   func(ctx context.Context, userID, courseID string) (*learn.CourseProgress, error)
	getStatsFunc         func(ctx context.Context, userID string) (*models.LearnerStats, error)
}

func (m *mockLearnService) GetPlayerContent(ctx context.Context, userID, courseID, moduleID string) (*learn.PlayerContent, error) {
	if m.getPlayerContentFunc != nil {
		return m.getPlayerContentFunc(ctx, userID, courseID, moduleID)
	}
	return nil, nil
}

func (m *mockLearnService) ValidateAnswer(ctx context.Context, userID, moduleID, interactionID, option string) (*learn.AnswerResult, error) {
	if m.validateAnswerFunc != nil {
		return m.validateAnswerFunc(ctx, userID, moduleID, interactionID, option)
	}
	return nil, nil
}

func (m *mockLearnService) RecordHeartbeat(ctx context.Context, userID, courseID, moduleID string, timestamp float64) error {
	if m.recordHeartbeatFunc != nil {
		return m.recordHeartbeatFunc(ctx, userID, courseID, moduleID, timestamp)
	}
	return nil
}

func (m *mockLearnService) CompleteModule(ctx context.Context, userID, courseID, moduleID string) (bool, error) {
	if m.completeModuleFunc != nil {
		return m.completeModuleFunc(ctx, userID, courseID, moduleID)
	}
	return false, nil
}

func (m *mockLearnService) NextModule(ctx context.Context, courseID, moduleID string) (string, error) {
	if m.nextModuleFunc != nil {
		return m.nextModuleFunc(ctx, courseID, moduleID)
	}
	return "", nil
}

func (m *mockLearnService) GetCourseProgress(ctx context.Context, userID, courseID string) (*learn.CourseProgress, error) {
	if m.courseProgressFunc != nil {
		return m.courseProgressFunc(ctx, userID, courseID)
	}
	return &learn.CourseProgress{CourseID: courseID}, nil
}

func (m *mockLearnService) GetStats(ctx context.Context, userID string) (*models.LearnerStats, error) {
	if m.getStatsFunc != nil {
		return m.getStatsFunc(ctx, userID)
	}
	return &models.LearnerStats{UserID: userID}, nil
}

// setupLearnTestRouter creates a test Gin router with learn routes
func setupLearnTestRouter(service *mockLearnService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	SetupLearnRoutes(router.Group("/api"), service)
	return router
}

func doJSON(router *gin.Engine, method, path, userID string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set(userHeader, userID)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestLearnHandler_GetContent(t *testing.T) {
	service := &mockLearnService{
		getPlayerContentFunc: func(_ context.Context, userID, courseID, moduleID string) (*learn.PlayerContent, error) {
			if moduleID != "mod_01" {
				return nil, fmt.Errorf("failed to load module: %w", learn.ErrModuleNotFound)
			}
			return &learn.PlayerContent{
				CourseID: courseID,
				ModuleID: moduleID,
				VideoURL: "https://cdn.example.com/mod_01.mp4",
				InteractionPoints: []learn.PublicInteraction{
					{ID: "q1", Timestamp: 10, Question: "What does len() return?", Options: []string{"A count", "A list"}},
				},
				WatchedHistory: 42,
			}, nil
		},
	}
	router := setupLearnTestRouter(service)

	t.Run("Returns sanitized content", func(t *testing.T) {
		w := doJSON(router, http.MethodGet, "/api/learn/py-adv-01/mod_01", "user-1", nil)

		require.Equal(t, http.StatusOK, w.Code)
		var body map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "mod_01", body["module_id"])
		assert.Equal(t, 42.0, body["watched_history"])
		points := body["interaction_points"].([]interface{})
		require.Len(t, points, 1)
		assert.NotContains(t, points[0], "correct_option")
	})

	t.Run("Unknown module is 404", func(t *testing.T) {
		w := doJSON(router, http.MethodGet, "/api/learn/py-adv-01/mod_99", "user-1", nil)

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Contains(t, w.Body.String(), "module_not_found")
	})

	t.Run("Missing user is 401", func(t *testing.T) {
		w := doJSON(router, http.MethodGet, "/api/learn/py-adv-01/mod_01", "", nil)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		var resp ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "missing_user", resp.Error)
		assert.Equal(t, playback.ErrMissingUser.Error(), resp.Message)
	})
}

func TestLearnHandler_ValidateAnswer(t *testing.T) {
	var gotOption string
	service := &mockLearnService{
		validateAnswerFunc: func(_ context.Context, _, _, interactionID, option string) (*learn.AnswerResult, error) {
			gotOption = option
			if interactionID == "missing" {
				return nil, learn.ErrInteractionNotFound
			}
			return &learn.AnswerResult{IsCorrect: true, Feedback: "Correct!", Action: learn.ActionContinueVideo, UpdatedXP: 10}, nil
		},
	}
	router := setupLearnTestRouter(service)

	t.Run("Correct answer", func(t *testing.T) {
		w := doJSON(router, http.MethodPost, "/api/learn/validate", "user-1", ValidateAnswerRequest{
			ModuleID: "mod_01", InteractionID: "q1", SelectedOption: "A count",
		})

		require.Equal(t, http.StatusOK, w.Code)
		var result learn.AnswerResult
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
		assert.True(t, result.IsCorrect)
		assert.Equal(t, learn.ActionContinueVideo, result.Action)
		assert.Equal(t, 10, result.UpdatedXP)
		assert.Equal(t, "A count", gotOption)
	})

	t.Run("Missing fields", func(t *testing.T) {
		w := doJSON(router, http.MethodPost, "/api/learn/validate", "user-1", map[string]string{"module_id": "mod_01"})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "invalid_request")
	})

	t.Run("Unknown interaction", func(t *testing.T) {
		w := doJSON(router, http.MethodPost, "/api/learn/validate", "user-1", ValidateAnswerRequest{
			ModuleID: "mod_01", InteractionID: "missing", SelectedOption: "A count",
		})

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Contains(t, w.Body.String(), "interaction_not_found")
	})
}

func TestLearnHandler_Heartbeat(t *testing.T) {
	var got []float64
	service := &mockLearnService{
		recordHeartbeatFunc: func(_ context.Context, _, _, _ string, timestamp float64) error {
			if timestamp < 0 {
				return learn.ErrInvalidTimestamp
			}
			got = append(got, timestamp)
			return nil
		},
	}
	router := setupLearnTestRouter(service)

	tests := []struct {
		name     string
		body     interface{}
		expected int
	}{
		{"Valid heartbeat", map[string]interface{}{"course_id": "py-adv-01", "module_id": "mod_01", "current_timestamp": 35.0}, http.StatusNoContent},
		{"Zero timestamp is valid", map[string]interface{}{"course_id": "py-adv-01", "module_id": "mod_01", "current_timestamp": 0}, http.StatusNoContent},
		{"Missing timestamp", map[string]interface{}{"course_id": "py-adv-01", "module_id": "mod_01"}, http.StatusBadRequest},
		{"Negative timestamp", map[string]interface{}{"course_id": "py-adv-01", "module_id": "mod_01", "current_timestamp": -1}, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(router, http.MethodPost, "/api/learn/heartbeat", "user-1", tt.body)
			assert.Equal(t, tt.expected, w.Code)
		})
	}
	assert.Equal(t, []float64{35, 0}, got)
}

func TestLearnHandler_CompleteModule(t *testing.T) {
	calls := 0
	service := &mockLearnService{
		completeModuleFunc: func(context.Context, string, string, string) (bool, error) {
			calls++
			return calls == 1, nil
		},
		nextModuleFunc: func(_ context.Context, _, moduleID string) (string, error) {
			if moduleID == "mod_01" {
				return "mod_02", nil
			}
			return "", nil
		},
	}
	router := setupLearnTestRouter(service)

	for _, first := range []bool{true, false} {
		w := doJSON(router, http.MethodPost, "/api/learn/py-adv-01/mod_01/complete", "user-1", nil)

		require.Equal(t, http.StatusOK, w.Code)
		var resp CompleteModuleResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.True(t, resp.Completed)
		assert.Equal(t, first, resp.NewCompletion)
		assert.Equal(t, "mod_02", resp.NextModuleID)
	}

	w := doJSON(router, http.MethodPost, "/api/learn/py-adv-01/mod_09/complete", "user-1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "next_module_id")
}

func TestLearnHandler_GetCourseProgress(t *testing.T) {
	service := &mockLearnService{
		courseProgressFunc: func(_ context.Context, userID, courseID string) (*learn.CourseProgress, error) {
			if courseID != "py-adv-01" {
				return nil, fmt.Errorf("failed to get progress: %w", learn.ErrCourseNotFound)
			}
			return &learn.CourseProgress{
				CourseID:             courseID,
				LastAccessedModuleID: "mod_02",
				LastTimestamp:        12,
				CompletedModules:     []string{"mod_01"},
				Modules: []learn.ModuleStatus{
					{ModuleID: "mod_01", Title: "Built-ins", Position: 1, Completed: true, LastTimestamp: 30},
					{ModuleID: "mod_02", Title: "Generators", Position: 2, LastTimestamp: 12},
				},
			}, nil
		},
	}
	router := setupLearnTestRouter(service)

	t.Run("Reports completed and last accessed modules", func(t *testing.T) {
		w := doJSON(router, http.MethodGet, "/api/learn/py-adv-01/progress", "user-1", nil)

		require.Equal(t, http.StatusOK, w.Code)
		var progress learn.CourseProgress
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &progress))
		assert.Equal(t, "mod_02", progress.LastAccessedModuleID)
		assert.Equal(t, []string{"mod_01"}, progress.CompletedModules)
		require.Len(t, progress.Modules, 2)
		assert.True(t, progress.Modules[0].Completed)
	})

	t.Run("Unknown course is 404", func(t *testing.T) {
		w := doJSON(router, http.MethodGet, "/api/learn/missing/progress", "user-1", nil)

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Contains(t, w.Body.String(), "course_not_found")
	})

	t.Run("Module content route still matches", func(t *testing.T) {
		w := doJSON(router, http.MethodGet, "/api/learn/py-adv-01/mod_01", "user-1", nil)
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestLearnHandler_GetStats(t *testing.T) {
	service := &mockLearnService{
		getStatsFunc: func(_ context.Context, userID string) (*models.LearnerStats, error) {
			if userID == "broken" {
				return nil, errors.New("database is locked")
			}
			return &models.LearnerStats{UserID: userID, TotalXP: 30, QuizzesCompleted: 3}, nil
		},
	}
	router := setupLearnTestRouter(service)

	w := doJSON(router, http.MethodGet, "/api/learn/stats", "user-1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var stats models.LearnerStats
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.Equal(t, 30, stats.TotalXP)

	w = doJSON(router, http.MethodGet, "/api/learn/stats", "broken", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "stats_failed")
	assert.NotContains(t, w.Body.String(), "database is locked")
}
