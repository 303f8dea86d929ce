//go:build integration
// +build integration

package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/stwalsh4118/classroom/internal/api"
	"github.com/stwalsh4118/classroom/internal/db"
	"github.com/stwalsh4118/classroom/internal/learn"
	"github.com/stwalsh4118/classroom/internal/models"
	"github.com/stwalsh4118/classroom/internal/playback"
	"github.com/stwalsh4118/classroom/internal/player"
)

const testUser = "learner-1"

// setupTestDB creates a temp file database with migrations applied
func setupTestDB(t *testing.T) (*db.DB, *db.Repositories, func()) {
	t.Helper()

	database, err := db.New(db.Options{Path: filepath.Join(t.TempDir(), "integration.db"), EnableWAL: true})
	require.NoError(t, err, "Failed to create test database")

	sqlDB, err := database.GetSQLDB()
	require.NoError(t, err, "Failed to get SQL DB")

	// Resolve migrations relative to this file so tests work from any working directory
	_, filename, _, ok := runtime.Caller(0)
	require.True(t, ok, "Failed to get current file path")

	testDir := filepath.Dir(filename)
	rootDir := filepath.Dir(filepath.Dir(testDir))
	migrationsPath := "file://" + filepath.Join(rootDir, "migrations")

	_, err = db.RunMigrations(sqlDB, migrationsPath)
	require.NoError(t, err, "Failed to run migrations")

	repos := db.NewRepositories(database)

	cleanup := func() {
		_ = database.Close()
	}

	return database, repos, cleanup
}

// seedCourse creates a course with one module carrying a single checkpoint at 10s
func seedCourse(t *testing.T, repos *db.Repositories) {
	t.Helper()
	ctx := context.Background()

	require.NoError(t, repos.Courses.Create(ctx, models.NewCourse("py-adv-01", "Advanced Python", "instructor-1")))
	require.NoError(t, repos.Modules.Create(ctx, models.NewModule("mod_01", "py-adv-01", "Built-in functions", 1, "https://cdn.example.com/mod_01.mp4")))
	require.NoError(t, repos.Interactions.Create(ctx, &models.InteractionPoint{
		ID:               "q1",
		ModuleID:         "mod_01",
		TimestampSeconds: 10,
		Question:         "What does len() return?",
		Options:          []string{"A count", "A list", "Nothing"},
		CorrectOption:    "A count",
		Feedback:         "len() returns the number of items.",
	}))
}

// setupTestRouter wires the learn service and a playback manager into a Gin router
func setupTestRouter(database *db.DB, repos *db.Repositories) (*gin.Engine, *learn.Service, *playback.Manager) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(gin.Recovery())

	service := learn.NewService(database, repos, learn.Config{XPPerCorrectAnswer: 10})
	manager := playback.NewManager(service, playback.Config{
		Player: player.Config{
			SeekWarningWindow: 50 * time.Millisecond,
			FeedbackDelay:     50 * time.Millisecond,
		},
	})

	apiGroup := router.Group("/api")
	api.SetupHealthRoutes(apiGroup, database, manager)
	api.SetupLearnRoutes(apiGroup, service)
	api.SetupInstructorRoutes(apiGroup, service)
	api.SetupPlayerRoutes(apiGroup, manager)

	return router, service, manager
}

// doRequest sends a JSON request as the test learner
func doRequest(t *testing.T, router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", testUser)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// decodeResult decodes a session response body
func decodeResult(t *testing.T, w *httptest.ResponseRecorder) playback.Result {
	t.Helper()

	var result playback.Result
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result), w.Body.String())
	return result
}
