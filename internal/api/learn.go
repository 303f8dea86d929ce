package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stwalsh4118/classroom/internal/learn"
	"github.com/stwalsh4118/classroom/internal/models"
)

const learnRequestTimeout = 5 * time.Second

// learnService is the subset of learn.Service used by the handlers
type learnService interface {
	GetPlayerContent(ctx context.Context, userID, courseID, moduleID string) (*learn.PlayerContent, error)
	ValidateAnswer(ctx context.Context, userID, moduleID, interactionID, option string) (*learn.AnswerResult, error)
	RecordHeartbeat(ctx context.Context, userID, courseID, moduleID string, timestamp float64) error
	CompleteModule(ctx context.Context, userID, courseID, moduleID string) (bool, error)
	NextModule(ctx context.Context, courseID, moduleID string) (string, error)
	GetCourseProgress(ctx context.Context, userID, courseID string) (*learn.CourseProgress, error)
	GetStats(ctx context.Context, userID string) (*models.LearnerStats, error)
}

// ValidateAnswerRequest represents an answer submission for an interaction point
type ValidateAnswerRequest struct {
	ModuleID       string `json:"module_id" binding:"required"`
	InteractionID  string `json:"interaction_id" binding:"required"`
	SelectedOption string `json:"selected_option" binding:"required"`
}

// HeartbeatRequest represents a progress report from the player
type HeartbeatRequest struct {
	CourseID         string   `json:"course_id" binding:"required"`
	ModuleID         string   `json:"module_id" binding:"required"`
	CurrentTimestamp *float64 `json:"current_timestamp" binding:"required"`
}

// CompleteModuleResponse reports the outcome of a completion request
type CompleteModuleResponse struct {
	CourseID      string `json:"course_id"`
	ModuleID      string `json:"module_id"`
	Completed     bool   `json:"completed"`
	NewCompletion bool   `json:"new_completion"`
	NextModuleID  string `json:"next_module_id,omitempty"`
}

// LearnHandler handles learning backend requests
type LearnHandler struct {
	service learnService
}

// NewLearnHandler creates a new learn handler instance
func NewLearnHandler(service learnService) *LearnHandler {
	return &LearnHandler{service: service}
}

// GetContent handles GET /api/learn/:course_id/:module_id
func (h *LearnHandler) GetContent(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), learnRequestTimeout)
	defer cancel()

	content, err := h.service.GetPlayerContent(ctx, userID, c.Param("course_id"), c.Param("module_id"))
	if err != nil {
		respondError(c, err, "content_failed")
		return
	}

	c.JSON(http.StatusOK, content)
}

// ValidateAnswer handles POST /api/learn/validate
func (h *LearnHandler) ValidateAnswer(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req ValidateAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request body: " + err.Error(),
		})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), learnRequestTimeout)
	defer cancel()

	result, err := h.service.ValidateAnswer(ctx, userID, req.ModuleID, req.InteractionID, req.SelectedOption)
	if err != nil {
		respondError(c, err, "validation_failed")
		return
	}

	c.JSON(http.StatusOK, result)
}

// Heartbeat handles POST /api/learn/heartbeat
func (h *LearnHandler) Heartbeat(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req HeartbeatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request body: " + err.Error(),
		})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), learnRequestTimeout)
	defer cancel()

	if err := h.service.RecordHeartbeat(ctx, userID, req.CourseID, req.ModuleID, *req.CurrentTimestamp); err != nil {
		respondError(c, err, "heartbeat_failed")
		return
	}

	c.Status(http.StatusNoContent)
}

// CompleteModule handles POST /api/learn/:course_id/:module_id/complete
func (h *LearnHandler) CompleteModule(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	courseID := c.Param("course_id")
	moduleID := c.Param("module_id")

	ctx, cancel := context.WithTimeout(c.Request.Context(), learnRequestTimeout)
	defer cancel()

	first, err := h.service.CompleteModule(ctx, userID, courseID, moduleID)
	if err != nil {
		respondError(c, err, "complete_failed")
		return
	}

	next, err := h.service.NextModule(ctx, courseID, moduleID)
	if err != nil {
		respondError(c, err, "complete_failed")
		return
	}

	c.JSON(http.StatusOK, CompleteModuleResponse{
		CourseID:      courseID,
		ModuleID:      moduleID,
		Completed:     true,
		NewCompletion: first,
		NextModuleID:  next,
	})
}

// GetCourseProgress handles GET /api/learn/:course_id/progress
func (h *LearnHandler) GetCourseProgress(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), learnRequestTimeout)
	defer cancel()

	progress, err := h.service.GetCourseProgress(ctx, userID, c.Param("course_id"))
	if err != nil {
		respondError(c, err, "progress_failed")
		return
	}

	c.JSON(http.StatusOK, progress)
}

// GetStats handles GET /api/learn/stats
func (h *LearnHandler) GetStats(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), learnRequestTimeout)
	defer cancel()

	stats, err := h.service.GetStats(ctx, userID)
	if err != nil {
		respondError(c, err, "stats_failed")
		return
	}

	c.JSON(http.StatusOK, stats)
}

// SetupLearnRoutes registers learning backend routes
func SetupLearnRoutes(apiGroup *gin.RouterGroup, service learnService) {
	handler := NewLearnHandler(service)

	learnGroup := apiGroup.Group("/learn")
	learnGroup.GET("/stats", handler.GetStats)
	learnGroup.POST("/validate", handler.ValidateAnswer)
	learnGroup.POST("/heartbeat", handler.Heartbeat)
	learnGroup.GET("/:course_id/progress", handler.GetCourseProgress)
	learnGroup.GET("/:course_id/:module_id", handler.GetContent)
	learnGroup.POST("/:course_id/:module_id/complete", handler.CompleteModule)
}
