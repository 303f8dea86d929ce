package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stwalsh4118/classroom/internal/playback"
)

// sessionManager is the subset of playback.Manager used by the handlers
type sessionManager interface {
	Open(ctx context.Context, userID, courseID, moduleID string) (*playback.Result, error)
	Get(sessionID uuid.UUID, userID string) (*playback.Result, error)
	Dispatch(sessionID uuid.UUID, userID string, ev playback.Event) (*playback.Result, error)
	SwitchModule(ctx context.Context, sessionID uuid.UUID, userID, moduleID string) (*playback.Result, error)
	Close(sessionID uuid.UUID, userID string) error
}

// OpenSessionRequest represents a request to start a playback session
type OpenSessionRequest struct {
	CourseID string `json:"course_id" binding:"required"`
	ModuleID string `json:"module_id" binding:"required"`
}

// SwitchModuleRequest represents a request to load another module into a session
type SwitchModuleRequest struct {
	ModuleID string `json:"module_id" binding:"required"`
}

// PlayerHandler handles playback session requests
type PlayerHandler struct {
	manager sessionManager
}

// NewPlayerHandler creates a new player handler instance
func NewPlayerHandler(manager sessionManager) *PlayerHandler {
	return &PlayerHandler{manager: manager}
}

// OpenSession handles POST /api/player/sessions
func (h *PlayerHandler) OpenSession(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req OpenSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request body: " + err.Error(),
		})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), learnRequestTimeout)
	defer cancel()

	result, err := h.manager.Open(ctx, userID, req.CourseID, req.ModuleID)
	if err != nil {
		respondError(c, err, "open_failed")
		return
	}

	c.JSON(http.StatusCreated, result)
}

// GetSession handles GET /api/player/sessions/:id
func (h *PlayerHandler) GetSession(c *gin.Context) {
	userID, sessionID, ok := h.sessionParams(c)
	if !ok {
		return
	}

	result, err := h.manager.Get(sessionID, userID)
	if err != nil {
		respondError(c, err, "get_failed")
		return
	}

	c.JSON(http.StatusOK, result)
}

// PostEvent handles POST /api/player/sessions/:id/events
func (h *PlayerHandler) PostEvent(c *gin.Context) {
	userID, sessionID, ok := h.sessionParams(c)
	if !ok {
		return
	}

	var ev playback.Event
	if err := c.ShouldBindJSON(&ev); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request body: " + err.Error(),
		})
		return
	}

	result, err := h.manager.Dispatch(sessionID, userID, ev)
	if err != nil {
		respondError(c, err, "event_failed")
		return
	}

	c.JSON(http.StatusOK, result)
}

// SwitchModule handles PUT /api/player/sessions/:id/module
func (h *PlayerHandler) SwitchModule(c *gin.Context) {
	userID, sessionID, ok := h.sessionParams(c)
	if !ok {
		return
	}

	var req SwitchModuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request body: " + err.Error(),
		})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), learnRequestTimeout)
	defer cancel()

	result, err := h.manager.SwitchModule(ctx, sessionID, userID, req.ModuleID)
	if err != nil {
		respondError(c, err, "switch_failed")
		return
	}

	c.JSON(http.StatusOK, result)
}

// CloseSession handles DELETE /api/player/sessions/:id
func (h *PlayerHandler) CloseSession(c *gin.Context) {
	userID, sessionID, ok := h.sessionParams(c)
	if !ok {
		return
	}

	if err := h.manager.Close(sessionID, userID); err != nil {
		respondError(c, err, "close_failed")
		return
	}

	c.Status(http.StatusNoContent)
}

// sessionParams reads the learner identity and session id, writing an error response on failure
func (h *PlayerHandler) sessionParams(c *gin.Context) (string, uuid.UUID, bool) {
	userID, ok := requireUser(c)
	if !ok {
		return "", uuid.Nil, false
	}

	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_id",
			Message: "Invalid session ID format",
		})
		return "", uuid.Nil, false
	}

	return userID, sessionID, true
}

// SetupPlayerRoutes registers playback session routes
func SetupPlayerRoutes(apiGroup *gin.RouterGroup, manager sessionManager) {
	handler := NewPlayerHandler(manager)

	sessions := apiGroup.Group("/player/sessions")
	sessions.POST("", handler.OpenSession)
	sessions.GET("/:id", handler.GetSession)
	sessions.POST("/:id/events", handler.PostEvent)
	sessions.PUT("/:id/module", handler.SwitchModule)
	sessions.DELETE("/:id", handler.CloseSession)
}
