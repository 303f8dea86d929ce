package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stwalsh4118/classroom/internal/learn"
	"github.com/stwalsh4118/classroom/internal/logger"
	"github.com/stwalsh4118/classroom/internal/middleware"
	"github.com/stwalsh4118/classroom/internal/playback"
	"github.com/stwalsh4118/classroom/internal/player"
)

const userHeader = middleware.UserHeader

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// requireUser reads the learner identity or writes a 401 and returns false
func requireUser(c *gin.Context) (string, bool) {
	userID := c.GetHeader(userHeader)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "missing_user",
			Message: playback.ErrMissingUser.Error(),
		})
		return "", false
	}
	return userID, true
}

// respondError maps service and engine errors to HTTP responses
func respondError(c *gin.Context, err error, fallbackCode string) {
	var contentErr *player.ContentError
	switch {
	case errors.As(err, &contentErr):
		status := http.StatusUnprocessableEntity
		switch contentErr.Reason {
		case player.ReasonMissingModule:
			status = http.StatusNotFound
		case player.ReasonLoadFailed:
			status = http.StatusBadGateway
		}
		c.JSON(status, ErrorResponse{Error: contentErr.Reason.String(), Message: contentErr.Message})
	case learn.IsCourseNotFound(err):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "course_not_found", Message: err.Error()})
	case learn.IsModuleNotFound(err):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "module_not_found", Message: err.Error()})
	case learn.IsInteractionNotFound(err):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "interaction_not_found", Message: err.Error()})
	case learn.IsMissingVideo(err):
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: "missing_video", Message: err.Error()})
	case learn.IsDuplicateID(err):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "duplicate_id", Message: err.Error()})
	case learn.IsInvalidDraft(err):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid_content", Message: err.Error()})
	case learn.IsInvalidTimestamp(err):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid_timestamp", Message: err.Error()})
	case playback.IsSessionNotFound(err):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "session_not_found", Message: err.Error()})
	case playback.IsUnknownEvent(err):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "unknown_event", Message: err.Error()})
	case errors.Is(err, player.ErrUnknownOption):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "unknown_option", Message: err.Error()})
	case errors.Is(err, player.ErrQuizActive):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "quiz_active", Message: err.Error()})
	case errors.Is(err, player.ErrNoActiveQuiz):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "no_active_quiz", Message: err.Error()})
	case errors.Is(err, player.ErrNotMounted):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "not_mounted", Message: err.Error()})
	case errors.Is(err, playback.ErrManagerStopped):
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "shutting_down", Message: err.Error()})
	default:
		logger.Log.Error().
			Err(err).
			Str("path", c.Request.URL.Path).
			Msg("Request failed")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: fallbackCode, Message: "Internal server error"})
	}
}
