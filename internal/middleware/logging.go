// Package middleware provides HTTP middleware functions for request logging and processing.
package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stwalsh4118/classroom/internal/logger"
)

// UserHeader carries the learner identity set by the upstream auth proxy
const UserHeader = "X-User-ID"

// sessionParam is the route parameter naming a playback session
const sessionParam = "id"

// RequestLogger returns a Gin middleware for logging HTTP requests. Entries
// carry the matched route, the learner and the playback session when present.
// 5xx responses log at error level and 4xx at warn.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		status := c.Writer.Status()
		log := logger.For("http")

		var event *zerolog.Event
		switch {
		case status >= 500:
			event = log.Error()
		case status >= 400:
			event = log.Warn()
		default:
			event = log.Info()
		}

		event = event.
			Str("method", c.Request.Method).
			Str("route", c.FullPath()).
			Str("path", path).
			Int("status", status).
			Dur("duration", time.Since(start)).
			Str("client_ip", c.ClientIP())

		if userID := c.GetHeader(UserHeader); userID != "" {
			event = event.Str("user_id", userID)
		}
		if sessionID := c.Param(sessionParam); sessionID != "" {
			event = event.Str("session_id", sessionID)
		}
		if len(c.Errors) > 0 {
			event = event.Strs("errors", c.Errors.Errors())
		}

		event.Msg("HTTP request")
	}
}
