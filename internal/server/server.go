// Package server provides the HTTP server setup and routing configuration.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stwalsh4118/classroom/internal/api"
	"github.com/stwalsh4118/classroom/internal/config"
	"github.com/stwalsh4118/classroom/internal/db"
	"github.com/stwalsh4118/classroom/internal/learn"
	"github.com/stwalsh4118/classroom/internal/logger"
	"github.com/stwalsh4118/classroom/internal/middleware"
	"github.com/stwalsh4118/classroom/internal/playback"
	"github.com/stwalsh4118/classroom/internal/player"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

// Server represents the HTTP server
type Server struct {
	config        *config.Config
	db            *db.DB
	repos         *db.Repositories
	learnService  *learn.Service
	playerManager *playback.Manager
	router        *gin.Engine
	server        *http.Server
}

// New creates a new server instance
func New(cfg *config.Config, database *db.DB) *Server {
	repos := db.NewRepositories(database)
	learnService := learn.NewService(database, repos, learn.Config{
		XPPerCorrectAnswer: cfg.Learn.XPPerCorrectAnswer,
	})
	playerManager := playback.NewManager(learnService, ManagerConfig(cfg))

	return &Server{
		config:        cfg,
		db:            database,
		repos:         repos,
		learnService:  learnService,
		playerManager: playerManager,
	}
}

// ManagerConfig maps application configuration onto the playback manager
func ManagerConfig(cfg *config.Config) playback.Config {
	return playback.Config{
		Player: player.Config{
			SeekTolerance:     cfg.Player.SeekTolerance,
			SeekWarningWindow: cfg.Player.SeekWarningWindow,
			FeedbackDelay:     cfg.Player.FeedbackDelay,
			ReportEvery:       cfg.Player.ReportEvery,
			ReportTimeout:     cfg.Progress.ReportTimeout,
		},
		IdleTimeout:      cfg.Sessions.IdleTimeout,
		CleanupInterval:  cfg.Sessions.CleanupInterval,
		BreakerThreshold: cfg.Progress.BreakerThreshold,
		BreakerReset:     cfg.Progress.BreakerReset,
	}
}

// setupRouter initializes the Gin router with middleware and routes
func (s *Server) setupRouter() {
	// Set Gin mode based on log level
	if s.config.Logging.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	s.router = gin.New()

	s.router.Use(middleware.RequestLogger()) // Custom zerolog request logger
	s.router.Use(gin.Recovery())             // Panic recovery
	s.router.Use(cors.New(corsConfig()))

	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	apiGroup := s.router.Group("/api")

	api.SetupHealthRoutes(apiGroup, s.db, s.playerManager)
	api.SetupLearnRoutes(apiGroup, s.learnService)
	api.SetupInstructorRoutes(apiGroup, s.learnService)
	api.SetupPlayerRoutes(apiGroup, s.playerManager)
}

// corsConfig allows any origin and the learner identity header
func corsConfig() cors.Config {
	cfg := cors.DefaultConfig()
	cfg.AllowAllOrigins = true
	cfg.AllowHeaders = append(cfg.AllowHeaders, middleware.UserHeader)
	return cfg
}

// prepare builds the router and HTTP server and starts the playback manager
func (s *Server) prepare() error {
	s.setupRouter()

	if err := s.playerManager.Start(); err != nil {
		return fmt.Errorf("failed to start playback manager: %w", err)
	}

	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)

	s.server = &http.Server{
		Addr:           addr,
		Handler:        s.router,
		ReadTimeout:    s.config.Server.ReadTimeout,
		WriteTimeout:   s.config.Server.WriteTimeout,
		MaxHeaderBytes: 1 << 20, // 1 MB
	}
	return nil
}

// Run serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	if err := s.prepare(); err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Log.Info().
			Str("host", s.config.Server.Host).
			Int("port", s.config.Server.Port).
			Msg("Starting HTTP server")

		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return s.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	logger.Log.Info().Msg("Shutting down server gracefully")

	// Check if server was started before attempting shutdown
	if s.server != nil {
		if err := s.server.Shutdown(ctx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}
	}

	// Stop sessions after in-flight requests have drained
	if s.playerManager != nil {
		s.playerManager.Stop()
	}

	logger.Log.Info().Msg("Server stopped")
	return nil
}
