package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/stwalsh4118/classroom/internal/config"
	"github.com/stwalsh4118/classroom/internal/db"
	"github.com/stwalsh4118/classroom/internal/logger"
	"github.com/stwalsh4118/classroom/internal/server"
)

func main() {
	if err := run(); err != nil {
		logger.Log.Error().Err(err).Msg("Classroom service exited with error")
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		// Logger is not configured yet
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		return err
	}

	logger.Init(logger.Options{Level: cfg.Logging.Level, Pretty: cfg.Logging.Pretty})
	logger.Log.Info().
		Str("database", cfg.Database.Path).
		Str("log_level", cfg.Logging.Level).
		Msg("Classroom playback service starting")

	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
		return fmt.Errorf("failed to create database directory: %w", err)
	}

	database, err := db.New(db.Options{
		Path:              cfg.Database.Path,
		ConnectionTimeout: cfg.Database.ConnectionTimeout,
		EnableWAL:         cfg.Database.EnableWAL,
	})
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		if err := database.Close(); err != nil {
			logger.Log.Warn().Err(err).Msg("Failed to close database")
		}
	}()

	sqlDB, err := database.GetSQLDB()
	if err != nil {
		return err
	}
	version, err := db.RunMigrations(sqlDB, cfg.Database.MigrationsPath)
	if err != nil {
		return err
	}
	logger.Log.Info().
		Str("path", cfg.Database.MigrationsPath).
		Uint("schema_version", version).
		Msg("Database migrations applied")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return server.New(cfg, database).Run(ctx)
}
