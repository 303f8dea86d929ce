// Package config provides configuration management using Viper.
// It loads configuration from environment variables, .env files, and config files.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	defaultServerPort                = 8080
	defaultServerHost                = "0.0.0.0"
	defaultReadTimeout               = 30 * time.Second
	defaultWriteTimeout              = 30 * time.Second
	defaultDatabasePath              = "./data/classroom.db"
	defaultDatabaseConnectionTimeout = 5 * time.Second
	defaultDatabaseEnableWAL         = true
	defaultMigrationsPath            = "file://migrations"
	defaultLogLevel                  = "info"
	defaultLogPretty                 = false
	defaultSeekTolerance             = 2.0
	defaultSeekWarningWindow         = 2 * time.Second
	defaultFeedbackDelay             = 1500 * time.Millisecond
	defaultReportEvery               = 5
	defaultSessionIdleTimeout        = 30 * time.Minute
	defaultSessionCleanupInterval    = time.Minute
	defaultProgressReportTimeout     = 5 * time.Second
	defaultBreakerThreshold          = 5
	defaultBreakerReset              = 30 * time.Second
	defaultXPPerCorrectAnswer        = 10
	envPrefix                        = "CLASSROOM"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Logging  LoggingConfig
	Player   PlayerConfig
	Sessions SessionsConfig
	Progress ProgressConfig
	Learn    LearnConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port         int
	Host         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DatabaseConfig holds database connection configuration
type DatabaseConfig struct {
	Path              string
	ConnectionTimeout time.Duration
	EnableWAL         bool
	MigrationsPath    string
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string
	Pretty bool
}

// PlayerConfig holds guarded playback tuning
type PlayerConfig struct {
	SeekTolerance     float64       // Seconds a native report may run ahead of the furthest watched point
	SeekWarningWindow time.Duration // How long the seek warning stays visible
	FeedbackDelay     time.Duration // How long a correct answer is shown before playback resumes
	ReportEvery       int           // Progress report cadence in whole seconds
}

// SessionsConfig holds playback session lifecycle settings
type SessionsConfig struct {
	IdleTimeout     time.Duration
	CleanupInterval time.Duration
}

// ProgressConfig holds progress persistence settings
type ProgressConfig struct {
	ReportTimeout    time.Duration
	BreakerThreshold int
	BreakerReset     time.Duration
}

// LearnConfig holds learning backend settings
type LearnConfig struct {
	XPPerCorrectAnswer int
}

// Load reads configuration from .env file, config files, environment variables, and defaults
func Load() (*Config, error) {
	// .env files are optional in production and CI where env vars are set directly
	_ = godotenv.Load() // nolint:errcheck // .env file is optional

	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/classroom")

	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
		// Config file not found is OK, we'll use defaults and env vars
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults configures default values for all configuration options
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", defaultServerPort)
	v.SetDefault("server.host", defaultServerHost)
	v.SetDefault("server.readtimeout", defaultReadTimeout)
	v.SetDefault("server.writetimeout", defaultWriteTimeout)

	// Database defaults
	v.SetDefault("database.path", defaultDatabasePath)
	v.SetDefault("database.connectiontimeout", defaultDatabaseConnectionTimeout)
	v.SetDefault("database.enablewal", defaultDatabaseEnableWAL)
	v.SetDefault("database.migrationspath", defaultMigrationsPath)

	// Logging defaults
	v.SetDefault("logging.level", defaultLogLevel)
	v.SetDefault("logging.pretty", defaultLogPretty)

	// Player defaults
	v.SetDefault("player.seektolerance", defaultSeekTolerance)
	v.SetDefault("player.seekwarningwindow", defaultSeekWarningWindow)
	v.SetDefault("player.feedbackdelay", defaultFeedbackDelay)
	v.SetDefault("player.reportevery", defaultReportEvery)

	// Session defaults
	v.SetDefault("sessions.idletimeout", defaultSessionIdleTimeout)
	v.SetDefault("sessions.cleanupinterval", defaultSessionCleanupInterval)

	// Progress defaults
	v.SetDefault("progress.reporttimeout", defaultProgressReportTimeout)
	v.SetDefault("progress.breakerthreshold", defaultBreakerThreshold)
	v.SetDefault("progress.breakerreset", defaultBreakerReset)

	// Learn defaults
	v.SetDefault("learn.xppercorrectanswer", defaultXPPerCorrectAnswer)
}

// Validate checks that configuration values are valid
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d (must be between 1 and 65535)", c.Server.Port)
	}

	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("invalid read timeout: %v (must be > 0)", c.Server.ReadTimeout)
	}
	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("invalid write timeout: %v (must be > 0)", c.Server.WriteTimeout)
	}
	if c.Database.ConnectionTimeout <= 0 {
		return fmt.Errorf("invalid database connection timeout: %v (must be > 0)", c.Database.ConnectionTimeout)
	}
	if c.Database.MigrationsPath == "" {
		return errors.New("database migrations path is required")
	}

	validLevels := []string{"debug", "info", "warn", "error"}
	if !contains(validLevels, c.Logging.Level) {
		return fmt.Errorf("invalid log level: %s (must be one of: %s)", c.Logging.Level, strings.Join(validLevels, ", "))
	}

	if c.Player.SeekTolerance <= 0 {
		return fmt.Errorf("invalid seek tolerance: %v (must be > 0)", c.Player.SeekTolerance)
	}
	if c.Player.SeekWarningWindow <= 0 {
		return fmt.Errorf("invalid seek warning window: %v (must be > 0)", c.Player.SeekWarningWindow)
	}
	if c.Player.FeedbackDelay < 0 {
		return fmt.Errorf("invalid feedback delay: %v (must be >= 0)", c.Player.FeedbackDelay)
	}
	if c.Player.ReportEvery < 1 {
		return fmt.Errorf("invalid report cadence: %d (must be >= 1)", c.Player.ReportEvery)
	}

	if c.Sessions.IdleTimeout <= 0 {
		return fmt.Errorf("invalid session idle timeout: %v (must be > 0)", c.Sessions.IdleTimeout)
	}
	if c.Sessions.CleanupInterval <= 0 {
		return fmt.Errorf("invalid session cleanup interval: %v (must be > 0)", c.Sessions.CleanupInterval)
	}

	if c.Progress.ReportTimeout <= 0 {
		return fmt.Errorf("invalid progress report timeout: %v (must be > 0)", c.Progress.ReportTimeout)
	}
	if c.Progress.BreakerThreshold < 1 {
		return fmt.Errorf("invalid breaker threshold: %d (must be >= 1)", c.Progress.BreakerThreshold)
	}
	if c.Progress.BreakerReset <= 0 {
		return fmt.Errorf("invalid breaker reset: %v (must be > 0)", c.Progress.BreakerReset)
	}

	if c.Learn.XPPerCorrectAnswer < 0 {
		return fmt.Errorf("invalid xp per correct answer: %d (must be >= 0)", c.Learn.XPPerCorrectAnswer)
	}

	return nil
}

// contains checks if a string slice contains a specific value
func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
