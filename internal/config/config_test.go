package config

import (
	"testing"
	"time"
)

func TestConfigDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	// Test server defaults
	if cfg.Server.Port != defaultServerPort {
		t.Errorf("Server.Port = %d, want %d", cfg.Server.Port, defaultServerPort)
	}
	if cfg.Server.Host != defaultServerHost {
		t.Errorf("Server.Host = %s, want %s", cfg.Server.Host, defaultServerHost)
	}

	// Test database defaults
	if cfg.Database.Path != defaultDatabasePath {
		t.Errorf("Database.Path = %s, want %s", cfg.Database.Path, defaultDatabasePath)
	}
	if cfg.Database.EnableWAL != defaultDatabaseEnableWAL {
		t.Errorf("Database.EnableWAL = %v, want %v", cfg.Database.EnableWAL, defaultDatabaseEnableWAL)
	}
	if cfg.Database.MigrationsPath != defaultMigrationsPath {
		t.Errorf("Database.MigrationsPath = %s, want %s", cfg.Database.MigrationsPath, defaultMigrationsPath)
	}

	// Test logging defaults
	if cfg.Logging.Level != defaultLogLevel {
		t.Errorf("Logging.Level = %s, want %s", cfg.Logging.Level, defaultLogLevel)
	}
	if cfg.Logging.Pretty != defaultLogPretty {
		t.Errorf("Logging.Pretty = %v, want %v", cfg.Logging.Pretty, defaultLogPretty)
	}

	// Test player defaults
	if cfg.Player.SeekTolerance != defaultSeekTolerance {
		t.Errorf("Player.SeekTolerance = %v, want %v", cfg.Player.SeekTolerance, defaultSeekTolerance)
	}
	if cfg.Player.SeekWarningWindow != defaultSeekWarningWindow {
		t.Errorf("Player.SeekWarningWindow = %v, want %v", cfg.Player.SeekWarningWindow, defaultSeekWarningWindow)
	}
	if cfg.Player.FeedbackDelay != defaultFeedbackDelay {
		t.Errorf("Player.FeedbackDelay = %v, want %v", cfg.Player.FeedbackDelay, defaultFeedbackDelay)
	}
	if cfg.Player.ReportEvery != defaultReportEvery {
		t.Errorf("Player.ReportEvery = %d, want %d", cfg.Player.ReportEvery, defaultReportEvery)
	}

	// Test session and progress defaults
	if cfg.Sessions.IdleTimeout != defaultSessionIdleTimeout {
		t.Errorf("Sessions.IdleTimeout = %v, want %v", cfg.Sessions.IdleTimeout, defaultSessionIdleTimeout)
	}
	if cfg.Sessions.CleanupInterval != defaultSessionCleanupInterval {
		t.Errorf("Sessions.CleanupInterval = %v, want %v", cfg.Sessions.CleanupInterval, defaultSessionCleanupInterval)
	}
	if cfg.Progress.ReportTimeout != defaultProgressReportTimeout {
		t.Errorf("Progress.ReportTimeout = %v, want %v", cfg.Progress.ReportTimeout, defaultProgressReportTimeout)
	}
	if cfg.Progress.BreakerThreshold != defaultBreakerThreshold {
		t.Errorf("Progress.BreakerThreshold = %d, want %d", cfg.Progress.BreakerThreshold, defaultBreakerThreshold)
	}
	if cfg.Progress.BreakerReset != defaultBreakerReset {
		t.Errorf("Progress.BreakerReset = %v, want %v", cfg.Progress.BreakerReset, defaultBreakerReset)
	}

	// Test learn defaults
	if cfg.Learn.XPPerCorrectAnswer != defaultXPPerCorrectAnswer {
		t.Errorf("Learn.XPPerCorrectAnswer = %d, want %d", cfg.Learn.XPPerCorrectAnswer, defaultXPPerCorrectAnswer)
	}
}

// validConfig returns a configuration that passes validation
func validConfig() Config {
	return Config{
		Server: ServerConfig{
			Port:         8080,
			Host:         "0.0.0.0",
			ReadTimeout:  defaultReadTimeout,
			WriteTimeout: defaultWriteTimeout,
		},
		Database: DatabaseConfig{
			Path:              "./data/classroom.db",
			ConnectionTimeout: defaultDatabaseConnectionTimeout,
			EnableWAL:         true,
			MigrationsPath:    defaultMigrationsPath,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Pretty: false,
		},
		Player: PlayerConfig{
			SeekTolerance:     2,
			SeekWarningWindow: 2 * time.Second,
			FeedbackDelay:     1500 * time.Millisecond,
			ReportEvery:       5,
		},
		Sessions: SessionsConfig{
			IdleTimeout:     30 * time.Minute,
			CleanupInterval: time.Minute,
		},
		Progress: ProgressConfig{
			ReportTimeout:    5 * time.Second,
			BreakerThreshold: 5,
			BreakerReset:     30 * time.Second,
		},
		Learn: LearnConfig{
			XPPerCorrectAnswer: 10,
		},
	}
}

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{
			name:    "valid config",
			mutate:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:    "invalid server port (too low)",
			mutate:  func(c *Config) { c.Server.Port = 0 },
			wantErr: true,
		},
		{
			name:    "invalid server port (too high)",
			mutate:  func(c *Config) { c.Server.Port = 70000 },
			wantErr: true,
		},
		{
			name:    "invalid log level",
			mutate:  func(c *Config) { c.Logging.Level = "invalid" },
			wantErr: true,
		},
		{
			name:    "missing migrations path",
			mutate:  func(c *Config) { c.Database.MigrationsPath = "" },
			wantErr: true,
		},
		{
			name:    "zero seek tolerance",
			mutate:  func(c *Config) { c.Player.SeekTolerance = 0 },
			wantErr: true,
		},
		{
			name:    "zero seek warning window",
			mutate:  func(c *Config) { c.Player.SeekWarningWindow = 0 },
			wantErr: true,
		},
		{
			name:    "feedback delay can be zero",
			mutate:  func(c *Config) { c.Player.FeedbackDelay = 0 },
			wantErr: false,
		},
		{
			name:    "negative feedback delay",
			mutate:  func(c *Config) { c.Player.FeedbackDelay = -time.Second },
			wantErr: true,
		},
		{
			name:    "invalid report cadence",
			mutate:  func(c *Config) { c.Player.ReportEvery = 0 },
			wantErr: true,
		},
		{
			name:    "invalid session idle timeout",
			mutate:  func(c *Config) { c.Sessions.IdleTimeout = 0 },
			wantErr: true,
		},
		{
			name:    "invalid session cleanup interval",
			mutate:  func(c *Config) { c.Sessions.CleanupInterval = 0 },
			wantErr: true,
		},
		{
			name:    "invalid breaker threshold",
			mutate:  func(c *Config) { c.Progress.BreakerThreshold = 0 },
			wantErr: true,
		},
		{
			name:    "invalid progress report timeout",
			mutate:  func(c *Config) { c.Progress.ReportTimeout = 0 },
			wantErr: true,
		},
		{
			name:    "xp can be zero",
			mutate:  func(c *Config) { c.Learn.XPPerCorrectAnswer = 0 },
			wantErr: false,
		},
		{
			name:    "negative xp",
			mutate:  func(c *Config) { c.Learn.XPPerCorrectAnswer = -1 },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestPlaybackConfigEnvVars(t *testing.T) {
	t.Setenv("CLASSROOM_PLAYER_SEEKTOLERANCE", "3.5")
	t.Setenv("CLASSROOM_PLAYER_FEEDBACKDELAY", "750ms")
	t.Setenv("CLASSROOM_PLAYER_REPORTEVERY", "10")
	t.Setenv("CLASSROOM_SESSIONS_IDLETIMEOUT", "10m")
	t.Setenv("CLASSROOM_PROGRESS_BREAKERTHRESHOLD", "3")
	t.Setenv("CLASSROOM_LEARN_XPPERCORRECTANSWER", "25")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Player.SeekTolerance != 3.5 {
		t.Errorf("Player.SeekTolerance = %v, want 3.5", cfg.Player.SeekTolerance)
	}
	if cfg.Player.FeedbackDelay != 750*time.Millisecond {
		t.Errorf("Player.FeedbackDelay = %v, want 750ms", cfg.Player.FeedbackDelay)
	}
	if cfg.Player.ReportEvery != 10 {
		t.Errorf("Player.ReportEvery = %d, want 10", cfg.Player.ReportEvery)
	}
	if cfg.Sessions.IdleTimeout != 10*time.Minute {
		t.Errorf("Sessions.IdleTimeout = %v, want 10m", cfg.Sessions.IdleTimeout)
	}
	if cfg.Progress.BreakerThreshold != 3 {
		t.Errorf("Progress.BreakerThreshold = %d, want 3", cfg.Progress.BreakerThreshold)
	}
	if cfg.Learn.XPPerCorrectAnswer != 25 {
		t.Errorf("Learn.XPPerCorrectAnswer = %d, want 25", cfg.Learn.XPPerCorrectAnswer)
	}
}

func TestLoadRejectsInvalidEnv(t *testing.T) {
	t.Setenv("CLASSROOM_LOGGING_LEVEL", "verbose")

	if _, err := Load(); err == nil {
		t.Error("Load() expected error for invalid log level")
	}
}

func TestContains(t *testing.T) {
	tests := []struct {
		name  string
		slice []string
		item  string
		want  bool
	}{
		{
			name:  "item exists",
			slice: []string{"one", "two", "three"},
			item:  "two",
			want:  true,
		},
		{
			name:  "item does not exist",
			slice: []string{"one", "two", "three"},
			item:  "four",
			want:  false,
		},
		{
			name:  "empty slice",
			slice: []string{},
			item:  "one",
			want:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := contains(tt.slice, tt.item)
			if got != tt.want {
				t.Errorf("contains() = %v, want %v", got, tt.want)
			}
		})
	}
}
