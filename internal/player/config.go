package player

import "time"

const (
	defaultSeekTolerance     = 2.0
	defaultSeekWarningWindow = 2 * time.Second
	defaultFeedbackDelay     = 1500 * time.Millisecond
	defaultReportEvery       = 5
	defaultReportTimeout     = 5 * time.Second
)

// Config holds engine tuning values
type Config struct {
	// SeekTolerance is how far (seconds) a native position report may run
	// ahead of the furthest watched point before it is treated as a seek.
	SeekTolerance float64

	// SeekWarningWindow is how long the "seek forward disabled" warning stays up.
	SeekWarningWindow time.Duration

	// FeedbackDelay is how long a correct verdict is displayed before playback resumes.
	FeedbackDelay time.Duration

	// ReportEvery is the progress report cadence in whole seconds of position.
	ReportEvery int

	// ReportTimeout bounds a single call to the progress sink.
	ReportTimeout time.Duration
}

// DefaultConfig returns the engine defaults
func DefaultConfig() Config {
	return Config{
		SeekTolerance:     defaultSeekTolerance,
		SeekWarningWindow: defaultSeekWarningWindow,
		FeedbackDelay:     defaultFeedbackDelay,
		ReportEvery:       defaultReportEvery,
		ReportTimeout:     defaultReportTimeout,
	}
}

// withDefaults fills zero values with defaults
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.SeekTolerance <= 0 {
		c.SeekTolerance = d.SeekTolerance
	}
	if c.SeekWarningWindow <= 0 {
		c.SeekWarningWindow = d.SeekWarningWindow
	}
	if c.FeedbackDelay <= 0 {
		c.FeedbackDelay = d.FeedbackDelay
	}
	if c.ReportEvery <= 0 {
		c.ReportEvery = d.ReportEvery
	}
	if c.ReportTimeout <= 0 {
		c.ReportTimeout = d.ReportTimeout
	}
	return c
}
