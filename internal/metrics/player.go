// Package metrics exposes Prometheus instrumentation for the player engine
// and the playback session manager.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SeeksRejectedTotal counts forward seeks clamped by the seek guard.
	SeeksRejectedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "classroom_player_seeks_rejected_total",
		Help: "Forward seeks past the furthest watched position, by input source",
	}, []string{"source"})

	// QuizActivationsTotal counts checkpoints that paused playback.
	QuizActivationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "classroom_player_quiz_activations_total",
		Help: "Interaction checkpoints that gated playback",
	})

	// QuizSubmissionsTotal counts settled answer submissions by outcome.
	QuizSubmissionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "classroom_player_quiz_submissions_total",
		Help: "Answer submissions by outcome (correct, incorrect, error)",
	}, []string{"outcome"})

	// StaleResultsTotal counts validation results discarded because their quiz is gone.
	StaleResultsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "classroom_player_stale_results_total",
		Help: "Validation results discarded after a module switch or superseded attempt",
	})

	// ProgressReportsTotal counts calls to the progress sink.
	ProgressReportsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "classroom_progress_reports_total",
		Help: "Progress sink calls by kind (heartbeat, complete) and result",
	}, []string{"kind", "result"})
)

// Submission outcomes
const (
	OutcomeCorrect   = "correct"
	OutcomeIncorrect = "incorrect"
	OutcomeError     = "error"
)

// IncSeekRejected records a clamped seek.
func IncSeekRejected(source string) {
	SeeksRejectedTotal.WithLabelValues(source).Inc()
}

// IncSubmission records a settled submission.
func IncSubmission(outcome string) {
	QuizSubmissionsTotal.WithLabelValues(outcome).Inc()
}

// IncProgressReport records a progress sink call outcome.
func IncProgressReport(kind string, success bool) {
	result := "failure"
	if success {
		result = "success"
	}
	ProgressReportsTotal.WithLabelValues(kind, result).Inc()
}
