package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ActiveSessions tracks open playback sessions.
	ActiveSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "classroom_playback_sessions_active",
		Help: "Playback sessions currently open",
	})

	// SessionsEvictedTotal counts sessions closed by the idle cleanup loop.
	SessionsEvictedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "classroom_playback_sessions_evicted_total",
		Help: "Playback sessions closed after exceeding the idle timeout",
	})

	// BreakerTripsTotal counts circuit breaker transitions to open.
	BreakerTripsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "classroom_circuit_breaker_trips_total",
		Help: "Times a circuit breaker opened, by breaker name",
	}, []string{"breaker"})
)
