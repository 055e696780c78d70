// SPDX-License-Identifier: MIT
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	breakerState = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "launchpad_breaker_state",
		Help: "Upstream breaker state (0=closed, 1=half-open, 2=open)",
	}, []string{"breaker"})

	breakerTrips = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "launchpad_breaker_trips_total",
		Help: "Transitions of an upstream breaker into the open state",
	}, []string{"breaker", "reason"}) // reason=threshold|trial_failed
)

var breakerStateValue = map[string]float64{
	"closed":    0,
	"half-open": 1,
	"open":      2,
}

// ObserveBreakerState publishes the current state of the named breaker.
// Unknown states are ignored.
func ObserveBreakerState(breaker, state string) {
	if v, ok := breakerStateValue[state]; ok {
		breakerState.WithLabelValues(breaker).Set(v)
	}
}

// CountBreakerTrip records one transition into the open state.
func CountBreakerTrip(breaker, reason string) {
	breakerTrips.WithLabelValues(breaker, reason).Inc()
}
