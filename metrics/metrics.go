// Package metrics exposes the tallying core's Prometheus instrumentation:
// counters for ballots submitted and partials accepted, a gauge-like
// counter for sessions started, and a histogram of finalize_tally latency,
// covering the worker pool described in SPEC_FULL.md §5.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "tallyvault"

var (
	// BallotsSubmitted counts accepted submit_ballot calls, labeled by
	// election id.
	BallotsSubmitted = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "ballots_submitted_total",
		Help:      "Total number of ballots accepted by submit_ballot.",
	}, []string{"election_id"})

	// SessionsStarted counts successful start_tallying calls.
	SessionsStarted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sessions_started_total",
		Help:      "Total number of tally sessions started.",
	})

	// PartialsAccepted counts accepted partial_decrypt calls, labeled by
	// election id.
	PartialsAccepted = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "partials_accepted_total",
		Help:      "Total number of partial decryptions accepted.",
	}, []string{"election_id"})

	// FinalizeLatency observes the wall-clock duration of every
	// finalize_tally call that is not an idempotent replay, including calls
	// that return early with InvalidState or InsufficientTrustees.
	FinalizeLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "finalize_tally_seconds",
		Help:      "Duration of finalize_tally calls, in seconds.",
		Buckets:   prometheus.DefBuckets,
	})
)
