// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "votematch"

// Oracle outcomes
const (
	OutcomeOK          = "ok"
	OutcomeUnavailable = "unavailable"
	OutcomeMalformed   = "malformed"
)

// Reasons a voter is skipped during reconciliation
const (
	SkipNoPreference = "no_preference"
	SkipInvalid      = "invalid_preference"
	SkipRetracted    = "retracted"
	SkipAlreadyVoted = "already_voted"
	SkipNoMatch      = "no_match"
	SkipInconsistent = "inconsistent"
	SkipWriteFailed  = "write_failed"
)

// Metrics holds the service's Prometheus collectors. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	VotesRecorded     *prometheus.CounterVec
	VotesRetracted    prometheus.Counter
	OracleRequests    *prometheus.CounterVec
	OracleLatency     prometheus.Histogram
	ReconcileDuration prometheus.Histogram
	VotersSkipped     *prometheus.CounterVec
	Inconsistencies   prometheus.Counter
}

// New creates and registers all collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		VotesRecorded: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "votes_recorded_total",
			Help:      "Votes recorded, by source (auto, manual, repair).",
		}, []string{"source"}),
		VotesRetracted: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "votes_retracted_total",
			Help:      "Votes removed by voters.",
		}),
		OracleRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "oracle",
			Name:      "requests_total",
			Help:      "Scoring oracle calls, by outcome.",
		}, []string{"outcome"}),
		OracleLatency: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "oracle",
			Name:      "request_duration_seconds",
			Help:      "Scoring oracle call latency.",
			Buckets:   []float64{0.25, 0.5, 1, 2, 4, 8, 15, 30},
		}),
		ReconcileDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "reconcile",
			Name:      "pass_duration_seconds",
			Help:      "Duration of one reconciliation pass over the voter population.",
			Buckets:   prometheus.DefBuckets,
		}),
		VotersSkipped: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "reconcile",
			Name:      "voters_skipped_total",
			Help:      "Voters not matched during reconciliation, by reason.",
		}, []string{"reason"}),
		Inconsistencies: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "inconsistent_votes_total",
			Help:      "Votes found on one side only.",
		}),
	}
}

func (m *Metrics) VoteRecorded(source string) {
	if m == nil {
		return
	}
	m.VotesRecorded.WithLabelValues(source).Inc()
}

func (m *Metrics) VoteRetracted() {
	if m == nil {
		return
	}
	m.VotesRetracted.Inc()
}

// OracleRequest records one oracle call. A zero elapsed skips the latency
// observation (the call never went out).
func (m *Metrics) OracleRequest(outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.OracleRequests.WithLabelValues(outcome).Inc()
	if elapsed > 0 {
		m.OracleLatency.Observe(elapsed.Seconds())
	}
}

func (m *Metrics) ReconcilePass(elapsed time.Duration) {
	if m == nil {
		return
	}
	m.ReconcileDuration.Observe(elapsed.Seconds())
}

func (m *Metrics) VoterSkipped(reason string) {
	if m == nil {
		return
	}
	m.VotersSkipped.WithLabelValues(reason).Inc()
}

func (m *Metrics) InconsistencyFound() {
	if m == nil {
		return
	}
	m.Inconsistencies.Inc()
}
