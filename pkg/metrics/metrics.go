// Package metrics declares the service's Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequestDuration tracks request latency per method, route and status.
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "vantage_http_request_duration_seconds",
		Help:    "HTTP request latency in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})

	// KYCSubmissionsTotal counts document intake attempts by outcome.
	KYCSubmissionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vantage_kyc_submissions_total",
		Help: "KYC submissions by outcome.",
	}, []string{"outcome"})

	// KYCReviewsTotal counts applied review decisions by resulting status.
	KYCReviewsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vantage_kyc_reviews_total",
		Help: "KYC review decisions by resulting status.",
	}, []string{"status"})

	// AdminActionsTotal counts audited privileged actions by type.
	AdminActionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vantage_admin_actions_total",
		Help: "Audited privileged actions by type.",
	}, []string{"action_type"})

	// SimulationOpsTotal counts simulator operations by type and outcome.
	SimulationOpsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vantage_simulation_ops_total",
		Help: "Simulator operations by type and outcome.",
	}, []string{"type", "outcome"})

	// AuditWriteFailuresTotal counts audit appends that failed.
	AuditWriteFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "vantage_audit_write_failures_total",
		Help: "Audit log appends that failed.",
	})

	// RateLimitHitsTotal counts rejected requests per limiter scope.
	RateLimitHitsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vantage_rate_limit_hits_total",
		Help: "Requests rejected by the rate limiter.",
	}, []string{"scope"})
)
