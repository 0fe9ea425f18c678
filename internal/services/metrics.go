package services

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	outcomeOK       = "ok"
	outcomeRejected = "rejected"
	outcomeError    = "error"
)

var workflowTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "examdesk_workflow_total",
	Help: "Workflow invocations by outcome (ok, rejected by a business rule, error).",
}, []string{"workflow", "outcome"})

var workflowDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "examdesk_workflow_duration_seconds",
	Help:    "Workflow latency by outcome, transaction included.",
	Buckets: prometheus.ExponentialBuckets(0.001, 4, 8),
}, []string{"workflow", "outcome"})

func observe(workflow string, took time.Duration, err error) string {
	outcome := outcomeOK
	switch {
	case err == nil:
	case IsDomainError(err):
		outcome = outcomeRejected
	default:
		outcome = outcomeError
	}
	workflowTotal.WithLabelValues(workflow, outcome).Inc()
	workflowDuration.WithLabelValues(workflow, outcome).Observe(took.Seconds())
	return outcome
}
