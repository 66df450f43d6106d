package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Submission outcomes
const (
	outcomeSuccess = "success"
	outcomeInvalid = "invalid"
	outcomeError   = "error"
)

var (
	submissionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "risk_submissions_total",
			Help: "Submissions processed, by outcome.",
		},
		[]string{"outcome"},
	)

	fieldChangesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "risk_schema_field_changes_total",
			Help: "Fields created, updated and soft-deleted by schema saves.",
		},
		[]string{"change"},
	)

	schemaCacheHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "risk_schema_cache_hits_total",
		Help: "Schema lookups served from the in-process cache.",
	})
	schemaCacheMissesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "risk_schema_cache_misses_total",
		Help: "Schema lookups that went to the store.",
	})
)
