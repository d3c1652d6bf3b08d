// Package metrics exposes Prometheus instrumentation for the evaluation
// engine and host-level collectors backing the system_health metric
// source.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Run-level metrics
	EvaluationRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "alertd_evaluation_runs_total",
			Help: "Total number of evaluation runs",
		},
		[]string{"result"}, // result: ok, error
	)

	EvaluationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "alertd_evaluation_duration_seconds",
			Help:    "Wall-clock duration of a full evaluation run",
			Buckets: []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
	)

	// Per-rule metrics
	RulesEvaluatedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "alertd_rules_evaluated_total",
			Help: "Total number of rule evaluations",
		},
		[]string{"outcome"}, // outcome: ok, triggered, cooldown, unavailable, failed
	)

	RuleEvaluationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "alertd_rule_evaluation_duration_seconds",
			Help:    "Duration of a single rule evaluation",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
	)

	AlertsCreatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "alertd_alerts_created_total",
			Help: "Total number of alerts created by the trigger path",
		},
	)
)
