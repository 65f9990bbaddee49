// Package metrics holds the Prometheus instruments exported at /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	CreditsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gestock_credits_created_total",
		Help: "Credits successfully created.",
	})

	PaymentsRecorded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gestock_payments_recorded_total",
		Help: "Payments appended to credits.",
	})

	CreditsDeleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gestock_credits_deleted_total",
		Help: "Credits deleted (write-offs included).",
	})

	SalesRecorded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gestock_sales_recorded_total",
		Help: "Direct sales recorded.",
	})

	SequenceCommits = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gestock_sequence_commits_total",
		Help: "Document numbers committed, by kind.",
	}, []string{"kind"})

	StockWarnings = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gestock_stock_warnings_total",
		Help: "Credit or sale attempts that over-requested available stock.",
	})

	PartialCommits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gestock_partial_commits_total",
		Help: "Credit writes whose stock deduction failed and needs manual reconciliation.",
	})

	CacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gestock_cache_hits_total",
		Help: "Read-cache hits across ledger and sales views.",
	})

	CacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gestock_cache_misses_total",
		Help: "Read-cache misses across ledger and sales views.",
	})
)
