// Package metrics declares the process-wide Prometheus collectors, registered on the default registry.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "stamp_indexer"

var (
	// Webhook metrics
	WebhookRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "webhook_requests_total",
			Help:      "Total number of chainhook webhook requests",
		},
		[]string{"route", "outcome"},
	)

	WebhookCallsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "webhook_calls_processed_total",
			Help:      "Total number of contract calls processed from webhooks",
		},
		[]string{"route"},
	)

	// Ledger metrics
	LedgerRecordsAppended = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ledger_records_appended_total",
			Help:      "Total number of records appended to the event ledger",
		},
		[]string{"kind"},
	)

	LedgerRecordsDuplicated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ledger_records_duplicated_total",
			Help:      "Total number of redelivered records dropped by the event ledger",
		},
		[]string{"kind"},
	)

	// Faucet metrics
	FaucetClaims = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "faucet_claims_total",
			Help:      "Total number of faucet claims",
		},
		[]string{"outcome"},
	)

	FaucetClaimDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "faucet_claim_duration_seconds",
			Help:      "Duration of successful faucet claims, including signing and broadcast",
			Buckets:   prometheus.DefBuckets,
		},
	)

	FaucetCooldownEntries = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "faucet_cooldown_entries",
			Help:      "Number of live cooldown entries held in process memory",
		},
	)

	// Outbound metrics
	UpstreamRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_requests_total",
			Help:      "Total number of requests to upstream Stacks and chainhook APIs",
		},
		[]string{"service", "operation", "status"},
	)
)

// Handler serves the default registry in the Prometheus exposition format.
func Handler() http.Handler {
	return promhttp.Handler()
}
