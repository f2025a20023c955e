// Package observability exposes the engine's Prometheus metrics.
// Collectors are package-level and registered on the default registry via
// promauto; the API server mounts /metrics when enabled in config.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ─── Session Metrics ────────────────────────────────────────────────────────

// SessionsStarted counts successfully opened mining sessions.
var SessionsStarted = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "depaym",
	Subsystem: "mining",
	Name:      "sessions_started_total",
	Help:      "Total mining sessions opened.",
})

// SessionsStopped counts sessions closed by an explicit stop.
var SessionsStopped = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "depaym",
	Subsystem: "mining",
	Name:      "sessions_stopped_total",
	Help:      "Total mining sessions closed by an explicit stop.",
})

// SessionsForceClosed counts sessions closed by the maintenance sweep
// after outliving the maximum duration.
var SessionsForceClosed = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "depaym",
	Subsystem: "mining",
	Name:      "sessions_force_closed_total",
	Help:      "Total mining sessions force-closed at the duration cap.",
})

// ActiveSessions tracks the number of currently open sessions.
var ActiveSessions = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "depaym",
	Subsystem: "mining",
	Name:      "active_sessions",
	Help:      "Number of currently open mining sessions.",
})

// CreditsClaimed accumulates DPAYM credited to balances at session close.
var CreditsClaimed = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "depaym",
	Subsystem: "mining",
	Name:      "credits_claimed_total",
	Help:      "Total DPAYM credited to balances at session close.",
})

// ─── Booster Metrics ────────────────────────────────────────────────────────

// BoosterActivations counts opened booster windows by action kind.
var BoosterActivations = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "depaym",
	Subsystem: "booster",
	Name:      "activations_total",
	Help:      "Total booster windows opened, by action kind.",
}, []string{"kind"})

// BoosterActivationsDropped counts best-effort activations that were
// dropped (full queue, missing account, store failure).
var BoosterActivationsDropped = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "depaym",
	Subsystem: "booster",
	Name:      "activations_dropped_total",
	Help:      "Total booster activations dropped instead of applied.",
})

// ─── Interaction Metrics ────────────────────────────────────────────────────

// InteractionRewards counts one-shot interaction rewards by action kind.
var InteractionRewards = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "depaym",
	Subsystem: "interactions",
	Name:      "rewards_total",
	Help:      "Total interaction rewards credited, by action kind.",
}, []string{"kind"})

// ─── Exchange Rate Metrics ──────────────────────────────────────────────────

// ExchangeRateFetches counts upstream exchange-rate fetches by outcome.
var ExchangeRateFetches = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "depaym",
	Subsystem: "exchange",
	Name:      "fetches_total",
	Help:      "Total upstream exchange-rate fetches, by outcome.",
}, []string{"outcome"})

// ExchangeRateCacheHits counts rate lookups served from the cache.
var ExchangeRateCacheHits = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "depaym",
	Subsystem: "exchange",
	Name:      "cache_hits_total",
	Help:      "Total exchange-rate lookups served from the cache.",
})
