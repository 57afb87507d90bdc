package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	RateLimitAllowed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "qualikit", Name: "rate_limit_allowed_total", Help: "Number of allowed requests by limiter type."},
		[]string{"limiter"},
	)
	RateLimitRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "qualikit", Name: "rate_limit_rejected_total", Help: "Number of rejected requests by limiter type."},
		[]string{"limiter"},
	)
	TransitionsApplied = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "qualikit", Name: "document_transitions_total", Help: "Number of applied document lifecycle transitions by edge."},
		[]string{"from", "to"},
	)
	TransitionsRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "qualikit", Name: "document_transitions_rejected_total", Help: "Number of rejected transition attempts by reason."},
		[]string{"reason"},
	)
	TicketsResolved = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "qualikit", Name: "tickets_resolved_total", Help: "Number of resolved request tickets by decision."},
		[]string{"decision"},
	)
)

func RegisterCollectors(reg prometheus.Registerer) {
	reg.MustRegister(RateLimitAllowed)
	reg.MustRegister(RateLimitRejected)
	reg.MustRegister(TransitionsApplied)
	reg.MustRegister(TransitionsRejected)
	reg.MustRegister(TicketsResolved)
}
