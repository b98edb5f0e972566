package game

import "github.com/prometheus/client_golang/prometheus"

var (
	sessionsActive = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "arcade_sessions_active",
			Help: "Live game sessions by kind",
		},
		[]string{"kind"},
	)
	roundsResolved = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "arcade_rounds_resolved_total",
			Help: "Resolved rounds/questions by game kind",
		},
		[]string{"kind"},
	)
	deliveryFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "arcade_delivery_failures_total",
			Help: "Outbound chat deliveries that failed",
		},
	)
)

func init() {
	prometheus.MustRegister(sessionsActive, roundsResolved, deliveryFailures)
}
