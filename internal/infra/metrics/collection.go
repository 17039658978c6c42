package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type prometheusMetrics struct {
	queueJoins        prometheus.CounterVec
	queueBursts       prometheus.CounterVec
	formationOutcomes prometheus.CounterVec
	phaseElapsed      prometheus.HistogramVec
}

func setupPrometheusMetrics(registry *prometheus.Registry) prometheusMetrics {
	factory := promauto.With(registry)

	queueJoins := factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "league_queue_joins_total",
			Help: "Queue join attempts by result",
		}, []string{"result"})
	queueBursts := factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "league_queue_bursts_total",
			Help: "Queues that filled up and started a formation",
		}, []string{"capacity"})
	formationOutcomes := factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "league_formation_outcomes_total",
			Help: "Match formations by final outcome",
		}, []string{"outcome"})
	phaseElapsed := factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "league_formation_phase_seconds",
			Help:    "Time spent in each formation phase",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10),
		}, []string{"phase"})

	return prometheusMetrics{
		queueJoins:        *queueJoins,
		queueBursts:       *queueBursts,
		formationOutcomes: *formationOutcomes,
		phaseElapsed:      *phaseElapsed,
	}
}

func (m prometheusMetrics) QueueJoin(result string) {
	m.queueJoins.With(prometheus.Labels{"result": result}).Inc()
}

func (m prometheusMetrics) QueueBurst(capacity int) {
	m.queueBursts.With(prometheus.Labels{"capacity": strconv.Itoa(capacity)}).Inc()
}

func (m prometheusMetrics) FormationOutcome(outcome string) {
	m.formationOutcomes.With(prometheus.Labels{"outcome": outcome}).Inc()
}

func (m prometheusMetrics) PhaseElapsed(phase string, elapsed time.Duration) {
	m.phaseElapsed.With(prometheus.Labels{"phase": phase}).Observe(elapsed.Seconds())
}
