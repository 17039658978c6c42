package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type QueueMetrics interface {
	QueueJoin(result string)
	QueueBurst(capacity int)
	FormationOutcome(outcome string)
	PhaseElapsed(phase string, elapsed time.Duration)
}

func NewMetrics(registry *prometheus.Registry) QueueMetrics {
	return setupPrometheusMetrics(registry)
}

// Noop se usa en tests y cuando no hay registry.
type Noop struct{}

func (Noop) QueueJoin(string)                   {}
func (Noop) QueueBurst(int)                     {}
func (Noop) FormationOutcome(string)            {}
func (Noop) PhaseElapsed(string, time.Duration) {}
