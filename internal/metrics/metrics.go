package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "culturallm"

// Metrics holds the application collectors.
type Metrics struct {
	validations        *prometheus.CounterVec
	machineValidations *prometheus.CounterVec
	pointsAwarded      prometheus.Counter
	badgesUnlocked     *prometheus.CounterVec
	generationCalls    *prometheus.CounterVec
	generationLatency  prometheus.Histogram
	machineAnswerJobs  *prometheus.CounterVec
}

// New registers the collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		validations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "validations_total",
			Help:      "Human validations persisted, by correctness judgment.",
		}, []string{"correct"}),
		machineValidations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "machine_validations_total",
			Help:      "Machine validations produced, by answer kind.",
		}, []string{"kind"}),
		pointsAwarded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "points_awarded_total",
			Help:      "Points added to user scores.",
		}),
		badgesUnlocked: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "badges_unlocked_total",
			Help:      "Badges unlocked, by badge label.",
		}, []string{"badge"}),
		generationCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "generation_requests_total",
			Help:      "Calls to the generation service, by outcome.",
		}, []string{"outcome"}),
		generationLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "generation_request_duration_seconds",
			Help:      "Latency of generation service calls.",
			Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 30, 60, 120},
		}),
		machineAnswerJobs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "machine_answer_jobs_total",
			Help:      "Deferred machine answer jobs, by result.",
		}, []string{"result"}),
	}
	reg.MustRegister(
		m.validations,
		m.machineValidations,
		m.pointsAwarded,
		m.badgesUnlocked,
		m.generationCalls,
		m.generationLatency,
		m.machineAnswerJobs,
	)
	return m
}

// Recording methods are no-ops on a nil *Metrics.

func (m *Metrics) ValidationRecorded(correct bool) {
	if m == nil {
		return
	}
	label := "false"
	if correct {
		label = "true"
	}
	m.validations.WithLabelValues(label).Inc()
}

func (m *Metrics) MachineValidationRecorded(kind string) {
	if m == nil {
		return
	}
	m.machineValidations.WithLabelValues(kind).Inc()
}

func (m *Metrics) PointsAwarded(points int) {
	if m != nil && points > 0 {
		m.pointsAwarded.Add(float64(points))
	}
}

func (m *Metrics) BadgesUnlocked(badges []string) {
	if m == nil {
		return
	}
	for _, b := range badges {
		m.badgesUnlocked.WithLabelValues(b).Inc()
	}
}

// GenerationObserved records one generation call; outcome is "ok", "unavailable" or "error".
func (m *Metrics) GenerationObserved(outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.generationCalls.WithLabelValues(outcome).Inc()
	m.generationLatency.Observe(elapsed.Seconds())
}

// MachineAnswerJob records a deferred job result: "created", "skipped" or "failed".
func (m *Metrics) MachineAnswerJob(result string) {
	if m == nil {
		return
	}
	m.machineAnswerJobs.WithLabelValues(result).Inc()
}
