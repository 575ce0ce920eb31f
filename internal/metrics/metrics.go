// Package metrics provides the Prometheus collectors and the HTTP listener exposing them.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "havenhelper"

// Metrics holds every collector the bot reports.
// Each instance owns its registry so tests can create as many as they need.
type Metrics struct {
	registry *prometheus.Registry

	thanksRecorded      prometheus.Counter
	milestonesFired     *prometheus.CounterVec
	leaderboardRenders  *prometheus.CounterVec
	renderSeconds       prometheus.Histogram
	avatarFetchFailures prometheus.Counter
	interactions        *prometheus.CounterVec
}

// New creates the collectors on a fresh registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		thanksRecorded: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "thanks_recorded_total",
			Help:      "Total number of thanks appended to the ledger",
		}),
		milestonesFired: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "milestones_fired_total",
			Help:      "Total number of milestone announcements by threshold",
		}, []string{"threshold"}),
		leaderboardRenders: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "leaderboard_renders_total",
			Help:      "Total number of leaderboard images rendered by scope",
		}, []string{"scope"}),
		renderSeconds: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "leaderboard_render_seconds",
			Help:      "Leaderboard render duration in seconds, including avatar prefetch",
			Buckets:   []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		}),
		avatarFetchFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "avatar_fetch_failures_total",
			Help:      "Total number of avatar downloads that failed or could not be decoded",
		}),
		interactions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "interactions_total",
			Help:      "Total number of Discord interactions handled by kind",
		}, []string{"kind"}),
	}
}

// Registry returns the registry holding the collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ThanksRecorded counts an appended thanks.
func (m *Metrics) ThanksRecorded() {
	m.thanksRecorded.Inc()
}

// MilestoneFired counts an announced milestone.
func (m *Metrics) MilestoneFired(threshold int64) {
	m.milestonesFired.WithLabelValues(strconv.FormatInt(threshold, 10)).Inc()
}

// LeaderboardRendered counts a render and records its duration.
func (m *Metrics) LeaderboardRendered(scope string, seconds float64) {
	m.leaderboardRenders.WithLabelValues(scope).Inc()
	m.renderSeconds.Observe(seconds)
}

// AvatarFetchFailed counts an avatar that was left out of a render.
func (m *Metrics) AvatarFetchFailed() {
	m.avatarFetchFailures.Inc()
}

// Interaction counts a handled interaction.
func (m *Metrics) Interaction(kind string) {
	m.interactions.WithLabelValues(kind).Inc()
}
