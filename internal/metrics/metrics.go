// Package metrics records season lifecycle counters in Prometheus.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels.
const (
	OutcomeOK       = "ok"
	OutcomeRejected = "rejected"
	OutcomeError    = "error"
)

// Recorder holds the service's collectors.  A nil *Recorder is valid and
// records nothing.
type Recorder struct {
	registry      *prometheus.Registry
	stageRuns     *prometheus.CounterVec
	rosterChanges *prometheus.CounterVec
	scoring       *prometheus.HistogramVec
	participants  *prometheus.GaugeVec
}

// NewRecorder registers the collectors on a fresh registry.
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	r := &Recorder{
		registry: reg,
		stageRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fantasy",
			Name:      "stage_runs_total",
			Help:      "Season stage operations by stage and outcome.",
		}, []string{"stage", "outcome"}),
		rosterChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fantasy",
			Name:      "roster_changes_total",
			Help:      "Roster edit attempts by outcome.",
		}, []string{"outcome"}),
		scoring: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "fantasy",
			Name:      "show_scoring_seconds",
			Help:      "Time spent scoring one show.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"stage"}),
		participants: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "fantasy",
			Name:      "show_participants",
			Help:      "Participants scored in the most recent show of a stage.",
		}, []string{"stage"}),
	}
	reg.MustRegister(r.stageRuns, r.rosterChanges, r.scoring, r.participants,
		collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	return r
}

// StageRun counts one stage operation.
func (r *Recorder) StageRun(stage, outcome string) {
	if r == nil {
		return
	}
	r.stageRuns.WithLabelValues(stage, outcome).Inc()
}

// RosterChange counts one roster edit attempt.
func (r *Recorder) RosterChange(outcome string) {
	if r == nil {
		return
	}
	r.rosterChanges.WithLabelValues(outcome).Inc()
}

// ShowScored records scoring time and participant count for a stage.
func (r *Recorder) ShowScored(stage string, d time.Duration, participants int) {
	if r == nil {
		return
	}
	r.scoring.WithLabelValues(stage).Observe(d.Seconds())
	r.participants.WithLabelValues(stage).Set(float64(participants))
}

// Handler exposes the registry for scraping.
func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

// Registry returns the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}
