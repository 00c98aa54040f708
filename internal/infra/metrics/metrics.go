// Package metrics exposes lifecycle counters to Prometheus.
package metrics

import (
	"context"
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"scholarship_admin/internal/domain/notification"
)

// Recorder counts events and scheduled job runs on its own registry.
// It implements notification.Publisher so it can sit next to the other sinks.
type Recorder struct {
	registry *prometheus.Registry

	events      *prometheus.CounterVec
	transitions *prometheus.CounterVec
	jobRuns     *prometheus.CounterVec
}

func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		events: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "scholarship",
				Subsystem: "lifecycle",
				Name:      "events_total",
				Help:      "Lifecycle events emitted after commit.",
			},
			[]string{"type"},
		),
		transitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "scholarship",
				Subsystem: "applications",
				Name:      "transitions_total",
				Help:      "Application status changes.",
			},
			[]string{"from", "to"},
		),
		jobRuns: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "scholarship",
				Subsystem: "scheduler",
				Name:      "job_runs_total",
				Help:      "Scheduled job runs.",
			},
			[]string{"job", "success"},
		),
	}
	r.registry.MustRegister(r.events, r.transitions, r.jobRuns)
	return r
}

func (r *Recorder) Publish(_ context.Context, evt notification.Event) error {
	r.events.WithLabelValues(string(evt.Type)).Inc()
	if evt.ApplicationID != 0 && evt.From != "" && evt.To != "" {
		r.transitions.WithLabelValues(evt.From, evt.To).Inc()
	}
	return nil
}

// RecordJob counts one scheduled job run.
func (r *Recorder) RecordJob(job string, err error) {
	r.jobRuns.WithLabelValues(job, strconv.FormatBool(err == nil)).Inc()
}

// Handler serves the registry in the Prometheus text format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
