/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package telemetry

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

// Submission outcomes.
const (
	OutcomeAccepted = "accepted"
	OutcomeRejected = "rejected"
	OutcomeError    = "error"
)

// Metrics collects per-run batch metrics on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	Submissions   *prometheus.CounterVec
	Selected      prometheus.Gauge
	BatchDuration prometheus.Gauge
}

// NewMetrics registers the batch collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		Submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cromwell_cli_submissions_total",
			Help: "Workflow submissions by outcome",
		}, []string{"outcome"}),
		Selected: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "cromwell_cli_objects_selected",
			Help: "Indexed BAM objects selected by the last bucket scan",
		}),
		BatchDuration: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "cromwell_cli_batch_duration_seconds",
			Help: "Wall time of the last batch run",
		}),
	}
	m.registry.MustRegister(m.Submissions, m.Selected, m.BatchDuration)
	return m
}

// ObserveSubmission counts one submission outcome.
func (m *Metrics) ObserveSubmission(outcome string) {
	if m == nil {
		return
	}
	m.Submissions.WithLabelValues(outcome).Inc()
}

// ObserveBatch records the selection size and elapsed time.
func (m *Metrics) ObserveBatch(selected int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.Selected.Set(float64(selected))
	m.BatchDuration.Set(elapsed.Seconds())
}

// Push sends the registry to a Prometheus pushgateway. An empty url is a no-op.
func (m *Metrics) Push(ctx context.Context, url, job string, grouping map[string]string) error {
	if m == nil || url == "" {
		return nil
	}
	pusher := push.New(url, job).Gatherer(m.registry)
	for k, v := range grouping {
		pusher = pusher.Grouping(k, v)
	}
	if err := pusher.PushContext(ctx); err != nil {
		return fmt.Errorf("push metrics: %w", err)
	}
	return nil
}
