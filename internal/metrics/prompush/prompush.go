// Package prompush implements a Prometheus Pushgateway backend for the
// metrics package. A report run is a short batch job, so metrics are pushed
// once at the end instead of being scraped.
package prompush

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"

	"referralreport/internal/metrics"
)

// Backend collects metrics in a private registry and pushes them on Flush.
type Backend struct {
	gatewayURL string
	jobName    string // Pushgateway grouping key
	reg        *prometheus.Registry

	stepCounter   *prometheus.CounterVec // etl_step_total{step,status}
	stepDuration  *prometheus.SummaryVec // etl_step_duration_seconds{step,status}
	recordCounter *prometheus.CounterVec // etl_records_total{kind}
	batchCounter  prometheus.Counter     // etl_batches_total
	joinFanOut    *prometheus.CounterVec // etl_join_fanout_total{join}
	joinUnmatched *prometheus.CounterVec // etl_join_unmatched_total{join}
}

// NewBackend constructs a backend pushing to gatewayURL under jobName.
func NewBackend(jobName, gatewayURL string) (*Backend, error) {
	if gatewayURL == "" {
		return nil, fmt.Errorf("prompush: gateway URL is required")
	}
	if jobName == "" {
		jobName = "referral_report"
	}

	b := &Backend{
		gatewayURL: gatewayURL,
		jobName:    jobName,
		reg:        prometheus.NewRegistry(),
		stepCounter: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: metrics.StepTotal,
			Help: "Pipeline step executions by step and status.",
		}, []string{"step", "status"}),
		stepDuration: prometheus.NewSummaryVec(prometheus.SummaryOpts{
			Name:       metrics.StepDurationSeconds,
			Help:       "Pipeline step duration in seconds by step and status.",
			Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
		}, []string{"step", "status"}),
		recordCounter: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: metrics.RecordsTotal,
			Help: "Record counts by kind (referrals, merged, valid, invalid, stored).",
		}, []string{"kind"}),
		batchCounter: prometheus.NewCounter(prometheus.CounterOpts{
			Name: metrics.BatchesTotal,
			Help: "SQL sink batches flushed.",
		}),
		joinFanOut: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: metrics.JoinFanOutTotal,
			Help: "Rows duplicated by multi-row matches, per join.",
		}, []string{"join"}),
		joinUnmatched: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: metrics.JoinUnmatchedTotal,
			Help: "Left rows without a match, per join.",
		}, []string{"join"}),
	}

	for name, c := range map[string]prometheus.Collector{
		"step counter":   b.stepCounter,
		"step summary":   b.stepDuration,
		"record counter": b.recordCounter,
		"batch counter":  b.batchCounter,
		"join fan-out":   b.joinFanOut,
		"join unmatched": b.joinUnmatched,
	} {
		if err := b.reg.Register(c); err != nil {
			return nil, fmt.Errorf("prompush: register %s: %w", name, err)
		}
	}
	return b, nil
}

// IncCounter implements metrics.Backend. Unknown names are ignored.
func (b *Backend) IncCounter(name string, delta float64, labels metrics.Labels) {
	switch name {
	case metrics.StepTotal:
		if b.stepCounter != nil {
			b.stepCounter.WithLabelValues(labels["step"], labels["status"]).Add(delta)
		}
	case metrics.RecordsTotal:
		if b.recordCounter != nil {
			b.recordCounter.WithLabelValues(labels["kind"]).Add(delta)
		}
	case metrics.BatchesTotal:
		if b.batchCounter != nil {
			b.batchCounter.Add(delta)
		}
	case metrics.JoinFanOutTotal:
		if b.joinFanOut != nil {
			b.joinFanOut.WithLabelValues(labels["join"]).Add(delta)
		}
	case metrics.JoinUnmatchedTotal:
		if b.joinUnmatched != nil {
			b.joinUnmatched.WithLabelValues(labels["join"]).Add(delta)
		}
	}
}

// ObserveHistogram implements metrics.Backend for step durations.
func (b *Backend) ObserveHistogram(name string, value float64, labels metrics.Labels) {
	if name != metrics.StepDurationSeconds || b.stepDuration == nil {
		return
	}
	b.stepDuration.WithLabelValues(labels["step"], labels["status"]).Observe(value)
}

// Flush pushes the registry to the Pushgateway, replacing the job's group.
func (b *Backend) Flush() error {
	return push.New(b.gatewayURL, b.jobName).
		Gatherer(b.reg).
		Push()
}
