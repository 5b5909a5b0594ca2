package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// CronJobMetrics records metadata for scheduled jobs.
type CronJobMetrics struct {
	duration *prometheus.HistogramVec
	success  *prometheus.CounterVec
	failure  *prometheus.CounterVec
}

// NewCronJobMetrics registers the cron job metrics on the provided registerer.
func NewCronJobMetrics(reg prometheus.Registerer) *CronJobMetrics {
	if reg == nil {
		return &CronJobMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "job_duration_seconds",
		Help:    "Duration of cron jobs in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"job"})
	success := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "job_success",
		Help: "Successful cron job executions.",
	}, []string{"job"})
	failure := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "job_failure",
		Help: "Failed cron job executions.",
	}, []string{"job"})
	reg.MustRegister(duration, success, failure)
	return &CronJobMetrics{
		duration: duration,
		success:  success,
		failure:  failure,
	}
}

// ObserveDuration records the duration for the named job.
func (c *CronJobMetrics) ObserveDuration(job string, duration time.Duration) {
	if c == nil || c.duration == nil {
		return
	}
	c.duration.WithLabelValues(normalizeLabel(job)).Observe(duration.Seconds())
}

// IncSuccess increments the success counter for the named job.
func (c *CronJobMetrics) IncSuccess(job string) {
	if c == nil || c.success == nil {
		return
	}
	c.success.WithLabelValues(normalizeLabel(job)).Inc()
}

// IncFailure increments the failure counter for the named job.
func (c *CronJobMetrics) IncFailure(job string) {
	if c == nil || c.failure == nil {
		return
	}
	c.failure.WithLabelValues(normalizeLabel(job)).Inc()
}

// StagingMetrics tracks staged-order protocol outcomes.
type StagingMetrics struct {
	flushedItems *prometheus.CounterVec
	flushErrors  *prometheus.CounterVec
	finalized    prometheus.Counter
}

// NewStagingMetrics registers staged-order metrics on the provided registerer.
func NewStagingMetrics(reg prometheus.Registerer) *StagingMetrics {
	if reg == nil {
		return &StagingMetrics{}
	}
	flushedItems := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "staged_items_flushed_total",
		Help: "Items persisted from stage ledgers, labeled by stage.",
	}, []string{"stage"})
	flushErrors := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "staged_flush_errors_total",
		Help: "Failed ledger flush attempts, labeled by stage.",
	}, []string{"stage"})
	finalized := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "staged_orders_finalized_total",
		Help: "Staged orders finalized and released to the kitchen.",
	})
	reg.MustRegister(flushedItems, flushErrors, finalized)
	return &StagingMetrics{
		flushedItems: flushedItems,
		flushErrors:  flushErrors,
		finalized:    finalized,
	}
}

// AddFlushedItems records items persisted for a stage.
func (s *StagingMetrics) AddFlushedItems(stage string, count int) {
	if s == nil || s.flushedItems == nil || count <= 0 {
		return
	}
	s.flushedItems.WithLabelValues(normalizeLabel(stage)).Add(float64(count))
}

// IncFlushError records a failed flush for a stage.
func (s *StagingMetrics) IncFlushError(stage string) {
	if s == nil || s.flushErrors == nil {
		return
	}
	s.flushErrors.WithLabelValues(normalizeLabel(stage)).Inc()
}

// IncFinalized records a successful finalize.
func (s *StagingMetrics) IncFinalized() {
	if s == nil || s.finalized == nil {
		return
	}
	s.finalized.Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
