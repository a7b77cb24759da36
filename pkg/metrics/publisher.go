package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PublisherMetrics records delivery attempts and poller ticks.
type PublisherMetrics struct {
	tickDuration *prometheus.HistogramVec
	jobOutcome   *prometheus.CounterVec
	tickFailure  prometheus.Counter
}

// NewPublisherMetrics registers the publishing pipeline metrics on the provided registerer.
func NewPublisherMetrics(reg prometheus.Registerer) *PublisherMetrics {
	if reg == nil {
		return &PublisherMetrics{}
	}
	tickDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "publish_tick_duration_seconds",
		Help:    "Duration of publish poller ticks in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"kind"})
	jobOutcome := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "publish_job_attempts_total",
		Help: "Publishing job attempts by platform and outcome.",
	}, []string{"platform", "outcome"})
	tickFailure := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "publish_tick_failures_total",
		Help: "Poller ticks that ended with an error.",
	})
	reg.MustRegister(tickDuration, jobOutcome, tickFailure)
	return &PublisherMetrics{
		tickDuration: tickDuration,
		jobOutcome:   jobOutcome,
		tickFailure:  tickFailure,
	}
}

// ObserveTick records the duration of one poller tick.
func (m *PublisherMetrics) ObserveTick(kind string, duration time.Duration) {
	if m == nil || m.tickDuration == nil {
		return
	}
	m.tickDuration.WithLabelValues(normalizeLabel(kind)).Observe(duration.Seconds())
}

// IncJobOutcome counts one delivery attempt outcome for a platform.
func (m *PublisherMetrics) IncJobOutcome(platform, outcome string) {
	if m == nil || m.jobOutcome == nil {
		return
	}
	m.jobOutcome.WithLabelValues(normalizeLabel(platform), normalizeLabel(outcome)).Inc()
}

// IncTickFailure counts a failed poller tick.
func (m *PublisherMetrics) IncTickFailure() {
	if m == nil || m.tickFailure == nil {
		return
	}
	m.tickFailure.Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
