package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// SalesMetrics records checkout throughput and stock rejections per channel.
type SalesMetrics struct {
	completed  *prometheus.CounterVec
	rejected   *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	stockShort *prometheus.CounterVec
}

// NewSalesMetrics registers the sales metrics on the provided registerer.
func NewSalesMetrics(reg prometheus.Registerer) *SalesMetrics {
	if reg == nil {
		return &SalesMetrics{}
	}
	completed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sales_completed_total",
		Help: "Completed sale transactions.",
	}, []string{"channel"})
	rejected := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sales_rejected_total",
		Help: "Sale attempts rejected before commit.",
	}, []string{"channel", "reason"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "sales_duration_seconds",
		Help:    "Duration of sale processing in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"channel"})
	stockShort := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "inventory_insufficient_stock_total",
		Help: "Line items rejected because on-hand stock was too low.",
	}, []string{"channel"})
	reg.MustRegister(completed, rejected, duration, stockShort)
	return &SalesMetrics{
		completed:  completed,
		rejected:   rejected,
		duration:   duration,
		stockShort: stockShort,
	}
}

// IncCompleted increments the completed-sale counter for a channel.
func (s *SalesMetrics) IncCompleted(channel string) {
	if s == nil || s.completed == nil {
		return
	}
	s.completed.WithLabelValues(normalizeLabel(channel)).Inc()
}

// IncRejected increments the rejected-sale counter for a channel and reason.
func (s *SalesMetrics) IncRejected(channel, reason string) {
	if s == nil || s.rejected == nil {
		return
	}
	s.rejected.WithLabelValues(normalizeLabel(channel), normalizeLabel(reason)).Inc()
}

// ObserveDuration records how long a sale took to process.
func (s *SalesMetrics) ObserveDuration(channel string, duration time.Duration) {
	if s == nil || s.duration == nil {
		return
	}
	s.duration.WithLabelValues(normalizeLabel(channel)).Observe(duration.Seconds())
}

// IncInsufficientStock increments the oversell-rejection counter.
func (s *SalesMetrics) IncInsufficientStock(channel string) {
	if s == nil || s.stockShort == nil {
		return
	}
	s.stockShort.WithLabelValues(normalizeLabel(channel)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
