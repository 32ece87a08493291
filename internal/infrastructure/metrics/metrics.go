package metrics

import "github.com/prometheus/client_golang/prometheus"

// BookingMetrics exposes counters/histograms for the slot and booking flows.
// A nil *BookingMetrics is valid and records nothing.
type BookingMetrics struct {
	fetchTotal       *prometheus.CounterVec
	fetchLatency     prometheus.Histogram
	staleDiscards    prometheus.Counter
	validationFailed *prometheus.CounterVec
	outcomesTotal    *prometheus.CounterVec
	cacheTotal       *prometheus.CounterVec
}

func NewBookingMetrics(reg prometheus.Registerer) *BookingMetrics {
	m := &BookingMetrics{
		fetchTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "slotbook",
			Subsystem: "slots",
			Name:      "fetch_total",
			Help:      "Slot fetches from the booking backend",
		}, []string{"status"}),
		fetchLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "slotbook",
			Subsystem: "slots",
			Name:      "fetch_latency_seconds",
			Help:      "Latency of slot fetches including retries",
			Buckets:   prometheus.DefBuckets,
		}),
		staleDiscards: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "slotbook",
			Subsystem: "slots",
			Name:      "stale_fetch_discarded_total",
			Help:      "Fetch results dropped because a newer fetch was started",
		}),
		validationFailed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "slotbook",
			Subsystem: "bookings",
			Name:      "validation_failed_total",
			Help:      "Submissions rejected before dispatch",
		}, []string{"code"}),
		outcomesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "slotbook",
			Subsystem: "bookings",
			Name:      "outcome_total",
			Help:      "Dispatched submissions by outcome",
		}, []string{"outcome"}),
		cacheTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "slotbook",
			Subsystem: "cache",
			Name:      "lookups_total",
			Help:      "Slot cache lookups",
		}, []string{"result"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.fetchTotal, m.fetchLatency, m.staleDiscards, m.validationFailed, m.outcomesTotal, m.cacheTotal)
	return m
}

func (m *BookingMetrics) ObserveFetch(ok bool, seconds float64) {
	if m == nil {
		return
	}
	status := "ok"
	if !ok {
		status = "error"
	}
	m.fetchTotal.WithLabelValues(status).Inc()
	m.fetchLatency.Observe(seconds)
}

func (m *BookingMetrics) ObserveStaleDiscard() {
	if m == nil {
		return
	}
	m.staleDiscards.Inc()
}

func (m *BookingMetrics) ObserveValidationFailure(code string) {
	if m == nil {
		return
	}
	m.validationFailed.WithLabelValues(code).Inc()
}

func (m *BookingMetrics) ObserveOutcome(kind string) {
	if m == nil {
		return
	}
	m.outcomesTotal.WithLabelValues(kind).Inc()
}

func (m *BookingMetrics) ObserveCache(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheTotal.WithLabelValues(result).Inc()
}
