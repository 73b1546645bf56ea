package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// CheckoutMetrics содержит метрики финализации продаж и работы с черновиками.
type CheckoutMetrics struct {
	// Счётчики исходов финализации
	checkoutCommitted prometheus.Counter
	checkoutQueued    prometheus.Counter
	checkoutFailed    prometheus.Counter

	// Гистограмма времени финализации
	checkoutDuration prometheus.Histogram

	// Счётчики операций с черновиками
	draftsParked    prometheus.Counter
	draftsResumed   prometheus.Counter
	draftsDiscarded prometheus.Counter

	// Gauge офлайн-очереди чеков
	queuedReceipts prometheus.Gauge
}

// NewCheckoutMetrics создаёт метрики в глобальном регистре Prometheus.
func NewCheckoutMetrics() *CheckoutMetrics {
	return newCheckoutMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

func newCheckoutMetricsWithRegisterer(registerer prometheus.Registerer) *CheckoutMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &CheckoutMetrics{
		checkoutCommitted: registerCounter(registerer, prometheus.CounterOpts{
			Name: "pos_checkout_committed_total",
			Help: "Total number of receipts committed synchronously",
		}),
		checkoutQueued: registerCounter(registerer, prometheus.CounterOpts{
			Name: "pos_checkout_queued_total",
			Help: "Total number of receipts queued offline for later sync",
		}),
		checkoutFailed: registerCounter(registerer, prometheus.CounterOpts{
			Name: "pos_checkout_failed_total",
			Help: "Total number of failed finalize attempts",
		}),
		checkoutDuration: registerHistogram(registerer, prometheus.HistogramOpts{
			Name:    "pos_checkout_duration_seconds",
			Help:    "Duration of finalize operations in seconds",
			Buckets: prometheus.DefBuckets,
		}),
		draftsParked: registerCounter(registerer, prometheus.CounterOpts{
			Name: "pos_drafts_parked_total",
			Help: "Total number of carts parked as draft sales",
		}),
		draftsResumed: registerCounter(registerer, prometheus.CounterOpts{
			Name: "pos_drafts_resumed_total",
			Help: "Total number of draft sales resumed",
		}),
		draftsDiscarded: registerCounter(registerer, prometheus.CounterOpts{
			Name: "pos_drafts_discarded_total",
			Help: "Total number of draft sales discarded",
		}),
		queuedReceipts: registerGauge(registerer, prometheus.GaugeOpts{
			Name: "pos_queued_receipts",
			Help: "Current number of offline receipts awaiting sync",
		}),
	}
}

func registerCounter(registerer prometheus.Registerer, opts prometheus.CounterOpts) prometheus.Counter {
	collector := prometheus.NewCounter(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Counter)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter %q: %v", opts.Name, err))
	}
	return collector
}

func registerGauge(registerer prometheus.Registerer, opts prometheus.GaugeOpts) prometheus.Gauge {
	collector := prometheus.NewGauge(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Gauge)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register gauge %q: %v", opts.Name, err))
	}
	return collector
}

func registerHistogram(registerer prometheus.Registerer, opts prometheus.HistogramOpts) prometheus.Histogram {
	collector := prometheus.NewHistogram(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Histogram)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register histogram %q: %v", opts.Name, err))
	}
	return collector
}

// RecordCheckoutCommitted увеличивает счётчик синхронно подтверждённых чеков.
func (m *CheckoutMetrics) RecordCheckoutCommitted() {
	m.checkoutCommitted.Inc()
}

// RecordCheckoutQueued увеличивает счётчик офлайн-чеков.
func (m *CheckoutMetrics) RecordCheckoutQueued() {
	m.checkoutQueued.Inc()
}

// RecordCheckoutFailed увеличивает счётчик неудачных финализаций.
func (m *CheckoutMetrics) RecordCheckoutFailed() {
	m.checkoutFailed.Inc()
}

// RecordCheckoutDuration записывает время финализации.
func (m *CheckoutMetrics) RecordCheckoutDuration(duration time.Duration) {
	m.checkoutDuration.Observe(duration.Seconds())
}

// RecordDraftParked увеличивает счётчик припаркованных продаж.
func (m *CheckoutMetrics) RecordDraftParked() {
	m.draftsParked.Inc()
}

// RecordDraftResumed увеличивает счётчик возобновлённых продаж.
func (m *CheckoutMetrics) RecordDraftResumed() {
	m.draftsResumed.Inc()
}

// RecordDraftDiscarded увеличивает счётчик отброшенных черновиков.
func (m *CheckoutMetrics) RecordDraftDiscarded() {
	m.draftsDiscarded.Inc()
}

// SetQueuedReceipts выставляет текущий размер офлайн-очереди.
func (m *CheckoutMetrics) SetQueuedReceipts(count int) {
	m.queuedReceipts.Set(float64(count))
}
