package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// BillingMetrics captures billing engine health signals.
type BillingMetrics struct {
	registerer        prometheus.Registerer
	invoicesGenerated prometheus.Counter
	invoicesSkipped   prometheus.Counter
	paymentsRecorded  *prometheus.CounterVec
	invoicesOverdue   prometheus.Counter
	runDuration       *prometheus.HistogramVec
}

func (m *BillingMetrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.invoicesGenerated,
		m.invoicesSkipped,
		m.paymentsRecorded,
		m.invoicesOverdue,
		m.runDuration,
	}
}

var (
	billingMetricsOnce sync.Once
	billingMetrics     *BillingMetrics
)

// Billing returns the singleton billing metrics registry.
func Billing() *BillingMetrics {
	return BillingWithConfig(Config{})
}

// BillingWithConfig returns the singleton billing metrics registry using config labels.
func BillingWithConfig(cfg Config) *BillingMetrics {
	billingMetricsOnce.Do(func() {
		billingMetrics = newBillingMetrics(prometheus.DefaultRegisterer, cfg)
	})
	return billingMetrics
}

// ResetBillingMetricsForTest resets the billing metrics singleton for
// tests. The previous collectors are unregistered so the next Billing
// call can register fresh ones under the same names.
func ResetBillingMetricsForTest() {
	if billingMetrics != nil {
		for _, c := range billingMetrics.collectors() {
			billingMetrics.registerer.Unregister(c)
		}
	}
	billingMetricsOnce = sync.Once{}
	billingMetrics = nil
}

func newBillingMetrics(registerer prometheus.Registerer, cfg Config) *BillingMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	constLabels := cfg.constLabels()

	invoicesGenerated := prometheus.NewCounter(prometheus.CounterOpts{
		Name:        "support_center_invoices_generated_total",
		Help:        "Invoices created by the monthly generation run.",
		ConstLabels: constLabels,
	})
	invoicesSkipped := prometheus.NewCounter(prometheus.CounterOpts{
		Name:        "support_center_invoices_skipped_total",
		Help:        "Students skipped by the monthly run because an invoice already existed.",
		ConstLabels: constLabels,
	})
	paymentsRecorded := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "support_center_payments_recorded_total",
		Help:        "Payments recorded by scope.",
		ConstLabels: constLabels,
	}, []string{"scope"})
	invoicesOverdue := prometheus.NewCounter(prometheus.CounterOpts{
		Name:        "support_center_invoices_marked_overdue_total",
		Help:        "Invoices flipped to OVERDUE by the sweep.",
		ConstLabels: constLabels,
	})
	runDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:        "support_center_billing_run_duration_seconds",
		Help:        "Billing batch run latency by job.",
		Buckets:     []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 300},
		ConstLabels: constLabels,
	}, []string{"job"})

	registerer.MustRegister(invoicesGenerated, invoicesSkipped, paymentsRecorded, invoicesOverdue, runDuration)

	return &BillingMetrics{
		registerer:        registerer,
		invoicesGenerated: invoicesGenerated,
		invoicesSkipped:   invoicesSkipped,
		paymentsRecorded:  paymentsRecorded,
		invoicesOverdue:   invoicesOverdue,
		runDuration:       runDuration,
	}
}

// RecordInvoiceGenerated increments the generated invoice count.
func (m *BillingMetrics) RecordInvoiceGenerated() {
	if m == nil {
		return
	}
	m.invoicesGenerated.Inc()
}

// RecordInvoiceSkipped increments the skipped student count.
func (m *BillingMetrics) RecordInvoiceSkipped() {
	if m == nil {
		return
	}
	m.invoicesSkipped.Inc()
}

// RecordPayment increments payment counts. Scope is "invoice" or "item".
func (m *BillingMetrics) RecordPayment(scope string) {
	if m == nil {
		return
	}
	m.paymentsRecorded.WithLabelValues(scope).Inc()
}

// RecordOverdue adds to the overdue sweep count.
func (m *BillingMetrics) RecordOverdue(count int) {
	if m == nil || count <= 0 {
		return
	}
	m.invoicesOverdue.Add(float64(count))
}

// ObserveRunDuration records how long a billing batch job took.
func (m *BillingMetrics) ObserveRunDuration(job string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.runDuration.WithLabelValues(job).Observe(elapsed.Seconds())
}
