package metrics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResetBillingMetricsAllowsReRegistration(t *testing.T) {
	ResetBillingMetricsForTest()
	t.Cleanup(ResetBillingMetricsForTest)

	// Each cycle registers the same metric names against the default
	// registerer, so the reset must unregister the previous collectors
	// or the second Billing call panics.
	for i := 0; i < 3; i++ {
		m := Billing()
		require.NotNil(t, m)

		m.RecordInvoiceGenerated()
		m.RecordInvoiceSkipped()
		m.RecordPayment("invoice")
		m.RecordOverdue(2)
		m.ObserveRunDuration("generate_monthly", 10*time.Millisecond)

		ResetBillingMetricsForTest()
	}
}

func TestBillingMetricsSingleton(t *testing.T) {
	ResetBillingMetricsForTest()
	t.Cleanup(ResetBillingMetricsForTest)

	first := Billing()
	second := Billing()
	assert.Same(t, first, second)
}

func TestBillingMetricsNilReceiverIsSafe(t *testing.T) {
	var m *BillingMetrics
	m.RecordInvoiceGenerated()
	m.RecordInvoiceSkipped()
	m.RecordPayment("item")
	m.RecordOverdue(1)
	m.ObserveRunDuration("overdue_sweep", time.Second)
}
