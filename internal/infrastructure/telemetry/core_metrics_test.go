package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	out := map[string]metricdata.Metrics{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m
		}
	}
	return out
}

func sumOf(t *testing.T, m metricdata.Metrics) int64 {
	t.Helper()
	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok)
	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	return total
}

func TestCoreMetrics_Record(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	m, err := NewCoreMetrics(provider.Meter("test"))
	require.NoError(t, err)

	ctx := context.Background()
	m.RecordDedup(ctx, DedupCreated)
	m.RecordDedup(ctx, DedupMatched)
	m.RecordTransition(ctx, "approve", "pending", "approved")
	m.RecordStaleReview(ctx)
	m.RecordValidationIssue(ctx, "INSUFFICIENT_STOCK", "error")
	m.RecordValidationDuration(ctx, 3*time.Millisecond)
	m.RecordInvoiceFinalized(ctx, "domestic")
	m.RecordElevation(ctx, "master_customer_registry")

	metrics := collect(t, reader)
	assert.Equal(t, int64(2), sumOf(t, metrics["bizgrid_master_customer_upserts_total"]))
	assert.Equal(t, int64(1), sumOf(t, metrics["bizgrid_governance_transitions_total"]))
	assert.Equal(t, int64(1), sumOf(t, metrics["bizgrid_governance_stale_reviews_total"]))
	assert.Equal(t, int64(1), sumOf(t, metrics["bizgrid_invoice_validation_issues_total"]))
	assert.Equal(t, int64(1), sumOf(t, metrics["bizgrid_invoices_finalized_total"]))
	assert.Equal(t, int64(1), sumOf(t, metrics["bizgrid_elevated_calls_total"]))
	assert.Contains(t, metrics, "bizgrid_invoice_validation_duration_seconds")
}

func TestCoreMetrics_NilIsNoop(t *testing.T) {
	var m *CoreMetrics
	assert.NotPanics(t, func() {
		m.RecordDedup(context.Background(), DedupCreated)
		m.RecordTransition(context.Background(), "approve", "pending", "approved")
		m.RecordInvoiceFinalized(context.Background(), "domestic")
	})
}

func TestNewCoreMetrics_NilMeter(t *testing.T) {
	_, err := NewCoreMetrics(nil)
	assert.ErrorIs(t, err, ErrMeterNil)
}
