package telemetry

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/metric"
)

// ErrMeterNil is returned by NewCoreMetrics without a meter
var ErrMeterNil = errors.New("telemetry: meter is nil")

// Dedup outcomes recorded by the master customer registry
const (
	DedupMatched    = "matched"
	DedupCreated    = "created"
	DedupRaceWon    = "race_recovered"
	DedupRaceFailed = "race_failed"
)

// CoreMetrics records the counters of the isolation, dedup, governance and invoice
// components. A nil *CoreMetrics is valid and records nothing.
type CoreMetrics struct {
	dedupOutcomes         *Counter
	governanceTransitions *Counter
	staleReviews          *Counter
	validationIssues      *Counter
	invoicesFinalized     *Counter
	elevatedCalls         *Counter
	validationDuration    *Histogram
}

// NewCoreMetrics creates the instruments on meter
func NewCoreMetrics(meter metric.Meter) (*CoreMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}
	m := &CoreMetrics{}
	var err error
	if m.dedupOutcomes, err = NewCounter(meter, "bizgrid_master_customer_upserts_total", "Master customer upserts by outcome", "{upserts}"); err != nil {
		return nil, err
	}
	if m.governanceTransitions, err = NewCounter(meter, "bizgrid_governance_transitions_total", "Master product status transitions", "{transitions}"); err != nil {
		return nil, err
	}
	if m.staleReviews, err = NewCounter(meter, "bizgrid_governance_stale_reviews_total", "Reviews rejected because the row changed concurrently", "{reviews}"); err != nil {
		return nil, err
	}
	if m.validationIssues, err = NewCounter(meter, "bizgrid_invoice_validation_issues_total", "Invoice line issues by code and severity", "{issues}"); err != nil {
		return nil, err
	}
	if m.invoicesFinalized, err = NewCounter(meter, "bizgrid_invoices_finalized_total", "Finalized invoices by tax mode", "{invoices}"); err != nil {
		return nil, err
	}
	if m.elevatedCalls, err = NewCounter(meter, "bizgrid_elevated_calls_total", "Trusted boundary invocations", "{calls}"); err != nil {
		return nil, err
	}
	if m.validationDuration, err = NewHistogram(meter, "bizgrid_invoice_validation_duration_seconds", "Invoice validation latency", "s", validationBuckets...); err != nil {
		return nil, err
	}
	return m, nil
}

// RecordDedup counts a master customer upsert outcome
func (m *CoreMetrics) RecordDedup(ctx context.Context, outcome string) {
	if m == nil {
		return
	}
	m.dedupOutcomes.Inc(ctx, AttrOutcome.String(outcome))
}

// RecordTransition counts a governance transition
func (m *CoreMetrics) RecordTransition(ctx context.Context, action, from, to string) {
	if m == nil {
		return
	}
	m.governanceTransitions.Inc(ctx, AttrAction.String(action), AttrFromState.String(from), AttrToState.String(to))
}

// RecordStaleReview counts a review lost to a concurrent one
func (m *CoreMetrics) RecordStaleReview(ctx context.Context) {
	if m == nil {
		return
	}
	m.staleReviews.Inc(ctx)
}

// RecordValidationIssue counts one line issue
func (m *CoreMetrics) RecordValidationIssue(ctx context.Context, code, severity string) {
	if m == nil {
		return
	}
	m.validationIssues.Inc(ctx, AttrIssueCode.String(code), AttrSeverity.String(severity))
}

// RecordValidationDuration records how long a validation pass took
func (m *CoreMetrics) RecordValidationDuration(ctx context.Context, d time.Duration) {
	if m == nil {
		return
	}
	m.validationDuration.RecordDuration(ctx, d)
}

// RecordInvoiceFinalized counts a finalized invoice
func (m *CoreMetrics) RecordInvoiceFinalized(ctx context.Context, taxMode string) {
	if m == nil {
		return
	}
	m.invoicesFinalized.Inc(ctx, AttrTaxMode.String(taxMode))
}

// RecordElevation counts a trusted boundary call
func (m *CoreMetrics) RecordElevation(ctx context.Context, boundary string) {
	if m == nil {
		return
	}
	m.elevatedCalls.Inc(ctx, AttrBoundary.String(boundary))
}
