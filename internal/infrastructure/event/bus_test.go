package event

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/bizgrid/backend/internal/domain/catalog"
	"github.com/bizgrid/backend/internal/domain/shared"
	"github.com/bizgrid/backend/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

// recordingHandler collects the events it receives
type recordingHandler struct {
	eventTypes []string
	err        error
	panicWith  any

	mu      sync.Mutex
	handled []shared.DomainEvent
}

func (h *recordingHandler) Handle(_ context.Context, evt shared.DomainEvent) error {
	h.mu.Lock()
	h.handled = append(h.handled, evt)
	h.mu.Unlock()
	if h.panicWith != nil {
		panic(h.panicWith)
	}
	return h.err
}

func (h *recordingHandler) EventTypes() []string { return h.eventTypes }

func (h *recordingHandler) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.handled)
}

func invoiceFinalized() *trade.InvoiceFinalizedEvent {
	number := "INV-20260314-0001"
	return trade.NewInvoiceFinalizedEvent(&trade.Invoice{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(uuid.New(), uuid.Nil),
		Number:              &number,
		Total:               decimal.NewFromInt(236),
	})
}

func TestInMemoryEventBus_Publish_ByType(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	invoices := &recordingHandler{eventTypes: []string{trade.EventTypeInvoiceFinalized}}
	governance := &recordingHandler{eventTypes: []string{catalog.EventTypeMasterProductStatusChanged}}
	bus.Subscribe(invoices)
	bus.Subscribe(governance)

	require.NoError(t, bus.Publish(context.Background(), invoiceFinalized(), invoiceFinalized()))

	assert.Equal(t, 2, invoices.count())
	assert.Equal(t, 0, governance.count())
	assert.Equal(t, 2, bus.HandlerCount())
}

func TestInMemoryEventBus_Publish_Wildcard(t *testing.T) {
	bus := NewInMemoryEventBus(nil)
	all := &recordingHandler{}
	bus.Subscribe(all)

	require.NoError(t, bus.Publish(context.Background(), invoiceFinalized()))
	assert.Equal(t, 1, all.count())
}

func TestInMemoryEventBus_HandlerFailuresAreContained(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	bus := NewInMemoryEventBus(zap.New(core))

	failing := &recordingHandler{eventTypes: []string{trade.EventTypeInvoiceFinalized}, err: errors.New("boom")}
	panicking := &recordingHandler{eventTypes: []string{trade.EventTypeInvoiceFinalized}, panicWith: "bad"}
	healthy := &recordingHandler{eventTypes: []string{trade.EventTypeInvoiceFinalized}}
	bus.Subscribe(failing)
	bus.Subscribe(panicking)
	bus.Subscribe(healthy)

	require.NoError(t, bus.Publish(context.Background(), invoiceFinalized()))

	assert.Equal(t, 1, healthy.count())
	assert.Equal(t, 2, logs.FilterMessage("Event handler failed").Len())
}

func TestInMemoryEventBus_Unsubscribe(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	h := &recordingHandler{eventTypes: []string{trade.EventTypeInvoiceFinalized}}
	bus.Subscribe(h)

	_ = bus.Publish(context.Background(), invoiceFinalized())
	bus.Unsubscribe(h)
	_ = bus.Publish(context.Background(), invoiceFinalized())

	assert.Equal(t, 1, h.count())
	assert.Equal(t, 0, bus.HandlerCount())
}

func TestActivityLogHandler_LogsTransitionDetails(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	bus := NewInMemoryEventBus(zap.NewNop())
	bus.Subscribe(NewActivityLogHandler(zap.New(core)))

	product := &catalog.MasterProduct{BaseAggregateRoot: shared.NewBaseAggregateRoot()}
	evt := catalog.NewMasterProductStatusChangedEvent(product, catalog.Transition{
		From:   catalog.ApprovalPending,
		To:     catalog.ApprovalApproved,
		Action: catalog.ActionApprove,
	}, uuid.New())

	require.NoError(t, bus.Publish(context.Background(), evt))

	entries := logs.FilterMessage("Domain event").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, catalog.EventTypeMasterProductStatusChanged, fields["event_type"])
	assert.Equal(t, string(catalog.ApprovalApproved), fields["to"])
	assert.Equal(t, string(catalog.ActionApprove), fields["action"])
}
