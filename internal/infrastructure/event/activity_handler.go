package event

import (
	"context"

	"github.com/bizgrid/backend/internal/domain/catalog"
	"github.com/bizgrid/backend/internal/domain/shared"
	"github.com/bizgrid/backend/internal/domain/trade"
	"github.com/bizgrid/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// ActivityLogHandler writes one structured log line per domain event, giving
// operators a feed of submissions, reviews and invoice lifecycle changes.
type ActivityLogHandler struct {
	logger *zap.Logger
}

// NewActivityLogHandler creates the handler
func NewActivityLogHandler(log *zap.Logger) *ActivityLogHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &ActivityLogHandler{logger: log.Named("activity")}
}

// EventTypes is empty: the handler receives every event
func (h *ActivityLogHandler) EventTypes() []string {
	return nil
}

// Handle logs the event
func (h *ActivityLogHandler) Handle(ctx context.Context, evt shared.DomainEvent) error {
	fields := []zap.Field{
		zap.String("event_type", evt.EventType()),
		zap.String("event_id", evt.EventID().String()),
		zap.String("aggregate_type", evt.AggregateType()),
		zap.String("aggregate_id", evt.AggregateID().String()),
		zap.String("event_org_id", evt.OrgID().String()),
		zap.Time("occurred_at", evt.OccurredAt()),
	}
	fields = append(fields, detailFields(evt)...)
	logger.WithLogger(ctx, h.logger).Info("Domain event", fields...)
	return nil
}

func detailFields(evt shared.DomainEvent) []zap.Field {
	switch e := evt.(type) {
	case *catalog.MasterProductSubmittedEvent:
		return []zap.Field{zap.String("sku", e.SKU), zap.String("submitted_by", e.SubmittedBy.String())}
	case *catalog.MasterProductStatusChangedEvent:
		return []zap.Field{
			zap.String("from", string(e.From)),
			zap.String("to", string(e.To)),
			zap.String("action", string(e.Action)),
			zap.String("actor_id", e.ActorID.String()),
		}
	case *trade.InvoiceFinalizedEvent:
		return []zap.Field{zap.String("number", e.Number), zap.String("total", e.Total.StringFixed(2)), zap.Int("lines", e.Lines)}
	case *trade.InvoiceCancelledEvent:
		return []zap.Field{zap.Bool("reversed", e.Reversed), zap.String("reason", e.Reason)}
	}
	return nil
}

var _ shared.EventHandler = (*ActivityLogHandler)(nil)
