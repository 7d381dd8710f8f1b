package catalog

import (
	"context"

	"github.com/bizgrid/backend/internal/domain/shared"
	"github.com/bizgrid/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// publishEvents hands committed aggregate events to the publisher. Delivery is best
// effort; the state change has already been stored.
func publishEvents(ctx context.Context, publisher shared.EventPublisher, log *zap.Logger, aggregates ...shared.AggregateRoot) {
	for _, agg := range aggregates {
		events := agg.GetDomainEvents()
		agg.ClearDomainEvents()
		if publisher == nil || len(events) == 0 {
			continue
		}
		if err := publisher.Publish(ctx, events...); err != nil {
			logger.WithLogger(ctx, log).Warn("failed to publish domain events",
				zap.String("aggregate_id", agg.GetID().String()),
				zap.Error(err))
		}
	}
}
