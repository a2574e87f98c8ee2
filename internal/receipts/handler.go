package receipts

import (
	"context"

	"github.com/simovate/simstack-backend/pkg/db/models"
	"github.com/simovate/simstack-backend/pkg/outbox"
)

// NewOrderEventHandler returns the outbox handler that issues a receipt when
// an order is created or a reservation is confirmed. BuildFromOrder is
// idempotent, so redeliveries are safe.
func NewOrderEventHandler(svc Service) outbox.Handler {
	return func(ctx context.Context, envelope outbox.PayloadEnvelope, event models.OutboxEvent) error {
		_, err := svc.BuildFromOrder(ctx, event.AggregateID)
		return err
	}
}
