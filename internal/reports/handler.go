package reports

import (
	"context"
	"encoding/json"

	"github.com/simovate/simstack-backend/pkg/db/models"
	"github.com/simovate/simstack-backend/pkg/outbox"
)

// NewOrderEventHandler returns the outbox handler that keeps the day's
// rollup current as orders are created, confirmed, and deleted.
func NewOrderEventHandler(svc Service) outbox.Handler {
	return func(ctx context.Context, envelope outbox.PayloadEnvelope, event models.OutboxEvent) error {
		var data outbox.OrderEventData
		if err := json.Unmarshal(envelope.Data, &data); err != nil {
			return err
		}
		_, err := svc.Recompute(ctx, data.AccountID, event.CreatedAt)
		return err
	}
}
