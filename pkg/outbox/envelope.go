package outbox

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// ActorRef identifies who produced the event.
type ActorRef struct {
	AccountID  uuid.UUID `json:"accountId"`
	OperatorID uuid.UUID `json:"operatorId"`
	Role       string    `json:"role,omitempty"`
}

// PayloadEnvelope is the stable payload structure stored in outbox_events.
type PayloadEnvelope struct {
	Version    int             `json:"version"`
	EventID    string          `json:"eventId"`
	OccurredAt time.Time       `json:"occurredAt"`
	Actor      *ActorRef       `json:"actor,omitempty"`
	Data       json.RawMessage `json:"data"`
}

// OrderEventData is the v1 data payload for order.* events.
type OrderEventData struct {
	OrderID     string    `json:"orderId"`
	AccountID   uuid.UUID `json:"accountId"`
	Status      string    `json:"status"`
	PaymentType string    `json:"paymentType"`
	TotalAmount string    `json:"totalAmount"`
}
