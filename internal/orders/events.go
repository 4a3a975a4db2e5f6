package orders

import (
	"encoding/json"
	"time"
)

const (
	EventOrderCreated       = "OrderCreated"
	EventOrderPaid          = "OrderPaid"
	EventOrderCancelled     = "OrderCancelled"
	EventOrderStatusChanged = "OrderStatusChanged"
)

type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	CorrelationID string          `json:"correlation_id,omitempty"` // order_id
	Payload       json.RawMessage `json:"payload"`
}

type LinePayload struct {
	ProductID  string `json:"product_id"`
	Qty        int    `json:"qty"`
	PriceCents int64  `json:"price_cents"`
}

type OrderCreatedPayload struct {
	OrderID    string        `json:"order_id"`
	UserID     string        `json:"user_id"`
	Items      []LinePayload `json:"items"`
	TotalCents int64         `json:"total_cents"`
}

type OrderPaidPayload struct {
	OrderID    string `json:"order_id"`
	PaymentRef string `json:"payment_ref"`
}

type OrderCancelledPayload struct {
	OrderID string        `json:"order_id"`
	Items   []LinePayload `json:"items"`
}

type OrderStatusChangedPayload struct {
	OrderID string `json:"order_id"`
	Status  Status `json:"status"`
}
