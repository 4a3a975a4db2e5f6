package orders

import (
	"context"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/adiwirawan/go-shop-backend/internal/cart"
	"github.com/adiwirawan/go-shop-backend/internal/catalog"
)

type CartSource interface {
	FindByUser(ctx context.Context, userID string) (*cart.Cart, error)
	Clear(ctx context.Context, userID string) error
}

// Ledger is the inventory boundary: an all-or-nothing reservation pass
// for checkout, a per-line release for compensation.
type Ledger interface {
	ReserveAll(ctx context.Context, items []catalog.ItemQty) ([]catalog.ReservedLine, error)
	Release(ctx context.Context, productID string, qty int) error
}

type Store interface {
	Create(ctx context.Context, o *Order) error
	FindByID(ctx context.Context, id string) (*Order, error)
	Update(ctx context.Context, o *Order) error
	ListByUser(ctx context.Context, userID string, page, limit int) ([]Order, int, error)
	ListAll(ctx context.Context, status string, page, limit int) ([]Order, int, error)
}

// EventSink is satisfied by the kafka producer set for each topic.
type EventSink interface {
	Publish(key, value []byte, headers ...kafkago.Header)
}
