package cart

import (
	"context"

	"github.com/adiwirawan/go-shop-backend/internal/catalog"
)

// Store persists carts. FindByUser returns shop.ErrNotFound when the
// user has no cart yet; the service creates one lazily.
type Store interface {
	FindByUser(ctx context.Context, userID string) (*Cart, error)
	Create(ctx context.Context, userID string) (*Cart, error)
	Save(ctx context.Context, c *Cart) error
}

type ProductReader interface {
	FindByID(ctx context.Context, id string) (catalog.Product, error)
}
