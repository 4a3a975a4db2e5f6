package review

import (
	"context"

	"github.com/adiwirawan/go-shop-backend/internal/catalog"
)

type Store interface {
	Exists(ctx context.Context, userID, productID string) (bool, error)
	HasDeliveredOrder(ctx context.Context, userID, productID string) (bool, error)
	Create(ctx context.Context, rv *Review) error
	ListByProduct(ctx context.Context, productID string, page, limit int) ([]Review, int, error)
	// RefreshRating recomputes the product's average rating and review
	// count from its reviews.
	RefreshRating(ctx context.Context, productID string) error
}

type ProductReader interface {
	FindByID(ctx context.Context, id string) (catalog.Product, error)
}
