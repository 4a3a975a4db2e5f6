package review

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/adiwirawan/go-shop-backend/internal/shop"
)

type Service struct {
	Store    Store
	Products ProductReader
}

// Create accepts a review only from a user with a delivered order
// containing the product, once per product.
func (s *Service) Create(ctx context.Context, userID, productID string, rating int, title, comment string) (*Review, error) {
	if rating < 1 || rating > 5 {
		return nil, fmt.Errorf("rating %d: %w", rating, shop.ErrInvalidRating)
	}
	if _, err := s.Products.FindByID(ctx, productID); err != nil {
		return nil, err
	}

	purchased, err := s.Store.HasDeliveredOrder(ctx, userID, productID)
	if err != nil {
		return nil, err
	}
	if !purchased {
		return nil, shop.ErrNotPurchased
	}

	exists, err := s.Store.Exists(ctx, userID, productID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shop.ErrAlreadyReviewed
	}

	rv := &Review{
		ID:        uuid.NewString(),
		UserID:    userID,
		ProductID: productID,
		Rating:    rating,
		Title:     title,
		Comment:   comment,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.Store.Create(ctx, rv); err != nil {
		return nil, err
	}
	if err := s.Store.RefreshRating(ctx, productID); err != nil {
		return nil, err
	}
	return rv, nil
}

func (s *Service) ListByProduct(ctx context.Context, productID string, page, limit int) ([]Review, int, error) {
	return s.Store.ListByProduct(ctx, productID, page, limit)
}
