package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/adiwirawan/go-shop-backend/internal/shop"
)

type Service struct {
	Store    Store
	Products ProductReader
}

// Get loads the user's cart, creating an empty one on first access.
func (s *Service) Get(ctx context.Context, userID string) (*Cart, error) {
	c, err := s.Store.FindByUser(ctx, userID)
	if errors.Is(err, shop.ErrNotFound) {
		return s.Store.Create(ctx, userID)
	}
	return c, err
}

// AddItem merges qty into an existing line for the same product, or
// appends a new one. The merged quantity is validated against current
// stock and the line's price snapshot is refreshed from the live
// product.
func (s *Service) AddItem(ctx context.Context, userID, productID string, qty int) (*Cart, error) {
	if qty < 1 {
		return nil, shop.ErrInvalidQuantity
	}
	p, err := s.Products.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	c, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	merged := qty
	idx := c.find(productID)
	if idx >= 0 {
		merged += c.Items[idx].Qty
	}
	if merged > p.Stock {
		return nil, fmt.Errorf("product %s: %w", p.Name, shop.ErrOutOfStock)
	}

	line := Item{
		ProductID:  p.ID,
		Name:       p.Name,
		Image:      p.FirstImage(),
		Stock:      p.Stock,
		PriceCents: p.PriceCents,
		Qty:        merged,
	}
	if idx >= 0 {
		c.Items[idx] = line
	} else {
		c.Items = append(c.Items, line)
	}
	c.Recompute()
	return c, s.Store.Save(ctx, c)
}

func (s *Service) UpdateQuantity(ctx context.Context, userID, productID string, qty int) (*Cart, error) {
	if qty < 1 {
		return nil, shop.ErrInvalidQuantity
	}
	p, err := s.Products.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if qty > p.Stock {
		return nil, fmt.Errorf("product %s: %w", p.Name, shop.ErrOutOfStock)
	}
	c, err := s.Store.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	idx := c.find(productID)
	if idx < 0 {
		return nil, fmt.Errorf("item %s not in cart: %w", productID, shop.ErrNotFound)
	}
	c.Items[idx].Qty = qty
	c.Items[idx].PriceCents = p.PriceCents
	c.Recompute()
	return c, s.Store.Save(ctx, c)
}

// RemoveItem drops the line if present; removing an absent product is
// not an error.
func (s *Service) RemoveItem(ctx context.Context, userID, productID string) (*Cart, error) {
	c, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	idx := c.find(productID)
	if idx < 0 {
		return c, nil
	}
	c.Items = append(c.Items[:idx], c.Items[idx+1:]...)
	c.Recompute()
	return c, s.Store.Save(ctx, c)
}

func (s *Service) Clear(ctx context.Context, userID string) (*Cart, error) {
	c, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	c.Items = nil
	c.Recompute()
	return c, s.Store.Save(ctx, c)
}

// Merge folds a guest cart into the user's cart after login. Lines that
// would exceed stock are skipped silently, as are lines whose product
// no longer exists; merging never fails on a bad line.
func (s *Service) Merge(ctx context.Context, userID string, lines []GuestLine) (*Cart, error) {
	c, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	for _, gl := range lines {
		if gl.Qty < 1 {
			continue
		}
		p, err := s.Products.FindByID(ctx, gl.ProductID)
		if errors.Is(err, shop.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}

		idx := c.find(gl.ProductID)
		if idx >= 0 {
			merged := c.Items[idx].Qty + gl.Qty
			if merged <= p.Stock {
				c.Items[idx].Qty = merged
			}
			continue
		}
		if gl.Qty <= p.Stock {
			c.Items = append(c.Items, Item{
				ProductID:  p.ID,
				Name:       p.Name,
				Image:      p.FirstImage(),
				Stock:      p.Stock,
				PriceCents: p.PriceCents,
				Qty:        gl.Qty,
			})
		}
	}

	c.Recompute()
	return c, s.Store.Save(ctx, c)
}

// Count is the badge number: total quantity across lines.
func (s *Service) Count(ctx context.Context, userID string) (int, error) {
	c, err := s.Store.FindByUser(ctx, userID)
	if errors.Is(err, shop.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return c.Count(), nil
}
