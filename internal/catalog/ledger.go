package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/adiwirawan/go-shop-backend/internal/shop"
)

// Ledger owns stock mutations. Stock only ever changes through
// Reserve/ReserveAll/Release, and the conditional update keeps it from
// going negative even under concurrent checkouts.
type Ledger struct{ DB *pgxpool.Pool }

// Reserve decrements stock by qty in a single conditional statement and
// returns the price at that same instant. Zero rows means either a
// missing product or a shortfall; the probe afterwards tells which.
func (l *Ledger) Reserve(ctx context.Context, productID string, qty int) (int64, error) {
	if qty < 1 {
		return 0, fmt.Errorf("product %s: %w", productID, shop.ErrInvalidQuantity)
	}
	var price int64
	err := l.DB.QueryRow(ctx, `
		UPDATE products SET stock = stock - $2, updated_at = now()
		WHERE id = $1 AND stock >= $2
		RETURNING price_cents`, productID, qty).Scan(&price)
	if err == nil {
		return price, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, err
	}
	var exists bool
	if err := l.DB.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM products WHERE id=$1)`, productID).Scan(&exists); err != nil {
		return 0, err
	}
	if !exists {
		return 0, fmt.Errorf("product %s: %w", productID, shop.ErrNotFound)
	}
	return 0, fmt.Errorf("product %s: %w", productID, shop.ErrOutOfStock)
}

// ReserveAll locks every product, verifies every line, then decrements.
// Any shortfall rolls the whole pass back, so a failed checkout never
// leaves partial reservations behind.
func (l *Ledger) ReserveAll(ctx context.Context, items []ItemQty) ([]ReservedLine, error) {
	// a single line needs no transaction, the conditional update is atomic
	if len(items) == 1 {
		price, err := l.Reserve(ctx, items[0].ProductID, items[0].Qty)
		if err != nil {
			return nil, err
		}
		return []ReservedLine{{ProductID: items[0].ProductID, Qty: items[0].Qty, PriceCents: price}}, nil
	}

	tx, err := l.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	lines := make([]ReservedLine, 0, len(items))
	for _, it := range items {
		var stock int
		var price int64
		err := tx.QueryRow(ctx, `SELECT stock, price_cents FROM products WHERE id=$1 FOR UPDATE`, it.ProductID).
			Scan(&stock, &price)
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("product %s: %w", it.ProductID, shop.ErrNotFound)
		}
		if err != nil {
			return nil, err
		}
		if stock < it.Qty {
			return nil, fmt.Errorf("product %s: need %d, have %d: %w", it.ProductID, it.Qty, stock, shop.ErrOutOfStock)
		}
		lines = append(lines, ReservedLine{ProductID: it.ProductID, Qty: it.Qty, PriceCents: price})
	}

	for _, it := range items {
		if _, err := tx.Exec(ctx, `UPDATE products SET stock = stock - $2, updated_at = now() WHERE id=$1`, it.ProductID, it.Qty); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return lines, nil
}

// Release restores stock after cancellation. A vanished product is
// skipped silently; idempotency is the caller's responsibility.
func (l *Ledger) Release(ctx context.Context, productID string, qty int) error {
	_, err := l.DB.Exec(ctx, `UPDATE products SET stock = stock + $2, updated_at = now() WHERE id=$1`, productID, qty)
	return err
}
