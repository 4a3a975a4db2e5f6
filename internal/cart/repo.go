package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/adiwirawan/go-shop-backend/internal/shop"
)

type Repo struct{ DB *pgxpool.Pool }

var _ Store = (*Repo)(nil)

func (r *Repo) FindByUser(ctx context.Context, userID string) (*Cart, error) {
	var c Cart
	err := r.DB.QueryRow(ctx, `SELECT id, user_id, total_cents, created_at, updated_at FROM carts WHERE user_id=$1`, userID).
		Scan(&c.ID, &c.UserID, &c.TotalCents, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("cart for user %s: %w", userID, shop.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	// LEFT JOIN keeps lines whose product vanished; the reservation pass
	// reports those as not found at checkout.
	rows, err := r.DB.Query(ctx, `
		SELECT ci.product_id, ci.qty, ci.price_cents,
		       COALESCE(p.name, ''), COALESCE(p.stock, 0), COALESCE(p.images[1], '')
		FROM cart_items ci
		LEFT JOIN products p ON p.id = ci.product_id
		WHERE ci.cart_id = $1
		ORDER BY ci.position`, c.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ProductID, &it.Qty, &it.PriceCents, &it.Name, &it.Stock, &it.Image); err != nil {
			return nil, err
		}
		c.Items = append(c.Items, it)
	}
	return &c, rows.Err()
}

// Create inserts an empty cart for the user. When a concurrent request
// already created one, the returned row is that existing cart, never
// the id generated here.
func (r *Repo) Create(ctx context.Context, userID string) (*Cart, error) {
	now := time.Now().UTC()
	c := &Cart{UserID: userID}
	err := r.DB.QueryRow(ctx, `
		INSERT INTO carts(id, user_id, total_cents, created_at, updated_at)
		VALUES ($1,$2,0,$3,$3)
		ON CONFLICT (user_id) DO UPDATE SET updated_at = now()
		RETURNING id, total_cents, created_at, updated_at`, uuid.NewString(), userID, now).
		Scan(&c.ID, &c.TotalCents, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Save replaces the cart's lines and total in one transaction.
func (r *Repo) Save(ctx context.Context, c *Cart) error {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `UPDATE carts SET total_cents=$2, updated_at=now() WHERE id=$1`, c.ID, c.TotalCents); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `DELETE FROM cart_items WHERE cart_id=$1`, c.ID); err != nil {
		return err
	}
	for i, it := range c.Items {
		if _, err := tx.Exec(ctx, `
			INSERT INTO cart_items(cart_id, product_id, qty, price_cents, position)
			VALUES ($1,$2,$3,$4,$5)`, c.ID, it.ProductID, it.Qty, it.PriceCents, i); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

// Clear empties the user's cart in place; used by checkout after the
// order is persisted.
func (r *Repo) Clear(ctx context.Context, userID string) error {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `
		DELETE FROM cart_items WHERE cart_id IN (SELECT id FROM carts WHERE user_id=$1)`, userID); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `UPDATE carts SET total_cents=0, updated_at=now() WHERE user_id=$1`, userID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
