package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/adiwirawan/go-shop-backend/internal/shop"
)

type Repo struct{ DB *pgxpool.Pool }

var _ Store = (*Repo)(nil)

const orderCols = `id, user_id, status, items_cents, tax_cents, shipping_cents, total_cents,
	ship_line1, ship_city, ship_postal_code, ship_country, payment_method,
	is_paid, paid_at, COALESCE(payment_ref, ''), is_delivered, delivered_at,
	COALESCE(tracking_number, ''), created_at, updated_at`

func scanOrder(row pgx.Row) (*Order, error) {
	var o Order
	err := row.Scan(&o.ID, &o.UserID, &o.Status, &o.ItemsCents, &o.TaxCents, &o.ShippingCents, &o.TotalCents,
		&o.ShippingAddress.Line1, &o.ShippingAddress.City, &o.ShippingAddress.PostalCode, &o.ShippingAddress.Country,
		&o.PaymentMethod, &o.IsPaid, &o.PaidAt, &o.PaymentRef, &o.IsDelivered, &o.DeliveredAt,
		&o.TrackingNumber, &o.CreatedAt, &o.UpdatedAt)
	return &o, err
}

// Create persists the order header and item snapshots in one
// transaction.
func (r *Repo) Create(ctx context.Context, o *Order) error {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO orders(id, user_id, status, items_cents, tax_cents, shipping_cents, total_cents,
			ship_line1, ship_city, ship_postal_code, ship_country, payment_method,
			is_paid, is_delivered, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,false,false,$13,$14)`,
		o.ID, o.UserID, o.Status, o.ItemsCents, o.TaxCents, o.ShippingCents, o.TotalCents,
		o.ShippingAddress.Line1, o.ShippingAddress.City, o.ShippingAddress.PostalCode, o.ShippingAddress.Country,
		o.PaymentMethod, o.CreatedAt, o.UpdatedAt)
	if err != nil {
		return err
	}

	for _, it := range o.Items {
		if _, err := tx.Exec(ctx, `
			INSERT INTO order_items(order_id, product_id, name, qty, price_cents, image)
			VALUES ($1,$2,$3,$4,$5,$6)`,
			o.ID, it.ProductID, it.Name, it.Qty, it.PriceCents, it.Image); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func (r *Repo) FindByID(ctx context.Context, id string) (*Order, error) {
	o, err := scanOrder(r.DB.QueryRow(ctx, `SELECT `+orderCols+` FROM orders WHERE id=$1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("order %s: %w", id, shop.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	if err := r.loadItems(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

func (r *Repo) loadItems(ctx context.Context, o *Order) error {
	rows, err := r.DB.Query(ctx, `
		SELECT product_id, name, qty, price_cents, COALESCE(image, '')
		FROM order_items WHERE order_id=$1`, o.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var it OrderItem
		if err := rows.Scan(&it.ProductID, &it.Name, &it.Qty, &it.PriceCents, &it.Image); err != nil {
			return err
		}
		o.Items = append(o.Items, it)
	}
	return rows.Err()
}

// Update writes the mutable tail of an order: status, payment and
// delivery metadata. Item snapshots and totals never change.
func (r *Repo) Update(ctx context.Context, o *Order) error {
	ct, err := r.DB.Exec(ctx, `
		UPDATE orders
		SET status=$2, is_paid=$3, paid_at=$4, payment_ref=$5,
		    is_delivered=$6, delivered_at=$7, tracking_number=$8, updated_at=$9
		WHERE id=$1`,
		o.ID, o.Status, o.IsPaid, o.PaidAt, o.PaymentRef,
		o.IsDelivered, o.DeliveredAt, o.TrackingNumber, o.UpdatedAt)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("order %s: %w", o.ID, shop.ErrNotFound)
	}
	return nil
}

func (r *Repo) ListByUser(ctx context.Context, userID string, page, limit int) ([]Order, int, error) {
	return r.list(ctx, `WHERE user_id=$1`, []any{userID}, page, limit)
}

func (r *Repo) ListAll(ctx context.Context, status string, page, limit int) ([]Order, int, error) {
	if status != "" {
		return r.list(ctx, `WHERE status=$1`, []any{status}, page, limit)
	}
	return r.list(ctx, ``, nil, page, limit)
}

func (r *Repo) list(ctx context.Context, where string, args []any, page, limit int) ([]Order, int, error) {
	if limit < 1 {
		limit = 10
	}
	if page < 1 {
		page = 1
	}

	var total int
	if err := r.DB.QueryRow(ctx, `SELECT COUNT(*) FROM orders `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, limit, (page-1)*limit)
	rows, err := r.DB.Query(ctx,
		`SELECT `+orderCols+` FROM orders `+where+
			fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, len(args)-1, len(args)),
		args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	for i := range out {
		if err := r.loadItems(ctx, &out[i]); err != nil {
			return nil, 0, err
		}
	}
	return out, total, nil
}
