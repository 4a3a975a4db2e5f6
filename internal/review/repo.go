package review

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Repo struct{ DB *pgxpool.Pool }

var _ Store = (*Repo)(nil)

func (r *Repo) Exists(ctx context.Context, userID, productID string) (bool, error) {
	var ok bool
	err := r.DB.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM reviews WHERE user_id=$1 AND product_id=$2)`,
		userID, productID).Scan(&ok)
	return ok, err
}

func (r *Repo) HasDeliveredOrder(ctx context.Context, userID, productID string) (bool, error) {
	var ok bool
	err := r.DB.QueryRow(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM orders o
			JOIN order_items oi ON oi.order_id = o.id
			WHERE o.user_id=$1 AND oi.product_id=$2 AND o.status='delivered')`,
		userID, productID).Scan(&ok)
	return ok, err
}

func (r *Repo) Create(ctx context.Context, rv *Review) error {
	_, err := r.DB.Exec(ctx, `
		INSERT INTO reviews(id, user_id, product_id, rating, title, comment, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		rv.ID, rv.UserID, rv.ProductID, rv.Rating, rv.Title, rv.Comment, rv.CreatedAt)
	return err
}

func (r *Repo) ListByProduct(ctx context.Context, productID string, page, limit int) ([]Review, int, error) {
	if limit < 1 {
		limit = 10
	}
	if page < 1 {
		page = 1
	}

	var total int
	if err := r.DB.QueryRow(ctx, `SELECT COUNT(*) FROM reviews WHERE product_id=$1`, productID).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.DB.Query(ctx, `
		SELECT id, user_id, product_id, rating, title, comment, created_at
		FROM reviews WHERE product_id=$1
		ORDER BY created_at DESC LIMIT $2 OFFSET $3`, productID, limit, (page-1)*limit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Review
	for rows.Next() {
		var rv Review
		if err := rows.Scan(&rv.ID, &rv.UserID, &rv.ProductID, &rv.Rating, &rv.Title, &rv.Comment, &rv.CreatedAt); err != nil {
			return nil, 0, err
		}
		out = append(out, rv)
	}
	return out, total, rows.Err()
}

// RefreshRating stores the average in milli-stars so the products table
// stays integer-only.
func (r *Repo) RefreshRating(ctx context.Context, productID string) error {
	_, err := r.DB.Exec(ctx, `
		UPDATE products p
		SET avg_rating_milli = COALESCE((SELECT (AVG(rating)*1000)::int FROM reviews WHERE product_id=$1), 0),
		    review_count     = (SELECT COUNT(*) FROM reviews WHERE product_id=$1),
		    updated_at       = now()
		WHERE p.id=$1`, productID)
	return err
}
