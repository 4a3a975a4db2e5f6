package catalog

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

const productCols = `id, name, description, category, brand, price_cents, stock,
	images, avg_rating_milli, review_count, COALESCE(created_by, ''), created_at, updated_at`

func scanProduct(row pgx.Row) (Product, error) {
	var p Product
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Category, &p.Brand,
		&p.PriceCents, &p.Stock, &p.Images, &p.AvgRatingMilli, &p.ReviewCount,
		&p.CreatedBy, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

func (r *Repo) FindByID(ctx context.Context, id string) (Product, error) {
	p, err := scanProduct(r.DB.QueryRow(ctx, `SELECT `+productCols+` FROM products WHERE id=$1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Product{}, fmt.Errorf("product %s: %w", id, shop.ErrNotFound)
	}
	return p, err
}

func (r *Repo) Create(ctx context.Context, p *Product) error {
	p.ID = uuid.NewString()
	now := time.Now().UTC()
	p.CreatedAt, p.UpdatedAt = now, now
	if p.Images == nil {
		p.Images = []string{}
	}
	_, err := r.DB.Exec(ctx, `
		INSERT INTO products(id, name, description, category, brand, price_cents, stock, images, created_by, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
		p.ID, p.Name, p.Description, p.Category, p.Brand, p.PriceCents, p.Stock, p.Images, p.CreatedBy, p.CreatedAt, p.UpdatedAt)
	return err
}

func (r *Repo) Update(ctx context.Context, p Product) error {
	ct, err := r.DB.Exec(ctx, `
		UPDATE products
		SET name=$2, description=$3, category=$4, brand=$5, price_cents=$6, stock=$7, images=$8, updated_at=now()
		WHERE id=$1`,
		p.ID, p.Name, p.Description, p.Category, p.Brand, p.PriceCents, p.Stock, p.Images)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("product %s: %w", p.ID, shop.ErrNotFound)
	}
	return nil
}

func (r *Repo) Delete(ctx context.Context, id string) error {
	ct, err := r.DB.Exec(ctx, `DELETE FROM products WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("product %s: %w", id, shop.ErrNotFound)
	}
	return nil
}

// List applies the filter and returns one page plus the total match count.
func (r *Repo) List(ctx context.Context, f Filter) ([]Product, int, error) {
	where := ""
	args := []any{}
	add := func(cond string) {
		if where == "" {
			where = " WHERE " + cond
		} else {
			where += " AND " + cond
		}
	}

	if f.Category != "" {
		args = append(args, f.Category)
		add(fmt.Sprintf("category=$%d", len(args)))
	}
	if f.MinPriceCents > 0 {
		args = append(args, f.MinPriceCents)
		add(fmt.Sprintf("price_cents >= $%d", len(args)))
	}
	if f.MaxPriceCents > 0 {
		args = append(args, f.MaxPriceCents)
		add(fmt.Sprintf("price_cents <= $%d", len(args)))
	}
	if f.Search != "" {
		args = append(args, "%"+f.Search+"%")
		add(fmt.Sprintf("(name ILIKE $%d OR description ILIKE $%d)", len(args), len(args)))
	}
	if f.InStock {
		add("stock > 0")
	}

	var total int
	if err := r.DB.QueryRow(ctx, `SELECT COUNT(*) FROM products`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, f.PageLimit(), f.Offset())
	rows, err := r.DB.Query(ctx,
		`SELECT `+productCols+` FROM products`+where+
			fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, len(args)-1, len(args)),
		args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, p)
	}
	return out, total, rows.Err()
}
