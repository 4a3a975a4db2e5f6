package catalog

import "time"

type Product struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Description    string    `json:"description"`
	Category       string    `json:"category"`
	Brand          string    `json:"brand"`
	PriceCents     int64     `json:"price_cents"`
	Stock          int       `json:"stock"`
	Images         []string  `json:"images"`
	AvgRatingMilli int       `json:"avg_rating_milli"` // 4.5 stars = 4500
	ReviewCount    int       `json:"review_count"`
	CreatedBy      string    `json:"created_by,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// FirstImage is what order snapshots carry.
func (p Product) FirstImage() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}

type ItemQty struct {
	ProductID string `json:"product_id"`
	Qty       int    `json:"qty"`
}

// ReservedLine is the price snapshot taken at the instant stock was
// decremented for a line.
type ReservedLine struct {
	ProductID  string
	Qty        int
	PriceCents int64
}

// Filter narrows List; zero values mean "no constraint".
type Filter struct {
	Category      string
	MinPriceCents int64
	MaxPriceCents int64
	Search        string
	InStock       bool
	Page          int
	Limit         int
}

func (f Filter) Offset() int {
	page := f.Page
	if page < 1 {
		page = 1
	}
	return (page - 1) * f.PageLimit()
}

func (f Filter) PageLimit() int {
	if f.Limit < 1 {
		return 10
	}
	return f.Limit
}
