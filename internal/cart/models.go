package cart

import "time"

// Item is one cart line. Name/Image/Stock are populated from the live
// product on load; PriceCents is the snapshot taken by the last
// successful add or update.
type Item struct {
	ProductID  string `json:"product_id"`
	Name       string `json:"name"`
	Image      string `json:"image"`
	Stock      int    `json:"stock"`
	PriceCents int64  `json:"price_cents"`
	Qty        int    `json:"qty"`
}

type Cart struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	Items      []Item    `json:"items"` // insertion order
	TotalCents int64     `json:"total_cents"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// GuestLine is an anonymous pre-login cart entry sent along on login.
type GuestLine struct {
	ProductID string `json:"product_id"`
	Qty       int    `json:"qty"`
}

// Recompute re-derives the running total from the lines. Call after
// every mutation.
func (c *Cart) Recompute() {
	var total int64
	for _, it := range c.Items {
		total += int64(it.Qty) * it.PriceCents
	}
	c.TotalCents = total
}

func (c *Cart) Count() int {
	n := 0
	for _, it := range c.Items {
		n += it.Qty
	}
	return n
}

func (c *Cart) find(productID string) int {
	for i, it := range c.Items {
		if it.ProductID == productID {
			return i
		}
	}
	return -1
}
