package orders

import "time"

// OrderItem is an immutable snapshot of a product at checkout time.
// Later product edits never touch it.
type OrderItem struct {
	ProductID  string `json:"product_id"`
	Name       string `json:"name"`
	Qty        int    `json:"qty"`
	PriceCents int64  `json:"price_cents"`
	Image      string `json:"image,omitempty"`
}

type Address struct {
	Line1      string `json:"line1"`
	City       string `json:"city"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

type Order struct {
	ID              string      `json:"id"`
	UserID          string      `json:"user_id"`
	Items           []OrderItem `json:"items"`
	ShippingAddress Address     `json:"shipping_address"`
	PaymentMethod   string      `json:"payment_method"`

	ItemsCents    int64 `json:"items_cents"`
	TaxCents      int64 `json:"tax_cents"`
	ShippingCents int64 `json:"shipping_cents"`
	TotalCents    int64 `json:"total_cents"`

	Status Status `json:"status"`

	IsPaid     bool       `json:"is_paid"`
	PaidAt     *time.Time `json:"paid_at,omitempty"`
	PaymentRef string     `json:"payment_ref,omitempty"`

	IsDelivered    bool       `json:"is_delivered"`
	DeliveredAt    *time.Time `json:"delivered_at,omitempty"`
	TrackingNumber string     `json:"tracking_number,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
