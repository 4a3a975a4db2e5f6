package redisx

import "time"

const (
	// Cache order status for fast GETs: order_status:{order_id}
	KeyOrderStatus = "order_status:%s"

	// Cart item count badge: cart_count:{user_id}
	KeyCartCount = "cart_count:%s"

	// Dedup event processing: dedup:{service}:{event_id}
	KeyDedup = "dedup:%s:%s"
)

var (
	TTLStatusCache = 5 * time.Minute
	TTLCartCount   = 10 * time.Minute
	TTLDedup       = 48 * time.Hour
)

// OrderStatus is the cached status entry. UserID identifies the owner
// so reads can be authorized without loading the order; entries written
// without it only ever serve admins.
type OrderStatus struct {
	Status string `json:"status"`
	UserID string `json:"user_id,omitempty"`
}
