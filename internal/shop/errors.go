// Package shop holds the error taxonomy shared by every aggregate.
// Handlers map these to HTTP status codes in one place.
package shop

import "errors"

var (
	ErrNotFound        = errors.New("not found")
	ErrOutOfStock      = errors.New("insufficient stock")
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
	ErrEmptyCart       = errors.New("cart is empty")
	ErrForbidden       = errors.New("not authorized")
	ErrNotCancellable  = errors.New("order cannot be cancelled")
	ErrAlreadyReviewed = errors.New("product already reviewed")
	ErrInvalidRating   = errors.New("rating must be between 1 and 5")
	ErrNotPurchased    = errors.New("product not purchased")
	ErrInvalidStatus   = errors.New("invalid order status")
)

const RoleAdmin = "admin"

// Actor is the already-verified identity attached to every request by
// the upstream auth layer.
type Actor struct {
	UserID string
	Role   string
}

func (a Actor) IsAdmin() bool { return a.Role == RoleAdmin }
