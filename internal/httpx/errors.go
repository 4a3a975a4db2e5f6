package httpx

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/adiwirawan/go-shop-backend/internal/shop"
)

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// statusFor is the single place where the error taxonomy meets HTTP.
func statusFor(err error) int {
	switch {
	case errors.Is(err, shop.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, shop.ErrOutOfStock),
		errors.Is(err, shop.ErrInvalidQuantity),
		errors.Is(err, shop.ErrEmptyCart),
		errors.Is(err, shop.ErrNotCancellable),
		errors.Is(err, shop.ErrInvalidStatus),
		errors.Is(err, shop.ErrAlreadyReviewed),
		errors.Is(err, shop.ErrInvalidRating):
		return http.StatusBadRequest
	case errors.Is(err, shop.ErrForbidden),
		errors.Is(err, shop.ErrNotPurchased):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

func writeErr(w http.ResponseWriter, err error) {
	code := statusFor(err)
	msg := err.Error()
	if code == http.StatusInternalServerError {
		msg = "server error"
	}
	writeJSON(w, code, map[string]string{"error": msg})
}
