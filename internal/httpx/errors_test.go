package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/adiwirawan/go-shop-backend/internal/shop"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{shop.ErrNotFound, http.StatusNotFound},
		{shop.ErrOutOfStock, http.StatusBadRequest},
		{shop.ErrInvalidQuantity, http.StatusBadRequest},
		{shop.ErrEmptyCart, http.StatusBadRequest},
		{shop.ErrNotCancellable, http.StatusBadRequest},
		{shop.ErrInvalidStatus, http.StatusBadRequest},
		{shop.ErrAlreadyReviewed, http.StatusBadRequest},
		{shop.ErrInvalidRating, http.StatusBadRequest},
		{shop.ErrForbidden, http.StatusForbidden},
		{shop.ErrNotPurchased, http.StatusForbidden},
		{errors.New("pg: connection refused"), http.StatusInternalServerError},
		// wrapped sentinels keep their mapping
		{fmt.Errorf("product abc: %w", shop.ErrOutOfStock), http.StatusBadRequest},
		{fmt.Errorf("order xyz: %w", shop.ErrNotFound), http.StatusNotFound},
	}
	for _, tt := range tests {
		if got := statusFor(tt.err); got != tt.want {
			t.Errorf("statusFor(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestWriteErrMasksInternal(t *testing.T) {
	rec := httptest.NewRecorder()
	writeErr(rec, errors.New("dial tcp 10.0.0.5:5432: connect: connection refused"))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("code = %d", rec.Code)
	}
	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["error"] != "server error" {
		t.Fatalf("error = %q, internal detail leaked", body["error"])
	}
}

func TestWriteErrPassesTaxonomyMessage(t *testing.T) {
	rec := httptest.NewRecorder()
	writeErr(rec, fmt.Errorf("product abc: %w", shop.ErrOutOfStock))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("code = %d", rec.Code)
	}
	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["error"] == "" || body["error"] == "server error" {
		t.Fatalf("error = %q", body["error"])
	}
}
