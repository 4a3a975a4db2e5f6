package httpx

import (
	"testing"

	"github.com/adiwirawan/go-shop-backend/internal/redisx"
	"github.com/adiwirawan/go-shop-backend/internal/shop"
)

func TestCanServeCachedStatus(t *testing.T) {
	owned := redisx.OrderStatus{Status: "shipped", UserID: "u1"}
	orphan := redisx.OrderStatus{Status: "shipped"}

	tests := []struct {
		name  string
		entry redisx.OrderStatus
		actor shop.Actor
		want  bool
	}{
		{"owner reads own order", owned, shop.Actor{UserID: "u1"}, true},
		{"other user is refused", owned, shop.Actor{UserID: "u2"}, false},
		{"admin reads any order", owned, shop.Actor{UserID: "root", Role: shop.RoleAdmin}, true},
		{"entry without owner never matches a user", orphan, shop.Actor{UserID: "u1"}, false},
		{"entry without owner still serves admins", orphan, shop.Actor{UserID: "root", Role: shop.RoleAdmin}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := canServeCachedStatus(tt.entry, tt.actor); got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}
