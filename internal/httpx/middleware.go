package httpx

import (
	"context"
	"net/http"

	"github.com/adiwirawan/go-shop-backend/internal/shop"
)

type ctxKey int

const actorKey ctxKey = iota

// Identity lifts the already-verified identity headers into the request
// context. Authentication itself happens upstream; the core trusts
// X-User-Id and X-User-Role as given.
func Identity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor := shop.Actor{
			UserID: r.Header.Get("X-User-Id"),
			Role:   r.Header.Get("X-User-Role"),
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), actorKey, actor)))
	})
}

func ActorFrom(ctx context.Context) shop.Actor {
	a, _ := ctx.Value(actorKey).(shop.Actor)
	return a
}

// requireUser writes 401 and returns false when no identity arrived.
func requireUser(w http.ResponseWriter, r *http.Request) (shop.Actor, bool) {
	a := ActorFrom(r.Context())
	if a.UserID == "" {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "authentication required"})
		return shop.Actor{}, false
	}
	return a, true
}

func requireAdmin(w http.ResponseWriter, r *http.Request) (shop.Actor, bool) {
	a, ok := requireUser(w, r)
	if !ok {
		return shop.Actor{}, false
	}
	if !a.IsAdmin() {
		writeJSON(w, http.StatusForbidden, map[string]string{"error": "admin only"})
		return shop.Actor{}, false
	}
	return a, true
}
