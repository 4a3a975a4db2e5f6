package httpx

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	"github.com/adiwirawan/go-shop-backend/internal/cart"
	"github.com/adiwirawan/go-shop-backend/internal/redisx"
)

type CartHandler struct {
	Svc   *cart.Service
	Redis *redis.Client
}

func (h *CartHandler) Register(r *chi.Mux) {
	r.Get("/cart", h.get)
	r.Get("/cart/count", h.count)
	r.Post("/cart/items", h.addItem)
	r.Put("/cart/items", h.updateItem)
	r.Delete("/cart/items/{productID}", h.removeItem)
	r.Delete("/cart", h.clear)
	r.Post("/cart/merge", h.merge)
}

type cartItemReq struct {
	ProductID string `json:"product_id"`
	Qty       int    `json:"qty"`
}

type mergeReq struct {
	Items []cart.GuestLine `json:"items"`
}

func (h *CartHandler) get(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireUser(w, r)
	if !ok {
		return
	}
	c, err := h.Svc.Get(r.Context(), actor.UserID)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *CartHandler) addItem(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req cartItemReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if req.Qty == 0 {
		req.Qty = 1
	}
	if req.ProductID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "product_id is required"})
		return
	}

	c, err := h.Svc.AddItem(r.Context(), actor.UserID, req.ProductID, req.Qty)
	if err != nil {
		writeErr(w, err)
		return
	}
	h.cacheCount(r, actor.UserID, c)
	writeJSON(w, http.StatusOK, c)
}

func (h *CartHandler) updateItem(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req cartItemReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if req.ProductID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "product_id is required"})
		return
	}

	c, err := h.Svc.UpdateQuantity(r.Context(), actor.UserID, req.ProductID, req.Qty)
	if err != nil {
		writeErr(w, err)
		return
	}
	h.cacheCount(r, actor.UserID, c)
	writeJSON(w, http.StatusOK, c)
}

func (h *CartHandler) removeItem(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireUser(w, r)
	if !ok {
		return
	}
	c, err := h.Svc.RemoveItem(r.Context(), actor.UserID, chi.URLParam(r, "productID"))
	if err != nil {
		writeErr(w, err)
		return
	}
	h.cacheCount(r, actor.UserID, c)
	writeJSON(w, http.StatusOK, c)
}

func (h *CartHandler) clear(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireUser(w, r)
	if !ok {
		return
	}
	c, err := h.Svc.Clear(r.Context(), actor.UserID)
	if err != nil {
		writeErr(w, err)
		return
	}
	h.cacheCount(r, actor.UserID, c)
	writeJSON(w, http.StatusOK, c)
}

func (h *CartHandler) merge(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req mergeReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if len(req.Items) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "no items to merge"})
		return
	}

	c, err := h.Svc.Merge(r.Context(), actor.UserID, req.Items)
	if err != nil {
		writeErr(w, err)
		return
	}
	h.cacheCount(r, actor.UserID, c)
	writeJSON(w, http.StatusOK, c)
}

// count serves the badge number from cache when it can.
func (h *CartHandler) count(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireUser(w, r)
	if !ok {
		return
	}
	key := fmt.Sprintf(redisx.KeyCartCount, actor.UserID)
	if s, err := h.Redis.Get(r.Context(), key).Result(); err == nil {
		if n, err := strconv.Atoi(s); err == nil {
			writeJSON(w, http.StatusOK, map[string]int{"count": n})
			return
		}
	}

	n, err := h.Svc.Count(r.Context(), actor.UserID)
	if err != nil {
		writeErr(w, err)
		return
	}
	_ = h.Redis.Set(r.Context(), key, strconv.Itoa(n), redisx.TTLCartCount).Err()
	writeJSON(w, http.StatusOK, map[string]int{"count": n})
}

func (h *CartHandler) cacheCount(r *http.Request, userID string, c *cart.Cart) {
	key := fmt.Sprintf(redisx.KeyCartCount, userID)
	_ = h.Redis.Set(r.Context(), key, strconv.Itoa(c.Count()), redisx.TTLCartCount).Err()
}
