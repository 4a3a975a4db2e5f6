package httpx

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	"github.com/adiwirawan/go-shop-backend/internal/orders"
	"github.com/adiwirawan/go-shop-backend/internal/payment"
	"github.com/adiwirawan/go-shop-backend/internal/redisx"
	"github.com/adiwirawan/go-shop-backend/internal/shop"
)

type OrdersHandler struct {
	Svc     *orders.Service
	Gateway payment.Gateway
	Redis   *redis.Client
}

func (h *OrdersHandler) Register(r *chi.Mux) {
	r.Post("/orders", h.place)
	r.Get("/orders", h.listMine)
	r.Get("/orders/all", h.listAll)
	r.Get("/orders/{id}", h.get)
	r.Get("/orders/{id}/status", h.getStatus)
	r.Put("/orders/{id}/cancel", h.cancel)
	r.Put("/orders/{id}/status", h.updateStatus)
	r.Post("/orders/{id}/pay/intent", h.payIntent)
	r.Put("/orders/{id}/pay", h.pay)
}

type placeOrderReq struct {
	ShippingAddress orders.Address `json:"shipping_address"`
	PaymentMethod   string         `json:"payment_method"`
}

type updateStatusReq struct {
	Status         string `json:"status"`
	TrackingNumber string `json:"tracking_number"`
}

type payReq struct {
	GatewayOrderID string `json:"gateway_order_id"`
	PaymentID      string `json:"payment_id"`
	Signature      string `json:"signature"`
}

func (h *OrdersHandler) place(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req placeOrderReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if req.ShippingAddress.Line1 == "" || req.PaymentMethod == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "shipping_address and payment_method are required"})
		return
	}

	o, err := h.Svc.PlaceOrder(r.Context(), actor.UserID, req.ShippingAddress, req.PaymentMethod)
	if err != nil {
		writeErr(w, err)
		return
	}
	h.cacheStatus(r, o)
	writeJSON(w, http.StatusCreated, o)
}

func (h *OrdersHandler) listMine(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireUser(w, r)
	if !ok {
		return
	}
	page := int(queryInt64(r.URL.Query().Get("page")))
	limit := int(queryInt64(r.URL.Query().Get("limit")))

	list, total, err := h.Svc.ListByUser(r.Context(), actor.UserID, page, limit)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"total": total, "orders": list})
}

func (h *OrdersHandler) listAll(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireAdmin(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	list, total, err := h.Svc.ListAll(r.Context(), actor, q.Get("status"),
		int(queryInt64(q.Get("page"))), int(queryInt64(q.Get("limit"))))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"total": total, "orders": list})
}

func (h *OrdersHandler) get(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireUser(w, r)
	if !ok {
		return
	}
	o, err := h.Svc.Get(r.Context(), chi.URLParam(r, "id"), actor)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

// getStatus reads through the Redis cache that the events consumer
// keeps warm.
func (h *OrdersHandler) getStatus(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireUser(w, r)
	if !ok {
		return
	}
	orderID := chi.URLParam(r, "id")

	key := fmt.Sprintf(redisx.KeyOrderStatus, orderID)
	if s, err := h.Redis.Get(r.Context(), key).Result(); err == nil && s != "" {
		var entry redisx.OrderStatus
		if json.Unmarshal([]byte(s), &entry) == nil && canServeCachedStatus(entry, actor) {
			writeJSON(w, http.StatusOK, map[string]string{"status": entry.Status})
			return
		}
	}

	o, err := h.Svc.Get(r.Context(), orderID, actor)
	if err != nil {
		writeErr(w, err)
		return
	}
	h.cacheStatus(r, o)
	writeJSON(w, http.StatusOK, map[string]any{"status": o.Status})
}

// canServeCachedStatus enforces the same owner-or-admin rule as
// Service.Get. An entry without an owner never matches a plain user, so
// those fall through to the database path and its check.
func canServeCachedStatus(entry redisx.OrderStatus, actor shop.Actor) bool {
	if actor.IsAdmin() {
		return true
	}
	return entry.UserID != "" && entry.UserID == actor.UserID
}

func (h *OrdersHandler) cancel(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireUser(w, r)
	if !ok {
		return
	}
	o, err := h.Svc.CancelOrder(r.Context(), chi.URLParam(r, "id"), actor)
	if err != nil {
		writeErr(w, err)
		return
	}
	h.cacheStatus(r, o)
	writeJSON(w, http.StatusOK, o)
}

func (h *OrdersHandler) updateStatus(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireAdmin(w, r)
	if !ok {
		return
	}
	var req updateStatusReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	o, err := h.Svc.UpdateStatus(r.Context(), chi.URLParam(r, "id"), orders.Status(req.Status), req.TrackingNumber, actor)
	if err != nil {
		writeErr(w, err)
		return
	}
	h.cacheStatus(r, o)
	writeJSON(w, http.StatusOK, o)
}

// payIntent builds the gateway order parameters for the client-side
// checkout widget.
func (h *OrdersHandler) payIntent(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireUser(w, r)
	if !ok {
		return
	}
	o, err := h.Svc.Get(r.Context(), chi.URLParam(r, "id"), actor)
	if err != nil {
		writeErr(w, err)
		return
	}
	intent := h.Gateway.NewIntent(o.TotalCents, "", o.ID)
	writeJSON(w, http.StatusOK, map[string]any{"intent": intent, "key": h.Gateway.KeyID})
}

func (h *OrdersHandler) pay(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req payReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if req.GatewayOrderID == "" || req.PaymentID == "" || req.Signature == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing payment verification parameters"})
		return
	}
	if !h.Gateway.VerifySignature(req.GatewayOrderID, req.PaymentID, req.Signature) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payment signature"})
		return
	}

	o, err := h.Svc.MarkPaid(r.Context(), chi.URLParam(r, "id"), actor, req.PaymentID)
	if err != nil {
		writeErr(w, err)
		return
	}
	h.cacheStatus(r, o)
	writeJSON(w, http.StatusOK, o)
}

func (h *OrdersHandler) cacheStatus(r *http.Request, o *orders.Order) {
	key := fmt.Sprintf(redisx.KeyOrderStatus, o.ID)
	b, _ := json.Marshal(redisx.OrderStatus{Status: string(o.Status), UserID: o.UserID})
	_ = h.Redis.Set(r.Context(), key, b, redisx.TTLStatusCache).Err()
}
