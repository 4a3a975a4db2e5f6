package httpx

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/adiwirawan/go-shop-backend/internal/catalog"
)

type ProductsHandler struct {
	Repo *catalog.Repo
}

func (h *ProductsHandler) Register(r *chi.Mux) {
	r.Get("/products", h.list)
	r.Get("/products/{id}", h.get)
	r.Post("/products", h.create)
	r.Put("/products/{id}", h.update)
	r.Delete("/products/{id}", h.delete)
}

type productReq struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Brand       string   `json:"brand"`
	PriceCents  int64    `json:"price_cents"`
	Stock       int      `json:"stock"`
	Images      []string `json:"images"`
}

func (pr productReq) validate() string {
	switch {
	case pr.Name == "":
		return "name is required"
	case pr.PriceCents < 0:
		return "price_cents must not be negative"
	case pr.Stock < 0:
		return "stock must not be negative"
	}
	return ""
}

func (h *ProductsHandler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := catalog.Filter{
		Category:      q.Get("category"),
		Search:        q.Get("search"),
		InStock:       q.Get("in_stock") == "true",
		MinPriceCents: queryInt64(q.Get("min_price_cents")),
		MaxPriceCents: queryInt64(q.Get("max_price_cents")),
		Page:          int(queryInt64(q.Get("page"))),
		Limit:         int(queryInt64(q.Get("limit"))),
	}

	products, total, err := h.Repo.List(r.Context(), f)
	if err != nil {
		writeErr(w, err)
		return
	}
	limit := f.PageLimit()
	writeJSON(w, http.StatusOK, map[string]any{
		"page":        f.Offset()/limit + 1,
		"limit":       limit,
		"total":       total,
		"total_pages": (total + limit - 1) / limit,
		"products":    products,
	})
}

func (h *ProductsHandler) get(w http.ResponseWriter, r *http.Request) {
	p, err := h.Repo.FindByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *ProductsHandler) create(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireAdmin(w, r)
	if !ok {
		return
	}
	var req productReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if msg := req.validate(); msg != "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
		return
	}

	p := catalog.Product{
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
		Brand:       req.Brand,
		PriceCents:  req.PriceCents,
		Stock:       req.Stock,
		Images:      req.Images,
		CreatedBy:   actor.UserID,
	}
	if err := h.Repo.Create(r.Context(), &p); err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (h *ProductsHandler) update(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireAdmin(w, r); !ok {
		return
	}
	var req productReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if msg := req.validate(); msg != "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
		return
	}

	id := chi.URLParam(r, "id")
	p := catalog.Product{
		ID:          id,
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
		Brand:       req.Brand,
		PriceCents:  req.PriceCents,
		Stock:       req.Stock,
		Images:      req.Images,
	}
	if err := h.Repo.Update(r.Context(), p); err != nil {
		writeErr(w, err)
		return
	}
	updated, err := h.Repo.FindByID(r.Context(), id)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *ProductsHandler) delete(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireAdmin(w, r); !ok {
		return
	}
	if err := h.Repo.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "product deleted"})
}

func queryInt64(s string) int64 {
	if s == "" {
		return 0
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return n
}
