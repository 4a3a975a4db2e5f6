package httpx

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/adiwirawan/go-shop-backend/internal/review"
)

type ReviewsHandler struct {
	Svc *review.Service
}

func (h *ReviewsHandler) Register(r *chi.Mux) {
	r.Post("/products/{id}/reviews", h.create)
	r.Get("/products/{id}/reviews", h.list)
}

type reviewReq struct {
	Rating  int    `json:"rating"`
	Title   string `json:"title"`
	Comment string `json:"comment"`
}

func (h *ReviewsHandler) create(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req reviewReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	rv, err := h.Svc.Create(r.Context(), actor.UserID, chi.URLParam(r, "id"), req.Rating, req.Title, req.Comment)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, rv)
}

func (h *ReviewsHandler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	list, total, err := h.Svc.ListByProduct(r.Context(), chi.URLParam(r, "id"),
		int(queryInt64(q.Get("page"))), int(queryInt64(q.Get("limit"))))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"total": total, "reviews": list})
}
