package ledger

import "github.com/go-chi/chi/v5"

func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/transactions", h.List)
	r.Post("/transactions", h.Post)
	r.Get("/transactions/{guid}", h.Get)
}
