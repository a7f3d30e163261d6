package balances

import "github.com/go-chi/chi/v5"

func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/report", h.Report)
	r.Get("/report.csv", h.ReportCSV)
}
