package commodities

import (
	"log/slog"
	"net/http"

	"github.com/cashbook-dev/cashbook/internal/platform/httpx"
)

type Handler struct {
	service *Service
	logger  *slog.Logger
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

type commodityResponse struct {
	GUID        string  `json:"guid"`
	Namespace   string  `json:"namespace"`
	Mnemonic    string  `json:"mnemonic"`
	Fullname    string  `json:"fullname"`
	Fraction    int64   `json:"fraction"`
	QuoteSource *string `json:"quote_source,omitempty"`
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.List(r.Context())
	if err != nil {
		h.logger.Error("list commodities", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	out := make([]commodityResponse, 0, len(items))
	for _, c := range items {
		out = append(out, commodityResponse{
			GUID:        c.GUID.String(),
			Namespace:   c.Namespace,
			Mnemonic:    c.Mnemonic,
			Fullname:    c.Fullname,
			Fraction:    c.Fraction,
			QuoteSource: c.QuoteSource,
		})
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"commodities": out})
}
