package fxrates

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/cashbook-dev/cashbook/internal/platform/httpx"
)

type Handler struct {
	service *Service
	logger  *slog.Logger
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

type rateResponse struct {
	CommodityGUID string `json:"commodity_guid"`
	CurrencyGUID  string `json:"currency_guid"`
	Date          string `json:"date"`
	Source        string `json:"source"`
	Value         string `json:"value"`
}

// Find resolves a single rate:
// GET /fxrates?commodity=<guid>&currency=<guid>&as_of=2024-03-15
func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	commodityGUID, err := uuid.Parse(r.URL.Query().Get("commodity"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid commodity guid")
		return
	}
	currencyGUID, err := uuid.Parse(r.URL.Query().Get("currency"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid currency guid")
		return
	}
	asOf := time.Now().UTC()
	if raw := r.URL.Query().Get("as_of"); raw != "" {
		asOf, err = time.Parse("2006-01-02", raw)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "as_of must be YYYY-MM-DD")
			return
		}
	}

	rate, err := h.service.FindRate(r.Context(), commodityGUID, currencyGUID, asOf)
	if err != nil {
		if errors.Is(err, ErrRateUnavailable) {
			httpx.Problem(w, http.StatusNotFound, "Not Found", "no rate available for commodity pair")
			return
		}
		h.logger.Error("find rate", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, rateResponse{
		CommodityGUID: rate.CommodityGUID.String(),
		CurrencyGUID:  rate.CurrencyGUID.String(),
		Date:          rate.Date.Format("2006-01-02"),
		Source:        rate.Source,
		Value:         rate.Value.String(),
	})
}
