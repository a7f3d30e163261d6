package ledger

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/cashbook-dev/cashbook/internal/observability"
	"github.com/cashbook-dev/cashbook/internal/platform/httpx"
	"github.com/cashbook-dev/cashbook/internal/shared"
)

type Handler struct {
	service  *Service
	logger   *slog.Logger
	validate *validator.Validate
	metrics  *observability.Metrics
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// WithMetrics attaches posting outcome counters. Optional.
func (h *Handler) WithMetrics(metrics *observability.Metrics) *Handler {
	h.metrics = metrics
	return h
}

type splitResponse struct {
	GUID        string `json:"guid"`
	AccountGUID string `json:"account_guid"`
	Memo        string `json:"memo,omitempty"`
	Reconcile   string `json:"reconcile"`
	Value       string `json:"value"`
	Quantity    string `json:"quantity"`
	Generated   bool   `json:"generated,omitempty"`
}

type transactionResponse struct {
	GUID        string          `json:"guid"`
	Currency    string          `json:"currency_guid"`
	Num         string          `json:"num,omitempty"`
	PostDate    string          `json:"post_date"`
	EnterDate   time.Time       `json:"enter_date"`
	Description string          `json:"description,omitempty"`
	Splits      []splitResponse `json:"splits"`
}

func toTransactionResponse(e Transaction) transactionResponse {
	resp := transactionResponse{
		GUID:        e.GUID.String(),
		Currency:    e.CurrencyGUID.String(),
		Num:         e.Num,
		PostDate:    e.PostDate.Format("2006-01-02"),
		EnterDate:   e.EnterDate,
		Description: e.Description,
		Splits:      make([]splitResponse, 0, len(e.Splits)),
	}
	for _, s := range e.Splits {
		resp.Splits = append(resp.Splits, splitResponse{
			GUID:        s.GUID.String(),
			AccountGUID: s.AccountGUID.String(),
			Memo:        s.Memo,
			Reconcile:   string(s.Reconcile),
			Value:       s.Value.String(),
			Quantity:    s.Quantity.String(),
			Generated:   s.Memo == TradingSplitMemo,
		})
	}
	return resp
}

// Post accepts a candidate split set and returns the finalized transaction,
// including any generated trading splits, or a structured imbalance response.
func (h *Handler) Post(w http.ResponseWriter, r *http.Request) {
	var input PostingInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validate.Struct(input); err != nil {
		fields := map[string]string{}
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				fields[fe.Field()] = fe.Tag()
			}
		}
		httpx.ProblemWithErrors(w, http.StatusBadRequest, "Validation Failed", "posting input invalid", fields)
		return
	}

	entry, err := h.service.Post(r.Context(), input)
	if err != nil {
		h.respondPostError(w, err)
		return
	}
	h.metrics.ObservePosting("accepted")
	httpx.JSON(w, http.StatusCreated, map[string]any{"transaction": toTransactionResponse(entry)})
}

type residualResponse struct {
	Commodity string `json:"commodity"`
	Residual  string `json:"residual"`
}

func (h *Handler) respondPostError(w http.ResponseWriter, err error) {
	var imbalance *ImbalanceError
	switch {
	case errors.As(err, &imbalance):
		h.metrics.ObservePosting("imbalanced")
		residuals := make([]residualResponse, 0, len(imbalance.Residuals)+1)
		if imbalance.ValueResidual != nil {
			residuals = append(residuals, residualResponse{
				Commodity: imbalance.ValueResidual.Commodity.Key(),
				Residual:  imbalance.ValueResidual.Amount.String(),
			})
		}
		for _, res := range imbalance.Residuals {
			residuals = append(residuals, residualResponse{Commodity: res.Commodity.Key(), Residual: res.Amount.String()})
		}
		httpx.ProblemWithErrors(w, http.StatusUnprocessableEntity, "Unbalanced Transaction", imbalance.Error(), residuals)
	case errors.Is(err, ErrTooFewSplits), errors.Is(err, ErrMissingCommodity), errors.Is(err, ErrAccountNotFound):
		h.metrics.ObservePosting("rejected")
		httpx.Problem(w, http.StatusBadRequest, "Invalid Posting", err.Error())
	case errors.Is(err, shared.ErrDuplicate):
		httpx.Problem(w, http.StatusConflict, "Duplicate", err.Error())
	default:
		h.logger.Error("post transaction", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page, perPage := shared.PageFromQuery(r.URL.Query())
	entries, pagination, err := h.service.List(r.Context(), page, perPage)
	if err != nil {
		h.logger.Error("list transactions", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	out := make([]transactionResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, toTransactionResponse(e))
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"transactions": out,
		"pagination": map[string]int{
			"page":        pagination.Page,
			"per_page":    pagination.PerPage,
			"total":       pagination.Total,
			"total_pages": pagination.TotalPages,
		},
	})
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	guid, err := uuid.Parse(chi.URLParam(r, "guid"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid transaction guid")
		return
	}
	entry, err := h.service.Get(r.Context(), guid)
	if err != nil {
		if errors.Is(err, ErrTransactionNotFound) {
			httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
			return
		}
		h.logger.Error("get transaction", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"transaction": toTransactionResponse(entry)})
}
