package balances

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/cashbook-dev/cashbook/internal/platform/httpx"
)

type Handler struct {
	service *Service
	logger  *slog.Logger
	builds  singleflight.Group
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

type lineResponse struct {
	AccountGUID   string `json:"account_guid"`
	Name          string `json:"name"`
	FullName      string `json:"full_name"`
	Type          string `json:"type"`
	Depth         int    `json:"depth"`
	Commodity     string `json:"commodity"`
	CreditBalance bool   `json:"credit_balance"`
	TotalBalance  string `json:"total_balance"`
	PeriodBalance string `json:"period_balance"`
}

type reportResponse struct {
	RootGUID            string         `json:"root_guid"`
	RootName            string         `json:"root_name"`
	Currency            string         `json:"currency"`
	From                string         `json:"from,omitempty"`
	To                  string         `json:"to,omitempty"`
	GeneratedAt         time.Time      `json:"generated_at"`
	Lines               []lineResponse `json:"lines"`
	ExcludedCommodities []string       `json:"excluded_commodities,omitempty"`
}

// Report serves GET /balances/report?root=&from=&to=. Identical in-flight
// builds collapse onto one computation via singleflight.
func (h *Handler) Report(w http.ResponseWriter, r *http.Request) {
	report, ok := h.buildReport(w, r)
	if !ok {
		return
	}
	httpx.JSON(w, http.StatusOK, toReportResponse(report))
}

// ReportCSV serves GET /balances/report.csv as a streamed download.
func (h *Handler) ReportCSV(w http.ResponseWriter, r *http.Request) {
	report, ok := h.buildReport(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="balances.csv"`)
	if err := writeReportCSV(w, report); err != nil {
		h.logger.Error("stream balances csv", slog.Any("error", err))
	}
}

func (h *Handler) buildReport(w http.ResponseWriter, r *http.Request) (Report, bool) {
	req, err := requestFromQuery(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return Report{}, false
	}

	key := buildKey(req)
	ctx := r.Context()
	resultCh := h.builds.DoChan(key, func() (any, error) {
		return h.service.Report(ctx, req)
	})
	var result any
	select {
	case <-ctx.Done():
		err = ctx.Err()
	case res := <-resultCh:
		result, err = res.Val, res.Err
	}
	if err != nil {
		h.logger.Error("build balances report", slog.Any("error", err), slog.String("key", key))
		httpx.RespondError(w, err)
		return Report{}, false
	}
	return result.(Report), true
}

func requestFromQuery(r *http.Request) (Request, error) {
	req := Request{Root: r.URL.Query().Get("root")}
	if raw := r.URL.Query().Get("from"); raw != "" {
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return Request{}, fmt.Errorf("from must be YYYY-MM-DD")
		}
		req.From = &t
	}
	if raw := r.URL.Query().Get("to"); raw != "" {
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return Request{}, fmt.Errorf("to must be YYYY-MM-DD")
		}
		// Window end is inclusive of the whole day.
		end := t.Add(24*time.Hour - time.Nanosecond)
		req.To = &end
	}
	return req, nil
}

func buildKey(req Request) string {
	from, to := "", ""
	if req.From != nil {
		from = req.From.Format(time.RFC3339Nano)
	}
	if req.To != nil {
		to = req.To.Format(time.RFC3339Nano)
	}
	return req.Root + "|" + from + "|" + to
}

func toReportResponse(report Report) reportResponse {
	out := reportResponse{
		RootGUID:            report.RootGUID.String(),
		RootName:            report.RootName,
		Currency:            report.Currency,
		GeneratedAt:         report.GeneratedAt,
		ExcludedCommodities: report.ExcludedCommodities,
		Lines:               make([]lineResponse, 0, len(report.Lines)),
	}
	if report.From != nil {
		out.From = report.From.Format("2006-01-02")
	}
	if report.To != nil {
		out.To = report.To.Format("2006-01-02")
	}
	for _, line := range report.Lines {
		out.Lines = append(out.Lines, lineResponse{
			AccountGUID:   line.AccountGUID.String(),
			Name:          line.Name,
			FullName:      line.FullName,
			Type:          string(line.Type),
			Depth:         line.Depth,
			Commodity:     line.Commodity,
			CreditBalance: line.CreditBalance,
			TotalBalance:  line.TotalBalance.StringFixed(2),
			PeriodBalance: line.PeriodBalance.StringFixed(2),
		})
	}
	return out
}
