package accounts

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

type accountResponse struct {
	GUID          string `json:"guid"`
	Name          string `json:"name"`
	FullName      string `json:"full_name,omitempty"`
	Type          Type   `json:"type"`
	ParentGUID    string `json:"parent_guid,omitempty"`
	CommodityGUID string `json:"commodity_guid"`
	Depth         int    `json:"depth,omitempty"`
	Hidden        bool   `json:"hidden"`
	Placeholder   bool   `json:"placeholder"`
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.List(r.Context())
	if err != nil {
		h.logger.Error("list accounts", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	out := make([]accountResponse, 0, len(list))
	for _, a := range list {
		resp := accountResponse{
			GUID:          a.GUID.String(),
			Name:          a.Name,
			Type:          a.Type,
			CommodityGUID: a.CommodityGUID.String(),
			Hidden:        a.Hidden,
			Placeholder:   a.Placeholder,
		}
		if a.ParentGUID != nil {
			resp.ParentGUID = a.ParentGUID.String()
		}
		out = append(out, resp)
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"accounts": out})
}

// Tree returns the chart in depth-first order with computed full names, the
// shape the web tree view consumes directly.
func (h *Handler) Tree(w http.ResponseWriter, r *http.Request) {
	tree, err := h.service.Tree(r.Context())
	if err != nil {
		h.logger.Error("build account tree", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	root, ok := tree.Root()
	if !ok {
		httpx.Problem(w, http.StatusNotFound, "Not Found", "book has no root account")
		return
	}
	var out []accountResponse
	var walk func(int)
	walk = func(i int) {
		a := tree.At(i)
		if a.Type != TypeRoot {
			out = append(out, accountResponse{
				GUID:          a.GUID.String(),
				Name:          a.Name,
				FullName:      tree.FullName(i),
				Type:          a.Type,
				CommodityGUID: a.CommodityGUID.String(),
				Depth:         tree.Depth(i),
				Hidden:        a.Hidden,
				Placeholder:   a.Placeholder,
			})
		}
		for _, c := range tree.Children(i) {
			walk(c)
		}
	}
	walk(root)
	httpx.JSON(w, http.StatusOK, map[string]any{"accounts": out})
}
