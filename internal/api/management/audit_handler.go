package management

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/CaioWing/paddock/internal/api/response"
	"github.com/CaioWing/paddock/internal/domain"
)

type AuditLister interface {
	List(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditView, int, error)
}

type AuditHandler struct {
	audit   AuditLister
	perPage int
	log     *slog.Logger
}

func NewAuditHandler(audit AuditLister, perPage int, log *slog.Logger) *AuditHandler {
	return &AuditHandler{audit: audit, perPage: perPage, log: log}
}

func (h *AuditHandler) List(w http.ResponseWriter, r *http.Request) {
	page, perPage := response.ParsePagination(r, h.perPage)

	filter := domain.AuditFilter{
		Page:    page,
		PerPage: perPage,
	}

	if v := r.URL.Query().Get("action"); v != "" {
		action := domain.AuditAction(v)
		filter.Action = &action
	}
	if v := r.URL.Query().Get("listing_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			response.Error(w, http.StatusBadRequest, "Invalid Listing ID")
			return
		}
		filter.ListingID = &id
	}

	entries, total, err := h.audit.List(r.Context(), filter)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			response.Invalid(w, err, "Invalid query")
			return
		}
		h.log.Error("list audit log", "err", err)
		response.Error(w, http.StatusInternalServerError, response.MsgInternal)
		return
	}

	response.Paginated(w, http.StatusOK, entries, page, perPage, total)
}
