package management

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/CaioWing/paddock/internal/api/middleware"
	"github.com/CaioWing/paddock/internal/api/response"
	"github.com/CaioWing/paddock/internal/domain"
	"github.com/CaioWing/paddock/internal/service"
)

const MsgUpdated = "Listing updated successfully"

type ListingReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Listing, error)
	ListPage(ctx context.Context, filter domain.ListingFilter) (*service.ListingPage, error)
	CountByStatus(ctx context.Context) (map[domain.ListingStatus]int, error)
}

type Moderator interface {
	SetStatus(ctx context.Context, id uuid.UUID, status domain.ListingStatus, callerID string) (*domain.Listing, error)
	EditFields(ctx context.Context, id uuid.UUID, in service.EditListingInput, callerID string) (*domain.Listing, error)
}

type ListingHandler struct {
	listings  ListingReader
	moderator Moderator
	perPage   int
	log       *slog.Logger
}

func NewListingHandler(listings ListingReader, moderator Moderator, perPage int, log *slog.Logger) *ListingHandler {
	return &ListingHandler{listings: listings, moderator: moderator, perPage: perPage, log: log}
}

type mutationResponse struct {
	Message string          `json:"message"`
	Listing *domain.Listing `json:"listing"`
}

func (h *ListingHandler) List(w http.ResponseWriter, r *http.Request) {
	page, perPage := response.ParsePagination(r, h.perPage)
	filter := domain.ListingFilter{Page: page, PerPage: perPage}
	if s := r.URL.Query().Get("status"); s != "" {
		status := domain.ListingStatus(s)
		filter.Status = &status
	}

	result, err := h.listings.ListPage(r.Context(), filter)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			response.Invalid(w, err, "Invalid query")
			return
		}
		h.log.Error("list listings", "err", err)
		response.Error(w, http.StatusInternalServerError, response.MsgInternal)
		return
	}

	response.Paginated(w, http.StatusOK, result.Items, page, perPage, result.Total)
}

func (h *ListingHandler) Stats(w http.ResponseWriter, r *http.Request) {
	counts, err := h.listings.CountByStatus(r.Context())
	if err != nil {
		h.log.Error("count listings by status", "err", err)
		response.Error(w, http.StatusInternalServerError, response.MsgInternal)
		return
	}

	total := 0
	for _, n := range counts {
		total += n
	}
	response.JSON(w, http.StatusOK, map[string]interface{}{
		"total":    total,
		"byStatus": counts,
	})
}

func (h *ListingHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid ID")
		return
	}

	listing, err := h.listings.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			response.Error(w, http.StatusNotFound, "Listing not found.")
			return
		}
		h.log.Error("get listing", "id", id, "err", err)
		response.Error(w, http.StatusInternalServerError, response.MsgInternal)
		return
	}

	response.JSON(w, http.StatusOK, listing)
}

// flexString accepts a JSON string, number or null. Forms and scripted
// clients disagree on whether numeric fields are quoted.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		*f = ""
		return nil
	case len(b) > 0 && b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = flexString(n.String())
	return nil
}

type editRequest struct {
	Title       flexString `json:"title"`
	Description flexString `json:"desc"`
	PricePerDay flexString `json:"pricePerDay"`
	Model       flexString `json:"model"`
	BodyType    flexString `json:"bodyType"`
	FuelType    flexString `json:"fuelType"`
	Gearbox     flexString `json:"gearbox"`
	Doors       flexString `json:"doors"`
	Seats       flexString `json:"seats"`
	Features    []string   `json:"features"`
}

func (req editRequest) input() service.EditListingInput {
	return service.EditListingInput{
		Title:       string(req.Title),
		Description: string(req.Description),
		PricePerDay: string(req.PricePerDay),
		Model:       string(req.Model),
		BodyType:    string(req.BodyType),
		FuelType:    string(req.FuelType),
		Gearbox:     string(req.Gearbox),
		Doors:       string(req.Doors),
		Seats:       string(req.Seats),
		Features:    req.Features,
	}
}

func (h *ListingHandler) Update(w http.ResponseWriter, r *http.Request) {
	caller, _ := middleware.CallerFrom(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid ID")
		return
	}

	var req editRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, service.MsgInvalidFields)
		return
	}

	listing, err := h.moderator.EditFields(r.Context(), id, req.input(), caller.ID)
	if err != nil {
		h.writeError(w, err, "Listing not found.", "edit listing")
		return
	}

	response.JSON(w, http.StatusOK, mutationResponse{Message: MsgUpdated, Listing: listing})
}

type statusRequest struct {
	Status string `json:"status"`
}

func (h *ListingHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	caller, _ := middleware.CallerFrom(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid Listing ID")
		return
	}

	var req statusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, service.MsgInvalidStatus)
		return
	}

	listing, err := h.moderator.SetStatus(r.Context(), id, domain.ListingStatus(req.Status), caller.ID)
	if err != nil {
		h.writeError(w, err, "Listing Not Found", "set listing status")
		return
	}

	response.JSON(w, http.StatusOK, mutationResponse{Message: MsgUpdated, Listing: listing})
}

func (h *ListingHandler) writeError(w http.ResponseWriter, err error, notFound, op string) {
	switch {
	case errors.Is(err, domain.ErrUnauthorized):
		response.Error(w, http.StatusUnauthorized, "Unauthorized")
	case errors.Is(err, domain.ErrInvalidInput):
		response.Invalid(w, err, "Invalid fields")
	case errors.Is(err, domain.ErrNotFound):
		response.Error(w, http.StatusNotFound, notFound)
	default:
		h.log.Error(op, "err", err)
		response.Error(w, http.StatusInternalServerError, response.MsgInternal)
	}
}
