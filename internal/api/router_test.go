package api

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CaioWing/paddock/internal/auth"
	"github.com/CaioWing/paddock/internal/domain"
	"github.com/CaioWing/paddock/internal/service"
)

// fakeStore backs every handler interface with one in-memory listing set and
// records audit actions the way the moderation service would.
type fakeStore struct {
	listings map[uuid.UUID]*domain.Listing
	audit    []domain.AuditEntry
}

func newFakeStore() *fakeStore {
	return &fakeStore{listings: make(map[uuid.UUID]*domain.Listing)}
}

func (s *fakeStore) add(l *domain.Listing) *domain.Listing {
	l.ID = uuid.New()
	l.Status = domain.ListingStatusPending
	s.listings[l.ID] = l
	return l
}

func (s *fakeStore) GetByID(_ context.Context, id uuid.UUID) (*domain.Listing, error) {
	if l, ok := s.listings[id]; ok {
		return l, nil
	}
	return nil, domain.ErrNotFound
}

func (s *fakeStore) ListPage(_ context.Context, f domain.ListingFilter) (*service.ListingPage, error) {
	var items []*domain.Listing
	for _, l := range s.listings {
		items = append(items, l)
	}
	return &service.ListingPage{Items: items, Total: len(items), Page: f.Page, PerPage: f.PerPage}, nil
}

func (s *fakeStore) CountByStatus(_ context.Context) (map[domain.ListingStatus]int, error) {
	counts := map[domain.ListingStatus]int{}
	for _, l := range s.listings {
		counts[l.Status]++
	}
	return counts, nil
}

func (s *fakeStore) SetStatus(_ context.Context, id uuid.UUID, status domain.ListingStatus, callerID string) (*domain.Listing, error) {
	if callerID == "" {
		return nil, domain.ErrUnauthorized
	}
	if status != domain.ListingStatusApproved && status != domain.ListingStatusRejected {
		return nil, domain.NewFieldError("status", service.MsgInvalidStatus)
	}
	l, ok := s.listings[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	l.Status = status
	s.audit = append(s.audit, domain.AuditEntry{Action: domain.AuditAction(status), CallerID: callerID, ListingID: id})
	return l, nil
}

func (s *fakeStore) EditFields(_ context.Context, id uuid.UUID, in service.EditListingInput, callerID string) (*domain.Listing, error) {
	fields, err := service.ValidateListingEdit(in)
	if err != nil {
		return nil, err
	}
	l, ok := s.listings[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	l.Title = fields.Title
	l.PricePerDay = fields.PricePerDay
	if fields.Doors != nil {
		l.Doors = *fields.Doors
	}
	l.Features = fields.Features
	s.audit = append(s.audit, domain.AuditEntry{Action: domain.AuditActionEdited, CallerID: callerID, ListingID: id})
	return l, nil
}

func (s *fakeStore) List(_ context.Context, _ domain.AuditFilter) ([]*domain.AuditView, int, error) {
	out := make([]*domain.AuditView, 0, len(s.audit))
	for i := len(s.audit) - 1; i >= 0; i-- {
		out = append(out, &domain.AuditView{AuditEntry: s.audit[i], CallerEmail: "mod@example.com"})
	}
	return out, len(out), nil
}

func (s *fakeStore) Authenticate(_ context.Context, email, password string) (domain.Caller, error) {
	if email == "mod@example.com" && password == "pw" {
		return domain.Caller{ID: "user_1", Email: email}, nil
	}
	return domain.Caller{}, domain.ErrUnauthorized
}

type testServer struct {
	handler http.Handler
	store   *fakeStore
	token   string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	jwtMgr := auth.NewJWTManager("test-secret", time.Hour)
	token, _, err := jwtMgr.Generate(domain.Caller{ID: "user_1", Email: "mod@example.com"})
	require.NoError(t, err)

	store := newFakeStore()
	h := NewRouter(ctx, RouterDeps{
		Listings:       store,
		Moderator:      store,
		Audit:          store,
		Identity:       store,
		JWTManager:     jwtMgr,
		CORSOrigins:    []string{"http://localhost:3000"},
		PageSize:       5,
		RateLimitRPS:   1000,
		RateLimitBurst: 1000,
		Logger:         slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	return &testServer{handler: h, store: store, token: token}
}

func (s *testServer) do(method, target, body string, authed bool) *httptest.ResponseRecorder {
	var rdr io.Reader
	if body != "" {
		rdr = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, rdr)
	req.Header.Set("Content-Type", "application/json")
	if authed {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func sampleListing() *domain.Listing {
	return &domain.Listing{
		Title:       "Golf GTI",
		Description: "Hot hatch",
		Model:       "Volkswagen Golf",
		BodyType:    "Hatchback",
		PricePerDay: 45,
		FuelType:    domain.FuelTypePetrol,
		Gearbox:     domain.GearboxManual,
		Doors:       4,
		Seats:       5,
	}
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(http.MethodGet, "/health", "", false)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestMetricsAndDocs(t *testing.T) {
	s := newTestServer(t)
	s.do(http.MethodGet, "/health", "", false)

	rec := s.do(http.MethodGet, "/metrics", "", false)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "paddock_http_requests_total")

	rec = s.do(http.MethodGet, "/docs/openapi.yaml", "", false)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "/api/listings/{id}/status")
}

func TestRejectScenario(t *testing.T) {
	s := newTestServer(t)
	l := s.store.add(sampleListing())

	rec := s.do(http.MethodPatch, "/api/listings/"+l.ID.String()+"/status", `{"status":"REJECTED"}`, true)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Message string         `json:"message"`
		Listing domain.Listing `json:"listing"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Listing updated successfully", body.Message)
	assert.Equal(t, domain.ListingStatusRejected, body.Listing.Status)
	assert.Equal(t, 45.0, body.Listing.PricePerDay)

	require.Len(t, s.store.audit, 1)
	assert.Equal(t, domain.AuditEntry{Action: domain.AuditActionRejected, CallerID: "user_1", ListingID: l.ID}, s.store.audit[0])
}

func TestStatus_Errors(t *testing.T) {
	s := newTestServer(t)
	l := s.store.add(sampleListing())
	path := "/api/listings/" + l.ID.String() + "/status"

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		authed bool
		code   int
		msg    string
	}{
		{"wrong verb wins over auth", http.MethodPost, path, `{"status":"APPROVED"}`, false, http.StatusMethodNotAllowed, "Method not allowed"},
		{"unauthenticated", http.MethodPatch, path, `{"status":"APPROVED"}`, false, http.StatusUnauthorized, "Unauthorized"},
		{"invalid status", http.MethodPatch, path, `{"status":"ARCHIVED"}`, true, http.StatusBadRequest, "Invalid status"},
		{"pending is not a target", http.MethodPatch, path, `{"status":"PENDING"}`, true, http.StatusBadRequest, "Invalid status"},
		{"malformed id", http.MethodPatch, "/api/listings/xyz/status", `{"status":"APPROVED"}`, true, http.StatusBadRequest, "Invalid Listing ID"},
		{"unknown listing", http.MethodPatch, "/api/listings/" + uuid.NewString() + "/status", `{"status":"APPROVED"}`, true, http.StatusNotFound, "Listing Not Found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(tt.method, tt.path, tt.body, tt.authed)
			assert.Equal(t, tt.code, rec.Code)
			var body map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.msg, body["message"])
		})
	}

	assert.Empty(t, s.store.audit)
	assert.Equal(t, domain.ListingStatusPending, l.Status)
}

func TestGetListing(t *testing.T) {
	s := newTestServer(t)
	l := s.store.add(sampleListing())

	rec := s.do(http.MethodGet, "/api/listings/"+l.ID.String(), "", true)
	require.Equal(t, http.StatusOK, rec.Code)
	var got domain.Listing
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "Golf GTI", got.Title)
	assert.Contains(t, rec.Body.String(), `"desc":"Hot hatch"`)

	assert.Equal(t, http.StatusUnauthorized, s.do(http.MethodGet, "/api/listings/"+l.ID.String(), "", false).Code)
	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodGet, "/api/listings/nope", "", true).Code)
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodGet, "/api/listings/"+uuid.NewString(), "", true).Code)
	assert.Equal(t, http.StatusMethodNotAllowed, s.do(http.MethodDelete, "/api/listings/"+l.ID.String(), "", true).Code)
}

func TestEditListing(t *testing.T) {
	s := newTestServer(t)
	l := s.store.add(sampleListing())
	path := "/api/listings/" + l.ID.String()

	// numbers may arrive quoted or bare
	rec := s.do(http.MethodPut, path, `{"title":"Golf R","desc":"AWD","pricePerDay":"79.5","model":"VW","bodyType":"Hatchback","doors":5,"features":["GPS"]}`, true)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Listing updated successfully")
	assert.Equal(t, 79.5, l.PricePerDay)
	assert.Equal(t, 5, l.Doors)
	require.Len(t, s.store.audit, 1)
	assert.Equal(t, domain.AuditActionEdited, s.store.audit[0].Action)
}

func TestEditListing_Rejected(t *testing.T) {
	s := newTestServer(t)
	l := s.store.add(sampleListing())
	path := "/api/listings/" + l.ID.String()

	tests := []struct {
		name  string
		body  string
		code  int
		msg   string
		field string
	}{
		{"negative price", `{"title":"T","desc":"D","pricePerDay":"-5","model":"M","bodyType":"B"}`, http.StatusBadRequest, "Invalid fields", "pricePerDay"},
		{"price below a cent", `{"title":"T","desc":"D","pricePerDay":0.001,"model":"M","bodyType":"B"}`, http.StatusBadRequest, "Invalid fields", "pricePerDay"},
		{"price too precise", `{"title":"T","desc":"D","pricePerDay":"45.555","model":"M","bodyType":"B"}`, http.StatusBadRequest, "Invalid fields", "pricePerDay"},
		{"price too large", `{"title":"T","desc":"D","pricePerDay":100000000,"model":"M","bodyType":"B"}`, http.StatusBadRequest, "Invalid fields", "pricePerDay"},
		{"missing fields", `{"title":"T","pricePerDay":10}`, http.StatusBadRequest, "Missing fields", "desc"},
		{"bad fuel", `{"title":"T","desc":"D","pricePerDay":10,"model":"M","bodyType":"B","fuelType":"COAL"}`, http.StatusBadRequest, "Invalid Fuel Type", "fuelType"},
		{"bad gearbox", `{"title":"T","desc":"D","pricePerDay":10,"model":"M","bodyType":"B","gearbox":"CVT"}`, http.StatusBadRequest, "Invalid Gearbox Type", "gearbox"},
		{"zero seats", `{"title":"T","desc":"D","pricePerDay":10,"model":"M","bodyType":"B","seats":0}`, http.StatusBadRequest, "Invalid fields", "seats"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(http.MethodPut, path, tt.body, true)
			assert.Equal(t, tt.code, rec.Code)
			var body map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.msg, body["message"])
			assert.Equal(t, tt.field, body["field"])
		})
	}

	assert.Equal(t, 45.0, l.PricePerDay)
	assert.Empty(t, s.store.audit)

	rec := s.do(http.MethodPut, path, `{not json`, true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodPut, path, `{"title":"T"}`, false)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestListAndStats(t *testing.T) {
	s := newTestServer(t)
	s.store.add(sampleListing())
	s.store.add(sampleListing())

	rec := s.do(http.MethodGet, "/api/listings?page=1&per_page=10", "", true)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"total":2`)

	rec = s.do(http.MethodGet, "/api/listings/stats", "", true)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"total":2,"byStatus":{"PENDING":2}}`, rec.Body.String())
}

func TestAuditEndpoint(t *testing.T) {
	s := newTestServer(t)
	l := s.store.add(sampleListing())
	s.do(http.MethodPatch, "/api/listings/"+l.ID.String()+"/status", `{"status":"APPROVED"}`, true)

	rec := s.do(http.MethodGet, "/api/audit", "", true)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"callerId":"user_1"`)
	assert.Contains(t, rec.Body.String(), `"callerEmail":"mod@example.com"`)

	rec = s.do(http.MethodGet, "/api/audit?listing_id=bad", "", true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLoginAndRefresh(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodPost, "/api/auth/login", `{"email":"mod@example.com","password":"pw"}`, false)
	require.Equal(t, http.StatusOK, rec.Code)
	var tok struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tok))
	require.NotEmpty(t, tok.Token)

	req := httptest.NewRequest(http.MethodGet, "/api/listings/stats", nil)
	req.Header.Set("Authorization", "Bearer "+tok.Token)
	rec = httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(http.MethodPost, "/api/auth/login", `{"email":"mod@example.com","password":"bad"}`, false)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(http.MethodPost, "/api/auth/refresh", "", true)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = s.do(http.MethodPost, "/api/auth/refresh", "", false)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
