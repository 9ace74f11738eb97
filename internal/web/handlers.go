package web

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/CaioWing/paddock/internal/api/middleware"
	"github.com/CaioWing/paddock/internal/auth"
	"github.com/CaioWing/paddock/internal/domain"
	"github.com/CaioWing/paddock/internal/service"
)

const msgUpdated = "Listing updated successfully"

type ListingReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Listing, error)
	ListPage(ctx context.Context, filter domain.ListingFilter) (*service.ListingPage, error)
}

type Moderator interface {
	SetStatus(ctx context.Context, id uuid.UUID, status domain.ListingStatus, callerID string) (*domain.Listing, error)
	EditFields(ctx context.Context, id uuid.UUID, in service.EditListingInput, callerID string) (*domain.Listing, error)
}

type AuditLister interface {
	List(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditView, int, error)
}

type Authenticator interface {
	Authenticate(ctx context.Context, email, password string) (domain.Caller, error)
}

type Deps struct {
	Listings      ListingReader
	Moderator     Moderator
	Audit         AuditLister
	Identity      Authenticator
	JWTManager    *auth.JWTManager
	PageSize      int
	AuditPageSize int // 0 shows the whole log on one page
	CookieSecure  bool
	Logger        *slog.Logger
}

type Pages struct {
	deps Deps
	r    *renderer
	log  *slog.Logger
}

func NewPages(deps Deps) (*Pages, error) {
	r, err := newRenderer()
	if err != nil {
		return nil, err
	}
	if deps.PageSize < 1 {
		deps.PageSize = 5
	}
	return &Pages{deps: deps, r: r, log: deps.Logger}, nil
}

// Routes mounts the dashboard. Everything except the login form requires a
// session.
func (p *Pages) Routes(r chi.Router) {
	r.Get("/login", p.LoginForm)
	r.Post("/login", p.Login)
	r.Post("/logout", p.Logout)
	r.Get("/logout", p.Logout)

	r.Group(func(r chi.Router) {
		r.Use(middleware.PageAuth(p.deps.JWTManager, "/login"))
		r.Get("/", p.Index)
		r.Get("/audit-log", p.AuditLog)
		r.Post("/listings/{id}/status", p.SetStatus)
		r.Get("/listings/edit/{id}", p.EditForm)
		r.Post("/listings/edit/{id}", p.Edit)
	})
}

type base struct {
	Title  string
	Caller domain.Caller
	Flash  string
	Error  string
}

func (p *Pages) base(r *http.Request, title string) base {
	caller, _ := middleware.CallerFrom(r.Context())
	q := r.URL.Query()
	return base{Title: title, Caller: caller, Flash: q.Get("msg"), Error: q.Get("err")}
}

func (p *Pages) fail(w http.ResponseWriter, op string, err error) {
	p.log.Error(op, "err", err)
	http.Error(w, "Internal Server Error", http.StatusInternalServerError)
}

func (p *Pages) show(w http.ResponseWriter, status int, name string, data interface{}) {
	if err := p.r.render(w, status, name, data); err != nil {
		p.fail(w, "render page", err)
	}
}

func queryPage(r *http.Request) int {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

func redirectWith(w http.ResponseWriter, r *http.Request, path, key, msg string) {
	if msg != "" {
		sep := "?"
		if strings.Contains(path, "?") {
			sep = "&"
		}
		path += sep + key + "=" + url.QueryEscape(msg)
	}
	http.Redirect(w, r, path, http.StatusSeeOther)
}

// userMessage is what a moderator sees for a failed action.
func userMessage(err error) string {
	var fe *domain.FieldError
	switch {
	case errors.As(err, &fe):
		return fe.Msg
	case errors.Is(err, domain.ErrNotFound):
		return "Listing not found."
	case errors.Is(err, domain.ErrUnauthorized):
		return "Unauthorized"
	}
	return "Internal Server Error"
}

type indexData struct {
	base
	Listings   []*domain.Listing
	Page       int
	TotalPages int
	Total      int
}

func (p *Pages) Index(w http.ResponseWriter, r *http.Request) {
	page := queryPage(r)

	result, err := p.deps.Listings.ListPage(r.Context(), domain.ListingFilter{Page: page, PerPage: p.deps.PageSize})
	if err != nil {
		p.fail(w, "list listings", err)
		return
	}

	p.show(w, http.StatusOK, "index.tmpl", indexData{
		base:       p.base(r, "Listings"),
		Listings:   result.Items,
		Page:       page,
		TotalPages: result.TotalPages(),
		Total:      result.Total,
	})
}

func (p *Pages) SetStatus(w http.ResponseWriter, r *http.Request) {
	caller, _ := middleware.CallerFrom(r.Context())
	back := "/?page=" + strconv.Itoa(max(1, atoiOr(r.FormValue("page"), 1)))

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		redirectWith(w, r, back, "err", "Invalid Listing ID")
		return
	}

	status := domain.ListingStatus(r.FormValue("status"))
	if _, err := p.deps.Moderator.SetStatus(r.Context(), id, status, caller.ID); err != nil {
		if !errors.Is(err, domain.ErrInvalidInput) && !errors.Is(err, domain.ErrNotFound) {
			p.log.Error("set listing status", "id", id, "err", err)
		}
		redirectWith(w, r, back, "err", userMessage(err))
		return
	}

	redirectWith(w, r, back, "msg", msgUpdated)
}

type auditData struct {
	base
	Entries    []*domain.AuditView
	Page       int
	TotalPages int
}

func (p *Pages) AuditLog(w http.ResponseWriter, r *http.Request) {
	page := queryPage(r)
	filter := domain.AuditFilter{Page: page, PerPage: p.deps.AuditPageSize}

	entries, total, err := p.deps.Audit.List(r.Context(), filter)
	if err != nil {
		p.fail(w, "list audit log", err)
		return
	}

	totalPages := 1
	if p.deps.AuditPageSize > 0 {
		totalPages = (total + p.deps.AuditPageSize - 1) / p.deps.AuditPageSize
	}

	p.show(w, http.StatusOK, "audit.tmpl", auditData{
		base:       p.base(r, "Audit log"),
		Entries:    entries,
		Page:       page,
		TotalPages: totalPages,
	})
}

type editForm struct {
	Title       string
	Description string
	Model       string
	BodyType    string
	PricePerDay string
	FuelType    string
	Gearbox     string
	Doors       string
	Seats       string
	Features    []string
}

func formFromListing(l *domain.Listing) editForm {
	return editForm{
		Title:       l.Title,
		Description: l.Description,
		Model:       l.Model,
		BodyType:    l.BodyType,
		PricePerDay: strconv.FormatFloat(l.PricePerDay, 'f', -1, 64),
		FuelType:    string(l.FuelType),
		Gearbox:     string(l.Gearbox),
		Doors:       strconv.Itoa(l.Doors),
		Seats:       strconv.Itoa(l.Seats),
		Features:    l.Features,
	}
}

func formFromRequest(r *http.Request) editForm {
	var features []string
	for _, f := range strings.Split(r.FormValue("features"), ",") {
		if f = strings.TrimSpace(f); f != "" {
			features = append(features, f)
		}
	}
	return editForm{
		Title:       r.FormValue("title"),
		Description: r.FormValue("desc"),
		Model:       r.FormValue("model"),
		BodyType:    r.FormValue("bodyType"),
		PricePerDay: r.FormValue("pricePerDay"),
		FuelType:    r.FormValue("fuelType"),
		Gearbox:     r.FormValue("gearbox"),
		Doors:       r.FormValue("doors"),
		Seats:       r.FormValue("seats"),
		Features:    features,
	}
}

func (f editForm) input() service.EditListingInput {
	return service.EditListingInput{
		Title:       f.Title,
		Description: f.Description,
		PricePerDay: f.PricePerDay,
		Model:       f.Model,
		BodyType:    f.BodyType,
		FuelType:    f.FuelType,
		Gearbox:     f.Gearbox,
		Doors:       f.Doors,
		Seats:       f.Seats,
		Features:    f.Features,
	}
}

type editData struct {
	base
	ID        uuid.UUID
	Form      editForm
	FuelTypes []domain.FuelType
	Gearboxes []domain.Gearbox
}

func (p *Pages) editData(r *http.Request, id uuid.UUID, form editForm) editData {
	return editData{
		base:      p.base(r, "Edit listing"),
		ID:        id,
		Form:      form,
		FuelTypes: []domain.FuelType{domain.FuelTypePetrol, domain.FuelTypeDiesel, domain.FuelTypeEV, domain.FuelTypeHybrid},
		Gearboxes: []domain.Gearbox{domain.GearboxManual, domain.GearboxAutomatic},
	}
}

// EditForm falls back to the index when the listing cannot be loaded.
func (p *Pages) EditForm(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		redirectWith(w, r, "/", "err", "Invalid ID")
		return
	}

	listing, err := p.deps.Listings.GetByID(r.Context(), id)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			p.log.Error("load listing for edit", "id", id, "err", err)
		}
		redirectWith(w, r, "/", "err", userMessage(err))
		return
	}

	p.show(w, http.StatusOK, "edit.tmpl", p.editData(r, id, formFromListing(listing)))
}

func (p *Pages) Edit(w http.ResponseWriter, r *http.Request) {
	caller, _ := middleware.CallerFrom(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		redirectWith(w, r, "/", "err", "Invalid ID")
		return
	}

	form := formFromRequest(r)
	if _, err := p.deps.Moderator.EditFields(r.Context(), id, form.input(), caller.ID); err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidInput):
			data := p.editData(r, id, form)
			data.Error = userMessage(err)
			p.show(w, http.StatusBadRequest, "edit.tmpl", data)
		case errors.Is(err, domain.ErrNotFound):
			redirectWith(w, r, "/", "err", userMessage(err))
		default:
			p.fail(w, "edit listing", err)
		}
		return
	}

	redirectWith(w, r, "/", "msg", msgUpdated)
}

type loginData struct {
	base
	Email string
}

func (p *Pages) LoginForm(w http.ResponseWriter, r *http.Request) {
	p.show(w, http.StatusOK, "login.tmpl", loginData{base: p.base(r, "Sign in")})
}

func (p *Pages) Login(w http.ResponseWriter, r *http.Request) {
	email := strings.TrimSpace(r.FormValue("email"))

	caller, err := p.deps.Identity.Authenticate(r.Context(), email, r.FormValue("password"))
	if err != nil {
		if !errors.Is(err, domain.ErrUnauthorized) {
			p.fail(w, "authenticate", err)
			return
		}
		data := loginData{base: p.base(r, "Sign in"), Email: email}
		data.Error = "Invalid email or password"
		p.show(w, http.StatusUnauthorized, "login.tmpl", data)
		return
	}

	token, expiresAt, err := p.deps.JWTManager.Generate(caller)
	if err != nil {
		p.fail(w, "generate token", err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		HttpOnly: true,
		Secure:   p.deps.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (p *Pages) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   p.deps.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func atoiOr(s string, fallback int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return fallback
	}
	return n
}
