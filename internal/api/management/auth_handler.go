package management

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/CaioWing/paddock/internal/api/middleware"
	"github.com/CaioWing/paddock/internal/api/response"
	"github.com/CaioWing/paddock/internal/auth"
	"github.com/CaioWing/paddock/internal/domain"
)

type Authenticator interface {
	Authenticate(ctx context.Context, email, password string) (domain.Caller, error)
}

type AuthHandler struct {
	identity Authenticator
	jwtMgr   *auth.JWTManager
	log      *slog.Logger
}

func NewAuthHandler(identity Authenticator, jwtMgr *auth.JWTManager, log *slog.Logger) *AuthHandler {
	return &AuthHandler{identity: identity, jwtMgr: jwtMgr, log: log}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token     string `json:"token"`
	ExpiresAt string `json:"expires_at"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	caller, err := h.identity.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrUnauthorized) {
			response.Error(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		h.log.Error("authenticate", "err", err)
		response.Error(w, http.StatusInternalServerError, response.MsgInternal)
		return
	}

	h.issue(w, caller)
}

// Refresh issues a new token for an already authenticated caller.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.CallerFrom(r.Context())
	if !ok {
		response.Error(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	h.issue(w, caller)
}

func (h *AuthHandler) issue(w http.ResponseWriter, caller domain.Caller) {
	token, expiresAt, err := h.jwtMgr.Generate(caller)
	if err != nil {
		h.log.Error("generate token", "err", err)
		response.Error(w, http.StatusInternalServerError, "failed to generate token")
		return
	}

	response.JSON(w, http.StatusOK, loginResponse{
		Token:     token,
		ExpiresAt: expiresAt.UTC().Format(time.RFC3339),
	})
}
