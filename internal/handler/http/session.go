// Package http exposes the local admin panel: a loopback REST surface over
// the session, the cached order set and the dashboard.
package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/Mousaahmad63636/spotlymobile/internal/service"
	"github.com/Mousaahmad63636/spotlymobile/internal/session"
	"github.com/Mousaahmad63636/spotlymobile/pkg/httputil"
	"github.com/Mousaahmad63636/spotlymobile/pkg/validator"
)

// SessionHandler handles login, logout and session introspection.
type SessionHandler struct {
	auth     *service.Auth
	sessions *session.Store
	logger   *slog.Logger
}

func NewSessionHandler(auth *service.Auth, sessions *session.Store, logger *slog.Logger) *SessionHandler {
	return &SessionHandler{auth: auth, sessions: sessions, logger: logger}
}

// LoginRequest is the JSON request body for opening a session.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// DeviceTokenRequest is the JSON request body for registering a push token.
type DeviceTokenRequest struct {
	Token string `json:"token" validate:"required"`
}

// Login handles POST /api/v1/session
func (h *SessionHandler) Login(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}
	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	user, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: user})
}

// Current handles GET /api/v1/session
func (h *SessionHandler) Current(w http.ResponseWriter, r *http.Request) {
	if !h.sessions.LoggedIn() {
		httputil.WriteJSON(w, http.StatusUnauthorized, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "UNAUTHORIZED", Message: "not logged in"},
		})
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: h.sessions.User()})
}

// Logout handles DELETE /api/v1/session
func (h *SessionHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.auth.Logout()
	w.WriteHeader(http.StatusNoContent)
}

// RegisterDevice handles PUT /api/v1/session/device
func (h *SessionHandler) RegisterDevice(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req DeviceTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}
	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	if err := h.auth.RegisterDeviceToken(r.Context(), req.Token); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]string{"status": "registered"}})
}

// RequireSession gates a route subtree on a live admin session.
func RequireSession(sessions *session.Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !sessions.LoggedIn() {
				httputil.WriteJSON(w, http.StatusUnauthorized, httputil.Response{
					Error: &httputil.ErrorResponse{Code: "UNAUTHORIZED", Message: "not logged in"},
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
