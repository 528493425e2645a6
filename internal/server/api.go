// ABOUTME: JSON handlers for login, logout, session info and capability rosters
// ABOUTME: Errors are written as {"detail": "..."} bodies, which the front-end displays verbatim

package server

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"

	"github.com/2389/capability-hub/internal/assets"
	"github.com/2389/capability-hub/internal/auth"
	"github.com/2389/capability-hub/internal/credentials"
	"github.com/2389/capability-hub/internal/registry"
)

// Response details shown to the user.
const (
	detailNotAuthenticated    = "Not authenticated"
	detailInvalidCredentials  = "Invalid username or password."
	detailLeadRequired        = "Practice lead authentication required."
	detailCapabilityNotFound  = "Capability not found"
	detailAlreadyRegistered   = "Consultant is already registered for this capability"
	detailNotRegistered       = "Consultant is not registered for this capability"
	detailEmailRequired       = "email query parameter is required"
	detailInternalServerError = "internal server error"
)

// LoginRequest is the optional JSON body form of login credentials.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse is returned by a successful login.
type LoginResponse struct {
	Message      string `json:"message"`
	Role         string `json:"role"`
	PracticeArea string `json:"practice_area"`
}

// MeResponse describes the session owner.
type MeResponse struct {
	Username     string `json:"username"`
	Role         string `json:"role"`
	PracticeArea string `json:"practice_area"`
}

// MessageResponse carries a human-readable confirmation.
type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse is the body of every non-2xx JSON response.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, ErrorResponse{Detail: detail})
}

// loginCredentials reads HTTP Basic credentials, falling back to a JSON body.
func loginCredentials(r *http.Request) (username, password string, ok bool) {
	if u, p, ok := r.BasicAuth(); ok {
		return u, p, true
	}

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "application/json" {
		return "", "", false
	}

	var req LoginRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 4096)).Decode(&req); err != nil {
		return "", "", false
	}
	if req.Username == "" && req.Password == "" {
		return "", "", false
	}
	return req.Username, req.Password, true
}

// handleLogin handles POST /login.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	username, password, ok := loginCredentials(r)
	if !ok {
		w.Header().Set("WWW-Authenticate", `Basic realm="capability-hub"`)
		writeDetail(w, http.StatusUnauthorized, detailNotAuthenticated)
		return
	}

	session, err := s.gate.Login(r.Context(), username, password)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		writeDetail(w, http.StatusUnauthorized, detailInvalidCredentials)
		return
	}
	if err != nil {
		s.logger.Error("login failed", "error", err)
		writeDetail(w, http.StatusInternalServerError, detailInternalServerError)
		return
	}

	auth.SetSessionCookie(w, session.Token, s.cookies)
	writeJSON(w, http.StatusOK, LoginResponse{
		Message:      "Login successful",
		Role:         session.Lead.Role,
		PracticeArea: session.Lead.PracticeArea,
	})
}

// handleLogout handles POST /logout. It always succeeds.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.gate.Logout(r.Context(), auth.TokenFromRequest(r))
	auth.ClearSessionCookie(w, s.cookies)
	writeJSON(w, http.StatusOK, MessageResponse{Message: "Logged out"})
}

// handleMe handles GET /me.
func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	lead, err := s.gate.CurrentUser(r.Context(), auth.TokenFromRequest(r))
	if err != nil {
		s.logger.Error("session lookup failed", "error", err)
		writeDetail(w, http.StatusInternalServerError, detailInternalServerError)
		return
	}
	if lead == nil {
		writeDetail(w, http.StatusUnauthorized, detailNotAuthenticated)
		return
	}
	writeJSON(w, http.StatusOK, MeResponse{
		Username:     lead.Username,
		Role:         lead.Role,
		PracticeArea: lead.PracticeArea,
	})
}

// handleRoot redirects to the bundled front-end.
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, assets.IndexPath, http.StatusFound)
}

// handleListCapabilities handles GET /capabilities.
func (s *Server) handleListCapabilities(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.registry.List())
}

// handleGetCapability handles GET /capabilities/{name}.
func (s *Server) handleGetCapability(w http.ResponseWriter, r *http.Request) {
	c, ok := s.registry.Get(r.PathValue("name"))
	if !ok {
		writeDetail(w, http.StatusNotFound, detailCapabilityNotFound)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// handleRegister handles POST /capabilities/{name}/register?email=.
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	s.changeRoster(w, r, s.registry.Register)
}

// handleUnregister handles DELETE /capabilities/{name}/unregister?email=.
func (s *Server) handleUnregister(w http.ResponseWriter, r *http.Request) {
	s.changeRoster(w, r, s.registry.Unregister)
}

type rosterOp func(name, email string, actor *credentials.PracticeLead) (string, error)

func (s *Server) changeRoster(w http.ResponseWriter, r *http.Request, op rosterOp) {
	email := r.URL.Query().Get("email")
	if email == "" {
		writeDetail(w, http.StatusUnprocessableEntity, detailEmailRequired)
		return
	}

	msg, err := op(r.PathValue("name"), email, auth.LeadFromContext(r.Context()))
	if err != nil {
		s.writeRegistryError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: msg})
}

func (s *Server) writeRegistryError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, auth.ErrUnauthorized):
		writeDetail(w, http.StatusUnauthorized, detailLeadRequired)
	case errors.Is(err, registry.ErrCapabilityNotFound):
		writeDetail(w, http.StatusNotFound, detailCapabilityNotFound)
	case errors.Is(err, registry.ErrAlreadyRegistered):
		writeDetail(w, http.StatusBadRequest, detailAlreadyRegistered)
	case errors.Is(err, registry.ErrNotRegistered):
		writeDetail(w, http.StatusBadRequest, detailNotRegistered)
	default:
		s.logger.Error("roster change failed", "error", err)
		writeDetail(w, http.StatusInternalServerError, detailInternalServerError)
	}
}
