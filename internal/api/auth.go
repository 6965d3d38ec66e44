package api

import (
	"errors"
	"net/http"

	"github.com/patra-io/patra/internal/audit"
	"github.com/patra-io/patra/internal/auth"
)

// recordsPageDefault is the default page size for record listings,
// matching the principal listing default.
const recordsPageDefault = 99

// loginResponse is the response body for POST /auth/login.
type loginResponse struct {
	Token     string `json:"token"`
	TokenKind string `json:"token_kind"`
}

// handleLogin authenticates a principal and returns a signed access token.
//
// Credentials arrive form-encoded as username/password (the username field
// carries the email address). The failure message never distinguishes an
// unknown address from a wrong password.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeBadRequest(w, "invalid form body")
		return
	}

	email := r.PostFormValue("username")
	password := r.PostFormValue("password")
	if email == "" || password == "" {
		writeBadRequest(w, "username and password are required")
		return
	}

	p, err := s.authn.Authenticate(r.Context(), email, password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			s.auditDenied("login", "principal", "", r, "invalid credentials")
			writeUnauthorized(w, "incorrect username or password")
			return
		}
		s.logger.Error("login failed", "error", err)
		writeInternalError(w, "login failed")
		return
	}

	token, err := s.tokens.Issue(p.Email, 0)
	if err != nil {
		s.logger.Error("token issue failed", "error", err)
		writeInternalError(w, "login failed")
		return
	}

	s.logger.Info("principal logged in", "principal_id", p.ID)
	s.auditLog("login", "principal", p.ID, p.ID, audit.OutcomeOK, nil)

	writeJSON(w, http.StatusOK, loginResponse{
		Token:     token,
		TokenKind: "bearer",
	})
}

// handleMe returns the calling principal and its records.
func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	p := principalFromContext(r.Context())

	records, err := s.records.ListByOwner(r.Context(), p.ID, recordsPageDefault, 0)
	if err != nil {
		s.logger.Error("list own records failed", "error", err)
		writeInternalError(w, "failed to load records")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"principal": p,
		"records":   records,
		"count":     len(records),
	})
}
