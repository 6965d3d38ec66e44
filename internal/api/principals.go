package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/patra-io/patra/internal/audit"
	"github.com/patra-io/patra/internal/auth"
)

// principalsPageDefault is the default page size for principal listings.
const principalsPageDefault = 99

// minPasswordLength is the minimum accepted password length at registration.
const minPasswordLength = 8

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type updatePrincipalRequest struct {
	Email    *string `json:"email,omitempty"`
	IsActive *bool   `json:"is_active,omitempty"`
	IsAdmin  *bool   `json:"is_admin,omitempty"`
}

// handleRegister creates a new principal from a public registration.
// Accounts are created active and non-admin.
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	if req.Email == "" || req.Password == "" {
		writeBadRequest(w, "email and password are required")
		return
	}
	if !auth.IsValidEmail(req.Email) {
		writeBadRequest(w, "invalid email address")
		return
	}
	if len(req.Password) < minPasswordLength {
		writeBadRequest(w, "password must be at least 8 characters")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		s.logger.Error("hash password failed", "error", err)
		writeInternalError(w, "failed to create account")
		return
	}

	p := &auth.Principal{
		Email:        req.Email,
		PasswordHash: hash,
		IsActive:     true,
	}

	if err := s.principals.Create(r.Context(), p); err != nil {
		if errors.Is(err, auth.ErrEmailExists) {
			writeConflict(w, "email already registered")
			return
		}
		s.logger.Error("create principal failed", "error", err)
		writeInternalError(w, "failed to create account")
		return
	}

	s.logger.Info("principal registered", "principal_id", p.ID)
	s.auditLog("create", "principal", p.ID, p.ID, audit.OutcomeOK, nil)

	writeJSON(w, http.StatusCreated, p)
}

// handleListPrincipals returns a paginated listing of all principals.
// Admin only; paginated via skip/limit query parameters.
func (s *Server) handleListPrincipals(w http.ResponseWriter, r *http.Request) {
	skip, limit := pageParams(r, principalsPageDefault)

	principals, err := s.principals.List(r.Context(), limit, skip)
	if err != nil {
		s.logger.Error("list principals failed", "error", err)
		writeInternalError(w, "failed to list principals")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"principals": principals,
		"count":      len(principals),
	})
}

// handleGetPrincipal returns a single principal by ID. A principal may
// read itself; reading anyone else requires admin.
func (s *Server) handleGetPrincipal(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	caller := principalFromContext(r.Context())

	if err := s.gate.RequireOwnerOrAdmin(caller, id); err != nil {
		s.auditDenied("read", "principal", id, r, "not self or admin")
		writeForbidden(w, "cannot view another account")
		return
	}

	p, err := s.principals.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, auth.ErrPrincipalNotFound) {
			writeNotFound(w, "principal not found")
			return
		}
		s.logger.Error("get principal failed", "error", err)
		writeInternalError(w, "failed to get principal")
		return
	}

	writeJSON(w, http.StatusOK, p)
}

// handleUpdatePrincipal patches a principal's email and flags. Admin only,
// with self-protection: an admin cannot deactivate or demote themself.
func (s *Server) handleUpdatePrincipal(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	caller := principalFromContext(r.Context())

	var req updatePrincipalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	p, err := s.principals.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, auth.ErrPrincipalNotFound) {
			writeNotFound(w, "principal not found")
			return
		}
		s.logger.Error("get principal for update failed", "error", err)
		writeInternalError(w, "failed to update principal")
		return
	}

	// Self-protection: cannot deactivate yourself
	if req.IsActive != nil && !*req.IsActive && id == caller.ID {
		writeForbidden(w, "cannot deactivate your own account")
		return
	}

	// Self-protection: cannot drop your own admin flag
	if req.IsAdmin != nil && !*req.IsAdmin && id == caller.ID {
		writeForbidden(w, "cannot demote your own account")
		return
	}

	if req.Email != nil {
		if !auth.IsValidEmail(*req.Email) {
			writeBadRequest(w, "invalid email address")
			return
		}
		p.Email = *req.Email
	}
	if req.IsActive != nil {
		p.IsActive = *req.IsActive
	}
	if req.IsAdmin != nil {
		p.IsAdmin = *req.IsAdmin
	}

	if err := s.principals.Update(r.Context(), p); err != nil {
		if errors.Is(err, auth.ErrEmailExists) {
			writeConflict(w, "email already registered")
			return
		}
		s.logger.Error("update principal failed", "error", err)
		writeInternalError(w, "failed to update principal")
		return
	}

	s.logger.Info("principal updated", "principal_id", id, "updated_by", caller.ID)
	s.auditLog("update", "principal", id, caller.ID, audit.OutcomeOK, nil)

	writeJSON(w, http.StatusOK, p)
}

// handleDeletePrincipal removes a principal. Admin only; deleting your own
// account is refused. Owned records go with the account.
func (s *Server) handleDeletePrincipal(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	caller := principalFromContext(r.Context())

	if id == caller.ID {
		writeForbidden(w, "cannot delete your own account")
		return
	}

	p, err := s.principals.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, auth.ErrPrincipalNotFound) {
			writeNotFound(w, "principal not found")
			return
		}
		s.logger.Error("get principal for delete failed", "error", err)
		writeInternalError(w, "failed to delete principal")
		return
	}

	if err := s.principals.Delete(r.Context(), id); err != nil {
		s.logger.Error("delete principal failed", "error", err)
		writeInternalError(w, "failed to delete principal")
		return
	}

	s.logger.Info("principal deleted", "principal_id", id, "deleted_by", caller.ID)
	s.auditLog("delete", "principal", id, caller.ID, audit.OutcomeOK, map[string]any{
		"email": p.Email,
	})

	w.WriteHeader(http.StatusNoContent)
}

// pageParams reads skip/limit query parameters with a shared default.
func pageParams(r *http.Request, defaultLimit int) (skip, limit int) {
	limit = defaultLimit

	q := r.URL.Query()
	if v := q.Get("skip"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			skip = n
		}
	}
	if v := q.Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	return skip, limit
}
