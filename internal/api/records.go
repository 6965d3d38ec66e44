package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/patra-io/patra/internal/audit"
	"github.com/patra-io/patra/internal/record"
)

type createRecordRequest struct {
	Image    string `json:"image"`
	Document string `json:"document,omitempty"`
	Tags     string `json:"tags,omitempty"`
}

type updateRecordRequest struct {
	Image    *string `json:"image,omitempty"`
	Document *string `json:"document,omitempty"`
	Tags     *string `json:"tags,omitempty"`
}

// handleListRecords returns the caller's records. Admins may widen the
// scope with ?all=1 or narrow it to another owner with ?owner=<id>.
func (s *Server) handleListRecords(w http.ResponseWriter, r *http.Request) {
	caller := principalFromContext(r.Context())
	skip, limit := pageParams(r, recordsPageDefault)

	q := r.URL.Query()
	ownerID := caller.ID
	all := false

	if caller.IsAdmin {
		if owner := q.Get("owner"); owner != "" {
			ownerID = owner
		}
		if q.Get("all") == "1" || q.Get("all") == "true" {
			all = true
		}
	}

	var (
		records []record.Record
		err     error
	)
	if all {
		records, err = s.records.List(r.Context(), limit, skip)
	} else {
		records, err = s.records.ListByOwner(r.Context(), ownerID, limit, skip)
	}
	if err != nil {
		s.logger.Error("list records failed", "error", err)
		writeInternalError(w, "failed to list records")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"records": records,
		"count":   len(records),
	})
}

// handleCreateRecord creates a record owned by the caller. Ownership is
// forced server-side regardless of the request body.
func (s *Server) handleCreateRecord(w http.ResponseWriter, r *http.Request) {
	caller := principalFromContext(r.Context())

	var req createRecordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	rec := &record.Record{
		Image:    req.Image,
		Document: req.Document,
		Tags:     req.Tags,
		OwnerID:  caller.ID,
	}
	if err := rec.Validate(); err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	if err := s.records.Create(r.Context(), rec); err != nil {
		s.logger.Error("create record failed", "error", err)
		writeInternalError(w, "failed to create record")
		return
	}

	s.logger.Info("record created", "record_id", rec.ID, "owner_id", caller.ID)
	s.auditLog("create", "record", rec.ID, caller.ID, audit.OutcomeOK, nil)

	writeJSON(w, http.StatusCreated, rec)
}

// handleGetRecord returns a single record. Owner or admin only.
func (s *Server) handleGetRecord(w http.ResponseWriter, r *http.Request) {
	rec, ok := s.loadRecordForCaller(w, r, "read")
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, rec)
}

// handleUpdateRecord patches a record's content fields. Owner or admin
// only; ownership never changes.
func (s *Server) handleUpdateRecord(w http.ResponseWriter, r *http.Request) {
	caller := principalFromContext(r.Context())

	rec, ok := s.loadRecordForCaller(w, r, "update")
	if !ok {
		return
	}

	var req updateRecordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	if req.Image != nil {
		rec.Image = *req.Image
	}
	if req.Document != nil {
		rec.Document = *req.Document
	}
	if req.Tags != nil {
		rec.Tags = *req.Tags
	}
	if err := rec.Validate(); err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	if err := s.records.Update(r.Context(), rec); err != nil {
		s.logger.Error("update record failed", "error", err)
		writeInternalError(w, "failed to update record")
		return
	}

	s.logger.Info("record updated", "record_id", rec.ID, "updated_by", caller.ID)
	s.auditLog("update", "record", rec.ID, caller.ID, audit.OutcomeOK, nil)

	writeJSON(w, http.StatusOK, rec)
}

// handleDeleteRecord removes a record. Owner or admin only.
func (s *Server) handleDeleteRecord(w http.ResponseWriter, r *http.Request) {
	caller := principalFromContext(r.Context())

	rec, ok := s.loadRecordForCaller(w, r, "delete")
	if !ok {
		return
	}

	if err := s.records.Delete(r.Context(), rec.ID); err != nil {
		s.logger.Error("delete record failed", "error", err)
		writeInternalError(w, "failed to delete record")
		return
	}

	s.logger.Info("record deleted", "record_id", rec.ID, "deleted_by", caller.ID)
	s.auditLog("delete", "record", rec.ID, caller.ID, audit.OutcomeOK, nil)

	w.WriteHeader(http.StatusNoContent)
}

// loadRecordForCaller fetches the record from the URL and enforces the
// owner-or-admin check. On failure the response has already been written
// and ok is false.
func (s *Server) loadRecordForCaller(w http.ResponseWriter, r *http.Request, action string) (*record.Record, bool) {
	id := chi.URLParam(r, "id")
	caller := principalFromContext(r.Context())

	rec, err := s.records.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, record.ErrRecordNotFound) {
			writeNotFound(w, "record not found")
			return nil, false
		}
		s.logger.Error("get record failed", "error", err, "record_id", id)
		writeInternalError(w, "failed to get record")
		return nil, false
	}

	if err := s.gate.RequireOwnerOrAdmin(caller, rec.OwnerID); err != nil {
		s.auditDenied(action, "record", id, r, "not owner or admin")
		writeForbidden(w, "not the record owner")
		return nil, false
	}

	return rec, true
}
