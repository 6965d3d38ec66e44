package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/patra-io/patra/internal/audit"
)

// auditChanSize is the buffer size for the async audit channel. Entries
// beyond this are dropped (best-effort) to avoid back-pressure on requests.
const auditChanSize = 256

// auditLog enqueues an audit entry for asynchronous write (best-effort).
// If the channel is full the entry is dropped and a warning is logged.
func (s *Server) auditLog(action, entityType, entityID, principalID, outcome string, details map[string]any) {
	if s.auditRepo == nil || s.auditCh == nil {
		return
	}

	entry := &audit.Entry{
		Action:      action,
		EntityType:  entityType,
		EntityID:    entityID,
		PrincipalID: principalID,
		Source:      "api",
		Outcome:     outcome,
		Details:     details,
	}

	select {
	case s.auditCh <- entry:
	default:
		s.logger.Warn("audit channel full, dropping entry",
			"action", action,
			"entity_type", entityType,
		)
	}
}

// auditDenied records a denied request. Every denial takes this one path
// so the trail looks the same whatever the refusal reason; the reason
// lands in details, never in the response body.
func (s *Server) auditDenied(action, entityType, entityID string, r *http.Request, reason string) {
	s.auditLog(action, entityType, entityID, principalID(principalFromContext(r.Context())),
		audit.OutcomeDenied, map[string]any{
			"reason": reason,
			"path":   r.URL.Path,
		})
}

// drainAuditLog reads entries from the audit channel and writes them
// serially. This avoids unbounded goroutine creation and matches SQLite's
// single-writer model. It runs until the context is cancelled, then drains
// remaining entries.
func (s *Server) drainAuditLog(ctx context.Context) {
	for {
		select {
		case entry := <-s.auditCh:
			if err := s.auditRepo.Create(context.Background(), entry); err != nil {
				s.logger.Error("audit write failed",
					"action", entry.Action,
					"entity_type", entry.EntityType,
					"error", err,
				)
			}
		case <-ctx.Done():
			for {
				select {
				case entry := <-s.auditCh:
					if err := s.auditRepo.Create(context.Background(), entry); err != nil {
						s.logger.Error("audit write failed during shutdown",
							"action", entry.Action,
							"error", err,
						)
					}
				default:
					return
				}
			}
		}
	}
}

// handleListAuditLogs returns paginated audit entries with optional filters.
//
// Query parameters:
//   - action: filter by action (login, create, update, delete)
//   - entity_type: filter by entity type (principal, record)
//   - principal_id: filter by acting principal
//   - outcome: filter by outcome (ok, denied, error)
//   - limit: max results (default 50, max 200)
//   - offset: pagination offset
func (s *Server) handleListAuditLogs(w http.ResponseWriter, r *http.Request) {
	if s.auditRepo == nil {
		writeInternalError(w, "audit logging not configured")
		return
	}

	q := r.URL.Query()
	filter := audit.Filter{
		Action:      q.Get("action"),
		EntityType:  q.Get("entity_type"),
		PrincipalID: q.Get("principal_id"),
		Outcome:     q.Get("outcome"),
	}

	if v := q.Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filter.Limit = n
		}
	}
	if v := q.Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filter.Offset = n
		}
	}

	result, err := s.auditRepo.List(r.Context(), filter)
	if err != nil {
		s.logger.Error("list audit entries failed", "error", err)
		writeInternalError(w, "failed to list audit entries")
		return
	}

	writeJSON(w, http.StatusOK, result)
}
