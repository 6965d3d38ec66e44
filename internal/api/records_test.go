package api

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/patra-io/patra/internal/record"
)

// createRecordVia posts a record through the API and returns it.
func createRecordVia(t *testing.T, router http.Handler, token, tags string) record.Record {
	t.Helper()

	body := `{"image": "https://images.example.com/scan.png", "tags": "` + tags + `"}`
	w := doRequest(t, router, http.MethodPost, "/api/v1/records/", token, strings.NewReader(body))
	if w.Code != http.StatusCreated {
		t.Fatalf("create record status = %d, want 201; body: %s", w.Code, w.Body.String())
	}

	var rec record.Record
	if err := json.Unmarshal(w.Body.Bytes(), &rec); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	return rec
}

func TestCreateRecord_OwnerForced(t *testing.T) {
	srv, _ := testServer(t)
	router := srv.buildRouter()

	alice := createTestPrincipal(t, srv, "alice@example.com", "s3cret-pass", true, false)
	token := tokenFor(t, srv, alice.Email)

	// owner_id in the body must be ignored.
	body := `{"image": "https://images.example.com/scan.png", "owner_id": "prn-somebody-else"}`
	w := doRequest(t, router, http.MethodPost, "/api/v1/records/", token, strings.NewReader(body))
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201; body: %s", w.Code, w.Body.String())
	}

	var rec record.Record
	if err := json.Unmarshal(w.Body.Bytes(), &rec); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if rec.OwnerID != alice.ID {
		t.Errorf("OwnerID = %q, want caller %q", rec.OwnerID, alice.ID)
	}
}

func TestCreateRecord_Validation(t *testing.T) {
	srv, _ := testServer(t)
	router := srv.buildRouter()

	createTestPrincipal(t, srv, "alice@example.com", "s3cret-pass", true, false)
	token := tokenFor(t, srv, "alice@example.com")

	for _, body := range []string{
		`{}`,
		`{"image": "not-a-url"}`,
		`{"image": "ftp://example.com/scan.png"}`,
	} {
		w := doRequest(t, router, http.MethodPost, "/api/v1/records/", token, strings.NewReader(body))
		if w.Code != http.StatusBadRequest {
			t.Errorf("body %s: status = %d, want 400", body, w.Code)
		}
	}
}

func TestListRecords_ScopedToOwner(t *testing.T) {
	srv, _ := testServer(t)
	router := srv.buildRouter()

	createTestPrincipal(t, srv, "alice@example.com", "s3cret-pass", true, false)
	bob := createTestPrincipal(t, srv, "bob@example.com", "s3cret-pass", true, false)
	createTestPrincipal(t, srv, "admin@example.com", "s3cret-pass", true, true)

	aliceToken := tokenFor(t, srv, "alice@example.com")
	bobToken := tokenFor(t, srv, "bob@example.com")
	adminToken := tokenFor(t, srv, "admin@example.com")

	createRecordVia(t, router, aliceToken, "a1")
	createRecordVia(t, router, aliceToken, "a2")
	createRecordVia(t, router, bobToken, "b1")

	var resp struct {
		Records []record.Record `json:"records"`
		Count   int             `json:"count"`
	}

	// Each principal sees only their own records.
	w := doRequest(t, router, http.MethodGet, "/api/v1/records/", aliceToken, nil)
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Count != 2 {
		t.Errorf("alice count = %d, want 2", resp.Count)
	}

	// Admin sees their own (none) by default.
	w = doRequest(t, router, http.MethodGet, "/api/v1/records/", adminToken, nil)
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Count != 0 {
		t.Errorf("admin default count = %d, want 0", resp.Count)
	}

	// Admin widens to all.
	w = doRequest(t, router, http.MethodGet, "/api/v1/records/?all=1", adminToken, nil)
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Count != 3 {
		t.Errorf("admin all count = %d, want 3", resp.Count)
	}

	// Admin narrows to one owner.
	w = doRequest(t, router, http.MethodGet, "/api/v1/records/?owner="+bob.ID, adminToken, nil)
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Count != 1 {
		t.Errorf("admin owner-scoped count = %d, want 1", resp.Count)
	}

	// Non-admins cannot widen the scope.
	w = doRequest(t, router, http.MethodGet, "/api/v1/records/?all=1", aliceToken, nil)
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Count != 2 {
		t.Errorf("alice all=1 count = %d, want 2 (flag ignored)", resp.Count)
	}
}

func TestRecordAccess_OwnerOrAdminMatrix(t *testing.T) {
	srv, _ := testServer(t)
	router := srv.buildRouter()

	createTestPrincipal(t, srv, "owner@example.com", "s3cret-pass", true, false)
	createTestPrincipal(t, srv, "other@example.com", "s3cret-pass", true, false)
	createTestPrincipal(t, srv, "admin@example.com", "s3cret-pass", true, true)

	ownerToken := tokenFor(t, srv, "owner@example.com")
	otherToken := tokenFor(t, srv, "other@example.com")
	adminToken := tokenFor(t, srv, "admin@example.com")

	rec := createRecordVia(t, router, ownerToken, "shared")
	path := "/api/v1/records/" + rec.ID

	// Read matrix.
	if w := doRequest(t, router, http.MethodGet, path, ownerToken, nil); w.Code != http.StatusOK {
		t.Errorf("owner read status = %d, want 200", w.Code)
	}
	if w := doRequest(t, router, http.MethodGet, path, otherToken, nil); w.Code != http.StatusForbidden {
		t.Errorf("stranger read status = %d, want 403", w.Code)
	}
	if w := doRequest(t, router, http.MethodGet, path, adminToken, nil); w.Code != http.StatusOK {
		t.Errorf("admin read status = %d, want 200", w.Code)
	}

	// Update by a stranger is refused.
	patch := strings.NewReader(`{"tags": "stolen"}`)
	if w := doRequest(t, router, http.MethodPatch, path, otherToken, patch); w.Code != http.StatusForbidden {
		t.Errorf("stranger patch status = %d, want 403", w.Code)
	}

	// Update by the owner works and ownership survives.
	patch = strings.NewReader(`{"tags": "updated", "document": "notes"}`)
	w := doRequest(t, router, http.MethodPatch, path, ownerToken, patch)
	if w.Code != http.StatusOK {
		t.Fatalf("owner patch status = %d, want 200; body: %s", w.Code, w.Body.String())
	}
	var updated record.Record
	if err := json.Unmarshal(w.Body.Bytes(), &updated); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if updated.Tags != "updated" || updated.Document != "notes" {
		t.Errorf("patched record = %+v", updated)
	}
	if updated.OwnerID != rec.OwnerID {
		t.Errorf("OwnerID changed on update: %q -> %q", rec.OwnerID, updated.OwnerID)
	}

	// Delete matrix: stranger refused, admin allowed.
	if w := doRequest(t, router, http.MethodDelete, path, otherToken, nil); w.Code != http.StatusForbidden {
		t.Errorf("stranger delete status = %d, want 403", w.Code)
	}
	if w := doRequest(t, router, http.MethodDelete, path, adminToken, nil); w.Code != http.StatusNoContent {
		t.Errorf("admin delete status = %d, want 204", w.Code)
	}
	if w := doRequest(t, router, http.MethodGet, path, adminToken, nil); w.Code != http.StatusNotFound {
		t.Errorf("read after delete status = %d, want 404", w.Code)
	}
}

func TestRecord_NotFound(t *testing.T) {
	srv, _ := testServer(t)
	router := srv.buildRouter()

	createTestPrincipal(t, srv, "alice@example.com", "s3cret-pass", true, false)
	token := tokenFor(t, srv, "alice@example.com")

	w := doRequest(t, router, http.MethodGet, "/api/v1/records/rec-missing", token, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestRecords_RequireAuth(t *testing.T) {
	srv, _ := testServer(t)
	router := srv.buildRouter()

	w := doRequest(t, router, http.MethodGet, "/api/v1/records/", "", nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}
