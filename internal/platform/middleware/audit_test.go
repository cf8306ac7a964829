package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/dentix/dentix/internal/platform/auth"
)

// mockRecorder collects audit entries for assertions.
type mockRecorder struct {
	mu      sync.Mutex
	entries []AuditEntry
	err     error
}

func (m *mockRecorder) RecordAccess(entry AuditEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, entry)
	return m.err
}

func (m *mockRecorder) last() AuditEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.entries[len(m.entries)-1]
}

func (m *mockRecorder) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

func newTestContext(method, path string, opts ...func(*http.Request)) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, path, nil)
	for _, opt := range opts {
		opt(req)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func withAuth(userID string, roles []string) func(*http.Request) {
	return func(req *http.Request) {
		ctx := req.Context()
		ctx = context.WithValue(ctx, auth.UserIDKey, userID)
		ctx = context.WithValue(ctx, auth.UserRolesKey, roles)
		*req = *req.WithContext(ctx)
	}
}

func okHandler(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

func TestAudit_PatientRead(t *testing.T) {
	rec := &mockRecorder{}
	c, _ := newTestContext(http.MethodGet, "/api/patients/12", withAuth("7", []string{auth.RoleDentist}))
	c.Set("request_id", "req-abc")
	c.Set("tenant_id", "clinic_a")

	if err := Audit(zerolog.New(os.Stderr), rec)(okHandler)(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.count() != 1 {
		t.Fatalf("expected 1 audit entry, got %d", rec.count())
	}
	entry := rec.last()
	if entry.UserID != "7" || entry.TenantID != "clinic_a" || entry.RequestID != "req-abc" {
		t.Errorf("unexpected identity fields %+v", entry)
	}
	if entry.Resource != "patients" || entry.ResourceID != "12" || entry.PatientID != "12" {
		t.Errorf("unexpected resource fields %+v", entry)
	}
	if entry.Action != "read" || entry.StatusCode != http.StatusOK {
		t.Errorf("unexpected action/status %q %d", entry.Action, entry.StatusCode)
	}
}

func TestAudit_InventoryCreate(t *testing.T) {
	rec := &mockRecorder{}
	c, _ := newTestContext(http.MethodPost, "/api/inventory/incoming", withAuth("1", []string{auth.RoleAssistant}))
	h := Audit(zerolog.Nop(), rec)(func(c echo.Context) error {
		return c.NoContent(http.StatusCreated)
	})

	if err := h(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	entry := rec.last()
	if entry.Resource != "inventory/incoming" || entry.Action != "create" || entry.StatusCode != http.StatusCreated {
		t.Errorf("unexpected entry %+v", entry)
	}
}

func TestAudit_ErrorStatus(t *testing.T) {
	rec := &mockRecorder{}
	c, _ := newTestContext(http.MethodDelete, "/api/appointments/3")
	h := Audit(zerolog.Nop(), rec)(func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusBadRequest, "cannot delete a completed appointment")
	})

	if err := h(c); err == nil {
		t.Fatal("expected handler error to pass through")
	}
	entry := rec.last()
	if entry.StatusCode != http.StatusBadRequest || entry.Action != "delete" || entry.ResourceID != "3" {
		t.Errorf("unexpected entry %+v", entry)
	}
}

func TestAudit_SkipsNonAuditablePaths(t *testing.T) {
	for _, path := range []string{"/health", "/api/login", "/api/logout"} {
		rec := &mockRecorder{}
		c, _ := newTestContext(http.MethodPost, path)
		if err := Audit(zerolog.Nop(), rec)(okHandler)(c); err != nil {
			t.Fatalf("%s: unexpected error: %v", path, err)
		}
		if rec.count() != 0 {
			t.Errorf("%s: expected no audit entry", path)
		}
	}
}

func TestAudit_RecorderError_DoesNotBreakRequest(t *testing.T) {
	rec := &mockRecorder{err: errors.New("disk full")}
	c, httpRec := newTestContext(http.MethodGet, "/api/treatments")

	if err := Audit(zerolog.Nop(), rec)(okHandler)(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if httpRec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", httpRec.Code)
	}
}

func TestAudit_PatientIDFromSubRouteAndQuery(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/api/appointments/patient/5", "5"},
		{"/api/treatments?patient_id=9", "9"},
		{"/api/clinical-history/4/attachments", ""},
	}
	for _, tt := range tests {
		rec := &mockRecorder{}
		c, _ := newTestContext(http.MethodGet, tt.path)
		Audit(zerolog.Nop(), rec)(okHandler)(c)
		if got := rec.last().PatientID; got != tt.want {
			t.Errorf("%s: expected patient %q, got %q", tt.path, tt.want, got)
		}
	}
}

func TestSplitResource(t *testing.T) {
	tests := []struct {
		path, resource, id string
	}{
		{"/api/patients", "patients", ""},
		{"/api/patients/12/", "patients", "12"},
		{"/api/inventory/supplies/3", "inventory/supplies", "3"},
		{"/api/inventory/stock/low", "inventory/stock", ""},
		{"/api/config/blood-types", "config/blood-types", ""},
		{"/api/clinical-history/4/attachments", "clinical-history", "4"},
		{"/api/", "unknown", ""},
	}
	for _, tt := range tests {
		resource, id := splitResource(tt.path)
		if resource != tt.resource || id != tt.id {
			t.Errorf("splitResource(%q) = %q, %q; want %q, %q", tt.path, resource, id, tt.resource, tt.id)
		}
	}
}

func TestHttpMethodToAction(t *testing.T) {
	tests := map[string]string{
		http.MethodGet:    "read",
		http.MethodHead:   "read",
		http.MethodPost:   "create",
		http.MethodPut:    "update",
		http.MethodPatch:  "update",
		http.MethodDelete: "delete",
	}
	for method, want := range tests {
		if got := httpMethodToAction(method); got != want {
			t.Errorf("httpMethodToAction(%s) = %s, want %s", method, got, want)
		}
	}
}

func TestAuditRecorderFunc(t *testing.T) {
	called := false
	var r AuditRecorder = AuditRecorderFunc(func(AuditEntry) error {
		called = true
		return nil
	})
	r.RecordAccess(AuditEntry{})
	if !called {
		t.Error("expected function to be called")
	}
}
