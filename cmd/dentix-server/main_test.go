package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/dentix/dentix/internal/config"
	"github.com/dentix/dentix/internal/platform/auth"
	"github.com/dentix/dentix/internal/platform/db"
)

func testConfig() *config.Config {
	return &config.Config{
		Env:               "test",
		JWTSecret:         "test-secret-test-secret-test-secret",
		TokenTTL:          time.Hour,
		RevocationBackend: config.RevocationMemory,
		CORSOrigins:       []string{"http://localhost:5173"},
		RateLimitRPS:      1000,
		RateLimitBurst:    1000,
		BodyLimit:         "1M",
		Version:           "test",
	}
}

// newTestServer builds the full route table without a database. Only
// requests rejected before the connection middleware can be served.
func newTestServer(t *testing.T) (*echo.Echo, *auth.TokenService) {
	t.Helper()
	cfg := testConfig()
	store, closeStore, err := newRevocationStore(context.Background(), cfg)
	if err != nil {
		t.Fatalf("revocation store: %v", err)
	}
	t.Cleanup(closeStore)
	tokens := auth.NewTokenService([]byte(cfg.JWTSecret), cfg.TokenTTL, store)
	return newServer(cfg, nil, tokens, zerolog.Nop()), tokens
}

func TestParseRoles(t *testing.T) {
	got := parseRoles(" Admin, dentist,,assistant ")
	want := []string{"admin", "dentist", "assistant"}
	if len(got) != len(want) {
		t.Fatalf("parseRoles() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("parseRoles()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
	if parseRoles("") != nil {
		t.Error("expected nil for empty input")
	}
}

func TestNewRevocationStore_Memory(t *testing.T) {
	store, closeStore, err := newRevocationStore(context.Background(), testConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer closeStore()
	if _, ok := store.(*auth.MemoryRevocationStore); !ok {
		t.Errorf("expected memory store, got %T", store)
	}
}

func TestNewRevocationStore_Unknown(t *testing.T) {
	cfg := testConfig()
	cfg.RevocationBackend = "etcd"
	if _, _, err := newRevocationStore(context.Background(), cfg); err == nil {
		t.Error("expected error for unknown backend")
	}
}

func TestPrintStatuses(t *testing.T) {
	applied := time.Date(2026, 10, 1, 9, 30, 0, 0, time.UTC)
	var buf bytes.Buffer
	printStatuses(&buf, []db.MigrationStatus{
		{Version: 1, Name: "core", Applied: true, AppliedAt: &applied},
		{Version: 2, Name: "office"},
	})
	out := buf.String()
	if !strings.Contains(out, "2026-10-01 09:30:00") {
		t.Errorf("expected applied timestamp in output:\n%s", out)
	}
	if !strings.Contains(out, "pending") {
		t.Errorf("expected pending migration in output:\n%s", out)
	}
}

func TestServer_RoutesRegistered(t *testing.T) {
	e, _ := newTestServer(t)
	routes := make(map[string]bool)
	for _, r := range e.Routes() {
		routes[r.Method+" "+r.Path] = true
	}
	for _, want := range []string{
		"GET /health",
		"POST /api/login",
		"POST /api/logout",
		"GET /api/me",
		"GET /api/patients",
		"POST /api/appointments",
		"GET /api/appointments/stats/summary",
		"PATCH /api/treatments/:id/complete",
		"GET /api/clinical-history/:id/with-attachments",
		"POST /api/inventory/incoming",
		"GET /api/inventory/stock/low",
		"GET /api/inventory/supplies/:filterField/:value",
		"GET /api/config/blood-types",
	} {
		if !routes[want] {
			t.Errorf("route %q not registered", want)
		}
	}
}

func TestServer_RequiresBearerToken(t *testing.T) {
	e, _ := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/api/patients", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
	if rec.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("expected security headers on error responses")
	}
}

func TestServer_LogoutRevokesToken(t *testing.T) {
	e, tokens := newTestServer(t)
	token, _, err := tokens.Issue(auth.Subject{ID: "1", Email: "admin@clinic.test", Roles: []string{auth.RoleAdmin}, TenantID: "clinic_a"})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/logout", nil)
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("logout #%d: expected 200, got %d", i+1, rec.Code)
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/api/me/", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected revoked token to be rejected, got %d", rec.Code)
	}
}

func TestServer_LoginValidatesBody(t *testing.T) {
	e, _ := newTestServer(t)
	req := httptest.NewRequest(http.MethodPost, "/api/login", strings.NewReader(`{"email":"not-an-email"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}
