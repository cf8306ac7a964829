package inventory

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/dentix/dentix/internal/platform/auth"
	"github.com/dentix/dentix/internal/platform/db"
)

func newTestHandler() (*Handler, *testEnv, *echo.Echo) {
	env := newTestEnv()
	return NewHandler(env.svc), env, echo.New()
}

func newRequest(e *echo.Echo, method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	ctx := db.WithTenant(req.Context(), "clinic_a")
	ctx = auth.WithClaims(ctx, &auth.Claims{Email: "assistant@clinic_a.test", Roles: []string{auth.RoleAssistant}})
	req = req.WithContext(ctx)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestHandler_CreateSupply(t *testing.T) {
	h, _, e := newTestHandler()
	c, rec := newRequest(e, http.MethodPost, "/api/inventory/supplies", `{"code":"GLV-01","name":"Nitrile gloves","min_stock":10}`)
	if err := h.CreateSupply(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	var sp Supply
	if err := json.Unmarshal(rec.Body.Bytes(), &sp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if sp.Code != "GLV-01" || !sp.Status {
		t.Errorf("unexpected supply %+v", sp)
	}

	c, _ = newRequest(e, http.MethodPost, "/api/inventory/supplies", `{"code":"GLV-01","name":"dup"}`)
	err := h.CreateSupply(c)
	if he, ok := err.(*echo.HTTPError); !ok || he.Code != http.StatusConflict {
		t.Errorf("expected 409, got %v", err)
	}
}

func TestHandler_CreateSupply_InvalidBody(t *testing.T) {
	h, _, e := newTestHandler()
	c, _ := newRequest(e, http.MethodPost, "/api/inventory/supplies", `{"code":`)
	err := h.CreateSupply(c)
	if he, ok := err.(*echo.HTTPError); !ok || he.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %v", err)
	}
}

func TestHandler_LookupSupplies(t *testing.T) {
	h, env, e := newTestHandler()
	seedSupply(t, env, tenantCtx("clinic_a"), "ANS-01")

	c, rec := newRequest(e, http.MethodGet, "/api/inventory/supplies/code/ANS-01", "")
	c.SetParamNames("filterField", "value")
	c.SetParamValues("code", "ANS-01")
	if err := h.LookupSupplies(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(rec.Body.String(), `"code":"ANS-01"`) {
		t.Errorf("unexpected body %s", rec.Body.String())
	}

	c, _ = newRequest(e, http.MethodGet, "/api/inventory/supplies/presentation/box", "")
	c.SetParamNames("filterField", "value")
	c.SetParamValues("presentation", "box")
	err := h.LookupSupplies(c)
	if he, ok := err.(*echo.HTTPError); !ok || he.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %v", err)
	}
}

func TestHandler_DeleteSupply(t *testing.T) {
	h, env, e := newTestHandler()
	sp := seedSupply(t, env, tenantCtx("clinic_a"), "ANS-01")

	c, rec := newRequest(e, http.MethodDelete, "/api/inventory/supplies/1", "")
	c.SetParamNames("id")
	c.SetParamValues(fmt.Sprint(sp.ID))
	if err := h.DeleteSupply(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	if by := env.supplies.items[sp.ID].UpdatedBy; by == nil || *by != "assistant@clinic_a.test" {
		t.Errorf("expected updated_by from caller, got %v", by)
	}
}

func TestHandler_PostIncoming(t *testing.T) {
	h, env, e := newTestHandler()
	sp := seedSupply(t, env, tenantCtx("clinic_a"), "GLV-01")

	body := fmt.Sprintf(`{"invoice_number":"F-100","details":[{"supply_id":%d,"quantity":5,"unit_cost":2,"expiration_date":"2027-01-31"}]}`, sp.ID)
	c, rec := newRequest(e, http.MethodPost, "/api/inventory/incoming", body)
	if err := h.PostIncoming(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	var tr IncomingTransaction
	if err := json.Unmarshal(rec.Body.Bytes(), &tr); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if tr.Total != 10 || len(tr.Details) != 1 || tr.Details[0].SupplyName != "Supply GLV-01" {
		t.Errorf("unexpected posting %+v", tr)
	}
}

func TestHandler_PostIncoming_UnknownSupply(t *testing.T) {
	h, _, e := newTestHandler()
	c, _ := newRequest(e, http.MethodPost, "/api/inventory/incoming", `{"details":[{"supply_id":42,"quantity":1}]}`)
	err := h.PostIncoming(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %v", err)
	}
	if !strings.Contains(fmt.Sprint(he.Message), "supply 42 does not exist") {
		t.Errorf("expected underlying message, got %v", he.Message)
	}
}

func TestHandler_PostOutgoing_EmptyDetails(t *testing.T) {
	h, _, e := newTestHandler()
	c, _ := newRequest(e, http.MethodPost, "/api/inventory/outgoing", `{"reason":"cleaning","details":[]}`)
	err := h.PostOutgoing(c)
	if he, ok := err.(*echo.HTTPError); !ok || he.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %v", err)
	}
}

func TestHandler_GetIncoming_InvalidID(t *testing.T) {
	h, _, e := newTestHandler()
	c, _ := newRequest(e, http.MethodGet, "/api/inventory/incoming/abc", "")
	c.SetParamNames("id")
	c.SetParamValues("abc")
	err := h.GetIncoming(c)
	if he, ok := err.(*echo.HTTPError); !ok || he.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %v", err)
	}
}

func TestHandler_ListSupplies(t *testing.T) {
	h, env, e := newTestHandler()
	seedSupply(t, env, tenantCtx("clinic_a"), "A")
	seedSupply(t, env, tenantCtx("clinic_a"), "B")
	seedSupply(t, env, tenantCtx("clinic_b"), "C")

	c, rec := newRequest(e, http.MethodGet, "/api/inventory/supplies", "")
	if err := h.ListSupplies(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var body struct {
		Supplies []Supply `json:"supplies"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Supplies) != 2 {
		t.Errorf("expected 2 supplies for clinic_a, got %d", len(body.Supplies))
	}
}

func TestHandler_Categories(t *testing.T) {
	h, _, e := newTestHandler()
	c, rec := newRequest(e, http.MethodGet, "/api/inventory/categories", "")
	if err := h.Categories(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(rec.Body.String(), "Anesthetics") {
		t.Errorf("unexpected body %s", rec.Body.String())
	}
}
