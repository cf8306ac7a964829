package scheduling

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/dentix/dentix/internal/platform/db"
)

const createBody = `{"patient_id":1,"dentist_id":1,"office_id":1,"appointment_time":"2026-03-10T09:00:00Z","reason":"checkup"}`

func newTestHandler() (*Handler, *echo.Echo) {
	svc, _, _ := newTestService()
	return NewHandler(svc), echo.New()
}

func newRequest(e *echo.Echo, method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	req = req.WithContext(db.WithTenant(req.Context(), "clinic_a"))
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func expectStatus(t *testing.T, err error, want int) {
	t.Helper()
	httpErr, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected *echo.HTTPError, got %T (%v)", err, err)
	}
	if httpErr.Code != want {
		t.Errorf("expected %d, got %d (%v)", want, httpErr.Code, httpErr.Message)
	}
}

func TestHandler_CreateAppointment(t *testing.T) {
	h, e := newTestHandler()
	c, rec := newRequest(e, http.MethodPost, "/api/appointments", createBody)
	if err := h.CreateAppointment(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", rec.Code)
	}

	c, _ = newRequest(e, http.MethodPost, "/api/appointments", createBody)
	expectStatus(t, h.CreateAppointment(c), http.StatusConflict)
}

func TestHandler_CreateAppointment_InvalidBody(t *testing.T) {
	h, e := newTestHandler()
	c, _ := newRequest(e, http.MethodPost, "/api/appointments", `{"patient_id":"x"}`)
	expectStatus(t, h.CreateAppointment(c), http.StatusBadRequest)
}

func TestHandler_ListByDentist(t *testing.T) {
	h, e := newTestHandler()
	c, _ := newRequest(e, http.MethodPost, "/api/appointments", createBody)
	h.CreateAppointment(c)

	c, rec := newRequest(e, http.MethodGet, "/api/appointments/dentist/1", "")
	c.SetParamNames("dentist_id")
	c.SetParamValues("1")
	if err := h.ListByDentist(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var body DentistAppointments
	json.Unmarshal(rec.Body.Bytes(), &body)
	if body.Dentist == nil || body.Dentist.ID != 1 || len(body.Appointments) != 1 {
		t.Errorf("unexpected body %s", rec.Body.String())
	}

	c, _ = newRequest(e, http.MethodGet, "/api/appointments/dentist/5", "")
	c.SetParamNames("dentist_id")
	c.SetParamValues("5")
	expectStatus(t, h.ListByDentist(c), http.StatusNotFound)
}

func TestHandler_Stats(t *testing.T) {
	h, e := newTestHandler()
	c, rec := newRequest(e, http.MethodGet, "/api/appointments/stats/summary", "")
	if err := h.Stats(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(rec.Body.String(), `"total_appointments":0`) {
		t.Errorf("unexpected body %s", rec.Body.String())
	}
}

func TestHandler_DeleteAppointment(t *testing.T) {
	h, e := newTestHandler()
	c, _ := newRequest(e, http.MethodPost, "/api/appointments", createBody)
	h.CreateAppointment(c)

	c, rec := newRequest(e, http.MethodDelete, "/api/appointments/1", "")
	c.SetParamNames("id")
	c.SetParamValues("1")
	if err := h.DeleteAppointment(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}
