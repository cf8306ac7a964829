package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
)

func TestRequestTimeout_CompletesWithinDeadline(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/api/patients", nil), httptest.NewRecorder())

	var deadline time.Time
	h := RequestTimeout(5 * time.Second)(func(c echo.Context) error {
		deadline, _ = c.Request().Context().Deadline()
		return c.String(http.StatusOK, "ok")
	})

	if err := h(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if deadline.IsZero() {
		t.Error("expected a deadline on the request context")
	}
}

func TestRequestTimeout_MapsDeadlineTo504(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/api/inventory/stock", nil), httptest.NewRecorder())

	h := RequestTimeout(20 * time.Millisecond)(func(c echo.Context) error {
		<-c.Request().Context().Done()
		return c.Request().Context().Err()
	})

	err := h(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusGatewayTimeout {
		t.Fatalf("expected 504, got %v", err)
	}
}

func TestRequestTimeout_OtherErrorsPassThrough(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/api/patients", nil), httptest.NewRecorder())
	want := errors.New("boom")

	err := RequestTimeout(time.Second)(func(echo.Context) error { return want })(c)
	if err != want {
		t.Fatalf("expected original error, got %v", err)
	}
}

func TestRequestTimeout_Disabled(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())

	h := RequestTimeout(0)(func(c echo.Context) error {
		if _, ok := c.Request().Context().Deadline(); ok {
			t.Error("expected no deadline")
		}
		return nil
	})
	h(c)
}
