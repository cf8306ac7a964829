package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/dentix/dentix/internal/platform/auth"
)

// AuditEntry records who touched which clinic resource.
type AuditEntry struct {
	UserID     string
	UserRoles  []string
	TenantID   string
	Resource   string
	ResourceID string
	PatientID  string
	Action     string // read, create, update, delete
	IPAddress  string
	UserAgent  string
	Path       string
	Method     string
	Timestamp  time.Time
	RequestID  string
	StatusCode int
}

// AuditRecorder persists audit entries somewhere other than the log.
type AuditRecorder interface {
	RecordAccess(entry AuditEntry) error
}

// AuditRecorderFunc is a function adapter for AuditRecorder.
type AuditRecorderFunc func(entry AuditEntry) error

func (f AuditRecorderFunc) RecordAccess(entry AuditEntry) error {
	return f(entry)
}

// Audit logs every access to /api routes after the handler has run. Login
// and logout are skipped; they carry credentials, not records.
func Audit(logger zerolog.Logger, recorders ...AuditRecorder) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			path := req.URL.Path

			if !isAuditablePath(path) {
				return next(c)
			}

			err := next(c)

			status := c.Response().Status
			if he, ok := err.(*echo.HTTPError); ok {
				status = he.Code
			}

			ctx := req.Context()
			resource, resourceID := splitResource(path)
			entry := AuditEntry{
				Timestamp:  time.Now().UTC(),
				Path:       path,
				Method:     req.Method,
				IPAddress:  c.RealIP(),
				UserAgent:  req.UserAgent(),
				StatusCode: status,
				UserID:     auth.UserIDFromContext(ctx),
				UserRoles:  auth.RolesFromContext(ctx),
				Action:     httpMethodToAction(req.Method),
				Resource:   resource,
				ResourceID: resourceID,
				PatientID:  extractPatientID(c, resource, resourceID),
			}
			entry.TenantID, _ = c.Get("tenant_id").(string)
			entry.RequestID, _ = c.Get("request_id").(string)

			for _, r := range recorders {
				if r == nil {
					continue
				}
				if recErr := r.RecordAccess(entry); recErr != nil {
					logger.Error().Err(recErr).
						Str("request_id", entry.RequestID).
						Msg("failed to record audit entry")
				}
			}

			logger.Info().
				Str("type", "audit").
				Str("request_id", entry.RequestID).
				Str("tenant_id", entry.TenantID).
				Str("user_id", entry.UserID).
				Strs("user_roles", entry.UserRoles).
				Str("resource", entry.Resource).
				Str("resource_id", entry.ResourceID).
				Str("patient_id", entry.PatientID).
				Str("action", entry.Action).
				Str("method", entry.Method).
				Str("path", entry.Path).
				Str("remote_ip", entry.IPAddress).
				Int("status", entry.StatusCode).
				Msg("data_access")

			return err
		}
	}
}

func isAuditablePath(path string) bool {
	if !strings.HasPrefix(path, "/api/") {
		return false
	}
	switch path {
	case "/api/login", "/api/logout":
		return false
	}
	return true
}

func httpMethodToAction(method string) string {
	switch method {
	case http.MethodPost:
		return "create"
	case http.MethodPut, http.MethodPatch:
		return "update"
	case http.MethodDelete:
		return "delete"
	default:
		return "read"
	}
}

// splitResource returns the resource segment after /api/ and the numeric id
// directly after it, descending one level for grouped routes such as
// /api/inventory/supplies/3.
//
//   - /api/patients                 -> patients, ""
//   - /api/patients/12              -> patients, 12
//   - /api/inventory/incoming/4     -> inventory/incoming, 4
//   - /api/appointments/patient/5   -> appointments, ""
func splitResource(path string) (string, string) {
	segments := strings.Split(strings.Trim(strings.TrimPrefix(path, "/api/"), "/"), "/")
	if len(segments) == 0 || segments[0] == "" {
		return "unknown", ""
	}

	resource := segments[0]
	rest := segments[1:]
	if (resource == "inventory" || resource == "config") && len(rest) > 0 {
		resource += "/" + rest[0]
		rest = rest[1:]
	}
	if len(rest) > 0 && isNumericID(rest[0]) {
		return resource, rest[0]
	}
	return resource, ""
}

// extractPatientID finds the patient a request concerns, from the path of a
// patient route, a /patient/:id sub-route, or the patient_id query filter.
func extractPatientID(c echo.Context, resource, resourceID string) string {
	if resource == "patients" {
		return resourceID
	}
	segments := strings.Split(c.Request().URL.Path, "/")
	for i := 0; i+1 < len(segments); i++ {
		if segments[i] == "patient" && isNumericID(segments[i+1]) {
			return segments[i+1]
		}
	}
	if pid := c.QueryParam("patient_id"); isNumericID(pid) {
		return pid
	}
	return ""
}

func isNumericID(s string) bool {
	n, err := strconv.ParseInt(s, 10, 64)
	return err == nil && n > 0
}
