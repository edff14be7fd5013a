package middleware

import (
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/carechart/carechart/internal/platform/auth"
)

// AuditEntry captures who touched which patient's record, when, and how.
// Every patient-scoped request produces one entry regardless of outcome so
// that denied attempts are visible too.
type AuditEntry struct {
	ActorID   string
	ActorRole string
	PatientID string
	Method    string
	Path      string
	Status    int
	RequestID string
	Timestamp time.Time
}

// AuditRecorder receives audit entries. The default recorder is the
// structured log; tests substitute their own.
type AuditRecorder interface {
	Record(entry AuditEntry)
}

// Audit emits an audit entry for every patient-scoped API request. If no
// recorder is given it falls back to structured zerolog logging.
func Audit(logger zerolog.Logger, recorders ...AuditRecorder) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			if !isAuditablePath(req.URL.Path) {
				return next(c)
			}

			// Run the handler first so the response status is known.
			err := next(c)

			entry := AuditEntry{
				Method:    req.Method,
				Path:      req.URL.Path,
				Status:    c.Response().Status,
				Timestamp: time.Now().UTC(),
			}
			if rid, ok := c.Get("request_id").(string); ok {
				entry.RequestID = rid
			}
			if actor, ok := auth.ActorFromContext(req.Context()); ok {
				entry.ActorID = actor.ID.String()
				entry.ActorRole = string(actor.Role)
			}
			entry.PatientID = patientIDFromPath(req.URL.Path)

			if len(recorders) == 0 {
				logger.Info().
					Str("request_id", entry.RequestID).
					Str("actor_id", entry.ActorID).
					Str("actor_role", entry.ActorRole).
					Str("patient_id", entry.PatientID).
					Str("method", entry.Method).
					Str("path", entry.Path).
					Int("status", entry.Status).
					Msg("audit")
				return err
			}
			for _, r := range recorders {
				r.Record(entry)
			}
			return err
		}
	}
}

func isAuditablePath(path string) bool {
	return strings.HasPrefix(path, "/api/v1/patients/") ||
		strings.HasPrefix(path, "/api/v1/consultations")
}

// patientIDFromPath pulls the patient id out of /api/v1/patients/:id/... or
// /api/v1/consultations/:patientID.
func patientIDFromPath(path string) string {
	parts := strings.Split(strings.TrimPrefix(path, "/"), "/")
	if len(parts) >= 4 && parts[0] == "api" && parts[1] == "v1" {
		switch parts[2] {
		case "patients", "consultations":
			return parts[3]
		}
	}
	return ""
}
