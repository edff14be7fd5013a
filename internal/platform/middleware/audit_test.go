package middleware

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/carechart/carechart/internal/platform/auth"
)

// mockRecorder collects audit entries for assertions.
type mockRecorder struct {
	mu      sync.Mutex
	entries []AuditEntry
}

func (m *mockRecorder) Record(entry AuditEntry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, entry)
}

func newAuditEcho(rec *mockRecorder) *echo.Echo {
	e := echo.New()
	e.Use(Audit(zerolog.Nop(), rec))
	e.GET("/api/v1/patients/:id/vitals", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	e.GET("/api/v1/patients/:id/notes", func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusForbidden, "not authorized")
	})
	e.GET("/healthz", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	return e
}

func TestAuditRecordsPatientAccess(t *testing.T) {
	recorder := &mockRecorder{}
	e := newAuditEcho(recorder)
	actor := auth.Actor{ID: uuid.New(), Role: auth.RoleDoctor}
	patientID := uuid.New()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/patients/"+patientID.String()+"/vitals", nil)
	req = req.WithContext(auth.WithActor(req.Context(), actor))
	e.ServeHTTP(httptest.NewRecorder(), req)

	if len(recorder.entries) != 1 {
		t.Fatalf("expected 1 audit entry, got %d", len(recorder.entries))
	}
	entry := recorder.entries[0]
	if entry.ActorID != actor.ID.String() || entry.ActorRole != "doctor" {
		t.Errorf("actor not captured: %+v", entry)
	}
	if entry.PatientID != patientID.String() {
		t.Errorf("patient id = %q, want %q", entry.PatientID, patientID)
	}
	if entry.Status != http.StatusOK {
		t.Errorf("status = %d, want 200", entry.Status)
	}
}

func TestAuditRecordsDeniedAccess(t *testing.T) {
	recorder := &mockRecorder{}
	e := newAuditEcho(recorder)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/patients/"+uuid.NewString()+"/notes", nil)
	e.ServeHTTP(httptest.NewRecorder(), req)

	if len(recorder.entries) != 1 {
		t.Fatalf("denied requests must still be audited, got %d entries", len(recorder.entries))
	}
	if recorder.entries[0].Status != http.StatusForbidden {
		t.Errorf("status = %d, want 403", recorder.entries[0].Status)
	}
}

func TestAuditSkipsNonPatientPaths(t *testing.T) {
	recorder := &mockRecorder{}
	e := newAuditEcho(recorder)

	e.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if len(recorder.entries) != 0 {
		t.Errorf("health checks should not be audited, got %d entries", len(recorder.entries))
	}
}

func TestPatientIDFromPath(t *testing.T) {
	id := uuid.NewString()
	tests := []struct {
		path string
		want string
	}{
		{"/api/v1/patients/" + id + "/vitals", id},
		{"/api/v1/consultations/" + id, id},
		{"/api/v1/consultations", ""},
		{"/healthz", ""},
	}
	for _, tt := range tests {
		if got := patientIDFromPath(tt.path); got != tt.want {
			t.Errorf("patientIDFromPath(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}
