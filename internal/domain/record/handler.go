package record

import (
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/carechart/carechart/internal/domain/access"
	"github.com/carechart/carechart/internal/platform/auth"
	"github.com/carechart/carechart/pkg/pagination"
)

type Handler struct {
	guard         *access.Guard
	aggregator    *Aggregator
	vitals        VitalStore
	notes         NoteStore
	files         FileStore
	prescriptions PrescriptionStore
}

func NewHandler(guard *access.Guard, aggregator *Aggregator,
	vitals VitalStore, notes NoteStore, files FileStore, prescriptions PrescriptionStore) *Handler {
	return &Handler{
		guard:         guard,
		aggregator:    aggregator,
		vitals:        vitals,
		notes:         notes,
		files:         files,
		prescriptions: prescriptions,
	}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/patients/:id/vitals", h.ListVitals)
	api.GET("/patients/:id/files", h.ListFiles)
	api.GET("/patients/:id/notes", h.ListNotes)
	api.POST("/patients/:id/notes", h.CreateNote, auth.RequireRole(auth.RoleDoctor))
	api.GET("/patients/:id/prescriptions", h.ListPrescriptions)
	api.POST("/patients/:id/prescriptions", h.CreatePrescription, auth.RequireRole(auth.RoleDoctor))
	api.GET("/patients/:id/record", h.GetRecord)
}

// authorize parses the patient id, then asks the guard whether the actor may
// perform op against that patient. The check runs on every request; nothing
// is cached across calls.
func (h *Handler) authorize(c echo.Context, op access.Operation) (uuid.UUID, auth.Actor, error) {
	patientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, auth.Actor{}, echo.NewHTTPError(http.StatusBadRequest, "invalid patient id")
	}
	actor, ok := auth.ActorFromContext(c.Request().Context())
	if !ok {
		return uuid.Nil, auth.Actor{}, echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
	}
	decision, err := h.guard.Authorize(c.Request().Context(), actor, patientID, op)
	if err != nil {
		return uuid.Nil, auth.Actor{}, echo.NewHTTPError(http.StatusInternalServerError, "authorization check failed")
	}
	if !decision.Allowed {
		return uuid.Nil, auth.Actor{}, echo.NewHTTPError(http.StatusForbidden, decision.Reason)
	}
	return patientID, actor, nil
}

func (h *Handler) ListVitals(c echo.Context) error {
	patientID, _, err := h.authorize(c, access.OpVitalsRead)
	if err != nil {
		return err
	}
	items, err := h.vitals.ListByPatient(c.Request().Context(), patientID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return paged(c, items)
}

func (h *Handler) ListFiles(c echo.Context) error {
	patientID, _, err := h.authorize(c, access.OpFilesRead)
	if err != nil {
		return err
	}
	items, err := h.files.ListByPatient(c.Request().Context(), patientID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return paged(c, items)
}

func (h *Handler) ListNotes(c echo.Context) error {
	patientID, _, err := h.authorize(c, access.OpNotesRead)
	if err != nil {
		return err
	}
	items, err := h.notes.ListByPatient(c.Request().Context(), patientID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return paged(c, items)
}

func (h *Handler) ListPrescriptions(c echo.Context) error {
	patientID, _, err := h.authorize(c, access.OpPrescriptionsRead)
	if err != nil {
		return err
	}
	items, err := h.prescriptions.ListByPatient(c.Request().Context(), patientID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return paged(c, items)
}

type createNoteRequest struct {
	Content string `json:"content"`
}

func (h *Handler) CreateNote(c echo.Context) error {
	patientID, actor, err := h.authorize(c, access.OpNotesWrite)
	if err != nil {
		return err
	}
	var req createNoteRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if strings.TrimSpace(req.Content) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "note content is required")
	}
	note := &Note{PatientID: patientID, DoctorID: actor.ID, Content: req.Content}
	if err := h.notes.Create(c.Request().Context(), note); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusCreated, note)
}

type createPrescriptionRequest struct {
	Medications  []Medication `json:"medications"`
	Instructions string       `json:"instructions"`
}

func (h *Handler) CreatePrescription(c echo.Context) error {
	patientID, actor, err := h.authorize(c, access.OpPrescriptionsWrite)
	if err != nil {
		return err
	}
	var req createPrescriptionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if len(req.Medications) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "at least one medication is required")
	}
	for _, m := range req.Medications {
		if strings.TrimSpace(m.Name) == "" {
			return echo.NewHTTPError(http.StatusBadRequest, "medication name is required")
		}
	}
	p := &Prescription{
		PatientID:    patientID,
		DoctorID:     actor.ID,
		Medications:  req.Medications,
		Instructions: req.Instructions,
	}
	if err := h.prescriptions.Create(c.Request().Context(), p); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusCreated, p)
}

// timelineEntry wraps a merged entry with its kind tag for the response body.
type timelineEntry struct {
	Kind  string `json:"kind"`
	Entry Entry  `json:"entry"`
}

func (h *Handler) GetRecord(c echo.Context) error {
	patientID, _, err := h.authorize(c, access.OpRecordRead)
	if err != nil {
		return err
	}
	timeline, err := h.aggregator.Aggregate(c.Request().Context(), patientID)
	if err != nil {
		var perr *PartialDataError
		if errors.As(err, &perr) {
			return echo.NewHTTPError(http.StatusInternalServerError, perr.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	out := make([]timelineEntry, len(timeline))
	for i, e := range timeline {
		out[i] = timelineEntry{Kind: e.EntryKind().String(), Entry: e}
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"patient_id": patientID,
		"entries":    out,
		"total":      len(out),
	})
}

// paged applies request pagination to an already-ordered slice.
func paged[T any](c echo.Context, items []T) error {
	pg := pagination.FromContext(c)
	lo, hi := pg.Bounds(len(items))
	return c.JSON(http.StatusOK, pagination.NewResponse(items[lo:hi], len(items), pg.Limit, pg.Offset))
}
