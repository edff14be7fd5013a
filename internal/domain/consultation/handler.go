package consultation

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/carechart/carechart/internal/domain/identity"
	"github.com/carechart/carechart/internal/platform/auth"
)

// Handler exposes the doctor-owned consultation set. A doctor only ever
// edits their own set; there is no endpoint that touches another doctor's
// links, and no patient-side mirror.
type Handler struct {
	registry   *Registry
	identities identity.Repository
}

func NewHandler(registry *Registry, identities identity.Repository) *Handler {
	return &Handler{registry: registry, identities: identities}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	doctor := auth.RequireRole(auth.RoleDoctor)
	api.GET("/consultations", h.ListConsultations, doctor)
	api.POST("/consultations/:patientID", h.AddConsultation, doctor)
	api.DELETE("/consultations/:patientID", h.RemoveConsultation, doctor)
}

func (h *Handler) ListConsultations(c echo.Context) error {
	actor, ok := auth.ActorFromContext(c.Request().Context())
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
	}
	patients, err := h.registry.ConsultedPatients(c.Request().Context(), actor.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"doctor_id":   actor.ID,
		"patient_ids": patients,
	})
}

func (h *Handler) AddConsultation(c echo.Context) error {
	actor, ok := auth.ActorFromContext(c.Request().Context())
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
	}
	patientID, err := uuid.Parse(c.Param("patientID"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid patient id")
	}
	if _, err := h.identities.GetPatient(c.Request().Context(), patientID); err != nil {
		if errors.Is(err, identity.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "patient not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if err := h.registry.AddConsultation(c.Request().Context(), actor.ID, patientID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) RemoveConsultation(c echo.Context) error {
	actor, ok := auth.ActorFromContext(c.Request().Context())
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
	}
	patientID, err := uuid.Parse(c.Param("patientID"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid patient id")
	}
	if err := h.registry.RemoveConsultation(c.Request().Context(), actor.ID, patientID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}
