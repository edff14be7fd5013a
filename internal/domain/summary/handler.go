package summary

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/carechart/carechart/internal/domain/access"
	"github.com/carechart/carechart/internal/domain/identity"
	"github.com/carechart/carechart/internal/domain/record"
	"github.com/carechart/carechart/internal/platform/auth"
)

type Handler struct {
	guard *access.Guard
	svc   *Service
}

func NewHandler(guard *access.Guard, svc *Service) *Handler {
	return &Handler{guard: guard, svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/patients/:id/record/summary", h.Summarize, auth.RequireRole(auth.RoleDoctor))
}

func (h *Handler) Summarize(c echo.Context) error {
	patientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid patient id")
	}
	actor, ok := auth.ActorFromContext(c.Request().Context())
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
	}
	decision, err := h.guard.Authorize(c.Request().Context(), actor, patientID, access.OpRecordSummarize)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "authorization check failed")
	}
	if !decision.Allowed {
		return echo.NewHTTPError(http.StatusForbidden, decision.Reason)
	}

	result, err := h.svc.SummarizeRecord(c.Request().Context(), patientID)
	if err != nil {
		if errors.Is(err, identity.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "patient not found")
		}
		var perr *record.PartialDataError
		if errors.As(err, &perr) {
			return echo.NewHTTPError(http.StatusInternalServerError, perr.Error())
		}
		if errors.Is(err, ErrNotConfigured) {
			return echo.NewHTTPError(http.StatusInternalServerError, "summarizer is not configured")
		}
		var uerr *UnavailableError
		if errors.As(err, &uerr) {
			return c.JSON(http.StatusBadGateway, map[string]string{
				"error":  "summary unavailable",
				"reason": uerr.Reason,
			})
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, result)
}
