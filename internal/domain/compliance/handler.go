package compliance

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/hmo/claims/internal/platform/auth"
	"github.com/hmo/claims/internal/platform/respond"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	read := api.Group("", auth.RequireRole("admin", "claims_officer", "front_desk"))
	read.GET("/claims/:id/alerts", h.ListAlerts)

	write := api.Group("", auth.RequireRole("admin", "claims_officer"))
	write.POST("/alerts/:id/resolve", h.ResolveAlert)
	write.POST("/alerts/:id/override", h.OverrideAlert)
}

func (h *Handler) ListAlerts(c echo.Context) error {
	claimID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid claim id")
	}
	alerts, err := h.svc.ListAlerts(c.Request().Context(), claimID)
	if err != nil {
		return err
	}
	return respond.OK(c, "alerts retrieved", alerts)
}

type resolveInput struct {
	Notes string `json:"notes" validate:"required"`
}

func (h *Handler) ResolveAlert(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid alert id")
	}
	var in resolveInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(&in); err != nil {
		return err
	}
	actor := auth.ActorFromContext(c.Request().Context())
	alert, err := h.svc.ResolveAlert(c.Request().Context(), actor, id, in.Notes)
	if err != nil {
		return err
	}
	return respond.OK(c, "alert resolved", alert)
}

type overrideInput struct {
	Justification string `json:"justification" validate:"required"`
}

func (h *Handler) OverrideAlert(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid alert id")
	}
	var in overrideInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(&in); err != nil {
		return err
	}
	actor := auth.ActorFromContext(c.Request().Context())
	alert, err := h.svc.OverrideAlert(c.Request().Context(), actor, id, in.Justification)
	if err != nil {
		return err
	}
	return respond.OK(c, "alert overridden", alert)
}
