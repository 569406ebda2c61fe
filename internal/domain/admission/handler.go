package admission

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/hmo/claims/internal/platform/auth"
	"github.com/hmo/claims/internal/platform/respond"
	"github.com/hmo/claims/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	read := api.Group("", auth.RequireRole("admin", "claims_officer", "front_desk"))
	read.GET("/admissions/can-admit/:enrollee_id", h.CanAdmit)
	read.GET("/admissions/:id", h.GetAdmission)
	read.GET("/enrollees/:id/admissions", h.GetAdmissionHistory)

	write := api.Group("", auth.RequireRole("admin", "front_desk"))
	write.POST("/admissions", h.CreateAdmission)
	write.POST("/admissions/:id/discharge", h.DischargePatient)
}

func (h *Handler) CanAdmit(c echo.Context) error {
	enrolleeID, err := uuid.Parse(c.Param("enrollee_id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid enrollee id")
	}
	check, err := h.svc.CanAdmit(c.Request().Context(), enrolleeID)
	if err != nil {
		return err
	}
	return respond.OK(c, "admission eligibility checked", check)
}

func (h *Handler) CreateAdmission(c echo.Context) error {
	var in CreateInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(&in); err != nil {
		return err
	}
	actor := auth.ActorFromContext(c.Request().Context())
	adm, err := h.svc.CreateAdmission(c.Request().Context(), actor, &in)
	if err != nil {
		return err
	}
	return respond.Created(c, "admission created", adm)
}

func (h *Handler) DischargePatient(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid admission id")
	}
	var in DischargeInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(&in); err != nil {
		return err
	}
	actor := auth.ActorFromContext(c.Request().Context())
	adm, err := h.svc.DischargePatient(c.Request().Context(), actor, id, in)
	if err != nil {
		return err
	}
	return respond.OK(c, "patient discharged", adm)
}

func (h *Handler) GetAdmission(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid admission id")
	}
	adm, err := h.svc.GetAdmission(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return respond.OK(c, "admission retrieved", adm)
}

func (h *Handler) GetAdmissionHistory(c echo.Context) error {
	enrolleeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid enrollee id")
	}
	p := pagination.FromContext(c)
	adms, total, err := h.svc.GetAdmissionHistory(c.Request().Context(), enrolleeID, p.Limit, p.Offset)
	if err != nil {
		return err
	}
	return respond.OK(c, "admission history retrieved", pagination.NewResponse(adms, total, p.Limit, p.Offset))
}
