package claims

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
	read.GET("/claims/:id", h.GetClaim)
	read.GET("/claims/:id/preview", h.GetClaimPreview)
	read.GET("/claims/:id/missing-pas", h.GetMissingPAs)

	write := api.Group("", auth.RequireRole("admin", "claims_officer"))
	write.POST("/claims/:id/process", h.ProcessClaim)
	write.POST("/claims/:id/classify-treatments", h.ClassifyTreatments)
	write.POST("/claims/:id/validate", h.ValidateClaim)
	write.POST("/claims/:id/treatments", h.AddTreatment)
	write.POST("/claims/:id/diagnoses", h.AddDiagnosis)
	write.POST("/claims/:id/build-sections", h.BuildSections)
	write.POST("/treatments/:id/convert-to-ffs", h.ConvertTreatment)
}

func claimID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return id, nil
}

func (h *Handler) GetClaim(c echo.Context) error {
	id, err := claimID(c)
	if err != nil {
		return err
	}
	cl, err := h.svc.GetClaim(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return respond.OK(c, "claim retrieved", cl)
}

func (h *Handler) ProcessClaim(c echo.Context) error {
	id, err := claimID(c)
	if err != nil {
		return err
	}
	actor := auth.ActorFromContext(c.Request().Context())
	result, err := h.svc.ProcessClaim(c.Request().Context(), actor, id)
	if err != nil {
		return err
	}
	return respond.OK(c, "claim processed", result)
}

func (h *Handler) ClassifyTreatments(c echo.Context) error {
	id, err := claimID(c)
	if err != nil {
		return err
	}
	actor := auth.ActorFromContext(c.Request().Context())
	decisions, cl, err := h.svc.ClassifyAllTreatments(c.Request().Context(), actor, id)
	if err != nil {
		return err
	}
	return respond.OK(c, "treatments classified", echo.Map{
		"claim":           cl,
		"classifications": decisions,
	})
}

func (h *Handler) ValidateClaim(c echo.Context) error {
	id, err := claimID(c)
	if err != nil {
		return err
	}
	result, err := h.svc.ValidateClaim(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return respond.OK(c, "claim validated", result)
}

func (h *Handler) GetClaimPreview(c echo.Context) error {
	id, err := claimID(c)
	if err != nil {
		return err
	}
	secs, err := h.svc.GetClaimPreview(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return respond.OK(c, "claim preview", secs)
}

func (h *Handler) GetMissingPAs(c echo.Context) error {
	id, err := claimID(c)
	if err != nil {
		return err
	}
	missing, err := h.svc.DetectMissingPAs(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return respond.OK(c, "missing prior authorizations", missing)
}

func (h *Handler) AddTreatment(c echo.Context) error {
	id, err := claimID(c)
	if err != nil {
		return err
	}
	var in TreatmentInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(&in); err != nil {
		return err
	}
	actor := auth.ActorFromContext(c.Request().Context())
	t, err := h.svc.AddTreatment(c.Request().Context(), actor, id, &in)
	if err != nil {
		return err
	}
	return respond.Created(c, "treatment recorded", t)
}

func (h *Handler) AddDiagnosis(c echo.Context) error {
	id, err := claimID(c)
	if err != nil {
		return err
	}
	var in DiagnosisInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(&in); err != nil {
		return err
	}
	actor := auth.ActorFromContext(c.Request().Context())
	result, err := h.svc.HandleNewDiagnosis(c.Request().Context(), actor, id, &in)
	if err != nil {
		return err
	}
	return respond.OK(c, result.Message, result)
}

type convertInput struct {
	Reason string `json:"reason" validate:"required"`
}

func (h *Handler) ConvertTreatment(c echo.Context) error {
	id, err := claimID(c)
	if err != nil {
		return err
	}
	var in convertInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(&in); err != nil {
		return err
	}
	actor := auth.ActorFromContext(c.Request().Context())
	t, err := h.svc.ConvertTreatment(c.Request().Context(), actor, id, in.Reason)
	if err != nil {
		return err
	}
	return respond.OK(c, "treatment converted to fee-for-service", t)
}

func (h *Handler) BuildSections(c echo.Context) error {
	id, err := claimID(c)
	if err != nil {
		return err
	}
	actor := auth.ActorFromContext(c.Request().Context())
	snap, err := h.svc.BuildClaimSections(c.Request().Context(), actor, id)
	if err != nil {
		return err
	}
	return respond.OK(c, "claim sections built", snap)
}
