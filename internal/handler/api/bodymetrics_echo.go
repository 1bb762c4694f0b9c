package api

import (
	"time"

	models "BodyMetrics/internal/domain/models"
	"BodyMetrics/internal/usecase"
	xhttp "BodyMetrics/pkg/http"
	xlogger "BodyMetrics/pkg/logger"

	"github.com/labstack/echo/v4"
)

// WeightTargetsResponse pairs the weight rows with their explanation.
type WeightTargetsResponse struct {
	Description string               `json:"description"`
	Targets     []models.IntervalRow `json:"targets"`
}

// BodyMetricsHandler serves the calculator over HTTP.
type BodyMetricsHandler struct {
	logger *xlogger.Logger
	svc    *usecase.AssessmentService
}

func NewBodyMetricsHandler(logger *xlogger.Logger, svc *usecase.AssessmentService) *BodyMetricsHandler {
	if logger == nil {
		logger = xlogger.Nop()
	}
	return &BodyMetricsHandler{logger: logger, svc: svc}
}

func (h *BodyMetricsHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.POST("/compute", h.Compute)
	g.GET("/convert", h.Convert)
	g.GET("/thresholds/:metric", h.Thresholds)
	g.GET("/weight-targets", h.WeightTargets)
	g.GET("/history", h.History)
}

// Compute returns the result records, or the recorded assessment when subject_id is set.
func (h *BodyMetricsHandler) Compute(c echo.Context) error {
	req := &models.ComputeRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	raw, err := req.ToRaw(h.svc.Defaults())
	if err != nil {
		return xhttp.AppErrorResponse(c, toAppError(h.logger, "compute", err))
	}
	ctx := c.Request().Context()

	if req.SubjectID == "" {
		res, err := h.svc.Compute(ctx, raw)
		if err != nil {
			return xhttp.AppErrorResponse(c, toAppError(h.logger, "compute", err))
		}
		return xhttp.SuccessResponse(c, res)
	}

	a, err := h.svc.Assess(ctx, req.SubjectID, time.Time{}, raw)
	if err != nil {
		return xhttp.AppErrorResponse(c, toAppError(h.logger, "assess", err))
	}
	return xhttp.SuccessResponse(c, a)
}

func (h *BodyMetricsHandler) Convert(c echo.Context) error {
	req := &models.ConvertRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	res, err := h.svc.Convert(*req)
	if err != nil {
		return xhttp.AppErrorResponse(c, toAppError(h.logger, "convert", err))
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *BodyMetricsHandler) Thresholds(c echo.Context) error {
	req := &models.ThresholdsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	metric, err := req.MetricName()
	if err != nil {
		return xhttp.AppErrorResponse(c, toAppError(h.logger, "thresholds", err))
	}
	raw, err := req.ToRaw(h.svc.Defaults())
	if err != nil {
		return xhttp.AppErrorResponse(c, toAppError(h.logger, "thresholds", err))
	}
	rows, err := h.svc.Describe(c.Request().Context(), metric, raw)
	if err != nil {
		return xhttp.AppErrorResponse(c, toAppError(h.logger, "thresholds", err))
	}
	return xhttp.SuccessResponse(c, rows)
}

func (h *BodyMetricsHandler) WeightTargets(c echo.Context) error {
	req := &models.MeasurementRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	raw, err := req.ToRaw(h.svc.Defaults())
	if err != nil {
		return xhttp.AppErrorResponse(c, toAppError(h.logger, "weight targets", err))
	}
	rows, err := h.svc.WeightTargets(c.Request().Context(), raw)
	if err != nil {
		return xhttp.AppErrorResponse(c, toAppError(h.logger, "weight targets", err))
	}
	c.Response().Header().Set(echo.HeaderCacheControl, "private, max-age=60")
	return xhttp.SuccessResponse(c, WeightTargetsResponse{
		Description: usecase.WeightTargetsDescription,
		Targets:     rows,
	})
}

func (h *BodyMetricsHandler) History(c echo.Context) error {
	req := &models.HistoryRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	rows, err := h.svc.History(c.Request().Context(), req.SubjectID, req.Limit)
	if err != nil {
		return xhttp.AppErrorResponse(c, toAppError(h.logger, "history", err))
	}
	if rows == nil {
		rows = []models.StoredResult{}
	}
	return xhttp.ListResponse(c, rows, int64(len(rows)))
}
