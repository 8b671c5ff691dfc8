package handler

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/routegrid-microservice/internal/domain"
	pkgerrors "github.com/routegrid-microservice/internal/pkg/errors"
	"github.com/routegrid-microservice/internal/pkg/utils"
	"github.com/routegrid-microservice/internal/pkg/validator"
	"github.com/routegrid-microservice/internal/usecase/dto"
)

// Planner строит сетку стоимостей, при необходимости находя точку подключения
type Planner interface {
	Plan(
		ctx context.Context,
		start domain.GeoPoint,
		end *domain.GeoPoint,
		gridOpts domain.GridOptions,
		lookupOpts domain.LookupOptions,
	) (*domain.GridResult, *domain.ConnectionPoint, error)
}

// GridHandler - обработчик построения сетки стоимостей
type GridHandler struct {
	planner      Planner
	gridDefaults domain.GridOptions
	lookup       domain.LookupOptions
	logger       *zap.Logger
}

// NewGridHandler - создание нового GridHandler
func NewGridHandler(
	planner Planner,
	gridDefaults domain.GridOptions,
	lookup domain.LookupOptions,
	logger *zap.Logger,
) *GridHandler {
	return &GridHandler{
		planner:      planner,
		gridDefaults: gridDefaults,
		lookup:       lookup,
		logger:       logger,
	}
}

// BuildGrid godoc
// @Summary Построение сетки стоимостей
// @Description Рендерит карту для bbox вокруг start/end, классифицирует пиксели по таблице цветов и возвращает сетку средних стоимостей с индексами ячеек start и end. Если end не задан, конечной точкой становится ближайшая опора ЛЭП или подстанция.
// @Tags Grid
// @Accept json
// @Produce json
// @Param request body dto.GridRequest true "Точки и параметры сетки"
// @Success 200 {object} utils.SuccessResponse{data=dto.GridResponse}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Failure 502 {object} utils.ErrorResponse
// @Failure 500 {object} utils.ErrorResponse
// @Router /api/v1/grid [post]
func (h *GridHandler) BuildGrid(c *fiber.Ctx) error {
	started := time.Now()

	var req dto.GridRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, invalidRequest("invalid request body"))
	}

	if err := validator.Validate(&req); err != nil {
		return utils.SendError(c, invalidRequest(err.Error()))
	}

	gridOpts := h.gridDefaults
	if req.ZoomLevel != nil {
		gridOpts.ZoomLevel = *req.ZoomLevel
	}
	if req.CellSizeMeters > 0 {
		gridOpts.CellSizeMeters = req.CellSizeMeters
	}

	lookupOpts := h.lookup
	if req.MaxRadius > 0 {
		lookupOpts.MaxRadiusMeters = req.MaxRadius
	}

	var end *domain.GeoPoint
	if req.End != nil {
		p := req.End.GeoPoint()
		end = &p
	}

	result, point, err := h.planner.Plan(c.Context(), req.Start.GeoPoint(), end, gridOpts, lookupOpts)
	if err != nil {
		h.logger.Warn("Grid request failed", zap.Error(err))
		return utils.SendError(c, err)
	}

	resp := dto.NewGridResponse(result, point, req.IncludeCells)
	return utils.SendSuccess(c, resp, &utils.Meta{
		Total:    resp.Height * resp.Width,
		TimeMSec: float64(time.Since(started).Microseconds()) / 1000,
	})
}

func invalidRequest(reason string) error {
	return pkgerrors.ErrInvalidRequest.WithDetails(map[string]interface{}{
		"reason": reason,
	})
}
