package handler

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/routegrid-microservice/internal/domain"
	"github.com/routegrid-microservice/internal/pkg/utils"
	"github.com/routegrid-microservice/internal/pkg/validator"
	"github.com/routegrid-microservice/internal/usecase"
	"github.com/routegrid-microservice/internal/usecase/dto"
)

// ConnectionHandler - поиск ближайшей точки подключения к сети
type ConnectionHandler struct {
	finder usecase.ConnectionFinder
	lookup domain.LookupOptions
	logger *zap.Logger
}

// NewConnectionHandler - создание нового ConnectionHandler
func NewConnectionHandler(finder usecase.ConnectionFinder, lookup domain.LookupOptions, logger *zap.Logger) *ConnectionHandler {
	return &ConnectionHandler{
		finder: finder,
		lookup: lookup,
		logger: logger,
	}
}

// GetNearest godoc
// @Summary Ближайшая опора ЛЭП или подстанция
// @Description Расширяет радиус поиска от 5 км с шагом 5 км до максимального и возвращает ближайшую точку (power=tower|substation) по расстоянию гаверсинуса
// @Tags Connection points
// @Produce json
// @Param lat query number true "Широта"
// @Param lon query number true "Долгота"
// @Param max_radius_m query number false "Максимальный радиус поиска, м" default(50000)
// @Success 200 {object} utils.SuccessResponse{data=dto.ConnectionPointResponse}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Failure 502 {object} utils.ErrorResponse
// @Router /api/v1/connection-points/nearest [get]
func (h *ConnectionHandler) GetNearest(c *fiber.Ctx) error {
	var req dto.NearestConnectionRequest
	if err := c.QueryParser(&req); err != nil {
		return utils.SendError(c, invalidRequest("invalid query parameters"))
	}
	if c.Query("lat") == "" || c.Query("lon") == "" {
		return utils.SendError(c, invalidRequest("lat and lon are required"))
	}

	if err := validator.Validate(&req); err != nil {
		return utils.SendError(c, invalidRequest(err.Error()))
	}

	opts := h.lookup
	if req.MaxRadius > 0 {
		opts.MaxRadiusMeters = req.MaxRadius
	}

	from := domain.GeoPoint{Lat: req.Lat, Lon: req.Lon}
	point, err := h.finder.FindNearest(c.Context(), from, opts)
	if err != nil {
		return utils.SendError(c, err)
	}

	return utils.SendSuccess(c, &dto.ConnectionPointResponse{
		Point: point,
		From:  from,
	}, nil)
}
