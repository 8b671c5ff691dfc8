package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/routegrid-microservice/internal/pkg/utils"
	"github.com/routegrid-microservice/internal/usecase"
)

// TerrainHandler - таблица цветов местности
type TerrainHandler struct {
	terrainUC *usecase.TerrainUseCase
}

func NewTerrainHandler(terrainUC *usecase.TerrainUseCase) *TerrainHandler {
	return &TerrainHandler{terrainUC: terrainUC}
}

// ListColors godoc
// @Summary Таблица цветов местности
// @Description Все цвета карты с категорией, множителем стоимости и уровнем проходимости
// @Tags Terrain
// @Produce json
// @Success 200 {object} utils.SuccessResponse{data=dto.TerrainColorsResponse}
// @Router /api/v1/terrain/colors [get]
func (h *TerrainHandler) ListColors(c *fiber.Ctx) error {
	result := h.terrainUC.ListColors()
	return utils.SendSuccess(c, result, &utils.Meta{
		Total: result.Total,
	})
}

// ClassifyColor godoc
// @Summary Классификация цвета
// @Tags Terrain
// @Produce json
// @Param hex path string true "Цвет rrggbb (без #)"
// @Success 200 {object} utils.SuccessResponse{data=domain.ColorEntry}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 422 {object} utils.ErrorResponse
// @Router /api/v1/terrain/colors/{hex} [get]
func (h *TerrainHandler) ClassifyColor(c *fiber.Ctx) error {
	entry, err := h.terrainUC.Classify(c.Params("hex"))
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendSuccess(c, entry, nil)
}
