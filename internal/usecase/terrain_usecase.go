package usecase

import (
	"github.com/routegrid-microservice/internal/domain"
	pkgerrors "github.com/routegrid-microservice/internal/pkg/errors"
	"github.com/routegrid-microservice/internal/usecase/dto"
)

// TerrainUseCase отдаёт таблицу цветов местности
type TerrainUseCase struct {
	table *domain.ColorCostTable
}

func NewTerrainUseCase(table *domain.ColorCostTable) *TerrainUseCase {
	return &TerrainUseCase{table: table}
}

// ListColors возвращает все цвета с категориями и множителями
func (uc *TerrainUseCase) ListColors() *dto.TerrainColorsResponse {
	entries := uc.table.Entries()
	return &dto.TerrainColorsResponse{
		Colors: entries,
		Total:  len(entries),
	}
}

// Classify возвращает класс местности для цвета #rrggbb
func (uc *TerrainUseCase) Classify(hex string) (domain.ColorEntry, error) {
	color, err := domain.ParseHexColor(hex)
	if err != nil {
		return domain.ColorEntry{}, pkgerrors.ErrInvalidRequest.WithDetails(map[string]interface{}{
			"color": hex,
		})
	}
	class, err := uc.table.Lookup(color)
	if err != nil {
		return domain.ColorEntry{}, err
	}
	return domain.ColorEntry{Color: color.Hex(), TerrainClass: class}, nil
}
