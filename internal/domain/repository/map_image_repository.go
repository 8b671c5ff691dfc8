package repository

import (
	"context"

	"github.com/routegrid-microservice/internal/domain"
)

// MapImageRepository рендерит карту для bbox на заданном zoom
type MapImageRepository interface {
	// Render возвращает растр, покрывающий bbox (row-major RGBA)
	Render(ctx context.Context, bbox domain.BoundingBox, zoomLevel int) (*domain.Raster, error)
}
