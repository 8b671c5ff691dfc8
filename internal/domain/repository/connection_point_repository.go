package repository

import (
	"context"

	"github.com/routegrid-microservice/internal/domain"
)

// ConnectionPointRepository ищет опоры ЛЭП и подстанции вокруг точки
type ConnectionPointRepository interface {
	// FindWithinRadius возвращает все точки подключения в радиусе (метры).
	// Пустой результат - не ошибка.
	FindWithinRadius(ctx context.Context, center domain.GeoPoint, radiusMeters float64) ([]domain.ConnectionPoint, error)
}
