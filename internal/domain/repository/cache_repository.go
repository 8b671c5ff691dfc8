package repository

import (
	"context"
	"time"
)

// CacheRepository определяет методы для работы с кешем
type CacheRepository interface {
	// Get получает значение из кеша по ключу (nil, nil при промахе)
	Get(ctx context.Context, key string) ([]byte, error)

	// Set сохраняет значение в кеше с TTL
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete удаляет значение из кеша
	Delete(ctx context.Context, key string) error

	// GetTile получает растровый тайл из кеша
	GetTile(ctx context.Context, z, x, y int) ([]byte, error)

	// SetTile сохраняет растровый тайл в кеше
	SetTile(ctx context.Context, z, x, y int, data []byte, ttl time.Duration) error

	// DeleteTile удаляет тайл, например повреждённый
	DeleteTile(ctx context.Context, z, x, y int) error
}
