package usecase_test

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/routegrid-microservice/internal/domain"
)

// MockMapImageRepository - мок рендерера карты
type MockMapImageRepository struct {
	mock.Mock
}

func (m *MockMapImageRepository) Render(ctx context.Context, bbox domain.BoundingBox, zoomLevel int) (*domain.Raster, error) {
	args := m.Called(ctx, bbox, zoomLevel)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Raster), args.Error(1)
}

// MockConnectionPointRepository - мок поиска опор и подстанций
type MockConnectionPointRepository struct {
	mock.Mock
}

func (m *MockConnectionPointRepository) FindWithinRadius(ctx context.Context, center domain.GeoPoint, radiusMeters float64) ([]domain.ConnectionPoint, error) {
	args := m.Called(ctx, center, radiusMeters)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ConnectionPoint), args.Error(1)
}

// MockCacheRepository - мок кеша
type MockCacheRepository struct {
	mock.Mock
}

func (m *MockCacheRepository) Get(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockCacheRepository) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	args := m.Called(ctx, key, value, ttl)
	return args.Error(0)
}

func (m *MockCacheRepository) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockCacheRepository) GetTile(ctx context.Context, z, x, y int) ([]byte, error) {
	args := m.Called(ctx, z, x, y)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockCacheRepository) SetTile(ctx context.Context, z, x, y int, data []byte, ttl time.Duration) error {
	args := m.Called(ctx, z, x, y, data, ttl)
	return args.Error(0)
}

func (m *MockCacheRepository) DeleteTile(ctx context.Context, z, x, y int) error {
	args := m.Called(ctx, z, x, y)
	return args.Error(0)
}

// MockGridBuilder - мок построителя сетки
type MockGridBuilder struct {
	mock.Mock
}

func (m *MockGridBuilder) Build(ctx context.Context, start, end domain.GeoPoint, opts domain.GridOptions) (*domain.GridResult, error) {
	args := m.Called(ctx, start, end, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.GridResult), args.Error(1)
}

// MockConnectionFinder - мок поиска точки подключения
type MockConnectionFinder struct {
	mock.Mock
}

func (m *MockConnectionFinder) FindNearest(ctx context.Context, from domain.GeoPoint, opts domain.LookupOptions) (*domain.ConnectionPoint, error) {
	args := m.Called(ctx, from, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ConnectionPoint), args.Error(1)
}

func fillRaster(width, height int, color domain.Color) *domain.Raster {
	pixels := make([]domain.Pixel, width*height)
	for i := range pixels {
		pixels[i] = pixelOf(color)
	}
	return &domain.Raster{Width: width, Height: height, Pixels: pixels}
}

func pixelOf(c domain.Color) domain.Pixel {
	return domain.Pixel{R: uint8(c >> 16), G: uint8(c >> 8), B: uint8(c), A: 255}
}
