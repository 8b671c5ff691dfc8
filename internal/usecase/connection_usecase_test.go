package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/routegrid-microservice/internal/domain"
	pkgerrors "github.com/routegrid-microservice/internal/pkg/errors"
	"github.com/routegrid-microservice/internal/usecase"
)

func TestConnectionUseCase_FindNearest(t *testing.T) {
	logger := zap.NewNop()
	ctx := context.Background()
	defaults := domain.DefaultLookupOptions()

	far := domain.ConnectionPoint{OSMID: 1, Kind: domain.PowerSubstation, Location: domain.GeoPoint{Lat: 6.73, Lon: 80.07}}
	near := domain.ConnectionPoint{OSMID: 2, Kind: domain.PowerTower, Location: towerEnd}

	t.Run("nearest point within initial radius", func(t *testing.T) {
		repo := &MockConnectionPointRepository{}
		repo.On("FindWithinRadius", ctx, plantStart, 5000.0).
			Return([]domain.ConnectionPoint{far, near}, nil)

		uc := usecase.NewConnectionUseCase(repo, defaults, logger)
		point, err := uc.FindNearest(ctx, plantStart, domain.LookupOptions{})

		require.NoError(t, err)
		assert.Equal(t, int64(2), point.OSMID)
		assert.Equal(t, domain.PowerTower, point.Kind)
		assert.InDelta(t, 1286, point.DistanceMeters, 2)
		repo.AssertExpectations(t)
	})

	t.Run("radius expands until a point is found", func(t *testing.T) {
		repo := &MockConnectionPointRepository{}
		repo.On("FindWithinRadius", ctx, plantStart, 5000.0).Return([]domain.ConnectionPoint{}, nil)
		repo.On("FindWithinRadius", ctx, plantStart, 10000.0).Return([]domain.ConnectionPoint{far}, nil)

		uc := usecase.NewConnectionUseCase(repo, defaults, logger)
		point, err := uc.FindNearest(ctx, plantStart, defaults)

		require.NoError(t, err)
		assert.Equal(t, int64(1), point.OSMID)
		repo.AssertNumberOfCalls(t, "FindWithinRadius", 2)
	})

	t.Run("not found up to the maximum radius", func(t *testing.T) {
		repo := &MockConnectionPointRepository{}
		repo.On("FindWithinRadius", ctx, plantStart, mock.AnythingOfType("float64")).
			Return([]domain.ConnectionPoint{}, nil)

		uc := usecase.NewConnectionUseCase(repo, defaults, logger)
		point, err := uc.FindNearest(ctx, plantStart, defaults)

		assert.Nil(t, point)
		assert.ErrorIs(t, err, pkgerrors.ErrConnectionPointNotFound)
		// 5, 10, ... 50 km
		repo.AssertNumberOfCalls(t, "FindWithinRadius", 10)
		repo.AssertCalled(t, "FindWithinRadius", ctx, plantStart, 50000.0)
	})

	t.Run("lookup failure", func(t *testing.T) {
		repo := &MockConnectionPointRepository{}
		repo.On("FindWithinRadius", ctx, plantStart, 5000.0).
			Return(nil, errors.New("overpass: 504 gateway timeout"))

		uc := usecase.NewConnectionUseCase(repo, defaults, logger)
		_, err := uc.FindNearest(ctx, plantStart, defaults)

		assert.ErrorIs(t, err, pkgerrors.ErrLookupFailure)
	})

	t.Run("invalid coordinates", func(t *testing.T) {
		repo := &MockConnectionPointRepository{}
		uc := usecase.NewConnectionUseCase(repo, defaults, logger)

		_, err := uc.FindNearest(ctx, domain.GeoPoint{Lat: 0, Lon: 181}, defaults)
		assert.ErrorIs(t, err, pkgerrors.ErrInvalidCoordinates)
		repo.AssertNotCalled(t, "FindWithinRadius", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestNearest(t *testing.T) {
	assert.Nil(t, usecase.Nearest(plantStart, nil))

	twin := domain.GeoPoint{Lat: 6.71, Lon: 80.06}
	points := []domain.ConnectionPoint{
		{OSMID: 9, Location: twin},
		{OSMID: 3, Location: twin},
	}
	best := usecase.Nearest(plantStart, points)
	require.NotNil(t, best)
	assert.Equal(t, int64(3), best.OSMID)
	assert.Greater(t, best.DistanceMeters, 0.0)
	assert.Zero(t, points[0].DistanceMeters, "input slice is not modified")
}
