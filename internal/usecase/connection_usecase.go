package usecase

import (
	"context"

	"go.uber.org/zap"

	"github.com/routegrid-microservice/internal/domain"
	"github.com/routegrid-microservice/internal/domain/repository"
	pkgerrors "github.com/routegrid-microservice/internal/pkg/errors"
	"github.com/routegrid-microservice/internal/pkg/metrics"
	"github.com/routegrid-microservice/internal/pkg/utils"
)

// ConnectionUseCase ищет ближайшую опору ЛЭП или подстанцию
type ConnectionUseCase struct {
	pointRepo repository.ConnectionPointRepository
	defaults  domain.LookupOptions
	logger    *zap.Logger
}

func NewConnectionUseCase(
	pointRepo repository.ConnectionPointRepository,
	defaults domain.LookupOptions,
	logger *zap.Logger,
) *ConnectionUseCase {
	return &ConnectionUseCase{
		pointRepo: pointRepo,
		defaults:  defaults,
		logger:    logger,
	}
}

// Defaults возвращает параметры поиска из конфигурации
func (uc *ConnectionUseCase) Defaults() domain.LookupOptions {
	return uc.defaults
}

// FindNearest расширяет радиус поиска от InitialRadiusMeters с шагом
// StepMeters до MaxRadiusMeters (включительно) и возвращает ближайшую точку
// из первого непустого радиуса.
func (uc *ConnectionUseCase) FindNearest(ctx context.Context, from domain.GeoPoint, opts domain.LookupOptions) (*domain.ConnectionPoint, error) {
	if !utils.ValidatePoint(from) {
		return nil, pkgerrors.ErrInvalidCoordinates.WithDetails(map[string]interface{}{
			"point": from,
		})
	}
	opts = uc.normalize(opts)

	for radius := opts.InitialRadiusMeters; radius <= opts.MaxRadiusMeters; radius += opts.StepMeters {
		points, err := uc.pointRepo.FindWithinRadius(ctx, from, radius)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			uc.logger.Error("Connection point lookup failed",
				zap.Float64("radius_m", radius),
				zap.Error(err),
			)
			metrics.ConnectionLookups.WithLabelValues("error").Inc()
			return nil, pkgerrors.Wrap(pkgerrors.ErrLookupFailure, err)
		}

		if nearest := Nearest(from, points); nearest != nil {
			uc.logger.Info("Connection point found",
				zap.Int64("osm_id", nearest.OSMID),
				zap.String("kind", nearest.Kind),
				zap.Float64("distance_m", nearest.DistanceMeters),
				zap.Float64("radius_m", radius),
			)
			metrics.ConnectionLookups.WithLabelValues("found").Inc()
			return nearest, nil
		}

		uc.logger.Debug("No connection points within radius, expanding", zap.Float64("radius_m", radius))
	}

	metrics.ConnectionLookups.WithLabelValues("not_found").Inc()
	return nil, pkgerrors.ErrConnectionPointNotFound.WithDetails(map[string]interface{}{
		"max_radius_m": opts.MaxRadiusMeters,
	})
}

func (uc *ConnectionUseCase) normalize(opts domain.LookupOptions) domain.LookupOptions {
	if opts.InitialRadiusMeters <= 0 {
		opts.InitialRadiusMeters = uc.defaults.InitialRadiusMeters
	}
	if opts.StepMeters <= 0 {
		opts.StepMeters = uc.defaults.StepMeters
	}
	if opts.MaxRadiusMeters <= 0 {
		opts.MaxRadiusMeters = uc.defaults.MaxRadiusMeters
	}
	if opts.MaxRadiusMeters < opts.InitialRadiusMeters {
		opts.MaxRadiusMeters = opts.InitialRadiusMeters
	}
	return opts
}

// Nearest выбирает точку с минимальным расстоянием по гаверсинусу и
// заполняет DistanceMeters. При равенстве выигрывает меньший OSMID.
func Nearest(from domain.GeoPoint, points []domain.ConnectionPoint) *domain.ConnectionPoint {
	var best *domain.ConnectionPoint
	for i := range points {
		p := points[i]
		p.DistanceMeters = utils.DistanceMeters(from, p.Location)
		if best == nil ||
			p.DistanceMeters < best.DistanceMeters ||
			(p.DistanceMeters == best.DistanceMeters && p.OSMID < best.OSMID) {
			best = &p
		}
	}
	return best
}
