package usecase

import (
	"context"

	"go.uber.org/zap"

	"github.com/routegrid-microservice/internal/domain"
	pkgerrors "github.com/routegrid-microservice/internal/pkg/errors"
)

// GridBuilder строит сетку стоимостей между двумя точками
type GridBuilder interface {
	Build(ctx context.Context, start, end domain.GeoPoint, opts domain.GridOptions) (*domain.GridResult, error)
}

// ConnectionFinder ищет ближайшую точку подключения
type ConnectionFinder interface {
	FindNearest(ctx context.Context, from domain.GeoPoint, opts domain.LookupOptions) (*domain.ConnectionPoint, error)
}

// PlanUseCase связывает поиск точки подключения и построение сетки
type PlanUseCase struct {
	builder GridBuilder
	finder  ConnectionFinder
	logger  *zap.Logger
}

// NewPlanUseCase создаёт PlanUseCase. finder может быть nil, тогда end обязателен.
func NewPlanUseCase(builder GridBuilder, finder ConnectionFinder, logger *zap.Logger) *PlanUseCase {
	return &PlanUseCase{
		builder: builder,
		finder:  finder,
		logger:  logger,
	}
}

// Plan строит сетку от start до end. Без end конечной точкой становится
// ближайшая к start опора или подстанция, она же возвращается вторым значением.
func (uc *PlanUseCase) Plan(
	ctx context.Context,
	start domain.GeoPoint,
	end *domain.GeoPoint,
	gridOpts domain.GridOptions,
	lookupOpts domain.LookupOptions,
) (*domain.GridResult, *domain.ConnectionPoint, error) {
	var point *domain.ConnectionPoint
	target := end

	if target == nil {
		if uc.finder == nil {
			return nil, nil, pkgerrors.ErrInvalidRequest.WithDetails(map[string]interface{}{
				"reason": "end point is required when lookup is disabled",
			})
		}
		found, err := uc.finder.FindNearest(ctx, start, lookupOpts)
		if err != nil {
			return nil, nil, err
		}
		point = found
		target = &found.Location
	}

	result, err := uc.builder.Build(ctx, start, *target, gridOpts)
	if err != nil {
		uc.logger.Warn("Grid build failed",
			zap.Stringer("start", start),
			zap.Stringer("end", *target),
			zap.Error(err),
		)
		return nil, point, err
	}
	return result, point, nil
}
