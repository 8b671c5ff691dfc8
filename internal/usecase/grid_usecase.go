package usecase

import (
	"context"
	"encoding/json"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/routegrid-microservice/internal/domain"
	"github.com/routegrid-microservice/internal/domain/repository"
	pkgerrors "github.com/routegrid-microservice/internal/pkg/errors"
	"github.com/routegrid-microservice/internal/pkg/geo"
	"github.com/routegrid-microservice/internal/pkg/metrics"
	"github.com/routegrid-microservice/internal/pkg/utils"
)

// maxLoggedColors - сколько неизвестных цветов попадает в предупреждение
const maxLoggedColors = 10

// GridUseCase строит сетку стоимостей между двумя точками
type GridUseCase struct {
	renderer     repository.MapImageRepository
	cacheRepo    repository.CacheRepository
	table        *domain.ColorCostTable
	defaults     domain.GridOptions
	logger       *zap.Logger
	gridCacheTTL time.Duration
}

// NewGridUseCase создаёт GridUseCase. cacheRepo может быть nil (кеш выключен).
func NewGridUseCase(
	renderer repository.MapImageRepository,
	cacheRepo repository.CacheRepository,
	table *domain.ColorCostTable,
	defaults domain.GridOptions,
	logger *zap.Logger,
	gridCacheTTL time.Duration,
) *GridUseCase {
	return &GridUseCase{
		renderer:     renderer,
		cacheRepo:    cacheRepo,
		table:        table,
		defaults:     defaults,
		logger:       logger,
		gridCacheTTL: gridCacheTTL,
	}
}

// Defaults возвращает параметры построения, заданные конфигурацией
func (uc *GridUseCase) Defaults() domain.GridOptions {
	return uc.defaults
}

// Table возвращает используемую таблицу цветов
func (uc *GridUseCase) Table() *domain.ColorCostTable {
	return uc.table
}

// Build рендерит карту вокруг start/end, классифицирует пиксели и
// возвращает сетку с индексами ячеек start и end.
func (uc *GridUseCase) Build(ctx context.Context, start, end domain.GeoPoint, opts domain.GridOptions) (result *domain.GridResult, err error) {
	started := time.Now()
	defer func() {
		outcome := "ok"
		if err != nil {
			outcome = pkgerrors.AsAppError(err).Code
		}
		metrics.ObserveGridBuild(outcome, started)
	}()

	opts = uc.normalize(opts)
	if err := validateBuildInput(start, end, opts); err != nil {
		return nil, err
	}

	cacheKey := gridCacheKey(start, end, opts)
	if cached := uc.getCached(ctx, cacheKey); cached != nil {
		return cached, nil
	}

	bbox := geo.ComputeBoundingBox(start, end)
	mpp := geo.MetersPerPixel(bbox.Center().Lat, opts.ZoomLevel)

	uc.logger.Debug("Rendering map for grid",
		zap.Stringer("start", start),
		zap.Stringer("end", end),
		zap.Int("zoom", opts.ZoomLevel),
		zap.Float64("meters_per_pixel", mpp),
	)

	raster, err := uc.renderer.Render(ctx, bbox, opts.ZoomLevel)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		uc.logger.Error("Failed to render map", zap.Error(err))
		return nil, pkgerrors.Wrap(pkgerrors.ErrRenderFailure, err)
	}

	cellSize := CellSizePixels(opts.CellSizeMeters, mpp)
	height, width, clamped := GridDimensions(raster.Height, raster.Width, cellSize)

	cells, stats, err := ClassifyCells(ctx, raster, uc.table, cellSize, height, width, opts)
	if err != nil {
		return nil, err
	}
	stats.DegenerateClamped = clamped

	grid := &domain.CostGrid{
		Height:          height,
		Width:           width,
		CellSizePixels:  cellSize,
		MetersPerPixel:  mpp,
		LatStep:         bbox.Height() / float64(height),
		LonStep:         bbox.Width() / float64(width),
		Cells:           cells,
		CorridorLatStep: math.Abs(start.Lat-end.Lat) / float64(height),
		CorridorLonStep: math.Abs(start.Lon-end.Lon) / float64(width),
	}
	for row := range cells {
		for col := range cells[row] {
			cells[row][col].Coordinates = geo.CellOrigin(domain.CellIndex{Row: row, Col: col}, bbox, height, width)
		}
	}

	startIdx, err := geo.CellIndexFor(start, bbox, height, width)
	if err != nil {
		uc.logger.Error("Start point outside grid", zap.Stringer("start", start), zap.Error(err))
		return nil, err
	}
	endIdx, err := geo.CellIndexFor(end, bbox, height, width)
	if err != nil {
		uc.logger.Error("End point outside grid", zap.Stringer("end", end), zap.Error(err))
		return nil, err
	}

	result = &domain.GridResult{
		Grid:       grid,
		Start:      start,
		End:        end,
		StartIndex: startIdx,
		EndIndex:   endIdx,
		BBox:       bbox,
		ZoomLevel:  opts.ZoomLevel,
		Stats:      stats,
	}

	uc.reportStats(stats)
	uc.logger.Info("Cost grid built",
		zap.Int("height", height),
		zap.Int("width", width),
		zap.Int("cell_size_px", cellSize),
		zap.Stringer("start_index", startIdx),
		zap.Stringer("end_index", endIdx),
		zap.Duration("elapsed", time.Since(started)),
	)

	uc.setCached(ctx, cacheKey, result)
	return result, nil
}

func (uc *GridUseCase) normalize(opts domain.GridOptions) domain.GridOptions {
	if opts.CellSizeMeters <= 0 {
		opts.CellSizeMeters = uc.defaults.CellSizeMeters
	}
	if opts.DefaultCost <= 0 {
		opts.DefaultCost = uc.defaults.DefaultCost
	}
	if opts.InfeasibleShare < 0 || opts.InfeasibleShare >= 1 {
		opts.InfeasibleShare = uc.defaults.InfeasibleShare
	}
	return opts
}

func validateBuildInput(start, end domain.GeoPoint, opts domain.GridOptions) error {
	if !utils.ValidatePoint(start) || !utils.ValidatePoint(end) {
		return pkgerrors.ErrInvalidCoordinates.WithDetails(map[string]interface{}{
			"start": start,
			"end":   end,
		})
	}
	if !utils.ValidateZoom(opts.ZoomLevel) {
		return pkgerrors.ErrInvalidZoom.WithDetails(map[string]interface{}{
			"zoom_level": opts.ZoomLevel,
		})
	}
	if start == end {
		return pkgerrors.ErrInvalidRequest.WithDetails(map[string]interface{}{
			"reason": "start and end coincide",
		})
	}
	return nil
}

// CellSizePixels переводит размер ячейки из метров в пиксели (минимум 1)
func CellSizePixels(cellSizeMeters, metersPerPixel float64) int {
	return max(1, int(math.Round(cellSizeMeters/metersPerPixel)))
}

// GridDimensions возвращает размер сетки для растра; clamped = true, если
// хотя бы одно измерение округлилось до нуля и было поднято до 1.
func GridDimensions(rasterHeight, rasterWidth, cellSize int) (height, width int, clamped bool) {
	height = int(math.Round(float64(rasterHeight) / float64(cellSize)))
	width = int(math.Round(float64(rasterWidth) / float64(cellSize)))
	if height < 1 {
		height, clamped = 1, true
	}
	if width < 1 {
		width, clamped = 1, true
	}
	return height, width, clamped
}

// ClassifyCells усредняет стоимость пикселей в каждом блоке cellSize×cellSize.
// Блок начинается с (row*cellSize, col*cellSize) и обрезается границами растра.
// Ячейка непроходима, если доля непроходимых пикселей среди классифицированных
// больше opts.InfeasibleShare (при 0 - любой непроходимый пиксель);
// иначе стоимость - среднее по проходимым.
// Координаты ячеек не заполняются.
func ClassifyCells(
	ctx context.Context,
	raster *domain.Raster,
	table *domain.ColorCostTable,
	cellSize, height, width int,
	opts domain.GridOptions,
) ([][]domain.GridCell, domain.GridStats, error) {
	stats := domain.GridStats{}
	unknown := make(map[domain.Color]int)
	cells := make([][]domain.GridCell, height)

	for row := 0; row < height; row++ {
		if err := ctx.Err(); err != nil {
			return nil, domain.GridStats{}, err
		}

		cells[row] = make([]domain.GridCell, width)
		y0, y1 := clip(row*cellSize, cellSize, raster.Height)

		for col := 0; col < width; col++ {
			x0, x1 := clip(col*cellSize, cellSize, raster.Width)

			var sum float64
			var passable, infeasible int
			for y := y0; y < y1; y++ {
				for x := x0; x < x1; x++ {
					stats.TotalPixels++
					color := raster.At(y, x).Color()
					class, err := table.Lookup(color)
					if err != nil {
						unknown[color]++
						continue
					}
					if class.Tier == domain.TierInfeasible {
						infeasible++
						continue
					}
					passable++
					sum += class.Multiplier
				}
			}

			classified := passable + infeasible
			stats.ClassifiedPixels += classified
			cell := domain.GridCell{
				ClassifiedPixels: classified,
				InfeasiblePixels: infeasible,
			}

			switch {
			case classified == 0:
				cell.Cost = opts.DefaultCost
				cell.Fallback = true
				stats.EmptyCells++
			case infeasible > 0 && float64(infeasible) > opts.InfeasibleShare*float64(classified):
				cell.Cost = domain.InfeasibleCost
				cell.Tier = domain.TierInfeasible
				stats.InfeasibleCells++
			default:
				cell.Cost = sum / float64(passable)
			}
			cells[row][col] = cell
		}
	}

	stats.UnclassifiedPixels = stats.TotalPixels - stats.ClassifiedPixels
	if len(unknown) > 0 {
		stats.UnclassifiedColors = make(map[string]int, len(unknown))
		for color, n := range unknown {
			stats.UnclassifiedColors[color.Hex()] = n
		}
	}

	return cells, stats, nil
}

// clip возвращает полуинтервал [from, from+size) внутри [0, limit)
func clip(from, size, limit int) (int, int) {
	return min(from, limit), min(from+size, limit)
}

// reportStats пишет по одному предупреждению на построение
func (uc *GridUseCase) reportStats(stats domain.GridStats) {
	metrics.UnclassifiedPixels.Add(float64(stats.UnclassifiedPixels))
	metrics.EmptyCells.Add(float64(stats.EmptyCells))

	if stats.UnclassifiedPixels > 0 {
		uc.logger.Warn("Unclassified pixel colors",
			zap.Int("pixels", stats.UnclassifiedPixels),
			zap.Int("distinct_colors", len(stats.UnclassifiedColors)),
			zap.Strings("top_colors", topColors(stats.UnclassifiedColors, maxLoggedColors)),
		)
	}
	if stats.EmptyCells > 0 {
		uc.logger.Warn("Cells without classifiable pixels use default cost",
			zap.Int("cells", stats.EmptyCells),
		)
	}
	if stats.DegenerateClamped {
		uc.logger.Warn("Grid dimension rounded to zero, clamped to 1")
	}
}

func topColors(counts map[string]int, limit int) []string {
	colors := make([]string, 0, len(counts))
	for c := range counts {
		colors = append(colors, c)
	}
	sort.Slice(colors, func(i, j int) bool {
		if counts[colors[i]] != counts[colors[j]] {
			return counts[colors[i]] > counts[colors[j]]
		}
		return colors[i] < colors[j]
	})
	if len(colors) > limit {
		colors = colors[:limit]
	}
	return colors
}

// gridCacheKey кодирует координаты без округления: результат хранит Start/End запроса
func gridCacheKey(start, end domain.GeoPoint, opts domain.GridOptions) string {
	parts := []string{"grid", strconv.Itoa(opts.ZoomLevel)}
	for _, v := range []float64{
		start.Lat, start.Lon, end.Lat, end.Lon,
		opts.CellSizeMeters, opts.DefaultCost, opts.InfeasibleShare,
	} {
		parts = append(parts, strconv.FormatFloat(v, 'g', -1, 64))
	}
	return strings.Join(parts, ":")
}

func (uc *GridUseCase) getCached(ctx context.Context, key string) *domain.GridResult {
	if uc.cacheRepo == nil {
		return nil
	}
	data, err := uc.cacheRepo.Get(ctx, key)
	if err != nil {
		uc.logger.Warn("Failed to read grid cache", zap.String("key", key), zap.Error(err))
		return nil
	}
	if data == nil {
		metrics.CacheMisses.WithLabelValues("grid").Inc()
		return nil
	}

	var result domain.GridResult
	if err := json.Unmarshal(data, &result); err != nil {
		uc.logger.Warn("Corrupted grid cache entry", zap.String("key", key), zap.Error(err))
		if err := uc.cacheRepo.Delete(ctx, key); err != nil {
			uc.logger.Warn("Failed to drop grid cache entry", zap.String("key", key), zap.Error(err))
		}
		return nil
	}
	metrics.CacheHits.WithLabelValues("grid").Inc()
	return &result
}

func (uc *GridUseCase) setCached(ctx context.Context, key string, result *domain.GridResult) {
	if uc.cacheRepo == nil || uc.gridCacheTTL <= 0 {
		return
	}
	data, err := json.Marshal(result)
	if err != nil {
		uc.logger.Warn("Failed to marshal grid", zap.Error(err))
		return
	}
	if err := uc.cacheRepo.Set(ctx, key, data, uc.gridCacheTTL); err != nil {
		uc.logger.Warn("Failed to cache grid", zap.String("key", key), zap.Error(err))
	}
}
