// Command routegrid строит сетку стоимостей для одной пары точек и печатает её.
//
//	routegrid --start-lat 6.7 --start-lon 80.06 --end-lat 6.710755 --end-lon 80.064272
//	routegrid --start-lat 6.7 --start-lon 80.06 --debug-image grid.png
//
// Без --end-* конечной точкой становится ближайшая опора ЛЭП или подстанция.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/routegrid-microservice/internal/bootstrap"
	"github.com/routegrid-microservice/internal/config"
	"github.com/routegrid-microservice/internal/domain"
	"github.com/routegrid-microservice/internal/domain/repository"
	"github.com/routegrid-microservice/internal/infrastructure/tileserver"
	pkgerrors "github.com/routegrid-microservice/internal/pkg/errors"
	"github.com/routegrid-microservice/internal/pkg/logger"
	"github.com/routegrid-microservice/internal/usecase"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

// flag → ключ конфигурации
var boundFlags = map[string]string{
	"zoom":          "GRID_ZOOM_LEVEL",
	"cell-size":     "GRID_CELL_SIZE_METERS",
	"max-radius":    "LOOKUP_MAX_RADIUS",
	"lookup-source": "LOOKUP_SOURCE",
	"tiles-url":     "TILES_URL_TEMPLATE",
	"overpass-url":  "OVERPASS_URL",
	"cost-table":    "COST_TABLE_FILE",
	"log-level":     "LOG_LEVEL",
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	flags := pflag.NewFlagSet("routegrid", pflag.ContinueOnError)
	flags.SetOutput(stderr)

	startLat := flags.Float64("start-lat", 0, "start (power plant) latitude")
	startLon := flags.Float64("start-lon", 0, "start (power plant) longitude")
	endLat := flags.Float64("end-lat", 0, "end latitude (default: nearest tower/substation)")
	endLon := flags.Float64("end-lon", 0, "end longitude (default: nearest tower/substation)")
	debugImage := flags.String("debug-image", "", "write the rendered map with grid overlay to this PNG file")
	printCells := flags.Bool("cells", true, "print every cell with its coordinates and cost")

	flags.Int("zoom", domain.DefaultZoomLevel, "map zoom level (0-19)")
	flags.Float64("cell-size", domain.DefaultCellSizeMeters, "target cell size in meters")
	flags.Float64("max-radius", 50000, "maximum connection point search radius in meters")
	flags.String("lookup-source", config.LookupSourceOverpass, "connection point source: overpass|osmdb")
	flags.String("tiles-url", "", "XYZ tile URL template")
	flags.String("overpass-url", "", "Overpass API interpreter URL")
	flags.String("cost-table", "", "YAML file overriding the color cost table")
	flags.String("log-level", "info", "log level (logs go to stderr)")

	if err := flags.Parse(args); err != nil {
		return 1
	}
	if !flags.Changed("start-lat") || !flags.Changed("start-lon") {
		fmt.Fprintln(stderr, "error: --start-lat and --start-lon are required")
		flags.PrintDefaults()
		return 1
	}
	if flags.Changed("end-lat") != flags.Changed("end-lon") {
		fmt.Fprintln(stderr, "error: --end-lat and --end-lon must be given together")
		return 1
	}

	for name, key := range boundFlags {
		if err := viper.BindPFlag(key, flags.Lookup(name)); err != nil {
			fmt.Fprintf(stderr, "error: %v\n", err)
			return 1
		}
	}
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}

	log, err := logger.NewWithOutput(cfg.Log.Level, "stderr")
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	defer log.Sync()

	deps, err := bootstrap.Build(cfg, log)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	defer deps.Close()

	planner := deps.PlanUC
	renderer := &capturingRenderer{MapImageRepository: deps.Renderer}
	if *debugImage != "" {
		// кеш сеток пропускается: для картинки нужен сам растр
		gridUC := usecase.NewGridUseCase(renderer, nil, deps.Table, cfg.GridOptions(), log, 0)
		planner = usecase.NewPlanUseCase(gridUC, deps.ConnectionUC, log)
	}

	start := domain.GeoPoint{Lat: *startLat, Lon: *startLon}
	var end *domain.GeoPoint
	if flags.Changed("end-lat") {
		end = &domain.GeoPoint{Lat: *endLat, Lon: *endLon}
	}

	result, point, err := planner.Plan(ctx, start, end, cfg.GridOptions(), cfg.LookupOptions())
	if point != nil {
		printConnectionPoint(stdout, point)
	}
	if err != nil {
		appErr := pkgerrors.AsAppError(err)
		fmt.Fprintf(stderr, "error: %s: %v\n", appErr.Code, err)
		return 1
	}

	if err := printGrid(stdout, result, *printCells); err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}

	if *debugImage != "" {
		if err := writeDebugImage(*debugImage, renderer.raster, result); err != nil {
			log.Error("Failed to write debug image", zap.String("path", *debugImage), zap.Error(err))
			fmt.Fprintf(stderr, "error: %v\n", err)
			return 1
		}
		fmt.Fprintf(stdout, "debug image: %s\n", *debugImage)
	}

	return 0
}

// capturingRenderer запоминает последний отрендеренный растр
type capturingRenderer struct {
	repository.MapImageRepository
	raster *domain.Raster
}

func (r *capturingRenderer) Render(ctx context.Context, bbox domain.BoundingBox, zoomLevel int) (*domain.Raster, error) {
	raster, err := r.MapImageRepository.Render(ctx, bbox, zoomLevel)
	if err == nil {
		r.raster = raster
	}
	return raster, err
}

func writeDebugImage(path string, raster *domain.Raster, result *domain.GridResult) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := tileserver.WriteDebugPNG(f, raster, result); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func printConnectionPoint(w io.Writer, p *domain.ConnectionPoint) {
	fmt.Fprintf(w, "connection point: %s osm_id=%d at %s, %.1f m\n", p.Kind, p.OSMID, p.Location, p.DistanceMeters)
}

// printGrid печатает индексы start/end, координаты их ячеек рядом с
// истинными координатами и, при cells, каждую ячейку со стоимостью
func printGrid(w io.Writer, result *domain.GridResult, cells bool) error {
	grid := result.Grid

	startCell, err := grid.Cell(result.StartIndex)
	if err != nil {
		return err
	}
	endCell, err := grid.Cell(result.EndIndex)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "grid: %d x %d cells, %d px per cell, %.4f m/px, zoom %d\n",
		grid.Height, grid.Width, grid.CellSizePixels, grid.MetersPerPixel, result.ZoomLevel)
	fmt.Fprintf(w, "bbox: west=%.6f south=%.6f east=%.6f north=%.6f\n",
		result.BBox.West, result.BBox.South, result.BBox.East, result.BBox.North)
	fmt.Fprintf(w, "corridor steps: lat=%.8f lon=%.8f\n", grid.CorridorLatStep, grid.CorridorLonStep)
	fmt.Fprintf(w, "start index: %s\n", result.StartIndex)
	fmt.Fprintf(w, "end index: %s\n", result.EndIndex)
	fmt.Fprintf(w, "start cell: %s true: %s\n", startCell.Coordinates, result.Start)
	fmt.Fprintf(w, "end cell: %s true: %s\n", endCell.Coordinates, result.End)

	stats := result.Stats
	fmt.Fprintf(w, "stats: classified=%d unclassified=%d empty_cells=%d infeasible_cells=%d\n",
		stats.ClassifiedPixels, stats.UnclassifiedPixels, stats.EmptyCells, stats.InfeasibleCells)

	if !cells {
		return nil
	}
	for row := range grid.Cells {
		for col, cell := range grid.Cells[row] {
			cost := fmt.Sprintf("%.4f", cell.Cost)
			if cell.Tier == domain.TierInfeasible {
				cost = "inf"
			}
			fmt.Fprintf(w, "%d %d %.6f %.6f %s\n", row, col, cell.Coordinates.Lat, cell.Coordinates.Lon, cost)
		}
	}
	return nil
}
