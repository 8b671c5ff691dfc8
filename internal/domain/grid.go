package domain

import (
	pkgerrors "github.com/routegrid-microservice/internal/pkg/errors"
)

const (
	DefaultZoomLevel       = 16
	DefaultCellSizeMeters  = 38.0
	DefaultInfeasibleShare = 0.0
	MaxZoomLevel           = 19
)

// GridCell - одна ячейка сетки стоимостей.
// Coordinates - северо-западный (верхний левый) угол ячейки.
type GridCell struct {
	Coordinates      GeoPoint `json:"coordinates"`
	Cost             float64  `json:"cost"`
	Tier             CostTier `json:"tier"`
	ClassifiedPixels int      `json:"classified_pixels"`
	InfeasiblePixels int      `json:"infeasible_pixels"`
	Fallback         bool     `json:"fallback"`
}

// CostGrid - сетка стоимостей, row 0 = север, col 0 = запад
type CostGrid struct {
	Height         int     `json:"height"`
	Width          int     `json:"width"`
	CellSizePixels int     `json:"cell_size_pixels"`
	MetersPerPixel float64 `json:"meters_per_pixel"`
	// LatStep/LonStep - размер ячейки в градусах в рамке bbox (bbox / размер сетки);
	// по ним считаются Coordinates и индексы start/end
	LatStep float64      `json:"lat_step"`
	LonStep float64      `json:"lon_step"`
	Cells   [][]GridCell `json:"cells"`

	// Шаги коридора start→end: |start-end| / размер сетки по оси
	CorridorLatStep float64 `json:"corridor_lat_step"`
	CorridorLonStep float64 `json:"corridor_lon_step"`
}

// InBounds проверяет, что индекс попадает в сетку
func (g *CostGrid) InBounds(idx CellIndex) bool {
	return idx.Row >= 0 && idx.Row < g.Height && idx.Col >= 0 && idx.Col < g.Width
}

// Cell возвращает ячейку по индексу или ErrIndexOutOfRange
func (g *CostGrid) Cell(idx CellIndex) (GridCell, error) {
	if !g.InBounds(idx) {
		return GridCell{}, pkgerrors.ErrIndexOutOfRange
	}
	return g.Cells[idx.Row][idx.Col], nil
}

// GridOptions - параметры построения сетки
type GridOptions struct {
	ZoomLevel      int
	CellSizeMeters float64
	DefaultCost    float64
	// InfeasibleShare - допустимая доля непроходимых пикселей в ячейке.
	// 0 - любой непроходимый пиксель делает ячейку непроходимой.
	InfeasibleShare float64
}

// DefaultGridOptions возвращает параметры по умолчанию (zoom 16, 38 м)
func DefaultGridOptions() GridOptions {
	return GridOptions{
		ZoomLevel:       DefaultZoomLevel,
		CellSizeMeters:  DefaultCellSizeMeters,
		DefaultCost:     DefaultCellCost,
		InfeasibleShare: DefaultInfeasibleShare,
	}
}

// GridStats - счётчики восстановимых ситуаций при построении сетки
type GridStats struct {
	TotalPixels        int            `json:"total_pixels"`
	ClassifiedPixels   int            `json:"classified_pixels"`
	UnclassifiedPixels int            `json:"unclassified_pixels"`
	EmptyCells         int            `json:"empty_cells"`
	InfeasibleCells    int            `json:"infeasible_cells"`
	DegenerateClamped  bool           `json:"degenerate_clamped"`
	UnclassifiedColors map[string]int `json:"unclassified_colors,omitempty"`
}

// GridResult - результат построения: сетка, индексы start/end и bbox
type GridResult struct {
	Grid       *CostGrid   `json:"grid"`
	Start      GeoPoint    `json:"start"`
	End        GeoPoint    `json:"end"`
	StartIndex CellIndex   `json:"start_index"`
	EndIndex   CellIndex   `json:"end_index"`
	BBox       BoundingBox `json:"bbox"`
	ZoomLevel  int         `json:"zoom_level"`
	Stats      GridStats   `json:"stats"`
}
