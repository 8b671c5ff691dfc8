package dto

import "github.com/routegrid-microservice/internal/domain"

// Point - координаты точки
type Point struct {
	Lat float64 `json:"lat" validate:"latitude"`
	Lon float64 `json:"lon" validate:"longitude"`
}

// GeoPoint переводит DTO в доменную точку
func (p Point) GeoPoint() domain.GeoPoint {
	return domain.GeoPoint{Lat: p.Lat, Lon: p.Lon}
}

// GridRequest - запрос на построение сетки стоимостей.
// Если End не задан, конечной точкой становится ближайшая опора/подстанция.
type GridRequest struct {
	Start          Point   `json:"start"`
	End            *Point  `json:"end,omitempty" validate:"omitempty"`
	ZoomLevel      *int    `json:"zoom_level,omitempty" validate:"omitempty,zoom"`
	CellSizeMeters float64 `json:"cell_size_m,omitempty" validate:"omitempty,gt=0,lte=10000"`
	MaxRadius      float64 `json:"max_radius_m,omitempty" validate:"omitempty,gt=0,lte=200000"`
	IncludeCells   bool    `json:"include_cells,omitempty"`
}

// NearestConnectionRequest - поиск ближайшей точки подключения (query-параметры)
type NearestConnectionRequest struct {
	Lat       float64 `query:"lat" validate:"latitude"`
	Lon       float64 `query:"lon" validate:"longitude"`
	MaxRadius float64 `query:"max_radius_m" validate:"omitempty,gt=0,lte=200000"`
}

// CellSummary - ячейка, в которую попала точка
type CellSummary struct {
	Index       domain.CellIndex `json:"index"`
	Coordinates domain.GeoPoint  `json:"coordinates"`
	Cost        float64          `json:"cost"`
	Tier        domain.CostTier  `json:"tier"`
}

// GridResponse - сетка стоимостей и положение start/end в ней
type GridResponse struct {
	Start           domain.GeoPoint         `json:"start"`
	End             domain.GeoPoint         `json:"end"`
	StartCell       CellSummary             `json:"start_cell"`
	EndCell         CellSummary             `json:"end_cell"`
	BBox            domain.BoundingBox      `json:"bbox"`
	ZoomLevel       int                     `json:"zoom_level"`
	Height          int                     `json:"height"`
	Width           int                     `json:"width"`
	CellSizePixels  int                     `json:"cell_size_px"`
	MetersPerPixel  float64                 `json:"meters_per_pixel"`
	LatStep         float64                 `json:"lat_step"`
	LonStep         float64                 `json:"lon_step"`
	CorridorLatStep float64                 `json:"corridor_lat_step"`
	CorridorLonStep float64                 `json:"corridor_lon_step"`
	Costs           [][]float64             `json:"costs"`
	Cells           [][]domain.GridCell     `json:"cells,omitempty"`
	Stats           domain.GridStats        `json:"stats"`
	ConnectionPoint *domain.ConnectionPoint `json:"connection_point,omitempty"`
}

// NewGridResponse собирает ответ из результата построения
func NewGridResponse(result *domain.GridResult, point *domain.ConnectionPoint, includeCells bool) *GridResponse {
	grid := result.Grid
	resp := &GridResponse{
		Start:           result.Start,
		End:             result.End,
		StartCell:       summarize(grid, result.StartIndex),
		EndCell:         summarize(grid, result.EndIndex),
		BBox:            result.BBox,
		ZoomLevel:       result.ZoomLevel,
		Height:          grid.Height,
		Width:           grid.Width,
		CellSizePixels:  grid.CellSizePixels,
		MetersPerPixel:  grid.MetersPerPixel,
		LatStep:         grid.LatStep,
		LonStep:         grid.LonStep,
		CorridorLatStep: grid.CorridorLatStep,
		CorridorLonStep: grid.CorridorLonStep,
		Costs:           make([][]float64, grid.Height),
		Stats:           result.Stats,
		ConnectionPoint: point,
	}
	for row := range grid.Cells {
		resp.Costs[row] = make([]float64, len(grid.Cells[row]))
		for col, cell := range grid.Cells[row] {
			resp.Costs[row][col] = cell.Cost
		}
	}
	if includeCells {
		resp.Cells = grid.Cells
	}
	return resp
}

func summarize(grid *domain.CostGrid, idx domain.CellIndex) CellSummary {
	cell, _ := grid.Cell(idx)
	return CellSummary{
		Index:       idx,
		Coordinates: cell.Coordinates,
		Cost:        cell.Cost,
		Tier:        cell.Tier,
	}
}

// ConnectionPointResponse - найденная точка подключения
type ConnectionPointResponse struct {
	Point *domain.ConnectionPoint `json:"point"`
	From  domain.GeoPoint         `json:"from"`
}

// TerrainColorsResponse - таблица цветов местности
type TerrainColorsResponse struct {
	Colors []domain.ColorEntry `json:"colors"`
	Total  int                 `json:"total"`
}
