// Package geo converts between geographic degrees, Web Mercator pixels at a
// fixed zoom level and cell indices of a cost grid laid over a bounding box.
//
// Grid orientation: row 0 is the northern edge of the bounding box and rows
// grow southwards; column 0 is the western edge and columns grow eastwards.
// The reference point of a cell is its north-west corner.
package geo

import (
	"math"

	"github.com/routegrid-microservice/internal/domain"
	pkgerrors "github.com/routegrid-microservice/internal/pkg/errors"
)

const (
	// EarthCircumferenceMeters is the equatorial circumference used by the
	// slippy-map meters-per-pixel formula.
	EarthCircumferenceMeters = 40075016.686

	// BoundingBoxMargin scales the start/end delta into the bbox half-span.
	BoundingBoxMargin = 0.75

	// MinSpanDegrees keeps the bbox non-degenerate when start and end share
	// a latitude or a longitude (~11 m).
	MinSpanDegrees = 1e-4

	// edgeTolerance absorbs float error for points lying exactly on the
	// southern or eastern edge, in cell units.
	edgeTolerance = 1e-9
)

// MetersPerPixel returns the ground resolution of a map pixel at the given
// latitude and zoom level.
func MetersPerPixel(latitudeDegrees float64, zoomLevel int) float64 {
	return EarthCircumferenceMeters * math.Cos(toRad(latitudeDegrees)) / math.Pow(2, float64(zoomLevel+8))
}

// Span returns the absolute start/end deltas per axis, clamped to MinSpanDegrees.
func Span(start, end domain.GeoPoint) (latSpan, lonSpan float64) {
	latSpan = math.Max(math.Abs(start.Lat-end.Lat), MinSpanDegrees)
	lonSpan = math.Max(math.Abs(start.Lon-end.Lon), MinSpanDegrees)
	return latSpan, lonSpan
}

// Midpoint returns the arithmetic center of start and end.
func Midpoint(start, end domain.GeoPoint) domain.GeoPoint {
	return domain.GeoPoint{
		Lat: (start.Lat + end.Lat) / 2,
		Lon: (start.Lon + end.Lon) / 2,
	}
}

// ComputeBoundingBox centers a box on the start/end midpoint with a half-span
// of 0.75 × |start−end| per axis, so both points sit a quarter of the delta
// inside the box edges.
func ComputeBoundingBox(start, end domain.GeoPoint) domain.BoundingBox {
	center := Midpoint(start, end)
	latSpan, lonSpan := Span(start, end)

	return domain.BoundingBox{
		West:  center.Lon - BoundingBoxMargin*lonSpan,
		South: center.Lat - BoundingBoxMargin*latSpan,
		East:  center.Lon + BoundingBoxMargin*lonSpan,
		North: center.Lat + BoundingBoxMargin*latSpan,
	}
}

// CellIndexFor maps a point to the cell of a gridHeight × gridWidth grid laid
// over bbox that contains it. Points on the southern or eastern edge belong to
// the last row/column; points outside the box yield ErrIndexOutOfRange.
func CellIndexFor(point domain.GeoPoint, bbox domain.BoundingBox, gridHeight, gridWidth int) (domain.CellIndex, error) {
	if gridHeight < 1 || gridWidth < 1 || !bbox.Valid() {
		return domain.CellIndex{}, pkgerrors.ErrDegenerateGrid
	}

	latStep := bbox.Height() / float64(gridHeight)
	lonStep := bbox.Width() / float64(gridWidth)

	row, rowOK := cellOrdinal((bbox.North-point.Lat)/latStep, gridHeight)
	col, colOK := cellOrdinal((point.Lon-bbox.West)/lonStep, gridWidth)
	idx := domain.CellIndex{Row: row, Col: col}

	if !rowOK || !colOK {
		return idx, pkgerrors.ErrIndexOutOfRange.WithDetails(map[string]interface{}{
			"row":    row,
			"col":    col,
			"height": gridHeight,
			"width":  gridWidth,
		})
	}
	return idx, nil
}

func cellOrdinal(position float64, size int) (int, bool) {
	n := int(math.Floor(position + edgeTolerance))
	if n == size && position <= float64(size)+edgeTolerance {
		return size - 1, true
	}
	return n, n >= 0 && n < size
}

// CellOrigin returns the north-west corner of a cell.
func CellOrigin(idx domain.CellIndex, bbox domain.BoundingBox, gridHeight, gridWidth int) domain.GeoPoint {
	latStep := bbox.Height() / float64(gridHeight)
	lonStep := bbox.Width() / float64(gridWidth)
	return domain.GeoPoint{
		Lat: bbox.North - float64(idx.Row)*latStep,
		Lon: bbox.West + float64(idx.Col)*lonStep,
	}
}

// CellCenter returns the geographic center of a cell.
func CellCenter(idx domain.CellIndex, bbox domain.BoundingBox, gridHeight, gridWidth int) domain.GeoPoint {
	origin := CellOrigin(idx, bbox, gridHeight, gridWidth)
	return domain.GeoPoint{
		Lat: origin.Lat - bbox.Height()/float64(gridHeight)/2,
		Lon: origin.Lon + bbox.Width()/float64(gridWidth)/2,
	}
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}
