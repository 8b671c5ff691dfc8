package geo

import (
	"math"

	"github.com/routegrid-microservice/internal/domain"
)

const (
	// TileSize is the edge of a slippy-map raster tile in pixels.
	TileSize = 256

	maxMercatorLat = 85.05112878
)

// WorldSize returns the width of the whole map in pixels at a zoom level.
func WorldSize(zoomLevel int) float64 {
	return TileSize * math.Pow(2, float64(zoomLevel))
}

// LonToPixelX projects a longitude to a global pixel column.
func LonToPixelX(lon float64, zoomLevel int) float64 {
	return (lon + 180) / 360 * WorldSize(zoomLevel)
}

// LatToPixelY projects a latitude to a global pixel row (north is 0).
func LatToPixelY(lat float64, zoomLevel int) float64 {
	lat = math.Max(-maxMercatorLat, math.Min(maxMercatorLat, lat))
	sin := math.Sin(toRad(lat))
	y := 0.5 - math.Log((1+sin)/(1-sin))/(4*math.Pi)
	return y * WorldSize(zoomLevel)
}

// PixelWindow is the global pixel rectangle covering a bounding box.
type PixelWindow struct {
	X0, Y0        int
	Width, Height int
}

// BoundingBoxWindow returns the pixel rectangle a renderer must produce for
// bbox at zoomLevel. The rectangle is at least one pixel on each side.
func BoundingBoxWindow(bbox domain.BoundingBox, zoomLevel int) PixelWindow {
	x0 := math.Floor(LonToPixelX(bbox.West, zoomLevel))
	x1 := math.Ceil(LonToPixelX(bbox.East, zoomLevel))
	y0 := math.Floor(LatToPixelY(bbox.North, zoomLevel))
	y1 := math.Ceil(LatToPixelY(bbox.South, zoomLevel))

	return PixelWindow{
		X0:     int(x0),
		Y0:     int(y0),
		Width:  max(1, int(x1-x0)),
		Height: max(1, int(y1-y0)),
	}
}

// PixelOffset returns the position of a point inside the bbox pixel window.
func PixelOffset(point domain.GeoPoint, bbox domain.BoundingBox, zoomLevel int) (x, y float64) {
	window := BoundingBoxWindow(bbox, zoomLevel)
	x = LonToPixelX(point.Lon, zoomLevel) - float64(window.X0)
	y = LatToPixelY(point.Lat, zoomLevel) - float64(window.Y0)
	return x, y
}
