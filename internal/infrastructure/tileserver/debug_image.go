package tileserver

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"

	"github.com/routegrid-microservice/internal/domain"
	"github.com/routegrid-microservice/internal/pkg/geo"
)

var (
	gridLineColor = color.NRGBA{R: 90, G: 90, B: 90, A: 255}
	startColor    = color.NRGBA{R: 220, G: 20, B: 60, A: 255}
	endColor      = color.NRGBA{R: 30, G: 60, B: 220, A: 255}
)

const markerRadius = 3

// WriteDebugPNG рисует поверх растра линии сетки и маркеры start/end.
// Маркер ставится в истинную точку, рамка ячейки - вокруг найденного индекса.
func WriteDebugPNG(w io.Writer, raster *domain.Raster, result *domain.GridResult) error {
	if raster == nil || result == nil || result.Grid == nil {
		return fmt.Errorf("debug image needs a raster and a grid")
	}

	img := RasterToImage(raster)
	cs := result.Grid.CellSizePixels
	if cs > 1 {
		for x := cs; x < img.Bounds().Dx(); x += cs {
			fillRect(img, image.Rect(x, 0, x+1, img.Bounds().Dy()), gridLineColor)
		}
		for y := cs; y < img.Bounds().Dy(); y += cs {
			fillRect(img, image.Rect(0, y, img.Bounds().Dx(), y+1), gridLineColor)
		}
	}

	for _, m := range []struct {
		point domain.GeoPoint
		idx   domain.CellIndex
		color color.NRGBA
	}{
		{result.Start, result.StartIndex, startColor},
		{result.End, result.EndIndex, endColor},
	} {
		cell := image.Rect(m.idx.Col*cs, m.idx.Row*cs, (m.idx.Col+1)*cs, (m.idx.Row+1)*cs)
		strokeRect(img, cell, m.color)

		x, y := geo.PixelOffset(m.point, result.BBox, result.ZoomLevel)
		px, py := int(math.Round(x)), int(math.Round(y))
		fillRect(img, image.Rect(px-markerRadius, py-markerRadius, px+markerRadius+1, py+markerRadius+1), m.color)
	}

	return png.Encode(w, img)
}

func fillRect(img *image.NRGBA, r image.Rectangle, c color.NRGBA) {
	draw.Draw(img, r.Intersect(img.Bounds()), image.NewUniform(c), image.Point{}, draw.Src)
}

func strokeRect(img *image.NRGBA, r image.Rectangle, c color.NRGBA) {
	fillRect(img, image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+1), c)
	fillRect(img, image.Rect(r.Min.X, r.Max.Y-1, r.Max.X, r.Max.Y), c)
	fillRect(img, image.Rect(r.Min.X, r.Min.Y, r.Min.X+1, r.Max.Y), c)
	fillRect(img, image.Rect(r.Max.X-1, r.Min.Y, r.Max.X, r.Max.Y), c)
}
