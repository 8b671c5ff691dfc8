package domain

import "fmt"

// Pixel - RGBA-пиксель отрендеренной карты
type Pixel struct {
	R, G, B, A uint8
}

// Color возвращает цвет пикселя без альфа-канала
func (p Pixel) Color() Color {
	return RGB(p.R, p.G, p.B)
}

// Raster - отрендеренное изображение bbox, пиксели хранятся построчно (row-major)
type Raster struct {
	Width  int
	Height int
	Pixels []Pixel
}

// NewRaster создаёт растр и проверяет согласованность размеров
func NewRaster(width, height int, pixels []Pixel) (*Raster, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid raster size %dx%d", width, height)
	}
	if len(pixels) != width*height {
		return nil, fmt.Errorf("raster %dx%d expects %d pixels, got %d", width, height, width*height, len(pixels))
	}
	return &Raster{Width: width, Height: height, Pixels: pixels}, nil
}

// At возвращает пиксель в строке row и столбце col
func (r *Raster) At(row, col int) Pixel {
	return r.Pixels[row*r.Width+col]
}
