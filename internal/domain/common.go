package domain

import "fmt"

// GeoPoint - географическая точка в десятичных градусах
type GeoPoint struct {
	Lat float64 `json:"lat" db:"lat"`
	Lon float64 `json:"lon" db:"lon"`
}

func (p GeoPoint) String() string {
	return fmt.Sprintf("(%.6f, %.6f)", p.Lat, p.Lon)
}

// BoundingBox - прямоугольник (west, south, east, north) в градусах
type BoundingBox struct {
	West  float64 `json:"west"`
	South float64 `json:"south"`
	East  float64 `json:"east"`
	North float64 `json:"north"`
}

// Width возвращает ширину bbox по долготе
func (b BoundingBox) Width() float64 {
	return b.East - b.West
}

// Height возвращает высоту bbox по широте
func (b BoundingBox) Height() float64 {
	return b.North - b.South
}

// Center возвращает центр bbox
func (b BoundingBox) Center() GeoPoint {
	return GeoPoint{Lat: (b.North + b.South) / 2, Lon: (b.West + b.East) / 2}
}

// Contains проверяет, что точка лежит строго внутри bbox
func (b BoundingBox) Contains(p GeoPoint) bool {
	return p.Lat > b.South && p.Lat < b.North && p.Lon > b.West && p.Lon < b.East
}

// Valid проверяет инвариант west < east, south < north
func (b BoundingBox) Valid() bool {
	return b.West < b.East && b.South < b.North
}

// CellIndex - позиция ячейки в сетке (row: north→south, col: west→east)
type CellIndex struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

func (i CellIndex) String() string {
	return fmt.Sprintf("[%d, %d]", i.Row, i.Col)
}
