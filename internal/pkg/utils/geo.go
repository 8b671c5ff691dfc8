package utils

import (
	"math"

	"github.com/routegrid-microservice/internal/domain"
)

const earthRadiusKm = 6371.0

// HaversineDistance вычисляет расстояние между двумя точками в километрах
func HaversineDistance(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := (lat2 - lat1) * math.Pi / 180.0
	dLon := (lon2 - lon1) * math.Pi / 180.0

	lat1Rad := lat1 * math.Pi / 180.0
	lat2Rad := lat2 * math.Pi / 180.0

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Sin(dLon/2)*math.Sin(dLon/2)*math.Cos(lat1Rad)*math.Cos(lat2Rad)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKm * c
}

// DistanceMeters - расстояние между точками в метрах
func DistanceMeters(a, b domain.GeoPoint) float64 {
	return HaversineDistance(a.Lat, a.Lon, b.Lat, b.Lon) * 1000
}

// ValidateCoordinates проверяет валидность координат
func ValidateCoordinates(lat, lon float64) bool {
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}

// ValidatePoint проверяет валидность точки (NaN не проходит)
func ValidatePoint(p domain.GeoPoint) bool {
	return ValidateCoordinates(p.Lat, p.Lon)
}

// ValidateZoom проверяет уровень зума (0 - 19)
func ValidateZoom(zoom int) bool {
	return zoom >= 0 && zoom <= domain.MaxZoomLevel
}
