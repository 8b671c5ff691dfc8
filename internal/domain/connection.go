package domain

// Значения тега power, к которым можно подключить станцию
const (
	PowerTower      = "tower"
	PowerSubstation = "substation"
)

// ConnectionPointKinds - типы точек подключения, которые ищет lookup
var ConnectionPointKinds = []string{PowerTower, PowerSubstation}

// ConnectionPoint - ближайшая опора ЛЭП или подстанция
type ConnectionPoint struct {
	OSMID          int64             `json:"osm_id"`
	Kind           string            `json:"kind"`
	Location       GeoPoint          `json:"location"`
	Properties     map[string]string `json:"properties,omitempty"`
	DistanceMeters float64           `json:"distance_m"`
}

// LookupOptions - параметры расширяющегося поиска
type LookupOptions struct {
	InitialRadiusMeters float64
	MaxRadiusMeters     float64
	StepMeters          float64
}

// DefaultLookupOptions - 5 км, шаг 5 км, максимум 50 км
func DefaultLookupOptions() LookupOptions {
	return LookupOptions{
		InitialRadiusMeters: 5000,
		MaxRadiusMeters:     50000,
		StepMeters:          5000,
	}
}
