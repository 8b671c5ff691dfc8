package postgresosm

const (
	SRID4326 = 4326

	// LimitConnectionPoints - максимум точек подключения за один запрос
	LimitConnectionPoints = 500
)

const (
	planetPointTable   = "planet_osm_point"
	planetPolygonTable = "planet_osm_polygon"
)
