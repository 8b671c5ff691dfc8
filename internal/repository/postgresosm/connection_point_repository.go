package postgresosm

import (
	"context"
	"fmt"

	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/routegrid-microservice/internal/domain"
	"github.com/routegrid-microservice/internal/domain/repository"
	pkgerrors "github.com/routegrid-microservice/internal/pkg/errors"
)

type connectionPointRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewConnectionPointRepository создает репозиторий опор и подстанций из planet_osm_*
func NewConnectionPointRepository(db *DB) repository.ConnectionPointRepository {
	return &connectionPointRepository{
		db:     db,
		logger: db.logger,
	}
}

type connectionPointRow struct {
	OSMID    int64   `db:"osm_id"`
	Kind     string  `db:"power"`
	Name     string  `db:"name"`
	Operator string  `db:"operator"`
	Voltage  string  `db:"voltage"`
	Lat      float64 `db:"lat"`
	Lon      float64 `db:"lon"`
	Source   string  `db:"source"`
}

// Подстанции из planet_osm_polygon берутся по центроиду
var connectionPointsQuery = fmt.Sprintf(`
	WITH center AS (
		SELECT ST_SetSRID(ST_MakePoint($1, $2), %[1]d)::geography AS geom
	), candidates AS (
		SELECT osm_id, power, name, tags, ST_Transform(way, %[1]d) AS w4326, 'node' AS source
		FROM %[2]s
		WHERE power = ANY($4)
		UNION ALL
		SELECT osm_id, power, name, tags, ST_Transform(ST_Centroid(way), %[1]d) AS w4326, 'way' AS source
		FROM %[3]s
		WHERE power = '%[4]s'
	)
	SELECT
		osm_id,
		power,
		COALESCE(name, '') AS name,
		COALESCE(tags->'operator', '') AS operator,
		COALESCE(tags->'voltage', '') AS voltage,
		ST_Y(w4326) AS lat,
		ST_X(w4326) AS lon,
		source
	FROM candidates, center
	WHERE ST_DWithin(w4326::geography, center.geom, $3)
	ORDER BY ST_Distance(w4326::geography, center.geom), osm_id
	LIMIT %[5]d
`, SRID4326, planetPointTable, planetPolygonTable, domain.PowerSubstation, LimitConnectionPoints)

func (r *connectionPointRepository) FindWithinRadius(ctx context.Context, center domain.GeoPoint, radiusMeters float64) ([]domain.ConnectionPoint, error) {
	var rows []connectionPointRow
	err := r.db.SelectContext(ctx, &rows, connectionPointsQuery,
		center.Lon, center.Lat, radiusMeters, pq.Array(domain.ConnectionPointKinds))
	if err != nil {
		r.logger.Error("failed to query osm connection points",
			zap.Float64("radius_m", radiusMeters),
			zap.Error(err))
		return nil, pkgerrors.Wrap(pkgerrors.ErrDatabaseError, err)
	}

	points := make([]domain.ConnectionPoint, 0, len(rows))
	for _, row := range rows {
		points = append(points, row.toDomain())
	}
	return points, nil
}

func (row connectionPointRow) toDomain() domain.ConnectionPoint {
	props := map[string]string{"osm_type": row.Source}
	for key, value := range map[string]string{
		"name":     row.Name,
		"operator": row.Operator,
		"voltage":  row.Voltage,
	} {
		if value != "" {
			props[key] = value
		}
	}

	return domain.ConnectionPoint{
		OSMID:      row.OSMID,
		Kind:       row.Kind,
		Location:   domain.GeoPoint{Lat: row.Lat, Lon: row.Lon},
		Properties: props,
	}
}
