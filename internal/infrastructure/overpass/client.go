package overpass

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/routegrid-microservice/internal/config"
	"github.com/routegrid-microservice/internal/domain"
	"github.com/routegrid-microservice/internal/domain/repository"
)

type client struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	logger     *zap.Logger
}

// response - ответ Overpass API в формате [out:json]
type response struct {
	Elements []element `json:"elements"`
	Remark   string    `json:"remark,omitempty"`
}

type element struct {
	Type   string            `json:"type"`
	ID     int64             `json:"id"`
	Lat    float64           `json:"lat"`
	Lon    float64           `json:"lon"`
	Center *center           `json:"center,omitempty"`
	Tags   map[string]string `json:"tags"`
}

type center struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// NewOverpassClient создает клиент поиска опор и подстанций через Overpass API
func NewOverpassClient(cfg *config.OverpassConfig, userAgent string, logger *zap.Logger) repository.ConnectionPointRepository {
	return &client{
		httpClient: &http.Client{
			Timeout: cfg.RequestTimeout,
		},
		baseURL:   cfg.URL,
		userAgent: userAgent,
		logger:    logger,
	}
}

// BuildQuery формирует запрос power=tower|substation в радиусе (метры).
// Подстанции часто размечены площадью, поэтому для way берётся центр.
func BuildQuery(center domain.GeoPoint, radiusMeters float64) string {
	kinds := strings.Join(domain.ConnectionPointKinds, "|")
	around := fmt.Sprintf("(around:%.0f,%.7f,%.7f)", radiusMeters, center.Lat, center.Lon)
	return fmt.Sprintf(
		`[out:json][timeout:60];(node["power"~"^(%s)$"]%s;way["power"="%s"]%s;);out center tags;`,
		kinds, around, domain.PowerSubstation, around,
	)
}

// FindWithinRadius возвращает все опоры и подстанции в радиусе
func (c *client) FindWithinRadius(ctx context.Context, center domain.GeoPoint, radiusMeters float64) ([]domain.ConnectionPoint, error) {
	query := BuildQuery(center, radiusMeters)

	c.logger.Debug("Calling Overpass API",
		zap.Float64("radius_m", radiusMeters),
		zap.Stringer("center", center))

	form := url.Values{"data": {query}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, strings.NewReader(form.Encode()))
	if err != nil {
		c.logger.Error("Failed to create request", zap.Error(err))
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("Failed to execute request", zap.Error(err))
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		c.logger.Error("Overpass API returned error",
			zap.Int("status_code", resp.StatusCode),
			zap.String("body", string(body)))
		return nil, fmt.Errorf("overpass API error: status %d, body: %s", resp.StatusCode, string(body))
	}

	var overpassResp response
	if err := json.NewDecoder(resp.Body).Decode(&overpassResp); err != nil {
		c.logger.Error("Failed to decode response", zap.Error(err))
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	// remark приходит при таймауте или нехватке памяти на сервере
	if overpassResp.Remark != "" && len(overpassResp.Elements) == 0 {
		return nil, fmt.Errorf("overpass API remark: %s", overpassResp.Remark)
	}

	points := make([]domain.ConnectionPoint, 0, len(overpassResp.Elements))
	for _, el := range overpassResp.Elements {
		if point, ok := el.toConnectionPoint(); ok {
			points = append(points, point)
		}
	}

	c.logger.Debug("Overpass API call successful",
		zap.Int("elements", len(overpassResp.Elements)),
		zap.Int("points", len(points)))

	return points, nil
}

func (el element) toConnectionPoint() (domain.ConnectionPoint, bool) {
	kind := el.Tags["power"]
	if kind != domain.PowerTower && kind != domain.PowerSubstation {
		return domain.ConnectionPoint{}, false
	}

	location := domain.GeoPoint{Lat: el.Lat, Lon: el.Lon}
	if el.Type != "node" {
		if el.Center == nil {
			return domain.ConnectionPoint{}, false
		}
		location = domain.GeoPoint{Lat: el.Center.Lat, Lon: el.Center.Lon}
	}

	props := make(map[string]string, len(el.Tags))
	for k, v := range el.Tags {
		if k != "power" {
			props[k] = v
		}
	}
	props["osm_type"] = el.Type

	return domain.ConnectionPoint{
		OSMID:      el.ID,
		Kind:       kind,
		Location:   location,
		Properties: props,
	}, true
}
