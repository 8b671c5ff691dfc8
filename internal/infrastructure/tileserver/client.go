package tileserver

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/routegrid-microservice/internal/config"
	"github.com/routegrid-microservice/internal/domain"
	"github.com/routegrid-microservice/internal/domain/repository"
	"github.com/routegrid-microservice/internal/pkg/geo"
	"github.com/routegrid-microservice/internal/pkg/metrics"
)

// maxTileBytes - ограничение размера ответа тайлового сервера
const maxTileBytes = 4 << 20

type client struct {
	httpClient  *http.Client
	urlTemplate string
	userAgent   string
	maxTiles    int
	cacheRepo   repository.CacheRepository
	cacheTTL    time.Duration
	logger      *zap.Logger
}

// NewTileClient создает рендерер карты поверх XYZ тайлового сервера.
// cacheRepo может быть nil, тогда тайлы не кешируются.
func NewTileClient(
	cfg *config.TilesConfig,
	cacheRepo repository.CacheRepository,
	cacheTTL time.Duration,
	logger *zap.Logger,
) repository.MapImageRepository {
	return &client{
		httpClient: &http.Client{
			Timeout: cfg.RequestTimeout,
		},
		urlTemplate: cfg.URLTemplate,
		userAgent:   cfg.UserAgent,
		maxTiles:    cfg.MaxTiles,
		cacheRepo:   cacheRepo,
		cacheTTL:    cacheTTL,
		logger:      logger,
	}
}

// Render склеивает тайлы, покрывающие bbox, и обрезает результат до
// пиксельного окна bbox на заданном zoom
func (c *client) Render(ctx context.Context, bbox domain.BoundingBox, zoomLevel int) (*domain.Raster, error) {
	window := geo.BoundingBoxWindow(bbox, zoomLevel)

	tx0, ty0 := window.X0/geo.TileSize, window.Y0/geo.TileSize
	tx1 := (window.X0 + window.Width - 1) / geo.TileSize
	ty1 := (window.Y0 + window.Height - 1) / geo.TileSize

	tiles := (tx1 - tx0 + 1) * (ty1 - ty0 + 1)
	if c.maxTiles > 0 && tiles > c.maxTiles {
		return nil, fmt.Errorf("bbox needs %d tiles at zoom %d, limit is %d", tiles, zoomLevel, c.maxTiles)
	}

	c.logger.Debug("Rendering map from tiles",
		zap.Int("zoom", zoomLevel),
		zap.Int("tiles", tiles),
		zap.Int("width", window.Width),
		zap.Int("height", window.Height))

	canvas := image.NewNRGBA(image.Rect(0, 0, window.Width, window.Height))
	worldTiles := 1 << zoomLevel

	for ty := ty0; ty <= ty1; ty++ {
		for tx := tx0; tx <= tx1; tx++ {
			tile, err := c.tile(ctx, zoomLevel, ((tx%worldTiles)+worldTiles)%worldTiles, ty)
			if err != nil {
				return nil, err
			}

			origin := image.Pt(tx*geo.TileSize-window.X0, ty*geo.TileSize-window.Y0)
			dst := image.Rectangle{Min: origin, Max: origin.Add(tile.Bounds().Size())}
			draw.Draw(canvas, dst, tile, tile.Bounds().Min, draw.Src)
		}
	}

	return RasterFromImage(canvas), nil
}

// tile берёт тайл из кеша или с сервера. Повреждённый тайл из кеша
// удаляется и скачивается заново; в кеш попадают только декодируемые тайлы.
func (c *client) tile(ctx context.Context, z, x, y int) (image.Image, error) {
	if data := c.cachedTile(ctx, z, x, y); data != nil {
		img, err := png.Decode(bytes.NewReader(data))
		if err == nil {
			metrics.TileFetches.WithLabelValues("cached").Inc()
			return img, nil
		}
		c.logger.Warn("Corrupted cached tile, refetching",
			zap.Int("z", z), zap.Int("x", x), zap.Int("y", y), zap.Error(err))
		c.dropTile(ctx, z, x, y)
	}

	data, err := c.fetchTile(ctx, z, x, y)
	if err != nil {
		metrics.TileFetches.WithLabelValues("error").Inc()
		return nil, err
	}
	metrics.TileFetches.WithLabelValues("fetched").Inc()

	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		c.logger.Error("Failed to decode tile", zap.Int("z", z), zap.Int("x", x), zap.Int("y", y), zap.Error(err))
		return nil, fmt.Errorf("failed to decode tile %d/%d/%d: %w", z, x, y, err)
	}
	c.storeTile(ctx, z, x, y, data)
	return img, nil
}

func (c *client) fetchTile(ctx context.Context, z, x, y int) ([]byte, error) {
	url := TileURL(c.urlTemplate, z, x, y)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		c.logger.Error("Failed to create request", zap.Error(err))
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "image/png")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("Failed to execute request", zap.String("url", url), zap.Error(err))
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		c.logger.Error("Tile server returned error",
			zap.String("url", url),
			zap.Int("status_code", resp.StatusCode),
			zap.String("body", string(body)))
		return nil, fmt.Errorf("tile server error: status %d for %d/%d/%d", resp.StatusCode, z, x, y)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxTileBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read tile %d/%d/%d: %w", z, x, y, err)
	}
	return data, nil
}

func (c *client) cachedTile(ctx context.Context, z, x, y int) []byte {
	if c.cacheRepo == nil {
		return nil
	}
	data, err := c.cacheRepo.GetTile(ctx, z, x, y)
	if err != nil {
		c.logger.Warn("Failed to read tile cache", zap.Error(err))
		return nil
	}
	return data
}

func (c *client) storeTile(ctx context.Context, z, x, y int, data []byte) {
	if c.cacheRepo == nil || c.cacheTTL <= 0 {
		return
	}
	if err := c.cacheRepo.SetTile(ctx, z, x, y, data, c.cacheTTL); err != nil {
		c.logger.Warn("Failed to cache tile", zap.Int("z", z), zap.Int("x", x), zap.Int("y", y), zap.Error(err))
	}
}

func (c *client) dropTile(ctx context.Context, z, x, y int) {
	if err := c.cacheRepo.DeleteTile(ctx, z, x, y); err != nil {
		c.logger.Warn("Failed to drop cached tile", zap.Int("z", z), zap.Int("x", x), zap.Int("y", y), zap.Error(err))
	}
}

// TileURL подставляет z/x/y в шаблон вида https://host/{z}/{x}/{y}.png
func TileURL(template string, z, x, y int) string {
	return strings.NewReplacer(
		"{z}", strconv.Itoa(z),
		"{x}", strconv.Itoa(x),
		"{y}", strconv.Itoa(y),
	).Replace(template)
}

// RasterFromImage копирует изображение в растр (non-premultiplied RGBA)
func RasterFromImage(img image.Image) *domain.Raster {
	bounds := img.Bounds()
	nrgba, ok := img.(*image.NRGBA)
	if !ok {
		nrgba = image.NewNRGBA(bounds)
		draw.Draw(nrgba, bounds, img, bounds.Min, draw.Src)
	}

	width, height := bounds.Dx(), bounds.Dy()
	pixels := make([]domain.Pixel, 0, width*height)
	for y := 0; y < height; y++ {
		row := nrgba.Pix[y*nrgba.Stride : y*nrgba.Stride+width*4]
		for x := 0; x < width; x++ {
			p := row[x*4 : x*4+4]
			pixels = append(pixels, domain.Pixel{R: p[0], G: p[1], B: p[2], A: p[3]})
		}
	}
	return &domain.Raster{Width: width, Height: height, Pixels: pixels}
}

// RasterToImage - обратное преобразование, для отладочных изображений
func RasterToImage(r *domain.Raster) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, r.Width, r.Height))
	for i, p := range r.Pixels {
		copy(img.Pix[i*4:i*4+4], []uint8{p.R, p.G, p.B, p.A})
	}
	return img
}
