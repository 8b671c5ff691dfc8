package tileserver

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/routegrid-microservice/internal/config"
	"github.com/routegrid-microservice/internal/domain"
	"github.com/routegrid-microservice/internal/pkg/geo"
)

var (
	plantStart = domain.GeoPoint{Lat: 6.7, Lon: 80.06}
	towerEnd   = domain.GeoPoint{Lat: 6.710755, Lon: 80.064272}
	urbanFill  = color.NRGBA{R: 0xf2, G: 0xef, B: 0xe9, A: 255}
)

func solidTile(t *testing.T, c color.Color) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, geo.TileSize, geo.TileSize))
	for i := 0; i < len(img.Pix); i += 4 {
		r, g, b, a := c.RGBA()
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = uint8(r>>8), uint8(g>>8), uint8(b>>8), uint8(a>>8)
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// memoryCache - кеш тайлов в памяти
type memoryCache struct {
	mu    sync.Mutex
	tiles map[string][]byte
}

func newMemoryCache() *memoryCache {
	return &memoryCache{tiles: make(map[string][]byte)}
}

func (m *memoryCache) Get(ctx context.Context, key string) ([]byte, error) { return nil, nil }
func (m *memoryCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return nil
}
func (m *memoryCache) Delete(ctx context.Context, key string) error { return nil }

func (m *memoryCache) GetTile(ctx context.Context, z, x, y int) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tiles[fmt.Sprintf("%d/%d/%d", z, x, y)], nil
}

func (m *memoryCache) SetTile(ctx context.Context, z, x, y int, data []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tiles[fmt.Sprintf("%d/%d/%d", z, x, y)] = data
	return nil
}

func (m *memoryCache) DeleteTile(ctx context.Context, z, x, y int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.tiles, fmt.Sprintf("%d/%d/%d", z, x, y))
	return nil
}

func (m *memoryCache) snapshot() map[string][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string][]byte, len(m.tiles))
	for k, v := range m.tiles {
		out[k] = v
	}
	return out
}

func TestClient_Render(t *testing.T) {
	logger := zap.NewNop()
	tile := solidTile(t, urbanFill)
	bbox := geo.ComputeBoundingBox(plantStart, towerEnd)
	window := geo.BoundingBoxWindow(bbox, 16)

	t.Run("stitches tiles into the bbox window", func(t *testing.T) {
		var requests atomic.Int32
		var userAgent atomic.Value
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requests.Add(1)
			userAgent.Store(r.Header.Get("User-Agent"))
			w.Header().Set("Content-Type", "image/png")
			w.Write(tile)
		}))
		defer server.Close()

		cfg := &config.TilesConfig{
			URLTemplate:    server.URL + "/{z}/{x}/{y}.png",
			UserAgent:      "routegrid-test",
			RequestTimeout: 5 * time.Second,
			MaxTiles:       64,
		}
		renderer := NewTileClient(cfg, nil, 0, logger)

		raster, err := renderer.Render(context.Background(), bbox, 16)
		require.NoError(t, err)
		assert.Equal(t, window.Width, raster.Width)
		assert.Equal(t, window.Height, raster.Height)
		assert.Len(t, raster.Pixels, raster.Width*raster.Height)
		for _, p := range []domain.Pixel{raster.At(0, 0), raster.At(raster.Height-1, raster.Width-1)} {
			assert.Equal(t, domain.RGB(0xf2, 0xef, 0xe9), p.Color())
		}

		tilesX := (window.X0+window.Width-1)/geo.TileSize - window.X0/geo.TileSize + 1
		tilesY := (window.Y0+window.Height-1)/geo.TileSize - window.Y0/geo.TileSize + 1
		assert.Equal(t, int32(tilesX*tilesY), requests.Load())
		assert.Equal(t, "routegrid-test", userAgent.Load())
	})

	t.Run("second render is served from cache", func(t *testing.T) {
		var requests atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requests.Add(1)
			w.Write(tile)
		}))
		defer server.Close()

		cfg := &config.TilesConfig{URLTemplate: server.URL + "/{z}/{x}/{y}.png", RequestTimeout: 5 * time.Second}
		renderer := NewTileClient(cfg, newMemoryCache(), time.Hour, logger)

		_, err := renderer.Render(context.Background(), bbox, 16)
		require.NoError(t, err)
		first := requests.Load()
		require.Greater(t, first, int32(0))

		_, err = renderer.Render(context.Background(), bbox, 16)
		require.NoError(t, err)
		assert.Equal(t, first, requests.Load())
	})

	t.Run("corrupted cached tile is refetched", func(t *testing.T) {
		var requests atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requests.Add(1)
			w.Write(tile)
		}))
		defer server.Close()

		tilesX := (window.X0+window.Width-1)/geo.TileSize - window.X0/geo.TileSize + 1
		tilesY := (window.Y0+window.Height-1)/geo.TileSize - window.Y0/geo.TileSize + 1

		cache := newMemoryCache()
		for ty := window.Y0 / geo.TileSize; ty < window.Y0/geo.TileSize+tilesY; ty++ {
			for tx := window.X0 / geo.TileSize; tx < window.X0/geo.TileSize+tilesX; tx++ {
				require.NoError(t, cache.SetTile(context.Background(), 16, tx, ty, []byte("truncated"), time.Hour))
			}
		}

		cfg := &config.TilesConfig{URLTemplate: server.URL + "/{z}/{x}/{y}.png", RequestTimeout: 5 * time.Second}
		renderer := NewTileClient(cfg, cache, time.Hour, logger)

		raster, err := renderer.Render(context.Background(), bbox, 16)
		require.NoError(t, err)
		assert.Equal(t, domain.RGB(0xf2, 0xef, 0xe9), raster.At(0, 0).Color())
		assert.Equal(t, int32(tilesX*tilesY), requests.Load())
		for key, data := range cache.snapshot() {
			assert.Equal(t, tile, data, key)
		}
	})

	t.Run("too many tiles", func(t *testing.T) {
		cfg := &config.TilesConfig{URLTemplate: "http://127.0.0.1:1/{z}/{x}/{y}.png", MaxTiles: 1}
		renderer := NewTileClient(cfg, nil, 0, logger)

		_, err := renderer.Render(context.Background(), domain.BoundingBox{West: 0, South: 0, East: 1, North: 1}, 16)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "limit is 1")
	})

	t.Run("tile server error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write([]byte("slow down"))
		}))
		defer server.Close()

		cfg := &config.TilesConfig{URLTemplate: server.URL + "/{z}/{x}/{y}.png", RequestTimeout: 5 * time.Second}
		renderer := NewTileClient(cfg, nil, 0, logger)

		_, err := renderer.Render(context.Background(), bbox, 16)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "status 429")
	})

	t.Run("invalid png", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("<html>not a tile</html>"))
		}))
		defer server.Close()

		cfg := &config.TilesConfig{URLTemplate: server.URL + "/{z}/{x}/{y}.png", RequestTimeout: 5 * time.Second}
		cache := newMemoryCache()
		renderer := NewTileClient(cfg, cache, time.Hour, logger)

		_, err := renderer.Render(context.Background(), bbox, 16)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to decode tile")
		assert.Empty(t, cache.snapshot())
	})
}

func TestTileURL(t *testing.T) {
	assert.Equal(t,
		"https://tile.openstreetmap.org/16/47343/31546.png",
		TileURL("https://tile.openstreetmap.org/{z}/{x}/{y}.png", 16, 47343, 31546))
}

func TestRasterImageRoundTrip(t *testing.T) {
	raster := &domain.Raster{Width: 2, Height: 1, Pixels: []domain.Pixel{
		{R: 1, G: 2, B: 3, A: 255},
		{R: 170, G: 211, B: 223, A: 128},
	}}
	assert.Equal(t, raster, RasterFromImage(RasterToImage(raster)))
}

func TestWriteDebugPNG(t *testing.T) {
	bbox := geo.ComputeBoundingBox(plantStart, towerEnd)
	window := geo.BoundingBoxWindow(bbox, 16)
	raster := RasterFromImage(image.NewNRGBA(image.Rect(0, 0, window.Width, window.Height)))

	result := &domain.GridResult{
		Grid:       &domain.CostGrid{Height: 47, Width: 19, CellSizePixels: 16},
		Start:      plantStart,
		End:        towerEnd,
		StartIndex: domain.CellIndex{Row: 39, Col: 3},
		EndIndex:   domain.CellIndex{Row: 7, Col: 15},
		BBox:       bbox,
		ZoomLevel:  16,
	}

	var buf bytes.Buffer
	require.NoError(t, WriteDebugPNG(&buf, raster, result))

	img, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, window.Width, img.Bounds().Dx())
	assert.Equal(t, window.Height, img.Bounds().Dy())

	x, y := geo.PixelOffset(plantStart, bbox, 16)
	got := color.NRGBAModel.Convert(img.At(int(x+0.5), int(y+0.5))).(color.NRGBA)
	assert.Equal(t, startColor, got)

	assert.Error(t, WriteDebugPNG(&buf, nil, result))
}
