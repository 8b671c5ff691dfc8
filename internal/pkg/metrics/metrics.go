package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
)

var (
	// HTTP metrics
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "routegrid",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total HTTP requests processed",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "routegrid",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency in seconds",
		Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	}, []string{"method", "path"})

	// Grid metrics
	GridBuilds = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "routegrid",
		Subsystem: "grid",
		Name:      "builds_total",
		Help:      "Total cost grid builds by outcome code",
	}, []string{"outcome"})

	GridBuildDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "routegrid",
		Subsystem: "grid",
		Name:      "build_duration_seconds",
		Help:      "Duration of cost grid builds including rendering",
		Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
	})

	UnclassifiedPixels = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "routegrid",
		Subsystem: "grid",
		Name:      "unclassified_pixels_total",
		Help:      "Pixels whose color is absent from the color cost table",
	})

	EmptyCells = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "routegrid",
		Subsystem: "grid",
		Name:      "empty_cells_total",
		Help:      "Cells that fell back to the default cost",
	})

	// Tile metrics
	TileFetches = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "routegrid",
		Subsystem: "tiles",
		Name:      "fetches_total",
		Help:      "Raster tile fetches from the tile server by status",
	}, []string{"status"})

	// Lookup metrics
	ConnectionLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "routegrid",
		Subsystem: "lookup",
		Name:      "connection_points_total",
		Help:      "Nearest connection point lookups by outcome",
	}, []string{"outcome"})

	CacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "routegrid",
		Subsystem: "cache",
		Name:      "hits_total",
		Help:      "Total cache hits",
	}, []string{"operation"})

	CacheMisses = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "routegrid",
		Subsystem: "cache",
		Name:      "misses_total",
		Help:      "Total cache misses",
	}, []string{"operation"})
)

// ObserveGridBuild records one grid build.
func ObserveGridBuild(outcome string, started time.Time) {
	GridBuilds.WithLabelValues(outcome).Inc()
	GridBuildDuration.Observe(time.Since(started).Seconds())
}

// Middleware records request metrics.
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Response().StatusCode())
		path := c.Route().Path
		if path == "" {
			path = c.Path()
		}
		method := c.Method()

		httpRequestsTotal.WithLabelValues(method, path, status).Inc()
		httpRequestDuration.WithLabelValues(method, path).Observe(duration)

		return err
	}
}

// Handler returns a Fiber handler serving Prometheus /metrics endpoint.
func Handler() fiber.Handler {
	handler := promhttp.Handler()
	return func(c *fiber.Ctx) error {
		fasthttpadaptor.NewFastHTTPHandler(handler)(c.Context())
		return nil
	}
}
