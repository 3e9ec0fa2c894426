// Package telemetry exposes the service's Prometheus metrics: HTTP request
// counts and latencies, store pool gauges and the domain counters for
// cascades, status changes and the stats cache.
package telemetry

import (
	"errors"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/clinic/clinic/internal/platform/db"
	"github.com/clinic/clinic/pkg/apperrors"
)

// Config holds the telemetry settings.
type Config struct {
	Namespace      string
	ServiceVersion string
	// RuntimeMetrics adds the Go runtime and process collectors.
	RuntimeMetrics bool
}

func (c *Config) applyDefaults() {
	if c.Namespace == "" {
		c.Namespace = "clinic"
	}
	if c.ServiceVersion == "" {
		c.ServiceVersion = "0.0.0"
	}
}

var durationBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5}

// Provider owns a private registry and the collectors registered on it.
type Provider struct {
	cfg      Config
	registry *prometheus.Registry

	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	inflight prometheus.Gauge

	cascaded    *prometheus.CounterVec
	transitions *prometheus.CounterVec
	cache       *prometheus.CounterVec
}

func New(cfg Config) *Provider {
	cfg.applyDefaults()
	ns := cfg.Namespace
	p := &Provider{
		cfg:      cfg,
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns, Subsystem: "http", Name: "requests_total",
			Help: "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "code"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: ns, Subsystem: "http", Name: "request_duration_seconds",
			Help: "HTTP request latency in seconds.", Buckets: durationBuckets,
		}, []string{"method", "route"}),
		inflight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: ns, Subsystem: "http", Name: "requests_in_flight",
			Help: "HTTP requests currently being served.",
		}),
		cascaded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns, Name: "cascade_appointments_deleted_total",
			Help: "Appointments removed because their patient or doctor was deleted.",
		}, []string{"parent"}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns, Name: "appointment_status_changes_total",
			Help: "Appointment status updates by target status.",
		}, []string{"to"}),
		cache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns, Name: "stats_cache_lookups_total",
			Help: "Stats cache lookups by result.",
		}, []string{"result"}),
	}
	p.registry.MustRegister(p.requests, p.duration, p.inflight, p.cascaded, p.transitions, p.cache)
	info := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: ns, Name: "build_info", Help: "Build information.",
		ConstLabels: prometheus.Labels{"version": cfg.ServiceVersion},
	})
	info.Set(1)
	p.registry.MustRegister(info)
	if cfg.RuntimeMetrics {
		p.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
	return p
}

// Registry returns the registry the provider's collectors live on.
func (p *Provider) Registry() *prometheus.Registry { return p.registry }

// TrackPool exposes the store's connection pool as gauges.
func (p *Provider) TrackPool(checker db.Checker) {
	gauge := func(name, help string, read func(*db.PoolStats) int) prometheus.Collector {
		return prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: p.cfg.Namespace, Subsystem: "db", Name: name, Help: help,
		}, func() float64 { return float64(read(checker.Stats())) })
	}
	p.registry.MustRegister(
		gauge("open_connections", "Open store connections.", func(s *db.PoolStats) int { return s.OpenConns }),
		gauge("idle_connections", "Idle store connections.", func(s *db.PoolStats) int { return s.IdleConns }),
		gauge("in_use_connections", "Store connections in use.", func(s *db.PoolStats) int { return s.InUseConns }),
	)
}

// CascadeDeleted records n appointments removed after a parent deletion.
// parent is "patient" or "doctor".
func (p *Provider) CascadeDeleted(parent string, n int64) {
	p.cascaded.WithLabelValues(parent).Add(float64(n))
}

func (p *Provider) StatusChanged(to string) {
	p.transitions.WithLabelValues(to).Inc()
}

func (p *Provider) CacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	p.cache.WithLabelValues(result).Inc()
}

// Middleware records request count, latency and in-flight requests. The
// route label is the registered pattern, not the raw path.
func (p *Provider) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p.inflight.Inc()
			start := time.Now()

			err := next(c)

			p.inflight.Dec()
			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			method := c.Request().Method
			p.requests.WithLabelValues(method, route, strconv.Itoa(statusCode(c, err))).Inc()
			p.duration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
			return err
		}
	}
}

// statusCode returns the status the response will carry. Errors are rendered
// after the middleware chain unwinds, so their code is taken from the error.
func statusCode(c echo.Context, err error) int {
	if err == nil || c.Response().Committed {
		return c.Response().Status
	}
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code
	}
	return apperrors.HTTPStatus(err)
}

// Handler serves the registry in the Prometheus exposition format.
func (p *Provider) Handler() echo.HandlerFunc {
	return echo.WrapHandler(promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{}))
}
