package telemetry

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/clinic/clinic/internal/platform/db"
	"github.com/clinic/clinic/pkg/apperrors"
)

func newTestEcho(p *Provider) *echo.Echo {
	e := echo.New()
	e.Use(p.Middleware())
	e.GET("/api/patients/:id", func(c echo.Context) error {
		if c.Param("id") == "missing" {
			return echo.NewHTTPError(http.StatusNotFound, "patient not found")
		}
		return c.String(http.StatusOK, "ok")
	})
	e.GET("/api/stats", func(c echo.Context) error {
		return apperrors.Storage("count patients", errors.New("down"))
	})
	e.GET("/metrics", p.Handler())
	return e
}

func serve(e *echo.Echo, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestConfig_Defaults(t *testing.T) {
	p := New(Config{})
	if p.cfg.Namespace != "clinic" {
		t.Errorf("expected default namespace clinic, got %q", p.cfg.Namespace)
	}
	if p.cfg.ServiceVersion != "0.0.0" {
		t.Errorf("expected default version 0.0.0, got %q", p.cfg.ServiceVersion)
	}
}

func TestMiddleware_LabelsByRoutePattern(t *testing.T) {
	p := New(Config{})
	e := newTestEcho(p)

	serve(e, "/api/patients/1")
	serve(e, "/api/patients/2")
	serve(e, "/api/patients/missing")

	if got := testutil.ToFloat64(p.requests.WithLabelValues("GET", "/api/patients/:id", "200")); got != 2 {
		t.Errorf("expected 2 successful requests, got %v", got)
	}
	if got := testutil.ToFloat64(p.requests.WithLabelValues("GET", "/api/patients/:id", "404")); got != 1 {
		t.Errorf("expected 1 not-found request, got %v", got)
	}
	if got := testutil.ToFloat64(p.inflight); got != 0 {
		t.Errorf("expected no requests in flight, got %v", got)
	}
}

func TestMiddleware_ApplicationErrorStatus(t *testing.T) {
	p := New(Config{})
	e := newTestEcho(p)

	serve(e, "/api/stats")
	if got := testutil.ToFloat64(p.requests.WithLabelValues("GET", "/api/stats", "500")); got != 1 {
		t.Errorf("expected storage error counted as 500, got %v", got)
	}
}

func TestDomainCounters(t *testing.T) {
	p := New(Config{})
	p.CascadeDeleted("patient", 3)
	p.CascadeDeleted("patient", 0)
	p.CascadeDeleted("doctor", 1)
	p.StatusChanged("completed")
	p.CacheLookup(true)
	p.CacheLookup(false)
	p.CacheLookup(false)

	if got := testutil.ToFloat64(p.cascaded.WithLabelValues("patient")); got != 3 {
		t.Errorf("expected 3 patient cascade deletions, got %v", got)
	}
	if got := testutil.ToFloat64(p.cascaded.WithLabelValues("doctor")); got != 1 {
		t.Errorf("expected 1 doctor cascade deletion, got %v", got)
	}
	if got := testutil.ToFloat64(p.transitions.WithLabelValues("completed")); got != 1 {
		t.Errorf("expected 1 transition, got %v", got)
	}
	if got := testutil.ToFloat64(p.cache.WithLabelValues("miss")); got != 2 {
		t.Errorf("expected 2 cache misses, got %v", got)
	}
}

func TestHandler_Exposition(t *testing.T) {
	p := New(Config{ServiceVersion: "1.2.3"})
	conn, err := db.OpenSQLite(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	defer conn.Close()
	p.TrackPool(db.SQLChecker(conn))

	e := newTestEcho(p)
	serve(e, "/api/patients/1")
	rec := serve(e, "/metrics")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body, _ := io.ReadAll(rec.Body)
	text := string(body)
	for _, want := range []string{
		`clinic_http_requests_total{code="200",method="GET",route="/api/patients/:id"} 1`,
		`clinic_build_info{version="1.2.3"} 1`,
		"clinic_db_open_connections",
		"clinic_http_request_duration_seconds_bucket",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("expected %q in exposition", want)
		}
	}
}
