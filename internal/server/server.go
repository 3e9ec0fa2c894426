// Package server assembles the HTTP API from a store and its collaborators.
package server

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/clinic/clinic/internal/domain/identity"
	"github.com/clinic/clinic/internal/domain/integrity"
	"github.com/clinic/clinic/internal/domain/reporting"
	"github.com/clinic/clinic/internal/domain/scheduling"
	"github.com/clinic/clinic/internal/platform/cache"
	"github.com/clinic/clinic/internal/platform/db"
	"github.com/clinic/clinic/internal/platform/middleware"
	"github.com/clinic/clinic/internal/platform/telemetry"
)

// Store bundles the repositories of one storage driver.
type Store struct {
	Patients     identity.PatientRepository
	Doctors      identity.DoctorRepository
	Appointments scheduling.AppointmentRepository
	Stats        reporting.Source
	Checker      db.Checker
}

func NewPostgresStore(pool *pgxpool.Pool) *Store {
	return &Store{
		Patients:     identity.NewPatientRepoPG(pool),
		Doctors:      identity.NewDoctorRepoPG(pool),
		Appointments: scheduling.NewAppointmentRepoPG(pool),
		Stats:        reporting.NewSourcePG(pool),
		Checker:      db.PGChecker(pool),
	}
}

func NewSQLiteStore(conn *sql.DB) *Store {
	return &Store{
		Patients:     identity.NewPatientRepoSQLite(conn),
		Doctors:      identity.NewDoctorRepoSQLite(conn),
		Appointments: scheduling.NewAppointmentRepoSQLite(conn),
		Stats:        reporting.NewSourceSQLite(conn),
		Checker:      db.SQLChecker(conn),
	}
}

type Options struct {
	Logger    zerolog.Logger
	Telemetry *telemetry.Provider
	Version   string

	// StatsCache is used only when StatsCacheTTL is positive.
	StatsCache    cache.Store
	StatsCacheTTL time.Duration

	CORSOrigins []string
	BodyLimit   string

	// Now is the clock for date filters and statistics.
	Now func() time.Time
}

// lateParticipants forwards to the identity service, which is built after
// the scheduling service it depends on.
type lateParticipants struct {
	*identity.Service
}

// New builds the echo instance serving the clinic API on store.
func New(store *Store, opts Options) *echo.Echo {
	logger := opts.Logger
	tel := opts.Telemetry
	if tel == nil {
		tel = telemetry.New(telemetry.Config{})
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	participants := &lateParticipants{}
	schedSvc := scheduling.NewService(store.Appointments, participants,
		scheduling.WithClock(now),
		scheduling.WithStatusObserver(func(from, to scheduling.Status) {
			tel.StatusChanged(string(to))
			logger.Debug().Str("from", string(from)).Str("to", string(to)).Msg("appointment status changed")
		}),
	)
	cascade := integrity.NewManager(schedSvc, logger).WithRecorder(tel)
	identitySvc := identity.NewService(store.Patients, store.Doctors, cascade)
	participants.Service = identitySvc

	reportOpts := []reporting.Option{
		reporting.WithClock(now),
		reporting.WithLogger(logger),
		reporting.WithCacheRecorder(tel),
	}
	if opts.StatsCache != nil {
		reportOpts = append(reportOpts, reporting.WithCache(opts.StatsCache, opts.StatsCacheTTL))
	}
	reportSvc := reporting.NewService(store.Stats, reportOpts...)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = middleware.ErrorHandler(logger)

	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(tel.Middleware())
	e.Use(middleware.Recovery(logger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: opts.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowHeaders: []string{echo.HeaderContentType, middleware.RequestIDHeader},
	}))
	e.Use(middleware.SecurityHeaders())
	e.Use(middleware.BodyLimit(opts.BodyLimit))

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok", "version": opts.Version})
	})
	e.GET("/health/db", db.HealthHandler(store.Checker))
	e.GET("/metrics", tel.Handler())

	api := e.Group("/api", middleware.InvalidateOnWrite(reportSvc.Invalidate, logger))
	identity.NewHandler(identitySvc).RegisterRoutes(api)
	scheduling.NewHandler(schedSvc).RegisterRoutes(api)
	reporting.NewHandler(reportSvc).RegisterRoutes(api)

	return e
}
