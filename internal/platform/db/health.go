package db

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
)

// PoolStats represents connection pool statistics for either store driver.
type PoolStats struct {
	Driver       string `json:"driver"`
	OpenConns    int    `json:"open_conns"`
	IdleConns    int    `json:"idle_conns"`
	InUseConns   int    `json:"in_use_conns"`
	MaxConns     int    `json:"max_conns"`
	WaitCount    int64  `json:"wait_count"`
	WaitDuration string `json:"wait_duration"`
	Healthy      bool   `json:"healthy"`
}

// Checker is a store that can be pinged and report pool statistics.
type Checker interface {
	Ping(ctx context.Context) error
	Stats() *PoolStats
}

type pgChecker struct{ pool *pgxpool.Pool }

// PGChecker adapts a pgx pool to Checker.
func PGChecker(pool *pgxpool.Pool) Checker { return pgChecker{pool: pool} }

func (c pgChecker) Ping(ctx context.Context) error { return c.pool.Ping(ctx) }

func (c pgChecker) Stats() *PoolStats {
	stat := c.pool.Stat()
	return &PoolStats{
		Driver:       "postgres",
		OpenConns:    int(stat.TotalConns()),
		IdleConns:    int(stat.IdleConns()),
		InUseConns:   int(stat.AcquiredConns()),
		MaxConns:     int(stat.MaxConns()),
		WaitCount:    stat.EmptyAcquireCount(),
		WaitDuration: stat.AcquireDuration().String(),
		Healthy:      stat.TotalConns() > 0,
	}
}

type sqlChecker struct{ db *sql.DB }

// SQLChecker adapts a database/sql handle to Checker.
func SQLChecker(db *sql.DB) Checker { return sqlChecker{db: db} }

func (c sqlChecker) Ping(ctx context.Context) error { return c.db.PingContext(ctx) }

func (c sqlChecker) Stats() *PoolStats {
	stat := c.db.Stats()
	return &PoolStats{
		Driver:       "sqlite",
		OpenConns:    stat.OpenConnections,
		IdleConns:    stat.Idle,
		InUseConns:   stat.InUse,
		MaxConns:     stat.MaxOpenConnections,
		WaitCount:    stat.WaitCount,
		WaitDuration: stat.WaitDuration.String(),
		Healthy:      true,
	}
}

// HealthHandler returns a handler for the database health check endpoint.
func HealthHandler(checker Checker) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
		defer cancel()

		err := checker.Ping(ctx)
		stats := checker.Stats()
		if err != nil {
			stats.Healthy = false
			return c.JSON(http.StatusServiceUnavailable, map[string]interface{}{
				"status": "unhealthy",
				"error":  err.Error(),
				"pool":   stats,
			})
		}

		return c.JSON(http.StatusOK, map[string]interface{}{
			"status": "healthy",
			"pool":   stats,
		})
	}
}
