package middleware

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// InvalidateOnWrite calls invalidate after every mutating request (POST, PUT,
// PATCH, DELETE) that did not end in a client error. Server errors still
// invalidate: a delete can remove the parent row before its cascade fails.
// An invalidation error is logged and does not change the response.
func InvalidateOnWrite(invalidate func(context.Context) error, logger zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			err := next(c)
			if !isWrite(c.Request().Method) {
				return err
			}
			status := c.Response().Status
			if err != nil {
				status = errorStatus(err)
			}
			if status >= http.StatusBadRequest && status < http.StatusInternalServerError {
				return err
			}
			if ierr := invalidate(c.Request().Context()); ierr != nil {
				rid, _ := c.Get("request_id").(string)
				logger.Warn().Err(ierr).
					Str("request_id", rid).
					Str("path", c.Request().URL.Path).
					Msg("cache invalidation failed")
			}
			return err
		}
	}
}

func isWrite(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}
