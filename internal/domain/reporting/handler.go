package reporting

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/clinic/clinic/pkg/apperrors"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/stats", h.GetStats)
	api.GET("/stats/detailed", h.GetDetailedStats)
}

func (h *Handler) GetStats(c echo.Context) error {
	s, err := h.svc.Summary(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(apperrors.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusOK, s)
}

func (h *Handler) GetDetailedStats(c echo.Context) error {
	d, err := h.svc.Detailed(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(apperrors.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusOK, d)
}
