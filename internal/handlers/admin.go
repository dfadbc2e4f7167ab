package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/avelorn/storefront/internal/service/auth"
	"github.com/avelorn/storefront/internal/service/stats"
	"github.com/avelorn/storefront/internal/transport"
)

type AdminHandler struct {
	Auth  *auth.AuthService
	Stats *stats.StatsService
}

func (h *AdminHandler) GetStats(c echo.Context) error {
	summary, err := h.Stats.Summary(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, summary)
}

func (h *AdminHandler) PromoteUser(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	user, err := h.Auth.Promote(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"user": transport.ProfileFromUser(user)})
}
