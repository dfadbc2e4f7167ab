package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	authmw "github.com/avelorn/storefront/internal/middleware/auth"
	"github.com/avelorn/storefront/internal/service/order"
	"github.com/avelorn/storefront/internal/transport"
)

type OrderHandler struct {
	Svc *order.OrderService
}

func (h *OrderHandler) Place(c echo.Context) error {
	userID, err := authmw.UserID(c)
	if err != nil {
		return err
	}

	var req transport.CreateOrderRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	placed, err := h.Svc.Place(c.Request().Context(), userID, authmw.Email(c), req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, placed)
}

func (h *OrderHandler) My(c echo.Context) error {
	userID, err := authmw.UserID(c)
	if err != nil {
		return err
	}

	orders, err := h.Svc.My(c.Request().Context(), userID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, orders)
}

func (h *OrderHandler) All(c echo.Context) error {
	orders, err := h.Svc.All(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, orders)
}

func (h *OrderHandler) Fulfill(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	fulfilled, err := h.Svc.Fulfill(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, fulfilled)
}
