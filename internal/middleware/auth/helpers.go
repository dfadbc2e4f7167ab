package auth

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

func UserID(c echo.Context) (uint, error) {
	id, ok := c.Get("userID").(uint)
	if !ok || id == 0 {
		return 0, echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
	}
	return id, nil
}

func Email(c echo.Context) string {
	email, _ := c.Get("email").(string)
	return email
}

func Role(c echo.Context) string {
	role, _ := c.Get("role").(string)
	return role
}
