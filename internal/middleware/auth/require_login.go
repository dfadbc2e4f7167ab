package auth

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/avelorn/storefront/internal/models"
)

const bearerPrefix = "Bearer "

// RequireLogin verifies the Authorization bearer token and puts the caller's
// identity on the echo context.
func RequireLogin(secret []byte) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			if !strings.HasPrefix(header, bearerPrefix) {
				return echo.NewHTTPError(http.StatusUnauthorized, "No token")
			}

			token, err := jwt.Parse(strings.TrimPrefix(header, bearerPrefix), func(t *jwt.Token) (interface{}, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
				}
				return secret, nil
			})
			if err != nil || !token.Valid {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
			}

			claims, ok := token.Claims.(jwt.MapClaims)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
			}
			sub, ok := claims["sub"].(float64)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
			}
			email, _ := claims["email"].(string)
			role, _ := claims["role"].(string)

			c.Set("userID", uint(sub))
			c.Set("email", email)
			c.Set("role", role)
			return next(c)
		}
	}
}

// AdminOnly must be stacked after RequireLogin.
func AdminOnly(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if role, _ := c.Get("role").(string); role != models.RoleAdmin {
			return echo.NewHTTPError(http.StatusForbidden, "Admin only")
		}
		return next(c)
	}
}
