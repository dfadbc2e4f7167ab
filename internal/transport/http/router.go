package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/avelorn/storefront/internal/handlers"
	authmw "github.com/avelorn/storefront/internal/middleware/auth"
)

type Deps struct {
	AuthHandler    *handlers.AuthHandler
	ProductHandler *handlers.ProductHandler
	OrderHandler   *handlers.OrderHandler
	AdminHandler   *handlers.AdminHandler
	SearchHandler  *handlers.SearchHandler
	JWTSecret      []byte
}

func Register(e *echo.Echo, d *Deps) {
	e.Validator = NewValidator()

	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	login := authmw.RequireLogin(d.JWTSecret)

	api := e.Group("/api")

	auth := api.Group("/auth")
	auth.POST("/register", d.AuthHandler.Register)
	auth.POST("/login", d.AuthHandler.Login)
	auth.POST("/forgot-password", d.AuthHandler.ForgotPassword)
	auth.POST("/reset-password", d.AuthHandler.ResetPassword)
	auth.GET("/me", d.AuthHandler.Me, login)
	auth.POST("/change-password", d.AuthHandler.ChangePassword, login)

	products := api.Group("/products")
	products.GET("", d.ProductHandler.List)
	if d.SearchHandler != nil {
		products.GET("/search", d.SearchHandler.Search)
	}
	products.POST("", d.ProductHandler.Create, login, authmw.AdminOnly)
	products.PUT("/:id", d.ProductHandler.Update, login, authmw.AdminOnly)
	products.DELETE("/:id", d.ProductHandler.Delete, login, authmw.AdminOnly)

	orders := api.Group("/orders", login)
	orders.POST("", d.OrderHandler.Place)
	orders.GET("/my", d.OrderHandler.My)
	orders.GET("/all", d.OrderHandler.All, authmw.AdminOnly)
	orders.PUT("/:id/fulfill", d.OrderHandler.Fulfill, authmw.AdminOnly)

	admin := api.Group("/admin", login, authmw.AdminOnly)
	admin.GET("/stats", d.AdminHandler.GetStats)
	admin.POST("/users/:id/promote", d.AdminHandler.PromoteUser)
}
