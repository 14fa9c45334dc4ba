package httpserver

import (
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/chaussup/shop/internal/handlers"
	"github.com/chaussup/shop/internal/middleware/auth"
	"github.com/chaussup/shop/internal/session"
	"github.com/chaussup/shop/internal/web"
)

type Deps struct {
	DB             *gorm.DB
	Sessions       *session.Manager
	CatalogHandler *handlers.CatalogHandler
	CartHandler    *handlers.CartHandler
	AuthHandler    *handlers.AuthHandler
	ProductHandler *handlers.ProductHandler
}

func Register(e *echo.Echo, d *Deps) {
	e.Renderer = web.NewRenderer()
	e.StaticFS("/static", web.Static())

	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(200) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(200) })

	e.GET("/", d.CatalogHandler.Index)
	e.POST("/api/cart/validate", d.CartHandler.Validate)

	e.GET("/admin/login", d.AuthHandler.LoginForm)
	e.POST("/admin/login", d.AuthHandler.Login)
	e.GET("/admin/logout", d.AuthHandler.Logout)

	admin := e.Group("/admin", auth.RequireAdmin(d.Sessions))

	admin.GET("", d.ProductHandler.Dashboard)
	admin.POST("/product/add", d.ProductHandler.Create)
	admin.POST("/product/edit/:id", d.ProductHandler.Edit)
	admin.POST("/product/delete/:id", d.ProductHandler.Delete)
}
