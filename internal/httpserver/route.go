package httpserver

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/Skotchmaster/quickcart/internal/metrics"
	authmw "github.com/Skotchmaster/quickcart/internal/middleware/auth"
	loggingmw "github.com/Skotchmaster/quickcart/pkg/middleware/logging"
)

type Deps struct {
	Auth    *AuthHTTP
	Users   *UsersHTTP
	Catalog *CatalogHTTP
	Guard   *authmw.Guard
	// LoginLimit wraps POST /auth/login when set.
	LoginLimit echo.MiddlewareFunc
	Ready      func(ctx context.Context) error
}

// New builds the echo instance with the shared middleware chain.
func New(l *slog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = NewValidator()
	e.IPExtractor = echo.ExtractIPDirect()

	e.Use(middleware.RequestID())
	e.Use(loggingmw.RequestLogger(l))
	e.Use(middleware.Recover())
	e.Use(metrics.Middleware)
	return e
}

// TrustProxies makes c.RealIP read X-Forwarded-For, but only through hops
// inside the given CIDRs.
func TrustProxies(e *echo.Echo, cidrs []string) error {
	opts := []echo.TrustOption{
		echo.TrustLoopback(false),
		echo.TrustLinkLocal(false),
		echo.TrustPrivateNet(false),
	}
	for _, cidr := range cidrs {
		_, ipnet, err := net.ParseCIDR(strings.TrimSpace(cidr))
		if err != nil {
			return fmt.Errorf("trusted proxy %q: %w", cidr, err)
		}
		opts = append(opts, echo.TrustIPRange(ipnet))
	}
	e.IPExtractor = echo.ExtractIPFromXFFHeader(opts...)
	return nil
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", d.ready)
	e.GET("/metrics", echo.WrapHandler(metrics.Handler()))

	authGroup := e.Group("/auth")
	authGroup.POST("/register", d.Auth.Register)
	if d.LoginLimit != nil {
		authGroup.POST("/login", d.Auth.Login, d.LoginLimit)
	} else {
		authGroup.POST("/login", d.Auth.Login)
	}
	authGroup.GET("/me", d.Auth.Me, d.Guard.RequireAuth)

	admin := e.Group("/admin/users", d.Guard.RequireAdmin)
	admin.GET("", d.Users.ListUsers)
	admin.POST("", d.Users.CreateUser)
	admin.GET("/:id", d.Users.GetUser)
	admin.PUT("/:id", d.Users.UpdateUser)
	admin.DELETE("/:id", d.Users.DeleteUser)

	categories := e.Group("/categories")
	categories.GET("", d.Catalog.ListCategories)
	categories.GET("/:id", d.Catalog.GetCategory)
	categories.POST("", d.Catalog.CreateCategory, d.Guard.RequireAdmin)
	categories.PUT("/:id", d.Catalog.UpdateCategory, d.Guard.RequireAdmin)
	categories.DELETE("/:id", d.Catalog.DeleteCategory, d.Guard.RequireAdmin)

	products := e.Group("/products")
	products.GET("", d.Catalog.ListProducts)
	products.GET("/search", d.Catalog.SearchProducts)
	products.GET("/:id", d.Catalog.GetProduct)
	products.POST("", d.Catalog.CreateProduct, d.Guard.RequireAdmin)
	products.PUT("/:id", d.Catalog.UpdateProduct, d.Guard.RequireAdmin)
	products.DELETE("/:id", d.Catalog.DeleteProduct, d.Guard.RequireAdmin)
}

func (d *Deps) ready(c echo.Context) error {
	if d.Ready == nil {
		return c.NoContent(http.StatusOK)
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()
	if err := d.Ready(ctx); err != nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "not ready").SetInternal(err)
	}
	return c.NoContent(http.StatusOK)
}
