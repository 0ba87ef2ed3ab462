package auth

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/quickcart/internal/domain"
	"github.com/Skotchmaster/quickcart/internal/models"
)

const userKey = "user"

func (g *Guard) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return g.require(g.Authenticate, next)
}

func (g *Guard) RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return g.require(g.AuthorizeAdmin, next)
}

type checkFunc func(ctx context.Context, token string) (*models.User, error)

func (g *Guard) require(check checkFunc, next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		token := BearerToken(c.Request().Header.Get(echo.HeaderAuthorization))

		user, err := check(ctx, token)
		switch {
		case err == nil:
		case errors.Is(err, domain.ErrUnauthenticated):
			c.Response().Header().Set(echo.HeaderWWWAuthenticate, "Bearer")
			return echo.NewHTTPError(http.StatusUnauthorized, "could not validate credentials")
		case errors.Is(err, domain.ErrForbidden):
			return echo.NewHTTPError(http.StatusForbidden, "admin privileges required")
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, "internal error").SetInternal(err)
		}

		c.Set(userKey, user)
		c.SetRequest(c.Request().WithContext(domain.WithActor(ctx, user.Username)))
		return next(c)
	}
}

// CurrentUser returns the user stored by RequireAuth or RequireAdmin.
func CurrentUser(c echo.Context) (*models.User, bool) {
	u, ok := c.Get(userKey).(*models.User)
	return u, ok && u != nil
}
