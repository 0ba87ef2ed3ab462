package httpserver

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/quickcart/internal/domain"
	"github.com/Skotchmaster/quickcart/internal/metrics"
	authmw "github.com/Skotchmaster/quickcart/internal/middleware/auth"
	"github.com/Skotchmaster/quickcart/internal/service"
	"github.com/Skotchmaster/quickcart/internal/transport"
	"github.com/Skotchmaster/quickcart/pkg/logging"
)

type AuthHTTP struct {
	Svc *service.AuthService
}

func (h *AuthHTTP) Register(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.register")

	var req transport.UserRequest
	if err := bind(c, &req); err != nil {
		return fail(c, l, "register_error", err)
	}

	user, err := h.Svc.Register(ctx, req.Username, req.Password, req.ParsedRole())
	if err != nil {
		return fail(c, l, "register_error", err)
	}

	l.Info("register_success", "user_id", user.ID)
	return c.JSON(http.StatusCreated, user)
}

func (h *AuthHTTP) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.login")

	var req transport.LoginRequest
	if err := bind(c, &req); err != nil {
		return fail(c, l, "login_error", err)
	}

	res, err := h.Svc.Login(ctx, req.Username, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			metrics.LoginsTotal.WithLabelValues("invalid_credentials").Inc()
		} else {
			metrics.LoginsTotal.WithLabelValues("error").Inc()
		}
		return fail(c, l, "login_error", err)
	}
	metrics.LoginsTotal.WithLabelValues("success").Inc()

	expiresIn := int64(time.Until(res.ExpiresAt).Round(time.Second) / time.Second)
	return c.JSON(http.StatusOK, transport.TokenResponse{
		AccessToken: res.AccessToken,
		TokenType:   "bearer",
		ExpiresIn:   expiresIn,
	})
}

func (h *AuthHTTP) Me(c echo.Context) error {
	user, ok := authmw.CurrentUser(c)
	if !ok {
		l := logging.FromContext(c.Request().Context()).With("handler", "auth.me")
		return fail(c, l, "me_error", domain.ErrUnauthenticated)
	}
	return c.JSON(http.StatusOK, user)
}
