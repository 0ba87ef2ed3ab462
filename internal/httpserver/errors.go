package httpserver

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/quickcart/internal/domain"
)

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrUnauthenticated), errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrConflict), errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// fail logs err under event and turns it into the matching HTTP error.
// Server errors never leak their cause to the client.
func fail(c echo.Context, l *slog.Logger, event string, err error) error {
	status := statusFor(err)

	if status >= http.StatusInternalServerError {
		l.Error(event, "status", status, "error", err)
		return echo.NewHTTPError(status, "internal server error").SetInternal(err)
	}

	l.Warn(event, "status", status, "reason", err.Error())
	msg := err.Error()
	switch status {
	case http.StatusUnauthorized:
		c.Response().Header().Set(echo.HeaderWWWAuthenticate, "Bearer")
		if errors.Is(err, domain.ErrInvalidCredentials) {
			msg = "invalid username or password"
		} else {
			msg = "could not validate credentials"
		}
	case http.StatusForbidden:
		msg = "admin privileges required"
	}
	return echo.NewHTTPError(status, msg)
}
