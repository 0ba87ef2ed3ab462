package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/quickcart/internal/service"
	"github.com/Skotchmaster/quickcart/internal/transport"
	"github.com/Skotchmaster/quickcart/internal/util"
	"github.com/Skotchmaster/quickcart/pkg/logging"
)

type UsersHTTP struct {
	Svc  *service.UserService
	Auth *service.AuthService
}

func (h *UsersHTTP) ListUsers(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "users.list")

	users, err := h.Svc.ListUsers(ctx)
	if err != nil {
		return fail(c, l, "list_users_error", err)
	}
	return c.JSON(http.StatusOK, users)
}

func (h *UsersHTTP) CreateUser(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "users.create")

	var req transport.UserRequest
	if err := bind(c, &req); err != nil {
		return fail(c, l, "create_user_error", err)
	}

	user, err := h.Auth.Register(ctx, req.Username, req.Password, req.ParsedRole())
	if err != nil {
		return fail(c, l, "create_user_error", err)
	}

	l.Info("create_user_success", "user_id", user.ID)
	return c.JSON(http.StatusCreated, user)
}

func (h *UsersHTTP) GetUser(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "users.get")

	id, err := util.ParseID(c.Param("id"))
	if err != nil {
		return fail(c, l, "get_user_error", err)
	}

	user, err := h.Svc.GetUser(ctx, id)
	if err != nil {
		return fail(c, l, "get_user_error", err)
	}
	return c.JSON(http.StatusOK, user)
}

func (h *UsersHTTP) UpdateUser(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "users.update")

	id, err := util.ParseID(c.Param("id"))
	if err != nil {
		return fail(c, l, "update_user_error", err)
	}

	var req transport.UserRequest
	if err := bind(c, &req); err != nil {
		return fail(c, l, "update_user_error", err)
	}

	user, err := h.Svc.UpdateUser(ctx, id, req.Username, req.Password, req.ParsedRole())
	if err != nil {
		return fail(c, l, "update_user_error", err)
	}

	l.Info("update_user_success", "user_id", user.ID)
	return c.JSON(http.StatusOK, user)
}

func (h *UsersHTTP) DeleteUser(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "users.delete")

	id, err := util.ParseID(c.Param("id"))
	if err != nil {
		return fail(c, l, "delete_user_error", err)
	}
	if err := h.Svc.DeleteUser(ctx, id); err != nil {
		return fail(c, l, "delete_user_error", err)
	}

	l.Info("delete_user_success", "user_id", id)
	return c.JSON(http.StatusOK, transport.MessageResponse{Message: "User deleted"})
}
