package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/quickcart/internal/service"
	"github.com/Skotchmaster/quickcart/internal/transport"
	"github.com/Skotchmaster/quickcart/internal/util"
	"github.com/Skotchmaster/quickcart/pkg/logging"
)

type CatalogHTTP struct {
	Svc *service.CatalogService
}

func (h *CatalogHTTP) ListCategories(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "category.list")

	categories, err := h.Svc.ListCategories(ctx)
	if err != nil {
		return fail(c, l, "list_categories_error", err)
	}
	return c.JSON(http.StatusOK, categories)
}

func (h *CatalogHTTP) GetCategory(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "category.get")

	id, err := util.ParseID(c.Param("id"))
	if err != nil {
		return fail(c, l, "get_category_error", err)
	}

	category, err := h.Svc.GetCategory(ctx, id)
	if err != nil {
		return fail(c, l, "get_category_error", err)
	}
	return c.JSON(http.StatusOK, category)
}

func (h *CatalogHTTP) CreateCategory(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "category.create")

	var req transport.CategoryRequest
	if err := bind(c, &req); err != nil {
		return fail(c, l, "create_category_error", err)
	}

	category, err := h.Svc.CreateCategory(ctx, req.Name, req.Description)
	if err != nil {
		return fail(c, l, "create_category_error", err)
	}

	l.Info("create_category_success", "category_id", category.ID)
	return c.JSON(http.StatusCreated, category)
}

func (h *CatalogHTTP) UpdateCategory(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "category.update")

	id, err := util.ParseID(c.Param("id"))
	if err != nil {
		return fail(c, l, "update_category_error", err)
	}

	var req transport.CategoryRequest
	if err := bind(c, &req); err != nil {
		return fail(c, l, "update_category_error", err)
	}

	category, err := h.Svc.UpdateCategory(ctx, id, req.Name, req.Description)
	if err != nil {
		return fail(c, l, "update_category_error", err)
	}

	l.Info("update_category_success", "category_id", category.ID)
	return c.JSON(http.StatusOK, category)
}

func (h *CatalogHTTP) DeleteCategory(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "category.delete")

	id, err := util.ParseID(c.Param("id"))
	if err != nil {
		return fail(c, l, "delete_category_error", err)
	}
	if err := h.Svc.DeleteCategory(ctx, id); err != nil {
		return fail(c, l, "delete_category_error", err)
	}

	l.Info("delete_category_success", "category_id", id)
	return c.JSON(http.StatusOK, transport.MessageResponse{Message: "Category deleted"})
}
