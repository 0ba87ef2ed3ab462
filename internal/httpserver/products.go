package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/quickcart/internal/repo"
	"github.com/Skotchmaster/quickcart/internal/transport"
	"github.com/Skotchmaster/quickcart/internal/util"
	"github.com/Skotchmaster/quickcart/pkg/logging"
)

func (h *CatalogHTTP) ListProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.list")

	offset, limit, err := util.Window(c.QueryParam("skip"), c.QueryParam("limit"))
	if err != nil {
		return fail(c, l, "list_products_error", err)
	}

	filter := repo.ProductFilter{Offset: offset, Limit: limit}
	if raw := c.QueryParam("category_id"); raw != "" {
		categoryID, err := util.ParseID(raw)
		if err != nil {
			return fail(c, l, "list_products_error", err)
		}
		filter.CategoryID = &categoryID
	}

	items, err := h.Svc.ListProducts(ctx, filter)
	if err != nil {
		return fail(c, l, "list_products_error", err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *CatalogHTTP) SearchProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.search")

	offset, limit, err := util.Window(c.QueryParam("skip"), c.QueryParam("limit"))
	if err != nil {
		return fail(c, l, "search_products_error", err)
	}

	total, items, err := h.Svc.SearchProducts(ctx, c.QueryParam("q"), offset, limit)
	if err != nil {
		return fail(c, l, "search_products_error", err)
	}
	return c.JSON(http.StatusOK, transport.SearchResponse{Total: total, Items: items})
}

func (h *CatalogHTTP) GetProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.get")

	id, err := util.ParseID(c.Param("id"))
	if err != nil {
		return fail(c, l, "get_product_error", err)
	}

	product, err := h.Svc.GetProduct(ctx, id)
	if err != nil {
		return fail(c, l, "get_product_error", err)
	}
	return c.JSON(http.StatusOK, product)
}

func (h *CatalogHTTP) CreateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.create")

	var req transport.ProductRequest
	if err := bind(c, &req); err != nil {
		return fail(c, l, "create_product_error", err)
	}

	product, err := h.Svc.CreateProduct(ctx, req.Model())
	if err != nil {
		return fail(c, l, "create_product_error", err)
	}

	l.Info("create_product_success", "product_id", product.ID)
	return c.JSON(http.StatusCreated, product)
}

func (h *CatalogHTTP) UpdateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.update")

	id, err := util.ParseID(c.Param("id"))
	if err != nil {
		return fail(c, l, "update_product_error", err)
	}

	var req transport.ProductRequest
	if err := bind(c, &req); err != nil {
		return fail(c, l, "update_product_error", err)
	}

	product, err := h.Svc.UpdateProduct(ctx, id, req.Model())
	if err != nil {
		return fail(c, l, "update_product_error", err)
	}

	l.Info("update_product_success", "product_id", product.ID)
	return c.JSON(http.StatusOK, product)
}

func (h *CatalogHTTP) DeleteProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.delete")

	id, err := util.ParseID(c.Param("id"))
	if err != nil {
		return fail(c, l, "delete_product_error", err)
	}
	if err := h.Svc.DeleteProduct(ctx, id); err != nil {
		return fail(c, l, "delete_product_error", err)
	}

	l.Info("delete_product_success", "product_id", id)
	return c.JSON(http.StatusOK, transport.MessageResponse{Message: "Product deleted"})
}
