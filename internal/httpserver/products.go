package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront_gateway/internal/backend"
	"github.com/Skotchmaster/storefront_gateway/internal/logging"
	"github.com/Skotchmaster/storefront_gateway/internal/models"
)

type ProductHandler struct {
	Backend *backend.Client
}

type productRequest struct {
	Name        string  `json:"name"        validate:"required"`
	Description string  `json:"description"`
	Price       float64 `json:"price"       validate:"required,gt=0"`
	ImageURL    string  `json:"image_url"`
	Quantity    uint    `json:"quantity"    validate:"required"`
}

// List is the public catalog: only approved products are visible.
func (h *ProductHandler) List(c echo.Context) error {
	ctx := c.Request().Context()

	products, err := h.Backend.Products(ctx)
	if err != nil {
		return backendError(c, err)
	}

	approved := make([]models.Product, 0, len(products))
	for _, p := range products {
		if p.Status == models.ProductApproved {
			approved = append(approved, p)
		}
	}
	return c.JSON(http.StatusOK, approved)
}

// AdminList returns the unfiltered collection for the moderation table.
func (h *ProductHandler) AdminList(c echo.Context) error {
	products, err := h.Backend.Products(c.Request().Context())
	if err != nil {
		return backendError(c, err)
	}
	return c.JSON(http.StatusOK, products)
}

func (h *ProductHandler) Get(c echo.Context) error {
	product, err := h.Backend.Product(c.Request().Context(), c.Param("id"))
	if err != nil {
		return backendError(c, err)
	}
	return c.JSON(http.StatusOK, product)
}

func (h *ProductHandler) Create(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.create")

	var req productRequest
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "invalid body")
	}
	if err := c.Validate(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "name, price and quantity are required")
	}

	me, err := h.Backend.Me(ctx, token(c))
	if err != nil {
		return backendError(c, err)
	}

	product, err := h.Backend.CreateProduct(ctx, token(c), backend.ProductPayload{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		ImageURL:    req.ImageURL,
		Quantity:    req.Quantity,
		SellerID:    me.ID,
	})
	if err != nil {
		l.Warn("create rejected", "error", err)
		return backendError(c, err)
	}

	l.Info("product created", "product_id", product.ID, "seller_id", me.ID)
	return c.JSON(http.StatusOK, product)
}

func (h *ProductHandler) Update(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.update")

	var req productRequest
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "invalid body")
	}
	if err := c.Validate(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "name, price and quantity are required")
	}

	me, err := h.Backend.Me(ctx, token(c))
	if err != nil {
		return backendError(c, err)
	}

	product, err := h.Backend.UpdateProduct(ctx, token(c), c.Param("id"), backend.ProductPayload{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		ImageURL:    req.ImageURL,
		Quantity:    req.Quantity,
		SellerID:    me.ID,
	})
	if err != nil {
		l.Warn("update rejected", "product_id", c.Param("id"), "error", err)
		return backendError(c, err)
	}
	return c.JSON(http.StatusOK, product)
}

func (h *ProductHandler) Delete(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.delete")

	if err := h.Backend.DeleteProduct(ctx, token(c), c.Param("id")); err != nil {
		l.Warn("delete rejected", "product_id", c.Param("id"), "error", err)
		return backendError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "product deleted"})
}

func (h *ProductHandler) UpdateStatus(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.status")

	var req struct {
		Status string `json:"status" validate:"required"`
	}
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "invalid body")
	}
	if err := c.Validate(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "status is required")
	}

	status := models.ProductStatus(req.Status)
	if !status.Valid() {
		return errorJSON(c, http.StatusBadRequest, "invalid product status")
	}

	product, err := h.Backend.UpdateProductStatus(ctx, token(c), c.Param("id"), status)
	if err != nil {
		l.Warn("status update rejected", "product_id", c.Param("id"), "error", err)
		return backendError(c, err)
	}

	l.Info("product status updated", "product_id", product.ID, "status", status)
	return c.JSON(http.StatusOK, product)
}
