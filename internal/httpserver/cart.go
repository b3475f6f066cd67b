package httpserver

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront_gateway/internal/backend"
	"github.com/Skotchmaster/storefront_gateway/internal/inflight"
	"github.com/Skotchmaster/storefront_gateway/internal/logging"
	"github.com/Skotchmaster/storefront_gateway/internal/models"
	"github.com/Skotchmaster/storefront_gateway/internal/session"
)

type CartHandler struct {
	Backend *backend.Client
	Guard   *inflight.Guard
	Bus     *session.Bus
}

type cartItemRequest struct {
	ProductID uint `json:"productId" validate:"required"`
	Quantity  uint `json:"quantity"  validate:"required,gte=1"`
}

func itemKey(userID string, productID uint) string {
	return userID + "/" + strconv.FormatUint(uint64(productID), 10)
}

func userIDParam(c echo.Context) (string, uint) {
	raw := c.Param("userId")
	id, _ := strconv.ParseUint(raw, 10, 32)
	return raw, uint(id)
}

func (h *CartHandler) notify(userID uint, detail string) {
	h.Bus.Notify(session.Event{Type: session.CartChanged, UserID: userID, Detail: detail})
}

func (h *CartHandler) Get(c echo.Context) error {
	userID, _ := userIDParam(c)

	cart, err := h.Backend.Cart(c.Request().Context(), token(c), userID)
	if err != nil {
		return backendError(c, err)
	}
	return c.JSON(http.StatusOK, cart)
}

// Count backs the navigation chrome badge.
func (h *CartHandler) Count(c echo.Context) error {
	userID, _ := userIDParam(c)

	cart, err := h.Backend.Cart(c.Request().Context(), token(c), userID)
	if err != nil {
		return backendError(c, err)
	}

	var count uint
	for _, it := range cart.Items {
		count += it.Quantity
	}
	return c.JSON(http.StatusOK, echo.Map{"count": count})
}

func (h *CartHandler) Add(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.add")
	userID, uid := userIDParam(c)

	var req cartItemRequest
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "invalid body")
	}
	if err := c.Validate(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "product id and quantity are required")
	}

	key := itemKey(userID, req.ProductID)
	if !h.Guard.TryAcquire(key) {
		return errorJSON(c, http.StatusConflict, "another update for this item is in progress")
	}
	defer h.Guard.Release(key)

	item, err := h.Backend.AddCartItem(ctx, token(c), userID, req.ProductID, req.Quantity)
	if err != nil {
		l.Warn("add rejected", "product_id", req.ProductID, "error", err)
		return backendError(c, err)
	}

	h.notify(uid, "add")
	return c.JSON(http.StatusOK, item)
}

// Update clamps the requested quantity against the stock recorded in the
// cart's product snapshot. An over-stock request is answered locally and
// no mutation reaches the backend.
func (h *CartHandler) Update(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.update")
	userID, uid := userIDParam(c)

	var req cartItemRequest
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "invalid body")
	}
	if err := c.Validate(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "product id and quantity are required")
	}

	key := itemKey(userID, req.ProductID)
	if !h.Guard.TryAcquire(key) {
		return errorJSON(c, http.StatusConflict, "another update for this item is in progress")
	}
	defer h.Guard.Release(key)

	cart, err := h.Backend.Cart(ctx, token(c), userID)
	if err != nil {
		return backendError(c, err)
	}

	var current *models.CartItem
	for i := range cart.Items {
		if cart.Items[i].Product.ID == req.ProductID {
			current = &cart.Items[i]
			break
		}
	}
	if current == nil {
		return errorJSON(c, http.StatusNotFound, "item not found in cart")
	}
	if req.Quantity > current.Product.Quantity {
		l.Warn("quantity exceeds stock", "product_id", req.ProductID,
			"requested", req.Quantity, "available", current.Product.Quantity)
		return errorJSON(c, http.StatusUnprocessableEntity,
			fmt.Sprintf("not enough stock, available: %d", current.Product.Quantity))
	}

	item, err := h.Backend.UpdateCartItem(ctx, token(c), userID, req.ProductID, req.Quantity)
	if err != nil {
		l.Warn("update rejected", "product_id", req.ProductID, "error", err)
		return backendError(c, err)
	}

	h.notify(uid, "update")
	return c.JSON(http.StatusOK, item)
}

func (h *CartHandler) Remove(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.remove")
	userID, uid := userIDParam(c)

	var req struct {
		ProductID uint `json:"productId" validate:"required"`
	}
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "invalid body")
	}
	if err := c.Validate(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "product id is required")
	}

	key := itemKey(userID, req.ProductID)
	if !h.Guard.TryAcquire(key) {
		return errorJSON(c, http.StatusConflict, "another update for this item is in progress")
	}
	defer h.Guard.Release(key)

	if err := h.Backend.RemoveCartItem(ctx, token(c), userID, req.ProductID); err != nil {
		l.Warn("remove rejected", "product_id", req.ProductID, "error", err)
		return backendError(c, err)
	}

	h.notify(uid, "remove")
	return c.JSON(http.StatusOK, echo.Map{"message": "item removed"})
}

func (h *CartHandler) Clear(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.clear")
	userID, uid := userIDParam(c)

	if err := h.Backend.ClearCart(ctx, token(c), userID); err != nil {
		l.Warn("clear rejected", "error", err)
		return backendError(c, err)
	}

	h.notify(uid, "clear")
	return c.JSON(http.StatusOK, echo.Map{"message": "cart cleared"})
}
