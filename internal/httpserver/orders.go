package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront_gateway/internal/backend"
	"github.com/Skotchmaster/storefront_gateway/internal/logging"
	"github.com/Skotchmaster/storefront_gateway/internal/models"
	"github.com/Skotchmaster/storefront_gateway/internal/session"
)

type OrderHandler struct {
	Backend *backend.Client
	Bus     *session.Bus
}

// withTotals fills total_price from the stored order-time prices whenever
// the backend omitted it. Backend-supplied totals pass through untouched.
func withTotals(orders []models.Order) []models.Order {
	for i := range orders {
		if orders[i].TotalPrice == nil {
			t := orders[i].Total()
			orders[i].TotalPrice = &t
		}
	}
	return orders
}

// List serves both audiences: admins get the full collection, everyone
// else their own orders looked up by the email on record.
func (h *OrderHandler) List(c echo.Context) error {
	ctx := c.Request().Context()

	me, err := h.Backend.Me(ctx, token(c))
	if err != nil {
		return backendError(c, err)
	}

	var orders []models.Order
	if me.IsAdmin {
		orders, err = h.Backend.Orders(ctx, token(c))
	} else {
		orders, err = h.Backend.UserOrders(ctx, token(c), me.Email)
	}
	if err != nil {
		return backendError(c, err)
	}

	return c.JSON(http.StatusOK, withTotals(orders))
}

func (h *OrderHandler) AdminList(c echo.Context) error {
	ctx := c.Request().Context()

	user, _ := c.Get(ctxUser).(models.User)
	orders, err := h.Backend.AdminOrders(ctx, token(c), user.ID)
	if err != nil {
		return backendError(c, err)
	}
	return c.JSON(http.StatusOK, withTotals(orders))
}

type checkoutItem struct {
	ProductID uint `json:"productId" validate:"required"`
	Quantity  uint `json:"quantity"  validate:"required,gte=1"`
}

type checkoutRequest struct {
	CustomerName string `json:"customer_name" validate:"required"`
	Address      string `json:"address"       validate:"required"`
	Phone        string `json:"phone"         validate:"required"`
	// Email in the body is ignored: the customer's email is resolved
	// fresh from the backend so it can be neither spoofed nor stale.
	Email string         `json:"email"`
	Items []checkoutItem `json:"items" validate:"required,min=1,dive"`
}

// Create is checkout. No client price is ever forwarded; the backend
// prices the order at submission time.
func (h *OrderHandler) Create(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.create")

	var req checkoutRequest
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "invalid body")
	}
	if err := c.Validate(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "customer details and at least one item are required")
	}

	me, err := h.Backend.Me(ctx, token(c))
	if err != nil {
		return backendError(c, err)
	}

	items := make([]backend.OrderItemPayload, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, backend.OrderItemPayload{ProductID: it.ProductID, Quantity: it.Quantity})
	}

	order, err := h.Backend.CreateOrder(ctx, token(c), me.ID, backend.OrderPayload{
		CustomerName: req.CustomerName,
		Address:      req.Address,
		Phone:        req.Phone,
		Email:        me.Email,
		Items:        items,
	})
	if err != nil {
		l.Warn("checkout rejected", "error", err)
		return backendError(c, err)
	}

	h.Bus.Notify(session.Event{Type: session.CartChanged, UserID: me.ID, Detail: "checkout"})
	l.Info("order created", "order_id", order.ID, "user_id", me.ID)

	if order.TotalPrice == nil {
		t := order.Total()
		order.TotalPrice = &t
	}
	return c.JSON(http.StatusOK, order)
}

func (h *OrderHandler) UpdateStatus(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.status")

	var req struct {
		Status string `json:"status" validate:"required"`
	}
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "invalid body")
	}
	if err := c.Validate(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "status is required")
	}

	status := models.OrderStatus(req.Status)
	if !status.Valid() {
		return errorJSON(c, http.StatusBadRequest, "invalid order status")
	}

	order, err := h.Backend.UpdateOrderStatus(ctx, token(c), c.Param("id"), status)
	if err != nil {
		l.Warn("status update rejected", "order_id", c.Param("id"), "error", err)
		return backendError(c, err)
	}

	l.Info("order status updated", "order_id", order.ID, "status", status)
	return c.JSON(http.StatusOK, order)
}
