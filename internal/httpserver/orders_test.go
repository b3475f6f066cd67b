package httpserver

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/storefront_gateway/internal/models"
)

func TestCheckout_MissingCustomerNameBlocked(t *testing.T) {
	env := newTestEnv(t)

	rec := env.doJSON(http.MethodPost, "/api/orders", map[string]any{
		"address": "Main St 1",
		"phone":   "061123456",
		"items":   []map[string]any{{"productId": 3, "quantity": 1}},
	}, "tok")

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Zero(t, env.Stub.totalCalls(), "validation failures must not reach the backend")
}

func TestCheckout_EmptyItemsBlocked(t *testing.T) {
	env := newTestEnv(t)

	rec := env.doJSON(http.MethodPost, "/api/orders", map[string]any{
		"customer_name": "Ana K",
		"address":       "Main St 1",
		"phone":         "061123456",
		"items":         []map[string]any{},
	}, "tok")

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Zero(t, env.Stub.totalCalls())
}

func TestCheckout_EmailResolvedFreshNeverFromBody(t *testing.T) {
	env := newTestEnv(t)
	env.Stub.handle("GET /auth/me", meHandler(7, "real@example.com", false))

	var forwarded struct {
		CustomerName string `json:"customer_name"`
		Email        string `json:"email"`
		Items        []struct {
			ProductID uint `json:"product_id"`
			Quantity  uint `json:"quantity"`
		} `json:"items"`
	}
	env.Stub.handle("POST /orders/7", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&forwarded))
		respondJSON(w, http.StatusOK, `{"id": 55, "status": "pending", "items": []}`)
	})

	rec := env.doJSON(http.MethodPost, "/api/orders", map[string]any{
		"customer_name": "Ana K",
		"address":       "Main St 1",
		"phone":         "061123456",
		"email":         "spoofed@evil.com",
		"items":         []map[string]any{{"productId": 3, "quantity": 2}},
	}, "tok")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "real@example.com", forwarded.Email)
	assert.Equal(t, "Ana K", forwarded.CustomerName)
	require.Len(t, forwarded.Items, 1)
	assert.Equal(t, uint(3), forwarded.Items[0].ProductID)
	assert.Equal(t, uint(2), forwarded.Items[0].Quantity)

	require.Len(t, *env.Events, 1)
	assert.Equal(t, "checkout", (*env.Events)[0].Detail)
}

func TestOrders_TotalComputedWhenAbsent(t *testing.T) {
	env := newTestEnv(t)
	env.Stub.handle("GET /auth/me", meHandler(7, "x@y.com", false))
	env.Stub.handle("GET /orders/user/x@y.com", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, `[{
			"id": 1, "customer_name": "Ana K", "status": "pending",
			"items": [
				{"id": 1, "product_id": 3, "quantity": 2, "price_at_order_time": 10.00},
				{"id": 2, "product_id": 4, "quantity": 3, "price_at_order_time": 5.50}
			]
		}]`)
	})

	rec := env.doJSON(http.MethodGet, "/api/orders", nil, "tok")

	require.Equal(t, http.StatusOK, rec.Code)
	var orders []models.Order
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &orders))
	require.Len(t, orders, 1)
	require.NotNil(t, orders[0].TotalPrice)
	assert.InDelta(t, 36.50, *orders[0].TotalPrice, 0.001)
}

func TestOrders_BackendTotalNotRecalculated(t *testing.T) {
	env := newTestEnv(t)
	env.Stub.handle("GET /auth/me", meHandler(7, "x@y.com", false))
	env.Stub.handle("GET /orders/user/x@y.com", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, `[{
			"id": 1, "status": "completed", "total_price": 12.00,
			"items": [{"id": 1, "product_id": 3, "quantity": 2, "price_at_order_time": 10.00}]
		}]`)
	})

	rec := env.doJSON(http.MethodGet, "/api/orders", nil, "tok")

	require.Equal(t, http.StatusOK, rec.Code)
	var orders []models.Order
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &orders))
	require.Len(t, orders, 1)
	require.NotNil(t, orders[0].TotalPrice)
	assert.Equal(t, 12.00, *orders[0].TotalPrice)
}

func TestOrders_AdminSeesFullCollection(t *testing.T) {
	env := newTestEnv(t)
	env.Stub.handle("GET /auth/me", meHandler(2, "admin@y.com", true))
	env.Stub.handle("GET /orders/", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, `[]`)
	})

	rec := env.doJSON(http.MethodGet, "/api/orders", nil, "tok")

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 1, env.Stub.callCount("GET /orders/"))
}

func TestOrderStatusUpdate_NonAdminForbidden(t *testing.T) {
	env := newTestEnv(t)
	env.Stub.handle("GET /auth/me", meHandler(7, "x@y.com", false))

	rec := env.doJSON(http.MethodPut, "/api/orders/5",
		map[string]any{"status": "accepted"}, "tok")

	require.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "admin access required", errorMessage(t, rec))
	assert.False(t, containsCall(env.Stub, "/orders/5"), "forbidden request must not be forwarded")
}

func TestOrderStatusUpdate_InvalidStatusRejected(t *testing.T) {
	env := newTestEnv(t)
	env.Stub.handle("GET /auth/me", meHandler(2, "admin@y.com", true))

	rec := env.doJSON(http.MethodPut, "/api/orders/5",
		map[string]any{"status": "shipped"}, "tok")

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid order status", errorMessage(t, rec))
	assert.False(t, containsCall(env.Stub, "/orders/5"))
}

func TestOrderStatusUpdate_AdminForwarded(t *testing.T) {
	env := newTestEnv(t)
	env.Stub.handle("GET /auth/me", meHandler(2, "admin@y.com", true))
	env.Stub.handle("PUT /orders/5/status", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Status string `json:"status"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "accepted", body.Status)
		respondJSON(w, http.StatusOK, `{"id": 5, "status": "accepted", "items": []}`)
	})

	rec := env.doJSON(http.MethodPut, "/api/orders/5",
		map[string]any{"status": "accepted"}, "tok")

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 1, env.Stub.callCount("PUT /orders/5/status"))
}

func TestAdminOrders_ForwardsOwnID(t *testing.T) {
	env := newTestEnv(t)
	env.Stub.handle("GET /auth/me", meHandler(2, "admin@y.com", true))
	env.Stub.handle("GET /orders/admin/2", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, `[]`)
	})

	rec := env.doJSON(http.MethodGet, "/api/orders/admin", nil, "tok")

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 1, env.Stub.callCount("GET /orders/admin/2"))
}
