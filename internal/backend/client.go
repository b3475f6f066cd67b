// Package backend is the typed client for the storefront's backend REST
// API. It forwards the caller's bearer token, applies request timeouts and
// a circuit breaker, and turns the backend's error bodies ({"detail": ...})
// into APIError values the HTTP layer can surface.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/Skotchmaster/storefront_gateway/internal/models"
)

// APIError carries the backend's status code and a best-effort message.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("backend: %d %s", e.Status, e.Message)
}

// IsUnavailable reports whether err means the backend cannot be reached at
// all, either directly or because the breaker is open.
func IsUnavailable(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}

type result struct {
	status int
	body   []byte
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[result]
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		breaker: gobreaker.NewCircuitBreaker[result](gobreaker.Settings{
			Name:    "backend",
			Timeout: 30 * time.Second,
		}),
	}
}

// do executes one backend round trip. Transport failures count against the
// breaker; HTTP error statuses are the backend answering and do not.
func (c *Client) do(ctx context.Context, method, path, token string, body any) (result, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return result{}, fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return result{}, fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	return c.breaker.Execute(func() (result, error) {
		resp, err := c.httpClient.Do(req)
		if err != nil {
			return result{}, fmt.Errorf("do request: %w", err)
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return result{}, fmt.Errorf("read response: %w", err)
		}
		return result{status: resp.StatusCode, body: data}, nil
	})
}

// call is do plus response shaping: 2xx decodes into dst (when non-nil),
// anything else becomes an APIError with the backend's detail string or
// fallback when the body is not JSON.
func (c *Client) call(ctx context.Context, method, path, token string, body, dst any, fallback string) error {
	res, err := c.do(ctx, method, path, token, body)
	if err != nil {
		return err
	}

	if res.status < 200 || res.status > 299 {
		return &APIError{Status: res.status, Message: detailMessage(res.body, fallback)}
	}

	if dst == nil {
		return nil
	}
	if err := json.Unmarshal(res.body, dst); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func detailMessage(body []byte, fallback string) string {
	var e struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(body, &e); err == nil && e.Detail != "" {
		return e.Detail
	}
	return fallback
}

// --- auth ---

type RegisterPayload struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	City      string `json:"city"`
	Country   string `json:"country"`
	Phone     string `json:"phone"`
}

func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	var resp struct {
		AccessToken string `json:"access_token"`
	}
	body := map[string]string{"email": email, "password": password}
	if err := c.call(ctx, http.MethodPost, "/auth/login", "", body, &resp, "invalid credentials"); err != nil {
		return "", err
	}
	return resp.AccessToken, nil
}

func (c *Client) Register(ctx context.Context, p RegisterPayload) (models.User, error) {
	var user models.User
	err := c.call(ctx, http.MethodPost, "/auth/register", "", p, &user, "registration failed")
	return user, err
}

func (c *Client) Me(ctx context.Context, token string) (models.User, error) {
	var user models.User
	err := c.call(ctx, http.MethodGet, "/auth/me", token, nil, &user, "invalid token")
	return user, err
}

// --- products ---

type ProductPayload struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	ImageURL    string  `json:"image_url,omitempty"`
	Quantity    uint    `json:"quantity"`
	SellerID    uint    `json:"seller_id"`
}

func (c *Client) Products(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	err := c.call(ctx, http.MethodGet, "/products/", "", nil, &products, "failed to fetch products")
	return products, err
}

func (c *Client) Product(ctx context.Context, id string) (models.Product, error) {
	var product models.Product
	err := c.call(ctx, http.MethodGet, "/products/"+url.PathEscape(id), "", nil, &product, "product not found")
	return product, err
}

func (c *Client) CreateProduct(ctx context.Context, token string, p ProductPayload) (models.Product, error) {
	var product models.Product
	err := c.call(ctx, http.MethodPost, "/products/", token, p, &product, "failed to create product")
	return product, err
}

func (c *Client) UpdateProduct(ctx context.Context, token, id string, p ProductPayload) (models.Product, error) {
	var product models.Product
	err := c.call(ctx, http.MethodPut, "/products/"+url.PathEscape(id), token, p, &product, "failed to update product")
	return product, err
}

func (c *Client) DeleteProduct(ctx context.Context, token, id string) error {
	return c.call(ctx, http.MethodDelete, "/products/"+url.PathEscape(id), token, nil, nil, "failed to delete product")
}

func (c *Client) UpdateProductStatus(ctx context.Context, token, id string, status models.ProductStatus) (models.Product, error) {
	var product models.Product
	body := map[string]models.ProductStatus{"status": status}
	err := c.call(ctx, http.MethodPut, "/products/"+url.PathEscape(id)+"/status", token, body, &product, "failed to update product status")
	return product, err
}

// --- cart ---

func (c *Client) Cart(ctx context.Context, token, userID string) (models.Cart, error) {
	var cart models.Cart
	err := c.call(ctx, http.MethodGet, "/cart/"+url.PathEscape(userID), token, nil, &cart, "failed to fetch cart")
	return cart, err
}

func (c *Client) AddCartItem(ctx context.Context, token, userID string, productID, quantity uint) (models.CartItem, error) {
	var item models.CartItem
	body := map[string]uint{"product_id": productID, "quantity": quantity}
	err := c.call(ctx, http.MethodPost, "/cart/"+url.PathEscape(userID)+"/add", token, body, &item, "failed to add item to cart")
	return item, err
}

func (c *Client) UpdateCartItem(ctx context.Context, token, userID string, productID, quantity uint) (models.CartItem, error) {
	var item models.CartItem
	body := map[string]uint{"product_id": productID, "quantity": quantity}
	err := c.call(ctx, http.MethodPut, "/cart/"+url.PathEscape(userID)+"/update", token, body, &item, "failed to update quantity")
	return item, err
}

func (c *Client) RemoveCartItem(ctx context.Context, token, userID string, productID uint) error {
	body := map[string]uint{"product_id": productID}
	return c.call(ctx, http.MethodDelete, "/cart/"+url.PathEscape(userID)+"/remove", token, body, nil, "failed to remove item")
}

func (c *Client) ClearCart(ctx context.Context, token, userID string) error {
	return c.call(ctx, http.MethodDelete, "/cart/"+url.PathEscape(userID)+"/clear", token, nil, nil, "failed to clear cart")
}

// --- orders ---

type OrderItemPayload struct {
	ProductID uint `json:"product_id"`
	Quantity  uint `json:"quantity"`
}

type OrderPayload struct {
	CustomerName string             `json:"customer_name"`
	Address      string             `json:"address"`
	Phone        string             `json:"phone"`
	Email        string             `json:"email"`
	Items        []OrderItemPayload `json:"items"`
}

func (c *Client) Orders(ctx context.Context, token string) ([]models.Order, error) {
	var orders []models.Order
	err := c.call(ctx, http.MethodGet, "/orders/", token, nil, &orders, "failed to fetch orders")
	return orders, err
}

func (c *Client) UserOrders(ctx context.Context, token, email string) ([]models.Order, error) {
	var orders []models.Order
	err := c.call(ctx, http.MethodGet, "/orders/user/"+url.PathEscape(email), token, nil, &orders, "failed to fetch orders")
	return orders, err
}

func (c *Client) AdminOrders(ctx context.Context, token string, adminID uint) ([]models.Order, error) {
	var orders []models.Order
	err := c.call(ctx, http.MethodGet, fmt.Sprintf("/orders/admin/%d", adminID), token, nil, &orders, "failed to fetch orders")
	return orders, err
}

func (c *Client) CreateOrder(ctx context.Context, token string, userID uint, p OrderPayload) (models.Order, error) {
	var order models.Order
	err := c.call(ctx, http.MethodPost, fmt.Sprintf("/orders/%d", userID), token, p, &order, "failed to create order")
	return order, err
}

func (c *Client) UpdateOrderStatus(ctx context.Context, token, id string, status models.OrderStatus) (models.Order, error) {
	var order models.Order
	body := map[string]models.OrderStatus{"status": status}
	err := c.call(ctx, http.MethodPut, "/orders/"+url.PathEscape(id)+"/status", token, body, &order, "failed to update order status")
	return order, err
}
