package httpserver

import (
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	ecM "github.com/labstack/echo/v4/middleware"

	"github.com/Skotchmaster/storefront_gateway/internal/backend"
	"github.com/Skotchmaster/storefront_gateway/internal/inflight"
	"github.com/Skotchmaster/storefront_gateway/internal/session"
)

type Deps struct {
	Log      *slog.Logger
	Backend  *backend.Client
	Sessions *session.Store
	Bus      *session.Bus
	Guard    *inflight.Guard
}

type Validator struct {
	validate *validator.Validate
}

func (v *Validator) Validate(i any) error {
	return v.validate.Struct(i)
}

func common() []echo.MiddlewareFunc {
	return []echo.MiddlewareFunc{
		ecM.Recover(),
		ecM.RequestID(),
		ecM.Logger(),
		ecM.Secure(),
	}
}

func Register(e *echo.Echo, d *Deps) {
	if d.Log == nil {
		d.Log = slog.Default()
	}
	if d.Guard == nil {
		d.Guard = inflight.New()
	}

	e.Validator = &Validator{validate: validator.New()}

	for _, m := range common() {
		e.Use(m)
	}
	e.Use(contextLogger(d.Log))

	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	auth := &AuthHandler{Backend: d.Backend, Sessions: d.Sessions}
	products := &ProductHandler{Backend: d.Backend}
	cart := &CartHandler{Backend: d.Backend, Guard: d.Guard, Bus: d.Bus}
	orders := &OrderHandler{Backend: d.Backend, Bus: d.Bus}

	api := e.Group("/api")

	api.POST("/auth/login", auth.Login)
	api.POST("/auth/register", auth.Register)
	api.GET("/auth/me", auth.Me, RequireAuth())
	api.POST("/auth/logout", auth.Logout, RequireAuth())

	api.GET("/products", products.List)
	api.GET("/products/:id", products.Get)
	api.POST("/products", products.Create, RequireAuth())
	api.PUT("/products/:id", products.Update, RequireAuth())
	api.DELETE("/products/:id", products.Delete, RequireAuth())
	api.PUT("/products/:id/status", products.UpdateStatus, RequireAuth(), RequireAdmin(d.Backend))
	api.GET("/admin/products", products.AdminList, RequireAuth(), RequireAdmin(d.Backend))

	crt := api.Group("/cart", RequireAuth())
	crt.GET("/:userId", cart.Get)
	crt.GET("/:userId/count", cart.Count)
	crt.POST("/:userId/add", cart.Add)
	crt.PUT("/:userId/update", cart.Update)
	crt.DELETE("/:userId/remove", cart.Remove)
	crt.DELETE("/:userId/clear", cart.Clear)

	api.GET("/orders", orders.List, RequireAuth())
	api.POST("/orders", orders.Create, RequireAuth())
	api.GET("/orders/admin", orders.AdminList, RequireAuth(), RequireAdmin(d.Backend))
	api.PUT("/orders/:id", orders.UpdateStatus, RequireAuth(), RequireAdmin(d.Backend))
}
