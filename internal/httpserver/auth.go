package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront_gateway/internal/backend"
	"github.com/Skotchmaster/storefront_gateway/internal/logging"
	"github.com/Skotchmaster/storefront_gateway/internal/session"
)

type AuthHandler struct {
	Backend  *backend.Client
	Sessions *session.Store
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (h *AuthHandler) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.login")

	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "invalid body")
	}
	if err := c.Validate(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "email and password are required")
	}

	tok, err := h.Backend.Login(ctx, req.Email, req.Password)
	if err != nil {
		l.Warn("login rejected", "error", err)
		return backendError(c, err)
	}

	user, err := h.Backend.Me(ctx, tok)
	if err != nil {
		// Login succeeded but the profile lookup did not. The token is
		// still usable, so hand it over with the minimal role.
		l.Warn("profile lookup failed after login", "error", err)
		return c.JSON(http.StatusOK, echo.Map{
			"token": tok,
			"user":  echo.Map{"role": "user"},
		})
	}

	if _, err := h.Sessions.Create(ctx, tok, user); err != nil {
		l.Error("session create failed", "error", err)
	}

	l.Info("login ok", "user_id", user.ID)
	return c.JSON(http.StatusOK, echo.Map{
		"token": tok,
		"user":  user.View(),
	})
}

type registerRequest struct {
	Username  string `json:"username"   validate:"required"`
	Email     string `json:"email"      validate:"required"`
	Password  string `json:"password"   validate:"required,min=6"`
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name"  validate:"required"`
	City      string `json:"city"       validate:"required"`
	Country   string `json:"country"    validate:"required"`
	Phone     string `json:"phone"      validate:"required"`
}

func (r registerRequest) complete() bool {
	return r.Username != "" && r.Email != "" && r.Password != "" &&
		r.FirstName != "" && r.LastName != "" && r.City != "" &&
		r.Country != "" && r.Phone != ""
}

func (h *AuthHandler) Register(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.register")

	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "invalid body")
	}
	if err := c.Validate(&req); err != nil {
		msg := "all fields are required"
		if req.complete() {
			msg = "password must be at least 6 characters"
		}
		return errorJSON(c, http.StatusBadRequest, msg)
	}

	user, err := h.Backend.Register(ctx, backend.RegisterPayload{
		Username:  req.Username,
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		City:      req.City,
		Country:   req.Country,
		Phone:     req.Phone,
	})
	if err != nil {
		l.Warn("registration rejected", "error", err)
		return backendError(c, err)
	}

	l.Info("registration ok", "user_id", user.ID)
	return c.JSON(http.StatusOK, echo.Map{
		"message": "registration successful",
		"user":    user,
	})
}

func (h *AuthHandler) Me(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := h.Backend.Me(ctx, token(c))
	if err != nil {
		return backendError(c, err)
	}
	return c.JSON(http.StatusOK, user.View())
}

func (h *AuthHandler) Logout(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.logout")

	if err := h.Sessions.Delete(ctx, token(c)); err != nil {
		l.Error("session delete failed", "error", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "logged out"})
}
