package httpserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/auth"
	"github.com/Skotchmaster/storefront/internal/logging"
)

type AuthHTTP struct {
	Svc *auth.Service
}

func (h *AuthHTTP) respondSession(c echo.Context, status int, sess auth.Session) error {
	c.SetCookie(createCookie(sessionCookie, sess.Token, sess.ExpiresAt))
	return c.JSON(status, sess)
}

func authStatus(err error) (int, string) {
	switch {
	case errors.Is(err, auth.ErrValidation):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, auth.ErrInvalidCredentials):
		return http.StatusUnauthorized, "invalid email or password"
	case errors.Is(err, auth.ErrEmailTaken):
		return http.StatusConflict, "email already registered"
	case errors.Is(err, auth.ErrUnknownProvider):
		return http.StatusNotFound, "unknown provider"
	}
	return http.StatusInternalServerError, "internal error"
}

func (h *AuthHTTP) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "login")

	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		l.Warn("login_error", "status", 400, "error", err)
		return c.JSON(http.StatusBadRequest, "invalid body")
	}

	sess, err := h.Svc.Login(ctx, req.Email, req.Password)
	if err != nil {
		status, msg := authStatus(err)
		l.Warn("login_error", "status", status, "error", err)
		return c.JSON(status, msg)
	}
	return h.respondSession(c, http.StatusOK, sess)
}

func (h *AuthHTTP) Register(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "register")

	var req auth.RegisterRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("register_error", "status", 400, "error", err)
		return c.JSON(http.StatusBadRequest, "invalid body")
	}

	sess, err := h.Svc.Register(ctx, req)
	if err != nil {
		status, msg := authStatus(err)
		l.Warn("register_error", "status", status, "error", err)
		return c.JSON(status, msg)
	}
	return h.respondSession(c, http.StatusCreated, sess)
}

func (h *AuthHTTP) SocialLogin(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "social.login")

	sess, err := h.Svc.SocialLogin(ctx, c.Param("provider"))
	if err != nil {
		status, msg := authStatus(err)
		l.Warn("social_login_error", "status", status, "error", err)
		return c.JSON(status, msg)
	}
	return h.respondSession(c, http.StatusOK, sess)
}

func (h *AuthHTTP) Providers(c echo.Context) error {
	return c.JSON(http.StatusOK, auth.Providers())
}

func (h *AuthHTTP) Logout(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "logout")

	c.SetCookie(deleteCookie(sessionCookie))
	if err := h.Svc.Logout(ctx); err != nil {
		status, msg := authStatus(err)
		l.Warn("logout_error", "status", status, "error", err)
		return c.JSON(status, msg)
	}
	return c.JSON(http.StatusOK, "signed out")
}

func (h *AuthHTTP) Me(c echo.Context) error {
	u, ok := sessionUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, "unauthorized")
	}
	return c.JSON(http.StatusOK, u)
}
