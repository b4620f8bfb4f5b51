package httpserver

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/checkout"
	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/store"
)

type OrderHTTP struct {
	Store    *store.Store
	Checkout *checkout.Service
}

func (h *OrderHTTP) ListOrders(c echo.Context) error {
	orders := h.Store.Snapshot().Orders
	if orders == nil {
		orders = []models.Order{}
	}
	return c.JSON(http.StatusOK, orders)
}

func (h *OrderHTTP) Quote(c echo.Context) error {
	return c.JSON(http.StatusOK, checkout.Quote(h.Store.Snapshot().Cart))
}

func (h *OrderHTTP) PlaceOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "place.order")

	var req checkout.Request
	if err := c.Bind(&req); err != nil {
		l.Warn("place_order_error", "status", 400, "error", err)
		return c.JSON(http.StatusBadRequest, "invalid body")
	}

	order, err := h.Checkout.Place(ctx, req)
	if err != nil {
		var ve *checkout.ValidationError
		switch {
		case errors.As(err, &ve):
			l.Warn("place_order_error", "status", 422, "error", err)
			return c.JSON(http.StatusUnprocessableEntity, map[string]any{
				"error":  ve.Title,
				"detail": ve.Detail,
				"fields": ve.Fields,
			})
		case errors.Is(err, checkout.ErrEmptyCart):
			l.Warn("place_order_error", "status", 400, "error", err)
			return c.JSON(http.StatusBadRequest, "cart is empty")
		case errors.Is(err, checkout.ErrPayment):
			l.Warn("place_order_error", "status", 402, "error", err)
			return c.JSON(http.StatusPaymentRequired, "payment failed")
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			l.Warn("place_order_cancelled", "status", 503, "error", err)
			return c.JSON(http.StatusServiceUnavailable, "checkout cancelled")
		}
		l.Error("place_order_error", "status", 500, "error", err)
		return c.JSON(http.StatusInternalServerError, "internal error")
	}

	l.Info("order placed successfully", "order_id", order.ID)
	return c.JSON(http.StatusCreated, order)
}
