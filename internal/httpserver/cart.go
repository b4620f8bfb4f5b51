package httpserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/storefront/internal/catalog"
	"github.com/Skotchmaster/storefront/internal/checkout"
	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/notify"
	"github.com/Skotchmaster/storefront/internal/store"
)

type CartHTTP struct {
	Loader *catalog.Loader
	Store  *store.Store
	Notify *notify.Queue
}

type cartView struct {
	Items     []models.CartItem `json:"items"`
	ItemCount int               `json:"itemCount"`
	Total     decimal.Decimal   `json:"total"`
	Quote     checkout.Totals   `json:"quote"`
}

func newCartView(st store.State) cartView {
	items := st.Cart
	if items == nil {
		items = []models.CartItem{}
	}
	return cartView{
		Items:     items,
		ItemCount: st.CartItemCount(),
		Total:     st.CartTotal(),
		Quote:     checkout.Quote(st.Cart),
	}
}

type productRef struct {
	ProductID int `json:"product_id"`
}

// resolveProduct reads {product_id} and looks it up. When ok is false the
// response has already been written.
func (h *CartHTTP) resolveProduct(c echo.Context, handler string) (p models.Product, ok bool, err error) {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", handler)

	var req productRef
	if err := c.Bind(&req); err != nil {
		l.Warn(handler+"_error", "status", 400, "error", err)
		return models.Product{}, false, c.JSON(http.StatusBadRequest, "invalid body")
	}
	if req.ProductID <= 0 {
		l.Warn(handler+"_error", "status", 400)
		return models.Product{}, false, c.JSON(http.StatusBadRequest, "product_id required")
	}

	p, err = h.Loader.Product(ctx, req.ProductID)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			l.Warn(handler+"_not_found", "status", 404, "product_id", req.ProductID)
			return models.Product{}, false, c.JSON(http.StatusNotFound, "product not found")
		}
		l.Error(handler+"_error", "status", 502, "error", err)
		return models.Product{}, false, c.JSON(http.StatusBadGateway, "catalog unavailable")
	}
	return p, true, nil
}

func (h *CartHTTP) GetCart(c echo.Context) error {
	return c.JSON(http.StatusOK, newCartView(h.Store.Snapshot()))
}

func (h *CartHTTP) AddToCart(c echo.Context) error {
	p, ok, err := h.resolveProduct(c, "add_to_cart")
	if !ok {
		return err
	}

	h.Store.AddToCart(p)
	h.Notify.Add(notify.AddedToCart(p.Title))

	logging.FromContext(c.Request().Context()).Info("item added successfully to cart", "product_id", p.ID)
	return c.JSON(http.StatusCreated, newCartView(h.Store.Snapshot()))
}

func (h *CartHTTP) UpdateQuantity(c echo.Context) error {
	l := logging.FromContext(c.Request().Context()).With("handler", "update.quantity")

	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, err.Error())
	}
	var req struct {
		Quantity *int `json:"quantity"`
	}
	if err := c.Bind(&req); err != nil || req.Quantity == nil {
		l.Warn("update_quantity_error", "status", 400, "error", err)
		return c.JSON(http.StatusBadRequest, "quantity required")
	}
	if _, ok := h.Store.Snapshot().CartItem(id); !ok {
		l.Warn("update_quantity_not_found", "status", 404, "product_id", id)
		return c.JSON(http.StatusNotFound, "item not found")
	}

	h.Store.UpdateQuantity(id, *req.Quantity)
	return c.JSON(http.StatusOK, newCartView(h.Store.Snapshot()))
}

func (h *CartHTTP) RemoveFromCart(c echo.Context) error {
	l := logging.FromContext(c.Request().Context()).With("handler", "delete.one.from.cart")

	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, err.Error())
	}
	item, ok := h.Store.Snapshot().CartItem(id)
	if !ok {
		l.Warn("delete_one_from_cart_not_found", "status", 404, "product_id", id)
		return c.JSON(http.StatusNotFound, "item not found")
	}

	h.Store.RemoveFromCart(id)
	h.Notify.Add(notify.RemovedFromCart(item.Title))
	return c.JSON(http.StatusOK, newCartView(h.Store.Snapshot()))
}

func (h *CartHTTP) ClearCart(c echo.Context) error {
	h.Store.ClearCart()
	logging.FromContext(c.Request().Context()).Info("cart successfully cleared")
	return c.JSON(http.StatusOK, newCartView(h.Store.Snapshot()))
}

func (h *CartHTTP) GetWishlist(c echo.Context) error {
	items := h.Store.Snapshot().Wishlist
	if items == nil {
		items = []models.Product{}
	}
	return c.JSON(http.StatusOK, items)
}

func (h *CartHTTP) AddToWishlist(c echo.Context) error {
	p, ok, err := h.resolveProduct(c, "add_to_wishlist")
	if !ok {
		return err
	}

	if !h.Store.IsInWishlist(p.ID) {
		h.Store.AddToWishlist(p)
		h.Notify.Add(notify.AddedToWishlist(p.Title))
	}
	return c.JSON(http.StatusCreated, h.Store.Snapshot().Wishlist)
}

func (h *CartHTTP) RemoveFromWishlist(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, err.Error())
	}
	if !h.Store.IsInWishlist(id) {
		return c.JSON(http.StatusNotFound, "item not found")
	}
	h.Store.RemoveFromWishlist(id)
	return c.NoContent(http.StatusNoContent)
}
