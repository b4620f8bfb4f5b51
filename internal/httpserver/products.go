package httpserver

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/storefront/internal/catalog"
	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/search"
	"github.com/Skotchmaster/storefront/internal/store"
)

const defaultPageSize = 12

type CatalogHTTP struct {
	Loader *catalog.Loader
	Store  *store.Store
	Search *search.Service
}

func pathID(c echo.Context) (int, error) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return 0, errors.New("invalid id")
	}
	return id, nil
}

func queryInt(c echo.Context, name string, def int) int {
	v, err := strconv.Atoi(c.QueryParam(name))
	if err != nil {
		return def
	}
	return v
}

func parseFilters(c echo.Context) (search.Filters, error) {
	f := search.DefaultFilters()
	if v := c.QueryParam("price_min"); v != "" {
		d, err := decimal.NewFromString(v)
		if err != nil {
			return f, errors.New("invalid price_min")
		}
		f.PriceMin = d
	}
	if v := c.QueryParam("price_max"); v != "" {
		d, err := decimal.NewFromString(v)
		if err != nil {
			return f, errors.New("invalid price_max")
		}
		f.PriceMax = d
	}
	if v := c.QueryParam("min_rating"); v != "" {
		r, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return f, errors.New("invalid min_rating")
		}
		f.MinRating = r
	}
	if v := c.QueryParam("categories"); v != "" {
		for _, cat := range strings.Split(v, ",") {
			if cat = strings.TrimSpace(cat); cat != "" {
				f.Categories = append(f.Categories, cat)
			}
		}
	}
	f.OnSale = c.QueryParam("on_sale") == "true"
	return f, nil
}

func (h *CatalogHTTP) ListProducts(c echo.Context) error {
	l := logging.FromContext(c.Request().Context()).With("handler", "list.products")

	f, err := parseFilters(c)
	if err != nil {
		l.Warn("list_products_error", "status", 400, "error", err)
		return c.JSON(http.StatusBadRequest, err.Error())
	}

	items := search.Apply(h.Store.Snapshot().Products, "", f)
	page := search.Paginate(items, queryInt(c, "page", 1), queryInt(c, "size", defaultPageSize))
	return c.JSON(http.StatusOK, page)
}

func (h *CatalogHTTP) GetProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "get.product")

	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, err.Error())
	}

	p, err := h.Loader.Product(ctx, id)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			l.Warn("get_product_not_found", "status", 404, "id", id)
			return c.JSON(http.StatusNotFound, "product not found")
		}
		l.Error("get_product_error", "status", 502, "error", err)
		return c.JSON(http.StatusBadGateway, "catalog unavailable")
	}
	return c.JSON(http.StatusOK, map[string]any{
		"product": p,
		"pricing": models.BreakdownFor(p),
	})
}

func (h *CatalogHTTP) Refresh(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "refresh.products")

	if err := h.Loader.Load(ctx); err != nil {
		l.Error("refresh_products_error", "status", 502, "error", err)
		return c.JSON(http.StatusBadGateway, "catalog unavailable")
	}
	n := len(h.Store.Snapshot().Products)
	l.Info("products refreshed", "count", n)
	return c.JSON(http.StatusOK, map[string]int{"count": n})
}

func (h *CatalogHTTP) SearchProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "search.products")

	f, err := parseFilters(c)
	if err != nil {
		l.Warn("search_products_error", "status", 400, "error", err)
		return c.JSON(http.StatusBadRequest, err.Error())
	}

	q := c.QueryParam("q")
	items := h.Search.Search(ctx, q, f)
	page := search.Paginate(items, queryInt(c, "page", 1), queryInt(c, "size", defaultPageSize))
	return c.JSON(http.StatusOK, map[string]any{
		"query":         q,
		"activeFilters": f.ActiveCount(),
		"results":       page,
	})
}

func (h *CatalogHTTP) VoiceSearch(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "voice.search")

	var req struct {
		Transcript string `json:"transcript"`
	}
	if err := c.Bind(&req); err != nil {
		l.Warn("voice_search_error", "status", 400, "error", err)
		return c.JSON(http.StatusBadRequest, "invalid body")
	}

	q, items := h.Search.Voice(ctx, req.Transcript, search.DefaultFilters())
	if q == "" {
		return c.JSON(http.StatusUnprocessableEntity, "could not understand the search")
	}
	return c.JSON(http.StatusOK, map[string]any{"query": q, "results": items})
}

func (h *CatalogHTTP) RecentSearches(c echo.Context) error {
	return c.JSON(http.StatusOK, h.Search.Recent.List())
}

func (h *CatalogHTTP) ClearRecentSearches(c echo.Context) error {
	h.Search.Recent.Clear(c.Request().Context())
	return c.NoContent(http.StatusNoContent)
}
