package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/app"
)

type Deps struct {
	CatalogHandler      *CatalogHTTP
	CartHandler         *CartHTTP
	OrderHandler        *OrderHTTP
	AuthHandler         *AuthHTTP
	NotificationHandler *NotificationHTTP
	Sessions            TokenParser
}

func NewDeps(a *app.App) *Deps {
	return &Deps{
		CatalogHandler:      &CatalogHTTP{Loader: a.Catalog, Store: a.Store, Search: a.Search},
		CartHandler:         &CartHTTP{Loader: a.Catalog, Store: a.Store, Notify: a.Notify},
		OrderHandler:        &OrderHTTP{Store: a.Store, Checkout: a.Checkout},
		AuthHandler:         &AuthHTTP{Svc: a.Auth},
		NotificationHandler: &NotificationHTTP{Queue: a.Notify},
		Sessions:            a.Auth,
	}
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	e.GET("/products", d.CatalogHandler.ListProducts)
	e.GET("/products/:id", d.CatalogHandler.GetProduct)
	e.POST("/products/refresh", d.CatalogHandler.Refresh)

	e.GET("/search", d.CatalogHandler.SearchProducts)
	e.POST("/search/voice", d.CatalogHandler.VoiceSearch)
	e.GET("/search/recent", d.CatalogHandler.RecentSearches)
	e.DELETE("/search/recent", d.CatalogHandler.ClearRecentSearches)

	cart := e.Group("/cart")
	cart.GET("", d.CartHandler.GetCart)
	cart.POST("", d.CartHandler.AddToCart)
	cart.DELETE("", d.CartHandler.ClearCart)
	cart.PATCH("/items/:id", d.CartHandler.UpdateQuantity)
	cart.DELETE("/items/:id", d.CartHandler.RemoveFromCart)

	wishlist := e.Group("/wishlist")
	wishlist.GET("", d.CartHandler.GetWishlist)
	wishlist.POST("", d.CartHandler.AddToWishlist)
	wishlist.DELETE("/:id", d.CartHandler.RemoveFromWishlist)

	e.GET("/orders", d.OrderHandler.ListOrders)
	e.GET("/checkout/quote", d.OrderHandler.Quote)
	e.POST("/checkout", d.OrderHandler.PlaceOrder)

	authGroup := e.Group("/auth")
	authGroup.POST("/login", d.AuthHandler.Login)
	authGroup.POST("/register", d.AuthHandler.Register)
	authGroup.GET("/providers", d.AuthHandler.Providers)
	authGroup.POST("/social/:provider", d.AuthHandler.SocialLogin)
	authGroup.POST("/logout", d.AuthHandler.Logout)
	authGroup.GET("/me", d.AuthHandler.Me, RequireSession(d.Sessions))

	n := e.Group("/notifications")
	n.GET("", d.NotificationHandler.List)
	n.DELETE("", d.NotificationHandler.ClearAll)
	n.DELETE("/:id", d.NotificationHandler.Remove)
	n.POST("/:id/actions/:label", d.NotificationHandler.Trigger)
}
