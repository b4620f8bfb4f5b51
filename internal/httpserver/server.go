package httpserver

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/Skotchmaster/storefront/internal/app"
)

func NewEcho(a *app.App, logger *slog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(RequestLogger(logger))
	e.Use(echomw.Secure())
	e.Use(echomw.CORS())

	Register(e, NewDeps(a))
	return e
}

func NewServer(a *app.App, logger *slog.Logger) *http.Server {
	return &http.Server{
		Addr:              ":" + strconv.Itoa(a.Config.ServerPort),
		Handler:           NewEcho(a, logger),
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
