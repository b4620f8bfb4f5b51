package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/notify"
)

type NotificationHTTP struct {
	Queue *notify.Queue
}

func (h *NotificationHTTP) List(c echo.Context) error {
	list := h.Queue.List()
	if list == nil {
		list = []notify.Notification{}
	}
	return c.JSON(http.StatusOK, list)
}

func (h *NotificationHTTP) Remove(c echo.Context) error {
	h.Queue.Remove(c.Param("id"))
	return c.NoContent(http.StatusNoContent)
}

func (h *NotificationHTTP) ClearAll(c echo.Context) error {
	h.Queue.ClearAll()
	return c.NoContent(http.StatusNoContent)
}

func (h *NotificationHTTP) Trigger(c echo.Context) error {
	if !h.Queue.Trigger(c.Param("id"), c.Param("label")) {
		return c.JSON(http.StatusNotFound, "action not found")
	}
	return c.NoContent(http.StatusNoContent)
}
