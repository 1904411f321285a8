package audit

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
)

// Handler handles HTTP requests for audit log operations. Handlers are thin:
// bind request, call service, render response.
type Handler struct {
	service AuditService
}

// NewHandler creates a new audit handler.
func NewHandler(service AuditService) *Handler {
	return &Handler{service: service}
}

// Activity returns the change feed across calendars (GET /audit?page=N).
func (h *Handler) Activity(c echo.Context) error {
	page, _ := strconv.Atoi(c.QueryParam("page"))

	feed, err := h.service.GetActivity(c.Request().Context(), page)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, feed)
}

// CalendarHistory returns the recent changes of one calendar
// (GET /calendars/:id/history). Deleted calendars keep their history.
func (h *Handler) CalendarHistory(c echo.Context) error {
	history, err := h.service.GetCalendarHistory(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, history)
}
