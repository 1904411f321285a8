package audit

import (
	"github.com/labstack/echo/v4"
)

// RegisterRoutes mounts the audit routes on g (normally /api/v1). The feed
// across calendars is for the game master; a single calendar's history is
// open like the calendar itself.
func RegisterRoutes(g *echo.Group, h *Handler, gmOnly echo.MiddlewareFunc) {
	g.GET("/audit", h.Activity, gmOnly)
	g.GET("/calendars/:id/history", h.CalendarHistory)
}
