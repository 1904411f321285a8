package calendar

import (
	"github.com/labstack/echo/v4"
)

// RegisterRoutes mounts the calendar API on g (normally /api/v1). Routes
// that change a calendar require gmOnly.
func RegisterRoutes(g *echo.Group, h *Handler, gmOnly echo.MiddlewareFunc) {
	cg := g.Group("/calendars")

	// Reads and conversions are open to everyone.
	cg.GET("", h.List)
	cg.GET("/:id", h.Get)
	cg.GET("/:id/date", h.Date)
	cg.POST("/:id/timestamp", h.Timestamp)
	cg.GET("/:id/display", h.Display)
	cg.POST("/:id/view", h.View)
	cg.POST("/:id/visibility", h.Visibility)
	cg.POST("/:id/notes.ics", h.ExportICS)

	// Configuration and clock changes (game master only).
	cg.PUT("/:id", h.Put, gmOnly)
	cg.POST("/:id/import", h.Import, gmOnly)
	cg.DELETE("/:id", h.Delete, gmOnly)
	cg.POST("/:id/advance", h.Advance, gmOnly)
}
