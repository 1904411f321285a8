package app

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/keyxmakerx/almanac/internal/middleware"
	"github.com/keyxmakerx/almanac/internal/plugins/audit"
	"github.com/keyxmakerx/almanac/internal/plugins/calendar"
)

// RegisterRoutes sets up all application routes. This is the single place
// where plugin routes are mounted.
func (a *App) RegisterRoutes() {
	e := a.Echo

	// Health check for container monitoring. Reports the cache as degraded
	// rather than failing, since every result can be computed without it.
	e.GET("/healthz", a.health)

	// --- API Routes ---
	api := e.Group("/api/v1")

	gmOnly := middleware.RequireGMKey(a.Config.Auth.GMKeyHash, a.Config.IsDevelopment())
	calendar.RegisterRoutes(api, calendar.NewHandler(a.Calendars), gmOnly)
	audit.RegisterRoutes(api, audit.NewHandler(a.Audit), gmOnly)
}

type healthResponse struct {
	Status    string `json:"status"`
	Cache     string `json:"cache"`
	Calendars int    `json:"calendars"`
}

func (a *App) health(c echo.Context) error {
	ctx := c.Request().Context()
	resp := healthResponse{Status: "ok", Cache: "disabled"}

	if a.Redis != nil {
		resp.Cache = "ok"
		if err := a.Redis.Ping(ctx).Err(); err != nil {
			resp.Cache = "unreachable"
		}
	}

	list, err := a.Calendars.ListCalendars(ctx)
	if err != nil {
		return err
	}
	resp.Calendars = len(list)

	return c.JSON(http.StatusOK, resp)
}
