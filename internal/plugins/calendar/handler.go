package calendar

import (
	"context"
	"io"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/keyxmakerx/almanac/internal/apperror"
	"github.com/keyxmakerx/almanac/internal/reckoning"
)

// maxImportBytes bounds uploaded calendar documents.
const maxImportBytes = 10 * 1024 * 1024

// Handler processes HTTP requests for the calendar plugin.
type Handler struct {
	svc CalendarService
}

// NewHandler creates a new calendar Handler.
func NewHandler(svc CalendarService) *Handler {
	return &Handler{svc: svc}
}

// List returns a summary of every calendar.
// GET /api/v1/calendars
func (h *Handler) List(c echo.Context) error {
	summaries, err := h.svc.ListCalendars(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, summaries)
}

// Get returns one snapshot with its full configuration.
// GET /api/v1/calendars/:id
func (h *Handler) Get(c echo.Context) error {
	snap, err := h.svc.GetCalendar(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, snap)
}

// Put replaces a calendar's configuration.
// PUT /api/v1/calendars/:id
func (h *Handler) Put(c echo.Context) error {
	var input PutCalendarInput
	if err := c.Bind(&input); err != nil {
		return apperror.NewBadRequest("invalid request body")
	}
	snap, err := h.svc.PutCalendar(actorContext(c), c.Param("id"), SourceAPI, input)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, snap)
}

// Import ingests a Simple Calendar export or a native document, sent either
// as a multipart "file" field or as the raw request body.
// POST /api/v1/calendars/:id/import
func (h *Handler) Import(c echo.Context) error {
	var src io.Reader = c.Request().Body
	if file, err := c.FormFile("file"); err == nil {
		f, openErr := file.Open()
		if openErr != nil {
			return apperror.NewBadRequest("could not read uploaded file")
		}
		defer f.Close()
		src = f
	}

	data, err := io.ReadAll(io.LimitReader(src, maxImportBytes))
	if err != nil {
		return apperror.NewBadRequest("could not read calendar document")
	}

	snap, err := h.svc.ImportCalendar(actorContext(c), c.Param("id"), SourceAPI, data)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, snap)
}

// Delete removes a calendar.
// DELETE /api/v1/calendars/:id
func (h *Handler) Delete(c echo.Context) error {
	if err := h.svc.DeleteCalendar(actorContext(c), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Advance moves the calendar clock.
// POST /api/v1/calendars/:id/advance
func (h *Handler) Advance(c echo.Context) error {
	var input AdvanceInput
	if err := c.Bind(&input); err != nil {
		return apperror.NewBadRequest("invalid request body")
	}
	snap, err := h.svc.AdvanceTime(actorContext(c), c.Param("id"), input)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, summarize(snap))
}

// Date converts a timestamp to a date.
// GET /api/v1/calendars/:id/date?timestamp=
func (h *Handler) Date(c echo.Context) error {
	ts, err := timestampParam(c)
	if err != nil {
		return err
	}
	if ts == nil {
		return apperror.NewBadRequest("timestamp is required")
	}
	result, err := h.svc.ToDate(c.Request().Context(), c.Param("id"), *ts)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, result)
}

// Timestamp converts a date to a timestamp.
// POST /api/v1/calendars/:id/timestamp
func (h *Handler) Timestamp(c echo.Context) error {
	var date reckoning.DateTime
	if err := c.Bind(&date); err != nil {
		return apperror.NewBadRequest("invalid request body")
	}
	result, err := h.svc.ToTimestamp(c.Request().Context(), c.Param("id"), date)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, result)
}

// Display returns the display bundle for a timestamp, or for the calendar's
// current time when none is given.
// GET /api/v1/calendars/:id/display?timestamp=
func (h *Handler) Display(c echo.Context) error {
	ts, err := timestampParam(c)
	if err != nil {
		return err
	}
	d, err := h.svc.Display(c.Request().Context(), c.Param("id"), ts)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, d)
}

// View returns the current, selected or visible day for a client's
// browsing state.
// POST /api/v1/calendars/:id/view
func (h *Handler) View(c echo.Context) error {
	var input ViewInput
	if err := c.Bind(&input); err != nil {
		return apperror.NewBadRequest("invalid request body")
	}
	res, err := h.svc.View(c.Request().Context(), c.Param("id"), input)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, res)
}

// Visibility returns the per-day visibility of notes in one month.
// POST /api/v1/calendars/:id/visibility
func (h *Handler) Visibility(c echo.Context) error {
	var input VisibilityInput
	if err := c.Bind(&input); err != nil {
		return apperror.NewBadRequest("invalid request body")
	}
	grid, err := h.svc.VisibilityGrid(c.Request().Context(), c.Param("id"), input)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, grid)
}

// ExportICS renders notes as an iCalendar feed.
// POST /api/v1/calendars/:id/notes.ics
func (h *Handler) ExportICS(c echo.Context) error {
	var input ExportInput
	if err := c.Bind(&input); err != nil {
		return apperror.NewBadRequest("invalid request body")
	}
	feed, err := h.svc.ExportNotesICS(c.Request().Context(), c.Param("id"), input)
	if err != nil {
		return err
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+c.Param("id")+`.ics"`)
	return c.Blob(http.StatusOK, "text/calendar; charset=utf-8", []byte(feed))
}

// timestampParam parses the optional timestamp query parameter.
func timestampParam(c echo.Context) (*int64, error) {
	q := c.QueryParam("timestamp")
	if q == "" {
		return nil, nil
	}
	ts, err := strconv.ParseInt(q, 10, 64)
	if err != nil {
		return nil, apperror.NewBadRequest("timestamp must be an integer")
	}
	return &ts, nil
}

// actorContext tags the request context with the client address so changes
// can be attributed.
func actorContext(c echo.Context) context.Context {
	return WithActor(c.Request().Context(), "api:"+c.RealIP())
}
