// Package mcpserver exposes almanac's calendar calculations as MCP (Model
// Context Protocol) tools over stdio, so an assistant can convert dates and
// check note recurrence against the same calendars the API serves.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/keyxmakerx/almanac/internal/apperror"
	"github.com/keyxmakerx/almanac/internal/plugins/calendar"
	"github.com/keyxmakerx/almanac/internal/reckoning"
)

// Server wraps the MCP server with the calendar tools.
type Server struct {
	mcp *server.MCPServer
	svc calendar.CalendarService
}

// New creates an MCP server with every calendar tool registered.
func New(svc calendar.CalendarService, version string) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"Almanac",
		version,
		server.WithToolCapabilities(false),
	)

	calendarArg := mcp.WithString("calendar", mcp.Required(),
		mcp.Description("Calendar id, e.g. gregorian, golarion, harptos"))

	s.mcp.AddTool(mcp.NewTool("list_calendars",
		mcp.WithDescription("List the calendars available, with their current time."),
	), s.listCalendars)

	s.mcp.AddTool(mcp.NewTool("seconds_to_date",
		mcp.WithDescription("Convert a timestamp (seconds since year 0, day 0 of the calendar) "+
			"to a date. Month and day in the result are 0-based indexes."),
		calendarArg,
		mcp.WithNumber("timestamp", mcp.Required(), mcp.Description("Seconds since the calendar epoch; may be negative")),
	), s.secondsToDate)

	s.mcp.AddTool(mcp.NewTool("date_to_seconds",
		mcp.WithDescription("Convert a date to a timestamp. Month and day are 0-based indexes; "+
			"values outside the calendar are clamped to the nearest month, day or time."),
		calendarArg,
		mcp.WithNumber("year", mcp.Required()),
		mcp.WithNumber("month", mcp.Required(), mcp.Description("0-based month index")),
		mcp.WithNumber("day", mcp.Required(), mcp.Description("0-based day index")),
		mcp.WithNumber("hour"),
		mcp.WithNumber("minute"),
		mcp.WithNumber("second"),
	), s.dateToSeconds)

	s.mcp.AddTool(mcp.NewTool("display_date",
		mcp.WithDescription("Describe a moment the way a calendar UI shows it: month and weekday "+
			"names, season, and moon phases. Uses the calendar's current time when no timestamp is given."),
		calendarArg,
		mcp.WithNumber("timestamp", mcp.Description("Seconds since the calendar epoch")),
	), s.displayDate)

	s.mcp.AddTool(mcp.NewTool("view_position",
		mcp.WithDescription("Find the day a calendar view should highlight: the current day, the "+
			"selected day, or the day shown in the month being browsed."),
		calendarArg,
		mcp.WithString("mode", mcp.Enum(calendar.ViewModeCurrent, calendar.ViewModeSelected, calendar.ViewModeVisible),
			mcp.Description("Which position to derive; defaults to current")),
		mcp.WithNumber("selected_year"),
		mcp.WithNumber("selected_month", mcp.Description("0-based month index of the selected day")),
		mcp.WithNumber("selected_day", mcp.Description("0-based day index of the selected day")),
		mcp.WithNumber("visible_year"),
		mcp.WithNumber("visible_month", mcp.Description("0-based index of the month being browsed")),
	), s.viewPosition)

	s.mcp.AddTool(mcp.NewTool("note_visible",
		mcp.WithDescription("Report whether a note appears on a day and where the day falls in "+
			"the note's range (none, start, middle, end, exact)."),
		calendarArg,
		mcp.WithString("note", mcp.Required(), mcp.Description(
			`Note as JSON: {"title":"...","repeats":"never|weekly|monthly|yearly",`+
				`"start_date":{"year":0,"month":<month id>,"day":<1-based>},"end_date":{...}}`)),
		mcp.WithNumber("year", mcp.Required()),
		mcp.WithNumber("month", mcp.Required(), mcp.Description("0-based month index")),
		mcp.WithNumber("day", mcp.Required(), mcp.Description("0-based day index")),
	), s.noteVisible)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) listCalendars(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	list, err := s.svc.ListCalendars(ctx)
	if err != nil {
		return toolError(err), nil
	}
	return jsonResult(list)
}

func (s *Server) secondsToDate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("calendar")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	ts, err := req.RequireInt("timestamp")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	res, err := s.svc.ToDate(ctx, id, int64(ts))
	if err != nil {
		return toolError(err), nil
	}
	return jsonResult(res)
}

func (s *Server) dateToSeconds(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("calendar")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	var date reckoning.DateTime
	for _, f := range []struct {
		name string
		dst  *int
	}{{"year", &date.Year}, {"month", &date.Month}, {"day", &date.Day}} {
		v, err := req.RequireInt(f.name)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		*f.dst = v
	}
	date.Hour = req.GetInt("hour", 0)
	date.Minute = req.GetInt("minute", 0)
	date.Second = req.GetInt("second", 0)

	res, err := s.svc.ToTimestamp(ctx, id, date)
	if err != nil {
		return toolError(err), nil
	}
	return jsonResult(res)
}

func (s *Server) displayDate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("calendar")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	var ts *int64
	if _, ok := req.GetArguments()["timestamp"]; ok {
		v, err := req.RequireInt("timestamp")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		t := int64(v)
		ts = &t
	}

	d, err := s.svc.Display(ctx, id, ts)
	if err != nil {
		return toolError(err), nil
	}
	return jsonResult(d)
}

func (s *Server) viewPosition(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("calendar")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	input := calendar.ViewInput{Mode: req.GetString("mode", "")}

	args := req.GetArguments()
	if _, ok := args["selected_year"]; ok {
		v, err := requireInts(req, "selected_year", "selected_month", "selected_day")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		input.Selected = &reckoning.DateTime{Year: v[0], Month: v[1], Day: v[2]}
	}
	if _, ok := args["visible_year"]; ok {
		v, err := requireInts(req, "visible_year", "visible_month")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		input.Visible = &reckoning.MonthRef{Year: v[0], Month: v[1]}
	}

	res, err := s.svc.View(ctx, id, input)
	if err != nil {
		return toolError(err), nil
	}
	return jsonResult(res)
}

// requireInts reads the integer arguments named by keys, in order.
func requireInts(req mcp.CallToolRequest, keys ...string) ([]int, error) {
	out := make([]int, len(keys))
	for i, key := range keys {
		v, err := req.RequireInt(key)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// noteVisibility is the note_visible result.
type noteVisibility struct {
	Visible bool   `json:"visible"`
	Match   string `json:"match"`
}

func (s *Server) noteVisible(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("calendar")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	raw, err := req.RequireString("note")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	var note reckoning.Note
	if err := json.Unmarshal([]byte(raw), &note); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("note is not valid JSON: %v", err)), nil
	}
	year, err := req.RequireInt("year")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	month, err := req.RequireInt("month")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	day, err := req.RequireInt("day")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	grid, err := s.svc.VisibilityGrid(ctx, id, calendar.VisibilityInput{
		Year:  year,
		Month: month,
		Notes: []reckoning.Note{note},
	})
	if err != nil {
		return toolError(err), nil
	}
	row := grid.Notes[0]
	if day < 0 || day >= len(row.Visible) {
		return mcp.NewToolResultError(fmt.Sprintf("day %d is outside %s (%d days)",
			day, grid.Layout.MonthName, grid.Layout.Days)), nil
	}
	return jsonResult(noteVisibility{Visible: row.Visible[day], Match: row.Match[day]})
}

// toolError reports a service error with its client-safe message.
func toolError(err error) *mcp.CallToolResult {
	return mcp.NewToolResultError(apperror.SafeMessage(err))
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding result: %w", err)
	}
	return mcp.NewToolResultText(string(out)), nil
}
