package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/urfave/cli/v3"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/term"

	"github.com/keyxmakerx/almanac/internal/apperror"
	"github.com/keyxmakerx/almanac/internal/mcpserver"
	"github.com/keyxmakerx/almanac/internal/plugins/calendar"
	"github.com/keyxmakerx/almanac/internal/reckoning"
)

// fileCalendarID is the id a --file calendar is registered under.
const fileCalendarID = "file"

// minKeyLength is the shortest GM key hash-key accepts.
const minKeyLength = 8

// openCalendar builds a calendar service holding the presets and, with
// --file, the file's calendar. It returns the id commands should use.
func openCalendar(ctx context.Context, cmd *cli.Command) (calendar.CalendarService, string, error) {
	svc := calendar.NewCalendarService(calendar.NewCalendarRepository(), nil)
	if err := svc.LoadPresets(ctx); err != nil {
		return nil, "", err
	}

	path := cmd.String("file")
	if path == "" {
		return svc, cmd.String("calendar"), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("reading calendar file: %w", err)
	}
	if _, err := svc.ImportCalendar(ctx, fileCalendarID, calendar.SourceFile, data); err != nil {
		return nil, "", describe(err)
	}
	return svc, fileCalendarID, nil
}

// describe turns a service error into a message for the terminal,
// including per-field validation problems.
func describe(err error) error {
	var appErr *apperror.AppError
	if !errors.As(err, &appErr) {
		return err
	}
	if len(appErr.Fields) == 0 {
		return errors.New(appErr.Message)
	}
	var b strings.Builder
	b.WriteString(appErr.Message)
	for field, problem := range appErr.Fields {
		fmt.Fprintf(&b, "\n  %s: %s", field, problem)
	}
	return errors.New(b.String())
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func presetsAction(ctx context.Context, cmd *cli.Command) error {
	svc, _, err := openCalendar(ctx, cmd)
	if err != nil {
		return err
	}
	list, err := svc.ListCalendars(ctx)
	if err != nil {
		return describe(err)
	}

	w := cmd.Root().Writer
	if cmd.Bool("json") {
		return printJSON(w, list)
	}
	for _, s := range list {
		fmt.Fprintf(w, "%-12s %-20s %2d months, %d weekdays\n", s.ID, s.Name, s.Months, s.Weekdays)
	}
	return nil
}

func dateAction(ctx context.Context, cmd *cli.Command) error {
	svc, id, err := openCalendar(ctx, cmd)
	if err != nil {
		return err
	}
	var ts *int64
	if cmd.IsSet("timestamp") {
		v := cmd.Int("timestamp")
		ts = &v
	}
	d, err := svc.Display(ctx, id, ts)
	if err != nil {
		return describe(err)
	}

	w := cmd.Root().Writer
	if cmd.Bool("json") {
		return printJSON(w, d)
	}
	fmt.Fprintln(w, formatDisplay(d))
	return nil
}

// formatDisplay renders a display bundle on one line, e.g.
// "Wednesday, January 1, 1970 00:00:00 (Winter; Moon: Waxing Crescent)".
func formatDisplay(d *reckoning.DisplayDate) string {
	var b strings.Builder
	if d.WeekdayName != "" {
		b.WriteString(d.WeekdayName)
		b.WriteString(", ")
	}
	fmt.Fprintf(&b, "%s %d, %s %s", d.MonthName, d.Day, d.YearLabel, d.Time)

	var extra []string
	if d.Season != nil {
		extra = append(extra, d.Season.Name)
	}
	for _, m := range d.Moons {
		if m.PhaseIndex >= 0 {
			extra = append(extra, fmt.Sprintf("%s: %s", m.Moon, m.Phase.Name))
		}
	}
	if len(extra) > 0 {
		fmt.Fprintf(&b, " (%s)", strings.Join(extra, "; "))
	}
	return b.String()
}

// dateFromFlags reads the flags declared by dateFlags.
func dateFromFlags(cmd *cli.Command) reckoning.DateTime {
	return reckoning.DateTime{
		Year:   int(cmd.Int("year")),
		Month:  int(cmd.Int("month")),
		Day:    int(cmd.Int("day")),
		Hour:   int(cmd.Int("hour")),
		Minute: int(cmd.Int("minute")),
		Second: int(cmd.Int("second")),
	}
}

func timestampAction(ctx context.Context, cmd *cli.Command) error {
	svc, id, err := openCalendar(ctx, cmd)
	if err != nil {
		return err
	}
	res, err := svc.ToTimestamp(ctx, id, dateFromFlags(cmd))
	if err != nil {
		return describe(err)
	}

	w := cmd.Root().Writer
	if cmd.Bool("json") {
		return printJSON(w, res)
	}
	fmt.Fprintln(w, res.Timestamp)
	return nil
}

func weekdayAction(ctx context.Context, cmd *cli.Command) error {
	svc, id, err := openCalendar(ctx, cmd)
	if err != nil {
		return err
	}
	res, err := svc.ToTimestamp(ctx, id, dateFromFlags(cmd))
	if err != nil {
		return describe(err)
	}
	d, err := svc.Display(ctx, id, &res.Timestamp)
	if err != nil {
		return describe(err)
	}

	w := cmd.Root().Writer
	if cmd.Bool("json") {
		return printJSON(w, map[string]any{"index": d.WeekdayIndex, "name": d.WeekdayName})
	}
	if d.WeekdayIndex < 0 {
		fmt.Fprintf(w, "%s %d is outside the week\n", d.MonthName, d.Day)
		return nil
	}
	fmt.Fprintln(w, d.WeekdayName)
	return nil
}

func visibleAction(ctx context.Context, cmd *cli.Command) error {
	raw := cmd.String("note")
	if path := cmd.String("note-file"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading note file: %w", err)
		}
		raw = string(data)
	}
	if raw == "" {
		return errors.New("one of --note or --note-file is required")
	}
	var note reckoning.Note
	if err := json.Unmarshal([]byte(raw), &note); err != nil {
		return fmt.Errorf("parsing note: %w", err)
	}

	svc, id, err := openCalendar(ctx, cmd)
	if err != nil {
		return err
	}
	grid, err := svc.VisibilityGrid(ctx, id, calendar.VisibilityInput{
		Year:  int(cmd.Int("year")),
		Month: int(cmd.Int("month")),
		Notes: []reckoning.Note{note},
	})
	if err != nil {
		return describe(err)
	}

	w := cmd.Root().Writer
	row := grid.Notes[0]
	if cmd.Bool("json") {
		return printJSON(w, row)
	}
	fmt.Fprintf(w, "%s %d:\n", grid.Layout.MonthName, grid.Layout.Year)
	shown := 0
	for day, ok := range row.Visible {
		if ok {
			fmt.Fprintf(w, "  %2d  %s\n", day+1, row.Match[day])
			shown++
		}
	}
	if shown == 0 {
		fmt.Fprintln(w, "  (not visible this month)")
	}
	return nil
}

func hashKeyAction(ctx context.Context, cmd *cli.Command) error {
	key, err := readKey(cmd)
	if err != nil {
		return err
	}
	if len(key) < minKeyLength {
		return fmt.Errorf("GM key must be at least %d characters", minKeyLength)
	}
	hash, err := bcrypt.GenerateFromPassword(key, bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hashing key: %w", err)
	}
	fmt.Fprintln(cmd.Root().Writer, string(hash))
	return nil
}

// readKey prompts for the key with echo off on a terminal, and otherwise
// reads the first line of input.
func readKey(cmd *cli.Command) ([]byte, error) {
	root := cmd.Root()
	if f, ok := root.Reader.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(root.ErrWriter, "GM key: ")
		key, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(root.ErrWriter)
		if err != nil {
			return nil, fmt.Errorf("reading key: %w", err)
		}
		fmt.Fprint(root.ErrWriter, "Repeat: ")
		again, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(root.ErrWriter)
		if err != nil {
			return nil, fmt.Errorf("reading key: %w", err)
		}
		if string(key) != string(again) {
			return nil, errors.New("keys do not match")
		}
		return key, nil
	}

	line, err := bufio.NewReader(root.Reader).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("reading key: %w", err)
	}
	return []byte(strings.TrimRight(line, "\r\n")), nil
}

func mcpAction(ctx context.Context, cmd *cli.Command) error {
	svc, _, err := openCalendar(ctx, cmd)
	if err != nil {
		return err
	}
	return mcpserver.New(svc, version).ServeStdio()
}
