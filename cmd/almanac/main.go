// Package main is the almanac operator CLI: calendar conversions from the
// shell, GM key hashing, and the MCP stdio server.
package main

import (
	"context"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

func newCommand() *cli.Command {
	return &cli.Command{
		Name:    "almanac",
		Usage:   "Fantasy calendar arithmetic and note recurrence",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "calendar",
				Aliases: []string{"c"},
				Usage:   "Preset calendar id",
				Value:   "gregorian",
				Sources: cli.EnvVars("ALMANAC_CALENDAR"),
			},
			&cli.StringFlag{
				Name:    "file",
				Aliases: []string{"f"},
				Usage:   "Calendar file (native YAML/JSON or Simple Calendar export); overrides --calendar",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Print results as JSON",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "presets",
				Usage:  "List the bundled calendars",
				Action: presetsAction,
			},
			{
				Name:  "date",
				Usage: "Convert a timestamp to a date",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "timestamp", Aliases: []string{"t"}, Usage: "Seconds since the calendar epoch (default: the calendar's current time)"},
				},
				Action: dateAction,
			},
			{
				Name:   "timestamp",
				Usage:  "Convert a date to a timestamp",
				Flags:  dateFlags(),
				Action: timestampAction,
			},
			{
				Name:   "weekday",
				Usage:  "Print the weekday of a date",
				Flags:  dateFlags(),
				Action: weekdayAction,
			},
			{
				Name:  "visible",
				Usage: "Show the days of a month on which a note appears",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "year", Required: true},
					&cli.IntFlag{Name: "month", Required: true, Usage: "0-based month index"},
					&cli.StringFlag{Name: "note", Usage: "Note as JSON"},
					&cli.StringFlag{Name: "note-file", Usage: "File holding the note as JSON"},
				},
				Action: visibleAction,
			},
			{
				Name:   "hash-key",
				Usage:  "Hash a GM key for GM_KEY_HASH",
				Action: hashKeyAction,
			},
			{
				Name:   "mcp",
				Usage:  "Serve the calendar tools over MCP stdio",
				Action: mcpAction,
			},
		},
	}
}

func dateFlags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{Name: "year", Required: true},
		&cli.IntFlag{Name: "month", Required: true, Usage: "0-based month index"},
		&cli.IntFlag{Name: "day", Required: true, Usage: "0-based day index"},
		&cli.IntFlag{Name: "hour"},
		&cli.IntFlag{Name: "minute"},
		&cli.IntFlag{Name: "second"},
	}
}

func main() {
	// Logs go to stderr so stdout stays clean for results and MCP framing.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})))

	if err := newCommand().Run(context.Background(), os.Args); err != nil {
		slog.Error("almanac error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
