// Calendar import from two formats:
//
// # Native
// The calendar layout of the reckoning package in YAML or JSON, as used by
// the bundled presets and CALENDAR_DIR files. It carries no clock.
//
// # Simple Calendar (Foundry VTT)
// Identified by a top-level "calendar" object (v1) or an "exportVersion"
// plus "calendars" array (v2; the first calendar is used). v1 legacy keys
// such as monthSettings are accepted as aliases. Month and day indices in
// currentDate, seasons and moons are 0-based. The current date becomes the
// snapshot's clock.

package calendar

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/keyxmakerx/almanac/internal/reckoning"
	"github.com/keyxmakerx/almanac/internal/sanitize"
)

// ImportFormat identifies which format was detected.
type ImportFormat string

const (
	FormatNative    ImportFormat = "native"
	FormatSimpleCal ImportFormat = "simple-calendar"
)

// ErrEmptyImport is returned for an empty document.
var ErrEmptyImport = errors.New("calendar document is empty")

// ImportResult holds a parsed, validated calendar.
type ImportResult struct {
	Format   ImportFormat
	Calendar *reckoning.Calendar

	// CurrentTime is the clock carried by the document, nil when the format
	// has none.
	CurrentTime *int64
}

// DetectAndParse detects the format of data, parses it and validates the
// resulting calendar. A failed validation is returned unwrapped so callers
// can recover the per-field errors.
func DetectAndParse(data []byte) (*ImportResult, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, ErrEmptyImport
	}

	if detectFormat(data) == FormatSimpleCal {
		return parseSimpleCalendar(data)
	}

	cal, err := reckoning.ParseYAML(data)
	if err != nil {
		return nil, err
	}
	return &ImportResult{Format: FormatNative, Calendar: cal}, nil
}

// detectFormat inspects the top-level keys of a JSON document. Anything
// that is not a Simple Calendar export, YAML included, is treated as native.
func detectFormat(data []byte) ImportFormat {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return FormatNative
	}

	if _, ok := raw["calendar"]; ok {
		return FormatSimpleCal
	}
	if _, ok := raw["exportVersion"]; ok {
		if _, hasCalendars := raw["calendars"]; hasCalendars {
			return FormatSimpleCal
		}
	}
	return FormatNative
}

// --- Simple Calendar Parser ---

// scData is the v1 Simple Calendar export structure.
type scData struct {
	Calendar scCalendar `json:"calendar"`
}

// scCalendar holds the Simple Calendar configuration. Supports both v2 field names
// and v1 legacy aliases (yearSettings, monthSettings, etc.) via custom UnmarshalJSON.
type scCalendar struct {
	Name        string        `json:"name"`
	Description string        `json:"description"`
	CurrentDate scCurrentDate `json:"currentDate"`
	LeapYear    scLeapYear    `json:"leapYear"`
	Months      []scMonth     `json:"months"`
	Moons       []scMoon      `json:"moons"`
	Seasons     []scSeason    `json:"seasons"`
	Time        scTime        `json:"time"`
	Weekdays    []scWeekday   `json:"weekdays"`
	Year        scYear        `json:"year"`
}

// UnmarshalJSON handles Simple Calendar v1 legacy field names as aliases.
func (c *scCalendar) UnmarshalJSON(data []byte) error {
	type alias scCalendar
	var v2 alias
	if err := json.Unmarshal(data, &v2); err != nil {
		return err
	}
	*c = scCalendar(v2)

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil
	}
	aliases := []struct {
		key   string
		empty bool
		dst   any
	}{
		{"monthSettings", len(c.Months) == 0, &c.Months},
		{"weekdaySettings", len(c.Weekdays) == 0, &c.Weekdays},
		{"seasonSettings", len(c.Seasons) == 0, &c.Seasons},
		{"moonSettings", len(c.Moons) == 0, &c.Moons},
		{"yearSettings", c.Year.NumericRepresentation == 0, &c.Year},
		{"timeSettings", c.Time.HoursInDay == 0, &c.Time},
		{"leapYearSettings", c.LeapYear.Rule == "", &c.LeapYear},
	}
	for _, a := range aliases {
		v, ok := raw[a.key]
		if !ok || !a.empty {
			continue
		}
		if err := json.Unmarshal(v, a.dst); err != nil {
			return fmt.Errorf("simple calendar %s: %w", a.key, err)
		}
	}
	return nil
}

type scCurrentDate struct {
	Year    int   `json:"year"`
	Month   int   `json:"month"`   // 0-indexed
	Day     int   `json:"day"`     // 0-indexed
	Seconds int64 `json:"seconds"` // seconds since midnight
}

type scLeapYear struct {
	Rule      string `json:"rule"`      // "none", "gregorian", "custom"
	CustomMod int    `json:"customMod"` // interval for custom rule
}

type scMonth struct {
	Name                  string `json:"name"`
	Abbreviation          string `json:"abbreviation"`
	NumericRepresentation int    `json:"numericRepresentation"`
	NumberOfDays          int    `json:"numberOfDays"`
	NumberOfLeapYearDays  int    `json:"numberOfLeapYearDays"`
	Intercalary           bool   `json:"intercalary"`
	IntercalaryInclude    bool   `json:"intercalaryInclude"`
	StartingWeekday       *int   `json:"startingWeekday"`
}

type scWeekday struct {
	Name                  string `json:"name"`
	Abbreviation          string `json:"abbreviation"`
	NumericRepresentation int    `json:"numericRepresentation"`
}

type scSeason struct {
	Name          string `json:"name"`
	StartingMonth int    `json:"startingMonth"` // 0-indexed month
	StartingDay   int    `json:"startingDay"`   // 0-indexed day
	Color         string `json:"color"`
	Icon          string `json:"icon"`
	SunriseTime   int    `json:"sunriseTime"` // seconds since midnight
	SunsetTime    int    `json:"sunsetTime"`  // seconds since midnight
}

type scMoon struct {
	Name           string         `json:"name"`
	CycleLength    float64        `json:"cycleLength"`
	CycleDayAdjust float64        `json:"cycleDayAdjust"`
	FirstNewMoon   scFirstNewMoon `json:"firstNewMoon"`
	Phases         []scMoonPhase  `json:"phases"`
	Color          string         `json:"color"`
}

type scFirstNewMoon struct {
	Year      int    `json:"year"`
	Month     int    `json:"month"`
	Day       int    `json:"day"`
	YearReset string `json:"yearReset"`
	YearX     int    `json:"yearX"`
}

type scMoonPhase struct {
	Name      string  `json:"name"`
	Length    float64 `json:"length"`
	SingleDay bool    `json:"singleDay"`
	Icon      string  `json:"icon"`
}

type scTime struct {
	HoursInDay      int `json:"hoursInDay"`
	MinutesInHour   int `json:"minutesInHour"`
	SecondsInMinute int `json:"secondsInMinute"`
}

type scYear struct {
	NumericRepresentation int      `json:"numericRepresentation"`
	Prefix                string   `json:"prefix"`
	Postfix               string   `json:"postfix"`
	YearZero              int      `json:"yearZero"`
	FirstWeekday          int      `json:"firstWeekday"`
	YearNamesStart        int      `json:"yearNamesStart"`
	YearNames             []string `json:"yearNames"`
}

// parseSimpleCalendar converts a Simple Calendar JSON export. Handles both
// v1 format (top-level "calendar" key) and v2 format ("calendars" array).
func parseSimpleCalendar(data []byte) (*ImportResult, error) {
	var v2 struct {
		ExportVersion int          `json:"exportVersion"`
		Calendars     []scCalendar `json:"calendars"`
	}
	if err := json.Unmarshal(data, &v2); err == nil && len(v2.Calendars) > 0 {
		return convertSimpleCalendar(v2.Calendars[0])
	}

	var sc scData
	if err := json.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("parse simple calendar JSON: %w", err)
	}
	return convertSimpleCalendar(sc.Calendar)
}

// convertSimpleCalendar maps a Simple Calendar configuration onto the
// reckoning model and validates it.
func convertSimpleCalendar(sc scCalendar) (*ImportResult, error) {
	cal := &reckoning.Calendar{
		Name:           sanitize.PlainText(sc.Name),
		Description:    sanitize.HTML(sc.Description),
		YearZero:       sc.Year.YearZero,
		FirstWeekday:   sc.Year.FirstWeekday,
		YearPrefix:     sc.Year.Prefix,
		YearPostfix:    sc.Year.Postfix,
		YearNames:      sc.Year.YearNames,
		YearNamesStart: sc.Year.YearNamesStart,
		Time: reckoning.TimeBase{
			HoursInDay:      orDefault(sc.Time.HoursInDay, 24),
			MinutesInHour:   orDefault(sc.Time.MinutesInHour, 60),
			SecondsInMinute: orDefault(sc.Time.SecondsInMinute, 60),
		},
	}
	if cal.Name == "" {
		cal.Name = "Imported Calendar"
	}

	switch sc.LeapYear.Rule {
	case "gregorian":
		cal.LeapYear.Rule = reckoning.LeapGregorian
	case "custom":
		cal.LeapYear = reckoning.LeapYearRule{Rule: reckoning.LeapCustom, CustomMod: sc.LeapYear.CustomMod}
	default:
		cal.LeapYear.Rule = reckoning.LeapNone
	}

	for _, m := range sc.Months {
		leapDays := m.NumberOfLeapYearDays
		if leapDays == 0 {
			leapDays = m.NumberOfDays
		}
		cal.Months = append(cal.Months, reckoning.Month{
			Name:                  stripLocalizationKey(m.Name),
			Abbreviation:          sanitize.PlainText(m.Abbreviation),
			NumericRepresentation: m.NumericRepresentation,
			NumberOfDays:          m.NumberOfDays,
			NumberOfLeapYearDays:  leapDays,
			Intercalary:           m.Intercalary,
			IntercalaryInclude:    m.IntercalaryInclude,
			StartingWeekday:       m.StartingWeekday,
		})
	}
	assignMonthIDs(cal.Months)

	for _, w := range sc.Weekdays {
		cal.Weekdays = append(cal.Weekdays, reckoning.Weekday{
			NumericRepresentation: w.NumericRepresentation,
			Name:                  stripLocalizationKey(w.Name),
			Abbreviation:          sanitize.PlainText(w.Abbreviation),
		})
	}

	for _, s := range sc.Seasons {
		cal.Seasons = append(cal.Seasons, reckoning.Season{
			Name:          stripLocalizationKey(s.Name),
			Color:         normalizeColor(s.Color),
			Icon:          s.Icon,
			StartingMonth: s.StartingMonth,
			StartingDay:   s.StartingDay,
			SunriseTime:   s.SunriseTime,
			SunsetTime:    s.SunsetTime,
		})
	}

	for _, m := range sc.Moons {
		cal.Moons = append(cal.Moons, convertMoon(m))
	}

	if err := cal.Validate(); err != nil {
		return nil, err
	}

	cd := sc.CurrentDate
	now := cal.DateToSeconds(reckoning.DateTime{Year: cd.Year, Month: cd.Month, Day: cd.Day}) + cd.Seconds
	return &ImportResult{Format: FormatSimpleCal, Calendar: cal, CurrentTime: &now}, nil
}

// convertMoon maps one Simple Calendar moon, filling in the conventional
// phases when the export has none. Every phase leaves with its effective
// length so stored calendars show how the cycle is split.
func convertMoon(m scMoon) reckoning.Moon {
	moon := reckoning.Moon{
		Name:           stripLocalizationKey(m.Name),
		Color:          normalizeColor(m.Color),
		CycleLength:    m.CycleLength,
		CycleDayAdjust: m.CycleDayAdjust,
		FirstNewMoon: reckoning.FirstNewMoon{
			YearReset: moonReset(m.FirstNewMoon.YearReset),
			YearX:     m.FirstNewMoon.YearX,
			Year:      m.FirstNewMoon.Year,
			Month:     m.FirstNewMoon.Month,
			Day:       m.FirstNewMoon.Day,
		},
	}
	for _, p := range m.Phases {
		moon.Phases = append(moon.Phases, reckoning.MoonPhase{
			Name:      stripLocalizationKey(p.Name),
			Icon:      p.Icon,
			Length:    p.Length,
			SingleDay: p.SingleDay,
		})
	}
	if len(moon.Phases) == 0 {
		moon.Phases = reckoning.DefaultMoonPhases()
	}
	return reckoning.NormalizePhaseLengths(moon)
}

// moonReset maps Simple Calendar's yearReset values. Unknown values reset
// nothing.
func moonReset(s string) reckoning.MoonReset {
	switch reckoning.MoonReset(s) {
	case reckoning.MoonResetLeapYear:
		return reckoning.MoonResetLeapYear
	case reckoning.MoonResetXYears:
		return reckoning.MoonResetXYears
	default:
		return reckoning.MoonResetNone
	}
}

// assignMonthIDs numbers months when the export's numeric representations
// are missing or collide: regular months count up from 1 and intercalary
// months count down from -1.
func assignMonthIDs(months []reckoning.Month) {
	seen := make(map[int]bool, len(months))
	unique := true
	for _, m := range months {
		if m.NumericRepresentation == 0 || seen[m.NumericRepresentation] {
			unique = false
			break
		}
		seen[m.NumericRepresentation] = true
	}
	if unique {
		return
	}

	regular, intercalary := 0, 0
	for i := range months {
		if months[i].Intercalary {
			intercalary--
			months[i].NumericRepresentation = intercalary
		} else {
			regular++
			months[i].NumericRepresentation = regular
		}
	}
}

// stripLocalizationKey turns Foundry localization keys such as
// "FSC.Months.January" into their last segment. Markup is removed first.
func stripLocalizationKey(s string) string {
	s = sanitize.PlainText(s)
	if i := strings.LastIndex(s, "."); i >= 0 && i < len(s)-1 {
		return s[i+1:]
	}
	return s
}

// normalizeColor ensures a non-empty color string starts with '#'.
func normalizeColor(c string) string {
	c = strings.TrimSpace(c)
	if c == "" || c[0] == '#' {
		return c
	}
	return "#" + c
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}
