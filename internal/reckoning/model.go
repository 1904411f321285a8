// Package reckoning is the calendar arithmetic engine: it converts between
// timestamps (seconds since a calendar's epoch) and structured dates for
// arbitrary user-defined calendars, resolves weekdays, seasons and moon
// phases, and decides whether recurring notes fall on a given day.
//
// Every operation is a pure function of a *Calendar passed in explicitly.
// Nothing here logs, performs I/O, or mutates the calendar, so a snapshot
// may be shared across goroutines as long as nobody writes to it.
package reckoning

import "fmt"

// --- Calendar Configuration ---

// Calendar is a complete calendar configuration. Month and weekday order is
// significant; the slices are indexed by the 0-based indices that DateTime
// carries.
type Calendar struct {
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`

	// YearZero is the year whose first day is timestamp 0.
	YearZero int `json:"year_zero" yaml:"year_zero"`

	// FirstWeekday is the weekday index of day 0 of YearZero.
	FirstWeekday int `json:"first_weekday" yaml:"first_weekday"`

	Months   []Month      `json:"months" yaml:"months"`
	Weekdays []Weekday    `json:"weekdays" yaml:"weekdays"`
	LeapYear LeapYearRule `json:"leap_year" yaml:"leap_year"`
	Time     TimeBase     `json:"time" yaml:"time"`
	Seasons  []Season     `json:"seasons,omitempty" yaml:"seasons,omitempty"`
	Moons    []Moon       `json:"moons,omitempty" yaml:"moons,omitempty"`

	// Year decoration used by Display.
	YearPrefix     string   `json:"year_prefix,omitempty" yaml:"year_prefix,omitempty"`
	YearPostfix    string   `json:"year_postfix,omitempty" yaml:"year_postfix,omitempty"`
	YearNames      []string `json:"year_names,omitempty" yaml:"year_names,omitempty"`
	YearNamesStart int      `json:"year_names_start,omitempty" yaml:"year_names_start,omitempty"`
}

// Month is one entry in the calendar's month list.
type Month struct {
	Name         string `json:"name" yaml:"name"`
	Abbreviation string `json:"abbreviation,omitempty" yaml:"abbreviation,omitempty"`

	// NumericRepresentation is the month's stable display id. Intercalary
	// months conventionally use negative ids so they stay out of the normal
	// 1..N numbering. Notes reference months by this id.
	NumericRepresentation int `json:"numeric_representation" yaml:"numeric_representation"`

	NumberOfDays         int `json:"number_of_days" yaml:"number_of_days"`
	NumberOfLeapYearDays int `json:"number_of_leap_year_days" yaml:"number_of_leap_year_days"`

	// Intercalary marks a month outside the regular month sequence.
	Intercalary bool `json:"intercalary,omitempty" yaml:"intercalary,omitempty"`

	// IntercalaryInclude keeps an intercalary month in the weekday cycle.
	IntercalaryInclude bool `json:"intercalary_include,omitempty" yaml:"intercalary_include,omitempty"`

	// StartingWeekday pins day 0 of this month to a weekday index.
	StartingWeekday *int `json:"starting_weekday,omitempty" yaml:"starting_weekday,omitempty"`
}

// Days returns the month's effective day count, never negative.
func (m Month) Days(leap bool) int {
	d := m.NumberOfDays
	if leap {
		d = m.NumberOfLeapYearDays
	}
	if d < 0 {
		return 0
	}
	return d
}

// CountsTowardWeekdays reports whether the month's days advance the
// weekday cycle.
func (m Month) CountsTowardWeekdays() bool {
	return !m.Intercalary || m.IntercalaryInclude
}

// Weekday is one entry in the weekday cycle.
type Weekday struct {
	NumericRepresentation int    `json:"numeric_representation" yaml:"numeric_representation"`
	Name                  string `json:"name" yaml:"name"`
	Abbreviation          string `json:"abbreviation,omitempty" yaml:"abbreviation,omitempty"`
}

// TimeBase defines the length of a day.
type TimeBase struct {
	HoursInDay      int `json:"hours_in_day" yaml:"hours_in_day"`
	MinutesInHour   int `json:"minutes_in_hour" yaml:"minutes_in_hour"`
	SecondsInMinute int `json:"seconds_in_minute" yaml:"seconds_in_minute"`
}

// SecondsPerDay returns the number of seconds in one day, or 0 when any
// component is not positive.
func (t TimeBase) SecondsPerDay() int64 {
	if !t.valid() {
		return 0
	}
	return int64(t.HoursInDay) * t.secondsPerHour()
}

func (t TimeBase) secondsPerHour() int64 {
	return int64(t.MinutesInHour) * int64(t.SecondsInMinute)
}

func (t TimeBase) valid() bool {
	return t.HoursInDay > 0 && t.MinutesInHour > 0 && t.SecondsInMinute > 0
}

// --- Dates ---

// DateTime is a structured moment. Month and Day are 0-based indices into
// the calendar's month list and the month's days, never display ids.
type DateTime struct {
	Year   int `json:"year"`
	Month  int `json:"month"`
	Day    int `json:"day"`
	Hour   int `json:"hour"`
	Minute int `json:"minute"`
	Second int `json:"second"`
}

// Date returns d with the time of day dropped.
func (d DateTime) Date() DateTime {
	return DateTime{Year: d.Year, Month: d.Month, Day: d.Day}
}

// Compare orders two DateTimes lexicographically and returns -1, 0 or +1.
func (d DateTime) Compare(o DateTime) int {
	a := [6]int{d.Year, d.Month, d.Day, d.Hour, d.Minute, d.Second}
	b := [6]int{o.Year, o.Month, o.Day, o.Hour, o.Minute, o.Second}
	for i := range a {
		switch {
		case a[i] < b[i]:
			return -1
		case a[i] > b[i]:
			return 1
		}
	}
	return 0
}

func (d DateTime) String() string {
	return fmt.Sprintf("%d-%02d-%02d %02d:%02d:%02d", d.Year, d.Month, d.Day, d.Hour, d.Minute, d.Second)
}

// --- Month Helpers ---

// IsLeapYear reports whether year is a leap year in this calendar.
func (c *Calendar) IsLeapYear(year int) bool {
	return c.LeapYear.IsLeapYear(year)
}

// MonthDays returns the effective day count of the month at monthIndex in
// the given year, or 0 when the index is out of range.
func (c *Calendar) MonthDays(year, monthIndex int) int {
	if monthIndex < 0 || monthIndex >= len(c.Months) {
		return 0
	}
	return c.Months[monthIndex].Days(c.IsLeapYear(year))
}

// YearLength returns the number of days in year across all months,
// intercalary months included.
func (c *Calendar) YearLength(year int) int {
	leap := c.IsLeapYear(year)
	total := 0
	for _, m := range c.Months {
		total += m.Days(leap)
	}
	return total
}

// MonthIndexByID maps a month's NumericRepresentation to its index.
func (c *Calendar) MonthIndexByID(id int) (int, bool) {
	for i, m := range c.Months {
		if m.NumericRepresentation == id {
			return i, true
		}
	}
	return 0, false
}

// Clamp pulls every field of d into the valid range for its year: month
// and day to the first or last valid index, time fields to the time base.
// A calendar without months leaves Month and Day at zero.
func (c *Calendar) Clamp(d DateTime) DateTime {
	if len(c.Months) == 0 {
		d.Month, d.Day = 0, 0
	} else {
		d.Month = clamp(d.Month, 0, len(c.Months)-1)
		d.Day = clamp(d.Day, 0, c.MonthDays(d.Year, d.Month)-1)
	}
	d.Hour = clamp(d.Hour, 0, c.Time.HoursInDay-1)
	d.Minute = clamp(d.Minute, 0, c.Time.MinutesInHour-1)
	d.Second = clamp(d.Second, 0, c.Time.SecondsInMinute-1)
	return d
}

// YearName returns the configured name for year, cycling through
// YearNames from YearNamesStart. Empty when no names are configured.
func (c *Calendar) YearName(year int) string {
	if len(c.YearNames) == 0 {
		return ""
	}
	return c.YearNames[floorMod(year-c.YearNamesStart, len(c.YearNames))]
}

// YearLabel decorates year with the configured prefix and postfix.
func (c *Calendar) YearLabel(year int) string {
	return fmt.Sprintf("%s%d%s", c.YearPrefix, year, c.YearPostfix)
}
