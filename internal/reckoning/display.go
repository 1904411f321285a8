package reckoning

import "fmt"

// DisplayDate bundles everything a calendar view needs to render a moment.
type DisplayDate struct {
	Timestamp int64    `json:"timestamp"`
	Date      DateTime `json:"date"`

	Year      int    `json:"year"`
	YearLabel string `json:"year_label"`
	YearName  string `json:"year_name,omitempty"`

	MonthIndex  int    `json:"month_index"`
	MonthID     int    `json:"month_id"`
	MonthName   string `json:"month_name"`
	Intercalary bool   `json:"intercalary,omitempty"`

	// Day is the 1-based day number.
	Day int `json:"day"`

	// WeekdayIndex is -1 for days outside the weekday cycle.
	WeekdayIndex int    `json:"weekday_index"`
	WeekdayName  string `json:"weekday_name,omitempty"`

	Time   string          `json:"time"`
	Season *Season         `json:"season,omitempty"`
	Moons  []MoonPhaseInfo `json:"moons"`
}

// Display resolves ts into a DisplayDate.
func (c *Calendar) Display(ts int64) DisplayDate {
	d := c.SecondsToDate(ts)
	out := DisplayDate{
		Timestamp:    ts,
		Date:         d,
		Year:         d.Year,
		YearLabel:    c.YearLabel(d.Year),
		YearName:     c.YearName(d.Year),
		MonthIndex:   d.Month,
		Day:          d.Day + 1,
		WeekdayIndex: -1,
		Time:         fmt.Sprintf("%02d:%02d:%02d", d.Hour, d.Minute, d.Second),
		Moons:        c.MoonPhases(d.Year, d.Month, d.Day),
	}
	if len(c.Months) > 0 {
		m := c.Months[d.Month]
		out.MonthID = m.NumericRepresentation
		out.MonthName = m.Name
		out.Intercalary = m.Intercalary
		if len(c.Weekdays) > 0 && (m.CountsTowardWeekdays() || m.StartingWeekday != nil) {
			out.WeekdayIndex = c.DayOfWeek(d.Year, d.Month, d.Day)
			out.WeekdayName = c.Weekdays[out.WeekdayIndex].Name
		}
	}
	if s, ok := c.SeasonAt(d.Year, d.Month, d.Day); ok {
		out.Season = &s
	}
	return out
}
