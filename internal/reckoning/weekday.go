package reckoning

// DayOfWeek returns the weekday index of the given date. Only months that
// count toward the weekday cycle advance it; a month with StartingWeekday
// set restarts the cycle at that weekday. A calendar without weekdays
// returns 0.
func (c *Calendar) DayOfWeek(year, monthIndex, dayIndex int) int {
	n := len(c.Weekdays)
	if n == 0 || len(c.Months) == 0 {
		return 0
	}
	d := c.Clamp(DateTime{Year: year, Month: monthIndex, Day: dayIndex})

	if sw := c.Months[d.Month].StartingWeekday; sw != nil {
		return floorMod(*sw+d.Day, n)
	}

	days := c.daysBeforeYear(d.Year, weekdayMonths) +
		c.daysBeforeMonth(d.Year, d.Month, weekdayMonths) +
		int64(d.Day)
	return int(floorMod(days+int64(c.FirstWeekday), int64(n)))
}

// WeekdayName returns the name of the weekday the date falls on, or an
// empty string when there are no weekdays.
func (c *Calendar) WeekdayName(year, monthIndex, dayIndex int) string {
	if len(c.Weekdays) == 0 {
		return ""
	}
	return c.Weekdays[c.DayOfWeek(year, monthIndex, dayIndex)].Name
}

// MonthLayout describes how a month sits in a grid of weekday columns.
type MonthLayout struct {
	Year       int    `json:"year"`
	MonthIndex int    `json:"month_index"`
	MonthName  string `json:"month_name"`
	Days       int    `json:"days"`

	// StartWeekday is the weekday index of day 0, or -1 when the month sits
	// outside the weekday cycle or the calendar has no weekdays.
	StartWeekday int `json:"start_weekday"`
}

// MonthLayout returns the grid layout of a month. The month index is
// clamped.
func (c *Calendar) MonthLayout(year, monthIndex int) MonthLayout {
	if len(c.Months) == 0 {
		return MonthLayout{Year: year, StartWeekday: -1}
	}
	monthIndex = clamp(monthIndex, 0, len(c.Months)-1)
	m := c.Months[monthIndex]
	layout := MonthLayout{
		Year:         year,
		MonthIndex:   monthIndex,
		MonthName:    m.Name,
		Days:         c.MonthDays(year, monthIndex),
		StartWeekday: -1,
	}
	if len(c.Weekdays) > 0 && (m.CountsTowardWeekdays() || m.StartingWeekday != nil) {
		layout.StartWeekday = c.DayOfWeek(year, monthIndex, 0)
	}
	return layout
}
