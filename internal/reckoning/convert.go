package reckoning

import "math"

// monthFilter selects which months contribute to a day count.
type monthFilter func(Month) bool

func allMonths(Month) bool { return true }

func weekdayMonths(m Month) bool { return m.CountsTowardWeekdays() }

// yearTotals returns the length of a common and of a leap year counting only
// months accepted by keep.
func (c *Calendar) yearTotals(keep monthFilter) (common, leap int64) {
	for _, m := range c.Months {
		if !keep(m) {
			continue
		}
		common += int64(m.Days(false))
		leap += int64(m.Days(true))
	}
	return common, leap
}

// daysBeforeYear counts the days between the first day of YearZero and the
// first day of year. Years before YearZero give a negative count. The leap
// year difference is applied in closed form, so this is O(months).
func (c *Calendar) daysBeforeYear(year int, keep monthFilter) int64 {
	common, leap := c.yearTotals(keep)
	leaps := int64(c.LeapYear.LeapYearsBefore(year) - c.LeapYear.LeapYearsBefore(c.YearZero))
	return int64(year-c.YearZero)*common + leaps*(leap-common)
}

// daysBeforeMonth counts the days of year that precede monthIndex.
func (c *Calendar) daysBeforeMonth(year, monthIndex int, keep monthFilter) int64 {
	leap := c.IsLeapYear(year)
	var days int64
	for i := 0; i < monthIndex && i < len(c.Months); i++ {
		if keep(c.Months[i]) {
			days += int64(c.Months[i].Days(leap))
		}
	}
	return days
}

// EpochDay returns the number of days from the first day of YearZero to the
// given date. Month and day are clamped first.
func (c *Calendar) EpochDay(year, monthIndex, dayIndex int) int64 {
	if len(c.Months) == 0 {
		return 0
	}
	d := c.Clamp(DateTime{Year: year, Month: monthIndex, Day: dayIndex})
	return c.daysBeforeYear(d.Year, allMonths) + c.daysBeforeMonth(d.Year, d.Month, allMonths) + int64(d.Day)
}

// DayOfYear returns the 0-based position of the date within its year.
func (c *Calendar) DayOfYear(year, monthIndex, dayIndex int) int {
	if len(c.Months) == 0 {
		return 0
	}
	d := c.Clamp(DateTime{Year: year, Month: monthIndex, Day: dayIndex})
	return int(c.daysBeforeMonth(d.Year, d.Month, allMonths)) + d.Day
}

// --- Timestamp Conversion ---

// DateToSeconds converts d to seconds since the calendar epoch. Out-of-range
// fields are clamped. A calendar with no months or a non-positive time base
// returns 0.
func (c *Calendar) DateToSeconds(d DateTime) int64 {
	spd := c.Time.SecondsPerDay()
	if len(c.Months) == 0 || spd == 0 {
		return 0
	}
	d = c.Clamp(d)
	days := c.EpochDay(d.Year, d.Month, d.Day)
	return days*spd +
		int64(d.Hour)*c.Time.secondsPerHour() +
		int64(d.Minute)*int64(c.Time.SecondsInMinute) +
		int64(d.Second)
}

// SecondsToDate converts a timestamp to a DateTime. It is the exact inverse
// of DateToSeconds for every valid date, and for every timestamp
// DateToSeconds(SecondsToDate(ts)) == ts.
//
// Degenerate calendars (no months, non-positive time base, or no year that
// contains any days) return the first moment of YearZero.
func (c *Calendar) SecondsToDate(ts int64) DateTime {
	spd := c.Time.SecondsPerDay()
	if len(c.Months) == 0 || spd == 0 {
		return DateTime{Year: c.YearZero}
	}

	days := floorDiv(ts, spd)
	rem := floorMod(ts, spd)

	year, ok := c.yearContaining(days)
	if !ok {
		return DateTime{Year: c.YearZero}
	}
	month, day := c.splitDayOfYear(year, days-c.daysBeforeYear(year, allMonths))

	sph := c.Time.secondsPerHour()
	spm := int64(c.Time.SecondsInMinute)
	return DateTime{
		Year:   year,
		Month:  month,
		Day:    day,
		Hour:   int(rem / sph),
		Minute: int(rem % sph / spm),
		Second: int(rem % spm),
	}
}

// yearContaining finds the year whose days include the given epoch day. It
// starts from an estimate based on the average year length and corrects by
// single-year steps; daysBeforeYear is closed-form so each step is cheap.
func (c *Calendar) yearContaining(days int64) (int, bool) {
	avg := c.averageYearLength()
	if avg <= 0 {
		return 0, false
	}
	year := c.YearZero + int(math.Floor(float64(days)/avg))
	for c.daysBeforeYear(year, allMonths) > days {
		year--
	}
	for c.daysBeforeYear(year+1, allMonths) <= days {
		year++
	}
	return year, true
}

func (c *Calendar) averageYearLength() float64 {
	common, leap := c.yearTotals(allMonths)
	return float64(common) + float64(leap-common)*c.LeapYear.leapFraction()
}

// splitDayOfYear walks the months of year to turn a day-of-year offset into
// a month and day index.
func (c *Calendar) splitDayOfYear(year int, offset int64) (int, int) {
	leap := c.IsLeapYear(year)
	for i, m := range c.Months {
		n := int64(m.Days(leap))
		if offset < n {
			return i, int(offset)
		}
		offset -= n
	}
	// Only reachable when offset exceeds the year length.
	last := len(c.Months) - 1
	return last, clamp(c.Months[last].Days(leap)-1, 0, math.MaxInt32)
}

// --- Clock Deltas ---

// AdvanceSeconds folds an elapsed-seconds delta into a timestamp.
func (c *Calendar) AdvanceSeconds(ts, delta int64) int64 {
	return c.DateToSeconds(c.SecondsToDate(ts + delta))
}

// AdvanceDate returns the date delta seconds after d.
func (c *Calendar) AdvanceDate(d DateTime, delta int64) DateTime {
	return c.SecondsToDate(c.DateToSeconds(d) + delta)
}
