package reckoning

// Repeat is a note's recurrence mode.
type Repeat string

const (
	RepeatNever   Repeat = "never"
	RepeatWeekly  Repeat = "weekly"
	RepeatMonthly Repeat = "monthly"
	RepeatYearly  Repeat = "yearly"
)

// Valid reports whether r is a known mode. The empty string counts as
// RepeatNever.
func (r Repeat) Valid() bool {
	switch r {
	case "", RepeatNever, RepeatWeekly, RepeatMonthly, RepeatYearly:
		return true
	}
	return false
}

// DateRangeMatch describes where a day sits relative to an inclusive range.
type DateRangeMatch int

const (
	MatchNone DateRangeMatch = iota
	MatchStart
	MatchMiddle
	MatchEnd
	MatchExact
)

func (m DateRangeMatch) String() string {
	switch m {
	case MatchStart:
		return "start"
	case MatchMiddle:
		return "middle"
	case MatchEnd:
		return "end"
	case MatchExact:
		return "exact"
	default:
		return "none"
	}
}

// NoteDate is a note's anchor day. Unlike DateTime it stores the month's
// NumericRepresentation and a 1-based day number, so notes survive edits
// to the month list.
type NoteDate struct {
	Year    int `json:"year"`
	MonthID int `json:"month"`
	Day     int `json:"day"`
}

// Note is the recurrence-relevant part of a calendar note.
type Note struct {
	ID      string    `json:"id"`
	Title   string    `json:"title"`
	Repeats Repeat    `json:"repeats"`
	Start   *NoteDate `json:"start_date"`
	End     *NoteDate `json:"end_date"`
}

// IsDayBetweenDates places target relative to the inclusive range
// [start, end], comparing year, month and day only.
func IsDayBetweenDates(target, start, end DateTime) DateRangeMatch {
	t, s, e := target.Date(), start.Date(), end.Date()
	atStart, atEnd := t == s, t == e
	switch {
	case atStart && atEnd:
		return MatchExact
	case atStart:
		return MatchStart
	case atEnd:
		return MatchEnd
	case s.Compare(t) < 0 && t.Compare(e) < 0:
		return MatchMiddle
	default:
		return MatchNone
	}
}

// IsVisible reports whether note occupies the day at the given indices.
func (c *Calendar) IsVisible(year, monthIndex, dayIndex int, note Note) bool {
	return c.MatchNote(DateTime{Year: year, Month: monthIndex, Day: dayIndex}, note) != MatchNone
}

// MatchNote places target relative to the occurrence of note that covers
// it. Notes with missing dates, unknown month ids or an unknown repeat mode
// never match. The target is clamped to the calendar.
func (c *Calendar) MatchNote(target DateTime, note Note) DateRangeMatch {
	if len(c.Months) == 0 || note.Start == nil || note.End == nil || !note.Repeats.Valid() {
		return MatchNone
	}
	start, ok := c.resolveNoteDate(*note.Start)
	if !ok {
		return MatchNone
	}
	end, ok := c.resolveNoteDate(*note.End)
	if !ok {
		return MatchNone
	}
	target = c.Clamp(target.Date())

	switch note.Repeats {
	case RepeatWeekly:
		return c.matchWeekly(target, start, end)
	case RepeatMonthly:
		return matchPeriodic(target, start, end, c.monthPeriod, c.shiftMonths)
	case RepeatYearly:
		return matchPeriodic(target, start, end, yearPeriod, c.shiftYears)
	default:
		return IsDayBetweenDates(target, start, end)
	}
}

// resolveNoteDate converts a note's month id and day number to indices,
// clamping the day to the month's length in that year.
func (c *Calendar) resolveNoteDate(d NoteDate) (DateTime, bool) {
	mi, ok := c.MonthIndexByID(d.MonthID)
	if !ok {
		return DateTime{}, false
	}
	return c.Clamp(DateTime{Year: d.Year, Month: mi, Day: d.Day - 1}), true
}

// matchWeekly compares weekdays only. A range whose end weekday precedes
// its start weekday wraps through the end of the cycle.
func (c *Calendar) matchWeekly(target, start, end DateTime) DateRangeMatch {
	if len(c.Weekdays) == 0 {
		return MatchNone
	}
	tw := c.DayOfWeek(target.Year, target.Month, target.Day)
	sw := c.DayOfWeek(start.Year, start.Month, start.Day)
	ew := c.DayOfWeek(end.Year, end.Month, end.Day)

	switch {
	case tw == sw && tw == ew:
		return MatchExact
	case tw == sw:
		return MatchStart
	case tw == ew:
		return MatchEnd
	case sw < ew && tw > sw && tw < ew:
		return MatchMiddle
	case sw > ew && (tw > sw || tw < ew):
		return MatchMiddle
	default:
		return MatchNone
	}
}

// --- Monthly and Yearly Windows ---

// A period function numbers the months (or years) linearly; a shift
// function moves a date by whole periods while keeping its position inside
// the period. A day past the end of the shifted month is clamped to its last
// day, so a note on the 31st lands on the 30th or the 28th of shorter months.

func (c *Calendar) monthPeriod(d DateTime) int64 {
	return int64(d.Year)*int64(len(c.Months)) + int64(d.Month)
}

func (c *Calendar) shiftMonths(d DateTime, k int64) DateTime {
	n := int64(len(c.Months))
	p := c.monthPeriod(d) + k
	d.Year = int(floorDiv(p, n))
	d.Month = int(floorMod(p, n))
	return c.Clamp(d)
}

func yearPeriod(d DateTime) int64 { return int64(d.Year) }

func (c *Calendar) shiftYears(d DateTime, k int64) DateTime {
	d.Year += int(k)
	return c.Clamp(d)
}

// matchPeriodic tests target against the occurrences of [start, end]
// repeated every period. Only two occurrences can touch the target's
// period at a range bound: the one starting in it and the one ending in it.
// Any other covering occurrence spans the target period entirely, which is
// possible only when the range covers at least two period boundaries.
func matchPeriodic(target, start, end DateTime, period func(DateTime) int64, shift func(DateTime, int64) DateTime) DateRangeMatch {
	pt, ps, pe := period(target), period(start), period(end)

	forward := pt - ps
	if m := IsDayBetweenDates(target, shift(start, forward), shift(end, forward)); m != MatchNone {
		return m
	}
	backward := pt - pe
	if m := IsDayBetweenDates(target, shift(start, backward), shift(end, backward)); m != MatchNone {
		return m
	}
	if pe-ps >= 2 {
		return MatchMiddle
	}
	return MatchNone
}
