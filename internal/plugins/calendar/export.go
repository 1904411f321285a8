// Notes export as iCalendar (RFC 5545). Only calendars with the shape of
// the proleptic Gregorian calendar can be exported, since ICS dates are
// Gregorian. Each note becomes an all-day VEVENT; repeating notes carry an
// RRULE anchored at their start date that falls back to the month's last
// day the way the engine clamps recurring dates.

package calendar

import (
	"errors"
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/teambition/rrule-go"

	"github.com/keyxmakerx/almanac/internal/reckoning"
	"github.com/keyxmakerx/almanac/internal/sanitize"
)

// icsProductID identifies almanac in exported feeds.
const icsProductID = "-//almanac//notes//EN"

// ErrNotGregorian is returned when exporting notes of a calendar whose
// months or leap rule differ from the Gregorian calendar.
var ErrNotGregorian = errors.New("only gregorian-shaped calendars can be exported as ICS")

var gregorianMonthDays = [12]int{31, 28, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31}

// isGregorianShaped reports whether cal's dates map one-to-one onto
// Gregorian dates with the same year numbers.
func isGregorianShaped(cal *reckoning.Calendar) bool {
	if len(cal.Months) != len(gregorianMonthDays) || len(cal.Weekdays) != 7 {
		return false
	}
	if cal.LeapYear.Rule != reckoning.LeapGregorian {
		return false
	}
	for i, m := range cal.Months {
		leapDays := gregorianMonthDays[i]
		if i == 1 {
			leapDays++
		}
		if m.Intercalary || m.NumberOfDays != gregorianMonthDays[i] || m.NumberOfLeapYearDays != leapDays {
			return false
		}
	}
	return true
}

// noteTime converts a note date to midnight UTC of the matching Gregorian day.
func noteTime(cal *reckoning.Calendar, d reckoning.NoteDate) (time.Time, error) {
	mi, ok := cal.MonthIndexByID(d.MonthID)
	if !ok {
		return time.Time{}, fmt.Errorf("unknown month %d", d.MonthID)
	}
	dt := cal.Clamp(reckoning.DateTime{Year: d.Year, Month: mi, Day: d.Day - 1})
	return time.Date(dt.Year, time.Month(dt.Month+1), dt.Day+1, 0, 0, 0, 0, time.UTC), nil
}

// recurrenceRule returns the RRULE value for a repeat mode, or "" for
// notes that do not repeat.
func recurrenceRule(repeats reckoning.Repeat, start time.Time) (string, error) {
	opt := rrule.ROption{Dtstart: start}
	switch repeats {
	case reckoning.RepeatWeekly:
		opt.Freq = rrule.WEEKLY
	case reckoning.RepeatMonthly:
		opt.Freq = rrule.MONTHLY
		opt.Bymonthday, opt.Bysetpos = lastDayFallback(start.Day())
	case reckoning.RepeatYearly:
		opt.Freq = rrule.YEARLY
		if start.Day() > 28 {
			opt.Bymonth = []int{int(start.Month())}
			opt.Bymonthday, opt.Bysetpos = lastDayFallback(start.Day())
		}
	default:
		return "", nil
	}

	if _, err := rrule.NewRRule(opt); err != nil {
		return "", fmt.Errorf("building recurrence: %w", err)
	}
	return opt.RRuleString(), nil
}

// lastDayFallback returns BYMONTHDAY and BYSETPOS values that pick day, or
// the last day of a month too short to have it. Days every month has need
// neither.
func lastDayFallback(day int) (monthDays, setPos []int) {
	if day <= 28 {
		return nil, nil
	}
	for d := 28; d <= day; d++ {
		monthDays = append(monthDays, d)
	}
	return monthDays, []int{-1}
}

// ExportNotesICS renders notes as an iCalendar feed named after calName.
// stamp is written as DTSTAMP on every event.
func ExportNotesICS(cal *reckoning.Calendar, calName string, notes []reckoning.Note, stamp time.Time) (string, error) {
	if !isGregorianShaped(cal) {
		return "", ErrNotGregorian
	}

	feed := ics.NewCalendar()
	feed.SetMethod(ics.MethodPublish)
	feed.SetProductId(icsProductID)
	feed.SetName(calName)

	for _, n := range notes {
		if n.Start == nil || n.End == nil {
			return "", fmt.Errorf("note %q: missing start or end date", n.Title)
		}
		start, err := noteTime(cal, *n.Start)
		if err != nil {
			return "", fmt.Errorf("note %q start: %w", n.Title, err)
		}
		end, err := noteTime(cal, *n.End)
		if err != nil {
			return "", fmt.Errorf("note %q end: %w", n.Title, err)
		}
		if end.Before(start) {
			end = start
		}
		rule, err := recurrenceRule(n.Repeats, start)
		if err != nil {
			return "", fmt.Errorf("note %q: %w", n.Title, err)
		}

		event := feed.AddEvent(n.ID)
		event.SetDtStampTime(stamp.UTC())
		event.SetSummary(sanitize.PlainText(n.Title))
		event.SetAllDayStartAt(start)
		// DTEND of an all-day event is exclusive.
		event.SetAllDayEndAt(end.AddDate(0, 0, 1))
		if rule != "" {
			event.SetProperty(ics.ComponentPropertyRrule, rule)
		}
	}

	return feed.Serialize(), nil
}
