package reckoning

import (
	"testing"
	"time"
)

func TestDayOfWeek_Christmas2021IsSaturday(t *testing.T) {
	cal := mustPreset(t, "gregorian")

	if got := cal.WeekdayName(1970, 0, 0); got != "Thursday" {
		t.Fatalf("1970-01-01 = %s, want Thursday", got)
	}
	if got := cal.WeekdayName(2021, 11, 24); got != "Saturday" {
		t.Errorf("2021-12-25 = %s, want Saturday", got)
	}
}

func TestDayOfWeek_MatchesTimePackage(t *testing.T) {
	cal := mustPreset(t, "gregorian")

	start := time.Date(-500, 1, 1, 0, 0, 0, 0, time.UTC)
	for tm := start; tm.Year() < 2600; tm = tm.AddDate(0, 0, 13) {
		d := fromTime(tm)
		if got := cal.DayOfWeek(d.Year, d.Month, d.Day); got != int(tm.Weekday()) {
			t.Fatalf("DayOfWeek(%v) = %d, want %d", d, got, tm.Weekday())
		}
	}
}

func TestDayOfWeek_Periodic(t *testing.T) {
	for _, cal := range []*Calendar{mustPreset(t, "golarion"), tinyCalendar()} {
		n := int64(len(cal.Weekdays))
		spd := cal.Time.SecondsPerDay()
		for ts := int64(-400) * spd; ts < 400*spd; ts += spd {
			a := cal.SecondsToDate(ts)
			b := cal.SecondsToDate(ts + n*spd)
			wa := cal.DayOfWeek(a.Year, a.Month, a.Day)
			wb := cal.DayOfWeek(b.Year, b.Month, b.Day)
			if wa != wb {
				t.Fatalf("%s: weekday of %v is %d but %v is %d", cal.Name, a, wa, b, wb)
			}
		}
	}
}

func TestDayOfWeek_IntercalaryDaysSkipCycle(t *testing.T) {
	cal := mustPreset(t, "harptos")

	// Every regular month spans exactly three tendays and festival days do
	// not advance the cycle, so each month starts on First-day in every
	// year, leap years included.
	for year := 1470; year <= 1500; year++ {
		for mi, m := range cal.Months {
			if m.Intercalary {
				continue
			}
			if got := cal.DayOfWeek(year, mi, 0); got != 0 {
				t.Fatalf("%s %d starts on weekday %d, want 0", m.Name, year, got)
			}
		}
	}
}

func TestDayOfWeek_IntercalaryInclude(t *testing.T) {
	cal := tinyCalendar()
	cal.LeapYear = LeapYearRule{}
	cal.Months[1].Intercalary = true

	// B is skipped: C day 0 follows A day 3 directly.
	if got, want := cal.DayOfWeek(10, 2, 0), cal.DayOfWeek(10, 0, 3)+1; got != want%3 {
		t.Errorf("excluded intercalary: C day 0 = %d, want %d", got, want%3)
	}

	cal.Months[1].IntercalaryInclude = true
	if got, want := cal.DayOfWeek(10, 2, 0), cal.DayOfWeek(10, 1, 4)+1; got != want%3 {
		t.Errorf("included intercalary: C day 0 = %d, want %d", got, want%3)
	}
}

func TestDayOfWeek_StartingWeekday(t *testing.T) {
	cal := tinyCalendar()
	two := 2
	cal.Months[1].StartingWeekday = &two

	for year := 0; year < 20; year++ {
		if got := cal.DayOfWeek(year, 1, 0); got != 2 {
			t.Errorf("year %d: B day 0 = %d, want 2", year, got)
		}
		if got := cal.DayOfWeek(year, 1, 2); got != 1 {
			t.Errorf("year %d: B day 2 = %d, want 1", year, got)
		}
	}
}

func TestDayOfWeek_NoWeekdays(t *testing.T) {
	cal := tinyCalendar()
	cal.Weekdays = nil

	if got := cal.DayOfWeek(2000, 1, 1); got != 0 {
		t.Errorf("DayOfWeek without weekdays = %d, want 0", got)
	}
	if got := cal.WeekdayName(2000, 1, 1); got != "" {
		t.Errorf("WeekdayName without weekdays = %q, want empty", got)
	}
	if got := cal.MonthLayout(2000, 1).StartWeekday; got != -1 {
		t.Errorf("MonthLayout.StartWeekday = %d, want -1", got)
	}
}

func TestMonthLayout(t *testing.T) {
	cal := mustPreset(t, "gregorian")

	got := cal.MonthLayout(2024, 1)
	want := MonthLayout{Year: 2024, MonthIndex: 1, MonthName: "February", Days: 29, StartWeekday: 4}
	if got != want {
		t.Errorf("MonthLayout(2024, 1) = %+v, want %+v", got, want)
	}

	harptos := mustPreset(t, "harptos")
	if got := harptos.MonthLayout(1491, 1); got.StartWeekday != -1 || got.Days != 1 {
		t.Errorf("Midwinter layout = %+v, want 1 day outside the cycle", got)
	}
}
