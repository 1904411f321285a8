package reckoning

import (
	"testing"
	"time"
)

// mustPreset loads a bundled calendar or fails the test.
func mustPreset(t *testing.T, name string) *Calendar {
	t.Helper()
	cal, err := LoadPreset(name)
	if err != nil {
		t.Fatalf("LoadPreset(%q): %v", name, err)
	}
	return cal
}

// fromTime maps a UTC time.Time onto the gregorian preset's DateTime.
func fromTime(tm time.Time) DateTime {
	return DateTime{
		Year:   tm.Year(),
		Month:  int(tm.Month()) - 1,
		Day:    tm.Day() - 1,
		Hour:   tm.Hour(),
		Minute: tm.Minute(),
		Second: tm.Second(),
	}
}

// tinyCalendar is a small synthetic calendar: three months of 4, 5 and 3
// days (the second gains a day every third year), a 3-day week and a
// 2x2x5 second day.
func tinyCalendar() *Calendar {
	return &Calendar{
		Name:     "Tiny",
		YearZero: 10,
		Months: []Month{
			{Name: "A", NumericRepresentation: 1, NumberOfDays: 4, NumberOfLeapYearDays: 4},
			{Name: "B", NumericRepresentation: 2, NumberOfDays: 5, NumberOfLeapYearDays: 6},
			{Name: "C", NumericRepresentation: 3, NumberOfDays: 3, NumberOfLeapYearDays: 3},
		},
		Weekdays: []Weekday{{NumericRepresentation: 1, Name: "X"}, {NumericRepresentation: 2, Name: "Y"}, {NumericRepresentation: 3, Name: "Z"}},
		LeapYear: LeapYearRule{Rule: LeapCustom, CustomMod: 3},
		Time:     TimeBase{HoursInDay: 2, MinutesInHour: 2, SecondsInMinute: 5},
	}
}
