package reckoning

import (
	"errors"
	"reflect"
	"testing"
)

func TestPresetNames(t *testing.T) {
	want := []string{"golarion", "gregorian", "harptos"}
	if got := PresetNames(); !reflect.DeepEqual(got, want) {
		t.Errorf("PresetNames() = %v, want %v", got, want)
	}
}

func TestLoadPreset_Unknown(t *testing.T) {
	_, err := LoadPreset("discworld")
	if !errors.Is(err, ErrUnknownPreset) {
		t.Errorf("LoadPreset(discworld) error = %v, want ErrUnknownPreset", err)
	}
}

func TestLoadPreset_ReturnsIndependentCopies(t *testing.T) {
	a := mustPreset(t, "gregorian")
	a.Months[0].Name = "Changed"

	if b := mustPreset(t, "gregorian"); b.Months[0].Name != "January" {
		t.Errorf("second load saw mutation: %q", b.Months[0].Name)
	}
}

func TestGolarion_LeapYearsEveryEighth(t *testing.T) {
	cal := mustPreset(t, "golarion")

	if cal.IsLeapYear(4710) {
		t.Error("4710 AR should be a common year")
	}
	if got := cal.YearLength(4712); got != 366 {
		t.Errorf("YearLength(4712) = %d, want 366", got)
	}
	if got := cal.MonthDays(4712, 1); got != 29 {
		t.Errorf("Calistril 4712 has %d days, want 29", got)
	}
	if got := cal.YearLabel(4710); got != "4710 AR" {
		t.Errorf("YearLabel = %q", got)
	}
}

func TestParseYAML_AcceptsJSON(t *testing.T) {
	doc := []byte(`{"name": "Flat", "year_zero": 0,
  "months": [{"name": "Only", "numeric_representation": 1, "number_of_days": 10, "number_of_leap_year_days": 10}],
  "weekdays": [{"numeric_representation": 1, "name": "Day"}],
  "time": {"hours_in_day": 10, "minutes_in_hour": 10, "seconds_in_minute": 10}}`)
	cal, err := ParseYAML(doc)
	if err != nil {
		t.Fatalf("ParseYAML: %v", err)
	}
	if got := cal.SecondsToDate(1000 * 25); got != (DateTime{Year: 2, Month: 0, Day: 5}) {
		t.Errorf("SecondsToDate = %v", got)
	}
}

func TestParseYAML_Invalid(t *testing.T) {
	if _, err := ParseYAML([]byte("months: [")); err == nil {
		t.Error("expected a decode error")
	}
	if _, err := ParseYAML([]byte("name: Empty\n")); err == nil {
		t.Error("expected a validation error for a calendar without months")
	}
}
