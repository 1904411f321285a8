package reckoning

import (
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Validate checks that the calendar is internally consistent enough to
// ingest: at least one month, no negative day counts, unique month ids, a
// positive time base, a known leap rule, and season and moon anchors that
// point at existing months. Arithmetic on an invalid calendar still never
// panics; it returns the documented degenerate values instead.
func (c Calendar) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Months, validation.Required, validation.By(uniqueMonthIDs)),
		validation.Field(&c.Weekdays),
		validation.Field(&c.LeapYear),
		validation.Field(&c.Time),
		validation.Field(&c.Seasons, validation.By(c.seasonAnchors)),
		validation.Field(&c.Moons, validation.By(c.moonAnchors)),
	)
}

func (m Month) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.Name, validation.Required),
		validation.Field(&m.NumberOfDays, validation.Min(0)),
		validation.Field(&m.NumberOfLeapYearDays, validation.Min(0)),
	)
}

func (w Weekday) Validate() error {
	return validation.ValidateStruct(&w,
		validation.Field(&w.Name, validation.Required),
	)
}

func (r LeapYearRule) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Rule, validation.In(LeapNone, LeapGregorian, LeapCustom)),
		validation.Field(&r.CustomMod, validation.Min(0)),
	)
}

func (t TimeBase) Validate() error {
	return validation.ValidateStruct(&t,
		validation.Field(&t.HoursInDay, validation.Required, validation.Min(1)),
		validation.Field(&t.MinutesInHour, validation.Required, validation.Min(1)),
		validation.Field(&t.SecondsInMinute, validation.Required, validation.Min(1)),
	)
}

func (s Season) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.Name, validation.Required),
		validation.Field(&s.StartingDay, validation.Min(0)),
		validation.Field(&s.SunriseTime, validation.Min(0)),
		validation.Field(&s.SunsetTime, validation.Min(0)),
	)
}

func (m Moon) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.Name, validation.Required),
		validation.Field(&m.CycleLength, validation.Required, validation.Min(0.0)),
		validation.Field(&m.FirstNewMoon),
		validation.Field(&m.Phases, validation.Required),
	)
}

func (f FirstNewMoon) Validate() error {
	return validation.ValidateStruct(&f,
		validation.Field(&f.YearReset, validation.In(MoonResetNone, MoonResetLeapYear, MoonResetXYears)),
		validation.Field(&f.YearX,
			validation.Min(0),
			validation.When(f.YearReset == MoonResetXYears, validation.Required),
		),
		validation.Field(&f.Day, validation.Min(0)),
	)
}

func (p MoonPhase) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Name, validation.Required),
		validation.Field(&p.Length, validation.Min(0.0)),
	)
}

func uniqueMonthIDs(value interface{}) error {
	months, _ := value.([]Month)
	seen := make(map[int]bool, len(months))
	for _, m := range months {
		if seen[m.NumericRepresentation] {
			return fmt.Errorf("duplicate numeric_representation %d", m.NumericRepresentation)
		}
		seen[m.NumericRepresentation] = true
	}
	return nil
}

func (c Calendar) seasonAnchors(value interface{}) error {
	seasons, _ := value.([]Season)
	for i, s := range seasons {
		if s.StartingMonth < 0 || s.StartingMonth >= len(c.Months) {
			return fmt.Errorf("season %d starts in unknown month %d", i, s.StartingMonth)
		}
	}
	return nil
}

func (c Calendar) moonAnchors(value interface{}) error {
	moons, _ := value.([]Moon)
	for i, m := range moons {
		if m.FirstNewMoon.Month < 0 || m.FirstNewMoon.Month >= len(c.Months) {
			return fmt.Errorf("moon %d references unknown month %d", i, m.FirstNewMoon.Month)
		}
	}
	return nil
}
