package reckoning

import "math"

// MoonReset controls how a moon's reference new moon is re-anchored.
type MoonReset string

const (
	// MoonResetNone keeps the configured reference date forever.
	MoonResetNone MoonReset = "none"

	// MoonResetLeapYear moves the reference into the most recent leap year.
	MoonResetLeapYear MoonReset = "leap-year"

	// MoonResetXYears moves the reference forward every YearX years.
	MoonResetXYears MoonReset = "x-years"
)

// FirstNewMoon is a known new moon plus its reset policy. Month and Day are
// 0-based indices.
type FirstNewMoon struct {
	YearReset MoonReset `json:"year_reset,omitempty" yaml:"year_reset,omitempty"`
	YearX     int       `json:"year_x,omitempty" yaml:"year_x,omitempty"`
	Year      int       `json:"year" yaml:"year"`
	Month     int       `json:"month" yaml:"month"`
	Day       int       `json:"day" yaml:"day"`
}

// MoonPhase is one named span of a lunar cycle.
type MoonPhase struct {
	Name string `json:"name" yaml:"name"`
	Icon string `json:"icon,omitempty" yaml:"icon,omitempty"`

	// Length in days. Zero means "share the rest of the cycle".
	Length float64 `json:"length,omitempty" yaml:"length,omitempty"`

	// SingleDay phases always last exactly one day.
	SingleDay bool `json:"single_day,omitempty" yaml:"single_day,omitempty"`
}

// Moon describes a satellite and its phase cycle.
type Moon struct {
	Name           string       `json:"name" yaml:"name"`
	Color          string       `json:"color,omitempty" yaml:"color,omitempty"`
	CycleLength    float64      `json:"cycle_length" yaml:"cycle_length"`
	CycleDayAdjust float64      `json:"cycle_day_adjust,omitempty" yaml:"cycle_day_adjust,omitempty"`
	FirstNewMoon   FirstNewMoon `json:"first_new_moon" yaml:"first_new_moon"`
	Phases         []MoonPhase  `json:"phases" yaml:"phases"`
}

// MoonPhaseInfo is the resolved state of one moon on one day.
type MoonPhaseInfo struct {
	Moon  string    `json:"moon"`
	Color string    `json:"color,omitempty"`
	Phase MoonPhase `json:"phase"`

	// PhaseIndex is -1 when the moon has no usable cycle or phases.
	PhaseIndex int `json:"phase_index"`

	// DayInCycle is the position within the cycle in days.
	DayInCycle float64 `json:"day_in_cycle"`

	// Fraction is DayInCycle / CycleLength, 0 at new moon.
	Fraction float64 `json:"fraction"`
}

// DefaultMoonPhases returns the eight conventional phases with the four
// principal ones lasting a single day.
func DefaultMoonPhases() []MoonPhase {
	return []MoonPhase{
		{Name: "New Moon", Icon: "new", SingleDay: true},
		{Name: "Waxing Crescent", Icon: "waxing-crescent"},
		{Name: "First Quarter", Icon: "first-quarter", SingleDay: true},
		{Name: "Waxing Gibbous", Icon: "waxing-gibbous"},
		{Name: "Full Moon", Icon: "full", SingleDay: true},
		{Name: "Waning Gibbous", Icon: "waning-gibbous"},
		{Name: "Last Quarter", Icon: "last-quarter", SingleDay: true},
		{Name: "Waning Crescent", Icon: "waning-crescent"},
	}
}

// PhaseLengths returns the effective length of every phase. Single-day
// phases take one day, phases with a configured length keep it, and the
// remaining phases split what is left of the cycle evenly.
func (m Moon) PhaseLengths() []float64 {
	lengths := make([]float64, len(m.Phases))
	fixed, open := 0.0, 0
	for i, p := range m.Phases {
		switch {
		case p.SingleDay:
			lengths[i] = 1
		case p.Length > 0:
			lengths[i] = p.Length
		default:
			open++
			continue
		}
		fixed += lengths[i]
	}
	if open > 0 {
		share := math.Max(0, (m.CycleLength-fixed)/float64(open))
		for i, p := range m.Phases {
			if !p.SingleDay && p.Length <= 0 {
				lengths[i] = share
			}
		}
	}
	return lengths
}

// NormalizePhaseLengths returns a copy of m whose phases all carry their
// effective length.
func NormalizePhaseLengths(m Moon) Moon {
	lengths := m.PhaseLengths()
	phases := make([]MoonPhase, len(m.Phases))
	for i, p := range m.Phases {
		p.Length = lengths[i]
		phases[i] = p
	}
	m.Phases = phases
	return m
}

// referenceYear applies the moon's reset policy to find the year of the new
// moon that anchors the cycle for target year.
func (c *Calendar) referenceYear(f FirstNewMoon, year int) int {
	switch f.YearReset {
	case MoonResetLeapYear:
		if y, ok := c.LeapYear.PreviousLeapYear(year); ok {
			return y
		}
	case MoonResetXYears:
		if f.YearX > 0 {
			return year - floorMod(year-f.Year, f.YearX)
		}
	}
	return f.Year
}

// MoonPhaseAt resolves the phase of moon on the given date.
func (c *Calendar) MoonPhaseAt(moon Moon, year, monthIndex, dayIndex int) MoonPhaseInfo {
	info := MoonPhaseInfo{Moon: moon.Name, Color: moon.Color, PhaseIndex: -1}
	if moon.CycleLength <= 0 || len(c.Months) == 0 {
		return info
	}

	f := moon.FirstNewMoon
	ref := c.EpochDay(c.referenceYear(f, year), f.Month, f.Day)
	elapsed := float64(c.EpochDay(year, monthIndex, dayIndex) - ref)

	pos := math.Mod(elapsed+moon.CycleDayAdjust, moon.CycleLength)
	if pos < 0 {
		pos += moon.CycleLength
	}
	if pos >= moon.CycleLength {
		pos = 0
	}
	info.DayInCycle = pos
	info.Fraction = pos / moon.CycleLength

	start := 0.0
	lengths := moon.PhaseLengths()
	for i, l := range lengths {
		end := start + l
		// The last phase, or one overrunning the cycle, ends at the cycle.
		if i == len(lengths)-1 || end > moon.CycleLength {
			end = moon.CycleLength
		}
		if pos >= start && pos < end {
			info.Phase = moon.Phases[i]
			info.Phase.Length = lengths[i]
			info.PhaseIndex = i
			return info
		}
		start = end
		if start >= moon.CycleLength {
			break
		}
	}
	return info
}

// MoonPhases resolves every configured moon on the given date.
func (c *Calendar) MoonPhases(year, monthIndex, dayIndex int) []MoonPhaseInfo {
	out := make([]MoonPhaseInfo, 0, len(c.Moons))
	for _, m := range c.Moons {
		out = append(out, c.MoonPhaseAt(m, year, monthIndex, dayIndex))
	}
	return out
}
