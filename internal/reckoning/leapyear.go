package reckoning

// LeapRule names a leap-year strategy.
type LeapRule string

const (
	// LeapNone never produces a leap year.
	LeapNone LeapRule = "none"

	// LeapGregorian uses the 4/100/400 rule.
	LeapGregorian LeapRule = "gregorian"

	// LeapCustom makes every year divisible by CustomMod a leap year.
	LeapCustom LeapRule = "custom"
)

// LeapYearRule decides which years use each month's leap-year day count.
// An empty Rule behaves like LeapNone. A custom rule with CustomMod of zero
// never produces a leap year.
type LeapYearRule struct {
	Rule      LeapRule `json:"rule" yaml:"rule"`
	CustomMod int      `json:"custom_mod,omitempty" yaml:"custom_mod,omitempty"`
}

// IsLeapYear reports whether year is a leap year under the rule. Negative
// years follow the same modulus arithmetic as positive ones.
func (r LeapYearRule) IsLeapYear(year int) bool {
	switch r.Rule {
	case LeapGregorian:
		return floorMod(year, 4) == 0 && (floorMod(year, 100) != 0 || floorMod(year, 400) == 0)
	case LeapCustom:
		if r.CustomMod <= 0 {
			return false
		}
		return floorMod(year, r.CustomMod) == 0
	default:
		return false
	}
}

// LeapYearsBefore returns how many leap years fall strictly before year,
// counted from year zero. The count is negative for negative years, so only
// differences between two results are meaningful as a span count:
//
//	LeapYearsBefore(b) - LeapYearsBefore(a) == leap years in [a, b)
func (r LeapYearRule) LeapYearsBefore(year int) int {
	var n int
	switch r.Rule {
	case LeapGregorian:
		n = floorDiv(year, 4) - floorDiv(year, 100) + floorDiv(year, 400)
	case LeapCustom:
		if r.CustomMod <= 0 {
			return 0
		}
		n = floorDiv(year, r.CustomMod)
	default:
		return 0
	}
	// The closed forms count up to and including year itself.
	if r.IsLeapYear(year) {
		n--
	}
	return n
}

// PreviousLeapYear returns the most recent leap year at or before year.
// The second result is false when the rule never produces leap years.
func (r LeapYearRule) PreviousLeapYear(year int) (int, bool) {
	switch r.Rule {
	case LeapCustom:
		if r.CustomMod <= 0 {
			return 0, false
		}
		return year - floorMod(year, r.CustomMod), true
	case LeapGregorian:
		// Gregorian leap years are never more than eight years apart.
		for y := year; y > year-8; y-- {
			if r.IsLeapYear(y) {
				return y, true
			}
		}
	}
	return 0, false
}

// leapFraction is the long-run share of leap years, used only to seed the
// year estimate in SecondsToDate.
func (r LeapYearRule) leapFraction() float64 {
	switch r.Rule {
	case LeapGregorian:
		return 97.0 / 400.0
	case LeapCustom:
		if r.CustomMod <= 0 {
			return 0
		}
		return 1 / float64(r.CustomMod)
	default:
		return 0
	}
}
