package reckoning

// Season marks the start of a part of the year.
type Season struct {
	Name  string `json:"name" yaml:"name"`
	Color string `json:"color,omitempty" yaml:"color,omitempty"`
	Icon  string `json:"icon,omitempty" yaml:"icon,omitempty"`

	// StartingMonth and StartingDay are 0-based indices.
	StartingMonth int `json:"starting_month" yaml:"starting_month"`
	StartingDay   int `json:"starting_day" yaml:"starting_day"`

	// Sunrise and sunset as seconds into the day.
	SunriseTime int `json:"sunrise_time" yaml:"sunrise_time"`
	SunsetTime  int `json:"sunset_time" yaml:"sunset_time"`
}

// SeasonAt returns the season active on the given date: the one with the
// latest start not after the date, or the season starting last in the year
// when the date precedes every start. The second result is false when the
// calendar has no seasons.
func (c *Calendar) SeasonAt(year, monthIndex, dayIndex int) (Season, bool) {
	i := c.seasonIndex(year, monthIndex, dayIndex)
	if i < 0 {
		return Season{}, false
	}
	return c.Seasons[i], true
}

func (c *Calendar) seasonIndex(year, monthIndex, dayIndex int) int {
	if len(c.Seasons) == 0 || len(c.Months) == 0 {
		return -1
	}
	target := c.DayOfYear(year, monthIndex, dayIndex)

	active, latest := -1, -1
	activeStart, latestStart := -1, -1
	for i, s := range c.Seasons {
		start := c.DayOfYear(year, s.StartingMonth, s.StartingDay)
		if start <= target && start >= activeStart {
			active, activeStart = i, start
		}
		if start >= latestStart {
			latest, latestStart = i, start
		}
	}
	if active < 0 {
		// Still in the season that began late last year.
		return latest
	}
	return active
}
