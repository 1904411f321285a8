package reckoning

// ViewMode selects which derived position ViewPosition reports.
type ViewMode int

const (
	// ViewCurrent is the day the calendar clock is on.
	ViewCurrent ViewMode = iota

	// ViewSelected is the day a user picked, falling back to current.
	ViewSelected

	// ViewVisible is the day highlighted in the month being browsed.
	ViewVisible
)

// MonthRef names one month of one year.
type MonthRef struct {
	Year  int `json:"year"`
	Month int `json:"month"`
}

// ViewState is the caller-owned input to ViewPosition. Nothing in the
// calendar model tracks current, selected or visible days.
type ViewState struct {
	Current  int64     `json:"current"`
	Selected *DateTime `json:"selected,omitempty"`
	Visible  *MonthRef `json:"visible,omitempty"`
}

// ViewPosition derives the date for mode from state. The result carries no
// time of day and is clamped to the calendar.
func (c *Calendar) ViewPosition(state ViewState, mode ViewMode) DateTime {
	current := c.SecondsToDate(state.Current).Date()
	selected := current
	if state.Selected != nil {
		selected = c.Clamp(state.Selected.Date())
	}

	switch mode {
	case ViewSelected:
		return selected
	case ViewVisible:
		if state.Visible == nil {
			return selected
		}
		ref := c.Clamp(DateTime{Year: state.Visible.Year, Month: state.Visible.Month})
		switch {
		case selected.Year == ref.Year && selected.Month == ref.Month:
			return selected
		case current.Year == ref.Year && current.Month == ref.Month:
			return current
		default:
			return ref
		}
	default:
		return current
	}
}
