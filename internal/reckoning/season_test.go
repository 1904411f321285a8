package reckoning

import "testing"

func TestSeasonAt(t *testing.T) {
	cal := mustPreset(t, "gregorian")

	tests := []struct {
		name       string
		month, day int
		want       string
	}{
		{"new year wraps to winter", 0, 0, "Winter"},
		{"day before spring", 2, 18, "Winter"},
		{"spring equinox", 2, 19, "Spring"},
		{"independence day", 6, 3, "Summer"},
		{"halloween", 9, 30, "Fall"},
		{"winter solstice", 11, 20, "Winter"},
		{"last day of year", 11, 30, "Winter"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, ok := cal.SeasonAt(2023, tt.month, tt.day)
			if !ok {
				t.Fatal("expected a season")
			}
			if s.Name != tt.want {
				t.Errorf("SeasonAt(2023, %d, %d) = %s, want %s", tt.month, tt.day, s.Name, tt.want)
			}
		})
	}
}

func TestSeasonAt_UnorderedSeasons(t *testing.T) {
	cal := mustPreset(t, "gregorian")
	cal.Seasons[0], cal.Seasons[3] = cal.Seasons[3], cal.Seasons[0]

	if s, _ := cal.SeasonAt(2023, 0, 10); s.Name != "Winter" {
		t.Errorf("January = %s, want Winter", s.Name)
	}
	if s, _ := cal.SeasonAt(2023, 3, 10); s.Name != "Spring" {
		t.Errorf("April = %s, want Spring", s.Name)
	}
}

func TestSeasonAt_NoSeasons(t *testing.T) {
	cal := tinyCalendar()

	s, ok := cal.SeasonAt(12, 1, 1)
	if ok {
		t.Error("expected no season")
	}
	if s != (Season{}) {
		t.Errorf("SeasonAt = %+v, want zero descriptor", s)
	}
}
