package reckoning

import "testing"

func TestFloorDivMod(t *testing.T) {
	tests := []struct {
		a, b, div, mod int
	}{
		{7, 4, 1, 3},
		{-7, 4, -2, 1},
		{-8, 4, -2, 0},
		{0, 4, 0, 0},
		{-1, 400, -1, 399},
		{7, -4, -2, -1},
	}
	for _, tt := range tests {
		if got := floorDiv(tt.a, tt.b); got != tt.div {
			t.Errorf("floorDiv(%d, %d) = %d, want %d", tt.a, tt.b, got, tt.div)
		}
		if got := floorMod(tt.a, tt.b); got != tt.mod {
			t.Errorf("floorMod(%d, %d) = %d, want %d", tt.a, tt.b, got, tt.mod)
		}
	}
}

func TestIsLeapYear_Gregorian(t *testing.T) {
	rule := LeapYearRule{Rule: LeapGregorian}
	tests := []struct {
		year int
		want bool
	}{
		{1900, false},
		{2000, true},
		{2023, false},
		{2024, true},
		{2100, false},
		{1600, true},
		{0, true},
		{-4, true},
		{-100, false},
		{-400, true},
		{-1, false},
	}
	for _, tt := range tests {
		if got := rule.IsLeapYear(tt.year); got != tt.want {
			t.Errorf("IsLeapYear(%d) = %v, want %v", tt.year, got, tt.want)
		}
	}
}

func TestLeapYearsBefore_StepMatchesIsLeapYear(t *testing.T) {
	rules := []LeapYearRule{
		{Rule: LeapGregorian},
		{Rule: LeapCustom, CustomMod: 8},
		{Rule: LeapCustom, CustomMod: 3},
		{Rule: LeapNone},
		{Rule: LeapCustom, CustomMod: 0},
	}
	for _, rule := range rules {
		for y := -2500; y <= 2500; y++ {
			step := rule.LeapYearsBefore(y+1) - rule.LeapYearsBefore(y)
			want := 0
			if rule.IsLeapYear(y) {
				want = 1
			}
			if step != want {
				t.Fatalf("%+v: LeapYearsBefore(%d) - LeapYearsBefore(%d) = %d, want %d", rule, y+1, y, step, want)
			}
		}
	}
}

func TestLeapYear_CustomModulusEight(t *testing.T) {
	rule := LeapYearRule{Rule: LeapCustom, CustomMod: 8}

	if rule.IsLeapYear(4710) {
		t.Error("4710 should not be a leap year with modulus 8")
	}
	if !rule.IsLeapYear(4712) {
		t.Error("4712 should be a leap year with modulus 8")
	}

	for _, y := range []int{4710, 4712, 4713, 8, 9, 0, -8, -9} {
		want := floorDiv(y, 8)
		if rule.IsLeapYear(y) {
			want--
		}
		if got := rule.LeapYearsBefore(y); got != want {
			t.Errorf("LeapYearsBefore(%d) = %d, want %d", y, got, want)
		}
	}
}

func TestLeapYear_Degenerate(t *testing.T) {
	for _, rule := range []LeapYearRule{{}, {Rule: LeapNone}, {Rule: LeapCustom}, {Rule: "lunar"}} {
		if rule.IsLeapYear(2024) || rule.IsLeapYear(0) {
			t.Errorf("%+v: expected no leap years", rule)
		}
		if got := rule.LeapYearsBefore(2024); got != 0 {
			t.Errorf("%+v: LeapYearsBefore = %d, want 0", rule, got)
		}
		if _, ok := rule.PreviousLeapYear(2024); ok {
			t.Errorf("%+v: PreviousLeapYear should report false", rule)
		}
	}
}

func TestPreviousLeapYear(t *testing.T) {
	greg := LeapYearRule{Rule: LeapGregorian}
	tests := []struct {
		rule LeapYearRule
		year int
		want int
	}{
		{greg, 2024, 2024},
		{greg, 2023, 2020},
		{greg, 1903, 1896},
		{greg, -1, -4},
		{LeapYearRule{Rule: LeapCustom, CustomMod: 8}, 4710, 4704},
		{LeapYearRule{Rule: LeapCustom, CustomMod: 8}, -3, -8},
	}
	for _, tt := range tests {
		got, ok := tt.rule.PreviousLeapYear(tt.year)
		if !ok || got != tt.want {
			t.Errorf("%+v PreviousLeapYear(%d) = %d, %v; want %d", tt.rule, tt.year, got, ok, tt.want)
		}
	}
}
