package model

import "testing"

func TestParseCategory(t *testing.T) {
	cases := []struct {
		in   string
		want Category
	}{
		{"Morning", CategoryMorning},
		{"evening", CategoryEvening},
		{"After Prayer", CategoryAfterPrayer},
		{"after-prayer", CategoryAfterPrayer},
		{"forgiveness", CategoryForgiveness},
		{"", CategoryGeneral},
		{"unknown", CategoryGeneral},
	}
	for _, tc := range cases {
		if got := ParseCategory(tc.in); got != tc.want {
			t.Fatalf("ParseCategory(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestCustomDhikrConversion(t *testing.T) {
	c := CustomDhikr{ID: "abc", Phrase: "x", Count: 7, Category: CategoryPraise}
	d := c.Dhikr()
	if !d.Custom || d.ID != "abc" || d.Count != 7 || d.Category != CategoryPraise {
		t.Fatalf("unexpected conversion: %+v", d)
	}
}
