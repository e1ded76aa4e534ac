// Package model defines shared data structures.
package model

import (
	"strings"
	"time"
)

// Category groups dhikr by occasion.
type Category string

// Known categories. Unknown values decode to CategoryGeneral.
const (
	CategoryMorning     Category = "Morning"
	CategoryEvening     Category = "Evening"
	CategoryAfterPrayer Category = "After Prayer"
	CategoryGeneral     Category = "General"
	CategoryPraise      Category = "Praise"
	CategoryForgiveness Category = "Forgiveness"
)

// Categories lists every category in display order.
var Categories = []Category{
	CategoryAfterPrayer,
	CategoryGeneral,
	CategoryForgiveness,
	CategoryPraise,
	CategoryMorning,
	CategoryEvening,
}

// ParseCategory maps free text to a category, falling back to General.
func ParseCategory(s string) Category {
	s = strings.TrimSpace(s)
	for _, c := range Categories {
		if strings.EqualFold(s, string(c)) {
			return c
		}
	}
	switch strings.ToLower(strings.ReplaceAll(s, "-", " ")) {
	case "after prayer", "afterprayer", "salah":
		return CategoryAfterPrayer
	}
	return CategoryGeneral
}

// Dhikr is a phrase to recite and its recommended repeat count.
type Dhikr struct {
	ID              string
	Phrase          string
	Transliteration string
	Translation     string
	Count           int
	Category        Category
	Custom          bool
}

// CustomDhikr is a user-authored dhikr.
type CustomDhikr struct {
	ID              string
	Phrase          string
	Transliteration string
	Translation     string
	Count           int
	Category        Category
	CreatedAt       time.Time
}

// Dhikr converts a custom entry into a selectable dhikr.
func (c CustomDhikr) Dhikr() Dhikr {
	return Dhikr{
		ID:              c.ID,
		Phrase:          c.Phrase,
		Transliteration: c.Transliteration,
		Translation:     c.Translation,
		Count:           c.Count,
		Category:        c.Category,
		Custom:          true,
	}
}

// Config defines counter settings resolved from flags and the config file.
type Config struct {
	Mode          string
	Milestones    []int
	Theme         string
	Sound         bool
	Haptic        bool
	Backend       string
	DBPath        string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	Notifier      string
	LogLevel      string
	LogPath       string
}

// StatsConfig defines filters and options for stats output.
type StatsConfig struct {
	DhikrID     string
	Since       *time.Time
	Last        int
	CurveWindow int
	Top         int
}

// DailyTally is the number of taps recorded on one calendar day.
type DailyTally struct {
	Day  time.Time
	Taps int
}

// DhikrTotal aggregates taps and completed sets for one dhikr.
type DhikrTotal struct {
	DhikrID     string
	Taps        int
	Completions int
}

// Completion records one completed set.
type Completion struct {
	ID          int64
	DhikrID     string
	Total       int
	Target      int
	CompletedAt time.Time
}
