// Package catalog provides the built-in dhikr list and lookups over it.
package catalog

import (
	"errors"
	"fmt"
	"strings"

	"github.com/verte-zerg/tasbih/internal/model"
)

// ErrUnknownDhikr is returned when an ID matches no catalog or custom entry.
var ErrUnknownDhikr = errors.New("catalog: unknown dhikr")

var builtin = []model.Dhikr{
	{ID: "subhanallah", Phrase: "سبحان الله", Transliteration: "Subhan Allah", Translation: "Glory be to Allah", Count: 33, Category: model.CategoryAfterPrayer},
	{ID: "alhamdulillah", Phrase: "الحمد لله", Transliteration: "Alhamdulillah", Translation: "All praise is to Allah", Count: 33, Category: model.CategoryAfterPrayer},
	{ID: "allahu-akbar", Phrase: "الله أكبر", Transliteration: "Allahu Akbar", Translation: "Allah is the Greatest", Count: 34, Category: model.CategoryAfterPrayer},
	{ID: "la-ilaha-illallah", Phrase: "لا إله إلا الله", Transliteration: "La ilaha illallah", Translation: "There is no god but Allah", Count: 100, Category: model.CategoryGeneral},
	{ID: "astaghfirullah", Phrase: "أستغفر الله", Transliteration: "Astaghfirullah", Translation: "I seek Allah's forgiveness", Count: 100, Category: model.CategoryForgiveness},
	{ID: "subhanallahi-wa-bihamdihi", Phrase: "سبحان الله وبحمده", Transliteration: "Subhanallahi wa bihamdihi", Translation: "Glory and praise to Allah", Count: 100, Category: model.CategoryPraise},
	{ID: "hasbiyallah", Phrase: "حسبي الله", Transliteration: "Hasbiyallah", Translation: "Allah is sufficient for me", Count: 7, Category: model.CategoryGeneral},
	{ID: "la-hawla", Phrase: "لا حول ولا قوة إلا بالله", Transliteration: "La hawla wala quwwata illa billah", Translation: "There is no power but from Allah", Count: 100, Category: model.CategoryGeneral},
	{ID: "bismillah", Phrase: "بسم الله", Transliteration: "Bismillah", Translation: "In the name of Allah", Count: 33, Category: model.CategoryGeneral},
	{ID: "mashaallah", Phrase: "ما شاء الله", Transliteration: "Masha'Allah", Translation: "As Allah has willed", Count: 33, Category: model.CategoryGeneral},
	{ID: "salawat", Phrase: "اللهم صل على محمد", Transliteration: "Allahumma salli ala Muhammad", Translation: "O Allah, send blessings upon Muhammad", Count: 33, Category: model.CategoryPraise},
	{ID: "taawwudh", Phrase: "أعوذ بالله من الشيطان الرجيم", Transliteration: "A'udhu billahi min ash-shaytan ir-rajim", Translation: "I seek refuge in Allah from the accursed devil", Count: 33, Category: model.CategoryGeneral},
	{ID: "morning-asbahna", Phrase: "اللهم بك أصبحنا وبك أمسينا", Transliteration: "Allahumma bika asbahna wa bika amsayna", Translation: "O Allah, by You we enter the morning and by You we enter the evening", Count: 1, Category: model.CategoryMorning},
	{ID: "evening-amsayna", Phrase: "اللهم بك أمسينا وبك أصبحنا", Transliteration: "Allahumma bika amsayna wa bika asbahna", Translation: "O Allah, by You we enter the evening and by You we enter the morning", Count: 1, Category: model.CategoryEvening},
}

// Catalog resolves dhikr by ID. The zero value is not usable; use Default.
type Catalog struct {
	entries []model.Dhikr
	index   map[string]int
}

// Default returns the built-in catalog.
func Default() *Catalog {
	return build(builtin)
}

// WithCustom returns a catalog that also resolves the given custom dhikr.
// Custom entries are appended after the built-in ones.
func (c *Catalog) WithCustom(custom []model.CustomDhikr) *Catalog {
	entries := make([]model.Dhikr, 0, len(c.entries)+len(custom))
	entries = append(entries, c.entries...)
	for _, cd := range custom {
		entries = append(entries, cd.Dhikr())
	}
	return build(entries)
}

func build(entries []model.Dhikr) *Catalog {
	c := &Catalog{
		entries: entries,
		index:   make(map[string]int, len(entries)),
	}
	for i, d := range entries {
		if _, dup := c.index[d.ID]; dup {
			continue
		}
		c.index[d.ID] = i
	}
	return c
}

// First returns the default selection for a fresh install.
func (c *Catalog) First() model.Dhikr {
	return c.entries[0]
}

// Lookup finds a dhikr by ID.
func (c *Catalog) Lookup(id string) (model.Dhikr, error) {
	i, ok := c.index[strings.TrimSpace(id)]
	if !ok {
		return model.Dhikr{}, fmt.Errorf("%w: %q", ErrUnknownDhikr, id)
	}
	return c.entries[i], nil
}

// All returns the entries in catalog order.
func (c *Catalog) All() []model.Dhikr {
	out := make([]model.Dhikr, len(c.entries))
	copy(out, c.entries)
	return out
}

// ByCategory returns the entries in the given category.
func (c *Catalog) ByCategory(cat model.Category) []model.Dhikr {
	var out []model.Dhikr
	for _, d := range c.entries {
		if d.Category == cat {
			out = append(out, d)
		}
	}
	return out
}

// Len returns the number of entries.
func (c *Catalog) Len() int {
	return len(c.entries)
}

// IsCustom reports whether id names a user-authored entry.
func (c *Catalog) IsCustom(id string) bool {
	i, ok := c.index[strings.TrimSpace(id)]
	return ok && c.entries[i].Custom
}

// Neighbor returns the entry delta steps away from id, wrapping around.
// An unknown id starts from the first entry.
func (c *Catalog) Neighbor(id string, delta int) model.Dhikr {
	n := len(c.entries)
	i, ok := c.index[id]
	if !ok {
		return c.entries[0]
	}
	next := ((i+delta)%n + n) % n
	return c.entries[next]
}
