package search

import (
	"cmp"
	"slices"
	"strings"

	"github.com/nekogravitycat/lesson-booking-backend/internal/catalog"
)

// SortKey orders a result list. Every ordering is stable.
type SortKey string

const (
	SortRelevance    SortKey = "relevance"
	SortRating       SortKey = "rating"
	SortPriceLow     SortKey = "price_low"
	SortPriceHigh    SortKey = "price_high"
	SortAvailability SortKey = "availability"
	SortNewest       SortKey = "newest"
)

func ParseSort(s string) (SortKey, error) {
	switch k := SortKey(s); k {
	case SortRelevance, SortRating, SortPriceLow, SortPriceHigh, SortAvailability, SortNewest:
		return k, nil
	case "":
		return SortRelevance, nil
	}
	return "", ErrUnknownSort
}

// categoryLabels maps category ids to the label searched for in specialties.
var categoryLabels = map[string]string{
	"music":   "音楽",
	"art":     "美術",
	"sports":  "体育",
	"english": "英語",
	"science": "科学",
	"dance":   "ダンス",
}

// Apply filters list by c and orders the survivors by key. The input is not modified.
func Apply(list []catalog.Instructor, c Criteria, key SortKey) []catalog.Instructor {
	out := make([]catalog.Instructor, 0, len(list))
	for _, in := range list {
		if matches(in, c) {
			out = append(out, in)
		}
	}

	if cmpFn := comparator(key); cmpFn != nil {
		slices.SortStableFunc(out, cmpFn)
	}
	return out
}

func matches(in catalog.Instructor, c Criteria) bool {
	if c.Keyword != "" && !matchKeyword(in, c.Keyword) {
		return false
	}
	if c.Region != "" && !strings.Contains(in.Location, c.Region) {
		return false
	}
	if len(c.Categories) > 0 && !matchCategories(in.Specialties, c.Categories) {
		return false
	}
	if len(c.AgeGroups) > 0 && !slices.ContainsFunc(c.AgeGroups, func(g string) bool {
		return slices.Contains(in.AgeGroups, g)
	}) {
		return false
	}
	if c.PriceMin != nil && in.HourlyRate < *c.PriceMin {
		return false
	}
	if c.PriceMax != nil && in.HourlyRate > *c.PriceMax {
		return false
	}
	if c.LessonMode != "" && !matchMode(in.LessonModes, c.LessonMode) {
		return false
	}
	if c.MinRating != nil && in.Rating < *c.MinRating {
		return false
	}
	if c.Availability && !in.IsAvailable {
		return false
	}
	return true
}

func matchKeyword(in catalog.Instructor, keyword string) bool {
	k := strings.ToLower(keyword)
	if strings.Contains(strings.ToLower(in.Name), k) || strings.Contains(strings.ToLower(in.Bio), k) {
		return true
	}
	return slices.ContainsFunc(in.Specialties, func(s string) bool {
		return strings.Contains(strings.ToLower(s), k)
	})
}

func matchCategories(specialties, categories []string) bool {
	for _, cat := range categories {
		label, ok := categoryLabels[cat]
		if !ok {
			continue
		}
		if slices.ContainsFunc(specialties, func(s string) bool { return strings.Contains(s, label) }) {
			return true
		}
	}
	return false
}

// matchMode treats "both" as matching any instructor offering more than one mode.
func matchMode(modes []string, mode string) bool {
	if slices.Contains(modes, mode) {
		return true
	}
	return mode == catalog.ModeBoth && len(modes) > 1
}

func comparator(key SortKey) func(a, b catalog.Instructor) int {
	switch key {
	case SortRating:
		return func(a, b catalog.Instructor) int { return cmp.Compare(b.Rating, a.Rating) }
	case SortPriceLow:
		return func(a, b catalog.Instructor) int { return cmp.Compare(a.HourlyRate, b.HourlyRate) }
	case SortPriceHigh:
		return func(a, b catalog.Instructor) int { return cmp.Compare(b.HourlyRate, a.HourlyRate) }
	case SortAvailability:
		return func(a, b catalog.Instructor) int { return cmp.Compare(rank(b.IsAvailable), rank(a.IsAvailable)) }
	case SortNewest:
		return func(a, b catalog.Instructor) int { return cmp.Compare(b.ID, a.ID) }
	}
	return nil
}

func rank(b bool) int {
	if b {
		return 1
	}
	return 0
}
