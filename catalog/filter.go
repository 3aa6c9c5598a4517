package catalog

import (
	"strings"

	"github.com/anjiri1684/learnlingo/models"
)

// ApplyFilters keeps the teachers matching every criterion, in input order.
func ApplyFilters(all []models.Teacher, c Criteria) []models.Teacher {
	language := strings.ToLower(strings.TrimSpace(c.Language))
	if language == All {
		language = ""
	}
	level := strings.TrimSpace(c.Level)
	if strings.EqualFold(level, All) {
		level = ""
	}

	out := make([]models.Teacher, 0, len(all))
	for _, t := range all {
		if language != "" && !speaks(t, language) {
			continue
		}
		if level != "" && !teachesLevel(t, level) {
			continue
		}
		if !c.Price.Contains(t.PricePerHour) {
			continue
		}
		out = append(out, t)
	}
	return out
}

func speaks(t models.Teacher, lowered string) bool {
	for _, l := range t.Languages {
		if strings.Contains(strings.ToLower(l), lowered) {
			return true
		}
	}
	return false
}

func teachesLevel(t models.Teacher, level string) bool {
	for _, l := range t.Levels {
		if l == level {
			return true
		}
	}
	return false
}

// FavoritesOf keeps the teachers whose id is a favorite, in catalog order.
func FavoritesOf(all []models.Teacher, isFavorite func(id interface{}) bool) []models.Teacher {
	out := make([]models.Teacher, 0)
	for _, t := range all {
		if isFavorite(t.ID) {
			out = append(out, t)
		}
	}
	return out
}
