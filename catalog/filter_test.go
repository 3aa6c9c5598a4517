package catalog

import (
	"testing"

	"github.com/anjiri1684/learnlingo/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func teacherIDs(ts []models.Teacher) []string {
	ids := make([]string, 0, len(ts))
	for _, t := range ts {
		ids = append(ids, t.ID)
	}
	return ids
}

func TestApplyFilters_spanishScenario(t *testing.T) {
	all := Fixtures()
	require.Len(t, all, 6)

	got := ApplyFilters(all, Criteria{Language: "Spanish"})
	assert.Equal(t, []string{"2"}, teacherIDs(got))

	got = ApplyFilters(all, Criteria{Language: "sPaNiSh"})
	assert.Equal(t, []string{"2"}, teacherIDs(got))
}

func TestApplyFilters_priceThirtyScenario(t *testing.T) {
	var all []models.Teacher
	for i, price := range []float64{25, 30, 35, 40} {
		all = append(all, models.Teacher{ID: models.NormalizeID(i + 1), PricePerHour: price})
	}

	band, err := ParsePriceBand("30")
	require.NoError(t, err)
	got := ApplyFilters(all, Criteria{Price: band})
	require.Len(t, got, 1)
	assert.Equal(t, 30.0, got[0].PricePerHour)

	got = ApplyFilters(all, Criteria{Price: Band30_40})
	assert.Equal(t, []string{"2", "3"}, teacherIDs(got))
}

func TestApplyFilters(t *testing.T) {
	all := []models.Teacher{
		{ID: "1", Languages: []string{"English", "French"}, Levels: []string{models.LevelA1, models.LevelB1}, PricePerHour: 15},
		{ID: "2", Languages: []string{"Spanish"}, Levels: []string{models.LevelB1}, PricePerHour: 20},
		{ID: "3", Languages: []string{"French"}, Levels: []string{models.LevelC1}, PricePerHour: 45},
		{ID: "4", Languages: []string{"Ukrainian", "Polish"}, Levels: []string{models.LevelA1}, PricePerHour: 29.99},
	}

	tests := []struct {
		name     string
		criteria Criteria
		want     []string
	}{
		{"no criteria", Criteria{}, []string{"1", "2", "3", "4"}},
		{"all everywhere", Criteria{Language: "all", Level: "all", Price: AnyPrice}, []string{"1", "2", "3", "4"}},
		{"language substring", Criteria{Language: "fren"}, []string{"1", "3"}},
		{"level exact", Criteria{Level: models.LevelB1}, []string{"1", "2"}},
		{"level not substring", Criteria{Level: "B1"}, []string{}},
		{"price band lower edge", Criteria{Price: Band20_30}, []string{"2", "4"}},
		{"price band upper edge excluded", Criteria{Price: Band10_20}, []string{"1"}},
		{"combined", Criteria{Language: "french", Level: models.LevelA1, Price: Band10_20}, []string{"1"}},
		{"no match", Criteria{Language: "German"}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, teacherIDs(ApplyFilters(all, tt.criteria)))
		})
	}
}

func TestApplyFilters_subsetPreservingOrder(t *testing.T) {
	all := Fixtures()
	criteria := []Criteria{
		{},
		{Language: "an"},
		{Level: models.LevelA1},
		{Price: Band20_30},
		{Language: "i", Level: models.LevelB2, Price: Band20_30},
		{Price: Band40Up},
	}
	for _, c := range criteria {
		got := ApplyFilters(all, c)
		pos := -1
		for _, t2 := range got {
			idx := -1
			for i, orig := range all {
				if orig.ID == t2.ID {
					idx = i
					break
				}
			}
			require.NotEqual(t, -1, idx, "result must come from the input")
			assert.Greater(t, idx, pos, "input order must be preserved")
			pos = idx
		}
	}
}

func TestApplyFilters_orderIndependent(t *testing.T) {
	all := Fixtures()
	a := ApplyFilters(ApplyFilters(all, Criteria{Language: "i"}), Criteria{Price: Band20_30})
	b := ApplyFilters(ApplyFilters(all, Criteria{Price: Band20_30}), Criteria{Language: "i"})
	c := ApplyFilters(all, Criteria{Language: "i", Price: Band20_30})
	assert.Equal(t, teacherIDs(c), teacherIDs(a))
	assert.Equal(t, teacherIDs(c), teacherIDs(b))
}

func TestFavoritesOf(t *testing.T) {
	all := Fixtures()
	favs := map[string]bool{"2": true, "5": true}
	got := FavoritesOf(all, func(id interface{}) bool { return favs[models.NormalizeID(id)] })
	assert.Equal(t, []string{"2", "5"}, teacherIDs(got))
}
