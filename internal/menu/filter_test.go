package menu

import (
	"testing"

	"github.com/bradykim7/menza/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleFoods() []models.Food {
	return []models.Food{
		{
			ID: "1", Name: "Sarma", EnglishName: "Stuffed cabbage",
			Tags: []models.FoodTag{models.TagTraditional}, Allergens: []models.Allergen{models.AllergenCelery},
			Status: models.FoodStatusServing, StudentPrice: 2.5,
		},
		{
			ID: "2", Name: "Juha od rajčice", EnglishName: "Tomato soup",
			Tags: []models.FoodTag{models.TagSoup, models.TagVegan}, Allergens: nil,
			Status: models.FoodStatusPreparing, StudentPrice: 0.8,
		},
		{
			ID: "3", Name: "Palačinke", EnglishName: "Pancakes",
			Tags: []models.FoodTag{models.TagDessert, models.TagSweet}, Allergens: []models.Allergen{models.AllergenGluten, models.AllergenMilk, models.AllergenEggs},
			Status: models.FoodStatusUnavailable, StudentPrice: 1.2,
		},
	}
}

func ids(foods []models.Food) []string {
	result := make([]string, len(foods))
	for i, f := range foods {
		result[i] = f.ID
	}
	return result
}

func TestFilter_Apply(t *testing.T) {
	tests := []struct {
		name   string
		filter Filter
		want   []string
	}{
		{"empty filter keeps order", Filter{}, []string{"1", "2", "3"}},
		{"query matches translation", Filter{Query: "soup"}, []string{"2"}},
		{"query is case insensitive", Filter{Query: "SARMA"}, []string{"1"}},
		{"all tags required", Filter{Tags: []models.FoodTag{models.TagSoup, models.TagVegan}}, []string{"2"}},
		{"tag missing", Filter{Tags: []models.FoodTag{models.TagSoup, models.TagSweet}}, []string{}},
		{"exclude allergens", Filter{ExcludeAllergens: []models.Allergen{models.AllergenGluten, models.AllergenCelery}}, []string{"2"}},
		{"status", Filter{Status: models.FoodStatusServing}, []string{"1"}},
		{"max price", Filter{MaxStudentPrice: 1.2}, []string{"2", "3"}},
		{"sort by price", Filter{Sort: SortByPrice}, []string{"2", "3", "1"}},
		{"sort by name", Filter{Sort: SortByName}, []string{"2", "3", "1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(tt.filter.Apply(sampleFoods(), nil)))
		})
	}
}

func TestFilter_SortByRating(t *testing.T) {
	ratings := map[string]float64{"1": 3, "2": 4.5}
	got := Filter{Sort: SortByRating}.Apply(sampleFoods(), ratings)
	assert.Equal(t, []string{"2", "1", "3"}, ids(got))
}

func TestParseFilter(t *testing.T) {
	filter, err := ParseFilter([]string{"tag:vegan", "no:gluten", "status:serving", "max:3,5", "sort:price", "tomato", "soup"})
	require.NoError(t, err)

	assert.Equal(t, []models.FoodTag{models.TagVegan}, filter.Tags)
	assert.Equal(t, []models.Allergen{models.AllergenGluten}, filter.ExcludeAllergens)
	assert.Equal(t, models.FoodStatusServing, filter.Status)
	assert.InDelta(t, 3.5, filter.MaxStudentPrice, 0.0001)
	assert.Equal(t, SortByPrice, filter.Sort)
	assert.Equal(t, "tomato soup", filter.Query)
}

func TestParseFilter_Errors(t *testing.T) {
	for _, arg := range []string{"tag:tasty", "no:sugar", "status:cold", "max:cheap", "sort:random"} {
		_, err := ParseFilter([]string{arg})
		assert.Error(t, err, arg)
	}
}
