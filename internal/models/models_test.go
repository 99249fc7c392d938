package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFoodStatus(t *testing.T) {
	status, err := ParseFoodStatus(" serving ")
	require.NoError(t, err)
	assert.Equal(t, FoodStatusServing, status)

	_, err = ParseFoodStatus("COOKING")
	assert.Error(t, err)
}

func TestFoodStatus_Notifiable(t *testing.T) {
	assert.True(t, FoodStatusServing.Notifiable())
	assert.True(t, FoodStatusPreparing.Notifiable())
	assert.False(t, FoodStatusUnavailable.Notifiable())
	assert.False(t, FoodStatus("").Notifiable())
}

func TestFood_DisplayName(t *testing.T) {
	food := &Food{Name: "Grah", EnglishName: "Bean stew", GermanName: ""}

	assert.Equal(t, "Grah", food.DisplayName("hr"))
	assert.Equal(t, "Bean stew", food.DisplayName("EN"))
	assert.Equal(t, "Grah", food.DisplayName("de"), "missing translation falls back to the source name")
	assert.Equal(t, "Grah", food.DisplayName("fr"))
}

func TestNewFood_StartsUnavailable(t *testing.T) {
	food := NewFood("  Sarma ", "r1")
	assert.Equal(t, "Sarma", food.Name)
	assert.Equal(t, FoodStatusUnavailable, food.Status)
}

func TestParseLabels(t *testing.T) {
	assert.Equal(t, []Allergen{AllergenGluten, AllergenMilk}, ParseAllergens([]string{"gluten", "unknown", "Milk"}))
	assert.Equal(t, []FoodTag{TagGlutenFree, TagBBQ}, ParseFoodTags([]string{"gluten-free", "bbq", "nope"}))
}

func TestAverageRating(t *testing.T) {
	assert.Equal(t, 0.0, AverageRating(nil))
	assert.InDelta(t, 3.5, AverageRating([]Review{{Rating: 3}, {Rating: 4}}), 0.0001)
}

func TestParseRole(t *testing.T) {
	role, err := ParseRole("staff")
	require.NoError(t, err)
	assert.Equal(t, RoleStaff, role)

	_, err = ParseRole("root")
	assert.Error(t, err)
}
