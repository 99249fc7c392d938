package menu

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/bradykim7/menza/internal/models"
)

// SortOrder orders search results
type SortOrder string

const (
	SortByName   SortOrder = "name"
	SortByPrice  SortOrder = "price"
	SortByRating SortOrder = "rating"
)

// Filter narrows down a list of foods. Zero values match everything.
type Filter struct {
	Query            string
	Tags             []models.FoodTag
	ExcludeAllergens []models.Allergen
	Status           models.FoodStatus
	MaxStudentPrice  float64
	Sort             SortOrder
}

// Matches reports whether food passes every condition of the filter
func (f Filter) Matches(food models.Food) bool {
	if q := strings.ToLower(strings.TrimSpace(f.Query)); q != "" {
		if !strings.Contains(strings.ToLower(food.Name), q) &&
			!strings.Contains(strings.ToLower(food.EnglishName), q) &&
			!strings.Contains(strings.ToLower(food.GermanName), q) {
			return false
		}
	}

	for _, tag := range f.Tags {
		if !food.HasTag(tag) {
			return false
		}
	}

	for _, allergen := range f.ExcludeAllergens {
		if food.ContainsAllergen(allergen) {
			return false
		}
	}

	if f.Status != "" && food.Status != f.Status {
		return false
	}

	if f.MaxStudentPrice > 0 && food.StudentPrice > f.MaxStudentPrice {
		return false
	}

	return true
}

// Apply returns the matching foods in the requested order. ratings maps food
// ids to their average rating and is only used when sorting by rating.
func (f Filter) Apply(foods []models.Food, ratings map[string]float64) []models.Food {
	result := make([]models.Food, 0, len(foods))
	for _, food := range foods {
		if f.Matches(food) {
			result = append(result, food)
		}
	}

	switch f.Sort {
	case SortByPrice:
		sort.SliceStable(result, func(i, j int) bool {
			return result[i].StudentPrice < result[j].StudentPrice
		})
	case SortByRating:
		sort.SliceStable(result, func(i, j int) bool {
			return ratings[result[i].ID] > ratings[result[j].ID]
		})
	case SortByName:
		sort.SliceStable(result, func(i, j int) bool {
			return strings.ToLower(result[i].Name) < strings.ToLower(result[j].Name)
		})
	}

	return result
}

// ParseFilter builds a filter from command arguments such as
// "tag:vegan no:gluten status:serving max:3.5 sort:price soup".
// Words without a prefix form the text query.
func ParseFilter(args []string) (Filter, error) {
	var filter Filter
	var query []string

	for _, arg := range args {
		key, value, ok := strings.Cut(arg, ":")
		if !ok || value == "" {
			query = append(query, arg)
			continue
		}

		switch strings.ToLower(key) {
		case "tag":
			tags := models.ParseFoodTags([]string{value})
			if len(tags) == 0 {
				return filter, fmt.Errorf("unknown tag %q", value)
			}
			filter.Tags = append(filter.Tags, tags...)
		case "no":
			allergens := models.ParseAllergens([]string{value})
			if len(allergens) == 0 {
				return filter, fmt.Errorf("unknown allergen %q", value)
			}
			filter.ExcludeAllergens = append(filter.ExcludeAllergens, allergens...)
		case "status":
			status, err := models.ParseFoodStatus(value)
			if err != nil {
				return filter, err
			}
			filter.Status = status
		case "max":
			price, err := strconv.ParseFloat(strings.Replace(value, ",", ".", 1), 64)
			if err != nil || price < 0 {
				return filter, fmt.Errorf("invalid price %q", value)
			}
			filter.MaxStudentPrice = price
		case "sort":
			switch order := SortOrder(strings.ToLower(value)); order {
			case SortByName, SortByPrice, SortByRating:
				filter.Sort = order
			default:
				return filter, fmt.Errorf("unknown sort order %q", value)
			}
		default:
			query = append(query, arg)
		}
	}

	filter.Query = strings.Join(query, " ")
	return filter, nil
}
