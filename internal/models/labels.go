package models

import "strings"

// Allergen is one of the allergens a food may declare
type Allergen string

const (
	AllergenGluten      Allergen = "GLUTEN"
	AllergenCrustaceans Allergen = "CRUSTACEANS"
	AllergenEggs        Allergen = "EGGS"
	AllergenFish        Allergen = "FISH"
	AllergenPeanuts     Allergen = "PEANUTS"
	AllergenSoybeans    Allergen = "SOYBEANS"
	AllergenMilk        Allergen = "MILK"
	AllergenNuts        Allergen = "NUTS"
	AllergenCelery      Allergen = "CELERY"
	AllergenMustard     Allergen = "MUSTARD"
	AllergenSesame      Allergen = "SESAME"
)

// Allergens lists every known allergen
var Allergens = []Allergen{
	AllergenGluten, AllergenCrustaceans, AllergenEggs, AllergenFish, AllergenPeanuts,
	AllergenSoybeans, AllergenMilk, AllergenNuts, AllergenCelery, AllergenMustard, AllergenSesame,
}

// FoodTag is a descriptive label attached to a food
type FoodTag string

const (
	TagWithEggs    FoodTag = "WITH_EGGS"
	TagBreakfast   FoodTag = "BREAKFAST"
	TagSeafood     FoodTag = "SEAFOOD"
	TagVegan       FoodTag = "VEGAN"
	TagGlutenFree  FoodTag = "GLUTEN_FREE"
	TagLactoseFree FoodTag = "LACTOSE_FREE"
	TagLowCalorie  FoodTag = "LOW_CALORIE"
	TagChicken     FoodTag = "CHICKEN"
	TagPasta       FoodTag = "PASTA"
	TagSandwich    FoodTag = "SANDWICH"
	TagSoup        FoodTag = "SOUP"
	TagSalad       FoodTag = "SALAD"
	TagDessert     FoodTag = "DESSERT"
	TagSnacks      FoodTag = "SNACKS"
	TagSpicy       FoodTag = "SPICY"
	TagSweet       FoodTag = "SWEET"
	TagRawFood     FoodTag = "RAW_FOOD"
	TagFastFood    FoodTag = "FAST_FOOD"
	TagTraditional FoodTag = "TRADITIONAL"
	TagBBQ         FoodTag = "BBQ"
	TagGrilled     FoodTag = "GRILLED"
	TagFried       FoodTag = "FRIED"
	TagBaked       FoodTag = "BAKED"
	TagSteamed     FoodTag = "STEAMED"
	TagDairy       FoodTag = "DAIRY"
	TagNutFree     FoodTag = "NUT_FREE"
	TagLowSugar    FoodTag = "LOW_SUGAR"
)

// FoodTags lists every known tag
var FoodTags = []FoodTag{
	TagWithEggs, TagBreakfast, TagSeafood, TagVegan, TagGlutenFree, TagLactoseFree,
	TagLowCalorie, TagChicken, TagPasta, TagSandwich, TagSoup, TagSalad, TagDessert,
	TagSnacks, TagSpicy, TagSweet, TagRawFood, TagFastFood, TagTraditional, TagBBQ,
	TagGrilled, TagFried, TagBaked, TagSteamed, TagDairy, TagNutFree, TagLowSugar,
}

// ParseAllergens converts names to allergens, dropping unknown names
func ParseAllergens(names []string) []Allergen {
	result := make([]Allergen, 0, len(names))
	for _, name := range names {
		candidate := Allergen(normalizeLabel(name))
		for _, known := range Allergens {
			if candidate == known {
				result = append(result, known)
				break
			}
		}
	}
	return result
}

// ParseFoodTags converts names to tags, dropping unknown names
func ParseFoodTags(names []string) []FoodTag {
	result := make([]FoodTag, 0, len(names))
	for _, name := range names {
		candidate := FoodTag(normalizeLabel(name))
		for _, known := range FoodTags {
			if candidate == known {
				result = append(result, known)
				break
			}
		}
	}
	return result
}

// normalizeLabel turns "gluten-free" or "Gluten Free" into "GLUTEN_FREE"
func normalizeLabel(name string) string {
	name = strings.ToUpper(strings.TrimSpace(name))
	return strings.NewReplacer("-", "_", " ", "_").Replace(name)
}
