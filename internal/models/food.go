package models

import (
	"fmt"
	"strings"
)

// FoodStatus is the current kitchen-service state of a food item
type FoodStatus string

const (
	// FoodStatusServing means the food is on the counter right now
	FoodStatusServing FoodStatus = "SERVING"

	// FoodStatusPreparing means the kitchen is preparing the food
	FoodStatusPreparing FoodStatus = "PREPARING"

	// FoodStatusUnavailable means the food is not offered
	FoodStatusUnavailable FoodStatus = "UNAVAILABLE"
)

// FoodStatuses lists every valid status
var FoodStatuses = []FoodStatus{FoodStatusServing, FoodStatusPreparing, FoodStatusUnavailable}

// ParseFoodStatus parses a status name case-insensitively
func ParseFoodStatus(s string) (FoodStatus, error) {
	candidate := FoodStatus(strings.ToUpper(strings.TrimSpace(s)))
	if candidate.Valid() {
		return candidate, nil
	}
	return "", fmt.Errorf("unknown food status %q", s)
}

// Valid reports whether s is one of the known statuses
func (s FoodStatus) Valid() bool {
	switch s {
	case FoodStatusServing, FoodStatusPreparing, FoodStatusUnavailable:
		return true
	}
	return false
}

// Notifiable reports whether a transition to s is worth telling users about
func (s FoodStatus) Notifiable() bool {
	return s == FoodStatusServing || s == FoodStatusPreparing
}

// Food is a single menu item of a restaurant
type Food struct {
	ID           string     `bson:"_id" json:"id"`
	Name         string     `bson:"name" json:"name"`
	EnglishName  string     `bson:"english_name" json:"english_name"`
	GermanName   string     `bson:"german_name" json:"german_name"`
	PhotoURL     string     `bson:"photo_url,omitempty" json:"photo_url,omitempty"`
	RestaurantID string     `bson:"restaurant_id" json:"restaurant_id"`
	Allergens    []Allergen `bson:"allergens" json:"allergens"`
	Tags         []FoodTag  `bson:"tags" json:"tags"`
	Status       FoodStatus `bson:"status" json:"status"`
	RegularPrice float64    `bson:"regular_price" json:"regular_price"`
	StudentPrice float64    `bson:"student_price" json:"student_price"`
}

// NewFood creates a new food with the given source-language name. Foods start out unavailable.
func NewFood(name, restaurantID string) *Food {
	return &Food{
		Name:         strings.TrimSpace(name),
		RestaurantID: restaurantID,
		Status:       FoodStatusUnavailable,
	}
}

// DisplayName returns the name of the food for the given language code.
// Croatian is the source language; missing translations fall back to it.
func (f *Food) DisplayName(lang string) string {
	var name string
	switch strings.ToLower(lang) {
	case "en":
		name = f.EnglishName
	case "de":
		name = f.GermanName
	default:
		name = f.Name
	}
	if name == "" {
		return f.Name
	}
	return name
}

// HasTag reports whether the food carries tag
func (f *Food) HasTag(tag FoodTag) bool {
	for _, t := range f.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// ContainsAllergen reports whether the food lists allergen
func (f *Food) ContainsAllergen(allergen Allergen) bool {
	for _, a := range f.Allergens {
		if a == allergen {
			return true
		}
	}
	return false
}

// String returns a string representation of the food
func (f *Food) String() string {
	return fmt.Sprintf("%s (%.2f / %.2f) [%s]", f.Name, f.RegularPrice, f.StudentPrice, f.Status)
}
