package models

// Restaurant is a campus restaurant with its staff and menu
type Restaurant struct {
	ID       string   `bson:"_id" json:"id"`
	Name     string   `bson:"name" json:"name"`
	Address  string   `bson:"address" json:"address"`
	City     string   `bson:"city" json:"city"`
	ImageURL string   `bson:"image_url,omitempty" json:"image_url,omitempty"`
	StaffIDs []string `bson:"staff_ids" json:"staff_ids"`
	FoodIDs  []string `bson:"food_ids" json:"food_ids"`
	Lat      *float64 `bson:"lat,omitempty" json:"lat,omitempty"`
	Lng      *float64 `bson:"lng,omitempty" json:"lng,omitempty"`
}

// HasStaffMember reports whether userID works at the restaurant
func (r *Restaurant) HasStaffMember(userID string) bool {
	return containsString(r.StaffIDs, userID)
}

// HasFood reports whether foodID is on the restaurant's menu
func (r *Restaurant) HasFood(foodID string) bool {
	return containsString(r.FoodIDs, foodID)
}

func containsString(values []string, value string) bool {
	for _, v := range values {
		if v == value {
			return true
		}
	}
	return false
}
