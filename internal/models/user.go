package models

import (
	"fmt"
	"strings"
)

// Role is the permission level of a user
type Role string

const (
	RoleAdmin   Role = "ADMIN"
	RoleStudent Role = "STUDENT"
	RoleStaff   Role = "STAFF"
)

// ParseRole parses a role name case-insensitively
func ParseRole(s string) (Role, error) {
	switch r := Role(strings.ToUpper(strings.TrimSpace(s))); r {
	case RoleAdmin, RoleStudent, RoleStaff:
		return r, nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

// User is a registered user of the platform
type User struct {
	UID          string   `bson:"_id" json:"uid"`
	Email        string   `bson:"email" json:"email"`
	Username     string   `bson:"username" json:"username"`
	Role         Role     `bson:"role" json:"role"`
	Favorites    []string `bson:"favorites" json:"favorites"`
	DiscordID    string   `bson:"discord_id,omitempty" json:"discord_id,omitempty"`
	PasswordHash string   `bson:"password_hash" json:"-"`
}

// IsAdmin reports whether the user has the admin role
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// HasFavorite reports whether foodID is in the user's favorites
func (u *User) HasFavorite(foodID string) bool {
	return containsString(u.Favorites, foodID)
}

// String returns a string representation of the user
func (u *User) String() string {
	return fmt.Sprintf("%s <%s> (%s)", u.Username, u.Email, u.Role)
}
