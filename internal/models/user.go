package models

import "time"

// Role is stored on the user document, not in the identity provider.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleMechanic Role = "mechanic"
	RoleUser     Role = "user"
)

// IsValidRole checks if a role is one of the known roles.
func IsValidRole(role Role) bool {
	switch role {
	case RoleAdmin, RoleMechanic, RoleUser:
		return true
	default:
		return false
	}
}

// User matches the document in the users collection.
type User struct {
	ID           string     `bson:"_id" json:"uid"`
	Email        string     `bson:"email" json:"email"`
	Username     string     `bson:"username,omitempty" json:"username,omitempty"`
	DisplayName  string     `bson:"displayName" json:"displayName"`
	PasswordHash string     `bson:"passwordHash" json:"-"`
	Role         Role       `bson:"role" json:"role"`
	Provider     string     `bson:"provider" json:"provider"`
	CreatedAt    time.Time  `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time  `bson:"updatedAt" json:"updatedAt"`
	LastLogin    *time.Time `bson:"lastLogin,omitempty" json:"lastLogin,omitempty"`
}

// Identity is the denormalised actor snapshot kept on requests, reports and logs.
type Identity struct {
	ID    string `bson:"id" json:"id"`
	Name  string `bson:"name,omitempty" json:"name,omitempty"`
	Email string `bson:"email,omitempty" json:"email,omitempty"`
	Role  Role   `bson:"role,omitempty" json:"role,omitempty"`
}

// Identity returns the snapshot used when the user acts on something.
func (u *User) Identity() Identity {
	return Identity{ID: u.ID, Name: u.DisplayName, Email: u.Email, Role: u.Role}
}
