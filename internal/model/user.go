package model

import "time"

// Role gates what a user may do.
type Role string

const (
	RoleAdmin      Role = "ADMIN"
	RoleStaff      Role = "STAFF"
	RoleEventOwner Role = "EVENT_OWNER"
)

// Valid reports whether r is one of the three known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleStaff, RoleEventOwner:
		return true
	}
	return false
}

// SelfServiceRole reports whether r may be chosen at sign-up.
func (r Role) SelfServiceRole() bool {
	return r == RoleEventOwner || r == RoleStaff
}

// User mirrors an identity-provider account. ID is the provider's subject id.
type User struct {
	ID        string    `json:"id" gorm:"size:64;primaryKey"`
	Email     string    `json:"email" gorm:"uniqueIndex;size:255;not null"`
	Name      string    `json:"name" gorm:"size:255;not null"`
	Role      Role      `json:"role" gorm:"type:varchar(20);not null;default:'EVENT_OWNER';index"`
	CreatedAt time.Time `json:"createdAt" gorm:"index"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// UserSummary is the public projection of a User.
type UserSummary struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  Role   `json:"role"`
}

// Summary returns the public fields of u.
func (u *User) Summary() UserSummary {
	return UserSummary{ID: u.ID, Email: u.Email, Name: u.Name, Role: u.Role}
}
