package model

import "time"

// Credential is the identity provider's record of an account's password.
// Subject is the id mirrored into User.ID.
type Credential struct {
	Subject      string    `json:"subject" gorm:"size:64;primaryKey"`
	Email        string    `json:"email" gorm:"uniqueIndex;size:255;not null"`
	PasswordHash string    `json:"-" gorm:"size:255;not null"` // Never expose in JSON
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}
