package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Comment is user-authored text on an event. Moderation hides it, never deletes it.
type Comment struct {
	ID        uuid.UUID `json:"id" gorm:"type:char(36);primaryKey"`
	Content   string    `json:"content" gorm:"type:text;not null"`
	EventID   uuid.UUID `json:"eventId" gorm:"type:char(36);not null;index"`
	AuthorID  string    `json:"authorId" gorm:"size:64;not null;index"`
	IsHidden  bool      `json:"isHidden" gorm:"not null;default:false;index"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Event  *Event `json:"event,omitempty" gorm:"foreignKey:EventID"`
	Author *User  `json:"author,omitempty" gorm:"foreignKey:AuthorID"`
}

// BeforeCreate sets UUID before creating the record.
func (c *Comment) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
