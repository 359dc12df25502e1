package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// EventStatus is the moderation state of an event.
type EventStatus string

const (
	EventStatusPendingReview EventStatus = "PENDING_REVIEW"
	EventStatusApproved      EventStatus = "APPROVED"
	EventStatusRejected      EventStatus = "REJECTED"
)

// Valid reports whether s is a known moderation status.
func (s EventStatus) Valid() bool {
	switch s {
	case EventStatusPendingReview, EventStatusApproved, EventStatusRejected:
		return true
	}
	return false
}

// Event is a scheduled gathering owned by a user.
type Event struct {
	ID          uuid.UUID           `json:"id" gorm:"type:char(36);primaryKey"`
	Title       string              `json:"title" gorm:"size:255;not null"`
	Description string              `json:"description" gorm:"type:text;not null"`
	Date        time.Time           `json:"date" gorm:"not null;index"`
	Location    string              `json:"location" gorm:"size:255;not null"`
	Capacity    *int                `json:"capacity"`
	IsPaid      bool                `json:"isPaid" gorm:"not null;default:false"`
	Price       decimal.NullDecimal `json:"price" gorm:"type:decimal(10,2)"`
	OwnerID     string              `json:"ownerId" gorm:"size:64;not null;index"`
	Status      EventStatus         `json:"status" gorm:"type:varchar(20);not null;default:'PENDING_REVIEW';index"`
	CreatedAt   time.Time           `json:"createdAt" gorm:"index"`
	UpdatedAt   time.Time           `json:"updatedAt"`

	// Relations
	Owner *User  `json:"owner,omitempty" gorm:"foreignKey:OwnerID"`
	RSVPs []RSVP `json:"rsvps,omitempty" gorm:"foreignKey:EventID"`
}

// BeforeCreate sets UUID before creating the record.
func (e *Event) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

// HasCapacity reports whether a capacity limit is set. Unset means unlimited.
func (e *Event) HasCapacity() bool {
	return e.Capacity != nil
}

// OwnedBy reports whether userID owns the event.
func (e *Event) OwnedBy(userID string) bool {
	return e.OwnerID == userID
}
