package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RSVPStatus is the attendance state of an RSVP.
type RSVPStatus string

const (
	RSVPStatusPending   RSVPStatus = "pending"
	RSVPStatusConfirmed RSVPStatus = "confirmed"
	RSVPStatusCancelled RSVPStatus = "cancelled"
)

// Valid reports whether s is a known RSVP status.
func (s RSVPStatus) Valid() bool {
	switch s {
	case RSVPStatusPending, RSVPStatusConfirmed, RSVPStatusCancelled:
		return true
	}
	return false
}

// RSVP is one attendee's registration for an event. An email holds at most
// one RSVP per event, enforced by idx_rsvp_event_email.
type RSVP struct {
	ID        uuid.UUID  `json:"id" gorm:"type:char(36);primaryKey"`
	Name      string     `json:"name" gorm:"size:255;not null"`
	Email     string     `json:"email" gorm:"size:255;not null;uniqueIndex:idx_rsvp_event_email,priority:2"`
	Status    RSVPStatus `json:"status" gorm:"type:varchar(20);not null;default:'pending';index"`
	EventID   uuid.UUID  `json:"eventId" gorm:"type:char(36);not null;uniqueIndex:idx_rsvp_event_email,priority:1"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`

	Event *Event `json:"event,omitempty" gorm:"foreignKey:EventID"`
}

// TableName keeps the table name stable regardless of naming strategy.
func (RSVP) TableName() string { return "rsvps" }

// BeforeCreate sets UUID before creating the record.
func (r *RSVP) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
