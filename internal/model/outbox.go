package model

import "time"

// OutboxStatus tracks delivery of a NotificationOutbox row.
type OutboxStatus int8

const (
	OutboxStatusPending OutboxStatus = 0
	OutboxStatusSent    OutboxStatus = 1
	OutboxStatusFailed  OutboxStatus = 2
)

// Notification kinds written alongside RSVP changes.
const (
	NotificationRSVPCreatedAttendee = "rsvp.created.attendee"
	NotificationRSVPCreatedOwner    = "rsvp.created.owner"
	NotificationRSVPStatusAttendee  = "rsvp.status.attendee"
	NotificationRSVPStatusOwner     = "rsvp.status.owner"
)

// NotificationOutbox is a notification committed in the same transaction as
// the change that caused it and delivered later by the relayer.
type NotificationOutbox struct {
	ID          uint64       `json:"id" gorm:"primaryKey;autoIncrement"`
	Kind        string       `json:"kind" gorm:"size:64;not null"`
	AggregateID string       `json:"aggregateId" gorm:"size:64;not null;index"`
	Recipient   string       `json:"recipient" gorm:"size:255;not null"`
	Subject     string       `json:"subject" gorm:"size:255;not null"`
	Body        string       `json:"body" gorm:"type:text;not null"`
	Payload     string       `json:"payload" gorm:"type:text;not null"`
	Status      OutboxStatus `json:"status" gorm:"not null;default:0;index"`
	Attempts    int          `json:"attempts" gorm:"not null;default:0"`
	LastError   string       `json:"lastError" gorm:"size:1024"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

// TableName pins the outbox table name.
func (NotificationOutbox) TableName() string { return "notification_outbox" }
