package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ReportStatus is the review state of a report.
type ReportStatus string

const (
	ReportStatusPending   ReportStatus = "PENDING"
	ReportStatusResolved  ReportStatus = "RESOLVED"
	ReportStatusDismissed ReportStatus = "DISMISSED"
)

// Valid reports whether s is a known report status.
func (s ReportStatus) Valid() bool {
	switch s {
	case ReportStatusPending, ReportStatusResolved, ReportStatusDismissed:
		return true
	}
	return false
}

// Report flags exactly one event or one comment for staff review.
type Report struct {
	ID         uuid.UUID    `json:"id" gorm:"type:char(36);primaryKey"`
	Reason     string       `json:"reason" gorm:"type:text;not null"`
	Status     ReportStatus `json:"status" gorm:"type:varchar(20);not null;default:'PENDING';index"`
	ReporterID string       `json:"reporterId" gorm:"size:64;not null;index"`
	EventID    *uuid.UUID   `json:"eventId" gorm:"type:char(36);index"`
	CommentID  *uuid.UUID   `json:"commentId" gorm:"type:char(36);index"`
	CreatedAt  time.Time    `json:"createdAt"`
	UpdatedAt  time.Time    `json:"updatedAt"`

	Reporter *User    `json:"reporter,omitempty" gorm:"foreignKey:ReporterID"`
	Event    *Event   `json:"event,omitempty" gorm:"foreignKey:EventID"`
	Comment  *Comment `json:"comment,omitempty" gorm:"foreignKey:CommentID"`
}

// BeforeCreate sets UUID before creating the record.
func (r *Report) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
