package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"eventease/internal/model"
)

// RSVPRepository defines RSVP persistence operations.
type RSVPRepository interface {
	Create(ctx context.Context, rsvp *model.RSVP) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.RSVP, error)
	FindByEventAndEmail(ctx context.Context, eventID uuid.UUID, email string) (*model.RSVP, error)
	CountByStatus(ctx context.Context, eventID uuid.UUID, status model.RSVPStatus) (int64, error)
	CountByEvents(ctx context.Context, eventIDs []uuid.UUID) (map[uuid.UUID]int64, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.RSVPStatus) error
	DeleteByEvents(ctx context.Context, eventIDs []uuid.UUID) error
	Count(ctx context.Context) (int64, error)
}

type rsvpRepository struct {
	db *gorm.DB
}

// NewRSVPRepository creates a new RSVP repository.
func NewRSVPRepository(db *gorm.DB) RSVPRepository {
	return &rsvpRepository{db: db}
}

func (r *rsvpRepository) Create(ctx context.Context, rsvp *model.RSVP) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(rsvp).Error
}

// FindByID loads the RSVP with its event and the event owner.
func (r *rsvpRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.RSVP, error) {
	var rsvp model.RSVP
	if err := r.db.WithContext(ctx).Preload("Event.Owner").Where("id = ?", id).First(&rsvp).Error; err != nil {
		return nil, err
	}
	return &rsvp, nil
}

func (r *rsvpRepository) FindByEventAndEmail(ctx context.Context, eventID uuid.UUID, email string) (*model.RSVP, error) {
	var rsvp model.RSVP
	if err := r.db.WithContext(ctx).Where("event_id = ? AND email = ?", eventID, email).First(&rsvp).Error; err != nil {
		return nil, err
	}
	return &rsvp, nil
}

func (r *rsvpRepository) CountByStatus(ctx context.Context, eventID uuid.UUID, status model.RSVPStatus) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.RSVP{}).
		Where("event_id = ? AND status = ?", eventID, status).
		Count(&n).Error
	return n, err
}

type eventCount struct {
	EventID uuid.UUID
	Total   int64
}

// CountByEvents returns the number of RSVPs per event; events without RSVPs are absent.
func (r *rsvpRepository) CountByEvents(ctx context.Context, eventIDs []uuid.UUID) (map[uuid.UUID]int64, error) {
	out := make(map[uuid.UUID]int64, len(eventIDs))
	if len(eventIDs) == 0 {
		return out, nil
	}
	var rows []eventCount
	err := r.db.WithContext(ctx).Model(&model.RSVP{}).
		Select("event_id, COUNT(*) AS total").
		Where("event_id IN ?", eventIDs).
		Group("event_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.EventID] = row.Total
	}
	return out, nil
}

func (r *rsvpRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.RSVPStatus) error {
	return r.db.WithContext(ctx).Model(&model.RSVP{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"status": status, "updated_at": time.Now()}).Error
}

func (r *rsvpRepository) DeleteByEvents(ctx context.Context, eventIDs []uuid.UUID) error {
	if len(eventIDs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Where("event_id IN ?", eventIDs).Delete(&model.RSVP{}).Error
}

func (r *rsvpRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.RSVP{}).Count(&n).Error
	return n, err
}
