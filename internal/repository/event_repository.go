package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"eventease/internal/model"
)

// EventFilter narrows List. Zero values match everything.
type EventFilter struct {
	Status  model.EventStatus
	OwnerID string
}

// EventRepository defines event persistence operations.
type EventRepository interface {
	Create(ctx context.Context, event *model.Event) error
	Update(ctx context.Context, event *model.Event) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Event, error)
	FindDetail(ctx context.Context, id uuid.UUID) (*model.Event, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Event, error)
	List(ctx context.Context, filter EventFilter) ([]model.Event, error)
	IDsByOwner(ctx context.Context, ownerID string) ([]uuid.UUID, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.EventStatus) error
	DeleteByIDs(ctx context.Context, ids []uuid.UUID) error
	Count(ctx context.Context) (int64, error)
	Latest(ctx context.Context, limit int) ([]model.Event, error)
	CreatedSince(ctx context.Context, since time.Time) ([]time.Time, error)
}

type eventRepository struct {
	db *gorm.DB
}

// NewEventRepository creates a new event repository.
func NewEventRepository(db *gorm.DB) EventRepository {
	return &eventRepository{db: db}
}

func (r *eventRepository) Create(ctx context.Context, event *model.Event) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(event).Error
}

func (r *eventRepository) Update(ctx context.Context, event *model.Event) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(event).Error
}

func (r *eventRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Event, error) {
	var event model.Event
	if err := r.db.WithContext(ctx).Preload("Owner").Where("id = ?", id).First(&event).Error; err != nil {
		return nil, err
	}
	return &event, nil
}

// FindDetail loads the event with its owner and RSVPs.
func (r *eventRepository) FindDetail(ctx context.Context, id uuid.UUID) (*model.Event, error) {
	var event model.Event
	err := r.db.WithContext(ctx).
		Preload("Owner").
		Preload("RSVPs", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Where("id = ?", id).
		First(&event).Error
	if err != nil {
		return nil, err
	}
	return &event, nil
}

// FindByIDForUpdate finds an event by ID with a row-level lock. Callers must be
// inside WithTransaction for the lock to outlive the statement.
func (r *eventRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Event, error) {
	var event model.Event
	if err := r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).First(&event).Error; err != nil {
		return nil, err
	}
	return &event, nil
}

func (r *eventRepository) List(ctx context.Context, filter EventFilter) ([]model.Event, error) {
	q := r.db.WithContext(ctx).Preload("Owner")
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.OwnerID != "" {
		q = q.Where("owner_id = ?", filter.OwnerID)
	}
	var events []model.Event
	if err := q.Order("date ASC").Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

func (r *eventRepository) IDsByOwner(ctx context.Context, ownerID string) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).Model(&model.Event{}).Where("owner_id = ?", ownerID).Pluck("id", &ids).Error
	return ids, err
}

// UpdateStatus returns gorm.ErrRecordNotFound when no row matched.
func (r *eventRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.EventStatus) error {
	res := r.db.WithContext(ctx).Model(&model.Event{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"status": status, "updated_at": time.Now()})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *eventRepository) DeleteByIDs(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Where("id IN ?", ids).Delete(&model.Event{}).Error
}

func (r *eventRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Event{}).Count(&n).Error
	return n, err
}

// Latest returns the most recently created events with their owner.
func (r *eventRepository) Latest(ctx context.Context, limit int) ([]model.Event, error) {
	var events []model.Event
	if err := r.db.WithContext(ctx).Preload("Owner").Order("created_at DESC").Limit(limit).Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

// CreatedSince returns creation times of events created at or after since.
func (r *eventRepository) CreatedSince(ctx context.Context, since time.Time) ([]time.Time, error) {
	var times []time.Time
	err := r.db.WithContext(ctx).Model(&model.Event{}).
		Where("created_at >= ?", since).
		Order("created_at DESC").
		Pluck("created_at", &times).Error
	return times, err
}
