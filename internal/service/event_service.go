package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"eventease/internal/auth"
	"eventease/internal/authz"
	"eventease/internal/errors"
	"eventease/internal/logging"
	"eventease/internal/model"
	"eventease/internal/repository"
)

// EventInput carries the editable fields of an event.
type EventInput struct {
	Title       string
	Description string
	Date        time.Time
	Location    string
	Capacity    *int
	IsPaid      bool
	Price       *decimal.Decimal
}

func (in *EventInput) normalize() error {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.Location = strings.TrimSpace(in.Location)
	if in.Title == "" || in.Description == "" || in.Location == "" || in.Date.IsZero() {
		return errors.ErrMissingFields
	}
	if in.Capacity != nil && *in.Capacity < 0 {
		return fmt.Errorf("%w: capacity must not be negative", errors.ErrInvalidEvent)
	}
	if !in.IsPaid {
		in.Price = nil
		return nil
	}
	if in.Price == nil {
		return fmt.Errorf("%w: paid events need a price", errors.ErrInvalidEvent)
	}
	if in.Price.IsNegative() {
		return fmt.Errorf("%w: price must not be negative", errors.ErrInvalidEvent)
	}
	return nil
}

func (in *EventInput) apply(event *model.Event) {
	event.Title = in.Title
	event.Description = in.Description
	event.Date = in.Date
	event.Location = in.Location
	event.Capacity = in.Capacity
	event.IsPaid = in.IsPaid
	event.Price = decimal.NullDecimal{}
	if in.Price != nil {
		event.Price = decimal.NewNullDecimal(in.Price.Round(2))
	}
}

// EventService handles event CRUD.
type EventService interface {
	List(ctx context.Context, status model.EventStatus) ([]model.Event, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Event, error)
	Create(ctx context.Context, caller *auth.Session, in EventInput) (*model.Event, error)
	Update(ctx context.Context, caller *auth.Session, id uuid.UUID, in EventInput) (*model.Event, error)
	Delete(ctx context.Context, caller *auth.Session, id uuid.UUID) error
}

type eventService struct {
	store      repository.Store
	authorizer authz.Authorizer
}

// NewEventService creates a new event service.
func NewEventService(store repository.Store, authorizer authz.Authorizer) EventService {
	return &eventService{
		store:      store,
		authorizer: authorizer,
	}
}

// List returns events ordered by date, optionally filtered by moderation status.
func (s *eventService) List(ctx context.Context, status model.EventStatus) ([]model.Event, error) {
	if status != "" && !status.Valid() {
		return nil, errors.ErrInvalidStatus
	}
	events, err := s.store.Events().List(ctx, repository.EventFilter{Status: status})
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return events, nil
}

// Get returns the event with its owner and RSVPs.
func (s *eventService) Get(ctx context.Context, id uuid.UUID) (*model.Event, error) {
	event, err := s.store.Events().FindDetail(ctx, id)
	if err != nil {
		return nil, notFound(err, errors.ErrEventNotFound, "find event")
	}
	return event, nil
}

// Create stores a new event owned by the caller. New events wait for review.
func (s *eventService) Create(ctx context.Context, caller *auth.Session, in EventInput) (*model.Event, error) {
	if err := authorize(s.authorizer, caller, authz.ObjectEvents, authz.ActionWrite); err != nil {
		return nil, err
	}
	if err := in.normalize(); err != nil {
		return nil, err
	}

	event := &model.Event{
		OwnerID: caller.UserID(),
		Status:  model.EventStatusPendingReview,
	}
	in.apply(event)

	if err := s.store.Events().Create(ctx, event); err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}
	logging.Ctx(ctx).Info().Str("event_id", event.ID.String()).Str("owner_id", event.OwnerID).Msg("event created")
	return event, nil
}

// loadForWrite checks the caller may write events at all, then that the
// caller owns this one or is an ADMIN.
func (s *eventService) loadForWrite(ctx context.Context, events repository.EventRepository, caller *auth.Session, id uuid.UUID) (*model.Event, error) {
	if err := authorize(s.authorizer, caller, authz.ObjectEvents, authz.ActionWrite); err != nil {
		return nil, err
	}
	event, err := events.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, errors.ErrEventNotFound, "find event")
	}
	if !event.OwnedBy(caller.UserID()) && caller.Role() != model.RoleAdmin {
		return nil, errors.ErrForbidden
	}
	return event, nil
}

// Update replaces the editable fields. Status and owner are unchanged.
func (s *eventService) Update(ctx context.Context, caller *auth.Session, id uuid.UUID, in EventInput) (*model.Event, error) {
	event, err := s.loadForWrite(ctx, s.store.Events(), caller, id)
	if err != nil {
		return nil, err
	}
	if err := in.normalize(); err != nil {
		return nil, err
	}

	in.apply(event)
	if err := s.store.Events().Update(ctx, event); err != nil {
		return nil, fmt.Errorf("update event: %w", err)
	}
	return event, nil
}

// Delete removes the event together with its RSVPs, its comments and every
// report pointing at the event or its comments.
func (s *eventService) Delete(ctx context.Context, caller *auth.Session, id uuid.UUID) error {
	return s.store.WithTransaction(ctx, func(ctx context.Context, tx repository.Store) error {
		if _, err := s.loadForWrite(ctx, tx.Events(), caller, id); err != nil {
			return err
		}
		if err := deleteEvents(ctx, tx, []uuid.UUID{id}); err != nil {
			return err
		}
		logging.Ctx(ctx).Info().Str("event_id", id.String()).Str("by", caller.UserID()).Msg("event deleted")
		return nil
	})
}

// deleteEvents removes events and everything hanging off them, children first.
func deleteEvents(ctx context.Context, tx repository.Store, eventIDs []uuid.UUID) error {
	if len(eventIDs) == 0 {
		return nil
	}
	commentIDs, err := tx.Comments().IDsByEvents(ctx, eventIDs)
	if err != nil {
		return fmt.Errorf("list event comments: %w", err)
	}
	if err := tx.Reports().DeleteByTargets(ctx, eventIDs, commentIDs); err != nil {
		return fmt.Errorf("delete event reports: %w", err)
	}
	if err := tx.Comments().DeleteByIDs(ctx, commentIDs); err != nil {
		return fmt.Errorf("delete event comments: %w", err)
	}
	if err := tx.RSVPs().DeleteByEvents(ctx, eventIDs); err != nil {
		return fmt.Errorf("delete event rsvps: %w", err)
	}
	if err := tx.Events().DeleteByIDs(ctx, eventIDs); err != nil {
		return fmt.Errorf("delete events: %w", err)
	}
	return nil
}
