package service

import (
	"context"
	goerrors "errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"eventease/internal/auth"
	"eventease/internal/authz"
	"eventease/internal/errors"
	"eventease/internal/logging"
	"eventease/internal/metrics"
	"eventease/internal/model"
	"eventease/internal/notify"
	"eventease/internal/repository"
)

// RSVPService handles attendee registrations.
type RSVPService interface {
	Create(ctx context.Context, eventID uuid.UUID, name, email string) (*model.RSVP, error)
	UpdateStatus(ctx context.Context, caller *auth.Session, eventID, rsvpID uuid.UUID, status model.RSVPStatus) (*model.RSVP, error)
}

type rsvpService struct {
	store      repository.Store
	authorizer authz.Authorizer
}

// NewRSVPService creates a new RSVP service.
func NewRSVPService(store repository.Store, authorizer authz.Authorizer) RSVPService {
	return &rsvpService{
		store:      store,
		authorizer: authorizer,
	}
}

// checkCapacity fails with ErrEventFull when the event's confirmed RSVPs
// already fill its capacity. The event row must be locked by the caller.
func checkCapacity(ctx context.Context, tx repository.Store, event *model.Event) error {
	if !event.HasCapacity() {
		return nil
	}
	confirmed, err := tx.RSVPs().CountByStatus(ctx, event.ID, model.RSVPStatusConfirmed)
	if err != nil {
		return fmt.Errorf("count confirmed rsvps: %w", err)
	}
	if confirmed >= int64(*event.Capacity) {
		return errors.ErrEventFull
	}
	return nil
}

// Create registers an attendee as confirmed. The event row is locked for the
// whole transaction, so concurrent requests for the last seat serialize and
// only one can succeed. The two notifications are written to the outbox in
// the same transaction.
func (s *rsvpService) Create(ctx context.Context, eventID uuid.UUID, name, email string) (*model.RSVP, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))
	if name == "" || email == "" {
		metrics.RSVPAttempts.WithLabelValues("invalid").Inc()
		return nil, errors.ErrMissingFields
	}

	var rsvp *model.RSVP
	err := s.store.WithTransaction(ctx, func(ctx context.Context, tx repository.Store) error {
		// Lock the event row
		event, err := tx.Events().FindByIDForUpdate(ctx, eventID)
		if err != nil {
			return notFound(err, errors.ErrEventNotFound, "lock event")
		}

		// One RSVP per email per event
		if _, err := tx.RSVPs().FindByEventAndEmail(ctx, eventID, email); err == nil {
			return errors.ErrDuplicateRSVP
		} else if !goerrors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("check existing rsvp: %w", err)
		}

		if err := checkCapacity(ctx, tx, event); err != nil {
			return err
		}

		rsvp = &model.RSVP{
			Name:    name,
			Email:   email,
			Status:  model.RSVPStatusConfirmed,
			EventID: eventID,
		}
		if err := tx.RSVPs().Create(ctx, rsvp); err != nil {
			if goerrors.Is(err, gorm.ErrDuplicatedKey) {
				return errors.ErrDuplicateRSVP
			}
			return fmt.Errorf("create rsvp: %w", err)
		}

		owner, err := tx.Users().FindByID(ctx, event.OwnerID)
		if err != nil {
			return fmt.Errorf("find event owner: %w", err)
		}
		rows, err := notify.RSVPCreated(event, owner, rsvp)
		if err != nil {
			return err
		}
		if err := tx.Outbox().Create(ctx, rows); err != nil {
			return fmt.Errorf("enqueue notifications: %w", err)
		}
		return nil
	})
	if err != nil {
		metrics.RSVPAttempts.WithLabelValues(rsvpResult(err)).Inc()
		return nil, err
	}

	metrics.RSVPAttempts.WithLabelValues("created").Inc()
	logging.Ctx(ctx).Info().
		Str("event_id", eventID.String()).
		Str("rsvp_id", rsvp.ID.String()).
		Msg("rsvp created")
	return rsvp, nil
}

func rsvpResult(err error) string {
	switch {
	case goerrors.Is(err, errors.ErrEventFull):
		return "full"
	case goerrors.Is(err, errors.ErrDuplicateRSVP):
		return "duplicate"
	case goerrors.Is(err, errors.ErrEventNotFound):
		return "not_found"
	default:
		return "error"
	}
}

// UpdateStatus changes an RSVP's status. The event owner, STAFF and ADMIN may
// do this. Moving an RSVP to confirmed needs a free seat.
func (s *rsvpService) UpdateStatus(ctx context.Context, caller *auth.Session, eventID, rsvpID uuid.UUID, status model.RSVPStatus) (*model.RSVP, error) {
	if caller == nil {
		return nil, errors.ErrUnauthenticated
	}
	if !status.Valid() {
		return nil, errors.ErrInvalidStatus
	}

	var rsvp *model.RSVP
	err := s.store.WithTransaction(ctx, func(ctx context.Context, tx repository.Store) error {
		var err error
		rsvp, err = tx.RSVPs().FindByID(ctx, rsvpID)
		if err != nil {
			return notFound(err, errors.ErrRSVPNotFound, "find rsvp")
		}
		if rsvp.EventID != eventID {
			return errors.ErrRSVPEventMismatch
		}
		if !rsvp.Event.OwnedBy(caller.UserID()) && !s.authorizer.Allowed(caller.Role(), authz.ObjectRSVPs, authz.ActionManage) {
			return errors.ErrForbidden
		}

		event, err := tx.Events().FindByIDForUpdate(ctx, eventID)
		if err != nil {
			return notFound(err, errors.ErrEventNotFound, "lock event")
		}
		if status == model.RSVPStatusConfirmed && rsvp.Status != model.RSVPStatusConfirmed {
			if err := checkCapacity(ctx, tx, event); err != nil {
				return err
			}
		}

		if err := tx.RSVPs().UpdateStatus(ctx, rsvp.ID, status); err != nil {
			return fmt.Errorf("update rsvp status: %w", err)
		}
		rsvp.Status = status

		if rsvp.Event.Owner == nil {
			return fmt.Errorf("event %s has no owner", eventID)
		}
		rows, err := notify.RSVPStatusChanged(rsvp.Event, rsvp.Event.Owner, rsvp)
		if err != nil {
			return err
		}
		if err := tx.Outbox().Create(ctx, rows); err != nil {
			return fmt.Errorf("enqueue notifications: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logging.Ctx(ctx).Info().
		Str("rsvp_id", rsvp.ID.String()).
		Str("status", string(status)).
		Str("by", caller.UserID()).
		Msg("rsvp status updated")
	return rsvp, nil
}
