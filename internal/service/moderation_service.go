package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"eventease/internal/auth"
	"eventease/internal/authz"
	"eventease/internal/errors"
	"eventease/internal/logging"
	"eventease/internal/model"
	"eventease/internal/repository"
)

// PendingEvent is an event awaiting review with its RSVP count.
type PendingEvent struct {
	model.Event
	RSVPCount int64 `json:"rsvpCount"`
}

// ModerationService holds the staff actions and review queues.
type ModerationService interface {
	ModerateEvent(ctx context.Context, caller *auth.Session, eventID uuid.UUID, status model.EventStatus) (*model.Event, error)
	HideComment(ctx context.Context, caller *auth.Session, commentID uuid.UUID) (*model.Comment, error)
	UpdateReport(ctx context.Context, caller *auth.Session, reportID uuid.UUID, status model.ReportStatus) (*model.Report, error)
	PendingEvents(ctx context.Context, caller *auth.Session) ([]PendingEvent, error)
	FlaggedComments(ctx context.Context, caller *auth.Session) ([]model.Comment, error)
	PendingReports(ctx context.Context, caller *auth.Session) ([]model.Report, error)
}

type moderationService struct {
	store      repository.Store
	authorizer authz.Authorizer
}

// NewModerationService creates a new moderation service.
func NewModerationService(store repository.Store, authorizer authz.Authorizer) ModerationService {
	return &moderationService{
		store:      store,
		authorizer: authorizer,
	}
}

func (s *moderationService) authorize(caller *auth.Session) error {
	return authorize(s.authorizer, caller, authz.ObjectModeration, authz.ActionWrite)
}

// ModerateEvent approves or rejects an event that is still pending review.
func (s *moderationService) ModerateEvent(ctx context.Context, caller *auth.Session, eventID uuid.UUID, status model.EventStatus) (*model.Event, error) {
	if err := s.authorize(caller); err != nil {
		return nil, err
	}
	if status != model.EventStatusApproved && status != model.EventStatusRejected {
		return nil, errors.ErrInvalidStatus
	}

	var event *model.Event
	err := s.store.WithTransaction(ctx, func(ctx context.Context, tx repository.Store) error {
		var err error
		event, err = tx.Events().FindByIDForUpdate(ctx, eventID)
		if err != nil {
			return notFound(err, errors.ErrEventNotFound, "lock event")
		}
		if event.Status != model.EventStatusPendingReview {
			return fmt.Errorf("%w: event is already %s", errors.ErrInvalidStatus, event.Status)
		}
		if err := tx.Events().UpdateStatus(ctx, eventID, status); err != nil {
			return fmt.Errorf("update event status: %w", err)
		}
		event.Status = status
		return nil
	})
	if err != nil {
		return nil, err
	}

	logging.Ctx(ctx).Info().
		Str("event_id", eventID.String()).
		Str("status", string(status)).
		Str("by", caller.UserID()).
		Msg("event moderated")
	return event, nil
}

func (s *moderationService) HideComment(ctx context.Context, caller *auth.Session, commentID uuid.UUID) (*model.Comment, error) {
	if err := s.authorize(caller); err != nil {
		return nil, err
	}
	if err := s.store.Comments().SetHidden(ctx, commentID, true); err != nil {
		return nil, notFound(err, errors.ErrCommentNotFound, "hide comment")
	}
	comment, err := s.store.Comments().FindByID(ctx, commentID)
	if err != nil {
		return nil, notFound(err, errors.ErrCommentNotFound, "find comment")
	}
	return comment, nil
}

// UpdateReport closes a pending report. RESOLVED acts on the target: a
// reported comment is hidden and a reported event is rejected. DISMISSED
// leaves the target alone.
func (s *moderationService) UpdateReport(ctx context.Context, caller *auth.Session, reportID uuid.UUID, status model.ReportStatus) (*model.Report, error) {
	if err := s.authorize(caller); err != nil {
		return nil, err
	}
	if status != model.ReportStatusResolved && status != model.ReportStatusDismissed {
		return nil, errors.ErrInvalidStatus
	}

	var report *model.Report
	err := s.store.WithTransaction(ctx, func(ctx context.Context, tx repository.Store) error {
		var err error
		report, err = tx.Reports().FindByIDForUpdate(ctx, reportID)
		if err != nil {
			return notFound(err, errors.ErrReportNotFound, "lock report")
		}
		if report.Status != model.ReportStatusPending {
			return fmt.Errorf("%w: report is already %s", errors.ErrInvalidStatus, report.Status)
		}
		if err := tx.Reports().UpdateStatus(ctx, reportID, status); err != nil {
			return fmt.Errorf("update report status: %w", err)
		}
		report.Status = status

		if status != model.ReportStatusResolved {
			return nil
		}
		if report.CommentID != nil {
			if err := tx.Comments().SetHidden(ctx, *report.CommentID, true); err != nil {
				return notFound(err, errors.ErrCommentNotFound, "hide reported comment")
			}
		}
		if report.EventID != nil {
			if err := tx.Events().UpdateStatus(ctx, *report.EventID, model.EventStatusRejected); err != nil {
				return notFound(err, errors.ErrEventNotFound, "reject reported event")
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logging.Ctx(ctx).Info().
		Str("report_id", reportID.String()).
		Str("status", string(status)).
		Str("by", caller.UserID()).
		Msg("report closed")
	return report, nil
}

func (s *moderationService) PendingEvents(ctx context.Context, caller *auth.Session) ([]PendingEvent, error) {
	if err := s.authorize(caller); err != nil {
		return nil, err
	}
	events, err := s.store.Events().List(ctx, repository.EventFilter{Status: model.EventStatusPendingReview})
	if err != nil {
		return nil, fmt.Errorf("list pending events: %w", err)
	}

	ids := make([]uuid.UUID, len(events))
	for i := range events {
		ids[i] = events[i].ID
	}
	counts, err := s.store.RSVPs().CountByEvents(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("count rsvps: %w", err)
	}

	out := make([]PendingEvent, len(events))
	for i := range events {
		out[i] = PendingEvent{Event: events[i], RSVPCount: counts[events[i].ID]}
	}
	return out, nil
}

func (s *moderationService) FlaggedComments(ctx context.Context, caller *auth.Session) ([]model.Comment, error) {
	if err := s.authorize(caller); err != nil {
		return nil, err
	}
	comments, err := s.store.Comments().ListFlagged(ctx)
	if err != nil {
		return nil, fmt.Errorf("list flagged comments: %w", err)
	}
	return comments, nil
}

func (s *moderationService) PendingReports(ctx context.Context, caller *auth.Session) ([]model.Report, error) {
	if err := s.authorize(caller); err != nil {
		return nil, err
	}
	reports, err := s.store.Reports().ListPending(ctx)
	if err != nil {
		return nil, fmt.Errorf("list pending reports: %w", err)
	}
	return reports, nil
}
