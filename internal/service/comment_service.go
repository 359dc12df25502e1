package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"eventease/internal/auth"
	"eventease/internal/errors"
	"eventease/internal/model"
	"eventease/internal/repository"
)

// CommentService handles event comments and user reports.
type CommentService interface {
	ListVisible(ctx context.Context, eventID uuid.UUID) ([]model.Comment, error)
	Create(ctx context.Context, caller *auth.Session, eventID uuid.UUID, content string) (*model.Comment, error)
	Report(ctx context.Context, caller *auth.Session, reason string, eventID, commentID *uuid.UUID) (*model.Report, error)
}

type commentService struct {
	store repository.Store
}

// NewCommentService creates a new comment service.
func NewCommentService(store repository.Store) CommentService {
	return &commentService{store: store}
}

// ListVisible returns the comments of an event that have not been hidden.
func (s *commentService) ListVisible(ctx context.Context, eventID uuid.UUID) ([]model.Comment, error) {
	if _, err := s.store.Events().FindByID(ctx, eventID); err != nil {
		return nil, notFound(err, errors.ErrEventNotFound, "find event")
	}
	comments, err := s.store.Comments().ListVisibleByEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	return comments, nil
}

func (s *commentService) Create(ctx context.Context, caller *auth.Session, eventID uuid.UUID, content string) (*model.Comment, error) {
	if caller == nil {
		return nil, errors.ErrUnauthenticated
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, errors.ErrMissingFields
	}
	if _, err := s.store.Events().FindByID(ctx, eventID); err != nil {
		return nil, notFound(err, errors.ErrEventNotFound, "find event")
	}

	comment := &model.Comment{
		Content:  content,
		EventID:  eventID,
		AuthorID: caller.UserID(),
	}
	if err := s.store.Comments().Create(ctx, comment); err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}
	return comment, nil
}

// Report flags exactly one event or one comment for staff review.
func (s *commentService) Report(ctx context.Context, caller *auth.Session, reason string, eventID, commentID *uuid.UUID) (*model.Report, error) {
	if caller == nil {
		return nil, errors.ErrUnauthenticated
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, errors.ErrMissingFields
	}
	if (eventID == nil) == (commentID == nil) {
		return nil, errors.ErrInvalidReportTarget
	}

	if eventID != nil {
		if _, err := s.store.Events().FindByID(ctx, *eventID); err != nil {
			return nil, notFound(err, errors.ErrEventNotFound, "find event")
		}
	} else {
		if _, err := s.store.Comments().FindByID(ctx, *commentID); err != nil {
			return nil, notFound(err, errors.ErrCommentNotFound, "find comment")
		}
	}

	report := &model.Report{
		Reason:     reason,
		Status:     model.ReportStatusPending,
		ReporterID: caller.UserID(),
		EventID:    eventID,
		CommentID:  commentID,
	}
	if err := s.store.Reports().Create(ctx, report); err != nil {
		return nil, fmt.Errorf("create report: %w", err)
	}
	return report, nil
}
