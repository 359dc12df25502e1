package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"eventease/internal/model"
)

// CommentRepository defines comment persistence operations.
type CommentRepository interface {
	Create(ctx context.Context, comment *model.Comment) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Comment, error)
	ListVisibleByEvent(ctx context.Context, eventID uuid.UUID) ([]model.Comment, error)
	ListFlagged(ctx context.Context) ([]model.Comment, error)
	SetHidden(ctx context.Context, id uuid.UUID, hidden bool) error
	IDsByEvents(ctx context.Context, eventIDs []uuid.UUID) ([]uuid.UUID, error)
	IDsByAuthor(ctx context.Context, authorID string) ([]uuid.UUID, error)
	DeleteByIDs(ctx context.Context, ids []uuid.UUID) error
}

type commentRepository struct {
	db *gorm.DB
}

// NewCommentRepository creates a new comment repository.
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) Create(ctx context.Context, comment *model.Comment) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(comment).Error
}

func (r *commentRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Comment, error) {
	var comment model.Comment
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&comment).Error; err != nil {
		return nil, err
	}
	return &comment, nil
}

func (r *commentRepository) ListVisibleByEvent(ctx context.Context, eventID uuid.UUID) ([]model.Comment, error) {
	var comments []model.Comment
	err := r.db.WithContext(ctx).Preload("Author").
		Where("event_id = ? AND is_hidden = ?", eventID, false).
		Order("created_at ASC").
		Find(&comments).Error
	return comments, err
}

// ListFlagged returns visible comments that have at least one pending report.
func (r *commentRepository) ListFlagged(ctx context.Context) ([]model.Comment, error) {
	pending := r.db.Model(&model.Report{}).
		Select("comment_id").
		Where("status = ? AND comment_id IS NOT NULL", model.ReportStatusPending)

	var comments []model.Comment
	err := r.db.WithContext(ctx).Preload("Author").Preload("Event").
		Where("is_hidden = ? AND id IN (?)", false, pending).
		Order("created_at DESC").
		Find(&comments).Error
	return comments, err
}

// SetHidden returns gorm.ErrRecordNotFound when no row matched.
func (r *commentRepository) SetHidden(ctx context.Context, id uuid.UUID, hidden bool) error {
	res := r.db.WithContext(ctx).Model(&model.Comment{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"is_hidden": hidden, "updated_at": time.Now()})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *commentRepository) IDsByEvents(ctx context.Context, eventIDs []uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	if len(eventIDs) == 0 {
		return ids, nil
	}
	err := r.db.WithContext(ctx).Model(&model.Comment{}).Where("event_id IN ?", eventIDs).Pluck("id", &ids).Error
	return ids, err
}

func (r *commentRepository) IDsByAuthor(ctx context.Context, authorID string) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).Model(&model.Comment{}).Where("author_id = ?", authorID).Pluck("id", &ids).Error
	return ids, err
}

func (r *commentRepository) DeleteByIDs(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Where("id IN ?", ids).Delete(&model.Comment{}).Error
}
