package repository

import (
	"context"

	"gorm.io/gorm"

	"eventease/internal/model"
)

// OutboxRepository persists notifications awaiting delivery.
type OutboxRepository interface {
	Create(ctx context.Context, rows []model.NotificationOutbox) error
	ListDeliverable(ctx context.Context, batchSize, maxAttempts int) ([]model.NotificationOutbox, error)
	MarkSent(ctx context.Context, id uint64) error
	MarkFailed(ctx context.Context, id uint64, reason string) error
	CountByStatus(ctx context.Context, status model.OutboxStatus) (int64, error)
}

type outboxRepository struct {
	db *gorm.DB
}

// NewOutboxRepository creates a new outbox repository.
func NewOutboxRepository(db *gorm.DB) OutboxRepository {
	return &outboxRepository{db: db}
}

func (r *outboxRepository) Create(ctx context.Context, rows []model.NotificationOutbox) error {
	if len(rows) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&rows).Error
}

// ListDeliverable returns pending rows plus failed rows still under maxAttempts.
// Pending rows come first so a backlog of retries cannot hold back new ones;
// OutboxStatusPending sorts below OutboxStatusFailed.
func (r *outboxRepository) ListDeliverable(ctx context.Context, batchSize, maxAttempts int) ([]model.NotificationOutbox, error) {
	var rows []model.NotificationOutbox
	err := r.db.WithContext(ctx).
		Where("status = ? OR (status = ? AND attempts < ?)", model.OutboxStatusPending, model.OutboxStatusFailed, maxAttempts).
		Order("status ASC").
		Order("id ASC").
		Limit(batchSize).
		Find(&rows).Error
	return rows, err
}

func (r *outboxRepository) MarkSent(ctx context.Context, id uint64) error {
	return r.db.WithContext(ctx).Model(&model.NotificationOutbox{}).Where("id = ?", id).
		Updates(map[string]interface{}{"status": model.OutboxStatusSent, "last_error": ""}).Error
}

// MarkFailed records the failure and bumps the attempt counter.
func (r *outboxRepository) MarkFailed(ctx context.Context, id uint64, reason string) error {
	if len(reason) > 1024 {
		reason = reason[:1024]
	}
	return r.db.WithContext(ctx).Model(&model.NotificationOutbox{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     model.OutboxStatusFailed,
			"attempts":   gorm.Expr("attempts + 1"),
			"last_error": reason,
		}).Error
}

func (r *outboxRepository) CountByStatus(ctx context.Context, status model.OutboxStatus) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.NotificationOutbox{}).Where("status = ?", status).Count(&n).Error
	return n, err
}
