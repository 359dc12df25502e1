package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"eventease/internal/model"
)

// ReportRepository defines report persistence operations.
type ReportRepository interface {
	Create(ctx context.Context, report *model.Report) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Report, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Report, error)
	ListPending(ctx context.Context) ([]model.Report, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.ReportStatus) error
	DeleteByTargets(ctx context.Context, eventIDs, commentIDs []uuid.UUID) error
	DeleteByReporter(ctx context.Context, reporterID string) error
}

type reportRepository struct {
	db *gorm.DB
}

// NewReportRepository creates a new report repository.
func NewReportRepository(db *gorm.DB) ReportRepository {
	return &reportRepository{db: db}
}

func (r *reportRepository) Create(ctx context.Context, report *model.Report) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(report).Error
}

func (r *reportRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Report, error) {
	var report model.Report
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&report).Error; err != nil {
		return nil, err
	}
	return &report, nil
}

func (r *reportRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Report, error) {
	var report model.Report
	if err := r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).First(&report).Error; err != nil {
		return nil, err
	}
	return &report, nil
}

// ListPending returns pending reports with reporter, event and comment loaded.
func (r *reportRepository) ListPending(ctx context.Context) ([]model.Report, error) {
	var reports []model.Report
	err := r.db.WithContext(ctx).
		Preload("Reporter").Preload("Event").Preload("Comment").
		Where("status = ?", model.ReportStatusPending).
		Order("created_at ASC").
		Find(&reports).Error
	return reports, err
}

func (r *reportRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.ReportStatus) error {
	return r.db.WithContext(ctx).Model(&model.Report{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"status": status, "updated_at": time.Now()}).Error
}

// DeleteByTargets removes reports pointing at any of the given events or comments.
func (r *reportRepository) DeleteByTargets(ctx context.Context, eventIDs, commentIDs []uuid.UUID) error {
	if len(eventIDs) == 0 && len(commentIDs) == 0 {
		return nil
	}
	q := r.db.WithContext(ctx)
	switch {
	case len(eventIDs) > 0 && len(commentIDs) > 0:
		q = q.Where("event_id IN ? OR comment_id IN ?", eventIDs, commentIDs)
	case len(eventIDs) > 0:
		q = q.Where("event_id IN ?", eventIDs)
	default:
		q = q.Where("comment_id IN ?", commentIDs)
	}
	return q.Delete(&model.Report{}).Error
}

func (r *reportRepository) DeleteByReporter(ctx context.Context, reporterID string) error {
	return r.db.WithContext(ctx).Where("reporter_id = ?", reporterID).Delete(&model.Report{}).Error
}
