package repository

import (
	"context"

	"gorm.io/gorm"

	"nightwatch/backend/internal/model"
)

// AuditRepository persists domain events for the audit collaborator.
type AuditRepository interface {
	Record(ctx context.Context, e *model.AuditEvent) error
	List(ctx context.Context, eventType string, offset, limit int) ([]model.AuditEvent, int64, error)
}

// ── Audit Repository implementation ──

type auditRepo struct {
	db *gorm.DB
}

func NewAuditRepo(db *gorm.DB) AuditRepository {
	return &auditRepo{db: db}
}

func (r *auditRepo) Record(ctx context.Context, e *model.AuditEvent) error {
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *auditRepo) List(ctx context.Context, eventType string, offset, limit int) ([]model.AuditEvent, int64, error) {
	var events []model.AuditEvent
	var total int64

	db := r.db.WithContext(ctx).Model(&model.AuditEvent{})
	if eventType != "" {
		db = db.Where("event_type = ?", eventType)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := db.Offset(offset).Limit(limit).
		Order("created_at DESC").
		Find(&events).Error
	return events, total, err
}
