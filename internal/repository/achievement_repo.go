package repository

import (
	"context"

	"gorm.io/gorm"

	"nightwatch/backend/internal/model"
)

// AchievementRepository reads badge definitions. Definitions are seeded by
// migration; unlocks are computed, never stored.
type AchievementRepository interface {
	List(ctx context.Context) ([]model.Achievement, error)
}

// ── Achievement Repository implementation ──

type achievementRepo struct {
	db *gorm.DB
}

func NewAchievementRepo(db *gorm.DB) AchievementRepository {
	return &achievementRepo{db: db}
}

func (r *achievementRepo) List(ctx context.Context) ([]model.Achievement, error) {
	var achievements []model.Achievement
	err := r.db.WithContext(ctx).
		Order("sort_order ASC").
		Find(&achievements).Error
	return achievements, err
}
