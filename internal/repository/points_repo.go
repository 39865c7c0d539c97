package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"nightwatch/backend/internal/model"
	pkgerrors "nightwatch/backend/pkg/errors"
)

// PointsRepository is the points-ledger data-access interface. The ledger is
// append-only; there is no update or delete.
type PointsRepository interface {
	// Insert appends one entry. A collision on the (booking_id, reason)
	// uniqueness constraint returns ErrDuplicateAward.
	Insert(ctx context.Context, entry *model.PointsEntry) error
	// Exists reports whether an entry already exists for the idempotency key.
	Exists(ctx context.Context, bookingID string, reason model.PointReason) (bool, error)
	// SumByUser computes Σ(points_awarded × multiplier) for the user. This
	// reduction is the single source of truth for totals.
	SumByUser(ctx context.Context, userID string) (int, error)
	ListByUser(ctx context.Context, userID string, offset, limit int) ([]model.PointsEntry, int64, error)
	// Leaderboard returns (user_id, total) pairs ordered by total descending.
	Leaderboard(ctx context.Context, limit int) ([]LeaderboardRow, error)
}

// LeaderboardRow is one ranked reduction over the ledger.
type LeaderboardRow struct {
	UserID string `json:"user_id"`
	Name   string `json:"name"`
	Total  int    `json:"total"`
}

// ── Points Repository implementation ──

type pointsRepo struct {
	db *gorm.DB
}

func NewPointsRepo(db *gorm.DB) PointsRepository {
	return &pointsRepo{db: db}
}

func (r *pointsRepo) Insert(ctx context.Context, entry *model.PointsEntry) error {
	err := r.db.WithContext(ctx).Create(entry).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return pkgerrors.ErrDuplicateAward
	}
	return err
}

func (r *pointsRepo) Exists(ctx context.Context, bookingID string, reason model.PointReason) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.PointsEntry{}).
		Where("booking_id = ? AND reason = ?", bookingID, reason).
		Count(&count).Error
	return count > 0, err
}

func (r *pointsRepo) SumByUser(ctx context.Context, userID string) (int, error) {
	var total *int
	err := r.db.WithContext(ctx).
		Model(&model.PointsEntry{}).
		Select("SUM(points_awarded * multiplier)").
		Where("user_id = ?", userID).
		Scan(&total).Error
	if err != nil {
		return 0, err
	}
	if total == nil {
		return 0, nil
	}
	return *total, nil
}

func (r *pointsRepo) ListByUser(ctx context.Context, userID string, offset, limit int) ([]model.PointsEntry, int64, error) {
	var entries []model.PointsEntry
	var total int64

	db := r.db.WithContext(ctx).Model(&model.PointsEntry{}).
		Where("user_id = ?", userID)

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := db.Offset(offset).Limit(limit).
		Order("created_at DESC").
		Find(&entries).Error
	return entries, total, err
}

func (r *pointsRepo) Leaderboard(ctx context.Context, limit int) ([]LeaderboardRow, error) {
	var rows []LeaderboardRow
	err := r.db.WithContext(ctx).
		Model(&model.PointsEntry{}).
		Select("points_history.user_id AS user_id, users.name AS name, SUM(points_awarded * multiplier) AS total").
		Joins("JOIN users ON users.user_id = points_history.user_id").
		Group("points_history.user_id, users.name").
		Order("total DESC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}
