package repository

import (
	"context"

	"gorm.io/gorm"

	"bilgeverse/backend/internal/model"
)

// TransactionListFilters 流水列表过滤条件
type TransactionListFilters struct {
	UserID   string
	PeriodID string
}

// PointsTransactionRepository 积分流水数据访问接口
type PointsTransactionRepository interface {
	Create(ctx context.Context, tx *model.PointsTransaction) error
	List(ctx context.Context, filters *TransactionListFilters, offset, limit int) ([]model.PointsTransaction, int64, error)
	SumByUser(ctx context.Context, userID string) (int, error)
	SumByUserPeriod(ctx context.Context, userID, periodID string) (int, error)
}

type pointsTransactionRepo struct {
	db *gorm.DB
}

// NewPointsTransactionRepo 创建 PointsTransactionRepository 实例
func NewPointsTransactionRepo(db *gorm.DB) PointsTransactionRepository {
	return &pointsTransactionRepo{db: db}
}

func (r *pointsTransactionRepo) Create(ctx context.Context, tx *model.PointsTransaction) error {
	return r.db.WithContext(ctx).Create(tx).Error
}

func (r *pointsTransactionRepo) List(ctx context.Context, filters *TransactionListFilters, offset, limit int) ([]model.PointsTransaction, int64, error) {
	var txs []model.PointsTransaction
	var total int64

	db := r.db.WithContext(ctx).Model(&model.PointsTransaction{})
	if filters != nil {
		if filters.UserID != "" {
			db = db.Where("user_id = ?", filters.UserID)
		}
		if filters.PeriodID != "" {
			db = db.Where("period_id = ?", filters.PeriodID)
		}
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := db.Preload("User").
		Offset(offset).Limit(limit).
		Order("created_at DESC").
		Find(&txs).Error; err != nil {
		return nil, 0, err
	}

	return txs, total, nil
}

func (r *pointsTransactionRepo) SumByUser(ctx context.Context, userID string) (int, error) {
	var sum int64
	err := r.db.WithContext(ctx).
		Model(&model.PointsTransaction{}).
		Where("user_id = ?", userID).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&sum).Error
	return int(sum), err
}

// SumByUserPeriod 合计指定学期内的积分流水
func (r *pointsTransactionRepo) SumByUserPeriod(ctx context.Context, userID, periodID string) (int, error) {
	var sum int64
	err := r.db.WithContext(ctx).
		Model(&model.PointsTransaction{}).
		Where("user_id = ? AND period_id = ?", userID, periodID).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&sum).Error
	return int(sum), err
}

// ExperienceTransactionRepository 经验流水数据访问接口
type ExperienceTransactionRepository interface {
	Create(ctx context.Context, tx *model.ExperienceTransaction) error
	List(ctx context.Context, filters *TransactionListFilters, offset, limit int) ([]model.ExperienceTransaction, int64, error)
	SumByUser(ctx context.Context, userID string) (int, error)
	SumByUserPeriod(ctx context.Context, userID, periodID string) (int, error)
}

type experienceTransactionRepo struct {
	db *gorm.DB
}

// NewExperienceTransactionRepo 创建 ExperienceTransactionRepository 实例
func NewExperienceTransactionRepo(db *gorm.DB) ExperienceTransactionRepository {
	return &experienceTransactionRepo{db: db}
}

func (r *experienceTransactionRepo) Create(ctx context.Context, tx *model.ExperienceTransaction) error {
	return r.db.WithContext(ctx).Create(tx).Error
}

func (r *experienceTransactionRepo) List(ctx context.Context, filters *TransactionListFilters, offset, limit int) ([]model.ExperienceTransaction, int64, error) {
	var txs []model.ExperienceTransaction
	var total int64

	db := r.db.WithContext(ctx).Model(&model.ExperienceTransaction{})
	if filters != nil {
		if filters.UserID != "" {
			db = db.Where("user_id = ?", filters.UserID)
		}
		if filters.PeriodID != "" {
			db = db.Where("period_id = ?", filters.PeriodID)
		}
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := db.Preload("User").
		Offset(offset).Limit(limit).
		Order("created_at DESC").
		Find(&txs).Error; err != nil {
		return nil, 0, err
	}

	return txs, total, nil
}

func (r *experienceTransactionRepo) SumByUser(ctx context.Context, userID string) (int, error) {
	var sum int64
	err := r.db.WithContext(ctx).
		Model(&model.ExperienceTransaction{}).
		Where("user_id = ?", userID).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&sum).Error
	return int(sum), err
}

// SumByUserPeriod 合计指定学期内的经验流水
func (r *experienceTransactionRepo) SumByUserPeriod(ctx context.Context, userID, periodID string) (int, error) {
	var sum int64
	err := r.db.WithContext(ctx).
		Model(&model.ExperienceTransaction{}).
		Where("user_id = ? AND period_id = ?", userID, periodID).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&sum).Error
	return int(sum), err
}
