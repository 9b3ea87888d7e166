package repository

import (
	"context"

	"gorm.io/gorm"

	"bilgeverse/backend/internal/model"
	pkgerrors "bilgeverse/backend/pkg/errors"
)

// PeriodRepository 学期数据访问接口
type PeriodRepository interface {
	Create(ctx context.Context, period *model.Period) error
	GetByID(ctx context.Context, id string) (*model.Period, error)
	GetActive(ctx context.Context) (*model.Period, error)
	List(ctx context.Context) ([]model.Period, error)
	UpdateWithVersion(ctx context.Context, period *model.Period) error
	ClearActive(ctx context.Context, updatedBy string) error
	Delete(ctx context.Context, id string) error
	CountDependents(ctx context.Context, id string) (*model.PeriodDependentCounts, error)
}

type periodRepo struct {
	db *gorm.DB
}

// NewPeriodRepo 创建 PeriodRepository 实例
func NewPeriodRepo(db *gorm.DB) PeriodRepository {
	return &periodRepo{db: db}
}

func (r *periodRepo) Create(ctx context.Context, period *model.Period) error {
	return r.db.WithContext(ctx).Create(period).Error
}

func (r *periodRepo) GetByID(ctx context.Context, id string) (*model.Period, error) {
	var period model.Period
	err := r.db.WithContext(ctx).
		Where("period_id = ?", id).
		First(&period).Error
	if err != nil {
		return nil, err
	}
	return &period, nil
}

func (r *periodRepo) GetActive(ctx context.Context) (*model.Period, error) {
	var period model.Period
	err := r.db.WithContext(ctx).
		Where("status = ?", model.PeriodStatusActive).
		First(&period).Error
	if err != nil {
		return nil, err
	}
	return &period, nil
}

func (r *periodRepo) List(ctx context.Context) ([]model.Period, error) {
	var periods []model.Period
	err := r.db.WithContext(ctx).
		Order("start_date DESC").
		Find(&periods).Error
	return periods, err
}

// UpdateWithVersion 带乐观锁的更新
// version 不匹配时不更新任何行并返回 ErrOptimisticLock
func (r *periodRepo) UpdateWithVersion(ctx context.Context, period *model.Period) error {
	currentVersion := period.Version
	result := r.db.WithContext(ctx).
		Model(&model.Period{}).
		Where("period_id = ? AND version = ?", period.PeriodID, currentVersion).
		Updates(map[string]interface{}{
			"name":        period.Name,
			"description": period.Description,
			"start_date":  period.StartDate,
			"end_date":    period.EndDate,
			"status":      period.Status,
			"total_weeks": period.TotalWeeks,
			"updated_by":  period.UpdatedBy,
			"updated_at":  gorm.Expr("NOW()"),
			"version":     currentVersion + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	period.Version = currentVersion + 1
	return nil
}

// ClearActive 将所有 ACTIVE 学期置为 INACTIVE，并记录操作人
func (r *periodRepo) ClearActive(ctx context.Context, updatedBy string) error {
	return r.db.WithContext(ctx).
		Model(&model.Period{}).
		Where("status = ?", model.PeriodStatusActive).
		Updates(map[string]interface{}{
			"status":     model.PeriodStatusInactive,
			"updated_by": updatedBy,
			"updated_at": gorm.Expr("NOW()"),
			"version":    gorm.Expr("version + 1"),
		}).Error
}

// Delete 硬删除学期；依赖行由数据库外键的 ON DELETE CASCADE 清理
func (r *periodRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Where("period_id = ?", id).
		Delete(&model.Period{}).Error
}

// CountDependents 统计学期关联记录数量，用于删除前的影响确认
func (r *periodRepo) CountDependents(ctx context.Context, id string) (*model.PeriodDependentCounts, error) {
	counts := &model.PeriodDependentCounts{}

	type target struct {
		dest  *int64
		model interface{}
	}
	targets := []target{
		{&counts.Events, &model.Event{}},
		{&counts.PointsTransactions, &model.PointsTransaction{}},
		{&counts.ExperienceTransactions, &model.ExperienceTransaction{}},
		{&counts.ItemRequests, &model.ItemRequest{}},
		{&counts.Wishes, &model.Wish{}},
		{&counts.StudentNotes, &model.StudentNote{}},
		{&counts.WeeklyReports, &model.WeeklyReport{}},
		{&counts.Announcements, &model.Announcement{}},
	}

	for _, t := range targets {
		if err := r.db.WithContext(ctx).
			Model(t.model).
			Where("period_id = ?", id).
			Count(t.dest).Error; err != nil {
			return nil, err
		}
	}

	return counts, nil
}
