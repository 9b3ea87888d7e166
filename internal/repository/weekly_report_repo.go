package repository

import (
	"context"

	"gorm.io/gorm"

	"bilgeverse/backend/internal/model"
	pkgerrors "bilgeverse/backend/pkg/errors"
)

// ReportListFilters 周报列表过滤条件
type ReportListFilters struct {
	PeriodID   string
	UserID     string
	Status     string
	WeekNumber int
}

// WeeklyReportRepository 周报数据访问接口
type WeeklyReportRepository interface {
	Create(ctx context.Context, report *model.WeeklyReport) error
	GetByID(ctx context.Context, id string) (*model.WeeklyReport, error)
	GetByUserPeriodWeek(ctx context.Context, userID, periodID string, weekNumber int) (*model.WeeklyReport, error)
	List(ctx context.Context, filters *ReportListFilters, offset, limit int) ([]model.WeeklyReport, int64, error)
	ListByIDs(ctx context.Context, ids []string) ([]model.WeeklyReport, error)
	UpdateWithVersion(ctx context.Context, report *model.WeeklyReport) error
}

type weeklyReportRepo struct {
	db *gorm.DB
}

// NewWeeklyReportRepo 创建 WeeklyReportRepository 实例
func NewWeeklyReportRepo(db *gorm.DB) WeeklyReportRepository {
	return &weeklyReportRepo{db: db}
}

func (r *weeklyReportRepo) Create(ctx context.Context, report *model.WeeklyReport) error {
	return r.db.WithContext(ctx).Create(report).Error
}

func (r *weeklyReportRepo) GetByID(ctx context.Context, id string) (*model.WeeklyReport, error) {
	var report model.WeeklyReport
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("report_id = ?", id).
		First(&report).Error
	if err != nil {
		return nil, err
	}
	return &report, nil
}

func (r *weeklyReportRepo) GetByUserPeriodWeek(ctx context.Context, userID, periodID string, weekNumber int) (*model.WeeklyReport, error) {
	var report model.WeeklyReport
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND period_id = ? AND week_number = ?", userID, periodID, weekNumber).
		First(&report).Error
	if err != nil {
		return nil, err
	}
	return &report, nil
}

func (r *weeklyReportRepo) List(ctx context.Context, filters *ReportListFilters, offset, limit int) ([]model.WeeklyReport, int64, error) {
	var reports []model.WeeklyReport
	var total int64

	db := r.db.WithContext(ctx).Model(&model.WeeklyReport{})
	if filters != nil {
		if filters.PeriodID != "" {
			db = db.Where("period_id = ?", filters.PeriodID)
		}
		if filters.UserID != "" {
			db = db.Where("user_id = ?", filters.UserID)
		}
		if filters.Status != "" {
			db = db.Where("status = ?", filters.Status)
		}
		if filters.WeekNumber > 0 {
			db = db.Where("week_number = ?", filters.WeekNumber)
		}
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := db.Preload("User").
		Offset(offset).Limit(limit).
		Order("week_number DESC, created_at DESC").
		Find(&reports).Error; err != nil {
		return nil, 0, err
	}

	return reports, total, nil
}

func (r *weeklyReportRepo) ListByIDs(ctx context.Context, ids []string) ([]model.WeeklyReport, error) {
	var reports []model.WeeklyReport
	err := r.db.WithContext(ctx).
		Where("report_id IN ?", ids).
		Find(&reports).Error
	return reports, err
}

// UpdateWithVersion 带乐观锁的周报更新
// 并发审核时只有第一个提交者成功，其余得到 ErrOptimisticLock
func (r *weeklyReportRepo) UpdateWithVersion(ctx context.Context, report *model.WeeklyReport) error {
	currentVersion := report.Version
	result := r.db.WithContext(ctx).
		Model(&model.WeeklyReport{}).
		Where("report_id = ? AND version = ?", report.ReportID, currentVersion).
		Updates(map[string]interface{}{
			"status":            report.Status,
			"submission_date":   report.SubmissionDate,
			"review_date":       report.ReviewDate,
			"reviewed_by_id":    report.ReviewedByID,
			"review_notes":      report.ReviewNotes,
			"points_awarded":    report.PointsAwarded,
			"fixed_criteria":    report.FixedCriteria,
			"variable_criteria": report.VariableCriteria,
			"comments":          report.Comments,
			"updated_by":        report.UpdatedBy,
			"updated_at":        gorm.Expr("NOW()"),
			"version":           currentVersion + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	report.Version = currentVersion + 1
	return nil
}
