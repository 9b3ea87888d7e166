package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"bilgeverse/backend/internal/dto"
	"bilgeverse/backend/internal/model"
	"bilgeverse/backend/internal/repository"
)

// ── 学期模块业务错误 ──

var (
	ErrPeriodNotFound      = errors.New("学期不存在")
	ErrPeriodDateInvalid   = errors.New("学期日期无效")
	ErrPeriodStatusInvalid = errors.New("无效的学期状态")
	ErrNoActivePeriod      = errors.New("当前没有激活的学期")
)

// PeriodService 学期业务接口
type PeriodService interface {
	Create(ctx context.Context, req *dto.CreatePeriodRequest, callerID string) (*dto.PeriodResponse, error)
	GetByID(ctx context.Context, id string) (*dto.PeriodResponse, error)
	GetActive(ctx context.Context) (*dto.PeriodResponse, error)
	List(ctx context.Context) ([]dto.PeriodResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdatePeriodRequest, callerID string) (*dto.PeriodResponse, error)
	UpdateStatus(ctx context.Context, id string, status string, callerID string) error
	Activate(ctx context.Context, id string, resetData bool, callerID string) (*dto.ActivatePeriodResponse, error)
	GetDeleteImpact(ctx context.Context, id string) (*dto.PeriodCountsResponse, error)
	Delete(ctx context.Context, id string) error
}

type periodService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewPeriodService 创建 PeriodService 实例
func NewPeriodService(repo *repository.Repository, logger *zap.Logger) PeriodService {
	return &periodService{repo: repo, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *periodService) Create(ctx context.Context, req *dto.CreatePeriodRequest, callerID string) (*dto.PeriodResponse, error) {
	startDate, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		return nil, ErrPeriodDateInvalid
	}

	var endDate *time.Time
	if req.EndDate != nil && *req.EndDate != "" {
		parsed, err := time.Parse("2006-01-02", *req.EndDate)
		if err != nil {
			return nil, ErrPeriodDateInvalid
		}
		if !parsed.After(startDate) {
			return nil, ErrPeriodDateInvalid
		}
		endDate = &parsed
	}

	period := &model.Period{
		Name:        req.Name,
		Description: req.Description,
		StartDate:   startDate,
		EndDate:     endDate,
		Status:      model.PeriodStatusInactive, // 新建学期一律 INACTIVE，需显式激活
		TotalWeeks:  20,
	}
	if req.TotalWeeks != nil {
		period.TotalWeeks = *req.TotalWeeks
	}
	period.CreatedBy = &callerID
	period.UpdatedBy = &callerID

	if err := s.repo.Period.Create(ctx, period); err != nil {
		s.logger.Error("创建学期失败", zap.Error(err))
		return nil, err
	}

	return s.toPeriodResponse(period, nil), nil
}

// ────────────────────── GetByID ──────────────────────

func (s *periodService) GetByID(ctx context.Context, id string) (*dto.PeriodResponse, error) {
	period, err := s.repo.Period.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPeriodNotFound
		}
		s.logger.Error("查询学期失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	return s.toPeriodResponse(period, nil), nil
}

// ────────────────────── GetActive ──────────────────────

func (s *periodService) GetActive(ctx context.Context) (*dto.PeriodResponse, error) {
	period, err := s.repo.Period.GetActive(ctx)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoActivePeriod
		}
		s.logger.Error("查询激活学期失败", zap.Error(err))
		return nil, err
	}

	return s.toPeriodResponse(period, nil), nil
}

// ────────────────────── List ──────────────────────

// List 返回全部学期，每个学期附带关联记录数量
// 数量供管理端展示与删除前的影响提示
func (s *periodService) List(ctx context.Context) ([]dto.PeriodResponse, error) {
	periods, err := s.repo.Period.List(ctx)
	if err != nil {
		s.logger.Error("列出学期失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.PeriodResponse, 0, len(periods))
	for i := range periods {
		counts, err := s.repo.Period.CountDependents(ctx, periods[i].PeriodID)
		if err != nil {
			s.logger.Error("统计学期关联记录失败", zap.String("id", periods[i].PeriodID), zap.Error(err))
			return nil, err
		}
		result = append(result, *s.toPeriodResponse(&periods[i], counts))
	}

	return result, nil
}

// ────────────────────── Update ──────────────────────

func (s *periodService) Update(ctx context.Context, id string, req *dto.UpdatePeriodRequest, callerID string) (*dto.PeriodResponse, error) {
	period, err := s.repo.Period.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPeriodNotFound
		}
		s.logger.Error("查询学期失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	if req.Name != nil {
		period.Name = *req.Name
	}
	if req.Description != nil {
		period.Description = req.Description
	}
	if req.StartDate != nil {
		startDate, err := time.Parse("2006-01-02", *req.StartDate)
		if err != nil {
			return nil, ErrPeriodDateInvalid
		}
		period.StartDate = startDate
	}
	if req.EndDate != nil {
		if *req.EndDate == "" {
			period.EndDate = nil
		} else {
			endDate, err := time.Parse("2006-01-02", *req.EndDate)
			if err != nil {
				return nil, ErrPeriodDateInvalid
			}
			period.EndDate = &endDate
		}
	}
	if period.EndDate != nil && !period.EndDate.After(period.StartDate) {
		return nil, ErrPeriodDateInvalid
	}
	if req.TotalWeeks != nil {
		period.TotalWeeks = *req.TotalWeeks
	}

	period.UpdatedBy = &callerID

	if err := s.repo.Period.UpdateWithVersion(ctx, period); err != nil {
		s.logger.Error("更新学期失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	return s.toPeriodResponse(period, nil), nil
}

// ────────────────────── UpdateStatus ──────────────────────

// UpdateStatus 直接设置 INACTIVE / ARCHIVED，不触发激活级联
func (s *periodService) UpdateStatus(ctx context.Context, id string, status string, callerID string) error {
	if status != model.PeriodStatusInactive && status != model.PeriodStatusArchived {
		return ErrPeriodStatusInvalid
	}

	period, err := s.repo.Period.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPeriodNotFound
		}
		s.logger.Error("查询学期失败", zap.String("id", id), zap.Error(err))
		return err
	}

	period.Status = status
	period.UpdatedBy = &callerID

	if err := s.repo.Period.UpdateWithVersion(ctx, period); err != nil {
		s.logger.Error("更新学期状态失败", zap.String("id", id), zap.Error(err))
		return err
	}

	return nil
}

// ────────────────────── Activate ──────────────────────

// Activate 激活学期
// 单个事务内完成：其余学期置为 INACTIVE → 目标学期置为 ACTIVE →
// resetData 为 true 时清零所有用户积分与经验。
// 响应回传 reset_data，客户端据此触发会话刷新。
func (s *periodService) Activate(ctx context.Context, id string, resetData bool, callerID string) (*dto.ActivatePeriodResponse, error) {
	period, err := s.repo.Period.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPeriodNotFound
		}
		s.logger.Error("查询学期失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	// 使用事务保证 ClearActive + 激活 + 清零 的原子性
	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		s.logger.Error("开启事务失败", zap.Error(err))
		return nil, err
	}
	defer func() {
		if r := recover(); r != nil {
			if tx != nil {
				tx.Rollback()
			}
			panic(r)
		}
	}()

	txRepo := s.repo.WithTx(tx)

	// 先将所有学期置为非激活
	if err := txRepo.Period.ClearActive(ctx, callerID); err != nil {
		if tx != nil {
			tx.Rollback()
		}
		s.logger.Error("清除激活学期失败", zap.Error(err))
		return nil, err
	}

	// 目标学期可能刚被 ClearActive 触碰过，重读以拿到最新 version
	period, err = txRepo.Period.GetByID(ctx, id)
	if err != nil {
		if tx != nil {
			tx.Rollback()
		}
		s.logger.Error("重读学期失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	period.Status = model.PeriodStatusActive
	period.UpdatedBy = &callerID

	if err := txRepo.Period.UpdateWithVersion(ctx, period); err != nil {
		if tx != nil {
			tx.Rollback()
		}
		s.logger.Error("激活学期失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	// 破坏性重置：清零所有用户的积分与经验
	if resetData {
		if err := txRepo.User.ZeroAllBalances(ctx); err != nil {
			if tx != nil {
				tx.Rollback()
			}
			s.logger.Error("清零用户余额失败", zap.Error(err))
			return nil, err
		}
		s.logger.Warn("学期激活并重置所有用户余额",
			zap.String("period_id", id),
			zap.String("caller_id", callerID),
		)
	}

	if tx != nil {
		if err := tx.Commit().Error; err != nil {
			s.logger.Error("提交事务失败", zap.Error(err))
			return nil, err
		}
	}

	return &dto.ActivatePeriodResponse{ResetData: resetData}, nil
}

// ────────────────────── GetDeleteImpact ──────────────────────

func (s *periodService) GetDeleteImpact(ctx context.Context, id string) (*dto.PeriodCountsResponse, error) {
	if _, err := s.repo.Period.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPeriodNotFound
		}
		s.logger.Error("查询学期失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	counts, err := s.repo.Period.CountDependents(ctx, id)
	if err != nil {
		s.logger.Error("统计学期关联记录失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	return s.toCountsResponse(counts), nil
}

// ────────────────────── Delete ──────────────────────

// Delete 硬删除学期，依赖行由数据库级联清理
// 删除影响数量由 GetDeleteImpact 提前给客户端确认
func (s *periodService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.Period.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPeriodNotFound
		}
		s.logger.Error("查询学期失败", zap.String("id", id), zap.Error(err))
		return err
	}

	if err := s.repo.Period.Delete(ctx, id); err != nil {
		s.logger.Error("删除学期失败", zap.String("id", id), zap.Error(err))
		return err
	}

	return nil
}

// ── 内部辅助方法 ──

func (s *periodService) toPeriodResponse(period *model.Period, counts *model.PeriodDependentCounts) *dto.PeriodResponse {
	resp := &dto.PeriodResponse{
		ID:          period.PeriodID,
		Name:        period.Name,
		Description: period.Description,
		StartDate:   period.StartDate.Format("2006-01-02"),
		Status:      period.Status,
		TotalWeeks:  period.TotalWeeks,
		CreatedAt:   period.CreatedAt.Format(time.RFC3339),
	}
	if period.EndDate != nil {
		endDate := period.EndDate.Format("2006-01-02")
		resp.EndDate = &endDate
	}
	if counts != nil {
		resp.Counts = s.toCountsResponse(counts)
	}
	return resp
}

func (s *periodService) toCountsResponse(counts *model.PeriodDependentCounts) *dto.PeriodCountsResponse {
	return &dto.PeriodCountsResponse{
		Events:                 counts.Events,
		PointsTransactions:     counts.PointsTransactions,
		ExperienceTransactions: counts.ExperienceTransactions,
		ItemRequests:           counts.ItemRequests,
		Wishes:                 counts.Wishes,
		StudentNotes:           counts.StudentNotes,
		WeeklyReports:          counts.WeeklyReports,
		Announcements:          counts.Announcements,
	}
}
