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

// ── 账本模块业务错误 ──

var (
	ErrAmountZero       = errors.New("金额不能为 0")
	ErrNotYourStudent   = errors.New("只能给自己名下的学生操作")
	ErrTargetNotStudent = errors.New("目标用户不是学生")
)

// LedgerService 积分/经验账本业务接口
// 流水只追加；用户表上的余额是冗余合计，
// 与流水写入处于同一事务，另提供按激活学期重算的兜底
type LedgerService interface {
	AwardPoints(ctx context.Context, req *dto.AwardPointsRequest, callerID, callerRole string) (*dto.BalanceResponse, error)
	AwardExperience(ctx context.Context, req *dto.AwardExperienceRequest, callerID, callerRole string) (*dto.BalanceResponse, error)
	ListPointsTransactions(ctx context.Context, req *dto.TransactionListRequest) ([]dto.TransactionResponse, int64, error)
	ListExperienceTransactions(ctx context.Context, req *dto.TransactionListRequest) ([]dto.TransactionResponse, int64, error)
	Recalculate(ctx context.Context) (*dto.RecalculateResponse, error)
}

type ledgerService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewLedgerService 创建 LedgerService 实例
func NewLedgerService(repo *repository.Repository, logger *zap.Logger) LedgerService {
	return &ledgerService{repo: repo, logger: logger}
}

// ────────────────────── AwardPoints ──────────────────────

func (s *ledgerService) AwardPoints(ctx context.Context, req *dto.AwardPointsRequest, callerID, callerRole string) (*dto.BalanceResponse, error) {
	target, period, err := s.checkAward(ctx, req.UserID, req.Amount, callerID, callerRole)
	if err != nil {
		return nil, err
	}

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

	record := &model.PointsTransaction{
		UserID:        target.UserID,
		PeriodID:      period.PeriodID,
		Amount:        req.Amount,
		Reason:        req.Reason,
		PointReasonID: req.PointReasonID,
	}
	record.CreatedBy = &callerID
	record.UpdatedBy = &callerID

	if err := txRepo.PointsTx.Create(ctx, record); err != nil {
		if tx != nil {
			tx.Rollback()
		}
		s.logger.Error("写入积分流水失败", zap.Error(err))
		return nil, err
	}

	if err := txRepo.User.AddPoints(ctx, target.UserID, req.Amount); err != nil {
		if tx != nil {
			tx.Rollback()
		}
		s.logger.Error("更新用户积分失败", zap.Error(err))
		return nil, err
	}

	if tx != nil {
		if err := tx.Commit().Error; err != nil {
			s.logger.Error("提交事务失败", zap.Error(err))
			return nil, err
		}
	}

	updated, err := s.repo.User.GetByID(ctx, target.UserID)
	if err != nil {
		return nil, err
	}

	return &dto.BalanceResponse{
		UserID:     updated.UserID,
		Points:     updated.Points,
		Experience: updated.Experience,
	}, nil
}

// ────────────────────── AwardExperience ──────────────────────

func (s *ledgerService) AwardExperience(ctx context.Context, req *dto.AwardExperienceRequest, callerID, callerRole string) (*dto.BalanceResponse, error) {
	target, period, err := s.checkAward(ctx, req.UserID, req.Amount, callerID, callerRole)
	if err != nil {
		return nil, err
	}

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

	record := &model.ExperienceTransaction{
		UserID:   target.UserID,
		PeriodID: period.PeriodID,
		Amount:   req.Amount,
		Reason:   req.Reason,
	}
	record.CreatedBy = &callerID
	record.UpdatedBy = &callerID

	if err := txRepo.ExperienceTx.Create(ctx, record); err != nil {
		if tx != nil {
			tx.Rollback()
		}
		s.logger.Error("写入经验流水失败", zap.Error(err))
		return nil, err
	}

	if err := txRepo.User.AddExperience(ctx, target.UserID, req.Amount); err != nil {
		if tx != nil {
			tx.Rollback()
		}
		s.logger.Error("更新用户经验失败", zap.Error(err))
		return nil, err
	}

	if tx != nil {
		if err := tx.Commit().Error; err != nil {
			s.logger.Error("提交事务失败", zap.Error(err))
			return nil, err
		}
	}

	updated, err := s.repo.User.GetByID(ctx, target.UserID)
	if err != nil {
		return nil, err
	}

	return &dto.BalanceResponse{
		UserID:     updated.UserID,
		Points:     updated.Points,
		Experience: updated.Experience,
	}, nil
}

// ────────────────────── List ──────────────────────

func (s *ledgerService) ListPointsTransactions(ctx context.Context, req *dto.TransactionListRequest) ([]dto.TransactionResponse, int64, error) {
	filters := &repository.TransactionListFilters{
		UserID:   req.UserID,
		PeriodID: req.PeriodID,
	}

	txs, total, err := s.repo.PointsTx.List(ctx, filters, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("查询积分流水失败", zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.TransactionResponse, 0, len(txs))
	for i := range txs {
		t := &txs[i]
		resp := dto.TransactionResponse{
			ID:            t.TransactionID,
			UserID:        t.UserID,
			PeriodID:      t.PeriodID,
			Amount:        t.Amount,
			Reason:        t.Reason,
			PointReasonID: t.PointReasonID,
			CreatedAt:     t.CreatedAt.Format(time.RFC3339),
			CreatedBy:     t.CreatedBy,
		}
		if t.User != nil {
			resp.UserName = t.User.FullName()
		}
		result = append(result, resp)
	}

	return result, total, nil
}

func (s *ledgerService) ListExperienceTransactions(ctx context.Context, req *dto.TransactionListRequest) ([]dto.TransactionResponse, int64, error) {
	filters := &repository.TransactionListFilters{
		UserID:   req.UserID,
		PeriodID: req.PeriodID,
	}

	txs, total, err := s.repo.ExperienceTx.List(ctx, filters, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("查询经验流水失败", zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.TransactionResponse, 0, len(txs))
	for i := range txs {
		t := &txs[i]
		resp := dto.TransactionResponse{
			ID:        t.TransactionID,
			UserID:    t.UserID,
			PeriodID:  t.PeriodID,
			Amount:    t.Amount,
			Reason:    t.Reason,
			CreatedAt: t.CreatedAt.Format(time.RFC3339),
			CreatedBy: t.CreatedBy,
		}
		if t.User != nil {
			resp.UserName = t.User.FullName()
		}
		result = append(result, resp)
	}

	return result, total, nil
}

// ────────────────────── Recalculate ──────────────────────

// Recalculate 以激活学期的流水合计重写所有学生的冗余余额
// 管理员兜底操作，用于修复余额与流水不一致。
// 只合计激活学期的流水：历史学期的流水在激活重置后仍保留在账本里，
// 全量合计会把已清零的余额加回来
func (s *ledgerService) Recalculate(ctx context.Context) (*dto.RecalculateResponse, error) {
	period, err := s.repo.Period.GetActive(ctx)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoActivePeriod
		}
		s.logger.Error("查询激活学期失败", zap.Error(err))
		return nil, err
	}

	students, err := s.repo.User.ListByRole(ctx, model.RoleStudent)
	if err != nil {
		s.logger.Error("查询学生列表失败", zap.Error(err))
		return nil, err
	}

	updated := 0
	for i := range students {
		u := &students[i]

		pointsSum, err := s.repo.PointsTx.SumByUserPeriod(ctx, u.UserID, period.PeriodID)
		if err != nil {
			s.logger.Error("合计积分流水失败", zap.String("user_id", u.UserID), zap.Error(err))
			return nil, err
		}
		expSum, err := s.repo.ExperienceTx.SumByUserPeriod(ctx, u.UserID, period.PeriodID)
		if err != nil {
			s.logger.Error("合计经验流水失败", zap.String("user_id", u.UserID), zap.Error(err))
			return nil, err
		}

		if u.Points == pointsSum && u.Experience == expSum {
			continue
		}

		if err := s.repo.User.SetBalances(ctx, u.UserID, pointsSum, expSum); err != nil {
			s.logger.Error("重写用户余额失败", zap.String("user_id", u.UserID), zap.Error(err))
			return nil, err
		}
		updated++
	}

	s.logger.Info("余额重算完成", zap.Int("users_updated", updated))

	return &dto.RecalculateResponse{UsersUpdated: updated}, nil
}

// ── 内部辅助方法 ──

// checkAward 授予前置校验：金额非零、目标存在、存在激活学期、导师只能操作自己的学生
func (s *ledgerService) checkAward(ctx context.Context, userID string, amount int, callerID, callerRole string) (*model.User, *model.Period, error) {
	if amount == 0 {
		return nil, nil, ErrAmountZero
	}

	target, err := s.repo.User.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrUserNotFound
		}
		s.logger.Error("查询用户失败", zap.String("id", userID), zap.Error(err))
		return nil, nil, err
	}

	period, err := s.repo.Period.GetActive(ctx)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrNoActivePeriod
		}
		s.logger.Error("查询激活学期失败", zap.Error(err))
		return nil, nil, err
	}

	// 导师/助理只能给自己名下的学生加减分
	if callerRole == model.RoleTutor || callerRole == model.RoleAsistan {
		if target.Role != model.RoleStudent {
			return nil, nil, ErrTargetNotStudent
		}
		if target.TutorID == nil || *target.TutorID != callerID {
			return nil, nil, ErrNotYourStudent
		}
	}

	return target, period, nil
}
