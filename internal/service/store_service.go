package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"bilgeverse/backend/internal/dto"
	"bilgeverse/backend/internal/model"
	"bilgeverse/backend/internal/repository"
)

// ── 商店模块业务错误 ──

var (
	ErrItemNotFound           = errors.New("商品不存在")
	ErrItemInactive           = errors.New("商品已下架")
	ErrItemOutOfStock         = errors.New("商品库存不足")
	ErrInsufficientPoints     = errors.New("积分余额不足")
	ErrRequestNotFound        = errors.New("兑换申请不存在")
	ErrRequestAlreadyReviewed = errors.New("兑换申请已审核，结果不可更改")
)

// StoreService 奖励商店业务接口
// 兑换流程：学生发起申请（校验余额与库存）→ 管理员审核 →
// 通过时在同一事务内扣库存、写负数积分流水并扣减余额
type StoreService interface {
	CreateItem(ctx context.Context, req *dto.CreateItemRequest, callerID string) (*dto.StoreItemResponse, error)
	UpdateItem(ctx context.Context, id string, req *dto.UpdateItemRequest, callerID string) (*dto.StoreItemResponse, error)
	DeleteItem(ctx context.Context, id string) error
	ListItems(ctx context.Context, activeOnly bool) ([]dto.StoreItemResponse, error)

	CreateRequest(ctx context.Context, req *dto.CreateItemRequestRequest, callerID string) (*dto.ItemRequestResponse, error)
	ListRequests(ctx context.Context, req *dto.ItemRequestListRequest) ([]dto.ItemRequestResponse, int64, error)
	ReviewRequest(ctx context.Context, id string, req *dto.ReviewItemRequestRequest, reviewerID string) (*dto.ItemRequestResponse, error)
}

type storeService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewStoreService 创建 StoreService 实例
func NewStoreService(repo *repository.Repository, logger *zap.Logger) StoreService {
	return &storeService{repo: repo, logger: logger}
}

// ────────────────────── CreateItem ──────────────────────

func (s *storeService) CreateItem(ctx context.Context, req *dto.CreateItemRequest, callerID string) (*dto.StoreItemResponse, error) {
	item := &model.StoreItem{
		Name:        req.Name,
		Description: req.Description,
		PointsCost:  req.PointsCost,
		Stock:       req.Stock,
		IsActive:    true,
	}
	item.CreatedBy = &callerID
	item.UpdatedBy = &callerID

	if err := s.repo.StoreItem.Create(ctx, item); err != nil {
		s.logger.Error("创建商品失败", zap.Error(err))
		return nil, err
	}

	return s.toItemResponse(item), nil
}

// ────────────────────── UpdateItem ──────────────────────

func (s *storeService) UpdateItem(ctx context.Context, id string, req *dto.UpdateItemRequest, callerID string) (*dto.StoreItemResponse, error) {
	item, err := s.getItem(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		item.Name = *req.Name
	}
	if req.Description != nil {
		item.Description = req.Description
	}
	if req.PointsCost != nil {
		item.PointsCost = *req.PointsCost
	}
	if req.Stock != nil {
		item.Stock = *req.Stock
	}
	if req.IsActive != nil {
		item.IsActive = *req.IsActive
	}
	item.UpdatedBy = &callerID

	if err := s.repo.StoreItem.Update(ctx, item); err != nil {
		s.logger.Error("更新商品失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	return s.toItemResponse(item), nil
}

// ────────────────────── DeleteItem ──────────────────────

func (s *storeService) DeleteItem(ctx context.Context, id string) error {
	if _, err := s.getItem(ctx, id); err != nil {
		return err
	}

	if err := s.repo.StoreItem.Delete(ctx, id); err != nil {
		s.logger.Error("删除商品失败", zap.String("id", id), zap.Error(err))
		return err
	}

	return nil
}

// ────────────────────── ListItems ──────────────────────

func (s *storeService) ListItems(ctx context.Context, activeOnly bool) ([]dto.StoreItemResponse, error) {
	items, err := s.repo.StoreItem.List(ctx, activeOnly)
	if err != nil {
		s.logger.Error("查询商品列表失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.StoreItemResponse, 0, len(items))
	for i := range items {
		result = append(result, *s.toItemResponse(&items[i]))
	}

	return result, nil
}

// ────────────────────── CreateRequest ──────────────────────

// CreateRequest 学生发起兑换申请
// 发起时只做余额与库存预检，实际扣减发生在审核通过时
func (s *storeService) CreateRequest(ctx context.Context, req *dto.CreateItemRequestRequest, callerID string) (*dto.ItemRequestResponse, error) {
	item, err := s.getItem(ctx, req.ItemID)
	if err != nil {
		return nil, err
	}
	if !item.IsActive {
		return nil, ErrItemInactive
	}
	if item.Stock <= 0 {
		return nil, ErrItemOutOfStock
	}

	user, err := s.repo.User.GetByID(ctx, callerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("查询用户失败", zap.String("id", callerID), zap.Error(err))
		return nil, err
	}
	if user.Points < item.PointsCost {
		return nil, ErrInsufficientPoints
	}

	period, err := s.repo.Period.GetActive(ctx)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoActivePeriod
		}
		s.logger.Error("查询激活学期失败", zap.Error(err))
		return nil, err
	}

	request := &model.ItemRequest{
		UserID:   callerID,
		ItemID:   item.ItemID,
		PeriodID: period.PeriodID,
		Status:   model.RequestStatusPending,
		Note:     req.Note,
	}
	request.CreatedBy = &callerID
	request.UpdatedBy = &callerID

	if err := s.repo.ItemRequest.Create(ctx, request); err != nil {
		s.logger.Error("创建兑换申请失败", zap.Error(err))
		return nil, err
	}

	request.User = user
	request.Item = item

	return s.toRequestResponse(request), nil
}

// ────────────────────── ListRequests ──────────────────────

func (s *storeService) ListRequests(ctx context.Context, req *dto.ItemRequestListRequest) ([]dto.ItemRequestResponse, int64, error) {
	filters := &repository.ItemRequestListFilters{
		Status:   req.Status,
		PeriodID: req.PeriodID,
		UserID:   req.UserID,
	}

	requests, total, err := s.repo.ItemRequest.List(ctx, filters, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("查询兑换申请列表失败", zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.ItemRequestResponse, 0, len(requests))
	for i := range requests {
		result = append(result, *s.toRequestResponse(&requests[i]))
	}

	return result, total, nil
}

// ────────────────────── ReviewRequest ──────────────────────

// ReviewRequest 审核兑换申请，PENDING 之外的状态为终态
// 通过时在同一事务内：扣库存 → 写负数积分流水 → 扣减用户余额
func (s *storeService) ReviewRequest(ctx context.Context, id string, req *dto.ReviewItemRequestRequest, reviewerID string) (*dto.ItemRequestResponse, error) {
	request, err := s.repo.ItemRequest.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRequestNotFound
		}
		s.logger.Error("查询兑换申请失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	if request.Status != model.RequestStatusPending {
		return nil, ErrRequestAlreadyReviewed
	}

	// 审核时重新校验，申请挂起期间余额或库存可能已变化
	if req.Status == model.RequestStatusApproved {
		item, err := s.getItem(ctx, request.ItemID)
		if err != nil {
			return nil, err
		}
		if item.Stock <= 0 {
			return nil, ErrItemOutOfStock
		}

		user, err := s.repo.User.GetByID(ctx, request.UserID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrUserNotFound
			}
			return nil, err
		}
		if user.Points < item.PointsCost {
			return nil, ErrInsufficientPoints
		}

		request.Item = item
	}

	now := time.Now()
	request.Status = req.Status
	if req.Note != nil {
		request.Note = req.Note
	}
	request.ReviewedByID = &reviewerID
	request.ReviewedAt = &now
	request.UpdatedBy = &reviewerID

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

	if err := txRepo.ItemRequest.Update(ctx, request); err != nil {
		if tx != nil {
			tx.Rollback()
		}
		s.logger.Error("更新兑换申请失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	if req.Status == model.RequestStatusApproved {
		item := request.Item
		item.Stock--
		item.UpdatedBy = &reviewerID
		if err := txRepo.StoreItem.Update(ctx, item); err != nil {
			if tx != nil {
				tx.Rollback()
			}
			s.logger.Error("扣减商品库存失败", zap.String("item_id", item.ItemID), zap.Error(err))
			return nil, err
		}

		record := &model.PointsTransaction{
			UserID:   request.UserID,
			PeriodID: request.PeriodID,
			Amount:   -item.PointsCost,
			Reason:   fmt.Sprintf("兑换商品：%s", item.Name),
		}
		record.CreatedBy = &reviewerID
		record.UpdatedBy = &reviewerID

		if err := txRepo.PointsTx.Create(ctx, record); err != nil {
			if tx != nil {
				tx.Rollback()
			}
			s.logger.Error("写入兑换积分流水失败", zap.String("request_id", id), zap.Error(err))
			return nil, err
		}
		if err := txRepo.User.AddPoints(ctx, request.UserID, -item.PointsCost); err != nil {
			if tx != nil {
				tx.Rollback()
			}
			s.logger.Error("扣减用户积分失败", zap.String("user_id", request.UserID), zap.Error(err))
			return nil, err
		}
	}

	if tx != nil {
		if err := tx.Commit().Error; err != nil {
			s.logger.Error("提交事务失败", zap.Error(err))
			return nil, err
		}
	}

	s.logger.Info("兑换申请审核完成",
		zap.String("request_id", id),
		zap.String("status", req.Status),
		zap.String("reviewer_id", reviewerID),
	)

	return s.toRequestResponse(request), nil
}

// ── 内部辅助方法 ──

func (s *storeService) getItem(ctx context.Context, id string) (*model.StoreItem, error) {
	item, err := s.repo.StoreItem.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrItemNotFound
		}
		s.logger.Error("查询商品失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return item, nil
}

func (s *storeService) toItemResponse(item *model.StoreItem) *dto.StoreItemResponse {
	return &dto.StoreItemResponse{
		ID:          item.ItemID,
		Name:        item.Name,
		Description: item.Description,
		PointsCost:  item.PointsCost,
		Stock:       item.Stock,
		IsActive:    item.IsActive,
	}
}

func (s *storeService) toRequestResponse(request *model.ItemRequest) *dto.ItemRequestResponse {
	resp := &dto.ItemRequestResponse{
		ID:           request.RequestID,
		UserID:       request.UserID,
		ItemID:       request.ItemID,
		PeriodID:     request.PeriodID,
		Status:       request.Status,
		Note:         request.Note,
		ReviewedByID: request.ReviewedByID,
		CreatedAt:    request.CreatedAt.Format(time.RFC3339),
	}
	if request.ReviewedAt != nil {
		t := request.ReviewedAt.Format(time.RFC3339)
		resp.ReviewedAt = &t
	}
	if request.User != nil {
		resp.UserName = request.User.FullName()
	}
	if request.Item != nil {
		resp.ItemName = request.Item.Name
		resp.PointsCost = request.Item.PointsCost
	}
	return resp
}
