package repository

import (
	"context"

	"gorm.io/gorm"

	"bilgeverse/backend/internal/model"
)

// StoreItemRepository 商品数据访问接口
type StoreItemRepository interface {
	Create(ctx context.Context, item *model.StoreItem) error
	GetByID(ctx context.Context, id string) (*model.StoreItem, error)
	List(ctx context.Context, activeOnly bool) ([]model.StoreItem, error)
	Update(ctx context.Context, item *model.StoreItem) error
	Delete(ctx context.Context, id string) error
}

type storeItemRepo struct {
	db *gorm.DB
}

// NewStoreItemRepo 创建 StoreItemRepository 实例
func NewStoreItemRepo(db *gorm.DB) StoreItemRepository {
	return &storeItemRepo{db: db}
}

func (r *storeItemRepo) Create(ctx context.Context, item *model.StoreItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *storeItemRepo) GetByID(ctx context.Context, id string) (*model.StoreItem, error) {
	var item model.StoreItem
	err := r.db.WithContext(ctx).
		Where("item_id = ?", id).
		First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *storeItemRepo) List(ctx context.Context, activeOnly bool) ([]model.StoreItem, error) {
	var items []model.StoreItem

	db := r.db.WithContext(ctx).Model(&model.StoreItem{})
	if activeOnly {
		db = db.Where("is_active = ?", true)
	}

	err := db.Order("points_cost, name").Find(&items).Error
	return items, err
}

func (r *storeItemRepo) Update(ctx context.Context, item *model.StoreItem) error {
	return r.db.WithContext(ctx).Save(item).Error
}

func (r *storeItemRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Where("item_id = ?", id).
		Delete(&model.StoreItem{}).Error
}

// ItemRequestListFilters 兑换申请列表过滤条件
type ItemRequestListFilters struct {
	Status   string
	PeriodID string
	UserID   string
}

// ItemRequestRepository 兑换申请数据访问接口
type ItemRequestRepository interface {
	Create(ctx context.Context, request *model.ItemRequest) error
	GetByID(ctx context.Context, id string) (*model.ItemRequest, error)
	List(ctx context.Context, filters *ItemRequestListFilters, offset, limit int) ([]model.ItemRequest, int64, error)
	Update(ctx context.Context, request *model.ItemRequest) error
}

type itemRequestRepo struct {
	db *gorm.DB
}

// NewItemRequestRepo 创建 ItemRequestRepository 实例
func NewItemRequestRepo(db *gorm.DB) ItemRequestRepository {
	return &itemRequestRepo{db: db}
}

func (r *itemRequestRepo) Create(ctx context.Context, request *model.ItemRequest) error {
	return r.db.WithContext(ctx).Create(request).Error
}

func (r *itemRequestRepo) GetByID(ctx context.Context, id string) (*model.ItemRequest, error) {
	var request model.ItemRequest
	err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Item").
		Where("request_id = ?", id).
		First(&request).Error
	if err != nil {
		return nil, err
	}
	return &request, nil
}

func (r *itemRequestRepo) List(ctx context.Context, filters *ItemRequestListFilters, offset, limit int) ([]model.ItemRequest, int64, error) {
	var requests []model.ItemRequest
	var total int64

	db := r.db.WithContext(ctx).Model(&model.ItemRequest{})
	if filters != nil {
		if filters.Status != "" {
			db = db.Where("status = ?", filters.Status)
		}
		if filters.PeriodID != "" {
			db = db.Where("period_id = ?", filters.PeriodID)
		}
		if filters.UserID != "" {
			db = db.Where("user_id = ?", filters.UserID)
		}
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := db.Preload("User").Preload("Item").
		Offset(offset).Limit(limit).
		Order("created_at DESC").
		Find(&requests).Error; err != nil {
		return nil, 0, err
	}

	return requests, total, nil
}

func (r *itemRequestRepo) Update(ctx context.Context, request *model.ItemRequest) error {
	return r.db.WithContext(ctx).Save(request).Error
}
