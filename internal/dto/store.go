package dto

// ── 奖励商店 DTO ──

// CreateItemRequest 创建商品请求
type CreateItemRequest struct {
	Name        string  `json:"name"        binding:"required,min=2,max=200"`
	Description *string `json:"description" binding:"omitempty,max=1000"`
	PointsCost  int     `json:"points_cost" binding:"required,min=0"`
	Stock       int     `json:"stock"       binding:"omitempty,min=0"`
}

// UpdateItemRequest 更新商品请求
type UpdateItemRequest struct {
	Name        *string `json:"name"        binding:"omitempty,min=2,max=200"`
	Description *string `json:"description" binding:"omitempty,max=1000"`
	PointsCost  *int    `json:"points_cost" binding:"omitempty,min=0"`
	Stock       *int    `json:"stock"       binding:"omitempty,min=0"`
	IsActive    *bool   `json:"is_active"`
}

// StoreItemResponse 商品响应
type StoreItemResponse struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
	PointsCost  int     `json:"points_cost"`
	Stock       int     `json:"stock"`
	IsActive    bool    `json:"is_active"`
}

// CreateItemRequestRequest 学生发起兑换申请请求
type CreateItemRequestRequest struct {
	ItemID string  `json:"item_id" binding:"required,uuid"`
	Note   *string `json:"note"    binding:"omitempty,max=500"`
}

// ReviewItemRequestRequest 审核兑换申请请求
type ReviewItemRequestRequest struct {
	Status string  `json:"status" binding:"required,oneof=APPROVED REJECTED"`
	Note   *string `json:"note"   binding:"omitempty,max=500"`
}

// ItemRequestListRequest 兑换申请列表查询参数
type ItemRequestListRequest struct {
	PaginationRequest
	Status   string `form:"status"    binding:"omitempty,oneof=PENDING APPROVED REJECTED"`
	PeriodID string `form:"period_id" binding:"omitempty,uuid"`
	UserID   string `form:"user_id"   binding:"omitempty,uuid"`
}

// ItemRequestResponse 兑换申请响应
type ItemRequestResponse struct {
	ID           string  `json:"id"`
	UserID       string  `json:"user_id"`
	UserName     string  `json:"user_name,omitempty"`
	ItemID       string  `json:"item_id"`
	ItemName     string  `json:"item_name,omitempty"`
	PointsCost   int     `json:"points_cost"`
	PeriodID     string  `json:"period_id"`
	Status       string  `json:"status"`
	Note         *string `json:"note,omitempty"`
	ReviewedByID *string `json:"reviewed_by_id,omitempty"`
	ReviewedAt   *string `json:"reviewed_at,omitempty"`
	CreatedAt    string  `json:"created_at"`
}
