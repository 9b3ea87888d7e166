package dto

// ── 积分/经验账本 DTO ──

// AwardPointsRequest 授予/扣减积分请求
// amount 有符号，负数表示扣减；不允许为 0
type AwardPointsRequest struct {
	UserID        string  `json:"user_id"         binding:"required,uuid"`
	Amount        int     `json:"amount"          binding:"required"`
	Reason        string  `json:"reason"          binding:"required,max=500"`
	PointReasonID *string `json:"point_reason_id" binding:"omitempty,uuid"`
}

// AwardExperienceRequest 授予/扣减经验请求
type AwardExperienceRequest struct {
	UserID string `json:"user_id" binding:"required,uuid"`
	Amount int    `json:"amount"  binding:"required"`
	Reason string `json:"reason"  binding:"required,max=500"`
}

// TransactionListRequest 流水列表查询参数
type TransactionListRequest struct {
	PaginationRequest
	UserID   string `form:"user_id"   binding:"omitempty,uuid"`
	PeriodID string `form:"period_id" binding:"omitempty,uuid"`
}

// TransactionResponse 流水响应
type TransactionResponse struct {
	ID            string  `json:"id"`
	UserID        string  `json:"user_id"`
	UserName      string  `json:"user_name,omitempty"`
	PeriodID      string  `json:"period_id"`
	Amount        int     `json:"amount"`
	Reason        string  `json:"reason"`
	PointReasonID *string `json:"point_reason_id,omitempty"`
	CreatedAt     string  `json:"created_at"`
	CreatedBy     *string `json:"created_by,omitempty"`
}

// BalanceResponse 授予操作后的余额响应
type BalanceResponse struct {
	UserID     string `json:"user_id"`
	Points     int    `json:"points"`
	Experience int    `json:"experience"`
}

// RecalculateResponse 余额重算响应
type RecalculateResponse struct {
	UsersUpdated int `json:"users_updated"`
}
