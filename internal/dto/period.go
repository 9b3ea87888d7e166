package dto

// ── 学期模块 DTO ──

// CreatePeriodRequest 创建学期请求
type CreatePeriodRequest struct {
	Name        string  `json:"name"        binding:"required,min=2,max=100"`
	Description *string `json:"description" binding:"omitempty,max=1000"`
	StartDate   string  `json:"start_date"  binding:"required"` // "2024-09-01"
	EndDate     *string `json:"end_date"`
	TotalWeeks  *int    `json:"total_weeks" binding:"omitempty,min=1,max=60"`
}

// UpdatePeriodRequest 更新学期设置请求
type UpdatePeriodRequest struct {
	Name        *string `json:"name"        binding:"omitempty,min=2,max=100"`
	Description *string `json:"description" binding:"omitempty,max=1000"`
	StartDate   *string `json:"start_date"`
	EndDate     *string `json:"end_date"`
	TotalWeeks  *int    `json:"total_weeks" binding:"omitempty,min=1,max=60"`
}

// UpdatePeriodStatusRequest 直接设置学期状态请求（不含激活级联）
type UpdatePeriodStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=INACTIVE ARCHIVED"`
}

// ActivatePeriodRequest 激活学期请求
type ActivatePeriodRequest struct {
	ResetData bool `json:"reset_data"` // true 时清零所有用户积分与经验（不可逆）
}

// ActivatePeriodResponse 激活学期响应
// 回传 reset_data 供客户端决定是否触发会话刷新
type ActivatePeriodResponse struct {
	ResetData bool `json:"reset_data"`
}

// PeriodCountsResponse 学期关联记录数量
type PeriodCountsResponse struct {
	Events                 int64 `json:"events"`
	PointsTransactions     int64 `json:"points_transactions"`
	ExperienceTransactions int64 `json:"experience_transactions"`
	ItemRequests           int64 `json:"item_requests"`
	Wishes                 int64 `json:"wishes"`
	StudentNotes           int64 `json:"student_notes"`
	WeeklyReports          int64 `json:"weekly_reports"`
	Announcements          int64 `json:"announcements"`
}

// PeriodResponse 学期信息响应
type PeriodResponse struct {
	ID          string                `json:"id"`
	Name        string                `json:"name"`
	Description *string               `json:"description,omitempty"`
	StartDate   string                `json:"start_date"`
	EndDate     *string               `json:"end_date,omitempty"`
	Status      string                `json:"status"`
	TotalWeeks  int                   `json:"total_weeks"`
	CreatedAt   string                `json:"created_at"`
	Counts      *PeriodCountsResponse `json:"counts,omitempty"` // 列表与删除确认时附带
}
