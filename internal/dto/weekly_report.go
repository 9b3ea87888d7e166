package dto

// ── 周报模块 DTO ──

// SaveDraftRequest 保存周报草稿请求
// 评估项的键在写入时按当前生效的问题目录校验，
// 取值必须是 YAPILDI | YAPILMADI | YOKTU 之一
type SaveDraftRequest struct {
	WeekNumber       int               `json:"week_number"       binding:"required,min=1"`
	FixedCriteria    map[string]string `json:"fixed_criteria"    binding:"required"`
	VariableCriteria map[string]string `json:"variable_criteria" binding:"required"`
	Comments         *string           `json:"comments"          binding:"omitempty,max=2000"`
}

// ReviewReportRequest 审核周报请求
type ReviewReportRequest struct {
	Status        string  `json:"status"         binding:"required,oneof=APPROVED REJECTED"`
	ReviewNotes   *string `json:"review_notes"   binding:"omitempty,max=2000"`
	PointsAwarded int     `json:"points_awarded" binding:"omitempty,min=0"`
}

// BulkReviewRequest 批量审核请求（整体成功或整体失败）
type BulkReviewRequest struct {
	ReportIDs     []string `json:"report_ids"     binding:"required,min=1,dive,uuid"`
	Status        string   `json:"status"         binding:"required,oneof=APPROVED REJECTED"`
	ReviewNotes   *string  `json:"review_notes"   binding:"omitempty,max=2000"`
	PointsAwarded int      `json:"points_awarded" binding:"omitempty,min=0"`
}

// BulkReviewResponse 批量审核响应
type BulkReviewResponse struct {
	Reviewed int `json:"reviewed"`
}

// ReportListRequest 周报列表查询参数
type ReportListRequest struct {
	PaginationRequest
	PeriodID   string `form:"period_id"   binding:"omitempty,uuid"`
	UserID     string `form:"user_id"     binding:"omitempty,uuid"`
	Status     string `form:"status"      binding:"omitempty,oneof=DRAFT SUBMITTED APPROVED REJECTED"`
	WeekNumber int    `form:"week_number" binding:"omitempty,min=1"`
}

// WeeklyReportResponse 周报响应
// AttendanceScore / SuggestedPoints 仅用于展示，不参与任何强制逻辑
type WeeklyReportResponse struct {
	ID               string            `json:"id"`
	UserID           string            `json:"user_id"`
	UserName         string            `json:"user_name,omitempty"`
	PeriodID         string            `json:"period_id"`
	WeekNumber       int               `json:"week_number"`
	Status           string            `json:"status"`
	SubmissionDate   *string           `json:"submission_date,omitempty"`
	ReviewDate       *string           `json:"review_date,omitempty"`
	ReviewedByID     *string           `json:"reviewed_by_id,omitempty"`
	ReviewNotes      *string           `json:"review_notes,omitempty"`
	PointsAwarded    int               `json:"points_awarded"`
	FixedCriteria    map[string]string `json:"fixed_criteria"`
	VariableCriteria map[string]string `json:"variable_criteria"`
	Comments         *string           `json:"comments,omitempty"`
	AttendanceScore  int               `json:"attendance_score"`
	SuggestedPoints  int               `json:"suggested_points"`
	CreatedAt        string            `json:"created_at"`
}

// ── 问题目录 DTO ──

// CreateQuestionRequest 创建周报问题请求
type CreateQuestionRequest struct {
	Text       string `json:"text"        binding:"required,max=500"`
	Type       string `json:"type"        binding:"required,oneof=FIXED VARIABLE"`
	TargetRole string `json:"target_role" binding:"required,oneof=TUTOR ASISTAN"`
	OrderIndex int    `json:"order_index" binding:"omitempty,min=0"`
}

// UpdateQuestionRequest 更新周报问题请求
type UpdateQuestionRequest struct {
	Text       *string `json:"text"        binding:"omitempty,max=500"`
	Type       *string `json:"type"        binding:"omitempty,oneof=FIXED VARIABLE"`
	TargetRole *string `json:"target_role" binding:"omitempty,oneof=TUTOR ASISTAN"`
	OrderIndex *int    `json:"order_index" binding:"omitempty,min=0"`
	IsActive   *bool   `json:"is_active"`
}

// QuestionResponse 周报问题响应
type QuestionResponse struct {
	ID         string `json:"id"`
	Text       string `json:"text"`
	Type       string `json:"type"`
	TargetRole string `json:"target_role"`
	OrderIndex int    `json:"order_index"`
	IsActive   bool   `json:"is_active"`
}
