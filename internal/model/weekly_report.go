package model

import "time"

// ── 周报状态 ──

const (
	ReportStatusDraft     = "DRAFT"
	ReportStatusSubmitted = "SUBMITTED"
	ReportStatusApproved  = "APPROVED"
	ReportStatusRejected  = "REJECTED"
)

// ── 问题类型 ──

const (
	QuestionTypeFixed    = "FIXED"
	QuestionTypeVariable = "VARIABLE"
)

// WeeklyReport 周报表 — 对应 weekly_reports
// 状态机：DRAFT → SUBMITTED → APPROVED | REJECTED（终态）
// 评估项映射是提交时的快照，不随问题目录变更
type WeeklyReport struct {
	ReportID         string      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"report_id"`
	UserID           string      `gorm:"type:uuid;not null"                             json:"user_id"`
	PeriodID         string      `gorm:"type:uuid;not null"                             json:"period_id"`
	WeekNumber       int         `gorm:"not null"                                       json:"week_number"`
	Status           string      `gorm:"type:varchar(20);not null;default:'DRAFT'"      json:"status"`
	SubmissionDate   *time.Time  `json:"submission_date,omitempty"`
	ReviewDate       *time.Time  `json:"review_date,omitempty"`
	ReviewedByID     *string     `gorm:"type:uuid"                                      json:"reviewed_by_id,omitempty"`
	ReviewNotes      *string     `gorm:"type:text"                                      json:"review_notes,omitempty"`
	PointsAwarded    int         `gorm:"not null;default:0"                             json:"points_awarded"`
	FixedCriteria    CriteriaMap `gorm:"type:jsonb;not null;default:'{}'"               json:"fixed_criteria"`
	VariableCriteria CriteriaMap `gorm:"type:jsonb;not null;default:'{}'"               json:"variable_criteria"`
	Comments         *string     `gorm:"type:text"                                      json:"comments,omitempty"`
	VersionedModel

	// 关联
	User       *User   `gorm:"foreignKey:UserID;references:UserID"       json:"user,omitempty"`
	Period     *Period `gorm:"foreignKey:PeriodID;references:PeriodID"   json:"period,omitempty"`
	ReviewedBy *User   `gorm:"foreignKey:ReviewedByID;references:UserID" json:"reviewed_by,omitempty"`
}

// TableName 指定表名
func (WeeklyReport) TableName() string { return "weekly_reports" }

// IsReviewed 是否已进入终态
func (r *WeeklyReport) IsReviewed() bool {
	return r.Status == ReportStatusApproved || r.Status == ReportStatusRejected
}

// WeeklyReportQuestion 周报问题目录表 — 对应 weekly_report_questions
// 管理员维护的问题清单，本身不保存答案
type WeeklyReportQuestion struct {
	QuestionID string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"question_id"`
	Text       string `gorm:"type:text;not null"                             json:"text"`
	Type       string `gorm:"type:varchar(10);not null"                      json:"type"`        // FIXED | VARIABLE
	TargetRole string `gorm:"type:varchar(10);not null"                      json:"target_role"` // TUTOR | ASISTAN
	OrderIndex int    `gorm:"not null;default:0"                             json:"order_index"`
	IsActive   bool   `gorm:"not null;default:true"                          json:"is_active"`
	BaseModel
}

// TableName 指定表名
func (WeeklyReportQuestion) TableName() string { return "weekly_report_questions" }
