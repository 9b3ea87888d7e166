package model

import "time"

// ── 学期状态 ──

const (
	PeriodStatusActive   = "ACTIVE"
	PeriodStatusInactive = "INACTIVE"
	PeriodStatusArchived = "ARCHIVED"
)

// Period 学期表 — 对应 periods
// 全局至多一个 ACTIVE 学期；该不变量由激活事务与
// 数据库部分唯一索引共同保证
type Period struct {
	PeriodID    string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"period_id"`
	Name        string     `gorm:"type:varchar(100);not null"                     json:"name"`
	Description *string    `gorm:"type:text"                                      json:"description,omitempty"`
	StartDate   time.Time  `gorm:"type:date;not null"                             json:"start_date"`
	EndDate     *time.Time `gorm:"type:date"                                      json:"end_date,omitempty"`
	Status      string     `gorm:"type:varchar(20);not null;default:'INACTIVE'"   json:"status"` // ACTIVE | INACTIVE | ARCHIVED
	TotalWeeks  int        `gorm:"not null;default:20"                            json:"total_weeks"`
	VersionedModel
}

// TableName 指定表名
func (Period) TableName() string { return "periods" }

// PeriodDependentCounts 学期关联记录数量
// 删除学期前展示给管理员的影响范围
type PeriodDependentCounts struct {
	Events                 int64 `json:"events"`
	PointsTransactions     int64 `json:"points_transactions"`
	ExperienceTransactions int64 `json:"experience_transactions"`
	ItemRequests           int64 `json:"item_requests"`
	Wishes                 int64 `json:"wishes"`
	StudentNotes           int64 `json:"student_notes"`
	WeeklyReports          int64 `json:"weekly_reports"`
	Announcements          int64 `json:"announcements"`
}
