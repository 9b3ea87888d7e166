package model

// PointsTransaction 积分流水表 — 对应 points_transactions
// 只追加，余额 = 各行 amount 之和
type PointsTransaction struct {
	TransactionID string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"transaction_id"`
	UserID        string  `gorm:"type:uuid;not null"                             json:"user_id"`
	PeriodID      string  `gorm:"type:uuid;not null"                             json:"period_id"`
	Amount        int     `gorm:"not null"                                       json:"amount"` // 有符号，负数表示扣减
	Reason        string  `gorm:"type:text;not null"                             json:"reason"`
	PointReasonID *string `gorm:"type:uuid"                                      json:"point_reason_id,omitempty"`
	BaseModel

	// 关联
	User   *User   `gorm:"foreignKey:UserID;references:UserID"     json:"user,omitempty"`
	Period *Period `gorm:"foreignKey:PeriodID;references:PeriodID" json:"period,omitempty"`
}

// TableName 指定表名
func (PointsTransaction) TableName() string { return "points_transactions" }

// ExperienceTransaction 经验流水表 — 对应 experience_transactions
type ExperienceTransaction struct {
	TransactionID string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"transaction_id"`
	UserID        string `gorm:"type:uuid;not null"                             json:"user_id"`
	PeriodID      string `gorm:"type:uuid;not null"                             json:"period_id"`
	Amount        int    `gorm:"not null"                                       json:"amount"`
	Reason        string `gorm:"type:text;not null"                             json:"reason"`
	BaseModel

	// 关联
	User   *User   `gorm:"foreignKey:UserID;references:UserID"     json:"user,omitempty"`
	Period *Period `gorm:"foreignKey:PeriodID;references:PeriodID" json:"period,omitempty"`
}

// TableName 指定表名
func (ExperienceTransaction) TableName() string { return "experience_transactions" }
