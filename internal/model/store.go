package model

import "time"

// ── 兑换申请状态 ──

const (
	RequestStatusPending  = "PENDING"
	RequestStatusApproved = "APPROVED"
	RequestStatusRejected = "REJECTED"
)

// StoreItem 奖励商店商品表 — 对应 store_items
type StoreItem struct {
	ItemID      string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"item_id"`
	Name        string  `gorm:"type:varchar(200);not null"                     json:"name"`
	Description *string `gorm:"type:text"                                      json:"description,omitempty"`
	PointsCost  int     `gorm:"not null"                                       json:"points_cost"`
	Stock       int     `gorm:"not null;default:0"                             json:"stock"`
	IsActive    bool    `gorm:"not null;default:true"                          json:"is_active"`
	BaseModel
}

// TableName 指定表名
func (StoreItem) TableName() string { return "store_items" }

// ItemRequest 商品兑换申请表 — 对应 item_requests
// 审核通过时在同一事务内写入负数积分流水
type ItemRequest struct {
	RequestID    string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"request_id"`
	UserID       string     `gorm:"type:uuid;not null"                             json:"user_id"`
	ItemID       string     `gorm:"type:uuid;not null"                             json:"item_id"`
	PeriodID     string     `gorm:"type:uuid;not null"                             json:"period_id"`
	Status       string     `gorm:"type:varchar(20);not null;default:'PENDING'"    json:"status"` // PENDING | APPROVED | REJECTED
	Note         *string    `gorm:"type:text"                                      json:"note,omitempty"`
	ReviewedByID *string    `gorm:"type:uuid"                                      json:"reviewed_by_id,omitempty"`
	ReviewedAt   *time.Time `json:"reviewed_at,omitempty"`
	BaseModel

	// 关联
	User *User      `gorm:"foreignKey:UserID;references:UserID" json:"user,omitempty"`
	Item *StoreItem `gorm:"foreignKey:ItemID;references:ItemID" json:"item,omitempty"`
}

// TableName 指定表名
func (ItemRequest) TableName() string { return "item_requests" }
