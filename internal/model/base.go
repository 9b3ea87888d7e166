package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// ── 角色常量 ──

const (
	RoleAdmin       = "ADMIN"
	RoleTutor       = "TUTOR"
	RoleAsistan     = "ASISTAN"
	RoleStudent     = "STUDENT"
	RoleBoardMember = "BOARD_MEMBER"
)

// ── 周报评估项取值 ──

const (
	CriterionDone    = "YAPILDI"   // 已完成
	CriterionNotDone = "YAPILMADI" // 未完成
	CriterionAbsent  = "YOKTU"     // 不适用
)

// ── JSONB 评估项映射自定义类型 ──

// CriteriaMap 对应 PostgreSQL JSONB 类型的 问题键 → 取值 映射，
// 实现 GORM Scanner/Valuer 接口。历史周报中的映射是提交时的快照，
// 键为字符串而非外键，问题目录的后续变更不会影响它。
type CriteriaMap map[string]string

// Scan 将 JSONB 文本反序列化为 map
func (m *CriteriaMap) Scan(src interface{}) error {
	if src == nil {
		*m = nil
		return nil
	}
	var b []byte
	switch v := src.(type) {
	case []byte:
		b = v
	case string:
		b = []byte(v)
	default:
		return fmt.Errorf("CriteriaMap.Scan: unsupported type %T", src)
	}
	if len(b) == 0 {
		*m = CriteriaMap{}
		return nil
	}
	return json.Unmarshal(b, m)
}

// Value 将 map 序列化为 JSONB 文本
func (m CriteriaMap) Value() (driver.Value, error) {
	if m == nil {
		return "{}", nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// BaseModel 通用审计字段（所有业务模型嵌入）
type BaseModel struct {
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	CreatedBy *string   `gorm:"type:uuid"                          json:"created_by,omitempty"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
	UpdatedBy *string   `gorm:"type:uuid"                          json:"updated_by,omitempty"`
}

// SoftDeleteModel 支持软删除的审计字段
type SoftDeleteModel struct {
	BaseModel
	DeletedAt gorm.DeletedAt `gorm:"index"    json:"deleted_at,omitempty"`
	DeletedBy *string        `gorm:"type:uuid" json:"deleted_by,omitempty"`
}

// VersionedModel 支持乐观锁的模型
type VersionedModel struct {
	BaseModel
	Version int `gorm:"not null;default:1" json:"version"`
}
