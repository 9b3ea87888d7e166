package model

import "gorm.io/gorm"

// User 用户表 — 对应 users
// Points / Experience 是流水的冗余合计，由账本服务在同一事务内维护
type User struct {
	UserID       string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"user_id"`
	Username     string  `gorm:"type:varchar(50);not null"                      json:"username"`
	PasswordHash string  `gorm:"type:varchar(255);not null"                     json:"-"`
	Role         string  `gorm:"type:varchar(20);not null;default:'STUDENT'"    json:"role"`
	FirstName    *string `gorm:"type:varchar(100)"                              json:"first_name,omitempty"`
	LastName     *string `gorm:"type:varchar(100)"                              json:"last_name,omitempty"`
	Points       int     `gorm:"not null;default:0"                             json:"points"`
	Experience   int     `gorm:"not null;default:0"                             json:"experience"`
	TutorID      *string `gorm:"type:uuid"                                      json:"tutor_id,omitempty"`
	BaseModel
	DeletedAt gorm.DeletedAt `gorm:"index"     json:"deleted_at,omitempty"`
	DeletedBy *string        `gorm:"type:uuid" json:"deleted_by,omitempty"`
	Version   int            `gorm:"not null;default:1" json:"version"`

	// 关联
	Tutor *User `gorm:"foreignKey:TutorID;references:UserID" json:"tutor,omitempty"`
}

// TableName 指定表名
func (User) TableName() string { return "users" }

// FullName 拼接显示名，姓名缺失时回退到用户名
func (u *User) FullName() string {
	if u.FirstName == nil && u.LastName == nil {
		return u.Username
	}
	name := ""
	if u.FirstName != nil {
		name = *u.FirstName
	}
	if u.LastName != nil {
		if name != "" {
			name += " "
		}
		name += *u.LastName
	}
	return name
}
