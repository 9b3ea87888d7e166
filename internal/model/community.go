package model

import "time"

// Event 活动表 — 对应 events
// 按学期归属，用于日历导出与删除影响统计
type Event struct {
	EventID     string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"event_id"`
	PeriodID    string     `gorm:"type:uuid;not null"                             json:"period_id"`
	Title       string     `gorm:"type:varchar(200);not null"                     json:"title"`
	Description *string    `gorm:"type:text"                                      json:"description,omitempty"`
	Location    *string    `gorm:"type:varchar(200)"                              json:"location,omitempty"`
	StartTime   time.Time  `gorm:"not null"                                       json:"start_time"`
	EndTime     *time.Time `json:"end_time,omitempty"`
	BaseModel
}

// TableName 指定表名
func (Event) TableName() string { return "events" }

// Wish 心愿表 — 对应 wishes
type Wish struct {
	WishID   string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"wish_id"`
	UserID   string `gorm:"type:uuid;not null"                             json:"user_id"`
	PeriodID string `gorm:"type:uuid;not null"                             json:"period_id"`
	Content  string `gorm:"type:text;not null"                             json:"content"`
	BaseModel

	User *User `gorm:"foreignKey:UserID;references:UserID" json:"user,omitempty"`
}

// TableName 指定表名
func (Wish) TableName() string { return "wishes" }

// StudentNote 学生备注表 — 对应 student_notes
// 导师/管理员对学生的观察记录
type StudentNote struct {
	NoteID    string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"note_id"`
	StudentID string `gorm:"type:uuid;not null"                             json:"student_id"`
	AuthorID  string `gorm:"type:uuid;not null"                             json:"author_id"`
	PeriodID  string `gorm:"type:uuid;not null"                             json:"period_id"`
	Content   string `gorm:"type:text;not null"                             json:"content"`
	BaseModel

	Student *User `gorm:"foreignKey:StudentID;references:UserID" json:"student,omitempty"`
	Author  *User `gorm:"foreignKey:AuthorID;references:UserID"  json:"author,omitempty"`
}

// TableName 指定表名
func (StudentNote) TableName() string { return "student_notes" }

// Announcement 公告表 — 对应 announcements
type Announcement struct {
	AnnouncementID string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"announcement_id"`
	PeriodID       string `gorm:"type:uuid;not null"                             json:"period_id"`
	Title          string `gorm:"type:varchar(200);not null"                     json:"title"`
	Content        string `gorm:"type:text;not null"                             json:"content"`
	BaseModel
}

// TableName 指定表名
func (Announcement) TableName() string { return "announcements" }
