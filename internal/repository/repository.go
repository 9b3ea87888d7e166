package repository

import (
	"context"

	"gorm.io/gorm"
)

// Repository 所有 Repository 的聚合入口
type Repository struct {
	db *gorm.DB

	User         UserRepository
	Period       PeriodRepository
	PointsTx     PointsTransactionRepository
	ExperienceTx ExperienceTransactionRepository
	WeeklyReport WeeklyReportRepository
	Question     WeeklyReportQuestionRepository
	StoreItem    StoreItemRepository
	ItemRequest  ItemRequestRepository
	Event        EventRepository
	Wish         WishRepository
	StudentNote  StudentNoteRepository
	Announcement AnnouncementRepository
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db:           db,
		User:         NewUserRepo(db),
		Period:       NewPeriodRepo(db),
		PointsTx:     NewPointsTransactionRepo(db),
		ExperienceTx: NewExperienceTransactionRepo(db),
		WeeklyReport: NewWeeklyReportRepo(db),
		Question:     NewWeeklyReportQuestionRepo(db),
		StoreItem:    NewStoreItemRepo(db),
		ItemRequest:  NewItemRequestRepo(db),
		Event:        NewEventRepo(db),
		Wish:         NewWishRepo(db),
		StudentNote:  NewStudentNoteRepo(db),
		Announcement: NewAnnouncementRepo(db),
	}
}

// BeginTx 开启数据库事务
// db 为空时（单元测试注入 mock 的场景）返回 nil 事务，调用方需容忍
func (r *Repository) BeginTx(ctx context.Context) (*gorm.DB, error) {
	if r.db == nil {
		return nil, nil
	}
	tx := r.db.WithContext(ctx).Begin()
	return tx, tx.Error
}

// WithTx 返回绑定到指定事务连接的 Repository
// tx 为 nil 时返回自身（mock 场景下各 Repository 即为内存实现）
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return NewRepository(tx)
}
