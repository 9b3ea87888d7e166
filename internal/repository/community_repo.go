package repository

import (
	"context"

	"gorm.io/gorm"

	"bilgeverse/backend/internal/model"
)

// EventRepository 活动数据访问接口
type EventRepository interface {
	Create(ctx context.Context, event *model.Event) error
	GetByID(ctx context.Context, id string) (*model.Event, error)
	ListByPeriod(ctx context.Context, periodID string) ([]model.Event, error)
	Update(ctx context.Context, event *model.Event) error
	Delete(ctx context.Context, id string) error
}

type eventRepo struct {
	db *gorm.DB
}

// NewEventRepo 创建 EventRepository 实例
func NewEventRepo(db *gorm.DB) EventRepository {
	return &eventRepo{db: db}
}

func (r *eventRepo) Create(ctx context.Context, event *model.Event) error {
	return r.db.WithContext(ctx).Create(event).Error
}

func (r *eventRepo) GetByID(ctx context.Context, id string) (*model.Event, error) {
	var event model.Event
	err := r.db.WithContext(ctx).
		Where("event_id = ?", id).
		First(&event).Error
	if err != nil {
		return nil, err
	}
	return &event, nil
}

func (r *eventRepo) ListByPeriod(ctx context.Context, periodID string) ([]model.Event, error) {
	var events []model.Event
	err := r.db.WithContext(ctx).
		Where("period_id = ?", periodID).
		Order("start_time").
		Find(&events).Error
	return events, err
}

func (r *eventRepo) Update(ctx context.Context, event *model.Event) error {
	return r.db.WithContext(ctx).Save(event).Error
}

func (r *eventRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Where("event_id = ?", id).
		Delete(&model.Event{}).Error
}

// WishRepository 心愿数据访问接口
type WishRepository interface {
	Create(ctx context.Context, wish *model.Wish) error
	ListByPeriod(ctx context.Context, periodID string) ([]model.Wish, error)
	Delete(ctx context.Context, id string) error
}

type wishRepo struct {
	db *gorm.DB
}

// NewWishRepo 创建 WishRepository 实例
func NewWishRepo(db *gorm.DB) WishRepository {
	return &wishRepo{db: db}
}

func (r *wishRepo) Create(ctx context.Context, wish *model.Wish) error {
	return r.db.WithContext(ctx).Create(wish).Error
}

func (r *wishRepo) ListByPeriod(ctx context.Context, periodID string) ([]model.Wish, error) {
	var wishes []model.Wish
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("period_id = ?", periodID).
		Order("created_at DESC").
		Find(&wishes).Error
	return wishes, err
}

func (r *wishRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Where("wish_id = ?", id).
		Delete(&model.Wish{}).Error
}

// StudentNoteRepository 学生备注数据访问接口
type StudentNoteRepository interface {
	Create(ctx context.Context, note *model.StudentNote) error
	ListByStudent(ctx context.Context, studentID string) ([]model.StudentNote, error)
	Delete(ctx context.Context, id string) error
}

type studentNoteRepo struct {
	db *gorm.DB
}

// NewStudentNoteRepo 创建 StudentNoteRepository 实例
func NewStudentNoteRepo(db *gorm.DB) StudentNoteRepository {
	return &studentNoteRepo{db: db}
}

func (r *studentNoteRepo) Create(ctx context.Context, note *model.StudentNote) error {
	return r.db.WithContext(ctx).Create(note).Error
}

func (r *studentNoteRepo) ListByStudent(ctx context.Context, studentID string) ([]model.StudentNote, error) {
	var notes []model.StudentNote
	err := r.db.WithContext(ctx).
		Preload("Author").
		Where("student_id = ?", studentID).
		Order("created_at DESC").
		Find(&notes).Error
	return notes, err
}

func (r *studentNoteRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Where("note_id = ?", id).
		Delete(&model.StudentNote{}).Error
}

// AnnouncementRepository 公告数据访问接口
type AnnouncementRepository interface {
	Create(ctx context.Context, announcement *model.Announcement) error
	ListByPeriod(ctx context.Context, periodID string) ([]model.Announcement, error)
	Delete(ctx context.Context, id string) error
}

type announcementRepo struct {
	db *gorm.DB
}

// NewAnnouncementRepo 创建 AnnouncementRepository 实例
func NewAnnouncementRepo(db *gorm.DB) AnnouncementRepository {
	return &announcementRepo{db: db}
}

func (r *announcementRepo) Create(ctx context.Context, announcement *model.Announcement) error {
	return r.db.WithContext(ctx).Create(announcement).Error
}

func (r *announcementRepo) ListByPeriod(ctx context.Context, periodID string) ([]model.Announcement, error) {
	var announcements []model.Announcement
	err := r.db.WithContext(ctx).
		Where("period_id = ?", periodID).
		Order("created_at DESC").
		Find(&announcements).Error
	return announcements, err
}

func (r *announcementRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Where("announcement_id = ?", id).
		Delete(&model.Announcement{}).Error
}
