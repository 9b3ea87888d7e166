package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"bilgeverse/backend/internal/dto"
	"bilgeverse/backend/internal/model"
	"bilgeverse/backend/internal/repository"
)

// ── 社区模块业务错误 ──

var (
	ErrEventNotFound    = errors.New("活动不存在")
	ErrEventTimeInvalid = errors.New("活动时间无效")
)

// CommunityService 活动/公告/心愿/学生备注业务接口
// 所有内容挂在当前激活学期下，学期删除时级联清理
type CommunityService interface {
	CreateEvent(ctx context.Context, req *dto.CreateEventRequest, callerID string) (*dto.EventResponse, error)
	UpdateEvent(ctx context.Context, id string, req *dto.UpdateEventRequest, callerID string) (*dto.EventResponse, error)
	DeleteEvent(ctx context.Context, id string) error
	ListEvents(ctx context.Context, periodID string) ([]dto.EventResponse, error)

	CreateAnnouncement(ctx context.Context, req *dto.CreateAnnouncementRequest, callerID string) (*dto.AnnouncementResponse, error)
	DeleteAnnouncement(ctx context.Context, id string) error
	ListAnnouncements(ctx context.Context, periodID string) ([]dto.AnnouncementResponse, error)

	CreateWish(ctx context.Context, req *dto.CreateWishRequest, callerID string) (*dto.WishResponse, error)
	DeleteWish(ctx context.Context, id string) error
	ListWishes(ctx context.Context, periodID string) ([]dto.WishResponse, error)

	CreateStudentNote(ctx context.Context, req *dto.CreateStudentNoteRequest, callerID string) (*dto.StudentNoteResponse, error)
	DeleteStudentNote(ctx context.Context, id string) error
	ListStudentNotes(ctx context.Context, studentID string) ([]dto.StudentNoteResponse, error)
}

type communityService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewCommunityService 创建 CommunityService 实例
func NewCommunityService(repo *repository.Repository, logger *zap.Logger) CommunityService {
	return &communityService{repo: repo, logger: logger}
}

// ────────────────────── 活动 ──────────────────────

func (s *communityService) CreateEvent(ctx context.Context, req *dto.CreateEventRequest, callerID string) (*dto.EventResponse, error) {
	period, err := s.activePeriod(ctx)
	if err != nil {
		return nil, err
	}

	startTime, err := time.Parse(time.RFC3339, req.StartTime)
	if err != nil {
		return nil, ErrEventTimeInvalid
	}

	var endTime *time.Time
	if req.EndTime != nil && *req.EndTime != "" {
		parsed, err := time.Parse(time.RFC3339, *req.EndTime)
		if err != nil {
			return nil, ErrEventTimeInvalid
		}
		if !parsed.After(startTime) {
			return nil, ErrEventTimeInvalid
		}
		endTime = &parsed
	}

	event := &model.Event{
		PeriodID:    period.PeriodID,
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
		StartTime:   startTime,
		EndTime:     endTime,
	}
	event.CreatedBy = &callerID
	event.UpdatedBy = &callerID

	if err := s.repo.Event.Create(ctx, event); err != nil {
		s.logger.Error("创建活动失败", zap.Error(err))
		return nil, err
	}

	return s.toEventResponse(event), nil
}

func (s *communityService) UpdateEvent(ctx context.Context, id string, req *dto.UpdateEventRequest, callerID string) (*dto.EventResponse, error) {
	event, err := s.repo.Event.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEventNotFound
		}
		s.logger.Error("查询活动失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	if req.Title != nil {
		event.Title = *req.Title
	}
	if req.Description != nil {
		event.Description = req.Description
	}
	if req.Location != nil {
		event.Location = req.Location
	}
	if req.StartTime != nil {
		startTime, err := time.Parse(time.RFC3339, *req.StartTime)
		if err != nil {
			return nil, ErrEventTimeInvalid
		}
		event.StartTime = startTime
	}
	if req.EndTime != nil {
		if *req.EndTime == "" {
			event.EndTime = nil
		} else {
			endTime, err := time.Parse(time.RFC3339, *req.EndTime)
			if err != nil {
				return nil, ErrEventTimeInvalid
			}
			event.EndTime = &endTime
		}
	}
	if event.EndTime != nil && !event.EndTime.After(event.StartTime) {
		return nil, ErrEventTimeInvalid
	}
	event.UpdatedBy = &callerID

	if err := s.repo.Event.Update(ctx, event); err != nil {
		s.logger.Error("更新活动失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	return s.toEventResponse(event), nil
}

func (s *communityService) DeleteEvent(ctx context.Context, id string) error {
	if _, err := s.repo.Event.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrEventNotFound
		}
		s.logger.Error("查询活动失败", zap.String("id", id), zap.Error(err))
		return err
	}

	if err := s.repo.Event.Delete(ctx, id); err != nil {
		s.logger.Error("删除活动失败", zap.String("id", id), zap.Error(err))
		return err
	}

	return nil
}

// ListEvents 查询指定学期的活动；periodID 为空时取激活学期
func (s *communityService) ListEvents(ctx context.Context, periodID string) ([]dto.EventResponse, error) {
	if periodID == "" {
		period, err := s.activePeriod(ctx)
		if err != nil {
			return nil, err
		}
		periodID = period.PeriodID
	}

	events, err := s.repo.Event.ListByPeriod(ctx, periodID)
	if err != nil {
		s.logger.Error("查询活动列表失败", zap.String("period_id", periodID), zap.Error(err))
		return nil, err
	}

	result := make([]dto.EventResponse, 0, len(events))
	for i := range events {
		result = append(result, *s.toEventResponse(&events[i]))
	}

	return result, nil
}

// ────────────────────── 公告 ──────────────────────

func (s *communityService) CreateAnnouncement(ctx context.Context, req *dto.CreateAnnouncementRequest, callerID string) (*dto.AnnouncementResponse, error) {
	period, err := s.activePeriod(ctx)
	if err != nil {
		return nil, err
	}

	announcement := &model.Announcement{
		PeriodID: period.PeriodID,
		Title:    req.Title,
		Content:  req.Content,
	}
	announcement.CreatedBy = &callerID
	announcement.UpdatedBy = &callerID

	if err := s.repo.Announcement.Create(ctx, announcement); err != nil {
		s.logger.Error("创建公告失败", zap.Error(err))
		return nil, err
	}

	return s.toAnnouncementResponse(announcement), nil
}

func (s *communityService) DeleteAnnouncement(ctx context.Context, id string) error {
	if err := s.repo.Announcement.Delete(ctx, id); err != nil {
		s.logger.Error("删除公告失败", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}

func (s *communityService) ListAnnouncements(ctx context.Context, periodID string) ([]dto.AnnouncementResponse, error) {
	if periodID == "" {
		period, err := s.activePeriod(ctx)
		if err != nil {
			return nil, err
		}
		periodID = period.PeriodID
	}

	announcements, err := s.repo.Announcement.ListByPeriod(ctx, periodID)
	if err != nil {
		s.logger.Error("查询公告列表失败", zap.String("period_id", periodID), zap.Error(err))
		return nil, err
	}

	result := make([]dto.AnnouncementResponse, 0, len(announcements))
	for i := range announcements {
		result = append(result, *s.toAnnouncementResponse(&announcements[i]))
	}

	return result, nil
}

// ────────────────────── 心愿 ──────────────────────

func (s *communityService) CreateWish(ctx context.Context, req *dto.CreateWishRequest, callerID string) (*dto.WishResponse, error) {
	period, err := s.activePeriod(ctx)
	if err != nil {
		return nil, err
	}

	wish := &model.Wish{
		UserID:   callerID,
		PeriodID: period.PeriodID,
		Content:  req.Content,
	}
	wish.CreatedBy = &callerID
	wish.UpdatedBy = &callerID

	if err := s.repo.Wish.Create(ctx, wish); err != nil {
		s.logger.Error("创建心愿失败", zap.Error(err))
		return nil, err
	}

	return s.toWishResponse(wish), nil
}

func (s *communityService) DeleteWish(ctx context.Context, id string) error {
	if err := s.repo.Wish.Delete(ctx, id); err != nil {
		s.logger.Error("删除心愿失败", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}

func (s *communityService) ListWishes(ctx context.Context, periodID string) ([]dto.WishResponse, error) {
	if periodID == "" {
		period, err := s.activePeriod(ctx)
		if err != nil {
			return nil, err
		}
		periodID = period.PeriodID
	}

	wishes, err := s.repo.Wish.ListByPeriod(ctx, periodID)
	if err != nil {
		s.logger.Error("查询心愿列表失败", zap.String("period_id", periodID), zap.Error(err))
		return nil, err
	}

	result := make([]dto.WishResponse, 0, len(wishes))
	for i := range wishes {
		result = append(result, *s.toWishResponse(&wishes[i]))
	}

	return result, nil
}

// ────────────────────── 学生备注 ──────────────────────

func (s *communityService) CreateStudentNote(ctx context.Context, req *dto.CreateStudentNoteRequest, callerID string) (*dto.StudentNoteResponse, error) {
	student, err := s.repo.User.GetByID(ctx, req.StudentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("查询学生失败", zap.String("id", req.StudentID), zap.Error(err))
		return nil, err
	}
	if student.Role != model.RoleStudent {
		return nil, ErrTargetNotStudent
	}

	period, err := s.activePeriod(ctx)
	if err != nil {
		return nil, err
	}

	note := &model.StudentNote{
		StudentID: req.StudentID,
		AuthorID:  callerID,
		PeriodID:  period.PeriodID,
		Content:   req.Content,
	}
	note.CreatedBy = &callerID
	note.UpdatedBy = &callerID

	if err := s.repo.StudentNote.Create(ctx, note); err != nil {
		s.logger.Error("创建学生备注失败", zap.Error(err))
		return nil, err
	}

	return s.toNoteResponse(note), nil
}

func (s *communityService) DeleteStudentNote(ctx context.Context, id string) error {
	if err := s.repo.StudentNote.Delete(ctx, id); err != nil {
		s.logger.Error("删除学生备注失败", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}

func (s *communityService) ListStudentNotes(ctx context.Context, studentID string) ([]dto.StudentNoteResponse, error) {
	notes, err := s.repo.StudentNote.ListByStudent(ctx, studentID)
	if err != nil {
		s.logger.Error("查询学生备注失败", zap.String("student_id", studentID), zap.Error(err))
		return nil, err
	}

	result := make([]dto.StudentNoteResponse, 0, len(notes))
	for i := range notes {
		result = append(result, *s.toNoteResponse(&notes[i]))
	}

	return result, nil
}

// ── 内部辅助方法 ──

func (s *communityService) activePeriod(ctx context.Context) (*model.Period, error) {
	period, err := s.repo.Period.GetActive(ctx)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoActivePeriod
		}
		s.logger.Error("查询激活学期失败", zap.Error(err))
		return nil, err
	}
	return period, nil
}

func (s *communityService) toEventResponse(event *model.Event) *dto.EventResponse {
	resp := &dto.EventResponse{
		ID:          event.EventID,
		PeriodID:    event.PeriodID,
		Title:       event.Title,
		Description: event.Description,
		Location:    event.Location,
		StartTime:   event.StartTime.Format(time.RFC3339),
	}
	if event.EndTime != nil {
		t := event.EndTime.Format(time.RFC3339)
		resp.EndTime = &t
	}
	return resp
}

func (s *communityService) toAnnouncementResponse(a *model.Announcement) *dto.AnnouncementResponse {
	return &dto.AnnouncementResponse{
		ID:        a.AnnouncementID,
		PeriodID:  a.PeriodID,
		Title:     a.Title,
		Content:   a.Content,
		CreatedAt: a.CreatedAt.Format(time.RFC3339),
	}
}

func (s *communityService) toWishResponse(wish *model.Wish) *dto.WishResponse {
	resp := &dto.WishResponse{
		ID:        wish.WishID,
		UserID:    wish.UserID,
		PeriodID:  wish.PeriodID,
		Content:   wish.Content,
		CreatedAt: wish.CreatedAt.Format(time.RFC3339),
	}
	if wish.User != nil {
		resp.UserName = wish.User.FullName()
	}
	return resp
}

func (s *communityService) toNoteResponse(note *model.StudentNote) *dto.StudentNoteResponse {
	resp := &dto.StudentNoteResponse{
		ID:        note.NoteID,
		StudentID: note.StudentID,
		AuthorID:  note.AuthorID,
		PeriodID:  note.PeriodID,
		Content:   note.Content,
		CreatedAt: note.CreatedAt.Format(time.RFC3339),
	}
	if note.Author != nil {
		resp.AuthorName = note.Author.FullName()
	}
	return resp
}
