package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"bilgeverse/backend/internal/dto"
	"bilgeverse/backend/internal/model"
	"bilgeverse/backend/internal/repository"
)

// ── 测试辅助 ──

func setupTestCommunityService() (CommunityService, *repository.Repository) {
	repo := newTestRepository()
	svc := NewCommunityService(repo, zap.NewNop())
	return svc, repo
}

func seedCommunityFixtures(repo *repository.Repository) {
	seedPeriod(repo, "p-1", "当前学期", model.PeriodStatusActive)
	_ = repo.User.Create(context.Background(), &model.User{UserID: "tutor-1", Username: "hoca", Role: model.RoleTutor})
	_ = repo.User.Create(context.Background(), &model.User{UserID: "stu-1", Username: "ali", Role: model.RoleStudent})
}

func strPtr(s string) *string { return &s }

// ── 活动测试 ──

func TestCommunityService_CreateEvent_Success(t *testing.T) {
	svc, repo := setupTestCommunityService()
	seedCommunityFixtures(repo)

	resp, err := svc.CreateEvent(context.Background(), &dto.CreateEventRequest{
		Title:     "Kitap Okuma Etkinliği",
		StartTime: "2026-03-10T14:00:00Z",
		EndTime:   strPtr("2026-03-10T16:00:00Z"),
	}, "tutor-1")
	if err != nil {
		t.Fatalf("CreateEvent 应成功: %v", err)
	}
	if resp.PeriodID != "p-1" {
		t.Errorf("活动应挂在激活学期下，实际=%s", resp.PeriodID)
	}
}

func TestCommunityService_CreateEvent_EndBeforeStart(t *testing.T) {
	svc, repo := setupTestCommunityService()
	seedCommunityFixtures(repo)

	_, err := svc.CreateEvent(context.Background(), &dto.CreateEventRequest{
		Title:     "Ters Zamanlı Etkinlik",
		StartTime: "2026-03-10T16:00:00Z",
		EndTime:   strPtr("2026-03-10T14:00:00Z"),
	}, "tutor-1")
	if !errors.Is(err, ErrEventTimeInvalid) {
		t.Errorf("期望 ErrEventTimeInvalid，实际: %v", err)
	}
}

func TestCommunityService_CreateEvent_BadTimeFormat(t *testing.T) {
	svc, repo := setupTestCommunityService()
	seedCommunityFixtures(repo)

	_, err := svc.CreateEvent(context.Background(), &dto.CreateEventRequest{
		Title:     "Etkinlik",
		StartTime: "10.03.2026 14:00",
	}, "tutor-1")
	if !errors.Is(err, ErrEventTimeInvalid) {
		t.Errorf("期望 ErrEventTimeInvalid，实际: %v", err)
	}
}

func TestCommunityService_CreateEvent_NoActivePeriod(t *testing.T) {
	svc, _ := setupTestCommunityService()

	_, err := svc.CreateEvent(context.Background(), &dto.CreateEventRequest{
		Title:     "Etkinlik",
		StartTime: "2026-03-10T14:00:00Z",
	}, "tutor-1")
	if !errors.Is(err, ErrNoActivePeriod) {
		t.Errorf("期望 ErrNoActivePeriod，实际: %v", err)
	}
}

func TestCommunityService_UpdateEvent_NotFound(t *testing.T) {
	svc, repo := setupTestCommunityService()
	seedCommunityFixtures(repo)

	_, err := svc.UpdateEvent(context.Background(), "missing", &dto.UpdateEventRequest{
		Title: strPtr("Yeni Başlık"),
	}, "tutor-1")
	if !errors.Is(err, ErrEventNotFound) {
		t.Errorf("期望 ErrEventNotFound，实际: %v", err)
	}
}

func TestCommunityService_UpdateEvent_ClearEndTime(t *testing.T) {
	svc, repo := setupTestCommunityService()
	seedCommunityFixtures(repo)

	created, err := svc.CreateEvent(context.Background(), &dto.CreateEventRequest{
		Title:     "Etkinlik",
		StartTime: "2026-03-10T14:00:00Z",
		EndTime:   strPtr("2026-03-10T16:00:00Z"),
	}, "tutor-1")
	if err != nil {
		t.Fatalf("CreateEvent 应成功: %v", err)
	}

	// 空字符串清除结束时间
	updated, err := svc.UpdateEvent(context.Background(), created.ID, &dto.UpdateEventRequest{
		EndTime: strPtr(""),
	}, "tutor-1")
	if err != nil {
		t.Fatalf("UpdateEvent 应成功: %v", err)
	}
	if updated.EndTime != nil {
		t.Errorf("结束时间应已清除，实际=%v", *updated.EndTime)
	}
}

func TestCommunityService_ListEvents_DefaultsToActivePeriod(t *testing.T) {
	svc, repo := setupTestCommunityService()
	seedCommunityFixtures(repo)
	seedPeriod(repo, "p-old", "旧学期", model.PeriodStatusArchived)

	if _, err := svc.CreateEvent(context.Background(), &dto.CreateEventRequest{
		Title:     "Etkinlik",
		StartTime: "2026-03-10T14:00:00Z",
	}, "tutor-1"); err != nil {
		t.Fatalf("CreateEvent 应成功: %v", err)
	}

	events, err := svc.ListEvents(context.Background(), "")
	if err != nil {
		t.Fatalf("ListEvents 应成功: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("期望 1 条活动，实际=%d", len(events))
	}

	// 指定旧学期时不返回激活学期的活动
	events, err = svc.ListEvents(context.Background(), "p-old")
	if err != nil {
		t.Fatalf("ListEvents 应成功: %v", err)
	}
	if len(events) != 0 {
		t.Errorf("旧学期期望 0 条活动，实际=%d", len(events))
	}
}

// ── 公告与心愿测试 ──

func TestCommunityService_CreateAnnouncement_Success(t *testing.T) {
	svc, repo := setupTestCommunityService()
	seedCommunityFixtures(repo)

	resp, err := svc.CreateAnnouncement(context.Background(), &dto.CreateAnnouncementRequest{
		Title:   "Dönem Duyurusu",
		Content: "Haftalık raporlar cuma gününe kadar teslim edilmeli.",
	}, "tutor-1")
	if err != nil {
		t.Fatalf("CreateAnnouncement 应成功: %v", err)
	}
	if resp.PeriodID != "p-1" {
		t.Errorf("公告应挂在激活学期下，实际=%s", resp.PeriodID)
	}
}

func TestCommunityService_CreateWish_NoActivePeriod(t *testing.T) {
	svc, _ := setupTestCommunityService()

	_, err := svc.CreateWish(context.Background(), &dto.CreateWishRequest{Content: "Satranç seti"}, "stu-1")
	if !errors.Is(err, ErrNoActivePeriod) {
		t.Errorf("期望 ErrNoActivePeriod，实际: %v", err)
	}
}

func TestCommunityService_Wishes_CreateAndList(t *testing.T) {
	svc, repo := setupTestCommunityService()
	seedCommunityFixtures(repo)

	if _, err := svc.CreateWish(context.Background(), &dto.CreateWishRequest{Content: "Satranç seti"}, "stu-1"); err != nil {
		t.Fatalf("CreateWish 应成功: %v", err)
	}

	wishes, err := svc.ListWishes(context.Background(), "")
	if err != nil {
		t.Fatalf("ListWishes 应成功: %v", err)
	}
	if len(wishes) != 1 {
		t.Fatalf("期望 1 条心愿，实际=%d", len(wishes))
	}
	if wishes[0].UserID != "stu-1" {
		t.Errorf("心愿归属学生不匹配，实际=%s", wishes[0].UserID)
	}
}

// ── 学生备注测试 ──

func TestCommunityService_CreateStudentNote_Success(t *testing.T) {
	svc, repo := setupTestCommunityService()
	seedCommunityFixtures(repo)

	resp, err := svc.CreateStudentNote(context.Background(), &dto.CreateStudentNoteRequest{
		StudentID: "stu-1",
		Content:   "Derse katılımı arttı.",
	}, "tutor-1")
	if err != nil {
		t.Fatalf("CreateStudentNote 应成功: %v", err)
	}
	if resp.AuthorID != "tutor-1" {
		t.Errorf("备注作者应为调用者，实际=%s", resp.AuthorID)
	}

	notes, err := svc.ListStudentNotes(context.Background(), "stu-1")
	if err != nil {
		t.Fatalf("ListStudentNotes 应成功: %v", err)
	}
	if len(notes) != 1 {
		t.Errorf("期望 1 条备注，实际=%d", len(notes))
	}
}

func TestCommunityService_CreateStudentNote_TargetNotStudent(t *testing.T) {
	svc, repo := setupTestCommunityService()
	seedCommunityFixtures(repo)

	_, err := svc.CreateStudentNote(context.Background(), &dto.CreateStudentNoteRequest{
		StudentID: "tutor-1",
		Content:   "备注",
	}, "tutor-1")
	if !errors.Is(err, ErrTargetNotStudent) {
		t.Errorf("期望 ErrTargetNotStudent，实际: %v", err)
	}
}

func TestCommunityService_CreateStudentNote_UserNotFound(t *testing.T) {
	svc, repo := setupTestCommunityService()
	seedCommunityFixtures(repo)

	_, err := svc.CreateStudentNote(context.Background(), &dto.CreateStudentNoteRequest{
		StudentID: "missing",
		Content:   "备注",
	}, "tutor-1")
	if !errors.Is(err, ErrUserNotFound) {
		t.Errorf("期望 ErrUserNotFound，实际: %v", err)
	}
}
