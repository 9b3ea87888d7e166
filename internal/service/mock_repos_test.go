package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"gorm.io/gorm"

	"bilgeverse/backend/internal/model"
	"bilgeverse/backend/internal/repository"
	pkgerrors "bilgeverse/backend/pkg/errors"
)

// newTestRepository 组装全 mock 的 Repository
// db 字段为零值，BeginTx 返回 nil 事务，服务层按约定容忍
func newTestRepository() *repository.Repository {
	return &repository.Repository{
		User:         newMockUserRepo(),
		Period:       newMockPeriodRepo(),
		PointsTx:     newMockPointsTxRepo(),
		ExperienceTx: newMockExperienceTxRepo(),
		WeeklyReport: newMockWeeklyReportRepo(),
		Question:     newMockQuestionRepo(),
		StoreItem:    newMockStoreItemRepo(),
		ItemRequest:  newMockItemRequestRepo(),
		Event:        newMockEventRepo(),
		Wish:         newMockWishRepo(),
		StudentNote:  newMockStudentNoteRepo(),
		Announcement: newMockAnnouncementRepo(),
	}
}

// ── Mock UserRepository ──

type mockUserRepo struct {
	users map[string]*model.User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	if user.UserID == "" {
		user.UserID = "user-" + user.Username
	}
	user.CreatedAt = time.Now()
	m.users[user.UserID] = user
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByUsername(_ context.Context, username string) (*model.User, error) {
	for _, u := range m.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) Update(_ context.Context, user *model.User) error {
	m.users[user.UserID] = user
	return nil
}

func (m *mockUserRepo) Delete(_ context.Context, id string, _ string) error {
	delete(m.users, id)
	return nil
}

func (m *mockUserRepo) List(_ context.Context, filters *repository.UserListFilters, offset, limit int) ([]model.User, int64, error) {
	var filtered []model.User
	for _, u := range m.users {
		if filters != nil {
			if filters.Role != "" && u.Role != filters.Role {
				continue
			}
			if filters.TutorID != "" && (u.TutorID == nil || *u.TutorID != filters.TutorID) {
				continue
			}
		}
		filtered = append(filtered, *u)
	}
	total := int64(len(filtered))
	if offset >= len(filtered) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(filtered) {
		end = len(filtered)
	}
	return filtered[offset:end], total, nil
}

func (m *mockUserRepo) ListByRole(_ context.Context, role string) ([]model.User, error) {
	var result []model.User
	for _, u := range m.users {
		if u.Role == role {
			result = append(result, *u)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Points > result[j].Points })
	return result, nil
}

func (m *mockUserRepo) ListByTutor(_ context.Context, tutorID string) ([]model.User, error) {
	var result []model.User
	for _, u := range m.users {
		if u.TutorID != nil && *u.TutorID == tutorID {
			result = append(result, *u)
		}
	}
	return result, nil
}

func (m *mockUserRepo) AddPoints(_ context.Context, userID string, delta int) error {
	u, ok := m.users[userID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.Points += delta
	return nil
}

func (m *mockUserRepo) AddExperience(_ context.Context, userID string, delta int) error {
	u, ok := m.users[userID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.Experience += delta
	return nil
}

func (m *mockUserRepo) SetBalances(_ context.Context, userID string, points, experience int) error {
	u, ok := m.users[userID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.Points = points
	u.Experience = experience
	return nil
}

func (m *mockUserRepo) ZeroAllBalances(_ context.Context) error {
	for _, u := range m.users {
		u.Points = 0
		u.Experience = 0
	}
	return nil
}

// ── Mock PeriodRepository ──

type mockPeriodRepo struct {
	periods map[string]*model.Period
}

func newMockPeriodRepo() *mockPeriodRepo {
	return &mockPeriodRepo{periods: make(map[string]*model.Period)}
}

func (m *mockPeriodRepo) Create(_ context.Context, period *model.Period) error {
	if period.PeriodID == "" {
		period.PeriodID = "period-" + period.Name
	}
	if period.Version == 0 {
		period.Version = 1
	}
	m.periods[period.PeriodID] = period
	return nil
}

func (m *mockPeriodRepo) GetByID(_ context.Context, id string) (*model.Period, error) {
	if p, ok := m.periods[id]; ok {
		return p, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockPeriodRepo) GetActive(_ context.Context) (*model.Period, error) {
	for _, p := range m.periods {
		if p.Status == model.PeriodStatusActive {
			return p, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockPeriodRepo) List(_ context.Context) ([]model.Period, error) {
	var result []model.Period
	for _, p := range m.periods {
		result = append(result, *p)
	}
	return result, nil
}

func (m *mockPeriodRepo) UpdateWithVersion(_ context.Context, period *model.Period) error {
	existing, ok := m.periods[period.PeriodID]
	if !ok || existing.Version != period.Version {
		return pkgerrors.ErrOptimisticLock
	}
	period.Version++
	m.periods[period.PeriodID] = period
	return nil
}

func (m *mockPeriodRepo) ClearActive(_ context.Context, updatedBy string) error {
	for _, p := range m.periods {
		if p.Status == model.PeriodStatusActive {
			p.Status = model.PeriodStatusInactive
			p.UpdatedBy = &updatedBy
			p.Version++
		}
	}
	return nil
}

func (m *mockPeriodRepo) Delete(_ context.Context, id string) error {
	delete(m.periods, id)
	return nil
}

func (m *mockPeriodRepo) CountDependents(_ context.Context, _ string) (*model.PeriodDependentCounts, error) {
	return &model.PeriodDependentCounts{}, nil
}

// ── Mock PointsTransactionRepository ──

type mockPointsTxRepo struct {
	txs []model.PointsTransaction
}

func newMockPointsTxRepo() *mockPointsTxRepo {
	return &mockPointsTxRepo{}
}

func (m *mockPointsTxRepo) Create(_ context.Context, tx *model.PointsTransaction) error {
	if tx.TransactionID == "" {
		tx.TransactionID = fmt.Sprintf("ptx-%d", len(m.txs)+1)
	}
	tx.CreatedAt = time.Now()
	m.txs = append(m.txs, *tx)
	return nil
}

func (m *mockPointsTxRepo) List(_ context.Context, filters *repository.TransactionListFilters, offset, limit int) ([]model.PointsTransaction, int64, error) {
	var filtered []model.PointsTransaction
	for _, tx := range m.txs {
		if filters != nil {
			if filters.UserID != "" && tx.UserID != filters.UserID {
				continue
			}
			if filters.PeriodID != "" && tx.PeriodID != filters.PeriodID {
				continue
			}
		}
		filtered = append(filtered, tx)
	}
	total := int64(len(filtered))
	if offset >= len(filtered) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(filtered) {
		end = len(filtered)
	}
	return filtered[offset:end], total, nil
}

func (m *mockPointsTxRepo) SumByUser(_ context.Context, userID string) (int, error) {
	sum := 0
	for _, tx := range m.txs {
		if tx.UserID == userID {
			sum += tx.Amount
		}
	}
	return sum, nil
}

func (m *mockPointsTxRepo) SumByUserPeriod(_ context.Context, userID, periodID string) (int, error) {
	sum := 0
	for _, tx := range m.txs {
		if tx.UserID == userID && tx.PeriodID == periodID {
			sum += tx.Amount
		}
	}
	return sum, nil
}

// ── Mock ExperienceTransactionRepository ──

type mockExperienceTxRepo struct {
	txs []model.ExperienceTransaction
}

func newMockExperienceTxRepo() *mockExperienceTxRepo {
	return &mockExperienceTxRepo{}
}

func (m *mockExperienceTxRepo) Create(_ context.Context, tx *model.ExperienceTransaction) error {
	if tx.TransactionID == "" {
		tx.TransactionID = fmt.Sprintf("etx-%d", len(m.txs)+1)
	}
	tx.CreatedAt = time.Now()
	m.txs = append(m.txs, *tx)
	return nil
}

func (m *mockExperienceTxRepo) List(_ context.Context, filters *repository.TransactionListFilters, offset, limit int) ([]model.ExperienceTransaction, int64, error) {
	var filtered []model.ExperienceTransaction
	for _, tx := range m.txs {
		if filters != nil {
			if filters.UserID != "" && tx.UserID != filters.UserID {
				continue
			}
			if filters.PeriodID != "" && tx.PeriodID != filters.PeriodID {
				continue
			}
		}
		filtered = append(filtered, tx)
	}
	total := int64(len(filtered))
	if offset >= len(filtered) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(filtered) {
		end = len(filtered)
	}
	return filtered[offset:end], total, nil
}

func (m *mockExperienceTxRepo) SumByUser(_ context.Context, userID string) (int, error) {
	sum := 0
	for _, tx := range m.txs {
		if tx.UserID == userID {
			sum += tx.Amount
		}
	}
	return sum, nil
}

func (m *mockExperienceTxRepo) SumByUserPeriod(_ context.Context, userID, periodID string) (int, error) {
	sum := 0
	for _, tx := range m.txs {
		if tx.UserID == userID && tx.PeriodID == periodID {
			sum += tx.Amount
		}
	}
	return sum, nil
}

// ── Mock WeeklyReportRepository ──

type mockWeeklyReportRepo struct {
	reports   map[string]*model.WeeklyReport
	createErr error // 可注入的 Create 失败（如唯一约束冲突）
}

func newMockWeeklyReportRepo() *mockWeeklyReportRepo {
	return &mockWeeklyReportRepo{reports: make(map[string]*model.WeeklyReport)}
}

func (m *mockWeeklyReportRepo) Create(_ context.Context, report *model.WeeklyReport) error {
	if m.createErr != nil {
		return m.createErr
	}
	if report.ReportID == "" {
		report.ReportID = fmt.Sprintf("report-%d", len(m.reports)+1)
	}
	if report.Version == 0 {
		report.Version = 1
	}
	report.CreatedAt = time.Now()
	m.reports[report.ReportID] = report
	return nil
}

func (m *mockWeeklyReportRepo) GetByID(_ context.Context, id string) (*model.WeeklyReport, error) {
	if r, ok := m.reports[id]; ok {
		cp := *r
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockWeeklyReportRepo) GetByUserPeriodWeek(_ context.Context, userID, periodID string, weekNumber int) (*model.WeeklyReport, error) {
	for _, r := range m.reports {
		if r.UserID == userID && r.PeriodID == periodID && r.WeekNumber == weekNumber {
			cp := *r
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockWeeklyReportRepo) List(_ context.Context, filters *repository.ReportListFilters, offset, limit int) ([]model.WeeklyReport, int64, error) {
	var filtered []model.WeeklyReport
	for _, r := range m.reports {
		if filters != nil {
			if filters.PeriodID != "" && r.PeriodID != filters.PeriodID {
				continue
			}
			if filters.UserID != "" && r.UserID != filters.UserID {
				continue
			}
			if filters.Status != "" && r.Status != filters.Status {
				continue
			}
			if filters.WeekNumber > 0 && r.WeekNumber != filters.WeekNumber {
				continue
			}
		}
		filtered = append(filtered, *r)
	}
	total := int64(len(filtered))
	if offset >= len(filtered) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(filtered) {
		end = len(filtered)
	}
	return filtered[offset:end], total, nil
}

func (m *mockWeeklyReportRepo) ListByIDs(_ context.Context, ids []string) ([]model.WeeklyReport, error) {
	var result []model.WeeklyReport
	for _, id := range ids {
		if r, ok := m.reports[id]; ok {
			result = append(result, *r)
		}
	}
	return result, nil
}

func (m *mockWeeklyReportRepo) UpdateWithVersion(_ context.Context, report *model.WeeklyReport) error {
	existing, ok := m.reports[report.ReportID]
	if !ok || existing.Version != report.Version {
		return pkgerrors.ErrOptimisticLock
	}
	report.Version++
	cp := *report
	m.reports[report.ReportID] = &cp
	return nil
}

// ── Mock WeeklyReportQuestionRepository ──

type mockQuestionRepo struct {
	questions map[string]*model.WeeklyReportQuestion
}

func newMockQuestionRepo() *mockQuestionRepo {
	return &mockQuestionRepo{questions: make(map[string]*model.WeeklyReportQuestion)}
}

func (m *mockQuestionRepo) Create(_ context.Context, question *model.WeeklyReportQuestion) error {
	if question.QuestionID == "" {
		question.QuestionID = fmt.Sprintf("q-%d", len(m.questions)+1)
	}
	m.questions[question.QuestionID] = question
	return nil
}

func (m *mockQuestionRepo) GetByID(_ context.Context, id string) (*model.WeeklyReportQuestion, error) {
	if q, ok := m.questions[id]; ok {
		return q, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockQuestionRepo) List(_ context.Context, targetRole string, activeOnly bool) ([]model.WeeklyReportQuestion, error) {
	var result []model.WeeklyReportQuestion
	for _, q := range m.questions {
		if targetRole != "" && q.TargetRole != targetRole {
			continue
		}
		if activeOnly && !q.IsActive {
			continue
		}
		result = append(result, *q)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].OrderIndex < result[j].OrderIndex })
	return result, nil
}

func (m *mockQuestionRepo) Update(_ context.Context, question *model.WeeklyReportQuestion) error {
	m.questions[question.QuestionID] = question
	return nil
}

func (m *mockQuestionRepo) Delete(_ context.Context, id string) error {
	delete(m.questions, id)
	return nil
}

// ── Mock StoreItemRepository ──

type mockStoreItemRepo struct {
	items map[string]*model.StoreItem
}

func newMockStoreItemRepo() *mockStoreItemRepo {
	return &mockStoreItemRepo{items: make(map[string]*model.StoreItem)}
}

func (m *mockStoreItemRepo) Create(_ context.Context, item *model.StoreItem) error {
	if item.ItemID == "" {
		item.ItemID = "item-" + item.Name
	}
	m.items[item.ItemID] = item
	return nil
}

func (m *mockStoreItemRepo) GetByID(_ context.Context, id string) (*model.StoreItem, error) {
	if i, ok := m.items[id]; ok {
		return i, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockStoreItemRepo) List(_ context.Context, activeOnly bool) ([]model.StoreItem, error) {
	var result []model.StoreItem
	for _, i := range m.items {
		if activeOnly && !i.IsActive {
			continue
		}
		result = append(result, *i)
	}
	return result, nil
}

func (m *mockStoreItemRepo) Update(_ context.Context, item *model.StoreItem) error {
	m.items[item.ItemID] = item
	return nil
}

func (m *mockStoreItemRepo) Delete(_ context.Context, id string) error {
	delete(m.items, id)
	return nil
}

// ── Mock ItemRequestRepository ──

type mockItemRequestRepo struct {
	requests map[string]*model.ItemRequest
}

func newMockItemRequestRepo() *mockItemRequestRepo {
	return &mockItemRequestRepo{requests: make(map[string]*model.ItemRequest)}
}

func (m *mockItemRequestRepo) Create(_ context.Context, request *model.ItemRequest) error {
	if request.RequestID == "" {
		request.RequestID = fmt.Sprintf("req-%d", len(m.requests)+1)
	}
	request.CreatedAt = time.Now()
	m.requests[request.RequestID] = request
	return nil
}

func (m *mockItemRequestRepo) GetByID(_ context.Context, id string) (*model.ItemRequest, error) {
	if r, ok := m.requests[id]; ok {
		cp := *r
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockItemRequestRepo) List(_ context.Context, filters *repository.ItemRequestListFilters, offset, limit int) ([]model.ItemRequest, int64, error) {
	var filtered []model.ItemRequest
	for _, r := range m.requests {
		if filters != nil {
			if filters.Status != "" && r.Status != filters.Status {
				continue
			}
			if filters.PeriodID != "" && r.PeriodID != filters.PeriodID {
				continue
			}
			if filters.UserID != "" && r.UserID != filters.UserID {
				continue
			}
		}
		filtered = append(filtered, *r)
	}
	total := int64(len(filtered))
	if offset >= len(filtered) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(filtered) {
		end = len(filtered)
	}
	return filtered[offset:end], total, nil
}

func (m *mockItemRequestRepo) Update(_ context.Context, request *model.ItemRequest) error {
	cp := *request
	m.requests[request.RequestID] = &cp
	return nil
}

// ── Mock EventRepository ──

type mockEventRepo struct {
	events map[string]*model.Event
}

func newMockEventRepo() *mockEventRepo {
	return &mockEventRepo{events: make(map[string]*model.Event)}
}

func (m *mockEventRepo) Create(_ context.Context, event *model.Event) error {
	if event.EventID == "" {
		event.EventID = fmt.Sprintf("event-%d", len(m.events)+1)
	}
	event.CreatedAt = time.Now()
	m.events[event.EventID] = event
	return nil
}

func (m *mockEventRepo) GetByID(_ context.Context, id string) (*model.Event, error) {
	if e, ok := m.events[id]; ok {
		return e, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockEventRepo) ListByPeriod(_ context.Context, periodID string) ([]model.Event, error) {
	var result []model.Event
	for _, e := range m.events {
		if e.PeriodID == periodID {
			result = append(result, *e)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].StartTime.Before(result[j].StartTime) })
	return result, nil
}

func (m *mockEventRepo) Update(_ context.Context, event *model.Event) error {
	m.events[event.EventID] = event
	return nil
}

func (m *mockEventRepo) Delete(_ context.Context, id string) error {
	delete(m.events, id)
	return nil
}

// ── Mock WishRepository ──

type mockWishRepo struct {
	wishes map[string]*model.Wish
}

func newMockWishRepo() *mockWishRepo {
	return &mockWishRepo{wishes: make(map[string]*model.Wish)}
}

func (m *mockWishRepo) Create(_ context.Context, wish *model.Wish) error {
	if wish.WishID == "" {
		wish.WishID = fmt.Sprintf("wish-%d", len(m.wishes)+1)
	}
	wish.CreatedAt = time.Now()
	m.wishes[wish.WishID] = wish
	return nil
}

func (m *mockWishRepo) ListByPeriod(_ context.Context, periodID string) ([]model.Wish, error) {
	var result []model.Wish
	for _, w := range m.wishes {
		if w.PeriodID == periodID {
			result = append(result, *w)
		}
	}
	return result, nil
}

func (m *mockWishRepo) Delete(_ context.Context, id string) error {
	delete(m.wishes, id)
	return nil
}

// ── Mock StudentNoteRepository ──

type mockStudentNoteRepo struct {
	notes map[string]*model.StudentNote
}

func newMockStudentNoteRepo() *mockStudentNoteRepo {
	return &mockStudentNoteRepo{notes: make(map[string]*model.StudentNote)}
}

func (m *mockStudentNoteRepo) Create(_ context.Context, note *model.StudentNote) error {
	if note.NoteID == "" {
		note.NoteID = fmt.Sprintf("note-%d", len(m.notes)+1)
	}
	note.CreatedAt = time.Now()
	m.notes[note.NoteID] = note
	return nil
}

func (m *mockStudentNoteRepo) ListByStudent(_ context.Context, studentID string) ([]model.StudentNote, error) {
	var result []model.StudentNote
	for _, n := range m.notes {
		if n.StudentID == studentID {
			result = append(result, *n)
		}
	}
	return result, nil
}

func (m *mockStudentNoteRepo) Delete(_ context.Context, id string) error {
	delete(m.notes, id)
	return nil
}

// ── Mock AnnouncementRepository ──

type mockAnnouncementRepo struct {
	announcements map[string]*model.Announcement
}

func newMockAnnouncementRepo() *mockAnnouncementRepo {
	return &mockAnnouncementRepo{announcements: make(map[string]*model.Announcement)}
}

func (m *mockAnnouncementRepo) Create(_ context.Context, announcement *model.Announcement) error {
	if announcement.AnnouncementID == "" {
		announcement.AnnouncementID = fmt.Sprintf("ann-%d", len(m.announcements)+1)
	}
	announcement.CreatedAt = time.Now()
	m.announcements[announcement.AnnouncementID] = announcement
	return nil
}

func (m *mockAnnouncementRepo) ListByPeriod(_ context.Context, periodID string) ([]model.Announcement, error) {
	var result []model.Announcement
	for _, a := range m.announcements {
		if a.PeriodID == periodID {
			result = append(result, *a)
		}
	}
	return result, nil
}

func (m *mockAnnouncementRepo) Delete(_ context.Context, id string) error {
	delete(m.announcements, id)
	return nil
}
