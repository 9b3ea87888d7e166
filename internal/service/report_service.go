package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"bilgeverse/backend/internal/dto"
	"bilgeverse/backend/internal/model"
	"bilgeverse/backend/internal/repository"
	"bilgeverse/backend/pkg/redis"
)

// ── 报表模块业务错误 ──

var (
	ErrExportNoData       = errors.New("没有可导出的数据")
	ErrExportGenerateFail = errors.New("生成导出文件失败")
)

const leaderboardCacheKey = "report:leaderboard"

// ReportService 排行榜/统计/导出业务接口
//
// 设计说明：
//   - 排行榜读多写多，走 Redis 短 TTL 缓存，过期自然刷新，不做主动失效
//   - 导出以 bytes.Buffer 返回，由 Handler 层设置 HTTP 响应头后写入 Response
//   - 日历导出生成标准 iCalendar (RFC 5545)，可被常见日历客户端订阅
type ReportService interface {
	Leaderboard(ctx context.Context, limit int) (*dto.LeaderboardResponse, error)
	ClassroomStats(ctx context.Context) ([]dto.ClassroomStatsResponse, error)
	ExportLeaderboard(ctx context.Context) (*bytes.Buffer, string, error)
	ExportPointsTransactions(ctx context.Context, periodID string) (*bytes.Buffer, string, error)
	ExportCalendar(ctx context.Context, periodID string) (*bytes.Buffer, string, error)
}

type reportService struct {
	repo     *repository.Repository
	rdb      *redis.Client // 可为 nil，此时排行榜直查数据库
	cacheTTL time.Duration
	logger   *zap.Logger
}

// NewReportService 创建 ReportService 实例
func NewReportService(repo *repository.Repository, rdb *redis.Client, cacheTTL time.Duration, logger *zap.Logger) ReportService {
	return &reportService{repo: repo, rdb: rdb, cacheTTL: cacheTTL, logger: logger}
}

// ────────────────────── Leaderboard ──────────────────────

func (s *reportService) Leaderboard(ctx context.Context, limit int) (*dto.LeaderboardResponse, error) {
	if s.rdb != nil {
		cached, err := s.rdb.GetCached(ctx, leaderboardCacheKey)
		if err != nil {
			s.logger.Warn("读取排行榜缓存失败", zap.Error(err))
		} else if cached != "" {
			var resp dto.LeaderboardResponse
			if err := json.Unmarshal([]byte(cached), &resp); err == nil {
				return s.trimLeaderboard(&resp, limit), nil
			}
		}
	}

	students, err := s.repo.User.ListByRole(ctx, model.RoleStudent)
	if err != nil {
		s.logger.Error("查询学生排行失败", zap.Error(err))
		return nil, err
	}

	resp := &dto.LeaderboardResponse{Entries: make([]dto.LeaderboardEntry, 0, len(students))}
	for i := range students {
		u := &students[i]
		resp.Entries = append(resp.Entries, dto.LeaderboardEntry{
			Rank:       i + 1,
			UserID:     u.UserID,
			Name:       u.FullName(),
			Points:     u.Points,
			Experience: u.Experience,
		})
	}

	if s.rdb != nil {
		if data, err := json.Marshal(resp); err == nil {
			if err := s.rdb.SetCached(ctx, leaderboardCacheKey, string(data), s.cacheTTL); err != nil {
				s.logger.Warn("写入排行榜缓存失败", zap.Error(err))
			}
		}
	}

	return s.trimLeaderboard(resp, limit), nil
}

// ────────────────────── ClassroomStats ──────────────────────

// ClassroomStats 按导师分组统计名下学生的积分与经验
func (s *reportService) ClassroomStats(ctx context.Context) ([]dto.ClassroomStatsResponse, error) {
	var tutors []model.User
	for _, role := range []string{model.RoleTutor, model.RoleAsistan} {
		users, err := s.repo.User.ListByRole(ctx, role)
		if err != nil {
			s.logger.Error("查询导师列表失败", zap.String("role", role), zap.Error(err))
			return nil, err
		}
		tutors = append(tutors, users...)
	}

	result := make([]dto.ClassroomStatsResponse, 0, len(tutors))
	for i := range tutors {
		t := &tutors[i]
		students, err := s.repo.User.ListByTutor(ctx, t.UserID)
		if err != nil {
			s.logger.Error("查询导师学生失败", zap.String("tutor_id", t.UserID), zap.Error(err))
			return nil, err
		}

		stats := dto.ClassroomStatsResponse{
			TutorID:      t.UserID,
			TutorName:    t.FullName(),
			StudentCount: len(students),
		}
		for j := range students {
			stats.TotalPoints += students[j].Points
			stats.TotalExperience += students[j].Experience
		}
		if len(students) > 0 {
			stats.AveragePoints = float64(stats.TotalPoints) / float64(len(students))
			stats.AverageExperience = float64(stats.TotalExperience) / float64(len(students))
		}
		result = append(result, stats)
	}

	return result, nil
}

// ────────────────────── ExportLeaderboard ──────────────────────

// ExportLeaderboard 导出学生排行榜为 Excel
// 表头: | 排名 | 姓名 | 积分 | 经验 |
func (s *reportService) ExportLeaderboard(ctx context.Context) (*bytes.Buffer, string, error) {
	students, err := s.repo.User.ListByRole(ctx, model.RoleStudent)
	if err != nil {
		s.logger.Error("查询学生排行失败", zap.Error(err))
		return nil, "", err
	}
	if len(students) == 0 {
		return nil, "", ErrExportNoData
	}

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "排行榜"
	idx, _ := f.NewSheet(sheetName)
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	f.SetColWidth(sheetName, "A", "A", 8)
	f.SetColWidth(sheetName, "B", "B", 24)
	f.SetColWidth(sheetName, "C", "D", 12)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	f.SetCellValue(sheetName, "A1", "排名")
	f.SetCellValue(sheetName, "B1", "姓名")
	f.SetCellValue(sheetName, "C1", "积分")
	f.SetCellValue(sheetName, "D1", "经验")
	f.SetCellStyle(sheetName, "A1", "D1", headerStyle)

	row := 2
	for i := range students {
		u := &students[i]
		f.SetCellValue(sheetName, cell("A", row), i+1)
		f.SetCellValue(sheetName, cell("B", row), u.FullName())
		f.SetCellValue(sheetName, cell("C", row), u.Points)
		f.SetCellValue(sheetName, cell("D", row), u.Experience)
		row++
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("排行榜_%s.xlsx", time.Now().Format("20060102"))
	return buf, filename, nil
}

// ────────────────────── ExportPointsTransactions ──────────────────────

// ExportPointsTransactions 导出指定学期的积分流水为 Excel
// 表头: | 时间 | 姓名 | 金额 | 事由 |
func (s *reportService) ExportPointsTransactions(ctx context.Context, periodID string) (*bytes.Buffer, string, error) {
	period, err := s.repo.Period.GetByID(ctx, periodID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrPeriodNotFound
		}
		s.logger.Error("查询学期失败", zap.String("id", periodID), zap.Error(err))
		return nil, "", err
	}

	// 一次取出全部流水用于导出，不分页
	txs, total, err := s.repo.PointsTx.List(ctx, &repository.TransactionListFilters{PeriodID: periodID}, 0, 100000)
	if err != nil {
		s.logger.Error("查询积分流水失败", zap.Error(err))
		return nil, "", err
	}
	if total == 0 {
		return nil, "", ErrExportNoData
	}

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "积分流水"
	idx, _ := f.NewSheet(sheetName)
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	f.SetColWidth(sheetName, "A", "A", 20)
	f.SetColWidth(sheetName, "B", "B", 24)
	f.SetColWidth(sheetName, "C", "C", 10)
	f.SetColWidth(sheetName, "D", "D", 40)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	f.SetCellValue(sheetName, "A1", "时间")
	f.SetCellValue(sheetName, "B1", "姓名")
	f.SetCellValue(sheetName, "C1", "金额")
	f.SetCellValue(sheetName, "D1", "事由")
	f.SetCellStyle(sheetName, "A1", "D1", headerStyle)

	row := 2
	for i := range txs {
		t := &txs[i]
		name := t.UserID
		if t.User != nil {
			name = t.User.FullName()
		}
		f.SetCellValue(sheetName, cell("A", row), t.CreatedAt.Format("2006-01-02 15:04"))
		f.SetCellValue(sheetName, cell("B", row), name)
		f.SetCellValue(sheetName, cell("C", row), t.Amount)
		f.SetCellValue(sheetName, cell("D", row), t.Reason)
		row++
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("积分流水_%s.xlsx", period.Name)
	return buf, filename, nil
}

// ────────────────────── ExportCalendar ──────────────────────

// ExportCalendar 将指定学期的活动导出为 iCalendar (.ics)
func (s *reportService) ExportCalendar(ctx context.Context, periodID string) (*bytes.Buffer, string, error) {
	period, err := s.repo.Period.GetByID(ctx, periodID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrPeriodNotFound
		}
		s.logger.Error("查询学期失败", zap.String("id", periodID), zap.Error(err))
		return nil, "", err
	}

	events, err := s.repo.Event.ListByPeriod(ctx, periodID)
	if err != nil {
		s.logger.Error("查询活动列表失败", zap.String("period_id", periodID), zap.Error(err))
		return nil, "", err
	}
	if len(events) == 0 {
		return nil, "", ErrExportNoData
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//BilgeVerse//Calendar//TR")
	cal.SetName(period.Name)

	for i := range events {
		e := &events[i]
		evt := cal.AddEvent(fmt.Sprintf("%s@bilgeverse", e.EventID))
		evt.SetCreatedTime(e.CreatedAt)
		evt.SetDtStampTime(e.CreatedAt)
		evt.SetStartAt(e.StartTime)
		if e.EndTime != nil {
			evt.SetEndAt(*e.EndTime)
		} else {
			evt.SetEndAt(e.StartTime.Add(2 * time.Hour))
		}
		evt.SetSummary(e.Title)
		if e.Description != nil {
			evt.SetDescription(*e.Description)
		}
		if e.Location != nil {
			evt.SetLocation(*e.Location)
		}
	}

	buf := bytes.NewBufferString(cal.Serialize())
	filename := fmt.Sprintf("%s.ics", period.Name)
	return buf, filename, nil
}

// ── 内部辅助方法 ──

func (s *reportService) trimLeaderboard(resp *dto.LeaderboardResponse, limit int) *dto.LeaderboardResponse {
	if limit > 0 && len(resp.Entries) > limit {
		return &dto.LeaderboardResponse{Entries: resp.Entries[:limit]}
	}
	return resp
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
