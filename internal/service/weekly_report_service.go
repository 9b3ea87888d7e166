package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"bilgeverse/backend/internal/dto"
	"bilgeverse/backend/internal/model"
	"bilgeverse/backend/internal/repository"
	pkgerrors "bilgeverse/backend/pkg/errors"
)

// ── 周报模块业务错误 ──

var (
	ErrReportNotFound        = errors.New("周报不存在")
	ErrReportNotOwner        = errors.New("只能操作自己的周报")
	ErrReportNotDraft        = errors.New("周报已提交，不能再编辑")
	ErrReportNotSubmitted    = errors.New("周报未提交，不能审核")
	ErrReportAlreadyReviewed = errors.New("周报已审核，结果不可更改")
	ErrWeekOutOfRange        = errors.New("周数超出学期范围")
	ErrCriterionInvalid      = errors.New("评估项取值无效")
	ErrCriterionUnknown      = errors.New("评估项不在当前问题目录中")
	ErrPointsExceedLimit     = errors.New("授予积分超出单次上限")
	ErrQuestionNotFound      = errors.New("周报问题不存在")
)

// WeeklyReportService 周报业务接口
// 状态机 DRAFT → SUBMITTED → APPROVED | REJECTED 由服务端强制，
// 终态一经写入不可再变
type WeeklyReportService interface {
	SaveDraft(ctx context.Context, req *dto.SaveDraftRequest, callerID, callerRole string) (*dto.WeeklyReportResponse, error)
	Submit(ctx context.Context, reportID, callerID string) (*dto.WeeklyReportResponse, error)
	GetByID(ctx context.Context, reportID string) (*dto.WeeklyReportResponse, error)
	List(ctx context.Context, req *dto.ReportListRequest) ([]dto.WeeklyReportResponse, int64, error)
	Review(ctx context.Context, reportID string, req *dto.ReviewReportRequest, reviewerID string) (*dto.WeeklyReportResponse, error)
	BulkReview(ctx context.Context, req *dto.BulkReviewRequest, reviewerID string) (*dto.BulkReviewResponse, error)

	CreateQuestion(ctx context.Context, req *dto.CreateQuestionRequest, callerID string) (*dto.QuestionResponse, error)
	UpdateQuestion(ctx context.Context, id string, req *dto.UpdateQuestionRequest, callerID string) (*dto.QuestionResponse, error)
	DeleteQuestion(ctx context.Context, id string) error
	ListQuestions(ctx context.Context, targetRole string, activeOnly bool) ([]dto.QuestionResponse, error)
}

type weeklyReportService struct {
	repo      *repository.Repository
	maxPoints int // 单次审核最高可授予积分
	logger    *zap.Logger
}

// NewWeeklyReportService 创建 WeeklyReportService 实例
func NewWeeklyReportService(repo *repository.Repository, maxPoints int, logger *zap.Logger) WeeklyReportService {
	return &weeklyReportService{repo: repo, maxPoints: maxPoints, logger: logger}
}

// ────────────────────── SaveDraft ──────────────────────

// SaveDraft 保存周报草稿（不存在则创建，存在且仍为草稿则覆盖）
// 评估项的键按提交者角色当前生效的问题目录校验；
// 写入后保存的是字符串快照，目录后续变更不回溯
func (s *weeklyReportService) SaveDraft(ctx context.Context, req *dto.SaveDraftRequest, callerID, callerRole string) (*dto.WeeklyReportResponse, error) {
	period, err := s.repo.Period.GetActive(ctx)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoActivePeriod
		}
		s.logger.Error("查询激活学期失败", zap.Error(err))
		return nil, err
	}

	if req.WeekNumber > period.TotalWeeks {
		return nil, ErrWeekOutOfRange
	}

	if err := s.validateCriteria(ctx, callerRole, req.FixedCriteria, req.VariableCriteria); err != nil {
		return nil, err
	}

	report, err := s.repo.WeeklyReport.GetByUserPeriodWeek(ctx, callerID, period.PeriodID, req.WeekNumber)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("查询周报失败", zap.Error(err))
		return nil, err
	}

	if report == nil || errors.Is(err, gorm.ErrRecordNotFound) {
		report = &model.WeeklyReport{
			UserID:           callerID,
			PeriodID:         period.PeriodID,
			WeekNumber:       req.WeekNumber,
			Status:           model.ReportStatusDraft,
			FixedCriteria:    model.CriteriaMap(req.FixedCriteria),
			VariableCriteria: model.CriteriaMap(req.VariableCriteria),
			Comments:         req.Comments,
		}
		report.CreatedBy = &callerID
		report.UpdatedBy = &callerID

		if err := s.repo.WeeklyReport.Create(ctx, report); err != nil {
			// 查询与创建之间被并发请求抢先建同一周的周报，
			// 唯一约束挡下重复行，按并发冲突处理
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return nil, pkgerrors.ErrOptimisticLock
			}
			s.logger.Error("创建周报草稿失败", zap.Error(err))
			return nil, err
		}
		return s.toReportResponse(report), nil
	}

	if report.Status != model.ReportStatusDraft {
		return nil, ErrReportNotDraft
	}

	report.FixedCriteria = model.CriteriaMap(req.FixedCriteria)
	report.VariableCriteria = model.CriteriaMap(req.VariableCriteria)
	report.Comments = req.Comments
	report.UpdatedBy = &callerID

	if err := s.repo.WeeklyReport.UpdateWithVersion(ctx, report); err != nil {
		s.logger.Error("更新周报草稿失败", zap.String("id", report.ReportID), zap.Error(err))
		return nil, err
	}

	return s.toReportResponse(report), nil
}

// ────────────────────── Submit ──────────────────────

func (s *weeklyReportService) Submit(ctx context.Context, reportID, callerID string) (*dto.WeeklyReportResponse, error) {
	report, err := s.getReport(ctx, reportID)
	if err != nil {
		return nil, err
	}

	if report.UserID != callerID {
		return nil, ErrReportNotOwner
	}
	if report.Status != model.ReportStatusDraft {
		return nil, ErrReportNotDraft
	}

	now := time.Now()
	report.Status = model.ReportStatusSubmitted
	report.SubmissionDate = &now
	report.UpdatedBy = &callerID

	if err := s.repo.WeeklyReport.UpdateWithVersion(ctx, report); err != nil {
		s.logger.Error("提交周报失败", zap.String("id", reportID), zap.Error(err))
		return nil, err
	}

	return s.toReportResponse(report), nil
}

// ────────────────────── GetByID ──────────────────────

func (s *weeklyReportService) GetByID(ctx context.Context, reportID string) (*dto.WeeklyReportResponse, error) {
	report, err := s.getReport(ctx, reportID)
	if err != nil {
		return nil, err
	}
	return s.toReportResponse(report), nil
}

// ────────────────────── List ──────────────────────

func (s *weeklyReportService) List(ctx context.Context, req *dto.ReportListRequest) ([]dto.WeeklyReportResponse, int64, error) {
	filters := &repository.ReportListFilters{
		PeriodID:   req.PeriodID,
		UserID:     req.UserID,
		Status:     req.Status,
		WeekNumber: req.WeekNumber,
	}

	reports, total, err := s.repo.WeeklyReport.List(ctx, filters, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("查询周报列表失败", zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.WeeklyReportResponse, 0, len(reports))
	for i := range reports {
		result = append(result, *s.toReportResponse(&reports[i]))
	}

	return result, total, nil
}

// ────────────────────── Review ──────────────────────

// Review 审核单份周报
// APPROVED 且 points_awarded > 0 时在同一事务内写积分流水并更新余额；
// REJECTED 一律按 0 分落库，请求里的 points_awarded 被忽略
func (s *weeklyReportService) Review(ctx context.Context, reportID string, req *dto.ReviewReportRequest, reviewerID string) (*dto.WeeklyReportResponse, error) {
	report, err := s.getReport(ctx, reportID)
	if err != nil {
		return nil, err
	}

	points, err := s.checkReview(report, req.Status, req.PointsAwarded)
	if err != nil {
		return nil, err
	}

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		s.logger.Error("开启事务失败", zap.Error(err))
		return nil, err
	}
	defer func() {
		if r := recover(); r != nil {
			if tx != nil {
				tx.Rollback()
			}
			panic(r)
		}
	}()

	txRepo := s.repo.WithTx(tx)

	if err := s.applyReview(ctx, txRepo, report, req.Status, req.ReviewNotes, points, reviewerID); err != nil {
		if tx != nil {
			tx.Rollback()
		}
		return nil, err
	}

	if tx != nil {
		if err := tx.Commit().Error; err != nil {
			s.logger.Error("提交事务失败", zap.Error(err))
			return nil, err
		}
	}

	return s.toReportResponse(report), nil
}

// ────────────────────── BulkReview ──────────────────────

// BulkReview 批量审核，整体成功或整体失败
// 任一周报缺失或不处于 SUBMITTED 状态时整批回绝，不做部分提交
func (s *weeklyReportService) BulkReview(ctx context.Context, req *dto.BulkReviewRequest, reviewerID string) (*dto.BulkReviewResponse, error) {
	reports, err := s.repo.WeeklyReport.ListByIDs(ctx, req.ReportIDs)
	if err != nil {
		s.logger.Error("批量查询周报失败", zap.Error(err))
		return nil, err
	}
	if len(reports) != len(req.ReportIDs) {
		return nil, ErrReportNotFound
	}

	for i := range reports {
		if _, err := s.checkReview(&reports[i], req.Status, req.PointsAwarded); err != nil {
			return nil, err
		}
	}

	points := req.PointsAwarded
	if req.Status == model.ReportStatusRejected {
		points = 0
	}

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		s.logger.Error("开启事务失败", zap.Error(err))
		return nil, err
	}
	defer func() {
		if r := recover(); r != nil {
			if tx != nil {
				tx.Rollback()
			}
			panic(r)
		}
	}()

	txRepo := s.repo.WithTx(tx)

	for i := range reports {
		if err := s.applyReview(ctx, txRepo, &reports[i], req.Status, req.ReviewNotes, points, reviewerID); err != nil {
			if tx != nil {
				tx.Rollback()
			}
			return nil, err
		}
	}

	if tx != nil {
		if err := tx.Commit().Error; err != nil {
			s.logger.Error("提交事务失败", zap.Error(err))
			return nil, err
		}
	}

	s.logger.Info("批量审核完成",
		zap.Int("count", len(reports)),
		zap.String("status", req.Status),
		zap.String("reviewer_id", reviewerID),
	)

	return &dto.BulkReviewResponse{Reviewed: len(reports)}, nil
}

// ────────────────────── 问题目录 ──────────────────────

func (s *weeklyReportService) CreateQuestion(ctx context.Context, req *dto.CreateQuestionRequest, callerID string) (*dto.QuestionResponse, error) {
	question := &model.WeeklyReportQuestion{
		Text:       req.Text,
		Type:       req.Type,
		TargetRole: req.TargetRole,
		OrderIndex: req.OrderIndex,
		IsActive:   true,
	}
	question.CreatedBy = &callerID
	question.UpdatedBy = &callerID

	if err := s.repo.Question.Create(ctx, question); err != nil {
		s.logger.Error("创建周报问题失败", zap.Error(err))
		return nil, err
	}

	return s.toQuestionResponse(question), nil
}

func (s *weeklyReportService) UpdateQuestion(ctx context.Context, id string, req *dto.UpdateQuestionRequest, callerID string) (*dto.QuestionResponse, error) {
	question, err := s.repo.Question.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrQuestionNotFound
		}
		s.logger.Error("查询周报问题失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	if req.Text != nil {
		question.Text = *req.Text
	}
	if req.Type != nil {
		question.Type = *req.Type
	}
	if req.TargetRole != nil {
		question.TargetRole = *req.TargetRole
	}
	if req.OrderIndex != nil {
		question.OrderIndex = *req.OrderIndex
	}
	if req.IsActive != nil {
		question.IsActive = *req.IsActive
	}
	question.UpdatedBy = &callerID

	if err := s.repo.Question.Update(ctx, question); err != nil {
		s.logger.Error("更新周报问题失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	return s.toQuestionResponse(question), nil
}

func (s *weeklyReportService) DeleteQuestion(ctx context.Context, id string) error {
	if _, err := s.repo.Question.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrQuestionNotFound
		}
		s.logger.Error("查询周报问题失败", zap.String("id", id), zap.Error(err))
		return err
	}

	if err := s.repo.Question.Delete(ctx, id); err != nil {
		s.logger.Error("删除周报问题失败", zap.String("id", id), zap.Error(err))
		return err
	}

	return nil
}

func (s *weeklyReportService) ListQuestions(ctx context.Context, targetRole string, activeOnly bool) ([]dto.QuestionResponse, error) {
	questions, err := s.repo.Question.List(ctx, targetRole, activeOnly)
	if err != nil {
		s.logger.Error("查询周报问题列表失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.QuestionResponse, 0, len(questions))
	for i := range questions {
		result = append(result, *s.toQuestionResponse(&questions[i]))
	}

	return result, nil
}

// ── 内部辅助方法 ──

func (s *weeklyReportService) getReport(ctx context.Context, id string) (*model.WeeklyReport, error) {
	report, err := s.repo.WeeklyReport.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReportNotFound
		}
		s.logger.Error("查询周报失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return report, nil
}

// validateCriteria 校验评估项映射：键须在该角色当前生效的问题目录内，
// 取值须为 YAPILDI | YAPILMADI | YOKTU
func (s *weeklyReportService) validateCriteria(ctx context.Context, role string, fixed, variable map[string]string) error {
	questions, err := s.repo.Question.List(ctx, role, true)
	if err != nil {
		s.logger.Error("查询问题目录失败", zap.Error(err))
		return err
	}

	known := make(map[string]string, len(questions)) // 问题文本 → 类型
	for i := range questions {
		known[questions[i].Text] = questions[i].Type
	}

	check := func(criteria map[string]string, questionType string) error {
		for key, value := range criteria {
			if value != model.CriterionDone && value != model.CriterionNotDone && value != model.CriterionAbsent {
				return fmt.Errorf("%w: %s=%s", ErrCriterionInvalid, key, value)
			}
			if t, ok := known[key]; !ok || t != questionType {
				return fmt.Errorf("%w: %s", ErrCriterionUnknown, key)
			}
		}
		return nil
	}

	if err := check(fixed, model.QuestionTypeFixed); err != nil {
		return err
	}
	return check(variable, model.QuestionTypeVariable)
}

// checkReview 审核前置校验，返回实际落库的积分值
func (s *weeklyReportService) checkReview(report *model.WeeklyReport, status string, points int) (int, error) {
	if report.IsReviewed() {
		return 0, ErrReportAlreadyReviewed
	}
	if report.Status != model.ReportStatusSubmitted {
		return 0, ErrReportNotSubmitted
	}
	if status == model.ReportStatusRejected {
		return 0, nil
	}
	if points > s.maxPoints {
		return 0, ErrPointsExceedLimit
	}
	return points, nil
}

// applyReview 在调用方事务内落库一份审核结果：
// 更新周报终态，APPROVED 且积分大于 0 时追加积分流水并更新余额
func (s *weeklyReportService) applyReview(ctx context.Context, txRepo *repository.Repository, report *model.WeeklyReport, status string, notes *string, points int, reviewerID string) error {
	now := time.Now()
	report.Status = status
	report.ReviewDate = &now
	report.ReviewedByID = &reviewerID
	report.ReviewNotes = notes
	report.PointsAwarded = points
	report.UpdatedBy = &reviewerID

	if err := txRepo.WeeklyReport.UpdateWithVersion(ctx, report); err != nil {
		s.logger.Error("更新周报审核结果失败", zap.String("id", report.ReportID), zap.Error(err))
		return err
	}

	if status == model.ReportStatusApproved && points > 0 {
		record := &model.PointsTransaction{
			UserID:   report.UserID,
			PeriodID: report.PeriodID,
			Amount:   points,
			Reason:   fmt.Sprintf("第 %d 周周报审核通过", report.WeekNumber),
		}
		record.CreatedBy = &reviewerID
		record.UpdatedBy = &reviewerID

		if err := txRepo.PointsTx.Create(ctx, record); err != nil {
			s.logger.Error("写入周报积分流水失败", zap.String("report_id", report.ReportID), zap.Error(err))
			return err
		}
		if err := txRepo.User.AddPoints(ctx, report.UserID, points); err != nil {
			s.logger.Error("更新用户积分失败", zap.String("user_id", report.UserID), zap.Error(err))
			return err
		}
	}

	return nil
}

func (s *weeklyReportService) toReportResponse(report *model.WeeklyReport) *dto.WeeklyReportResponse {
	score, suggested := AttendanceScore(report.FixedCriteria, report.VariableCriteria)

	resp := &dto.WeeklyReportResponse{
		ID:               report.ReportID,
		UserID:           report.UserID,
		PeriodID:         report.PeriodID,
		WeekNumber:       report.WeekNumber,
		Status:           report.Status,
		ReviewedByID:     report.ReviewedByID,
		ReviewNotes:      report.ReviewNotes,
		PointsAwarded:    report.PointsAwarded,
		FixedCriteria:    report.FixedCriteria,
		VariableCriteria: report.VariableCriteria,
		Comments:         report.Comments,
		AttendanceScore:  score,
		SuggestedPoints:  suggested,
		CreatedAt:        report.CreatedAt.Format(time.RFC3339),
	}
	if report.SubmissionDate != nil {
		t := report.SubmissionDate.Format(time.RFC3339)
		resp.SubmissionDate = &t
	}
	if report.ReviewDate != nil {
		t := report.ReviewDate.Format(time.RFC3339)
		resp.ReviewDate = &t
	}
	if report.User != nil {
		resp.UserName = report.User.FullName()
	}
	return resp
}

func (s *weeklyReportService) toQuestionResponse(q *model.WeeklyReportQuestion) *dto.QuestionResponse {
	return &dto.QuestionResponse{
		ID:         q.QuestionID,
		Text:       q.Text,
		Type:       q.Type,
		TargetRole: q.TargetRole,
		OrderIndex: q.OrderIndex,
		IsActive:   q.IsActive,
	}
}

// AttendanceScore 按评估项计算出勤得分与建议积分
// 得分 = round(100 × 已完成 / 已作答)，YOKTU 不计入已作答；
// 建议积分 = round(得分 / 10)。无已作答项时两者皆为 0
func AttendanceScore(criteria ...map[string]string) (score, suggested int) {
	done, answered := 0, 0
	for _, m := range criteria {
		for _, value := range m {
			switch value {
			case model.CriterionDone:
				done++
				answered++
			case model.CriterionNotDone:
				answered++
			}
		}
	}
	if answered == 0 {
		return 0, 0
	}
	score = int(math.Round(100 * float64(done) / float64(answered)))
	suggested = int(math.Round(float64(score) / 10))
	return score, suggested
}
