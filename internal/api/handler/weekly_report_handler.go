package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"bilgeverse/backend/internal/dto"
	"bilgeverse/backend/internal/service"
	pkgerrors "bilgeverse/backend/pkg/errors"
	"bilgeverse/backend/pkg/response"
)

// WeeklyReportHandler 周报模块 HTTP 处理器
type WeeklyReportHandler struct {
	reportSvc service.WeeklyReportService
}

// NewWeeklyReportHandler 创建 WeeklyReportHandler
func NewWeeklyReportHandler(reportSvc service.WeeklyReportService) *WeeklyReportHandler {
	return &WeeklyReportHandler{reportSvc: reportSvc}
}

// SaveDraft 保存周报草稿（不存在则创建）
// POST /api/v1/weekly-reports/draft
func (h *WeeklyReportHandler) SaveDraft(c *gin.Context) {
	var req dto.SaveDraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	callerRole, ok := MustGetRole(c)
	if !ok {
		return
	}

	report, err := h.reportSvc.SaveDraft(c.Request.Context(), &req, callerID, callerRole)
	if err != nil {
		h.handleReportError(c, err)
		return
	}

	response.OK(c, report)
}

// Submit 提交周报进入审核
// POST /api/v1/weekly-reports/:id/submit
func (h *WeeklyReportHandler) Submit(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "周报ID不能为空")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	report, err := h.reportSvc.Submit(c.Request.Context(), id, callerID)
	if err != nil {
		h.handleReportError(c, err)
		return
	}

	response.OK(c, report)
}

// GetReport 获取周报详情
// GET /api/v1/weekly-reports/:id
func (h *WeeklyReportHandler) GetReport(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "周报ID不能为空")
		return
	}

	report, err := h.reportSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleReportError(c, err)
		return
	}

	response.OK(c, report)
}

// ListReports 周报列表（分页）
// GET /api/v1/weekly-reports
func (h *WeeklyReportHandler) ListReports(c *gin.Context) {
	var req dto.ReportListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	reports, total, err := h.reportSvc.List(c.Request.Context(), &req)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OKPage(c, reports, total, req.GetPage(), req.GetPageSize())
}

// Review 审核单份周报
// PUT /api/v1/weekly-reports/:id/review
func (h *WeeklyReportHandler) Review(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "周报ID不能为空")
		return
	}

	var req dto.ReviewReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	reviewerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	report, err := h.reportSvc.Review(c.Request.Context(), id, &req, reviewerID)
	if err != nil {
		h.handleReportError(c, err)
		return
	}

	response.OK(c, report)
}

// BulkReview 批量审核（整体成功或整体失败）
// PUT /api/v1/weekly-reports/bulk-review
func (h *WeeklyReportHandler) BulkReview(c *gin.Context) {
	var req dto.BulkReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	reviewerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.reportSvc.BulkReview(c.Request.Context(), &req, reviewerID)
	if err != nil {
		h.handleReportError(c, err)
		return
	}

	response.OK(c, result)
}

// ── 问题目录 ──

// CreateQuestion 创建周报问题
// POST /api/v1/weekly-report-questions
func (h *WeeklyReportHandler) CreateQuestion(c *gin.Context) {
	var req dto.CreateQuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	question, err := h.reportSvc.CreateQuestion(c.Request.Context(), &req, callerID)
	if err != nil {
		h.handleReportError(c, err)
		return
	}

	response.Created(c, question)
}

// UpdateQuestion 更新周报问题
// PUT /api/v1/weekly-report-questions/:id
func (h *WeeklyReportHandler) UpdateQuestion(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "问题ID不能为空")
		return
	}

	var req dto.UpdateQuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	question, err := h.reportSvc.UpdateQuestion(c.Request.Context(), id, &req, callerID)
	if err != nil {
		h.handleReportError(c, err)
		return
	}

	response.OK(c, question)
}

// DeleteQuestion 删除周报问题
// DELETE /api/v1/weekly-report-questions/:id
func (h *WeeklyReportHandler) DeleteQuestion(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "问题ID不能为空")
		return
	}

	if err := h.reportSvc.DeleteQuestion(c.Request.Context(), id); err != nil {
		h.handleReportError(c, err)
		return
	}

	response.OK(c, nil)
}

// ListQuestions 周报问题列表
// GET /api/v1/weekly-report-questions?target_role=TUTOR&active_only=true
func (h *WeeklyReportHandler) ListQuestions(c *gin.Context) {
	targetRole := c.Query("target_role")
	activeOnly := c.Query("active_only") == "true"

	questions, err := h.reportSvc.ListQuestions(c.Request.Context(), targetRole, activeOnly)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, gin.H{"list": questions})
}

// handleReportError 统一处理周报模块业务错误
func (h *WeeklyReportHandler) handleReportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrReportNotFound):
		response.NotFound(c, 15001, "周报不存在")
	case errors.Is(err, service.ErrReportNotOwner):
		response.Forbidden(c, 15002, "只能操作自己的周报")
	case errors.Is(err, service.ErrReportNotDraft):
		response.BadRequest(c, 15003, "周报已提交，不能再编辑")
	case errors.Is(err, service.ErrReportNotSubmitted):
		response.BadRequest(c, 15004, "周报未提交，不能审核")
	case errors.Is(err, service.ErrReportAlreadyReviewed):
		response.BadRequest(c, 15005, "周报已审核，结果不可更改")
	case errors.Is(err, service.ErrWeekOutOfRange):
		response.BadRequest(c, 15006, "周数超出学期范围")
	case errors.Is(err, service.ErrCriterionInvalid):
		response.BadRequest(c, 15007, "评估项取值无效")
	case errors.Is(err, service.ErrCriterionUnknown):
		response.BadRequest(c, 15008, "评估项不在当前问题目录中")
	case errors.Is(err, service.ErrPointsExceedLimit):
		response.BadRequest(c, 15009, "授予积分超出单次上限")
	case errors.Is(err, service.ErrQuestionNotFound):
		response.NotFound(c, 15010, "周报问题不存在")
	case errors.Is(err, service.ErrNoActivePeriod):
		response.BadRequest(c, 13004, "当前没有激活的学期")
	case errors.Is(err, pkgerrors.ErrOptimisticLock):
		response.Conflict(c, 15011, "周报已被其他操作修改，请刷新后重试")
	default:
		response.InternalError(c)
	}
}
