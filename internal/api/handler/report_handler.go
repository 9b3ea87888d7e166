package handler

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"

	"bilgeverse/backend/internal/service"
	"bilgeverse/backend/pkg/response"
)

const (
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	icsContentType  = "text/calendar; charset=utf-8"
)

// ReportHandler 排行榜/统计/导出 HTTP 处理器
type ReportHandler struct {
	reportSvc service.ReportService
}

// NewReportHandler 创建 ReportHandler
func NewReportHandler(reportSvc service.ReportService) *ReportHandler {
	return &ReportHandler{reportSvc: reportSvc}
}

// Leaderboard 学生积分排行榜
// GET /api/v1/reports/leaderboard?limit=10
func (h *ReportHandler) Leaderboard(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			response.BadRequest(c, 10001, "limit 参数无效")
			return
		}
		limit = n
	}

	result, err := h.reportSvc.Leaderboard(c.Request.Context(), limit)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, result)
}

// ClassroomStats 按导师分组的班级统计
// GET /api/v1/reports/classroom-stats
func (h *ReportHandler) ClassroomStats(c *gin.Context) {
	stats, err := h.reportSvc.ClassroomStats(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, gin.H{"list": stats})
}

// ExportLeaderboard 导出排行榜 Excel
// GET /api/v1/reports/export/leaderboard
func (h *ReportHandler) ExportLeaderboard(c *gin.Context) {
	buf, filename, err := h.reportSvc.ExportLeaderboard(c.Request.Context())
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	writeDownload(c, buf.Bytes(), filename, xlsxContentType)
}

// ExportPointsTransactions 导出指定学期的积分流水 Excel
// GET /api/v1/reports/export/points-transactions?period_id=xxx
func (h *ReportHandler) ExportPointsTransactions(c *gin.Context) {
	periodID := c.Query("period_id")
	if periodID == "" {
		response.BadRequest(c, 10001, "period_id 不能为空")
		return
	}

	buf, filename, err := h.reportSvc.ExportPointsTransactions(c.Request.Context(), periodID)
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	writeDownload(c, buf.Bytes(), filename, xlsxContentType)
}

// ExportCalendar 导出指定学期的活动日历 (.ics)
// GET /api/v1/reports/export/calendar?period_id=xxx
func (h *ReportHandler) ExportCalendar(c *gin.Context) {
	periodID := c.Query("period_id")
	if periodID == "" {
		response.BadRequest(c, 10001, "period_id 不能为空")
		return
	}

	buf, filename, err := h.reportSvc.ExportCalendar(c.Request.Context(), periodID)
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	writeDownload(c, buf.Bytes(), filename, icsContentType)
}

// writeDownload 设置下载响应头并写出文件内容
func writeDownload(c *gin.Context, data []byte, filename, contentType string) {
	encodedFilename := url.QueryEscape(filename)
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+encodedFilename)
	c.Data(http.StatusOK, contentType, data)
}

// handleExportError 统一处理导出模块业务错误
func (h *ReportHandler) handleExportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrExportNoData):
		response.NotFound(c, 18001, "没有可导出的数据")
	case errors.Is(err, service.ErrPeriodNotFound):
		response.NotFound(c, 13001, "学期不存在")
	case errors.Is(err, service.ErrExportGenerateFail):
		response.InternalError(c)
	default:
		response.InternalError(c)
	}
}
