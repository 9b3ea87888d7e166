package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"bilgeverse/backend/internal/dto"
	"bilgeverse/backend/internal/service"
	pkgerrors "bilgeverse/backend/pkg/errors"
	"bilgeverse/backend/pkg/response"
)

// PeriodHandler 学期模块 HTTP 处理器
type PeriodHandler struct {
	periodSvc service.PeriodService
}

// NewPeriodHandler 创建 PeriodHandler
func NewPeriodHandler(periodSvc service.PeriodService) *PeriodHandler {
	return &PeriodHandler{periodSvc: periodSvc}
}

// ListPeriods 获取学期列表
// GET /api/v1/periods
func (h *PeriodHandler) ListPeriods(c *gin.Context) {
	periods, err := h.periodSvc.List(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, gin.H{"list": periods})
}

// GetPeriod 获取学期详情
// GET /api/v1/periods/:id
func (h *PeriodHandler) GetPeriod(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "学期ID不能为空")
		return
	}

	period, err := h.periodSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handlePeriodError(c, err)
		return
	}

	response.OK(c, period)
}

// GetActivePeriod 获取当前激活学期
// GET /api/v1/periods/active
func (h *PeriodHandler) GetActivePeriod(c *gin.Context) {
	period, err := h.periodSvc.GetActive(c.Request.Context())
	if err != nil {
		h.handlePeriodError(c, err)
		return
	}

	response.OK(c, period)
}

// CreatePeriod 创建学期
// POST /api/v1/periods
func (h *PeriodHandler) CreatePeriod(c *gin.Context) {
	var req dto.CreatePeriodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	period, err := h.periodSvc.Create(c.Request.Context(), &req, callerID)
	if err != nil {
		h.handlePeriodError(c, err)
		return
	}

	response.Created(c, period)
}

// UpdatePeriod 更新学期设置
// PUT /api/v1/periods/:id
func (h *PeriodHandler) UpdatePeriod(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "学期ID不能为空")
		return
	}

	var req dto.UpdatePeriodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	period, err := h.periodSvc.Update(c.Request.Context(), id, &req, callerID)
	if err != nil {
		h.handlePeriodError(c, err)
		return
	}

	response.OK(c, period)
}

// UpdatePeriodStatus 直接设置学期状态（仅 INACTIVE/ARCHIVED）
// PUT /api/v1/periods/:id/status
func (h *PeriodHandler) UpdatePeriodStatus(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "学期ID不能为空")
		return
	}

	var req dto.UpdatePeriodStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.periodSvc.UpdateStatus(c.Request.Context(), id, req.Status, callerID); err != nil {
		h.handlePeriodError(c, err)
		return
	}

	response.OK(c, nil)
}

// ActivatePeriod 激活学期（可选重置全体用户余额）
// PUT /api/v1/periods/:id/activate
func (h *PeriodHandler) ActivatePeriod(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "学期ID不能为空")
		return
	}

	var req dto.ActivatePeriodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		// 请求体可省略，默认不重置
		req.ResetData = false
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.periodSvc.Activate(c.Request.Context(), id, req.ResetData, callerID)
	if err != nil {
		h.handlePeriodError(c, err)
		return
	}

	response.OK(c, result)
}

// GetDeleteImpact 删除前查询关联记录数量
// GET /api/v1/periods/:id/delete-impact
func (h *PeriodHandler) GetDeleteImpact(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "学期ID不能为空")
		return
	}

	counts, err := h.periodSvc.GetDeleteImpact(c.Request.Context(), id)
	if err != nil {
		h.handlePeriodError(c, err)
		return
	}

	response.OK(c, counts)
}

// DeletePeriod 删除学期及其关联记录
// DELETE /api/v1/periods/:id
func (h *PeriodHandler) DeletePeriod(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "学期ID不能为空")
		return
	}

	if err := h.periodSvc.Delete(c.Request.Context(), id); err != nil {
		h.handlePeriodError(c, err)
		return
	}

	response.OK(c, nil)
}

// handlePeriodError 统一处理学期模块业务错误
func (h *PeriodHandler) handlePeriodError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrPeriodNotFound):
		response.NotFound(c, 13001, "学期不存在")
	case errors.Is(err, service.ErrPeriodDateInvalid):
		response.BadRequest(c, 13002, "学期日期无效")
	case errors.Is(err, service.ErrPeriodStatusInvalid):
		response.BadRequest(c, 13003, "无效的学期状态")
	case errors.Is(err, service.ErrNoActivePeriod):
		response.NotFound(c, 13004, "当前没有激活的学期")
	case errors.Is(err, pkgerrors.ErrOptimisticLock):
		response.Conflict(c, 13005, "学期已被其他操作修改，请刷新后重试")
	default:
		response.InternalError(c)
	}
}
