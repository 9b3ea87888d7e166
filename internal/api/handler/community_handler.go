package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"bilgeverse/backend/internal/dto"
	"bilgeverse/backend/internal/service"
	"bilgeverse/backend/pkg/response"
)

// CommunityHandler 社区模块（活动/公告/心愿/学生备注）HTTP 处理器
type CommunityHandler struct {
	communitySvc service.CommunityService
}

// NewCommunityHandler 创建 CommunityHandler
func NewCommunityHandler(communitySvc service.CommunityService) *CommunityHandler {
	return &CommunityHandler{communitySvc: communitySvc}
}

// ── 活动 ──

// CreateEvent 创建活动
// POST /api/v1/events
func (h *CommunityHandler) CreateEvent(c *gin.Context) {
	var req dto.CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	event, err := h.communitySvc.CreateEvent(c.Request.Context(), &req, callerID)
	if err != nil {
		h.handleCommunityError(c, err)
		return
	}

	response.Created(c, event)
}

// UpdateEvent 更新活动
// PUT /api/v1/events/:id
func (h *CommunityHandler) UpdateEvent(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "活动ID不能为空")
		return
	}

	var req dto.UpdateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	event, err := h.communitySvc.UpdateEvent(c.Request.Context(), id, &req, callerID)
	if err != nil {
		h.handleCommunityError(c, err)
		return
	}

	response.OK(c, event)
}

// DeleteEvent 删除活动
// DELETE /api/v1/events/:id
func (h *CommunityHandler) DeleteEvent(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "活动ID不能为空")
		return
	}

	if err := h.communitySvc.DeleteEvent(c.Request.Context(), id); err != nil {
		h.handleCommunityError(c, err)
		return
	}

	response.OK(c, nil)
}

// ListEvents 活动列表（period_id 为空时取当前激活学期）
// GET /api/v1/events?period_id=xxx
func (h *CommunityHandler) ListEvents(c *gin.Context) {
	events, err := h.communitySvc.ListEvents(c.Request.Context(), c.Query("period_id"))
	if err != nil {
		h.handleCommunityError(c, err)
		return
	}

	response.OK(c, gin.H{"list": events})
}

// ── 公告 ──

// CreateAnnouncement 发布公告
// POST /api/v1/announcements
func (h *CommunityHandler) CreateAnnouncement(c *gin.Context) {
	var req dto.CreateAnnouncementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	announcement, err := h.communitySvc.CreateAnnouncement(c.Request.Context(), &req, callerID)
	if err != nil {
		h.handleCommunityError(c, err)
		return
	}

	response.Created(c, announcement)
}

// DeleteAnnouncement 删除公告
// DELETE /api/v1/announcements/:id
func (h *CommunityHandler) DeleteAnnouncement(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "公告ID不能为空")
		return
	}

	if err := h.communitySvc.DeleteAnnouncement(c.Request.Context(), id); err != nil {
		h.handleCommunityError(c, err)
		return
	}

	response.OK(c, nil)
}

// ListAnnouncements 公告列表
// GET /api/v1/announcements?period_id=xxx
func (h *CommunityHandler) ListAnnouncements(c *gin.Context) {
	announcements, err := h.communitySvc.ListAnnouncements(c.Request.Context(), c.Query("period_id"))
	if err != nil {
		h.handleCommunityError(c, err)
		return
	}

	response.OK(c, gin.H{"list": announcements})
}

// ── 心愿 ──

// CreateWish 学生提交心愿
// POST /api/v1/wishes
func (h *CommunityHandler) CreateWish(c *gin.Context) {
	var req dto.CreateWishRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	wish, err := h.communitySvc.CreateWish(c.Request.Context(), &req, callerID)
	if err != nil {
		h.handleCommunityError(c, err)
		return
	}

	response.Created(c, wish)
}

// DeleteWish 删除心愿
// DELETE /api/v1/wishes/:id
func (h *CommunityHandler) DeleteWish(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "心愿ID不能为空")
		return
	}

	if err := h.communitySvc.DeleteWish(c.Request.Context(), id); err != nil {
		h.handleCommunityError(c, err)
		return
	}

	response.OK(c, nil)
}

// ListWishes 心愿列表
// GET /api/v1/wishes?period_id=xxx
func (h *CommunityHandler) ListWishes(c *gin.Context) {
	wishes, err := h.communitySvc.ListWishes(c.Request.Context(), c.Query("period_id"))
	if err != nil {
		h.handleCommunityError(c, err)
		return
	}

	response.OK(c, gin.H{"list": wishes})
}

// ── 学生备注 ──

// CreateStudentNote 导师给学生添加备注
// POST /api/v1/student-notes
func (h *CommunityHandler) CreateStudentNote(c *gin.Context) {
	var req dto.CreateStudentNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	note, err := h.communitySvc.CreateStudentNote(c.Request.Context(), &req, callerID)
	if err != nil {
		h.handleCommunityError(c, err)
		return
	}

	response.Created(c, note)
}

// DeleteStudentNote 删除学生备注
// DELETE /api/v1/student-notes/:id
func (h *CommunityHandler) DeleteStudentNote(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "备注ID不能为空")
		return
	}

	if err := h.communitySvc.DeleteStudentNote(c.Request.Context(), id); err != nil {
		h.handleCommunityError(c, err)
		return
	}

	response.OK(c, nil)
}

// ListStudentNotes 某学生的备注列表
// GET /api/v1/student-notes?student_id=xxx
func (h *CommunityHandler) ListStudentNotes(c *gin.Context) {
	studentID := c.Query("student_id")
	if studentID == "" {
		response.BadRequest(c, 10001, "student_id 不能为空")
		return
	}

	notes, err := h.communitySvc.ListStudentNotes(c.Request.Context(), studentID)
	if err != nil {
		h.handleCommunityError(c, err)
		return
	}

	response.OK(c, gin.H{"list": notes})
}

// handleCommunityError 统一处理社区模块业务错误
func (h *CommunityHandler) handleCommunityError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrEventNotFound):
		response.NotFound(c, 17001, "活动不存在")
	case errors.Is(err, service.ErrEventTimeInvalid):
		response.BadRequest(c, 17002, "活动时间无效")
	case errors.Is(err, service.ErrTargetNotStudent):
		response.BadRequest(c, 14003, "目标用户不是学生")
	case errors.Is(err, service.ErrUserNotFound):
		response.NotFound(c, 12001, "用户不存在")
	case errors.Is(err, service.ErrNoActivePeriod):
		response.BadRequest(c, 13004, "当前没有激活的学期")
	default:
		response.InternalError(c)
	}
}
