package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"bilgeverse/backend/internal/dto"
	"bilgeverse/backend/internal/service"
	"bilgeverse/backend/pkg/response"
)

// StoreHandler 奖励商店 HTTP 处理器
type StoreHandler struct {
	storeSvc service.StoreService
}

// NewStoreHandler 创建 StoreHandler
func NewStoreHandler(storeSvc service.StoreService) *StoreHandler {
	return &StoreHandler{storeSvc: storeSvc}
}

// ── 商品管理 ──

// CreateItem 创建商品
// POST /api/v1/store/items
func (h *StoreHandler) CreateItem(c *gin.Context) {
	var req dto.CreateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	item, err := h.storeSvc.CreateItem(c.Request.Context(), &req, callerID)
	if err != nil {
		h.handleStoreError(c, err)
		return
	}

	response.Created(c, item)
}

// UpdateItem 更新商品
// PUT /api/v1/store/items/:id
func (h *StoreHandler) UpdateItem(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "商品ID不能为空")
		return
	}

	var req dto.UpdateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	item, err := h.storeSvc.UpdateItem(c.Request.Context(), id, &req, callerID)
	if err != nil {
		h.handleStoreError(c, err)
		return
	}

	response.OK(c, item)
}

// DeleteItem 删除商品
// DELETE /api/v1/store/items/:id
func (h *StoreHandler) DeleteItem(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "商品ID不能为空")
		return
	}

	if err := h.storeSvc.DeleteItem(c.Request.Context(), id); err != nil {
		h.handleStoreError(c, err)
		return
	}

	response.OK(c, nil)
}

// ListItems 商品列表
// GET /api/v1/store/items?active_only=true
func (h *StoreHandler) ListItems(c *gin.Context) {
	activeOnly := c.Query("active_only") == "true"

	items, err := h.storeSvc.ListItems(c.Request.Context(), activeOnly)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, gin.H{"list": items})
}

// ── 兑换申请 ──

// CreateRequest 学生发起兑换申请
// POST /api/v1/store/requests
func (h *StoreHandler) CreateRequest(c *gin.Context) {
	var req dto.CreateItemRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	request, err := h.storeSvc.CreateRequest(c.Request.Context(), &req, callerID)
	if err != nil {
		h.handleStoreError(c, err)
		return
	}

	response.Created(c, request)
}

// ListRequests 兑换申请列表（分页）
// GET /api/v1/store/requests
func (h *StoreHandler) ListRequests(c *gin.Context) {
	var req dto.ItemRequestListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	requests, total, err := h.storeSvc.ListRequests(c.Request.Context(), &req)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OKPage(c, requests, total, req.GetPage(), req.GetPageSize())
}

// ReviewRequest 审核兑换申请
// PUT /api/v1/store/requests/:id/review
func (h *StoreHandler) ReviewRequest(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "申请ID不能为空")
		return
	}

	var req dto.ReviewItemRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	reviewerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	request, err := h.storeSvc.ReviewRequest(c.Request.Context(), id, &req, reviewerID)
	if err != nil {
		h.handleStoreError(c, err)
		return
	}

	response.OK(c, request)
}

// handleStoreError 统一处理商店模块业务错误
func (h *StoreHandler) handleStoreError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrItemNotFound):
		response.NotFound(c, 16001, "商品不存在")
	case errors.Is(err, service.ErrItemInactive):
		response.BadRequest(c, 16002, "商品已下架")
	case errors.Is(err, service.ErrItemOutOfStock):
		response.BadRequest(c, 16003, "商品库存不足")
	case errors.Is(err, service.ErrInsufficientPoints):
		response.BadRequest(c, 16004, "积分余额不足")
	case errors.Is(err, service.ErrRequestNotFound):
		response.NotFound(c, 16005, "兑换申请不存在")
	case errors.Is(err, service.ErrRequestAlreadyReviewed):
		response.BadRequest(c, 16006, "兑换申请已审核，结果不可更改")
	case errors.Is(err, service.ErrUserNotFound):
		response.NotFound(c, 12001, "用户不存在")
	case errors.Is(err, service.ErrNoActivePeriod):
		response.BadRequest(c, 13004, "当前没有激活的学期")
	default:
		response.InternalError(c)
	}
}
