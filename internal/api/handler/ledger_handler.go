package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"bilgeverse/backend/internal/dto"
	"bilgeverse/backend/internal/service"
	"bilgeverse/backend/pkg/response"
)

// LedgerHandler 积分/经验账本 HTTP 处理器
type LedgerHandler struct {
	ledgerSvc service.LedgerService
}

// NewLedgerHandler 创建 LedgerHandler
func NewLedgerHandler(ledgerSvc service.LedgerService) *LedgerHandler {
	return &LedgerHandler{ledgerSvc: ledgerSvc}
}

// AwardPoints 授予/扣减积分
// POST /api/v1/points/award
func (h *LedgerHandler) AwardPoints(c *gin.Context) {
	var req dto.AwardPointsRequest
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

	balance, err := h.ledgerSvc.AwardPoints(c.Request.Context(), &req, callerID, callerRole)
	if err != nil {
		h.handleLedgerError(c, err)
		return
	}

	response.OK(c, balance)
}

// AwardExperience 授予/扣减经验
// POST /api/v1/experience/award
func (h *LedgerHandler) AwardExperience(c *gin.Context) {
	var req dto.AwardExperienceRequest
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

	balance, err := h.ledgerSvc.AwardExperience(c.Request.Context(), &req, callerID, callerRole)
	if err != nil {
		h.handleLedgerError(c, err)
		return
	}

	response.OK(c, balance)
}

// ListPointsTransactions 积分流水列表（分页）
// GET /api/v1/points/transactions
func (h *LedgerHandler) ListPointsTransactions(c *gin.Context) {
	var req dto.TransactionListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	txs, total, err := h.ledgerSvc.ListPointsTransactions(c.Request.Context(), &req)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OKPage(c, txs, total, req.GetPage(), req.GetPageSize())
}

// ListExperienceTransactions 经验流水列表（分页）
// GET /api/v1/experience/transactions
func (h *LedgerHandler) ListExperienceTransactions(c *gin.Context) {
	var req dto.TransactionListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	txs, total, err := h.ledgerSvc.ListExperienceTransactions(c.Request.Context(), &req)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OKPage(c, txs, total, req.GetPage(), req.GetPageSize())
}

// Recalculate 从流水重算全体学生余额（管理员维护操作）
// POST /api/v1/points/recalculate
func (h *LedgerHandler) Recalculate(c *gin.Context) {
	result, err := h.ledgerSvc.Recalculate(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, result)
}

// handleLedgerError 统一处理账本模块业务错误
func (h *LedgerHandler) handleLedgerError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrAmountZero):
		response.BadRequest(c, 14001, "金额不能为 0")
	case errors.Is(err, service.ErrUserNotFound):
		response.NotFound(c, 12001, "用户不存在")
	case errors.Is(err, service.ErrNoActivePeriod):
		response.BadRequest(c, 13004, "当前没有激活的学期")
	case errors.Is(err, service.ErrNotYourStudent):
		response.Forbidden(c, 14002, "只能给自己名下的学生操作")
	case errors.Is(err, service.ErrTargetNotStudent):
		response.BadRequest(c, 14003, "目标用户不是学生")
	default:
		response.InternalError(c)
	}
}
