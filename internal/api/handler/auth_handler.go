package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"bilgeverse/backend/config"
	"bilgeverse/backend/internal/dto"
	"bilgeverse/backend/internal/service"
	"bilgeverse/backend/pkg/response"
)

const refreshCookieName = "refresh_token"

// AuthHandler 认证模块 HTTP 处理器
type AuthHandler struct {
	authSvc service.AuthService
	cfg     *config.Config // 可为 nil（测试），此时不写 Cookie
}

// NewAuthHandler 创建 AuthHandler
func NewAuthHandler(authSvc service.AuthService, cfg *config.Config) *AuthHandler {
	return &AuthHandler{authSvc: authSvc, cfg: cfg}
}

// Login 用户登录
// POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.authSvc.Login(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			response.Error(c, http.StatusUnauthorized, 11001, "用户名或密码错误")
			return
		}
		response.InternalError(c)
		return
	}

	h.setRefreshCookie(c, result.RefreshToken, req.RememberMe)
	response.OK(c, result)
}

// RefreshToken 刷新 Token 对
// POST /api/v1/auth/refresh
// Refresh Token 优先从请求体读取，其次从 Cookie
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req dto.RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		cookie, cookieErr := c.Cookie(refreshCookieName)
		if cookieErr != nil || cookie == "" {
			response.BadRequest(c, 10001, "缺少 refresh_token")
			return
		}
		req.RefreshToken = cookie
	}

	result, err := h.authSvc.RefreshToken(c.Request.Context(), req.RefreshToken)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTokenNotRefresh):
			response.Unauthorized(c, 11002, "不是有效的 Refresh Token")
		case errors.Is(err, service.ErrTokenRevoked):
			response.Unauthorized(c, 11003, "Token 已失效，请重新登录")
		default:
			response.Unauthorized(c, 11002, "Token 无效或已过期")
		}
		return
	}

	h.setRefreshCookie(c, result.RefreshToken, false)
	response.OK(c, result)
}

// Logout 用户登出，Refresh Token 加入黑名单并清除 Cookie
// POST /api/v1/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	token, _ := c.Cookie(refreshCookieName)
	if token == "" {
		var req dto.RefreshTokenRequest
		if err := c.ShouldBindJSON(&req); err == nil {
			token = req.RefreshToken
		}
	}

	if token != "" {
		if err := h.authSvc.Logout(c.Request.Context(), token); err != nil {
			response.InternalError(c)
			return
		}
	}

	c.SetCookie(refreshCookieName, "", -1, "/", "", false, true)
	response.OK(c, nil)
}

// GetCurrentUser 获取当前登录用户信息
// GET /api/v1/auth/me
func (h *AuthHandler) GetCurrentUser(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	user, err := h.authSvc.GetCurrentUser(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			response.NotFound(c, 12001, "用户不存在")
			return
		}
		response.InternalError(c)
		return
	}

	response.OK(c, user)
}

// ChangePassword 修改当前用户密码
// PUT /api/v1/auth/password
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var req dto.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.authSvc.ChangePassword(c.Request.Context(), userID, &req); err != nil {
		switch {
		case errors.Is(err, service.ErrOldPasswordWrong):
			response.BadRequest(c, 11004, "原密码不正确")
		case errors.Is(err, service.ErrUserNotFound):
			response.NotFound(c, 12001, "用户不存在")
		default:
			response.InternalError(c)
		}
		return
	}

	response.OK(c, nil)
}

// setRefreshCookie 写入 HttpOnly 的 Refresh Token Cookie
func (h *AuthHandler) setRefreshCookie(c *gin.Context, token string, rememberMe bool) {
	if h.cfg == nil {
		return
	}
	ttl := h.cfg.Auth.RefreshTokenTTLDefault
	if rememberMe {
		ttl = h.cfg.Auth.RefreshTokenTTLRemember
	}
	c.SetCookie(refreshCookieName, token, int(ttl.Seconds()), "/", "", false, true)
}
