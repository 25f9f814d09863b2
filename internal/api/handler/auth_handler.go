package handler

import (
	"github.com/gin-gonic/gin"

	"lessonloop/backend/internal/dto"
	"lessonloop/backend/internal/service"
	"lessonloop/backend/pkg/jwt"
	"lessonloop/backend/pkg/response"
)

// AuthHandler 认证相关接口
type AuthHandler struct {
	svc service.AuthService
}

func NewAuthHandler(svc service.AuthService) *AuthHandler {
	return &AuthHandler{svc: svc}
}

// Login POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 40001, "请求参数无效: "+err.Error())
		return
	}
	resp, err := h.svc.Login(c.Request.Context(), &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.OK(c, resp)
}

// Logout POST /api/v1/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	v, ok := c.Get(ContextKeyClaims)
	if !ok {
		response.Unauthorized(c, 40102, "未登录")
		return
	}
	claims, ok := v.(*jwt.Claims)
	if !ok {
		response.Unauthorized(c, 40102, "未登录")
		return
	}
	if err := h.svc.Logout(c.Request.Context(), claims); err != nil {
		handleServiceError(c, err)
		return
	}
	response.OK(c, nil)
}

// Me GET /api/v1/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	resp, err := h.svc.GetCurrentUser(c.Request.Context(), MustGetUserID(c))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.OK(c, resp)
}

// ChangePassword PUT /api/v1/auth/password
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var req dto.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 40001, "请求参数无效: "+err.Error())
		return
	}
	if err := h.svc.ChangePassword(c.Request.Context(), MustGetUserID(c), &req); err != nil {
		handleServiceError(c, err)
		return
	}
	response.OK(c, nil)
}
