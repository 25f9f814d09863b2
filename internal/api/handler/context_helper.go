package handler

import "github.com/gin-gonic/gin"

// 认证中间件写入的上下文键
const (
	ContextKeyUserID = "user_id"
	ContextKeyRole   = "role"
	ContextKeyClaims = "claims"
)

// MustGetUserID 读取当前登录用户 ID（仅在认证路由内调用）
func MustGetUserID(c *gin.Context) string {
	if v, ok := c.Get(ContextKeyUserID); ok {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}

// MustGetRole 读取当前登录用户角色
func MustGetRole(c *gin.Context) string {
	if v, ok := c.Get(ContextKeyRole); ok {
		if role, ok := v.(string); ok {
			return role
		}
	}
	return ""
}
