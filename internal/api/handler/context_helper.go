package handler

import (
	"github.com/gin-gonic/gin"

	"faculty-schedules/backend/internal/api/middleware"
	"faculty-schedules/backend/pkg/response"
)

// MustGetUserID 从 Gin 上下文中安全提取 user_id。
// JWT 中间件未注入时写入 401 响应并返回 false，调用方应直接 return。
func MustGetUserID(c *gin.Context) (string, bool) {
	return mustGetString(c, middleware.CtxUserID)
}

// MustGetRole 从 Gin 上下文中安全提取 role。
func MustGetRole(c *gin.Context) (string, bool) {
	return mustGetString(c, middleware.CtxRole)
}

// GetDepartment 当前用户所属部门，可能为空
func GetDepartment(c *gin.Context) string {
	return c.GetString(middleware.CtxDepartment)
}

func mustGetString(c *gin.Context, key string) (string, bool) {
	s := c.GetString(key)
	if s == "" {
		response.Unauthorized(c, response.CodeUnauthorized, "未认证")
		return "", false
	}
	return s, true
}

// pathID 读取路径参数，为空时写入 400
func pathID(c *gin.Context, name, label string) (string, bool) {
	id := c.Param(name)
	if id == "" {
		response.BadRequest(c, response.CodeBadRequest, label+"不能为空")
		return "", false
	}
	return id, true
}
