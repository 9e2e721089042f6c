package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"faculty-schedules/backend/internal/api/middleware"
	"faculty-schedules/backend/pkg/jwt"
	"faculty-schedules/backend/pkg/response"
)

// TokenRevoker 令牌吊销，由 pkg/redis.Client 实现
type TokenRevoker interface {
	BlacklistToken(ctx context.Context, jti string, ttl time.Duration) error
}

// AuthHandler 当前会话相关接口
//
// 登录与签发由外部身份服务负责，这里只提供身份查询与令牌吊销。
type AuthHandler struct {
	revoker TokenRevoker
}

// NewAuthHandler 创建 AuthHandler；revoker 为 nil 时吊销接口返回 503
func NewAuthHandler(revoker TokenRevoker) *AuthHandler {
	return &AuthHandler{revoker: revoker}
}

// Me 当前令牌中的身份信息
// GET /api/v1/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	role, ok := MustGetRole(c)
	if !ok {
		return
	}

	response.OK(c, gin.H{
		"user_id":    userID,
		"role":       role,
		"department": GetDepartment(c),
	})
}

// Logout 吊销当前令牌，剩余有效期内加入黑名单
// POST /api/v1/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	claims, ok := c.Get(middleware.CtxClaims)
	tc, _ := claims.(*jwt.Claims)
	if !ok || tc == nil {
		response.Unauthorized(c, response.CodeUnauthorized, "未认证")
		return
	}
	if h.revoker == nil {
		response.Error(c, http.StatusServiceUnavailable, response.CodeInternal, "令牌吊销暂不可用")
		return
	}
	if tc.ID == "" {
		response.BadRequest(c, response.CodeBadRequest, "令牌缺少 jti，无法吊销")
		return
	}

	if err := h.revoker.BlacklistToken(c.Request.Context(), tc.ID, tc.RemainingTTL(time.Now())); err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, nil)
}
