package middleware

import (
	"errors"
	"strings"

	"community-console-service/internal/domain/services"
	"community-console-service/internal/domain/services/gate"
	"community-console-service/internal/domain/session"
	"community-console-service/internal/error/code"
	"community-console-service/internal/error/response"
	"community-console-service/pkg/logger"

	"github.com/gin-gonic/gin"
)

// SessionKey gin 上下文中保存会话的键
const SessionKey = "session"

// extractToken 从授权头中提取token
func extractToken(authHeader string) string {
	// 检查并移除 "Bearer " 前缀
	if len(authHeader) > 7 && strings.HasPrefix(authHeader, "Bearer ") {
		return authHeader[7:]
	}
	return authHeader
}

// Authenticate 校验控制台令牌并加载会话，失败时要求前端跳转登录页
func Authenticate(auth services.InterfaceAuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := extractToken(c.GetHeader("Authorization"))
		if tokenString == "" {
			response.Abort(c, code.ErrSignInRequired, response.Hint{Redirect: gate.SignInPath})
			return
		}

		sess, err := auth.Authenticate(c.Request.Context(), tokenString)
		if err != nil {
			if errors.Is(err, services.ErrInvalidSessionToken) {
				response.Abort(c, code.ErrTokenInvalid, response.Hint{Redirect: gate.SignInPath})
				return
			}
			logger.Error("Failed to load session: %v", err)
			response.Abort(c, code.ErrUnknown, nil)
			return
		}

		// 存储会话到上下文
		c.Set(SessionKey, sess)
		if identity, ok := sess.GetIdentity(); ok {
			c.Set("userID", identity.ID.String())
			c.Set("role", string(identity.Role))
		}
		c.Request = c.Request.WithContext(session.WithSession(c.Request.Context(), sess))
		c.Next()
	}
}

// CurrentSession 取出 Authenticate 保存的会话
func CurrentSession(c *gin.Context) (*session.Session, bool) {
	v, exists := c.Get(SessionKey)
	if !exists {
		return nil, false
	}
	sess, ok := v.(*session.Session)
	return sess, ok && sess != nil
}
