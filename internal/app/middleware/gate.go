package middleware

import (
	"community-console-service/internal/domain/services/gate"
	"community-console-service/internal/domain/services/linkage"
	"community-console-service/internal/domain/session"
	"community-console-service/internal/error/code"
	"community-console-service/internal/error/response"

	"github.com/gin-gonic/gin"
)

// ProfileChainKey gin 上下文中保存已解析档案链的键
const ProfileChainKey = "profileChain"

// RequireRoute 按页面路由的访问策略拦截接口
func RequireRoute(g *gate.Gate, route string) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, _ := CurrentSession(c)
		decision := g.EvaluatePath(c.Request.Context(), sess, route)
		if !decision.Allowed() {
			response.GateDecision(c, decision)
			c.Abort()
			return
		}
		if decision.Chain != nil {
			c.Set(ProfileChainKey, *decision.Chain)
		}
		c.Next()
	}
}

// CurrentChain 取出访问检查时已解析的档案链
func CurrentChain(c *gin.Context) (linkage.Chain, bool) {
	v, exists := c.Get(ProfileChainKey)
	if !exists {
		return linkage.Chain{}, false
	}
	chain, ok := v.(linkage.Chain)
	return chain, ok
}

// RequireCapability 要求会话拥有指定权限
func RequireCapability(capability session.Capability) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, ok := CurrentSession(c)
		if !ok {
			response.Abort(c, code.ErrSignInRequired, response.Hint{Redirect: gate.SignInPath})
			return
		}
		if !sess.HasCapability(capability) {
			response.Abort(c, code.ErrForbidden, response.Hint{
				Redirect: gate.DashboardPath,
				Notice:   "缺少权限 " + string(capability),
			})
			return
		}
		c.Next()
	}
}
