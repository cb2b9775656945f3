package controllers

import (
	"community-console-service/internal/app/middleware"
	"community-console-service/internal/domain/services/container"
	"community-console-service/internal/domain/services/gate"
	"community-console-service/internal/error/code"
	"community-console-service/internal/error/response"

	"github.com/gin-gonic/gin"
)

// GateController 页面访问判定
type GateController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

// NewGateController 创建访问判定控制器
func NewGateController(ctx *gin.Context, container *container.ServiceContainer) *GateController {
	return &GateController{
		Ctx:       ctx,
		Container: container,
	}
}

// HandleGateFunc 返回一个处理访问判定请求的Gin处理函数
func HandleGateFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewGateController(ctx, container)

		switch method {
		case "evaluate":
			controller.Evaluate()
		default:
			response.FailWithMessage(ctx, code.ErrBind, "无效的方法", nil)
		}
	}
}

// Evaluate 判定当前会话能否进入某个页面
// @Summary      Evaluate route access
// @Description  ALLOWED 200, REDIRECT to /signin 401, REDIRECT to /dashboard 403, BLOCKED_PROMPT 428
// @Tags         Gate
// @Produce      json
// @Param        route query string true "Console route, e.g. /admin/report"
// @Success      200  {object}  response.Response{data=gate.Decision}
// @Failure      401  {object}  response.Response{data=gate.Decision}
// @Failure      403  {object}  response.Response{data=gate.Decision}
// @Failure      428  {object}  response.Response{data=gate.Decision}
// @Router       /gate [get]
func (c *GateController) Evaluate() {
	route := c.Ctx.Query("route")
	if route == "" || route[0] != '/' {
		response.ParamError(c.Ctx, "route 必须是以 / 开头的页面路径")
		return
	}

	sess, _ := middleware.CurrentSession(c.Ctx)
	g := c.Container.GetService("gate").(*gate.Gate)
	response.GateDecision(c.Ctx, g.EvaluatePath(c.Ctx.Request.Context(), sess, route))
}
