package controllers

import (
	"time"

	"community-console-service/internal/domain/services/container"
	"community-console-service/internal/domain/services/gateway"
	"community-console-service/internal/error/code"
	"community-console-service/internal/error/response"
	"community-console-service/internal/infrastructure/config"

	"github.com/gin-gonic/gin"
)

var startedAt = time.Now()

// HealthCheckController 健康检查控制器
type HealthCheckController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

// NewHealthCheckController 创建健康检查控制器实例
func NewHealthCheckController(ctx *gin.Context, container *container.ServiceContainer) *HealthCheckController {
	return &HealthCheckController{
		Ctx:       ctx,
		Container: container,
	}
}

// HandleHealthFunc 返回一个处理健康检查请求的Gin处理函数
func HandleHealthFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewHealthCheckController(ctx, container)

		switch method {
		case "ping":
			controller.Ping()
		case "status":
			controller.Status()
		default:
			response.FailWithMessage(ctx, code.ErrBind, "无效的方法", nil)
		}
	}
}

// Ping 健康检查端点
// @Summary      Ping
// @Tags         Health
// @Produce      json
// @Success      200  {object}  response.Response
// @Router       /ping [get]
func (h *HealthCheckController) Ping() {
	response.Success(h.Ctx, gin.H{
		"status":  "healthy",
		"message": "pong",
	})
}

// Status 运行状态
// @Summary      Service status
// @Tags         Health
// @Produce      json
// @Success      200  {object}  response.Response
// @Router       /health/status [get]
func (h *HealthCheckController) Status() {
	cfg := h.Container.GetService("config").(*config.Config)
	gw := h.Container.GetService("gateway").(*gateway.Gateway)

	response.Success(h.Ctx, gin.H{
		"status":        "healthy",
		"environment":   cfg.EnvType,
		"upstream":      gw.BaseURL(),
		"redis_enabled": cfg.RedisEnabled,
		"db_enabled":    h.Container.GetDB() != nil,
		"uptime":        time.Since(startedAt).Round(time.Second).String(),
	})
}
