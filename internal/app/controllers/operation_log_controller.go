package controllers

import (
	"community-console-service/internal/domain/models"
	"community-console-service/internal/domain/services"
	"community-console-service/internal/domain/services/container"
	"community-console-service/internal/error/code"
	"community-console-service/internal/error/response"
	"community-console-service/pkg/logger"

	"github.com/gin-gonic/gin"
)

// OperationLogController 操作日志查询
type OperationLogController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

// NewOperationLogController 创建操作日志控制器
func NewOperationLogController(ctx *gin.Context, container *container.ServiceContainer) *OperationLogController {
	return &OperationLogController{
		Ctx:       ctx,
		Container: container,
	}
}

// OperationLogQuery 查询参数
type OperationLogQuery struct {
	models.PaginationQuery
	OperationType string `form:"operation_type"`
}

// HandleOperationLogFunc 返回一个处理操作日志请求的Gin处理函数
func HandleOperationLogFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewOperationLogController(ctx, container)

		switch method {
		case "list":
			controller.List()
		default:
			response.FailWithMessage(ctx, code.ErrBind, "无效的方法", nil)
		}
	}
}

// List 分页获取操作日志
// @Summary      List operation logs
// @Tags         OperationLogs
// @Produce      json
// @Security     BearerAuth
// @Param        page           query int    false "Page number"     default(1)
// @Param        page_size      query int    false "Items per page"  default(20)
// @Param        operation_type query string false "Filter by operation type"
// @Success      200  {object}  response.Response
// @Router       /operation-logs [get]
func (c *OperationLogController) List() {
	var query OperationLogQuery
	if err := c.Ctx.ShouldBindQuery(&query); err != nil {
		response.FailWithMessage(c.Ctx, code.ErrBind, "无效的查询参数", nil)
		return
	}
	if query.Page <= 0 {
		query.Page = 1
	}
	if query.PageSize <= 0 || query.PageSize > 100 {
		query.PageSize = 20
	}

	opLog := c.Container.GetService("operation_log").(services.InterfaceOperationLogService)
	logs, total, err := opLog.List(query.Page, query.PageSize, query.OperationType)
	if err != nil {
		logger.Error("Failed to list operation logs: %v", err)
		response.Fail(c.Ctx, code.ErrDatabase, nil)
		return
	}

	response.Success(c.Ctx, gin.H{
		"items":      logs,
		"pagination": models.NewPaginationResult(total, query.Page, query.PageSize),
	})
}
