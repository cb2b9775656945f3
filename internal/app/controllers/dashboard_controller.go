package controllers

import (
	"fmt"
	"net/http"

	"community-console-service/internal/app/middleware"
	"community-console-service/internal/domain/services/container"
	"community-console-service/internal/domain/services/reporting"
	"community-console-service/internal/domain/session"
	"community-console-service/internal/error/code"
	"community-console-service/internal/error/response"
	"community-console-service/pkg/logger"

	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// DashboardController 仪表盘统计和管理报表
type DashboardController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

// NewDashboardController 创建统计控制器
func NewDashboardController(ctx *gin.Context, container *container.ServiceContainer) *DashboardController {
	return &DashboardController{
		Ctx:       ctx,
		Container: container,
	}
}

// HandleDashboardFunc 返回一个处理统计请求的Gin处理函数
func HandleDashboardFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewDashboardController(ctx, container)

		switch method {
		case "stats":
			controller.Stats()
		case "report":
			controller.Report()
		default:
			response.FailWithMessage(ctx, code.ErrBind, "无效的方法", nil)
		}
	}
}

func (c *DashboardController) reporting() *reporting.Service {
	return c.Container.GetService("reporting").(*reporting.Service)
}

// markStale 有更新的请求已经开始时提示前端丢弃本次结果
func (c *DashboardController) markStale(current bool) {
	if !current {
		c.Ctx.Header("X-View-Stale", "true")
	}
}

// 1. Stats 仪表盘统计
// @Summary      Dashboard statistics
// @Description  Gender, age and permit status distributions. Fails as a whole when any source fetch fails.
// @Tags         Dashboard
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=reporting.StatsSnapshot}
// @Failure      502  {object}  response.Response
// @Router       /dashboard/stats [get]
func (c *DashboardController) Stats() {
	sess, ok := middleware.CurrentSession(c.Ctx)
	if !ok {
		response.Unauthorized(c.Ctx)
		return
	}

	snap, current, err := c.reporting().LoadDashboard(c.Ctx.Request.Context(), sess.ID, sess.Token)
	if err != nil {
		response.UpstreamError(c.Ctx, err, nil)
		return
	}
	c.markStale(current)
	response.Success(c.Ctx, snap)
}

// 2. Report 管理报表
// @Summary      Administrative report
// @Description  Statistics plus fee collection summary; format=xlsx downloads a workbook
// @Tags         Dashboard
// @Produce      json
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security     BearerAuth
// @Param        format query string false "json (default) or xlsx"
// @Success      200  {object}  response.Response{data=reporting.Report}
// @Failure      403  {object}  response.Response
// @Failure      502  {object}  response.Response
// @Router       /admin/report [get]
func (c *DashboardController) Report() {
	sess, ok := middleware.CurrentSession(c.Ctx)
	if !ok {
		response.Unauthorized(c.Ctx)
		return
	}

	format := c.Ctx.DefaultQuery("format", "json")
	if format != "json" && format != "xlsx" {
		response.ParamError(c.Ctx, "format 只支持 json 或 xlsx")
		return
	}
	if format == "xlsx" && !sess.HasCapability(session.Token(session.ResourceReport, session.ActionExport)) {
		response.Fail(c.Ctx, code.ErrForbidden, nil)
		return
	}

	report, current, err := c.reporting().LoadReport(c.Ctx.Request.Context(), sess.ID, sess.Token)
	if err != nil {
		response.UpstreamError(c.Ctx, err, nil)
		return
	}
	c.markStale(current)

	if format == "json" {
		response.Success(c.Ctx, report)
		return
	}

	data, err := reporting.ExportXLSX(report)
	if err != nil {
		logger.Error("Failed to export report: %v", err)
		response.Fail(c.Ctx, code.ErrExportFailed, nil)
		return
	}
	filename := fmt.Sprintf("bao-cao-%s.xlsx", report.GeneratedAt.Format("20060102-150405"))
	c.Ctx.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Ctx.Data(http.StatusOK, xlsxContentType, data)
}
