package controllers

import (
	"encoding/json"
	"fmt"

	"community-console-service/internal/app/middleware"
	"community-console-service/internal/domain/models"
	"community-console-service/internal/domain/services"
	"community-console-service/internal/domain/services/container"
	"community-console-service/internal/domain/services/gateway"
	"community-console-service/internal/error/code"
	"community-console-service/internal/error/response"

	"github.com/gin-gonic/gin"
)

// ResourceController 上游资源的通用 CRUD 代理，权限由路由上的 RequireCapability 把关
type ResourceController[T any] struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
	Resource  *gateway.Resource[T]
}

// NewResourceController 创建资源控制器
func NewResourceController[T any](ctx *gin.Context, container *container.ServiceContainer, resource *gateway.Resource[T]) *ResourceController[T] {
	return &ResourceController[T]{
		Ctx:       ctx,
		Container: container,
		Resource:  resource,
	}
}

// HandleResourceFunc 返回一个处理资源请求的Gin处理函数
func HandleResourceFunc[T any](container *container.ServiceContainer, resource *gateway.Resource[T], method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewResourceController(ctx, container, resource)

		switch method {
		case "list":
			controller.List()
		case "get":
			controller.Get()
		case "create":
			controller.Create()
		case "update":
			controller.Update()
		case "delete":
			controller.Delete()
		default:
			response.FailWithMessage(ctx, code.ErrBind, "无效的方法", nil)
		}
	}
}

// List 列表，查询参数原样作为上游过滤条件
func (c *ResourceController[T]) List() {
	sess, ok := middleware.CurrentSession(c.Ctx)
	if !ok {
		response.Unauthorized(c.Ctx)
		return
	}

	items, err := c.Resource.ListAll(c.Ctx.Request.Context(), sess.Token, c.Ctx.Request.URL.Query())
	if err != nil {
		response.UpstreamError(c.Ctx, err, nil)
		return
	}
	response.Success(c.Ctx, items)
}

// Get 详情
func (c *ResourceController[T]) Get() {
	sess, ok := middleware.CurrentSession(c.Ctx)
	if !ok {
		response.Unauthorized(c.Ctx)
		return
	}

	item, err := c.Resource.GetByID(c.Ctx.Request.Context(), sess.Token, models.FlexibleID(c.Ctx.Param("id")))
	if err != nil {
		response.UpstreamError(c.Ctx, err, nil)
		return
	}
	response.Success(c.Ctx, item)
}

// bindPayload 请求体按原样转发给上游
func (c *ResourceController[T]) bindPayload() (map[string]interface{}, bool) {
	var payload map[string]interface{}
	if err := c.Ctx.ShouldBindJSON(&payload); err != nil || payload == nil {
		response.FailWithMessage(c.Ctx, code.ErrBind, "无效的请求参数", nil)
		return nil, false
	}
	return payload, true
}

// Create 创建
func (c *ResourceController[T]) Create() {
	sess, ok := middleware.CurrentSession(c.Ctx)
	if !ok {
		response.Unauthorized(c.Ctx)
		return
	}
	payload, ok := c.bindPayload()
	if !ok {
		return
	}

	created, err := c.Resource.Create(c.Ctx.Request.Context(), sess.Token, payload)
	c.record(sess.Identity, "create", "", payload, err)
	if err != nil {
		response.UpstreamError(c.Ctx, err, payload)
		return
	}
	response.Success(c.Ctx, created)
}

// Update 整体更新
func (c *ResourceController[T]) Update() {
	sess, ok := middleware.CurrentSession(c.Ctx)
	if !ok {
		response.Unauthorized(c.Ctx)
		return
	}
	payload, ok := c.bindPayload()
	if !ok {
		return
	}

	id := models.FlexibleID(c.Ctx.Param("id"))
	updated, err := c.Resource.Update(c.Ctx.Request.Context(), sess.Token, id, payload)
	c.record(sess.Identity, "update", id, payload, err)
	if err != nil {
		response.UpstreamError(c.Ctx, err, payload)
		return
	}
	response.Success(c.Ctx, updated)
}

// Delete 删除
func (c *ResourceController[T]) Delete() {
	sess, ok := middleware.CurrentSession(c.Ctx)
	if !ok {
		response.Unauthorized(c.Ctx)
		return
	}

	id := models.FlexibleID(c.Ctx.Param("id"))
	err := c.Resource.Delete(c.Ctx.Request.Context(), sess.Token, id)
	c.record(sess.Identity, "delete", id, nil, err)
	if err != nil {
		response.UpstreamError(c.Ctx, err, nil)
		return
	}
	response.Success(c.Ctx, nil)
}

// record 写操作日志，如 residents_delete
func (c *ResourceController[T]) record(actor *models.Identity, action string, id models.FlexibleID, payload interface{}, err error) {
	recordOperation(c.Ctx, c.Container, &models.OperationLog{
		OperationType: fmt.Sprintf("%s_%s", c.Resource.Name(), action),
		ActorID:       actorID(actor),
		TargetType:    c.Resource.Name(),
		TargetID:      id.String(),
		Details:       detailsOf(payload, err),
		Success:       err == nil,
	})
}

func actorID(identity *models.Identity) string {
	if identity == nil {
		return ""
	}
	return identity.ID.String()
}

// detailsOf 提交的数据和失败原因
func detailsOf(payload interface{}, err error) string {
	details := map[string]interface{}{}
	if payload != nil {
		details["payload"] = payload
	}
	if err != nil {
		details["error"] = err.Error()
	}
	if len(details) == 0 {
		return ""
	}
	b, _ := json.Marshal(details)
	return string(b)
}

func recordOperation(c *gin.Context, container *container.ServiceContainer, entry *models.OperationLog) {
	entry.IPAddress = c.ClientIP()
	opLog := container.GetService("operation_log").(services.InterfaceOperationLogService)
	opLog.Record(c.Request.Context(), entry)
}
