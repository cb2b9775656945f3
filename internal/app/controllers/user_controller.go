package controllers

import (
	"fmt"

	"community-console-service/internal/app/middleware"
	"community-console-service/internal/domain/models"
	"community-console-service/internal/domain/services/container"
	"community-console-service/internal/domain/services/gateway"
	"community-console-service/internal/error/code"
	"community-console-service/internal/error/response"

	"github.com/gin-gonic/gin"
)

// UserController 账号角色和状态管理
type UserController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

// NewUserController 创建账号控制器
func NewUserController(ctx *gin.Context, container *container.ServiceContainer) *UserController {
	return &UserController{
		Ctx:       ctx,
		Container: container,
	}
}

// UpdateRoleRequest 修改角色
type UpdateRoleRequest struct {
	Role models.Role `json:"role" binding:"required" example:"accountant"`
}

// UpdateStatusRequest 锁定或解锁账号
type UpdateStatusRequest struct {
	Status models.UserStatus `json:"status" binding:"required" example:"locked"`
}

// HandleUserFunc 返回一个处理账号请求的Gin处理函数
func HandleUserFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewUserController(ctx, container)

		switch method {
		case "updateRole":
			controller.UpdateRole()
		case "updateStatus":
			controller.UpdateStatus()
		default:
			response.FailWithMessage(ctx, code.ErrBind, "无效的方法", nil)
		}
	}
}

// 1. UpdateRole 修改账号角色
// @Summary      Change user role
// @Tags         Users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "User ID"
// @Param        request body UpdateRoleRequest true "New role"
// @Success      200  {object}  response.Response{data=models.User}
// @Failure      400  {object}  response.Response
// @Failure      403  {object}  response.Response
// @Router       /users/{id}/role [patch]
func (c *UserController) UpdateRole() {
	sess, ok := middleware.CurrentSession(c.Ctx)
	if !ok {
		response.Unauthorized(c.Ctx)
		return
	}

	var req UpdateRoleRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.FailWithMessage(c.Ctx, code.ErrBind, "无效的请求参数", nil)
		return
	}
	if !req.Role.Valid() {
		response.Fail(c.Ctx, code.ErrInvalidRole, req)
		return
	}

	id := models.FlexibleID(c.Ctx.Param("id"))
	gw := c.Container.GetService("gateway").(*gateway.Gateway)
	user, err := gw.UpdateUserRole(c.Ctx.Request.Context(), sess.Token, id, req.Role)
	recordOperation(c.Ctx, c.Container, &models.OperationLog{
		OperationType: "user_role_change",
		ActorID:       actorID(sess.Identity),
		TargetType:    "user",
		TargetID:      id.String(),
		Details:       detailsOf(fmt.Sprintf("role=%s", req.Role), err),
		Success:       err == nil,
	})
	if err != nil {
		response.UpstreamError(c.Ctx, err, req)
		return
	}
	response.Success(c.Ctx, user)
}

// 2. UpdateStatus 锁定或解锁账号
// @Summary      Change user status
// @Tags         Users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "User ID"
// @Param        request body UpdateStatusRequest true "New status"
// @Success      200  {object}  response.Response{data=models.User}
// @Failure      400  {object}  response.Response
// @Failure      403  {object}  response.Response
// @Router       /users/{id}/status [patch]
func (c *UserController) UpdateStatus() {
	sess, ok := middleware.CurrentSession(c.Ctx)
	if !ok {
		response.Unauthorized(c.Ctx)
		return
	}

	var req UpdateStatusRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.FailWithMessage(c.Ctx, code.ErrBind, "无效的请求参数", nil)
		return
	}
	if !req.Status.Valid() {
		response.FailWithMessage(c.Ctx, code.ErrValidation, "状态只能是 active 或 locked", req)
		return
	}

	id := models.FlexibleID(c.Ctx.Param("id"))
	if identity, _ := sess.GetIdentity(); identity != nil && identity.ID == id && req.Status == models.UserStatusLocked {
		response.FailWithMessage(c.Ctx, code.ErrValidation, "不能锁定自己的账号", req)
		return
	}

	gw := c.Container.GetService("gateway").(*gateway.Gateway)
	user, err := gw.UpdateUserStatus(c.Ctx.Request.Context(), sess.Token, id, req.Status)
	recordOperation(c.Ctx, c.Container, &models.OperationLog{
		OperationType: "user_status_change",
		ActorID:       actorID(sess.Identity),
		TargetType:    "user",
		TargetID:      id.String(),
		Details:       detailsOf(fmt.Sprintf("status=%s", req.Status), err),
		Success:       err == nil,
	})
	if err != nil {
		response.UpstreamError(c.Ctx, err, req)
		return
	}
	response.Success(c.Ctx, user)
}
