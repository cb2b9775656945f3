package controllers

import (
	"errors"
	"time"

	"community-console-service/internal/app/middleware"
	"community-console-service/internal/domain/models"
	"community-console-service/internal/domain/services"
	"community-console-service/internal/domain/services/container"
	"community-console-service/internal/domain/services/gateway"
	"community-console-service/internal/error/code"
	"community-console-service/internal/error/response"

	"github.com/gin-gonic/gin"
)

// InterfaceAuthController 定义认证控制器接口
type InterfaceAuthController interface {
	SignIn()
	SignOut()
	Session()
}

// AuthController 处理登录、退出和会话查询
type AuthController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

// NewAuthController 创建一个新的认证控制器
func NewAuthController(ctx *gin.Context, container *container.ServiceContainer) *AuthController {
	return &AuthController{
		Ctx:       ctx,
		Container: container,
	}
}

// SignInRequest 表示登录请求
type SignInRequest struct {
	Username string `json:"username" binding:"required" example:"totruong01"`
	Password string `json:"password" binding:"required" example:"123456"`
}

// SignInData 表示登录成功后返回的数据
type SignInData struct {
	Token        string           `json:"token" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
	ExpiresAt    string           `json:"expires_at" example:"2024-01-02T00:00:00Z"`
	Identity     *models.Identity `json:"identity"`
	Capabilities []string         `json:"capabilities"`
}

// SessionData 当前会话
type SessionData struct {
	SessionID    string           `json:"session_id"`
	Identity     *models.Identity `json:"identity"`
	Capabilities []string         `json:"capabilities"`
	HasProfile   bool             `json:"has_profile"`
}

// HandleAuthFunc 返回一个处理认证请求的Gin处理函数
func HandleAuthFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewAuthController(ctx, container)

		switch method {
		case "signIn":
			controller.SignIn()
		case "signOut":
			controller.SignOut()
		case "session":
			controller.Session()
		default:
			response.FailWithMessage(ctx, code.ErrBind, "无效的方法", nil)
		}
	}
}

// 1. SignIn 登录
// @Summary      Sign in
// @Description  Sign in against the community API and receive a console token
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        request body SignInRequest true "Sign-in credentials"
// @Success      200  {object}  response.Response{data=SignInData}
// @Failure      400  {object}  response.Response
// @Failure      401  {object}  response.Response
// @Failure      502  {object}  response.Response
// @Router       /auth/signin [post]
func (c *AuthController) SignIn() {
	var req SignInRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.FailWithMessage(c.Ctx, code.ErrBind, "无效的请求参数", nil)
		return
	}

	authService := c.Container.GetService("auth").(services.InterfaceAuthService)
	result, err := authService.SignIn(c.Ctx.Request.Context(), req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidCredentials):
			response.ParamError(c.Ctx, "用户名和密码不能为空")
		case gateway.IsUnauthorized(err):
			response.Fail(c.Ctx, code.ErrUserPasswordIncorrect, nil)
		default:
			response.UpstreamError(c.Ctx, err, nil)
		}
		return
	}

	identity, _ := result.Session.GetIdentity()
	response.Success(c.Ctx, SignInData{
		Token:        result.Token,
		ExpiresAt:    result.ExpiresAt.UTC().Format(time.RFC3339),
		Identity:     identity,
		Capabilities: result.Session.Capabilities(),
	})
}

// 2. SignOut 退出登录
// @Summary      Sign out
// @Tags         Auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response
// @Router       /auth/signout [post]
func (c *AuthController) SignOut() {
	sess, ok := middleware.CurrentSession(c.Ctx)
	if !ok {
		response.Unauthorized(c.Ctx)
		return
	}

	authService := c.Container.GetService("auth").(services.InterfaceAuthService)
	if err := authService.SignOut(c.Ctx.Request.Context(), sess.ID); err != nil {
		response.FailWithMessage(c.Ctx, code.ErrUnknown, "退出登录失败", nil)
		return
	}
	response.Success(c.Ctx, nil)
}

// 3. Session 当前会话
// @Summary      Current session
// @Description  Identity and granted capability tokens of the current session
// @Tags         Auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=SessionData}
// @Router       /session [get]
func (c *AuthController) Session() {
	sess, ok := middleware.CurrentSession(c.Ctx)
	if !ok {
		response.Unauthorized(c.Ctx)
		return
	}

	identity, _ := sess.GetIdentity()
	response.Success(c.Ctx, SessionData{
		SessionID:    sess.ID,
		Identity:     identity,
		Capabilities: sess.Capabilities(),
		HasProfile:   identity.HasLinkedResident(),
	})
}
