package controllers

import (
	"strings"
	"time"

	"community-console-service/internal/app/middleware"
	"community-console-service/internal/domain/models"
	"community-console-service/internal/domain/services"
	"community-console-service/internal/domain/services/container"
	"community-console-service/internal/domain/services/gateway"
	"community-console-service/internal/domain/services/linkage"
	"community-console-service/internal/error/code"
	"community-console-service/internal/error/response"
	"community-console-service/pkg/logger"

	"github.com/gin-gonic/gin"
)

// ProfileController 个人主页、档案完善和入户申请
type ProfileController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

// NewProfileController 创建个人档案控制器
func NewProfileController(ctx *gin.Context, container *container.ServiceContainer) *ProfileController {
	return &ProfileController{
		Ctx:       ctx,
		Container: container,
	}
}

// JoinHouseholdRequestBody 申请加入户口
type JoinHouseholdRequestBody struct {
	HouseholdID    models.FlexibleID `json:"hoKhauId" binding:"required" example:"12"`
	RelationToHead string            `json:"quanHe" binding:"required" example:"Con"`
}

// HandleProfileFunc 返回一个处理个人档案请求的Gin处理函数
func HandleProfileFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewProfileController(ctx, container)

		switch method {
		case "home":
			controller.Home()
		case "setup":
			controller.Setup()
		case "joinHousehold":
			controller.JoinHousehold()
		default:
			response.FailWithMessage(ctx, code.ErrBind, "无效的方法", nil)
		}
	}
}

// 1. Home 个人主页：居民档案及所属户口
// @Summary      Home
// @Description  Linked resident and household. Household is null when it cannot be loaded.
// @Tags         Profile
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=linkage.Chain}
// @Failure      428  {object}  response.Response
// @Router       /home [get]
func (c *ProfileController) Home() {
	sess, ok := middleware.CurrentSession(c.Ctx)
	if !ok {
		response.Unauthorized(c.Ctx)
		return
	}

	// 路由检查已经解析过时直接复用
	chain, ok := middleware.CurrentChain(c.Ctx)
	if !ok {
		identity, _ := sess.GetIdentity()
		resolver := c.Container.GetService("linkage").(*linkage.Resolver)
		chain = resolver.ResolveChain(c.Ctx.Request.Context(), sess.Token, identity)
	}
	if !chain.HasProfile() {
		response.Fail(c.Ctx, code.ErrProfileRequired, nil)
		return
	}
	response.Success(c.Ctx, chain)
}

// 2. Setup 完善个人档案：创建居民并关联到当前账号
// @Summary      Set up profile
// @Description  Creates the resident upstream and links it to the signed-in account
// @Tags         Profile
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body models.Resident true "Resident profile"
// @Success      200  {object}  response.Response{data=models.Resident}
// @Failure      400  {object}  response.Response
// @Router       /profile/setup [post]
func (c *ProfileController) Setup() {
	sess, ok := middleware.CurrentSession(c.Ctx)
	if !ok {
		response.Unauthorized(c.Ctx)
		return
	}
	identity, _ := sess.GetIdentity()
	if identity.HasLinkedResident() {
		response.Fail(c.Ctx, code.ErrProfileAlreadyLinked, nil)
		return
	}

	var req models.Resident
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.FailWithMessage(c.Ctx, code.ErrBind, "无效的请求参数", nil)
		return
	}
	req.ID = ""
	req.FullName = strings.TrimSpace(req.FullName)
	if req.FullName == "" {
		response.FailWithMessage(c.Ctx, code.ErrValidation, "姓名不能为空", req)
		return
	}

	gw := c.Container.GetService("gateway").(*gateway.Gateway)
	created, err := gw.Residents.Create(c.Ctx.Request.Context(), sess.Token, req)
	if err != nil {
		response.UpstreamError(c.Ctx, err, req)
		return
	}
	if created == nil || created.ID.IsZero() {
		logger.Error("Resident created for user %s but upstream returned no id", identity.ID)
		response.Fail(c.Ctx, code.ErrUpstreamUnavailable, nil)
		return
	}

	authService := c.Container.GetService("auth").(services.InterfaceAuthService)
	if _, err := authService.LinkProfile(c.Ctx.Request.Context(), sess, created.ID); err != nil {
		logger.Warning("Resident %s created but linking to user %s failed: %v", created.ID, identity.ID, err)
		response.UpstreamError(c.Ctx, err, req)
		return
	}

	response.Success(c.Ctx, created)
}

// 3. JoinHousehold 申请加入户口
// @Summary      Request to join a household
// @Tags         Profile
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body JoinHouseholdRequestBody true "Target household"
// @Success      200  {object}  response.Response{data=models.JoinHouseholdRequest}
// @Failure      400  {object}  response.Response
// @Failure      428  {object}  response.Response
// @Router       /join-requests [post]
func (c *ProfileController) JoinHousehold() {
	sess, ok := middleware.CurrentSession(c.Ctx)
	if !ok {
		response.Unauthorized(c.Ctx)
		return
	}
	identity, _ := sess.GetIdentity()
	if !identity.HasLinkedResident() {
		response.Fail(c.Ctx, code.ErrProfileRequired, nil)
		return
	}

	var req JoinHouseholdRequestBody
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.FailWithMessage(c.Ctx, code.ErrBind, "无效的请求参数", nil)
		return
	}

	payload := models.JoinHouseholdRequest{
		RequesterResidentID: identity.LinkedResidentID,
		TargetHouseholdID:   req.HouseholdID,
		RelationToHead:      strings.TrimSpace(req.RelationToHead),
		CreatedAt:           &models.Date{Time: time.Now()},
		CreatedByIdentityID: identity.ID,
	}

	gw := c.Container.GetService("gateway").(*gateway.Gateway)
	created, err := gw.JoinRequests.Create(c.Ctx.Request.Context(), sess.Token, payload)
	if err != nil {
		response.UpstreamError(c.Ctx, err, req)
		return
	}
	response.Success(c.Ctx, created)
}
