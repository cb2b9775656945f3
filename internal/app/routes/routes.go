package routes

import (
	"community-console-service/internal/app/controllers"
	"community-console-service/internal/app/middleware"
	"community-console-service/internal/domain/services"
	"community-console-service/internal/domain/services/container"
	"community-console-service/internal/domain/services/gate"
	"community-console-service/internal/domain/services/gateway"
	"community-console-service/internal/domain/session"
	"community-console-service/internal/infrastructure/config"
	"community-console-service/internal/infrastructure/metrics"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"
)

// SetupRouter 初始化并返回配置好的路由
func SetupRouter(db *gorm.DB, cfg *config.Config, redisClient *redis.Client) *gin.Engine {
	// 创建服务容器
	serviceContainer := container.NewServiceContainer(db, cfg, redisClient)
	return NewRouter(serviceContainer, cfg, prometheus.DefaultRegisterer, prometheus.DefaultGatherer)
}

// NewRouter 使用已创建的服务容器组装路由
func NewRouter(container *container.ServiceContainer, cfg *config.Config, reg prometheus.Registerer, gatherer prometheus.Gatherer) *gin.Engine {
	// 初始化 Gin
	r := gin.Default()

	// 请求ID与 CORS
	r.Use(middleware.RequestID())
	r.Use(middleware.CORS(cfg.CORSAllowOrigin))

	// 指标
	metrics.Register(reg)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	// 注册路由
	registerRoutes(r, container, cfg)
	return r
}

// registerRoutes 配置所有API路由
func registerRoutes(
	r *gin.Engine,
	container *container.ServiceContainer,
	cfg *config.Config,
) {
	// API 路由根路径
	api := r.Group("/api")
	api.Use(middleware.IPRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst))

	// 注册公共路由
	registerPublicRoutes(api, container)
	// 注册需要认证的路由
	registerAuthenticatedRoutes(api, container)
}

// registerPublicRoutes 注册公共路由
func registerPublicRoutes(
	api *gin.RouterGroup,
	container *container.ServiceContainer,
) {
	// 健康检查路由
	api.GET("/ping", controllers.HandleHealthFunc(container, "ping"))
	api.GET("/health/status", controllers.HandleHealthFunc(container, "status"))

	// 登录路由，按IP和路径组合限流，每秒1个请求，最多突发5个
	api.POST("/auth/signin", middleware.CombinedRateLimiter(1, 5), controllers.HandleAuthFunc(container, "signIn"))
}

// registerAuthenticatedRoutes 注册需要认证的路由
func registerAuthenticatedRoutes(
	api *gin.RouterGroup,
	container *container.ServiceContainer,
) {
	authService := container.GetService("auth").(services.InterfaceAuthService)
	g := container.GetService("gate").(*gate.Gate)
	gw := container.GetService("gateway").(*gateway.Gateway)

	// 添加认证中间件
	auth := api.Group("/")
	auth.Use(middleware.Authenticate(authService))

	// 会话
	auth.POST("/auth/signout", controllers.HandleAuthFunc(container, "signOut"))
	auth.GET("/session", controllers.HandleAuthFunc(container, "session"))
	auth.GET("/gate", controllers.HandleGateFunc(container, "evaluate"))

	// 统计
	auth.GET("/dashboard/stats", middleware.RequireRoute(g, gate.DashboardPath), controllers.HandleDashboardFunc(container, "stats"))
	auth.GET("/admin/report",
		middleware.RequireRoute(g, "/admin/report"),
		middleware.RequireCapability(session.Token(session.ResourceReport, session.ActionRead)),
		controllers.HandleDashboardFunc(container, "report"))

	// 个人档案
	auth.GET("/home", middleware.RequireRoute(g, "/home"), controllers.HandleProfileFunc(container, "home"))
	auth.POST("/profile/setup", middleware.RequireRoute(g, gate.ProfileSetupPath), controllers.HandleProfileFunc(container, "setup"))

	// 入户申请：创建走个人档案流程，其余操作走通用代理
	joinGroup := auth.Group("/join-requests")
	joinGroup.POST("",
		middleware.RequireRoute(g, "/join-household"),
		middleware.RequireCapability(session.Token(session.ResourceJoinRequest, session.ActionCreate)),
		controllers.HandleProfileFunc(container, "joinHousehold"))
	registerResourceRoutes(joinGroup, container, gw.JoinRequests, session.ResourceJoinRequest, false)

	// 上游资源代理
	registerResourceRoutes(auth.Group("/residents"), container, gw.Residents, session.ResourceResident, true)
	registerResourceRoutes(auth.Group("/households"), container, gw.Households, session.ResourceHousehold, true)
	registerResourceRoutes(auth.Group("/temporary-stays"), container, gw.TemporaryStays, session.ResourceTemporaryStay, true)
	registerResourceRoutes(auth.Group("/temporary-absences"), container, gw.TemporaryAbsences, session.ResourceTemporaryAbsence, true)
	registerResourceRoutes(auth.Group("/fee-schedules"), container, gw.FeeSchedules, session.ResourceFeeSchedule, true)
	registerResourceRoutes(auth.Group("/receipts"), container, gw.Receipts, session.ResourceReceipt, true)

	// 账号管理
	userGroup := auth.Group("/users")
	userGroup.Use(middleware.RequireRoute(g, "/users"))
	userGroup.GET("", middleware.RequireCapability(session.Token(session.ResourceUser, session.ActionRead)), controllers.HandleResourceFunc(container, gw.Users, "list"))
	userGroup.GET("/:id", middleware.RequireCapability(session.Token(session.ResourceUser, session.ActionRead)), controllers.HandleResourceFunc(container, gw.Users, "get"))
	userGroup.PATCH("/:id/role", middleware.RequireCapability(session.Token(session.ResourceUser, session.ActionUpdate)), controllers.HandleUserFunc(container, "updateRole"))
	userGroup.PATCH("/:id/status", middleware.RequireCapability(session.Token(session.ResourceUser, session.ActionUpdate)), controllers.HandleUserFunc(container, "updateStatus"))

	// 操作日志
	auth.GET("/operation-logs",
		middleware.RequireCapability(session.Token(session.ResourceOperationLog, session.ActionRead)),
		controllers.HandleOperationLogFunc(container, "list"))
}

// registerResourceRoutes 注册一组 CRUD 代理路由，每个方法对应一个权限
func registerResourceRoutes[T any](
	group *gin.RouterGroup,
	container *container.ServiceContainer,
	resource *gateway.Resource[T],
	name string,
	withCreate bool,
) {
	read := middleware.RequireCapability(session.Token(name, session.ActionRead))

	group.GET("", read, controllers.HandleResourceFunc(container, resource, "list"))
	group.GET("/:id", read, controllers.HandleResourceFunc(container, resource, "get"))
	if withCreate {
		group.POST("", middleware.RequireCapability(session.Token(name, session.ActionCreate)), controllers.HandleResourceFunc(container, resource, "create"))
	}
	group.PUT("/:id", middleware.RequireCapability(session.Token(name, session.ActionUpdate)), controllers.HandleResourceFunc(container, resource, "update"))
	group.DELETE("/:id", middleware.RequireCapability(session.Token(name, session.ActionDelete)), controllers.HandleResourceFunc(container, resource, "delete"))
}
