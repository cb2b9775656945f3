package container

import (
	"context"
	"sync"
	"time"

	"community-console-service/internal/domain/services"
	"community-console-service/internal/domain/services/gate"
	"community-console-service/internal/domain/services/gateway"
	"community-console-service/internal/domain/services/linkage"
	"community-console-service/internal/domain/services/reporting"
	"community-console-service/internal/infrastructure/config"
	"community-console-service/pkg/logger"

	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

// ServiceContainer 管理所有服务的依赖注入
type ServiceContainer struct {
	db     *gorm.DB
	config *config.Config
	redis  *redis.Client

	// 上游接口
	gateway *gateway.Gateway

	// 会话与认证
	jwtService   services.InterfaceJWTService
	sessionStore services.InterfaceSessionStore
	authService  services.InterfaceAuthService

	// 访问控制与统计
	resolver  *linkage.Resolver
	gate      *gate.Gate
	reporting *reporting.Service

	// 操作日志
	operationLogService services.InterfaceOperationLogService

	mu sync.RWMutex
}

// NewServiceContainer 创建新的服务容器；db 和 redisClient 可以为 nil
func NewServiceContainer(db *gorm.DB, cfg *config.Config, redisClient *redis.Client) *ServiceContainer {
	if cfg == nil {
		panic("配置为空")
	}

	// 测试Redis连接，失败时退回进程内会话存储
	if redisClient != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Warning("Redis连接测试失败: %v，将使用进程内会话存储", err)
			redisClient = nil
		}
	}

	return NewServiceContainerWithGateway(db, cfg, redisClient, gateway.New(gateway.NewClient(cfg.UpstreamBaseURL, cfg.UpstreamTimeout)))
}

// NewServiceContainerWithGateway 使用指定的上游网关创建容器
func NewServiceContainerWithGateway(db *gorm.DB, cfg *config.Config, redisClient *redis.Client, gw *gateway.Gateway) *ServiceContainer {
	container := &ServiceContainer{
		db:      db,
		config:  cfg,
		redis:   redisClient,
		gateway: gw,
	}
	container.initializeServices()
	return container
}

// initializeServices 初始化所有服务
func (c *ServiceContainer) initializeServices() {
	c.mu.Lock()
	defer c.mu.Unlock()

	// 统计服务
	c.reporting = reporting.NewService(reporting.Sources{
		Residents:         c.gateway.Residents,
		Households:        c.gateway.Households,
		TemporaryStays:    c.gateway.TemporaryStays,
		TemporaryAbsences: c.gateway.TemporaryAbsences,
		FeeSchedules:      c.gateway.FeeSchedules,
		Receipts:          c.gateway.Receipts,
	})

	// 会话存储
	if c.redis != nil {
		c.sessionStore = services.NewRedisSessionStore(c.redis)
	} else {
		c.sessionStore = services.NewMemorySessionStore()
	}

	c.jwtService = services.NewJWTService(c.config)
	c.authService = services.NewAuthService(c.gateway, c.jwtService, c.sessionStore, c.config.SessionTTL, c.reporting.Forget)

	// 访问控制
	c.resolver = linkage.NewResolver(c.gateway.Residents, c.gateway.Households)
	c.gate = gate.New(c.resolver, gate.DefaultPolicies())

	c.operationLogService = services.NewOperationLogService(c.db)
}

// GetService 获取指定名称的服务
func (c *ServiceContainer) GetService(name string) interface{} {
	c.mu.RLock()
	defer c.mu.RUnlock()

	switch name {
	case "config":
		return c.config
	case "db":
		return c.db
	case "gateway":
		return c.gateway
	case "jwt":
		return c.jwtService
	case "session_store":
		return c.sessionStore
	case "auth":
		return c.authService
	case "linkage":
		return c.resolver
	case "gate":
		return c.gate
	case "reporting":
		return c.reporting
	case "operation_log":
		return c.operationLogService
	default:
		return nil
	}
}

// GetDB 获取数据库连接
func (c *ServiceContainer) GetDB() *gorm.DB {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.db
}
