// @title           Community Console Service API
// @version         1.0
// @description     Backend for the residential community management console: sessions, access gate, statistics and upstream proxies

// @BasePath  /api

// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
// @description                 Enter the token with the `Bearer ` prefix
package main

import (
	"fmt"
	"os"
	"runtime"

	"community-console-service/internal/app/routes"
	"community-console-service/internal/domain/services"
	"community-console-service/internal/infrastructure/config"
	"community-console-service/internal/infrastructure/database"
	Logger "community-console-service/pkg/logger"

	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	"gorm.io/gorm"
)

func main() {
	// 初始化日志配置
	if err := Logger.SetupLogger(); err != nil {
		fmt.Printf("初始化日志配置失败: %v\n", err)
		os.Exit(1)
	}

	// 加载.env文件
	if err := godotenv.Load(); err != nil {
		Logger.Warning("无法加载.env文件: %v", err)
		// 即使加载失败也继续执行，可能环境变量已经通过其他方式设置
	} else {
		Logger.Info("成功加载.env文件")
	}

	// 获取配置
	cfg := config.GetConfig()

	// 操作日志数据库，可选
	var db *gorm.DB
	if cfg.DBEnabled {
		pool, err := database.NewConnectionPool(cfg)
		if err != nil {
			Logger.Error("无法创建数据库连接池: %v", err)
			os.Exit(1)
		}
		defer pool.Close()

		if err := pool.Migrate(cfg.DBMigrationMode); err != nil {
			Logger.Error("数据库迁移失败: %v", err)
			os.Exit(1)
		}
		if stats, err := pool.Stats(); err == nil {
			Logger.Info("数据库连接池状态: %+v", stats)
		}
		db = pool.GetDB()
	} else {
		Logger.Info("未启用数据库，操作日志不会被记录")
	}

	// 会话存储，可选
	var redisClient *redis.Client
	if cfg.RedisEnabled {
		redisClient = services.NewRedisClient(cfg)
		defer redisClient.Close()
	}

	// 初始化路由
	r := routes.SetupRouter(db, cfg, redisClient)

	Logger.Info("上游社区接口: %s", cfg.UpstreamBaseURL)
	Logger.Info("系统CPU核心数: %d", runtime.NumCPU())

	// 启动服务器 - 注意监听所有接口(0.0.0.0)而不是只监听localhost
	port := cfg.ServerPort
	Logger.Info("服务器启动在: http://0.0.0.0:%s", port)
	if err := r.Run("0.0.0.0:" + port); err != nil {
		Logger.Error("启动服务器失败: %v", err)
		os.Exit(1)
	}
}
