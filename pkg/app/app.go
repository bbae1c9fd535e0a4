// Package app 提供应用程序的初始化和配置功能.
package app

import (
	contextPkg "context"
	"fmt"
	"os"
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/yeisme/slacksweep/pkg/configs"
	"github.com/yeisme/slacksweep/pkg/internal/jobs"
	"github.com/yeisme/slacksweep/pkg/internal/router"
	"github.com/yeisme/slacksweep/pkg/internal/storage"
	"github.com/yeisme/slacksweep/pkg/log"
	"github.com/yeisme/slacksweep/pkg/metrics"
	"github.com/yeisme/slacksweep/pkg/middleware"
	"github.com/yeisme/slacksweep/pkg/scheduler"
	"github.com/yeisme/slacksweep/pkg/tracing"
)

// App 聚合 HTTP 引擎、存储管理器与定时调度器.
type App struct {
	Engine    *gin.Engine
	config    *configs.AppConfig
	manager   *storage.Manager
	scheduler *scheduler.Scheduler
}

// NewApp 初始化配置、追踪、监控、存储与定时任务，并装配 HTTP 中间件与路由.
func NewApp(configPath string) *App {
	ctx := contextPkg.Background()

	// 初始化配置
	if err := configs.InitConfig(configPath); err != nil {
		fmt.Printf("Error initializing config: %v\n", err)
		os.Exit(1)
	}

	config := configs.GetConfig()

	if config.Server.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	// 初始化追踪
	if err := tracing.InitTracer(config.Tracing); err != nil {
		fmt.Printf("Error initializing tracing: %v\n", err)
		os.Exit(1)
	}

	// 初始化监控
	if err := metrics.InitMetrics(config.Metrics); err != nil {
		fmt.Printf("Error initializing metrics: %v\n", err)
		os.Exit(1)
	}

	manager, err := storage.Init(ctx)
	if err != nil {
		fmt.Printf("Error initializing storage: %v\n", err)
		os.Exit(1)
	}

	l := log.Logger()
	gin.DefaultWriter = log.NewGinWriter(l, zerolog.InfoLevel)
	gin.DefaultErrorWriter = log.NewGinWriter(l, zerolog.ErrorLevel)

	engine := gin.New()
	engine.Use(
		gin.Recovery(),
		middleware.CORSMiddleware(config.Server),
		gzip.Gzip(gzip.DefaultCompression),
		middleware.TracingMiddleware(),
		middleware.PrometheusMiddleware(),
		middleware.GinLoggerMiddleware(),
		middleware.RateLimitMiddleware(config.RateLimit),
		middleware.CircuitBreakerMiddleware(config.Breaker),
		middleware.StorageMiddleware(manager),
	)

	app := &App{
		Engine:  engine,
		config:  config,
		manager: manager,
	}

	// 定时清理只在开启时创建调度器，HTTP 接口对未启用的调度器返回 503
	if config.Sweep.ScheduleEnabled {
		sched, err := scheduler.NewScheduler()
		if err != nil {
			fmt.Printf("Error initializing scheduler: %v\n", err)
			os.Exit(1)
		}

		if err := jobs.RegisterCronJobs(sched, manager); err != nil {
			fmt.Printf("Error registering cron jobs: %v\n", err)
			os.Exit(1)
		}

		sched.Start()
		app.scheduler = sched
	}

	engine.Use(middleware.SchedulerMiddleware(app.scheduler))

	router.RegisterAll(engine.Group("/api/v1"))

	if config.Metrics.Enabled {
		_ = metrics.StartMetricsServer(config.Metrics, engine)
	}

	return app
}

// Run 启动 HTTP 服务.
func (a *App) Run() error {
	return a.Engine.Run(fmt.Sprintf("%s:%d", a.config.Server.Host, a.config.Server.Port))
}

// Shutdown 释放调度器、存储与追踪资源.
func (a *App) Shutdown() {
	if a.scheduler != nil {
		if err := a.scheduler.Stop(); err != nil {
			log.Logger().Warn().Err(err).Msg("停止调度器失败")
		}
	}

	if a.manager != nil {
		if err := a.manager.Close(); err != nil {
			log.Logger().Warn().Err(err).Msg("关闭存储管理器失败")
		}
	}

	ctx, cancel := contextPkg.WithTimeout(contextPkg.Background(), 5*time.Second)
	defer cancel()

	if err := tracing.ShutdownTracer(ctx); err != nil {
		log.Logger().Warn().Err(err).Msg("关闭追踪导出器失败")
	}
}
