package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	httpHandler "drawbit/internal/handler/http"
	"drawbit/internal/infra/pdf"
	gormpersistence "drawbit/internal/infra/persistence/gorm"
	"drawbit/internal/infra/setup"
	memorystate "drawbit/internal/infra/state/memory"
	redisstate "drawbit/internal/infra/state/redis"
	"drawbit/internal/middleware"
	"drawbit/internal/repository"
	"drawbit/internal/service"
	"drawbit/internal/store"
	"drawbit/internal/worker"
)

// App 结构体包含应用的所有组件和配置
type App struct {
	Config      *Config
	Log         *logrus.Logger
	DB          *gorm.DB
	RedisClient *redis.Client        // 未配置 REDIS_ADDR 时为 nil
	AsynqClient *asynq.Client        // 同上
	AsynqServer *worker.WorkerServer // 同上
	HttpServer  *http.Server
}

// NewApp 创建并初始化应用的所有组件
func NewApp() (*App, error) {
	// 1. 加载配置
	cfg, err := LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return nil, err
	}

	// 2. 初始化 Logger
	log := NewLogger(cfg)
	log.WithFields(logrus.Fields{"env": cfg.AppEnv, "store_backend": cfg.StoreBackend}).Info("Configuration loaded successfully")

	// 3. 初始化基础设施
	db, err := setup.InitDB(cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		return nil, fmt.Errorf("failed to init DB: %w", err)
	}
	if err := setup.MigrateDB(db); err != nil {
		return nil, fmt.Errorf("failed to migrate DB: %w", err)
	}

	app := &App{Config: cfg, Log: log, DB: db}
	var enqueuer service.TaskEnqueuer
	if cfg.UseRedis() {
		app.RedisClient, err = setup.InitRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return nil, fmt.Errorf("failed to init Redis: %w", err)
		}
		redisClientOpt := asynq.RedisClientOpt{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		}
		app.AsynqClient = asynq.NewClient(redisClientOpt)
		app.AsynqServer = worker.NewWorkerServer(redisClientOpt, cfg.WorkerConcurrency, log)
		enqueuer = app.AsynqClient
		log.Info("Asynq client and worker initialized")
	} else {
		log.Warn("REDIS_ADDR not set: rate limiting and the invite task queue are disabled")
	}

	// 4. 初始化 Repositories
	kv, err := newKVStore(cfg, db, app.RedisClient)
	if err != nil {
		return nil, err
	}
	stores := store.NewFactory(kv)
	userRepo := gormpersistence.NewGormUserRepository(db)

	// 5. 初始化 Services
	authService, err := service.NewAuthService(userRepo, stores, cfg.JWTSecret, cfg.JWTExpiryHours)
	if err != nil {
		return nil, fmt.Errorf("failed to create AuthService: %w", err)
	}
	boardService := service.NewBoardService(stores, enqueuer)
	exportService := service.NewExportService(pdf.NewGenerator(), cfg.ExportPageWidthMM)

	// 6. 初始化 Handlers 和路由
	if cfg.AppEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := NewRouter(cfg, log, app.RedisClient,
		httpHandler.NewAuthHandler(authService),
		httpHandler.NewWhiteboardHandler(boardService, exportService),
	)

	app.HttpServer = &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	log.Info("Application assembled successfully")
	return app, nil
}

// NewLogger 根据运行环境配置 logrus，同时配置标准 logger 供各包的 logrus.WithFields 使用
func NewLogger(cfg *Config) *logrus.Logger {
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	var formatter logrus.Formatter = &logrus.TextFormatter{FullTimestamp: true}
	if cfg.AppEnv == "production" {
		formatter = &logrus.JSONFormatter{TimestampFormat: time.RFC3339Nano}
	}

	log := logrus.New()
	for _, l := range []*logrus.Logger{log, logrus.StandardLogger()} {
		l.SetFormatter(formatter)
		l.SetLevel(level)
		l.SetOutput(os.Stdout)
	}
	return log
}

// newKVStore 按 STORE_BACKEND 选择白板记录的存储后端
func newKVStore(cfg *Config, db *gorm.DB, redisClient *redis.Client) (repository.KVStore, error) {
	switch cfg.StoreBackend {
	case StoreBackendRedis:
		if redisClient == nil {
			return nil, errors.New("redis store backend selected but Redis is not configured")
		}
		return redisstate.NewRedisKVStore(redisClient, cfg.KeyPrefix), nil
	case StoreBackendMySQL:
		return gormpersistence.NewGormKVStore(db), nil
	case StoreBackendMemory:
		logrus.Warn("Using in-memory store backend: whiteboards are lost on restart")
		return memorystate.NewKVStore(), nil
	}
	return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
}

// NewRouter 注册中间件和所有路由。redisClient 为 nil 时不启用限流。
func NewRouter(cfg *Config, log *logrus.Logger, redisClient *redis.Client, authHandler *httpHandler.AuthHandler, boardHandler *httpHandler.WhiteboardHandler) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(log))
	router.Use(middleware.CORS(cfg.CORSAllowedOrigin))
	if redisClient != nil {
		router.Use(middleware.RateLimit(redisClient, cfg.KeyPrefix, cfg.RateLimitMax, cfg.RateLimitWindow))
	}

	api := router.Group("/api")
	authRoutes := api.Group("/auth")
	{
		authRoutes.POST("/register", authHandler.Register)
		authRoutes.POST("/login", authHandler.Login)
		authRoutes.POST("/logout", middleware.Auth(cfg.JWTSecret), authHandler.Logout)
	}
	api.GET("/dashboard", middleware.Auth(cfg.JWTSecret), boardHandler.Dashboard)
	boardRoutes := api.Group("/whiteboards").Use(middleware.Auth(cfg.JWTSecret))
	{
		boardRoutes.POST("", boardHandler.Create)
		boardRoutes.GET("/:id", boardHandler.Open)
		boardRoutes.DELETE("/:id", boardHandler.Remove)
		boardRoutes.POST("/:id/star", boardHandler.ToggleStar)
		boardRoutes.POST("/:id/save", boardHandler.Save)
		boardRoutes.POST("/:id/invite", boardHandler.Invite)
		boardRoutes.POST("/:id/export", boardHandler.Export)
	}
	router.GET("/ping", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"message": "pong"}) })
	return router
}

// Start 启动 Worker 和 HTTP 服务器
func (a *App) Start() {
	if a.AsynqServer != nil {
		go a.AsynqServer.Start()
		a.Log.Info("Asynq worker server routine started")
	}

	go func() {
		a.Log.Infof("HTTP server starting to listen on %s", a.HttpServer.Addr)
		if err := a.HttpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.Log.Fatalf("Failed to start HTTP server: %v", err)
		}
		a.Log.Info("HTTP server stopped listening.")
	}()
}

// Shutdown 优雅地关闭应用
func (a *App) Shutdown() {
	a.Log.Info("Shutting down application...")

	// 1. 先停止接收 HTTP 请求
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := a.HttpServer.Shutdown(ctx); err != nil {
		a.Log.Errorf("Error shutting down HTTP server: %v", err)
	} else {
		a.Log.Info("HTTP server shut down gracefully.")
	}

	// 2. 关闭 Worker 和 Asynq Client
	if a.AsynqServer != nil {
		a.AsynqServer.Shutdown()
	}
	if a.AsynqClient != nil {
		if err := a.AsynqClient.Close(); err != nil {
			a.Log.Errorf("Error closing Asynq client: %v", err)
		}
	}

	// 3. 关闭 Redis 和数据库连接
	if a.RedisClient != nil {
		if err := a.RedisClient.Close(); err != nil {
			a.Log.Errorf("Error closing Redis connection: %v", err)
		}
	}
	if a.DB != nil {
		if sqlDB, err := a.DB.DB(); err == nil {
			if err := sqlDB.Close(); err != nil {
				a.Log.Errorf("Error closing database connection: %v", err)
			}
		}
	}

	a.Log.Info("Application shutdown complete.")
}
