// Package bootstrap 负责装配整个应用：配置、日志、基础设施、依赖注入和路由。
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	httpHandler "github.com/ToucheSir/svblog/internal/handler/http"
	gormpersistence "github.com/ToucheSir/svblog/internal/infra/persistence/gorm"
	"github.com/ToucheSir/svblog/internal/infra/setup"
	redisstate "github.com/ToucheSir/svblog/internal/infra/state/redis"
	"github.com/ToucheSir/svblog/internal/infra/storage"
	"github.com/ToucheSir/svblog/internal/middleware"
	"github.com/ToucheSir/svblog/internal/service"
	"github.com/ToucheSir/svblog/internal/tasks"
	"github.com/ToucheSir/svblog/internal/worker"
)

// Config 存储从环境变量或 .env 文件加载的配置
type Config struct {
	DBUser        string
	DBPassword    string
	DBHost        string
	DBPort        string
	DBName        string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	ServerPort    string
	LogLevel      string
	AppEnv        string // 应用环境 (development/production)
	KeyPrefix     string // Redis Key 前缀

	UploadDir    string // 上传文件存储目录
	TemplateGlob string // 页面模板的 glob 模式
	DefaultTheme string // 新会话/新账号的默认主题
	AdminUser    string // 管理员用户名

	PostingGrace    time.Duration // 发帖宽限期；0 表示关闭
	SessionTTL      time.Duration // 会话过期时间
	RateLimitMax    int
	RateLimitWindow time.Duration
}

// LoadConfig 从环境变量加载配置
func LoadConfig() (*Config, error) {
	// 优先加载 .env 文件 (如果存在)，忽略错误以允许只使用环境变量
	_ = godotenv.Load()

	cfg := &Config{
		DBUser:        os.Getenv("DB_USER"),
		DBPassword:    os.Getenv("DB_PASSWORD"),
		DBHost:        os.Getenv("DB_HOST"),
		DBPort:        os.Getenv("DB_PORT"),
		DBName:        os.Getenv("DB_NAME"),
		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		ServerPort:    os.Getenv("SERVER_PORT"),
		LogLevel:      os.Getenv("LOG_LEVEL"),
		AppEnv:        os.Getenv("APP_ENV"),
		KeyPrefix:     os.Getenv("REDIS_KEY_PREFIX"),
		UploadDir:     os.Getenv("UPLOAD_DIR"),
		TemplateGlob:  os.Getenv("TEMPLATE_GLOB"),
		DefaultTheme:  os.Getenv("DEFAULT_THEME"),
		AdminUser:     os.Getenv("ADMIN_USER"),
		// --- 默认值 ---
		RateLimitMax:    100,
		RateLimitWindow: 1 * time.Second,
	}

	cfg.RedisDB, _ = strconv.Atoi(os.Getenv("REDIS_DB")) // 忽略错误，默认为 0

	graceDays, _ := strconv.Atoi(os.Getenv("POSTING_GRACE_DAYS")) // 默认为 0: 规则关闭
	cfg.PostingGrace = time.Duration(graceDays) * 24 * time.Hour

	ttlHours, _ := strconv.Atoi(os.Getenv("SESSION_TTL_HOURS"))
	if ttlHours <= 0 {
		ttlHours = 24
	}
	cfg.SessionTTL = time.Duration(ttlHours) * time.Hour

	// --- 其余默认值和必要检查 ---
	if cfg.ServerPort == "" {
		cfg.ServerPort = "8080"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.AppEnv == "" {
		cfg.AppEnv = "development"
	}
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = "sv:"
	}
	if cfg.UploadDir == "" {
		cfg.UploadDir = "data/uploads"
	}
	if cfg.TemplateGlob == "" {
		cfg.TemplateGlob = "web/templates/*.html"
	}
	if cfg.DefaultTheme == "" {
		cfg.DefaultTheme = "blue"
	}
	if cfg.AdminUser == "" {
		cfg.AdminUser = "admin"
	}
	if cfg.RedisAddr == "" {
		return nil, fmt.Errorf("environment variable REDIS_ADDR must be set")
	}

	// 验证日志级别
	if _, err := logrus.ParseLevel(cfg.LogLevel); err != nil {
		logrus.Warnf("Invalid LOG_LEVEL '%s', using default 'info'", cfg.LogLevel)
		cfg.LogLevel = "info"
	}

	return cfg, nil
}

// App 包含应用的所有组件和配置
type App struct {
	Config         *Config
	Log            *logrus.Logger
	DB             *gorm.DB
	RedisClient    *redis.Client
	AsynqClient    *asynq.Client
	AsynqServer    *worker.WorkerServer
	HttpServer     *http.Server
	redisClientOpt asynq.RedisClientOpt
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
	log := logrus.New()
	if cfg.AppEnv == "production" {
		log.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339Nano})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, ForceColors: true})
	}
	logLevel, _ := logrus.ParseLevel(cfg.LogLevel) // cfg.LogLevel 已被 LoadConfig 验证
	log.SetLevel(logLevel)
	log.SetOutput(os.Stdout)
	log.Info("Configuration loaded successfully")

	// 3. 初始化基础设施
	log.Info("Initializing infrastructure...")
	db, err := setup.InitDB(cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		return nil, fmt.Errorf("failed to init DB: %w", err)
	}
	if err := setup.MigrateDB(db); err != nil {
		return nil, fmt.Errorf("failed to migrate DB: %w", err)
	}
	redisClient, err := setup.InitRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		return nil, fmt.Errorf("failed to init Redis: %w", err)
	}
	blobStore, err := storage.NewDiskStore(cfg.UploadDir)
	if err != nil {
		return nil, fmt.Errorf("failed to init upload storage: %w", err)
	}
	redisClientOpt := asynq.RedisClientOpt{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}
	asynqClient := asynq.NewClient(redisClientOpt)
	log.Info("Infrastructure initialized successfully")

	// 4. 初始化 Repositories
	userRepo := gormpersistence.NewGormUserRepository(db)
	entryRepo := gormpersistence.NewGormEntryRepository(db)
	uploadRepo := gormpersistence.NewGormUploadRepository(db)
	sessionRepo := redisstate.NewRedisSessionRepository(redisClient, cfg.KeyPrefix, cfg.SessionTTL)
	log.Info("Repositories initialized")

	// 5. 初始化 Services
	authService := service.NewAuthService(userRepo, cfg.DefaultTheme, cfg.PostingGrace)
	sessionService := service.NewSessionService(sessionRepo, userRepo, cfg.DefaultTheme, cfg.AdminUser)
	entryService := service.NewEntryService(entryRepo)
	uploadService := service.NewUploadService(uploadRepo, blobStore)
	log.Info("Services initialized")

	// 6. 初始化 Handlers
	authHandler := httpHandler.NewAuthHandler(authService, sessionService)
	blogHandler := httpHandler.NewBlogHandler(authService, sessionService, entryService, uploadService)
	uploadHandler := httpHandler.NewUploadHandler(sessionService, uploadService)
	themeHandler := httpHandler.NewThemeHandler(authService, sessionService)
	adminHandler := httpHandler.NewAdminHandler(authService, sessionService)
	log.Info("Handlers initialized")

	// 7. 初始化 Worker Server
	workerServer := worker.NewWorkerServer(redisClientOpt, uploadRepo, blobStore, log)
	log.Info("Worker server initialized")

	// 8. 初始化 Gin Engine 和路由
	log.Info("Setting up Gin router...")
	if cfg.AppEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(LoggerMiddleware(log))
	router.Use(middleware.CacheControl())
	router.Use(middleware.RateLimit(redisClient, cfg.RateLimitMax, cfg.RateLimitWindow))
	router.Use(middleware.Session(sessionService))
	router.LoadHTMLGlob(cfg.TemplateGlob)

	// --- 设置路由 ---
	router.GET("/", func(c *gin.Context) { c.Redirect(http.StatusFound, "/login/") })
	router.GET("/login/", authHandler.ShowLogin)
	router.POST("/login/", authHandler.Login)
	router.GET("/logout/", authHandler.Logout)
	router.GET("/create/", authHandler.ShowCreate)
	router.POST("/create/", authHandler.Create)
	router.GET("/:name/", blogHandler.Page)
	router.POST("/:name/", blogHandler.PostEntry)
	router.GET("/:name/upload/", uploadHandler.ShowForm)
	router.POST("/:name/upload/", uploadHandler.Upload)
	router.GET("/:name/theme/", themeHandler.Show)
	router.POST("/:name/theme/", themeHandler.Change)
	router.GET("/:name/all/", adminHandler.ListUsers)
	router.GET("/:name/delete/:target", blogHandler.Delete)
	router.POST("/:name/delete/:target", blogHandler.Delete)
	router.GET("/:name/:filename", blogHandler.ServeFile)
	log.Info("Router setup complete")

	// 9. 初始化 HTTP Server
	httpServer := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: router,
	}

	// 10. 组装 App 对象
	app := &App{
		Config:         cfg,
		Log:            log,
		DB:             db,
		RedisClient:    redisClient,
		AsynqClient:    asynqClient,
		AsynqServer:    workerServer,
		HttpServer:     httpServer,
		redisClientOpt: redisClientOpt,
	}
	log.Info("Application assembled successfully")

	return app, nil
}

// Start 启动应用的后台 Goroutine 和 HTTP 服务器
func (a *App) Start() {
	go a.AsynqServer.Start()
	a.Log.Info("Worker server routine started")

	a.registerPeriodicTasks()

	go func() {
		a.Log.Infof("HTTP server starting to listen on %s", a.HttpServer.Addr)
		if err := a.HttpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.Log.Fatalf("Failed to start HTTP server: %v", err)
		}
		a.Log.Info("HTTP server stopped listening.")
	}()
}

// registerPeriodicTasks 注册周期性后台任务并启动调度器
func (a *App) registerPeriodicTasks() {
	scheduler := asynq.NewScheduler(a.redisClientOpt, &asynq.SchedulerOpts{})

	taskPayload, err := tasks.NewUploadReapTask()
	if err != nil {
		a.Log.Errorf("Failed to create upload reap task payload: %v", err)
		return
	}
	task := asynq.NewTask(tasks.TypeUploadReap, taskPayload)

	schedule := "@every 1h"
	entryID, err := scheduler.Register(schedule, task)
	if err != nil {
		a.Log.Errorf("Could not register periodic upload reap task: %v", err)
	} else {
		a.Log.Infof("Periodic upload reap task registered with schedule '%s' (EntryID: %s)", schedule, entryID)
	}

	go func() {
		a.Log.Info("Asynq scheduler starting...")
		if err := scheduler.Run(); err != nil {
			if !errors.Is(err, asynq.ErrServerClosed) {
				a.Log.Errorf("Asynq scheduler Run() failed: %v", err)
			} else {
				a.Log.Info("Asynq scheduler stopped.")
			}
		}
	}()
}

// Shutdown 优雅地关闭应用
func (a *App) Shutdown() {
	a.Log.Info("Shutting down application...")

	// 1. 优雅关闭 Worker Server
	if a.AsynqServer != nil {
		a.AsynqServer.Shutdown()
	}

	// 2. 优雅关闭 HTTP 服务器
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := a.HttpServer.Shutdown(ctx); err != nil {
		a.Log.Errorf("Error shutting down HTTP server: %v", err)
	} else {
		a.Log.Info("HTTP server shut down gracefully.")
	}

	// 3. 关闭 Asynq Client
	if a.AsynqClient != nil {
		if err := a.AsynqClient.Close(); err != nil {
			a.Log.Errorf("Error closing Asynq client: %v", err)
		}
	}

	// 4. 关闭 Redis 连接 (GORM V2 的连接池无需显式关闭)
	if a.RedisClient != nil {
		if err := a.RedisClient.Close(); err != nil {
			a.Log.Errorf("Error closing Redis connection: %v", err)
		}
	}

	a.Log.Info("Application shutdown complete.")
}

// LoggerMiddleware 创建一个 Gin 中间件用于记录请求日志
func LoggerMiddleware(log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		startTime := time.Now()
		c.Next()
		latency := time.Since(startTime)
		statusCode := c.Writer.Status()
		path := c.Request.URL.Path
		if c.Request.URL.RawQuery != "" {
			path = path + "?" + c.Request.URL.RawQuery
		}

		entry := log.WithFields(logrus.Fields{
			"status_code": statusCode,
			"latency_ms":  latency.Milliseconds(),
			"client_ip":   c.ClientIP(),
			"method":      c.Request.Method,
			"path":        path,
		})

		switch {
		case statusCode >= 500:
			entry.Error("Server error")
		case statusCode >= 400:
			entry.Warn("Client error")
		default:
			entry.Info("Request handled")
		}
	}
}
