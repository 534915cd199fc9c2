package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "karmafeed/docs"
	_ "karmafeed/internal/domain/feed"
	_ "karmafeed/internal/domain/leaderboard"
	_ "karmafeed/internal/domain/user"
	"karmafeed/internal/pkg/config"
	"karmafeed/internal/pkg/middleware"
	"karmafeed/internal/pkg/registry"
	"karmafeed/pkg/cache"
	"karmafeed/pkg/database"
	"karmafeed/pkg/logger"
	"karmafeed/pkg/metrics"
	"karmafeed/pkg/response"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// @title karmafeed API
// @version 1.0
// @description 帖子、嵌套评论、点赞与积分排行榜
// @BasePath /
// @securityDefinitions.apikey Bearer
// @in header
// @name Authorization
func main() {
	// 1. 配置与日志
	config.LoadConfig()
	cfg := &config.GlobalConfig

	if err := logger.Init(cfg.App.Env, cfg.App.Debug); err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. 存储
	db, err := database.Open(cfg.Database, cfg.App.Debug)
	if err != nil {
		logger.Log.Fatal("open database", zap.String("driver", cfg.Database.Driver), zap.Error(err))
	}
	defer db.Close()

	var cacheService cache.CacheService
	rdb, err := database.InitRedis(ctx, cfg.Redis)
	switch {
	case err != nil:
		logger.Log.Fatal("connect redis", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
	case rdb != nil:
		defer rdb.Close()
		cacheService = cache.NewRedisCache(rdb, "karmafeed:")
	default:
		cacheService = cache.NewMemoryCache()
	}

	// 3. HTTP 引擎与中间件
	gin.SetMode(cfg.Server.Mode)
	r := gin.New()
	m := metrics.GetGlobalCollector()
	limiter := middleware.NewIPRateLimiter(rate.Limit(cfg.RateLimit.QPS), cfg.RateLimit.Burst)

	r.Use(
		gin.Recovery(),
		middleware.TraceMiddleware(),
		middleware.LoggerMiddleware(),
		middleware.MetricsMiddleware(m),
		cors.New(cors.Config{
			AllowOrigins:     cfg.CORS.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Trace-ID"},
			ExposeHeaders:    []string{"X-Trace-ID"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}),
		middleware.RateLimitMiddleware(limiter),
		middleware.TimeoutMiddleware(cfg.Server.RequestTimeout),
	)

	if err := db.RegisterPoolMetrics(m.Registry()); err != nil {
		logger.Log.Warn("register pool metrics", zap.Error(err))
	}

	r.GET("/health", func(c *gin.Context) {
		stats, err := db.HealthCheck(c.Request.Context())
		if err != nil {
			logger.Log.Error("health check", zap.Error(err))
			response.Error(c, http.StatusServiceUnavailable, response.ErrServerInternal, "database unavailable")
			return
		}
		response.Success(c, gin.H{"status": "ok", "database": stats})
	})
	r.GET("/metrics", gin.WrapH(m.Handler()))
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// 4. 业务模块
	moduleCtx := &registry.ModuleContext{
		Ctx:     ctx,
		Config:  cfg,
		DB:      db,
		Cache:   cacheService,
		Router:  r,
		Logger:  logger.Log,
		Metrics: m,
	}
	if err := registry.InitModules(moduleCtx); err != nil {
		logger.Log.Fatal("init modules", zap.Error(err))
	}

	go cleanupLimiter(ctx, limiter)

	// 5. 启动与优雅退出
	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Log.Info("karmafeed server starting", zap.String("addr", srv.Addr), zap.String("db", cfg.Database.Driver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Fatal("listen", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error("server shutdown", zap.Error(err))
	}
}

func cleanupLimiter(ctx context.Context, limiter *middleware.IPRateLimiter) {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := limiter.Cleanup(); n > 0 {
				logger.Log.Debug("rate limiter cleanup", zap.Int("removed", n))
			}
		}
	}
}
