package leaderboard

import (
	"fmt"

	"karmafeed/internal/domain/feed"
	"karmafeed/internal/domain/leaderboard/handler"
	"karmafeed/internal/domain/leaderboard/service"
	"karmafeed/internal/pkg/middleware"
	"karmafeed/internal/pkg/registry"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// LeaderboardModule 积分排行榜模块
type LeaderboardModule struct{}

func init() {
	registry.Register(&LeaderboardModule{})
}

func (m *LeaderboardModule) Name() string {
	return "leaderboard"
}

func (m *LeaderboardModule) Priority() int {
	// 依赖 feed 模块提供的积分数据源
	return 20
}

func (m *LeaderboardModule) Init(ctx *registry.ModuleContext) error {
	// 1. 依赖注入
	v, err := ctx.Resolve(feed.KarmaSourceKey)
	if err != nil {
		return err
	}
	source, ok := v.(service.KarmaSource)
	if !ok {
		return fmt.Errorf("%s has unexpected type %T", feed.KarmaSourceKey, v)
	}

	cfg := ctx.Config.Leaderboard
	board := service.NewLeaderboard(source, ctx.Cache, service.Options{
		RefreshInterval:   cfg.RefreshInterval,
		RefreshTimeout:    cfg.RefreshTimeout,
		TopN:              cfg.TopN,
		PostLikePoints:    cfg.PostLikePoints,
		CommentLikePoints: cfg.CommentLikePoints,
		Window:            cfg.Window,
	}, ctx.Metrics)
	h := handler.NewLeaderboardHandler(board)

	// 2. 路由注册
	setupRoutes(ctx.Router, h)

	// 3. 后台定时刷新，随应用生命周期退出
	go board.Run(ctx.Ctx)

	ctx.Logger.Info("leaderboard scheduled",
		zap.Duration("refresh_interval", cfg.RefreshInterval),
		zap.Int("top_n", cfg.TopN),
		zap.Duration("window", cfg.Window),
	)
	return nil
}

func setupRoutes(r *gin.Engine, h *handler.LeaderboardHandler) {
	g := r.Group("/leaderboard")
	g.GET("/", h.GetTop)
	g.POST("/refresh", middleware.AuthMiddleware(), h.Refresh)
}
