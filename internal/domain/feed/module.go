package feed

import (
	"karmafeed/internal/domain/feed/handler"
	"karmafeed/internal/domain/feed/repository"
	"karmafeed/internal/domain/feed/service"
	"karmafeed/internal/pkg/middleware"
	"karmafeed/internal/pkg/registry"
	"karmafeed/pkg/database"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// KarmaSourceKey leaderboard 模块通过该 key 获取积分数据源
const KarmaSourceKey = "feed.karma_source"

// FeedModule 帖子/评论/点赞模块
type FeedModule struct{}

func init() {
	registry.Register(&FeedModule{})
}

func (m *FeedModule) Name() string {
	return "feed"
}

func (m *FeedModule) Priority() int {
	return 10
}

func (m *FeedModule) Init(ctx *registry.ModuleContext) error {
	// 1. 选择存储实现
	var repo repository.FeedRepository
	var karma repository.KarmaSource
	if ctx.DB == nil {
		mem := repository.NewMemoryRepository()
		repo, karma = mem, mem
		ctx.Logger.Warn("feed module using in-memory storage; data is lost on restart")
	} else {
		if ctx.DB.Driver == database.DriverSQLite || ctx.Config.Database.AutoMigrate {
			if err := repository.AutoMigrate(ctx.DB.Gorm); err != nil {
				return err
			}
		}
		repo = repository.NewFeedRepository(ctx.DB.Gorm)
		karma = repository.NewKarmaQuery(ctx.DB.SQLX)
	}
	ctx.Provide(KarmaSourceKey, karma)

	// 2. 依赖注入
	feedService := service.NewFeedService(repo, service.Options{
		MaxContentLength: ctx.Config.Feed.MaxContentLength,
		MaxDepth:         ctx.Config.Feed.MaxCommentDepth,
		AllowSelfLike:    ctx.Config.Feed.AllowSelfLike,
	}, ctx.Metrics)
	feedHandler := handler.NewFeedHandler(feedService)

	// 3. 路由注册
	setupRoutes(ctx.Router, feedHandler)

	ctx.Logger.Info("feed limits",
		zap.Int("max_content_length", ctx.Config.Feed.MaxContentLength),
		zap.Int("max_comment_depth", ctx.Config.Feed.MaxCommentDepth),
		zap.Bool("allow_self_like", ctx.Config.Feed.AllowSelfLike),
	)
	return nil
}

func setupRoutes(r *gin.Engine, h *handler.FeedHandler) {
	// 匿名可读，带凭证时返回 is_liked
	public := r.Group("")
	public.Use(middleware.OptionalAuth())
	{
		public.GET("/posts/", h.ListPosts)
		public.GET("/posts/:id/", h.GetPost)
		public.GET("/posts/:id/comments/", h.GetComments)
	}

	auth := r.Group("")
	auth.Use(middleware.AuthMiddleware())
	{
		auth.POST("/posts/", h.CreatePost)
		auth.POST("/posts/:id/add_comment/", h.AddComment)
		auth.POST("/like/", h.ToggleLike)
	}
}
