package post

import (
	"social_moderation/internal/domain/post/handler"
	"social_moderation/internal/domain/post/repository"
	"social_moderation/internal/domain/post/service"
	"social_moderation/internal/pkg/middleware"
	"social_moderation/internal/pkg/registry"

	"github.com/gin-gonic/gin"
)

// PostModule 帖子与审核模块
type PostModule struct{}

func init() {
	registry.Register(&PostModule{})
}

func (m *PostModule) Name() string {
	return "post"
}

func (m *PostModule) Priority() int {
	return 10
}

func (m *PostModule) Init(ctx *registry.ModuleContext) error {
	log := ctx.Logger.Named("post")

	// 1. 依赖注入
	postRepo := repository.NewPostRepository(ctx.Remote, ctx.Cache, ctx.Config.Remote.SnapshotTTL(), log)
	ledger := repository.NewModerationRepository(ctx.DB)
	statsRepo := repository.NewStatsRepository(ctx.SQLX)
	postService := service.NewPostService(postRepo, ledger, statsRepo, ctx.Uploader, service.Options{
		Concurrency:    ctx.Config.Upload.Concurrency,
		MaxUploadBytes: ctx.Config.Upload.Limit(),
		Notifier:       service.NewDecisionNotifier(ctx.PushPool, ctx.Hub),
		Metrics:        ctx.Metrics,
		Logger:         log,
	})
	postHandler := handler.NewPostHandler(postService, handler.NewPresenter(ctx.Config.Media))

	// 2. 路由注册
	setupRoutes(ctx.Router, postHandler)

	return nil
}

func setupRoutes(r *gin.Engine, h *handler.PostHandler) {
	g := r.Group("/posts")

	// 匿名可见已通过的帖子
	g.GET("/feed", h.Feed)
	g.GET("/users/:userId", h.UserPosts)

	auth := g.Group("")
	auth.Use(middleware.AuthMiddleware())
	{
		auth.POST("", h.Create)
		auth.GET("/submissions", h.Submissions)
	}

	admin := g.Group("")
	admin.Use(middleware.AdminMiddleware())
	{
		admin.PUT("/:id/approve", h.Approve)
		admin.PUT("/:id/reject", h.Reject)
		admin.GET("/pending", h.Pending)
		admin.GET("/stats", h.Stats)
	}
}
