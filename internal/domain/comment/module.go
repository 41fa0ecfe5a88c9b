package comment

import (
	"social_moderation/internal/domain/comment/handler"
	"social_moderation/internal/domain/comment/repository"
	"social_moderation/internal/domain/comment/service"
	postRepository "social_moderation/internal/domain/post/repository"
	postService "social_moderation/internal/domain/post/service"
	"social_moderation/internal/pkg/middleware"
	"social_moderation/internal/pkg/registry"

	"github.com/gin-gonic/gin"
)

// CommentModule 评论模块（文字与 48 小时语音评论）
type CommentModule struct{}

func init() {
	registry.Register(&CommentModule{})
}

func (m *CommentModule) Name() string {
	return "comment"
}

func (m *CommentModule) Priority() int {
	return 20
}

func (m *CommentModule) Init(ctx *registry.ModuleContext) error {
	// 1. 依赖注入
	log := ctx.Logger.Named("comment")
	limit := ctx.Config.Upload.Limit()

	// 评论前按查看者解析帖子，与帖子模块共用 redis 中的全量快照
	posts := postService.NewPostLookup(
		postRepository.NewPostRepository(ctx.Remote, ctx.Cache, ctx.Config.Remote.SnapshotTTL(), log),
		postRepository.NewModerationRepository(ctx.DB),
	)
	commentRepo := repository.NewCommentRepository(ctx.Remote)
	recorders := service.NewRecorderRegistry(limit)
	commentService := service.NewCommentService(commentRepo, posts, ctx.Uploader, recorders, ctx.Metrics, log)
	commentHandler := handler.NewCommentHandler(commentService, limit)

	// 2. 路由注册
	setupRoutes(ctx.Router, commentHandler)

	return nil
}

func setupRoutes(r *gin.Engine, h *handler.CommentHandler) {
	g := r.Group("/posts/:id/comments")
	g.GET("", h.List)

	auth := g.Group("")
	auth.Use(middleware.AuthMiddleware())
	{
		auth.POST("", h.Create)
		auth.POST("/audio", h.CreateAudio)
	}
}
