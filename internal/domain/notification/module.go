package notification

import (
	"social_moderation/internal/domain/notification/handler"
	"social_moderation/internal/domain/notification/repository"
	"social_moderation/internal/domain/notification/service"
	"social_moderation/internal/pkg/middleware"
	"social_moderation/internal/pkg/realtime"
	"social_moderation/internal/pkg/registry"

	"github.com/gin-gonic/gin"
)

// NotificationModule 通知模块
type NotificationModule struct{}

func init() {
	registry.Register(&NotificationModule{})
}

func (m *NotificationModule) Name() string {
	return "notification"
}

func (m *NotificationModule) Priority() int {
	return 30
}

func (m *NotificationModule) Init(ctx *registry.ModuleContext) error {
	log := ctx.Logger.Named("notification")

	// 1. 依赖注入
	repo := repository.NewNotificationRepository(ctx.Remote)
	reads := repository.NewRedisReadStore(ctx.Redis)
	svc := service.NewNotificationService(repo, reads, log)
	h := handler.NewNotificationHandler(svc, ctx.Hub, realtime.NewUpgrader(ctx.Config.CORS.AllowedOrigins), log)

	// 2. 路由注册
	setupRoutes(ctx.Router, h)

	return nil
}

func setupRoutes(r *gin.Engine, h *handler.NotificationHandler) {
	g := r.Group("/notifications")
	g.Use(middleware.AuthMiddleware())
	{
		g.GET("", h.List)
		g.PUT("/read-all", h.MarkAllRead)
		g.PUT("/:id/read", h.MarkRead)
		g.GET("/ws", h.Subscribe)
	}
}
