package user

import (
	"social_moderation/internal/domain/user/handler"
	"social_moderation/internal/domain/user/repository"
	"social_moderation/internal/domain/user/service"
	"social_moderation/internal/pkg/middleware"
	"social_moderation/internal/pkg/registry"

	"github.com/gin-gonic/gin"
)

// UserModule 用户与会话模块
type UserModule struct{}

func init() {
	// 自动注册模块
	registry.Register(&UserModule{})
}

func (m *UserModule) Name() string {
	return "user"
}

func (m *UserModule) Priority() int {
	return 1
}

func (m *UserModule) Init(ctx *registry.ModuleContext) error {
	// 1. 依赖注入
	userRepo := repository.NewUserRepository(ctx.Remote)
	userService := service.NewUserService(userRepo, ctx.Sessions, ctx.Logger.Named("user"))
	userHandler := handler.NewUserHandler(userService, ctx.Config.Session)

	// 2. 路由注册
	setupRoutes(ctx.Router, userHandler)

	return nil
}

func setupRoutes(r *gin.Engine, h *handler.UserHandler) {
	authGroup := r.Group("/auth")
	{
		authGroup.POST("/login", h.Login)
		authGroup.POST("/register", h.Register)
		authGroup.POST("/logout", h.Logout)
		authGroup.GET("/me", h.Me)
		authGroup.POST("/upload-access", middleware.AuthMiddleware(), h.RequestUploadAccess)
	}
}
