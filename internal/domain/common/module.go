package common

import (
	"context"

	_ "social_moderation/docs"
	commonHandler "social_moderation/internal/pkg/common"
	"social_moderation/internal/pkg/middleware"
	"social_moderation/internal/pkg/registry"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// CommonModule 通用功能模块
type CommonModule struct{}

func init() {
	registry.Register(&CommonModule{})
}

func (m *CommonModule) Name() string {
	return "common"
}

func (m *CommonModule) Priority() int {
	return 100 // 最后初始化
}

func (m *CommonModule) Init(ctx *registry.ModuleContext) error {
	checks := map[string]commonHandler.Checker{}
	if ctx.DB != nil {
		checks["database"] = func(c context.Context) error {
			sqlDB, err := ctx.DB.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(c)
		}
	}
	if ctx.Redis != nil {
		checks["redis"] = func(c context.Context) error {
			return ctx.Redis.Ping(c).Err()
		}
	}

	h := commonHandler.NewHandler(checks, ctx.Uploader, ctx.Config.Upload.Limit(), ctx.Config.Upload.Concurrency)
	setupRoutes(ctx.Router, h)
	return nil
}

func setupRoutes(r *gin.Engine, h *commonHandler.Handler) {
	r.GET("/health", h.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// 文件上传接口
	r.POST("/upload", middleware.AuthMiddleware(), h.UploadFiles)
}
