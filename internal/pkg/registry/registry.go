package registry

import (
	"sort"

	"social_moderation/internal/pkg/config"
	"social_moderation/internal/pkg/metrics"
	"social_moderation/internal/pkg/realtime"
	"social_moderation/internal/pkg/remote"
	"social_moderation/internal/pkg/session"
	"social_moderation/internal/pkg/uploader"
	"social_moderation/internal/pkg/worker"
	"social_moderation/pkg/cache"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ModuleContext 模块初始化所需的上下文
type ModuleContext struct {
	Config   *config.Config
	DB       *gorm.DB
	SQLX     *sqlx.DB
	Redis    *redis.Client
	Cache    cache.CacheService
	Router   *gin.Engine
	Logger   *zap.Logger
	Metrics  *metrics.Collector
	Sessions *session.Manager
	Remote   *remote.Client
	Uploader uploader.Uploader
	Hub      *realtime.Hub
	PushPool *worker.WorkerPool
}

// Module 模块接口
type Module interface {
	// Name 返回模块名称
	Name() string

	// Init 初始化模块（依赖注入、路由注册等）
	Init(ctx *ModuleContext) error

	// Priority 返回初始化优先级（数字越小越先初始化）
	Priority() int
}

// moduleRegistry 全局模块注册表
var moduleRegistry = make(map[string]Module)

// Register 注册模块
func Register(module Module) {
	moduleRegistry[module.Name()] = module
}

// GetModules 获取所有已注册的模块
func GetModules() map[string]Module {
	return moduleRegistry
}

// InitModules 按优先级初始化所有模块
func InitModules(ctx *ModuleContext) error {
	modules := make([]Module, 0, len(moduleRegistry))
	for _, m := range moduleRegistry {
		modules = append(modules, m)
	}

	// 优先级相同时按名称排序，保证路由注册顺序稳定
	sort.Slice(modules, func(i, j int) bool {
		if modules[i].Priority() != modules[j].Priority() {
			return modules[i].Priority() < modules[j].Priority()
		}
		return modules[i].Name() < modules[j].Name()
	})

	for _, module := range modules {
		if ctx.Logger != nil {
			ctx.Logger.Info("init module", zap.String("module", module.Name()))
		}
		if err := module.Init(ctx); err != nil {
			return err
		}
	}

	return nil
}
