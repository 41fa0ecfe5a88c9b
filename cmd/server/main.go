package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	postModel "social_moderation/internal/domain/post/model"
	"social_moderation/internal/pkg/config"
	"social_moderation/internal/pkg/metrics"
	"social_moderation/internal/pkg/middleware"
	"social_moderation/internal/pkg/push"
	"social_moderation/internal/pkg/realtime"
	"social_moderation/internal/pkg/registry"
	"social_moderation/internal/pkg/remote"
	"social_moderation/internal/pkg/session"
	"social_moderation/internal/pkg/uploader"
	"social_moderation/internal/pkg/worker"
	"social_moderation/pkg/cache"
	"social_moderation/pkg/database"
	"social_moderation/pkg/logger"

	// 各业务模块在 init 中自注册
	_ "social_moderation/internal/domain/comment"
	_ "social_moderation/internal/domain/common"
	_ "social_moderation/internal/domain/notification"
	_ "social_moderation/internal/domain/post"
	_ "social_moderation/internal/domain/user"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// @title Social Moderation API
// @version 1.0
// @description 社交内容审核服务
// @host localhost:8080
// @BasePath /
func main() {
	cfg := config.LoadConfig()

	if err := logger.Init(cfg.App.Env, cfg.App.Debug); err != nil {
		panic(err)
	}
	defer logger.Sync()
	log := logger.Named("server")

	if !cfg.App.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.InitDatabase(cfg.Database, cfg.App.Debug)
	if err != nil {
		log.Fatal("init database failed", zap.Error(err))
	}
	// sqlite 用于本地开发，直接建表；postgres 走 cmd/migrate
	if cfg.Database.Driver == "sqlite" {
		if err := db.AutoMigrate(&postModel.ModerationRecord{}); err != nil {
			log.Fatal("auto migrate failed", zap.Error(err))
		}
	}
	readModel, err := database.InitReadModel(cfg.Database, db)
	if err != nil {
		log.Fatal("init read model failed", zap.Error(err))
	}

	rdb, err := database.InitRedis(cfg.Redis)
	if err != nil {
		log.Fatal("init redis failed", zap.Error(err))
	}
	defer rdb.Close()

	collector := metrics.NewCollector(prometheus.DefaultRegisterer)
	sessions := session.NewManager(session.NewRedisStore(rdb), cfg.Session.Secret, cfg.Session.TTL(), logger.Named("session"))
	client := remote.NewClient(cfg.Remote.Endpoint, time.Duration(cfg.Remote.TimeoutSeconds)*time.Second, logger.Named("remote"), collector)

	up, err := uploader.New(cfg)
	if err != nil {
		log.Fatal("init uploader failed", zap.Error(err))
	}

	var notifier push.Notifier = push.NopNotifier{}
	if svc, err := push.NewAliyunPushService(cfg.Push); err == nil {
		notifier = svc
	} else if !errors.Is(err, push.ErrNotConfigured) {
		log.Fatal("init push service failed", zap.Error(err))
	} else {
		log.Info("push not configured, moderation results are delivered over websocket only")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool := worker.NewWorkerPool(notifier, cfg.Push.Workers, cfg.Push.QueueSize, logger.Named("push"), collector)
	pool.Start(ctx)
	defer pool.Stop()

	hub := realtime.NewHub(logger.Named("realtime"))
	go hub.Run(ctx)

	limiter := middleware.NewIPRateLimiter(rate.Limit(cfg.Server.RateLimit), cfg.Server.RateBurst)
	go limiter.Run(ctx, time.Minute, 10*time.Minute)

	r := gin.New()
	r.Use(
		middleware.RecoveryMiddleware(logger.Named("recovery")),
		middleware.TraceMiddleware(),
		middleware.LoggerMiddleware(logger.Named("http")),
		middleware.CORSMiddleware(cfg.CORS.AllowedOrigins),
		middleware.SecurityHeadersMiddleware(),
		middleware.RateLimitMiddleware(limiter),
		collector.Middleware(),
		middleware.SessionMiddleware(sessions, cfg.Session.CookieName),
	)

	if err := registry.InitModules(&registry.ModuleContext{
		Config:   cfg,
		DB:       db,
		SQLX:     readModel,
		Redis:    rdb,
		Cache:    cache.NewRedisCache(rdb, cfg.App.Env),
		Router:   r,
		Logger:   logger.Named("module"),
		Metrics:  collector,
		Sessions: sessions,
		Remote:   client,
		Uploader: up,
		Hub:      hub,
		PushPool: pool,
	}); err != nil {
		log.Fatal("init modules failed", zap.Error(err))
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("server started", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("listen failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
	}
}
