package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"moodmeal/config"
	"moodmeal/internal/model"
	"moodmeal/internal/recommend"
	"moodmeal/internal/repository"
	"moodmeal/internal/router"
	"moodmeal/internal/service"
	"moodmeal/pkg/async"
	dbPkg "moodmeal/pkg/db"
	"moodmeal/pkg/jwt"
	"moodmeal/pkg/logger"
	"moodmeal/pkg/ratelimit"
	redisPkg "moodmeal/pkg/redis"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	limiterCleanupInterval  = 10 * time.Minute
	presenceCleanupInterval = 5 * time.Minute
)

func main() {
	// 1. 加载配置
	cfg := config.LoadConfig()

	// 2. 初始化日志系统
	log := logger.InitLogger(cfg.Log)
	defer log.Sync()

	log.Info("=== MoodMeal 启动 ===")
	logger.WithFields(map[string]interface{}{
		"port":                     cfg.Server.Port,
		"database_driver":          cfg.Database.Driver,
		"database_host":            cfg.Database.Host,
		"database_name":            cfg.Database.Database,
		"redis_enabled":            cfg.Redis.Enabled,
		"jwt_expire_time":          cfg.JWT.ExpireTime,
		"log_level":                cfg.Log.Level,
		"recommend_max_candidates": cfg.Recommend.MaxCandidates,
	}).Info("服务器配置信息")

	// 3. 初始化数据库连接
	orm, err := dbPkg.InitDB(cfg.Database)
	if err != nil {
		log.Fatal("数据库连接失败", zap.Error(err))
	}
	defer func() {
		if err := dbPkg.CloseDB(); err != nil {
			log.Error("关闭数据库连接失败", zap.Error(err))
		}
	}()
	log.Info("数据库连接成功")

	// 3.1 自动迁移表结构
	if err := dbPkg.AutoMigrate(
		&model.User{},
		&model.Friendship{},
		&model.FriendRequest{},
		&model.MoodEntry{},
		&model.Preferences{},
	); err != nil {
		log.Fatal("自动迁移失败", zap.Error(err))
	}
	log.Info("自动迁移完成")

	// 4. Redis（可选），不可用时在线状态降级为全部离线
	if err := redisPkg.InitRedis(context.Background(), cfg.Redis); err != nil {
		log.Warn("Redis连接失败，在线状态不可用", zap.Error(err))
	}
	defer func() {
		if err := redisPkg.Close(); err != nil {
			log.Error("关闭Redis连接失败", zap.Error(err))
		}
	}()
	presence := redisPkg.NewPresence(redisPkg.GetClient())

	// 5. 协程池
	if err := async.Init(cfg.Async); err != nil {
		log.Fatal("协程池初始化失败", zap.Error(err))
	}
	defer func() {
		if err := async.Release(); err != nil {
			log.Warn("协程池释放超时", zap.Error(err))
		}
	}()

	// 6. 初始化业务服务
	jwtSvc := jwt.NewJWTService(cfg.JWT)
	userRepo := repository.NewUserRepository(orm)
	friendRepo := repository.NewFriendRepository(orm)
	moodRepo := repository.NewMoodRepository(orm)
	prefRepo := repository.NewPreferencesRepository(orm)

	engine := recommend.NewEngine(repository.NewRecommendSource(moodRepo, prefRepo, friendRepo), recommend.Options{
		DefaultLimit:    cfg.Recommend.DefaultLimit,
		MoodHistorySize: cfg.Recommend.MoodHistorySize,
		MaxCandidates:   cfg.Recommend.MaxCandidates,
	})

	limiter := ratelimit.New(cfg.RateLimit.RecommendPerMinute, cfg.RateLimit.Burst)
	limiter.StartCleanup(limiterCleanupInterval)
	defer limiter.Stop()

	stopPresenceCleanup := startPresenceCleanup(presence, presenceCleanupInterval)
	defer stopPresenceCleanup()

	// 7. 设置Gin模式
	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}

	handler := router.New(router.Deps{
		Config:          cfg,
		JWT:             jwtSvc,
		Presence:        presence,
		Limiter:         limiter,
		Users:           service.NewUserService(userRepo, jwtSvc, presence),
		Friends:         service.NewFriendService(userRepo, friendRepo, presence),
		Moods:           service.NewMoodService(moodRepo),
		Preferences:     service.NewPreferenceService(prefRepo),
		Recommendations: service.NewRecommendationService(engine, userRepo, cfg.Recommend.MaxLimit),
	})

	// 8. 创建HTTP服务器
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		logger.Infof("HTTP服务器启动在端口 %s", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("HTTP服务器启动失败", zap.Error(err))
		}
	}()

	// 9. 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("正在关闭服务器...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("HTTP服务器关闭失败", zap.Error(err))
	}

	log.Info("服务器已安全关闭")
}

// startPresenceCleanup 定期清理在线集合中已过期的用户
func startPresenceCleanup(presence *redisPkg.Presence, interval time.Duration) func() {
	if !presence.Enabled() {
		return func() {}
	}
	stop := make(chan struct{})
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				n, err := presence.CleanExpired(ctx)
				cancel()
				if err != nil {
					logger.Warn("清理过期在线状态失败", zap.Error(err))
				} else if n > 0 {
					logger.Info("清理过期在线状态", zap.Int("count", n))
				}
			case <-stop:
				return
			}
		}
	}()
	return func() { close(stop) }
}
