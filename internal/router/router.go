package router

import (
	"context"
	"strconv"
	"time"

	"moodmeal/config"
	"moodmeal/internal/handler"
	"moodmeal/internal/service"
	dbPkg "moodmeal/pkg/db"
	"moodmeal/pkg/jwt"
	"moodmeal/pkg/logger"
	"moodmeal/pkg/metrics"
	"moodmeal/pkg/ratelimit"
	"moodmeal/pkg/redis"
	"moodmeal/pkg/response"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const healthTimeout = 2 * time.Second

// Deps 路由依赖
type Deps struct {
	Config          *config.Config
	JWT             *jwt.JWTService
	Presence        *redis.Presence
	Limiter         *ratelimit.Limiter
	Users           *service.UserService
	Friends         *service.FriendService
	Moods           *service.MoodService
	Preferences     *service.PreferenceService
	Recommendations *service.RecommendationService
}

// New 创建 gin 引擎并注册全部路由
func New(d Deps) *gin.Engine {
	r := gin.New()

	r.Use(logger.ErrorLoggerMiddleware())
	r.Use(logger.TraceMiddleware())
	r.Use(logger.RequestLogger())
	r.Use(metrics.Middleware())
	r.Use(cors.New(corsConfig(d.Config.CORS)))

	r.GET("/health", health(d.Presence))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	userHandler := handler.NewUserHandler(d.Users, d.Presence)
	friendHandler := handler.NewFriendHandler(d.Friends)
	moodHandler := handler.NewMoodHandler(d.Moods)
	prefHandler := handler.NewPreferenceHandler(d.Preferences)
	recHandler := handler.NewRecommendationHandler(d.Recommendations)

	v1 := r.Group("/api/v1")
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/register", userHandler.Register)
			auth.POST("/login", userHandler.Login)
		}

		authed := v1.Group("")
		authed.Use(d.JWT.AuthMiddleware())

		users := authed.Group("/users")
		{
			users.GET("/me", userHandler.GetProfile)
			users.GET("/me/token", userHandler.TokenInfo)
			users.POST("/logout", userHandler.Logout)
			users.GET("/search", friendHandler.SearchUsers)
			users.GET("/:user_id/online", userHandler.CheckUserOnline)
		}

		friends := authed.Group("/friends")
		{
			friends.GET("", friendHandler.ListFriends)
			friends.DELETE("/:friend_id", friendHandler.Unfriend)
			friends.GET("/requests", friendHandler.ListRequests)
			friends.POST("/requests", friendHandler.SendRequest)
			friends.PUT("/requests/:request_id", friendHandler.RespondRequest)
			friends.DELETE("/requests/:request_id", friendHandler.CancelRequest)
			friends.GET("/recommendations", d.Limiter.Middleware(userKey), recHandler.Recommend)
		}

		moods := authed.Group("/moods")
		{
			moods.POST("", moodHandler.LogMood)
			moods.GET("", moodHandler.ListMoods)
			moods.GET("/stats", moodHandler.Stats)
			moods.GET("/:mood_id", moodHandler.GetMood)
			moods.PUT("/:mood_id", moodHandler.UpdateMood)
			moods.DELETE("/:mood_id", moodHandler.DeleteMood)
		}

		prefs := authed.Group("/preferences")
		{
			prefs.GET("", prefHandler.Get)
			prefs.PUT("", prefHandler.Save)
			prefs.DELETE("", prefHandler.Delete)
		}
	}

	return r
}

// userKey 按登录用户限流
func userKey(c *gin.Context) string {
	id, err := jwt.GetUserID(c)
	if err != nil {
		return ""
	}
	return strconv.FormatUint(uint64(id), 10)
}

func corsConfig(cfg config.CORSConfig) cors.Config {
	cc := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", logger.HeaderXRequestID},
		ExposeHeaders:    []string{logger.HeaderXRequestID},
		AllowCredentials: true,
		MaxAge:           cfg.MaxAge,
	}
	if len(cfg.AllowOrigins) == 0 {
		cc.AllowAllOrigins = true
		cc.AllowCredentials = false
	} else {
		cc.AllowOrigins = cfg.AllowOrigins
	}
	return cc
}

// health 数据库必须可用，Redis 未启用时不检查
func health(presence *redis.Presence) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
		defer cancel()

		status := "ok"
		dbStatus := "up"
		if err := dbPkg.HealthCheck(); err != nil {
			dbStatus = "down"
			status = "degraded"
		}
		redisStatus := "disabled"
		if presence.Enabled() {
			redisStatus = "up"
			if err := redis.HealthCheck(ctx); err != nil {
				redisStatus = "down"
				status = "degraded"
			}
		}

		response.Success(c, gin.H{
			"status":   status,
			"database": dbStatus,
			"redis":    redisStatus,
			"time":     time.Now().Format(time.RFC3339),
		})
	}
}
