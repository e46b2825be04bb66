package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/comitanigiacomo/kanso-progress/internal/adapters/handler/http/middleware"

	_ "github.com/comitanigiacomo/kanso-progress/docs"
)

const healthTimeout = 2 * time.Second

// Pinger is satisfied by *sqlx.DB and *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type RouterDependencies struct {
	AuthHandler     *AuthHandler
	CategoryHandler *CategoryHandler
	GoalHandler     *GoalHandler
	CheckInHandler  *CheckInHandler
	ProgressHandler *ProgressHandler
	TokenService    middleware.TokenValidator

	// DB is nil on the in-memory backend.
	DB         Pinger
	Redis      *redis.Client
	RateLimit  int
	RateWindow time.Duration
	StartTime  time.Time
}

func NewRouter(deps RouterDependencies) *gin.Engine {
	router := gin.Default()

	router.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:    []string{"Origin", "Content-Type", "Content-Length", "Accept-Encoding", "Authorization"},
		ExposeHeaders:   []string{"X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset", "Retry-After"},
		MaxAge:          12 * time.Hour,
	}))

	router.GET("/health", healthHandler(deps))
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	var limiter gin.HandlerFunc
	if deps.Redis != nil && deps.RateLimit > 0 {
		limiter = middleware.RateLimiterMiddleware(deps.Redis, deps.RateLimit, deps.RateWindow)
	}

	public := router.Group("")
	if limiter != nil {
		public.Use(limiter)
	}
	deps.AuthHandler.RegisterRoutes(public)

	protected := router.Group("")
	protected.Use(middleware.AuthMiddleware(deps.TokenService))
	if limiter != nil {
		protected.Use(limiter)
	}
	{
		deps.AuthHandler.RegisterProtectedRoutes(protected)
		deps.CategoryHandler.RegisterRoutes(protected)
		deps.GoalHandler.RegisterRoutes(protected)
		deps.CheckInHandler.RegisterRoutes(protected)
		deps.ProgressHandler.RegisterRoutes(protected)
	}

	return router
}

func healthHandler(deps RouterDependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
		defer cancel()

		dbStatus := "memory"
		if deps.DB != nil {
			dbStatus = "connected"
			if err := deps.DB.PingContext(ctx); err != nil {
				dbStatus = "unreachable"
			}
		}

		// Redis is optional: without it the service runs degraded, not down.
		redisStatus := "disabled"
		if deps.Redis != nil {
			redisStatus = "connected"
			if err := deps.Redis.Ping(ctx).Err(); err != nil {
				redisStatus = "unreachable"
			}
		}

		status, statusCode := "ok", http.StatusOK
		if dbStatus == "unreachable" {
			status, statusCode = "error", http.StatusServiceUnavailable
		} else if redisStatus == "unreachable" {
			status = "degraded"
		}

		c.JSON(statusCode, gin.H{
			"status":   status,
			"database": dbStatus,
			"redis":    redisStatus,
			"uptime":   time.Since(deps.StartTime).String(),
		})
	}
}
