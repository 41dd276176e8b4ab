package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"artmatch/internal/service"
)

// HealthChecker permite a /healthz consultar la base sin acoplarse a pgxpool.
type HealthChecker func(ctx context.Context) error

// Handlers agrupa los handlers que monta el router.
type Handlers struct {
	User     *UserHandler
	Profile  *ProfileHandler
	Match    *MatchHandler
	Schedule *ScheduleHandler
}

// NewRouter configura el router de Gin con middlewares y rutas.
func NewRouter(logger *zap.Logger, jwtSvc *service.JWTService, h Handlers, health HealthChecker) *gin.Engine {
	if err := RegisterValidators(); err != nil {
		logger.Error("register validators", zap.Error(err))
	}

	r := gin.New()

	// Middlewares basicos: logging, recovery y JSON content-type.
	r.Use(zapLoggerMiddleware(logger), gin.Recovery(), jsonContentTypeMiddleware())

	r.GET("/healthz", healthHandler(health))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/events", h.Schedule.ListEvents)

	auth := r.Group("/auth")
	auth.POST("/register", h.User.Register)
	auth.POST("/login", h.User.Login)
	auth.POST("/refresh", h.User.RefreshToken)
	auth.POST("/logout", h.User.Logout)

	protected := r.Group("/", JWTAuthMiddleware(jwtSvc))
	protected.GET("/me", h.Profile.Me)
	protected.POST("/quiz", h.Profile.SubmitQuiz)
	protected.GET("/matches", h.Match.ListMatches)

	schedule := protected.Group("/schedule")
	schedule.POST("", h.Schedule.CreateSchedule)
	schedule.GET("", h.Schedule.ListSchedules)
	schedule.GET("/with/:partnerId", h.Schedule.GetWithPartner)
	schedule.DELETE("/:id", h.Schedule.DeleteSchedule)

	return r
}

func healthHandler(check HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		if check != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := check(ctx); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}

// zapLoggerMiddleware loguea por ruta (no por path) para no mezclar IDs en el campo.
func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("route", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		}
		if uid := c.GetString(authUserKey); uid != "" {
			fields = append(fields, zap.String("user_id", uid))
		}
		logger.Info("request", fields...)
	}
}

// jsonContentTypeMiddleware fuerza Content-Type: application/json en responses.
func jsonContentTypeMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Content-Type", "application/json")
		c.Next()
	}
}
