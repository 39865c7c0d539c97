package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"nightwatch/backend/config"
	"nightwatch/backend/internal/api/handler"
	"nightwatch/backend/internal/api/middleware"
	"nightwatch/backend/internal/model"
	"nightwatch/backend/pkg/jwt"
	"nightwatch/backend/pkg/redis"
)

// Setup builds the Gin engine with all routes and middleware.
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── global middleware ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))

	// ── health check ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// auth (no token required)
		auth := v1.Group("/auth")
		{
			auth.POST("/login", h.Auth.Login)
			auth.POST("/refresh", h.Auth.Refresh)
		}

		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(jwtMgr, rdb))
		{
			authorized.POST("/auth/logout", h.Auth.Logout)

			// users
			users := authorized.Group("/users")
			{
				users.GET("/me", h.User.Me)
				users.GET("", middleware.RoleAuth(model.RoleAdmin), h.User.List)
				users.POST("", middleware.RoleAuth(model.RoleAdmin), h.User.Create)
			}

			// schedules: everyone can browse, only admins mutate
			schedules := authorized.Group("/schedules")
			{
				schedules.GET("", h.Schedule.List)
				schedules.GET("/:id", h.Schedule.Get)
				schedules.GET("/:id/preview", h.Schedule.PreviewSlots)
				schedules.POST("", middleware.RoleAuth(model.RoleAdmin), h.Schedule.Create)
				schedules.PUT("/:id", middleware.RoleAuth(model.RoleAdmin), h.Schedule.Update)
				schedules.DELETE("/:id", middleware.RoleAuth(model.RoleAdmin), h.Schedule.Delete)
			}

			// availability
			authorized.GET("/slots", h.Slot.List)

			// bookings
			bookings := authorized.Group("/bookings")
			{
				bookings.POST("", h.Booking.Commit)
				bookings.GET("/my", h.Booking.ListMine)
				bookings.GET("/:id", h.Booking.Get)
				bookings.DELETE("/:id", h.Booking.Cancel)
				bookings.POST("/:id/checkin", h.Booking.CheckIn)
				bookings.GET("/:id/reports", h.Report.ListByBooking)
				bookings.POST("/assign", middleware.RoleAuth(model.RoleAdmin), h.Booking.Assign)
				bookings.DELETE("/:id/assignment", middleware.RoleAuth(model.RoleAdmin), h.Booking.Unassign)
			}

			// reports
			authorized.POST("/reports", h.Report.File)

			// points
			points := authorized.Group("/points")
			{
				points.GET("/summary", h.Points.Summary)
				points.GET("/history", h.Points.History)
				points.GET("/achievements", h.Points.Achievements)
				points.GET("/leaderboard", h.Points.Leaderboard)
			}

			// exports
			export := authorized.Group("/export")
			{
				export.GET("/calendar", h.Export.Calendar)
				export.GET("/leaderboard", middleware.RoleAuth(model.RoleAdmin), h.Export.Leaderboard)
			}

			// admin: historical points backfill
			admin := authorized.Group("/admin", middleware.RoleAuth(model.RoleAdmin))
			{
				admin.GET("/backfill/preview", h.Backfill.Preview)
				admin.POST("/backfill", h.Backfill.Run)
			}
		}
	}

	return r
}
