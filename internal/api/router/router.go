package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/jae1jeong/meeting-resv-sub000/config"
	"github.com/jae1jeong/meeting-resv-sub000/internal/api/handler"
	"github.com/jae1jeong/meeting-resv-sub000/internal/api/middleware"
	"github.com/jae1jeong/meeting-resv-sub000/pkg/jwt"
	"github.com/jae1jeong/meeting-resv-sub000/pkg/redis"
)

// Setup 初始化并返回 Gin 路由引擎
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(1 << 20)) // 1MB

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 认证模块（无需认证；登录/注册限流）
		auth := v1.Group("/auth")
		{
			auth.POST("/register", middleware.RateLimit(rdb, 10, time.Minute), h.Auth.Register)
			auth.POST("/login", middleware.RateLimit(rdb, 20, time.Minute), h.Auth.Login)
			auth.POST("/refresh", h.Auth.RefreshToken)
		}

		// 需要认证的路由
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(jwtMgr, rdb))
		{
			// 认证模块（需要认证）
			authorized.POST("/auth/logout", h.Auth.Logout)
			authorized.GET("/auth/me", h.Auth.GetCurrentUser)
			authorized.PUT("/auth/password", h.Auth.ChangePassword)

			// 用户模块
			users := authorized.Group("/users")
			{
				users.GET("", h.User.ListUsers)
				users.GET("/:id", h.User.GetUser)
				users.PUT("/:id", h.User.UpdateUser) // admin 或本人（Service 层鉴权）
				users.DELETE("/:id", middleware.RoleAuth("admin"), h.User.DeleteUser)
			}

			// 群组模块
			groups := authorized.Group("/groups")
			{
				groups.GET("", h.Group.ListGroups)
				groups.GET("/:id", h.Group.GetGroup)
				groups.POST("", h.Group.CreateGroup)
				groups.PUT("/:id", middleware.RoleAuth("admin"), h.Group.UpdateGroup)
				groups.DELETE("/:id", middleware.RoleAuth("admin"), h.Group.DeleteGroup)
				groups.GET("/:id/members", h.Group.ListMembers)
				groups.POST("/:id/members", middleware.RoleAuth("admin"), h.Group.AddMember)
				groups.DELETE("/:id/members/:user_id", middleware.RoleAuth("admin"), h.Group.RemoveMember)
			}

			// 会议室模块（可见性在 Service 层按群组成员裁剪）
			rooms := authorized.Group("/rooms")
			{
				rooms.GET("", h.Room.ListRooms)
				rooms.GET("/:id", h.Room.GetRoom)
				rooms.POST("", h.Room.CreateRoom)
				rooms.PUT("/:id", h.Room.UpdateRoom)
				rooms.DELETE("/:id", h.Room.DeleteRoom)
			}

			// 预订模块
			bookings := authorized.Group("/bookings")
			{
				bookings.GET("", h.Booking.ListBookings)
				bookings.GET("/week", h.Booking.ListWeek)
				bookings.GET("/availability", h.Booking.CheckAvailability)
				bookings.GET("/:id", h.Booking.GetBooking)
				bookings.POST("", h.Booking.CreateBooking)
				bookings.PUT("/:id", h.Booking.UpdateBooking)
				bookings.PUT("/:id/time", h.Booking.UpdateBookingTime)
				bookings.DELETE("/:id", h.Booking.DeleteBooking)
			}

			// 导出模块
			export := authorized.Group("/export")
			{
				export.GET("/week", h.Export.ExportWeekExcel)
				export.GET("/ics", h.Export.ExportICS)
			}
		}
	}

	return r
}
