package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"bilgeverse/backend/config"
	"bilgeverse/backend/internal/api/handler"
	"bilgeverse/backend/internal/api/middleware"
	"bilgeverse/backend/pkg/jwt"
	"bilgeverse/backend/pkg/redis"
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
	r.Use(middleware.BodyLimit(1 << 20))

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 认证模块（无需认证；登录与刷新接口限流）
		auth := v1.Group("/auth")
		auth.Use(middleware.RateLimit(rdb, 10, time.Minute))
		{
			auth.POST("/login", h.Auth.Login)
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
				users.GET("/my-students", middleware.RoleAuth("TUTOR", "ASISTAN"), h.User.ListMyStudents)
				users.GET("", middleware.RoleAuth("ADMIN", "BOARD_MEMBER"), h.User.ListUsers)
				users.GET("/:id", h.User.GetUser)
				users.POST("", middleware.RoleAuth("ADMIN"), h.User.CreateUser)
				users.PUT("/:id", h.User.UpdateUser) // ADMIN 或本人（Service 层鉴权）
				users.DELETE("/:id", middleware.RoleAuth("ADMIN"), h.User.DeleteUser)
				users.PUT("/:id/role", middleware.RoleAuth("ADMIN"), h.User.AssignRole)
				users.PUT("/:id/tutor", middleware.RoleAuth("ADMIN"), h.User.AssignTutor)
				users.POST("/:id/reset-password", middleware.RoleAuth("ADMIN"), h.User.ResetPassword)
			}

			// 学期模块
			periods := authorized.Group("/periods")
			{
				periods.GET("", h.Period.ListPeriods)
				periods.GET("/active", h.Period.GetActivePeriod)
				periods.GET("/:id", h.Period.GetPeriod)
				periods.POST("", middleware.RoleAuth("ADMIN"), h.Period.CreatePeriod)
				periods.PUT("/:id", middleware.RoleAuth("ADMIN"), h.Period.UpdatePeriod)
				periods.PUT("/:id/status", middleware.RoleAuth("ADMIN"), h.Period.UpdatePeriodStatus)
				periods.PUT("/:id/activate", middleware.RoleAuth("ADMIN"), h.Period.ActivatePeriod)
				periods.GET("/:id/delete-impact", middleware.RoleAuth("ADMIN"), h.Period.GetDeleteImpact)
				periods.DELETE("/:id", middleware.RoleAuth("ADMIN"), h.Period.DeletePeriod)
			}

			// 积分/经验账本模块
			points := authorized.Group("/points")
			{
				points.POST("/award", middleware.RoleAuth("ADMIN", "TUTOR", "ASISTAN"), h.Ledger.AwardPoints)
				points.GET("/transactions", h.Ledger.ListPointsTransactions)
				points.POST("/recalculate", middleware.RoleAuth("ADMIN"), h.Ledger.Recalculate)
			}
			experience := authorized.Group("/experience")
			{
				experience.POST("/award", middleware.RoleAuth("ADMIN", "TUTOR", "ASISTAN"), h.Ledger.AwardExperience)
				experience.GET("/transactions", h.Ledger.ListExperienceTransactions)
			}

			// 周报模块
			weeklyReports := authorized.Group("/weekly-reports")
			{
				weeklyReports.POST("/draft", middleware.RoleAuth("TUTOR", "ASISTAN"), h.WeeklyReport.SaveDraft)
				weeklyReports.POST("/:id/submit", middleware.RoleAuth("TUTOR", "ASISTAN"), h.WeeklyReport.Submit)
				weeklyReports.GET("", h.WeeklyReport.ListReports)
				weeklyReports.GET("/:id", h.WeeklyReport.GetReport)
				weeklyReports.PUT("/bulk-review", middleware.RoleAuth("ADMIN"), h.WeeklyReport.BulkReview)
				weeklyReports.PUT("/:id/review", middleware.RoleAuth("ADMIN"), h.WeeklyReport.Review)
			}

			// 周报问题目录
			questions := authorized.Group("/weekly-report-questions")
			{
				questions.GET("", h.WeeklyReport.ListQuestions)
				questions.POST("", middleware.RoleAuth("ADMIN"), h.WeeklyReport.CreateQuestion)
				questions.PUT("/:id", middleware.RoleAuth("ADMIN"), h.WeeklyReport.UpdateQuestion)
				questions.DELETE("/:id", middleware.RoleAuth("ADMIN"), h.WeeklyReport.DeleteQuestion)
			}

			// 奖励商店模块
			store := authorized.Group("/store")
			{
				store.GET("/items", h.Store.ListItems)
				store.POST("/items", middleware.RoleAuth("ADMIN"), h.Store.CreateItem)
				store.PUT("/items/:id", middleware.RoleAuth("ADMIN"), h.Store.UpdateItem)
				store.DELETE("/items/:id", middleware.RoleAuth("ADMIN"), h.Store.DeleteItem)
				store.POST("/requests", middleware.RoleAuth("STUDENT"), h.Store.CreateRequest)
				store.GET("/requests", h.Store.ListRequests)
				store.PUT("/requests/:id/review", middleware.RoleAuth("ADMIN"), h.Store.ReviewRequest)
			}

			// 社区模块：活动/公告/心愿/学生备注
			events := authorized.Group("/events")
			{
				events.GET("", h.Community.ListEvents)
				events.POST("", middleware.RoleAuth("ADMIN", "TUTOR", "ASISTAN"), h.Community.CreateEvent)
				events.PUT("/:id", middleware.RoleAuth("ADMIN", "TUTOR", "ASISTAN"), h.Community.UpdateEvent)
				events.DELETE("/:id", middleware.RoleAuth("ADMIN"), h.Community.DeleteEvent)
			}
			announcements := authorized.Group("/announcements")
			{
				announcements.GET("", h.Community.ListAnnouncements)
				announcements.POST("", middleware.RoleAuth("ADMIN", "BOARD_MEMBER"), h.Community.CreateAnnouncement)
				announcements.DELETE("/:id", middleware.RoleAuth("ADMIN"), h.Community.DeleteAnnouncement)
			}
			wishes := authorized.Group("/wishes")
			{
				wishes.GET("", middleware.RoleAuth("ADMIN", "TUTOR", "ASISTAN", "BOARD_MEMBER"), h.Community.ListWishes)
				wishes.POST("", middleware.RoleAuth("STUDENT"), h.Community.CreateWish)
				wishes.DELETE("/:id", middleware.RoleAuth("ADMIN"), h.Community.DeleteWish)
			}
			studentNotes := authorized.Group("/student-notes")
			{
				studentNotes.GET("", middleware.RoleAuth("ADMIN", "TUTOR", "ASISTAN"), h.Community.ListStudentNotes)
				studentNotes.POST("", middleware.RoleAuth("ADMIN", "TUTOR", "ASISTAN"), h.Community.CreateStudentNote)
				studentNotes.DELETE("/:id", middleware.RoleAuth("ADMIN"), h.Community.DeleteStudentNote)
			}

			// 报表模块
			reports := authorized.Group("/reports")
			{
				reports.GET("/leaderboard", h.Report.Leaderboard)
				reports.GET("/classroom-stats", middleware.RoleAuth("ADMIN", "BOARD_MEMBER"), h.Report.ClassroomStats)
				reports.GET("/export/leaderboard", middleware.RoleAuth("ADMIN", "BOARD_MEMBER"), h.Report.ExportLeaderboard)
				reports.GET("/export/points-transactions", middleware.RoleAuth("ADMIN"), h.Report.ExportPointsTransactions)
				reports.GET("/export/calendar", h.Report.ExportCalendar)
			}
		}
	}

	return r
}
