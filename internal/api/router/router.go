package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"faculty-schedules/backend/config"
	"faculty-schedules/backend/internal/api/handler"
	"faculty-schedules/backend/internal/api/middleware"
	"faculty-schedules/backend/pkg/jwt"
	"faculty-schedules/backend/pkg/redis"
)

// 导入接口（ICS 拉取、批量人员）单 IP 每分钟上限
const importRateLimit = 10

// Setup 初始化并返回 Gin 路由引擎
//
// rdb 可为 nil：此时跳过令牌黑名单与限流。
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, db *gorm.DB, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	var (
		blacklist middleware.TokenBlacklist
		limiter   middleware.RateLimiter
	)
	if rdb != nil {
		blacklist, limiter = rdb, rdb
	}

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(cfg.Server.MaxBodyBytes))

	// ── 健康检查 ──
	r.GET("/health", healthCheck(db))

	admin := middleware.RoleAuth(jwt.RoleAdmin)
	importLimit := middleware.RateLimit(limiter, importRateLimit, time.Minute)

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	v1.Use(middleware.JWTAuth(jwtMgr, blacklist))
	{
		v1.GET("/auth/me", h.Auth.Me)
		v1.POST("/auth/logout", h.Auth.Logout)
		v1.GET("/reference", h.Semester.GetReference)

		// 学期模块
		semesters := v1.Group("/semesters")
		{
			semesters.GET("", h.Semester.ListSemesters)
			semesters.GET("/current", h.Semester.GetCurrentSemester)
			semesters.GET("/:id", h.Semester.GetSemester)
			semesters.POST("", admin, h.Semester.CreateSemester)
			semesters.PUT("/:id", admin, h.Semester.UpdateSemester)
			semesters.PUT("/:id/activate", admin, h.Semester.ActivateSemester)
			semesters.DELETE("/:id", admin, h.Semester.DeleteSemester)
		}

		// 人员模块
		workers := v1.Group("/workers")
		{
			workers.GET("", h.Worker.ListWorkers)
			workers.POST("", admin, h.Worker.CreateWorker)
			workers.POST("/import", admin, importLimit, h.Import.ImportRoster)
			workers.GET("/:id", h.Worker.GetWorker)
			workers.PUT("/:id", admin, h.Worker.UpdateWorker)
			workers.DELETE("/:id", admin, h.Worker.DeleteWorker)
			workers.GET("/:id/summary", h.Worker.GetWorkerSummary)
			workers.GET("/:id/timeline", h.Timeline.GetWorkerWeek)

			workers.POST("/:id/assignments", admin, h.Assignment.CreateAssignment)

			workers.GET("/:id/courses", h.Import.ListCourses)
			workers.POST("/:id/courses", admin, h.Import.CreateCourse)
			workers.POST("/:id/courses/ics", admin, importLimit, h.Import.ImportICS)
		}

		// 任务与时间块模块
		assignments := v1.Group("/assignments")
		{
			assignments.GET("/:id", h.Assignment.GetAssignment)
			assignments.PUT("/:id", admin, h.Assignment.UpdateAssignment)
			assignments.DELETE("/:id", admin, h.Assignment.DeleteAssignment)
			assignments.POST("/:id/blocks", admin, h.Assignment.AddBlock)
			assignments.POST("/:id/blocks/remove", admin, h.Assignment.RemoveBlock)
			assignments.GET("/:id/grid", h.Assignment.GetGrid)
			assignments.POST("/:id/grid/toggle", admin, h.Assignment.ToggleCell)
		}

		v1.DELETE("/courses/:id", admin, h.Import.DeleteCourse)

		// 部门时间轴
		v1.GET("/timeline/:day", h.Timeline.GetDepartmentDay)

		// 导出模块
		v1.GET("/export/roster", h.Export.ExportRoster)
	}

	return r
}

// healthCheck 健康检查；db 不可达时返回 503
func healthCheck(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if db != nil {
			sqlDB, err := db.DB()
			if err == nil {
				ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
				err = sqlDB.PingContext(ctx)
				cancel()
			}
			if err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "database": "unreachable"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
