package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/BERKEKARAYANIK/CMMS-sub001/config"
	"github.com/BERKEKARAYANIK/CMMS-sub001/internal/api/handler"
	"github.com/BERKEKARAYANIK/CMMS-sub001/internal/api/middleware"
	"github.com/BERKEKARAYANIK/CMMS-sub001/pkg/jwt"
	"github.com/BERKEKARAYANIK/CMMS-sub001/pkg/redis"
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

	// ── API v1（全部需要认证）──
	v1 := r.Group("/api/v1")
	v1.Use(middleware.JWTAuth(jwtMgr))
	v1.Use(middleware.RateLimit(rdb, 120, time.Minute))
	{
		// 技工目录（只读）
		technicians := v1.Group("/technicians")
		{
			technicians.GET("", h.Technician.List)
			technicians.GET("/:employee_id", h.Technician.Get)
		}

		// 班次模块
		shifts := v1.Group("/shifts")
		{
			shifts.GET("", h.Shift.List)
			shifts.GET("/:id", h.Shift.Get)
			shifts.POST("", middleware.RoleAuth("scheduler", "manager"), h.Shift.Create)
			shifts.PUT("/:id", middleware.RoleAuth("scheduler", "manager"), h.Shift.Update)
			shifts.DELETE("/:id", middleware.RoleAuth("manager"), h.Shift.Delete)
		}

		// 完工记录模块
		jobs := v1.Group("/jobs")
		{
			jobs.POST("", h.Job.Create) // 技工本人提交
			jobs.GET("", h.Job.List)
			jobs.GET("/:id", h.Job.Get)
			jobs.PUT("/:id", middleware.RoleAuth("manager"), h.Job.Update)
			jobs.POST("/:id/escalate", middleware.RoleAuth("scheduler", "manager"), h.Job.Escalate)
		}

		// 计划任务模块
		tasks := v1.Group("/tasks")
		{
			tasks.GET("", h.Task.List)
			tasks.GET("/:id", h.Task.Get)
			tasks.POST("", middleware.RoleAuth("scheduler", "manager"), h.Task.Create)
			tasks.PUT("/:id", middleware.RoleAuth("scheduler", "manager"), h.Task.Update)
			tasks.DELETE("/:id", middleware.RoleAuth("scheduler", "manager"), h.Task.Delete)
			tasks.POST("/:id/convert", middleware.RoleAuth("scheduler", "manager"), h.Task.Convert)
		}

		// 工单模块（流转权限细分在 Service 层状态机内）
		workOrders := v1.Group("/work-orders")
		{
			workOrders.GET("", h.WorkOrder.List)
			workOrders.GET("/:id", h.WorkOrder.Get)
			workOrders.POST("", middleware.RoleAuth("scheduler", "manager"), h.WorkOrder.Create)
			workOrders.POST("/:id/transition", h.WorkOrder.Transition)
			workOrders.POST("/:id/reopen", middleware.RoleAuth("manager"), h.WorkOrder.Reopen)
			workOrders.GET("/:id/report", h.WorkOrder.GetReport)
			workOrders.DELETE("/:id/report", middleware.RoleAuth("manager"), h.WorkOrder.ClearReport)
			workOrders.GET("/:id/status-logs", middleware.RoleAuth("manager"), h.WorkOrder.ListStatusLogs)
		}

		// 绩效模块
		performance := v1.Group("/performance")
		{
			performance.GET("/summary", h.Performance.Summary)
		}
	}

	return r
}
