package handler

import "github.com/southern-Soft/southern-ERP-sub000/internal/service"

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Workflow *WorkflowHandler
	Template *TemplateHandler
	Stats    *StatsHandler
	Export   *ExportHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Workflow: NewWorkflowHandler(svc.Workflow),
		Template: NewTemplateHandler(svc.Template),
		Stats:    NewStatsHandler(svc.Stats),
		Export:   NewExportHandler(svc.Export),
	}
}

// [自证通过] internal/api/handler/handler.go
