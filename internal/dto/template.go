package dto

// ── 模板模块 DTO ──

// CreateTemplateStageRequest 新增模板阶段请求
// stage_order 必须等于当前启用阶段数 + 1（保持连续性）
type CreateTemplateStageRequest struct {
	TemplateName           string `json:"template_name"            binding:"required,min=2,max=100"`
	StageName              string `json:"stage_name"               binding:"required,min=1,max=100"`
	StageOrder             int    `json:"stage_order"              binding:"required,gt=0"`
	StageDescription       string `json:"stage_description"        binding:"omitempty,max=1000"`
	DefaultAssigneeRole    string `json:"default_assignee_role"    binding:"omitempty,max=50"`
	EstimatedDurationHours int    `json:"estimated_duration_hours" binding:"omitempty,gt=0"`
}

// UpdateTemplateStageRequest 更新模板阶段请求（不允许改 stage_order）
type UpdateTemplateStageRequest struct {
	StageName              *string `json:"stage_name"               binding:"omitempty,min=1,max=100"`
	StageDescription       *string `json:"stage_description"        binding:"omitempty,max=1000"`
	DefaultAssigneeRole    *string `json:"default_assignee_role"    binding:"omitempty,max=50"`
	EstimatedDurationHours *int    `json:"estimated_duration_hours" binding:"omitempty,gt=0"`
}

// TemplateListRequest 模板列表查询参数
type TemplateListRequest struct {
	TemplateName    string `form:"template_name"`
	IncludeInactive bool   `form:"include_inactive"`
}

// TemplateStageResponse 模板阶段响应
type TemplateStageResponse struct {
	TemplateID             string `json:"template_id"`
	TemplateName           string `json:"template_name"`
	StageName              string `json:"stage_name"`
	StageOrder             int    `json:"stage_order"`
	StageDescription       string `json:"stage_description,omitempty"`
	DefaultAssigneeRole    string `json:"default_assignee_role,omitempty"`
	EstimatedDurationHours int    `json:"estimated_duration_hours"`
	IsActive               bool   `json:"is_active"`
	CreatedAt              string `json:"created_at"`
	UpdatedAt              string `json:"updated_at"`
}
