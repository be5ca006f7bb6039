package dto

import "time"

// ── 工作流模块 DTO ──

// CreateWorkflowRequest 创建工作流请求
//
// RoleAssignments 以阶段名为键、负责人为值（如 "指定设计师" → 某设计师），
// 未出现在映射中的阶段不指派负责人。
type CreateWorkflowRequest struct {
	SampleRequestID int64             `json:"sample_request_id" binding:"required,gt=0"`
	WorkflowName    string            `json:"workflow_name"     binding:"required,min=2,max=200"`
	TemplateName    string            `json:"template_name"     binding:"omitempty,max=100"`
	Priority        string            `json:"priority"          binding:"omitempty,oneof=low medium high"`
	DueDate         *time.Time        `json:"due_date"`
	RoleAssignments map[string]string `json:"role_assignments"`
}

// UpdateWorkflowRequest 更新工作流请求（名称/状态/优先级/截止日期）
type UpdateWorkflowRequest struct {
	WorkflowName *string    `json:"workflow_name" binding:"omitempty,min=2,max=200"`
	Status       *string    `json:"status"        binding:"omitempty,oneof=active completed cancelled"`
	Priority     *string    `json:"priority"      binding:"omitempty,oneof=low medium high"`
	DueDate      *time.Time `json:"due_date"`
}

// WorkflowListRequest 工作流列表查询参数
type WorkflowListRequest struct {
	Status          string     `form:"status"            binding:"omitempty,oneof=active completed cancelled"`
	Assignee        string     `form:"assignee"`
	Priority        string     `form:"priority"          binding:"omitempty,oneof=low medium high"`
	CreatedBy       string     `form:"created_by"`
	SampleRequestID int64      `form:"sample_request_id" binding:"omitempty,gt=0"`
	DueFrom         *time.Time `form:"due_from"          time_format:"2006-01-02"`
	DueTo           *time.Time `form:"due_to"            time_format:"2006-01-02"`
	Limit           int        `form:"limit"             binding:"omitempty,min=1,max=500"`
}

// WorkflowResponse 工作流摘要响应
type WorkflowResponse struct {
	WorkflowID      string  `json:"workflow_id"`
	SampleRequestID int64   `json:"sample_request_id"`
	WorkflowName    string  `json:"workflow_name"`
	TemplateName    string  `json:"template_name"`
	Status          string  `json:"status"`
	Priority        string  `json:"priority"`
	CreatedBy       string  `json:"created_by"`
	DueDate         *string `json:"due_date,omitempty"`
	CompletedAt     *string `json:"completed_at,omitempty"`
	CreatedAt       string  `json:"created_at"`
	UpdatedAt       string  `json:"updated_at"`
}

// WorkflowDetailResponse 工作流详情响应（含卡片）
type WorkflowDetailResponse struct {
	WorkflowResponse
	Cards []CardResponse `json:"cards"`
}
