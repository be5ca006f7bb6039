package dto

// ── 卡片模块 DTO ──

// UpdateCardStatusRequest 卡片状态流转请求
type UpdateCardStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=pending ready in_progress completed blocked"`
	Reason string `json:"reason" binding:"omitempty,max=500"`
}

// UpdateCardAssigneeRequest 卡片改派请求
type UpdateCardAssigneeRequest struct {
	AssignedTo string `json:"assigned_to" binding:"required,min=1,max=100"`
}

// CreateCommentRequest 卡片评论请求
type CreateCommentRequest struct {
	Content string `json:"content" binding:"required,min=1,max=2000"`
}

// CreateAttachmentRequest 卡片附件登记请求
// file_key 为已上传 blob 的存储引用，留空时由服务端生成
type CreateAttachmentRequest struct {
	FileName string `json:"file_name" binding:"required,min=1,max=255"`
	FileKey  string `json:"file_key"  binding:"omitempty,max=255"`
	FileSize int64  `json:"file_size" binding:"omitempty,gte=0"`
}

// CardResponse 卡片响应
type CardResponse struct {
	CardID          string  `json:"card_id"`
	WorkflowID      string  `json:"workflow_id"`
	StageName       string  `json:"stage_name"`
	StageOrder      int     `json:"stage_order"`
	CardTitle       string  `json:"card_title"`
	CardDescription string  `json:"card_description,omitempty"`
	AssignedTo      *string `json:"assigned_to,omitempty"`
	Status          string  `json:"status"`
	DueDate         *string `json:"due_date,omitempty"`
	CompletedAt     *string `json:"completed_at,omitempty"`
	BlockedReason   string  `json:"blocked_reason,omitempty"`
	CreatedAt       string  `json:"created_at"`
	UpdatedAt       string  `json:"updated_at"`
}

// CardDetailResponse 卡片详情响应（含评论/附件/状态历史）
type CardDetailResponse struct {
	CardResponse
	Comments    []CommentResponse    `json:"comments"`
	Attachments []AttachmentResponse `json:"attachments"`
	History     []HistoryResponse    `json:"history"`
}

// CommentResponse 评论响应
type CommentResponse struct {
	CommentID string `json:"comment_id"`
	CardID    string `json:"card_id"`
	Content   string `json:"content"`
	CreatedBy string `json:"created_by"`
	CreatedAt string `json:"created_at"`
}

// AttachmentResponse 附件响应
type AttachmentResponse struct {
	AttachmentID string `json:"attachment_id"`
	CardID       string `json:"card_id"`
	FileName     string `json:"file_name"`
	FileKey      string `json:"file_key"`
	FileSize     int64  `json:"file_size"`
	UploadedBy   string `json:"uploaded_by"`
	CreatedAt    string `json:"created_at"`
}

// HistoryResponse 状态历史响应
type HistoryResponse struct {
	HistoryID      string `json:"history_id"`
	CardID         string `json:"card_id"`
	PreviousStatus string `json:"previous_status"`
	NewStatus      string `json:"new_status"`
	UpdatedBy      string `json:"updated_by"`
	UpdateReason   string `json:"update_reason,omitempty"`
	CreatedAt      string `json:"created_at"`
}
